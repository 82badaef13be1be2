package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"samaj-directory/internal/adapter/client"
	domain "samaj-directory/internal/domain/directory"
)

type listFlags struct {
	search       string
	pageSize     int
	all          bool
	state        string
	district     string
	vidhansabha  string
	activityType string
}

func (f listFlags) filter() domain.Filter {
	return domain.Filter{
		State:        f.state,
		District:     f.district,
		Vidhansabha:  f.vidhansabha,
		ActivityType: domain.ActivityType(f.activityType),
	}
}

func addListFlags(cmd *cobra.Command, f *listFlags) {
	cmd.Flags().IntVar(&f.pageSize, "page-size", domain.DefaultPageSize, "items per page")
	cmd.Flags().StringVar(&f.state, "state", "", "only items in this state")
	cmd.Flags().StringVar(&f.district, "district", "", "only items in this district")
	cmd.Flags().StringVar(&f.vidhansabha, "vidhansabha", "", "only items in this vidhansabha")
	cmd.Flags().StringVar(&f.activityType, "type", "", "only activities of this type (EVENT, SESSION, CAMPAIGN, COURSE)")
}

func newListCmd(opts *rootOptions) *cobra.Command {
	f := listFlags{}
	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "Print one page, or every page with --all, as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := domain.ParseCollection(args[0])
			if err != nil {
				return err
			}
			s, err := opts.connect()
			if err != nil {
				return err
			}
			defer s.Close()

			return runnerFor(coll).list(cmd.Context(), s, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	addListFlags(cmd, &f)
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "search term; filters are ignored when set")
	cmd.Flags().BoolVar(&f.all, "all", false, "follow the cursor to the last page")
	return cmd
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	f := listFlags{}
	cmd := &cobra.Command{
		Use:   "watch <collection>",
		Short: "Search interactively: each stdin line updates the debounced query",
		Long: `watch reads search input line by line from stdin and prints a summary each
time the list settles. ":more" loads the next page, ":retry" retries a failed
load and ":clear" resets the query and filters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := domain.ParseCollection(args[0])
			if err != nil {
				return err
			}
			s, err := opts.connect()
			if err != nil {
				return err
			}
			defer s.Close()

			return runnerFor(coll).watch(cmd.Context(), s, f, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	addListFlags(cmd, &f)
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Print one item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := domain.ParseCollection(args[0])
			if err != nil {
				return err
			}
			s, err := opts.connect()
			if err != nil {
				return err
			}
			defer s.Close()

			return runnerFor(coll).get(cmd.Context(), s, args[1], cmd.OutOrStdout())
		},
	}
}

func newCountsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Print the family and member totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.connect()
			if err != nil {
				return err
			}
			defer s.Close()

			counts, err := s.client.Counts(cmd.Context())
			if err != nil {
				return fmt.Errorf("counts: %s", client.Message(err))
			}
			cmd.Printf("families: %d\nmembers:  %d\n", counts.Families, counts.Members)
			return nil
		},
	}
}
