package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"samaj-directory/internal/adapter/client"
	domain "samaj-directory/internal/domain/directory"
	"samaj-directory/internal/listing"
	"samaj-directory/pkg/pagination"
)

// runner executes commands for one collection's item type.
type runner interface {
	list(ctx context.Context, s *session, f listFlags, out, errOut io.Writer) error
	watch(ctx context.Context, s *session, f listFlags, in io.Reader, out io.Writer) error
	get(ctx context.Context, s *session, id string, out io.Writer) error
}

type collectionRunner[T pagination.Keyed] struct {
	collection domain.Collection
}

func runnerFor(c domain.Collection) runner {
	switch c {
	case domain.CollectionOrganisations:
		return collectionRunner[domain.Organisation]{c}
	case domain.CollectionAryaSamajs:
		return collectionRunner[domain.AryaSamaj]{c}
	case domain.CollectionMembers:
		return collectionRunner[domain.Member]{c}
	case domain.CollectionFamilies:
		return collectionRunner[domain.Family]{c}
	default:
		return collectionRunner[domain.Activity]{c}
	}
}

func (r collectionRunner[T]) model(s *session, f listFlags) *listing.ListModel[T] {
	repo := client.NewRepository[T](s.client, r.collection)
	opts := listing.Options{
		PageSize:      f.pageSize,
		DebounceDelay: s.cfg.Pagination.DebounceDelay(),
	}
	if filter := f.filter(); !filter.IsZero() {
		opts.Filter = filter
	}
	return listing.New[T](repo, s.log, opts)
}

func (r collectionRunner[T]) list(ctx context.Context, s *session, f listFlags, out, errOut io.Writer) error {
	m := r.model(s, f)
	defer m.Close()

	updates, unsubscribe := m.Subscribe()
	defer unsubscribe()

	if f.search != "" {
		m.SearchItemsPaginated(f.search, f.pageSize, true)
	} else {
		m.LoadInitialList()
	}
	st, err := settle(ctx, m, updates)
	if err != nil {
		return err
	}

	for f.all && st.HasNextPage && st.Error == "" {
		m.LoadNextPage()
		if st, err = settle(ctx, m, updates); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(out)
	for _, item := range st.Items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	fmt.Fprintf(errOut, "%d %s, has_next_page=%t\n", len(st.Items), r.collection, st.HasNextPage)

	if st.Error != "" {
		return fmt.Errorf("list %s: %s", r.collection, st.Error)
	}
	return nil
}

// watch feeds each input line to the debounced search. ":more" loads the next
// page, ":retry" retries a failed load and ":clear" drops query and filters.
func (r collectionRunner[T]) watch(ctx context.Context, s *session, f listFlags, in io.Reader, out io.Writer) error {
	m := r.model(s, f)
	defer m.Close()

	updates, unsubscribe := m.Subscribe()
	defer unsubscribe()

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		var last string
		for st := range updates {
			if st.IsLoading() {
				continue
			}
			line := summary(st)
			if line != last {
				fmt.Fprintln(out, line)
				last = line
			}
		}
	}()

	m.LoadInitialList()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch line := scanner.Text(); strings.TrimSpace(line) {
		case ":more":
			m.LoadNextPage()
		case ":retry":
			m.RetryLoad()
		case ":clear":
			m.ClearFilters()
		default:
			m.UpdateSearchQuery(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// let the last debounced search land before exiting
	final, err := settle(ctx, m, nil)
	unsubscribe()
	<-printed
	if err != nil {
		return err
	}
	if final.Error != "" {
		return fmt.Errorf("watch %s: %s", r.collection, final.Error)
	}
	return nil
}

func (r collectionRunner[T]) get(ctx context.Context, s *session, id string, out io.Writer) error {
	item, err := client.NewRepository[T](s.client, r.collection).GetItem(ctx, id)
	if err != nil {
		return fmt.Errorf("get %s %s: %s", r.collection, id, client.Message(err))
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(item)
}

// settle waits until no fetch is outstanding. updates may be nil, in which
// case the model is polled on its own subscription.
func settle[T pagination.Keyed](ctx context.Context, m *listing.ListModel[T], updates <-chan pagination.State[T]) (pagination.State[T], error) {
	if updates == nil {
		ch, cancel := m.Subscribe()
		defer cancel()
		updates = ch
	}
	for {
		if st := m.State(); !st.IsLoading() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return pagination.State[T]{}, ctx.Err()
		case _, ok := <-updates:
			if !ok {
				return m.State(), nil
			}
		}
	}
}

func summary[T pagination.Keyed](st pagination.State[T]) string {
	label := "browse"
	if st.CurrentSearchTerm != "" {
		label = fmt.Sprintf("search %q", st.CurrentSearchTerm)
	}
	keys := make([]string, 0, len(st.Items))
	for _, it := range st.Items {
		keys = append(keys, it.Key())
	}
	line := fmt.Sprintf("%s: %d items, has_next_page=%t [%s]", label, len(st.Items), st.HasNextPage, strings.Join(keys, " "))
	if st.Error != "" {
		line += " error: " + st.Error
	}
	return line
}
