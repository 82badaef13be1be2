package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	pb "samaj-directory/api/directory/v1"
	"samaj-directory/internal/adapter/client"
	"samaj-directory/internal/config"
	"samaj-directory/pkg/logger"
	"samaj-directory/pkg/pagination"
)

var (
	version = "dev"
	commit  = "unknown"
)

type rootOptions struct {
	configPath string
	addr       string
	logLevel   string
}

// NewRootCmd builds the dirctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "dirctl",
		Short: "Browse and search the Arya Samaj directory",
		Long: `dirctl talks to the directory gRPC service and pages through its
collections (organisations, arya_samajs, members, families, activities).`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", ".", "directory containing app.env")
	root.PersistentFlags().StringVar(&opts.addr, "addr", "", "directory service address (overrides DIRECTORY_ADDR)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		newListCmd(opts),
		newWatchCmd(opts),
		newGetCmd(opts),
		newCountsCmd(opts),
	)
	return root
}

// session is everything a command needs to talk to the service.
type session struct {
	cfg    *config.Config
	log    *zap.Logger
	conn   *grpc.ClientConn
	client *client.Client
}

func (o *rootOptions) connect() (*session, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.addr != "" {
		cfg.Client.Target = o.addr
	}

	log, err := logger.NewWithConfig(logger.Config{
		Level:       o.logLevel,
		Format:      "console",
		OutputPath:  "stderr",
		ServiceName: "dirctl",
		Environment: cfg.App.Environment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	conn, err := client.Dial(cfg.Client.Target)
	if err != nil {
		return nil, err
	}

	c := client.New(pb.NewDirectoryClient(conn), clientOptions(cfg.Client), log)
	return &session{cfg: cfg, log: log, conn: conn, client: c}, nil
}

func (s *session) Close() {
	_ = s.conn.Close()
	_ = s.log.Sync()
}

func clientOptions(c config.ClientConfig) client.Options {
	return client.Options{
		Timeout: time.Duration(c.TimeoutSeconds) * time.Second,
		Retry: pagination.RetryConfig{
			MaxRetries: c.MaxRetries,
			BaseDelay:  time.Duration(c.RetryBaseDelayMillis) * time.Millisecond,
		},
		RequestsPerSecond: c.RequestsPerSecond,
		Breaker: client.BreakerOptions{
			MaxRequests:  c.BreakerMaxRequests,
			Interval:     time.Duration(c.BreakerIntervalSeconds) * time.Second,
			Timeout:      time.Duration(c.BreakerTimeoutSeconds) * time.Second,
			FailureRatio: c.BreakerFailureRatio,
		},
	}
}
