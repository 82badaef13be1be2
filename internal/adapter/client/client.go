// Package client talks to the directory gRPC service on behalf of list models.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	pb "samaj-directory/api/directory/v1"
	"samaj-directory/pkg/logger"
	"samaj-directory/pkg/pagination"
)

const (
	msgUnavailable = "service unavailable, please try again later"
	msgTimeout     = "request timed out"
	msgThrottled   = "too many requests, please slow down"
	msgCanceled    = "request canceled"
	msgUnknown     = "something went wrong"
)

// Options tunes the transport policy wrapped around every call.
type Options struct {
	Timeout           time.Duration
	Retry             pagination.RetryConfig
	RequestsPerSecond float64
	Breaker           BreakerOptions
}

// BreakerOptions maps onto gobreaker.Settings.
type BreakerOptions struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
}

// DefaultOptions mirrors the client defaults in internal/config.
func DefaultOptions() Options {
	return Options{
		Timeout:           10 * time.Second,
		Retry:             pagination.DefaultRetryConfig(),
		RequestsPerSecond: 5,
		Breaker: BreakerOptions{
			MaxRequests:  1,
			Interval:     30 * time.Second,
			Timeout:      10 * time.Second,
			FailureRatio: 0.6,
		},
	}
}

// Client applies pacing, a circuit breaker and retries around the raw stub.
type Client struct {
	api     pb.DirectoryClient
	opts    Options
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// Dial opens an insecure connection to target with request ids propagated.
func Dial(target string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(logger.RequestIDClientInterceptor()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return conn, nil
}

// New wraps api. Zero fields in opts fall back to DefaultOptions.
func New(api pb.DirectoryClient, opts Options, log *zap.Logger) *Client {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Retry.BaseDelay <= 0 {
		opts.Retry.BaseDelay = def.Retry.BaseDelay
	}
	if opts.Retry.MaxRetries < 0 {
		opts.Retry.MaxRetries = 0
	}
	if opts.Breaker.MaxRequests == 0 {
		opts.Breaker.MaxRequests = def.Breaker.MaxRequests
	}
	if opts.Breaker.Timeout <= 0 {
		opts.Breaker.Timeout = def.Breaker.Timeout
	}
	if opts.Breaker.FailureRatio <= 0 || opts.Breaker.FailureRatio > 1 {
		opts.Breaker.FailureRatio = def.Breaker.FailureRatio
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := int(opts.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		api:     api,
		opts:    opts,
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "directory",
		MaxRequests: opts.Breaker.MaxRequests,
		Interval:    opts.Breaker.Interval,
		Timeout:     opts.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= opts.Breaker.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !transient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

// BreakerState reports the current breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Counts fetches the family and member totals.
func (c *Client) Counts(ctx context.Context) (*pb.CountsResponse, error) {
	return call(ctx, c, "Counts", func(ctx context.Context) (*pb.CountsResponse, error) {
		return c.api.Counts(ctx, &pb.CountsRequest{})
	})
}

// call runs fn under the limiter, the breaker and a per-attempt timeout,
// retrying transient failures with RetryConfig back-off.
func call[R any](ctx context.Context, c *Client, method string, fn func(ctx context.Context) (R, error)) (R, error) {
	var zero R
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			delay := c.opts.Retry.Delay(attempt)
			logger.WithContext(ctx, c.log).Debug("retrying directory call",
				zap.String("method", method),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			if err := sleep(ctx, delay); err != nil {
				return zero, err
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return zero, err
		}

		out, err := c.breaker.Execute(func() (interface{}, error) {
			actx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
			defer cancel()
			return fn(actx)
		})
		if err == nil {
			return out.(R), nil
		}
		if !transient(err) || attempt >= c.opts.Retry.MaxRetries || ctx.Err() != nil {
			return zero, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// transient reports whether err is worth another attempt.
func transient(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}

// Message turns a call error into the text shown next to a retry button.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return msgUnavailable
	case errors.Is(err, context.Canceled):
		return msgCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	}

	st, ok := status.FromError(err)
	if !ok {
		return err.Error()
	}
	switch st.Code() {
	case codes.Unavailable:
		return msgUnavailable
	case codes.DeadlineExceeded:
		return msgTimeout
	case codes.ResourceExhausted:
		return msgThrottled
	case codes.Canceled:
		return msgCanceled
	case codes.Internal, codes.Unknown:
		return msgUnknown
	default:
		if st.Message() == "" {
			return msgUnknown
		}
		return st.Message()
	}
}
