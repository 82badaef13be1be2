package pagination

import (
	"context"
	"time"
)

// Result is the closed set of values a Repository stream carries:
// Loading, Success or Failure. No other type can satisfy it.
type Result[T any] interface {
	isResult()
}

// Loading is emitted once, before the fetch starts.
type Loading[T any] struct{}

// Success carries one page.
type Success[T any] struct {
	Data        []T
	HasNextPage bool
	EndCursor   string
}

// Failure carries a human-readable message describing a failed fetch.
type Failure[T any] struct {
	Message string
}

func (Loading[T]) isResult() {}
func (Success[T]) isResult() {}
func (Failure[T]) isResult() {}

// Repository is the capability a list needs from its data source.
//
// Both methods return a stream that yields exactly one Loading followed by
// exactly one terminal Success or Failure, then closes. An empty cursor
// requests the first page. Failures are never returned as Go errors.
type Repository[T any] interface {
	GetItemsPaginated(ctx context.Context, pageSize int, cursor string, filter any) <-chan Result[T]
	SearchItemsPaginated(ctx context.Context, term string, pageSize int, cursor string) <-chan Result[T]
}

// Stream runs fetch on its own goroutine and returns the Loading-then-terminal
// stream Repository implementations hand out. The channel is buffered so the
// goroutine never blocks on a consumer that stopped reading.
func Stream[T any](ctx context.Context, fetch func(ctx context.Context) Result[T]) <-chan Result[T] {
	ch := make(chan Result[T], 2)
	ch <- Loading[T]{}
	go func() {
		defer close(ch)
		res := fetch(ctx)
		if res == nil {
			res = Failure[T]{Message: "empty result"}
		}
		ch <- res
	}()
	return ch
}

// RetryConfig controls how many times a transient failure is retried and how
// long to wait between attempts.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryConfig returns three retries starting at one second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, BaseDelay: time.Second}
}

// Delay returns the wait before retry number attempt (1-based).
func (c RetryConfig) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return c.BaseDelay * 2 * time.Duration(attempt)
}
