package pagination

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Name string
}

func (i item) Key() string { return i.ID }

func TestMergeUnique(t *testing.T) {
	tests := []struct {
		name     string
		existing []item
		next     []item
		expected []string
	}{
		{
			name:     "plain append",
			existing: []item{{ID: "a"}, {ID: "b"}},
			next:     []item{{ID: "c"}},
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "overlapping page keeps first occurrence",
			existing: []item{{ID: "a", Name: "old"}, {ID: "b"}},
			next:     []item{{ID: "a", Name: "new"}, {ID: "c"}},
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "duplicates inside one page",
			existing: nil,
			next:     []item{{ID: "x"}, {ID: "x"}, {ID: "y"}},
			expected: []string{"x", "y"},
		},
		{
			name:     "both empty",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeUnique(tt.existing, tt.next)
			keys := make([]string, 0, len(got))
			for _, it := range got {
				keys = append(keys, it.ID)
			}
			assert.Equal(t, tt.expected, keys)
		})
	}

	t.Run("first occurrence wins", func(t *testing.T) {
		got := MergeUnique([]item{{ID: "a", Name: "old"}}, []item{{ID: "a", Name: "new"}})
		require.Len(t, got, 1)
		assert.Equal(t, "old", got[0].Name)
	})
}

func TestCalculatePageSize(t *testing.T) {
	assert.Equal(t, 15, CalculatePageSize(360))
	assert.Equal(t, 15, CalculatePageSize(599))
	assert.Equal(t, 25, CalculatePageSize(600))
	assert.Equal(t, 25, CalculatePageSize(839))
	assert.Equal(t, 35, CalculatePageSize(840))
	assert.Equal(t, 35, CalculatePageSize(1920))
}

func TestStateClone(t *testing.T) {
	s := State[item]{Items: []item{{ID: "a"}}, HasNextPage: true}
	c := s.Clone()
	c.Items[0].ID = "changed"

	assert.Equal(t, "a", s.Items[0].ID)
	assert.True(t, c.HasNextPage)
	assert.False(t, s.IsLoading())
}

func TestStream_LoadingThenTerminal(t *testing.T) {
	ch := Stream(context.Background(), func(ctx context.Context) Result[item] {
		return Success[item]{Data: []item{{ID: "a"}}, HasNextPage: true, EndCursor: "c1"}
	})

	var got []Result[item]
	for r := range ch {
		got = append(got, r)
	}

	require.Len(t, got, 2)
	assert.IsType(t, Loading[item]{}, got[0])
	success, ok := got[1].(Success[item])
	require.True(t, ok)
	assert.Equal(t, "c1", success.EndCursor)
	assert.True(t, success.HasNextPage)
}

func TestStream_NilResultBecomesFailure(t *testing.T) {
	ch := Stream(context.Background(), func(ctx context.Context) Result[item] { return nil })

	<-ch
	last := <-ch
	failure, ok := last.(Failure[item])
	require.True(t, ok)
	assert.NotEmpty(t, failure.Message)

	_, open := <-ch
	assert.False(t, open)
}

func TestRetryConfig_Delay(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Delay(1))
	assert.Equal(t, 4*time.Second, cfg.Delay(2))
	assert.Equal(t, 2*time.Second, cfg.Delay(0))
}

func BenchmarkMergeUnique(b *testing.B) {
	existing := make([]item, 300)
	for i := range existing {
		existing[i] = item{ID: fmt.Sprintf("m%03d", i)}
	}
	// a 30-item page overlapping the tail by five
	next := make([]item, 30)
	for i := range next {
		next[i] = item{ID: fmt.Sprintf("m%03d", 295+i)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = MergeUnique(existing, next)
	}
}
