package listing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"samaj-directory/pkg/pagination"
)

type member struct {
	ID   string
	Name string
}

func (m member) Key() string { return m.ID }

type page struct {
	items   []member
	hasNext bool
	cursor  string
	err     error
}

type call struct {
	search   bool
	term     string
	pageSize int
	cursor   string
	filter   any
}

// fakeRepo serves pages keyed by "term|cursor". A gate registered for a key
// blocks that fetch until the gate is closed, regardless of cancellation.
type fakeRepo struct {
	mu    sync.Mutex
	pages map[string]page
	gates map[string]chan struct{}
	calls []call
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{pages: map[string]page{}, gates: map[string]chan struct{}{}}
}

func (f *fakeRepo) setPage(term, cursor string, p page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[term+"|"+cursor] = p
}

func (f *fakeRepo) gate(term, cursor string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(chan struct{})
	f.gates[term+"|"+cursor] = g
	return g
}

func (f *fakeRepo) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeRepo) serve(ctx context.Context, c call) <-chan pagination.Result[member] {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	key := c.term + "|" + c.cursor
	g := f.gates[key]
	delete(f.gates, key)
	f.mu.Unlock()

	return pagination.Stream(ctx, func(ctx context.Context) pagination.Result[member] {
		if g != nil {
			<-g
		}
		f.mu.Lock()
		p, ok := f.pages[key]
		f.mu.Unlock()
		if !ok {
			return pagination.Success[member]{}
		}
		if p.err != nil {
			return pagination.Failure[member]{Message: p.err.Error()}
		}
		return pagination.Success[member]{Data: p.items, HasNextPage: p.hasNext, EndCursor: p.cursor}
	})
}

func (f *fakeRepo) GetItemsPaginated(ctx context.Context, pageSize int, cursor string, filter any) <-chan pagination.Result[member] {
	return f.serve(ctx, call{pageSize: pageSize, cursor: cursor, filter: filter})
}

func (f *fakeRepo) SearchItemsPaginated(ctx context.Context, term string, pageSize int, cursor string) <-chan pagination.Result[member] {
	return f.serve(ctx, call{search: true, term: term, pageSize: pageSize, cursor: cursor})
}

func newModel(t *testing.T, repo *fakeRepo, opts Options) *ListModel[member] {
	if opts.DebounceDelay == 0 {
		opts.DebounceDelay = 20 * time.Millisecond
	}
	m := New[member](repo, zaptest.NewLogger(t), opts)
	t.Cleanup(m.Close)
	return m
}

func waitIdle(t *testing.T, m *ListModel[member]) pagination.State[member] {
	t.Helper()
	require.Eventually(t, func() bool { return !m.State().IsLoading() }, time.Second, 2*time.Millisecond)
	return m.State()
}

func ids(items []member) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestListModel_WalkToEnd(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage("", "", page{items: []member{{ID: "X"}, {ID: "Y"}}, hasNext: true, cursor: "c1"})
	repo.setPage("", "c1", page{items: []member{{ID: "Z"}}, hasNext: false, cursor: "c2"})
	m := newModel(t, repo, Options{PageSize: 2})

	m.LoadInitialList()
	st := waitIdle(t, m)
	assert.Equal(t, []string{"X", "Y"}, ids(st.Items))
	assert.True(t, st.HasNextPage)
	assert.Equal(t, "c1", st.EndCursor)

	m.LoadNextPage()
	st = waitIdle(t, m)
	assert.Equal(t, []string{"X", "Y", "Z"}, ids(st.Items))
	assert.False(t, st.HasNextPage)
	assert.True(t, st.HasReachedEnd)

	m.LoadNextPage()
	m.LoadItemsPaginated(false)
	time.Sleep(20 * time.Millisecond)

	calls := repo.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "", calls[0].cursor)
	assert.Equal(t, "c1", calls[1].cursor)
	assert.Equal(t, 2, calls[0].pageSize)
}

func TestListModel_DeduplicatesAcrossPages(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage("", "", page{items: []member{{ID: "X", Name: "first"}, {ID: "Y"}}, hasNext: true, cursor: "c1"})
	repo.setPage("", "c1", page{items: []member{{ID: "Y"}, {ID: "X", Name: "again"}, {ID: "Z"}}})
	m := newModel(t, repo, Options{PageSize: 2})

	m.LoadInitialList()
	waitIdle(t, m)
	m.LoadNextPage()
	st := waitIdle(t, m)

	assert.Equal(t, []string{"X", "Y", "Z"}, ids(st.Items))
	assert.Equal(t, "first", st.Items[0].Name)
}

func TestListModel_ResetStartsOver(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage("", "", page{items: []member{{ID: "A"}}, hasNext: true, cursor: "c1"})
	repo.setPage("", "c1", page{items: []member{{ID: "B"}}, hasNext: true, cursor: "c2"})
	m := newModel(t, repo, Options{})

	m.LoadInitialList()
	waitIdle(t, m)
	m.LoadNextPage()
	waitIdle(t, m)

	repo.setPage("", "", page{items: []member{{ID: "N"}}, hasNext: false})
	m.LoadItemsPaginated(true)
	st := waitIdle(t, m)

	assert.Equal(t, []string{"N"}, ids(st.Items))
	calls := repo.recorded()
	assert.Equal(t, "", calls[len(calls)-1].cursor)
}

func TestListModel_ErrorIsNonDestructive(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage("", "", page{items: []member{{ID: "X"}, {ID: "Y"}}, hasNext: true, cursor: "c1"})
	repo.setPage("", "c1", page{err: errors.New("network down")})
	m := newModel(t, repo, Options{})

	m.LoadInitialList()
	waitIdle(t, m)
	m.LoadNextPage()
	st := waitIdle(t, m)

	assert.Equal(t, []string{"X", "Y"}, ids(st.Items))
	assert.Equal(t, "network down", st.Error)
	assert.True(t, st.ShowRetryButton)
	assert.True(t, st.HasNextPage)
	assert.False(t, st.IsLoading())

	repo.setPage("", "c1", page{items: []member{{ID: "Z"}}})
	m.RetryLoad()
	st = waitIdle(t, m)

	assert.Equal(t, []string{"X", "Y", "Z"}, ids(st.Items))
	assert.Empty(t, st.Error)
	assert.False(t, st.ShowRetryButton)
	calls := repo.recorded()
	assert.Equal(t, "c1", calls[len(calls)-1].cursor)
}

func TestListModel_RetryWithoutItemsResets(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage("", "", page{err: errors.New("boom")})
	m := newModel(t, repo, Options{})

	m.LoadInitialList()
	st := waitIdle(t, m)
	assert.Equal(t, "boom", st.Error)
	assert.Empty(t, st.Items)

	repo.setPage("", "", page{items: []member{{ID: "A"}}})
	m.RetryLoad()
	st = waitIdle(t, m)

	assert.Equal(t, []string{"A"}, ids(st.Items))
	calls := repo.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "", calls[1].cursor)
}

func TestListModel_EmptyResultIsNotAnError(t *testing.T) {
	repo := newFakeRepo()
	m := newModel(t, repo, Options{})

	m.LoadInitialList()
	st := waitIdle(t, m)

	assert.Empty(t, st.Items)
	assert.Empty(t, st.Error)
	assert.False(t, st.HasNextPage)
	assert.True(t, st.HasReachedEnd)
	assert.False(t, st.ShowRetryButton)
}

func TestListModel_SearchingFlagIsImmediate(t *testing.T) {
	repo := newFakeRepo()
	m := newModel(t, repo, Options{DebounceDelay: time.Hour})

	m.UpdateSearchQuery("ram")

	st := m.State()
	assert.True(t, st.IsSearching)
	assert.False(t, st.IsInitialLoading)
	assert.Equal(t, "ram", m.Query())
	assert.Empty(t, repo.recorded())
}

func TestListModel_DebounceCoalescesInput(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage("ram", "", page{items: []member{{ID: "R1"}}})
	m := newModel(t, repo, Options{DebounceDelay: 30 * time.Millisecond})

	m.UpdateSearchQuery("r")
	m.UpdateSearchQuery("ra")
	m.UpdateSearchQuery("ram ")
	m.UpdateSearchQuery("ram")

	require.Eventually(t, func() bool { return len(repo.recorded()) == 1 }, time.Second, 2*time.Millisecond)
	st := waitIdle(t, m)

	calls := repo.recorded()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].search)
	assert.Equal(t, "ram", calls[0].term)
	assert.Equal(t, "ram", st.CurrentSearchTerm)
	assert.Equal(t, []string{"R1"}, ids(st.Items))
}

func TestListModel_BlankQueryBrowsesImmediately(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage("", "", page{items: []member{{ID: "A"}}})
	repo.setPage("x", "", page{items: []member{{ID: "S"}}})
	m := newModel(t, repo, Options{DebounceDelay: 10 * time.Millisecond})

	m.UpdateSearchQuery("x")
	require.Eventually(t, func() bool { return m.State().CurrentSearchTerm == "x" && !m.State().IsLoading() }, time.Second, 2*time.Millisecond)

	m.UpdateSearchQuery("   ")
	st := waitIdle(t, m)

	assert.Equal(t, []string{"A"}, ids(st.Items))
	assert.Empty(t, st.CurrentSearchTerm)
	calls := repo.recorded()
	assert.False(t, calls[len(calls)-1].search)
}

func TestListModel_StaleResultIsDropped(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage("a", "", page{items: []member{{ID: "A1"}}})
	repo.setPage("ab", "", page{items: []member{{ID: "AB1"}}})
	slow := repo.gate("a", "")
	m := newModel(t, repo, Options{DebounceDelay: 5 * time.Millisecond})

	m.UpdateSearchQuery("a")
	require.Eventually(t, func() bool { return len(repo.recorded()) == 1 }, time.Second, 2*time.Millisecond)

	m.UpdateSearchQuery("ab")
	st := waitIdle(t, m)
	assert.Equal(t, []string{"AB1"}, ids(st.Items))

	close(slow)
	assert.Never(t, func() bool {
		for _, it := range m.State().Items {
			if it.ID == "A1" {
				return true
			}
		}
		return false
	}, 80*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, "ab", m.State().CurrentSearchTerm)
}

func TestListModel_NextPageIsNotQueued(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage("", "", page{items: []member{{ID: "A"}}, hasNext: true, cursor: "c1"})
	repo.setPage("", "c1", page{items: []member{{ID: "B"}}})
	m := newModel(t, repo, Options{})

	m.LoadInitialList()
	waitIdle(t, m)

	g := repo.gate("", "c1")
	m.LoadNextPage()
	m.LoadNextPage()
	m.LoadNextPage()
	assert.True(t, m.State().IsLoadingNextPage)

	close(g)
	st := waitIdle(t, m)
	assert.Equal(t, []string{"A", "B"}, ids(st.Items))
	assert.Len(t, repo.recorded(), 2)
}

func TestListModel_SearchContinuesWithSearch(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage("dev", "", page{items: []member{{ID: "D1"}}, hasNext: true, cursor: "s1"})
	repo.setPage("dev", "s1", page{items: []member{{ID: "D2"}}})
	m := newModel(t, repo, Options{})

	m.SearchItemsPaginated(" dev ", 5, true)
	waitIdle(t, m)
	m.LoadNextPage()
	st := waitIdle(t, m)

	assert.Equal(t, []string{"D1", "D2"}, ids(st.Items))
	calls := repo.recorded()
	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.True(t, c.search)
		assert.Equal(t, "dev", c.term)
		assert.Equal(t, 5, c.pageSize)
	}
	assert.Equal(t, "s1", calls[1].cursor)

	// a different term cannot continue this walk
	m.SearchItemsPaginated("other", 5, false)
	assert.Len(t, repo.recorded(), 2)
}

func TestListModel_LoadItemsContinuesSearchWalk(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage("dev", "", page{items: []member{{ID: "D1"}}, hasNext: true, cursor: "s1"})
	repo.setPage("dev", "s1", page{items: []member{{ID: "D2"}}})
	m := newModel(t, repo, Options{})

	m.SearchItemsPaginated("dev", 5, true)
	waitIdle(t, m)
	m.LoadItemsPaginated(false)
	st := waitIdle(t, m)

	assert.Equal(t, []string{"D1", "D2"}, ids(st.Items))
	assert.Equal(t, "dev", st.CurrentSearchTerm)
	calls := repo.recorded()
	require.Len(t, calls, 2)
	assert.True(t, calls[1].search)
	assert.Equal(t, "s1", calls[1].cursor)

	// reset drops the term and browses from the first page
	m.LoadItemsPaginated(true)
	waitIdle(t, m)
	calls = repo.recorded()
	require.Len(t, calls, 3)
	assert.False(t, calls[2].search)
	assert.Empty(t, calls[2].cursor)
}

func TestListModel_FilterIsForwarded(t *testing.T) {
	type filter struct{ State string }
	repo := newFakeRepo()
	m := newModel(t, repo, Options{Filter: filter{State: "Haryana"}})

	m.LoadInitialList()
	waitIdle(t, m)
	m.SetFilter(filter{State: "Punjab"})
	waitIdle(t, m)
	m.UpdateSearchQuery("q")
	m.ClearFilters()
	waitIdle(t, m)

	calls := repo.recorded()
	require.Len(t, calls, 3)
	assert.Equal(t, filter{State: "Haryana"}, calls[0].filter)
	assert.Equal(t, filter{State: "Punjab"}, calls[1].filter)
	assert.Nil(t, calls[2].filter)
	assert.Empty(t, m.Query())
	assert.Nil(t, m.Filter())
}

func TestListModel_SnapshotPreservation(t *testing.T) {
	store := NewSnapshotStore()
	repo := newFakeRepo()
	repo.setPage("", "", page{items: []member{{ID: "A"}, {ID: "B"}}, hasNext: true, cursor: "c1"})

	first := New[member](repo, zaptest.NewLogger(t), Options{Store: store, StoreKey: "members"})
	first.LoadInitialList()
	waitIdle(t, first)
	first.Close()
	require.Equal(t, 1, store.Len())

	second := New[member](repo, zaptest.NewLogger(t), Options{Store: store, StoreKey: "members"})
	t.Cleanup(second.Close)
	st := second.State()
	assert.Equal(t, []string{"A", "B"}, ids(st.Items))
	assert.Equal(t, "c1", st.EndCursor)

	second.LoadInitialList()
	assert.Len(t, repo.recorded(), 1)

	// the flag is consumed: a second initial load fetches
	second.LoadInitialList()
	waitIdle(t, second)
	assert.Len(t, repo.recorded(), 2)

	store.MarkStale("members")
	third := New[member](repo, zaptest.NewLogger(t), Options{Store: store, StoreKey: "members"})
	t.Cleanup(third.Close)
	assert.Empty(t, third.State().Items)
}

func TestListModel_PreservePagination(t *testing.T) {
	repo := newFakeRepo()
	m := newModel(t, repo, Options{})

	m.PreservePagination(Snapshot[member]{
		State: pagination.State[member]{Items: []member{{ID: "K"}}, HasNextPage: true, EndCursor: "k1", IsInitialLoading: true},
		Query: "k",
	})
	m.LoadInitialList()

	st := m.State()
	assert.Equal(t, []string{"K"}, ids(st.Items))
	assert.False(t, st.IsLoading())
	assert.Equal(t, "k", m.Query())
	assert.Empty(t, repo.recorded())
}

func TestListModel_SubscribersSeeConsistentStates(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage("", "", page{items: []member{{ID: "A"}}, hasNext: true, cursor: "c1"})
	repo.setPage("", "c1", page{err: errors.New("fail")})
	m := New[member](repo, zaptest.NewLogger(t), Options{})

	updates, unsubscribe := m.Subscribe()
	var seen []pagination.State[member]
	done := make(chan struct{})
	go func() {
		defer close(done)
		for st := range updates {
			seen = append(seen, st)
		}
	}()

	m.LoadInitialList()
	waitIdle(t, m)
	m.LoadNextPage()
	waitIdle(t, m)
	unsubscribe()
	<-done

	require.NotEmpty(t, seen)
	for _, st := range seen {
		flags := 0
		for _, f := range []bool{st.IsInitialLoading, st.IsLoadingNextPage, st.IsSearching} {
			if f {
				flags++
			}
		}
		assert.LessOrEqual(t, flags, 1)
		if st.Error != "" {
			assert.Zero(t, flags)
		}
	}
	assert.Equal(t, "fail", seen[len(seen)-1].Error)

	m.Close()
}

func TestListModel_CloseCancelsPendingWork(t *testing.T) {
	repo := newFakeRepo()
	m := New[member](repo, zaptest.NewLogger(t), Options{DebounceDelay: 20 * time.Millisecond})

	updates, _ := m.Subscribe()
	m.UpdateSearchQuery("late")
	m.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, repo.recorded())

	for range updates {
	}

	m.LoadInitialList()
	m.UpdateSearchQuery("again")
	assert.Empty(t, repo.recorded())
}

func TestListModel_ViewportPageSize(t *testing.T) {
	repo := newFakeRepo()
	m := newModel(t, repo, Options{})

	m.SetViewportWidth(700)
	assert.Equal(t, 25, m.PageSize())

	m.LoadInitialList()
	waitIdle(t, m)
	assert.Equal(t, 25, repo.recorded()[0].pageSize)
}

func TestFetchKind_String(t *testing.T) {
	assert.Equal(t, "browse", kindBrowse.String())
	assert.True(t, strings.EqualFold("SEARCH", kindSearch.String()))
}
