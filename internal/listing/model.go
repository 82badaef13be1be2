// Package listing implements the list view model: the single owner of a
// paged, searchable list's state, driven by presentation events and fed by a
// pagination.Repository.
package listing

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"samaj-directory/pkg/debounce"
	"samaj-directory/pkg/pagination"
)

const (
	// DefaultPageSize is used when Options.PageSize is not set.
	DefaultPageSize = 30
	// DefaultDebounceDelay is the quiet period applied to search input.
	DefaultDebounceDelay = 500 * time.Millisecond
)

// Options configures a ListModel.
type Options struct {
	PageSize      int
	DebounceDelay time.Duration
	// Filter is passed verbatim to Repository.GetItemsPaginated.
	Filter any
	// Store and StoreKey enable snapshot preservation across Close/New.
	Store    *SnapshotStore
	StoreKey string
}

type fetchKind int

const (
	kindBrowse fetchKind = iota
	kindSearch
)

func (k fetchKind) String() string {
	if k == kindSearch {
		return "search"
	}
	return "browse"
}

type request struct {
	kind     fetchKind
	term     string
	reset    bool
	pageSize int
	cursor   string
	filter   any
	gen      uint64
	ctx      context.Context
}

// ListModel is the list view model for one entity type.
//
// All mutations happen under one mutex. Every reset, search or query change
// starts a new generation; results that arrive for an older generation are
// dropped.
type ListModel[T pagination.Keyed] struct {
	repo      pagination.Repository[T]
	log       *zap.Logger
	debouncer *debounce.Debouncer
	store     *SnapshotStore
	storeKey  string

	mu           sync.Mutex
	state        pagination.State[T]
	query        string
	filter       any
	pageSize     int
	walkPageSize int
	gen          uint64
	genCtx       context.Context
	genCancel    context.CancelFunc
	preserve     bool
	closed       bool
	subs         map[int]chan pagination.State[T]
	nextSubID    int
	wg           sync.WaitGroup
}

// New creates a ListModel. When opts carries a store holding a fresh snapshot
// for opts.StoreKey, the snapshot is restored and the next LoadInitialList
// does not fetch.
func New[T pagination.Keyed](repo pagination.Repository[T], log *zap.Logger, opts Options) *ListModel[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = DefaultDebounceDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &ListModel[T]{
		repo:         repo,
		log:          log,
		debouncer:    debounce.New(opts.DebounceDelay),
		store:        opts.Store,
		storeKey:     opts.StoreKey,
		filter:       opts.Filter,
		pageSize:     opts.PageSize,
		walkPageSize: opts.PageSize,
		genCtx:       ctx,
		genCancel:    cancel,
		subs:         make(map[int]chan pagination.State[T]),
	}

	if opts.Store != nil && opts.StoreKey != "" {
		if snap, ok := Restore[T](opts.Store, opts.StoreKey); ok {
			m.preserveLocked(snap)
			log.Debug("list snapshot restored",
				zap.String("key", opts.StoreKey),
				zap.Int("items", len(snap.State.Items)),
			)
		}
	}

	return m
}

// State returns the current snapshot.
func (m *ListModel[T]) State() pagination.State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Query returns the raw, uncommitted search input.
func (m *ListModel[T]) Query() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.query
}

// Filter returns the browse filter in effect.
func (m *ListModel[T]) Filter() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}

// PageSize returns the page size used by new page walks.
func (m *ListModel[T]) PageSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pageSize
}

// SetViewportWidth adapts the page size of future walks to the viewport.
func (m *ListModel[T]) SetViewportWidth(widthDp int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageSize = pagination.CalculatePageSize(widthDp)
}

// Subscribe returns a channel receiving every published snapshot. Delivery is
// latest-wins: a slow reader sees the newest snapshot, not every one. The
// returned func unsubscribes and closes the channel.
func (m *ListModel[T]) Subscribe() (<-chan pagination.State[T], func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan pagination.State[T], 1)
	if m.closed {
		close(ch)
		return ch, func() {}
	}

	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = ch
	ch <- m.state.Clone()

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
}

// LoadInitialList starts the first page walk, unless a preserved snapshot is
// being shown, in which case it only consumes the preservation flag.
func (m *ListModel[T]) LoadInitialList() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.preserve {
		m.preserve = false
		if len(m.state.Items) > 0 {
			m.publishLocked()
			m.mu.Unlock()
			return
		}
	}
	m.mu.Unlock()

	m.LoadItemsPaginated(true)
}

// LoadItemsPaginated loads the next page. With reset the list starts over
// from the first page of the browse (no search term). Without reset the
// current walk continues in the mode it started in, so a search walk fetches
// its next search page. Continuing is a no-op once the last page was reached
// or while a fetch is in flight.
func (m *ListModel[T]) LoadItemsPaginated(reset bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	var req request
	switch {
	case reset:
		req = m.beginLocked(kindBrowse, "", true, m.pageSize)
	case !m.canContinueLocked():
		m.mu.Unlock()
		return
	case m.state.CurrentSearchTerm != "":
		// a walk always continues with the kind it started with
		req = m.beginLocked(kindSearch, m.state.CurrentSearchTerm, false, m.walkPageSize)
	default:
		req = m.beginLocked(kindBrowse, "", false, m.walkPageSize)
	}
	m.mu.Unlock()

	m.dispatch(req)
}

// SearchItemsPaginated searches for term. A non-positive pageSize uses the
// model's page size. Continuing (reset false) is only honoured for the term
// of the current walk. A blank term falls back to browsing.
func (m *ListModel[T]) SearchItemsPaginated(term string, pageSize int, reset bool) {
	term = strings.TrimSpace(term)
	if term == "" {
		if reset {
			m.LoadItemsPaginated(true)
		}
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if pageSize <= 0 {
		pageSize = m.pageSize
	}

	var req request
	if reset {
		req = m.beginLocked(kindSearch, term, true, pageSize)
	} else {
		if !m.canContinueLocked() || term != m.state.CurrentSearchTerm {
			m.mu.Unlock()
			return
		}
		req = m.beginLocked(kindSearch, term, false, m.walkPageSize)
	}
	m.mu.Unlock()

	m.dispatch(req)
}

// LoadNextPage fetches the page after the current end cursor. It is rejected,
// not queued, while another fetch is running or after the last page.
func (m *ListModel[T]) LoadNextPage() {
	m.mu.Lock()
	if m.closed || !m.canContinueLocked() {
		m.mu.Unlock()
		return
	}

	kind := kindBrowse
	if m.state.CurrentSearchTerm != "" {
		kind = kindSearch
	}
	req := m.beginLocked(kind, m.state.CurrentSearchTerm, false, m.walkPageSize)
	m.mu.Unlock()

	m.dispatch(req)
}

// RetryLoad re-issues the last request. With no items on screen the walk
// starts over; otherwise the failed page is fetched again.
func (m *ListModel[T]) RetryLoad() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	m.state.ShowRetryButton = false
	reset := len(m.state.Items) == 0
	kind := kindBrowse
	if m.state.CurrentSearchTerm != "" {
		kind = kindSearch
	}

	if !reset && !m.canContinueLocked() {
		m.publishLocked()
		m.mu.Unlock()
		return
	}

	pageSize := m.walkPageSize
	if reset {
		pageSize = m.pageSize
	}
	req := m.beginLocked(kind, m.state.CurrentSearchTerm, reset, pageSize)
	m.mu.Unlock()

	m.log.Info("retrying list load",
		zap.String("kind", kind.String()),
		zap.Bool("reset", reset),
	)
	m.dispatch(req)
}

// UpdateSearchQuery records raw search input. The list is marked as searching
// at once and any in-flight fetch is superseded; the search itself is
// committed after the debounce quiet period. A blank query resets to the
// browse list immediately.
func (m *ListModel[T]) UpdateSearchQuery(q string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	m.query = q
	m.invalidateLocked()
	m.state.IsInitialLoading = false
	m.state.IsLoadingNextPage = false
	m.state.IsSearching = true
	m.state.Error = ""
	m.state.ShowRetryButton = false
	m.publishLocked()
	m.mu.Unlock()

	trimmed := strings.TrimSpace(q)
	if trimmed == "" {
		m.debouncer.Flush(func() { m.LoadItemsPaginated(true) })
		return
	}
	m.debouncer.Trigger(func() { m.SearchItemsPaginated(trimmed, 0, true) })
}

// SetFilter replaces the browse filter and reloads from the first page.
func (m *ListModel[T]) SetFilter(filter any) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.filter = filter
	m.query = ""
	m.mu.Unlock()

	m.debouncer.Cancel()
	m.LoadItemsPaginated(true)
}

// ClearFilters drops the filter and the search input and reloads.
func (m *ListModel[T]) ClearFilters() {
	m.SetFilter(nil)
}

// PreservePagination shows snap instead of fetching on the next
// LoadInitialList.
func (m *ListModel[T]) PreservePagination(snap Snapshot[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.invalidateLocked()
	m.preserveLocked(snap)
	m.publishLocked()
}

// Snapshot returns the state worth preserving when the screen goes away.
func (m *ListModel[T]) Snapshot() Snapshot[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Close cancels the pending search and any in-flight fetch, saves a snapshot
// when a store is configured and closes all subscriber channels. It waits for
// outstanding fetch goroutines to finish.
func (m *ListModel[T]) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.invalidateLocked()
	m.genCancel()

	if m.store != nil && m.storeKey != "" {
		if len(m.state.Items) > 0 {
			m.store.Save(m.storeKey, m.snapshotLocked())
		} else {
			m.store.Clear(m.storeKey)
		}
	}

	subs := m.subs
	m.subs = nil
	m.mu.Unlock()

	m.debouncer.Stop()
	m.wg.Wait()

	for _, ch := range subs {
		close(ch)
	}
}

func (m *ListModel[T]) canContinueLocked() bool {
	return m.state.HasNextPage && !m.state.IsLoading()
}

// invalidateLocked starts a new generation and cancels the previous one.
func (m *ListModel[T]) invalidateLocked() {
	m.gen++
	m.genCancel()
	m.genCtx, m.genCancel = context.WithCancel(context.Background())
}

func (m *ListModel[T]) beginLocked(kind fetchKind, term string, reset bool, pageSize int) request {
	if reset {
		m.invalidateLocked()
		fresh := pagination.State[T]{CurrentSearchTerm: term}
		if kind == kindSearch {
			fresh.IsSearching = true
		} else {
			fresh.IsInitialLoading = true
		}
		m.state = fresh
		m.walkPageSize = pageSize
	} else {
		m.state.IsLoadingNextPage = true
		m.state.Error = ""
		m.state.ShowRetryButton = false
	}

	req := request{
		kind:     kind,
		term:     term,
		reset:    reset,
		pageSize: pageSize,
		filter:   m.filter,
		gen:      m.gen,
		ctx:      m.genCtx,
	}
	if !reset {
		req.cursor = m.state.EndCursor
	}

	m.wg.Add(1)
	m.publishLocked()
	return req
}

// dispatch asks the repository for the page described by req and consumes
// the stream on a new goroutine. beginLocked already accounted for it in wg.
func (m *ListModel[T]) dispatch(req request) {
	m.log.Debug("fetching page",
		zap.String("kind", req.kind.String()),
		zap.String("term", req.term),
		zap.Bool("reset", req.reset),
		zap.Int("page_size", req.pageSize),
		zap.Uint64("generation", req.gen),
	)

	var ch <-chan pagination.Result[T]
	if req.kind == kindSearch {
		ch = m.repo.SearchItemsPaginated(req.ctx, req.term, req.pageSize, req.cursor)
	} else {
		ch = m.repo.GetItemsPaginated(req.ctx, req.pageSize, req.cursor, req.filter)
	}

	go func() {
		defer m.wg.Done()
		for res := range ch {
			m.apply(req, res)
		}
	}()
}

func (m *ListModel[T]) apply(req request, res pagination.Result[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || req.gen != m.gen {
		m.log.Debug("dropping stale page result",
			zap.Uint64("generation", req.gen),
			zap.Uint64("current_generation", m.gen),
		)
		return
	}

	switch r := res.(type) {
	case pagination.Loading[T]:
		// flags were set when the request began
		return
	case pagination.Success[T]:
		base := m.state.Items
		if req.reset {
			base = nil
		}
		m.state.Items = pagination.MergeUnique(base, r.Data)
		m.state.HasNextPage = r.HasNextPage
		m.state.EndCursor = r.EndCursor
		m.state.HasReachedEnd = !r.HasNextPage
		m.state.Error = ""
		m.state.ShowRetryButton = false
	case pagination.Failure[T]:
		msg := r.Message
		if msg == "" {
			msg = "failed to load items"
		}
		m.state.Error = msg
		m.state.ShowRetryButton = true
		m.log.Warn("page load failed",
			zap.String("kind", req.kind.String()),
			zap.Bool("reset", req.reset),
			zap.String("error", msg),
		)
	default:
		return
	}

	m.state.IsInitialLoading = false
	m.state.IsLoadingNextPage = false
	m.state.IsSearching = false
	m.publishLocked()
}

func (m *ListModel[T]) preserveLocked(snap Snapshot[T]) {
	st := snap.State.Clone()
	st.IsInitialLoading = false
	st.IsLoadingNextPage = false
	st.IsSearching = false
	m.state = st
	m.query = snap.Query
	m.filter = snap.Filter
	m.preserve = true
}

func (m *ListModel[T]) snapshotLocked() Snapshot[T] {
	st := m.state.Clone()
	st.IsInitialLoading = false
	st.IsLoadingNextPage = false
	st.IsSearching = false
	return Snapshot[T]{
		State:   st,
		Query:   m.query,
		Filter:  m.filter,
		SavedAt: time.Now(),
	}
}

// publishLocked hands the current snapshot to every subscriber, replacing an
// unread older snapshot if necessary.
func (m *ListModel[T]) publishLocked() {
	if len(m.subs) == 0 {
		return
	}
	snap := m.state.Clone()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
