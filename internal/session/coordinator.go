// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session owns the live search: the current query, its results,
// and the pagination derived from them. It is the only component that calls
// the gateway, and it applies a response only while the query that produced
// it is still current.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/optoscholar/internal/observability"
	"github.com/pdiddy/optoscholar/pkg/types"
)

// FailureMessage is shown to the user when a search fails.
const FailureMessage = "Unable to connect to clinical index."

var (
	// ErrEmptyTerm is returned for a blank search term; no request is made.
	ErrEmptyTerm = errors.New("search term is empty")

	// ErrPageOutOfRange is returned by ChangePage for a page outside
	// 1..TotalPages.
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrSuperseded is returned by Submit when a newer query replaced this
	// one before its response arrived. The response was discarded.
	ErrSuperseded = errors.New("superseded by a newer query")
)

// suggestionTimeout bounds a background spelling lookup.
var suggestionTimeout = 10 * time.Second

// Gateway is the citation index as seen by the coordinator.
type Gateway interface {
	Search(ctx context.Context, q types.SearchQuery, pageSize int) (types.SearchResultPage, error)
	FetchSummaries(ctx context.Context, ids []string) ([]types.ArticleRecord, error)
	SuggestCorrection(ctx context.Context, term string) (string, bool)
}

// Status is the coordinator's state machine position.
type Status int

const (
	Idle Status = iota
	Searching
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// State is a snapshot of the session. Slices are shared with the
// coordinator and must not be modified.
type State struct {
	Status Status
	Query  types.SearchQuery

	// Items is empty unless Status is Ready.
	Items      []types.ArticleRecord
	TotalCount int
	TotalPages int

	// Suggestion is a spelling correction for Query.Term, or "".
	Suggestion string

	// Message is the user-facing error text when Status is Failed; Err is
	// the underlying cause.
	Message string
	Err     error

	// RequestID identifies the request that produced this state in logs.
	RequestID string
}

// LastPageEnabled reports whether the last-page shortcut is usable.
func (s State) LastPageEnabled() bool {
	return LastPageEnabled(s.TotalPages, s.Query.Page)
}

// Options configures a Coordinator.
type Options struct {
	// PageSize is the number of results per page (default 10).
	PageSize int

	// Saved reports whether an article is in the library. Optional.
	Saved func(id string) bool

	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// Coordinator sequences searches against a Gateway. Overlapping Submits are
// allowed; the latest one wins and earlier responses are discarded when
// they arrive. It is safe for concurrent use.
type Coordinator struct {
	gw       Gateway
	pageSize int
	saved    func(string) bool
	logger   *zap.Logger
	metrics  *observability.Metrics

	mu        sync.Mutex
	state     State
	gen       uint64
	lastTotal int
	subs      map[int]func(State)
	nextSub   int

	// Delivery of state changes to subscribers. One goroutine at a time
	// delivers; pending holds the newest undelivered state.
	pending    State
	hasPending bool
	delivering bool

	// lookups counts running suggestion goroutines. idle is signalled when
	// lookups drops or a delivery run ends.
	lookups int
	idle    *sync.Cond
}

// New returns an idle Coordinator.
func New(gw Gateway, opts Options) *Coordinator {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	saved := opts.Saved
	if saved == nil {
		saved = func(string) bool { return false }
	}
	c := &Coordinator{
		gw:       gw,
		pageSize: opts.PageSize,
		saved:    saved,
		logger:   observability.OrNop(opts.Logger).With(zap.String("component", "session")),
		metrics:  opts.Metrics,
		subs:     make(map[int]func(State)),
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// PageSize returns the fixed page size.
func (c *Coordinator) PageSize() int { return c.pageSize }

// Saved reports whether id is in the library.
func (c *Coordinator) Saved(id string) bool { return c.saved(id) }

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive state changes. Callbacks run outside the
// coordinator's lock, one state at a time and in the order the changes
// happened, so a subscriber never sees a state older than one it has
// already seen. While a callback runs, newer changes are coalesced and only
// the latest is delivered next, possibly on another goroutine. Callbacks
// may call back into the coordinator but must not call Wait. The returned
// func unregisters fn.
func (c *Coordinator) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Wait blocks until background suggestion lookups have finished and every
// state change has been delivered to subscribers.
func (c *Coordinator) Wait() {
	c.mu.Lock()
	for c.lookups > 0 || c.delivering {
		c.idle.Wait()
	}
	c.mu.Unlock()
}

// Submit makes q the current query and runs it. If a query is already
// current, changing anything but the page resets the page to 1. Submit
// returns once the response is applied or discarded: nil on success, the
// gateway error on failure (the state is then Failed), or ErrSuperseded
// when a newer Submit replaced q first.
func (c *Coordinator) Submit(ctx context.Context, q types.SearchQuery) error {
	if strings.TrimSpace(q.Term) == "" {
		return ErrEmptyTerm
	}
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	c.mu.Lock()
	if cur := c.state.Query; cur.Term != "" && !q.SameFilters(cur) {
		q.Page = 1
	}
	if !q.SameFilters(c.state.Query) {
		// The last total belongs to other filters.
		c.lastTotal = 0
	}
	c.gen++
	gen := c.gen
	reqID := uuid.NewString()
	c.state = State{Status: Searching, Query: q, RequestID: reqID}
	c.unlockAndNotify()

	log := c.logger.With(zap.String("request_id", reqID), zap.String("term", q.Term), zap.Int("page", q.Page))
	log.Debug("search started")

	page, err := c.gw.Search(ctx, q, c.pageSize)
	if err != nil {
		return c.fail(gen, q, reqID, err, log)
	}

	items := []types.ArticleRecord{}
	if len(page.IDs) > 0 {
		if !c.current(gen, q) {
			return c.discard(log)
		}
		items, err = c.gw.FetchSummaries(ctx, page.IDs)
		if err != nil {
			return c.fail(gen, q, reqID, err, log)
		}
	}

	c.mu.Lock()
	if c.gen != gen || c.state.Query != q {
		c.mu.Unlock()
		return c.discard(log)
	}
	c.lastTotal = page.TotalCount
	c.state = State{
		Status:     Ready,
		Query:      q,
		Items:      items,
		TotalCount: page.TotalCount,
		TotalPages: TotalPages(page.TotalCount, c.pageSize),
		RequestID:  reqID,
	}
	c.unlockAndNotify()
	log.Debug("search ready", zap.Int("total", page.TotalCount), zap.Int("items", len(items)))

	if q.Page == 1 {
		c.mu.Lock()
		c.lookups++
		c.mu.Unlock()
		go c.suggest(context.WithoutCancel(ctx), gen, q, log)
	}
	return nil
}

// ChangePage re-runs the current query on page n. It rejects n outside
// 1..TotalPages of the last successful result.
func (c *Coordinator) ChangePage(ctx context.Context, n int) error {
	c.mu.Lock()
	q := c.state.Query
	tp := TotalPages(c.lastTotal, c.pageSize)
	c.mu.Unlock()

	if q.Term == "" {
		return ErrEmptyTerm
	}
	if n < 1 || n > tp {
		return fmt.Errorf("%w: %d not in 1..%d", ErrPageOutOfRange, n, tp)
	}
	return c.Submit(ctx, q.WithPage(n))
}

// Retry re-runs the current query unchanged.
func (c *Coordinator) Retry(ctx context.Context) error {
	return c.Submit(ctx, c.Snapshot().Query)
}

// DismissSuggestion clears the spelling suggestion.
func (c *Coordinator) DismissSuggestion() {
	c.mu.Lock()
	if c.state.Suggestion == "" {
		c.mu.Unlock()
		return
	}
	c.state.Suggestion = ""
	c.unlockAndNotify()
}

func (c *Coordinator) suggest(ctx context.Context, gen uint64, q types.SearchQuery, log *zap.Logger) {
	defer func() {
		c.mu.Lock()
		c.lookups--
		c.idle.Broadcast()
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, suggestionTimeout)
	defer cancel()

	s, ok := c.gw.SuggestCorrection(ctx, q.Term)
	if !ok || s == "" || strings.EqualFold(s, strings.TrimSpace(q.Term)) {
		return
	}

	c.mu.Lock()
	if c.gen != gen || c.state.Query != q || c.state.Status != Ready {
		c.mu.Unlock()
		return
	}
	c.state.Suggestion = s
	c.unlockAndNotify()
	log.Debug("suggestion available", zap.String("suggestion", s))
}

func (c *Coordinator) current(gen uint64, q types.SearchQuery) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen && c.state.Query == q
}

func (c *Coordinator) fail(gen uint64, q types.SearchQuery, reqID string, err error, log *zap.Logger) error {
	c.mu.Lock()
	if c.gen != gen || c.state.Query != q {
		c.mu.Unlock()
		return c.discard(log)
	}
	c.state = State{
		Status:    Failed,
		Query:     q,
		Items:     nil,
		Message:   FailureMessage,
		Err:       err,
		RequestID: reqID,
	}
	c.unlockAndNotify()
	log.Warn("search failed", zap.Error(err))
	return err
}

func (c *Coordinator) discard(log *zap.Logger) error {
	c.metrics.IncStale()
	log.Debug("discarding stale response")
	return ErrSuperseded
}

// unlockAndNotify publishes the current state to subscribers and releases
// c.mu, which the caller must hold. If another goroutine is delivering, it
// picks the state up after its current callbacks return; otherwise the
// caller delivers until nothing is pending.
func (c *Coordinator) unlockAndNotify() {
	c.pending, c.hasPending = c.state, true
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	for c.hasPending {
		s := c.pending
		c.hasPending = false
		subs := make([]func(State), 0, len(c.subs))
		for _, fn := range c.subs {
			subs = append(subs, fn)
		}
		c.mu.Unlock()
		for _, fn := range subs {
			fn(s)
		}
		c.mu.Lock()
	}
	c.delivering = false
	c.idle.Broadcast()
	c.mu.Unlock()
}
