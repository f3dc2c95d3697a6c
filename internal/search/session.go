package search

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/schoolwatch/vtrack/internal/bus"
	"github.com/schoolwatch/vtrack/internal/status"
	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before suggestions are requested.
const DefaultDebounce = 300 * time.Millisecond

// Option configures a Session.
type Option func(*Session)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounce = d }
}

// WithTimeout bounds every backend call; expiry counts as a network failure.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithType sets the initial search type.
func WithType(t Type) Option {
	return func(s *Session) { s.snap.Type = t }
}

// WithBus publishes state changes and failures on b.
func WithBus(b *bus.Bus) Option {
	return func(s *Session) { s.bus = b }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithDiscardStale controls whether a suggestion response older than the
// latest dispatched fetch is dropped. When false, the last response to
// arrive wins.
func WithDiscardStale(discard bool) Option {
	return func(s *Session) { s.discardStale = discard }
}

// Session owns the state of one search screen. Methods are safe for
// concurrent use; Submit and SelectSuggestion block until the search ends.
type Session struct {
	mu   sync.Mutex
	snap Snapshot

	debounce     time.Duration
	timeout      time.Duration
	discardStale bool

	debouncer *Debouncer
	fetcher   *SuggestionFetcher
	executor  *Executor
	machine   *status.Machine
	bus       *bus.Bus
	logger    *zap.Logger

	// generation changes on every type toggle; responses from an older
	// generation are discarded.
	generation uint64
	suggestSeq uint64
	searchSeq  uint64
	// dispatch changes whenever a scheduled suggestion fetch is superseded.
	// A timer callback that already fired checks it before starting.
	dispatch uint64

	suggestInFlight int
	searchInFlight  int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession creates an empty session backed by backend.
func NewSession(backend Backend, opts ...Option) *Session {
	s := &Session{
		debounce:     DefaultDebounce,
		discardStale: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.debouncer = NewDebouncer(s.debounce)
	s.fetcher = NewSuggestionFetcher(backend, s.timeout, s.logger)
	s.executor = NewExecutor(backend, s.timeout, s.logger)
	s.machine = status.NewMachine(s.bus)
	s.snap.State = status.Idle
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Query returns the current query text.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Query
}

// Type returns the current search type.
func (s *Session) Type() Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Type
}

// OnTextChanged records a keystroke. Text shorter than MinSuggestLength
// clears the suggestion panel; anything longer (re)starts the debounce timer.
func (s *Session) OnTextChanged(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textChangedLocked(text)
}

func (s *Session) textChangedLocked(text string) {
	s.snap.Query = text
	s.dispatch++

	if utf8.RuneCountInString(text) < MinSuggestLength {
		s.debouncer.Cancel()
		s.snap.Suggestions = nil
		s.snap.ShowingSuggestions = false
		if s.discardStale {
			s.suggestSeq++
		}
		if s.machine.Current() == status.Suggesting {
			_ = s.machine.Transition(status.Idle)
		}
		s.publishLocked()
		return
	}

	if s.machine.CanTransition(status.Suggesting) {
		_ = s.machine.Transition(status.Suggesting)
	}
	gen, typ, dispatch := s.generation, s.snap.Type, s.dispatch
	s.debouncer.Schedule(func() { s.fetchSuggestions(text, typ, gen, dispatch) })
	s.publishLocked()
}

func (s *Session) fetchSuggestions(text string, typ Type, gen, dispatch uint64) {
	s.mu.Lock()
	if gen != s.generation || dispatch != s.dispatch || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.suggestSeq++
	seq, searches := s.suggestSeq, s.searchSeq
	s.suggestInFlight++
	s.snap.FetchingSuggestions = true
	s.snap.ShowingSuggestions = true
	s.publishLocked()
	s.mu.Unlock()

	list, err := s.fetcher.Fetch(s.ctx, text, typ)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.suggestInFlight--
		s.snap.FetchingSuggestions = s.suggestInFlight > 0
	}

	// A search started since, or text now below the threshold, always wins
	// over this response.
	stale := gen != s.generation ||
		searches != s.searchSeq ||
		utf8.RuneCountInString(s.snap.Query) < MinSuggestLength ||
		(s.discardStale && seq != s.suggestSeq)
	if stale {
		s.logger.Debug("dropping stale suggestions", zap.String("query", text))
		s.snap.ShowingSuggestions = s.snap.ShowingSuggestions &&
			(len(s.snap.Suggestions) > 0 || s.snap.FetchingSuggestions)
		if gen == s.generation {
			s.publishLocked()
		}
		return
	}

	if err != nil {
		s.snap.Suggestions = nil
		s.snap.ShowingSuggestions = false
		if s.machine.Current() == status.Suggesting {
			_ = s.machine.Transition(status.Idle)
		}
		s.emit(bus.SuggestionsFailed, Failure{Query: text, Type: typ, Message: err.Error(), Err: err})
		s.publishLocked()
		return
	}

	s.snap.Suggestions = list
	s.snap.ShowingSuggestions = len(list) > 0
	s.publishLocked()
}

// Submit searches for the current query text. Blank text is ignored.
func (s *Session) Submit(ctx context.Context) {
	s.runSearch(ctx, s.Query())
}

// SelectSuggestion replaces the query text with suggestion and searches for it.
func (s *Session) SelectSuggestion(ctx context.Context, suggestion string) {
	if strings.TrimSpace(suggestion) == "" {
		return
	}
	s.mu.Lock()
	s.snap.Query = suggestion
	s.mu.Unlock()
	s.runSearch(ctx, suggestion)
}

func (s *Session) runSearch(ctx context.Context, query string) {
	if strings.TrimSpace(query) == "" {
		return
	}

	s.mu.Lock()
	gen, seq, typ := s.startSearchLocked()
	s.mu.Unlock()

	defer s.endSearch(gen)

	results, err := s.executor.Execute(ctx, query, typ)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || seq != s.searchSeq {
		return
	}
	if err != nil {
		msg := UserMessage(err)
		s.snap.Results = nil
		s.snap.LastError = msg
		if s.machine.CanTransition(status.Error) {
			_ = s.machine.Transition(status.Error)
		}
		s.emit(bus.SearchFailed, Failure{Query: query, Type: typ, Message: msg, Err: err})
		return
	}
	s.snap.Results = results
	s.snap.LastError = ""
	if s.machine.CanTransition(status.Results) {
		_ = s.machine.Transition(status.Results)
	}
}

// startSearchLocked supersedes any scheduled or in-flight suggestion work
// and marks a search as running.
func (s *Session) startSearchLocked() (gen, seq uint64, typ Type) {
	s.debouncer.Cancel()
	s.dispatch++
	if s.discardStale {
		s.suggestSeq++
	}
	s.snap.ShowingSuggestions = false
	s.snap.Searching = true
	s.searchInFlight++
	s.searchSeq++
	if s.machine.CanTransition(status.Searching) {
		_ = s.machine.Transition(status.Searching)
	}
	s.publishLocked()
	return s.generation, s.searchSeq, s.snap.Type
}

// endSearch runs on every exit path of runSearch, including panics from the
// backend. Searches from before a toggle were already written off by it.
func (s *Session) endSearch(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	s.searchInFlight--
	s.snap.Searching = s.searchInFlight > 0
	s.publishLocked()
}

// ToggleSearchType flips between name and violation-type search and clears
// all query, suggestion and result state.
func (s *Session) ToggleSearchType() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.debouncer.Cancel()
	s.generation++
	s.dispatch++
	s.suggestInFlight = 0
	s.searchInFlight = 0
	s.snap.Type = s.snap.Type.Toggle()
	s.snap.Query = ""
	s.snap.Suggestions = nil
	s.snap.ShowingSuggestions = false
	s.snap.FetchingSuggestions = false
	s.snap.Searching = false
	s.snap.Results = nil
	s.snap.LastError = ""
	s.machine.Reset()
	s.publishLocked()
}

// Close cancels the pending debounce and aborts in-flight suggestion fetches.
func (s *Session) Close() {
	s.mu.Lock()
	s.dispatch++
	s.mu.Unlock()
	s.debouncer.Cancel()
	s.cancel()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := s.snap.clone()
	snap.State = s.machine.Current()
	return snap
}

func (s *Session) publishLocked() {
	s.emit(bus.SearchChanged, s.snapshotLocked())
}

func (s *Session) emit(kind string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(bus.Event{Kind: kind, Payload: payload})
}

// Results is a convenience accessor for the last search results.
func (s *Session) Results() []wire.Violation {
	return s.Snapshot().Results
}
