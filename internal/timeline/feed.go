package timeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skillang/leadg-crm/internal/domain"
	"github.com/skillang/leadg-crm/internal/pkg/logger"
)

// Source fetches one timeline page for a lead. Fetches must be
// idempotent: the feed may issue the same query more than once.
type Source func(ctx context.Context, leadID string, state FilterState) (*domain.TimelinePage, error)

// FeedOptions tune a Feed.
type FeedOptions struct {
	// SearchDebounce delays a search-driven fetch until the text has
	// been stable this long. nil means DefaultSearchDebounce; an
	// explicit 0 disables debouncing so every keystroke fetches.
	SearchDebounce *time.Duration
}

// DefaultSearchDebounce is used when FeedOptions leaves it unset.
const DefaultSearchDebounce = 500 * time.Millisecond

// Feed drives a Source from a FilterState. Every fetch carries a
// monotonically increasing sequence number; a response whose sequence
// is no longer the latest is discarded, making "last request wins"
// explicit instead of accidental.
type Feed struct {
	source  Source
	leadID  string
	onPage  func(*domain.TimelinePage)
	onError func(error)

	mu          sync.Mutex
	state       FilterState
	seq         atomic.Uint64
	debounce    time.Duration
	searchTimer *time.Timer
}

// NewFeed builds a feed for one lead. onPage receives every page that
// is still current when its fetch completes; onError likewise for
// failures. Neither is called for superseded fetches.
func NewFeed(source Source, leadID string, onPage func(*domain.TimelinePage), onError func(error), opts FeedOptions) *Feed {
	debounce := DefaultSearchDebounce
	if opts.SearchDebounce != nil {
		debounce = *opts.SearchDebounce
	}
	if debounce < 0 {
		debounce = 0
	}
	return &Feed{
		source:   source,
		leadID:   leadID,
		onPage:   onPage,
		onError:  onError,
		state:    NewFilterState(),
		debounce: debounce,
	}
}

// State returns the current filter state.
func (f *Feed) State() FilterState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Load triggers the initial fetch for the current state.
func (f *Feed) Load(ctx context.Context) {
	f.mu.Lock()
	state := f.state
	f.mu.Unlock()
	f.fetch(ctx, state)
}

// SetSearch updates the search text. The fetch fires after the
// debounce interval unless the text changes again first; the state
// itself (and the page reset) applies immediately.
func (f *Feed) SetSearch(ctx context.Context, q string) {
	f.mu.Lock()
	f.state = f.state.SetSearch(q)
	state := f.state
	if f.searchTimer != nil {
		f.searchTimer.Stop()
	}
	if f.debounce <= 0 {
		f.mu.Unlock()
		f.fetch(ctx, state)
		return
	}
	f.searchTimer = time.AfterFunc(f.debounce, func() {
		f.mu.Lock()
		current := f.state
		f.mu.Unlock()
		// Fetch whatever the state is now; a later keystroke wins.
		if current.Search == state.Search {
			f.fetch(ctx, current)
		}
	})
	f.mu.Unlock()
}

// SetFilter updates one filter field and refetches from page 1.
func (f *Feed) SetFilter(ctx context.Context, key FilterKey, value string) {
	f.mu.Lock()
	f.state = f.state.SetFilter(key, value)
	state := f.state
	f.mu.Unlock()
	f.fetch(ctx, state)
}

// SetPage changes the page and refetches; other filters are kept.
func (f *Feed) SetPage(ctx context.Context, n int) {
	f.mu.Lock()
	f.state = f.state.SetPage(n)
	state := f.state
	f.mu.Unlock()
	f.fetch(ctx, state)
}

// ClearFilters resets the state and refetches.
func (f *Feed) ClearFilters(ctx context.Context) {
	f.mu.Lock()
	f.state = f.state.ClearFilters()
	state := f.state
	f.mu.Unlock()
	f.fetch(ctx, state)
}

func (f *Feed) fetch(ctx context.Context, state FilterState) {
	seq := f.seq.Add(1)
	go func() {
		page, err := f.source(ctx, f.leadID, state)
		if f.seq.Load() != seq {
			// A newer fetch superseded this one; drop the response.
			logger.Debug("timeline fetch superseded", "lead_id", f.leadID, "key", state.Key())
			return
		}
		if err != nil {
			if f.onError != nil {
				f.onError(err)
			}
			return
		}
		if f.onPage != nil {
			f.onPage(page)
		}
	}()
}
