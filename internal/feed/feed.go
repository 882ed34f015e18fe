// Package feed holds the posts page state: the friends/my filter toggle and
// a loader that keeps only the newest response.
package feed

import (
	"context"
	"sync"

	"github.com/claude/drgym/internal/models"
)

// Filter selects whose posts the page lists.
type Filter = models.FeedFilter

const (
	Friends = models.FeedFriends
	Mine    = models.FeedMine
)

// ParseFilter parses a filter name; the empty string means Friends.
func ParseFilter(s string) (Filter, error) {
	return models.ParseFeedFilter(s)
}

// Page is the posts page state. The filter starts at Friends.
type Page struct {
	filter   Filter
	onChange func(Filter)
}

// NewPage returns a page whose filter changes are reported to onChange.
func NewPage(onChange func(Filter)) *Page {
	return &Page{filter: Friends, onChange: onChange}
}

func (p *Page) Filter() Filter { return p.filter }

// Select sets the filter from a toggle option: "my" selects Mine, anything
// else selects Friends. onChange fires only when the filter changes.
func (p *Page) Select(option string) {
	next := Friends
	if Filter(option) == Mine {
		next = Mine
	}
	if next == p.filter {
		return
	}
	p.filter = next
	if p.onChange != nil {
		p.onChange(next)
	}
}

// PostLister fetches the posts of a feed.
type PostLister interface {
	ListFeed(ctx context.Context, username string, filter Filter) ([]models.Post, error)
}

// Result is the outcome of the latest completed fetch.
type Result struct {
	Filter Filter
	Posts  []models.Post
	Err    error
}

// Loader fetches feeds and discards responses from superseded fetches.
// Safe for concurrent use.
type Loader struct {
	lister PostLister

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	current Result
	loading bool
}

func NewLoader(l PostLister) *Loader {
	return &Loader{lister: l}
}

// Load fetches the feed for (username, filter). Starting a new Load cancels
// the context of the previous one. The result is stored only if no newer
// Load started meanwhile; the return value reports whether it was.
func (l *Loader) Load(ctx context.Context, username string, filter Filter) (Result, bool) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.loading = true
	l.mu.Unlock()

	posts, err := l.lister.ListFeed(ctx, username, filter)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		cancel()
		return Result{}, false
	}
	cancel()
	l.cancel = nil
	l.loading = false
	l.current = Result{Filter: filter, Posts: posts, Err: err}
	return l.current, true
}

// Current returns the newest stored result.
func (l *Loader) Current() Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Loading reports whether the newest fetch is still in flight.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}
