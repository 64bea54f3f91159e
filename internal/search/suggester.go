// Package search implements the search-as-you-type pipeline: keystrokes are
// debounced for a fixed quiet period before a suggestion fetch goes out, and
// every fetch carries a monotonically increasing sequence tag so that a
// response landing after a newer keystroke is simply discarded. Correct under
// out-of-order completion without any explicit cancellation machinery.
package search

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"cinemax/internal/catalog"
)

const (
	// queries shorter than this only clear the suggestion list
	minQueryRunes = 3
	// at most this many suggestions reach the client
	maxSuggestions = 7

	fetchTimeout = 6 * time.Second
)

// FetchFunc runs one suggestion query against the active catalog scope.
type FetchFunc func(ctx context.Context, query string) ([]catalog.Record, error)

// Result is one suggestion delivery. Records is empty both for cleared
// queries and for failed fetches; discovery is best-effort.
type Result struct {
	Query   string           `json:"query"`
	Records []catalog.Record `json:"records"`
}

// Suggester owns the debounce timer and the stale-discard sequence for one
// live search session.
type Suggester struct {
	fetch FetchFunc
	quiet time.Duration
	log   *logrus.Logger

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	closed bool

	results chan Result
}

// NewSuggester starts a suggestion session. quiet is the debounce window.
func NewSuggester(fetch FetchFunc, quiet time.Duration, log *logrus.Logger) *Suggester {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Suggester{
		fetch:   fetch,
		quiet:   quiet,
		log:     log,
		results: make(chan Result, 8),
	}
}

// Results delivers suggestion lists, newest query only.
func (s *Suggester) Results() <-chan Result {
	return s.results
}

// Update feeds one keystroke's worth of query text. A newer call within the
// quiet period supersedes the pending fetch; a newer call after the fetch
// went out invalidates its response on arrival.
func (s *Suggester) Update(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.seq++
	seq := s.seq

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if len([]rune(query)) < minQueryRunes {
		// too short to search; clear the list right away
		s.deliver(Result{Query: query, Records: []catalog.Record{}})
		return
	}

	s.timer = time.AfterFunc(s.quiet, func() {
		s.runFetch(seq, query)
	})
}

// Close stops the session and its pending timer. Results is closed so a
// draining reader terminates.
func (s *Suggester) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	close(s.results)
}

func (s *Suggester) runFetch(seq uint64, query string) {
	s.mu.Lock()
	stale := s.closed || seq != s.seq
	s.mu.Unlock()
	if stale {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	records, err := s.fetch(ctx, query)
	if err != nil {
		s.log.WithError(err).Warnf("suggestion fetch for %q failed", query)
		records = nil
	}
	if len(records) > maxSuggestions {
		records = records[:maxSuggestions]
	}
	if records == nil {
		records = []catalog.Record{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq {
		// a newer keystroke won; this response is stale
		return
	}
	s.deliver(Result{Query: query, Records: records})
}

// deliver pushes without blocking; if the reader is that far behind, the
// oldest pending result is the least interesting one.
func (s *Suggester) deliver(r Result) {
	select {
	case s.results <- r:
	default:
		select {
		case <-s.results:
		default:
		}
		select {
		case s.results <- r:
		default:
		}
	}
}
