// Package viewer tracks the (item, season, dub) triple for a long-lived
// viewer session and keeps the embed URL and the visible viewer URL
// consistent with it.
package viewer

import (
	"errors"
	"fmt"

	"cinemax/internal/catalog"
	"cinemax/internal/playback"
)

// Boundary notices are non-fatal: the transition is rejected, state is
// unchanged, and the caller surfaces the message as a toast, not an error
// page.
var (
	ErrAtFirst = errors.New("this is the first item")
	ErrAtLast  = errors.New("this is the last available item")
)

// State is the navigation state machine for one open viewer. It has no
// terminal state; it lives until the user navigates away.
type State struct {
	record  catalog.Record
	locator playback.Locator

	coords  playback.Coordinates
	loading bool

	embedURL  string
	viewerURL string
}

// NewState starts a viewer at the route-supplied coordinates and computes the
// initial embed fetch, so Loading starts true.
func NewState(locator playback.Locator, record catalog.Record, coords playback.Coordinates) *State {
	s := &State{record: record, locator: locator, coords: coords}
	s.refresh()
	return s
}

func (s *State) Coordinates() playback.Coordinates { return s.coords }
func (s *State) EmbedURL() string                  { return s.embedURL }
func (s *State) ViewerURL() string                 { return s.viewerURL }
func (s *State) Loading() bool                     { return s.loading }

// TotalItems is the known upper bound for the current season/kind; 0 when
// the provider did not report one.
func (s *State) TotalItems() int {
	return s.record.TotalItems(s.coords.Season)
}

// Advance moves the item counter by delta. Moving below 1, or past a known
// total, rejects the transition and returns the boundary notice.
func (s *State) Advance(delta int) error {
	next := s.coords.Item + delta
	if next < 1 {
		return ErrAtFirst
	}
	if total := s.TotalItems(); total > 0 && next > total {
		return ErrAtLast
	}
	s.coords.Item = next
	s.refresh()
	return nil
}

// ChangeSeason switches to season n and restarts at item 1. The reset is
// deliberate policy: episode counters never carry across seasons.
func (s *State) ChangeSeason(n int) error {
	if s.record.Kind != catalog.KindTV {
		return fmt.Errorf("season change on %s", s.record.Kind)
	}
	s.coords.Season = n
	s.coords.Item = 1
	s.refresh()
	return nil
}

// ToggleDub flips the dub flag. Only anime has dubbed embeds; for every
// other kind this is a no-op.
func (s *State) ToggleDub() {
	if s.record.Kind != catalog.KindAnime {
		return
	}
	s.coords.Dub = !s.coords.Dub
	s.refresh()
}

// MarkLoaded records that the current embed signalled ready.
func (s *State) MarkLoaded() { s.loading = false }

// refresh recomputes both URLs after an accepted transition. The viewer URL
// uses replace semantics on the client; intra-viewer moves must not stack
// history entries.
func (s *State) refresh() {
	s.loading = true
	s.embedURL = s.locator.EmbedURL(s.record, s.coords)
	s.viewerURL = s.locator.ViewerURL(s.record, s.coords)
}
