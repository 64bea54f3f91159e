// Package playback derives external embed URLs and shareable in-app viewer
// URLs from a (media, coordinates) pair, and keeps the two in sync: parsing a
// viewer query back into coordinates and rebuilding the embed URL reproduces
// the original byte for byte.
package playback

import (
	"fmt"
	"net/url"
	"strconv"

	"cinemax/internal/catalog"
)

// Coordinates identify one playable unit inside a media item. Season only
// matters for tv, Dub only for anime.
type Coordinates struct {
	Item   int  `json:"item"`
	Season int  `json:"season"`
	Dub    bool `json:"dub"`
}

// DefaultCoordinates is where a viewer opens when the route carries no
// query: season 1, item 1, sub.
func DefaultCoordinates() Coordinates {
	return Coordinates{Item: 1, Season: 1}
}

// Locator builds embed URLs against configured provider bases.
type Locator struct {
	// AnimeBase hosts anime episode and manga chapter embeds.
	AnimeBase string
	// StreamBase hosts movie and tv embeds.
	StreamBase string
	// PreferIMDB selects the IMDB cross-reference id for movie/tv embeds
	// when the record carries one.
	PreferIMDB bool
}

// EmbedURL is a pure lookup keyed by kind:
//
//	anime  {AnimeBase}/embed/anime/{id}/{item}/{dub 1|0}
//	manga  {AnimeBase}/embed/manga/{id}/{item}
//	movie  {StreamBase}/movie/{id}
//	tv     {StreamBase}/tv/{id}/{season}/{episode}
func (l Locator) EmbedURL(r catalog.Record, c Coordinates) string {
	switch r.Kind {
	case catalog.KindAnime:
		return fmt.Sprintf("%s/embed/anime/%d/%d/%s", l.AnimeBase, r.ID(), c.Item, dubFlag(c.Dub))
	case catalog.KindManga:
		return fmt.Sprintf("%s/embed/manga/%d/%d", l.AnimeBase, r.ID(), c.Item)
	case catalog.KindMovie:
		return fmt.Sprintf("%s/movie/%s", l.StreamBase, r.EmbedID(l.PreferIMDB))
	case catalog.KindTV:
		return fmt.Sprintf("%s/tv/%s/%d/%d", l.StreamBase, r.EmbedID(l.PreferIMDB), c.Season, c.Item)
	}
	return ""
}

// ViewerURL is the shareable in-app path+query for the same coordinates.
func (l Locator) ViewerURL(r catalog.Record, c Coordinates) string {
	path := r.ViewerPath()
	if q := EncodeViewerQuery(r.Kind, c); q != "" {
		path += "?" + q
	}
	return path
}

// EncodeViewerQuery writes coordinates as the viewer query string, in a fixed
// key order so that encode(parse(q)) == q. Fields appear per kind: tv carries
// season and episode, anime carries item plus dub=1 when dubbed, manga
// carries item, movie carries nothing.
func EncodeViewerQuery(kind catalog.Kind, c Coordinates) string {
	switch kind {
	case catalog.KindTV:
		return fmt.Sprintf("season=%d&episode=%d", c.Season, c.Item)
	case catalog.KindAnime:
		q := fmt.Sprintf("item=%d", c.Item)
		if c.Dub {
			q += "&dub=1"
		}
		return q
	case catalog.KindManga:
		return fmt.Sprintf("item=%d", c.Item)
	}
	return ""
}

// ParseViewerQuery reads coordinates back out of a viewer query, applying the
// route defaults (season 1, item 1, sub) for anything absent or malformed.
func ParseViewerQuery(kind catalog.Kind, values url.Values) Coordinates {
	c := DefaultCoordinates()
	switch kind {
	case catalog.KindTV:
		c.Season = positiveOr(values.Get("season"), 1)
		c.Item = positiveOr(values.Get("episode"), 1)
	case catalog.KindAnime:
		c.Item = positiveOr(values.Get("item"), 1)
		c.Dub = values.Get("dub") == "1"
	case catalog.KindManga:
		c.Item = positiveOr(values.Get("item"), 1)
	}
	return c
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func dubFlag(dub bool) string {
	if dub {
		return "1"
	}
	return "0"
}
