package dto

import (
	"cinemax/internal/catalog"
)

// ImageResolver composes an absolute image URL from a provider-relative path
// and a size token. AniList URLs are already absolute, so only TMDB cards
// go through it.
type ImageResolver func(path, size string) string

// CardResponse is the unit of every carousel, grid, and suggestion list.
type CardResponse struct {
	Kind        string  `json:"kind"`
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	CoverURL    string  `json:"cover_url,omitempty"`
	Year        int     `json:"year,omitempty"`
	Format      string  `json:"format,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
	Relation    string  `json:"relation,omitempty"`
	DetailPath  string  `json:"detail_path"`
}

// SectionResponse is one titled row of cards on the landing surface.
type SectionResponse struct {
	Title string         `json:"title"`
	Tab   string         `json:"tab"`
	Items []CardResponse `json:"items"`
}

// LandingResponse carries every category list the landing page renders,
// or the active tab's search results when a query is present.
type LandingResponse struct {
	Tab           string            `json:"tab"`
	Query         string            `json:"query,omitempty"`
	Hero          []CardResponse    `json:"hero,omitempty"`
	Sections      []SectionResponse `json:"sections,omitempty"`
	SearchResults *SectionResponse  `json:"search_results,omitempty"`
}

// SeasonResponse is one navigable season on a TV detail page.
type SeasonResponse struct {
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	WatchPath    string `json:"watch_path"`
}

// MediaDetailResponse is the canonical detail payload for every kind.
type MediaDetailResponse struct {
	Kind        string  `json:"kind"`
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	CoverURL    string  `json:"cover_url,omitempty"`
	BannerURL   string  `json:"banner_url,omitempty"`
	Year        int     `json:"year,omitempty"`
	Format      string  `json:"format,omitempty"`
	Status      string  `json:"status,omitempty"`
	Episodes    int     `json:"episodes,omitempty"`
	Chapters    int     `json:"chapters,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`

	CanonicalPath string `json:"canonical_path"`
	ViewerPath    string `json:"viewer_path"`

	Related []CardResponse   `json:"related,omitempty"`
	Seasons []SeasonResponse `json:"seasons,omitempty"`
}

// SeasonLink is a viewer-side season switch target.
type SeasonLink struct {
	SeasonNumber int    `json:"season_number"`
	Path         string `json:"path"`
}

// ViewerResponse is everything the viewer page needs for one coordinate
// triple: the embed URL, the shareable path that round-trips to it, and the
// navigation targets the state machine accepted.
type ViewerResponse struct {
	Kind      string `json:"kind"`
	ID        int    `json:"id"`
	Title     string `json:"title"`
	ItemLabel string `json:"item_label"`

	Item       int  `json:"item"`
	Season     int  `json:"season,omitempty"`
	Dub        bool `json:"dub,omitempty"`
	TotalItems int  `json:"total_items,omitempty"`
	Loading    bool `json:"loading"`

	EmbedURL   string `json:"embed_url"`
	ViewerPath string `json:"viewer_path"`
	BackPath   string `json:"back_path"`

	PrevPath      string       `json:"prev_path,omitempty"`
	NextPath      string       `json:"next_path,omitempty"`
	PrevNotice    string       `json:"prev_notice,omitempty"`
	NextNotice    string       `json:"next_notice,omitempty"`
	Seasons       []SeasonLink `json:"seasons,omitempty"`
	DubTogglePath string       `json:"dub_toggle_path,omitempty"`
}

// CardFromRecord flattens any record into a card. Payload fields are only
// read after switching on Kind, since the providers share id ranges.
func CardFromRecord(r catalog.Record, images ImageResolver) CardResponse {
	card := CardResponse{
		Kind:       string(r.Kind),
		ID:         r.ID(),
		Title:      r.DisplayTitle(),
		DetailPath: r.DetailPath(),
	}
	switch r.Kind {
	case catalog.KindAnime, catalog.KindManga:
		if r.Media != nil {
			card.CoverURL = r.Media.Cover.Large
			card.Year = r.Media.StartYear
			card.Format = r.Media.Format
		}
	case catalog.KindMovie:
		if r.Movie != nil {
			card.CoverURL = images(r.Movie.PosterPath, "w342")
			card.Year = yearOf(r.Movie.ReleaseDate)
			card.VoteAverage = r.Movie.VoteAverage
		}
	case catalog.KindTV:
		if r.Show != nil {
			card.CoverURL = images(r.Show.PosterPath, "w342")
			card.Year = yearOf(r.Show.FirstAirDate)
			card.VoteAverage = r.Show.VoteAverage
		}
	}
	return card
}

// RelatedCard builds a card for a relation edge with its formatted badge.
func RelatedCard(rel catalog.Relation) CardResponse {
	record := catalog.Record{Kind: rel.Node.Kind, Media: rel.Node}
	card := CardResponse{
		Kind:       string(record.Kind),
		ID:         record.ID(),
		Title:      record.DisplayTitle(),
		CoverURL:   rel.Node.Cover.Large,
		Format:     rel.Node.Format,
		Relation:   catalog.FormatRelationType(rel.Type),
		DetailPath: record.DetailPath(),
	}
	return card
}

// yearOf extracts the year from a provider date string (YYYY-MM-DD).
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year := 0
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}

// TitleForTab maps a landing tab to its section heading.
func TitleForTab(tab, prefix string) string {
	switch tab {
	case "anime":
		return prefix + " Anime"
	case "manga":
		return prefix + " Manga"
	case "movies":
		return prefix + " Movies"
	case "tv":
		return prefix + " TV Shows"
	}
	return prefix
}
