package catalog

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Kind discriminates the tagged union across both providers. Identity is
// always the pair (kind, id); the AniList and TMDB id spaces overlap.
type Kind string

const (
	KindAnime Kind = "anime"
	KindManga Kind = "manga"
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

// ParseKind maps a route segment to a Kind.
func ParseKind(segment string) (Kind, bool) {
	switch Kind(strings.ToLower(segment)) {
	case KindAnime:
		return KindAnime, true
	case KindManga:
		return KindManga, true
	case KindMovie:
		return KindMovie, true
	case KindTV:
		return KindTV, true
	}
	return "", false
}

// ItemLabel is what the viewer calls a playable unit of this kind.
func (k Kind) ItemLabel() string {
	if k == KindManga {
		return "Chapter"
	}
	return "Episode"
}

// Title holds the AniList title variants. English may be absent.
type Title struct {
	English string `json:"english,omitempty"`
	Romaji  string `json:"romaji,omitempty"`
	Native  string `json:"native,omitempty"`
}

// Preferred returns english, falling back to romaji, then native.
func (t Title) Preferred() string {
	if t.English != "" {
		return t.English
	}
	if t.Romaji != "" {
		return t.Romaji
	}
	return t.Native
}

// CoverImage holds AniList cover variants.
type CoverImage struct {
	Large      string `json:"large,omitempty"`
	ExtraLarge string `json:"extraLarge,omitempty"`
}

// Relation is one edge of an AniList relations graph.
type Relation struct {
	Type string `json:"type"`
	Node *Media `json:"node"`
}

// Only these relation kinds are meaningful for display; everything else
// (ADAPTATION, CHARACTER, OTHER, ...) is dropped before rendering.
var displayableRelations = []string{"PREQUEL", "SEQUEL", "PARENT", "SIDE_STORY", "SPIN_OFF"}

// FilterRelations keeps edges in the allow-set whose node carries a cover
// image, preserving provider order.
func FilterRelations(edges []Relation) []Relation {
	return lo.Filter(edges, func(e Relation, _ int) bool {
		return lo.Contains(displayableRelations, e.Type) && e.Node != nil && e.Node.Cover.Large != ""
	})
}

// FormatRelationType turns PREQUEL into "Prequel" and SIDE_STORY into
// "Side Story" for card badges.
func FormatRelationType(relationType string) string {
	words := strings.Split(strings.ToLower(strings.ReplaceAll(relationType, "_", " ")), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Media is a normalized AniList node (anime or manga).
type Media struct {
	ID          int        `json:"id"`
	Kind        Kind       `json:"kind"`
	Title       Title      `json:"title"`
	Description string     `json:"description,omitempty"`
	Cover       CoverImage `json:"cover"`
	BannerImage string     `json:"bannerImage,omitempty"`
	Episodes    int        `json:"episodes,omitempty"`
	Chapters    int        `json:"chapters,omitempty"`
	Format      string     `json:"format,omitempty"`
	Status      string     `json:"status,omitempty"`
	StartYear   int        `json:"startYear,omitempty"`
	Relations   []Relation `json:"relations,omitempty"`
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// CleanDescription strips the markup-lite tags AniList embeds in synopses
// and decodes entities.
func CleanDescription(desc string) string {
	cleaned := strings.ReplaceAll(desc, "<br>", "\n")
	cleaned = htmlTagPattern.ReplaceAllString(cleaned, "")
	cleaned = html.UnescapeString(cleaned)
	return strings.TrimSpace(cleaned)
}

// Season is one TMDB season entry.
type Season struct {
	ID           int    `json:"id"`
	SeasonNumber int    `json:"seasonNumber"`
	EpisodeCount int    `json:"episodeCount"`
	Name         string `json:"name,omitempty"`
}

// Movie is a normalized TMDB movie node. Poster/backdrop paths stay relative;
// callers compose the image base URL and size variant at render time.
type Movie struct {
	ID           int     `json:"id"`
	IMDBID       string  `json:"imdbId,omitempty"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"posterPath,omitempty"`
	BackdropPath string  `json:"backdropPath,omitempty"`
	ReleaseDate  string  `json:"releaseDate,omitempty"`
	VoteAverage  float64 `json:"voteAverage,omitempty"`
}

// TVShow is a normalized TMDB tv node.
type TVShow struct {
	ID              int      `json:"id"`
	IMDBID          string   `json:"imdbId,omitempty"`
	Name            string   `json:"name"`
	Overview        string   `json:"overview,omitempty"`
	PosterPath      string   `json:"posterPath,omitempty"`
	BackdropPath    string   `json:"backdropPath,omitempty"`
	FirstAirDate    string   `json:"firstAirDate,omitempty"`
	VoteAverage     float64  `json:"voteAverage,omitempty"`
	NumberOfSeasons int      `json:"numberOfSeasons,omitempty"`
	Seasons         []Season `json:"seasons,omitempty"`
}

// NavigableSeasons drops specials (season_number <= 0) and empty seasons.
func (s *TVShow) NavigableSeasons() []Season {
	return lo.Filter(s.Seasons, func(se Season, _ int) bool {
		return se.SeasonNumber > 0 && se.EpisodeCount > 0
	})
}

// SeasonEpisodeCount returns the episode count for a season number, or 0
// when the season is unknown.
func (s *TVShow) SeasonEpisodeCount(seasonNumber int) int {
	for _, se := range s.Seasons {
		if se.SeasonNumber == seasonNumber {
			return se.EpisodeCount
		}
	}
	return 0
}

// Record is the unified cross-provider representation. Exactly one of the
// payload pointers is set, matching Kind; consumers must switch on Kind
// before touching fields (both providers share an integer id space).
type Record struct {
	Kind  Kind    `json:"kind"`
	Media *Media  `json:"media,omitempty"`
	Movie *Movie  `json:"movie,omitempty"`
	Show  *TVShow `json:"show,omitempty"`
}

func (r Record) ID() int {
	switch r.Kind {
	case KindAnime, KindManga:
		if r.Media != nil {
			return r.Media.ID
		}
	case KindMovie:
		if r.Movie != nil {
			return r.Movie.ID
		}
	case KindTV:
		if r.Show != nil {
			return r.Show.ID
		}
	}
	return 0
}

// DisplayTitle picks the title the UI and the slug derivation both use.
func (r Record) DisplayTitle() string {
	switch r.Kind {
	case KindAnime, KindManga:
		if r.Media != nil {
			return r.Media.Title.Preferred()
		}
	case KindMovie:
		if r.Movie != nil {
			return r.Movie.Title
		}
	case KindTV:
		if r.Show != nil {
			return r.Show.Name
		}
	}
	return ""
}

// Slug recomputes the canonical slug from the current display title. Never
// stored: upstream title changes must not leave stale canonical slugs behind.
func (r Record) Slug() string {
	return Slugify(r.DisplayTitle())
}

// DetailPath is the canonical detail route /media/{kind}/{id}-{slug}.
func (r Record) DetailPath() string {
	return fmt.Sprintf("/media/%s/%d-%s", r.Kind, r.ID(), r.Slug())
}

// ViewerPath is the canonical viewer route /view/{kind}/{id}-{slug},
// without coordinates.
func (r Record) ViewerPath() string {
	return fmt.Sprintf("/view/%s/%d-%s", r.Kind, r.ID(), r.Slug())
}

// EmbedID is the identity handed to the embed provider. Movie and tv favor
// the IMDB cross-reference when preferIMDB is set and the record has one;
// the native id is always the fallback. The embed provider's id-space
// assumptions are unverified, which is why the preference is a knob and not
// a constant.
func (r Record) EmbedID(preferIMDB bool) string {
	switch r.Kind {
	case KindMovie:
		if r.Movie != nil {
			if preferIMDB && r.Movie.IMDBID != "" {
				return r.Movie.IMDBID
			}
			return strconv.Itoa(r.Movie.ID)
		}
	case KindTV:
		if r.Show != nil {
			if preferIMDB && r.Show.IMDBID != "" {
				return r.Show.IMDBID
			}
			return strconv.Itoa(r.Show.ID)
		}
	}
	return strconv.Itoa(r.ID())
}

// TotalItems is the known upper bound for the viewer's item counter within
// the given season; 0 means unknown/unbounded.
func (r Record) TotalItems(seasonNumber int) int {
	switch r.Kind {
	case KindAnime:
		if r.Media != nil {
			return r.Media.Episodes
		}
	case KindManga:
		if r.Media != nil {
			return r.Media.Chapters
		}
	case KindTV:
		if r.Show != nil {
			return r.Show.SeasonEpisodeCount(seasonNumber)
		}
	}
	return 0
}
