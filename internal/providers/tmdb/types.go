package tmdb

import (
	"cinemax/internal/catalog"
)

type listResponse[T any] struct {
	Page    int `json:"page"`
	Results []T `json:"results"`
}

type externalIDs struct {
	IMDBID string `json:"imdb_id"`
}

type movieNode struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`

	// movie detail carries imdb_id inline; external_ids covers the
	// append_to_response shape
	IMDBID      string       `json:"imdb_id"`
	ExternalIDs *externalIDs `json:"external_ids"`
}

func (n movieNode) normalize() catalog.Movie {
	imdbID := n.IMDBID
	if imdbID == "" && n.ExternalIDs != nil {
		imdbID = n.ExternalIDs.IMDBID
	}
	return catalog.Movie{
		ID:           n.ID,
		IMDBID:       imdbID,
		Title:        n.Title,
		Overview:     n.Overview,
		PosterPath:   n.PosterPath,
		BackdropPath: n.BackdropPath,
		ReleaseDate:  n.ReleaseDate,
		VoteAverage:  n.VoteAverage,
	}
}

type seasonNode struct {
	ID           int    `json:"id"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	Name         string `json:"name"`
}

type tvNode struct {
	ID              int          `json:"id"`
	Name            string       `json:"name"`
	Overview        string       `json:"overview"`
	PosterPath      string       `json:"poster_path"`
	BackdropPath    string       `json:"backdrop_path"`
	FirstAirDate    string       `json:"first_air_date"`
	VoteAverage     float64      `json:"vote_average"`
	NumberOfSeasons int          `json:"number_of_seasons"`
	Seasons         []seasonNode `json:"seasons"`
	ExternalIDs     *externalIDs `json:"external_ids"`
}

func (n tvNode) normalize() catalog.TVShow {
	show := catalog.TVShow{
		ID:              n.ID,
		Name:            n.Name,
		Overview:        n.Overview,
		PosterPath:      n.PosterPath,
		BackdropPath:    n.BackdropPath,
		FirstAirDate:    n.FirstAirDate,
		VoteAverage:     n.VoteAverage,
		NumberOfSeasons: n.NumberOfSeasons,
	}
	if n.ExternalIDs != nil {
		show.IMDBID = n.ExternalIDs.IMDBID
	}
	for _, s := range n.Seasons {
		show.Seasons = append(show.Seasons, catalog.Season{
			ID:           s.ID,
			SeasonNumber: s.SeasonNumber,
			EpisodeCount: s.EpisodeCount,
			Name:         s.Name,
		})
	}
	return show
}
