package anilist

import (
	"cinemax/internal/catalog"
)

// Raw API response shapes. Optional scalars stay pointers until
// normalization flattens them.

type pageResponse struct {
	Page struct {
		Media []mediaNode `json:"media"`
	} `json:"Page"`
}

type mediaNode struct {
	ID          int       `json:"id"`
	Type        string    `json:"type"` // ANIME or MANGA
	Title       titleNode `json:"title"`
	Description *string   `json:"description"`
	CoverImage  struct {
		Large      *string `json:"large"`
		ExtraLarge *string `json:"extraLarge"`
	} `json:"coverImage"`
	BannerImage *string `json:"bannerImage"`
	Episodes    *int    `json:"episodes"`
	Chapters    *int    `json:"chapters"`
	Format      *string `json:"format"`
	Status      *string `json:"status"`
	StartDate   struct {
		Year *int `json:"year"`
	} `json:"startDate"`
	Relations *struct {
		Edges []relationEdge `json:"edges"`
	} `json:"relations"`
}

type titleNode struct {
	English *string `json:"english"`
	Romaji  *string `json:"romaji"`
	Native  *string `json:"native"`
}

type relationEdge struct {
	RelationType string    `json:"relationType"`
	Node         mediaNode `json:"node"`
}

// normalize maps a raw graph node into the unified representation. Relation
// edges outside the display allow-set are dropped here, before anything
// renders them.
func (n mediaNode) normalize() catalog.Record {
	kind := catalog.KindAnime
	if n.Type == "MANGA" {
		kind = catalog.KindManga
	}

	media := &catalog.Media{
		ID:   n.ID,
		Kind: kind,
		Title: catalog.Title{
			English: deref(n.Title.English),
			Romaji:  deref(n.Title.Romaji),
			Native:  deref(n.Title.Native),
		},
		Cover: catalog.CoverImage{
			Large:      deref(n.CoverImage.Large),
			ExtraLarge: deref(n.CoverImage.ExtraLarge),
		},
		BannerImage: deref(n.BannerImage),
		Episodes:    derefInt(n.Episodes),
		Chapters:    derefInt(n.Chapters),
		Format:      deref(n.Format),
		Status:      deref(n.Status),
		StartYear:   derefInt(n.StartDate.Year),
	}
	if n.Description != nil {
		media.Description = catalog.CleanDescription(*n.Description)
	}

	if n.Relations != nil {
		edges := make([]catalog.Relation, 0, len(n.Relations.Edges))
		for _, e := range n.Relations.Edges {
			related := e.Node.normalize()
			edges = append(edges, catalog.Relation{Type: e.RelationType, Node: related.Media})
		}
		media.Relations = catalog.FilterRelations(edges)
	}

	return catalog.Record{Kind: kind, Media: media}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
