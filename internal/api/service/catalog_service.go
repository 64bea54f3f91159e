// Package service composes the two catalog providers behind one
// discovery/resolution API. Listings are best-effort: a provider outage
// empties its sections but never fails the whole surface. Lookups are strict:
// an unknown id is catalog.ErrNotFound all the way up.
package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"cinemax/internal/api/dto"
	"cinemax/internal/cache"
	"cinemax/internal/catalog"
	"cinemax/internal/playback"
	"cinemax/internal/providers/anilist"
	"cinemax/internal/search"
	"cinemax/internal/viewer"
)

const (
	heroSize    = 5
	suggestSize = 7
)

// AnimeCatalog is the graph-API provider surface (anime and manga).
type AnimeCatalog interface {
	Browse(ctx context.Context, p anilist.BrowseParams) ([]catalog.Record, error)
	MediaByID(ctx context.Context, kind catalog.Kind, id int) (catalog.Record, error)
}

// ScreenCatalog is the REST provider surface (movies and TV shows).
type ScreenCatalog interface {
	TrendingMovies(ctx context.Context) ([]catalog.Record, error)
	PopularMovies(ctx context.Context) ([]catalog.Record, error)
	SearchMovies(ctx context.Context, query string) ([]catalog.Record, error)
	TrendingTV(ctx context.Context) ([]catalog.Record, error)
	PopularTV(ctx context.Context) ([]catalog.Record, error)
	SearchTV(ctx context.Context, query string) ([]catalog.Record, error)
	MovieByID(ctx context.Context, id int) (catalog.Record, error)
	TVShowByID(ctx context.Context, id int) (catalog.Record, error)
}

// Resolution reports how an {id}-{slug} segment matched its record.
type Resolution struct {
	CanonicalPath string
	SlugMismatch  bool
}

// CatalogService defines the discovery and resolution operations.
type CatalogService interface {
	Landing(ctx context.Context, tab, query string) *dto.LandingResponse
	Suggest(ctx context.Context, tab, query string) []dto.CardResponse
	SuggestFetcher(tab string) search.FetchFunc
	Cards(records []catalog.Record) []dto.CardResponse
	ResolveMedia(ctx context.Context, kindSeg, idSlug string) (*dto.MediaDetailResponse, *Resolution, error)
	ResolveViewer(ctx context.Context, kindSeg, idSlug string, query url.Values) (*dto.ViewerResponse, error)
}

type catalogService struct {
	anime   AnimeCatalog
	screen  ScreenCatalog
	store   *cache.Store
	locator playback.Locator
	images  dto.ImageResolver
	log     *logrus.Logger
}

// NewCatalogService creates a catalog service. store may be nil (no caching),
// images must not be.
func NewCatalogService(anime AnimeCatalog, screen ScreenCatalog, store *cache.Store, locator playback.Locator, images dto.ImageResolver, log *logrus.Logger) CatalogService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &catalogService{
		anime:   anime,
		screen:  screen,
		store:   store,
		locator: locator,
		images:  images,
		log:     log,
	}
}

// Tabs the landing surface knows, in render order.
var landingTabs = []string{"anime", "manga", "movies", "tv"}

func normalizeTab(tab string) string {
	for _, t := range landingTabs {
		if tab == t {
			return tab
		}
	}
	return "anime"
}

type fetchFn func(ctx context.Context) ([]catalog.Record, error)

type namedFetch struct {
	key string
	tab string
	fn  fetchFn
}

func (s *catalogService) landingFetches() []namedFetch {
	browse := func(kind catalog.Kind, sort []string) fetchFn {
		return func(ctx context.Context) ([]catalog.Record, error) {
			return s.anime.Browse(ctx, anilist.BrowseParams{Kind: kind, Sort: sort})
		}
	}
	trendingSort := []string{"TRENDING_DESC", "POPULARITY_DESC"}
	popularSort := []string{"POPULARITY_DESC"}
	return []namedFetch{
		{"trending:anime", "anime", browse(catalog.KindAnime, trendingSort)},
		{"popular:anime", "anime", browse(catalog.KindAnime, popularSort)},
		{"trending:manga", "manga", browse(catalog.KindManga, trendingSort)},
		{"popular:manga", "manga", browse(catalog.KindManga, popularSort)},
		{"trending:movies", "movies", s.screen.TrendingMovies},
		{"popular:movies", "movies", s.screen.PopularMovies},
		{"trending:tv", "tv", s.screen.TrendingTV},
		{"popular:tv", "tv", s.screen.PopularTV},
	}
}

// Landing assembles the landing payload. Without a query all category
// listings are fetched concurrently and each failure only empties its own
// section; with a query only the active tab is searched.
func (s *catalogService) Landing(ctx context.Context, tab, query string) *dto.LandingResponse {
	tab = normalizeTab(tab)
	resp := &dto.LandingResponse{Tab: tab, Query: query}

	if query != "" {
		records, err := s.searchTab(ctx, tab, query)
		if err != nil {
			s.log.WithError(err).Warnf("search %q on tab %s failed", query, tab)
			records = nil
		}
		resp.SearchResults = &dto.SectionResponse{
			Title: fmt.Sprintf("Results for %q", query),
			Tab:   tab,
			Items: s.Cards(records),
		}
		return resp
	}

	fetches := s.landingFetches()

	type keyed struct {
		key     string
		records []catalog.Record
	}
	results := make(chan keyed, len(fetches))

	var wg sync.WaitGroup
	for _, f := range fetches {
		wg.Add(1)
		go func(f namedFetch) {
			defer wg.Done()
			results <- keyed{key: f.key, records: s.cachedFetch(ctx, f.key, f.fn)}
		}(f)
	}
	wg.Wait()
	close(results)

	lists := make(map[string][]catalog.Record, len(fetches))
	for r := range results {
		lists[r.key] = r.records
	}

	hero := lists["trending:"+tab]
	if len(hero) > heroSize {
		hero = hero[:heroSize]
	}
	resp.Hero = s.Cards(hero)

	for _, f := range fetches {
		records := lists[f.key]
		if len(records) == 0 {
			// failed or empty listing; the section simply does not render
			continue
		}
		prefix := "Popular"
		if strings.HasPrefix(f.key, "trending") {
			prefix = "Trending"
		}
		resp.Sections = append(resp.Sections, dto.SectionResponse{
			Title: dto.TitleForTab(f.tab, prefix),
			Tab:   f.tab,
			Items: s.Cards(records),
		})
	}
	return resp
}

// cachedFetch serves a listing from the revalidation cache when live,
// otherwise fetches and repopulates. Errors log and yield nil.
func (s *catalogService) cachedFetch(ctx context.Context, key string, fn fetchFn) []catalog.Record {
	if records, ok := s.store.GetRecords(ctx, key); ok {
		return records
	}
	records, err := fn(ctx)
	if err != nil {
		s.log.WithError(err).Warnf("listing %s failed", key)
		return nil
	}
	s.store.SetRecords(ctx, key, records)
	return records
}

func (s *catalogService) searchTab(ctx context.Context, tab, query string) ([]catalog.Record, error) {
	switch tab {
	case "manga":
		return s.anime.Browse(ctx, anilist.BrowseParams{Search: query, Kind: catalog.KindManga})
	case "movies":
		return s.screen.SearchMovies(ctx, query)
	case "tv":
		return s.screen.SearchTV(ctx, query)
	default:
		return s.anime.Browse(ctx, anilist.BrowseParams{Search: query, Kind: catalog.KindAnime})
	}
}

// Suggest runs one capped suggestion query for the stateless endpoint.
// Failures yield an empty list; a broken dropdown is worse than a quiet one.
func (s *catalogService) Suggest(ctx context.Context, tab, query string) []dto.CardResponse {
	records, err := s.searchTab(ctx, normalizeTab(tab), query)
	if err != nil {
		s.log.WithError(err).Warnf("suggest %q failed", query)
		return []dto.CardResponse{}
	}
	if len(records) > suggestSize {
		records = records[:suggestSize]
	}
	return s.Cards(records)
}

// SuggestFetcher binds a landing tab into a fetch the live-search session can
// call per debounced keystroke.
func (s *catalogService) SuggestFetcher(tab string) search.FetchFunc {
	tab = normalizeTab(tab)
	return func(ctx context.Context, query string) ([]catalog.Record, error) {
		return s.searchTab(ctx, tab, query)
	}
}

// Cards converts records to response cards.
func (s *catalogService) Cards(records []catalog.Record) []dto.CardResponse {
	cards := make([]dto.CardResponse, 0, len(records))
	for _, r := range records {
		cards = append(cards, dto.CardFromRecord(r, s.images))
	}
	return cards
}

func (s *catalogService) fetchRecord(ctx context.Context, kind catalog.Kind, id int) (catalog.Record, error) {
	switch kind {
	case catalog.KindMovie:
		return s.screen.MovieByID(ctx, id)
	case catalog.KindTV:
		return s.screen.TVShowByID(ctx, id)
	default:
		return s.anime.MediaByID(ctx, kind, id)
	}
}

// ResolveMedia resolves a detail route. Only the id selects the record; the
// slug segment is checked against the canonical one so the handler can
// redirect stale links, and an empty or wrong slug is a mismatch, never an
// error.
func (s *catalogService) ResolveMedia(ctx context.Context, kindSeg, idSlug string) (*dto.MediaDetailResponse, *Resolution, error) {
	kind, ok := catalog.ParseKind(kindSeg)
	if !ok {
		return nil, nil, catalog.ErrNotFound
	}
	id, slug, err := catalog.ParseIDSlug(idSlug)
	if err != nil {
		return nil, nil, err
	}

	record, err := s.fetchRecord(ctx, kind, id)
	if err != nil {
		return nil, nil, err
	}

	res := &Resolution{
		CanonicalPath: record.DetailPath(),
		SlugMismatch:  slug != record.Slug(),
	}
	if res.SlugMismatch {
		s.log.Infof("slug mismatch for %s/%d: got %q, canonical %q", kind, id, slug, record.Slug())
	}
	return s.detail(record), res, nil
}

func (s *catalogService) detail(r catalog.Record) *dto.MediaDetailResponse {
	d := &dto.MediaDetailResponse{
		Kind:          string(r.Kind),
		ID:            r.ID(),
		Title:         r.DisplayTitle(),
		CanonicalPath: r.DetailPath(),
		ViewerPath:    r.ViewerPath(),
	}
	switch r.Kind {
	case catalog.KindAnime, catalog.KindManga:
		if r.Media == nil {
			break
		}
		d.Description = r.Media.Description
		d.CoverURL = r.Media.Cover.ExtraLarge
		if d.CoverURL == "" {
			d.CoverURL = r.Media.Cover.Large
		}
		d.BannerURL = r.Media.BannerImage
		d.Year = r.Media.StartYear
		d.Format = r.Media.Format
		d.Status = r.Media.Status
		d.Episodes = r.Media.Episodes
		d.Chapters = r.Media.Chapters
		for _, rel := range catalog.FilterRelations(r.Media.Relations) {
			d.Related = append(d.Related, dto.RelatedCard(rel))
		}
	case catalog.KindMovie:
		if r.Movie == nil {
			break
		}
		d.Description = r.Movie.Overview
		d.CoverURL = s.images(r.Movie.PosterPath, "w500")
		d.BannerURL = s.images(r.Movie.BackdropPath, "original")
		d.VoteAverage = r.Movie.VoteAverage
	case catalog.KindTV:
		if r.Show == nil {
			break
		}
		d.Description = r.Show.Overview
		d.CoverURL = s.images(r.Show.PosterPath, "w500")
		d.BannerURL = s.images(r.Show.BackdropPath, "original")
		d.VoteAverage = r.Show.VoteAverage
		for _, se := range r.Show.NavigableSeasons() {
			d.Seasons = append(d.Seasons, dto.SeasonResponse{
				SeasonNumber: se.SeasonNumber,
				EpisodeCount: se.EpisodeCount,
				WatchPath:    s.locator.ViewerURL(r, playback.Coordinates{Item: 1, Season: se.SeasonNumber}),
			})
		}
	}
	return d
}

// ResolveViewer resolves a viewer route into the embed URL and every
// navigation target the state machine accepts from the current coordinates.
// A stale slug still plays; only unknown ids fail.
func (s *catalogService) ResolveViewer(ctx context.Context, kindSeg, idSlug string, query url.Values) (*dto.ViewerResponse, error) {
	kind, ok := catalog.ParseKind(kindSeg)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	id, _, err := catalog.ParseIDSlug(idSlug)
	if err != nil {
		return nil, err
	}

	record, err := s.fetchRecord(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	coords := playback.ParseViewerQuery(kind, query)
	st := viewer.NewState(s.locator, record, coords)

	resp := &dto.ViewerResponse{
		Kind:       string(kind),
		ID:         record.ID(),
		Title:      record.DisplayTitle(),
		ItemLabel:  kind.ItemLabel(),
		Item:       coords.Item,
		Dub:        coords.Dub,
		TotalItems: st.TotalItems(),
		Loading:    st.Loading(),
		EmbedURL:   st.EmbedURL(),
		ViewerPath: st.ViewerURL(),
		BackPath:   record.DetailPath(),
	}

	// movies are a single unit; there is nothing to step through
	if kind != catalog.KindMovie {
		prev := viewer.NewState(s.locator, record, coords)
		if err := prev.Advance(-1); err != nil {
			resp.PrevNotice = err.Error()
		} else {
			resp.PrevPath = prev.ViewerURL()
		}
		next := viewer.NewState(s.locator, record, coords)
		if err := next.Advance(1); err != nil {
			resp.NextNotice = err.Error()
		} else {
			resp.NextPath = next.ViewerURL()
		}
	}

	if kind == catalog.KindTV && record.Show != nil {
		resp.Season = coords.Season
		for _, se := range record.Show.NavigableSeasons() {
			sw := viewer.NewState(s.locator, record, coords)
			if err := sw.ChangeSeason(se.SeasonNumber); err != nil {
				continue
			}
			resp.Seasons = append(resp.Seasons, dto.SeasonLink{
				SeasonNumber: se.SeasonNumber,
				Path:         sw.ViewerURL(),
			})
		}
	}

	if kind == catalog.KindAnime {
		toggle := viewer.NewState(s.locator, record, coords)
		toggle.ToggleDub()
		resp.DubTogglePath = toggle.ViewerURL()
	}

	return resp, nil
}
