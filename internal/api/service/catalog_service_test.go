package service_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cinemax/internal/api/service"
	"cinemax/internal/catalog"
	"cinemax/internal/playback"
	"cinemax/internal/providers/anilist"
)

// --- MOCK PROVIDERS ---

type MockAnimeCatalog struct {
	mock.Mock
}

func (m *MockAnimeCatalog) Browse(ctx context.Context, p anilist.BrowseParams) ([]catalog.Record, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Record), args.Error(1)
}

func (m *MockAnimeCatalog) MediaByID(ctx context.Context, kind catalog.Kind, id int) (catalog.Record, error) {
	args := m.Called(ctx, kind, id)
	return args.Get(0).(catalog.Record), args.Error(1)
}

type MockScreenCatalog struct {
	mock.Mock
}

func (m *MockScreenCatalog) records(args mock.Arguments) ([]catalog.Record, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Record), args.Error(1)
}

func (m *MockScreenCatalog) TrendingMovies(ctx context.Context) ([]catalog.Record, error) {
	return m.records(m.Called(ctx))
}

func (m *MockScreenCatalog) PopularMovies(ctx context.Context) ([]catalog.Record, error) {
	return m.records(m.Called(ctx))
}

func (m *MockScreenCatalog) SearchMovies(ctx context.Context, query string) ([]catalog.Record, error) {
	return m.records(m.Called(ctx, query))
}

func (m *MockScreenCatalog) TrendingTV(ctx context.Context) ([]catalog.Record, error) {
	return m.records(m.Called(ctx))
}

func (m *MockScreenCatalog) PopularTV(ctx context.Context) ([]catalog.Record, error) {
	return m.records(m.Called(ctx))
}

func (m *MockScreenCatalog) SearchTV(ctx context.Context, query string) ([]catalog.Record, error) {
	return m.records(m.Called(ctx, query))
}

func (m *MockScreenCatalog) MovieByID(ctx context.Context, id int) (catalog.Record, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Record), args.Error(1)
}

func (m *MockScreenCatalog) TVShowByID(ctx context.Context, id int) (catalog.Record, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Record), args.Error(1)
}

// --- FIXTURES ---

func animeRecord(id int, english string) catalog.Record {
	return catalog.Record{Kind: catalog.KindAnime, Media: &catalog.Media{
		ID: id, Kind: catalog.KindAnime, Title: catalog.Title{English: english}, Episodes: 25,
		Cover: catalog.CoverImage{Large: "https://img.anili.st/cover.jpg"},
	}}
}

func movieRecord(id int, title, imdbID string) catalog.Record {
	return catalog.Record{Kind: catalog.KindMovie, Movie: &catalog.Movie{
		ID: id, Title: title, IMDBID: imdbID, PosterPath: "/poster.jpg", ReleaseDate: "2010-07-15",
	}}
}

func tvRecord(id int, name, imdbID string) catalog.Record {
	return catalog.Record{Kind: catalog.KindTV, Show: &catalog.TVShow{
		ID: id, Name: name, IMDBID: imdbID,
		Seasons: []catalog.Season{
			{SeasonNumber: 0, EpisodeCount: 5, Name: "Specials"},
			{SeasonNumber: 1, EpisodeCount: 7},
			{SeasonNumber: 2, EpisodeCount: 13},
		},
	}}
}

func testImages(path, size string) string {
	if path == "" {
		return ""
	}
	return "https://image.test/" + size + path
}

func newService(anime *MockAnimeCatalog, screen *MockScreenCatalog) service.CatalogService {
	locator := playback.Locator{
		AnimeBase:  "https://vidsrc.icu",
		StreamBase: "https://vidfast.pro",
		PreferIMDB: true,
	}
	return service.NewCatalogService(anime, screen, nil, locator, testImages, nil)
}

// --- LANDING ---

func TestLandingFailureIsolation(t *testing.T) {
	anime := new(MockAnimeCatalog)
	screen := new(MockScreenCatalog)

	anime.On("Browse", mock.Anything, mock.Anything).Return([]catalog.Record{animeRecord(1, "Naruto")}, nil)
	screen.On("TrendingMovies", mock.Anything).Return([]catalog.Record{movieRecord(27205, "Inception", "tt1375666")}, nil)
	screen.On("PopularMovies", mock.Anything).Return([]catalog.Record{movieRecord(157336, "Interstellar", "")}, nil)
	// both tv listings are down
	screen.On("TrendingTV", mock.Anything).Return(nil, errors.New("upstream 503"))
	screen.On("PopularTV", mock.Anything).Return(nil, errors.New("upstream 503"))

	svc := newService(anime, screen)
	resp := svc.Landing(context.Background(), "anime", "")

	require.NotNil(t, resp)
	assert.Equal(t, "anime", resp.Tab)
	require.Len(t, resp.Sections, 6, "anime, manga and movie sections survive a tv outage")
	for _, section := range resp.Sections {
		assert.NotEqual(t, "tv", section.Tab)
	}
	require.NotEmpty(t, resp.Hero)
	assert.Equal(t, "Naruto", resp.Hero[0].Title)
}

func TestLandingQuerySearchesActiveTabOnly(t *testing.T) {
	anime := new(MockAnimeCatalog)
	screen := new(MockScreenCatalog)

	screen.On("SearchTV", mock.Anything, "breaking bad").
		Return([]catalog.Record{tvRecord(1396, "Breaking Bad", "tt0903747")}, nil)

	svc := newService(anime, screen)
	resp := svc.Landing(context.Background(), "tv", "breaking bad")

	require.NotNil(t, resp.SearchResults)
	require.Len(t, resp.SearchResults.Items, 1)
	assert.Equal(t, "Breaking Bad", resp.SearchResults.Items[0].Title)
	assert.Empty(t, resp.Sections)

	anime.AssertNotCalled(t, "Browse", mock.Anything, mock.Anything)
	screen.AssertNotCalled(t, "SearchMovies", mock.Anything, mock.Anything)
}

func TestLandingUnknownTabFallsBack(t *testing.T) {
	anime := new(MockAnimeCatalog)
	screen := new(MockScreenCatalog)

	anime.On("Browse", mock.Anything, mock.MatchedBy(func(p anilist.BrowseParams) bool {
		return p.Search == "naruto" && p.Kind == catalog.KindAnime
	})).Return([]catalog.Record{animeRecord(20, "Naruto")}, nil)

	svc := newService(anime, screen)
	resp := svc.Landing(context.Background(), "nonsense", "naruto")

	assert.Equal(t, "anime", resp.Tab)
	require.NotNil(t, resp.SearchResults)
	assert.Len(t, resp.SearchResults.Items, 1)
}

// --- SUGGEST ---

func TestSuggestCapsAtSeven(t *testing.T) {
	anime := new(MockAnimeCatalog)
	screen := new(MockScreenCatalog)

	many := make([]catalog.Record, 20)
	for i := range many {
		many[i] = animeRecord(i+1, "Result")
	}
	anime.On("Browse", mock.Anything, mock.Anything).Return(many, nil)

	svc := newService(anime, screen)
	cards := svc.Suggest(context.Background(), "anime", "one piece")
	assert.Len(t, cards, 7)
}

func TestSuggestFailureYieldsEmpty(t *testing.T) {
	anime := new(MockAnimeCatalog)
	screen := new(MockScreenCatalog)

	screen.On("SearchMovies", mock.Anything, "inception").Return(nil, errors.New("upstream down"))

	svc := newService(anime, screen)
	cards := svc.Suggest(context.Background(), "movies", "inception")
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}

// --- RESOLUTION ---

func TestResolveMediaCanonical(t *testing.T) {
	anime := new(MockAnimeCatalog)
	screen := new(MockScreenCatalog)

	anime.On("MediaByID", mock.Anything, catalog.KindAnime, 101922).
		Return(animeRecord(101922, "SPY×FAMILY"), nil)

	svc := newService(anime, screen)
	detail, res, err := svc.ResolveMedia(context.Background(), "anime", "101922-spyxfamily")
	require.NoError(t, err)

	assert.False(t, res.SlugMismatch)
	assert.Equal(t, "/media/anime/101922-spyxfamily", res.CanonicalPath)
	assert.Equal(t, "SPY×FAMILY", detail.Title)
	assert.Equal(t, "/view/anime/101922-spyxfamily", detail.ViewerPath)
}

func TestResolveMediaSlugMismatch(t *testing.T) {
	anime := new(MockAnimeCatalog)
	screen := new(MockScreenCatalog)

	anime.On("MediaByID", mock.Anything, catalog.KindAnime, 101922).
		Return(animeRecord(101922, "SPY×FAMILY"), nil)

	svc := newService(anime, screen)

	for _, segment := range []string{"101922-stale-title", "101922-", "101922"} {
		_, res, err := svc.ResolveMedia(context.Background(), "anime", segment)
		require.NoError(t, err, segment)
		assert.True(t, res.SlugMismatch, segment)
		assert.Equal(t, "/media/anime/101922-spyxfamily", res.CanonicalPath)
	}
}

func TestResolveMediaErrors(t *testing.T) {
	anime := new(MockAnimeCatalog)
	screen := new(MockScreenCatalog)

	screen.On("MovieByID", mock.Anything, 999).Return(catalog.Record{}, catalog.ErrNotFound)

	svc := newService(anime, screen)

	t.Run("unknown kind", func(t *testing.T) {
		_, _, err := svc.ResolveMedia(context.Background(), "book", "1-slug")
		assert.True(t, errors.Is(err, catalog.ErrNotFound))
	})

	t.Run("garbage id", func(t *testing.T) {
		_, _, err := svc.ResolveMedia(context.Background(), "anime", "not-a-number")
		assert.True(t, errors.Is(err, catalog.ErrNotFound))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, _, err := svc.ResolveMedia(context.Background(), "movie", "999-gone")
		assert.True(t, errors.Is(err, catalog.ErrNotFound))
	})
}

func TestResolveMediaTVSeasons(t *testing.T) {
	anime := new(MockAnimeCatalog)
	screen := new(MockScreenCatalog)

	screen.On("TVShowByID", mock.Anything, 1396).Return(tvRecord(1396, "Breaking Bad", "tt0903747"), nil)

	svc := newService(anime, screen)
	detail, _, err := svc.ResolveMedia(context.Background(), "tv", "1396-breaking-bad")
	require.NoError(t, err)

	require.Len(t, detail.Seasons, 2, "specials never reach the response")
	assert.Equal(t, 1, detail.Seasons[0].SeasonNumber)
	assert.Equal(t, "/view/tv/1396-breaking-bad?season=2&episode=1", detail.Seasons[1].WatchPath)
}

// --- VIEWER ---

func TestResolveViewerTV(t *testing.T) {
	anime := new(MockAnimeCatalog)
	screen := new(MockScreenCatalog)

	screen.On("TVShowByID", mock.Anything, 1396).Return(tvRecord(1396, "Breaking Bad", "tt0903747"), nil)

	svc := newService(anime, screen)
	view, err := svc.ResolveViewer(context.Background(), "tv", "1396-breaking-bad",
		url.Values{"season": {"2"}, "episode": {"7"}})
	require.NoError(t, err)

	assert.Equal(t, "https://vidfast.pro/tv/tt0903747/2/7", view.EmbedURL)
	assert.Equal(t, "/view/tv/1396-breaking-bad?season=2&episode=7", view.ViewerPath)
	assert.Equal(t, "/media/tv/1396-breaking-bad", view.BackPath)
	assert.Equal(t, 13, view.TotalItems)
	assert.True(t, view.Loading)

	assert.Equal(t, "/view/tv/1396-breaking-bad?season=2&episode=6", view.PrevPath)
	assert.Equal(t, "/view/tv/1396-breaking-bad?season=2&episode=8", view.NextPath)

	require.Len(t, view.Seasons, 2)
	assert.Equal(t, "/view/tv/1396-breaking-bad?season=1&episode=1", view.Seasons[0].Path,
		"season switch restarts at episode 1")
}

func TestResolveViewerBoundaries(t *testing.T) {
	anime := new(MockAnimeCatalog)
	screen := new(MockScreenCatalog)

	anime.On("MediaByID", mock.Anything, catalog.KindAnime, 101922).
		Return(animeRecord(101922, "SPY×FAMILY"), nil)

	svc := newService(anime, screen)

	t.Run("first item", func(t *testing.T) {
		view, err := svc.ResolveViewer(context.Background(), "anime", "101922-spyxfamily", url.Values{})
		require.NoError(t, err)
		assert.Empty(t, view.PrevPath)
		assert.NotEmpty(t, view.PrevNotice)
		assert.Equal(t, "/view/anime/101922-spyxfamily?item=2", view.NextPath)
		assert.Equal(t, "/view/anime/101922-spyxfamily?item=1&dub=1", view.DubTogglePath)
	})

	t.Run("last item", func(t *testing.T) {
		view, err := svc.ResolveViewer(context.Background(), "anime", "101922-spyxfamily",
			url.Values{"item": {"25"}})
		require.NoError(t, err)
		assert.Empty(t, view.NextPath)
		assert.NotEmpty(t, view.NextNotice)
		assert.Equal(t, "/view/anime/101922-spyxfamily?item=24", view.PrevPath)
	})
}

func TestResolveViewerMovieHasNoNavigation(t *testing.T) {
	anime := new(MockAnimeCatalog)
	screen := new(MockScreenCatalog)

	screen.On("MovieByID", mock.Anything, 27205).Return(movieRecord(27205, "Inception", "tt1375666"), nil)

	svc := newService(anime, screen)
	view, err := svc.ResolveViewer(context.Background(), "movie", "27205-inception", url.Values{})
	require.NoError(t, err)

	assert.Equal(t, "https://vidfast.pro/movie/tt1375666", view.EmbedURL)
	assert.Empty(t, view.PrevPath)
	assert.Empty(t, view.NextPath)
	assert.Empty(t, view.PrevNotice)
	assert.Empty(t, view.NextNotice)
	assert.Empty(t, view.Seasons)
}

func TestResolveViewerStaleSlugStillPlays(t *testing.T) {
	anime := new(MockAnimeCatalog)
	screen := new(MockScreenCatalog)

	anime.On("MediaByID", mock.Anything, catalog.KindAnime, 101922).
		Return(animeRecord(101922, "SPY×FAMILY"), nil)

	svc := newService(anime, screen)
	view, err := svc.ResolveViewer(context.Background(), "anime", "101922-old-name", url.Values{"item": {"3"}})
	require.NoError(t, err)
	assert.Equal(t, "https://vidsrc.icu/embed/anime/101922/3/0", view.EmbedURL)
	assert.Equal(t, "/view/anime/101922-spyxfamily?item=3", view.ViewerPath, "viewer path is always canonical")
}
