package viewer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinemax/internal/catalog"
	"cinemax/internal/playback"
	"cinemax/internal/viewer"
)

var testLocator = playback.Locator{
	AnimeBase:  "https://vidsrc.icu",
	StreamBase: "https://vidfast.pro",
	PreferIMDB: true,
}

func animeState(episodes, item int) *viewer.State {
	record := catalog.Record{Kind: catalog.KindAnime, Media: &catalog.Media{
		ID: 101922, Kind: catalog.KindAnime, Title: catalog.Title{English: "SPY×FAMILY"}, Episodes: episodes,
	}}
	return viewer.NewState(testLocator, record, playback.Coordinates{Item: item, Season: 1})
}

func tvState(item, season int) *viewer.State {
	record := catalog.Record{Kind: catalog.KindTV, Show: &catalog.TVShow{
		ID: 1396, IMDBID: "tt0903747", Name: "Breaking Bad",
		Seasons: []catalog.Season{
			{SeasonNumber: 1, EpisodeCount: 7},
			{SeasonNumber: 2, EpisodeCount: 13},
		},
	}}
	return viewer.NewState(testLocator, record, playback.Coordinates{Item: item, Season: season})
}

func TestNewStateStartsLoading(t *testing.T) {
	st := animeState(25, 1)
	assert.True(t, st.Loading())
	assert.Equal(t, "https://vidsrc.icu/embed/anime/101922/1/0", st.EmbedURL())
	assert.Equal(t, "/view/anime/101922-spyxfamily?item=1", st.ViewerURL())

	st.MarkLoaded()
	assert.False(t, st.Loading())
}

func TestAdvance(t *testing.T) {
	st := animeState(25, 1)
	st.MarkLoaded()

	require.NoError(t, st.Advance(1))
	assert.Equal(t, 2, st.Coordinates().Item)
	assert.True(t, st.Loading(), "accepted transition restarts the embed load")
	assert.Equal(t, "https://vidsrc.icu/embed/anime/101922/2/0", st.EmbedURL())
}

func TestAdvanceRejectsBelowFirst(t *testing.T) {
	st := animeState(25, 1)
	before := st.Coordinates()

	err := st.Advance(-1)
	assert.ErrorIs(t, err, viewer.ErrAtFirst)
	assert.Equal(t, before, st.Coordinates(), "rejected transition leaves state unchanged")
	assert.Equal(t, "https://vidsrc.icu/embed/anime/101922/1/0", st.EmbedURL())
}

func TestAdvanceRejectsPastKnownTotal(t *testing.T) {
	st := animeState(25, 25)
	before := st.Coordinates()

	err := st.Advance(1)
	assert.ErrorIs(t, err, viewer.ErrAtLast)
	assert.Equal(t, before, st.Coordinates())
}

func TestAdvanceUnboundedWhenTotalUnknown(t *testing.T) {
	st := animeState(0, 500)
	require.NoError(t, st.Advance(1))
	assert.Equal(t, 501, st.Coordinates().Item)
}

func TestChangeSeasonResetsItem(t *testing.T) {
	st := tvState(7, 1)

	require.NoError(t, st.ChangeSeason(2))
	coords := st.Coordinates()
	assert.Equal(t, 2, coords.Season)
	assert.Equal(t, 1, coords.Item, "episode counter never carries across seasons")
	assert.Equal(t, "https://vidfast.pro/tv/tt0903747/2/1", st.EmbedURL())
	assert.Equal(t, "/view/tv/1396-breaking-bad?season=2&episode=1", st.ViewerURL())
}

func TestChangeSeasonBoundsPerSeason(t *testing.T) {
	st := tvState(1, 1)
	assert.Equal(t, 7, st.TotalItems())

	require.NoError(t, st.ChangeSeason(2))
	assert.Equal(t, 13, st.TotalItems())
}

func TestChangeSeasonRejectedForNonTV(t *testing.T) {
	st := animeState(25, 3)
	assert.Error(t, st.ChangeSeason(2))
	assert.Equal(t, 3, st.Coordinates().Item)
}

func TestToggleDub(t *testing.T) {
	st := animeState(25, 3)

	st.ToggleDub()
	assert.True(t, st.Coordinates().Dub)
	assert.Equal(t, "https://vidsrc.icu/embed/anime/101922/3/1", st.EmbedURL())
	assert.Equal(t, "/view/anime/101922-spyxfamily?item=3&dub=1", st.ViewerURL())

	st.ToggleDub()
	assert.False(t, st.Coordinates().Dub)
}

func TestToggleDubNoOpForOtherKinds(t *testing.T) {
	st := tvState(1, 1)
	st.ToggleDub()
	assert.False(t, st.Coordinates().Dub)
	assert.Equal(t, "https://vidfast.pro/tv/tt0903747/1/1", st.EmbedURL())
}
