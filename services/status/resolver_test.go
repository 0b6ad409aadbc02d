package status

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/isaacrego/plex-poster-display/config"
	"github.com/isaacrego/plex-poster-display/models"
	"github.com/isaacrego/plex-poster-display/services/cache"
	"github.com/isaacrego/plex-poster-display/services/mediasource"
	"github.com/isaacrego/plex-poster-display/services/mediasource/mocks"
)

type fixedSettings config.Settings

func (f fixedSettings) Load() config.Settings { return config.Settings(f) }

func configured() config.Settings {
	s := config.Default()
	s.Connection = config.Connection{PlexIP: "10.0.0.2", PlexToken: "tok"}
	return s
}

func pool(n int) []models.ArtworkItem {
	out := make([]models.ArtworkItem, n)
	for i := range out {
		out[i] = models.ArtworkItem{Title: fmt.Sprintf("poster-%d", i), Thumb: fmt.Sprintf("/thumb/%d", i), ContentRating: "PG"}
	}
	return out
}

type fixture struct {
	src      *mocks.MockSource
	cache    *cache.Service
	resolver *Resolver
	now      time.Time
}

func newFixture(t *testing.T, settings config.Settings) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().ImageURL(gomock.Any()).DoAndReturn(func(ref string) string {
		if ref == "" {
			return ""
		}
		return "http://10.0.0.2:32400" + ref + "?X-Plex-Token=tok"
	}).AnyTimes()

	c, err := cache.NewService(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)

	f := &fixture{src: src, cache: c, now: time.Unix(1_000_000, 0)}
	factory := func(config.Connection) mediasource.Source { return src }
	f.resolver = NewResolver(fixedSettings(settings), c, factory)
	f.resolver.SetClock(func() time.Time { return f.now })
	return f
}

func TestResolve_NotConfigured(t *testing.T) {
	f := newFixture(t, config.Default())

	st := f.resolver.Resolve(context.Background())
	assert.Equal(t, models.NotConnectedStatus(), st)
	assert.False(t, st.Connected)
	assert.Equal(t, "Not connected", st.Message)
}

func TestResolve_IdleRotationAdvancesOncePerPeriod(t *testing.T) {
	f := newFixture(t, configured())
	f.src.EXPECT().Sessions(gomock.Any()).Return(nil, nil).Times(2)

	T := f.now.Unix()
	require.NoError(t, f.cache.ReplaceItems(pool(5)))
	require.NoError(t, f.cache.SetIdleState(models.IdleState{Index: 2, LastChange: T}))

	f.now = f.now.Add(25 * time.Second)
	st := f.resolver.Resolve(context.Background())

	assert.Equal(t, models.DisplayIdle, st.State)
	require.NotNil(t, st.Idle)
	assert.Equal(t, "poster-3", st.Idle.Title)
	assert.Equal(t, models.IdleState{Index: 3, LastChange: T + 25}, f.cache.IdleState())

	st = f.resolver.Resolve(context.Background())
	assert.Equal(t, "poster-3", st.Idle.Title)
	assert.Equal(t, models.IdleState{Index: 3, LastChange: T + 25}, f.cache.IdleState())
}

func TestResolve_IdleRotationWrapsAround(t *testing.T) {
	f := newFixture(t, configured())
	f.src.EXPECT().Sessions(gomock.Any()).Return(nil, nil)

	require.NoError(t, f.cache.ReplaceItems(pool(3)))
	require.NoError(t, f.cache.SetIdleState(models.IdleState{Index: 2, LastChange: 0}))

	st := f.resolver.Resolve(context.Background())
	assert.Equal(t, "poster-0", st.Idle.Title)
	assert.Equal(t, 0, f.cache.IdleState().Index)
}

func TestResolve_IdleStartsAtZero(t *testing.T) {
	f := newFixture(t, configured())
	f.src.EXPECT().Sessions(gomock.Any()).Return(nil, nil)

	require.NoError(t, f.cache.ReplaceItems(pool(4)))

	st := f.resolver.Resolve(context.Background())
	assert.Equal(t, "poster-0", st.Idle.Title)
	require.NotNil(t, st.Idle.Image)
	assert.Equal(t, "http://10.0.0.2:32400/thumb/0?X-Plex-Token=tok", *st.Idle.Image)
	assert.Equal(t, models.IdleState{Index: 0, LastChange: f.now.Unix()}, f.cache.IdleState())
}

func TestResolve_ZeroRotationPeriodUsesDefault(t *testing.T) {
	settings := configured()
	settings.Poster.IdleRotationSeconds = 0
	f := newFixture(t, settings)
	f.src.EXPECT().Sessions(gomock.Any()).Return(nil, nil)

	require.NoError(t, f.cache.ReplaceItems(pool(3)))
	require.NoError(t, f.cache.SetIdleState(models.IdleState{Index: 1, LastChange: f.now.Unix() - 10}))

	st := f.resolver.Resolve(context.Background())
	assert.Equal(t, "poster-1", st.Idle.Title)
}

func TestResolve_EmptyPool(t *testing.T) {
	f := newFixture(t, configured())
	f.src.EXPECT().Sessions(gomock.Any()).Return(nil, nil)

	st := f.resolver.Resolve(context.Background())
	assert.Equal(t, models.DisplayIdle, st.State)
	assert.True(t, st.Connected)
	require.NotNil(t, st.Idle)
	assert.Equal(t, "", st.Idle.Title)
	assert.Nil(t, st.Idle.Image)
	assert.Equal(t, "COMING SOON", st.TopText)
}

func TestResolve_PlayingBeatsPaused(t *testing.T) {
	f := newFixture(t, configured())
	f.src.EXPECT().Sessions(gomock.Any()).Return([]models.Session{
		{Title: "paused film", State: models.StatePaused, Thumb: "/p", ViewOffset: 100, UpdatedAt: 5},
		{Title: "playing film", State: models.StatePlaying, Thumb: "/q", ViewOffset: 1, UpdatedAt: 1},
	}, nil)

	st := f.resolver.Resolve(context.Background())
	assert.Equal(t, models.DisplayNowPlaying, st.State)
	require.NotNil(t, st.NowPlaying)
	assert.Equal(t, "playing film", st.NowPlaying.Title)
	assert.Equal(t, "NOW PLAYING", st.TopText)
	assert.Nil(t, st.Idle)
}

func TestResolve_PausedIgnoredWhenNotCounted(t *testing.T) {
	settings := configured()
	settings.Poster.PausedCountsAsPlaying = false
	f := newFixture(t, settings)
	f.src.EXPECT().Sessions(gomock.Any()).Return([]models.Session{
		{Title: "paused film", State: models.StatePaused},
	}, nil)

	st := f.resolver.Resolve(context.Background())
	assert.Equal(t, models.DisplayIdle, st.State)
}

func TestResolve_SessionErrorFallsBackToIdle(t *testing.T) {
	f := newFixture(t, configured())
	f.src.EXPECT().Sessions(gomock.Any()).Return(nil, errors.New("connection refused"))
	require.NoError(t, f.cache.ReplaceItems(pool(2)))

	st := f.resolver.Resolve(context.Background())
	assert.Equal(t, models.DisplayIdle, st.State)
	assert.Equal(t, "poster-0", st.Idle.Title)
}

func TestResolve_BannerVisibility(t *testing.T) {
	settings := configured()
	settings.Banner.IdleTopText = "  "
	settings.Banner.ActiveTopText = ""
	settings.Banner.BottomText = ""
	f := newFixture(t, settings)
	f.src.EXPECT().Sessions(gomock.Any()).Return(nil, nil).AnyTimes()

	st := f.resolver.Resolve(context.Background())
	assert.False(t, st.ShowBanners)

	settings.Banner.BottomText = "Friday movie night"
	f.resolver.settings = fixedSettings(settings)
	st = f.resolver.Resolve(context.Background())
	assert.True(t, st.ShowBanners)
	assert.Equal(t, "Friday movie night", st.BottomText)
	require.NotNil(t, st.Banner)
	assert.Equal(t, 48, st.Banner.FontSize)

	settings.Banner.Enable = false
	f.resolver.settings = fixedSettings(settings)
	assert.False(t, f.resolver.Resolve(context.Background()).ShowBanners)
}

func TestSelectSession_TieBreaks(t *testing.T) {
	sessions := []models.Session{
		{Title: "a", State: "Buffering", ViewOffset: 50, UpdatedAt: 1},
		{Title: "b", State: "buffering", ViewOffset: 50, UpdatedAt: 9},
		{Title: "c", State: "stopped", ViewOffset: 900},
		{Title: "d", State: "buffering", ViewOffset: 10, UpdatedAt: 99},
	}
	got, ok := SelectSession(sessions, true)
	require.True(t, ok)
	assert.Equal(t, "b", got.Title)

	_, ok = SelectSession([]models.Session{{State: "stopped"}}, true)
	assert.False(t, ok)
}
