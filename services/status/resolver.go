// Package status derives what the display should show right now.
package status

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/isaacrego/plex-poster-display/config"
	"github.com/isaacrego/plex-poster-display/models"
	"github.com/isaacrego/plex-poster-display/services/mediasource"
)

// SettingsLoader provides the current settings.
type SettingsLoader interface {
	Load() config.Settings
}

// IdleCache is the part of the artwork cache the idle rotation uses.
type IdleCache interface {
	Snapshot() ([]models.ArtworkItem, models.IdleState)
	SetIdleState(state models.IdleState) error
}

// Resolver computes the status payload on every request.
type Resolver struct {
	settings SettingsLoader
	cache    IdleCache
	sources  mediasource.Factory
	now      func() time.Time
}

func NewResolver(settings SettingsLoader, cache IdleCache, sources mediasource.Factory) *Resolver {
	return &Resolver{
		settings: settings,
		cache:    cache,
		sources:  sources,
		now:      time.Now,
	}
}

// SetClock overrides the time source used by the idle rotation.
func (r *Resolver) SetClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Resolve never fails. Media server errors degrade to the idle poster, and
// an unconfigured server yields the not-connected payload.
func (r *Resolver) Resolve(ctx context.Context) models.Status {
	cfg := r.settings.Load().Normalized()
	if !cfg.IsConfigured() {
		return models.NotConnectedStatus()
	}

	src := r.sources(cfg.Connection)

	sessions, err := src.Sessions(ctx)
	if err != nil {
		log.Printf("[status] session lookup failed, treating as idle: %v", err)
		sessions = nil
	}

	st := models.Status{
		Connected:   true,
		ShowBanners: cfg.Banner.ShowBanners(),
		Banner: &models.BannerStyle{
			FontFamily: cfg.Banner.FontFamily,
			FontSize:   cfg.Banner.FontSize,
			FontColor:  cfg.Banner.FontColor,
		},
		FillMode:   cfg.Poster.Fill,
		BottomText: strings.TrimSpace(cfg.Banner.BottomText),
	}

	if playing, ok := SelectSession(sessions, cfg.Poster.PausedCountsAsPlaying); ok {
		st.State = models.DisplayNowPlaying
		st.NowPlaying = &models.Poster{Title: playing.Title, Image: imageRef(src, playing.Thumb)}
		st.TopText = strings.TrimSpace(cfg.Banner.ActiveTopText)
		return st
	}

	st.State = models.DisplayIdle
	st.TopText = strings.TrimSpace(cfg.Banner.IdleTopText)
	st.Idle = &models.Poster{}

	if item, ok := r.rotate(cfg.Poster.IdleRotationSeconds); ok {
		st.Idle.Title = item.Title
		st.Idle.Image = imageRef(src, item.Thumb)
	}
	return st
}

// rotate advances the idle cursor when it is unset, out of range or older
// than the rotation period, persisting the new cursor before choosing. Two
// requests racing here may both advance; the result is a skipped poster, not
// a broken cursor.
func (r *Resolver) rotate(periodSeconds int) (models.ArtworkItem, bool) {
	items, idle := r.cache.Snapshot()
	if len(items) == 0 {
		return models.ArtworkItem{}, false
	}

	now := r.now().Unix()
	idx := idle.Index
	valid := idx >= 0 && idx < len(items)

	if !valid || now-idle.LastChange >= int64(periodSeconds) {
		if valid {
			idx = (idx + 1) % len(items)
		} else {
			idx = 0
		}
		if err := r.cache.SetIdleState(models.IdleState{Index: idx, LastChange: now}); err != nil {
			log.Printf("[status] persist idle cursor: %v", err)
		}
	}
	return items[idx], true
}

// SelectSession picks the most active eligible session: playing before
// buffering before paused, then the furthest view offset, then the most
// recent update. Paused sessions are only eligible when includePaused is set.
func SelectSession(sessions []models.Session, includePaused bool) (models.Session, bool) {
	eligible := mapset.NewThreadUnsafeSet(models.StatePlaying, models.StateBuffering)
	if includePaused {
		eligible.Add(models.StatePaused)
	}

	candidates := make([]models.Session, 0, len(sessions))
	for _, s := range sessions {
		if eligible.Contains(s.NormalizedState()) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return models.Session{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Priority() != b.Priority() {
			return a.Priority() > b.Priority()
		}
		if a.ViewOffset != b.ViewOffset {
			return a.ViewOffset > b.ViewOffset
		}
		return a.UpdatedAt > b.UpdatedAt
	})
	return candidates[0], true
}

func imageRef(src mediasource.Source, ref string) *string {
	if ref == "" {
		return nil
	}
	if u := src.ImageURL(ref); u != "" {
		return &u
	}
	return nil
}
