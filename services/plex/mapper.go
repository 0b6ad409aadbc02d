package plex

import (
	"strings"

	"github.com/isaacrego/plex-poster-display/models"
)

const nowPlayingTitle = "Now Playing"

func isArtworkType(t string) bool {
	return t == "movie" || t == "show"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func mapLibraries(dirs []directory) []models.Library {
	out := make([]models.Library, 0, len(dirs))
	for _, d := range dirs {
		if !isArtworkType(d.Type) {
			continue
		}
		out = append(out, models.Library{Key: d.Key, Title: d.Title, Type: d.Type})
	}
	return out
}

func mapSession(m metadata) models.Session {
	state := m.State
	if m.Player != nil {
		state = m.Player.State
	}
	kind := m.Type
	if kind == "" {
		kind = "video"
	}
	return models.Session{
		Title:      firstNonEmpty(m.Title, m.ParentTitle, m.GrandparentTitle, nowPlayingTitle),
		State:      models.PlaybackState(strings.ToLower(state)),
		Thumb:      firstNonEmpty(m.Thumb, m.GrandparentThumb, m.Art),
		Type:       kind,
		ViewOffset: m.ViewOffset,
		UpdatedAt:  m.UpdatedAt,
	}
}

func mapSessions(items []metadata) []models.Session {
	out := make([]models.Session, 0, len(items))
	for _, m := range items {
		out = append(out, mapSession(m))
	}
	return out
}

// mapArtwork converts one library entry; ok is false for entries that are
// not movies or shows.
func mapArtwork(m metadata) (models.ArtworkItem, bool) {
	if !isArtworkType(m.Type) {
		return models.ArtworkItem{}, false
	}
	item := models.ArtworkItem{
		Title:          firstNonEmpty(m.Title, "Untitled"),
		Type:           m.Type,
		Rating:         m.Rating,
		AudienceRating: m.AudienceRating,
		ContentRating:  firstNonEmpty(m.ContentRating, models.UnknownContentRating),
		Thumb:          firstNonEmpty(m.Thumb, m.Art),
	}
	if len(m.Media) > 0 && m.Media[0].Height > 0 {
		item.Height = models.IntPtr(m.Media[0].Height)
	}
	return item, true
}
