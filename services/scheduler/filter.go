package scheduler

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/isaacrego/plex-poster-display/config"
	"github.com/isaacrego/plex-poster-display/models"
)

const (
	largeHeight = 1080
	tvPrefix    = "TV-"
)

// Filter decides which library items are eligible for the idle rotation.
type Filter struct {
	audience  bool
	threshold float64
	allowed   mapset.Set[string]
	largeOnly bool
}

// NewFilter builds a filter from the poster settings.
func NewFilter(p config.PosterSettings) Filter {
	return Filter{
		audience:  !strings.EqualFold(strings.TrimSpace(p.RatingType), config.RatingCritic),
		threshold: p.RatingThreshold,
		allowed:   mapset.NewThreadUnsafeSet(p.MPAAAllowed...),
		largeOnly: p.LargeOnly,
	}
}

// Keep reports whether item passes the rating threshold, the content rating
// allow-list and the size check, in that order.
func (f Filter) Keep(item models.ArtworkItem) bool {
	rating := item.Rating
	if f.audience {
		rating = item.AudienceRating
	}
	if rating != nil && *rating < f.threshold {
		return false
	}

	cr := item.EffectiveContentRating()
	if !f.allowed.Contains(cr) {
		// TV ratings ride along when unrated content is allowed.
		if !(strings.HasPrefix(cr, tvPrefix) && f.allowed.Contains(models.UnknownContentRating)) {
			return false
		}
	}

	if f.largeOnly && item.Height != nil && *item.Height < largeHeight {
		return false
	}
	return true
}

// Apply returns the items that pass Keep, preserving their order.
func (f Filter) Apply(items []models.ArtworkItem) []models.ArtworkItem {
	out := make([]models.ArtworkItem, 0, len(items))
	for _, item := range items {
		if f.Keep(item) {
			out = append(out, item)
		}
	}
	return out
}
