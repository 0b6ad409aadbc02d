package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isaacrego/plex-poster-display/config"
	"github.com/isaacrego/plex-poster-display/models"
)

func TestFilter_TVRatingsAllowedWhenUnknownAllowed(t *testing.T) {
	poster := config.Default().Poster
	poster.MPAAAllowed = []string{"G", "PG", "Unknown"}
	f := NewFilter(poster)

	assert.True(t, f.Keep(models.ArtworkItem{Title: "show", ContentRating: "TV-14"}))
	assert.False(t, f.Keep(models.ArtworkItem{Title: "movie", ContentRating: "PG-13"}))
	assert.True(t, f.Keep(models.ArtworkItem{Title: "unrated"}))
}

func TestFilter_TVRatingsRejectedWithoutUnknown(t *testing.T) {
	poster := config.Default().Poster
	poster.MPAAAllowed = []string{"G", "PG"}
	f := NewFilter(poster)

	assert.False(t, f.Keep(models.ArtworkItem{ContentRating: "TV-14"}))
	assert.False(t, f.Keep(models.ArtworkItem{}))
	assert.True(t, f.Keep(models.ArtworkItem{ContentRating: "PG"}))
}

func TestFilter_RatingThreshold(t *testing.T) {
	poster := config.Default().Poster
	poster.RatingThreshold = 6.0
	f := NewFilter(poster)

	assert.False(t, f.Keep(models.ArtworkItem{ContentRating: "PG", Rating: models.Float64Ptr(5.9)}))
	assert.True(t, f.Keep(models.ArtworkItem{ContentRating: "PG", Rating: models.Float64Ptr(6.0)}))
	assert.True(t, f.Keep(models.ArtworkItem{ContentRating: "PG"}), "absent rating passes")
	assert.True(t, f.Keep(models.ArtworkItem{ContentRating: "PG", Rating: models.Float64Ptr(8), AudienceRating: models.Float64Ptr(1)}))

	poster.RatingType = config.RatingAudience
	f = NewFilter(poster)
	assert.False(t, f.Keep(models.ArtworkItem{ContentRating: "PG", Rating: models.Float64Ptr(8), AudienceRating: models.Float64Ptr(1)}))

	// Anything but "critic" reads the audience rating.
	poster.RatingType = "popular"
	f = NewFilter(poster)
	assert.False(t, f.Keep(models.ArtworkItem{ContentRating: "PG", Rating: models.Float64Ptr(8), AudienceRating: models.Float64Ptr(1)}))
}

func TestFilter_LargeOnly(t *testing.T) {
	poster := config.Default().Poster
	f := NewFilter(poster)

	assert.False(t, f.Keep(models.ArtworkItem{ContentRating: "R", Height: models.IntPtr(720)}))
	assert.True(t, f.Keep(models.ArtworkItem{ContentRating: "R", Height: models.IntPtr(1080)}))
	assert.True(t, f.Keep(models.ArtworkItem{ContentRating: "R"}), "unknown height passes")

	poster.LargeOnly = false
	assert.True(t, NewFilter(poster).Keep(models.ArtworkItem{ContentRating: "R", Height: models.IntPtr(480)}))
}

func TestFilter_ApplyPreservesOrder(t *testing.T) {
	f := NewFilter(config.Default().Poster)
	in := []models.ArtworkItem{
		{Title: "a", ContentRating: "G"},
		{Title: "b", ContentRating: "X"},
		{Title: "c", ContentRating: "R"},
	}
	out := f.Apply(in)
	assert.Equal(t, []models.ArtworkItem{in[0], in[2]}, out)
}
