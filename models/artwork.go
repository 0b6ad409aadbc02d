package models

// UnknownContentRating is used when an item carries no content rating.
const UnknownContentRating = "Unknown"

// ArtworkItem is a poster candidate captured by a refresh cycle.
type ArtworkItem struct {
	Title          string   `json:"title"`
	Type           string   `json:"type"`
	Rating         *float64 `json:"rating"`
	AudienceRating *float64 `json:"audienceRating"`
	ContentRating  string   `json:"contentRating"`
	Thumb          string   `json:"thumb"`
	Height         *int     `json:"height"`
}

// EffectiveContentRating returns the content rating, defaulting to "Unknown".
func (a ArtworkItem) EffectiveContentRating() string {
	if a.ContentRating == "" {
		return UnknownContentRating
	}
	return a.ContentRating
}

// Library is a movie or show section on the media server.
type Library struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
