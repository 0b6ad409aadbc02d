package models

import "strings"

// PlaybackState is the player state reported by the media server for a session.
type PlaybackState string

const (
	StatePlaying   PlaybackState = "playing"
	StateBuffering PlaybackState = "buffering"
	StatePaused    PlaybackState = "paused"
)

// Session represents one live playback session. Sessions are fetched per
// status request and never persisted.
type Session struct {
	Title      string        `json:"title"`
	State      PlaybackState `json:"state"`
	Thumb      string        `json:"thumb"`
	Type       string        `json:"type,omitempty"`
	ViewOffset int64         `json:"viewOffset"`
	UpdatedAt  int64         `json:"updatedAt"`
}

// NormalizedState returns the lower-cased playback state.
func (s Session) NormalizedState() PlaybackState {
	return PlaybackState(strings.ToLower(strings.TrimSpace(string(s.State))))
}

// Priority ranks how "active" a session is: playing > buffering > paused.
// Any other state ranks 0.
func (s Session) Priority() int {
	switch s.NormalizedState() {
	case StatePlaying:
		return 3
	case StateBuffering:
		return 2
	case StatePaused:
		return 1
	default:
		return 0
	}
}
