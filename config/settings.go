package config

import "strings"

const (
	FillCrop        = "crop"
	FillStretch     = "fill-stretch"
	FillAspect      = "fill-aspect"
	RatingCritic    = "critic"
	RatingAudience  = "audience"
	DefaultRotation = 20
	DefaultFontSize = 48
)

// DefaultContentRatings is the allow-list a fresh install starts with.
var DefaultContentRatings = []string{"G", "PG", "PG-13", "R", "NC-17", "Unknown"}

// Settings is the persisted display configuration.
type Settings struct {
	Connection Connection     `json:"connection"`
	Poster     PosterSettings `json:"poster"`
	Banner     BannerSettings `json:"banner"`
}

// Connection identifies the media server.
type Connection struct {
	PlexIP    string `json:"plex_ip"`
	PlexToken string `json:"plex_token"`
}

type PosterSettings struct {
	Library               string   `json:"library"`
	Fill                  string   `json:"fill"`
	LargeOnly             bool     `json:"large_only"`
	RatingType            string   `json:"rating_type"`
	RatingThreshold       float64  `json:"rating_threshold"`
	IdleRotationSeconds   int      `json:"idle_rotation_seconds"`
	PausedCountsAsPlaying bool     `json:"paused_counts_as_playing"`
	MPAAAllowed           []string `json:"mpaa_allowed"`
}

type BannerSettings struct {
	Enable        bool   `json:"enable"`
	FontFamily    string `json:"font_family"`
	FontSize      int    `json:"font_size"`
	FontColor     string `json:"font_color"`
	IdleTopText   string `json:"idle_top_text"`
	ActiveTopText string `json:"active_top_text"`
	BottomText    string `json:"bottom_text"`
}

// Default returns a fresh settings value with every field populated.
func Default() Settings {
	return Settings{
		Connection: Connection{},
		Poster: PosterSettings{
			Library:               "",
			Fill:                  FillCrop,
			LargeOnly:             true,
			RatingType:            RatingCritic,
			RatingThreshold:       0.0,
			IdleRotationSeconds:   DefaultRotation,
			PausedCountsAsPlaying: true,
			MPAAAllowed:           append([]string(nil), DefaultContentRatings...),
		},
		Banner: BannerSettings{
			Enable:        true,
			FontFamily:    "neon",
			FontSize:      DefaultFontSize,
			FontColor:     "#ff4df0",
			IdleTopText:   "COMING SOON",
			ActiveTopText: "NOW PLAYING",
			BottomText:    "",
		},
	}
}

// Host returns the trimmed server address.
func (c Connection) Host() string { return strings.TrimSpace(c.PlexIP) }

// Token returns the trimmed auth token.
func (c Connection) Token() string { return strings.TrimSpace(c.PlexToken) }

// IsConfigured reports whether both host and token are set.
func (s Settings) IsConfigured() bool {
	return s.Connection.Host() != "" && s.Connection.Token() != ""
}

// Normalized clamps values the refresh and status paths depend on.
func (s Settings) Normalized() Settings {
	out := s
	if out.Poster.IdleRotationSeconds <= 0 {
		out.Poster.IdleRotationSeconds = DefaultRotation
	}
	if out.Poster.RatingThreshold < 0 {
		out.Poster.RatingThreshold = 0
	}
	// Only an explicit "critic" selects the critic rating.
	if strings.EqualFold(strings.TrimSpace(out.Poster.RatingType), RatingCritic) {
		out.Poster.RatingType = RatingCritic
	} else {
		out.Poster.RatingType = RatingAudience
	}
	if out.Banner.FontSize <= 0 {
		out.Banner.FontSize = DefaultFontSize
	}
	out.Poster.MPAAAllowed = append([]string(nil), s.Poster.MPAAAllowed...)
	return out
}

// ShowBanners reports whether banner text should be rendered at all.
func (b BannerSettings) ShowBanners() bool {
	if !b.Enable {
		return false
	}
	for _, text := range []string{b.IdleTopText, b.ActiveTopText, b.BottomText} {
		if strings.TrimSpace(text) != "" {
			return true
		}
	}
	return false
}
