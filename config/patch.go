package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

var (
	ErrUnknownField = errors.New("unknown settings field")
	ErrInvalidGroup = errors.New("settings group must be an object")
)

// ApplyPatch merges a loosely typed partial update into s. Values are coerced
// the way an HTML form would submit them; numbers that do not parse fall back
// to their defaults instead of failing the request.
func ApplyPatch(s Settings, patch map[string]any) (Settings, error) {
	out := s
	out.Poster.MPAAAllowed = append([]string(nil), s.Poster.MPAAAllowed...)

	for group, raw := range patch {
		fields, err := cast.ToStringMapE(raw)
		if err != nil {
			return s, fmt.Errorf("%w: %s", ErrInvalidGroup, group)
		}
		switch group {
		case "connection":
			err = patchConnection(&out.Connection, fields)
		case "poster":
			err = patchPoster(&out.Poster, fields)
		case "banner":
			err = patchBanner(&out.Banner, fields)
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownField, group)
		}
		if err != nil {
			return s, err
		}
	}
	return out, nil
}

func patchConnection(c *Connection, fields map[string]any) error {
	for key, v := range fields {
		switch key {
		case "plex_ip":
			c.PlexIP = trimmed(v)
		case "plex_token":
			c.PlexToken = trimmed(v)
		default:
			return fmt.Errorf("%w: connection.%s", ErrUnknownField, key)
		}
	}
	return nil
}

func patchPoster(p *PosterSettings, fields map[string]any) error {
	for key, v := range fields {
		switch key {
		case "library":
			p.Library = trimmed(v)
		case "fill":
			p.Fill = orDefault(cast.ToString(v), FillCrop)
		case "large_only":
			p.LargeOnly = flag(v)
		case "rating_type":
			p.RatingType = orDefault(cast.ToString(v), RatingCritic)
		case "rating_threshold":
			f, err := cast.ToFloat64E(v)
			if err != nil {
				f = 0.0
			}
			p.RatingThreshold = f
		case "idle_rotation_seconds":
			n, err := cast.ToIntE(v)
			if err != nil || n == 0 {
				n = DefaultRotation
			}
			p.IdleRotationSeconds = n
		case "paused_counts_as_playing":
			p.PausedCountsAsPlaying = flag(v)
		case "mpaa_allowed":
			p.MPAAAllowed = ratingList(v)
		default:
			return fmt.Errorf("%w: poster.%s", ErrUnknownField, key)
		}
	}
	return nil
}

func patchBanner(b *BannerSettings, fields map[string]any) error {
	for key, v := range fields {
		switch key {
		case "enable":
			b.Enable = flag(v)
		case "font_family":
			b.FontFamily = orDefault(cast.ToString(v), "neon")
		case "font_size":
			n, err := cast.ToIntE(v)
			if err != nil || n == 0 {
				n = DefaultFontSize
			}
			b.FontSize = n
		case "font_color":
			b.FontColor = orDefault(cast.ToString(v), "#ff4df0")
		case "idle_top_text":
			b.IdleTopText = trimmed(v)
		case "active_top_text":
			b.ActiveTopText = trimmed(v)
		case "bottom_text":
			b.BottomText = trimmed(v)
		default:
			return fmt.Errorf("%w: banner.%s", ErrUnknownField, key)
		}
	}
	return nil
}

func trimmed(v any) string {
	return strings.TrimSpace(cast.ToString(v))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// flag treats checkbox-style values ("on", "yes") as true.
func flag(v any) bool {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "on", "yes", "y":
			return true
		}
	}
	return cast.ToBool(v)
}

// ratingList accepts a JSON array or a comma separated string. An empty
// selection restores the default allow-list.
func ratingList(v any) []string {
	var raw []string
	if s, ok := v.(string); ok {
		raw = strings.Split(s, ",")
	} else {
		raw = cast.ToStringSlice(v)
	}

	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultContentRatings...)
	}
	return out
}
