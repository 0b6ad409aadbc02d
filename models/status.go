package models

// DisplayState discriminates the status payload.
type DisplayState string

const (
	DisplayNotConnected DisplayState = "not_connected"
	DisplayNowPlaying   DisplayState = "now_playing"
	DisplayIdle         DisplayState = "idle"
)

// NotConnectedMessage is returned while no media server is configured.
const NotConnectedMessage = "Not connected"

// BannerStyle carries the font settings the front-end applies to banners.
type BannerStyle struct {
	FontFamily string `json:"font_family"`
	FontSize   int    `json:"font_size"`
	FontColor  string `json:"font_color"`
}

// Poster is the title and absolute image URL shown on screen. Image is nil
// when no image is available.
type Poster struct {
	Title string  `json:"title"`
	Image *string `json:"image"`
}

// Status is the current-state snapshot consumed by the display front-end.
type Status struct {
	State       DisplayState `json:"state"`
	Connected   bool         `json:"connected"`
	Message     string       `json:"message,omitempty"`
	ShowBanners bool         `json:"show_banners"`
	Banner      *BannerStyle `json:"banner,omitempty"`
	FillMode    string       `json:"fill_mode,omitempty"`
	NowPlaying  *Poster      `json:"now_playing,omitempty"`
	Idle        *Poster      `json:"idle,omitempty"`
	TopText     string       `json:"top_text"`
	BottomText  string       `json:"bottom_text"`
}

// NotConnectedStatus is the fixed payload for an unconfigured or unreachable server.
func NotConnectedStatus() Status {
	return Status{
		State:       DisplayNotConnected,
		Connected:   false,
		Message:     NotConnectedMessage,
		ShowBanners: false,
	}
}
