package plex

// apiResponse wraps the MediaContainer returned by every JSON endpoint.
type apiResponse struct {
	MediaContainer mediaContainer `json:"MediaContainer"`
}

type mediaContainer struct {
	Size      int         `json:"size"`
	TotalSize int         `json:"totalSize,omitempty"`
	Offset    int         `json:"offset,omitempty"`
	Directory []directory `json:"Directory,omitempty"`
	Metadata  []metadata  `json:"Metadata,omitempty"`
}

// directory is a library section.
type directory struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// metadata is a library item or, under /status/sessions, a playing item.
type metadata struct {
	RatingKey        string   `json:"ratingKey"`
	Type             string   `json:"type"`
	Title            string   `json:"title"`
	ParentTitle      string   `json:"parentTitle,omitempty"`
	GrandparentTitle string   `json:"grandparentTitle,omitempty"`
	ContentRating    string   `json:"contentRating,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	AudienceRating   *float64 `json:"audienceRating,omitempty"`
	Thumb            string   `json:"thumb,omitempty"`
	Art              string   `json:"art,omitempty"`
	GrandparentThumb string   `json:"grandparentThumb,omitempty"`
	ViewOffset       int64    `json:"viewOffset,omitempty"`
	UpdatedAt        int64    `json:"updatedAt,omitempty"`
	State            string   `json:"state,omitempty"`
	Media            []media  `json:"Media,omitempty"`
	Player           *player  `json:"Player,omitempty"`
}

type media struct {
	ID     int `json:"id"`
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

type player struct {
	Title string `json:"title,omitempty"`
	State string `json:"state"`
}
