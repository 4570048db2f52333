package models

// SceneMetadata is the normalized output of the video understanding system
// for a single scene. It is decoded once per request and never mutated.
type SceneMetadata struct {
	SceneID string `json:"scene_id" validate:"required"`
	// TimestampRange is [start_sec, end_sec]. Only the element count is
	// enforced; ordering is left to the producer.
	TimestampRange   []float64        `json:"timestamp_range" validate:"len=2"`
	DetectedObjects  []DetectedObject `json:"detected_objects" validate:"dive"`
	SceneTags        []string         `json:"scene_tags"`
	DialogueKeywords []string         `json:"dialogue_keywords"`
	Episode          *EpisodeMetadata `json:"episode,omitempty"`
}

// DetectedObject is a single object detection within a scene.
type DetectedObject struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
	// BBox is [x, y, w, h].
	BBox []float64 `json:"bbox" validate:"len=4"`
}

// EpisodeMetadata carries show and episode level signals that are stable
// across all scenes of an episode.
type EpisodeMetadata struct {
	ShowTitle           string  `json:"show_title"`
	Season              int     `json:"season" validate:"min=1"`
	Episode             int     `json:"episode" validate:"min=1"`
	EpisodeTitle        string  `json:"episode_title"`
	OriginalReleaseDate *string `json:"original_release_date,omitempty"`
	RunningTimeMinutes  *int    `json:"running_time_minutes,omitempty" validate:"omitempty,min=1,max=180"`
	MaturityRating      *string `json:"maturity_rating,omitempty"`

	Genres            []string        `json:"genres"`
	ToneTags          []string        `json:"tone_tags"`
	SettingTags       []string        `json:"setting_tags"`
	Keywords          []string        `json:"keywords"`
	ProminentProducts []ProductSignal `json:"prominent_products" validate:"dive"`
}

// Prominence levels for ProductSignal.
const (
	ProminenceLow  = "low"
	ProminenceMed  = "med"
	ProminenceHigh = "high"
)

// ProductSignal records a product category that is visually or narratively
// prominent across an episode.
type ProductSignal struct {
	Category   string   `json:"category"`
	Labels     []string `json:"labels"`
	Brands     []string `json:"brands"`
	Prominence string   `json:"prominence" validate:"oneof=low med high"`
}
