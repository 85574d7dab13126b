package types

// PlaylistItemRequest is one entry in a playlist create/update payload.
type PlaylistItemRequest struct {
	MediaID         int64 `json:"media_id" validate:"required"`
	DurationSeconds int   `json:"duration_seconds" validate:"omitempty,min=1"`
	Order           int   `json:"order" validate:"min=0"`
}

type PlaylistRequest struct {
	Name        string                `json:"name" validate:"required"`
	Description string                `json:"description"`
	Items       []PlaylistItemRequest `json:"items" validate:"dive"`
}

// ScheduleRequest creates or replaces a schedule. Exactly one of PlaylistID
// and MediaID must be set, matching ContentType. IsActive defaults to true
// when omitted.
type ScheduleRequest struct {
	Name        string `json:"name" validate:"required"`
	ContentType string `json:"content_type" validate:"required,oneof=playlist single_image"`
	PlaylistID  *int64 `json:"playlist_id"`
	MediaID     *int64 `json:"media_id"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	DayOfWeek   *int   `json:"day_of_week" validate:"omitempty,min=0,max=6"`
	IsActive    *bool  `json:"is_active"`
	Priority    int    `json:"priority"`
}

type ToggleActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type HeartbeatRequest struct {
	DisplayID      string `json:"displayId" validate:"required"`
	ClientTime     string `json:"clientTime"`
	CurrentContent string `json:"currentContent"`
}

type DisplaySettingsRequest struct {
	DisplayMode string `json:"display_mode" validate:"required"`
}
