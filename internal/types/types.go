package types

import "time"

// MediaType classifies an uploaded media file.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypePDF   MediaType = "pdf"
)

// MediaItem is the catalog record for an uploaded file. The bytes themselves
// live in the blob store under StoredName.
type MediaItem struct {
	ID           int64     `json:"id"`
	StoredName   string    `json:"stored_name"`
	OriginalName string    `json:"original_name"`
	Type         MediaType `json:"type"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedAt   time.Time `json:"uploaded_at"`
	Description  string    `json:"description,omitempty"`
}

// PlaylistItem binds a media item into a playlist. Only MediaID is durable;
// Media is attached on reads as a convenience and never persisted.
type PlaylistItem struct {
	MediaID         int64      `json:"media_id"`
	DurationSeconds int        `json:"duration_seconds"`
	Order           int        `json:"order"`
	Media           *MediaItem `json:"media,omitempty"`
}

type Playlist struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Items       []PlaylistItem `json:"items"`
}

// ScheduleContentType says whether a schedule plays a playlist or a single image.
type ScheduleContentType string

const (
	ScheduleContentPlaylist    ScheduleContentType = "playlist"
	ScheduleContentSingleImage ScheduleContentType = "single_image"
)

// Schedule is a recurring daily/weekly time window bound to content.
// StartTime and EndTime are "HH:mm" local times of day; StartTime > EndTime
// means the window wraps past midnight. DayOfWeek is 0 (Sunday) through
// 6 (Saturday), nil meaning every day. Overlapping windows are legal and
// resolved at read time by priority, higher wins.
type Schedule struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	ContentType ScheduleContentType `json:"content_type"`
	PlaylistID  *int64              `json:"playlist_id,omitempty"`
	MediaID     *int64              `json:"media_id,omitempty"`
	StartTime   string              `json:"start_time"`
	EndTime     string              `json:"end_time"`
	DayOfWeek   *int                `json:"day_of_week,omitempty"`
	IsActive    bool                `json:"is_active"`
	Priority    int                 `json:"priority"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// DisplayHeartbeat is the last monitoring report received from a display.
// LastSeen is stamped from the server clock when the report arrives;
// ClientTime is the device's own clock as reported, kept verbatim so skew is
// visible in the status listing.
type DisplayHeartbeat struct {
	LastSeen       time.Time `json:"last_seen"`
	ClientTime     string    `json:"client_time,omitempty"`
	CurrentContent string    `json:"current_content,omitempty"`
}

// ContentKind is the top-level shape of a resolved content descriptor.
type ContentKind string

const (
	ContentStopped  ContentKind = "stopped"
	ContentPlaylist ContentKind = "playlist"
	ContentImage    ContentKind = "image"
	ContentNone     ContentKind = "none"
)

// ResolvedItem is one renderable entry in a resolved descriptor.
// Field names follow the display device contract, which is camelCase.
type ResolvedItem struct {
	MediaID         int64     `json:"mediaId"`
	URL             string    `json:"url"`
	Type            MediaType `json:"type"`
	DurationSeconds int       `json:"durationSeconds"`
	FileName        string    `json:"fileName"`
}

// ResolvedContent is the full answer to a display poll: what to show right
// now, plus the pass-through display mode and the reload flag computed for
// this particular display.
type ResolvedContent struct {
	ContentType     ContentKind    `json:"contentType"`
	PlaylistItems   []ResolvedItem `json:"playlistItems,omitempty"`
	SingleMedia     *ResolvedItem  `json:"singleMedia,omitempty"`
	ScheduleName    string         `json:"scheduleName,omitempty"`
	DisplayMode     string         `json:"displayMode"`
	ServerTime      string         `json:"serverTime"`
	ShouldReload    bool           `json:"shouldReload"`
	ReloadTimestamp string         `json:"reloadTimestamp,omitempty"`
}
