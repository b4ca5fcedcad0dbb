package models

import "time"

type Story struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Status      string     `db:"status" json:"status"` // DRAFT, SCHEDULED, NOW, PUBLISHED, ERROR
	PublishedAt *time.Time `db:"published_at" json:"published_at"`
	PlatformID  int64      `db:"platform_id" json:"platform_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	Posts    []*Post   `json:"posts,omitempty"`
	Platform *Platform `json:"platform,omitempty"`
}

type Post struct {
	ID             int64     `db:"id" json:"id"`
	StoryID        int64     `db:"story_id" json:"story_id"`
	URL            string    `db:"url" json:"url"`
	ConvertedURL   string    `db:"converted_url" json:"converted_url"`
	MediaType      string    `db:"media_type" json:"media_type"` // IMAGE, VIDEO
	Position       int       `db:"position" json:"position"`
	ExternalPostID string    `db:"external_post_id" json:"external_post_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

const (
	StoryStatusDraft     = "DRAFT"
	StoryStatusScheduled = "SCHEDULED"
	StoryStatusNow       = "NOW"
	StoryStatusPublished = "PUBLISHED"
	StoryStatusError     = "ERROR"
)

const (
	MediaTypeImage = "IMAGE"
	MediaTypeVideo = "VIDEO"
)

// IsValidStoryStatus reports whether status is one of the known story states.
func IsValidStoryStatus(status string) bool {
	switch status {
	case StoryStatusDraft, StoryStatusScheduled, StoryStatusNow, StoryStatusPublished, StoryStatusError:
		return true
	}
	return false
}
