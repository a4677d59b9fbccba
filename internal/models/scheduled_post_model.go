package models

import "time"

// PostImage is one media blob attached to a scheduled post, stored inline
// as base64 in the images_data column.
type PostImage struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}

type ScheduledPost struct {
	ID           int64       `db:"id" json:"id"`
	UserID       *int64      `db:"user_id" json:"user_id,omitempty"`
	Content      string      `db:"content" json:"content"`
	ScheduledAt  time.Time   `db:"scheduled_at" json:"scheduled_at"`
	Status       string      `db:"status" json:"status"` // pending, published, failed, cancelled
	ErrorMessage string      `db:"error_message" json:"error_message"`
	Images       []PostImage `db:"images_data" json:"-"`
	PublishedAt  *time.Time  `db:"published_at" json:"published_at,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusPending   = "pending"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
	PostStatusCancelled = "cancelled"
)

// MaxImagesPerPost caps attachments at creation time. LinkedIn itself
// accepts up to 20 images per ugcPost; see MaxImagesPerPublish.
const (
	MaxImagesPerPost    = 5
	MaxImagesPerPublish = 20
)
