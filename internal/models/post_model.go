package models

import "time"

type ScheduledPost struct {
	ID            int64     `db:"id" json:"id"`
	UserEmail     string    `db:"user_email" json:"user_email"`
	Platform      string    `db:"platform" json:"platform"`
	Content       string    `db:"content" json:"content"`
	ImageURL      string    `db:"image_url" json:"image_url,omitempty"`
	VideoURL      string    `db:"video_url" json:"video_url,omitempty"`
	Title         string    `db:"title" json:"title,omitempty"`
	BoardID       string    `db:"board_id" json:"board_id,omitempty"`
	PrivacyStatus string    `db:"privacy_status" json:"privacy_status,omitempty"`
	ScheduledAt   time.Time `db:"scheduled_at" json:"scheduled_at"`
	Status        string    `db:"status" json:"status"` // scheduled, posted, failed
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusScheduled = "scheduled"
	PostStatusPosted    = "posted"
	PostStatusFailed    = "failed"
)

type MediaAsset struct {
	ID        int64     `db:"id" json:"id"`
	UserEmail string    `db:"user_email" json:"user_email"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	FileURL   string    `db:"file_url" json:"file_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PublishRecord is the per-attempt audit trail written after every publish,
// successful or not.
type PublishRecord struct {
	ID             int64     `db:"id" json:"id"`
	UserEmail      string    `db:"user_email" json:"user_email"`
	PostID         int64     `db:"post_id" json:"post_id"`
	Platform       string    `db:"platform" json:"platform"`
	PlatformPostID string    `db:"platform_post_id" json:"platform_post_id"`
	ErrorMessage   string    `db:"error_message" json:"error_message"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
