package models

import "time"

// SocialConnection is one row of encrypted token material for a
// (user, platform, page) tuple. PageID is empty for platforms without
// sub-entities; for "facebook-page" rows it carries the page the tokens
// belong to.
type SocialConnection struct {
	ID                    int64     `db:"id" json:"id"`
	UserEmail             string    `db:"user_email" json:"user_email"`
	Platform              string    `db:"platform" json:"platform"`
	PageID                string    `db:"page_id" json:"page_id,omitempty"`
	AccessToken           string    `db:"access_token_encrypted" json:"-"`
	RefreshToken          string    `db:"refresh_token_encrypted" json:"-"`
	TokenExpiresAt        time.Time `db:"token_expires_at" json:"token_expires_at"`
	ActiveFacebookPageID  string    `db:"active_facebook_page_id" json:"active_facebook_page_id,omitempty"`
	ActiveInstagramUserID string    `db:"active_instagram_user_id" json:"active_instagram_user_id,omitempty"`
	RealmID               string    `db:"realm_id" json:"realm_id,omitempty"`
	PhoneNumberID         string    `db:"phone_number_id" json:"phone_number_id,omitempty"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// InstagramAccount links a connected Instagram business account to the
// Facebook Page whose token publishes on its behalf.
type InstagramAccount struct {
	ID          int64     `db:"id" json:"id"`
	UserEmail   string    `db:"user_email" json:"user_email"`
	PageID      string    `db:"page_id" json:"page_id"`
	InstagramID string    `db:"instagram_id" json:"instagram_id"`
	Username    string    `db:"username" json:"username"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
