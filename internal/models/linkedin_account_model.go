package models

import "time"

// LinkedInAccount holds one OAuth credential per owner. UserID is nil for
// the shared single-tenant account. The access token is stored AES-GCM
// encrypted; callers decrypt it with the configured secret key before use.
type LinkedInAccount struct {
	ID          int64     `db:"id" json:"id"`
	UserID      *int64    `db:"user_id" json:"user_id,omitempty"`
	LinkedInID  string    `db:"linkedin_id" json:"linkedin_id"`
	Name        string    `db:"name" json:"name"`
	AccessToken string    `db:"access_token" json:"-"`
	ExpiresAt   time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (a *LinkedInAccount) IsExpired() bool {
	return !time.Now().Before(a.ExpiresAt)
}
