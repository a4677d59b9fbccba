package models

import "time"

type PublishedPost struct {
	ID             int64      `db:"id" json:"id"`
	UserID         *int64     `db:"user_id" json:"user_id,omitempty"`
	LinkedInPostID string     `db:"linkedin_post_id" json:"linkedin_post_id"`
	Content        string     `db:"content" json:"content"`
	HasImages      bool       `db:"has_images" json:"has_images"`
	Views          int        `db:"views" json:"views"`
	Likes          int        `db:"likes" json:"likes"`
	Comments       int        `db:"comments" json:"comments"`
	Shares         int        `db:"shares" json:"shares"`
	PublishedAt    time.Time  `db:"published_at" json:"published_at"`
	StatsUpdatedAt *time.Time `db:"stats_updated_at" json:"stats_updated_at,omitempty"`
}

func (p *PublishedPost) EngagementRate() float64 {
	if p.Views == 0 {
		return 0
	}
	return float64(p.Likes+p.Comments+p.Shares) / float64(p.Views) * 100
}
