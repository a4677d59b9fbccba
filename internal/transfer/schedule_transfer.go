package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type ScheduleCreation struct {
	Content     string
	ScheduledAt string
}

// ScheduleUpdate is a partial update; empty fields are left unchanged.
type ScheduleUpdate struct {
	Content     string `json:"content"`
	ScheduledAt string `json:"scheduled_at"`
}
