// internal/admin/models.go

package admin

import (
	"time"
)

// Stats is the operational snapshot shown on the admin dashboard
type Stats struct {
	TotalUsers     int64     `db:"total_users" json:"total_users"`
	VerifiedUsers  int64     `db:"verified_users" json:"verified_users"`
	BannedUsers    int64     `db:"banned_users" json:"banned_users"`
	TotalReactions int64     `db:"total_reactions" json:"total_reactions"`
	TotalLikes     int64     `db:"total_likes" json:"total_likes"`
	TotalMatches   int64     `db:"total_matches" json:"total_matches"`
	ViewsToday     int64     `db:"views_today" json:"views_today"`
	LastUpdated    time.Time `json:"last_updated"`
}

// UpdateFlagsRequest changes a user's moderation flags. Omitted fields keep
// their current value.
type UpdateFlagsRequest struct {
	Admin       *bool `json:"is_admin"`
	Banned      *bool `json:"is_banned"`
	Whitelisted *bool `json:"is_whitelisted"`
}

// WhitelistRequest registers a username ahead of signup so the user may
// verify with an off-campus email address
type WhitelistRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
}

// BroadcastRequest is an announcement to all non-banned users
type BroadcastRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required,max=4000"`
}
