// internal/matching/models.go

package matching

import (
	"time"
)

// Viewer is the slice of a profile the selector needs to authorize a browse
type Viewer struct {
	ID       int64   `db:"id"`
	Gender   *string `db:"gender"`
	Verified bool    `db:"verified"`
	Banned   bool    `db:"is_banned"`
}

// Eligible reports whether this viewer may browse candidates at all
func (v *Viewer) Eligible() bool {
	return v.Verified && !v.Banned && v.Gender != nil && *v.Gender != ""
}

// Candidate is an eligible profile picked for a viewer
type Candidate struct {
	ID        int64   `json:"id" db:"id"`
	FirstName *string `json:"first_name,omitempty" db:"first_name"`
	Age       *int    `json:"age,omitempty" db:"age"`
	Gender    *string `json:"gender,omitempty" db:"gender"`
	Faculty   *string `json:"faculty,omitempty" db:"faculty"`
	Program   *string `json:"program,omitempty" db:"program"`
	StudyYear *int    `json:"study_year,omitempty" db:"study_year"`
	PhotoURL  *string `json:"photo_url,omitempty" db:"photo_url"`
	About     *string `json:"about,omitempty" db:"about"`
}

// ViewEvent records that a viewer was shown a target. The table is an
// append-only log: the same pair may appear many times over the lifetime of
// an account, and rows are never updated or deleted.
type ViewEvent struct {
	ID       int64     `db:"id"`
	ViewerID int64     `db:"viewer_id"`
	TargetID int64     `db:"target_id"`
	ViewedAt time.Time `db:"viewed_at"`
}

// Reaction is a single like/dislike decision. Also an append-only log; a user
// may dislike and later like the same person, and both rows are kept.
type Reaction struct {
	ID        int64     `db:"id"`
	LikerID   int64     `db:"liker_id"`
	TargetID  int64     `db:"target_id"`
	IsLike    bool      `db:"is_like"`
	CreatedAt time.Time `db:"created_at"`
}

// Match is a confirmed mutual like. User1ID < User2ID always holds, so the
// unique constraint on the pair guarantees at most one row per couple no
// matter which side completed the match.
type Match struct {
	ID        int64     `json:"id" db:"id"`
	User1ID   int64     `json:"user1_id" db:"user1_id"`
	User2ID   int64     `json:"user2_id" db:"user2_id"`
	MatchedAt time.Time `json:"matched_at" db:"matched_at"`
}

// Other returns the match participant that is not userID
func (m *Match) Other(userID int64) int64 {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// MatchOutcome is the result of processing a like
type MatchOutcome struct {
	Matched bool `json:"matched"`
}

// ReactionRequest is the payload for recording a reaction
type ReactionRequest struct {
	TargetUserID int64 `json:"target_user_id" validate:"required,min=1"`
	IsLike       *bool `json:"is_like" validate:"required"`
}

// CanonicalPair orders two user IDs so that the smaller comes first
func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
