// internal/matching/repository.go

package matching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository provides data access for the matching engine.
//
// match_views and reactions are append-only logs: rows are only ever
// inserted. matches carries the one hard invariant of the engine — a unique
// constraint on the canonical (user1_id, user2_id) pair — so uniqueness is
// enforced by the database, not by application-level checks.
type Repository interface {
	// GetViewer loads the viewer fields needed for the eligibility precondition
	GetViewer(ctx context.Context, viewerID int64) (*Viewer, error)

	// PickCandidate selects one uniformly random eligible candidate for the
	// viewer and records the exposure in the same transaction. Returns
	// (nil, nil) when no candidate is eligible.
	PickCandidate(ctx context.Context, viewerID int64, viewerGender string, cooldown time.Duration) (*Candidate, error)

	// InsertReaction appends a like/dislike row
	InsertReaction(ctx context.Context, likerID, targetID int64, isLike bool) error

	// HasLike reports whether liker has EVER liked target, regardless of
	// later dislikes
	HasLike(ctx context.Context, likerID, targetID int64) (bool, error)

	// CreateMatchIfAbsent inserts the canonical match row if it does not
	// exist. Returns true only for the insert that actually created the row.
	CreateMatchIfAbsent(ctx context.Context, userA, userB int64) (bool, error)

	// GetUserMatches lists the user's matches, newest first, with the
	// partner's public card attached
	GetUserMatches(ctx context.Context, userID int64) ([]*MatchedUser, error)

	// CountLikesReceived counts distinct users who liked the given user
	CountLikesReceived(ctx context.Context, userID int64) (int64, error)
}

// MatchedUser is a match together with the other participant's card
type MatchedUser struct {
	Match
	Partner *Candidate `json:"partner"`
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetViewer(ctx context.Context, viewerID int64) (*Viewer, error) {
	var viewer Viewer
	query := `SELECT id, gender, verified, is_banned FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &viewer, query, viewerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrViewerNotFound
		}
		return nil, fmt.Errorf("failed to get viewer: %w", err)
	}

	return &viewer, nil
}

// PickCandidate runs the selection query and the exposure insert in one
// transaction so no other caller can observe the pick without its view row.
//
// Selection is uniformly random over the eligible set (ORDER BY random()):
// verified, not banned, opposite gender, not the viewer, and not shown to
// this viewer within the cooldown window. A previous dislike does NOT exclude
// a candidate — once the window lapses they become selectable again.
func (r *postgresRepository) PickCandidate(ctx context.Context, viewerID int64, viewerGender string, cooldown time.Duration) (*Candidate, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var candidate Candidate
	query := `
		SELECT u.id, u.first_name, u.age, u.gender, u.faculty, u.program,
		       u.study_year, u.photo_url, u.about
		FROM users u
		WHERE u.verified = TRUE
		  AND u.is_banned = FALSE
		  AND u.id != $1
		  AND u.gender IS NOT NULL
		  AND u.gender != $2
		  AND NOT EXISTS (
		      SELECT 1 FROM match_views mv
		      WHERE mv.viewer_id = $1
		        AND mv.target_id = u.id
		        AND mv.viewed_at > NOW() - ($3 * INTERVAL '1 second')
		  )
		ORDER BY random()
		LIMIT 1`

	err = tx.GetContext(ctx, &candidate, query, viewerID, viewerGender, cooldown.Seconds())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // nobody left to show — a success outcome
		}
		return nil, fmt.Errorf("failed to select candidate: %w", err)
	}

	// Log the exposure unconditionally, before the caller ever sees the
	// candidate. An unreacted exposure still counts toward the cooldown.
	insertQuery := `
		INSERT INTO match_views (viewer_id, target_id, viewed_at)
		VALUES ($1, $2, NOW())`

	if _, err := tx.ExecContext(ctx, insertQuery, viewerID, candidate.ID); err != nil {
		return nil, fmt.Errorf("failed to record view: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit candidate pick: %w", err)
	}

	return &candidate, nil
}

func (r *postgresRepository) InsertReaction(ctx context.Context, likerID, targetID int64, isLike bool) error {
	query := `
		INSERT INTO reactions (liker_id, target_id, is_like, created_at)
		VALUES ($1, $2, $3, NOW())`

	if _, err := r.db.ExecContext(ctx, query, likerID, targetID, isLike); err != nil {
		return fmt.Errorf("failed to insert reaction: %w", err)
	}
	return nil
}

func (r *postgresRepository) HasLike(ctx context.Context, likerID, targetID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM reactions
			WHERE liker_id = $1 AND target_id = $2 AND is_like = TRUE
		)`

	err := r.db.GetContext(ctx, &exists, query, likerID, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to check reciprocal like: %w", err)
	}
	return exists, nil
}

// CreateMatchIfAbsent relies on the unique constraint for correctness: two
// concurrent calls for the same pair race on the insert, and exactly one of
// them observes RowsAffected == 1. A check-then-insert here would be a TOCTOU
// bug under concurrent writers.
func (r *postgresRepository) CreateMatchIfAbsent(ctx context.Context, userA, userB int64) (bool, error) {
	user1, user2 := CanonicalPair(userA, userB)

	query := `
		INSERT INTO matches (user1_id, user2_id, matched_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user1_id, user2_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, user1, user2)
	if err != nil {
		return false, fmt.Errorf("failed to create match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read match insert result: %w", err)
	}

	return rows == 1, nil
}

func (r *postgresRepository) GetUserMatches(ctx context.Context, userID int64) ([]*MatchedUser, error) {
	query := `
		SELECT m.id, m.user1_id, m.user2_id, m.matched_at,
		       u.id, u.first_name, u.age, u.gender, u.faculty, u.program,
		       u.study_year, u.photo_url, u.about
		FROM matches m
		JOIN users u
		  ON u.id = CASE WHEN m.user1_id = $1 THEN m.user2_id ELSE m.user1_id END
		WHERE m.user1_id = $1 OR m.user2_id = $1
		ORDER BY m.matched_at DESC`

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	defer rows.Close()

	var matches []*MatchedUser
	for rows.Next() {
		var m MatchedUser
		var partner Candidate

		err := rows.Scan(
			&m.ID, &m.User1ID, &m.User2ID, &m.MatchedAt,
			&partner.ID, &partner.FirstName, &partner.Age, &partner.Gender,
			&partner.Faculty, &partner.Program, &partner.StudyYear,
			&partner.PhotoURL, &partner.About,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}

		m.Partner = &partner
		matches = append(matches, &m)
	}

	return matches, rows.Err()
}

func (r *postgresRepository) CountLikesReceived(ctx context.Context, userID int64) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(DISTINCT liker_id)
		FROM reactions
		WHERE target_id = $1 AND is_like = TRUE`

	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}
