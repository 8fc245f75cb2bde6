// internal/admin/repository.go

package admin

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository provides the cross-table aggregates the dashboard needs
type Repository interface {
	GetStats(ctx context.Context) (*Stats, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL admin repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{LastUpdated: time.Now()}

	userQuery := `
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN verified = TRUE THEN 1 END) AS verified,
			COUNT(CASE WHEN is_banned = TRUE THEN 1 END) AS banned
		FROM users`

	err := r.db.QueryRowContext(ctx, userQuery).Scan(
		&stats.TotalUsers,
		&stats.VerifiedUsers,
		&stats.BannedUsers,
	)
	if err != nil {
		return nil, err
	}

	reactionQuery := `
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN is_like = TRUE THEN 1 END) AS likes
		FROM reactions`

	err = r.db.QueryRowContext(ctx, reactionQuery).Scan(
		&stats.TotalReactions,
		&stats.TotalLikes,
	)
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &stats.TotalMatches, `SELECT COUNT(*) FROM matches`)
	if err != nil {
		return nil, err
	}

	viewQuery := `SELECT COUNT(*) FROM match_views WHERE viewed_at > NOW() - INTERVAL '1 day'`
	err = r.db.GetContext(ctx, &stats.ViewsToday, viewQuery)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
