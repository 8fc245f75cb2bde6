// internal/verification/repository.go

package verification

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrCodeNotFound = errors.New("verification code not found")

// Repository defines the verification storage interface
type Repository interface {
	CreateCode(ctx context.Context, code *VerificationCode) error
	GetLatestCode(ctx context.Context, email string) (*VerificationCode, error)
	IncrementAttempts(ctx context.Context, id int64) error
	MarkVerified(ctx context.Context, id int64) error
	InvalidateCodes(ctx context.Context, email string) error
	DeleteExpiredCodes(ctx context.Context, before time.Time) error
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL verification repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateCode(ctx context.Context, code *VerificationCode) error {
	query := `
		INSERT INTO verification_codes (email, code_hash, attempts, verified, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		code.Email, code.CodeHash, code.Attempts, code.Verified,
		code.ExpiresAt, code.CreatedAt,
	).Scan(&code.ID)
}

func (r *postgresRepository) GetLatestCode(ctx context.Context, email string) (*VerificationCode, error) {
	var code VerificationCode
	query := `
		SELECT id, email, code_hash, attempts, verified, expires_at, verified_at, created_at
		FROM verification_codes
		WHERE lower(email) = lower($1)
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &code, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}

	return &code, nil
}

func (r *postgresRepository) IncrementAttempts(ctx context.Context, id int64) error {
	query := `UPDATE verification_codes SET attempts = attempts + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *postgresRepository) MarkVerified(ctx context.Context, id int64) error {
	query := `UPDATE verification_codes SET verified = TRUE, verified_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *postgresRepository) InvalidateCodes(ctx context.Context, email string) error {
	query := `
		UPDATE verification_codes
		SET expires_at = NOW()
		WHERE lower(email) = lower($1) AND verified = FALSE AND expires_at > NOW()`

	_, err := r.db.ExecContext(ctx, query, email)
	return err
}

func (r *postgresRepository) DeleteExpiredCodes(ctx context.Context, before time.Time) error {
	query := `DELETE FROM verification_codes WHERE expires_at < $1 AND verified = FALSE`
	_, err := r.db.ExecContext(ctx, query, before)
	return err
}
