// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

var ErrUserNotFound = errors.New("user not found")

// Repository defines the profile repository interface
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	CreateOrTouch(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id int64, req *UpdateProfileRequest) (*User, error)
	UpdatePhotoURL(ctx context.Context, id int64, url *string) error
	SetVerified(ctx context.Context, id int64) error

	// Moderation
	List(ctx context.Context, search string, limit, offset int) ([]*User, error)
	UpdateFlags(ctx context.Context, id int64, admin, banned, whitelisted bool) error
	WhitelistByUsername(ctx context.Context, username string) (int64, error)

	// Announcements
	ListBroadcastRecipients(ctx context.Context) ([]*BroadcastRecipient, error)
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `
	id, username, email, phone, first_name, last_name, gender, age,
	faculty, program, study_year, photo_url, about,
	verified, is_banned, is_admin, is_whitelisted, created_at, updated_at`

// GetByID retrieves a user by ID
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	var user User
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by email (case-insensitive)
func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `SELECT` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// CreateOrTouch creates a user record for the email if it does not exist yet,
// or bumps updated_at if it does. Returns the current row either way.
func (r *postgresRepository) CreateOrTouch(ctx context.Context, email string) (*User, error) {
	var user User
	query := `
		INSERT INTO users (email)
		VALUES (lower($1))
		ON CONFLICT (email)
		DO UPDATE SET updated_at = CURRENT_TIMESTAMP
		RETURNING` + userColumns

	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return &user, nil
}

// UpdateProfile applies only the fields set in the request
func (r *postgresRepository) UpdateProfile(ctx context.Context, id int64, req *UpdateProfileRequest) (*User, error) {
	setParts := []string{}
	args := []interface{}{}
	argPos := 1

	addField := func(column string, value interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if req.Username != nil {
		addField("username", *req.Username)
	}
	if req.Phone != nil {
		addField("phone", *req.Phone)
	}
	if req.FirstName != nil {
		addField("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		addField("last_name", *req.LastName)
	}
	if req.Gender != nil {
		addField("gender", *req.Gender)
	}
	if req.Age != nil {
		addField("age", *req.Age)
	}
	if req.Faculty != nil {
		addField("faculty", *req.Faculty)
	}
	if req.Program != nil {
		addField("program", *req.Program)
	}
	if req.StudyYear != nil {
		addField("study_year", *req.StudyYear)
	}
	if req.About != nil {
		addField("about", *req.About)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING`+userColumns,
		strings.Join(setParts, ", "), argPos,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &user, nil
}

// UpdatePhotoURL sets or clears the profile photo URL
func (r *postgresRepository) UpdatePhotoURL(ctx context.Context, id int64, url *string) error {
	query := `UPDATE users SET photo_url = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("failed to update photo: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetVerified marks the user as verified
func (r *postgresRepository) SetVerified(ctx context.Context, id int64) error {
	query := `UPDATE users SET verified = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to set verified: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List returns users ordered by signup date, optionally filtered by a
// case-insensitive search over username and name
func (r *postgresRepository) List(ctx context.Context, search string, limit, offset int) ([]*User, error) {
	var users []*User

	query := `SELECT` + userColumns + ` FROM users`
	args := []interface{}{}

	if search != "" {
		query += `
		WHERE username ILIKE $1
		   OR first_name ILIKE $1
		   OR last_name ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// UpdateFlags sets the moderation flags for a user
func (r *postgresRepository) UpdateFlags(ctx context.Context, id int64, admin, banned, whitelisted bool) error {
	query := `
		UPDATE users
		SET is_admin = $2, is_banned = $3, is_whitelisted = $4,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, admin, banned, whitelisted)
	if err != nil {
		return fmt.Errorf("failed to update flags: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// WhitelistByUsername marks every user with the given username as whitelisted.
// Only works for users who already have a row. Returns the number of rows hit.
func (r *postgresRepository) WhitelistByUsername(ctx context.Context, username string) (int64, error) {
	query := `
		UPDATE users
		SET is_whitelisted = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE lower(username) = lower($1)`

	result, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		return 0, fmt.Errorf("failed to whitelist username: %w", err)
	}

	return result.RowsAffected()
}

// ListBroadcastRecipients returns contact info for every non-banned user
func (r *postgresRepository) ListBroadcastRecipients(ctx context.Context) ([]*BroadcastRecipient, error) {
	var recipients []*BroadcastRecipient
	query := `SELECT id, email, phone FROM users WHERE is_banned = FALSE ORDER BY id`

	if err := r.db.SelectContext(ctx, &recipients, query); err != nil {
		return nil, fmt.Errorf("failed to list broadcast recipients: %w", err)
	}

	return recipients, nil
}
