// internal/profile/status.go

package profile

import (
	"context"

	"github.com/finlove/finlove-backend/internal/auth"
)

// StatusStore adapts the profile repository to the account-state lookups the
// auth middleware performs
type StatusStore struct {
	repo Repository
}

func NewStatusStore(repo Repository) *StatusStore {
	return &StatusStore{repo: repo}
}

func (s *StatusStore) GetUserStatus(ctx context.Context, userID int64) (*auth.UserStatus, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &auth.UserStatus{
		Verified: user.Verified,
		Banned:   user.Banned,
		Admin:    user.Admin,
	}, nil
}
