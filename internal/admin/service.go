// internal/admin/service.go

package admin

import (
	"context"

	"github.com/finlove/finlove-backend/internal/notification"
	"github.com/finlove/finlove-backend/internal/profile"
)

// Service covers the moderation surface: user search, flag management,
// whitelisting and announcements.
type Service interface {
	GetStats(ctx context.Context) (*Stats, error)
	ListUsers(ctx context.Context, search string, limit, offset int) ([]*profile.User, error)
	UpdateUserFlags(ctx context.Context, userID int64, req *UpdateFlagsRequest) (*profile.User, error)
	WhitelistUsername(ctx context.Context, username string) (int64, error)
	Broadcast(ctx context.Context, req *BroadcastRequest) (*notification.BroadcastReport, error)
}

type service struct {
	repo      Repository
	users     profile.Repository
	announcer notification.Service
}

// NewService creates a new admin service
func NewService(repo Repository, users profile.Repository, announcer notification.Service) Service {
	return &service{
		repo:      repo,
		users:     users,
		announcer: announcer,
	}
}

func (s *service) GetStats(ctx context.Context) (*Stats, error) {
	return s.repo.GetStats(ctx)
}

func (s *service) ListUsers(ctx context.Context, search string, limit, offset int) ([]*profile.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, search, limit, offset)
}

func (s *service) UpdateUserFlags(ctx context.Context, userID int64, req *UpdateFlagsRequest) (*profile.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	admin := user.Admin
	banned := user.Banned
	whitelisted := user.Whitelisted

	if req.Admin != nil {
		admin = *req.Admin
	}
	if req.Banned != nil {
		banned = *req.Banned
	}
	if req.Whitelisted != nil {
		whitelisted = *req.Whitelisted
	}

	if err := s.users.UpdateFlags(ctx, userID, admin, banned, whitelisted); err != nil {
		return nil, err
	}

	user.Admin = admin
	user.Banned = banned
	user.Whitelisted = whitelisted
	return user, nil
}

func (s *service) WhitelistUsername(ctx context.Context, username string) (int64, error) {
	return s.users.WhitelistByUsername(ctx, username)
}

func (s *service) Broadcast(ctx context.Context, req *BroadcastRequest) (*notification.BroadcastReport, error) {
	return s.announcer.Broadcast(ctx, req.Subject, req.Body)
}
