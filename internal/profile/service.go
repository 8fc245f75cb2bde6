// internal/profile/service.go

package profile

import (
	"context"
	"mime/multipart"
)

// Service defines profile business logic
type Service interface {
	GetProfile(ctx context.Context, userID int64) (*User, error)
	GetCard(ctx context.Context, userID int64) (*Card, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*User, error)
	UploadPhoto(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (string, error)
	DeletePhoto(ctx context.Context, userID int64) error
}

type service struct {
	repo    Repository
	uploads UploadService
}

// NewService creates a new profile service
func NewService(repo Repository, uploads UploadService) Service {
	return &service{
		repo:    repo,
		uploads: uploads,
	}
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) GetCard(ctx context.Context, userID int64) (*Card, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToCard(), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*User, error) {
	return s.repo.UpdateProfile(ctx, userID, req)
}

func (s *service) UploadPhoto(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (string, error) {
	url, err := s.uploads.UploadFile(ctx, file, header, "profiles")
	if err != nil {
		return "", err
	}

	if err := s.repo.UpdatePhotoURL(ctx, userID, &url); err != nil {
		return "", err
	}

	return url, nil
}

func (s *service) DeletePhoto(ctx context.Context, userID int64) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.PhotoURL != nil {
		// Best effort: a dangling object is preferable to a failed profile update
		_ = s.uploads.DeleteFile(ctx, *user.PhotoURL)
	}

	return s.repo.UpdatePhotoURL(ctx, userID, nil)
}
