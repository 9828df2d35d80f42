// internal/users/service.go

package users

import (
	"context"
	"errors"
)

var ErrProfileNotFound = errors.New("profile not found")

type Service interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error)
	UpdatePreferences(ctx context.Context, userID int64, req *UpdatePreferencesRequest) (*Profile, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// GetProfile returns the user's profile. A user without a saved profile
// row gets an empty profile rather than a 404, so clients can treat the
// profile as always present.
func (s *service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return &Profile{UserID: userID}, nil
	}
	return profile, err
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error) {
	profile := &Profile{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Location:    req.Location,
		Phone:       req.Phone,
	}

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}

	return s.repo.GetProfile(ctx, userID)
}

func (s *service) UpdatePreferences(ctx context.Context, userID int64, req *UpdatePreferencesRequest) (*Profile, error) {
	prefs := Preferences{
		Categories:     req.Categories,
		MaxDistanceKm:  req.MaxDistanceKm,
		PreferredDays:  req.PreferredDays,
		PreferredHours: req.PreferredHours,
	}

	if err := s.repo.UpdatePreferences(ctx, userID, prefs); err != nil {
		return nil, err
	}

	return s.repo.GetProfile(ctx, userID)
}
