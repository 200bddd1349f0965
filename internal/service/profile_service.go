package service

import (
	"context"
	"fmt"
	"strings"

	"marketplace/internal/model"
	"marketplace/internal/pricing"
	"marketplace/internal/repository"

	"github.com/rs/zerolog"
)

// profileService implements ProfileService.
type profileService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(userRepo repository.UserRepository, logger zerolog.Logger) ProfileService {
	return &profileService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "profile").Logger(),
	}
}

// Get returns the caller's account.
func (s *profileService) Get(ctx context.Context, principal model.Principal) (*model.User, error) {
	if !principal.Authenticated() {
		return nil, model.ErrUnauthorised
	}

	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", principal.UserID.String()).Msg("failed to load profile")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	// A valid token for an account that has since been removed.
	if user == nil {
		return nil, model.ErrUnauthorised
	}
	return user, nil
}

// Update stores the caller's contact details and store location.
func (s *profileService) Update(ctx context.Context, principal model.Principal, req *model.ProfileRequest) (*model.User, error) {
	if !principal.Authenticated() {
		return nil, model.ErrUnauthorised
	}
	if req == nil {
		return nil, model.ErrInvalidJSON
	}

	location := pricing.ParsePoint(string(req.SellerLat), string(req.SellerLng))
	if location == nil && (req.SellerLat != "" || req.SellerLng != "") {
		s.logger.Debug().
			Str("user_id", principal.UserID.String()).
			Str("lat", string(req.SellerLat)).
			Str("lng", string(req.SellerLng)).
			Msg("ignoring unusable store coordinates")
	}

	phone := strings.TrimSpace(req.PhoneNumber)
	address := strings.TrimSpace(req.DefaultAddress)

	found, err := s.userRepo.UpdateProfile(ctx, principal.UserID, phone, address, location)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if !found {
		return nil, model.ErrUnauthorised
	}

	s.logger.Info().
		Str("user_id", principal.UserID.String()).
		Bool("has_location", location != nil).
		Msg("profile updated")

	return s.Get(ctx, principal)
}
