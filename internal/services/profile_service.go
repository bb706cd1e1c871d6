package services

import (
	"context"

	"gorm.io/gorm"

	"nutriplan_backend/internal/models"
	"nutriplan_backend/internal/repositories"
	"nutriplan_backend/internal/services/dto"
	"nutriplan_backend/pkg/apperrors"
)

type ProfileService interface {
	GetProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
}

type ProfileServiceImpl struct {
	subscriptionService SubscriptionService
}

func NewProfileService(subscriptionService SubscriptionService) ProfileService {
	return &ProfileServiceImpl{
		subscriptionService: subscriptionService,
	}
}

func (s *ProfileServiceImpl) GetProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.ProfileResponse, error) {
	userRepo := repositories.NewUserRepository(db)

	user, err := userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFoundMsg(err, "profile", "Profile not found")
		}
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.ProfileResponse{
		ID:    user.ID,
		Email: user.Email,
	}
	if user.Profile != nil {
		resp.FirstName = user.Profile.FirstName
		resp.LastName = user.Profile.LastName
	}

	// Subscription state rides along so clients get one round trip.
	active, subscription, err := s.subscriptionService.CheckSubscriptionStatus(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	resp.HasActiveSubscription = active
	resp.Subscription = subscription

	return resp, nil
}

func (s *ProfileServiceImpl) UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	userRepo := repositories.NewUserRepository(db)

	user, err := userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFoundMsg(err, "profile", "Profile not found")
		}
		return nil, apperrors.InternalError(err)
	}

	var profile *models.Profile
	if user.ProfileID != nil {
		profile, err = userRepo.FindProfileByID(*user.ProfileID)
		if err != nil && !apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.InternalError(err)
		}
	}

	if profile == nil {
		profile = &models.Profile{UserID: userID}
		if err := userRepo.CreateProfile(profile); err != nil {
			return nil, apperrors.InternalError(err)
		}
		user.ProfileID = &profile.ID
		if err := userRepo.Update(user); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	if req.FirstName != nil {
		profile.FirstName = req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = req.LastName
	}

	if err := userRepo.UpdateProfile(profile); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.GetProfile(ctx, db, userID)
}
