package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nutriplan_backend/internal/auth"
	"nutriplan_backend/internal/email"
	"nutriplan_backend/internal/logger"
	"nutriplan_backend/internal/models"
	"nutriplan_backend/internal/repositories"
	"nutriplan_backend/internal/services/dto"
	"nutriplan_backend/pkg/apperrors"
)

type AuthService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	ChangePassword(ctx context.Context, db *gorm.DB, userID string, req *dto.NewPasswordRequest) error
	RequestPasswordReset(ctx context.Context, db *gorm.DB, emailAddr string) error
	ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) error
	GetUser(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error)
}

type AuthServiceImpl struct {
	emailProvider email.Provider
	frontendURL   string
}

func NewAuthService(emailProvider email.Provider, frontendURL string) AuthService {
	return &AuthServiceImpl{
		emailProvider: emailProvider,
		frontendURL:   frontendURL,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	userRepo := repositories.NewUserRepository(db)

	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	if _, err := userRepo.FindByEmail(req.Email); err == nil {
		return nil, apperrors.ErrEmailAlreadyExists
	} else if !apperrors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:    req.Email,
		Password: hashed,
	}
	if err := userRepo.Create(user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	profile := &models.Profile{
		FirstName: &req.FirstName,
		LastName:  &req.LastName,
		UserID:    user.ID,
	}
	if err := userRepo.CreateProfile(profile); err != nil {
		return nil, apperrors.InternalError(err)
	}

	user.ProfileID = &profile.ID
	if err := userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user registered", "email", user.Email)

	return &dto.AuthResponse{
		AccessToken: token,
		User:        toUserResponse(user),
	}, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	userRepo := repositories.NewUserRepository(db)

	user, err := userRepo.FindByEmail(req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user logged in", "email", user.Email)

	return &dto.AuthResponse{
		AccessToken: token,
		User:        toUserResponse(user),
	}, nil
}

func (s *AuthServiceImpl) ChangePassword(ctx context.Context, db *gorm.DB, userID string, req *dto.NewPasswordRequest) error {
	userRepo := repositories.NewUserRepository(db)

	user, err := userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFoundMsg(err, "user", "User not found")
		}
		return apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.Password) {
		return apperrors.NewUnauthorizedError("Current password is incorrect")
	}

	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ErrWeakPassword
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := userRepo.SetPassword(userID, hashed); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "password changed", "userID", userID)
	return nil
}

// RequestPasswordReset issues a reset token and mails the link. Unknown
// addresses are ignored so the endpoint does not leak which emails exist.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, db *gorm.DB, emailAddr string) error {
	userRepo := repositories.NewUserRepository(db)

	user, err := userRepo.FindByEmail(emailAddr)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			logger.CtxWarn(ctx, "password reset requested for unknown email")
			return nil
		}
		return apperrors.InternalError(err)
	}

	token := generateResetToken()
	expires := time.Now().Add(time.Hour)
	if err := userRepo.SetResetToken(user.ID, &token, &expires); err != nil {
		return apperrors.InternalError(err)
	}

	if s.emailProvider != nil {
		resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
		if err := s.emailProvider.SendPasswordReset(user.Email, resetURL); err != nil {
			logger.CtxWithError(ctx, "failed to send password reset email", err)
		}
	}

	return nil
}

func (s *AuthServiceImpl) ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) error {
	userRepo := repositories.NewUserRepository(db)

	user, err := userRepo.FindByResetToken(req.Token)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}

	if user.ResetPasswordExpires == nil || user.ResetPasswordExpires.Before(time.Now()) {
		return apperrors.ErrInvalidToken
	}

	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ErrWeakPassword
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := userRepo.SetPassword(user.ID, hashed); err != nil {
		return apperrors.InternalError(err)
	}
	if err := userRepo.SetResetToken(user.ID, nil, nil); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "password reset completed", "userID", user.ID)
	return nil
}

func (s *AuthServiceImpl) GetUser(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error) {
	userRepo := repositories.NewUserRepository(db)

	user, err := userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFoundMsg(err, "user", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}

	return toUserResponse(user), nil
}

func toUserResponse(user *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		ProfileID:        user.ProfileID,
		StripeCustomerID: user.StripeCustomerID,
	}
}

func generateResetToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
