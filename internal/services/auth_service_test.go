package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriplan_backend/internal/auth"
	"nutriplan_backend/internal/models"
	"nutriplan_backend/internal/services/dto"
	"nutriplan_backend/pkg/apperrors"
)

func registerRequest(email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:     email,
		Password:  "password123",
		FirstName: "Test",
		LastName:  "User",
	}
}

func TestAuth_RegisterCreatesUserAndProfile(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewAuthService(&fakeEmailProvider{}, "http://front.local")
	ctx := context.Background()

	resp, err := svc.Register(ctx, db, registerRequest("new@test.local"))
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "new@test.local", resp.User.Email)
	require.NotNil(t, resp.User.ProfileID)

	claims, err := auth.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.Subject)
	assert.Equal(t, "new@test.local", claims.Email)

	var profile models.Profile
	require.NoError(t, db.First(&profile, "id = ?", *resp.User.ProfileID).Error)
	require.NotNil(t, profile.FirstName)
	assert.Equal(t, "Test", *profile.FirstName)
	assert.Equal(t, resp.User.ID, profile.UserID)
}

func TestAuth_RegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewAuthService(&fakeEmailProvider{}, "")
	ctx := context.Background()

	_, err := svc.Register(ctx, db, registerRequest("dup@test.local"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, db, registerRequest("dup@test.local"))
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestAuth_RegisterWeakPassword(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewAuthService(&fakeEmailProvider{}, "")

	req := registerRequest("weak@test.local")
	req.Password = "12345"
	_, err := svc.Register(context.Background(), db, req)
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewAuthService(&fakeEmailProvider{}, "")
	ctx := context.Background()

	_, err := svc.Register(ctx, db, registerRequest("login@test.local"))
	require.NoError(t, err)

	resp, err := svc.Login(ctx, db, &dto.LoginRequest{
		Email:    "login@test.local",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{
		Email:    "login@test.local",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{
		Email:    "nobody@test.local",
		Password: "password123",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuth_ChangePassword(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewAuthService(&fakeEmailProvider{}, "")
	ctx := context.Background()

	resp, err := svc.Register(ctx, db, registerRequest("change@test.local"))
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, db, resp.User.ID, &dto.NewPasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpassword1",
	})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 401, appErr.HTTPCode)

	err = svc.ChangePassword(ctx, db, resp.User.ID, &dto.NewPasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "newpassword1",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{Email: "change@test.local", Password: "newpassword1"})
	assert.NoError(t, err)
}

func TestAuth_PasswordResetFlow(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	mailer := &fakeEmailProvider{}
	svc := NewAuthService(mailer, "http://front.local")
	ctx := context.Background()

	_, err := svc.Register(ctx, db, registerRequest("reset@test.local"))
	require.NoError(t, err)

	// Unknown addresses are swallowed, no mail goes out.
	require.NoError(t, svc.RequestPasswordReset(ctx, db, "ghost@test.local"))
	assert.Empty(t, mailer.resetTos)

	require.NoError(t, svc.RequestPasswordReset(ctx, db, "reset@test.local"))
	require.Len(t, mailer.resetTos, 1)
	assert.Equal(t, "reset@test.local", mailer.resetTos[0])
	assert.Contains(t, mailer.resetURLs[0], "http://front.local/reset-password?token=")

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "reset@test.local").Error)
	require.NotNil(t, user.ResetPasswordToken)

	err = svc.ResetPassword(ctx, db, &dto.ResetPasswordRequest{
		Token:       *user.ResetPasswordToken,
		NewPassword: "resetpass1",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{Email: "reset@test.local", Password: "resetpass1"})
	require.NoError(t, err)

	// Token is single-use.
	err = svc.ResetPassword(ctx, db, &dto.ResetPasswordRequest{
		Token:       *user.ResetPasswordToken,
		NewPassword: "anotherpass1",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestAuth_ResetPasswordExpiredToken(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewAuthService(&fakeEmailProvider{}, "")
	ctx := context.Background()

	resp, err := svc.Register(ctx, db, registerRequest("expired@test.local"))
	require.NoError(t, err)

	token := "expired-token"
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", resp.User.ID).
		Updates(map[string]interface{}{
			"reset_password_token":   token,
			"reset_password_expires": expired,
		}).Error)

	err = svc.ResetPassword(ctx, db, &dto.ResetPasswordRequest{
		Token:       token,
		NewPassword: "validpass1",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestAuth_GetUser(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewAuthService(&fakeEmailProvider{}, "")
	ctx := context.Background()

	resp, err := svc.Register(ctx, db, registerRequest("me@test.local"))
	require.NoError(t, err)

	user, err := svc.GetUser(ctx, db, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@test.local", user.Email)

	_, err = svc.GetUser(ctx, db, "does-not-exist")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
