package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"nutriplan_backend/internal/logger"
	"nutriplan_backend/internal/models"
	"nutriplan_backend/internal/repositories"
	"nutriplan_backend/internal/services/dto"
	"nutriplan_backend/internal/stripe"
	"nutriplan_backend/pkg/apperrors"
)

type SubscriptionService interface {
	// Plan catalog
	GetPlans(ctx context.Context, db *gorm.DB) ([]models.SubscriptionPlan, error)
	SeedDefaultPlans(db *gorm.DB) error

	// Subscription lifecycle
	CheckSubscriptionStatus(ctx context.Context, db *gorm.DB, userID string) (bool, *models.Subscription, error)
	GetActiveSubscription(ctx context.Context, db *gorm.DB, userID string) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateSubscriptionRequest) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateSubscriptionRequest) (*models.Subscription, error)
	CancelSubscription(ctx context.Context, db *gorm.DB, id string) (*models.Subscription, error)

	// Billing
	PurchaseSubscription(ctx context.Context, db *gorm.DB, userID, planID string) (*dto.PurchaseResponse, error)
	CreateCheckoutSession(ctx context.Context, db *gorm.DB, userID, planID string) (string, error)
	GetPaymentHistory(ctx context.Context, db *gorm.DB, userID string) ([]models.Payment, error)
}

type SubscriptionServiceImpl struct {
	stripeClient stripe.Client
}

func NewSubscriptionService(stripeClient stripe.Client) SubscriptionService {
	return &SubscriptionServiceImpl{
		stripeClient: stripeClient,
	}
}

// Plan catalog

func (s *SubscriptionServiceImpl) GetPlans(ctx context.Context, db *gorm.DB) ([]models.SubscriptionPlan, error) {
	repo := repositories.NewSubscriptionRepository(db)

	plans, err := repo.FindActivePlans()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return plans, nil
}

// SeedDefaultPlans inserts the plan catalog on first start. Plan IDs are
// fixed so clients can hardcode the free and premium tiers.
func (s *SubscriptionServiceImpl) SeedDefaultPlans(db *gorm.DB) error {
	repo := repositories.NewSubscriptionRepository(db)

	count, err := repo.CountPlans()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	plans := []models.SubscriptionPlan{
		{
			ID:                "0",
			Name:              "Free",
			Description:       "Default free tier",
			Price:             0,
			Interval:          models.PlanIntervalMonthly,
			IsDefault:         true,
			IsActive:          true,
			TrialDays:         0,
			MealPlanMaxDays:   1,
			MealPlansPerMonth: 2,
			MaxPeopleCount:    1,
		},
		{
			ID:                "1",
			Name:              "Premium",
			Description:       "Full access subscription",
			Price:             9.99,
			Interval:          models.PlanIntervalMonthly,
			IsDefault:         false,
			IsActive:          true,
			TrialDays:         7,
			MealPlanMaxDays:   7,
			MealPlansPerMonth: 999999,
			MaxPeopleCount:    6,
		},
	}

	for i := range plans {
		if err := repo.CreatePlan(&plans[i]); err != nil {
			return err
		}
	}

	logger.Info("subscription plans seeded", "count", len(plans))
	return nil
}

// Subscription lifecycle

// CheckSubscriptionStatus reports whether the user holds a live
// subscription. A row past its end date is persisted as expired on the
// spot, so reads converge without waiting for the sweep worker.
func (s *SubscriptionServiceImpl) CheckSubscriptionStatus(ctx context.Context, db *gorm.DB, userID string) (bool, *models.Subscription, error) {
	repo := repositories.NewSubscriptionRepository(db)

	subscription, err := repo.FindActiveByUser(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return false, nil, nil
		}
		return false, nil, apperrors.InternalError(err)
	}

	if time.Now().After(subscription.EndDate) {
		subscription.Status = models.SubscriptionStatusExpired
		if err := repo.UpdateSubscription(subscription); err != nil {
			return false, nil, apperrors.InternalError(err)
		}
		logger.CtxInfo(ctx, "subscription expired on read",
			"subscriptionId", subscription.ID, "userId", userID)
		return false, subscription, nil
	}

	return true, subscription, nil
}

func (s *SubscriptionServiceImpl) GetActiveSubscription(ctx context.Context, db *gorm.DB, userID string) (*models.Subscription, error) {
	active, subscription, err := s.CheckSubscriptionStatus(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperrors.ErrNoActiveSubscription
	}
	return subscription, nil
}

func (s *SubscriptionServiceImpl) CreateSubscription(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateSubscriptionRequest) (*models.Subscription, error) {
	repo := repositories.NewSubscriptionRepository(db)

	plan, err := repo.FindPlanByID(req.PlanID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionPlanNotFound) {
			return nil, apperrors.ErrNotFoundMsg(err, "subscription",
				fmt.Sprintf("Subscription plan with ID %s not found", req.PlanID))
		}
		return nil, apperrors.InternalError(err)
	}

	now := time.Now()
	subscription := &models.Subscription{
		UserID:    userID,
		PlanID:    plan.ID,
		Status:    models.SubscriptionStatusTrial,
		StartDate: now,
		EndDate:   endDateForInterval(now, plan.Interval),
		AutoRenew: true,
	}
	if req.Status != nil {
		subscription.Status = models.SubscriptionStatus(*req.Status)
	}
	if req.EndDate != nil {
		subscription.EndDate = *req.EndDate
	}
	if req.AutoRenew != nil {
		subscription.AutoRenew = *req.AutoRenew
	}

	if err := repo.CreateSubscription(subscription); err != nil {
		return nil, apperrors.InternalError(err)
	}

	subscription.Plan = *plan
	logger.CtxInfo(ctx, "subscription created",
		"subscriptionId", subscription.ID, "planId", plan.ID, "status", string(subscription.Status))
	return subscription, nil
}

func (s *SubscriptionServiceImpl) UpdateSubscription(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateSubscriptionRequest) (*models.Subscription, error) {
	repo := repositories.NewSubscriptionRepository(db)

	subscription, err := repo.FindSubscriptionByID(id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNotFoundMsg(err, "subscription",
				fmt.Sprintf("Subscription with ID %s not found", id))
		}
		return nil, apperrors.InternalError(err)
	}

	if req.PlanID != nil {
		subscription.PlanID = *req.PlanID
	}
	if req.Status != nil {
		subscription.Status = models.SubscriptionStatus(*req.Status)
	}
	if req.EndDate != nil {
		subscription.EndDate = *req.EndDate
	}
	if req.AutoRenew != nil {
		subscription.AutoRenew = *req.AutoRenew
	}

	if err := repo.UpdateSubscription(subscription); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return subscription, nil
}

// CancelSubscription is idempotent in effect: cancelling twice leaves the
// same cancelled row.
func (s *SubscriptionServiceImpl) CancelSubscription(ctx context.Context, db *gorm.DB, id string) (*models.Subscription, error) {
	repo := repositories.NewSubscriptionRepository(db)

	subscription, err := repo.FindSubscriptionByID(id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNotFoundMsg(err, "subscription",
				fmt.Sprintf("Subscription with ID %s not found", id))
		}
		return nil, apperrors.InternalError(err)
	}

	now := time.Now()
	subscription.Status = models.SubscriptionStatusCancelled
	subscription.CancelledAt = &now
	subscription.AutoRenew = false

	if err := repo.UpdateSubscription(subscription); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if subscription.ExternalSubscriptionID != nil && s.stripeClient != nil {
		if err := s.stripeClient.CancelSubscription(ctx, *subscription.ExternalSubscriptionID); err != nil {
			logger.CtxWithError(ctx, "failed to cancel gateway subscription", err,
				"subscriptionId", subscription.ID)
		}
	}

	logger.CtxInfo(ctx, "subscription cancelled", "subscriptionId", subscription.ID)
	return subscription, nil
}

// Billing

// PurchaseSubscription runs the full purchase flow: local trial
// subscription, gateway customer, payment intent, pending payment, then
// the optimistic flip to active/completed once the intent is out the door.
func (s *SubscriptionServiceImpl) PurchaseSubscription(ctx context.Context, db *gorm.DB, userID, planID string) (*dto.PurchaseResponse, error) {
	repo := repositories.NewSubscriptionRepository(db)
	userRepo := repositories.NewUserRepository(db)

	plan, err := repo.FindPlanByID(planID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionPlanNotFound) {
			return nil, apperrors.ErrNotFoundMsg(err, "subscription",
				fmt.Sprintf("Subscription plan with ID %s not found", planID))
		}
		return nil, wrapPurchaseError(err)
	}

	user, err := userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFoundMsg(err, "user", "User not found")
		}
		return nil, wrapPurchaseError(err)
	}

	now := time.Now()
	subscription := &models.Subscription{
		UserID:    userID,
		PlanID:    plan.ID,
		Status:    models.SubscriptionStatusTrial,
		StartDate: now,
		EndDate:   endDateForInterval(now, plan.Interval),
		AutoRenew: true,
	}
	if err := repo.CreateSubscription(subscription); err != nil {
		return nil, wrapPurchaseError(err)
	}

	customerID, err := s.ensureStripeCustomer(ctx, userRepo, user)
	if err != nil {
		return nil, wrapPurchaseError(err)
	}

	intentID, clientSecret, err := s.stripeClient.CreatePaymentIntent(ctx, customerID, plan.Price, "usd", map[string]string{
		"userId":         userID,
		"subscriptionId": subscription.ID,
		"planId":         plan.ID,
	})
	if err != nil {
		return nil, wrapPurchaseError(err)
	}

	payment := &models.Payment{
		UserID:            userID,
		SubscriptionID:    &subscription.ID,
		Amount:            plan.Price,
		Currency:          "usd",
		Status:            models.PaymentStatusPending,
		Provider:          models.PaymentProviderStripe,
		ExternalPaymentID: &intentID,
		Metadata: datatypes.JSONMap{
			"clientSecret": clientSecret,
			"planId":       plan.ID,
		},
	}
	if err := repo.CreatePayment(payment); err != nil {
		return nil, wrapPurchaseError(err)
	}

	subscription.Status = models.SubscriptionStatusActive
	if err := repo.UpdateSubscription(subscription); err != nil {
		return nil, wrapPurchaseError(err)
	}

	payment.Status = models.PaymentStatusCompleted
	if err := repo.UpdatePayment(payment); err != nil {
		return nil, wrapPurchaseError(err)
	}

	logger.CtxInfo(ctx, "subscription purchased",
		"subscriptionId", subscription.ID, "paymentId", payment.ID, "planId", plan.ID)

	return &dto.PurchaseResponse{
		SubscriptionID: subscription.ID,
		PaymentID:      payment.ID,
		ClientSecret:   clientSecret,
	}, nil
}

// CreateCheckoutSession provisions the gateway price for the plan and
// opens an incomplete gateway subscription, returning the client secret
// the frontend confirms.
func (s *SubscriptionServiceImpl) CreateCheckoutSession(ctx context.Context, db *gorm.DB, userID, planID string) (string, error) {
	repo := repositories.NewSubscriptionRepository(db)
	userRepo := repositories.NewUserRepository(db)

	plan, err := repo.FindPlanByID(planID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionPlanNotFound) {
			return "", apperrors.ErrNotFoundMsg(err, "subscription",
				fmt.Sprintf("Subscription plan with ID %s not found", planID))
		}
		return "", apperrors.InternalError(err)
	}

	user, err := userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return "", apperrors.ErrNotFoundMsg(err, "user", "User not found")
		}
		return "", apperrors.InternalError(err)
	}

	customerID, err := s.ensureStripeCustomer(ctx, userRepo, user)
	if err != nil {
		return "", apperrors.ErrExternalService(err, "payment", "Failed to create checkout session")
	}

	priceID, err := s.stripeClient.EnsurePlanPrice(ctx, plan)
	if err != nil {
		return "", apperrors.ErrExternalService(err, "payment", "Failed to create checkout session")
	}

	idempotencyKey := fmt.Sprintf("checkout-%s-%s", userID, plan.ID)
	_, clientSecret, err := s.stripeClient.CreateGatewaySubscription(ctx, customerID, priceID, idempotencyKey, map[string]string{
		"userId": userID,
		"planId": plan.ID,
	})
	if err != nil {
		return "", apperrors.ErrExternalService(err, "payment", "Failed to create checkout session")
	}

	return clientSecret, nil
}

func (s *SubscriptionServiceImpl) GetPaymentHistory(ctx context.Context, db *gorm.DB, userID string) ([]models.Payment, error) {
	repo := repositories.NewSubscriptionRepository(db)

	payments, err := repo.FindPaymentsByUser(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return payments, nil
}

// ensureStripeCustomer resolves the user's gateway customer, creating and
// persisting one when absent.
func (s *SubscriptionServiceImpl) ensureStripeCustomer(ctx context.Context, userRepo repositories.UserRepository, user *models.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	customerID, err := s.stripeClient.GetOrCreateCustomer(ctx, user.ID, user.Email)
	if err != nil {
		return "", err
	}

	if err := userRepo.SetStripeCustomerID(user.ID, customerID); err != nil {
		return "", err
	}
	user.StripeCustomerID = &customerID

	return customerID, nil
}

// endDateForInterval computes the period end from the plan interval.
// Unknown intervals fall back to one month.
func endDateForInterval(start time.Time, interval models.PlanInterval) time.Time {
	switch interval {
	case models.PlanIntervalAnnually:
		return start.AddDate(1, 0, 0)
	case models.PlanIntervalMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

func wrapPurchaseError(err error) error {
	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) && appErr.Code == apperrors.CodeNotFound {
		return appErr
	}
	return apperrors.InternalErrorMsg(err, fmt.Sprintf("Subscription purchase failed: %v", err))
}
