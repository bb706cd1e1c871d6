package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	stripesdk "github.com/stripe/stripe-go/v78"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"nutriplan_backend/internal/logger"
	"nutriplan_backend/internal/models"
	"nutriplan_backend/internal/repositories"
	"nutriplan_backend/pkg/apperrors"
)

// WebhookService applies Stripe events to local billing state. Every
// handler is idempotent so redelivered events are safe.
type WebhookService interface {
	HandleStripeEvent(ctx context.Context, db *gorm.DB, event stripesdk.Event) error
}

type WebhookServiceImpl struct{}

func NewWebhookService() WebhookService {
	return &WebhookServiceImpl{}
}

func (s *WebhookServiceImpl) HandleStripeEvent(ctx context.Context, db *gorm.DB, event stripesdk.Event) error {
	logger.CtxInfo(ctx, "stripe webhook event received", "type", string(event.Type), "id", event.ID)

	var err error
	switch event.Type {
	case "payment_intent.succeeded":
		err = s.handlePaymentIntentSucceeded(ctx, db, event)
	case "payment_intent.payment_failed":
		err = s.handlePaymentIntentFailed(ctx, db, event)
	case "invoice.payment_succeeded":
		logger.CtxInfo(ctx, "invoice payment succeeded", "eventId", event.ID)
	case "invoice.payment_failed":
		logger.CtxWarn(ctx, "invoice payment failed", "eventId", event.ID)
	case "customer.subscription.created":
		err = s.handleSubscriptionCreated(ctx, db, event)
	case "customer.subscription.updated":
		err = s.handleSubscriptionUpdated(ctx, db, event)
	case "customer.subscription.deleted":
		err = s.handleSubscriptionDeleted(ctx, db, event)
	default:
		logger.CtxInfo(ctx, "unhandled stripe event type", "type", string(event.Type))
	}

	if err != nil {
		logger.CtxWithError(ctx, "stripe webhook handler failed", err,
			"type", string(event.Type), "eventId", event.ID)
	}
	return err
}

// mapGatewayStatus translates vendor subscription statuses to local ones.
func mapGatewayStatus(status stripesdk.SubscriptionStatus) models.SubscriptionStatus {
	switch status {
	case stripesdk.SubscriptionStatusActive:
		return models.SubscriptionStatusActive
	case stripesdk.SubscriptionStatusTrialing:
		return models.SubscriptionStatusTrial
	case stripesdk.SubscriptionStatusPastDue:
		return models.SubscriptionStatusPastDue
	case stripesdk.SubscriptionStatusCanceled:
		return models.SubscriptionStatusCancelled
	case stripesdk.SubscriptionStatusUnpaid:
		return models.SubscriptionStatusUnpaid
	case stripesdk.SubscriptionStatusIncomplete:
		return models.SubscriptionStatusIncomplete
	case stripesdk.SubscriptionStatusIncompleteExpired:
		return models.SubscriptionStatusExpired
	default:
		return models.SubscriptionStatusActive
	}
}

func (s *WebhookServiceImpl) handlePaymentIntentSucceeded(ctx context.Context, db *gorm.DB, event stripesdk.Event) error {
	var intent stripesdk.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}

	userID := intent.Metadata["userId"]
	if userID == "" {
		logger.CtxWarn(ctx, "payment intent without userId metadata, skipping", "paymentIntentId", intent.ID)
		return nil
	}

	repo := repositories.NewSubscriptionRepository(db)

	// Redelivery guard: a payment for this intent already exists.
	if existing, err := repo.FindPaymentByExternalID(intent.ID); err == nil {
		logger.CtxInfo(ctx, "payment already recorded, skipping",
			"paymentIntentId", intent.ID, "paymentId", existing.ID)
		return nil
	} else if !apperrors.Is(err, repositories.ErrPaymentNotFound) {
		return err
	}

	payment := &models.Payment{
		UserID:            userID,
		Amount:            float64(intent.Amount) / 100,
		Currency:          string(intent.Currency),
		Status:            models.PaymentStatusCompleted,
		Provider:          models.PaymentProviderStripe,
		ExternalPaymentID: &intent.ID,
		Metadata:          metadataToJSONMap(intent.Metadata),
	}

	if intent.Metadata["isSubscription"] == "true" {
		subscription, err := s.activateOrCreateSubscription(ctx, repo, userID, intent.Metadata)
		if err != nil {
			return err
		}
		if subscription != nil {
			payment.SubscriptionID = &subscription.ID
		}
	} else if subscriptionID := intent.Metadata["subscriptionId"]; subscriptionID != "" {
		subscription, err := repo.FindSubscriptionByID(subscriptionID)
		if err == nil {
			subscription.Status = models.SubscriptionStatusActive
			if err := repo.UpdateSubscription(subscription); err != nil {
				return err
			}
			payment.SubscriptionID = &subscription.ID
		} else if !apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return err
		}
	}

	if err := repo.CreatePayment(payment); err != nil {
		return err
	}

	logger.CtxInfo(ctx, "payment recorded from webhook",
		"paymentId", payment.ID, "paymentIntentId", intent.ID, "amount", payment.Amount)
	return nil
}

// activateOrCreateSubscription flips an existing subscription to active or
// creates a fresh one from the intent metadata.
func (s *WebhookServiceImpl) activateOrCreateSubscription(ctx context.Context, repo repositories.SubscriptionRepository, userID string, metadata map[string]string) (*models.Subscription, error) {
	if subscriptionID := metadata["subscriptionId"]; subscriptionID != "" {
		subscription, err := repo.FindSubscriptionByID(subscriptionID)
		if err == nil {
			subscription.Status = models.SubscriptionStatusActive
			if err := repo.UpdateSubscription(subscription); err != nil {
				return nil, err
			}
			return subscription, nil
		}
		if !apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, err
		}
	}

	planID := metadata["planId"]
	if planID == "" {
		logger.CtxWarn(ctx, "subscription payment without planId metadata")
		return nil, nil
	}

	plan, err := repo.FindPlanByID(planID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	subscription := &models.Subscription{
		UserID:    userID,
		PlanID:    plan.ID,
		Status:    models.SubscriptionStatusActive,
		StartDate: now,
		EndDate:   endDateForInterval(now, plan.Interval),
		AutoRenew: metadata["autoRenew"] == "true",
	}
	if err := repo.CreateSubscription(subscription); err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "subscription created from payment webhook",
		"subscriptionId", subscription.ID, "planId", plan.ID)
	return subscription, nil
}

func (s *WebhookServiceImpl) handlePaymentIntentFailed(ctx context.Context, db *gorm.DB, event stripesdk.Event) error {
	var intent stripesdk.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}

	userID := intent.Metadata["userId"]
	if userID == "" {
		logger.CtxWarn(ctx, "failed payment intent without userId metadata, skipping", "paymentIntentId", intent.ID)
		return nil
	}

	repo := repositories.NewSubscriptionRepository(db)

	if _, err := repo.FindPaymentByExternalID(intent.ID); err == nil {
		return nil
	} else if !apperrors.Is(err, repositories.ErrPaymentNotFound) {
		return err
	}

	meta := metadataToJSONMap(intent.Metadata)
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		meta["failureMessage"] = intent.LastPaymentError.Msg
	}

	payment := &models.Payment{
		UserID:            userID,
		Amount:            float64(intent.Amount) / 100,
		Currency:          string(intent.Currency),
		Status:            models.PaymentStatusFailed,
		Provider:          models.PaymentProviderStripe,
		ExternalPaymentID: &intent.ID,
		Metadata:          meta,
	}
	if subscriptionID := intent.Metadata["subscriptionId"]; subscriptionID != "" {
		payment.SubscriptionID = &subscriptionID
	}

	if err := repo.CreatePayment(payment); err != nil {
		return err
	}

	logger.CtxWarn(ctx, "failed payment recorded from webhook",
		"paymentId", payment.ID, "paymentIntentId", intent.ID)
	return nil
}

func (s *WebhookServiceImpl) handleSubscriptionCreated(ctx context.Context, db *gorm.DB, event stripesdk.Event) error {
	var gatewaySub stripesdk.Subscription
	if err := json.Unmarshal(event.Data.Raw, &gatewaySub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	userID := gatewaySub.Metadata["userId"]
	planID := gatewaySub.Metadata["planId"]
	if userID == "" || planID == "" {
		logger.CtxWarn(ctx, "gateway subscription without userId/planId metadata, skipping",
			"stripeSubscriptionId", gatewaySub.ID)
		return nil
	}

	repo := repositories.NewSubscriptionRepository(db)

	if existing, err := repo.FindByExternalID(gatewaySub.ID); err == nil {
		existing.Status = models.SubscriptionStatusActive
		if err := repo.UpdateSubscription(existing); err != nil {
			return err
		}
		logger.CtxInfo(ctx, "existing subscription activated from webhook",
			"subscriptionId", existing.ID)
		return nil
	} else if !apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
		return err
	}

	plan, err := repo.FindPlanByID(planID)
	if err != nil {
		return err
	}

	now := time.Now()
	endDate := endDateForInterval(now, plan.Interval)
	if gatewaySub.EndedAt > 0 {
		// Vendor timestamps are epoch seconds.
		endDate = time.Unix(gatewaySub.EndedAt, 0)
	}

	subscription := &models.Subscription{
		UserID:                 userID,
		PlanID:                 plan.ID,
		Status:                 mapGatewayStatus(gatewaySub.Status),
		StartDate:              now,
		EndDate:                endDate,
		AutoRenew:              true,
		ExternalSubscriptionID: &gatewaySub.ID,
	}
	if err := repo.CreateSubscription(subscription); err != nil {
		return err
	}

	// Companion payment for the opening invoice.
	if amount := firstItemAmount(&gatewaySub); amount > 0 {
		payment := &models.Payment{
			UserID:         userID,
			SubscriptionID: &subscription.ID,
			Amount:         amount,
			Currency:       string(gatewaySub.Currency),
			Status:         models.PaymentStatusCompleted,
			Provider:       models.PaymentProviderStripe,
			Metadata: datatypes.JSONMap{
				"stripeSubscriptionId": gatewaySub.ID,
			},
		}
		if gatewaySub.LatestInvoice != nil && gatewaySub.LatestInvoice.ID != "" {
			payment.ExternalPaymentID = &gatewaySub.LatestInvoice.ID
		}
		if err := repo.CreatePayment(payment); err != nil {
			return err
		}
	}

	logger.CtxInfo(ctx, "subscription created from webhook",
		"subscriptionId", subscription.ID, "stripeSubscriptionId", gatewaySub.ID)
	return nil
}

func (s *WebhookServiceImpl) handleSubscriptionUpdated(ctx context.Context, db *gorm.DB, event stripesdk.Event) error {
	var gatewaySub stripesdk.Subscription
	if err := json.Unmarshal(event.Data.Raw, &gatewaySub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	repo := repositories.NewSubscriptionRepository(db)

	subscription, err := repo.FindByExternalID(gatewaySub.ID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			logger.CtxWarn(ctx, "update event for unknown subscription, skipping",
				"stripeSubscriptionId", gatewaySub.ID)
			return nil
		}
		return err
	}

	subscription.Status = mapGatewayStatus(gatewaySub.Status)
	if gatewaySub.EndedAt > 0 {
		subscription.EndDate = time.Unix(gatewaySub.EndedAt, 0)
	}
	if err := repo.UpdateSubscription(subscription); err != nil {
		return err
	}

	// Renewal payment, keyed by invoice so redeliveries are no-ops.
	if subscription.Status == models.SubscriptionStatusActive &&
		gatewaySub.LatestInvoice != nil && gatewaySub.LatestInvoice.ID != "" {
		invoiceID := gatewaySub.LatestInvoice.ID
		if _, err := repo.FindPaymentByExternalID(invoiceID); err == nil {
			return nil
		} else if !apperrors.Is(err, repositories.ErrPaymentNotFound) {
			return err
		}

		if amount := firstItemAmount(&gatewaySub); amount > 0 {
			payment := &models.Payment{
				UserID:            subscription.UserID,
				SubscriptionID:    &subscription.ID,
				Amount:            amount,
				Currency:          string(gatewaySub.Currency),
				Status:            models.PaymentStatusCompleted,
				Provider:          models.PaymentProviderStripe,
				ExternalPaymentID: &invoiceID,
				Metadata: datatypes.JSONMap{
					"stripeSubscriptionId": gatewaySub.ID,
					"renewal":              true,
				},
			}
			if err := repo.CreatePayment(payment); err != nil {
				return err
			}
		}
	}

	logger.CtxInfo(ctx, "subscription updated from webhook",
		"subscriptionId", subscription.ID, "status", string(subscription.Status))
	return nil
}

func (s *WebhookServiceImpl) handleSubscriptionDeleted(ctx context.Context, db *gorm.DB, event stripesdk.Event) error {
	var gatewaySub stripesdk.Subscription
	if err := json.Unmarshal(event.Data.Raw, &gatewaySub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	repo := repositories.NewSubscriptionRepository(db)

	subscription, err := repo.FindByExternalID(gatewaySub.ID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			logger.CtxWarn(ctx, "delete event for unknown subscription, skipping",
				"stripeSubscriptionId", gatewaySub.ID)
			return nil
		}
		return err
	}

	now := time.Now()
	subscription.Status = models.SubscriptionStatusCancelled
	subscription.CancelledAt = &now
	subscription.AutoRenew = false
	if err := repo.UpdateSubscription(subscription); err != nil {
		return err
	}

	logger.CtxInfo(ctx, "subscription cancelled from webhook",
		"subscriptionId", subscription.ID, "stripeSubscriptionId", gatewaySub.ID)
	return nil
}

// firstItemAmount returns the first subscription item's price in major
// units, 0 when absent.
func firstItemAmount(sub *stripesdk.Subscription) float64 {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return 0
	}
	price := sub.Items.Data[0].Price
	if price == nil {
		return 0
	}
	return float64(price.UnitAmount) / 100
}

func metadataToJSONMap(metadata map[string]string) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
