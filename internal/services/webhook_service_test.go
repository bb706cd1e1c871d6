package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	stripesdk "github.com/stripe/stripe-go/v78"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriplan_backend/internal/models"
)

func paymentIntentEvent(t *testing.T, eventType string, intent map[string]any) stripesdk.Event {
	t.Helper()

	raw, err := json.Marshal(intent)
	require.NoError(t, err)
	return stripesdk.Event{
		ID:   "evt_test",
		Type: stripesdk.EventType(eventType),
		Data: &stripesdk.EventData{Raw: raw},
	}
}

func TestWebhook_PaymentIntentSucceededCreatesSubscription(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	createTestPlans(t, db)
	user := createTestUser(t, db)
	svc := NewWebhookService()
	ctx := context.Background()

	event := paymentIntentEvent(t, "payment_intent.succeeded", map[string]any{
		"id":       "pi_webhook_1",
		"amount":   999,
		"currency": "usd",
		"metadata": map[string]string{
			"userId":         user.ID,
			"planId":         "1",
			"isSubscription": "true",
			"autoRenew":      "false",
		},
	})

	require.NoError(t, svc.HandleStripeEvent(ctx, db, event))

	var payment models.Payment
	require.NoError(t, db.First(&payment, "external_payment_id = ?", "pi_webhook_1").Error)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, 9.99, payment.Amount)
	require.NotNil(t, payment.SubscriptionID)

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "id = ?", *payment.SubscriptionID).Error)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.False(t, sub.AutoRenew)
	assert.WithinDuration(t, sub.StartDate.AddDate(0, 1, 0), sub.EndDate, time.Second)
}

func TestWebhook_PaymentIntentSucceededIsIdempotent(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	createTestPlans(t, db)
	user := createTestUser(t, db)
	svc := NewWebhookService()
	ctx := context.Background()

	event := paymentIntentEvent(t, "payment_intent.succeeded", map[string]any{
		"id":       "pi_webhook_dup",
		"amount":   999,
		"currency": "usd",
		"metadata": map[string]string{
			"userId":         user.ID,
			"planId":         "1",
			"isSubscription": "true",
		},
	})

	require.NoError(t, svc.HandleStripeEvent(ctx, db, event))
	require.NoError(t, svc.HandleStripeEvent(ctx, db, event))

	var paymentCount, subCount int64
	db.Model(&models.Payment{}).Count(&paymentCount)
	db.Model(&models.Subscription{}).Count(&subCount)
	assert.Equal(t, int64(1), paymentCount, "redelivery must not duplicate the payment")
	assert.Equal(t, int64(1), subCount, "redelivery must not duplicate the subscription")
}

func TestWebhook_PaymentIntentSucceededActivatesExisting(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	createTestPlans(t, db)
	user := createTestUser(t, db)
	svc := NewWebhookService()
	ctx := context.Background()

	pending := &models.Subscription{
		UserID:    user.ID,
		PlanID:    "1",
		Status:    models.SubscriptionStatusTrial,
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 1, 0),
	}
	require.NoError(t, db.Create(pending).Error)

	event := paymentIntentEvent(t, "payment_intent.succeeded", map[string]any{
		"id":       "pi_webhook_2",
		"amount":   999,
		"currency": "usd",
		"metadata": map[string]string{
			"userId":         user.ID,
			"subscriptionId": pending.ID,
		},
	})

	require.NoError(t, svc.HandleStripeEvent(ctx, db, event))

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "id = ?", pending.ID).Error)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
}

func TestWebhook_PaymentIntentWithoutUserIsIgnored(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewWebhookService()

	event := paymentIntentEvent(t, "payment_intent.succeeded", map[string]any{
		"id":       "pi_anon",
		"amount":   500,
		"currency": "usd",
		"metadata": map[string]string{},
	})

	require.NoError(t, svc.HandleStripeEvent(context.Background(), db, event))

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestWebhook_PaymentIntentFailedRecordsFailure(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	user := createTestUser(t, db)
	svc := NewWebhookService()

	event := paymentIntentEvent(t, "payment_intent.payment_failed", map[string]any{
		"id":       "pi_failed_1",
		"amount":   999,
		"currency": "usd",
		"metadata": map[string]string{
			"userId": user.ID,
		},
		"last_payment_error": map[string]any{
			"message": "Your card was declined.",
		},
	})

	require.NoError(t, svc.HandleStripeEvent(context.Background(), db, event))

	var payment models.Payment
	require.NoError(t, db.First(&payment, "external_payment_id = ?", "pi_failed_1").Error)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
	assert.Equal(t, "Your card was declined.", payment.Metadata["failureMessage"])
}

func gatewaySubscriptionEvent(t *testing.T, eventType string, sub map[string]any) stripesdk.Event {
	t.Helper()

	raw, err := json.Marshal(sub)
	require.NoError(t, err)
	return stripesdk.Event{
		ID:   "evt_sub_test",
		Type: stripesdk.EventType(eventType),
		Data: &stripesdk.EventData{Raw: raw},
	}
}

func TestWebhook_SubscriptionCreated(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	createTestPlans(t, db)
	user := createTestUser(t, db)
	svc := NewWebhookService()

	event := gatewaySubscriptionEvent(t, "customer.subscription.created", map[string]any{
		"id":       "sub_gw_created",
		"status":   "active",
		"currency": "usd",
		"metadata": map[string]string{
			"userId": user.ID,
			"planId": "1",
		},
		"items": map[string]any{
			"data": []map[string]any{
				{"price": map[string]any{"unit_amount": 999}},
			},
		},
		"latest_invoice": map[string]any{"id": "in_first"},
	})

	require.NoError(t, svc.HandleStripeEvent(context.Background(), db, event))

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "external_subscription_id = ?", "sub_gw_created").Error)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, "1", sub.PlanID)
	assert.True(t, sub.AutoRenew)

	var payment models.Payment
	require.NoError(t, db.First(&payment, "external_payment_id = ?", "in_first").Error)
	assert.Equal(t, 9.99, payment.Amount)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	require.NotNil(t, payment.SubscriptionID)
	assert.Equal(t, sub.ID, *payment.SubscriptionID)
}

func TestWebhook_SubscriptionCreatedUsesEndedAt(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	createTestPlans(t, db)
	user := createTestUser(t, db)
	svc := NewWebhookService()

	endedAt := time.Now().AddDate(0, 3, 0).Unix()
	event := gatewaySubscriptionEvent(t, "customer.subscription.created", map[string]any{
		"id":       "sub_gw_ended_at",
		"status":   "trialing",
		"currency": "usd",
		"ended_at": endedAt,
		"metadata": map[string]string{
			"userId": user.ID,
			"planId": "1",
		},
	})

	require.NoError(t, svc.HandleStripeEvent(context.Background(), db, event))

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "external_subscription_id = ?", "sub_gw_ended_at").Error)
	assert.Equal(t, models.SubscriptionStatusTrial, sub.Status)
	assert.WithinDuration(t, time.Unix(endedAt, 0), sub.EndDate, time.Second)
}

func TestWebhook_SubscriptionUpdatedMapsStatusAndRecordsRenewal(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	createTestPlans(t, db)
	user := createTestUser(t, db)
	svc := NewWebhookService()
	ctx := context.Background()

	externalID := "sub_gw_upd"
	existing := &models.Subscription{
		UserID:                 user.ID,
		PlanID:                 "1",
		Status:                 models.SubscriptionStatusIncomplete,
		StartDate:              time.Now(),
		EndDate:                time.Now().AddDate(0, 1, 0),
		ExternalSubscriptionID: &externalID,
	}
	require.NoError(t, db.Create(existing).Error)

	event := gatewaySubscriptionEvent(t, "customer.subscription.updated", map[string]any{
		"id":       externalID,
		"status":   "active",
		"currency": "usd",
		"items": map[string]any{
			"data": []map[string]any{
				{"price": map[string]any{"unit_amount": 999}},
			},
		},
		"latest_invoice": map[string]any{"id": "in_renewal"},
	})

	require.NoError(t, svc.HandleStripeEvent(ctx, db, event))
	// Redelivery keyed by invoice id.
	require.NoError(t, svc.HandleStripeEvent(ctx, db, event))

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "id = ?", existing.ID).Error)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)

	var count int64
	db.Model(&models.Payment{}).Where("external_payment_id = ?", "in_renewal").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestWebhook_SubscriptionUpdatedUnknownIsIgnored(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewWebhookService()

	event := gatewaySubscriptionEvent(t, "customer.subscription.updated", map[string]any{
		"id":     "sub_nobody",
		"status": "active",
	})

	require.NoError(t, svc.HandleStripeEvent(context.Background(), db, event))
}

func TestWebhook_SubscriptionDeletedCancels(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	createTestPlans(t, db)
	user := createTestUser(t, db)
	svc := NewWebhookService()

	externalID := "sub_gw_del"
	existing := &models.Subscription{
		UserID:                 user.ID,
		PlanID:                 "1",
		Status:                 models.SubscriptionStatusActive,
		StartDate:              time.Now(),
		EndDate:                time.Now().AddDate(0, 1, 0),
		AutoRenew:              true,
		ExternalSubscriptionID: &externalID,
	}
	require.NoError(t, db.Create(existing).Error)

	event := gatewaySubscriptionEvent(t, "customer.subscription.deleted", map[string]any{
		"id":     externalID,
		"status": "canceled",
	})

	require.NoError(t, svc.HandleStripeEvent(context.Background(), db, event))

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "id = ?", existing.ID).Error)
	assert.Equal(t, models.SubscriptionStatusCancelled, sub.Status)
	assert.False(t, sub.AutoRenew)
	assert.NotNil(t, sub.CancelledAt)
}

func TestWebhook_UnknownEventTypeIsIgnored(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewWebhookService()

	event := stripesdk.Event{
		ID:   "evt_unknown",
		Type: "charge.refunded",
		Data: &stripesdk.EventData{Raw: json.RawMessage(`{}`)},
	}

	require.NoError(t, svc.HandleStripeEvent(context.Background(), db, event))
}

func TestWebhook_StatusMapping(t *testing.T) {
	t.Parallel()

	cases := map[stripesdk.SubscriptionStatus]models.SubscriptionStatus{
		stripesdk.SubscriptionStatusActive:             models.SubscriptionStatusActive,
		stripesdk.SubscriptionStatusTrialing:           models.SubscriptionStatusTrial,
		stripesdk.SubscriptionStatusPastDue:            models.SubscriptionStatusPastDue,
		stripesdk.SubscriptionStatusCanceled:           models.SubscriptionStatusCancelled,
		stripesdk.SubscriptionStatusUnpaid:             models.SubscriptionStatusUnpaid,
		stripesdk.SubscriptionStatusIncomplete:         models.SubscriptionStatusIncomplete,
		stripesdk.SubscriptionStatusIncompleteExpired:  models.SubscriptionStatusExpired,
		stripesdk.SubscriptionStatus("something_else"): models.SubscriptionStatusActive,
	}

	for gateway, local := range cases {
		assert.Equal(t, local, mapGatewayStatus(gateway), "status %s", gateway)
	}
}
