package dto

import "time"

type CreateSubscriptionRequest struct {
	PlanID    string     `json:"planId" validate:"required"`
	Status    *string    `json:"status,omitempty" validate:"omitempty,is-subscription-status"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	AutoRenew *bool      `json:"autoRenew,omitempty"`
}

type UpdateSubscriptionRequest struct {
	PlanID    *string    `json:"planId,omitempty"`
	Status    *string    `json:"status,omitempty" validate:"omitempty,is-subscription-status"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	AutoRenew *bool      `json:"autoRenew,omitempty"`
}

type PurchaseRequest struct {
	PlanID string `json:"planId" validate:"required"`
}

type PurchaseResponse struct {
	SubscriptionID string `json:"subscriptionId"`
	PaymentID      string `json:"paymentId"`
	ClientSecret   string `json:"clientSecret,omitempty"`
}

type SubscriptionStatusResponse struct {
	HasActiveSubscription bool `json:"hasActiveSubscription"`
}

type CheckoutSessionRequest struct {
	PlanID string `json:"planId" validate:"required"`
}

type CheckoutSessionResponse struct {
	CheckoutSessionClientSecret string `json:"checkoutSessionClientSecret"`
}

type StripeConfigResponse struct {
	PublishableKey string `json:"publishableKey"`
}
