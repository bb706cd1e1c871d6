package stripe

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"nutriplan_backend/internal/logger"
	"nutriplan_backend/internal/models"
)

const metadataUserIDKey = "userId"

// Client wraps the Stripe API surface the billing flows need.
type Client interface {
	// CreateCustomer creates a Stripe customer and returns its ID.
	CreateCustomer(ctx context.Context, userID, email string) (string, error)

	// GetOrCreateCustomer looks the customer up by userID metadata and
	// creates one when missing.
	GetOrCreateCustomer(ctx context.Context, userID, email string) (string, error)

	// CreatePaymentIntent opens a payment intent for the amount in major
	// currency units. Returns the intent ID and its client secret.
	CreatePaymentIntent(ctx context.Context, customerID string, amount float64, currency string, metadata map[string]string) (string, string, error)

	// EnsurePlanPrice creates a Stripe product and recurring price for the
	// plan, reusing plan.ExternalPlanID when already provisioned.
	EnsurePlanPrice(ctx context.Context, plan *models.SubscriptionPlan) (string, error)

	// CreateGatewaySubscription starts an incomplete gateway subscription
	// and returns its ID plus the client secret of the first invoice's
	// payment intent. Metadata is echoed back on webhook events.
	CreateGatewaySubscription(ctx context.Context, customerID, priceID, idempotencyKey string, metadata map[string]string) (string, string, error)

	// CancelSubscription cancels the gateway subscription immediately.
	// Missing subscriptions are treated as already cancelled.
	CancelSubscription(ctx context.Context, subscriptionID string) error

	// ConstructWebhookEvent verifies the webhook signature and parses the event.
	ConstructWebhookEvent(payload []byte, sigHeader, secret string) (stripe.Event, error)
}

type stripeClient struct {
	client *client.API
}

func NewClient(apiKey string) Client {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &stripeClient{client: sc}
}

func (sc *stripeClient) CreateCustomer(ctx context.Context, userID, email string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			metadataUserIDKey: userID,
		},
	}
	params.Context = ctx

	cus, err := sc.client.Customers.New(params)
	if err != nil {
		logStripeError(ctx, "CreateCustomer", err)
		return "", fmt.Errorf("stripe: failed to create customer: %w", err)
	}

	logger.CtxInfo(ctx, "Stripe customer created", "stripeCustomerID", cus.ID, "userID", userID)
	return cus.ID, nil
}

func (sc *stripeClient) GetOrCreateCustomer(ctx context.Context, userID, email string) (string, error) {
	searchQuery := fmt.Sprintf("metadata['%s']:'%s'", metadataUserIDKey, userID)
	searchParams := &stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{
			Query:   searchQuery,
			Limit:   stripe.Int64(1),
			Context: ctx,
		},
	}

	customers := sc.client.Customers.Search(searchParams)
	if customers.Next() {
		customer := customers.Customer()
		logger.CtxInfo(ctx, "Found existing Stripe customer", "stripeCustomerID", customer.ID, "userID", userID)
		return customer.ID, nil
	}

	if err := customers.Err(); err != nil {
		logStripeError(ctx, "SearchCustomers", err)
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeInvalidRequest {
			return "", fmt.Errorf("stripe: failed to search customer: %w", err)
		}
		logger.CtxWarn(ctx, "Non-fatal error during customer search, creating a new customer", "error", err.Error())
	}

	return sc.CreateCustomer(ctx, userID, email)
}

func (sc *stripeClient) CreatePaymentIntent(ctx context.Context, customerID string, amount float64, currency string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: metadata,
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}
	params.Context = ctx

	intent, err := sc.client.PaymentIntents.New(params)
	if err != nil {
		logStripeError(ctx, "CreatePaymentIntent", err)
		return "", "", fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	logger.CtxInfo(ctx, "Stripe payment intent created", "paymentIntentID", intent.ID, "amount", amount)
	return intent.ID, intent.ClientSecret, nil
}

func (sc *stripeClient) EnsurePlanPrice(ctx context.Context, plan *models.SubscriptionPlan) (string, error) {
	if plan.ExternalPlanID != nil && *plan.ExternalPlanID != "" {
		return *plan.ExternalPlanID, nil
	}

	productParams := &stripe.ProductParams{
		Name: stripe.String(plan.Name),
		Metadata: map[string]string{
			"planId": plan.ID,
		},
	}
	if plan.Description != "" {
		productParams.Description = stripe.String(plan.Description)
	}
	productParams.Context = ctx

	product, err := sc.client.Products.New(productParams)
	if err != nil {
		logStripeError(ctx, "CreateProduct", err)
		return "", fmt.Errorf("stripe: failed to create product: %w", err)
	}

	interval := "month"
	if plan.Interval == models.PlanIntervalAnnually {
		interval = "year"
	}

	priceParams := &stripe.PriceParams{
		Product:    stripe.String(product.ID),
		UnitAmount: stripe.Int64(toMinorUnits(plan.Price)),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(interval),
		},
	}
	priceParams.Context = ctx

	price, err := sc.client.Prices.New(priceParams)
	if err != nil {
		logStripeError(ctx, "CreatePrice", err)
		return "", fmt.Errorf("stripe: failed to create price: %w", err)
	}

	logger.CtxInfo(ctx, "Stripe price provisioned", "priceID", price.ID, "planId", plan.ID)
	return price.ID, nil
}

func (sc *stripeClient) CreateGatewaySubscription(ctx context.Context, customerID, priceID, idempotencyKey string, metadata map[string]string) (string, string, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{
				Price: stripe.String(priceID),
			},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		Metadata:        metadata,
		Params: stripe.Params{
			Context: ctx,
		},
	}
	if idempotencyKey != "" {
		params.IdempotencyKey = stripe.String(idempotencyKey)
	}
	params.AddExpand("latest_invoice.payment_intent")

	subscription, err := sc.client.Subscriptions.New(params)
	if err != nil {
		logStripeError(ctx, "CreateGatewaySubscription", err)
		return "", "", fmt.Errorf("stripe: failed to create subscription: %w", err)
	}

	logger.CtxInfo(ctx, "Stripe subscription created",
		"stripeSubscriptionID", subscription.ID, "status", string(subscription.Status))

	clientSecret := ""
	if subscription.LatestInvoice != nil && subscription.LatestInvoice.PaymentIntent != nil {
		clientSecret = subscription.LatestInvoice.PaymentIntent.ClientSecret
	} else {
		logger.CtxWarn(ctx, "No payment intent on created subscription",
			"stripeSubscriptionID", subscription.ID, "status", string(subscription.Status))
	}

	return subscription.ID, clientSecret, nil
}

func (sc *stripeClient) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{
		Params: stripe.Params{
			Context: ctx,
		},
	}

	_, err := sc.client.Subscriptions.Cancel(subscriptionID, params)
	if err != nil {
		stripeErr, ok := err.(*stripe.Error)
		if ok && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			logger.CtxWarn(ctx, "Gateway subscription already cancelled or missing",
				"stripeSubscriptionID", subscriptionID)
			return nil
		}
		logStripeError(ctx, "CancelSubscription", err)
		return fmt.Errorf("stripe: failed to cancel subscription: %w", err)
	}

	logger.CtxInfo(ctx, "Stripe subscription cancelled", "stripeSubscriptionID", subscriptionID)
	return nil
}

func (sc *stripeClient) ConstructWebhookEvent(payload []byte, sigHeader, secret string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, secret)
}

// toMinorUnits converts major currency units to cents.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func logStripeError(ctx context.Context, operation string, err error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		logger.CtxError(ctx, "Stripe API error",
			"operation", operation,
			"type", string(stripeErr.Type),
			"code", string(stripeErr.Code),
			"param", stripeErr.Param,
			"message", stripeErr.Msg,
			"request_id", stripeErr.RequestID,
			"status_code", stripeErr.HTTPStatusCode,
		)
	} else {
		logger.CtxWithError(ctx, "Stripe operation failed", err, "operation", operation)
	}
}
