package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	stripesdk "github.com/stripe/stripe-go/v78"

	"nutriplan_backend/internal/logger"
	"nutriplan_backend/internal/services"
	"nutriplan_backend/internal/stripe"
	"nutriplan_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// maxWebhookBodyBytes caps webhook payloads, matching Stripe's own guidance.
const maxWebhookBodyBytes = 65536

type WebhookHandler struct {
	*BaseHandler
	webhookService services.WebhookService
	stripeClient   stripe.Client
	webhookSecret  string
}

func NewWebhookHandler(base *BaseHandler, webhookService services.WebhookService, stripeClient stripe.Client, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:    base,
		webhookService: webhookService,
		stripeClient:   stripeClient,
		webhookSecret:  webhookSecret,
	}
}

func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/stripe", h.HandleStripeWebhook)
	}
}

func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.CtxWithError(ctx, "failed to read webhook body", err)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Failed to read request body"))
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")

	var event stripesdk.Event
	if h.webhookSecret != "" && sigHeader != "" {
		event, err = h.stripeClient.ConstructWebhookEvent(payload, sigHeader, h.webhookSecret)
		if err != nil {
			logger.CtxWithError(ctx, "webhook signature verification failed", err)
			apperrors.HandleError(c, apperrors.ErrWebhookSignature)
			return
		}
	} else {
		// No secret configured or no signature sent. Parse unverified;
		// acceptable for local development only.
		logger.CtxWarn(ctx, "processing stripe webhook without signature verification")
		if err := json.Unmarshal(payload, &event); err != nil {
			logger.CtxWithError(ctx, "failed to parse webhook payload", err)
			apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid webhook payload"))
			return
		}
	}

	db := h.GetDB(c)

	if err := h.webhookService.HandleStripeEvent(ctx, db, event); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Webhook processing failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
