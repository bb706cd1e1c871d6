package handlers

import (
	"net/http"

	"nutriplan_backend/internal/services"
	"nutriplan_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type StripeHandler struct {
	*BaseHandler
	subscriptionService services.SubscriptionService
}

func NewStripeHandler(base *BaseHandler, subscriptionService services.SubscriptionService) *StripeHandler {
	return &StripeHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
	}
}

func (h *StripeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	st := rg.Group("/stripe")
	{
		st.POST("/create-checkout-session", h.CreateCheckoutSession)
	}
}

func (h *StripeHandler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CheckoutSessionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	clientSecret, err := h.subscriptionService.CreateCheckoutSession(c.Request.Context(), db, userID, req.PlanID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutSessionResponse{
		CheckoutSessionClientSecret: clientSecret,
	})
}
