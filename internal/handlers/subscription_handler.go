package handlers

import (
	"net/http"

	"nutriplan_backend/internal/services"
	"nutriplan_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	*BaseHandler
	service        services.SubscriptionService
	publishableKey string
}

func NewSubscriptionHandler(base *BaseHandler, service services.SubscriptionService, publishableKey string) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:    base,
		service:        service,
		publishableKey: publishableKey,
	}
}

// RegisterPublicRoutes wires the endpoints the frontend hits before login.
func (h *SubscriptionHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	subs := rg.Group("/subscriptions")
	{
		subs.GET("/plans", h.GetPlans)
		subs.GET("/stripe-config", h.GetStripeConfig)
	}
}

func (h *SubscriptionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	subs := rg.Group("/subscriptions")
	{
		subs.GET("/status", h.GetStatus)
		subs.GET("/active", h.GetActive)
		subs.GET("/user/me", h.GetActive)
		subs.GET("/payments", h.GetPayments)
		subs.POST("/subscribe", h.Subscribe)
		subs.POST("/purchase", h.Purchase)
		subs.PATCH("/:id", h.Update)
		subs.PATCH("/:id/cancel", h.Cancel)
	}
}

func (h *SubscriptionHandler) GetPlans(c *gin.Context) {
	db := h.GetDB(c)

	plans, err := h.service.GetPlans(c.Request.Context(), db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

func (h *SubscriptionHandler) GetStripeConfig(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StripeConfigResponse{
		PublishableKey: h.publishableKey,
	})
}

func (h *SubscriptionHandler) GetStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	hasActive, _, err := h.service.CheckSubscriptionStatus(c.Request.Context(), db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SubscriptionStatusResponse{
		HasActiveSubscription: hasActive,
	})
}

func (h *SubscriptionHandler) GetActive(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	subscription, err := h.service.GetActiveSubscription(c.Request.Context(), db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}

func (h *SubscriptionHandler) GetPayments(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	payments, err := h.service.GetPaymentHistory(c.Request.Context(), db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSubscriptionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	subscription, err := h.service.CreateSubscription(c.Request.Context(), db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subscription)
}

func (h *SubscriptionHandler) Purchase(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.PurchaseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	result, err := h.service.PurchaseSubscription(c.Request.Context(), db, userID, req.PlanID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *SubscriptionHandler) Update(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	var req dto.UpdateSubscriptionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	subscription, err := h.service.UpdateSubscription(c.Request.Context(), db, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	db := h.GetDB(c)

	subscription, err := h.service.CancelSubscription(c.Request.Context(), db, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}
