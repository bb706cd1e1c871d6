package handlers

import (
	"net/http"

	"nutriplan_backend/internal/services"
	"nutriplan_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type MealPlanHandler struct {
	*BaseHandler
	service     services.MealPlanService
	aiGenerator services.AiMealGeneratorService
}

func NewMealPlanHandler(base *BaseHandler, service services.MealPlanService, aiGenerator services.AiMealGeneratorService) *MealPlanHandler {
	return &MealPlanHandler{
		BaseHandler: base,
		service:     service,
		aiGenerator: aiGenerator,
	}
}

func (h *MealPlanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	plans := rg.Group("/meal-plans")
	{
		plans.POST("", h.Create)
		plans.GET("", h.GetAll)
		plans.GET("/user", h.GetMine)
		plans.GET("/:id", h.GetByID)
		plans.PATCH("/:id", h.Update)
		plans.DELETE("/:id", h.Delete)
		plans.POST("/:id/generate-ai-plan", h.GenerateAiPlan)
	}
}

func (h *MealPlanHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateMealPlanRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	plan, err := h.service.Create(c.Request.Context(), db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (h *MealPlanHandler) GetAll(c *gin.Context) {
	db := h.GetDB(c)

	plans, err := h.service.GetAll(c.Request.Context(), db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

func (h *MealPlanHandler) GetMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	plans, err := h.service.GetByUser(c.Request.Context(), db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

func (h *MealPlanHandler) GetByID(c *gin.Context) {
	db := h.GetDB(c)

	plan, err := h.service.GetByID(c.Request.Context(), db, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *MealPlanHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateMealPlanRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	plan, err := h.service.Update(c.Request.Context(), db, c.Param("id"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *MealPlanHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.service.Delete(c.Request.Context(), db, c.Param("id"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Meal plan deleted",
	})
}

func (h *MealPlanHandler) GenerateAiPlan(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	db := h.GetDB(c)

	generated, err := h.aiGenerator.GenerateMealPlan(c.Request.Context(), db, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, generated)
}
