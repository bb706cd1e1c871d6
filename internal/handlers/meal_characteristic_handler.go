package handlers

import (
	"net/http"

	"nutriplan_backend/internal/services"
	"nutriplan_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type MealCharacteristicHandler struct {
	*BaseHandler
	service services.MealCharacteristicService
}

func NewMealCharacteristicHandler(base *BaseHandler, service services.MealCharacteristicService) *MealCharacteristicHandler {
	return &MealCharacteristicHandler{
		BaseHandler: base,
		service:     service,
	}
}

func (h *MealCharacteristicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	mc := rg.Group("/meal-characteristics")
	{
		mc.POST("", h.Create)
		mc.GET("", h.GetAll)
		mc.GET("/user", h.GetMine)
		mc.GET("/:id", h.GetByID)
		mc.PATCH("/:id", h.Update)
		mc.DELETE("/:id", h.Delete)
	}
}

func (h *MealCharacteristicHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateMealCharacteristicRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	characteristic, err := h.service.Create(c.Request.Context(), db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, characteristic)
}

func (h *MealCharacteristicHandler) GetAll(c *gin.Context) {
	db := h.GetDB(c)

	characteristics, err := h.service.GetAll(c.Request.Context(), db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, characteristics)
}

func (h *MealCharacteristicHandler) GetMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	characteristics, err := h.service.GetByUser(c.Request.Context(), db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, characteristics)
}

func (h *MealCharacteristicHandler) GetByID(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	characteristic, err := h.service.GetByID(c.Request.Context(), db, c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, characteristic)
}

func (h *MealCharacteristicHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateMealCharacteristicRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	characteristic, err := h.service.Update(c.Request.Context(), db, c.Param("id"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, characteristic)
}

func (h *MealCharacteristicHandler) Delete(c *gin.Context) {
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
		"message": "Meal characteristic deleted",
	})
}
