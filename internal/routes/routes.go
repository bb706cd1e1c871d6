package routes

import (
	"net/http"

	"nutriplan_backend/internal/handlers"
	"nutriplan_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every HTTP route of the application.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
) {
	api := ginRouter.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public surface: account entry points, plan catalog, payment
	// provider callbacks.
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.SubscriptionHandler.RegisterPublicRoutes(api)
		appHandlers.WebhookHandler.RegisterRoutes(api)
	}

	authorized := api.Group("")
	authorized.Use(middleware.AuthMiddleware())
	{
		appHandlers.AuthHandler.RegisterAuthorizedRoutes(authorized)
		appHandlers.UserHandler.RegisterRoutes(authorized)
		appHandlers.ProfileHandler.RegisterRoutes(authorized)
		appHandlers.MealCharacteristicHandler.RegisterRoutes(authorized)
		appHandlers.MealPlanHandler.RegisterRoutes(authorized)
		appHandlers.SubscriptionHandler.RegisterRoutes(authorized)
		appHandlers.StripeHandler.RegisterRoutes(authorized)
	}
}
