package services

import (
	"nutriplan_backend/internal/email"
	"nutriplan_backend/internal/stripe"
)

// ServiceContainer holds every service of the application.
type ServiceContainer struct {
	AuthService               AuthService
	ProfileService            ProfileService
	MealCharacteristicService MealCharacteristicService
	MealPlanService           MealPlanService
	AiMealGeneratorService    AiMealGeneratorService
	SubscriptionService       SubscriptionService
	WebhookService            WebhookService
	EmailService              email.Provider
	PaymentGateway            stripe.Client
}
