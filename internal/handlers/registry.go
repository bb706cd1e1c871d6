package handlers

// AppHandlers holds every handler of the application.
type AppHandlers struct {
	AuthHandler               *AuthHandler
	UserHandler               *UserHandler
	ProfileHandler            *ProfileHandler
	MealCharacteristicHandler *MealCharacteristicHandler
	MealPlanHandler           *MealPlanHandler
	SubscriptionHandler       *SubscriptionHandler
	StripeHandler             *StripeHandler
	WebhookHandler            *WebhookHandler
}
