package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	stripesdk "github.com/stripe/stripe-go/v78"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"nutriplan_backend/internal/config"
	"nutriplan_backend/internal/handlers"
	"nutriplan_backend/internal/logger"
	"nutriplan_backend/internal/middleware"
	"nutriplan_backend/internal/models"
	"nutriplan_backend/internal/routes"
	"nutriplan_backend/internal/services"
	"nutriplan_backend/internal/validator"
)

func TestMain(m *testing.M) {
	config.AppConfig = &config.Config{}
	config.AppConfig.JWT.Secret = "handler-test-secret"
	config.AppConfig.JWT.TTL = 60
	config.AppConfig.Server.Env = "test"

	logger.Init("test")
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

// fakeGateway satisfies the billing gateway surface for router tests.
type fakeGateway struct{}

func (f *fakeGateway) CreateCustomer(ctx context.Context, userID, email string) (string, error) {
	return "cus_h_" + userID, nil
}

func (f *fakeGateway) GetOrCreateCustomer(ctx context.Context, userID, email string) (string, error) {
	return "cus_h_" + userID, nil
}

func (f *fakeGateway) CreatePaymentIntent(ctx context.Context, customerID string, amount float64, currency string, metadata map[string]string) (string, string, error) {
	return "pi_h_1", "pi_h_1_secret", nil
}

func (f *fakeGateway) EnsurePlanPrice(ctx context.Context, plan *models.SubscriptionPlan) (string, error) {
	return "price_h_" + plan.ID, nil
}

func (f *fakeGateway) CreateGatewaySubscription(ctx context.Context, customerID, priceID, idempotencyKey string, metadata map[string]string) (string, string, error) {
	return "sub_h_1", "sub_h_secret", nil
}

func (f *fakeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	return nil
}

func (f *fakeGateway) ConstructWebhookEvent(payload []byte, sigHeader, secret string) (stripesdk.Event, error) {
	return stripesdk.Event{}, fmt.Errorf("signature verification not exercised here")
}

type fakeAi struct{}

func (f *fakeAi) Complete(ctx context.Context, userMessage string) (string, error) {
	return `{"days":[],"nutritionSummary":{},"shoppingList":{"categories":[]},"notes":[]}`, nil
}

func (f *fakeAi) Model() string { return "test-model" }

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.MealCharacteristic{},
		&models.MealPlan{},
		&models.AiGeneratedMealPlan{},
		&models.SubscriptionPlan{},
		&models.Subscription{},
		&models.Payment{},
	))

	gateway := &fakeGateway{}
	authService := services.NewAuthService(nil, "http://front.local")
	subscriptionService := services.NewSubscriptionService(gateway)
	require.NoError(t, subscriptionService.SeedDefaultPlans(db))

	container := &services.ServiceContainer{
		AuthService:               authService,
		ProfileService:            services.NewProfileService(subscriptionService),
		MealCharacteristicService: services.NewMealCharacteristicService(),
		MealPlanService:           services.NewMealPlanService(),
		AiMealGeneratorService:    services.NewAiMealGeneratorService(&fakeAi{}),
		SubscriptionService:       subscriptionService,
		WebhookService:            services.NewWebhookService(),
		PaymentGateway:            gateway,
	}

	base := handlers.NewBaseHandler(validator.New())
	appHandlers := &handlers.AppHandlers{
		AuthHandler:               handlers.NewAuthHandler(base, container.AuthService, 3600),
		UserHandler:               handlers.NewUserHandler(base, container.AuthService),
		ProfileHandler:            handlers.NewProfileHandler(base, container.ProfileService),
		MealCharacteristicHandler: handlers.NewMealCharacteristicHandler(base, container.MealCharacteristicService),
		MealPlanHandler:           handlers.NewMealPlanHandler(base, container.MealPlanService, container.AiMealGeneratorService),
		SubscriptionHandler:       handlers.NewSubscriptionHandler(base, container.SubscriptionService, "pk_test_123"),
		StripeHandler:             handlers.NewStripeHandler(base, container.SubscriptionService),
		WebhookHandler:            handlers.NewWebhookHandler(base, container.WebhookService, container.PaymentGateway, ""),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.DBMiddleware(db))
	routes.RegisterRoutes(router, appHandlers)

	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerTestAccount(t *testing.T, router *gin.Engine, email string) (token, userID string) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     email,
		"password":  "password123",
		"firstName": "Han",
		"lastName":  "Dler",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken, resp.User.ID
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_RegisterSetsAuthCookie(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     "cookie@test.local",
		"password":  "password123",
		"firstName": "Coo",
		"lastName":  "Kie",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	var found bool
	for _, c := range cookies {
		if c.Name == "token" && c.Value != "" {
			found = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "register must set the token cookie")
}

func TestRouter_RegisterValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ProtectedRouteRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_UsersMe(t *testing.T) {
	router, _ := newTestRouter(t)
	token, userID := registerTestAccount(t, router, "me@test.local")

	rec := doJSON(t, router, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), userID)
	assert.Contains(t, rec.Body.String(), "me@test.local")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRouter_CookieAuthWorks(t *testing.T) {
	router, _ := newTestRouter(t)
	token, _ := registerTestAccount(t, router, "viacookie@test.local")

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_PublicPlansAndStripeConfig(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/subscriptions/plans", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Free"`)
	assert.Contains(t, rec.Body.String(), `"Premium"`)

	rec = doJSON(t, router, http.MethodGet, "/api/subscriptions/stripe-config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pk_test_123")
}

func TestRouter_PurchaseFlow(t *testing.T) {
	router, db := newTestRouter(t)
	token, userID := registerTestAccount(t, router, "buyer@test.local")

	rec := doJSON(t, router, http.MethodPost, "/api/subscriptions/purchase", token, map[string]string{
		"planId": "1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "pi_h_1_secret")

	rec = doJSON(t, router, http.MethodGet, "/api/subscriptions/status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hasActiveSubscription":true}`, rec.Body.String())

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "user_id = ?", userID).Error)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
}

func TestRouter_MealCharacteristicCRUDAndDeleteConflict(t *testing.T) {
	router, _ := newTestRouter(t)
	token, _ := registerTestAccount(t, router, "meals@test.local")

	rec := doJSON(t, router, http.MethodPost, "/api/meal-characteristics", token, map[string]interface{}{
		"planName": "Handler plan",
		"gender":   "male",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var mc models.MealCharacteristic
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mc))

	rec = doJSON(t, router, http.MethodPost, "/api/meal-plans", token, map[string]interface{}{
		"name":                 "Handler week",
		"durationInDays":       7,
		"mealCharacteristicId": mc.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodDelete, "/api/meal-characteristics/"+mc.ID, token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "meal plan")
}

func TestRouter_MealCharacteristicGenderValidation(t *testing.T) {
	router, _ := newTestRouter(t)
	token, _ := registerTestAccount(t, router, "invalidgender@test.local")

	rec := doJSON(t, router, http.MethodPost, "/api/meal-characteristics", token, map[string]interface{}{
		"planName": "Bad gender",
		"gender":   "robot",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_MalformedIDReadsAsNotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	token, _ := registerTestAccount(t, router, "badid@test.local")

	rec := doJSON(t, router, http.MethodGet, "/api/meal-characteristics/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/meal-plans/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPatch, "/api/subscriptions/not-a-uuid/cancel", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestRouter_WebhookUnverifiedParse(t *testing.T) {
	router, db := newTestRouter(t)
	_, userID := registerTestAccount(t, router, "hook@test.local")

	intent := map[string]interface{}{
		"id":       "pi_router_hook",
		"amount":   999,
		"currency": "usd",
		"metadata": map[string]string{
			"userId":         userID,
			"planId":         "1",
			"isSubscription": "true",
		},
	}
	raw, err := json.Marshal(intent)
	require.NoError(t, err)

	event := map[string]interface{}{
		"id":   "evt_router",
		"type": "payment_intent.succeeded",
		"data": map[string]interface{}{"object": json.RawMessage(raw)},
	}

	rec := doJSON(t, router, http.MethodPost, "/api/webhooks/stripe", "", event)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "received")

	var payment models.Payment
	require.NoError(t, db.First(&payment, "external_payment_id = ?", "pi_router_hook").Error)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
}

func TestRouter_ProfileRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t)
	token, _ := registerTestAccount(t, router, "prof@test.local")

	rec := doJSON(t, router, http.MethodGet, "/api/profile/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"hasActiveSubscription":false`)

	rec = doJSON(t, router, http.MethodPatch, "/api/profile/me", token, map[string]string{
		"firstName": "Updated",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"Updated"`)
}
