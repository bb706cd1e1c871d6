package app

import (
	"context"
	"fmt"

	"nutriplan_backend/internal/config"
	"nutriplan_backend/internal/email"
	"nutriplan_backend/internal/handlers"
	"nutriplan_backend/internal/logger"
	"nutriplan_backend/internal/middleware"
	"nutriplan_backend/internal/models"
	"nutriplan_backend/internal/openai"
	"nutriplan_backend/internal/routes"
	"nutriplan_backend/internal/services"
	"nutriplan_backend/internal/stripe"
	"nutriplan_backend/internal/validator"
	"nutriplan_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := migrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ginRouter, serviceContainer := SetupRouter(cfg, gormDB)

	if err := serviceContainer.SubscriptionService.SeedDefaultPlans(gormDB); err != nil {
		logger.Fatal("Failed to seed subscription plans", "error", err)
	}

	worker := workers.NewSubscriptionWorker(gormDB)
	worker.Start(context.Background())

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *services.ServiceContainer) {
	serviceContainer := initializeServices(cfg)
	appHandlers := initializeHandlers(cfg, serviceContainer)

	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter, serviceContainer
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.MealCharacteristic{},
		&models.MealPlan{},
		&models.AiGeneratedMealPlan{},
		&models.SubscriptionPlan{},
		&models.Subscription{},
		&models.Payment{},
	)
}

func initializeServices(cfg *config.Config) *services.ServiceContainer {
	var emailService email.Provider
	if cfg.Email.SMTPHost != "" {
		emailService = email.NewSMTPProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
	} else {
		logger.Warn("SMTP is not configured, outgoing mail is mocked")
		emailService = &MockEmailProvider{}
	}

	stripeClient := stripe.NewClient(cfg.Stripe.SecretKey)
	aiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, true)

	authService := services.NewAuthService(emailService, cfg.Server.FrontendURL)
	subscriptionService := services.NewSubscriptionService(stripeClient)
	profileService := services.NewProfileService(subscriptionService)
	mealCharacteristicService := services.NewMealCharacteristicService()
	mealPlanService := services.NewMealPlanService()
	aiGeneratorService := services.NewAiMealGeneratorService(aiClient)
	webhookService := services.NewWebhookService()

	return &services.ServiceContainer{
		AuthService:               authService,
		ProfileService:            profileService,
		MealCharacteristicService: mealCharacteristicService,
		MealPlanService:           mealPlanService,
		AiMealGeneratorService:    aiGeneratorService,
		SubscriptionService:       subscriptionService,
		WebhookService:            webhookService,
		EmailService:              emailService,
		PaymentGateway:            stripeClient,
	}
}

func initializeHandlers(cfg *config.Config, container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	cookieTTLSeconds := cfg.JWT.TTL * 60

	return &handlers.AppHandlers{
		AuthHandler:               handlers.NewAuthHandler(baseHandler, container.AuthService, cookieTTLSeconds),
		UserHandler:               handlers.NewUserHandler(baseHandler, container.AuthService),
		ProfileHandler:            handlers.NewProfileHandler(baseHandler, container.ProfileService),
		MealCharacteristicHandler: handlers.NewMealCharacteristicHandler(baseHandler, container.MealCharacteristicService),
		MealPlanHandler:           handlers.NewMealPlanHandler(baseHandler, container.MealPlanService, container.AiMealGeneratorService),
		SubscriptionHandler:       handlers.NewSubscriptionHandler(baseHandler, container.SubscriptionService, cfg.Stripe.PublishableKey),
		StripeHandler:             handlers.NewStripeHandler(baseHandler, container.SubscriptionService),
		WebhookHandler:            handlers.NewWebhookHandler(baseHandler, container.WebhookService, container.PaymentGateway, cfg.Stripe.WebhookSecret),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.FrontendURL))
	router.Use(middleware.DBMiddleware(db))
	return router
}
