package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/esaha/esaha-backend/internal/clients/openai"
	redisclient "github.com/esaha/esaha-backend/internal/clients/redis"
	"github.com/esaha/esaha-backend/internal/clients/sendgrid"
	"github.com/esaha/esaha-backend/internal/clients/supabase"
	"github.com/esaha/esaha-backend/internal/clients/twilio"
	"github.com/esaha/esaha-backend/internal/db"
	"github.com/esaha/esaha-backend/internal/handlers"
	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/middleware"
	"github.com/esaha/esaha-backend/internal/observability"
	"github.com/esaha/esaha-backend/internal/repos"
	"github.com/esaha/esaha-backend/internal/server"
	"github.com/esaha/esaha-backend/internal/services"
	"github.com/esaha/esaha-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	allowLocalTokens := utils.GetEnv("ALLOW_LOCAL_TOKENS", "true", log) == "true"

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: utils.GetEnv("OTEL_SERVICE_NAME", "esaha-backend", log),
		Environment: utils.GetEnv("DEPLOY_ENV", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if otelShutdown != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(ctx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	messageRepo := repos.NewChatMessageRepo(thePG, log)
	sessionRepo := repos.NewChatSessionRepo(thePG, log)
	moodRepo := repos.NewMoodEntryRepo(thePG, log)
	appointmentRepo := repos.NewAppointmentRepo(thePG, log)
	reminderRepo := repos.NewReminderRepo(thePG, log)
	contactRepo := repos.NewEmergencyContactRepo(thePG, log)
	alertRepo := repos.NewEmergencyAlertRepo(thePG, log)
	profileRepo := repos.NewUserProfileRepo(thePG, log)
	searchRepo := repos.NewResourceSearchRepo(thePG, log)

	// Clients
	log.Info("Setting up clients from main...")
	openaiClient, err := openai.NewFromEnv(log)
	if err != nil {
		log.Error("Could not init OpenAI client", "error", err)
		os.Exit(1)
	}
	supabaseClient, err := supabase.NewFromEnv(log)
	if err != nil {
		log.Warn("Supabase auth disabled", "error", err)
	}
	twilioClient, err := twilio.NewFromEnv(log)
	if err != nil {
		log.Warn("SMS notifications disabled", "error", err)
	}
	sendgridClient, err := sendgrid.NewFromEnv(log)
	if err != nil {
		log.Warn("Email notifications disabled", "error", err)
	}
	identityCache, err := redisclient.NewIdentityCache(log)
	if err != nil {
		log.Warn("Identity cache disabled", "error", err)
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	tokenResolver := services.NewTokenResolver(log, supabaseClient, identityCache, services.TokenResolverConfig{
		AllowUnverifiedLocal: allowLocalTokens,
	})
	sentimentAnalyzer := services.NewSentimentAnalyzer(log, openaiClient)
	chatService := services.NewChatService(thePG, log, messageRepo, sessionRepo, moodRepo, openaiClient, sentimentAnalyzer)
	moodService := services.NewMoodService(thePG, log, moodRepo, messageRepo)
	appointmentService := services.NewAppointmentService(thePG, log, appointmentRepo, reminderRepo, userRepo, sendgridClient)
	emergencyService := services.NewEmergencyService(thePG, log, contactRepo, alertRepo, profileRepo, twilioClient, sendgridClient)
	profileService := services.NewProfileService(thePG, log, profileRepo, userRepo, moodRepo, messageRepo, sessionRepo, appointmentRepo, reminderRepo, contactRepo, alertRepo, searchRepo)
	resourceService, err := services.NewResourceService(thePG, log, searchRepo)
	if err != nil {
		log.Error("Could not init ResourceService", "error", err)
		os.Exit(1)
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(chatService)
	moodHandler := handlers.NewMoodHandler(moodService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	emergencyHandler := handlers.NewEmergencyHandler(emergencyService)
	profileHandler := handlers.NewProfileHandler(profileService)
	resourceHandler := handlers.NewResourceHandler(resourceService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, tokenResolver)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
		ChatHandler:        chatHandler,
		MoodHandler:        moodHandler,
		AppointmentHandler: appointmentHandler,
		EmergencyHandler:   emergencyHandler,
		ProfileHandler:     profileHandler,
		ResourceHandler:    resourceHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
