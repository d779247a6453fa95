package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/esaha/esaha-backend/internal/handlers"
	"github.com/esaha/esaha-backend/internal/middleware"
	"github.com/esaha/esaha-backend/internal/observability"
	"github.com/esaha/esaha-backend/internal/utils"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	ChatHandler        *handlers.ChatHandler
	MoodHandler        *handlers.MoodHandler
	AppointmentHandler *handlers.AppointmentHandler
	EmergencyHandler   *handlers.EmergencyHandler
	ProfileHandler     *handlers.ProfileHandler
	ResourceHandler    *handlers.ResourceHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if observability.Enabled() {
		router.Use(otelgin.Middleware("esaha-backend"))
	}

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     utils.GetEnvAsSlice("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}, nil),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-API-Key"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
		// Invoked by the reminder scheduler with X-API-Key.
		api.POST("/appointments/process-reminders", cfg.AppointmentHandler.ProcessReminders)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Chat
	protected.POST("/chat", cfg.ChatHandler.SendMessage)
	protected.GET("/chat/history", cfg.ChatHandler.GetHistory)
	protected.GET("/chat/history/:session_id", cfg.ChatHandler.GetHistory)
	protected.POST("/chat/sessions", cfg.ChatHandler.CreateSession)
	protected.GET("/chat/sessions", cfg.ChatHandler.ListSessions)
	protected.GET("/chat/sessions/:session_id", cfg.ChatHandler.GetSession)
	protected.PUT("/chat/sessions/:session_id/title", cfg.ChatHandler.UpdateSessionTitle)
	// Mood
	protected.GET("/mood/entries", cfg.MoodHandler.ListEntries)
	protected.POST("/mood/entries", cfg.MoodHandler.CreateEntry)
	protected.PUT("/mood/entries/:entry_id", cfg.MoodHandler.UpdateEntry)
	protected.DELETE("/mood/entries/:entry_id", cfg.MoodHandler.DeleteEntry)
	protected.GET("/mood/insights", cfg.MoodHandler.GetInsights)
	protected.GET("/mood/triggers", cfg.MoodHandler.GetTriggers)
	protected.GET("/mood/export", cfg.MoodHandler.Export)
	// Appointments
	protected.GET("/appointments", cfg.AppointmentHandler.List)
	protected.POST("/appointments", cfg.AppointmentHandler.Create)
	protected.PUT("/appointments/:appointment_id", cfg.AppointmentHandler.Update)
	protected.PUT("/appointments/:appointment_id/status", cfg.AppointmentHandler.UpdateStatus)
	protected.DELETE("/appointments/:appointment_id", cfg.AppointmentHandler.Delete)
	protected.GET("/appointments/reminders", cfg.AppointmentHandler.GetReminders)
	// Emergency
	protected.GET("/emergency/contacts", cfg.EmergencyHandler.ListContacts)
	protected.POST("/emergency/contacts", cfg.EmergencyHandler.AddContact)
	protected.PUT("/emergency/contacts/:contact_id", cfg.EmergencyHandler.UpdateContact)
	protected.DELETE("/emergency/contacts/:contact_id", cfg.EmergencyHandler.DeleteContact)
	protected.POST("/emergency/alert", cfg.EmergencyHandler.TriggerAlert)
	// Profile
	protected.GET("/profile", cfg.ProfileHandler.GetProfile)
	protected.PUT("/profile", cfg.ProfileHandler.UpdateProfile)
	protected.GET("/profile/notifications", cfg.ProfileHandler.GetNotificationPreferences)
	protected.PUT("/profile/notifications", cfg.ProfileHandler.UpdateNotificationPreferences)
	protected.PUT("/profile/password", cfg.ProfileHandler.ChangePassword)
	protected.DELETE("/profile", cfg.ProfileHandler.DeleteAccount)
	protected.GET("/profile/export", cfg.ProfileHandler.ExportData)
	// Resources
	protected.GET("/resources", cfg.ResourceHandler.List)
	protected.GET("/resources/search", cfg.ResourceHandler.Search)
	protected.GET("/resources/:resource_id", cfg.ResourceHandler.GetByID)

	return router
}
