package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/esaha/esaha-backend/internal/services"
)

type AppointmentHandler struct {
	appointmentService services.AppointmentService
}

func NewAppointmentHandler(appointmentService services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

func (ah *AppointmentHandler) Create(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	var req services.AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	appointment, err := ah.appointmentService.Create(c.Request.Context(), rd.UserID, rd.Email, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appointment)
}

func (ah *AppointmentHandler) List(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	appointments, err := ah.appointmentService.List(c.Request.Context(), rd.UserID, c.Query("status"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

func (ah *AppointmentHandler) Update(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	id, err := uuid.Parse(c.Param("appointment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}
	var req services.AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	appointment, err := ah.appointmentService.Update(c.Request.Context(), rd.UserID, id, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}

func (ah *AppointmentHandler) UpdateStatus(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	id, err := uuid.Parse(c.Param("appointment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	appointment, err := ah.appointmentService.UpdateStatus(c.Request.Context(), rd.UserID, id, req.Status)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}

func (ah *AppointmentHandler) Delete(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	id, err := uuid.Parse(c.Param("appointment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}
	if err := ah.appointmentService.Delete(c.Request.Context(), rd.UserID, id); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted"})
}

func (ah *AppointmentHandler) GetReminders(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	reminders, err := ah.appointmentService.GetReminders(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// ProcessReminders is called by the scheduler, not by end users, and is
// guarded by a shared key instead of a bearer token.
func (ah *AppointmentHandler) ProcessReminders(c *gin.Context) {
	cronKey := os.Getenv("CRON_API_KEY")
	if cronKey == "" || c.GetHeader("X-API-Key") != cronKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	sent, err := ah.appointmentService.ProcessDueReminders(c.Request.Context(), time.Now().UTC())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"processed": sent})
}
