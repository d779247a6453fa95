package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/esaha/esaha-backend/internal/services"
)

type EmergencyHandler struct {
	emergencyService services.EmergencyService
}

func NewEmergencyHandler(emergencyService services.EmergencyService) *EmergencyHandler {
	return &EmergencyHandler{emergencyService: emergencyService}
}

func (eh *EmergencyHandler) ListContacts(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	contacts, err := eh.emergencyService.GetContacts(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

func (eh *EmergencyHandler) AddContact(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	var req services.EmergencyContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	contact, err := eh.emergencyService.AddContact(c.Request.Context(), rd.UserID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (eh *EmergencyHandler) UpdateContact(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	contactID, err := uuid.Parse(c.Param("contact_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	var req services.EmergencyContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	contact, err := eh.emergencyService.UpdateContact(c.Request.Context(), rd.UserID, contactID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (eh *EmergencyHandler) DeleteContact(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	contactID, err := uuid.Parse(c.Param("contact_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	if err := eh.emergencyService.DeleteContact(c.Request.Context(), rd.UserID, contactID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Emergency contact deleted"})
}

func (eh *EmergencyHandler) TriggerAlert(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	result, err := eh.emergencyService.TriggerAlert(c.Request.Context(), rd.UserID, rd.Email)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
