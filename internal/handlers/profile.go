package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/esaha/esaha-backend/internal/services"
	"github.com/esaha/esaha-backend/internal/types"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (ph *ProfileHandler) GetProfile(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	profile, err := ph.profileService.GetProfile(c.Request.Context(), rd.UserID, rd.Email)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (ph *ProfileHandler) UpdateProfile(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	var req services.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	profile, err := ph.profileService.UpdateProfile(c.Request.Context(), rd.UserID, rd.Email, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (ph *ProfileHandler) GetNotificationPreferences(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	prefs, err := ph.profileService.GetNotificationPreferences(c.Request.Context(), rd.UserID, rd.Email)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (ph *ProfileHandler) UpdateNotificationPreferences(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	var prefs types.NotificationPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	updated, err := ph.profileService.UpdateNotificationPreferences(c.Request.Context(), rd.UserID, rd.Email, prefs)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (ph *ProfileHandler) ChangePassword(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	var req services.PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := ph.profileService.ChangePassword(c.Request.Context(), rd.UserID, req); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func (ph *ProfileHandler) DeleteAccount(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	if err := ph.profileService.DeleteAccount(c.Request.Context(), rd.UserID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func (ph *ProfileHandler) ExportData(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	data, filename, err := ph.profileService.ExportData(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/zip", data)
}
