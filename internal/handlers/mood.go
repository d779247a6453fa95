package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/esaha/esaha-backend/internal/services"
)

type MoodHandler struct {
	moodService services.MoodService
}

func NewMoodHandler(moodService services.MoodService) *MoodHandler {
	return &MoodHandler{moodService: moodService}
}

func (mh *MoodHandler) ListEntries(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	entries, err := mh.moodService.GetEntries(c.Request.Context(), rd.UserID, c.Query("timeRange"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (mh *MoodHandler) CreateEntry(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	var req services.MoodEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	entry, err := mh.moodService.CreateEntry(c.Request.Context(), rd.UserID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (mh *MoodHandler) UpdateEntry(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	entryID, err := uuid.Parse(c.Param("entry_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}
	var req services.MoodEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	entry, err := mh.moodService.UpdateEntry(c.Request.Context(), rd.UserID, entryID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (mh *MoodHandler) DeleteEntry(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	entryID, err := uuid.Parse(c.Param("entry_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}
	if err := mh.moodService.DeleteEntry(c.Request.Context(), rd.UserID, entryID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mood entry deleted"})
}

func (mh *MoodHandler) GetInsights(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	insights, err := mh.moodService.GetInsights(c.Request.Context(), rd.UserID, c.Query("timeRange"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}

func (mh *MoodHandler) GetTriggers(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	triggers, err := mh.moodService.GetTriggers(c.Request.Context(), rd.UserID, c.Query("timeRange"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"triggers": triggers})
}

func (mh *MoodHandler) Export(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	switch c.DefaultQuery("format", "json") {
	case "csv":
		data, filename, err := mh.moodService.ExportCSV(c.Request.Context(), rd.UserID)
		if err != nil {
			RespondServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		c.Data(http.StatusOK, "text/csv", data)
	case "json":
		entries, err := mh.moodService.ExportJSON(c.Request.Context(), rd.UserID)
		if err != nil {
			RespondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format. Use csv or json."})
	}
}
