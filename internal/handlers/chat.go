package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/esaha/esaha-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (ch *ChatHandler) SendMessage(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	var req services.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	message, err := ch.chatService.ProcessMessage(c.Request.Context(), rd.UserID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

func (ch *ChatHandler) CreateSession(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
		Title     string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	session, err := ch.chatService.CreateSession(c.Request.Context(), rd.UserID, req.SessionID, req.Title)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (ch *ChatHandler) ListSessions(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	sessions, err := ch.chatService.GetSessions(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (ch *ChatHandler) GetSession(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	session, messages, err := ch.chatService.GetSessionDetails(c.Request.Context(), rd.UserID, c.Param("session_id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "messages": messages})
}

func (ch *ChatHandler) UpdateSessionTitle(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := ch.chatService.UpdateSessionTitle(c.Request.Context(), rd.UserID, c.Param("session_id"), req.Title); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session updated"})
}

func (ch *ChatHandler) GetHistory(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	messages, err := ch.chatService.GetHistory(c.Request.Context(), rd.UserID, c.Param("session_id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
