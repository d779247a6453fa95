package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/clients/openai"
	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/repos"
	"github.com/esaha/esaha-backend/internal/types"
)

const companionSystemPrompt = `You are a compassionate mental health companion designed to provide supportive, empathetic responses to people seeking emotional support.

GUIDELINES:
- Respond in the same language the person is using (French, Arabic, Tamazight, English, or any other language)
- Provide validation for the person's feelings and experiences
- Offer practical, evidence-based coping strategies when appropriate
- Use warm, empathetic language that conveys genuine understanding
- Apply appropriate mental health terminology in a non-clinical, accessible way
- Provide culturally sensitive responses that respect diverse backgrounds
- Ask thoughtful follow-up questions to better understand the person's situation
- When appropriate, suggest mindfulness techniques, breathing exercises, or grounding practices
- Acknowledge the limitations of digital support and encourage professional help when needed

HANDLING UNCLEAR MESSAGES:
- If a message is unclear, ambiguous, or difficult to understand in any language (French, Arabic, Tamazight, or others), DO NOT attempt to answer
- Instead, politely ask the person to rephrase their question or concern in simpler terms
- When encountering unclear text, respond in multiple languages (the original language plus English) to ensure comprehension
- For partially understandable messages, acknowledge the parts you understand and ask for clarification on the rest

IMPORTANT:
- Never diagnose medical or psychological conditions
- Do not replace professional mental health care or give medical advice
- Maintain a non-judgmental stance and validate emotions
- Prioritize safety - if someone indicates self-harm or harm to others, emphasize getting immediate professional help
- Respect privacy and confidentiality in all interactions

For crisis situations, always encourage reaching out to local emergency services, crisis lines, or trusted individuals who can provide immediate support.`

type ChatRequest struct {
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type ChatService interface {
	ProcessMessage(ctx context.Context, userID string, req ChatRequest) (*types.ChatMessage, error)
	CreateSession(ctx context.Context, userID, sessionID, title string) (*types.ChatSession, error)
	GetSessions(ctx context.Context, userID string) ([]*types.ChatSession, error)
	GetSessionDetails(ctx context.Context, userID, sessionID string) (*types.ChatSession, []*types.ChatMessage, error)
	UpdateSessionTitle(ctx context.Context, userID, sessionID, title string) error
	GetHistory(ctx context.Context, userID, sessionID string) ([]*types.ChatMessage, error)
}

type chatService struct {
	db          *gorm.DB
	log         *logger.Logger
	messageRepo repos.ChatMessageRepo
	sessionRepo repos.ChatSessionRepo
	moodRepo    repos.MoodEntryRepo
	ai          openai.Client
	sentiment   SentimentAnalyzer
}

func NewChatService(
	db *gorm.DB,
	log *logger.Logger,
	messageRepo repos.ChatMessageRepo,
	sessionRepo repos.ChatSessionRepo,
	moodRepo repos.MoodEntryRepo,
	ai openai.Client,
	sentiment SentimentAnalyzer,
) ChatService {
	return &chatService{
		db:          db,
		log:         log.With("service", "ChatService"),
		messageRepo: messageRepo,
		sessionRepo: sessionRepo,
		moodRepo:    moodRepo,
		ai:          ai,
		sentiment:   sentiment,
	}
}

// newSessionID mirrors the historical id shape so older clients keep working.
func newSessionID() string {
	return fmt.Sprintf("session_%d_%s", time.Now().UTC().Unix(), uuid.New().String()[:8])
}

func sessionTitleFromMessage(message string) string {
	if len(message) > 30 {
		return message[:30] + "..."
	}
	return message
}

func (cs *chatService) ProcessMessage(ctx context.Context, userID string, req ChatRequest) (*types.ChatMessage, error) {
	message := req.Message
	if strings.TrimSpace(message) == "" {
		return nil, NewValidationError("message cannot be empty")
	}
	subject := req.Subject
	if strings.TrimSpace(subject) == "" {
		subject = "General"
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = newSessionID()
		session := &types.ChatSession{
			ID:        uuid.New(),
			UserID:    userID,
			SessionID: sessionID,
			Title:     sessionTitleFromMessage(message),
		}
		if _, err := cs.sessionRepo.Create(ctx, nil, session); err != nil {
			// The message can still be stored against the generated id.
			cs.log.Warn("Failed to auto-create chat session", "session_id", sessionID, "error", err)
		}
	}

	sentiment := cs.sentiment.Analyze(ctx, message)

	history, err := cs.messageRepo.GetBySession(ctx, nil, userID, sessionID)
	if err != nil {
		cs.log.Warn("Failed to load conversation history", "session_id", sessionID, "error", err)
		history = nil
	}
	if err := cs.sessionRepo.Touch(ctx, nil, userID, sessionID); err != nil {
		cs.log.Warn("Failed to touch chat session", "session_id", sessionID, "error", err)
	}

	messages := make([]openai.Message, 0, 2*len(history)+2)
	messages = append(messages, openai.Message{Role: "system", Content: companionSystemPrompt})
	for _, prev := range history {
		messages = append(messages, openai.Message{Role: "user", Content: prev.Message})
		messages = append(messages, openai.Message{Role: "assistant", Content: prev.Response})
	}
	messages = append(messages, openai.Message{Role: "user", Content: message})

	reply, err := cs.ai.Complete(ctx, messages, 800, 0.7)
	if err != nil {
		cs.log.Error("AI completion failed", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}

	chatMessage := &types.ChatMessage{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: sessionID,
		Subject:   subject,
		Message:   message,
		Response:  reply,
		Sentiment: datatypes.NewJSONType(sentiment),
		Timestamp: time.Now().UTC(),
	}
	if _, err := cs.messageRepo.Create(ctx, nil, chatMessage); err != nil {
		return nil, fmt.Errorf("store chat message: %w", err)
	}
	if err := cs.sessionRepo.IncrementMessageCount(ctx, nil, userID, sessionID); err != nil {
		cs.log.Warn("Failed to bump session message count", "session_id", sessionID, "error", err)
	}

	// Mood tracking rides along with chat; failures here never surface.
	moodEntry := &types.MoodEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      time.Now().UTC().Format("2006-01-02"),
		Mood:      sentiment.Mood,
		MoodScore: sentiment.Score,
		Factors:   datatypes.JSONSlice[string](sentiment.Factors),
		Source:    types.MoodSourceChat,
		MessageID: chatMessage.ID.String(),
		SessionID: sessionID,
	}
	if _, err := cs.moodRepo.Create(ctx, nil, moodEntry); err != nil {
		cs.log.Warn("Failed to store chat-sourced mood entry", "session_id", sessionID, "error", err)
	}

	return chatMessage, nil
}

func (cs *chatService) CreateSession(ctx context.Context, userID, sessionID, title string) (*types.ChatSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = newSessionID()
	}
	if strings.TrimSpace(title) == "" {
		title = "New Conversation"
	}

	existing, err := cs.sessionRepo.GetBySessionID(ctx, nil, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	session := &types.ChatSession{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: sessionID,
		Title:     title,
	}
	if _, err := cs.sessionRepo.Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (cs *chatService) GetSessions(ctx context.Context, userID string) ([]*types.ChatSession, error) {
	sessions, err := cs.sessionRepo.GetByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (cs *chatService) GetSessionDetails(ctx context.Context, userID, sessionID string) (*types.ChatSession, []*types.ChatMessage, error) {
	session, err := cs.sessionRepo.GetBySessionID(ctx, nil, userID, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup session: %w", err)
	}
	if session == nil {
		return nil, nil, ErrNotFound
	}
	messages, err := cs.messageRepo.GetBySession(ctx, nil, userID, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("load session messages: %w", err)
	}
	return session, messages, nil
}

func (cs *chatService) UpdateSessionTitle(ctx context.Context, userID, sessionID, title string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title cannot be empty")
	}
	affected, err := cs.sessionRepo.UpdateTitle(ctx, nil, userID, sessionID, title)
	if err != nil {
		return fmt.Errorf("update session title: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (cs *chatService) GetHistory(ctx context.Context, userID, sessionID string) ([]*types.ChatMessage, error) {
	sessionID = strings.TrimSpace(sessionID)
	var (
		messages []*types.ChatMessage
		err      error
	)
	if sessionID == "" {
		messages, err = cs.messageRepo.GetByUser(ctx, nil, userID)
	} else {
		messages, err = cs.messageRepo.GetBySession(ctx, nil, userID, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	return messages, nil
}
