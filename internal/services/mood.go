package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/repos"
	"github.com/esaha/esaha-backend/internal/types"
)

type MoodEntryRequest struct {
	Date      string   `json:"date"`
	Mood      string   `json:"mood"`
	MoodScore float64  `json:"mood_score"`
	Factors   []string `json:"factors"`
	Notes     string   `json:"notes"`
}

type MoodService interface {
	GetEntries(ctx context.Context, userID, timeRange string) ([]*types.MoodEntry, error)
	CreateEntry(ctx context.Context, userID string, req MoodEntryRequest) (*types.MoodEntry, error)
	UpdateEntry(ctx context.Context, userID string, entryID uuid.UUID, req MoodEntryRequest) (*types.MoodEntry, error)
	DeleteEntry(ctx context.Context, userID string, entryID uuid.UUID) error
	GetInsights(ctx context.Context, userID, timeRange string) (*MoodInsights, error)
	GetTriggers(ctx context.Context, userID, timeRange string) ([]EmotionalTrigger, error)
	ExportCSV(ctx context.Context, userID string) ([]byte, string, error)
	ExportJSON(ctx context.Context, userID string) ([]*types.MoodEntry, error)
}

type moodService struct {
	db          *gorm.DB
	log         *logger.Logger
	moodRepo    repos.MoodEntryRepo
	messageRepo repos.ChatMessageRepo
}

func NewMoodService(db *gorm.DB, log *logger.Logger, moodRepo repos.MoodEntryRepo, messageRepo repos.ChatMessageRepo) MoodService {
	return &moodService{
		db:          db,
		log:         log.With("service", "MoodService"),
		moodRepo:    moodRepo,
		messageRepo: messageRepo,
	}
}

// startDateFor maps a time range keyword onto the inclusive start date.
// Anything unrecognized falls back to a month.
func startDateFor(timeRange string, now time.Time) string {
	var days int
	switch timeRange {
	case "week":
		days = 7
	case "year":
		days = 365
	default:
		days = 30
	}
	return now.AddDate(0, 0, -days).Format("2006-01-02")
}

func validateMoodRequest(req MoodEntryRequest) error {
	if strings.TrimSpace(req.Date) == "" {
		return NewValidationError("Date is required")
	}
	if strings.TrimSpace(req.Mood) == "" {
		return NewValidationError("Mood is required")
	}
	if !types.IsValidMood(req.Mood) {
		return NewValidationError("Invalid mood value")
	}
	return nil
}

func (ms *moodService) GetEntries(ctx context.Context, userID, timeRange string) ([]*types.MoodEntry, error) {
	since := startDateFor(timeRange, time.Now().UTC())
	entries, err := ms.moodRepo.GetSince(ctx, nil, userID, since, true)
	if err != nil {
		return nil, fmt.Errorf("list mood entries: %w", err)
	}
	return entries, nil
}

func (ms *moodService) CreateEntry(ctx context.Context, userID string, req MoodEntryRequest) (*types.MoodEntry, error) {
	if err := validateMoodRequest(req); err != nil {
		return nil, err
	}

	entry := &types.MoodEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      req.Date,
		Mood:      req.Mood,
		MoodScore: types.ClampMoodScore(req.MoodScore),
		Factors:   datatypes.JSONSlice[string](req.Factors),
		Notes:     req.Notes,
		Source:    types.MoodSourceManual,
	}
	if _, err := ms.moodRepo.Create(ctx, nil, entry); err != nil {
		return nil, fmt.Errorf("create mood entry: %w", err)
	}
	return entry, nil
}

func (ms *moodService) UpdateEntry(ctx context.Context, userID string, entryID uuid.UUID, req MoodEntryRequest) (*types.MoodEntry, error) {
	if err := validateMoodRequest(req); err != nil {
		return nil, err
	}

	existing, err := ms.moodRepo.GetByID(ctx, nil, userID, entryID)
	if err != nil {
		return nil, fmt.Errorf("lookup mood entry: %w", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	updates := map[string]any{
		"date":       req.Date,
		"mood":       req.Mood,
		"mood_score": types.ClampMoodScore(req.MoodScore),
		"factors":    datatypes.JSONSlice[string](req.Factors),
		"notes":      req.Notes,
	}
	if err := ms.moodRepo.Update(ctx, nil, entryID, updates); err != nil {
		return nil, fmt.Errorf("update mood entry: %w", err)
	}

	updated, err := ms.moodRepo.GetByID(ctx, nil, userID, entryID)
	if err != nil {
		return nil, fmt.Errorf("reload mood entry: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

func (ms *moodService) DeleteEntry(ctx context.Context, userID string, entryID uuid.UUID) error {
	affected, err := ms.moodRepo.Delete(ctx, nil, userID, entryID)
	if err != nil {
		return fmt.Errorf("delete mood entry: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (ms *moodService) GetInsights(ctx context.Context, userID, timeRange string) (*MoodInsights, error) {
	since := startDateFor(timeRange, time.Now().UTC())
	entries, err := ms.moodRepo.GetSince(ctx, nil, userID, since, false)
	if err != nil {
		return nil, fmt.Errorf("load mood entries: %w", err)
	}
	insights := ComputeMoodInsights(entries)
	return &insights, nil
}

func (ms *moodService) GetTriggers(ctx context.Context, userID, timeRange string) ([]EmotionalTrigger, error) {
	since := startDateFor(timeRange, time.Now().UTC())
	entries, err := ms.moodRepo.GetChatSourcedSince(ctx, nil, userID, since)
	if err != nil {
		return nil, fmt.Errorf("load chat-sourced mood entries: %w", err)
	}
	if len(entries) == 0 {
		return []EmotionalTrigger{}, nil
	}

	messageIDs := make([]uuid.UUID, 0, len(entries))
	scoreByMessage := make(map[string]float64, len(entries))
	for _, entry := range entries {
		if entry.MessageID == "" {
			continue
		}
		id, err := uuid.Parse(entry.MessageID)
		if err != nil {
			continue
		}
		messageIDs = append(messageIDs, id)
		scoreByMessage[entry.MessageID] = entry.MoodScore
	}

	messages, err := ms.messageRepo.GetByIDs(ctx, nil, messageIDs)
	if err != nil {
		return nil, fmt.Errorf("load chat messages: %w", err)
	}

	texts := make([]string, 0, len(messages))
	scores := make([]float64, 0, len(messages))
	for _, msg := range messages {
		texts = append(texts, msg.Message)
		scores = append(scores, scoreByMessage[msg.ID.String()])
	}
	return ExtractEmotionalTriggers(texts, scores), nil
}

func (ms *moodService) ExportJSON(ctx context.Context, userID string) ([]*types.MoodEntry, error) {
	entries, err := ms.moodRepo.GetAll(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load mood entries: %w", err)
	}
	return entries, nil
}

func (ms *moodService) ExportCSV(ctx context.Context, userID string) ([]byte, string, error) {
	entries, err := ms.moodRepo.GetAll(ctx, nil, userID)
	if err != nil {
		return nil, "", fmt.Errorf("load mood entries: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "date", "mood", "mood_score", "factors", "notes", "source", "created_at"}); err != nil {
		return nil, "", err
	}
	for _, entry := range entries {
		record := []string{
			entry.ID.String(),
			entry.Date,
			entry.Mood,
			strconv.FormatFloat(entry.MoodScore, 'f', -1, 64),
			strings.Join(entry.Factors, "; "),
			entry.Notes,
			entry.Source,
			entry.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("mood_data_%s.csv", time.Now().UTC().Format("20060102"))
	return buf.Bytes(), filename, nil
}
