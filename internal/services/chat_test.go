package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/esaha/esaha-backend/internal/repos"
	"github.com/esaha/esaha-backend/internal/types"
)

func newChatService(t *testing.T, ai *fakeAIClient) ChatService {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	messageRepo := repos.NewChatMessageRepo(db, log)
	sessionRepo := repos.NewChatSessionRepo(db, log)
	moodRepo := repos.NewMoodEntryRepo(db, log)
	return NewChatService(db, log, messageRepo, sessionRepo, moodRepo, ai, NewSentimentAnalyzer(log, ai))
}

func TestProcessMessage_CreatesSessionAndStoresMessage(t *testing.T) {
	ai := &fakeAIClient{response: "I'm here for you. Tell me more about how that felt."}
	cs := newChatService(t, ai)
	ctx := context.Background()

	msg, err := cs.ProcessMessage(ctx, "user-1", ChatRequest{Message: "I had a really difficult day at work today"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(msg.SessionID, "session_") {
		t.Fatalf("expected generated session id, got %q", msg.SessionID)
	}
	if msg.Subject != "General" {
		t.Fatalf("expected default subject, got %q", msg.Subject)
	}
	if msg.Response != ai.response {
		t.Fatalf("unexpected response: %q", msg.Response)
	}

	sessions, err := cs.GetSessions(ctx, "user-1")
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].Title != "I had a really difficult day a..." {
		t.Fatalf("unexpected session title: %q", sessions[0].Title)
	}
	if sessions[0].MessageCount != 1 {
		t.Fatalf("expected message count 1, got %d", sessions[0].MessageCount)
	}

	history, err := cs.GetHistory(ctx, "user-1", msg.SessionID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(history) != 1 || history[0].Message != "I had a really difficult day at work today" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestProcessMessage_EmptyMessageRejected(t *testing.T) {
	cs := newChatService(t, &fakeAIClient{response: "hi"})
	if _, err := cs.ProcessMessage(context.Background(), "user-1", ChatRequest{Message: "  "}); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProcessMessage_AIFailureReturnsUnavailable(t *testing.T) {
	cs := newChatService(t, &fakeAIClient{err: errors.New("model offline")})
	_, err := cs.ProcessMessage(context.Background(), "user-1", ChatRequest{Message: "hello"})
	if !errors.Is(err, ErrAIUnavailable) {
		t.Fatalf("expected ErrAIUnavailable, got %v", err)
	}
}

func TestProcessMessage_StoresChatSourcedMoodEntry(t *testing.T) {
	ai := &fakeAIClient{response: `{"score": -3, "mood": "sad", "factors": ["work"]}`}
	db := newTestDB(t)
	log := testLogger()
	moodRepo := repos.NewMoodEntryRepo(db, log)
	cs := NewChatService(db, log,
		repos.NewChatMessageRepo(db, log),
		repos.NewChatSessionRepo(db, log),
		moodRepo, ai, NewSentimentAnalyzer(log, ai))

	msg, err := cs.ProcessMessage(context.Background(), "user-1", ChatRequest{Message: "work has been crushing me lately"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entries []*types.MoodEntry
	if err := db.Where("user_id = ?", "user-1").Find(&entries).Error; err != nil {
		t.Fatalf("load mood entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 chat-sourced entry, got %d", len(entries))
	}
	if entries[0].Source != types.MoodSourceChat || entries[0].MessageID != msg.ID.String() {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
	if entries[0].Mood != "sad" || entries[0].MoodScore != -3 {
		t.Fatalf("sentiment not carried over: %+v", entries[0])
	}
}

func TestCreateSession_IdempotentOnSessionID(t *testing.T) {
	cs := newChatService(t, &fakeAIClient{response: "ok"})
	ctx := context.Background()

	first, err := cs.CreateSession(ctx, "user-1", "session_1_abc", "Morning check-in")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	second, err := cs.CreateSession(ctx, "user-1", "session_1_abc", "Different title")
	if err != nil {
		t.Fatalf("create session again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same session record, got %s and %s", first.ID, second.ID)
	}
	if second.Title != "Morning check-in" {
		t.Fatalf("existing session title must win, got %q", second.Title)
	}
}

func TestUpdateSessionTitle_MissingSession(t *testing.T) {
	cs := newChatService(t, &fakeAIClient{response: "ok"})
	err := cs.UpdateSessionTitle(context.Background(), "user-1", "nope", "Title")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetSessionDetails_OtherUsersSessionHidden(t *testing.T) {
	cs := newChatService(t, &fakeAIClient{response: "ok"})
	ctx := context.Background()
	if _, err := cs.CreateSession(ctx, "user-1", "session_1_abc", "Mine"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, _, err := cs.GetSessionDetails(ctx, "user-2", "session_1_abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}
