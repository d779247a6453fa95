package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/esaha/esaha-backend/internal/clients/openai"
	"github.com/esaha/esaha-backend/internal/clients/sendgrid"
	"github.com/esaha/esaha-backend/internal/clients/supabase"
	"github.com/esaha/esaha-backend/internal/clients/twilio"
	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&types.User{},
		&types.ChatMessage{},
		&types.ChatSession{},
		&types.MoodEntry{},
		&types.Appointment{},
		&types.Reminder{},
		&types.EmergencyContact{},
		&types.EmergencyAlert{},
		&types.UserProfile{},
		&types.ResourceSearch{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLogger() *logger.Logger {
	return logger.NewNop()
}

type fakeAIClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeAIClient) Complete(ctx context.Context, messages []openai.Message, maxTokens int, temperature float64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeSupabaseClient struct {
	user *supabase.User
	err  error
}

func (f *fakeSupabaseClient) GetUser(ctx context.Context, accessToken string) (*supabase.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

type fakeSMSClient struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSMSClient) SendSMS(ctx context.Context, to, body string) (*twilio.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, to)
	return &twilio.Message{}, nil
}

type fakeEmailClient struct {
	mu   sync.Mutex
	sent []sendgrid.SendEmailRequest
	err  error
}

func (f *fakeEmailClient) Send(ctx context.Context, req sendgrid.SendEmailRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, req)
	return nil
}
