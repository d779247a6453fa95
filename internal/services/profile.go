package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/repos"
	"github.com/esaha/esaha-backend/internal/types"
)

type ProfileUpdateRequest struct {
	FullName                *string                        `json:"full_name"`
	AvatarURL               *string                        `json:"avatar_url"`
	Location                *string                        `json:"location"`
	Phone                   *string                        `json:"phone"`
	DateOfBirth             *string                        `json:"date_of_birth"`
	Gender                  *string                        `json:"gender"`
	Language                *string                        `json:"language"`
	Timezone                *string                        `json:"timezone"`
	Theme                   *string                        `json:"theme"`
	NotificationPreferences *types.NotificationPreferences `json:"notification_preferences"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID, userEmail string) (*types.UserProfile, error)
	UpdateProfile(ctx context.Context, userID, userEmail string, req ProfileUpdateRequest) (*types.UserProfile, error)
	GetNotificationPreferences(ctx context.Context, userID, userEmail string) (types.NotificationPreferences, error)
	UpdateNotificationPreferences(ctx context.Context, userID, userEmail string, prefs types.NotificationPreferences) (types.NotificationPreferences, error)
	ChangePassword(ctx context.Context, userID string, req PasswordChangeRequest) error
	DeleteAccount(ctx context.Context, userID string) error
	ExportData(ctx context.Context, userID string) ([]byte, string, error)
}

type profileService struct {
	db              *gorm.DB
	log             *logger.Logger
	profileRepo     repos.UserProfileRepo
	userRepo        repos.UserRepo
	moodRepo        repos.MoodEntryRepo
	messageRepo     repos.ChatMessageRepo
	sessionRepo     repos.ChatSessionRepo
	appointmentRepo repos.AppointmentRepo
	reminderRepo    repos.ReminderRepo
	contactRepo     repos.EmergencyContactRepo
	alertRepo       repos.EmergencyAlertRepo
	searchRepo      repos.ResourceSearchRepo
}

func NewProfileService(
	db *gorm.DB,
	log *logger.Logger,
	profileRepo repos.UserProfileRepo,
	userRepo repos.UserRepo,
	moodRepo repos.MoodEntryRepo,
	messageRepo repos.ChatMessageRepo,
	sessionRepo repos.ChatSessionRepo,
	appointmentRepo repos.AppointmentRepo,
	reminderRepo repos.ReminderRepo,
	contactRepo repos.EmergencyContactRepo,
	alertRepo repos.EmergencyAlertRepo,
	searchRepo repos.ResourceSearchRepo,
) ProfileService {
	return &profileService{
		db:              db,
		log:             log.With("service", "ProfileService"),
		profileRepo:     profileRepo,
		userRepo:        userRepo,
		moodRepo:        moodRepo,
		messageRepo:     messageRepo,
		sessionRepo:     sessionRepo,
		appointmentRepo: appointmentRepo,
		reminderRepo:    reminderRepo,
		contactRepo:     contactRepo,
		alertRepo:       alertRepo,
		searchRepo:      searchRepo,
	}
}

// getOrCreate seeds a default profile on first access.
func (ps *profileService) getOrCreate(ctx context.Context, userID, userEmail string) (*types.UserProfile, error) {
	profile, err := ps.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup profile: %w", err)
	}
	if profile != nil {
		return profile, nil
	}

	profile = &types.UserProfile{
		ID:                      uuid.New(),
		UserID:                  userID,
		Email:                   userEmail,
		Language:                "en",
		Theme:                   "light",
		NotificationPreferences: datatypes.NewJSONType(types.DefaultNotificationPreferences()),
	}
	if _, err := ps.profileRepo.Create(ctx, nil, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

func (ps *profileService) GetProfile(ctx context.Context, userID, userEmail string) (*types.UserProfile, error) {
	return ps.getOrCreate(ctx, userID, userEmail)
}

func (ps *profileService) UpdateProfile(ctx context.Context, userID, userEmail string, req ProfileUpdateRequest) (*types.UserProfile, error) {
	if _, err := ps.getOrCreate(ctx, userID, userEmail); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	setIf := func(column string, value *string) {
		if value != nil {
			updates[column] = *value
		}
	}
	setIf("full_name", req.FullName)
	setIf("avatar_url", req.AvatarURL)
	setIf("location", req.Location)
	setIf("phone", req.Phone)
	setIf("date_of_birth", req.DateOfBirth)
	setIf("gender", req.Gender)
	setIf("language", req.Language)
	setIf("timezone", req.Timezone)
	setIf("theme", req.Theme)
	if req.NotificationPreferences != nil {
		updates["notification_preferences"] = datatypes.NewJSONType(*req.NotificationPreferences)
	}

	if len(updates) > 0 {
		if err := ps.profileRepo.Update(ctx, nil, userID, updates); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}

	updated, err := ps.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("reload profile: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

func (ps *profileService) GetNotificationPreferences(ctx context.Context, userID, userEmail string) (types.NotificationPreferences, error) {
	profile, err := ps.getOrCreate(ctx, userID, userEmail)
	if err != nil {
		return types.NotificationPreferences{}, err
	}
	return profile.NotificationPreferences.Data(), nil
}

func (ps *profileService) UpdateNotificationPreferences(ctx context.Context, userID, userEmail string, prefs types.NotificationPreferences) (types.NotificationPreferences, error) {
	if _, err := ps.getOrCreate(ctx, userID, userEmail); err != nil {
		return types.NotificationPreferences{}, err
	}
	if err := ps.profileRepo.Update(ctx, nil, userID, map[string]any{
		"notification_preferences": datatypes.NewJSONType(prefs),
	}); err != nil {
		return types.NotificationPreferences{}, fmt.Errorf("update notification preferences: %w", err)
	}
	return prefs, nil
}

func (ps *profileService) ChangePassword(ctx context.Context, userID string, req PasswordChangeRequest) error {
	if strings.TrimSpace(req.CurrentPassword) == "" {
		return NewValidationError("Current password is required")
	}
	if strings.TrimSpace(req.NewPassword) == "" {
		return NewValidationError("New password is required")
	}

	localID, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	user, err := ps.userRepo.GetByID(ctx, nil, localID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return ErrUnauthorized
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := ps.userRepo.UpdatePassword(ctx, nil, localID, string(hashed)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// DeleteAccount removes everything the user owns. It is idempotent: deleting
// an already-deleted account succeeds.
func (ps *profileService) DeleteAccount(ctx context.Context, userID string) error {
	if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name string
			fn   func() error
		}{
			{"profile", func() error { return ps.profileRepo.DeleteByUserID(ctx, tx, userID) }},
			{"mood entries", func() error { return ps.moodRepo.DeleteByUserID(ctx, tx, userID) }},
			{"chat sessions", func() error { return ps.sessionRepo.DeleteByUserID(ctx, tx, userID) }},
			{"chat messages", func() error { return ps.messageRepo.DeleteByUserID(ctx, tx, userID) }},
			{"appointments", func() error { return ps.appointmentRepo.DeleteByUserID(ctx, tx, userID) }},
			{"reminders", func() error { return ps.reminderRepo.DeleteByUserID(ctx, tx, userID) }},
			{"emergency contacts", func() error { return ps.contactRepo.DeleteByUserID(ctx, tx, userID) }},
			{"emergency alerts", func() error { return ps.alertRepo.DeleteByUserID(ctx, tx, userID) }},
			{"resource searches", func() error { return ps.searchRepo.DeleteByUserID(ctx, tx, userID) }},
		}
		for _, step := range steps {
			if err := step.fn(); err != nil {
				return fmt.Errorf("delete %s: %w", step.name, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	// Locally registered accounts also lose their credential row. Supabase
	// identities are managed upstream.
	if localID, err := uuid.Parse(userID); err == nil {
		if err := ps.userRepo.DeleteByID(ctx, nil, localID); err != nil {
			ps.log.Warn("Failed to delete user credential row", "user_id", userID, "error", err)
		}
	}
	return nil
}

func (ps *profileService) ExportData(ctx context.Context, userID string) ([]byte, string, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	writeJSON := func(name string, load func() (any, error)) {
		data, err := load()
		if err != nil {
			ps.log.Warn("Skipping export section", "file", name, "error", err)
			return
		}
		raw, err := json.Marshal(data)
		if err != nil {
			ps.log.Warn("Skipping unencodable export section", "file", name, "error", err)
			return
		}
		f, err := zw.Create(name)
		if err != nil {
			ps.log.Warn("Skipping export section", "file", name, "error", err)
			return
		}
		if _, err := f.Write(raw); err != nil {
			ps.log.Warn("Failed writing export section", "file", name, "error", err)
		}
	}

	writeJSON("profile.json", func() (any, error) {
		return ps.profileRepo.GetByUserID(ctx, nil, userID)
	})
	writeJSON("mood_entries.json", func() (any, error) {
		return ps.moodRepo.GetAll(ctx, nil, userID)
	})
	writeJSON("chats.json", func() (any, error) {
		return ps.messageRepo.GetByUser(ctx, nil, userID)
	})
	writeJSON("chat_sessions.json", func() (any, error) {
		return ps.sessionRepo.GetByUser(ctx, nil, userID)
	})
	writeJSON("appointments.json", func() (any, error) {
		return ps.appointmentRepo.GetByUser(ctx, nil, userID, "")
	})
	writeJSON("emergency_contacts.json", func() (any, error) {
		return ps.contactRepo.GetByUser(ctx, nil, userID)
	})

	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize export archive: %w", err)
	}

	filename := fmt.Sprintf("eSaha_data_%s.zip", time.Now().UTC().Format("20060102"))
	return buf.Bytes(), filename, nil
}
