package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/repos"
	"github.com/esaha/esaha-backend/internal/types"
)

func newProfileService(t *testing.T) (ProfileService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	svc := NewProfileService(db, log,
		repos.NewUserProfileRepo(db, log),
		repos.NewUserRepo(db, log),
		repos.NewMoodEntryRepo(db, log),
		repos.NewChatMessageRepo(db, log),
		repos.NewChatSessionRepo(db, log),
		repos.NewAppointmentRepo(db, log),
		repos.NewReminderRepo(db, log),
		repos.NewEmergencyContactRepo(db, log),
		repos.NewEmergencyAlertRepo(db, log),
		repos.NewResourceSearchRepo(db, log))
	return svc, db
}

func TestGetProfile_SeedsDefaults(t *testing.T) {
	svc, _ := newProfileService(t)
	profile, err := svc.GetProfile(context.Background(), "user-1", "user@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Language != "en" || profile.Theme != "light" {
		t.Fatalf("unexpected defaults: %+v", profile)
	}
	if profile.Email != "user@example.com" {
		t.Fatalf("expected seeded email, got %q", profile.Email)
	}
	prefs := profile.NotificationPreferences.Data()
	if !prefs.Email || !prefs.Push || prefs.SMS {
		t.Fatalf("unexpected default preferences: %+v", prefs)
	}

	again, err := svc.GetProfile(context.Background(), "user-1", "other@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != profile.ID {
		t.Fatalf("expected same profile row on second access")
	}
}

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	svc, _ := newProfileService(t)
	ctx := context.Background()

	name := "Efua Mensah"
	updated, err := svc.UpdateProfile(ctx, "user-1", "user@example.com", ProfileUpdateRequest{FullName: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FullName != "Efua Mensah" {
		t.Fatalf("name not applied: %+v", updated)
	}
	// Untouched fields keep their values.
	if updated.Language != "en" || updated.Theme != "light" {
		t.Fatalf("partial update clobbered defaults: %+v", updated)
	}

	theme := "dark"
	updated, err = svc.UpdateProfile(ctx, "user-1", "user@example.com", ProfileUpdateRequest{Theme: &theme})
	if err != nil {
		t.Fatalf("update theme: %v", err)
	}
	if updated.Theme != "dark" || updated.FullName != "Efua Mensah" {
		t.Fatalf("second partial update wrong: %+v", updated)
	}
}

func TestUpdateNotificationPreferences_RoundTrip(t *testing.T) {
	svc, _ := newProfileService(t)
	ctx := context.Background()

	want := types.NotificationPreferences{Email: false, Push: true, SMS: true}
	got, err := svc.UpdateNotificationPreferences(ctx, "user-1", "user@example.com", want)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	reloaded, err := svc.GetNotificationPreferences(ctx, "user-1", "user@example.com")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded != want {
		t.Fatalf("expected %+v after reload, got %+v", want, reloaded)
	}
}

func TestChangePassword_Validation(t *testing.T) {
	svc, _ := newProfileService(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "user-1", PasswordChangeRequest{NewPassword: "newsecret1"})
	if !IsValidationError(err) || err.Error() != "Current password is required" {
		t.Fatalf("expected current-password error, got %v", err)
	}
	err = svc.ChangePassword(ctx, "user-1", PasswordChangeRequest{CurrentPassword: "old"})
	if !IsValidationError(err) || err.Error() != "New password is required" {
		t.Fatalf("expected new-password error, got %v", err)
	}
	// Supabase-style ids have no credential row to change.
	err = svc.ChangePassword(ctx, "not-a-uuid", PasswordChangeRequest{CurrentPassword: "a", NewPassword: "b"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-local user, got %v", err)
	}
}

func TestDeleteAccount_Idempotent(t *testing.T) {
	svc, db := newProfileService(t)
	ctx := context.Background()

	if _, err := svc.GetProfile(ctx, "user-1", "user@example.com"); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if err := db.Create(&types.MoodEntry{
		UserID: "user-1", Date: "2025-06-01", Mood: "happy", Source: "manual",
	}).Error; err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	if err := svc.DeleteAccount(ctx, "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var profiles, entries int64
	db.Model(&types.UserProfile{}).Where("user_id = ?", "user-1").Count(&profiles)
	db.Model(&types.MoodEntry{}).Where("user_id = ?", "user-1").Count(&entries)
	if profiles != 0 || entries != 0 {
		t.Fatalf("expected all user data gone, profiles=%d entries=%d", profiles, entries)
	}

	if err := svc.DeleteAccount(ctx, "user-1"); err != nil {
		t.Fatalf("second delete must succeed, got %v", err)
	}
}

func TestExportData_ArchiveContents(t *testing.T) {
	svc, _ := newProfileService(t)
	ctx := context.Background()

	if _, err := svc.GetProfile(ctx, "user-1", "user@example.com"); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	data, filename, err := svc.ExportData(ctx, "user-1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	wantName := "eSaha_data_" + time.Now().UTC().Format("20060102") + ".zip"
	if filename != wantName {
		t.Fatalf("expected filename %q, got %q", wantName, filename)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{
		"profile.json", "mood_entries.json", "chats.json",
		"chat_sessions.json", "appointments.json", "emergency_contacts.json",
	} {
		if !names[want] {
			t.Fatalf("archive missing %s, has %v", want, names)
		}
	}
}
