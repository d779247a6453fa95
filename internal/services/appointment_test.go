package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/clients/sendgrid"
	"github.com/esaha/esaha-backend/internal/repos"
	"github.com/esaha/esaha-backend/internal/types"
)

func newAppointmentService(t *testing.T, email sendgrid.Client) (AppointmentService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	svc := NewAppointmentService(db, log,
		repos.NewAppointmentRepo(db, log),
		repos.NewReminderRepo(db, log),
		repos.NewUserRepo(db, log),
		email)
	return svc, db
}

func TestCreateAppointment_DefaultsAndReminder(t *testing.T) {
	email := &fakeEmailClient{}
	svc, db := newAppointmentService(t, email)
	ctx := context.Background()

	appt, err := svc.Create(ctx, "user-1", "user@example.com", AppointmentRequest{
		SpecialistID:   "spec-9",
		SpecialistName: "Dr. Osei",
		Date:           "2025-07-01",
		StartTime:      "10:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Title != "Appointment on 2025-07-01" {
		t.Fatalf("expected default title, got %q", appt.Title)
	}
	if appt.Type != "therapy" {
		t.Fatalf("expected default type therapy, got %q", appt.Type)
	}
	if appt.ReminderTime != 60 {
		t.Fatalf("expected default reminder 60, got %d", appt.ReminderTime)
	}
	if appt.Status != types.AppointmentScheduled {
		t.Fatalf("expected scheduled status, got %q", appt.Status)
	}

	var reminders []*types.Reminder
	if err := db.Where("appointment_id = ?", appt.ID).Find(&reminders).Error; err != nil {
		t.Fatalf("load reminders: %v", err)
	}
	if len(reminders) != 1 || reminders[0].Status != types.ReminderPending {
		t.Fatalf("expected one pending reminder, got %+v", reminders)
	}

	if len(email.sent) != 1 {
		t.Fatalf("expected confirmation email, got %d", len(email.sent))
	}
	if email.sent[0].Subject != "eSaha: Your Appointment with Dr. Osei has been confirmed" {
		t.Fatalf("unexpected subject: %q", email.sent[0].Subject)
	}
}

func TestCreateAppointment_MissingFields(t *testing.T) {
	svc, _ := newAppointmentService(t, nil)
	ctx := context.Background()

	cases := []struct {
		req  AppointmentRequest
		want string
	}{
		{AppointmentRequest{Date: "2025-07-01", StartTime: "10:00"}, "Missing required field: specialist_id"},
		{AppointmentRequest{SpecialistID: "s", StartTime: "10:00"}, "Missing required field: date"},
		{AppointmentRequest{SpecialistID: "s", Date: "2025-07-01"}, "Missing required field: start_time"},
	}
	for _, tc := range cases {
		_, err := svc.Create(ctx, "user-1", "", tc.req)
		if !IsValidationError(err) || err.Error() != tc.want {
			t.Fatalf("expected %q, got %v", tc.want, err)
		}
	}
}

func TestUpdateStatus_CancelCascadesReminders(t *testing.T) {
	svc, db := newAppointmentService(t, nil)
	ctx := context.Background()

	appt, err := svc.Create(ctx, "user-1", "", AppointmentRequest{
		SpecialistID: "spec-9", Date: "2025-07-01", StartTime: "10:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, "user-1", appt.ID, types.AppointmentCancelled)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != types.AppointmentCancelled {
		t.Fatalf("expected cancelled, got %q", updated.Status)
	}

	reminders, err := repos.NewReminderRepo(db, testLogger()).GetByAppointmentID(ctx, nil, appt.ID)
	if err != nil {
		t.Fatalf("load reminders: %v", err)
	}
	if len(reminders) != 1 || reminders[0].Status != types.ReminderCancelled {
		t.Fatalf("expected cancelled reminder, got %+v", reminders)
	}
}

func TestUpdateStatus_TerminalStatesLocked(t *testing.T) {
	svc, _ := newAppointmentService(t, nil)
	ctx := context.Background()

	appt, err := svc.Create(ctx, "user-1", "", AppointmentRequest{
		SpecialistID: "spec-9", Date: "2025-07-01", StartTime: "10:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "user-1", appt.ID, types.AppointmentCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// A cancelled appointment stays cancelled.
	_, err = svc.UpdateStatus(ctx, "user-1", appt.ID, types.AppointmentScheduled)
	if !IsValidationError(err) || err.Error() != "Cannot change status of a cancelled appointment" {
		t.Fatalf("expected terminal-status error, got %v", err)
	}
	_, err = svc.UpdateStatus(ctx, "user-1", appt.ID, types.AppointmentCompleted)
	if !IsValidationError(err) {
		t.Fatalf("expected terminal-status error, got %v", err)
	}

	// Re-asserting the current status is a no-op, not an error.
	updated, err := svc.UpdateStatus(ctx, "user-1", appt.ID, types.AppointmentCancelled)
	if err != nil {
		t.Fatalf("idempotent cancel: %v", err)
	}
	if updated.Status != types.AppointmentCancelled {
		t.Fatalf("expected cancelled, got %q", updated.Status)
	}

	completed, err := svc.Create(ctx, "user-1", "", AppointmentRequest{
		SpecialistID: "spec-9", Date: "2025-07-02", StartTime: "11:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "user-1", completed.ID, types.AppointmentCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "user-1", completed.ID, types.AppointmentScheduled); !IsValidationError(err) {
		t.Fatalf("expected terminal-status error, got %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, "user-1", uuid.New(), types.AppointmentCompleted); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	svc, _ := newAppointmentService(t, nil)
	_, err := svc.UpdateStatus(context.Background(), "user-1", uuid.New(), "postponed")
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "scheduled, completed, cancelled") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestUpdateAppointment_RebuildsReminder(t *testing.T) {
	svc, db := newAppointmentService(t, nil)
	ctx := context.Background()

	appt, err := svc.Create(ctx, "user-1", "", AppointmentRequest{
		SpecialistID: "spec-9", Date: "2025-07-01", StartTime: "10:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, "user-1", appt.ID, AppointmentRequest{
		SpecialistID: "spec-9", Date: "2025-07-08", StartTime: "14:00",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Date != "2025-07-08" || updated.StartTime != "14:00" {
		t.Fatalf("update not applied: %+v", updated)
	}

	var reminders []*types.Reminder
	if err := db.Where("appointment_id = ?", appt.ID).Find(&reminders).Error; err != nil {
		t.Fatalf("load reminders: %v", err)
	}
	if len(reminders) != 1 {
		t.Fatalf("expected reminder rebuilt, got %d", len(reminders))
	}
	if reminders[0].AppointmentDate != "2025-07-08" || reminders[0].AppointmentTime != "14:00" {
		t.Fatalf("reminder not tracking new schedule: %+v", reminders[0])
	}
}

func TestDeleteAppointment_RemovesReminders(t *testing.T) {
	svc, db := newAppointmentService(t, nil)
	ctx := context.Background()

	appt, err := svc.Create(ctx, "user-1", "", AppointmentRequest{
		SpecialistID: "spec-9", Date: "2025-07-01", StartTime: "10:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, "user-1", appt.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var count int64
	if err := db.Model(&types.Reminder{}).Where("appointment_id = ?", appt.ID).Count(&count).Error; err != nil {
		t.Fatalf("count reminders: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected reminders removed, got %d", count)
	}

	if err := svc.Delete(ctx, "user-1", appt.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestProcessDueReminders_MarksSent(t *testing.T) {
	svc, db := newAppointmentService(t, nil)
	ctx := context.Background()

	appt, err := svc.Create(ctx, "user-1", "", AppointmentRequest{
		SpecialistID: "spec-9", Date: "2025-07-01", StartTime: "10:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 09:00 on the day, an hour before a 10:00 appointment with a 60 minute
	// reminder: exactly due.
	now, _ := time.Parse("2006-01-02 15:04", "2025-07-01 09:00")
	processed, err := svc.ProcessDueReminders(ctx, now)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if processed != 1 {
		t.Fatalf("expected 1 processed, got %d", processed)
	}

	var reminders []*types.Reminder
	if err := db.Where("appointment_id = ?", appt.ID).Find(&reminders).Error; err != nil {
		t.Fatalf("load reminders: %v", err)
	}
	if reminders[0].Status != types.ReminderSent || reminders[0].SentAt == nil {
		t.Fatalf("expected sent reminder, got %+v", reminders[0])
	}

	// A second sweep finds nothing pending.
	processed, err = svc.ProcessDueReminders(ctx, now)
	if err != nil {
		t.Fatalf("process again: %v", err)
	}
	if processed != 0 {
		t.Fatalf("expected 0 processed on second sweep, got %d", processed)
	}
}

func TestProcessDueReminders_NotYetDue(t *testing.T) {
	svc, _ := newAppointmentService(t, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user-1", "", AppointmentRequest{
		SpecialistID: "spec-9", Date: "2025-07-01", StartTime: "10:00",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	now, _ := time.Parse("2006-01-02 15:04", "2025-07-01 08:00")
	processed, err := svc.ProcessDueReminders(ctx, now)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if processed != 0 {
		t.Fatalf("expected nothing due, got %d", processed)
	}
}

func TestReminderFireTime(t *testing.T) {
	at, err := reminderFireTime("2025-07-01", "10:00", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := time.Parse("2006-01-02 15:04", "2025-07-01 09:00")
	if !at.Equal(want) {
		t.Fatalf("expected %v, got %v", want, at)
	}
	if _, err := reminderFireTime("tomorrow", "noon", 60); err == nil {
		t.Fatalf("expected parse error")
	}
}
