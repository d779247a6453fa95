package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/clients/sendgrid"
	"github.com/esaha/esaha-backend/internal/clients/twilio"
	"github.com/esaha/esaha-backend/internal/repos"
	"github.com/esaha/esaha-backend/internal/types"
)

func newEmergencyService(t *testing.T, sms twilio.Client, email sendgrid.Client) (EmergencyService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	svc := NewEmergencyService(db, log,
		repos.NewEmergencyContactRepo(db, log),
		repos.NewEmergencyAlertRepo(db, log),
		repos.NewUserProfileRepo(db, log),
		sms, email)
	return svc, db
}

func TestAddContact_Validation(t *testing.T) {
	svc, _ := newEmergencyService(t, nil, nil)
	ctx := context.Background()

	cases := []struct {
		req  EmergencyContactRequest
		want string
	}{
		{EmergencyContactRequest{Relationship: "friend", Phone: "123"}, "Contact name is required"},
		{EmergencyContactRequest{Name: "Ama", Phone: "123"}, "Relationship is required"},
		{EmergencyContactRequest{Name: "Ama", Relationship: "friend"}, "Either phone or email is required"},
	}
	for _, tc := range cases {
		_, err := svc.AddContact(ctx, "user-1", tc.req)
		if !IsValidationError(err) || err.Error() != tc.want {
			t.Fatalf("expected %q, got %v", tc.want, err)
		}
	}
}

func TestAddContact_DefaultsToCrisisNotification(t *testing.T) {
	svc, _ := newEmergencyService(t, nil, nil)
	contact, err := svc.AddContact(context.Background(), "user-1", EmergencyContactRequest{
		Name: "Ama", Relationship: "sister", Phone: "+233200000000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !contact.NotifiesFor(types.NotifyForCrisis) {
		t.Fatalf("expected crisis notification default, got %v", contact.NotifyFor)
	}
}

func TestUpdateContact_WrongUser(t *testing.T) {
	svc, _ := newEmergencyService(t, nil, nil)
	ctx := context.Background()
	contact, err := svc.AddContact(ctx, "user-1", EmergencyContactRequest{
		Name: "Ama", Relationship: "sister", Phone: "+233200000000",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err = svc.UpdateContact(ctx, "user-2", contact.ID, EmergencyContactRequest{
		Name: "Ama", Relationship: "sister", Phone: "+233200000000",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTriggerAlert_NoContactsConfigured(t *testing.T) {
	svc, _ := newEmergencyService(t, nil, nil)
	_, err := svc.TriggerAlert(context.Background(), "user-1", "user@example.com")
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "No emergency contacts configured for alerts" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestTriggerAlert_NotifiesCrisisContacts(t *testing.T) {
	sms := &fakeSMSClient{}
	email := &fakeEmailClient{}
	svc, db := newEmergencyService(t, sms, email)
	ctx := context.Background()

	if _, err := svc.AddContact(ctx, "user-1", EmergencyContactRequest{
		Name: "Ama", Relationship: "sister", Phone: "+233200000000",
	}); err != nil {
		t.Fatalf("add contact: %v", err)
	}
	if _, err := svc.AddContact(ctx, "user-1", EmergencyContactRequest{
		Name: "Kofi", Relationship: "friend", Email: "kofi@example.com",
	}); err != nil {
		t.Fatalf("add contact: %v", err)
	}

	result, err := svc.TriggerAlert(ctx, "user-1", "user@example.com")
	if err != nil {
		t.Fatalf("trigger alert: %v", err)
	}
	if result.AlertID == "" {
		t.Fatalf("expected alert id")
	}
	got := append([]string(nil), result.NotificationsSent...)
	sort.Strings(got)
	if len(got) != 2 || got[0] != "Email to Kofi" || got[1] != "SMS to Ama" {
		t.Fatalf("unexpected notifications: %v", got)
	}
	if len(sms.sent) != 1 || sms.sent[0] != "+233200000000" {
		t.Fatalf("unexpected sms targets: %v", sms.sent)
	}
	if len(email.sent) != 1 || email.sent[0].To != "kofi@example.com" {
		t.Fatalf("unexpected email targets: %+v", email.sent)
	}

	alert, err := repos.NewEmergencyAlertRepo(db, testLogger()).GetByAlertID(ctx, nil, "user-1", result.AlertID)
	if err != nil {
		t.Fatalf("load alert: %v", err)
	}
	if alert == nil {
		t.Fatalf("expected alert record for %s", result.AlertID)
	}
	if alert.Status != types.AlertCompleted || alert.CompletedAt == nil {
		t.Fatalf("expected completed alert, got %+v", alert)
	}
	if len(alert.ContactsNotified) != 2 {
		t.Fatalf("expected 2 notified records, got %v", alert.ContactsNotified)
	}
}

func TestTriggerAlert_SkipsNonCrisisContacts(t *testing.T) {
	sms := &fakeSMSClient{}
	svc, _ := newEmergencyService(t, sms, nil)
	ctx := context.Background()

	if _, err := svc.AddContact(ctx, "user-1", EmergencyContactRequest{
		Name: "Ama", Relationship: "sister", Phone: "+233200000000",
		NotifyFor: []string{"appointments"},
	}); err != nil {
		t.Fatalf("add contact: %v", err)
	}
	if _, err := svc.TriggerAlert(ctx, "user-1", ""); !IsValidationError(err) {
		t.Fatalf("expected validation error when no crisis contacts, got %v", err)
	}
	if len(sms.sent) != 0 {
		t.Fatalf("no SMS should go out, got %v", sms.sent)
	}
}

func TestDeleteContact_Missing(t *testing.T) {
	svc, _ := newEmergencyService(t, nil, nil)
	if err := svc.DeleteContact(context.Background(), "user-1", uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
