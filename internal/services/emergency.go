package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/clients/sendgrid"
	"github.com/esaha/esaha-backend/internal/clients/twilio"
	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/repos"
	"github.com/esaha/esaha-backend/internal/types"
)

type EmergencyContactRequest struct {
	Name         string   `json:"name"`
	Relationship string   `json:"relationship"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	NotifyFor    []string `json:"notify_for"`
}

type AlertResult struct {
	AlertID           string   `json:"alert_id"`
	NotificationsSent []string `json:"notifications_sent"`
}

type EmergencyService interface {
	GetContacts(ctx context.Context, userID string) ([]*types.EmergencyContact, error)
	AddContact(ctx context.Context, userID string, req EmergencyContactRequest) (*types.EmergencyContact, error)
	UpdateContact(ctx context.Context, userID string, contactID uuid.UUID, req EmergencyContactRequest) (*types.EmergencyContact, error)
	DeleteContact(ctx context.Context, userID string, contactID uuid.UUID) error
	TriggerAlert(ctx context.Context, userID, userEmail string) (*AlertResult, error)
}

type emergencyService struct {
	db          *gorm.DB
	log         *logger.Logger
	contactRepo repos.EmergencyContactRepo
	alertRepo   repos.EmergencyAlertRepo
	profileRepo repos.UserProfileRepo
	sms         twilio.Client
	email       sendgrid.Client
}

func NewEmergencyService(
	db *gorm.DB,
	log *logger.Logger,
	contactRepo repos.EmergencyContactRepo,
	alertRepo repos.EmergencyAlertRepo,
	profileRepo repos.UserProfileRepo,
	sms twilio.Client,
	email sendgrid.Client,
) EmergencyService {
	return &emergencyService{
		db:          db,
		log:         log.With("service", "EmergencyService"),
		contactRepo: contactRepo,
		alertRepo:   alertRepo,
		profileRepo: profileRepo,
		sms:         sms,
		email:       email,
	}
}

func validateContactRequest(req EmergencyContactRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return NewValidationError("Contact name is required")
	}
	if strings.TrimSpace(req.Relationship) == "" {
		return NewValidationError("Relationship is required")
	}
	if strings.TrimSpace(req.Phone) == "" && strings.TrimSpace(req.Email) == "" {
		return NewValidationError("Either phone or email is required")
	}
	return nil
}

func notifyForOrDefault(notifyFor []string) []string {
	if len(notifyFor) == 0 {
		return []string{types.NotifyForCrisis}
	}
	return notifyFor
}

func (es *emergencyService) GetContacts(ctx context.Context, userID string) ([]*types.EmergencyContact, error) {
	contacts, err := es.contactRepo.GetByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list emergency contacts: %w", err)
	}
	return contacts, nil
}

func (es *emergencyService) AddContact(ctx context.Context, userID string, req EmergencyContactRequest) (*types.EmergencyContact, error) {
	if err := validateContactRequest(req); err != nil {
		return nil, err
	}

	contact := &types.EmergencyContact{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         req.Name,
		Relationship: req.Relationship,
		Phone:        strings.TrimSpace(req.Phone),
		Email:        strings.TrimSpace(req.Email),
		NotifyFor:    datatypes.JSONSlice[string](notifyForOrDefault(req.NotifyFor)),
	}
	if _, err := es.contactRepo.Create(ctx, nil, contact); err != nil {
		return nil, fmt.Errorf("create emergency contact: %w", err)
	}
	return contact, nil
}

func (es *emergencyService) UpdateContact(ctx context.Context, userID string, contactID uuid.UUID, req EmergencyContactRequest) (*types.EmergencyContact, error) {
	if err := validateContactRequest(req); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":         req.Name,
		"relationship": req.Relationship,
		"phone":        strings.TrimSpace(req.Phone),
		"email":        strings.TrimSpace(req.Email),
		"notify_for":   datatypes.JSONSlice[string](notifyForOrDefault(req.NotifyFor)),
	}
	affected, err := es.contactRepo.Update(ctx, nil, userID, contactID, updates)
	if err != nil {
		return nil, fmt.Errorf("update emergency contact: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	updated, err := es.contactRepo.GetByID(ctx, nil, userID, contactID)
	if err != nil {
		return nil, fmt.Errorf("reload emergency contact: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

func (es *emergencyService) DeleteContact(ctx context.Context, userID string, contactID uuid.UUID) error {
	affected, err := es.contactRepo.Delete(ctx, nil, userID, contactID)
	if err != nil {
		return fmt.Errorf("delete emergency contact: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (es *emergencyService) TriggerAlert(ctx context.Context, userID, userEmail string) (*AlertResult, error) {
	userName := "A user"
	locationInfo := ""
	profile, err := es.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		es.log.Warn("Failed to load profile for alert message", "error", err)
	}
	if profile != nil && profile.FullName != "" {
		userName = profile.FullName
	} else if userEmail != "" {
		userName = strings.SplitN(userEmail, "@", 2)[0]
	}
	if profile != nil && profile.Location != "" {
		locationInfo = " in " + profile.Location
	}

	allContacts, err := es.contactRepo.GetByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load emergency contacts: %w", err)
	}
	contacts := make([]*types.EmergencyContact, 0, len(allContacts))
	for _, c := range allContacts {
		if c.NotifiesFor(types.NotifyForCrisis) {
			contacts = append(contacts, c)
		}
	}
	if len(contacts) == 0 {
		return nil, NewValidationError("No emergency contacts configured for alerts")
	}

	now := time.Now().UTC()
	alertTime := now.Format("2006-01-02 15:04:05 UTC")
	alertID := uuid.New().String()

	alert := &types.EmergencyAlert{
		ID:               uuid.New(),
		AlertID:          alertID,
		UserID:           userID,
		Status:           types.AlertInitiated,
		ContactsNotified: datatypes.JSONSlice[string]{},
		Timestamp:        now,
	}
	if _, err := es.alertRepo.Create(ctx, nil, alert); err != nil {
		return nil, fmt.Errorf("record alert: %w", err)
	}

	smsBody := fmt.Sprintf(
		"EMERGENCY ALERT: %s%s has requested immediate help through eSaha Mental Health App. Please check on them or contact emergency services if appropriate. Sent: %s",
		userName, locationInfo, alertTime)
	emailSubject := "EMERGENCY ALERT from eSaha Mental Health App"
	emailHTML := fmt.Sprintf(`<h2>Emergency Alert</h2>
<p><strong>%s</strong>%s has requested immediate help through the eSaha Mental Health App.</p>
<p>This is an automated alert sent because they activated the emergency help feature.</p>
<p>Please check on them or contact emergency services if appropriate.</p>
<p>Alert sent: %s</p>`, userName, locationInfo, alertTime)

	var (
		mu       sync.Mutex
		notified []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, contact := range contacts {
		contact := contact
		if contact.Phone != "" && es.sms != nil {
			g.Go(func() error {
				if _, err := es.sms.SendSMS(gctx, contact.Phone, smsBody); err != nil {
					es.log.Warn("Failed to send alert SMS", "contact", contact.Name, "error", err)
					return nil
				}
				mu.Lock()
				notified = append(notified, "SMS to "+contact.Name)
				mu.Unlock()
				return nil
			})
		}
		if contact.Email != "" && es.email != nil {
			g.Go(func() error {
				err := es.email.Send(gctx, sendgrid.SendEmailRequest{
					To:          contact.Email,
					Subject:     emailSubject,
					HTMLContent: emailHTML,
				})
				if err != nil {
					es.log.Warn("Failed to send alert email", "contact", contact.Name, "error", err)
					return nil
				}
				mu.Lock()
				notified = append(notified, "Email to "+contact.Name)
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()

	if notified == nil {
		notified = []string{}
	}
	if err := es.alertRepo.Complete(ctx, nil, alertID, notified, time.Now().UTC()); err != nil {
		es.log.Error("Failed to complete alert record", "alert_id", alertID, "error", err)
	}

	return &AlertResult{AlertID: alertID, NotificationsSent: notified}, nil
}
