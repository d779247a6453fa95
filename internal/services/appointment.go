package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/clients/sendgrid"
	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/repos"
	"github.com/esaha/esaha-backend/internal/types"
)

type AppointmentRequest struct {
	SpecialistID   string `json:"specialist_id"`
	SpecialistName string `json:"specialist_name"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Type           string `json:"type"`
	Location       string `json:"location"`
	ReminderTime   *int   `json:"reminder_time"`
}

type AppointmentService interface {
	Create(ctx context.Context, userID, userEmail string, req AppointmentRequest) (*types.Appointment, error)
	List(ctx context.Context, userID, statusFilter string) ([]*types.Appointment, error)
	Update(ctx context.Context, userID string, id uuid.UUID, req AppointmentRequest) (*types.Appointment, error)
	UpdateStatus(ctx context.Context, userID string, id uuid.UUID, status string) (*types.Appointment, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	GetReminders(ctx context.Context, userID string) ([]*types.Reminder, error)
	ProcessDueReminders(ctx context.Context, now time.Time) (int, error)
}

type appointmentService struct {
	db              *gorm.DB
	log             *logger.Logger
	appointmentRepo repos.AppointmentRepo
	reminderRepo    repos.ReminderRepo
	userRepo        repos.UserRepo
	email           sendgrid.Client
}

func NewAppointmentService(
	db *gorm.DB,
	log *logger.Logger,
	appointmentRepo repos.AppointmentRepo,
	reminderRepo repos.ReminderRepo,
	userRepo repos.UserRepo,
	email sendgrid.Client,
) AppointmentService {
	return &appointmentService{
		db:              db,
		log:             log.With("service", "AppointmentService"),
		appointmentRepo: appointmentRepo,
		reminderRepo:    reminderRepo,
		userRepo:        userRepo,
		email:           email,
	}
}

func (as *appointmentService) Create(ctx context.Context, userID, userEmail string, req AppointmentRequest) (*types.Appointment, error) {
	if strings.TrimSpace(req.SpecialistID) == "" {
		return nil, NewValidationError("Missing required field: specialist_id")
	}
	if strings.TrimSpace(req.Date) == "" {
		return nil, NewValidationError("Missing required field: date")
	}
	if strings.TrimSpace(req.StartTime) == "" {
		return nil, NewValidationError("Missing required field: start_time")
	}

	title := req.Title
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("Appointment on %s", req.Date)
	}
	apptType := req.Type
	if strings.TrimSpace(apptType) == "" {
		apptType = "therapy"
	}
	reminderTime := 60
	if req.ReminderTime != nil {
		reminderTime = *req.ReminderTime
	}

	appt := &types.Appointment{
		ID:             uuid.New(),
		UserID:         userID,
		SpecialistID:   req.SpecialistID,
		SpecialistName: req.SpecialistName,
		Title:          title,
		Description:    req.Description,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Type:           apptType,
		Location:       req.Location,
		ReminderTime:   reminderTime,
		Status:         types.AppointmentScheduled,
	}

	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := as.appointmentRepo.Create(ctx, tx, appt); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		if reminderTime > 0 {
			if err := as.createReminder(ctx, tx, appt); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if userEmail != "" {
		as.sendConfirmationEmail(ctx, userEmail, appt)
	}
	return appt, nil
}

func (as *appointmentService) createReminder(ctx context.Context, tx *gorm.DB, appt *types.Appointment) error {
	reminder := &types.Reminder{
		ID:              uuid.New(),
		AppointmentID:   appt.ID,
		UserID:          appt.UserID,
		Title:           appt.Title,
		AppointmentDate: appt.Date,
		AppointmentTime: appt.StartTime,
		ReminderTime:    appt.ReminderTime,
		Status:          types.ReminderPending,
	}
	if _, err := as.reminderRepo.Create(ctx, tx, reminder); err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

func (as *appointmentService) List(ctx context.Context, userID, statusFilter string) ([]*types.Appointment, error) {
	if statusFilter != "" && !types.IsValidAppointmentStatus(statusFilter) {
		return nil, NewValidationError("Invalid status filter")
	}
	appts, err := as.appointmentRepo.GetByUser(ctx, nil, userID, statusFilter)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

func (as *appointmentService) Update(ctx context.Context, userID string, id uuid.UUID, req AppointmentRequest) (*types.Appointment, error) {
	if strings.TrimSpace(req.SpecialistID) == "" {
		return nil, NewValidationError("Missing required field: specialist_id")
	}
	if strings.TrimSpace(req.Date) == "" {
		return nil, NewValidationError("Missing required field: date")
	}
	if strings.TrimSpace(req.StartTime) == "" {
		return nil, NewValidationError("Missing required field: start_time")
	}

	existing, err := as.appointmentRepo.GetByID(ctx, nil, userID, id)
	if err != nil {
		return nil, fmt.Errorf("lookup appointment: %w", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	reminderTime := existing.ReminderTime
	if req.ReminderTime != nil {
		reminderTime = *req.ReminderTime
	}

	updates := map[string]any{
		"specialist_id":   req.SpecialistID,
		"specialist_name": req.SpecialistName,
		"title":           req.Title,
		"description":     req.Description,
		"date":            req.Date,
		"start_time":      req.StartTime,
		"end_time":        req.EndTime,
		"type":            req.Type,
		"location":        req.Location,
		"reminder_time":   reminderTime,
	}
	if strings.TrimSpace(req.Title) == "" {
		updates["title"] = existing.Title
	}
	if strings.TrimSpace(req.Type) == "" {
		updates["type"] = existing.Type
	}

	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := as.appointmentRepo.Update(ctx, tx, userID, id, updates); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		// Reminders are rebuilt so they track the new schedule.
		if err := as.reminderRepo.DeleteByAppointmentID(ctx, tx, id); err != nil {
			return fmt.Errorf("clear reminders: %w", err)
		}
		if reminderTime > 0 {
			refreshed, err := as.appointmentRepo.GetByID(ctx, tx, userID, id)
			if err != nil {
				return fmt.Errorf("reload appointment: %w", err)
			}
			if refreshed != nil {
				if err := as.createReminder(ctx, tx, refreshed); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	updated, err := as.appointmentRepo.GetByID(ctx, nil, userID, id)
	if err != nil {
		return nil, fmt.Errorf("reload appointment: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

func (as *appointmentService) UpdateStatus(ctx context.Context, userID string, id uuid.UUID, status string) (*types.Appointment, error) {
	if !types.IsValidAppointmentStatus(status) {
		return nil, NewValidationError("Invalid or missing status. Must be one of: scheduled, completed, cancelled")
	}

	var updated *types.Appointment
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := as.appointmentRepo.GetByID(ctx, tx, userID, id)
		if err != nil {
			return fmt.Errorf("load appointment: %w", err)
		}
		if existing == nil {
			return ErrNotFound
		}
		// Completed and cancelled are terminal states.
		if existing.Status != types.AppointmentScheduled && status != existing.Status {
			return NewValidationError(fmt.Sprintf("Cannot change status of a %s appointment", existing.Status))
		}
		if _, err := as.appointmentRepo.Update(ctx, tx, userID, id, map[string]any{"status": status}); err != nil {
			return fmt.Errorf("update appointment status: %w", err)
		}
		// A cancelled appointment takes its pending reminders with it.
		if status == types.AppointmentCancelled {
			if err := as.reminderRepo.CancelByAppointmentID(ctx, tx, id); err != nil {
				return fmt.Errorf("cancel reminders: %w", err)
			}
		}
		updated, err = as.appointmentRepo.GetByID(ctx, tx, userID, id)
		if err != nil {
			return fmt.Errorf("reload appointment: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

func (as *appointmentService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := as.appointmentRepo.Delete(ctx, tx, userID, id)
		if err != nil {
			return fmt.Errorf("delete appointment: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}
		if err := as.reminderRepo.DeleteByAppointmentID(ctx, tx, id); err != nil {
			return fmt.Errorf("delete reminders: %w", err)
		}
		return nil
	})
}

func (as *appointmentService) GetReminders(ctx context.Context, userID string) ([]*types.Reminder, error) {
	reminders, err := as.reminderRepo.GetPendingByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// ProcessDueReminders sweeps pending reminders whose fire time has passed,
// sends the notification, and marks them sent. Returns the processed count.
func (as *appointmentService) ProcessDueReminders(ctx context.Context, now time.Time) (int, error) {
	pending, err := as.reminderRepo.GetPending(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("load pending reminders: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	apptIDs := make([]uuid.UUID, 0, len(pending))
	for _, r := range pending {
		apptIDs = append(apptIDs, r.AppointmentID)
	}
	appts, err := as.appointmentRepo.GetByIDs(ctx, nil, apptIDs)
	if err != nil {
		return 0, fmt.Errorf("load appointments: %w", err)
	}
	apptByID := make(map[uuid.UUID]*types.Appointment, len(appts))
	for _, a := range appts {
		apptByID[a.ID] = a
	}

	processed := 0
	for _, reminder := range pending {
		appt := apptByID[reminder.AppointmentID]
		if appt == nil || appt.Status != types.AppointmentScheduled {
			continue
		}

		fireAt, err := reminderFireTime(appt.Date, appt.StartTime, reminder.ReminderTime)
		if err != nil {
			as.log.Warn("Skipping reminder with unparseable schedule",
				"reminder_id", reminder.ID, "date", appt.Date, "start_time", appt.StartTime, "error", err)
			continue
		}
		if now.Before(fireAt) {
			continue
		}

		as.sendReminderNotification(ctx, appt)
		if err := as.reminderRepo.MarkSent(ctx, nil, reminder.ID, now); err != nil {
			as.log.Error("Failed to mark reminder sent", "reminder_id", reminder.ID, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}

func reminderFireTime(date, startTime string, reminderMinutes int) (time.Time, error) {
	at, err := time.Parse("2006-01-02 15:04", date+" "+startTime)
	if err != nil {
		return time.Time{}, err
	}
	return at.Add(-time.Duration(reminderMinutes) * time.Minute), nil
}

func appointmentTimeDisplay(appt *types.Appointment) string {
	if appt.EndTime == "" {
		return appt.StartTime
	}
	return appt.StartTime + " - " + appt.EndTime
}

func (as *appointmentService) sendConfirmationEmail(ctx context.Context, userEmail string, appt *types.Appointment) {
	if as.email == nil {
		as.log.Debug("Email client unavailable, skipping confirmation email")
		return
	}

	specialist := appt.SpecialistName
	if specialist == "" {
		specialist = "a specialist"
	}
	subject := fmt.Sprintf("eSaha: Your Appointment with %s has been confirmed", specialist)
	text := fmt.Sprintf(`Dear User,

Your appointment has been confirmed!

Details:
- Title: %s
- Date: %s
- Time: %s
- With: %s
- Type: %s
- Location: %s

Please arrive 5 minutes before your scheduled time.

If you need to reschedule or cancel, please log into your eSaha account or contact us directly.

Thank you for using eSaha - your mental wellbeing partner.
`, appt.Title, appt.Date, appointmentTimeDisplay(appt), specialist, appt.Type, appt.Location)

	if err := as.email.Send(ctx, sendgrid.SendEmailRequest{
		To:          userEmail,
		Subject:     subject,
		TextContent: text,
	}); err != nil {
		as.log.Warn("Failed to send confirmation email", "error", err)
	}
}

func (as *appointmentService) sendReminderNotification(ctx context.Context, appt *types.Appointment) {
	if as.email == nil {
		return
	}
	// Only locally registered users have an email on file.
	localID, err := uuid.Parse(appt.UserID)
	if err != nil {
		return
	}
	user, err := as.userRepo.GetByID(ctx, nil, localID)
	if err != nil || user == nil {
		as.log.Debug("No local user for reminder notification", "user_id", appt.UserID)
		return
	}

	subject := fmt.Sprintf("eSaha: Reminder for your upcoming appointment on %s", appt.Date)
	text := fmt.Sprintf(`Dear User,

This is a reminder for your upcoming appointment.

Details:
- Title: %s
- Date: %s
- Time: %s
- With: %s
- Location: %s

Thank you for using eSaha - your mental wellbeing partner.
`, appt.Title, appt.Date, appointmentTimeDisplay(appt), appt.SpecialistName, appt.Location)

	if err := as.email.Send(ctx, sendgrid.SendEmailRequest{
		To:          user.Email,
		Subject:     subject,
		TextContent: text,
	}); err != nil {
		as.log.Warn("Failed to send reminder email", "error", err)
	}
}
