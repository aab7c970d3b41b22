package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mtereshin/medtrack/internal/client/models"
	"github.com/mtereshin/medtrack/internal/common"
)

// ReminderAPI is the backend surface the reminder service needs.
type ReminderAPI interface {
	ListReminders(ctx context.Context) ([]models.Reminder, error)
	GetReminder(ctx context.Context, id int64) (*models.Reminder, error)
	CreateReminder(ctx context.Context, payload models.ReminderPayload) (*models.Reminder, error)
	UpdateReminder(ctx context.Context, id int64, payload models.ReminderPayload) (*models.Reminder, error)
	DeleteReminder(ctx context.Context, id int64) error
	ActivateReminder(ctx context.Context, id int64) error
	DeactivateReminder(ctx context.Context, id int64) error
	UpdateQuantity(ctx context.Context, id int64, amount float64) (*models.Reminder, error)
	TodaySchedule(ctx context.Context) ([]models.TodayDose, error)
}

// ReminderService exposes the reminder screens' operations: list/detail,
// draft-based editing with a re-fetch after save, and per-item one-shot
// actions guarded by the in-flight tracker.
type ReminderService struct {
	api     ReminderAPI
	actions *Tracker
}

func NewReminderService(api ReminderAPI) *ReminderService {
	return &ReminderService{api: api, actions: NewTracker()}
}

func (s *ReminderService) List(ctx context.Context) ([]models.Reminder, error) {
	return s.api.ListReminders(ctx)
}

func (s *ReminderService) Get(ctx context.Context, id int64) (*models.Reminder, error) {
	return s.api.GetReminder(ctx, id)
}

func (s *ReminderService) Create(ctx context.Context, payload models.ReminderPayload) (*models.Reminder, error) {
	return s.api.CreateReminder(ctx, payload)
}

func (s *ReminderService) Today(ctx context.Context) ([]models.TodayDose, error) {
	return s.api.TodaySchedule(ctx)
}

// DraftFromReminder seeds an edit draft from the loaded entity. Cancel is
// simply dropping the draft; the original entity is untouched.
func DraftFromReminder(r *models.Reminder) models.ReminderPayload {
	schedules := make([]models.DoseSchedule, len(r.DoseSchedules))
	copy(schedules, r.DoseSchedules)

	methods := make([]string, len(r.NotificationMethods))
	copy(methods, r.NotificationMethods)

	draft := models.ReminderPayload{
		MedicineName:        r.MedicineName,
		MedicineType:        r.MedicineType,
		DoseCountDaily:      r.DoseCountDaily,
		NotificationMethods: methods,
		StartDate:           r.StartDate,
		Quantity:            r.Quantity,
		RefillReminder:      r.RefillReminder,
		DoseSchedules:       schedules,
	}
	if r.RefillReminder {
		threshold := r.RefillThreshold
		draft.RefillThreshold = &threshold
	}
	return draft
}

// ValidateDraft checks the client-side invariants before an update call:
// non-empty name, positive quantity, threshold within bounds, every dose
// with a positive amount and a non-empty, pairwise-distinct time.
func ValidateDraft(draft models.ReminderPayload) error {
	if strings.TrimSpace(draft.MedicineName) == "" {
		return fmt.Errorf("%w: medicine name must not be empty", common.ErrValidation)
	}
	if draft.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be greater than zero", common.ErrValidation)
	}
	if draft.RefillReminder {
		if draft.RefillThreshold == nil || *draft.RefillThreshold <= 0 {
			return fmt.Errorf("%w: refill threshold must be greater than zero", common.ErrValidation)
		}
		if *draft.RefillThreshold > draft.Quantity {
			return fmt.Errorf("%w: refill threshold must not exceed quantity", common.ErrValidation)
		}
	}
	for i, s := range draft.DoseSchedules {
		if s.Amount <= 0 {
			return fmt.Errorf("%w: dose %d amount must be greater than zero", common.ErrValidation, i+1)
		}
		if s.Time == "" {
			return fmt.Errorf("%w: dose %d time must not be empty", common.ErrValidation, i+1)
		}
	}
	if dup := models.DuplicateTimeIndexes(draft.DoseSchedules); len(dup) > 0 {
		return fmt.Errorf("%w: dose times must be distinct", common.ErrValidation)
	}
	return nil
}

// Save validates the draft, issues the update and then re-fetches the
// entity so the caller renders server-confirmed state rather than an
// optimistic patch.
func (s *ReminderService) Save(ctx context.Context, id int64, draft models.ReminderPayload) (*models.Reminder, error) {
	if err := ValidateDraft(draft); err != nil {
		return nil, err
	}
	if _, err := s.api.UpdateReminder(ctx, id, draft); err != nil {
		return nil, err
	}
	return s.api.GetReminder(ctx, id)
}

// Pending reports the in-flight one-shot action for a reminder, if any.
func (s *ReminderService) Pending(id int64) (string, bool) {
	return s.actions.Pending(id)
}

// Activate resumes a paused reminder.
func (s *ReminderService) Activate(ctx context.Context, id int64) error {
	return s.oneShot(id, "activate", func() error {
		return s.api.ActivateReminder(ctx, id)
	})
}

// Deactivate pauses a reminder without deleting it.
func (s *ReminderService) Deactivate(ctx context.Context, id int64) error {
	return s.oneShot(id, "deactivate", func() error {
		return s.api.DeactivateReminder(ctx, id)
	})
}

// Delete removes a reminder.
func (s *ReminderService) Delete(ctx context.Context, id int64) error {
	return s.oneShot(id, "delete", func() error {
		return s.api.DeleteReminder(ctx, id)
	})
}

// Take records a taken dose and returns the reminder with the decremented
// quantity.
func (s *ReminderService) Take(ctx context.Context, id int64, amount float64) (*models.Reminder, error) {
	if !s.actions.Begin(id, "take") {
		return nil, ErrActionPending
	}
	defer s.actions.End(id)
	return s.api.UpdateQuantity(ctx, id, amount)
}

// oneShot runs fn under the per-item guard, always releasing it.
func (s *ReminderService) oneShot(id int64, action string, fn func() error) error {
	if !s.actions.Begin(id, action) {
		return ErrActionPending
	}
	defer s.actions.End(id)
	return fn()
}
