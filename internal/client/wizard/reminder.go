package wizard

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/mtereshin/medtrack/internal/client/models"
	"github.com/mtereshin/medtrack/internal/common"
)

// ReminderStep identifies a position in the reminder creation flow.
type ReminderStep int

const (
	StepMedicine ReminderStep = iota
	StepDosesAndNotifications
	StepTiming
	StepQuantityAndRefill
	StepReview
)

// Dose count bounds enforced at step 2.
const (
	MinDoseCount = 1
	MaxDoseCount = 10
)

// PermissionRequester asks the platform for notification permission. The
// request must be idempotent: once granted or denied, a repeat call
// re-checks the stored decision instead of prompting again.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) (bool, error)
}

// ReminderForm is the in-memory form model behind the wizard. It is kept
// separate from the wire payload; BuildPayload performs the final
// transformation on submit.
type ReminderForm struct {
	MedicineName        string
	MedicineType        string
	DoseCountDaily      int
	NotificationMethods []string
	Email               string // auto-filled from the session, read-only
	PhoneNumber         string
	StartDate           string
	DoseSchedules       []models.DoseSchedule
	Quantity            int
	RefillReminder      bool
	RefillThreshold     int
}

// ReminderWizard is the linear five-step state machine:
// MedicineDetails → DosesAndNotifications → Timing → QuantityAndRefill → Review.
type ReminderWizard struct {
	step ReminderStep
	Form ReminderForm
}

// NewReminderWizard starts the flow for the given user, whose email and
// phone number seed the notification fields.
func NewReminderWizard(user *models.User) *ReminderWizard {
	w := &ReminderWizard{}
	if user != nil {
		w.Form.Email = user.Email
		w.Form.PhoneNumber = user.PhoneNumber
	}
	w.SetDoseCount(1)
	return w
}

// Step returns the current step.
func (w *ReminderWizard) Step() ReminderStep { return w.step }

// Next validates only the fields owned by the current step and advances on
// success; StepReview is terminal for Next.
func (w *ReminderWizard) Next() FieldErrors {
	errs := w.ValidateStep(w.step)
	if len(errs) > 0 {
		return errs
	}
	if w.step < StepReview {
		w.step++
	}
	return errs
}

// Back moves one step backwards, keeping all entered values. Always
// allowed; a no-op on the first step.
func (w *ReminderWizard) Back() {
	if w.step > StepMedicine {
		w.step--
	}
}

// SetDoseCount updates the daily dose count and regenerates the schedule
// array to exactly that length, each slot defaulting to amount 1 and an
// empty time. Entries beyond the new count are discarded; this is a
// destructive but expected side effect of the count control.
func (w *ReminderWizard) SetDoseCount(n int) {
	if n < 0 {
		n = 0
	}
	w.Form.DoseCountDaily = n
	schedules := make([]models.DoseSchedule, n)
	for i := range schedules {
		schedules[i] = models.DoseSchedule{DoseNumber: i + 1, Amount: 1}
	}
	w.Form.DoseSchedules = schedules
}

// HasMethod reports whether the given notification method is selected.
func (w *ReminderWizard) HasMethod(method string) bool {
	for _, m := range w.Form.NotificationMethods {
		if m == method {
			return true
		}
	}
	return false
}

// ToggleMethod adds or removes the email/sms notification method.
func (w *ReminderWizard) ToggleMethod(method string) {
	if w.HasMethod(method) {
		kept := w.Form.NotificationMethods[:0]
		for _, m := range w.Form.NotificationMethods {
			if m != method {
				kept = append(kept, m)
			}
		}
		w.Form.NotificationMethods = kept
		return
	}
	w.Form.NotificationMethods = append(w.Form.NotificationMethods, method)
}

// TogglePush selects or deselects the push method. Selecting it requires
// platform permission: when the request is denied the method list is left
// unchanged and common.ErrPermissionDenied is returned. The permission
// request is the wizard's only external side effect.
func (w *ReminderWizard) TogglePush(ctx context.Context, perms PermissionRequester) error {
	if w.HasMethod(models.MethodPush) {
		w.ToggleMethod(models.MethodPush)
		return nil
	}

	granted, err := perms.RequestPermission(ctx)
	if err != nil {
		return err
	}
	if !granted {
		return common.ErrPermissionDenied
	}
	w.ToggleMethod(models.MethodPush)
	return nil
}

// ValidateStep checks only the fields owned by the given step.
func (w *ReminderWizard) ValidateStep(step ReminderStep) FieldErrors {
	errs := FieldErrors{}

	switch step {
	case StepMedicine:
		if strings.TrimSpace(w.Form.MedicineName) == "" {
			errs["medicine_name"] = "medicine name is required"
		}
		if !models.ValidMedicineType(w.Form.MedicineType) {
			errs["medicine_type"] = "medicine type must be one of: " + strings.Join(models.MedicineTypes, ", ")
		}

	case StepDosesAndNotifications:
		if w.Form.DoseCountDaily < MinDoseCount || w.Form.DoseCountDaily > MaxDoseCount {
			errs["dose_count_daily"] = fmt.Sprintf("daily dose count must be between %d and %d", MinDoseCount, MaxDoseCount)
		}
		if len(w.Form.NotificationMethods) == 0 {
			errs["notification_methods"] = "select at least one notification method"
		}
		if w.HasMethod(models.MethodEmail) {
			if _, err := mail.ParseAddress(w.Form.Email); err != nil {
				errs["email"] = "a valid email address is required for email notifications"
			}
		}
		if w.HasMethod(models.MethodSMS) && digitCount(w.Form.PhoneNumber) < 10 {
			errs["phone_number"] = "a phone number with at least 10 digits is required for sms notifications"
		}

	case StepTiming:
		if strings.TrimSpace(w.Form.StartDate) == "" {
			errs["start_date"] = "start date is required"
		}
		for i, s := range w.Form.DoseSchedules {
			if s.Time == "" {
				errs[scheduleTimeField(i)] = "time is required"
			} else if !validClockTime(s.Time) {
				errs[scheduleTimeField(i)] = "time must be in HH:MM format"
			}
		}
		// Whole-array constraint: flag every index sharing a duplicated
		// time, not just the second occurrence.
		for _, i := range models.DuplicateTimeIndexes(w.Form.DoseSchedules) {
			errs[scheduleTimeField(i)] = "dose times must be distinct"
		}

	case StepQuantityAndRefill:
		errs = w.ValidateRefill()

	case StepReview:
		// Pure review; submission handles the rest.
	}

	return errs
}

// ValidateRefill checks the quantity/refill constraint. It is exposed
// separately because the CLI re-runs it after every quantity or threshold
// edit, independent of step advancement, so the violation is visible
// before the user tries to move on.
func (w *ReminderWizard) ValidateRefill() FieldErrors {
	errs := FieldErrors{}
	if w.Form.Quantity < 1 {
		errs["quantity"] = "quantity must be at least 1"
	}
	if w.Form.RefillReminder {
		if w.Form.RefillThreshold <= 0 {
			errs["refill_threshold"] = "refill threshold must be greater than 0"
		} else if w.Form.Quantity >= 1 && w.Form.RefillThreshold >= w.Form.Quantity {
			errs["refill_threshold"] = "refill threshold must be less than quantity"
		}
	}
	return errs
}

// BuildPayload transforms the form model into the wire payload: the push
// method token becomes "push_notification", dose times get seconds
// appended, the refill threshold is attached only when enabled, and the
// phone number is dropped entirely when empty.
func (w *ReminderWizard) BuildPayload() models.ReminderPayload {
	methods := make([]string, 0, len(w.Form.NotificationMethods))
	for _, m := range w.Form.NotificationMethods {
		if m == models.MethodPush {
			m = models.MethodPushWire
		}
		methods = append(methods, m)
	}

	schedules := make([]models.DoseSchedule, len(w.Form.DoseSchedules))
	for i, s := range w.Form.DoseSchedules {
		s.Time = wireTime(s.Time)
		schedules[i] = s
	}

	payload := models.ReminderPayload{
		MedicineName:        strings.TrimSpace(w.Form.MedicineName),
		MedicineType:        w.Form.MedicineType,
		DoseCountDaily:      w.Form.DoseCountDaily,
		NotificationMethods: methods,
		StartDate:           w.Form.StartDate,
		Quantity:            w.Form.Quantity,
		RefillReminder:      w.Form.RefillReminder,
		DoseSchedules:       schedules,
		PhoneNumber:         strings.TrimSpace(w.Form.PhoneNumber),
	}
	if w.Form.RefillReminder {
		threshold := w.Form.RefillThreshold
		payload.RefillThreshold = &threshold
	}
	return payload
}

// validClockTime reports whether s is a zero-padded 24h "HH:MM" time.
// Shorthand like "8:00" or out-of-range values like "25:99" are rejected;
// the timing step insists on the exact format the API expects.
func validClockTime(s string) bool {
	if len(s) != len("15:04") {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// wireTime appends seconds to an "HH:MM" form time; times already carrying
// seconds pass through unchanged.
func wireTime(t string) string {
	if len(t) == len("15:04") {
		return t + ":00"
	}
	return t
}

func scheduleTimeField(i int) string {
	return fmt.Sprintf("dose_schedules[%d].time", i)
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
