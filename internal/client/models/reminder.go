package models

import (
	"sort"
	"time"
)

// Notification methods as the user selects them. On the wire the push
// method is renamed to "push_notification"; see ReminderPayload.
const (
	MethodEmail = "email"
	MethodSMS   = "sms"
	MethodPush  = "push"
)

// MethodPushWire is the API token for the push method.
const MethodPushWire = "push_notification"

// MedicineTypes is the fixed enum accepted by the reminder endpoints.
var MedicineTypes = []string{
	"tablet", "capsule", "syrup", "injection", "drops", "inhaler", "cream", "other",
}

// ValidMedicineType reports whether t is one of MedicineTypes.
func ValidMedicineType(t string) bool {
	for _, m := range MedicineTypes {
		if m == t {
			return true
		}
	}
	return false
}

// DoseSchedule is one {amount, time} pair within a reminder's daily dosing
// plan. Time is "HH:MM" in form state and "HH:MM:SS" on the wire.
type DoseSchedule struct {
	DoseNumber int     `json:"dose_number"`
	Amount     float64 `json:"amount"`
	Time       string  `json:"time"`
}

// Reminder is a scheduled medicine-dosing configuration as returned by the
// reminder endpoints.
type Reminder struct {
	ID                  int64          `json:"id"`
	MedicineName        string         `json:"medicine_name"`
	MedicineType        string         `json:"medicine_type"`
	DoseCountDaily      int            `json:"dose_count_daily"`
	NotificationMethods []string       `json:"notification_methods"`
	StartDate           string         `json:"start_date"`
	Quantity            int            `json:"quantity"`
	InitialQuantity     int            `json:"initial_quantity"`
	RefillReminder      bool           `json:"refill_reminder"`
	RefillThreshold     int            `json:"refill_threshold,omitempty"`
	RefillReminderSent  bool           `json:"refill_reminder_sent"`
	IsActive            bool           `json:"is_active"`
	DoseSchedules       []DoseSchedule `json:"dose_schedules"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// ReminderPayload is the create/update body for POST|PUT /reminders/.
// RefillThreshold is a pointer so it is omitted entirely when refill
// reminders are disabled; PhoneNumber is omitted when empty rather than
// sent as an empty string.
type ReminderPayload struct {
	MedicineName        string         `json:"medicine_name"`
	MedicineType        string         `json:"medicine_type"`
	DoseCountDaily      int            `json:"dose_count_daily"`
	NotificationMethods []string       `json:"notification_methods"`
	StartDate           string         `json:"start_date"`
	Quantity            int            `json:"quantity"`
	RefillReminder      bool           `json:"refill_reminder"`
	RefillThreshold     *int           `json:"refill_threshold,omitempty"`
	DoseSchedules       []DoseSchedule `json:"dose_schedules"`
	PhoneNumber         string         `json:"phone_number,omitempty"`
}

// TodayDose is one entry of GET /reminders/today_schedule/.
type TodayDose struct {
	ReminderID   int64   `json:"reminder_id"`
	MedicineName string  `json:"medicine_name"`
	DoseNumber   int     `json:"dose_number"`
	Amount       float64 `json:"amount"`
	Time         string  `json:"time"`
	Taken        bool    `json:"taken"`
}

// DuplicateTimeIndexes returns the indexes of every schedule entry whose
// time occurs more than once in the slice, not just second occurrences.
// Empty times are skipped; the "time required" check reports those.
func DuplicateTimeIndexes(schedules []DoseSchedule) []int {
	byTime := make(map[string][]int, len(schedules))
	for i, s := range schedules {
		if s.Time == "" {
			continue
		}
		byTime[s.Time] = append(byTime[s.Time], i)
	}

	var dup []int
	for _, idxs := range byTime {
		if len(idxs) > 1 {
			dup = append(dup, idxs...)
		}
	}
	sort.Ints(dup)
	return dup
}
