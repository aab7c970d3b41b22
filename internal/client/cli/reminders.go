package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mtereshin/medtrack/internal/client/services"
	"github.com/mtereshin/medtrack/internal/common"
)

// parseID converts a REPL argument into an entity id.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// reportActionErr prints action failures in user terms.
func reportActionErr(err error) {
	switch {
	case errors.Is(err, services.ErrActionPending):
		fmt.Println("Another action is still running for this item, try again in a moment.")
	case errors.Is(err, common.ErrNotFound):
		fmt.Println("Not found.")
	case errors.Is(err, common.ErrUnavailable):
		fmt.Println("Server unavailable, try again later.")
	default:
		fmt.Println("Error:", err)
	}
}

// AddReminder runs the creation wizard and submits the result.
func (a *App) AddReminder(ctx context.Context) error {
	payload, err := a.runReminderWizard(ctx)
	if err != nil {
		return err
	}
	if payload == nil {
		return nil
	}

	created, err := a.reminders.Create(ctx, *payload)
	if err != nil {
		reportActionErr(err)
		return err
	}
	fmt.Printf("Reminder #%d created.\n", created.ID)
	return nil
}

// ListReminders prints the reminder overview.
func (a *App) ListReminders(ctx context.Context) error {
	reminders, err := a.reminders.List(ctx)
	if err != nil {
		reportActionErr(err)
		return err
	}
	if len(reminders) == 0 {
		fmt.Println("No reminders yet; use 'add' to create one.")
		return nil
	}

	for _, r := range reminders {
		status := "active"
		if !r.IsActive {
			status = "paused"
		}
		fmt.Printf("#%-4d %-20s %-8s %d/day, %d left (%s)\n",
			r.ID, r.MedicineName, r.MedicineType, r.DoseCountDaily, r.Quantity, status)
	}
	return nil
}

// ShowReminder prints one reminder in full.
func (a *App) ShowReminder(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		fmt.Println(err)
		return err
	}

	r, err := a.reminders.Get(ctx, id)
	if err != nil {
		reportActionErr(err)
		return err
	}

	fmt.Printf("Reminder #%d\n", r.ID)
	fmt.Printf("  Medicine:  %s (%s)\n", r.MedicineName, r.MedicineType)
	fmt.Printf("  Active:    %v\n", r.IsActive)
	fmt.Printf("  Start:     %s\n", r.StartDate)
	fmt.Printf("  Quantity:  %d (initial %d)\n", r.Quantity, r.InitialQuantity)
	fmt.Printf("  Notify:    %s\n", strings.Join(r.NotificationMethods, ", "))
	if r.RefillReminder {
		fmt.Printf("  Refill at: %d\n", r.RefillThreshold)
	}
	for _, s := range r.DoseSchedules {
		fmt.Printf("  Dose %d: %s, amount %g\n", s.DoseNumber, s.Time, s.Amount)
	}
	if action, busy := a.reminders.Pending(r.ID); busy {
		fmt.Printf("  (%s in progress)\n", action)
	}
	return nil
}

// EditReminder loads the reminder into a draft, prompts field by field
// (empty answers keep current values) and saves. The save re-fetches, so
// the printed result is the server-confirmed state.
func (a *App) EditReminder(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		fmt.Println(err)
		return err
	}

	r, err := a.reminders.Get(ctx, id)
	if err != nil {
		reportActionErr(err)
		return err
	}
	draft := services.DraftFromReminder(r)

	name, err := getSimpleText(a.reader, fmt.Sprintf("Medicine name [%s] (empty to keep)", draft.MedicineName), os.Stdout)
	if err != nil {
		return err
	}
	if name != "" {
		draft.MedicineName = name
	}

	quantity, err := getSimpleText(a.reader, fmt.Sprintf("Quantity [%d] (empty to keep)", draft.Quantity), os.Stdout)
	if err != nil {
		return err
	}
	if quantity != "" {
		v, convErr := strconv.Atoi(quantity)
		if convErr != nil {
			fmt.Println("Quantity must be a number.")
			return convErr
		}
		draft.Quantity = v
	}

	for i := range draft.DoseSchedules {
		s := &draft.DoseSchedules[i]
		at, err := getSimpleText(a.reader, fmt.Sprintf("Dose %d time [%s] (empty to keep)", s.DoseNumber, s.Time), os.Stdout)
		if err != nil {
			return err
		}
		if at != "" {
			if len(at) == len("15:04") {
				at += ":00"
			}
			s.Time = at
		}
	}

	saved, err := a.reminders.Save(ctx, id, draft)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			fmt.Println("Not saved:", err)
		} else {
			reportActionErr(err)
		}
		return err
	}
	fmt.Printf("Reminder #%d saved.\n", saved.ID)
	return nil
}

// ActivateReminder resumes a paused reminder.
func (a *App) ActivateReminder(ctx context.Context, arg string) error {
	return a.reminderAction(ctx, arg, "activated", a.reminders.Activate)
}

// DeactivateReminder pauses a reminder without deleting it.
func (a *App) DeactivateReminder(ctx context.Context, arg string) error {
	return a.reminderAction(ctx, arg, "paused", a.reminders.Deactivate)
}

// DeleteReminder removes a reminder after confirmation.
func (a *App) DeleteReminder(ctx context.Context, arg string) error {
	ok, err := getConfirm(a.reader, "Delete this reminder?", os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return a.reminderAction(ctx, arg, "deleted", a.reminders.Delete)
}

func (a *App) reminderAction(ctx context.Context, arg, done string, fn func(context.Context, int64) error) error {
	id, err := parseID(arg)
	if err != nil {
		fmt.Println(err)
		return err
	}
	if err := fn(ctx, id); err != nil {
		reportActionErr(err)
		return err
	}
	fmt.Printf("Reminder #%d %s.\n", id, done)
	return nil
}

// TakeDose records a taken dose, decrementing the remaining quantity.
func (a *App) TakeDose(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		fmt.Println(err)
		return err
	}

	answer, err := getSimpleText(a.reader, "Amount taken [1]", os.Stdout)
	if err != nil {
		return err
	}
	amount := 1.0
	if answer != "" {
		if v, convErr := strconv.ParseFloat(answer, 64); convErr == nil {
			amount = v
		} else {
			fmt.Println("Amount must be a number.")
			return convErr
		}
	}

	r, err := a.reminders.Take(ctx, id, amount)
	if err != nil {
		reportActionErr(err)
		return err
	}
	fmt.Printf("Recorded. %d left of %s.\n", r.Quantity, r.MedicineName)
	if r.RefillReminder && r.Quantity <= r.RefillThreshold {
		fmt.Println("Running low — time to refill.")
	}
	return nil
}

// Today prints the day's dosing schedule.
func (a *App) Today(ctx context.Context) error {
	doses, err := a.reminders.Today(ctx)
	if err != nil {
		reportActionErr(err)
		return err
	}
	if len(doses) == 0 {
		fmt.Println("Nothing scheduled for today.")
		return nil
	}

	for _, d := range doses {
		mark := " "
		if d.Taken {
			mark = "x"
		}
		fmt.Printf("[%s] %s  %-20s amount %g (reminder #%d)\n",
			mark, displayTime(d.Time), d.MedicineName, d.Amount, d.ReminderID)
	}
	return nil
}

// displayTime trims the seconds off a wire "HH:MM:SS" time.
func displayTime(t string) string {
	if len(t) == len("15:04:05") {
		return t[:len("15:04")]
	}
	return t
}
