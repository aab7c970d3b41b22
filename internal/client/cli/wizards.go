package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mtereshin/medtrack/internal/client/models"
	"github.com/mtereshin/medtrack/internal/client/wizard"
	"github.com/mtereshin/medtrack/internal/common"
)

// printFieldErrors shows validation messages in a stable order so the
// user sees the same output for the same mistakes.
func printFieldErrors(errs wizard.FieldErrors) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Printf("  %s: %s\n", f, errs[f])
	}
}

// runOnboardingWizard drives the two-step personal-details flow on the
// terminal, re-prompting a step until it validates. A previously stored
// draft pre-fills the answers.
func (a *App) runOnboardingWizard(ctx context.Context) (*models.OnboardingDraft, error) {
	w := wizard.NewOnboardingWizard(a.store.Onboarding())

	for !w.Complete() {
		switch w.Step() {
		case wizard.OnboardingStepName:
			name, err := getSimpleText(a.reader, "Step 1/2 — Your name", os.Stdout)
			if err != nil {
				return nil, err
			}
			if name != "" {
				w.Draft.Name = name
			}

		case wizard.OnboardingStepDetails:
			gender, err := getSimpleText(a.reader, "Step 2/2 — Gender (male/female/other)", os.Stdout)
			if err != nil {
				return nil, err
			}
			if gender != "" {
				w.Draft.Gender = strings.ToLower(gender)
			}

			birthdate, err := getSimpleText(a.reader, "Birthdate (YYYY-MM-DD)", os.Stdout)
			if err != nil {
				return nil, err
			}
			if birthdate != "" {
				w.Draft.Birthdate = birthdate
			}
		}

		if errs := w.Next(); len(errs) > 0 {
			printFieldErrors(errs)
		}
	}

	draft := w.Draft
	return &draft, nil
}

// runReminderWizard drives the five-step reminder flow. Each step loops
// until its own fields validate; "back" returns to the previous step with
// all answers kept. A nil result with a nil error means the user aborted
// at the review step.
func (a *App) runReminderWizard(ctx context.Context) (*models.ReminderPayload, error) {
	w := wizard.NewReminderWizard(a.store.User())

	for {
		var err error
		switch w.Step() {
		case wizard.StepMedicine:
			err = a.stepMedicine(w)
		case wizard.StepDosesAndNotifications:
			err = a.stepDosesAndNotifications(ctx, w)
		case wizard.StepTiming:
			err = a.stepTiming(w)
		case wizard.StepQuantityAndRefill:
			err = a.stepQuantityAndRefill(w)
		case wizard.StepReview:
			action, err := a.stepReview(w)
			if err != nil {
				return nil, err
			}
			switch action {
			case reviewSubmit:
				payload := w.BuildPayload()
				return &payload, nil
			case reviewAbort:
				return nil, nil
			case reviewBack:
				// Loop continues on the previous step.
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

// stepInput reads one answer for a wizard step, handling the shared
// "back" token. It reports whether the wizard moved backwards.
func (a *App) stepInput(prompt string) (value string, back bool, err error) {
	answer, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return "", false, err
	}
	if strings.EqualFold(answer, "back") {
		return "", true, nil
	}
	return answer, false, nil
}

func (a *App) stepMedicine(w *wizard.ReminderWizard) error {
	fmt.Println("Step 1/5 — Medicine details (type 'back' to go back)")

	name, back, err := a.stepInput(fmt.Sprintf("Medicine name [%s]", w.Form.MedicineName))
	if err != nil {
		return err
	}
	if back {
		w.Back()
		return nil
	}
	if name != "" {
		w.Form.MedicineName = name
	}

	mtype, back, err := a.stepInput(fmt.Sprintf("Type (%s) [%s]", strings.Join(models.MedicineTypes, "/"), w.Form.MedicineType))
	if err != nil {
		return err
	}
	if back {
		w.Back()
		return nil
	}
	if mtype != "" {
		w.Form.MedicineType = strings.ToLower(mtype)
	}

	if errs := w.Next(); len(errs) > 0 {
		printFieldErrors(errs)
	}
	return nil
}

func (a *App) stepDosesAndNotifications(ctx context.Context, w *wizard.ReminderWizard) error {
	fmt.Println("Step 2/5 — Doses and notifications")

	count, back, err := a.stepInput(fmt.Sprintf("Doses per day (%d-%d) [%d]", wizard.MinDoseCount, wizard.MaxDoseCount, w.Form.DoseCountDaily))
	if err != nil {
		return err
	}
	if back {
		w.Back()
		return nil
	}
	if count != "" {
		n, convErr := strconv.Atoi(count)
		if convErr != nil {
			fmt.Println("  dose count must be a number")
			return nil
		}
		// Changing the count regenerates the schedule slots.
		w.SetDoseCount(n)
	}

	methods, back, err := a.stepInput("Notification methods, comma separated (email,sms,push) " + methodSummary(w))
	if err != nil {
		return err
	}
	if back {
		w.Back()
		return nil
	}
	for _, m := range strings.Split(methods, ",") {
		m = strings.TrimSpace(strings.ToLower(m))
		switch m {
		case "":
		case models.MethodEmail, models.MethodSMS:
			w.ToggleMethod(m)
		case models.MethodPush:
			if err := w.TogglePush(ctx, a.provider); err != nil {
				if errors.Is(err, common.ErrPermissionDenied) {
					fmt.Println("  notification permission denied; push not enabled")
				} else {
					fmt.Println("  push setup failed:", err)
				}
			}
		default:
			fmt.Println("  unknown method:", m)
		}
	}

	if w.HasMethod(models.MethodSMS) {
		phone, back, err := a.stepInput(fmt.Sprintf("Phone number [%s]", w.Form.PhoneNumber))
		if err != nil {
			return err
		}
		if back {
			w.Back()
			return nil
		}
		if phone != "" {
			w.Form.PhoneNumber = phone
		}
	}

	if errs := w.Next(); len(errs) > 0 {
		printFieldErrors(errs)
	}
	return nil
}

func methodSummary(w *wizard.ReminderWizard) string {
	if len(w.Form.NotificationMethods) == 0 {
		return "[none]"
	}
	return "[" + strings.Join(w.Form.NotificationMethods, ",") + "]"
}

func (a *App) stepTiming(w *wizard.ReminderWizard) error {
	fmt.Println("Step 3/5 — Timing")

	start, back, err := a.stepInput(fmt.Sprintf("Start date (YYYY-MM-DD) [%s]", w.Form.StartDate))
	if err != nil {
		return err
	}
	if back {
		w.Back()
		return nil
	}
	if start != "" {
		w.Form.StartDate = start
	}

	for i := range w.Form.DoseSchedules {
		s := &w.Form.DoseSchedules[i]

		at, back, err := a.stepInput(fmt.Sprintf("Dose %d time (HH:MM) [%s]", s.DoseNumber, s.Time))
		if err != nil {
			return err
		}
		if back {
			w.Back()
			return nil
		}
		if at != "" {
			s.Time = at
		}

		amount, back, err := a.stepInput(fmt.Sprintf("Dose %d amount [%g]", s.DoseNumber, s.Amount))
		if err != nil {
			return err
		}
		if back {
			w.Back()
			return nil
		}
		if amount != "" {
			if v, convErr := strconv.ParseFloat(amount, 64); convErr == nil {
				s.Amount = v
			} else {
				fmt.Println("  amount must be a number")
			}
		}
	}

	if errs := w.Next(); len(errs) > 0 {
		printFieldErrors(errs)
	}
	return nil
}

func (a *App) stepQuantityAndRefill(w *wizard.ReminderWizard) error {
	fmt.Println("Step 4/5 — Quantity and refill")

	quantity, back, err := a.stepInput(fmt.Sprintf("Quantity on hand [%d]", w.Form.Quantity))
	if err != nil {
		return err
	}
	if back {
		w.Back()
		return nil
	}
	if quantity != "" {
		if v, convErr := strconv.Atoi(quantity); convErr == nil {
			w.Form.Quantity = v
		} else {
			fmt.Println("  quantity must be a number")
		}
	}
	// Re-check after every edit so the violation shows up right away,
	// not only when the user tries to advance.
	if errs := w.ValidateRefill(); len(errs) > 0 {
		printFieldErrors(errs)
	}

	refill, err := getConfirm(a.reader, "Enable refill reminder?", os.Stdout)
	if err != nil {
		return err
	}
	w.Form.RefillReminder = refill

	if refill {
		threshold, back, err := a.stepInput(fmt.Sprintf("Refill threshold [%d]", w.Form.RefillThreshold))
		if err != nil {
			return err
		}
		if back {
			w.Back()
			return nil
		}
		if threshold != "" {
			if v, convErr := strconv.Atoi(threshold); convErr == nil {
				w.Form.RefillThreshold = v
			} else {
				fmt.Println("  threshold must be a number")
			}
		}
		if errs := w.ValidateRefill(); len(errs) > 0 {
			printFieldErrors(errs)
		}
	}

	if errs := w.Next(); len(errs) > 0 {
		printFieldErrors(errs)
	}
	return nil
}

type reviewAction int

const (
	reviewSubmit reviewAction = iota
	reviewBack
	reviewAbort
)

// stepReview shows the summary and asks for confirmation.
func (a *App) stepReview(w *wizard.ReminderWizard) (reviewAction, error) {
	fmt.Println("Step 5/5 — Review")
	fmt.Printf("  Medicine:  %s (%s)\n", w.Form.MedicineName, w.Form.MedicineType)
	fmt.Printf("  Doses/day: %d\n", w.Form.DoseCountDaily)
	for _, s := range w.Form.DoseSchedules {
		fmt.Printf("    #%d at %s, amount %g\n", s.DoseNumber, s.Time, s.Amount)
	}
	fmt.Printf("  Notify:    %s\n", strings.Join(w.Form.NotificationMethods, ", "))
	fmt.Printf("  Start:     %s\n", w.Form.StartDate)
	fmt.Printf("  Quantity:  %d\n", w.Form.Quantity)
	if w.Form.RefillReminder {
		fmt.Printf("  Refill at: %d\n", w.Form.RefillThreshold)
	}

	answer, err := getSimpleText(a.reader, "Submit? (yes/back/abort)", os.Stdout)
	if err != nil {
		return reviewAbort, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return reviewSubmit, nil
	case "back":
		w.Back()
		return reviewBack, nil
	default:
		fmt.Println("Aborted.")
		return reviewAbort, nil
	}
}
