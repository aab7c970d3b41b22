package wizard

import (
	"strings"
	"unicode/utf8"

	"github.com/mtereshin/medtrack/internal/client/models"
)

// FieldErrors maps a field name to its validation message. An empty map
// means the step passed validation.
type FieldErrors map[string]string

// OnboardingStep identifies a position in the onboarding flow.
type OnboardingStep int

const (
	OnboardingStepName OnboardingStep = iota
	OnboardingStepDetails
	OnboardingStepComplete
)

// OnboardingWizard collects the personal details asked for around
// registration: Step0 (name) → Step1 (gender, birthdate) → Complete.
type OnboardingWizard struct {
	step  OnboardingStep
	Draft models.OnboardingDraft
}

// NewOnboardingWizard starts the flow. A previously saved draft may be
// passed in so a reload re-shows earlier answers.
func NewOnboardingWizard(prior *models.OnboardingDraft) *OnboardingWizard {
	w := &OnboardingWizard{}
	if prior != nil {
		w.Draft = *prior
	}
	return w
}

// Step returns the current step.
func (w *OnboardingWizard) Step() OnboardingStep { return w.step }

// Complete reports whether the wizard reached its terminal state.
func (w *OnboardingWizard) Complete() bool { return w.step == OnboardingStepComplete }

// Next validates the current step and advances on success. The returned
// map is empty when the transition happened.
func (w *OnboardingWizard) Next() FieldErrors {
	errs := w.ValidateStep(w.step)
	if len(errs) > 0 {
		return errs
	}
	if w.step < OnboardingStepComplete {
		w.step++
	}
	return errs
}

// Back moves one step backwards. Always allowed; a no-op on the first step.
func (w *OnboardingWizard) Back() {
	if w.step > OnboardingStepName && w.step < OnboardingStepComplete {
		w.step--
	}
}

// ValidateStep checks only the fields owned by the given step.
func (w *OnboardingWizard) ValidateStep(step OnboardingStep) FieldErrors {
	errs := FieldErrors{}

	switch step {
	case OnboardingStepName:
		name := strings.TrimSpace(w.Draft.Name)
		if name == "" {
			errs["name"] = "name is required"
		} else if utf8.RuneCountInString(name) < 2 {
			errs["name"] = "name must be at least 2 characters"
		}

	case OnboardingStepDetails:
		if !models.ValidGender(w.Draft.Gender) {
			errs["gender"] = "gender must be one of: male, female, other"
		}
		if strings.TrimSpace(w.Draft.Birthdate) == "" {
			errs["birthdate"] = "birthdate is required"
		}
	}

	return errs
}
