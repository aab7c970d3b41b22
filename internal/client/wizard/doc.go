// Package wizard implements the multi-step form state machines of the
// MedTrack client: the two-step onboarding wizard and the five-step
// reminder wizard.
//
// Each wizard validates only the fields owned by the current step when
// advancing; moving backwards is always allowed and keeps previously
// entered values. Validation failures never abort the wizard, they are
// reported as field errors for the caller to render inline.
package wizard
