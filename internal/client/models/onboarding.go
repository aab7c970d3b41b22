package models

// OnboardingDraft holds the personal details collected before or around
// registration. It is transient: created while the onboarding wizard runs,
// consumed once attached to a registration call or submitted to the
// onboarding endpoint, then cleared.
type OnboardingDraft struct {
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	Birthdate string `json:"birthdate"`
}

// Empty reports whether no field of the draft has been filled yet.
func (d OnboardingDraft) Empty() bool {
	return d.Name == "" && d.Gender == "" && d.Birthdate == ""
}
