// Package models defines the wire types exchanged with the MedTrack REST API
// and the client-side invariants over them.
package models

import "time"

// Gender values accepted by the onboarding endpoint.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// ValidGender reports whether g is one of the accepted gender values.
func ValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// User is the authenticated account as reported by GET /auth/me/.
type User struct {
	ID                 int64      `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Birthdate          string     `json:"birthdate,omitempty"`
	Gender             string     `json:"gender,omitempty"`
	Timezone           string     `json:"timezone,omitempty"`
	PhoneNumber        string     `json:"phone_number,omitempty"`
	OnboardingComplete bool       `json:"onboarding_complete"`
	DateJoined         time.Time  `json:"date_joined"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}
