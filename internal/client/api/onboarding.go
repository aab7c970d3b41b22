package api

import (
	"context"
	"net/http"

	"github.com/mtereshin/medtrack/internal/client/models"
)

type onboardingStatusResponse struct {
	OnboardingComplete bool `json:"onboarding_complete"`
}

// SubmitOnboarding sends the collected personal details for an account
// that registered without them.
func (c *Client) SubmitOnboarding(ctx context.Context, draft models.OnboardingDraft) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/onboarding/", draft, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// OnboardingStatus reports whether the server considers onboarding complete.
func (c *Client) OnboardingStatus(ctx context.Context) (bool, error) {
	var resp onboardingStatusResponse
	if err := c.do(ctx, http.MethodGet, "/onboarding/status/", nil, &resp); err != nil {
		return false, err
	}
	return resp.OnboardingComplete, nil
}
