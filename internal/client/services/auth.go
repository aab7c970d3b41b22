// Package services contains the application services of the MedTrack
// client, sitting between the CLI and the REST API. Each service depends
// on the narrow slice of the API it actually calls, so tests can stub the
// backend without a network.
package services

import (
	"context"

	"github.com/mtereshin/medtrack/internal/client/api"
	"github.com/mtereshin/medtrack/internal/client/models"
	"github.com/mtereshin/medtrack/internal/client/session"
	"github.com/mtereshin/medtrack/internal/logging"
)

// AuthAPI is the backend surface the auth service needs.
type AuthAPI interface {
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Register(ctx context.Context, req api.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	SubmitOnboarding(ctx context.Context, draft models.OnboardingDraft) (*models.User, error)
	OnboardingStatus(ctx context.Context) (bool, error)
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error
}

// AuthService is the single auth flow behind every presentation of login
// and registration, so no screen carries its own copy of the logic.
//
// Contract:
//   - Login/Register: authenticate and populate the session store.
//   - Bootstrap: one "who am I" probe at startup; a failure silently
//     clears any stale persisted session (expiry is expected, not an error).
//   - Logout: best-effort server logout, then reset all client state.
//   - SubmitOnboarding: push the stored draft and mark completion.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Register(ctx context.Context, email string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	Bootstrap(ctx context.Context)
	SubmitOnboarding(ctx context.Context) (*models.User, error)
	OnboardingStatus(ctx context.Context) (bool, error)
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error
}

type authService struct {
	api   AuthAPI
	store *session.Store
	log   logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client
// and session store.
func NewAuthService(api AuthAPI, store *session.Store, log logging.Logger) AuthService {
	return &authService{api: api, store: store, log: log}
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	user, err := a.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := a.store.SetUser(ctx, user); err != nil {
		a.log.Warn(ctx, "session snapshot save failed", "error", err)
	}
	if user.OnboardingComplete {
		_ = a.store.ClearOnboarding(ctx)
	}
	return user, nil
}

// Register creates the account, attaching the onboarding draft from the
// store when one was collected beforehand. On success the draft has been
// consumed and is cleared.
func (a *authService) Register(ctx context.Context, email string, password []byte) (*models.User, error) {
	req := api.RegisterRequest{Email: email, Password: string(password)}
	if draft := a.store.Onboarding(); draft != nil {
		req.Name = draft.Name
		req.Gender = draft.Gender
		req.Birthdate = draft.Birthdate
	}

	user, err := a.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := a.store.SetUser(ctx, user); err != nil {
		a.log.Warn(ctx, "session snapshot save failed", "error", err)
	}
	_ = a.store.ClearOnboarding(ctx)
	return user, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		// The server session may already be gone; client state is reset
		// regardless.
		a.log.Warn(ctx, "server logout failed", "error", err)
	}
	return a.store.Reset(ctx)
}

// Bootstrap probes /auth/me/ once at startup. Success refreshes the
// persisted session with server truth; failure clears it silently.
func (a *authService) Bootstrap(ctx context.Context) {
	user, err := a.api.Me(ctx)
	if err != nil {
		a.log.Debug(ctx, "session bootstrap: no active session", "error", err)
		_ = a.store.ClearUser(ctx)
		return
	}

	_ = a.store.SetUser(ctx, user)
	if user.OnboardingComplete {
		_ = a.store.MarkOnboardingComplete(ctx)
	}
}

// SubmitOnboarding sends the stored draft to the onboarding endpoint and
// marks completion on success.
func (a *authService) SubmitOnboarding(ctx context.Context) (*models.User, error) {
	draft := a.store.Onboarding()
	if draft == nil {
		return nil, nil
	}

	user, err := a.api.SubmitOnboarding(ctx, *draft)
	if err != nil {
		return nil, err
	}

	_ = a.store.SetUser(ctx, user)
	_ = a.store.MarkOnboardingComplete(ctx)
	return user, nil
}

// OnboardingStatus asks the server whether onboarding is complete. The
// server is the source of truth: a "complete" answer updates the cached
// flag so the client stops offering the flow.
func (a *authService) OnboardingStatus(ctx context.Context) (bool, error) {
	complete, err := a.api.OnboardingStatus(ctx)
	if err != nil {
		return false, err
	}
	if complete {
		_ = a.store.MarkOnboardingComplete(ctx)
	}
	return complete, nil
}

func (a *authService) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*models.User, error) {
	user, err := a.api.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	_ = a.store.UpdateUser(ctx, user)
	return user, nil
}

func (a *authService) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error {
	return a.api.ChangePassword(ctx, oldPassword, newPassword)
}
