package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/mtereshin/medtrack/internal/client/api"
	"github.com/mtereshin/medtrack/internal/client/models"
	"github.com/mtereshin/medtrack/internal/client/session"
	"github.com/mtereshin/medtrack/internal/logging"

	_ "modernc.org/sqlite"
)

// stubTextQueue replaces getSimpleText with a stub returning the given
// answers in order.
func stubTextQueue(t *testing.T, answers ...string) {
	t.Helper()
	orig := getSimpleText
	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			t.Fatalf("unexpected extra prompt (already consumed %d answers)", i)
		}
		a := answers[i]
		i++
		return a, nil
	}
	t.Cleanup(func() { getSimpleText = orig })
}

func stubPasswords(t *testing.T, passwords ...[]byte) {
	t.Helper()
	orig := getPassword
	i := 0
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if i >= len(passwords) {
			t.Fatalf("unexpected extra password prompt")
		}
		p := passwords[i]
		i++
		return append([]byte(nil), p...), nil
	}
	t.Cleanup(func() { getPassword = orig })
}

type fakeAuthService struct {
	loginEmail string
	loginPass  []byte
	loginUser  *models.User
	loginErr   error

	regEmail string
	regPass  []byte
	regUser  *models.User
	regErr   error

	logoutCalled bool

	statusComplete bool
	statusErr      error
	statusCalled   bool

	oldPass []byte
	newPass []byte
	pwErr   error
}

func (f *fakeAuthService) Login(_ context.Context, email string, pass []byte) (*models.User, error) {
	f.loginEmail, f.loginPass = email, append([]byte(nil), pass...)
	return f.loginUser, f.loginErr
}

func (f *fakeAuthService) Register(_ context.Context, email string, pass []byte) (*models.User, error) {
	f.regEmail, f.regPass = email, append([]byte(nil), pass...)
	return f.regUser, f.regErr
}

func (f *fakeAuthService) Logout(context.Context) error {
	f.logoutCalled = true
	return nil
}

func (f *fakeAuthService) Bootstrap(context.Context) {}

func (f *fakeAuthService) SubmitOnboarding(context.Context) (*models.User, error) {
	return nil, nil
}

func (f *fakeAuthService) OnboardingStatus(context.Context) (bool, error) {
	f.statusCalled = true
	return f.statusComplete, f.statusErr
}

func (f *fakeAuthService) UpdateProfile(context.Context, api.ProfileUpdate) (*models.User, error) {
	return nil, nil
}

func (f *fakeAuthService) ChangePassword(_ context.Context, oldPass, newPass []byte) error {
	f.oldPass = append([]byte(nil), oldPass...)
	f.newPass = append([]byte(nil), newPass...)
	return f.pwErr
}

func newTestApp(t *testing.T, auth *fakeAuthService) *App {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(`CREATE TABLE snapshot (key TEXT PRIMARY KEY, value BLOB NOT NULL);`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	log := logging.NewDefault(os.Stderr, slog.LevelError)
	return &App{
		log:    log,
		store:  session.NewStore(db, log),
		auth:   auth,
		reader: bufio.NewReader(os.Stdin),
	}
}

func TestRegister_RunsWizardAndSubmitsCredentials(t *testing.T) {
	f := &fakeAuthService{regUser: &models.User{ID: 1, Email: "alice@example.org"}}
	a := newTestApp(t, f)

	// Wizard answers (name, gender, birthdate), then the email prompt.
	stubTextQueue(t, "Alice", "female", "1990-04-12", "alice@example.org")
	stubPasswords(t, []byte("secret"))

	if err := a.Register(context.Background()); err != nil {
		t.Fatalf("Register err: %v", err)
	}
	if f.regEmail != "alice@example.org" {
		t.Fatalf("email mismatch: %q", f.regEmail)
	}
	if string(f.regPass) != "secret" {
		t.Fatalf("pass mismatch: %q", string(f.regPass))
	}

	draft := a.store.Onboarding()
	if draft == nil || draft.Name != "Alice" || draft.Gender != "female" {
		t.Fatalf("onboarding draft not stored: %+v", draft)
	}
}

func TestRegister_WizardRepromptsInvalidStep(t *testing.T) {
	f := &fakeAuthService{regUser: &models.User{ID: 1}}
	a := newTestApp(t, f)

	// Single-character name fails step 1 and is asked again.
	stubTextQueue(t, "A", "Alice", "female", "1990-04-12", "alice@example.org")
	stubPasswords(t, []byte("pw"))

	if err := a.Register(context.Background()); err != nil {
		t.Fatalf("Register err: %v", err)
	}
	if draft := a.store.Onboarding(); draft == nil || draft.Name != "Alice" {
		t.Fatalf("draft: %+v", draft)
	}
}

func TestLogin_Success(t *testing.T) {
	f := &fakeAuthService{loginUser: &models.User{ID: 1, Email: "u@example.org", OnboardingComplete: true}}
	a := newTestApp(t, f)

	stubTextQueue(t, "u@example.org")
	stubPasswords(t, []byte("pw"))

	if err := a.Login(context.Background()); err != nil {
		t.Fatalf("Login err: %v", err)
	}
	if f.loginEmail != "u@example.org" || string(f.loginPass) != "pw" {
		t.Fatalf("credentials mismatch: %q / %q", f.loginEmail, string(f.loginPass))
	}
}

func TestLogin_FailurePropagates(t *testing.T) {
	f := &fakeAuthService{loginErr: errors.New("invalid credentials")}
	a := newTestApp(t, f)

	stubTextQueue(t, "u@example.org")
	stubPasswords(t, []byte("bad"))

	if err := a.Login(context.Background()); err == nil {
		t.Fatalf("want error")
	}
}

func TestLogout_DelegatesToService(t *testing.T) {
	f := &fakeAuthService{}
	a := newTestApp(t, f)

	if err := a.Logout(context.Background()); err != nil {
		t.Fatalf("Logout err: %v", err)
	}
	if !f.logoutCalled {
		t.Fatalf("service Logout not called")
	}
}

func TestOnboard_ServerReportsComplete_SkipsWizard(t *testing.T) {
	f := &fakeAuthService{statusComplete: true}
	a := newTestApp(t, f)

	// Cached user has a stale incomplete flag; the server answer wins.
	if err := a.store.SetUser(context.Background(), &models.User{ID: 1, Email: "u@example.org"}); err != nil {
		t.Fatalf("SetUser err: %v", err)
	}

	// No wizard prompts stubbed: any prompt would fail the test.
	stubTextQueue(t)

	if err := a.Onboard(context.Background()); err != nil {
		t.Fatalf("Onboard err: %v", err)
	}
	if !f.statusCalled {
		t.Fatalf("server status not consulted")
	}
}

func TestChangePassword_PassesBothSecrets(t *testing.T) {
	f := &fakeAuthService{}
	a := newTestApp(t, f)

	stubPasswords(t, []byte("old"), []byte("new"))

	if err := a.ChangePassword(context.Background()); err != nil {
		t.Fatalf("ChangePassword err: %v", err)
	}
	if string(f.oldPass) != "old" || string(f.newPass) != "new" {
		t.Fatalf("passwords mismatch: %q / %q", string(f.oldPass), string(f.newPass))
	}
}
