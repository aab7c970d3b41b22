package notify

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtereshin/medtrack/internal/logging"
)

type memRepo struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemRepo() *memRepo { return &memRepo{m: make(map[string][]byte)} }

func (r *memRepo) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[key], nil
}

func (r *memRepo) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[key] = value
	return nil
}

func (r *memRepo) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
	return nil
}

func (r *memRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m = make(map[string][]byte)
	return nil
}

type fakeProvider struct {
	token        string
	tokenErr     error
	subscribed   int
	unsubscribed int
}

func (f *fakeProvider) RequestPermission(ctx context.Context) (bool, error) { return true, nil }

func (f *fakeProvider) Token(ctx context.Context) (string, error) {
	return f.token, f.tokenErr
}

func (f *fakeProvider) Subscribe(handler func(Message)) (func(), error) {
	f.subscribed++
	return func() { f.unsubscribed++ }, nil
}

type fakeTokenAPI struct {
	registered   []string
	unregistered []string
	registerErr  error
}

func (f *fakeTokenAPI) RegisterDeviceToken(ctx context.Context, token, deviceID string) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, token)
	return nil
}

func (f *fakeTokenAPI) UnregisterDeviceToken(ctx context.Context, token, deviceID string) error {
	f.unregistered = append(f.unregistered, token)
	return nil
}

func newTestBootstrap(provider *fakeProvider, api *fakeTokenAPI) *Bootstrap {
	log := logging.NewDefault(os.Stderr, slog.LevelError)
	return NewBootstrap(provider, api, newMemRepo(), log, func(Message) {})
}

func TestBootstrap_RegistersExactlyOncePerSession(t *testing.T) {
	provider := &fakeProvider{token: "tok-1"}
	api := &fakeTokenAPI{}
	b := newTestBootstrap(provider, api)
	ctx := context.Background()

	// Repeated auth notifications (re-renders) must not re-register.
	require.NoError(t, b.HandleAuthChange(ctx, true))
	require.NoError(t, b.HandleAuthChange(ctx, true))
	require.NoError(t, b.HandleAuthChange(ctx, true))

	assert.Equal(t, []string{"tok-1"}, api.registered)
	assert.Equal(t, StateRegistered, b.State())
	assert.Equal(t, 1, provider.subscribed, "listener established once")
}

func TestBootstrap_LogoutResetsGuardAndReleasesListener(t *testing.T) {
	provider := &fakeProvider{token: "tok-1"}
	api := &fakeTokenAPI{}
	b := newTestBootstrap(provider, api)
	ctx := context.Background()

	require.NoError(t, b.HandleAuthChange(ctx, true))
	require.NoError(t, b.HandleAuthChange(ctx, false))

	assert.Equal(t, StateIdle, b.State())
	assert.Equal(t, 1, provider.unsubscribed, "unsubscribe handle must be released")
	assert.Equal(t, []string{"tok-1"}, api.unregistered)

	// Next login registers again.
	require.NoError(t, b.HandleAuthChange(ctx, true))
	assert.Equal(t, []string{"tok-1", "tok-1"}, api.registered)
	assert.Equal(t, StateRegistered, b.State())
}

func TestBootstrap_RegistrationFailureReturnsToIdle(t *testing.T) {
	provider := &fakeProvider{token: "tok-1"}
	api := &fakeTokenAPI{registerErr: errors.New("backend down")}
	b := newTestBootstrap(provider, api)
	ctx := context.Background()

	require.Error(t, b.HandleAuthChange(ctx, true))
	assert.Equal(t, StateIdle, b.State(), "failed registration may be retried")

	api.registerErr = nil
	require.NoError(t, b.HandleAuthChange(ctx, true))
	assert.Equal(t, StateRegistered, b.State())
}

func TestBootstrap_DeviceIDIsStable(t *testing.T) {
	provider := &fakeProvider{token: "tok-1"}
	api := &fakeTokenAPI{}
	b := newTestBootstrap(provider, api)
	ctx := context.Background()

	first, err := b.deviceID(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := b.deviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTerminalProvider_PermissionPromptedOnce(t *testing.T) {
	repo := newMemRepo()
	prompts := 0
	p := NewTerminalProvider(repo, func(string) (bool, error) {
		prompts++
		return true, nil
	})
	ctx := context.Background()

	granted, err := p.RequestPermission(ctx)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = p.RequestPermission(ctx)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 1, prompts, "stored decision is re-checked, not re-prompted")
}

func TestTerminalProvider_DeniedDecisionSticks(t *testing.T) {
	repo := newMemRepo()
	p := NewTerminalProvider(repo, func(string) (bool, error) { return false, nil })
	ctx := context.Background()

	granted, err := p.RequestPermission(ctx)
	require.NoError(t, err)
	assert.False(t, granted)

	// Even if the user would now answer yes, the stored denial wins until
	// it is explicitly cleared.
	p.prompt = func(string) (bool, error) { return true, nil }
	granted, err = p.RequestPermission(ctx)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestTerminalProvider_SubscribeAndDeliver(t *testing.T) {
	p := NewTerminalProvider(newMemRepo(), nil)

	var got []Message
	unsub, err := p.Subscribe(func(m Message) { got = append(got, m) })
	require.NoError(t, err)

	p.Deliver(Message{Title: "Dose due", Body: "Paracetamol 08:00"})
	require.Len(t, got, 1)
	assert.Equal(t, "Dose due", got[0].Title)

	unsub()
	p.Deliver(Message{Title: "ignored"})
	assert.Len(t, got, 1)
}
