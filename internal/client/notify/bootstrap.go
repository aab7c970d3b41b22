package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mtereshin/medtrack/internal/client/repositories/snapshot"
	"github.com/mtereshin/medtrack/internal/logging"
)

// RegistrationState tracks the device-token registration lifecycle. The
// explicit state machine replaces an ad hoc "already registered" boolean:
// re-entrancy rules are visible and testable.
type RegistrationState int

const (
	StateIdle RegistrationState = iota
	StateRegistering
	StateRegistered
)

func (s RegistrationState) String() string {
	switch s {
	case StateRegistering:
		return "registering"
	case StateRegistered:
		return "registered"
	default:
		return "idle"
	}
}

const keyDeviceID = "device_id"

// TokenAPI is the backend surface the bootstrap needs.
type TokenAPI interface {
	RegisterDeviceToken(ctx context.Context, token, deviceID string) error
	UnregisterDeviceToken(ctx context.Context, token, deviceID string) error
}

// Bootstrap registers the push token with the backend exactly once per
// authenticated session and keeps the foreground listener alive while
// authenticated. On logout the state resets so the next login re-registers.
type Bootstrap struct {
	mu          sync.Mutex
	state       RegistrationState
	token       string
	unsubscribe func()

	provider  Provider
	api       TokenAPI
	repo      snapshot.Repository
	log       logging.Logger
	onMessage func(Message)
}

// NewBootstrap wires the lifecycle. onMessage receives foreground push
// messages while a session is active.
func NewBootstrap(provider Provider, api TokenAPI, repo snapshot.Repository, log logging.Logger, onMessage func(Message)) *Bootstrap {
	return &Bootstrap{
		provider:  provider,
		api:       api,
		repo:      repo,
		log:       log,
		onMessage: onMessage,
	}
}

// State returns the current registration state.
func (b *Bootstrap) State() RegistrationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// HandleAuthChange reacts to session transitions: on authentication it
// registers the token (once) and establishes the listener; on loss of
// authentication it tears both down.
func (b *Bootstrap) HandleAuthChange(ctx context.Context, authenticated bool) error {
	if !authenticated {
		b.Teardown(ctx)
		return nil
	}

	if err := b.ensureRegistered(ctx); err != nil {
		return err
	}
	return b.ensureListener()
}

// ensureRegistered performs the one-shot token registration. Calls while
// already registering or registered are no-ops; that is the guard that
// previously lived in a mutable boolean flag.
func (b *Bootstrap) ensureRegistered(ctx context.Context) error {
	b.mu.Lock()
	if b.state != StateIdle {
		b.mu.Unlock()
		return nil
	}
	b.state = StateRegistering
	b.mu.Unlock()

	err := b.register(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.state = StateIdle
		return err
	}
	b.state = StateRegistered
	return nil
}

func (b *Bootstrap) register(ctx context.Context) error {
	deviceID, err := b.deviceID(ctx)
	if err != nil {
		return fmt.Errorf("device id: %w", err)
	}

	token, err := b.provider.Token(ctx)
	if err != nil {
		return fmt.Errorf("messaging token: %w", err)
	}

	if err := b.api.RegisterDeviceToken(ctx, token, deviceID); err != nil {
		return fmt.Errorf("register device token: %w", err)
	}

	b.mu.Lock()
	b.token = token
	b.mu.Unlock()

	b.log.Info(ctx, "device token registered", "device_id", deviceID)
	return nil
}

// ensureListener (re)establishes the foreground message listener. The
// unsubscribe handle is the sole resource requiring guaranteed release.
func (b *Bootstrap) ensureListener() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.unsubscribe != nil {
		return nil
	}

	unsub, err := b.provider.Subscribe(b.onMessage)
	if err != nil {
		return fmt.Errorf("subscribe to messages: %w", err)
	}
	b.unsubscribe = unsub
	return nil
}

// Teardown releases the listener, best-effort unregisters the token with
// the backend and resets the guard so a subsequent login registers again.
func (b *Bootstrap) Teardown(ctx context.Context) {
	b.mu.Lock()
	unsub := b.unsubscribe
	b.unsubscribe = nil
	state := b.state
	token := b.token
	b.token = ""
	b.state = StateIdle
	b.mu.Unlock()

	if unsub != nil {
		unsub()
	}

	if state == StateRegistered && token != "" {
		deviceID, err := b.deviceID(ctx)
		if err == nil {
			if err := b.api.UnregisterDeviceToken(ctx, token, deviceID); err != nil {
				b.log.Warn(ctx, "device token unregister failed", "error", err)
			}
		}
	}
}

// deviceID returns the stable identifier of this installation, minting and
// persisting one on first use.
func (b *Bootstrap) deviceID(ctx context.Context) (string, error) {
	data, err := b.repo.Get(ctx, keyDeviceID)
	if err != nil {
		return "", err
	}
	if len(data) > 0 {
		return string(data), nil
	}

	id := uuid.NewString()
	if err := b.repo.Set(ctx, keyDeviceID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}
