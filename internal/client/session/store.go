// Package session owns the client-side session state: the authenticated
// user, the isAuthenticated flag and the transient onboarding draft.
//
// Views never read-modify-write this state directly; the typed action
// methods are the only mutation surface. Every mutation is mirrored to the
// local snapshot database in one transaction so the session survives a
// process restart, and subscribers are notified after the store settles.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mtereshin/medtrack/internal/client/models"
	"github.com/mtereshin/medtrack/internal/client/repositories/snapshot"
	"github.com/mtereshin/medtrack/internal/dbx"
	"github.com/mtereshin/medtrack/internal/logging"
)

// Snapshot keys in the local database.
const (
	keySession    = "session"
	keyOnboarding = "onboarding"
)

// State is an immutable view of the store handed to subscribers.
type State struct {
	User            *models.User
	IsAuthenticated bool
	Onboarding      *models.OnboardingDraft
}

// persistedSession is the serialized form of the session part of the state.
type persistedSession struct {
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"is_authenticated"`
}

// Store is the session/onboarding state container. Safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	user          *models.User
	authenticated bool
	draft         *models.OnboardingDraft

	db  *sql.DB
	log logging.Logger

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// NewStore builds a Store persisting into db (the migrated snapshot
// database).
func NewStore(db *sql.DB, log logging.Logger) *Store {
	return &Store{db: db, log: log, subs: make(map[int]func(State))}
}

// Subscribe registers fn to run after every state change and returns an
// unsubscribe func.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Current returns the present state.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// IsAuthenticated reports whether a user session is active.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// User returns the current user, or nil when logged out.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Onboarding returns the current onboarding draft, or nil.
func (s *Store) Onboarding() *models.OnboardingDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// SetUser marks the session authenticated with the given user.
func (s *Store) SetUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	s.user = user
	s.authenticated = user != nil
	err := s.persistLocked(ctx)
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
	return err
}

// UpdateUser replaces the user object while keeping the session
// authenticated. Used after profile edits; the argument is the
// server-confirmed user.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	return s.SetUser(ctx, user)
}

// ClearUser drops the user and the authenticated flag, e.g. on logout or
// session expiry.
func (s *Store) ClearUser(ctx context.Context) error {
	return s.SetUser(ctx, nil)
}

// SetOnboardingData stores the onboarding draft so it survives a restart
// before registration completes.
func (s *Store) SetOnboardingData(ctx context.Context, draft models.OnboardingDraft) error {
	s.mu.Lock()
	s.draft = &draft
	err := s.persistLocked(ctx)
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
	return err
}

// ClearOnboarding discards the draft once it has been consumed by
// registration or the onboarding endpoint.
func (s *Store) ClearOnboarding(ctx context.Context) error {
	s.mu.Lock()
	s.draft = nil
	err := s.persistLocked(ctx)
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
	return err
}

// MarkOnboardingComplete flips the flag on the stored user after the server
// reports onboarding as done, and drops the now-consumed draft.
func (s *Store) MarkOnboardingComplete(ctx context.Context) error {
	s.mu.Lock()
	if s.user != nil {
		u := *s.user
		u.OnboardingComplete = true
		s.user = &u
	}
	s.draft = nil
	err := s.persistLocked(ctx)
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
	return err
}

// Reset clears the whole store: user, flag and draft. Used on logout.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.draft = nil
	err := s.persistLocked(ctx)
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
	return err
}

// Load rehydrates the store from the snapshot database. Missing or corrupt
// snapshots leave the store empty; a stale snapshot is an expected
// condition, not an error.
func (s *Store) Load(ctx context.Context) {
	repo := snapshot.NewSQLiteRepository(s.db)

	s.mu.Lock()
	defer s.mu.Unlock()

	if data, err := repo.Get(ctx, keySession); err == nil && data != nil {
		var ps persistedSession
		if err := json.Unmarshal(data, &ps); err == nil {
			s.user = ps.User
			s.authenticated = ps.IsAuthenticated
		} else {
			s.log.Warn(ctx, "discarding corrupt session snapshot", "error", err)
		}
	}

	if data, err := repo.Get(ctx, keyOnboarding); err == nil && data != nil {
		var draft models.OnboardingDraft
		if err := json.Unmarshal(data, &draft); err == nil {
			s.draft = &draft
		}
	}
}

// persistLocked writes both snapshot keys in a single transaction so a
// crash cannot leave the session and the draft out of step. Caller holds mu.
func (s *Store) persistLocked(ctx context.Context) error {
	sessionData, err := json.Marshal(persistedSession{User: s.user, IsAuthenticated: s.authenticated})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	var draftData []byte
	if s.draft != nil {
		draftData, err = json.Marshal(s.draft)
		if err != nil {
			return fmt.Errorf("encode onboarding draft: %w", err)
		}
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := snapshot.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keySession, sessionData); err != nil {
			return err
		}
		if draftData == nil {
			return repo.Delete(ctx, keyOnboarding)
		}
		return repo.Set(ctx, keyOnboarding, draftData)
	})
}

func (s *Store) stateLocked() State {
	return State{User: s.user, IsAuthenticated: s.authenticated, Onboarding: s.draft}
}

func (s *Store) notify(state State) {
	s.subMu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
