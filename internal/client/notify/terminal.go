package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mtereshin/medtrack/internal/client/repositories/snapshot"
)

// Permission decisions persisted under keyPermission.
const (
	keyPermission = "notify_permission"
	keyToken      = "notify_token"

	decisionGranted = "granted"
	decisionDenied  = "denied"
)

// TerminalProvider is the Provider implementation for the CLI. The
// permission prompt is asked on the terminal exactly once; the decision and
// the minted token are persisted so later runs re-check instead of
// re-prompting, mirroring a platform permission store.
type TerminalProvider struct {
	repo   snapshot.Repository
	prompt func(question string) (bool, error)

	mu       sync.Mutex
	handlers map[int]func(Message)
	nextID   int
}

// NewTerminalProvider builds a provider asking permission via prompt.
func NewTerminalProvider(repo snapshot.Repository, prompt func(question string) (bool, error)) *TerminalProvider {
	return &TerminalProvider{
		repo:     repo,
		prompt:   prompt,
		handlers: make(map[int]func(Message)),
	}
}

// RequestPermission returns the stored decision when one exists; otherwise
// it prompts once and persists the answer.
func (p *TerminalProvider) RequestPermission(ctx context.Context) (bool, error) {
	stored, err := p.repo.Get(ctx, keyPermission)
	if err != nil {
		return false, err
	}
	switch string(stored) {
	case decisionGranted:
		return true, nil
	case decisionDenied:
		return false, nil
	}

	granted, err := p.prompt("Allow MedTrack to send notifications?")
	if err != nil {
		return false, err
	}

	decision := decisionDenied
	if granted {
		decision = decisionGranted
	}
	if err := p.repo.Set(ctx, keyPermission, []byte(decision)); err != nil {
		return false, err
	}
	return granted, nil
}

// Token returns the persisted messaging token, minting one on first use.
func (p *TerminalProvider) Token(ctx context.Context) (string, error) {
	stored, err := p.repo.Get(ctx, keyToken)
	if err != nil {
		return "", err
	}
	if len(stored) > 0 {
		return string(stored), nil
	}

	token := uuid.NewString()
	if err := p.repo.Set(ctx, keyToken, []byte(token)); err != nil {
		return "", err
	}
	return token, nil
}

// Subscribe registers a foreground handler and returns its release func.
func (p *TerminalProvider) Subscribe(handler func(Message)) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.handlers[id] = handler

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.handlers, id)
	}, nil
}

// Deliver fans a message out to the current subscribers.
func (p *TerminalProvider) Deliver(msg Message) {
	p.mu.Lock()
	handlers := make([]func(Message), 0, len(p.handlers))
	for _, h := range p.handlers {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
}
