// Package notify manages the push-notification lifecycle on the client:
// platform permission, the device messaging token, its registration with
// the backend, and the foreground message listener.
package notify

import "context"

// Message is a push message delivered while the app is in the foreground.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Provider abstracts the push-messaging platform. The real delivery
// infrastructure is an external collaborator; the client only needs these
// three operations.
type Provider interface {
	// RequestPermission asks the platform for notification permission.
	// Idempotent: once granted or denied, repeat calls re-check the stored
	// decision instead of prompting again.
	RequestPermission(ctx context.Context) (bool, error)

	// Token returns the device messaging token, minting one if needed.
	Token(ctx context.Context) (string, error)

	// Subscribe registers a foreground message handler and returns the
	// unsubscribe func releasing it.
	Subscribe(handler func(Message)) (func(), error)
}
