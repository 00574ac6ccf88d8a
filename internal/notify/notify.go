// Package notify delivers best-effort email notifications for marketplace
// state changes. Dispatches are fire-and-forget: they run outside every
// transaction, and failures are logged, never surfaced to callers.
package notify

import (
	"os"
	"sync"

	"go.uber.org/zap"

	"HandyHire-backend/internal/logger"
)

// Kind selects the notification template.
type Kind string

var (
	// KindApplicationReceived is sent to the employer contact when a
	// candidate applies
	KindApplicationReceived Kind = "application-received"
	// KindApplicationAccepted is sent to the candidate when an employer
	// starts reviewing their application
	KindApplicationAccepted Kind = "application-accepted"
	// KindNewMessage is sent to the counterparty side of a conversation
	KindNewMessage Kind = "new-message"
)

// Payload carries template values (posting title, sender name, ...).
type Payload map[string]string

// Dispatcher sends a notification to a single recipient address.
// Implementations must never block the caller on delivery.
type Dispatcher interface {
	Send(kind Kind, recipient string, payload Payload)
}

// FromEnv picks the SMTP dispatcher when SMTP_HOST is configured and falls
// back to log-only delivery otherwise.
func FromEnv() Dispatcher {
	if os.Getenv("SMTP_HOST") != "" {
		return NewSMTPDispatcher()
	}
	return &LogDispatcher{}
}

// LogDispatcher writes notifications to the log instead of delivering them.
// Used in development and tests.
type LogDispatcher struct{}

// Send logs the notification.
func (d *LogDispatcher) Send(kind Kind, recipient string, payload Payload) {
	logger.Get().Info("notification dispatched",
		zap.String("kind", string(kind)),
		zap.String("recipient", recipient),
		zap.Any("payload", payload),
	)
}

// Recorder captures dispatched notifications for assertions in tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Recorded
}

// Recorded is one captured dispatch.
type Recorded struct {
	Kind      Kind
	Recipient string
	Payload   Payload
}

// Send records the notification.
func (r *Recorder) Send(kind Kind, recipient string, payload Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Recorded{Kind: kind, Recipient: recipient, Payload: payload})
}

// Sent returns a copy of everything recorded so far.
func (r *Recorder) Sent() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.sent))
	copy(out, r.sent)
	return out
}

// CountKind returns how many dispatches of the given kind were recorded.
func (r *Recorder) CountKind(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.Kind == kind {
			n++
		}
	}
	return n
}
