package push

import (
	"context"
	"errors"
	"log"
)

// ErrTokenNotRegistered signals a permanently invalid device token. Callers
// react by clearing the stored token for that user.
var ErrTokenNotRegistered = errors.New("push token not registered")

type (
	// Notifier delivers a push notification to a device token. Delivery is
	// fire-and-forget: callers log failures and never propagate them.
	Notifier interface {
		Notify(ctx context.Context, token, title, body string, data map[string]string) error
	}

	logNotifier struct{}
)

// NewLogNotifier returns a Notifier that only logs. The delivery transport is
// provided by the surrounding platform; this keeps the side-effect contract
// (including token-cleanup on ErrTokenNotRegistered) testable without it.
func NewLogNotifier() Notifier {
	return &logNotifier{}
}

func (n *logNotifier) Notify(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return ErrTokenNotRegistered
	}
	log.Printf("push: notify token=%s title=%q body=%q data=%v", token, title, body, data)
	return nil
}
