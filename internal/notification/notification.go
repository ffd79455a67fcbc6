package notification

import (
	"context"
	"log/slog"

	"github.com/verinova/onboarding/internal/profile"
)

const (
	// KindAccountCreated is sent once a signup has been stored.
	KindAccountCreated = "account_created"
)

// Message describes a notification payload addressed to a mobile number.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the logger instead of an SMS gateway.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		slog.String("kind", message.Kind),
		slog.String("destination", profile.MaskMobile(message.Destination)),
		slog.String("body", message.Body),
	)
	return nil
}
