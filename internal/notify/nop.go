package notify

import (
	"context"
	"log/slog"
)

// NopSender logs messages instead of delivering them. Used when WhatsApp
// credentials are not configured, and in tests.
type NopSender struct {
	Logger *slog.Logger
}

// Send logs the message and reports success.
func (s NopSender) Send(ctx context.Context, message string) error {
	if s.Logger != nil {
		s.Logger.Info("notification (not sent)", "length", len(message))
	}
	return nil
}
