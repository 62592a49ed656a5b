// Package notify delivers trade event notifications.
package notify

import (
	"context"
	"log"
)

// Kind classifies a notification.
type Kind string

const (
	KindBuy   Kind = "buy"
	KindSell  Kind = "sell"
	KindError Kind = "error"
)

// Notifier delivers a message about a trade event. Delivery is best-effort;
// trading never blocks on a notification failure.
type Notifier interface {
	Send(ctx context.Context, kind Kind, message string)
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses the default logger.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

var _ Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Send(_ context.Context, kind Kind, message string) {
	n.logger.Printf("[notify] %s: %s", kind, message)
}
