// Package notifier pushes run results to an outbound text channel.
package notifier

// TextNotifier is a minimal text notification interface. It is intentionally
// small so callers can depend on it without importing a concrete channel.
type TextNotifier interface {
	SendText(text string) error
}

// Noop discards every message. Used when notifications are disabled.
type Noop struct{}

var _ TextNotifier = (*Noop)(nil)

func (Noop) SendText(string) error { return nil }
