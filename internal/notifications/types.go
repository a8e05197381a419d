package notifications

import (
	"context"
	"time"
)

// Severity tells the UI how to style a notice.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Labels for the dismiss button of a notice.
const (
	ActionClose   = "Close"
	ActionDismiss = "Dismiss"
)

// Display durations used by the views.
const (
	ShortDuration = 3 * time.Second
	LongDuration  = 4 * time.Second
)

// Notice is a dismissable, short-lived message shown to the user after an
// action succeeds or fails.
type Notice struct {
	ID        string        `json:"id"`
	Severity  Severity      `json:"severity"`
	Message   string        `json:"message"`
	Action    string        `json:"action"`
	Duration  time.Duration `json:"duration"`
	Dismissed bool          `json:"dismissed"`
	CreatedAt time.Time     `json:"created_at"`
}

// ExpiresAt is the moment the notice stops being shown on its own.
func (n Notice) ExpiresAt() time.Time {
	return n.CreatedAt.Add(n.Duration)
}

// Active reports whether the notice should still be displayed at t.
func (n Notice) Active(t time.Time) bool {
	return !n.Dismissed && !t.After(n.ExpiresAt())
}

// Success is a confirmation with a Close button.
func Success(message string) Notice {
	return Notice{Severity: SeveritySuccess, Message: message, Action: ActionClose, Duration: ShortDuration}
}

// Failure reports a failed request with a Close button.
func Failure(message string) Notice {
	return Notice{Severity: SeverityError, Message: message, Action: ActionClose, Duration: LongDuration}
}

// Hint asks the user to fix their input before retrying.
func Hint(message string) Notice {
	return Notice{Severity: SeverityInfo, Message: message, Action: ActionDismiss, Duration: ShortDuration}
}

// Problem reports missing context that the user must resolve, with a
// Dismiss button.
func Problem(message string) Notice {
	return Notice{Severity: SeverityError, Message: message, Action: ActionDismiss, Duration: LongDuration}
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n Notice)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(context.Context, Notice) {})
