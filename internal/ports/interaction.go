package ports

import "context"

// Confirmer asks the user to approve an irreversible action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	Severity Severity
	Message  string
	Err      error
}

// Notifier surfaces non-fatal events such as failed reads.
type Notifier interface {
	Notify(n Notification)
}
