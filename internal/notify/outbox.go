package notify

import (
	"context"

	"go.uber.org/zap"
)

type pendingEmail struct {
	subject    string
	body       string
	recipients []string
}

// Outbox collects notification jobs during a transaction so they are
// dispatched only after a successful commit. Dropping the outbox on
// rollback discards the jobs with the transaction, so an aborted
// operation never leaks notifications.
type Outbox struct {
	pending []pendingEmail
}

// NewOutbox returns an empty buffer.
func NewOutbox() *Outbox {
	return &Outbox{}
}

// Add buffers one email for post-commit dispatch.
func (o *Outbox) Add(subject, body string, recipients []string) {
	o.pending = append(o.pending, pendingEmail{subject: subject, body: body, recipients: recipients})
}

// Len reports the number of buffered jobs.
func (o *Outbox) Len() int {
	return len(o.pending)
}

// Flush hands every buffered job to the gateway. Enqueue errors are
// logged and swallowed; the committed state change stands regardless.
func (o *Outbox) Flush(ctx context.Context, gateway Gateway, logger *zap.Logger) {
	for _, email := range o.pending {
		if err := gateway.Enqueue(ctx, email.subject, email.body, email.recipients); err != nil {
			logger.Warn("failed to enqueue notification",
				zap.String("subject", email.subject),
				zap.Error(err))
		}
	}
	o.pending = nil
}
