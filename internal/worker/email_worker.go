package worker

// email_worker.go
// Processes email jobs from QueueEmail: arqueo difference alerts and
// low-stock notices. All sends go through the SMTP circuit breaker so a
// dead relay fast-fails instead of blocking the pool.

import (
	"context"
	"encoding/json"

	"tiendapos/internal/infra"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail    string `json:"to_email"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	AttachPath string `json:"attach_path,omitempty"`
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
}

// NewEmailWorker creates an EmailWorker guarded by the given circuit breaker.
func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

// Process sends one email. Returning an error lets the pool retry and
// eventually DLQ the job.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.ToEmail == "" {
		// Nothing to do, not an error worth retrying
		return nil
	}

	return w.cb.Execute(func() error {
		return w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body, payload.AttachPath)
	})
}
