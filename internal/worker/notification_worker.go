package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/notify"
)

const dequeueTimeout = 5 * time.Second

// Sender delivers one notification job. Satisfied by notify.Mailer.
type Sender interface {
	Enabled() bool
	Send(job *notify.Email) error
}

// NotificationWorker drains the Redis notification queue and delivers
// each job over SMTP. Delivery is retried with a linear backoff; a job
// that exhausts its attempts is logged and dropped.
type NotificationWorker struct {
	client *redis.Client
	mailer Sender
	cfg    config.NotifyConfig
	logger *zap.Logger
	sleep  func(time.Duration)
}

// NewNotificationWorker constructs the worker.
func NewNotificationWorker(client *redis.Client, mailer Sender, cfg config.NotifyConfig, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		client: client,
		mailer: mailer,
		cfg:    cfg,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Run consumes jobs until the context is canceled.
func (w *NotificationWorker) Run(ctx context.Context) error {
	w.logger.Info("notification worker started",
		zap.String("queue", w.cfg.QueueKey),
		zap.Bool("smtp_enabled", w.mailer.Enabled()))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopping")
			return ctx.Err()
		default:
		}

		job, err := notify.Dequeue(ctx, w.client, w.cfg.QueueKey, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error("failed to dequeue notification", zap.Error(err))
			w.sleep(dequeueTimeout)
			continue
		}
		if job == nil {
			continue
		}

		w.Process(job)
	}
}

// Process delivers one job, retrying up to the configured attempt
// count with linear backoff between attempts.
func (w *NotificationWorker) Process(job *notify.Email) {
	attempts := w.cfg.WorkerRetries
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		job.Attempts = attempt
		lastErr = w.mailer.Send(job)
		if lastErr == nil {
			w.logger.Info("notification delivered",
				zap.String("job_id", job.ID),
				zap.String("subject", job.Subject),
				zap.Int("recipients", len(job.Recipients)),
				zap.Int("attempt", attempt))
			return
		}
		if lastErr == notify.ErrMailerDisabled {
			// Nothing to deliver through; retrying cannot help.
			w.logger.Debug("smtp disabled, dropping notification",
				zap.String("job_id", job.ID),
				zap.String("subject", job.Subject))
			return
		}
		if attempt < attempts {
			w.sleep(w.cfg.RetryBackoff() * time.Duration(attempt))
		}
	}

	w.logger.Error("notification delivery failed, dropping job",
		zap.String("job_id", job.ID),
		zap.String("subject", job.Subject),
		zap.Int("attempts", attempts),
		zap.Error(lastErr))
}
