package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Gateway accepts notification jobs for asynchronous delivery. The
// queue owns retries; callers enqueue once and move on.
type Gateway interface {
	Enqueue(ctx context.Context, subject, body string, recipients []string) error
}

// RedisGateway pushes jobs onto a Redis list consumed by the
// notification worker.
type RedisGateway struct {
	client   *redis.Client
	queueKey string
}

// NewRedisGateway constructs the gateway.
func NewRedisGateway(client *redis.Client, queueKey string) *RedisGateway {
	return &RedisGateway{client: client, queueKey: queueKey}
}

// Enqueue normalizes the recipient set and LPUSHes one job. An empty
// recipient set after filtering enqueues nothing.
func (g *RedisGateway) Enqueue(ctx context.Context, subject, body string, recipients []string) error {
	recipients = NormalizeRecipients(recipients)
	if len(recipients) == 0 {
		return nil
	}

	job := Email{
		ID:         uuid.NewString(),
		Subject:    subject,
		Body:       body,
		Recipients: recipients,
		EnqueuedAt: time.Now(),
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return g.client.LPush(ctx, g.queueKey, payload).Err()
}

// Dequeue blocks up to timeout for the next job. A nil job with nil
// error means the wait timed out.
func Dequeue(ctx context.Context, client *redis.Client, queueKey string, timeout time.Duration) (*Email, error) {
	res, err := client.BRPop(ctx, timeout, queueKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	// BRPop returns [key, value]
	if len(res) != 2 {
		return nil, nil
	}
	var job Email
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, err
	}
	return &job, nil
}
