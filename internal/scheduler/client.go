package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"donorops_backend/internal/config"
)

// Client enqueues scheduler tasks.
type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient creates an asynq client against the configured redis instance.
func NewClient(cfg *config.Config) (*Client, error) {
	opt, err := redisClientOpt(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.AsynqQueue
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueGrantsIngest queues one feed ingestion run.
func (c *Client) EnqueueGrantsIngest(ctx context.Context, payload GrantsIngestPayload) error {
	task, err := NewGrantsIngestTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

// EnqueueMilestonesAutoClose queues one auto-close sweep.
func (c *Client) EnqueueMilestonesAutoClose(ctx context.Context, payload MilestonesAutoClosePayload) error {
	task, err := NewMilestonesAutoCloseTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

// EnqueueFollowUpDigest queues one digest delivery.
func (c *Client) EnqueueFollowUpDigest(ctx context.Context, payload FollowUpDigestPayload) error {
	task, err := NewFollowUpDigestTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	if redisURL == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("redis url not configured")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
