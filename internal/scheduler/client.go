package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"naql_backend/internal/leads/domain"
	"naql_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const defaultQueue = "leads"

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client enqueues replay tasks. A nil *Client is valid and refuses every
// enqueue, so callers fall through to the delivery error.
type Client struct {
	client   enqueuer
	queue    string
	maxRetry int
}

// ErrQueueDisabled is returned by a nil Client.
var ErrQueueDisabled = errors.New("scheduler: replay queue disabled")

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return newClient(asynq.NewClient(opt), cfg.GetReplayQueue(), cfg.GetReplayMaxRetry()), nil
}

func newClient(e enqueuer, queue string, maxRetry int) *Client {
	if queue == "" {
		queue = defaultQueue
	}
	if maxRetry < 0 {
		maxRetry = 0
	}
	return &Client{client: e, queue: queue, maxRetry: maxRetry}
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueRedelivery schedules a replay of lead. The lead id doubles as the
// task id, so enqueueing the same lead twice is a no-op.
func (c *Client) EnqueueRedelivery(ctx context.Context, lead domain.ServerLead, reason string) error {
	if c == nil || c.client == nil {
		return ErrQueueDisabled
	}

	task, err := NewRedeliverLeadTask(RedeliverLeadPayload{Lead: lead, Reason: reason})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(c.maxRetry),
		asynq.TaskID(lead.LeadID),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
