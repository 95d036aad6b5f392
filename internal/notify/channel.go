package notify

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/faraganiev/testjowi/internal/config"
)

// EventOrderUpdate is the only event broadcast today. It carries no payload;
// observers re-fetch whatever they display.
const EventOrderUpdate = "order_update"

const (
	redisChannel = "testjowi:events"
	probeTimeout = 2 * time.Second
)

// Mode says whether broadcasts stay in-process or relay through Redis so
// several server instances share one observer set.
type Mode int

const (
	ModeLocal Mode = iota
	ModeShared
)

func (m Mode) String() string {
	if m == ModeShared {
		return "shared"
	}
	return "local"
}

// Channel is the notification fan-out. The mode is decided once at startup:
// with a Redis URL configured the broker is probed, and an unreachable
// broker degrades to local mode with a warning instead of failing startup.
type Channel struct {
	hub    *Hub
	mode   Mode
	rdb    *redis.Client
	logger *zap.Logger
	cancel context.CancelFunc
}

func NewChannel(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Channel {
	c := &Channel{
		hub:    NewHub(),
		mode:   ModeLocal,
		logger: logger,
	}

	if cfg.URL == "" {
		logger.Info("notification channel in local mode")
		return c
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		logger.Warn("invalid redis url, falling back to local mode", zap.Error(err))
		return c
	}

	rdb := redis.NewClient(opts)
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := rdb.Ping(probeCtx).Err(); err != nil {
		logger.Warn("redis is not reachable, falling back to local mode", zap.Error(err))
		_ = rdb.Close()
		return c
	}

	c.rdb = rdb
	c.mode = ModeShared
	logger.Info("notification channel in shared mode", zap.String("channel", redisChannel))

	relayCtx, relayCancel := context.WithCancel(context.Background())
	c.cancel = relayCancel
	go c.relay(relayCtx)

	return c
}

// Mode reports the mode fixed at startup.
func (c *Channel) Mode() Mode {
	return c.mode
}

// Broadcast delivers the event best-effort. In shared mode it is published
// to Redis and comes back to the local hub through the relay, in local mode
// it fans out directly. Failures are logged and swallowed; they must never
// fail the operation that triggered the notification.
func (c *Channel) Broadcast(event string) {
	if c.mode == ModeLocal {
		c.hub.Broadcast(event)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	if err := c.rdb.Publish(ctx, redisChannel, event).Err(); err != nil {
		c.logger.Warn("broadcast publish failed, delivering locally", zap.Error(err))
		c.hub.Broadcast(event)
	}
}

func (c *Channel) Subscribe() (string, <-chan string) {
	return c.hub.Subscribe()
}

func (c *Channel) Unsubscribe(id string) {
	c.hub.Unsubscribe(id)
}

func (c *Channel) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
}

// relay feeds messages from the shared Redis channel, including this
// process's own publishes, into the local hub.
func (c *Channel) relay(ctx context.Context) {
	pubsub := c.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			c.hub.Broadcast(msg.Payload)
		}
	}
}
