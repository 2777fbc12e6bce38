// Package pubsub fans monitor events out over Redis pub/sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-eeg/eeg/session"
)

// Publisher is the subset of a Redis client used by [Sink].
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// payload is the message published for each event.
type payload struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	At    int64           `json:"at"`
}

// Sink publishes session events to <prefix>:<session id>.
type Sink struct {
	pub    Publisher
	prefix string
	logger *zap.Logger
}

// NewSink returns a sink publishing on channels under prefix.
func NewSink(pub Publisher, prefix string, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{pub: pub, prefix: prefix, logger: logger}
}

// Channel returns the channel for a session.
func (s *Sink) Channel(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// Publish implements [session.Sink].
func (s *Sink) Publish(ctx context.Context, ev session.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("pubsub: marshal %s event: %w", ev.Kind, err)
	}
	body, err := json.Marshal(payload{Event: string(ev.Kind), Data: data, At: ev.At.Unix()})
	if err != nil {
		return err
	}

	channel := s.Channel(ev.Session)
	n, err := s.pub.Publish(ctx, channel, body).Result()
	if err != nil {
		return fmt.Errorf("pubsub: publish to %s: %w", channel, err)
	}
	s.logger.Debug("event published", zap.String("channel", channel), zap.String("event", string(ev.Kind)), zap.Int64("receivers", n))
	return nil
}

// Message is a decoded event received from Redis.
type Message struct {
	Event string
	Data  json.RawMessage
	At    time.Time
}

// Decode parses a published message body.
func Decode(body []byte) (Message, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Message{}, fmt.Errorf("pubsub: decode message: %w", err)
	}
	return Message{Event: p.Event, Data: p.Data, At: time.Unix(p.At, 0)}, nil
}

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if logger != nil {
		logger.Info("redis client connected", zap.String("addr", addr))
	}
	return rdb, nil
}
