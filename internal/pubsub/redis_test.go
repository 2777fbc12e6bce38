package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-eeg/eeg/session"
	"github.com/cwbudde/algo-eeg/eeg/stream"
)

type published struct {
	channel string
	body    []byte
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "publish", channel, message)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.sent = append(f.sent, published{channel: channel, body: message.([]byte)})
	cmd.SetVal(1)
	return cmd
}

func TestSinkPublishesEvents(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewSink(pub, "attention", nil)
	at := time.Unix(1700000000, 0)

	ev := session.Event{
		Session: "abc",
		Kind:    session.EventTick,
		At:      at,
		Status:  stream.Status{State: stream.Ready, Offset: 768},
		Tick:    &stream.Tick{Index: 3, Ratios: map[string]float64{}},
	}
	require.NoError(t, sink.Publish(context.Background(), ev))

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "attention:abc", pub.sent[0].channel)

	msg, err := Decode(pub.sent[0].body)
	require.NoError(t, err)
	assert.Equal(t, "tick", msg.Event)
	assert.True(t, at.Equal(msg.At))

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, "abc", got["session_id"])
	assert.Equal(t, "tick", got["event"])
	assert.Equal(t, 3.0, got["tick"].(map[string]any)["index"])
}

func TestSinkPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	sink := NewSink(pub, "attention", nil)

	err := sink.Publish(context.Background(), session.Event{Session: "x", Kind: session.EventEnd})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attention:x")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	require.Error(t, err)
}

func TestSinkImplementsSessionSink(t *testing.T) {
	var _ session.Sink = NewSink(&fakePublisher{}, "p", nil)
}
