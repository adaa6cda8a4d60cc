package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages, then blocks until the context ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

func encodedEvent(t *testing.T, eventType string) kafka.Message {
	t.Helper()
	event, err := NewEvent(eventType, "agg", "test", "storefront", nil)
	require.NoError(t, err)
	raw, err := event.Marshal()
	require.NoError(t, err)
	return kafka.Message{Topic: "t", Value: raw}
}

func TestConsumer_DeliversAndCommits(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		encodedEvent(t, "a"),
		{Topic: "t", Value: []byte("garbage")},
		encodedEvent(t, "b"),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	var got []string
	handler := func(_ context.Context, e *Event) error {
		got = append(got, e.EventType)
		if e.EventType == "b" {
			cancel()
			return errors.New("handler failure is skipped")
		}
		return nil
	}

	c := NewConsumerWithReader(r, "t", true, handler, nil)
	require.NoError(t, c.Start(ctx))

	assert.Equal(t, []string{"a", "b"}, got)
	assert.Len(t, r.committed, 3)
	assert.Equal(t, 1, r.closed)
}

func TestConsumer_UngroupedDoesNotCommit(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{encodedEvent(t, "a")}}
	ctx, cancel := context.WithCancel(context.Background())

	c := NewConsumerWithReader(r, "t", false, func(context.Context, *Event) error {
		cancel()
		return nil
	}, nil)
	require.NoError(t, c.Start(ctx))

	assert.Empty(t, r.committed)
	require.NoError(t, c.Close())
	assert.Equal(t, 1, r.closed)
}
