package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool

	// when set, every write waits until it is closed
	release chan struct{}
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.release != nil {
		<-w.release
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) written() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKafkaPublisher_Publish(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := newKafkaPublisher(w, "account_events", 8, discardLogger())
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, p.Publish(context.Background(), Event{Type: TypeLoggedIn, Username: "admin@cagmc.com", Mode: "Jwt", At: at}))
	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	msgs := w.written()
	require.Len(t, msgs, 1)
	assert.Equal(t, "admin@cagmc.com", string(msgs[0].Key))

	var got Event
	require.NoError(t, json.Unmarshal(msgs[0].Value, &got))
	assert.Equal(t, TypeLoggedIn, got.Type)
	assert.Equal(t, "Jwt", got.Mode)
	assert.True(t, at.Equal(got.At))

	assert.ErrorIs(t, p.Publish(context.Background(), Event{Type: TypeLoggedOut}), ErrClosed)
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_DoesNotBlockOnSlowBroker(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{release: make(chan struct{})}
	p := newKafkaPublisher(w, "account_events", 2, discardLogger())

	start := time.Now()
	require.NoError(t, p.Publish(context.Background(), Event{Type: TypeLoggedIn, Username: "admin@cagmc.com"}))
	require.Eventually(t, func() bool { return len(p.queue) == 0 }, time.Second, time.Millisecond)
	for i := 0; i < 2; i++ {
		require.NoError(t, p.Publish(context.Background(), Event{Type: TypeTokenRefreshed, Username: "admin@cagmc.com"}))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	// the writer holds the first message and the other two fill the queue
	err := p.Publish(context.Background(), Event{Type: TypeLoggedOut, Username: "admin@cagmc.com"})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(w.release)
	require.NoError(t, p.Close())
	assert.Len(t, w.written(), 3)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(w, "account_events", 4, discardLogger())

	require.NoError(t, p.Publish(context.Background(), Event{Type: TypeLoggedOut, Username: "x"}))
	require.NoError(t, p.Close())
	assert.Empty(t, w.written())
}

func TestNew(t *testing.T) {
	t.Parallel()

	p, err := New(nil, "account_events")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)

	_, err = NewKafkaPublisher([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	kp, err := New([]string{"localhost:9092"}, "account_events")
	require.NoError(t, err)
	assert.IsType(t, &KafkaPublisher{}, kp)
	require.NoError(t, kp.Close())
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), Event{Type: TypeLoggedIn}))
	require.NoError(t, r.Publish(context.Background(), Event{Type: TypeLoggedOut}))
	assert.Equal(t, []string{TypeLoggedIn, TypeLoggedOut}, r.Types())

	r.Err = errors.New("nope")
	assert.Error(t, r.Publish(context.Background(), Event{Type: TypeLoggedIn}))
	assert.Len(t, r.Events(), 2)
}
