package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
	"github.com/suPer8Hu/icebreaker-bot/internal/chat/chattest"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
	"github.com/suPer8Hu/icebreaker-bot/internal/session/sessiontest"
	"go.uber.org/zap"
)

type fakePublisher struct {
	published []any
	retries   []time.Duration
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, v any) error {
	f.published = append(f.published, v)
	return f.err
}

func (f *fakePublisher) PublishRetry(ctx context.Context, v any, delay time.Duration) error {
	f.published = append(f.published, v)
	f.retries = append(f.retries, delay)
	return f.err
}

func body(t *testing.T, j Job) []byte {
	t.Helper()
	b, err := json.Marshal(j)
	require.NoError(t, err)
	return b
}

func TestBackoff(t *testing.T) {
	base := 2 * time.Second
	require.Equal(t, 2*time.Second, Backoff(base, 0))
	require.Equal(t, 2*time.Second, Backoff(base, 1))
	require.Equal(t, 4*time.Second, Backoff(base, 2))
	require.Equal(t, 16*time.Second, Backoff(base, 4))
	require.Equal(t, maxBackoff, Backoff(base, 30))
}

func TestQueue_EnqueueAssignsID(t *testing.T) {
	pub := &fakePublisher{}
	q := NewQueue(pub)

	require.Error(t, q.Enqueue(context.Background(), Job{Text: "no chat"}))
	require.NoError(t, q.Enqueue(context.Background(), Job{ChatID: "1", Text: "hi", Attempt: 3}))

	require.Len(t, pub.published, 1)
	job := pub.published[0].(Job)
	require.Len(t, job.ID, 26)
	require.Zero(t, job.Attempt)
}

func TestProcessor_TracksMessageAndCredits(t *testing.T) {
	store := sessiontest.New()
	tr := chattest.New()
	prev := session.New("7", "en")
	prev.Track(50, "old screen", "")
	store.Put(context.Background(), "7", prev)

	p := NewProcessor(store, tr, 0, zap.NewNop())
	credits := 4
	extras := chat.Extras{Keyboard: [][]chat.Button{{{Text: "Play", Data: "play:c1"}}}}
	require.NoError(t, p.Process(context.Background(), Job{ID: "j", ChatID: "7", Text: "ready", Extras: extras, Credits: &credits}))

	s := store.Peek("7")
	require.Equal(t, []int{50, 101}, s.BotMessageIDs)
	require.Equal(t, "ready", s.LastMessageText)
	require.Equal(t, extras.Fingerprint(), s.LastMarkup)
	require.Equal(t, 4, s.Credits)
}

func TestProcessor_WaitsBetweenSends(t *testing.T) {
	p := NewProcessor(sessiontest.New(), chattest.New(), 30*time.Millisecond, nil)
	start := time.Now()
	require.NoError(t, p.Process(context.Background(), Job{ChatID: "1", Text: "a"}))
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestConsumer_Outcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("sent", func(t *testing.T) {
		c := NewConsumer(NewProcessor(sessiontest.New(), chattest.New(), 0, nil), &fakePublisher{}, 3, time.Second, nil)
		require.Equal(t, Ack, c.Handle(ctx, body(t, Job{ID: "a", ChatID: "1", Text: "hi"})))
	})

	t.Run("malformed", func(t *testing.T) {
		c := NewConsumer(NewProcessor(sessiontest.New(), chattest.New(), 0, nil), &fakePublisher{}, 3, time.Second, nil)
		require.Equal(t, DeadLetter, c.Handle(ctx, []byte("{")))
		require.Equal(t, DeadLetter, c.Handle(ctx, body(t, Job{Text: "no chat"})))
	})

	t.Run("retry with backoff", func(t *testing.T) {
		tr := chattest.New()
		tr.FailSends = 1
		pub := &fakePublisher{}
		c := NewConsumer(NewProcessor(sessiontest.New(), tr, 0, nil), pub, 3, time.Second, nil)

		require.Equal(t, Ack, c.Handle(ctx, body(t, Job{ID: "a", ChatID: "1", Text: "hi", Attempt: 1})))
		require.Equal(t, []time.Duration{2 * time.Second}, pub.retries)
		require.Equal(t, 2, pub.published[0].(Job).Attempt)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		tr := chattest.New()
		tr.FailSends = 1
		pub := &fakePublisher{}
		c := NewConsumer(NewProcessor(sessiontest.New(), tr, 0, nil), pub, 3, time.Second, nil)

		require.Equal(t, DeadLetter, c.Handle(ctx, body(t, Job{ID: "a", ChatID: "1", Text: "hi", Attempt: 2})))
		require.Empty(t, pub.retries)
	})

	t.Run("retry publish failure dead letters", func(t *testing.T) {
		tr := chattest.New()
		tr.FailSends = 1
		pub := &fakePublisher{err: errors.New("broker down")}
		c := NewConsumer(NewProcessor(sessiontest.New(), tr, 0, nil), pub, 3, time.Second, nil)
		require.Equal(t, DeadLetter, c.Handle(ctx, body(t, Job{ID: "a", ChatID: "1", Text: "hi"})))
	})
}
