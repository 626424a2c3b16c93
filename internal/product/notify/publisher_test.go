package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/abgdnv/inventory/internal/product/store"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/messaging/events"
	"github.com/abgdnv/inventory/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event messaging.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func eventFor(kind store.ChangeKind, id string) any {
	return mock.MatchedBy(func(e messaging.Event) bool {
		pe, ok := e.(events.ProductChangedEvent)
		return ok && pe.Kind == string(kind) && pe.ProductID == id
	})
}

func Test_AsyncPublisher_PublishesInOrder(t *testing.T) {
	// given
	pub := new(mockPublisher)
	published := make(chan string, 3)
	pub.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			published <- args.Get(1).(messaging.Event).Subject()
		}).
		Return(nil)
	p := NewAsyncPublisher(pub, 10, time.Second, discard)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// when
	p.Listen(store.Change{Kind: store.Added, Product: bolt})
	p.Listen(store.Change{Kind: store.Updated, Product: bolt})
	p.Listen(store.Change{Kind: store.Deleted, Product: bolt})

	// then
	for _, expected := range []string{messaging.ProductsAddedSubject, messaging.ProductsUpdatedSubject, messaging.ProductsDeletedSubject} {
		select {
		case subject := <-published:
			assert.Equal(t, expected, subject)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", expected)
		}
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func Test_AsyncPublisher_DropsWhenFull(t *testing.T) {
	// given a publisher that is not running, with room for one event
	pub := new(mockPublisher)
	p := NewAsyncPublisher(pub, 1, time.Second, discard)

	// when
	p.Listen(store.Change{Kind: store.Added, Product: store.Product{ID: "first"}})
	p.Listen(store.Change{Kind: store.Added, Product: store.Product{ID: "second"}})

	// then only the first event is queued and Listen never blocked
	require.Len(t, p.queue, 1)
	assert.Equal(t, "first", (<-p.queue).ProductID)
}

func Test_AsyncPublisher_DrainsOnShutdown(t *testing.T) {
	// given events queued before Run starts
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, eventFor(store.Added, "a")).Return(nil).Once()
	pub.On("Publish", mock.Anything, eventFor(store.Deleted, "b")).Return(nil).Once()
	p := NewAsyncPublisher(pub, 10, time.Second, discard)
	p.Listen(store.Change{Kind: store.Added, Product: store.Product{ID: "a"}})
	p.Listen(store.Change{Kind: store.Deleted, Product: store.Product{ID: "b"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// when
	err := p.Run(ctx)

	// then
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, p.queue)
	pub.AssertExpectations(t)
}

func Test_AsyncPublisher_PublishFailureIsLogged(t *testing.T) {
	// given
	pub := new(mockPublisher)
	attempted := make(chan struct{}, 1)
	pub.On("Publish", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { attempted <- struct{}{} }).
		Return(errors.New("no responders")).Once()
	p := NewAsyncPublisher(pub, 10, time.Second, discard)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// when
	p.Listen(store.Change{Kind: store.Added, Product: bolt})

	// then the worker keeps running after the failure
	select {
	case <-attempted:
	case <-time.After(time.Second):
		t.Fatal("publish was not attempted")
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	pub.AssertExpectations(t)
}

func Test_AsyncPublisher_OpenBreakerIsWarned(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		expectedLevel string
		expectedMsg   string
	}{
		{
			name:          "open breaker drops the event with a warning",
			err:           errors.Join(resilience.ErrBreakerOpen, errors.New("circuit breaker is open")),
			expectedLevel: "WARN",
			expectedMsg:   "Broker unavailable, event dropped",
		},
		{
			name:          "other failures are errors",
			err:           errors.New("no responders"),
			expectedLevel: "ERROR",
			expectedMsg:   "Failed to publish event",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			pub := new(mockPublisher)
			pub.On("Publish", mock.Anything, mock.Anything).Return(tc.err).Once()
			p := NewAsyncPublisher(pub, 1, time.Second, logger)

			// when
			p.publish(context.Background(), ToEvent(store.Change{Kind: store.Added, Product: bolt}, time.Now()))

			// then
			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tc.expectedLevel, entry["level"])
			assert.Equal(t, tc.expectedMsg, entry["msg"])
			pub.AssertExpectations(t)
		})
	}
}
