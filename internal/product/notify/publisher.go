package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abgdnv/inventory/internal/product/store"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/messaging/events"
	"github.com/abgdnv/inventory/pkg/resilience"
)

// AsyncPublisher buffers change events and publishes them from a single goroutine,
// so store mutations never wait on the broker.
type AsyncPublisher struct {
	publisher messaging.Publisher
	queue     chan events.ProductChangedEvent
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewAsyncPublisher creates a publisher with room for buffer pending events.
// Each publish is bounded by timeout.
func NewAsyncPublisher(publisher messaging.Publisher, buffer int, timeout time.Duration, logger *slog.Logger) *AsyncPublisher {
	return &AsyncPublisher{
		publisher: publisher,
		queue:     make(chan events.ProductChangedEvent, buffer),
		timeout:   timeout,
		logger:    logger.With("component", "publisher"),
		now:       time.Now,
	}
}

// Listen is the store listener. It drops the event when the buffer is full.
func (p *AsyncPublisher) Listen(c store.Change) {
	event := ToEvent(c, p.now())
	select {
	case p.queue <- event:
	default:
		p.logger.Warn("Event buffer full, dropping event", "subject", event.Subject(), "ID", event.ProductID)
	}
}

// Run publishes buffered events until ctx is cancelled, then publishes what is left
// using a fresh context so shutdown does not lose queued events.
func (p *AsyncPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return ctx.Err()
		case event := <-p.queue:
			p.publish(ctx, event)
		}
	}
}

func (p *AsyncPublisher) drain() {
	for {
		select {
		case event := <-p.queue:
			p.publish(context.Background(), event)
		default:
			return
		}
	}
}

func (p *AsyncPublisher) publish(ctx context.Context, event events.ProductChangedEvent) {
	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.publisher.Publish(pubCtx, event); err != nil {
		if errors.Is(err, resilience.ErrBreakerOpen) {
			p.logger.WarnContext(ctx, "Broker unavailable, event dropped", "subject", event.Subject(), "ID", event.ProductID)
			return
		}
		p.logger.ErrorContext(ctx, "Failed to publish event", "subject", event.Subject(), "ID", event.ProductID, "error", err)
		return
	}
	p.logger.DebugContext(ctx, "Event published", "subject", event.Subject(), "ID", event.ProductID)
}
