// Package subscriber consumes product change events from JetStream and raises stock alerts.
package subscriber

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abgdnv/inventory/internal/watcher/alert"
	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/messaging/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"
)

// ackableMsg is the part of jetstream.Msg the handler needs.
type ackableMsg interface {
	Data() []byte
	Subject() string
	Ack() error
	Nak() error
}

// Handler turns messages into alerts.
type Handler struct {
	classifier alert.Classifier
	sink       alert.Sink
	logger     *slog.Logger
}

func NewHandler(classifier alert.Classifier, sink alert.Sink, logger *slog.Logger) *Handler {
	return &Handler{
		classifier: classifier,
		sink:       sink,
		logger:     logger.With("component", "subscriber"),
	}
}

// Start creates the durable consumer, calls onReady and runs the configured number of workers until ctx is done.
func Start(ctx context.Context, js jetstream.JetStream, subscriberCfg config.SubscriberConfig, h *Handler, onReady func()) error {
	cfg := jetstream.ConsumerConfig{
		FilterSubject: subscriberCfg.Subject,
		Durable:       subscriberCfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, subscriberCfg.Stream, cfg)
	if err != nil {
		return err
	}
	if onReady != nil {
		onReady()
	}
	g, gCtx := errgroup.WithContext(ctx)
	for range subscriberCfg.Workers {
		g.Go(func() error {
			return h.runWorker(gCtx, consumer, subscriberCfg)
		})
	}
	return g.Wait()
}

// runWorker fetches messages from the NATS JetStream consumer and processes them.
func (h *Handler) runWorker(ctx context.Context, consumer jetstream.Consumer, cfg config.SubscriberConfig) error {
	for {
		select {
		case <-ctx.Done():
			// ctx was cancelled or timed out (e.g., application shutdown)
			return ctx.Err()
		default:
			batch, err := consumer.Fetch(cfg.Batch, jetstream.FetchMaxWait(cfg.Timeout))
			if err != nil {
				// if the error is a timeout, we can just continue to the next iteration
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				h.logger.Error("failed to fetch messages", "error", err)
				// for other errors, we can log and retry
				sleep(ctx, cfg.Interval)
				continue
			}
			for msg := range batch.Messages() {
				h.handleMessage(ctx, msg)
			}
			if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
				h.logger.Warn("fetch batch ended with error", "error", err)
			}
		}
	}
}

// handleMessage processes a single message from the NATS JetStream consumer.
// Undecodable payloads are negatively acknowledged; everything else is acknowledged after handling.
func (h *Handler) handleMessage(ctx context.Context, msg ackableMsg) {
	if msg == nil {
		h.logger.Error("received nil message")
		return
	}
	event, err := events.Decode(msg.Data())
	if err != nil {
		h.logger.Error("failed to unmarshal message", "error", err, "subject", msg.Subject())
		if err := msg.Nak(); err != nil {
			h.logger.Error("failed to nack message", "error", err)
		}
		return
	}

	h.logger.DebugContext(ctx, "received product changed event",
		slog.String("subject", msg.Subject()),
		slog.String("kind", event.Kind),
		slog.String("product_id", event.ProductID),
		slog.String("occurred_at", event.OccurredAt.Format(time.RFC3339)))

	if a, ok := h.classifier.Classify(event); ok {
		h.sink.Raise(ctx, a)
	}

	if err := msg.Ack(); err != nil {
		h.logger.Error("failed to ack message", "error", err)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
