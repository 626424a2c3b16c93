// Package notify turns store changes into logs, metrics and broker events.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/inventory/internal/product/store"
	"github.com/abgdnv/inventory/pkg/messaging/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ChangesMetric is the name of the counter incremented for every product change.
const ChangesMetric = "inventory.product.changes"

// LoggingListener logs one line per change.
func LoggingListener(logger *slog.Logger) store.Listener {
	l := logger.With("component", "notify")
	return func(c store.Change) {
		l.Info("Product changed",
			"kind", string(c.Kind),
			"ID", c.Product.ID,
			"Name", c.Product.Name,
			"Quantity", c.Product.Quantity,
		)
	}
}

// MetricsListener counts changes by kind.
func MetricsListener(meter metric.Meter) (store.Listener, error) {
	counter, err := meter.Int64Counter(ChangesMetric, metric.WithDescription("Total number of product changes"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", ChangesMetric, err)
	}
	return func(c store.Change) {
		counter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", string(c.Kind))))
	}, nil
}

// ToEvent converts a store change into its broker event.
func ToEvent(c store.Change, at time.Time) events.ProductChangedEvent {
	return events.ProductChangedEvent{
		Kind:       string(c.Kind),
		ProductID:  c.Product.ID,
		Name:       c.Product.Name,
		Type:       c.Product.Type,
		Quantity:   c.Product.Quantity,
		Price:      c.Product.Price,
		OccurredAt: at.UTC(),
	}
}
