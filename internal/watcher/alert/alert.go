// Package alert classifies product change events into stock alerts.
package alert

import (
	"context"
	"log/slog"

	"github.com/abgdnv/inventory/pkg/messaging/events"
)

type Kind string

const (
	OutOfStock Kind = "out_of_stock"
	LowStock   Kind = "low_stock"
	Removed    Kind = "removed"
)

// Alert describes a product that needs attention.
type Alert struct {
	Kind      Kind
	ProductID string
	Name      string
	Quantity  int
}

// Classifier decides which events raise an alert.
type Classifier struct {
	// LowStockThreshold is the quantity below which an in-stock product is reported. Zero disables low stock alerts.
	LowStockThreshold int
}

// Classify returns the alert for event, or false when the event needs no attention.
func (c Classifier) Classify(event events.ProductChangedEvent) (Alert, bool) {
	a := Alert{ProductID: event.ProductID, Name: event.Name, Quantity: event.Quantity}
	switch {
	case event.Kind == events.KindDeleted:
		a.Kind = Removed
	case event.Kind != events.KindAdded && event.Kind != events.KindUpdated:
		return Alert{}, false
	case event.Quantity == 0:
		a.Kind = OutOfStock
	case event.Quantity < c.LowStockThreshold:
		a.Kind = LowStock
	default:
		return Alert{}, false
	}
	return a, true
}

// Sink receives raised alerts.
type Sink interface {
	Raise(ctx context.Context, a Alert)
}

// LogSink reports alerts as warnings.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Raise(ctx context.Context, a Alert) {
	s.Logger.WarnContext(ctx, "Stock alert",
		slog.String("alert", string(a.Kind)),
		slog.String("product_id", a.ProductID),
		slog.String("name", a.Name),
		slog.Int("quantity", a.Quantity),
	)
}
