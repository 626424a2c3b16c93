package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/inventory/pkg/messaging"
)

// Kinds of product change, matching the last token of the subject.
const (
	KindAdded   = "added"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// ProductChangedEvent is published after every successful product mutation.
// For deletions it carries the last state of the removed product.
type ProductChangedEvent struct {
	Kind       string    `json:"kind"`
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ProductChangedEvent) Subject() string {
	return messaging.ProductsSubjectPrefix + e.Kind
}

func (e ProductChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses a ProductChangedEvent payload.
func Decode(data []byte) (ProductChangedEvent, error) {
	var event ProductChangedEvent
	err := json.Unmarshal(data, &event)
	return event, err
}
