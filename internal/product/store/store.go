// Package store provides the authoritative, ordered product collection.
package store

import "github.com/abgdnv/inventory/internal/product/validation"

// ProductStore is an interface for product storage operations.
// It abstracts the underlying collection so services and tests can swap implementations.
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(id string) (Product, error)

	// List returns every product in insertion order as a snapshot.
	// Returns an empty slice if no products exist.
	List() []Product

	// Add validates the candidate, assigns a fresh ID and appends the product.
	// Returns a *ValidationError if the candidate is rejected.
	Add(candidate validation.Candidate) (Product, error)

	// Update replaces the name, type, quantity and price of an existing product.
	// Returns ErrProductNotFound for an unknown ID, a *ValidationError for invalid fields.
	Update(product Product) (Product, error)

	// Delete removes a product by its ID. Deleting an unknown ID is a no-op.
	// Reports whether a product was removed.
	Delete(id string) bool

	// Subscribe registers a listener notified after every successful mutation.
	// The returned function removes the listener.
	Subscribe(listener Listener) (cancel func())
}

// Product represents a product entity in the store.
type Product struct {
	ID       string
	Name     string
	Type     string
	Quantity int
	Price    float64
}

// Candidate returns the mutable fields of the product.
func (p Product) Candidate() validation.Candidate {
	return validation.Candidate{
		Name:     p.Name,
		Type:     p.Type,
		Quantity: p.Quantity,
		Price:    p.Price,
	}
}

// ChangeKind identifies which mutation produced a Change.
type ChangeKind string

const (
	Added   ChangeKind = "added"
	Updated ChangeKind = "updated"
	Deleted ChangeKind = "deleted"
)

// Change is delivered to listeners after a mutation. For Deleted, Product is the removed record.
type Change struct {
	Kind    ChangeKind
	Product Product
}

// Listener receives store changes. It runs on the mutating goroutine after the store lock is released,
// so it may read the store. Changes reach listeners in the order the writes were applied, even across
// goroutines, so a listener must not write to the store itself.
type Listener func(Change)
