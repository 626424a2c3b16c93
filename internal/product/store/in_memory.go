package store

import (
	"slices"
	"sync"

	"github.com/abgdnv/inventory/internal/product/errors"
	"github.com/abgdnv/inventory/internal/product/validation"
	"github.com/google/uuid"
)

// inMemory implements ProductStore with an ordered slice of IDs and a map of records.
type inMemory struct {
	mu       sync.RWMutex
	order    []string
	products map[string]Product
	// issued holds every ID ever handed out, including deleted ones, so none is reused.
	issued map[string]struct{}
	newID  func() string
	// writes is the ticket of the latest successful mutation, guarded by mu.
	writes uint64

	// delivered is the ticket of the latest change handed to listeners.
	// Changes are delivered strictly in ticket order.
	deliverMu   sync.Mutex
	deliverCond *sync.Cond
	delivered   uint64

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextSub     int
}

// Option configures the in-memory store.
type Option func(*inMemory)

// WithIDGenerator replaces the default UUID generator.
// The generator must eventually yield an ID the store has not issued yet.
func WithIDGenerator(fn func() string) Option {
	return func(s *inMemory) {
		s.newID = fn
	}
}

// NewInMemoryStore creates a new instance of ProductStore
func NewInMemoryStore(opts ...Option) ProductStore {
	s := &inMemory{
		products:  make(map[string]Product),
		issued:    make(map[string]struct{}),
		newID:     uuid.NewString,
		listeners: make(map[int]Listener),
	}
	s.deliverCond = sync.NewCond(&s.deliverMu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return Product{}, errors.ErrProductNotFound
	}
	return p, nil
}

// List returns a copy of all products in insertion order.
func (s *inMemory) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.products[id])
	}
	return list
}

// Add creates a new product and returns it.
func (s *inMemory) Add(candidate validation.Candidate) (Product, error) {
	if err := validation.Validate(candidate).Err(); err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	product := Product{
		ID:       s.nextID(),
		Name:     candidate.Name,
		Type:     candidate.Type,
		Quantity: candidate.Quantity,
		Price:    candidate.Price,
	}
	s.products[product.ID] = product
	s.order = append(s.order, product.ID)
	ticket := s.nextTicket()
	s.mu.Unlock()

	s.notify(ticket, Change{Kind: Added, Product: product})
	return product, nil
}

// Update replaces the mutable fields of an existing product.
func (s *inMemory) Update(product Product) (Product, error) {
	if err := validation.Validate(product.Candidate()).Err(); err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	if _, exists := s.products[product.ID]; !exists {
		s.mu.Unlock()
		return Product{}, errors.ErrProductNotFound
	}
	s.products[product.ID] = product
	ticket := s.nextTicket()
	s.mu.Unlock()

	s.notify(ticket, Change{Kind: Updated, Product: product})
	return product, nil
}

// Delete removes a product by its ID if present.
func (s *inMemory) Delete(id string) bool {
	s.mu.Lock()
	removed, exists := s.products[id]
	if !exists {
		s.mu.Unlock()
		return false
	}
	delete(s.products, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	ticket := s.nextTicket()
	s.mu.Unlock()

	s.notify(ticket, Change{Kind: Deleted, Product: removed})
	return true
}

// Subscribe registers a listener for store changes.
func (s *inMemory) Subscribe(listener Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.listeners[id] = listener
	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// nextID returns an ID that has never been issued by this store. Must be called with mu held.
func (s *inMemory) nextID() string {
	for {
		id := s.newID()
		if _, used := s.issued[id]; used || id == "" {
			continue
		}
		s.issued[id] = struct{}{}
		return id
	}
}

// nextTicket numbers a successful mutation. Must be called with mu held.
func (s *inMemory) nextTicket() uint64 {
	s.writes++
	return s.writes
}

// notify delivers the change to every listener in subscription order,
// after the changes of every earlier ticket have been delivered.
func (s *inMemory) notify(ticket uint64, change Change) {
	s.deliverMu.Lock()
	for s.delivered != ticket-1 {
		s.deliverCond.Wait()
	}
	s.deliverMu.Unlock()
	defer func() {
		s.deliverMu.Lock()
		s.delivered = ticket
		s.deliverMu.Unlock()
		s.deliverCond.Broadcast()
	}()

	s.listenersMu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(change)
	}
}
