// Package query derives filtered product views without touching store state.
package query

import (
	"strings"

	"github.com/abgdnv/inventory/internal/product/store"
)

// Search returns the products whose name or type contains term, ignoring case.
// An empty term matches every product. Relative order is preserved.
func Search(products []store.Product, term string) []store.Product {
	needle := strings.ToLower(term)
	matches := make([]store.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Type), needle) {
			matches = append(matches, p)
		}
	}
	return matches
}

// Lister is the read side of a product store.
type Lister interface {
	List() []store.Product
}

// Searcher runs searches against the current contents of a store.
type Searcher struct {
	lister Lister
}

// NewSearcher creates a Searcher reading from the given store.
func NewSearcher(lister Lister) *Searcher {
	return &Searcher{lister: lister}
}

// Search recomputes the result from a fresh snapshot on every call.
func (s *Searcher) Search(term string) []store.Product {
	return Search(s.lister.List(), term)
}
