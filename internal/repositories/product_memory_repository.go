package repositories

import (
	"sync"

	"movelaria/internal/models"
)

// MemoryProductRepository is an in-memory implementation of
// ProductRepository. It is the default storage backend.
type MemoryProductRepository struct {
	products    map[int]models.Product
	nextID      int
	maxProducts int
	mu          sync.RWMutex
}

// NewMemoryProductRepository creates an empty in-memory repository bounded
// at maxProducts records. A non-positive bound falls back to
// DefaultMaxProducts.
func NewMemoryProductRepository(maxProducts int) *MemoryProductRepository {
	if maxProducts <= 0 {
		maxProducts = DefaultMaxProducts
	}
	return &MemoryProductRepository{
		products:    make(map[int]models.Product),
		maxProducts: maxProducts,
	}
}

// NextID allocates the next identifier. The counter only moves forward, so
// identifiers are never reused even after deletions.
func (r *MemoryProductRepository) NextID() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	return r.nextID, nil
}

// GetAll returns all products. Order is unspecified; sorting is the
// caller's responsibility.
func (r *MemoryProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	return productList, nil
}

// GetByID returns the product with the given ID, or nil when absent.
func (r *MemoryProductRepository) GetByID(id int) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

// Add inserts a new product under its identifier.
func (r *MemoryProductRepository) Add(product models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.products) >= r.maxProducts {
		return ErrCapacityExceeded
	}
	r.products[product.ID] = product
	return nil
}

// Update replaces the stored record, keeping the stored identifier and
// creation timestamp. Returns nil when the ID is absent.
func (r *MemoryProductRepository) Update(id int, product models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	product.ID = existing.ID
	product.DateCreated = existing.DateCreated
	r.products[id] = product
	return &product, nil
}

// Delete removes the product with the given ID and reports whether a
// record was removed.
func (r *MemoryProductRepository) Delete(id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

// Exists reports whether a product with the given ID is stored.
func (r *MemoryProductRepository) Exists(id int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.products[id]
	return ok, nil
}

// Count returns the number of stored products.
func (r *MemoryProductRepository) Count() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.products), nil
}

// Clear empties the store and resets the identifier counter to zero.
func (r *MemoryProductRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = make(map[int]models.Product)
	r.nextID = 0
	return nil
}
