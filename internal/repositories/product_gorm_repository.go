package repositories

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"movelaria/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository,
// backed by SQLite or Postgres depending on the configured driver.
//
// The identifier counter is seeded from MAX(id) at first allocation, so
// identifiers are monotonic within a process run. After a restart the
// counter resumes from the highest stored ID, which can reuse the IDs of
// trailing deletes; the in-memory backend is the reference for strict
// never-reuse semantics.
type GORMProductRepository struct {
	db          *gorm.DB
	maxProducts int
	nextID      int
	seeded      bool
	mu          sync.Mutex
}

// NewGORMProductRepository creates a new GORMProductRepository bounded at
// maxProducts records. A non-positive bound falls back to
// DefaultMaxProducts.
func NewGORMProductRepository(db *gorm.DB, maxProducts int) *GORMProductRepository {
	if maxProducts <= 0 {
		maxProducts = DefaultMaxProducts
	}
	return &GORMProductRepository{
		db:          db,
		maxProducts: maxProducts,
	}
}

// NextID allocates the next identifier.
func (r *GORMProductRepository) NextID() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.seeded {
		var maxID int64
		err := r.db.Model(&models.Product{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error
		if err != nil {
			return 0, fmt.Errorf("failed to seed product ID counter: %w", err)
		}
		r.nextID = int(maxID)
		r.seeded = true
	}
	r.nextID++
	return r.nextID, nil
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID, or nil when absent.
func (r *GORMProductRepository) GetByID(id int) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Add inserts a new product.
func (r *GORMProductRepository) Add(product models.Product) error {
	count, err := r.Count()
	if err != nil {
		return err
	}
	if count >= r.maxProducts {
		return ErrCapacityExceeded
	}
	if err := r.db.Create(&product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update replaces the stored record, keeping the stored identifier and
// creation timestamp. Returns nil when the ID is absent.
func (r *GORMProductRepository) Update(id int, product models.Product) (*models.Product, error) {
	existing, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	product.ID = existing.ID
	product.DateCreated = existing.DateCreated
	if err := r.db.Save(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

// Delete removes the product with the given ID and reports whether a
// record was removed.
func (r *GORMProductRepository) Delete(id int) (bool, error) {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete product: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether a product with the given ID is stored.
func (r *GORMProductRepository) Exists(id int) (bool, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}
	return count > 0, nil
}

// Count returns the number of stored products.
func (r *GORMProductRepository) Count() (int, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return int(count), nil
}

// Clear empties the store and resets the identifier counter.
func (r *GORMProductRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{})
	if res.Error != nil {
		return fmt.Errorf("failed to clear products: %w", res.Error)
	}
	r.nextID = 0
	r.seeded = true
	return nil
}
