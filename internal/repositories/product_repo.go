package repositories

import (
	"errors"

	"movelaria/internal/models"
)

// ErrCapacityExceeded is returned by Add when the repository already holds
// the configured maximum number of products. It is a server-side fault: the
// caller did nothing wrong, so it must not surface as a validation error.
var ErrCapacityExceeded = errors.New("product repository is at capacity")

// DefaultMaxProducts is the capacity bound applied when none is configured.
const DefaultMaxProducts = 10000

// ProductRepository defines the interface for product storage.
//
// Absence of a record is not an error at this layer: GetByID and Update
// return (nil, nil) for an unknown ID, and Delete reports whether a record
// was removed. The error return is reserved for storage faults.
type ProductRepository interface {
	// NextID allocates an identifier strictly greater than every identifier
	// previously allocated by this instance. Identifiers start at 1 and are
	// never reused, even after deletion.
	NextID() (int, error)
	GetAll() ([]models.Product, error)
	GetByID(id int) (*models.Product, error)
	// Add inserts the record under its identifier. It fails with
	// ErrCapacityExceeded when the store is full; it trusts the caller to
	// have allocated the ID via NextID and performs no duplicate check.
	Add(product models.Product) error
	// Update replaces the stored record's mutable fields with those of
	// product, preserving the stored identifier and creation timestamp, and
	// returns the resulting record.
	Update(id int, product models.Product) (*models.Product, error)
	Delete(id int) (bool, error)
	Exists(id int) (bool, error)
	Count() (int, error)
	// Clear empties the store and resets the identifier counter.
	// Administrative and test use only.
	Clear() error
}
