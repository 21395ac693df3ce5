package repositories_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"movelaria/internal/models"
	"movelaria/internal/repositories"
)

func newTestProduct(id int, name string) models.Product {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.Product{
		ID:           id,
		Name:         name,
		MainImage:    "https://example.com/img.jpg",
		Images:       []string{},
		Category:     models.CategoryLivingRoom,
		Available:    true,
		IsNew:        true,
		DateCreated:  now,
		DateModified: now,
	}
}

func TestMemoryRepositoryNextIDIsMonotonic(t *testing.T) {
	repo := repositories.NewMemoryProductRepository(0)

	first, err := repo.NextID()
	assert.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := repo.NextID()
	assert.NoError(t, err)
	assert.Equal(t, 2, second)

	// Deleting a record must not free its identifier.
	assert.NoError(t, repo.Add(newTestProduct(second, "Poltrona")))
	removed, err := repo.Delete(second)
	assert.NoError(t, err)
	assert.True(t, removed)

	third, err := repo.NextID()
	assert.NoError(t, err)
	assert.Greater(t, third, second)
}

func TestMemoryRepositoryAddRespectsCapacity(t *testing.T) {
	repo := repositories.NewMemoryProductRepository(2)

	for i := 1; i <= 2; i++ {
		id, err := repo.NextID()
		assert.NoError(t, err)
		assert.NoError(t, repo.Add(newTestProduct(id, "Banco")))
	}

	id, err := repo.NextID()
	assert.NoError(t, err)
	err = repo.Add(newTestProduct(id, "Banco Extra"))
	assert.ErrorIs(t, err, repositories.ErrCapacityExceeded)

	count, err := repo.Count()
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMemoryRepositoryGetByIDAbsent(t *testing.T) {
	repo := repositories.NewMemoryProductRepository(0)

	product, err := repo.GetByID(42)
	assert.NoError(t, err)
	assert.Nil(t, product)
}

func TestMemoryRepositoryUpdatePreservesIdentityAndCreation(t *testing.T) {
	repo := repositories.NewMemoryProductRepository(0)

	id, _ := repo.NextID()
	original := newTestProduct(id, "Estante")
	assert.NoError(t, repo.Add(original))

	replacement := newTestProduct(id, "Estante Alta")
	replacement.ID = 999
	replacement.DateCreated = original.DateCreated.Add(48 * time.Hour)

	updated, err := repo.Update(id, replacement)
	assert.NoError(t, err)
	assert.NotNil(t, updated)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, original.DateCreated, updated.DateCreated)
	assert.Equal(t, "Estante Alta", updated.Name)

	missing, err := repo.Update(12345, replacement)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryRepositoryDeleteAndExists(t *testing.T) {
	repo := repositories.NewMemoryProductRepository(0)

	id, _ := repo.NextID()
	assert.NoError(t, repo.Add(newTestProduct(id, "Cadeira")))

	exists, err := repo.Exists(id)
	assert.NoError(t, err)
	assert.True(t, exists)

	removed, err := repo.Delete(id)
	assert.NoError(t, err)
	assert.True(t, removed)

	exists, err = repo.Exists(id)
	assert.NoError(t, err)
	assert.False(t, exists)

	removed, err = repo.Delete(id)
	assert.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryRepositoryClearResetsCounter(t *testing.T) {
	repo := repositories.NewMemoryProductRepository(0)

	for i := 0; i < 3; i++ {
		id, _ := repo.NextID()
		assert.NoError(t, repo.Add(newTestProduct(id, "Mesa")))
	}

	assert.NoError(t, repo.Clear())

	count, err := repo.Count()
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	id, err := repo.NextID()
	assert.NoError(t, err)
	assert.Equal(t, 1, id)
}
