package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"movelaria/internal/handlers"
	"movelaria/internal/middleware"
	"movelaria/internal/models"
	"movelaria/internal/repositories"
	"movelaria/internal/services"
	"movelaria/pkg/clock"
)

// setupApp builds a Fiber app over a fresh in-memory repository with the
// full handler wiring, mirroring main.
func setupApp() *fiber.App {
	viper.SetDefault("CLIENT_KEY", "test_client_key")
	viper.AutomaticEnv()
	clientKey := viper.GetString("CLIENT_KEY")

	repo := repositories.NewMemoryProductRepository(0)
	catalogService := services.NewCatalogService(repo, nil, clock.New())
	productHandler := handlers.NewProductHandler(catalogService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1, middleware.ClientKeyRequired(clientKey))

	return app
}

// TestMain suppresses logging during tests for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func postProduct(t *testing.T, app *fiber.App, payload map[string]interface{}) models.Product {
	t.Helper()

	jsonBody, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Key", "test_client_key")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	return created
}

func sofaPayload(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":      name,
		"mainImage": "https://images.movelaria.dev/sofa.jpg",
		"price":     1299.90,
		"category":  "sala de estar",
	}
}

func TestProductLifecycle(t *testing.T) {
	app := setupApp()

	// --- Create ---
	created := postProduct(t, app, map[string]interface{}{
		"name":        "Sofá Chesterfield",
		"description": "Sofá de couro capitonê",
		"mainImage":   "https://images.movelaria.dev/chesterfield.jpg",
		"images":      []string{"https://images.movelaria.dev/chesterfield-2.jpg"},
		"price":       4599.00,
		"category":    "sala de estar",
		"featured":    true,
	})
	assert.Equal(t, 1, created.ID)
	assert.True(t, created.Featured)
	assert.True(t, created.IsNew)
	assert.True(t, created.Available)

	// --- Get ---
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Name, fetched.Name)
	resp.Body.Close()

	// --- Update ---
	updateBody, _ := json.Marshal(map[string]interface{}{
		"name":        "Sofá Chesterfield Premium",
		"description": "Sofá de couro capitonê, edição premium",
		"mainImage":   "https://images.movelaria.dev/chesterfield.jpg",
		"price":       4999.00,
		"category":    "sala de estar",
		"featured":    true,
		"onSale":      true,
		"available":   true,
	})
	req = httptest.NewRequest(http.MethodPut, "/api/v1/products/1", bytes.NewReader(updateBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Key", "test_client_key")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, "Sofá Chesterfield Premium", updated.Name)
	assert.True(t, updated.OnSale)
	// The update omitted images, so the stored list is kept.
	assert.Equal(t, created.Images, updated.Images)
	resp.Body.Close()

	// --- Delete ---
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/products/1", nil)
	req.Header.Set("X-Client-Key", "test_client_key")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var deleteResp map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&deleteResp))
	assert.Contains(t, deleteResp["message"], "deleted successfully")
	resp.Body.Close()

	// --- Verify deletion ---
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// --- Second delete also reports not found ---
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/products/1", nil)
	req.Header.Set("X-Client-Key", "test_client_key")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestListProductsPaginationAndOrdering(t *testing.T) {
	app := setupApp()

	for i := 1; i <= 13; i++ {
		payload := sofaPayload(fmt.Sprintf("Peça %02d", i))
		payload["featured"] = i%3 == 0 // 3, 6, 9, 12
		postProduct(t, app, payload)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?page=1&pageSize=12", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listing models.ProductList
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	resp.Body.Close()

	assert.Len(t, listing.Items, 12)
	// The four featured products lead the page.
	for i, item := range listing.Items {
		if i < 4 {
			assert.True(t, item.Featured, "item %d should be featured", i)
		} else {
			assert.False(t, item.Featured, "item %d should not be featured", i)
		}
	}
	assert.Equal(t, models.Pagination{
		Page:        1,
		PageSize:    12,
		Total:       13,
		TotalPages:  2,
		HasNext:     true,
		HasPrevious: false,
	}, listing.Pagination)
}

func TestListProductsCategoryFilter(t *testing.T) {
	app := setupApp()

	office := sofaPayload("Cadeira de Escritório")
	office["category"] = "escritório"
	postProduct(t, app, office)
	postProduct(t, app, sofaPayload("Sofá de Canto"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=escrit%C3%B3rio", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listing models.ProductList
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	resp.Body.Close()

	assert.Len(t, listing.Items, 1)
	assert.Equal(t, "Cadeira de Escritório", listing.Items[0].Name)
	assert.Equal(t, "escritório", listing.Items[0].Category)
}

func TestListProductsValidationErrors(t *testing.T) {
	app := setupApp()

	for _, query := range []string{
		"category=invalid-value",
		"pageSize=20",
		"page=0",
		"sort=oldest",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products?"+query, nil)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "query %q", query)

		var body struct {
			Message string                `json:"message"`
			Errors  []services.FieldError `json:"errors"`
		}
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Validation failed", body.Message)
		assert.NotEmpty(t, body.Errors)
		resp.Body.Close()
	}
}

func TestCreateProductValidationError(t *testing.T) {
	app := setupApp()

	jsonBody, _ := json.Marshal(map[string]interface{}{
		"name":     "Mesa sem Imagem",
		"category": "cozinha",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Key", "test_client_key")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Errors []services.FieldError `json:"errors"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()

	assert.Len(t, body.Errors, 1)
	assert.Equal(t, "mainImage", body.Errors[0].Field)
}

func TestMutationsRequireClientKey(t *testing.T) {
	app := setupApp()

	jsonBody, _ := json.Marshal(sofaPayload("Sofá sem Chave"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/products/1", nil)
	req.Header.Set("X-Client-Key", "wrong_key")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Reads stay open.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestClearProducts(t *testing.T) {
	app := setupApp()

	postProduct(t, app, sofaPayload("Sofá Temporário"))
	postProduct(t, app, sofaPayload("Mesa Temporária"))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products", nil)
	req.Header.Set("X-Client-Key", "test_client_key")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	var listing models.ProductList
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	resp.Body.Close()
	assert.Empty(t, listing.Items)
	assert.Equal(t, 0, listing.Pagination.Total)
	assert.Equal(t, 0, listing.Pagination.TotalPages)

	// The counter was reset, so the next product starts over at 1.
	recreated := postProduct(t, app, sofaPayload("Sofá Novo"))
	assert.Equal(t, 1, recreated.ID)
}
