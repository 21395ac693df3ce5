package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"movelaria/internal/models"
	"movelaria/internal/repositories"
	"movelaria/internal/services"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service *services.CatalogService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.CatalogService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app. The guard
// middleware protects every mutating route; pass a pass-through handler to
// leave mutations open.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", guard, h.HandleCreateProduct)
	productRoutes.Put("/:id", guard, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", guard, h.HandleDeleteProduct)
	// Administrative: empties the catalog and resets the ID counter.
	productRoutes.Delete("/", guard, h.HandleClearProducts)
}

// HandleListProducts returns a filtered, sorted, paginated catalog page.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	listing, err := h.service.ListProducts(listParamsFromQuery(c.Queries()))
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return respondError(c, err)
	}
	return c.JSON(listing)
}

// HandleGetProduct returns the full product entity for the given ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.Params("id"))
	if err != nil {
		log.Printf("Error getting product %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var payload models.ProductCreate
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing create product body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.CreateProduct(payload)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces the mutable fields of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var payload models.ProductUpdate
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing update product body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.UpdateProduct(c.Params("id"), payload)
	if err != nil {
		log.Printf("Error updating product %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("id")); err != nil {
		log.Printf("Error deleting product %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", c.Params("id")),
	})
}

// HandleClearProducts empties the catalog.
func (h *ProductHandler) HandleClearProducts(c *fiber.Ctx) error {
	if err := h.service.ClearProducts(); err != nil {
		log.Printf("Error clearing products: %v", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "All products deleted successfully",
	})
}

// listParamsFromQuery lifts the raw query string values into ListParams,
// distinguishing absent parameters from present ones.
func listParamsFromQuery(query map[string]string) models.ListParams {
	var params models.ListParams
	if v, ok := query["category"]; ok {
		params.Category = &v
	}
	if v, ok := query["sort"]; ok {
		params.Sort = &v
	}
	if v, ok := query["page"]; ok {
		params.Page = &v
	}
	if v, ok := query["pageSize"]; ok {
		params.PageSize = &v
	}
	if v, ok := query["available"]; ok {
		params.Available = &v
	}
	if v, ok := query["featured"]; ok {
		params.Featured = &v
	}
	return params
}

// respondError maps service error kinds to HTTP responses: validation
// failures carry field details with a 400, unknown identifiers return 404,
// and a full repository is a server fault.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErr.Fields,
		})
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %d not found", notFoundErr.ID),
		})
	}

	if errors.Is(err, repositories.ErrCapacityExceeded) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Product storage is at capacity",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
		"error":   err.Error(),
	})
}
