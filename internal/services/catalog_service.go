package services

import (
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"movelaria/internal/models"
	"movelaria/internal/repositories"
	"movelaria/pkg/clock"
	"movelaria/pkg/rabbitmq"
)

// A product counts as new for 30 days after creation.
const newProductWindow = 30 * 24 * time.Hour

// CatalogService handles business logic for the product catalog: the list
// query pipeline (validate, filter, sort, paginate, project) and the CRUD
// operations with their timestamp and isNew rules.
type CatalogService struct {
	repo     repositories.ProductRepository
	mqClient *rabbitmq.Client // nil disables event publishing
	clock    clock.Clock
	validate *validator.Validate
}

// NewCatalogService creates a new CatalogService. mqClient may be nil when
// no message broker is configured.
func NewCatalogService(repo repositories.ProductRepository, mqClient *rabbitmq.Client, clk clock.Clock) *CatalogService {
	if clk == nil {
		clk = clock.New()
	}

	v := validator.New()
	// Report errors under the wire field names, not the Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("furniturecategory", func(fl validator.FieldLevel) bool {
		return models.ValidCategory(fl.Field().String())
	})

	return &CatalogService{
		repo:     repo,
		mqClient: mqClient,
		clock:    clk,
		validate: v,
	}
}

// ListProducts validates the raw query parameters, then filters, sorts,
// paginates and projects the catalog. The pipeline order is a contract:
// category filter, available filter, featured filter, featured-first sort
// with the chosen secondary key, pagination, list projection.
func (s *CatalogService) ListProducts(params models.ListParams) (*models.ProductList, error) {
	query, err := s.parseListQuery(params)
	if err != nil {
		return nil, err
	}

	products, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if query.Category != nil && p.Category != *query.Category {
			continue
		}
		if query.Available != nil && p.Available != *query.Available {
			continue
		}
		if query.Featured != nil && p.Featured != *query.Featured {
			continue
		}
		filtered = append(filtered, p)
	}

	sortProducts(filtered, query.Sort)

	total := len(filtered)
	totalPages := 0
	if total > 0 {
		totalPages = (total + query.PageSize - 1) / query.PageSize
	}

	// An offset past the end yields an empty page, not an error.
	items := []models.ProductListItem{}
	offset := (query.Page - 1) * query.PageSize
	if offset < total {
		end := offset + query.PageSize
		if end > total {
			end = total
		}
		for _, p := range filtered[offset:end] {
			items = append(items, p.ListItem())
		}
	}

	return &models.ProductList{
		Items: items,
		Pagination: models.Pagination{
			Page:        query.Page,
			PageSize:    query.PageSize,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     query.Page < totalPages,
			HasPrevious: query.Page > 1,
		},
	}, nil
}

// GetProduct retrieves the full product entity for the given raw
// identifier parameter.
func (s *CatalogService) GetProduct(rawID string) (*models.Product, error) {
	id, err := parseProductID(rawID)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", id, err)
	}
	if product == nil {
		return nil, &NotFoundError{ID: id}
	}
	return product, nil
}

// CreateProduct validates the payload, applies creation defaults and
// persists a new product. A freshly created product is always new and
// carries identical creation and modification timestamps.
func (s *CatalogService) CreateProduct(payload models.ProductCreate) (*models.Product, error) {
	if err := s.validatePayload(payload); err != nil {
		return nil, err
	}

	id, err := s.repo.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate product ID: %w", err)
	}

	images := payload.Images
	if images == nil {
		images = []string{}
	}

	now := s.clock.Now().UTC()
	product := models.Product{
		ID:               id,
		Name:             payload.Name,
		Description:      payload.Description,
		MainImage:        payload.MainImage,
		Images:           images,
		Price:            payload.Price,
		Category:         payload.Category,
		ShortDescription: payload.ShortDescription,
		Dimensions:       payload.Dimensions,
		Featured:         boolOrDefault(payload.Featured, false),
		OnSale:           boolOrDefault(payload.OnSale, false),
		Available:        boolOrDefault(payload.Available, true),
		IsNew:            true,
		DateCreated:      now,
		DateModified:     now,
	}

	if err := s.repo.Add(product); err != nil {
		return nil, err
	}

	s.publishEvent(models.EventProductCreated, product.ID)
	return &product, nil
}

// UpdateProduct validates the identifier and the full mutable-field
// payload, then replaces the stored product. isNew is recomputed from the
// existing record's creation time, never from the payload; an omitted or
// empty images list keeps the stored images.
func (s *CatalogService) UpdateProduct(rawID string, payload models.ProductUpdate) (*models.Product, error) {
	id, err := parseProductID(rawID)
	if err != nil {
		return nil, err
	}
	if err := s.validatePayload(payload); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", id, err)
	}
	if existing == nil {
		return nil, &NotFoundError{ID: id}
	}

	images := payload.Images
	if len(images) == 0 {
		images = existing.Images
	}

	now := s.clock.Now().UTC()
	updated := models.Product{
		ID:               id,
		Name:             payload.Name,
		Description:      payload.Description,
		MainImage:        payload.MainImage,
		Images:           images,
		Price:            payload.Price,
		Category:         payload.Category,
		ShortDescription: payload.ShortDescription,
		Dimensions:       payload.Dimensions,
		Featured:         *payload.Featured,
		OnSale:           *payload.OnSale,
		Available:        *payload.Available,
		IsNew:            now.Sub(existing.DateCreated) <= newProductWindow,
		DateCreated:      existing.DateCreated,
		DateModified:     now,
	}

	stored, err := s.repo.Update(id, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	if stored == nil {
		return nil, &NotFoundError{ID: id}
	}

	s.publishEvent(models.EventProductUpdated, id)
	return stored, nil
}

// DeleteProduct validates the identifier and removes the product.
func (s *CatalogService) DeleteProduct(rawID string) error {
	id, err := parseProductID(rawID)
	if err != nil {
		return err
	}

	removed, err := s.repo.Delete(id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if !removed {
		return &NotFoundError{ID: id}
	}

	s.publishEvent(models.EventProductDeleted, id)
	return nil
}

// ClearProducts empties the catalog and resets the identifier counter.
// Administrative use only.
func (s *CatalogService) ClearProducts() error {
	if err := s.repo.Clear(); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}
	return nil
}

// parseListQuery validates and coerces raw list parameters, collecting one
// field error per invalid parameter.
func (s *CatalogService) parseListQuery(params models.ListParams) (*models.ListQuery, error) {
	query := &models.ListQuery{
		Sort:     models.SortNewest,
		Page:     1,
		PageSize: models.PageSizes[0],
	}
	var fields []FieldError

	if params.Category != nil {
		if !models.ValidCategory(*params.Category) {
			fields = append(fields, FieldError{
				Field:   "category",
				Message: fmt.Sprintf("must be one of: %s", strings.Join(models.Categories, ", ")),
			})
		} else {
			query.Category = params.Category
		}
	}
	if params.Sort != nil {
		if !models.ValidSort(*params.Sort) {
			fields = append(fields, FieldError{
				Field:   "sort",
				Message: "must be one of: newest, name-asc, name-desc, price-asc, price-desc",
			})
		} else {
			query.Sort = *params.Sort
		}
	}
	if params.Page != nil {
		page, err := strconv.Atoi(*params.Page)
		if err != nil || page < 1 {
			fields = append(fields, FieldError{Field: "page", Message: "must be an integer greater than or equal to 1"})
		} else {
			query.Page = page
		}
	}
	if params.PageSize != nil {
		size, err := strconv.Atoi(*params.PageSize)
		if err != nil || !models.ValidPageSize(size) {
			fields = append(fields, FieldError{Field: "pageSize", Message: "must be one of: 12, 24, 36, 48"})
		} else {
			query.PageSize = size
		}
	}
	if params.Available != nil {
		available := *params.Available == "true"
		query.Available = &available
	}
	if params.Featured != nil {
		featured := *params.Featured == "true"
		query.Featured = &featured
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return query, nil
}

// validatePayload runs struct validation and converts the result to the
// per-field error shape of the API.
func (s *CatalogService) validatePayload(payload interface{}) error {
	err := s.validate.Struct(payload)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("payload validation failed: %w", err)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return &ValidationError{Fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "url":
		return "must be a valid URL"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "furniturecategory":
		return fmt.Sprintf("must be one of: %s", strings.Join(models.Categories, ", "))
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// parseProductID validates that the raw identifier parameter is a positive
// integer.
func parseProductID(rawID string) (int, error) {
	id, err := strconv.Atoi(rawID)
	if err != nil || id < 1 {
		return 0, &ValidationError{Fields: []FieldError{
			{Field: "id", Message: "must be a positive integer"},
		}}
	}
	return id, nil
}

// sortProducts orders products featured-first, then by the chosen sort key.
// The sort is stable so records equal under both keys keep their relative
// order.
func sortProducts(products []models.Product, sortKey string) {
	less := secondaryLess(sortKey)
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		return less(a, b)
	})
}

func secondaryLess(sortKey string) func(a, b models.Product) bool {
	switch sortKey {
	case models.SortNameAsc, models.SortNameDesc:
		// Collators are stateful, so build one per sort.
		c := collate.New(language.BrazilianPortuguese)
		if sortKey == models.SortNameAsc {
			return func(a, b models.Product) bool { return c.CompareString(a.Name, b.Name) < 0 }
		}
		return func(a, b models.Product) bool { return c.CompareString(a.Name, b.Name) > 0 }
	case models.SortPriceAsc:
		return func(a, b models.Product) bool { return priceBefore(a.Price, b.Price, false) }
	case models.SortPriceDesc:
		return func(a, b models.Product) bool { return priceBefore(a.Price, b.Price, true) }
	default: // newest
		return func(a, b models.Product) bool { return a.DateCreated.After(b.DateCreated) }
	}
}

// priceBefore reports whether price a sorts before price b. A nil price
// ("price on request") sorts after every non-nil price regardless of
// direction.
func priceBefore(a, b *float64, desc bool) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	case desc:
		return *a > *b
	default:
		return *a < *b
	}
}

func (s *CatalogService) publishEvent(eventType string, productID int) {
	if s.mqClient == nil {
		return
	}

	event := models.ProductEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		ProductID:  productID,
		OccurredAt: s.clock.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal catalog event: %v", err)
		return
	}

	if err := s.mqClient.Publish(body); err != nil {
		log.Printf("Warning: failed to publish %s event for product %d: %v", eventType, productID, err)
	}
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
