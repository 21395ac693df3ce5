package models

import "time"

// Category wire values. Matching is byte-exact and case-sensitive; these are
// the values the frontend sends, not display labels.
const (
	CategoryLivingRoom = "sala de estar"
	CategoryBedroom    = "quarto"
	CategoryKitchen    = "cozinha"
	CategoryOffice     = "escritório"
	CategoryBathroom   = "banheiro"
	CategoryOutdoor    = "área externa"
)

// Categories lists every accepted category value.
var Categories = []string{
	CategoryLivingRoom,
	CategoryBedroom,
	CategoryKitchen,
	CategoryOffice,
	CategoryBathroom,
	CategoryOutdoor,
}

// ValidCategory reports whether c is one of the accepted category values.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product represents a furniture item in the catalog.
//
// Price is nil for "price on request" items. IsNew is derived: true at
// creation, recomputed on every update from DateCreated. DateCreated never
// changes after creation.
type Product struct {
	ID               int       `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name" gorm:"size:60"`
	Description      *string   `json:"description" gorm:"size:500"`
	MainImage        string    `json:"mainImage"`
	Images           []string  `json:"images" gorm:"serializer:json"`
	Price            *float64  `json:"price"`
	Category         string    `json:"category"`
	ShortDescription *string   `json:"shortDescription" gorm:"size:150"`
	Dimensions       *string   `json:"dimensions" gorm:"size:50"`
	Featured         bool      `json:"featured"`
	OnSale           bool      `json:"onSale"`
	Available        bool      `json:"available"`
	IsNew            bool      `json:"isNew"`
	DateCreated      time.Time `json:"dateCreated"`
	DateModified     time.Time `json:"dateModified"`
}

// ProductListItem is the reduced projection returned by the list endpoint.
// Long text fields and timestamps are omitted for catalog browsing.
type ProductListItem struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	MainImage string   `json:"mainImage"`
	Price     *float64 `json:"price"`
	Category  string   `json:"category"`
	Featured  bool     `json:"featured"`
	IsNew     bool     `json:"isNew"`
	OnSale    bool     `json:"onSale"`
	Available bool     `json:"available"`
}

// ListItem projects the product to its list-view shape.
func (p Product) ListItem() ProductListItem {
	return ProductListItem{
		ID:        p.ID,
		Name:      p.Name,
		MainImage: p.MainImage,
		Price:     p.Price,
		Category:  p.Category,
		Featured:  p.Featured,
		IsNew:     p.IsNew,
		OnSale:    p.OnSale,
		Available: p.Available,
	}
}

// ProductCreate is the payload accepted when creating a product. Featured,
// OnSale and Available are pointers so that an absent field is
// distinguishable from an explicit false; defaults are applied by the
// service (featured=false, onSale=false, available=true).
type ProductCreate struct {
	Name             string   `json:"name" validate:"required,min=1,max=60"`
	Description      *string  `json:"description" validate:"omitempty,max=500"`
	MainImage        string   `json:"mainImage" validate:"required,url"`
	Images           []string `json:"images" validate:"omitempty,dive,url"`
	Price            *float64 `json:"price" validate:"omitempty,gt=0"`
	Category         string   `json:"category" validate:"required,furniturecategory"`
	ShortDescription *string  `json:"shortDescription" validate:"omitempty,max=150"`
	Dimensions       *string  `json:"dimensions" validate:"omitempty,max=50"`
	Featured         *bool    `json:"featured"`
	OnSale           *bool    `json:"onSale"`
	Available        *bool    `json:"available"`
}

// ProductUpdate is the payload accepted when updating a product. Every
// mutable field is required except Images: an omitted or empty images list
// keeps the stored value. The two cases are not distinguishable on purpose.
type ProductUpdate struct {
	Name             string   `json:"name" validate:"required,min=1,max=60"`
	Description      *string  `json:"description" validate:"omitempty,max=500"`
	MainImage        string   `json:"mainImage" validate:"required,url"`
	Images           []string `json:"images" validate:"omitempty,dive,url"`
	Price            *float64 `json:"price" validate:"omitempty,gt=0"`
	Category         string   `json:"category" validate:"required,furniturecategory"`
	ShortDescription *string  `json:"shortDescription" validate:"omitempty,max=150"`
	Dimensions       *string  `json:"dimensions" validate:"omitempty,max=50"`
	Featured         *bool    `json:"featured" validate:"required"`
	OnSale           *bool    `json:"onSale" validate:"required"`
	Available        *bool    `json:"available" validate:"required"`
}
