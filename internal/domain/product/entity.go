// internal/domain/product/entity.go
package product

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultCategory = "General"
	DefaultRating   = 5.0
)

// Product is the catalog record the backend returns for a product id
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Rating      float64         `json:"rating"`
	Description string          `json:"description"`
	IsActive    *bool           `json:"isActive,omitempty"`
}

// Category is a catalog category
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Category string `form:"category"`
	Search   string `form:"search"`
}

// ProductResponse represents one page of products
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// WithDefaults fills the display fields the backend may leave empty
func (p Product) WithDefaults() Product {
	if strings.TrimSpace(p.Category) == "" {
		p.Category = DefaultCategory
	}
	if p.Rating == 0 {
		p.Rating = DefaultRating
	}
	return p
}

// Placeholder stands in for a product whose details could not be fetched
func Placeholder(id string) Product {
	return Product{
		ID:          id,
		Name:        "Product unavailable",
		Category:    DefaultCategory,
		Rating:      DefaultRating,
		Description: "Product details could not be loaded.",
	}
}
