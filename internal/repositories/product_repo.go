package repositories

import (
	"context"
	"math"

	"catalog/internal/models"

	"github.com/shopspring/decimal"
)

// Filter keys accepted by FindAll.
const (
	FilterBrand    = "brand"
	FilterCategory = "category"
	FilterMinPrice = "min_price"
	FilterMaxPrice = "max_price"
)

// Pagination bounds.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Filters holds optional exact-match filters keyed by the Filter* constants.
// Absent or empty values do not filter.
type Filters map[string]string

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) (int64, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) error
	FindAll(ctx context.Context, filters Filters, page, perPage int) ([]models.Product, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindNearestPrice(ctx context.Context, price decimal.Decimal) (*models.Product, error)
}

// NormalizePage floors page at 1 and clamps perPage into [1, MaxPerPage].
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// pageOffset returns the row offset of a normalized page. ok is false when
// the offset does not fit in an int; such a page is always empty.
func pageOffset(page, perPage int) (offset int, ok bool) {
	if page-1 > math.MaxInt/perPage {
		return 0, false
	}
	return (page - 1) * perPage, true
}
