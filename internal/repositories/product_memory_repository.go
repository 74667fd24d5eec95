package repositories

import (
	"context"
	"sort"
	"sync"

	"catalog/internal/apperror"
	"catalog/internal/models"

	"github.com/shopspring/decimal"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// It enforces the same name uniqueness and ordering rules as the SQL store.
type MemoryProductRepository struct {
	products map[int64]models.Product
	nextID   int64
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[int64]models.Product),
	}
}

// Create adds a new product and returns its id.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(product.Name, 0) {
		return 0, apperror.New(apperror.UniqueConstraint, msgDuplicateName)
	}

	r.nextID++
	row := clone(*product)
	row.ID = r.nextID
	r.products[row.ID] = row
	return row.ID, nil
}

// Update replaces an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	if product.ID == 0 {
		return apperror.New(apperror.InvalidInput, "Cannot update product without ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return errNotFound(product.ID)
	}
	if r.nameTaken(product.Name, product.ID) {
		return apperror.New(apperror.UniqueConstraint, msgDuplicateName)
	}
	r.products[product.ID] = clone(*product)
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return errDeleteNotFound(id)
	}
	delete(r.products, id)
	return nil
}

// FindAll returns one page of products, newest first. Like the SQL store it
// applies only the brand and category filters.
func (r *MemoryProductRepository) FindAll(_ context.Context, filters Filters, page, perPage int) ([]models.Product, error) {
	page, perPage = NormalizePage(page, perPage)
	offset, ok := pageOffset(page, perPage)
	if !ok {
		return []models.Product{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	brand, category := filters[FilterBrand], filters[FilterCategory]
	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if brand != "" && p.Brand != brand {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		matched = append(matched, clone(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	if offset >= len(matched) {
		return []models.Product{}, nil
	}
	end := offset + perPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// FindByID returns a product by its ID, or nil when absent.
func (r *MemoryProductRepository) FindByID(_ context.Context, id int64) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	p = clone(p)
	return &p, nil
}

// FindNearestPrice returns the product with the smallest absolute price
// difference, preferring the highest id on ties.
func (r *MemoryProductRepository) FindNearestPrice(_ context.Context, price decimal.Decimal) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best     *models.Product
		bestDiff decimal.Decimal
	)
	for _, p := range r.products {
		diff := p.Price.Sub(price).Abs()
		if best == nil || diff.LessThan(bestDiff) || (diff.Equal(bestDiff) && p.ID > best.ID) {
			candidate := clone(p)
			best = &candidate
			bestDiff = diff
		}
	}
	return best, nil
}

func (r *MemoryProductRepository) nameTaken(name string, exceptID int64) bool {
	for id, p := range r.products {
		if id != exceptID && p.Name == name {
			return true
		}
	}
	return false
}

func clone(p models.Product) models.Product {
	if p.Description != nil {
		p.Description = models.StringPtr(*p.Description)
	}
	return p
}
