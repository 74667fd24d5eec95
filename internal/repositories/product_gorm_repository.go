package repositories

import (
	"context"
	"errors"
	"fmt"

	"catalog/internal/apperror"
	"catalog/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Create inserts every column except id and returns the assigned id.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) (int64, error) {
	row := *product
	row.ID = 0
	if err := r.db.WithContext(ctx).Select(writableColumns()).Create(&row).Error; err != nil {
		return 0, translateWriteError("create", err)
	}
	return row.ID, nil
}

// Update replaces every column of the row identified by product.ID. The
// existence check and the write run in one transaction holding a row lock,
// so a concurrent delete cannot slip in between them.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	if product.ID == 0 {
		return apperror.New(apperror.InvalidInput, "Cannot update product without ID")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findOne(tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", product.ID))
		if err != nil {
			return apperror.Wrap(apperror.StorageFailure, "Failed to update product", err)
		}
		if existing == nil {
			return errNotFound(product.ID)
		}

		res := tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(models.ColumnValues(product))
		if res.Error != nil {
			return translateWriteError("update", res.Error)
		}
		if res.RowsAffected == 0 {
			return errNotFound(product.ID)
		}
		return nil
	})
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	// Commit failures surface here unclassified.
	return translateWriteError("update", err)
}

// Delete physically removes the row with the given id.
func (r *GORMProductRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return apperror.Wrap(apperror.StorageFailure, "Failed to delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return errDeleteNotFound(id)
	}
	return nil
}

// FindAll returns one page of products, newest first.
//
// Only brand and category narrow the query. min_price and max_price are
// accepted in filters but not applied.
func (r *GORMProductRepository) FindAll(ctx context.Context, filters Filters, page, perPage int) ([]models.Product, error) {
	page, perPage = NormalizePage(page, perPage)
	offset, ok := pageOffset(page, perPage)
	if !ok {
		return []models.Product{}, nil
	}

	q := r.db.WithContext(ctx)
	if brand := filters[FilterBrand]; brand != "" {
		q = q.Where("brand = ?", brand)
	}
	if category := filters[FilterCategory]; category != "" {
		q = q.Where("category = ?", category)
	}
	q = q.Order("id DESC").Limit(perPage).Offset(offset)

	products, err := scanProducts(q)
	if err != nil {
		return nil, apperror.Wrap(apperror.StorageFailure, "Failed to get products", err)
	}
	return products, nil
}

// FindByID returns nil without error when no row matches.
func (r *GORMProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	product, err := findOne(r.db.WithContext(ctx).Where("id = ?", id))
	if err != nil {
		return nil, apperror.Wrap(apperror.StorageFailure, "Failed to find product", err)
	}
	return product, nil
}

// FindNearestPrice returns the product whose price is closest to price,
// preferring the highest id on ties. It returns nil only for an empty table.
func (r *GORMProductRepository) FindNearestPrice(ctx context.Context, price decimal.Decimal) (*models.Product, error) {
	q := r.db.WithContext(ctx).Order(clause.OrderBy{
		Expression: clause.Expr{
			SQL:                "ABS(price - ?) ASC, id DESC",
			Vars:               []any{price},
			WithoutParentheses: true,
		},
	})
	product, err := findOne(q)
	if err != nil {
		return nil, apperror.Wrap(apperror.StorageFailure, "Failed to find nearest price", err)
	}
	return product, nil
}

func findOne(q *gorm.DB) (*models.Product, error) {
	products, err := scanProducts(q.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

// scanProducts reads rows as column maps and hydrates them through the
// product field table.
func scanProducts(q *gorm.DB) ([]models.Product, error) {
	var rows []map[string]any
	if err := q.Model(&models.Product{}).Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		var p models.Product
		if err := models.HydrateRow(row, &p); err != nil {
			return nil, fmt.Errorf("failed to hydrate product row: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}

func writableColumns() []string {
	columns := make([]string, 0, len(models.ProductFields))
	for _, f := range models.ProductFields {
		if f.Settable {
			columns = append(columns, f.Column)
		}
	}
	return columns
}
