package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"

	"catalog/internal/apperror"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// EventPublisher publishes catalog change events.
type EventPublisher interface {
	PublishEvent(event rabbitmq.Event) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	validate  *validator.Validate
}

// NewProductService creates a new ProductService. A nil publisher disables
// event publishing.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		validate:  newValidator(),
	}
}

// ListProducts returns one page of products matching filters.
func (s *ProductService) ListProducts(ctx context.Context, filters repositories.Filters, page, perPage int) ([]models.Product, error) {
	page, perPage = repositories.NormalizePage(page, perPage)
	return s.repo.FindAll(ctx, filters, page, perPage)
}

// GetProduct returns the product with the given id, or nil when absent.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// NearestPrice returns the product priced closest to price, or nil when the
// catalog is empty.
func (s *ProductService) NearestPrice(ctx context.Context, price decimal.Decimal) (*models.Product, error) {
	if !price.IsPositive() {
		return nil, apperror.New(apperror.InvalidInput, "Price must be greater than 0")
	}
	return s.repo.FindNearestPrice(ctx, price)
}

// CreateProduct validates and stores a new product, setting its ID.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.validateProduct(product); err != nil {
		return err
	}

	id, err := s.repo.Create(ctx, product)
	if err != nil {
		return err
	}
	product.ID = id

	s.publish(rabbitmq.EventProductCreated, product.ID, product)
	return nil
}

// UpdateProduct validates and fully replaces an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := s.validateProduct(product); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}

	s.publish(rabbitmq.EventProductUpdated, product.ID, product)
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(rabbitmq.EventProductDeleted, id, nil)
	return nil
}

func (s *ProductService) validateProduct(product *models.Product) error {
	err := s.validate.Struct(product)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperror.Wrap(apperror.InvalidInput, "Validation failed", err)
	}

	details := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		details[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	appErr := apperror.Wrap(apperror.InvalidInput, "Validation failed", err)
	appErr.Details = details
	return appErr
}

// publish is best effort: the write has already happened.
func (s *ProductService) publish(eventType string, id int64, product *models.Product) {
	if s.publisher == nil {
		return
	}

	var payload map[string]any
	if product != nil {
		payload = product.ToMap()
	}
	if err := s.publisher.PublishEvent(rabbitmq.NewEvent(eventType, id, payload)); err != nil {
		log.Printf("Warning: failed to publish %s event for product %d: %v", eventType, id, err)
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
