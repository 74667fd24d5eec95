package services_test

import (
	"context"
	"errors"
	"testing"

	"catalog/internal/apperror"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) (int64, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filters repositories.Filters, page, perPage int) ([]models.Product, error) {
	args := m.Called(ctx, filters, page, perPage)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) FindNearestPrice(ctx context.Context, price decimal.Decimal) (*models.Product, error) {
	args := m.Called(ctx, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(event rabbitmq.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func validProduct() *models.Product {
	return &models.Product{
		Name:     "Widget",
		Brand:    "Acme",
		Category: "Tools",
		Price:    decimal.RequireFromString("9.99"),
	}
}

func eventOfType(eventType string, id int64) interface{} {
	return mock.MatchedBy(func(e rabbitmq.Event) bool {
		return e.Type == eventType && e.ProductID == id
	})
}

func TestProductService_ListProductsNormalizesPaging(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)
	ctx := context.Background()

	expected := []models.Product{{ID: 2, Name: "B"}, {ID: 1, Name: "A"}}
	filters := repositories.Filters{repositories.FilterBrand: "Acme"}
	mockRepo.On("FindAll", ctx, filters, 1, 100).Return(expected, nil).Once()

	products, err := service.ListProducts(ctx, filters, -3, 500)

	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := services.NewProductService(mockRepo, mockPub)
	ctx := context.Background()

	product := validProduct()
	mockRepo.On("Create", ctx, product).Return(int64(42), nil).Once()
	mockPub.On("PublishEvent", eventOfType(rabbitmq.EventProductCreated, 42)).Return(nil).Once()

	err := service.CreateProduct(ctx, product)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), product.ID)
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestProductService_CreateProductPublishFailureIsNotFatal(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := services.NewProductService(mockRepo, mockPub)
	ctx := context.Background()

	product := validProduct()
	mockRepo.On("Create", ctx, product).Return(int64(1), nil).Once()
	mockPub.On("PublishEvent", mock.Anything).Return(errors.New("broker down")).Once()

	assert.NoError(t, service.CreateProduct(ctx, product))
	mockPub.AssertExpectations(t)
}

func TestProductService_CreateProductValidation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	product := &models.Product{Name: "Widget", Price: decimal.Zero}
	err := service.CreateProduct(context.Background(), product)

	require.Error(t, err)
	assert.Equal(t, apperror.InvalidInput, apperror.KindOf(err))

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Field 'brand' failed on the 'required' tag", appErr.Details["brand"])
	assert.Equal(t, "Field 'category' failed on the 'required' tag", appErr.Details["category"])
	assert.Equal(t, "Field 'price' failed on the 'gt' tag", appErr.Details["price"])
	assert.NotContains(t, appErr.Details, "name")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_CreateProductDuplicate(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := services.NewProductService(mockRepo, mockPub)
	ctx := context.Background()

	product := validProduct()
	mockRepo.On("Create", ctx, product).
		Return(int64(0), apperror.New(apperror.UniqueConstraint, "Product with this name already exists.")).Once()

	err := service.CreateProduct(ctx, product)

	assert.Equal(t, apperror.UniqueConstraint, apperror.KindOf(err))
	mockPub.AssertNotCalled(t, "PublishEvent", mock.Anything)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := services.NewProductService(mockRepo, mockPub)
	ctx := context.Background()

	product := validProduct()
	product.ID = 7
	mockRepo.On("Update", ctx, product).Return(nil).Once()
	mockPub.On("PublishEvent", eventOfType(rabbitmq.EventProductUpdated, 7)).Return(nil).Once()

	assert.NoError(t, service.UpdateProduct(ctx, product))

	missing := validProduct()
	missing.ID = 999
	mockRepo.On("Update", ctx, missing).
		Return(apperror.New(apperror.ResourceNotFound, "Product with ID 999 not found.")).Once()

	err := service.UpdateProduct(ctx, missing)
	assert.Equal(t, apperror.ResourceNotFound, apperror.KindOf(err))

	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := services.NewProductService(mockRepo, mockPub)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(1)).Return(nil).Once()
	mockPub.On("PublishEvent", eventOfType(rabbitmq.EventProductDeleted, 1)).Return(nil).Once()
	assert.NoError(t, service.DeleteProduct(ctx, 1))

	mockRepo.On("Delete", ctx, int64(99)).
		Return(apperror.New(apperror.ResourceNotFound, "Product with ID 99 not found.")).Twice()
	for i := 0; i < 2; i++ {
		err := service.DeleteProduct(ctx, 99)
		assert.Equal(t, apperror.ResourceNotFound, apperror.KindOf(err))
	}

	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestProductService_NearestPrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)
	ctx := context.Background()

	expected := &models.Product{ID: 3, Name: "Nearest"}
	price := decimal.NewFromInt(100)
	mockRepo.On("FindNearestPrice", ctx, price).Return(expected, nil).Once()

	product, err := service.NearestPrice(ctx, price)
	assert.NoError(t, err)
	assert.Equal(t, expected, product)

	_, err = service.NearestPrice(ctx, decimal.Zero)
	assert.Equal(t, apperror.InvalidInput, apperror.KindOf(err))
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("FindByID", ctx, int64(5)).Return(nil, nil).Once()

	product, err := service.GetProduct(ctx, 5)
	assert.NoError(t, err)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}
