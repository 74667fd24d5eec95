package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"catalog/internal/apperror"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const (
	msgBodyEmpty       = "Request body is empty."
	msgBodyMalformed   = "Malformed JSON body."
	msgBodyNotObject   = "Request body must be a JSON object."
	msgIDRequired      = "Product ID is required."
	msgProductNotFound = "Product not found."
	msgProductDeleted  = "Product deleted successfully."
	msgPriceInvalid    = "Price must be greater than 0"
	msgNearestNotFound = "No product found with the nearest price."
)

var listFilterKeys = []string{
	repositories.FilterBrand,
	repositories.FilterCategory,
	repositories.FilterMinPrice,
	repositories.FilterMaxPrice,
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the product handlers with the dispatcher.
func (h *ProductHandler) RegisterRoutes(d *Dispatcher) {
	d.Handle(RouteProductsList, h.HandleList)
	d.Handle(RouteProductsCreate, h.HandleCreate)
	d.Handle(RouteProductsNearestPrice, h.HandleNearestPrice)
	d.Handle(RouteProductsUpdate, h.HandleUpdate)
	d.Handle(RouteProductsDelete, h.HandleDelete)
	d.Handle(RouteProductsGet, h.HandleGet)
}

// HandleList returns one page of products.
func (h *ProductHandler) HandleList(c *fiber.Ctx, _ map[string]string) error {
	page := c.QueryInt("page", repositories.DefaultPage)
	perPage := c.QueryInt("per_page", repositories.DefaultPerPage)

	filters := repositories.Filters{}
	for _, key := range listFilterKeys {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}

	products, err := h.service.ListProducts(c.UserContext(), filters, page, perPage)
	if err != nil {
		return err
	}

	data := make([]map[string]any, 0, len(products))
	for i := range products {
		data = append(data, products[i].ToMap())
	}
	return respondSuccess(c, fiber.StatusOK, data, "")
}

// HandleCreate creates a product from the request body.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx, _ map[string]string) error {
	body, err := decodeObject(c.Body())
	if err != nil {
		return err
	}

	product := &models.Product{}
	if err := hydrate(product, body); err != nil {
		return err
	}

	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		return err
	}
	return respondSuccess(c, fiber.StatusCreated, product.ToMap(), "")
}

// HandleUpdate replaces every settable field of an existing product.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx, params map[string]string) error {
	id, err := parseID(params)
	if err != nil {
		return err
	}

	body, err := decodeObject(c.Body())
	if err != nil {
		return err
	}

	product := &models.Product{}
	if err := hydrate(product, body); err != nil {
		return err
	}
	product.ID = id

	if err := h.service.UpdateProduct(c.UserContext(), product); err != nil {
		return err
	}
	return respondSuccess(c, fiber.StatusOK, product.ToMap(), "")
}

// HandleDelete deletes a product by ID.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx, params map[string]string) error {
	id, err := parseID(params)
	if err != nil {
		return err
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return err
	}
	return respondSuccess(c, fiber.StatusOK, emptyData, msgProductDeleted)
}

// HandleGet returns a single product by ID.
func (h *ProductHandler) HandleGet(c *fiber.Ctx, params map[string]string) error {
	id, err := parseID(params)
	if err != nil {
		return err
	}

	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.New(apperror.ResourceNotFound, msgProductNotFound)
	}
	return respondSuccess(c, fiber.StatusOK, product.ToMap(), "")
}

// HandleNearestPrice returns the product whose price is closest to the
// price query parameter.
func (h *ProductHandler) HandleNearestPrice(c *fiber.Ctx, _ map[string]string) error {
	price, err := decimal.NewFromString(c.Query("price"))
	if err != nil || !price.IsPositive() {
		return apperror.New(apperror.InvalidInput, msgPriceInvalid)
	}

	product, err := h.service.NearestPrice(c.UserContext(), price)
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.New(apperror.ResourceNotFound, msgNearestNotFound)
	}
	return respondSuccess(c, fiber.StatusOK, product.ToMap(), "")
}

func parseID(params map[string]string) (int64, error) {
	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil {
		return 0, apperror.New(apperror.InvalidInput, msgIDRequired)
	}
	return id, nil
}

// decodeObject parses body as a single JSON object. Numbers are kept as
// json.Number so prices are not rounded through float64.
func decodeObject(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, apperror.New(apperror.MalformedBody, msgBodyEmpty)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, apperror.Wrap(apperror.MalformedBody, msgBodyMalformed, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, apperror.New(apperror.MalformedBody, msgBodyMalformed)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, apperror.New(apperror.InvalidInput, msgBodyNotObject)
	}
	return obj, nil
}

func hydrate(product *models.Product, body map[string]any) error {
	err := models.HydrateRequest(body, product)
	if err == nil {
		return nil
	}

	var fieldErr *models.FieldError
	if errors.As(err, &fieldErr) {
		return apperror.Wrap(apperror.InvalidInput, fieldErr.Error(), err)
	}
	return apperror.Wrap(apperror.InvalidInput, "Invalid request body.", err)
}
