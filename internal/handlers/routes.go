package handlers

import (
	"fmt"
	"net/url"
	"strings"

	"catalog/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// Route maps a method and path pattern to a handler name. Patterns may
// contain single named segments such as {id}.
type Route struct {
	Name   string
	Method string
	Path   string
}

// Route names.
const (
	RouteProductsList         = "products_list"
	RouteProductsCreate       = "products_create"
	RouteProductsNearestPrice = "products_nearest_price"
	RouteProductsUpdate       = "products_update"
	RouteProductsDelete       = "products_delete"
	RouteProductsGet          = "products_get"
)

// ProductRoutes is the route table of the API. Routes are tried in order, so
// literal paths must precede patterns they would otherwise collide with.
var ProductRoutes = []Route{
	{Name: RouteProductsList, Method: fiber.MethodGet, Path: "/api/products"},
	{Name: RouteProductsCreate, Method: fiber.MethodPost, Path: "/api/products"},
	{Name: RouteProductsNearestPrice, Method: fiber.MethodGet, Path: "/api/products/nearest-price"},
	{Name: RouteProductsUpdate, Method: fiber.MethodPut, Path: "/api/products/{id}"},
	{Name: RouteProductsDelete, Method: fiber.MethodDelete, Path: "/api/products/{id}"},
	{Name: RouteProductsGet, Method: fiber.MethodGet, Path: "/api/products/{id}"},
}

// RouteMatch is the result of a successful match. Params hold raw string
// values; format checks are left to handlers.
type RouteMatch struct {
	Name   string
	Params map[string]string
}

// HandlerFunc handles a matched route.
type HandlerFunc func(c *fiber.Ctx, params map[string]string) error

type compiledRoute struct {
	Route
	segments []string
}

// Dispatcher matches requests against a route table and invokes the
// handler registered under the matched route's name.
type Dispatcher struct {
	routes   []compiledRoute
	handlers map[string]HandlerFunc
}

// NewDispatcher compiles routes into a Dispatcher.
func NewDispatcher(routes []Route) *Dispatcher {
	d := &Dispatcher{
		routes:   make([]compiledRoute, 0, len(routes)),
		handlers: make(map[string]HandlerFunc, len(routes)),
	}
	for _, r := range routes {
		d.routes = append(d.routes, compiledRoute{Route: r, segments: splitPath(r.Path)})
	}
	return d
}

// Handle registers h under a route name.
func (d *Dispatcher) Handle(name string, h HandlerFunc) {
	d.handlers[name] = h
}

// Match finds the first route matching method and path.
func (d *Dispatcher) Match(method, path string) (RouteMatch, error) {
	segments := splitPath(path)
	for _, r := range d.routes {
		if r.Method != method {
			continue
		}
		if params, ok := matchSegments(r.segments, segments); ok {
			return RouteMatch{Name: r.Name, Params: params}, nil
		}
	}
	return RouteMatch{}, apperror.New(apperror.RouteNotFound, "Not Found")
}

// Serve is the Fiber handler that dispatches every request reaching it.
func (d *Dispatcher) Serve(c *fiber.Ctx) error {
	match, err := d.Match(c.Method(), c.Path())
	if err != nil {
		return err
	}

	h, ok := d.handlers[match.Name]
	if !ok {
		return fmt.Errorf("no handler registered for route %s", match.Name)
	}

	c.Locals("route", match.Name)
	return h(c, match.Params)
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func matchSegments(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}

	params := make(map[string]string)
	for i, seg := range pattern {
		if name, ok := paramName(seg); ok {
			value, err := url.PathUnescape(path[i])
			if err != nil || value == "" {
				return nil, false
			}
			params[name] = value
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}
	return params, true
}

func paramName(segment string) (string, bool) {
	if len(segment) > 2 && strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
		return segment[1 : len(segment)-1], true
	}
	return "", false
}
