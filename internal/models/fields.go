package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of fractional digits kept for prices.
const PriceScale = 2

// FieldError reports a value that cannot be assigned to a product field, or
// a field given more than once under keys that normalize to the same name.
type FieldError struct {
	Field     string
	Value     any
	Duplicate bool
}

func (e *FieldError) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("duplicate value for field '%s'", e.Field)
	}
	return fmt.Sprintf("invalid value for field '%s'", e.Field)
}

// Field describes one column of the products table.
type Field struct {
	Column string
	// Settable is false for fields that a request body may not assign.
	Settable bool
	Get      func(p *Product) any
	Set      func(p *Product, v any) error
}

// ProductFields is the static field table used to decode request bodies,
// hydrate rows read from storage, build write sets and serialize products.
var ProductFields = []Field{
	{
		Column: "id",
		Get:    func(p *Product) any { return p.ID },
		Set: func(p *Product, v any) error {
			id, err := toInt64(v)
			if err != nil {
				return &FieldError{Field: "id", Value: v}
			}
			p.ID = id
			return nil
		},
	},
	{
		Column:   "name",
		Settable: true,
		Get:      func(p *Product) any { return p.Name },
		Set:      stringSetter("name", func(p *Product, s string) { p.Name = s }),
	},
	{
		Column:   "description",
		Settable: true,
		Get: func(p *Product) any {
			if p.Description == nil {
				return nil
			}
			return *p.Description
		},
		Set: func(p *Product, v any) error {
			if v == nil {
				p.Description = nil
				return nil
			}
			if sp, ok := v.(*string); ok {
				if sp == nil {
					p.Description = nil
					return nil
				}
				p.Description = StringPtr(*sp)
				return nil
			}
			s, ok := toString(v)
			if !ok {
				return &FieldError{Field: "description", Value: v}
			}
			p.Description = &s
			return nil
		},
	},
	{
		Column:   "brand",
		Settable: true,
		Get:      func(p *Product) any { return p.Brand },
		Set:      stringSetter("brand", func(p *Product, s string) { p.Brand = s }),
	},
	{
		Column:   "category",
		Settable: true,
		Get:      func(p *Product) any { return p.Category },
		Set:      stringSetter("category", func(p *Product, s string) { p.Category = s }),
	},
	{
		Column:   "price",
		Settable: true,
		Get:      func(p *Product) any { return p.Price },
		Set: func(p *Product, v any) error {
			d, err := ToPrice(v)
			if err != nil {
				return &FieldError{Field: "price", Value: v}
			}
			p.Price = d
			return nil
		},
	},
}

var fieldIndex = func() map[string]Field {
	idx := make(map[string]Field, len(ProductFields))
	for _, f := range ProductFields {
		idx[NormalizeFieldName(f.Column)] = f
	}
	return idx
}()

// NormalizeFieldName maps an external key (snake_case, any letter case) to
// the lookup form used by the field table.
func NormalizeFieldName(key string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "_", ""))
}

// LookupField returns the field matching key after normalization.
func LookupField(key string) (Field, bool) {
	f, ok := fieldIndex[NormalizeFieldName(key)]
	return f, ok
}

// HydrateRequest applies the settable fields found in a decoded request body
// to p. Unknown keys and non-settable fields such as id are ignored.
func HydrateRequest(data map[string]any, p *Product) error {
	return hydrate(data, p, false)
}

// HydrateRow applies a storage row to p, including its id.
func HydrateRow(row map[string]any, p *Product) error {
	return hydrate(row, p, true)
}

func hydrate(data map[string]any, p *Product, includeReadOnly bool) error {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make(map[string]any, len(ProductFields))
	for _, key := range keys {
		f, ok := LookupField(key)
		if !ok || (!f.Settable && !includeReadOnly) {
			continue
		}
		if _, seen := values[f.Column]; seen {
			return &FieldError{Field: f.Column, Value: data[key], Duplicate: true}
		}
		values[f.Column] = data[key]
	}

	// Apply in table order so errors are reported in a stable order.
	for _, f := range ProductFields {
		value, ok := values[f.Column]
		if !ok {
			continue
		}
		if err := f.Set(p, value); err != nil {
			return err
		}
	}
	return nil
}

// ColumnValues returns the write set for p: every settable column mapped to
// its storage value.
func ColumnValues(p *Product) map[string]any {
	values := make(map[string]any, len(ProductFields))
	for _, f := range ProductFields {
		if f.Settable {
			values[f.Column] = f.Get(p)
		}
	}
	return values
}

// ToPrice converts a JSON or storage value into a price rounded to PriceScale.
func ToPrice(v any) (decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch val := v.(type) {
	case decimal.Decimal:
		d = val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero, fmt.Errorf("price is null")
		}
		d = *val
	case json.Number:
		d, err = decimal.NewFromString(val.String())
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(val))
	case []byte:
		d, err = decimal.NewFromString(strings.TrimSpace(string(val)))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, fmt.Errorf("price is not finite")
		}
		d = decimal.NewFromFloat(val)
	case float32:
		d = decimal.NewFromFloat32(val)
	case int:
		d = decimal.NewFromInt(int64(val))
	case int32:
		d = decimal.NewFromInt32(val)
	case int64:
		d = decimal.NewFromInt(val)
	default:
		return decimal.Zero, fmt.Errorf("unsupported price type %T", v)
	}
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(PriceScale), nil
}

func stringSetter(column string, assign func(p *Product, s string)) func(p *Product, v any) error {
	return func(p *Product, v any) error {
		s, ok := toString(v)
		if !ok {
			return &FieldError{Field: column, Value: v}
		}
		assign(p, s)
		return nil
	}
}

func toString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case *string:
		if val == nil {
			return "", false
		}
		return *val, true
	case []byte:
		return string(val), true
	default:
		return "", false
	}
}

func toInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case json.Number:
		return val.Int64()
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("id %v is not an integer", val)
		}
		return int64(val), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(val)), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported id type %T", v)
	}
}
