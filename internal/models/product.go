package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product represents a catalog entry.
//
// ID is zero until the product has been persisted; the store assigns it on
// create and never changes it afterwards.
type Product struct {
	ID          int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_name" validate:"required,max=255"`
	Description *string         `json:"description" gorm:"type:text"`
	Brand       string          `json:"brand" gorm:"type:varchar(100);not null;index:idx_products_brand;index:idx_products_brand_category,priority:1" validate:"required,max=100"`
	Category    string          `json:"category" gorm:"type:varchar(100);not null;index:idx_products_category;index:idx_products_brand_category,priority:2" validate:"required,max=100"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;index:idx_products_price" validate:"gt=0,lte=99999999.99"`
}

// TableName returns the table name for Product model.
func (Product) TableName() string {
	return "products"
}

// ToMap returns the plain-object form of the product used in API responses.
// Keys follow the field table; price is rendered as a JSON number.
func (p *Product) ToMap() map[string]any {
	out := make(map[string]any, len(ProductFields))
	for _, f := range ProductFields {
		v := f.Get(p)
		if d, ok := v.(decimal.Decimal); ok {
			v = json.Number(d.String())
		}
		out[f.Column] = v
	}
	return out
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
