package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Import is one uploaded batch of purchase-price rows.
type Import struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	FileName  string       `gorm:"column:file_name;not null" json:"file_name"`
	ItemCount int          `gorm:"column:item_count;not null" json:"item_count"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Import) TableName() string { return "pricing_imports" }

// Item is one validated row of an import, in source currency.
type Item struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ImportID snowflake.ID `gorm:"column:import_id;not null;index" json:"import_id"`

	RowNumber   int    `gorm:"column:row_number;not null" json:"row_number"`
	SKU         string `gorm:"column:sku;not null" json:"sku"`
	ProductName string `gorm:"not null" json:"product_name"`
	HSCode      string `gorm:"column:hs_code;not null" json:"hs_code"`

	PurchasePriceSource float64  `gorm:"column:purchase_price_source;not null" json:"purchase_price_source"`
	UnitsPerBatch       float64  `gorm:"column:units_per_batch;not null" json:"units_per_batch"`
	WeightPerUnit       float64  `gorm:"column:weight_per_unit;not null" json:"weight_per_unit"`
	VolumePerUnit       float64  `gorm:"column:volume_per_unit;not null" json:"volume_per_unit"`
	CustomPackagingCost *float64 `gorm:"column:custom_packaging_cost" json:"custom_packaging_cost,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Item) TableName() string { return "pricing_import_items" }

// ColumnMapping binds spreadsheet headers to line-item fields. Empty values
// fall back to header auto-matching.
type ColumnMapping struct {
	SKU                 string `json:"sku,omitempty"`
	ProductName         string `json:"product_name,omitempty"`
	HSCode              string `json:"hs_code,omitempty"`
	PurchasePriceSource string `json:"purchase_price_source,omitempty"`
	UnitsPerBatch       string `json:"units_per_batch,omitempty"`
	WeightPerUnit       string `json:"weight_per_unit,omitempty"`
	VolumePerUnit       string `json:"volume_per_unit,omitempty"`
	CustomPackagingCost string `json:"custom_packaging_cost,omitempty"`
}

// ValidationError describes one rejected spreadsheet row.
type ValidationError struct {
	Row     int    `json:"row"`
	SKU     string `json:"sku"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

var hsCodePattern = regexp.MustCompile(`^\d{4,10}$`)

// NormalizeHSCode strips punctuation from a customs classification code.
func NormalizeHSCode(raw string) string {
	return strings.NewReplacer(".", "", " ", "", "-", "").Replace(strings.TrimSpace(raw))
}

// ValidHSCode reports whether a normalized code is digits-only, length 4-10.
func ValidHSCode(code string) bool {
	return hsCodePattern.MatchString(code)
}
