package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/forthandvale/backoffice/internal/imports/domain"
	"github.com/xuri/excelize/v2"
)

// headerAliases maps normalized spreadsheet headers to line-item fields.
// Headers are normalized by lowercasing and stripping spaces, underscores
// and dashes before matching, so "HS Code", "hs_code" and "HSCode" all bind.
var headerAliases = map[string]string{
	"sku":                 "sku",
	"itemsku":             "sku",
	"productname":         "product_name",
	"product":             "product_name",
	"name":                "product_name",
	"description":         "product_name",
	"hscode":              "hs_code",
	"hs":                  "hs_code",
	"tariffcode":          "hs_code",
	"purchaseprice":       "purchase_price_source",
	"purchasepricesource": "purchase_price_source",
	"price":               "purchase_price_source",
	"unitcost":            "purchase_price_source",
	"unitsperbatch":       "units_per_batch",
	"units":               "units_per_batch",
	"quantity":            "units_per_batch",
	"qty":                 "units_per_batch",
	"weightperunit":       "weight_per_unit",
	"weight":              "weight_per_unit",
	"weightkg":            "weight_per_unit",
	"volumeperunit":       "volume_per_unit",
	"volume":              "volume_per_unit",
	"cbm":                 "volume_per_unit",
	"custompackagingcost": "custom_packaging_cost",
	"packagingcost":       "custom_packaging_cost",
	"packaging":           "custom_packaging_cost",
}

var requiredFields = []string{
	"sku",
	"product_name",
	"hs_code",
	"purchase_price_source",
	"units_per_batch",
	"weight_per_unit",
	"volume_per_unit",
}

func normalizeHeader(h string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(h)))
}

// columnIndex resolves each line-item field to a spreadsheet column. Explicit
// mapping entries take precedence; remaining fields fall back to header
// alias matching.
func columnIndex(header []string, mapping domain.ColumnMapping) (map[string]int, error) {
	byHeader := make(map[string]int, len(header))
	for i, h := range header {
		byHeader[normalizeHeader(h)] = i
	}

	cols := make(map[string]int)
	explicit := map[string]string{
		"sku":                   mapping.SKU,
		"product_name":          mapping.ProductName,
		"hs_code":               mapping.HSCode,
		"purchase_price_source": mapping.PurchasePriceSource,
		"units_per_batch":       mapping.UnitsPerBatch,
		"weight_per_unit":       mapping.WeightPerUnit,
		"volume_per_unit":       mapping.VolumePerUnit,
		"custom_packaging_cost": mapping.CustomPackagingCost,
	}
	for field, name := range explicit {
		if name == "" {
			continue
		}
		idx, ok := byHeader[normalizeHeader(name)]
		if !ok {
			return nil, fmt.Errorf("mapped column %q not found: %w", name, domain.ErrMissingColumns)
		}
		cols[field] = idx
	}

	for norm, idx := range byHeader {
		field, ok := headerAliases[norm]
		if !ok {
			continue
		}
		if _, bound := cols[field]; bound {
			continue
		}
		cols[field] = idx
	}

	var missing []string
	for _, field := range requiredFields {
		if _, ok := cols[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(missing, ", "), domain.ErrMissingColumns)
	}
	return cols, nil
}

// parseWorkbook reads the first sheet of an xlsx upload and returns the valid
// line items plus one validation error per rejected row. Row numbers in
// errors are 1-based spreadsheet rows, header included.
func parseWorkbook(r io.Reader, mapping domain.ColumnMapping) ([]domain.Item, []domain.ValidationError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidWorkbook)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, domain.ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidWorkbook)
	}
	if len(rows) < 2 {
		return nil, nil, domain.ErrEmptyWorkbook
	}

	cols, err := columnIndex(rows[0], mapping)
	if err != nil {
		return nil, nil, err
	}

	var (
		items     []domain.Item
		rowErrors []domain.ValidationError
	)
	seen := make(map[string]bool)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if blankRow(row) {
			continue
		}
		item, rowErrs := parseRow(rowNum, row, cols)
		if len(rowErrs) > 0 {
			rowErrors = append(rowErrors, rowErrs...)
			continue
		}
		if seen[item.SKU] {
			rowErrors = append(rowErrors, domain.ValidationError{
				Row:     rowNum,
				SKU:     item.SKU,
				Field:   "sku",
				Message: "sku is duplicated within the import",
			})
			continue
		}
		seen[item.SKU] = true
		items = append(items, item)
	}
	return items, rowErrors, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseRow(rowNum int, row []string, cols map[string]int) (domain.Item, []domain.ValidationError) {
	var errs []domain.ValidationError
	sku := cell(row, cols["sku"])
	fail := func(field, msg string) {
		errs = append(errs, domain.ValidationError{Row: rowNum, SKU: sku, Field: field, Message: msg})
	}

	if sku == "" {
		fail("sku", "sku is required")
	}
	name := cell(row, cols["product_name"])
	if name == "" {
		fail("product_name", "product name is required")
	}

	hs := domain.NormalizeHSCode(cell(row, cols["hs_code"]))
	if !domain.ValidHSCode(hs) {
		fail("hs_code", "hs code must be 4-10 digits")
	}

	price, ok := parseNumber(rowNum, row, cols, "purchase_price_source", &errs, sku)
	if ok && price < 0 {
		fail("purchase_price_source", "purchase price must not be negative")
	}
	units, ok := parseNumber(rowNum, row, cols, "units_per_batch", &errs, sku)
	if ok && units <= 0 {
		fail("units_per_batch", "units per batch must be positive")
	}
	weight, ok := parseNumber(rowNum, row, cols, "weight_per_unit", &errs, sku)
	if ok && weight < 0 {
		fail("weight_per_unit", "weight must not be negative")
	}
	volume, ok := parseNumber(rowNum, row, cols, "volume_per_unit", &errs, sku)
	if ok && volume < 0 {
		fail("volume_per_unit", "volume must not be negative")
	}

	var packaging *float64
	if idx, ok := cols["custom_packaging_cost"]; ok {
		if raw := cell(row, idx); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			switch {
			case err != nil:
				fail("custom_packaging_cost", "packaging cost must be a number")
			case v < 0:
				fail("custom_packaging_cost", "packaging cost must not be negative")
			default:
				packaging = &v
			}
		}
	}

	if len(errs) > 0 {
		return domain.Item{}, errs
	}
	return domain.Item{
		RowNumber:           rowNum,
		SKU:                 sku,
		ProductName:         name,
		HSCode:              hs,
		PurchasePriceSource: price,
		UnitsPerBatch:       units,
		WeightPerUnit:       weight,
		VolumePerUnit:       volume,
		CustomPackagingCost: packaging,
	}, nil
}

func parseNumber(rowNum int, row []string, cols map[string]int, field string, errs *[]domain.ValidationError, sku string) (float64, bool) {
	raw := cell(row, cols[field])
	if raw == "" {
		*errs = append(*errs, domain.ValidationError{Row: rowNum, SKU: sku, Field: field, Message: field + " is required"})
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		*errs = append(*errs, domain.ValidationError{Row: rowNum, SKU: sku, Field: field, Message: field + " must be a number"})
		return 0, false
	}
	return v, true
}
