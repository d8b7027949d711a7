// Package export renders a completed pricing run as a downloadable file.
// Monetary values are formatted to two decimals here and nowhere earlier;
// stored results keep full float precision.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/forthandvale/backoffice/internal/pricing/domain"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported_format")

// ParseFormat resolves a query-string format value, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%s: %w", raw, ErrUnsupportedFormat)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// FileName derives a safe attachment name from the run name.
func FileName(run domain.Run, f Format) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, run.Name)
	if name == "" {
		name = "pricing_run_" + run.ID.String()
	}
	return name + "." + string(f)
}

// Write renders the run in the requested format.
func Write(w io.Writer, f Format, run domain.Run, items []domain.ResultItem) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, items)
	case FormatXLSX:
		return writeXLSX(w, items)
	case FormatPDF:
		return writePDF(w, run, items)
	default:
		return fmt.Errorf("%s: %w", f, ErrUnsupportedFormat)
	}
}

var columns = []string{
	"SKU", "Product Name", "Base (Source)", "Base (Dest)", "Freight",
	"Insurance", "CIF", "Duty", "Fees", "Tax", "Packaging",
	"Landed Cost", "Sell", "Margin %", "Notes",
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func row(item domain.ResultItem) []string {
	return []string{
		item.SKU,
		item.ProductName,
		money(item.BaseSource),
		money(item.BaseDest),
		money(item.Freight),
		money(item.Insurance),
		money(item.CIF),
		money(item.Duty),
		money(item.Fees),
		money(item.Tax),
		money(item.CustomPackaging),
		money(item.LandedCost),
		money(item.Sell),
		money(item.MarginPercent),
		item.Notes,
	}
}
