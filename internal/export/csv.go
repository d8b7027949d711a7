package export

import (
	"encoding/csv"
	"io"

	"github.com/forthandvale/backoffice/internal/pricing/domain"
)

func writeCSV(w io.Writer, items []domain.ResultItem) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(columns); err != nil {
		return err
	}
	for _, item := range items {
		if err := writer.Write(row(item)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
