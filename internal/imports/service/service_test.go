package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/forthandvale/backoffice/internal/imports/domain"
	"github.com/forthandvale/backoffice/internal/imports/repository"
	"github.com/forthandvale/backoffice/internal/metrics"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupImportsService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Import{}, &domain.Item{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		Node:    node,
		Repo:    repository.Provide(),
		Metrics: metrics.New(),
	})
}

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

var workbookHeader = []any{
	"SKU", "Product Name", "HS Code", "Purchase Price",
	"Units Per Batch", "Weight Per Unit", "Volume Per Unit", "Packaging Cost",
}

func TestCreateImportParsesValidRows(t *testing.T) {
	svc := setupImportsService(t)

	buf := workbook(t, [][]any{
		workbookHeader,
		{"LUG-001", "Trolley Case", "4202.12", 1000, 10, 2, 0.04, 500},
		{"SHO-014", "Leather Loafers", "640399", 2400, 50, 0.8, 0.01, ""},
	})

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:     "January Buy",
		FileName: "january.xlsx",
		Reader:   buf,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.ItemCount)
	assert.Empty(t, resp.ValidationErrors)
	assert.Equal(t, "January Buy", resp.Import.Name)

	items, err := svc.ListItems(context.Background(), resp.Import.ID.String())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "LUG-001", items[0].SKU)
	assert.Equal(t, "420212", items[0].HSCode)
	require.NotNil(t, items[0].CustomPackagingCost)
	assert.InDelta(t, 500, *items[0].CustomPackagingCost, 1e-9)

	assert.Equal(t, "SHO-014", items[1].SKU)
	assert.Nil(t, items[1].CustomPackagingCost)
}

func TestCreateImportReportsRowErrors(t *testing.T) {
	svc := setupImportsService(t)

	buf := workbook(t, [][]any{
		workbookHeader,
		{"LUG-001", "Trolley Case", "4202.12", 1000, 10, 2, 0.04, ""},
		{"BAD-001", "No HS Code", "xx", 100, 10, 1, 0.01, ""},
		{"BAD-002", "Zero Units", "640399", 100, 0, 1, 0.01, ""},
		{"", "Missing SKU", "640399", 100, 10, 1, 0.01, ""},
	})

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:     "mixed",
		FileName: "mixed.xlsx",
		Reader:   buf,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.ItemCount)
	require.Len(t, resp.ValidationErrors, 3)

	byRow := map[int]domain.ValidationError{}
	for _, ve := range resp.ValidationErrors {
		byRow[ve.Row] = ve
	}
	assert.Equal(t, "hs_code", byRow[3].Field)
	assert.Equal(t, "units_per_batch", byRow[4].Field)
	assert.Equal(t, "sku", byRow[5].Field)
}

func TestCreateImportAcceptsZeroPriceRow(t *testing.T) {
	svc := setupImportsService(t)

	buf := workbook(t, [][]any{
		workbookHeader,
		{"FREE-001", "Promo Sample", "491199", 0, 100, 0.1, 0.001, ""},
		{"NEG-001", "Bad Price", "491199", -5, 100, 0.1, 0.001, ""},
	})

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:     "samples",
		FileName: "samples.xlsx",
		Reader:   buf,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.ItemCount)
	require.Len(t, resp.ValidationErrors, 1)
	assert.Equal(t, 3, resp.ValidationErrors[0].Row)
	assert.Equal(t, "purchase_price_source", resp.ValidationErrors[0].Field)

	items, err := svc.ListItems(context.Background(), resp.Import.ID.String())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "FREE-001", items[0].SKU)
	assert.Zero(t, items[0].PurchasePriceSource)
}

func TestCreateImportRejectsDuplicateSKU(t *testing.T) {
	svc := setupImportsService(t)

	buf := workbook(t, [][]any{
		workbookHeader,
		{"LUG-001", "Trolley Case", "420212", 1000, 10, 2, 0.04, ""},
		{"SHO-014", "Leather Loafers", "640399", 2400, 50, 0.8, 0.01, ""},
		{"LUG-001", "Trolley Case Restock", "420212", 1100, 10, 2, 0.04, ""},
	})

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:     "restock",
		FileName: "restock.xlsx",
		Reader:   buf,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.ItemCount)
	require.Len(t, resp.ValidationErrors, 1)
	assert.Equal(t, 4, resp.ValidationErrors[0].Row)
	assert.Equal(t, "LUG-001", resp.ValidationErrors[0].SKU)
	assert.Equal(t, "sku", resp.ValidationErrors[0].Field)

	items, err := svc.ListItems(context.Background(), resp.Import.ID.String())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.InDelta(t, 1000, items[0].PurchasePriceSource, 1e-9)
}

func TestCreateImportRejectsWorkbookWithNoValidRows(t *testing.T) {
	svc := setupImportsService(t)

	buf := workbook(t, [][]any{
		workbookHeader,
		{"", "", "bad", "", "", "", "", ""},
	})

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		FileName: "empty.xlsx",
		Reader:   buf,
	})
	assert.ErrorIs(t, err, domain.ErrNoValidRows)
}

func TestCreateImportRejectsMissingColumns(t *testing.T) {
	svc := setupImportsService(t)

	buf := workbook(t, [][]any{
		{"SKU", "Product Name"},
		{"LUG-001", "Trolley Case"},
	})

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		FileName: "sparse.xlsx",
		Reader:   buf,
	})
	assert.ErrorIs(t, err, domain.ErrMissingColumns)
}

func TestCreateImportRejectsHeaderOnlyWorkbook(t *testing.T) {
	svc := setupImportsService(t)

	buf := workbook(t, [][]any{workbookHeader})

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		FileName: "header.xlsx",
		Reader:   buf,
	})
	assert.ErrorIs(t, err, domain.ErrEmptyWorkbook)
}

func TestCreateImportRejectsGarbageFile(t *testing.T) {
	svc := setupImportsService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		FileName: "garbage.xlsx",
		Reader:   bytes.NewBufferString("not a workbook"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidWorkbook)
}

func TestCreateImportExplicitMappingOverridesAliases(t *testing.T) {
	svc := setupImportsService(t)

	buf := workbook(t, [][]any{
		{"Item Code", "Title", "Tariff", "Cost", "Qty", "Kg", "CBM"},
		{"LUG-001", "Trolley Case", "420212", 1000, 10, 2, 0.04},
	})

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		FileName: "custom.xlsx",
		Reader:   buf,
		Mapping: domain.ColumnMapping{
			SKU:                 "Item Code",
			ProductName:         "Title",
			HSCode:              "Tariff",
			PurchasePriceSource: "Cost",
			UnitsPerBatch:       "Qty",
			WeightPerUnit:       "Kg",
			VolumePerUnit:       "CBM",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ItemCount)
}

func TestCreateImportRejectsUnknownMappedColumn(t *testing.T) {
	svc := setupImportsService(t)

	buf := workbook(t, [][]any{
		workbookHeader,
		{"LUG-001", "Trolley Case", "420212", 1000, 10, 2, 0.04, ""},
	})

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		FileName: "wrong.xlsx",
		Reader:   buf,
		Mapping:  domain.ColumnMapping{SKU: "Nonexistent"},
	})
	assert.ErrorIs(t, err, domain.ErrMissingColumns)
}

func TestImportNameDefaultsToFileName(t *testing.T) {
	svc := setupImportsService(t)

	buf := workbook(t, [][]any{
		workbookHeader,
		{"LUG-001", "Trolley Case", "420212", 1000, 10, 2, 0.04, ""},
	})

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		FileName: "january.xlsx",
		Reader:   buf,
	})
	require.NoError(t, err)
	assert.Equal(t, "january.xlsx", resp.Import.Name)
}

func TestGetImportNotFound(t *testing.T) {
	svc := setupImportsService(t)

	_, err := svc.Get(context.Background(), "12345")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "not-a-snowflake")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
