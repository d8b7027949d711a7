package engine

import (
	"math"
	"testing"
	"time"

	"github.com/forthandvale/backoffice/internal/pricing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFxRate(rate float64) domain.FxRate {
	return domain.FxRate{
		Date:           time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Rate:           rate,
		SourceCurrency: "PKR",
		TargetCurrency: "USD",
	}
}

func baseConfig() domain.Configuration {
	return domain.Configuration{
		DestinationMarket: domain.MarketUS,
		Incoterm:          domain.IncotermFOB,
		MarginMode:        domain.MarginModeMargin,
		MarginValue:       35,
		FreightModel:      domain.FreightPerWeightUnit,
		FreightValue:      5,
		InsuranceModel:    domain.InsurancePercentOfValue,
		InsuranceValue:    2,
		RoundingRule:      domain.RoundingNone,
	}
}

func luggageItem() domain.LineItem {
	return domain.LineItem{
		SKU:                 "LUG-001",
		ProductName:         "Trolley Case",
		HSCode:              "420212",
		PurchasePriceSource: 1000,
		UnitsPerBatch:       10,
		WeightPerUnit:       2,
		VolumePerUnit:       0.04,
	}
}

func TestPriceItemUSLadder(t *testing.T) {
	calc, err := New(baseConfig(), testFxRate(0.0036))
	require.NoError(t, err)

	item, err := calc.PriceItem(luggageItem())
	require.NoError(t, err)

	baseDest := 1000 * 0.0036
	freight := 2.0 * 5
	insurance := baseDest * 0.02
	cif := baseDest + freight + insurance
	duty := cif * 8.5 / 100
	fees := cif * 0.01
	tax := (cif + duty + fees) * 6.5 / 100
	landed := cif + duty + fees + tax
	sell := landed / 0.65

	assert.InDelta(t, 3.6, item.BaseDest, 1e-9)
	assert.InDelta(t, 10.0, item.Freight, 1e-9)
	assert.InDelta(t, 0.072, item.Insurance, 1e-9)
	assert.InDelta(t, 13.672, item.CIF, 1e-9)
	assert.InDelta(t, duty, item.Duty, 1e-9)
	assert.InDelta(t, fees, item.Fees, 1e-9)
	assert.InDelta(t, tax, item.Tax, 1e-9)
	assert.InDelta(t, landed, item.LandedCost, 1e-9)
	assert.InDelta(t, sell, item.Sell, 1e-9)

	breakdown := item.Breakdown.Data()
	assert.Equal(t, "USD", breakdown.Currency)
	assert.InDelta(t, 0.0036, breakdown.FxRate, 1e-12)
	assert.Empty(t, breakdown.ThresholdsApplied)
}

func TestDutyRateByHSPrefix(t *testing.T) {
	assert.InDelta(t, 8.5, DefaultDutyRate("420212"), 1e-12)
	assert.InDelta(t, 8.5, DefaultDutyRate("4202"), 1e-12)
	assert.InDelta(t, 5.0, DefaultDutyRate("640399"), 1e-12)
	assert.InDelta(t, 5.0, DefaultDutyRate(""), 1e-12)
}

func TestTaxRateByMarket(t *testing.T) {
	assert.InDelta(t, 20.0, DefaultTaxRate(domain.MarketUK), 1e-12)
	assert.InDelta(t, 21.0, DefaultTaxRate(domain.MarketEU), 1e-12)
	assert.InDelta(t, 6.5, DefaultTaxRate(domain.MarketUS), 1e-12)
}

func TestInjectedRateLookups(t *testing.T) {
	calc, err := New(baseConfig(), testFxRate(0.0036),
		WithDutyRate(func(string) float64 { return 12 }),
		WithTaxRate(func(domain.Market) float64 { return 0 }),
	)
	require.NoError(t, err)

	item, err := calc.PriceItem(luggageItem())
	require.NoError(t, err)

	assert.InDelta(t, item.CIF*0.12, item.Duty, 1e-9)
	assert.Zero(t, item.Tax)
}

func TestEnd99Rounding(t *testing.T) {
	cfg := baseConfig()
	cfg.RoundingRule = domain.RoundingEnd99
	calc, err := New(cfg, testFxRate(0.0036))
	require.NoError(t, err)

	item, err := calc.PriceItem(luggageItem())
	require.NoError(t, err)

	assert.InDelta(t, 24.99, item.Sell, 1e-9)
	_, frac := math.Modf(item.Sell)
	assert.InDelta(t, 0.99, frac, 1e-9)
}

func TestNearest005Rounding(t *testing.T) {
	cfg := baseConfig()
	cfg.RoundingRule = domain.RoundingNearest005
	calc, err := New(cfg, testFxRate(0.0036))
	require.NoError(t, err)

	item, err := calc.PriceItem(luggageItem())
	require.NoError(t, err)

	steps := item.Sell / 0.05
	assert.InDelta(t, math.Round(steps), steps, 1e-6)
}

func TestMarginInverseLaw(t *testing.T) {
	calc, err := New(baseConfig(), testFxRate(0.0036))
	require.NoError(t, err)

	item, err := calc.PriceItem(luggageItem())
	require.NoError(t, err)

	assert.InDelta(t, 0.35, (item.Sell-item.LandedCost)/item.Sell, 1e-9)
}

func TestMarkupInverseLaw(t *testing.T) {
	cfg := baseConfig()
	cfg.MarginMode = domain.MarginModeMarkup
	calc, err := New(cfg, testFxRate(0.0036))
	require.NoError(t, err)

	item, err := calc.PriceItem(luggageItem())
	require.NoError(t, err)

	assert.InDelta(t, 0.35, (item.Sell-item.LandedCost)/item.LandedCost, 1e-9)

	// Markup 35 never realizes a 35% margin: profit over sell is smaller
	// than profit over cost.
	assert.InDelta(t, 35.0/1.35, item.MarginPercent, 1e-9)
	assert.Less(t, item.MarginPercent, 35.0)
}

func TestRealizedMarginComputedAfterRounding(t *testing.T) {
	cfg := baseConfig()
	cfg.RoundingRule = domain.RoundingEnd99
	calc, err := New(cfg, testFxRate(0.0036))
	require.NoError(t, err)

	item, err := calc.PriceItem(luggageItem())
	require.NoError(t, err)

	expected := (item.Sell - item.LandedCost) / item.Sell * 100
	assert.InDelta(t, expected, item.MarginPercent, 1e-9)
	assert.True(t, math.Abs(item.MarginPercent-35.0) > 1e-3)
}

func TestPerOrderShareFreight(t *testing.T) {
	cfg := baseConfig()
	cfg.FreightModel = domain.FreightPerOrderShare
	cfg.FreightValue = 50
	calc, err := New(cfg, testFxRate(0.0036))
	require.NoError(t, err)

	item, err := calc.PriceItem(luggageItem())
	require.NoError(t, err)

	assert.InDelta(t, 5.0, item.Freight, 1e-9)
}

func TestPerPieceFreight(t *testing.T) {
	cfg := baseConfig()
	cfg.FreightModel = domain.FreightPerPiece
	cfg.FreightValue = 3.5
	calc, err := New(cfg, testFxRate(0.0036))
	require.NoError(t, err)

	item, err := calc.PriceItem(luggageItem())
	require.NoError(t, err)

	assert.InDelta(t, 3.5, item.Freight, 1e-9)
}

func TestFixedPerUnitInsurance(t *testing.T) {
	cfg := baseConfig()
	cfg.InsuranceModel = domain.InsuranceFixedPerUnit
	cfg.InsuranceValue = 1.25
	calc, err := New(cfg, testFxRate(0.0036))
	require.NoError(t, err)

	item, err := calc.PriceItem(luggageItem())
	require.NoError(t, err)

	assert.InDelta(t, 1.25, item.Insurance, 1e-9)
}

func TestCustomPackagingConvertedAtFxRate(t *testing.T) {
	calc, err := New(baseConfig(), testFxRate(0.0036))
	require.NoError(t, err)

	packaging := 500.0
	item := luggageItem()
	item.CustomPackagingCost = &packaging

	priced, err := calc.PriceItem(item)
	require.NoError(t, err)

	assert.InDelta(t, 500*0.0036, priced.CustomPackaging, 1e-9)

	plain, err := calc.PriceItem(luggageItem())
	require.NoError(t, err)
	assert.InDelta(t, plain.LandedCost+500*0.0036, priced.LandedCost, 1e-9)
}

func TestMargin100Rejected(t *testing.T) {
	cfg := baseConfig()
	cfg.MarginValue = 100

	_, err := New(cfg, testFxRate(0.0036))
	assert.ErrorIs(t, err, domain.ErrMarginTooHigh)
}

func TestInvalidConfigRejectedBeforePricing(t *testing.T) {
	cfg := baseConfig()
	cfg.FreightValue = -1

	_, err := New(cfg, testFxRate(0.0036))
	assert.ErrorIs(t, err, domain.ErrNegativeFreight)
}

func TestZeroUnitsFailsWholeBatch(t *testing.T) {
	calc, err := New(baseConfig(), testFxRate(0.0036))
	require.NoError(t, err)

	bad := luggageItem()
	bad.SKU = "BAD-001"
	bad.UnitsPerBatch = 0

	result, err := calc.Calculate([]domain.LineItem{luggageItem(), bad})
	assert.ErrorIs(t, err, domain.ErrInvalidLineItem)
	assert.ErrorContains(t, err, "BAD-001")
	assert.Empty(t, result.Items)
}

func TestZeroPurchasePriceIsTotal(t *testing.T) {
	calc, err := New(baseConfig(), testFxRate(0.0036))
	require.NoError(t, err)

	item := luggageItem()
	item.PurchasePriceSource = 0

	priced, err := calc.PriceItem(item)
	require.NoError(t, err)

	assert.Zero(t, priced.BaseDest)
	assert.False(t, math.IsNaN(priced.MarginPercent))
	assert.False(t, math.IsInf(priced.Sell, 0))
}

func TestEmptyItemsYieldsZeroedSummary(t *testing.T) {
	calc, err := New(baseConfig(), testFxRate(0.0036))
	require.NoError(t, err)

	result, err := calc.Calculate(nil)
	require.NoError(t, err)

	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.Summary.TotalItemCount)
	assert.Zero(t, result.Summary.AvgLandedCost)
	assert.Zero(t, result.Summary.AvgMarginPercent)
	assert.Equal(t, "USD", result.Summary.Currency)
}

func TestCalculateIsIdempotent(t *testing.T) {
	calc, err := New(baseConfig(), testFxRate(0.0036))
	require.NoError(t, err)

	items := []domain.LineItem{luggageItem(), shoeItem(), zeroWeightItem()}

	first, err := calc.Calculate(items)
	require.NoError(t, err)
	second, err := calc.Calculate(items)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLadderMonotonicity(t *testing.T) {
	calc, err := New(baseConfig(), testFxRate(0.0036))
	require.NoError(t, err)

	result, err := calc.Calculate([]domain.LineItem{luggageItem(), shoeItem(), zeroWeightItem()})
	require.NoError(t, err)

	for _, item := range result.Items {
		assert.LessOrEqual(t, item.BaseDest, item.CIF, "sku %s", item.SKU)
		assert.LessOrEqual(t, item.CIF, item.LandedCost, "sku %s", item.SKU)
	}
}

func TestOrderPreservation(t *testing.T) {
	calc, err := New(baseConfig(), testFxRate(0.0036))
	require.NoError(t, err)

	items := []domain.LineItem{shoeItem(), luggageItem(), zeroWeightItem()}
	result, err := calc.Calculate(items)
	require.NoError(t, err)

	require.Len(t, result.Items, 3)
	for i, item := range result.Items {
		assert.Equal(t, i, item.Position)
		assert.Equal(t, items[i].SKU, item.SKU)
	}
}

func TestSummaryUnweightedMeans(t *testing.T) {
	calc, err := New(baseConfig(), testFxRate(0.0036))
	require.NoError(t, err)

	result, err := calc.Calculate([]domain.LineItem{luggageItem(), shoeItem()})
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	wantLanded := (result.Items[0].LandedCost + result.Items[1].LandedCost) / 2
	wantMargin := (result.Items[0].MarginPercent + result.Items[1].MarginPercent) / 2

	assert.Equal(t, 2, result.Summary.TotalItemCount)
	assert.InDelta(t, wantLanded, result.Summary.AvgLandedCost, 1e-9)
	assert.InDelta(t, wantMargin, result.Summary.AvgMarginPercent, 1e-9)
}

func TestUSDeMinimisFlag(t *testing.T) {
	cfg := baseConfig()
	cfg.ApplyThresholds = true
	calc, err := New(cfg, testFxRate(0.0036))
	require.NoError(t, err)

	flagged, err := calc.PriceItem(luggageItem())
	require.NoError(t, err)

	breakdown := flagged.Breakdown.Data()
	assert.Equal(t, []string{"Section 321 (De-minimis)"}, breakdown.ThresholdsApplied)
	assert.Equal(t, "Threshold exemptions applied", flagged.Notes)

	var thresholdRules int
	for _, rule := range breakdown.Rules {
		if rule.Type == domain.RuleThreshold {
			thresholdRules++
			assert.Zero(t, rule.Amount)
		}
	}
	assert.Equal(t, 1, thresholdRules)

	// The flag is informational only; the arithmetic does not change.
	plainCalc, err := New(baseConfig(), testFxRate(0.0036))
	require.NoError(t, err)
	plain, err := plainCalc.PriceItem(luggageItem())
	require.NoError(t, err)
	assert.InDelta(t, plain.LandedCost, flagged.LandedCost, 1e-12)
	assert.InDelta(t, plain.Sell, flagged.Sell, 1e-12)
}

func TestDeMinimisNotFlaggedAboveThreshold(t *testing.T) {
	cfg := baseConfig()
	cfg.ApplyThresholds = true
	calc, err := New(cfg, testFxRate(1.0))
	require.NoError(t, err)

	item := luggageItem()
	item.PurchasePriceSource = 5000

	priced, err := calc.PriceItem(item)
	require.NoError(t, err)
	assert.Empty(t, priced.Breakdown.Data().ThresholdsApplied)
	assert.Empty(t, priced.Notes)
}

func TestUKUsesVATRule(t *testing.T) {
	cfg := baseConfig()
	cfg.DestinationMarket = domain.MarketUK
	calc, err := New(cfg, domain.FxRate{Rate: 0.0028, SourceCurrency: "PKR", TargetCurrency: "GBP"})
	require.NoError(t, err)

	item, err := calc.PriceItem(luggageItem())
	require.NoError(t, err)

	assert.Equal(t, "GBP", calc.Currency())
	found := false
	for _, rule := range item.Breakdown.Data().Rules {
		if rule.Type == domain.RuleVAT {
			found = true
			assert.Equal(t, "VAT", rule.Name)
			assert.InDelta(t, 20.0, *rule.Rate, 1e-12)
		}
	}
	require.True(t, found)
}

func shoeItem() domain.LineItem {
	return domain.LineItem{
		SKU:                 "SHO-014",
		ProductName:         "Leather Loafers",
		HSCode:              "640399",
		PurchasePriceSource: 2400,
		UnitsPerBatch:       50,
		WeightPerUnit:       0.8,
		VolumePerUnit:       0.01,
	}
}

func zeroWeightItem() domain.LineItem {
	return domain.LineItem{
		SKU:                 "STK-002",
		ProductName:         "Vinyl Sticker Pack",
		HSCode:              "491199",
		PurchasePriceSource: 120,
		UnitsPerBatch:       200,
		WeightPerUnit:       0,
		VolumePerUnit:       0.0002,
	}
}
