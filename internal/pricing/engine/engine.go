// Package engine implements the deterministic landed-cost ladder that turns
// line items, a pricing configuration and an FX rate into priced results.
// It is pure computation: no I/O, no shared state, no time dependency.
package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/forthandvale/backoffice/internal/pricing/domain"
)

const (
	// Flat customs-processing fee applied to the CIF value.
	processingFeeRate = 0.01

	// US de-minimis cutoff (Section 321), in destination currency.
	usDeMinimisThreshold = 800.0
)

// DutyRateFunc returns the duty rate percentage for an HS code. The engine's
// contract is only "given a dutyRate percentage, duty = cif * dutyRate / 100";
// a real tariff table can be substituted without touching the ladder.
type DutyRateFunc func(hsCode string) float64

// TaxRateFunc returns the VAT/sales-tax rate percentage for a market.
type TaxRateFunc func(market domain.Market) float64

// DefaultDutyRate is the placeholder tariff rule: HS prefix 4202 carries
// 8.5%, every other classification 5.0%.
func DefaultDutyRate(hsCode string) float64 {
	if strings.HasPrefix(hsCode, "4202") {
		return 8.5
	}
	return 5.0
}

// DefaultTaxRate is the placeholder per-market flat tax table.
func DefaultTaxRate(market domain.Market) float64 {
	switch market {
	case domain.MarketUK:
		return 20
	case domain.MarketEU:
		return 21
	default:
		return 6.5
	}
}

// Result is a complete calculation output. It is never partially emitted.
type Result struct {
	Items   []domain.ResultItem
	Summary domain.Summary
}

// Option overrides an injected lookup on a Calculator.
type Option func(*Calculator)

func WithDutyRate(fn DutyRateFunc) Option {
	return func(c *Calculator) { c.dutyRate = fn }
}

func WithTaxRate(fn TaxRateFunc) Option {
	return func(c *Calculator) { c.taxRate = fn }
}

// Calculator prices line items against one configuration and FX snapshot.
// Model dispatch is resolved once at construction, not per item.
type Calculator struct {
	cfg      domain.Configuration
	fx       domain.FxRate
	currency string

	freight   func(item domain.LineItem) float64
	insurance func(baseDest float64) float64
	sell      func(landedCost float64) float64
	round     func(sell float64) float64

	dutyRate DutyRateFunc
	taxRate  TaxRateFunc
}

// New validates the configuration and builds a calculator for it.
func New(cfg domain.Configuration, fx domain.FxRate, opts ...Option) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Calculator{
		cfg:      cfg,
		fx:       fx,
		currency: domain.CurrencyFor(cfg.DestinationMarket),
		dutyRate: DefaultDutyRate,
		taxRate:  DefaultTaxRate,
	}
	for _, opt := range opts {
		opt(c)
	}

	switch cfg.FreightModel {
	case domain.FreightPerWeightUnit:
		c.freight = func(item domain.LineItem) float64 {
			return item.WeightPerUnit * cfg.FreightValue
		}
	case domain.FreightPerPiece:
		c.freight = func(domain.LineItem) float64 {
			return cfg.FreightValue
		}
	case domain.FreightPerOrderShare:
		// Order-level freight divided evenly across units in the batch.
		c.freight = func(item domain.LineItem) float64 {
			return cfg.FreightValue / item.UnitsPerBatch
		}
	}

	switch cfg.InsuranceModel {
	case domain.InsurancePercentOfValue:
		c.insurance = func(baseDest float64) float64 {
			return baseDest * cfg.InsuranceValue / 100
		}
	case domain.InsuranceFixedPerUnit:
		c.insurance = func(float64) float64 {
			return cfg.InsuranceValue
		}
	}

	switch cfg.MarginMode {
	case domain.MarginModeMargin:
		c.sell = func(landedCost float64) float64 {
			return landedCost / (1 - cfg.MarginValue/100)
		}
	case domain.MarginModeMarkup:
		c.sell = func(landedCost float64) float64 {
			return landedCost * (1 + cfg.MarginValue/100)
		}
	}

	switch cfg.RoundingRule {
	case domain.RoundingNearest005:
		c.round = func(sell float64) float64 {
			return math.Round(sell*20) / 20
		}
	case domain.RoundingNearest050:
		c.round = func(sell float64) float64 {
			return math.Round(sell*2) / 2
		}
	case domain.RoundingEnd99:
		c.round = func(sell float64) float64 {
			return math.Floor(sell) + 0.99
		}
	default:
		c.round = func(sell float64) float64 { return sell }
	}

	return c, nil
}

// PriceItem runs the cost ladder for a single line item. Order is significant;
// each stage feeds the next. No intermediate stage is rounded.
func (c *Calculator) PriceItem(item domain.LineItem) (domain.ResultItem, error) {
	if item.UnitsPerBatch <= 0 {
		return domain.ResultItem{}, fmt.Errorf("sku %s: units per batch must be positive: %w", item.SKU, domain.ErrInvalidLineItem)
	}

	baseDest := item.PurchasePriceSource * c.fx.Rate
	freight := c.freight(item)
	insurance := c.insurance(baseDest)
	cif := baseDest + freight + insurance

	dutyRate := c.dutyRate(item.HSCode)
	duty := cif * dutyRate / 100

	fees := cif * processingFeeRate

	taxRate := c.taxRate(c.cfg.DestinationMarket)
	taxableBase := cif + duty + fees
	tax := taxableBase * taxRate / 100

	customPackaging := 0.0
	if item.CustomPackagingCost != nil {
		customPackaging = *item.CustomPackagingCost * c.fx.Rate
	}

	landedCost := cif + duty + fees + tax + customPackaging

	sell := c.round(c.sell(landedCost))
	if math.IsNaN(sell) || math.IsInf(sell, 0) {
		return domain.ResultItem{}, fmt.Errorf("sku %s: degenerate margin produced a non-finite sell price: %w", item.SKU, domain.ErrInvalidLineItem)
	}

	// Realized margin is recomputed from the rounded sell price; drift against
	// the configured margin is expected and surfaced, not hidden.
	marginPercent := 0.0
	if sell != 0 {
		marginPercent = (sell - landedCost) / sell * 100
	}

	thresholds, notes := c.applyThresholds(cif)
	rules := c.buildRules(item, dutyRate, duty, taxRate, tax, fees, thresholds)

	return domain.ResultItem{
		SKU:             item.SKU,
		ProductName:     item.ProductName,
		BaseSource:      item.PurchasePriceSource,
		BaseDest:        baseDest,
		Freight:         freight,
		Insurance:       insurance,
		CIF:             cif,
		Duty:            duty,
		Fees:            fees,
		Tax:             tax,
		CustomPackaging: customPackaging,
		LandedCost:      landedCost,
		Sell:            sell,
		MarginPercent:   marginPercent,
		Notes:           notes,
		Breakdown: domain.NewBreakdown(domain.Breakdown{
			BaseSource:        item.PurchasePriceSource,
			FxRate:            c.fx.Rate,
			BaseDest:          baseDest,
			Freight:           freight,
			Insurance:         insurance,
			CIF:               cif,
			Duty:              duty,
			Fees:              fees,
			Tax:               tax,
			CustomPackaging:   customPackaging,
			LandedCost:        landedCost,
			Sell:              sell,
			MarginPercent:     marginPercent,
			Currency:          c.currency,
			ThresholdsApplied: thresholds,
			Rules:             rules,
		}),
	}, nil
}

// Calculate prices every item in input order and aggregates the batch summary.
// Any invalid item fails the whole batch; silently dropped rows would make the
// averages misleading.
func (c *Calculator) Calculate(items []domain.LineItem) (Result, error) {
	results := make([]domain.ResultItem, 0, len(items))

	var sumLanded, sumMargin float64
	for i, item := range items {
		priced, err := c.PriceItem(item)
		if err != nil {
			return Result{}, err
		}
		priced.Position = i
		results = append(results, priced)
		sumLanded += priced.LandedCost
		sumMargin += priced.MarginPercent
	}

	summary := domain.Summary{
		TotalItemCount: len(results),
		Currency:       c.currency,
	}
	if n := float64(len(results)); n > 0 {
		summary.AvgLandedCost = sumLanded / n
		summary.AvgMarginPercent = sumMargin / n
	}

	return Result{Items: results, Summary: summary}, nil
}

// Currency returns the destination currency the calculator prices in.
func (c *Calculator) Currency() string {
	return c.currency
}

func (c *Calculator) applyThresholds(cif float64) ([]string, string) {
	if !c.cfg.ApplyThresholds {
		return nil, ""
	}
	if c.cfg.DestinationMarket == domain.MarketUS && cif < usDeMinimisThreshold {
		return []string{"Section 321 (De-minimis)"}, "Threshold exemptions applied"
	}
	return nil, ""
}

func (c *Calculator) buildRules(item domain.LineItem, dutyRate, duty, taxRate, tax, fees float64, thresholds []string) []domain.BreakdownRule {
	taxName := "Sales Tax"
	if c.cfg.DestinationMarket == domain.MarketUK || c.cfg.DestinationMarket == domain.MarketEU {
		taxName = "VAT"
	}

	rules := []domain.BreakdownRule{
		{
			Name:        fmt.Sprintf("Customs Duty - HS %s", item.HSCode),
			Type:        domain.RuleDuty,
			Rate:        &dutyRate,
			Amount:      duty,
			Description: fmt.Sprintf("Duty rate for HS Code %s", item.HSCode),
		},
		{
			Name:        taxName,
			Type:        domain.RuleVAT,
			Rate:        &taxRate,
			Amount:      tax,
			Description: fmt.Sprintf("%s tax on imported goods", c.cfg.DestinationMarket),
		},
		{
			Name:        "Customs Processing Fee",
			Type:        domain.RuleFee,
			Amount:      fees,
			Description: "Standard customs clearance fee",
		},
	}

	for _, label := range thresholds {
		rules = append(rules, domain.BreakdownRule{
			Name:        label,
			Type:        domain.RuleThreshold,
			Amount:      0,
			Description: "De-minimis exemption applicable",
		})
	}

	return rules
}
