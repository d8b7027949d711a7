package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Market is the destination market a batch is priced for.
type Market string

const (
	MarketUK Market = "UK"
	MarketUS Market = "US"
	MarketEU Market = "EU"
)

// CurrencyFor maps a destination market to its currency code.
// Unknown markets fall back to USD.
func CurrencyFor(market Market) string {
	switch market {
	case MarketUK:
		return "GBP"
	case MarketEU:
		return "EUR"
	default:
		return "USD"
	}
}

// Incoterm is recorded for audit only and does not alter the arithmetic.
type Incoterm string

const (
	IncotermFOB Incoterm = "FOB"
	IncotermCIF Incoterm = "CIF"
	IncotermDDP Incoterm = "DDP"
)

type MarginMode string

const (
	// MarginModeMargin prices so that (sell - cost) / sell = margin.
	MarginModeMargin MarginMode = "MARGIN"
	// MarginModeMarkup prices so that (sell - cost) / cost = markup.
	MarginModeMarkup MarginMode = "MARKUP"
)

type FreightModel string

const (
	FreightPerWeightUnit FreightModel = "PER_WEIGHT_UNIT"
	FreightPerPiece      FreightModel = "PER_PIECE"
	FreightPerOrderShare FreightModel = "PER_ORDER_SHARE"
)

type InsuranceModel string

const (
	InsurancePercentOfValue InsuranceModel = "PERCENT_OF_VALUE"
	InsuranceFixedPerUnit   InsuranceModel = "FIXED_PER_UNIT"
)

type RoundingRule string

const (
	RoundingNone       RoundingRule = "NONE"
	RoundingNearest005 RoundingRule = "NEAREST_0_05"
	RoundingNearest050 RoundingRule = "NEAREST_0_50"
	RoundingEnd99      RoundingRule = "END_99"
)

// Configuration describes how a batch is priced. It is immutable once
// snapshotted onto a run.
type Configuration struct {
	DestinationMarket Market         `json:"destination_market"`
	Incoterm          Incoterm       `json:"incoterm"`
	FxDate            *time.Time     `json:"fx_date,omitempty"` // nil means latest
	MarginMode        MarginMode     `json:"margin_mode"`
	MarginValue       float64        `json:"margin_value"` // percentage, 0..100
	FreightModel      FreightModel   `json:"freight_model"`
	FreightValue      float64        `json:"freight_value"`
	InsuranceModel    InsuranceModel `json:"insurance_model"`
	InsuranceValue    float64        `json:"insurance_value"`
	ApplyThresholds   bool           `json:"apply_thresholds"`
	RoundingRule      RoundingRule   `json:"rounding_rule"`
}

// Validate rejects configurations the engine cannot price.
func (c Configuration) Validate() error {
	switch c.DestinationMarket {
	case MarketUK, MarketUS, MarketEU:
	default:
		return ErrInvalidMarket
	}
	switch c.MarginMode {
	case MarginModeMargin, MarginModeMarkup:
	default:
		return ErrInvalidMarginMode
	}
	if c.MarginValue < 0 || c.MarginValue > 100 {
		return ErrInvalidMarginValue
	}
	// MARGIN at 100 divides by zero when deriving the sell price.
	if c.MarginMode == MarginModeMargin && c.MarginValue >= 100 {
		return ErrMarginTooHigh
	}
	switch c.FreightModel {
	case FreightPerWeightUnit, FreightPerPiece, FreightPerOrderShare:
	default:
		return ErrInvalidFreightModel
	}
	if c.FreightValue < 0 {
		return ErrNegativeFreight
	}
	switch c.InsuranceModel {
	case InsurancePercentOfValue, InsuranceFixedPerUnit:
	default:
		return ErrInvalidInsuranceModel
	}
	if c.InsuranceValue < 0 {
		return ErrNegativeInsurance
	}
	switch c.RoundingRule {
	case RoundingNone, RoundingNearest005, RoundingNearest050, RoundingEnd99:
	default:
		return ErrInvalidRoundingRule
	}
	return nil
}

// LineItem is one priced unit of a product batch, already validated upstream.
type LineItem struct {
	SKU                 string
	ProductName         string
	HSCode              string
	PurchasePriceSource float64 // in source currency
	UnitsPerBatch       float64
	WeightPerUnit       float64
	VolumePerUnit       float64
	CustomPackagingCost *float64 // in source currency, nil if absent
}

// FxRate expresses 1 unit of source currency in target currency.
// Immutable once resolved for a run.
type FxRate struct {
	Date           time.Time `json:"date"`
	Rate           float64   `json:"rate"`
	SourceCurrency string    `json:"source_currency"`
	TargetCurrency string    `json:"target_currency"`
}

// RuleType classifies a breakdown rule entry.
type RuleType string

const (
	RuleDuty      RuleType = "DUTY"
	RuleVAT       RuleType = "VAT"
	RuleFee       RuleType = "FEE"
	RuleThreshold RuleType = "THRESHOLD"
)

// BreakdownRule is one step-explanation entry rendered by the UI.
type BreakdownRule struct {
	Name        string   `json:"name"`
	Type        RuleType `json:"type"`
	Rate        *float64 `json:"rate,omitempty"` // percentage where applicable
	Amount      float64  `json:"amount"`
	Description string   `json:"description,omitempty"`
}

// Breakdown retains every intermediate value of the cost ladder so the UI
// can render a full audit trail without recomputation.
type Breakdown struct {
	BaseSource        float64         `json:"base_source"`
	FxRate            float64         `json:"fx_rate"`
	BaseDest          float64         `json:"base_dest"`
	Freight           float64         `json:"freight"`
	Insurance         float64         `json:"insurance"`
	CIF               float64         `json:"cif"`
	Duty              float64         `json:"duty"`
	Fees              float64         `json:"fees"`
	Tax               float64         `json:"tax"`
	CustomPackaging   float64         `json:"custom_packaging"`
	LandedCost        float64         `json:"landed_cost"`
	Sell              float64         `json:"sell"`
	MarginPercent     float64         `json:"margin_percent"`
	Currency          string          `json:"currency"`
	ThresholdsApplied []string        `json:"thresholds_applied"`
	Rules             []BreakdownRule `json:"rules"`
}

// ResultItem is the priced output for one line item. Created once per
// calculation, never mutated; recalculation replaces the whole set.
type ResultItem struct {
	ID    snowflake.ID `gorm:"primaryKey" json:"id"`
	RunID snowflake.ID `gorm:"column:run_id;not null;index" json:"run_id"`

	Position    int    `gorm:"not null" json:"position"`
	SKU         string `gorm:"column:sku;not null" json:"sku"`
	ProductName string `gorm:"not null" json:"product_name"`

	BaseSource      float64 `gorm:"column:base_source;not null" json:"base_source"`
	BaseDest        float64 `gorm:"column:base_dest;not null" json:"base_dest"`
	Freight         float64 `gorm:"not null" json:"freight"`
	Insurance       float64 `gorm:"not null" json:"insurance"`
	CIF             float64 `gorm:"column:cif;not null" json:"cif"`
	Duty            float64 `gorm:"not null" json:"duty"`
	Fees            float64 `gorm:"not null" json:"fees"`
	Tax             float64 `gorm:"not null" json:"tax"`
	CustomPackaging float64 `gorm:"not null" json:"custom_packaging"`
	LandedCost      float64 `gorm:"column:landed_cost;not null" json:"landed_cost"`
	Sell            float64 `gorm:"not null" json:"sell"`
	MarginPercent   float64 `gorm:"column:margin_percent;not null" json:"margin_percent"`

	Notes     string                        `gorm:"type:text" json:"notes"`
	Breakdown datatypes.JSONType[Breakdown] `gorm:"column:breakdown" json:"breakdown"`
	CreatedAt time.Time                     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ResultItem) TableName() string { return "pricing_result_items" }

// NewBreakdown wraps a breakdown for storage in the JSON column.
func NewBreakdown(b Breakdown) datatypes.JSONType[Breakdown] {
	return datatypes.NewJSONType(b)
}

// NewConfigSnapshot wraps a configuration for storage in the JSON column.
func NewConfigSnapshot(c Configuration) datatypes.JSONType[Configuration] {
	return datatypes.NewJSONType(c)
}

// Summary aggregates a run's result set. Averages are unweighted means.
type Summary struct {
	TotalItemCount   int     `json:"total_item_count"`
	AvgLandedCost    float64 `json:"avg_landed_cost"`
	AvgMarginPercent float64 `json:"avg_margin_percent"`
	Currency         string  `json:"currency"`
}

type RunStatus string

const (
	RunStatusPending     RunStatus = "PENDING"
	RunStatusCalculating RunStatus = "CALCULATING"
	RunStatusCompleted   RunStatus = "COMPLETED"
	RunStatusFailed      RunStatus = "FAILED"
)

// Run groups a configuration, an FX snapshot and a calculated result set.
type Run struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ImportID snowflake.ID `gorm:"column:import_id;not null;index" json:"import_id"`

	Name   string    `gorm:"not null" json:"name"`
	Status RunStatus `gorm:"type:text;not null" json:"status"`
	Saved  bool      `gorm:"not null;default:false" json:"saved"`

	Config datatypes.JSONType[Configuration] `gorm:"column:config;not null" json:"config"`

	// FX snapshot, populated by the first successful calculation.
	FxSourceCurrency string     `gorm:"column:fx_source_currency" json:"fx_source_currency,omitempty"`
	FxTargetCurrency string     `gorm:"column:fx_target_currency" json:"fx_target_currency,omitempty"`
	FxRate           float64    `gorm:"column:fx_rate" json:"fx_rate,omitempty"`
	FxRateDate       *time.Time `gorm:"column:fx_rate_date" json:"fx_rate_date,omitempty"`

	TotalItemCount   int     `gorm:"column:total_item_count" json:"total_item_count"`
	AvgLandedCost    float64 `gorm:"column:avg_landed_cost" json:"avg_landed_cost"`
	AvgMarginPercent float64 `gorm:"column:avg_margin_percent" json:"avg_margin_percent"`
	Currency         string  `gorm:"column:currency" json:"currency,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Run) TableName() string { return "pricing_runs" }

// FxSnapshot reassembles the run's FX snapshot.
func (r Run) FxSnapshot() FxRate {
	snap := FxRate{
		Rate:           r.FxRate,
		SourceCurrency: r.FxSourceCurrency,
		TargetCurrency: r.FxTargetCurrency,
	}
	if r.FxRateDate != nil {
		snap.Date = *r.FxRateDate
	}
	return snap
}

// Summary reassembles the run's aggregate summary.
func (r Run) Summary() Summary {
	return Summary{
		TotalItemCount:   r.TotalItemCount,
		AvgLandedCost:    r.AvgLandedCost,
		AvgMarginPercent: r.AvgMarginPercent,
		Currency:         r.Currency,
	}
}
