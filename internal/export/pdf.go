package export

import (
	"fmt"
	"io"

	"github.com/forthandvale/backoffice/internal/pricing/domain"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

func writePDF(w io.Writer, run domain.Run, items []domain.ResultItem) error {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Pricing Run Report", props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	runCfg := run.Config.Data()
	summary := run.Summary()
	fx := run.FxSnapshot()
	m.AddRow(22,
		col.New(6).Add(
			text.New("Run: "+run.Name, props.Text{Top: 0, Size: 9}),
			text.New(fmt.Sprintf("Market: %s (%s)", runCfg.DestinationMarket, summary.Currency), props.Text{Top: 4, Size: 9}),
			text.New(fmt.Sprintf("FX: 1 %s = %s %s (%s)",
				fx.SourceCurrency, money(fx.Rate), fx.TargetCurrency,
				fx.Date.Format("2006-01-02")), props.Text{Top: 8, Size: 9}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Items: %d", summary.TotalItemCount), props.Text{Top: 0, Size: 9}),
			text.New(fmt.Sprintf("Avg landed cost: %s %s", money(summary.AvgLandedCost), summary.Currency), props.Text{Top: 4, Size: 9}),
			text.New(fmt.Sprintf("Avg margin: %s%%", money(summary.AvgMarginPercent)), props.Text{Top: 8, Size: 9}),
		),
	)

	m.AddRow(8,
		text.NewCol(2, "SKU", props.Text{Style: fontstyle.Bold, Size: 8}),
		text.NewCol(3, "Product", props.Text{Style: fontstyle.Bold, Size: 8}),
		text.NewCol(1, "CIF", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
		text.NewCol(1, "Duty", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
		text.NewCol(1, "Tax", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
		text.NewCol(2, "Landed Cost", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
		text.NewCol(1, "Sell", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
		text.NewCol(1, "Margin %", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
	)

	for _, item := range items {
		m.AddRow(7,
			text.NewCol(2, item.SKU, props.Text{Size: 8}),
			text.NewCol(3, item.ProductName, props.Text{Size: 8}),
			text.NewCol(1, money(item.CIF), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(1, money(item.Duty), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(1, money(item.Tax), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(2, money(item.LandedCost), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(1, money(item.Sell), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(1, money(item.MarginPercent), props.Text{Size: 8, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return err
	}
	_, err = w.Write(doc.GetBytes())
	return err
}
