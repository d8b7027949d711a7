package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/forthandvale/backoffice/internal/config"
	fxratedomain "github.com/forthandvale/backoffice/internal/fxrate/domain"
	importsdomain "github.com/forthandvale/backoffice/internal/imports/domain"
	"github.com/forthandvale/backoffice/internal/metrics"
	"github.com/forthandvale/backoffice/internal/pricing/domain"
	"github.com/forthandvale/backoffice/internal/pricing/engine"
	"github.com/forthandvale/backoffice/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Cfg     config.Config
	Node    *snowflake.Node
	Repo    domain.Repository
	Imports importsdomain.Repository
	FxRates fxratedomain.Service
	Metrics *metrics.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	node    *snowflake.Node
	repo    domain.Repository
	imports importsdomain.Repository
	fxRates fxratedomain.Service
	metrics *metrics.Metrics

	sourceCurrency string
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("pricing.service"),
		node:           p.Node,
		repo:           p.Repo,
		imports:        p.Imports,
		fxRates:        p.FxRates,
		metrics:        p.Metrics,
		sourceCurrency: p.Cfg.SourceCurrency,
	}
}

func (s *Service) CreateRun(ctx context.Context, req domain.CreateRunRequest) (domain.Run, error) {
	importID, err := snowflake.ParseString(req.ImportID)
	if err != nil {
		return domain.Run{}, domain.ErrInvalidID
	}
	if err := req.Config.Validate(); err != nil {
		return domain.Run{}, err
	}

	imp, err := s.imports.FindByID(ctx, s.db, importID)
	if err != nil {
		return domain.Run{}, err
	}
	if imp == nil {
		return domain.Run{}, importsdomain.ErrNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fmt.Sprintf("%s - %s", imp.Name, req.Config.DestinationMarket)
	}

	run := domain.Run{
		ID:       s.node.Generate(),
		ImportID: importID,
		Name:     name,
		Status:   domain.RunStatusPending,
		Config:   domain.NewConfigSnapshot(req.Config),
	}
	if err := s.repo.InsertRun(ctx, s.db, &run); err != nil {
		s.log.Error("failed to insert run", zap.Error(err))
		return domain.Run{}, err
	}

	s.log.Info("run created",
		zap.String("run_id", run.ID.String()),
		zap.String("import_id", importID.String()),
		zap.String("market", string(req.Config.DestinationMarket)),
	)
	return run, nil
}

// CalculateRun resolves the FX snapshot, prices every item of the run's import
// and replaces the stored result set. Calling it again with the same inputs
// produces the same results.
func (s *Service) CalculateRun(ctx context.Context, runID string) (domain.CalculationResponse, error) {
	run, err := s.findRun(ctx, runID)
	if err != nil {
		return domain.CalculationResponse{}, err
	}

	cfg := run.Config.Data()
	targetCurrency := domain.CurrencyFor(cfg.DestinationMarket)

	fxRate, err := s.fxRates.Resolve(ctx, s.sourceCurrency, targetCurrency, cfg.FxDate)
	if err != nil {
		return domain.CalculationResponse{}, err
	}

	items, err := s.imports.ListItems(ctx, s.db, run.ImportID)
	if err != nil {
		return domain.CalculationResponse{}, err
	}
	if len(items) == 0 {
		return domain.CalculationResponse{}, domain.ErrEmptyImport
	}

	calc, err := engine.New(cfg, fxRate)
	if err != nil {
		return domain.CalculationResponse{}, err
	}

	run.Status = domain.RunStatusCalculating
	if err := s.repo.UpdateRun(ctx, s.db, run); err != nil {
		return domain.CalculationResponse{}, err
	}

	result, err := calc.Calculate(lineItems(items))
	if err != nil {
		s.markFailed(ctx, run)
		return domain.CalculationResponse{}, err
	}

	for i := range result.Items {
		result.Items[i].ID = s.node.Generate()
		result.Items[i].RunID = run.ID
	}
	if err := s.repo.ReplaceResults(ctx, s.db, run.ID, result.Items); err != nil {
		s.markFailed(ctx, run)
		return domain.CalculationResponse{}, err
	}

	now := time.Now().UTC()
	run.Status = domain.RunStatusCompleted
	run.FxSourceCurrency = fxRate.SourceCurrency
	run.FxTargetCurrency = fxRate.TargetCurrency
	run.FxRate = fxRate.Rate
	rateDate := fxRate.Date
	run.FxRateDate = &rateDate
	run.TotalItemCount = result.Summary.TotalItemCount
	run.AvgLandedCost = result.Summary.AvgLandedCost
	run.AvgMarginPercent = result.Summary.AvgMarginPercent
	run.Currency = result.Summary.Currency
	run.UpdatedAt = now
	if err := s.repo.UpdateRun(ctx, s.db, run); err != nil {
		s.markFailed(ctx, run)
		return domain.CalculationResponse{}, err
	}

	s.metrics.RunsCalculated.WithLabelValues(string(cfg.DestinationMarket)).Inc()
	s.metrics.ItemsPriced.Add(float64(len(result.Items)))
	s.log.Info("run calculated",
		zap.String("run_id", run.ID.String()),
		zap.Int("item_count", len(result.Items)),
		zap.Float64("fx_rate", fxRate.Rate),
	)

	return domain.CalculationResponse{
		Run:     *run,
		Items:   result.Items,
		Summary: result.Summary,
		FxRate:  fxRate,
	}, nil
}

func (s *Service) GetRun(ctx context.Context, runID string) (domain.Run, error) {
	run, err := s.findRun(ctx, runID)
	if err != nil {
		return domain.Run{}, err
	}
	return *run, nil
}

func (s *Service) ListRuns(ctx context.Context, req domain.ListRunsRequest) (domain.ListRunsResponse, error) {
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	if page.PageSize <= 0 {
		page.PageSize = 50
	}

	runs, err := s.repo.ListRuns(ctx, s.db, req, page)
	if err != nil {
		return domain.ListRunsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(runs, page.PageSize, func(run *domain.Run) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        run.ID.String(),
			CreatedAt: run.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})
	if len(runs) > page.PageSize {
		runs = runs[:page.PageSize]
	}

	resp := domain.ListRunsResponse{
		PageInfo: *pageInfo,
		Runs:     make([]domain.Run, 0, len(runs)),
	}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, *run)
	}
	return resp, nil
}

func (s *Service) ListResults(ctx context.Context, runID string) ([]domain.ResultItem, error) {
	run, err := s.findRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != domain.RunStatusCompleted {
		return nil, domain.ErrRunNotCompleted
	}
	return s.repo.ListResults(ctx, s.db, run.ID)
}

func (s *Service) RenameRun(ctx context.Context, req domain.RenameRunRequest) (domain.Run, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Run{}, domain.ErrInvalidName
	}

	run, err := s.findRun(ctx, req.ID)
	if err != nil {
		return domain.Run{}, err
	}

	run.Name = name
	run.Saved = true
	if err := s.repo.UpdateRun(ctx, s.db, run); err != nil {
		return domain.Run{}, err
	}
	return *run, nil
}

// DuplicateRun copies a run's configuration into a fresh PENDING run against
// the same import. Results are not copied; the copy is recalculated on demand.
func (s *Service) DuplicateRun(ctx context.Context, runID string) (domain.Run, error) {
	src, err := s.findRun(ctx, runID)
	if err != nil {
		return domain.Run{}, err
	}

	dup := domain.Run{
		ID:       s.node.Generate(),
		ImportID: src.ImportID,
		Name:     src.Name + " (copy)",
		Status:   domain.RunStatusPending,
		Config:   src.Config,
	}
	if err := s.repo.InsertRun(ctx, s.db, &dup); err != nil {
		return domain.Run{}, err
	}

	s.log.Info("run duplicated",
		zap.String("source_run_id", src.ID.String()),
		zap.String("run_id", dup.ID.String()),
	)
	return dup, nil
}

// markFailed moves a run out of CALCULATING when any step after the status
// transition errors, so a run never stays in-flight forever.
func (s *Service) markFailed(ctx context.Context, run *domain.Run) {
	run.Status = domain.RunStatusFailed
	run.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateRun(ctx, s.db, run); err != nil {
		s.log.Error("failed to mark run failed",
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) findRun(ctx context.Context, runID string) (*domain.Run, error) {
	id, err := snowflake.ParseString(runID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	run, err := s.repo.FindRunByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

func lineItems(items []importsdomain.Item) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.LineItem{
			SKU:                 item.SKU,
			ProductName:         item.ProductName,
			HSCode:              item.HSCode,
			PurchasePriceSource: item.PurchasePriceSource,
			UnitsPerBatch:       item.UnitsPerBatch,
			WeightPerUnit:       item.WeightPerUnit,
			VolumePerUnit:       item.VolumePerUnit,
			CustomPackagingCost: item.CustomPackagingCost,
		})
	}
	return out
}
