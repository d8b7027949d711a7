package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/forthandvale/backoffice/internal/imports/domain"
	"github.com/forthandvale/backoffice/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Node    *snowflake.Node
	Repo    domain.Repository
	Metrics *metrics.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	node    *snowflake.Node
	repo    domain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("imports.service"),
		node:    p.Node,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.CreateResponse, error) {
	items, rowErrors, err := parseWorkbook(req.Reader, req.Mapping)
	if err != nil {
		return domain.CreateResponse{}, err
	}
	if len(items) == 0 {
		return domain.CreateResponse{}, domain.ErrNoValidRows
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.FileName
	}

	imp := domain.Import{
		ID:        s.node.Generate(),
		Name:      name,
		FileName:  req.FileName,
		ItemCount: len(items),
	}
	for i := range items {
		items[i].ID = s.node.Generate()
		items[i].ImportID = imp.ID
	}

	if err := s.repo.Insert(ctx, s.db, &imp, items); err != nil {
		s.log.Error("failed to insert import", zap.Error(err))
		return domain.CreateResponse{}, err
	}

	s.metrics.ImportsCreated.Inc()
	s.log.Info("import created",
		zap.String("import_id", imp.ID.String()),
		zap.Int("item_count", len(items)),
		zap.Int("rejected_rows", len(rowErrors)),
	)
	return domain.CreateResponse{
		Import:           imp,
		ItemCount:        len(items),
		ValidationErrors: rowErrors,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Import, error) {
	importID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.Import{}, domain.ErrInvalidID
	}
	imp, err := s.repo.FindByID(ctx, s.db, importID)
	if err != nil {
		return domain.Import{}, err
	}
	if imp == nil {
		return domain.Import{}, domain.ErrNotFound
	}
	return *imp, nil
}

func (s *Service) ListItems(ctx context.Context, id string) ([]domain.Item, error) {
	imp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, s.db, imp.ID)
}
