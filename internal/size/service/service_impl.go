package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/guard"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	"github.com/smallbiznis/stockroom/internal/size/domain"
	variantdomain "github.com/smallbiznis/stockroom/internal/variant/domain"
	"github.com/smallbiznis/stockroom/pkg/db"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Variants  variantdomain.Repository
	Inventory *config.InventoryConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	variants  variantdomain.Repository
	inventory *config.InventoryConfigHolder
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("size.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		variants:  p.Variants,
		inventory: p.Inventory,
		metrics:   p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	cfg := s.inventory.Get()
	page := req.Page.Normalize(cfg.DefaultPageSize, cfg.MaxPageSize)

	items, total, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Name:    strings.TrimSpace(req.Name),
		Height:  req.Height,
		Weight:  req.Weight,
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
	}, page)
	if err != nil {
		return nil, err
	}

	data := make([]domain.Response, 0, len(items))
	for i := range items {
		data = append(data, toResponse(&items[i]))
	}
	return &domain.ListResponse{Data: data, PageInfo: pagination.BuildPageInfo(page, total)}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	sizeID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, sizeID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	item, err := s.newSize(req)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := guard.Check(ctx, item.Name, s.nameLookup(tx), domain.ErrAlreadyExists); err != nil {
			return err
		}
		return s.repo.Create(ctx, tx, item)
	})
	if err != nil {
		return nil, s.translate(ctx, err)
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) BatchCreate(ctx context.Context, reqs []domain.CreateRequest) ([]domain.Response, error) {
	if len(reqs) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	items := make([]domain.Size, 0, len(reqs))
	names := make([]string, 0, len(reqs))
	for _, req := range reqs {
		item, err := s.newSize(req)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
		names = append(names, item.Name)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := guard.CheckBatch(ctx, names, s.nameLookup(tx), domain.ErrAlreadyExists); err != nil {
			return err
		}
		return s.repo.BatchCreate(ctx, tx, items)
	})
	if err != nil {
		return nil, s.translate(ctx, err)
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	sizeID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var item *domain.Size
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, sizeID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		next := *current
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return domain.ErrInvalidName
			}
			next.Name = name
		}
		assignInt(&next.MinHeight, req.MinHeight)
		assignInt(&next.MaxHeight, req.MaxHeight)
		assignInt(&next.MinWeight, req.MinWeight)
		assignInt(&next.MaxWeight, req.MaxWeight)
		if err := validateRanges(&next); err != nil {
			return err
		}

		if err := guard.CheckChange(ctx, current.Name, next.Name, s.nameLookup(tx), domain.ErrAlreadyExists); err != nil {
			return err
		}

		next.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, &next); err != nil {
			return err
		}
		item = &next
		return nil
	})
	if err != nil {
		return nil, s.translate(ctx, err)
	}

	resp := toResponse(item)
	return &resp, nil
}

// Delete refuses while any variant still references the size.
func (s *Service) Delete(ctx context.Context, id string) error {
	sizeID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, sizeID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		inUse, err := s.variants.CountBySize(ctx, tx, sizeID)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return domain.ErrInUse
		}
		return s.repo.Delete(ctx, tx, sizeID)
	})
}

func (s *Service) newSize(req domain.CreateRequest) (*domain.Size, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	item := &domain.Size{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		MinHeight: req.MinHeight,
		MaxHeight: req.MaxHeight,
		MinWeight: req.MinWeight,
		MaxWeight: req.MaxWeight,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateRanges(item); err != nil {
		return nil, err
	}
	return item, nil
}

func validateRanges(item *domain.Size) error {
	if item.MinHeight < 0 || item.MaxHeight < 0 || item.MinHeight > item.MaxHeight {
		return domain.ErrInvalidHeightRange
	}
	if item.MinWeight < 0 || item.MaxWeight < 0 || item.MinWeight > item.MaxWeight {
		return domain.ErrInvalidWeightRange
	}
	return nil
}

func assignInt(dst *int, value *int) {
	if value != nil {
		*dst = *value
	}
}

func (s *Service) nameLookup(tx *gorm.DB) guard.Lookup[string] {
	return func(ctx context.Context, name string) (bool, error) {
		return s.repo.ExistsByName(ctx, tx, name)
	}
}

func (s *Service) translate(ctx context.Context, err error) error {
	if db.IsDuplicateKeyErr(err) {
		err = domain.ErrAlreadyExists
	}
	if errors.Is(err, domain.ErrAlreadyExists) {
		s.metrics.RecordGuardRejection(ctx, "size")
	}
	return err
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}

func toResponse(s *domain.Size) domain.Response {
	return domain.Response{
		ID:        snowflake.ID(s.ID).String(),
		Name:      s.Name,
		MinHeight: s.MinHeight,
		MaxHeight: s.MaxHeight,
		MinWeight: s.MinWeight,
		MaxWeight: s.MaxWeight,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
