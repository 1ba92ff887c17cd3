package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/color/domain"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/guard"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
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
		log:       p.Log.Named("color.service"),
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
	colorID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, colorID)
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
	item, err := s.newColor(req)
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

// BatchCreate inserts every color or none of them.
func (s *Service) BatchCreate(ctx context.Context, reqs []domain.CreateRequest) ([]domain.Response, error) {
	if len(reqs) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	items := make([]domain.Color, 0, len(reqs))
	names := make([]string, 0, len(reqs))
	for _, req := range reqs {
		item, err := s.newColor(req)
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
	colorID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var item *domain.Color
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, colorID)
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
		if req.Code != nil {
			code := strings.TrimSpace(*req.Code)
			if code == "" {
				return domain.ErrInvalidCode
			}
			next.Code = code
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

// Delete refuses while any variant still references the color.
func (s *Service) Delete(ctx context.Context, id string) error {
	colorID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, colorID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		inUse, err := s.variants.CountByColor(ctx, tx, colorID)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return domain.ErrInUse
		}
		return s.repo.Delete(ctx, tx, colorID)
	})
}

func (s *Service) newColor(req domain.CreateRequest) (*domain.Color, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	now := s.clock.Now()
	return &domain.Color{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Service) nameLookup(tx *gorm.DB) guard.Lookup[string] {
	return func(ctx context.Context, name string) (bool, error) {
		return s.repo.ExistsByName(ctx, tx, name)
	}
}

// translate maps a unique index violation that slipped past the guard onto
// the domain conflict error.
func (s *Service) translate(ctx context.Context, err error) error {
	if db.IsDuplicateKeyErr(err) {
		err = domain.ErrAlreadyExists
	}
	if errors.Is(err, domain.ErrAlreadyExists) {
		s.metrics.RecordGuardRejection(ctx, "color")
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

func toResponse(c *domain.Color) domain.Response {
	return domain.Response{
		ID:        snowflake.ID(c.ID).String(),
		Name:      c.Name,
		Code:      c.Code,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
