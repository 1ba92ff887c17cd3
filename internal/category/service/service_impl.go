package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/category/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/guard"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
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
	Products  productdomain.Repository
	Inventory *config.InventoryConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	products  productdomain.Repository
	inventory *config.InventoryConfigHolder
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("category.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		products:  p.Products,
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
	categoryID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, categoryID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

// Create always starts the category with zero stock; stock only moves with
// its products.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	item := &domain.Category{
		ID:          s.genID.Generate().Int64(),
		Name:        name,
		Description: trimOptional(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	categoryID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var item *domain.Category
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, categoryID)
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
		if req.Description != nil {
			next.Description = trimOptional(req.Description)
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

// Delete refuses while any product still belongs to the category.
func (s *Service) Delete(ctx context.Context, id string) error {
	categoryID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, categoryID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		count, err := s.products.CountByCategory(ctx, tx, categoryID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrInUse
		}
		return s.repo.Delete(ctx, tx, categoryID)
	})
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
		s.metrics.RecordGuardRejection(ctx, "category")
	}
	return err
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}

func toResponse(c *domain.Category) domain.Response {
	return domain.Response{
		ID:          snowflake.ID(c.ID).String(),
		Name:        c.Name,
		Description: c.Description,
		Stock:       c.Stock,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
