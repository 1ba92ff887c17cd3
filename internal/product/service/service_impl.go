package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/cache"
	categorydomain "github.com/smallbiznis/stockroom/internal/category/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/guard"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	"github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/internal/stock"
	variantdomain "github.com/smallbiznis/stockroom/internal/variant/domain"
	"github.com/smallbiznis/stockroom/pkg/db"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Categories categorydomain.Repository
	Variants   variantdomain.Repository
	Engine     *stock.Engine
	Inventory  *config.InventoryConfigHolder
	Cache      cache.ProductCache `optional:"true"`
	Metrics    *metrics.Metrics   `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	categories categorydomain.Repository
	variants   variantdomain.Repository
	engine     *stock.Engine
	inventory  *config.InventoryConfigHolder
	cache      cache.ProductCache
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("product.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		categories: p.Categories,
		variants:   p.Variants,
		engine:     p.Engine,
		inventory:  p.Inventory,
		cache:      p.Cache,
		metrics:    p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	cfg := s.inventory.Get()
	page := req.Page.Normalize(cfg.DefaultPageSize, cfg.MaxPageSize)

	filter := domain.ListFilter{
		Name:     strings.TrimSpace(req.Name),
		Enable:   req.Enable,
		InStock:  req.InStock,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		SortBy:   strings.TrimSpace(req.SortBy),
		OrderBy:  strings.TrimSpace(req.OrderBy),
	}
	if raw := strings.TrimSpace(req.CategoryID); raw != "" {
		categoryID, err := parseCategoryID(raw)
		if err != nil {
			return nil, err
		}
		filter.CategoryID = &categoryID
	}

	items, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return nil, err
	}

	data := make([]domain.Response, 0, len(items))
	for i := range items {
		data = append(data, toResponse(&items[i]))
	}
	return &domain.ListResponse{Data: data, PageInfo: pagination.BuildPageInfo(page, total)}, nil
}

// Get reads through the product cache. Cache failures fall back to the
// database. The row is only cached if no invalidation raced with the read.
func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var (
		generation int64
		cacheable  bool
	)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, productID)
		if err != nil {
			s.log.Warn("product cache read failed", zap.Int64("product_id", productID), zap.Error(err))
		} else if ok {
			return cached, nil
		}
		generation, err = s.cache.Generation(ctx, productID)
		if err != nil {
			s.log.Warn("product cache read failed", zap.Int64("product_id", productID), zap.Error(err))
		} else {
			cacheable = true
		}
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	if cacheable {
		if err := s.cache.Set(ctx, productID, generation, &resp); err != nil {
			s.log.Warn("product cache write failed", zap.Int64("product_id", productID), zap.Error(err))
		}
	}
	return &resp, nil
}

// Create registers a product with zero stock under an existing category.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	categoryID, err := parseCategoryID(req.CategoryID)
	if err != nil {
		return nil, err
	}

	enable := true
	if req.Enable != nil {
		enable = *req.Enable
	}

	now := s.clock.Now()
	item := &domain.Product{
		ID:          s.genID.Generate().Int64(),
		CategoryID:  categoryID,
		Name:        name,
		Description: trimOptional(req.Description),
		Price:       req.Price.Round(2),
		Enable:      enable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireCategory(ctx, tx, categoryID); err != nil {
			return err
		}
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

// Update patches the product. Moving it to another category carries its
// current total over to the new category's stock.
func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	productID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var item *domain.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, productID)
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
		if req.Price != nil {
			if req.Price.IsNegative() {
				return domain.ErrInvalidPrice
			}
			next.Price = req.Price.Round(2)
		}
		if req.Enable != nil {
			next.Enable = *req.Enable
		}
		if req.CategoryID != nil {
			categoryID, err := parseCategoryID(*req.CategoryID)
			if err != nil {
				return err
			}
			next.CategoryID = categoryID
		}

		if err := guard.CheckChange(ctx, current.Name, next.Name, s.nameLookup(tx), domain.ErrAlreadyExists); err != nil {
			return err
		}

		if next.CategoryID != current.CategoryID {
			if err := s.requireCategory(ctx, tx, next.CategoryID); err != nil {
				return err
			}
			if err := s.engine.MoveProduct(ctx, tx, current, next.CategoryID); err != nil {
				return err
			}
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

	s.invalidate(ctx, productID)
	resp := toResponse(item)
	return &resp, nil
}

// Delete removes the product together with its variants and takes its total
// out of the category stock.
func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		removed, err := s.variants.DeleteByProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		if err := s.engine.RemoveProduct(ctx, tx, current); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, productID); err != nil {
			return err
		}

		s.log.Info("product deleted",
			zap.Int64("product_id", productID),
			zap.Int64("variants_removed", removed),
			zap.Int64("total_removed", current.Total),
		)
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, productID)
	return nil
}

func (s *Service) requireCategory(ctx context.Context, tx *gorm.DB, categoryID int64) error {
	category, err := s.categories.FindByID(ctx, tx, categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return categorydomain.ErrNotFound
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, ids ...int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.log.Warn("product cache invalidation failed", zap.Int64s("product_ids", ids), zap.Error(err))
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
		s.metrics.RecordGuardRejection(ctx, "product")
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

func parseCategoryID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrInvalidCategory
	}
	return id.Int64(), nil
}

func toResponse(p *domain.Product) domain.Response {
	return domain.Response{
		ID:          snowflake.ID(p.ID).String(),
		CategoryID:  snowflake.ID(p.CategoryID).String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Total:       p.Total,
		Enable:      p.Enable,
		InStock:     p.InStock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
