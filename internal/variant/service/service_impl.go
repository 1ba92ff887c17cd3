package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/cache"
	"github.com/smallbiznis/stockroom/internal/clock"
	colordomain "github.com/smallbiznis/stockroom/internal/color/domain"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/guard"
	movementdomain "github.com/smallbiznis/stockroom/internal/movement/domain"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	sizedomain "github.com/smallbiznis/stockroom/internal/size/domain"
	"github.com/smallbiznis/stockroom/internal/stock"
	"github.com/smallbiznis/stockroom/internal/variant/domain"
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
	Colors    colordomain.Repository
	Sizes     sizedomain.Repository
	Engine    *stock.Engine
	Inventory *config.InventoryConfigHolder
	Cache     cache.ProductCache `optional:"true"`
	Metrics   *metrics.Metrics   `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	products  productdomain.Repository
	colors    colordomain.Repository
	sizes     sizedomain.Repository
	engine    *stock.Engine
	inventory *config.InventoryConfigHolder
	cache     cache.ProductCache
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("variant.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		products:  p.Products,
		colors:    p.Colors,
		sizes:     p.Sizes,
		engine:    p.Engine,
		inventory: p.Inventory,
		cache:     p.Cache,
		metrics:   p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	cfg := s.inventory.Get()
	page := req.Page.Normalize(cfg.DefaultPageSize, cfg.MaxPageSize)

	filter := domain.ListFilter{
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
	}
	var err error
	if filter.ProductID, err = parseOptional(req.ProductID, domain.ErrInvalidProduct); err != nil {
		return nil, err
	}
	if filter.ColorID, err = parseOptional(req.ColorID, domain.ErrInvalidColor); err != nil {
		return nil, err
	}
	if filter.SizeID, err = parseOptional(req.SizeID, domain.ErrInvalidSize); err != nil {
		return nil, err
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

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	variantID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, variantID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

// Create stores the variant and adds its quantity to the product and
// category aggregates in the same transaction.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	item, err := s.newVariant(req)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireRefs(ctx, tx, item.Key(), nil); err != nil {
			return err
		}
		if err := guard.Check(ctx, item.Key(), s.keyLookup(tx), domain.ErrAlreadyExists); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, tx, item); err != nil {
			return err
		}
		return s.engine.Apply(ctx, tx, stock.Change{
			Reason:      movementdomain.ReasonVariantCreated,
			VariantID:   &item.ID,
			Adjustments: stock.PlanCreate(position(item)),
		})
	})
	if err != nil {
		return nil, s.translate(ctx, err)
	}

	s.invalidate(ctx, item.ProductID)
	resp := toResponse(item)
	return &resp, nil
}

// BatchCreate is all or nothing: a single invalid item or triple collision,
// against the store or an earlier item, rejects the whole batch.
func (s *Service) BatchCreate(ctx context.Context, reqs []domain.CreateRequest) ([]domain.Response, error) {
	if len(reqs) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	items := make([]domain.Variant, 0, len(reqs))
	keys := make([]domain.Key, 0, len(reqs))
	for i, req := range reqs {
		item, err := s.newVariant(req)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, *item)
		keys = append(keys, item.Key())
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen := make(map[string]struct{})
		for i, key := range keys {
			if err := s.requireRefs(ctx, tx, key, seen); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		if err := guard.CheckBatch(ctx, keys, s.keyLookup(tx), domain.ErrAlreadyExists); err != nil {
			return err
		}
		if err := s.repo.BatchCreate(ctx, tx, items); err != nil {
			return err
		}
		for i := range items {
			err := s.engine.Apply(ctx, tx, stock.Change{
				Reason:      movementdomain.ReasonVariantCreated,
				VariantID:   &items[i].ID,
				Adjustments: stock.PlanCreate(position(&items[i])),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.translate(ctx, err)
	}

	ids := make([]int64, 0, len(items))
	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].ProductID)
		resp = append(resp, toResponse(&items[i]))
	}
	s.invalidate(ctx, ids...)
	return resp, nil
}

// Update patches the variant. The triple is re-checked only when it changes,
// and the quantity difference is propagated to the aggregates.
func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	variantID, err := parseID(req.ID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	next, err := patch(req)
	if err != nil {
		return nil, err
	}

	var prev, item *domain.Variant
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, variantID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		updated := *current
		next.apply(&updated)

		if updated.Key() != current.Key() {
			if err := s.requireRefs(ctx, tx, updated.Key(), nil); err != nil {
				return err
			}
		}
		if err := guard.CheckChange(ctx, current.Key(), updated.Key(), s.keyLookup(tx), domain.ErrAlreadyExists); err != nil {
			return err
		}

		updated.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, &updated); err != nil {
			return err
		}
		if err := s.engine.Apply(ctx, tx, stock.Change{
			Reason:      movementdomain.ReasonVariantUpdated,
			VariantID:   &updated.ID,
			Adjustments: stock.PlanUpdate(position(current), position(&updated)),
		}); err != nil {
			return err
		}
		prev, item = current, &updated
		return nil
	})
	if err != nil {
		return nil, s.translate(ctx, err)
	}

	s.invalidate(ctx, prev.ProductID, item.ProductID)
	resp := toResponse(item)
	return &resp, nil
}

// Delete removes the variant and subtracts its quantity from the aggregates.
func (s *Service) Delete(ctx context.Context, id string) error {
	variantID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}

	var productID int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, variantID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		if err := s.repo.Delete(ctx, tx, variantID); err != nil {
			return err
		}
		productID = current.ProductID
		return s.engine.Apply(ctx, tx, stock.Change{
			Reason:      movementdomain.ReasonVariantDeleted,
			VariantID:   &current.ID,
			Adjustments: stock.PlanDelete(position(current)),
		})
	})
	if err != nil {
		return s.translate(ctx, err)
	}

	s.invalidate(ctx, productID)
	return nil
}

func (s *Service) newVariant(req domain.CreateRequest) (*domain.Variant, error) {
	productID, err := parseID(req.ProductID, domain.ErrInvalidProduct)
	if err != nil {
		return nil, err
	}
	colorID, err := parseID(req.ColorID, domain.ErrInvalidColor)
	if err != nil {
		return nil, err
	}
	sizeID, err := parseID(req.SizeID, domain.ErrInvalidSize)
	if err != nil {
		return nil, err
	}
	if req.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	return &domain.Variant{
		ID:        s.genID.Generate().Int64(),
		ProductID: productID,
		ColorID:   colorID,
		SizeID:    sizeID,
		Quantity:  req.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// requireRefs fails with the owning entity's not-found error when the
// product, color or size of key does not exist. seen skips references
// already confirmed earlier in a batch.
func (s *Service) requireRefs(ctx context.Context, tx *gorm.DB, key domain.Key, seen map[string]struct{}) error {
	checks := []struct {
		ref    string
		exists func() (bool, error)
		err    error
	}{
		{fmt.Sprintf("product:%d", key.ProductID), func() (bool, error) {
			p, err := s.products.FindByID(ctx, tx, key.ProductID)
			return p != nil, err
		}, productdomain.ErrNotFound},
		{fmt.Sprintf("color:%d", key.ColorID), func() (bool, error) {
			c, err := s.colors.FindByID(ctx, tx, key.ColorID)
			return c != nil, err
		}, colordomain.ErrNotFound},
		{fmt.Sprintf("size:%d", key.SizeID), func() (bool, error) {
			sz, err := s.sizes.FindByID(ctx, tx, key.SizeID)
			return sz != nil, err
		}, sizedomain.ErrNotFound},
	}

	for _, check := range checks {
		if _, ok := seen[check.ref]; ok {
			continue
		}
		found, err := check.exists()
		if err != nil {
			return err
		}
		if !found {
			return check.err
		}
		if seen != nil {
			seen[check.ref] = struct{}{}
		}
	}
	return nil
}

func (s *Service) keyLookup(tx *gorm.DB) guard.Lookup[domain.Key] {
	return func(ctx context.Context, key domain.Key) (bool, error) {
		return s.repo.ExistsByKey(ctx, tx, key)
	}
}

func (s *Service) invalidate(ctx context.Context, ids ...int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.log.Warn("product cache invalidation failed", zap.Int64s("product_ids", ids), zap.Error(err))
	}
}

func (s *Service) translate(ctx context.Context, err error) error {
	if db.IsDuplicateKeyErr(err) {
		err = domain.ErrAlreadyExists
	}
	if errors.Is(err, domain.ErrAlreadyExists) {
		s.metrics.RecordGuardRejection(ctx, "variant")
	}
	return err
}

type variantPatch struct {
	productID *int64
	colorID   *int64
	sizeID    *int64
	quantity  *int64
}

func patch(req domain.UpdateRequest) (variantPatch, error) {
	var (
		p   variantPatch
		err error
	)
	if req.ProductID != nil {
		if p.productID, err = parseOptional(*req.ProductID, domain.ErrInvalidProduct); err != nil || p.productID == nil {
			return p, domain.ErrInvalidProduct
		}
	}
	if req.ColorID != nil {
		if p.colorID, err = parseOptional(*req.ColorID, domain.ErrInvalidColor); err != nil || p.colorID == nil {
			return p, domain.ErrInvalidColor
		}
	}
	if req.SizeID != nil {
		if p.sizeID, err = parseOptional(*req.SizeID, domain.ErrInvalidSize); err != nil || p.sizeID == nil {
			return p, domain.ErrInvalidSize
		}
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return p, domain.ErrInvalidQuantity
		}
		p.quantity = req.Quantity
	}
	return p, nil
}

func (p variantPatch) apply(v *domain.Variant) {
	if p.productID != nil {
		v.ProductID = *p.productID
	}
	if p.colorID != nil {
		v.ColorID = *p.colorID
	}
	if p.sizeID != nil {
		v.SizeID = *p.sizeID
	}
	if p.quantity != nil {
		v.Quantity = *p.quantity
	}
}

func position(v *domain.Variant) stock.Position {
	return stock.Position{ProductID: v.ProductID, Quantity: v.Quantity}
}

func parseID(raw string, invalid error) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, invalid
	}
	return id.Int64(), nil
}

func parseOptional(raw string, invalid error) (*int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := parseID(raw, invalid)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func toResponse(v *domain.Variant) domain.Response {
	return domain.Response{
		ID:        snowflake.ID(v.ID).String(),
		ProductID: snowflake.ID(v.ProductID).String(),
		ColorID:   snowflake.ID(v.ColorID).String(),
		SizeID:    snowflake.ID(v.SizeID).String(),
		Quantity:  v.Quantity,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
