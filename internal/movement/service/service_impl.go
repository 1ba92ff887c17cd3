package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/movement/domain"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var reasons = map[string]bool{
	domain.ReasonVariantCreated: true,
	domain.ReasonVariantUpdated: true,
	domain.ReasonVariantDeleted: true,
	domain.ReasonProductMoved:   true,
	domain.ReasonProductDeleted: true,
	domain.ReasonReconcile:      true,
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      domain.Repository
	Inventory *config.InventoryConfigHolder
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	inventory *config.InventoryConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("movement.service"),
		repo:      p.Repo,
		inventory: p.Inventory,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	var filter domain.ListFilter

	if raw := strings.TrimSpace(req.ProductID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		v := id.Int64()
		filter.ProductID = &v
	}
	if raw := strings.TrimSpace(req.CategoryID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		v := id.Int64()
		filter.CategoryID = &v
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		if !reasons[reason] {
			return nil, domain.ErrInvalidReason
		}
		filter.Reason = reason
	}

	cfg := s.inventory.Get()
	page := req.Page.Normalize(cfg.DefaultPageSize, cfg.MaxPageSize)

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

func toResponse(m *domain.Movement) domain.Response {
	resp := domain.Response{
		ID:         snowflake.ID(m.ID).String(),
		ProductID:  snowflake.ID(m.ProductID).String(),
		CategoryID: snowflake.ID(m.CategoryID).String(),
		Delta:      m.Delta,
		Reason:     m.Reason,
		CreatedAt:  m.CreatedAt,
	}
	if m.VariantID != nil {
		v := snowflake.ID(*m.VariantID).String()
		resp.VariantID = &v
	}
	return resp
}
