package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/stockroom/pkg/db/pagination"
)

type Service interface {
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, id string) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	BatchCreate(ctx context.Context, req []CreateRequest) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	ProductID string
	ColorID   string
	SizeID    string
	SortBy    string
	OrderBy   string
	pagination.Page
}

type CreateRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	ColorID   string `json:"color_id" binding:"required"`
	SizeID    string `json:"size_id" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"min=0"`
}

// UpdateRequest patches a variant. Moving it to another product transfers its
// quantity between the two products.
type UpdateRequest struct {
	ID        string  `json:"-"`
	ProductID *string `json:"product_id"`
	ColorID   *string `json:"color_id"`
	SizeID    *string `json:"size_id"`
	Quantity  *int64  `json:"quantity" binding:"omitempty,min=0"`
}

type Response struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	ColorID   string    `json:"color_id"`
	SizeID    string    `json:"size_id"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListResponse struct {
	Data     []Response          `json:"data"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidProduct  = errors.New("invalid_product_id")
	ErrInvalidColor    = errors.New("invalid_color_id")
	ErrInvalidSize     = errors.New("invalid_size_id")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrEmptyBatch      = errors.New("empty_batch")
	ErrNotFound        = errors.New("variant_not_found")
	ErrAlreadyExists   = errors.New("variant_already_exists")
)
