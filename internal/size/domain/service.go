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
	Name    string
	Height  *int
	Weight  *int
	SortBy  string
	OrderBy string
	pagination.Page
}

type CreateRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	MinHeight int    `json:"min_height" binding:"min=0"`
	MaxHeight int    `json:"max_height" binding:"min=0"`
	MinWeight int    `json:"min_weight" binding:"min=0"`
	MaxWeight int    `json:"max_weight" binding:"min=0"`
}

type UpdateRequest struct {
	ID        string  `json:"-"`
	Name      *string `json:"name" binding:"omitempty,max=100"`
	MinHeight *int    `json:"min_height" binding:"omitempty,min=0"`
	MaxHeight *int    `json:"max_height" binding:"omitempty,min=0"`
	MinWeight *int    `json:"min_weight" binding:"omitempty,min=0"`
	MaxWeight *int    `json:"max_weight" binding:"omitempty,min=0"`
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MinHeight int       `json:"min_height"`
	MaxHeight int       `json:"max_height"`
	MinWeight int       `json:"min_weight"`
	MaxWeight int       `json:"max_weight"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListResponse struct {
	Data     []Response          `json:"data"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidHeightRange = errors.New("invalid_height_range")
	ErrInvalidWeightRange = errors.New("invalid_weight_range")
	ErrEmptyBatch         = errors.New("empty_batch")
	ErrNotFound           = errors.New("size_not_found")
	ErrAlreadyExists      = errors.New("size_already_exists")
	ErrInUse              = errors.New("size_in_use")
)
