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
	SortBy  string
	OrderBy string
	pagination.Page
}

type CreateRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Code string `json:"code" binding:"required,max=32"`
}

type UpdateRequest struct {
	ID   string  `json:"-"`
	Name *string `json:"name" binding:"omitempty,max=100"`
	Code *string `json:"code" binding:"omitempty,max=32"`
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListResponse struct {
	Data     []Response          `json:"data"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidCode   = errors.New("invalid_code")
	ErrEmptyBatch    = errors.New("empty_batch")
	ErrNotFound      = errors.New("color_not_found")
	ErrAlreadyExists = errors.New("color_already_exists")
	ErrInUse         = errors.New("color_in_use")
)
