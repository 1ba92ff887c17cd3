package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/stockroom/pkg/db/pagination"
)

type Service interface {
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}

type ListRequest struct {
	ProductID  string
	CategoryID string
	Reason     string
	pagination.Page
}

type Response struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	CategoryID string    `json:"category_id"`
	VariantID  *string   `json:"variant_id,omitempty"`
	Delta      int64     `json:"delta"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListResponse struct {
	Data     []Response          `json:"data"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidReason = errors.New("invalid_reason")
)
