package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CategoryID  int64           `json:"category_id" gorm:"not null;index:ix_products_category_id"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:ux_products_name"`
	Description *string         `json:"description,omitempty" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Total       int64           `json:"total" gorm:"not null;default:0"`
	Enable      bool            `json:"enable" gorm:"not null"`
	InStock     bool            `json:"in_stock" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }
