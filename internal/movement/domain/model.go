package domain

import "time"

const (
	ReasonVariantCreated = "variant_created"
	ReasonVariantUpdated = "variant_updated"
	ReasonVariantDeleted = "variant_deleted"
	ReasonProductMoved   = "product_moved"
	ReasonProductDeleted = "product_deleted"
	ReasonReconcile      = "reconcile"
)

// Movement is one applied aggregate delta. Rows are append-only.
type Movement struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID  int64     `json:"product_id" gorm:"not null;index:ix_stock_movements_product_id"`
	CategoryID int64     `json:"category_id" gorm:"not null;index:ix_stock_movements_category_id"`
	VariantID  *int64    `json:"variant_id,omitempty"`
	Delta      int64     `json:"delta" gorm:"not null"`
	Reason     string    `json:"reason" gorm:"type:varchar(32);not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null"`
}

func (Movement) TableName() string { return "stock_movements" }
