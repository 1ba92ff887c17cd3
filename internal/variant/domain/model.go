package domain

import "time"

// Variant is one product/color/size combination and the unit stock is kept in.
type Variant struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID int64     `json:"product_id" gorm:"not null;uniqueIndex:ux_variants_product_color_size,priority:1"`
	ColorID   int64     `json:"color_id" gorm:"not null;uniqueIndex:ux_variants_product_color_size,priority:2;index:ix_variants_color_id"`
	SizeID    int64     `json:"size_id" gorm:"not null;uniqueIndex:ux_variants_product_color_size,priority:3;index:ix_variants_size_id"`
	Quantity  int64     `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Variant) TableName() string { return "product_color_sizes" }

// Key is the unique identity of a variant within the catalogue.
type Key struct {
	ProductID int64
	ColorID   int64
	SizeID    int64
}

func (v Variant) Key() Key {
	return Key{ProductID: v.ProductID, ColorID: v.ColorID, SizeID: v.SizeID}
}
