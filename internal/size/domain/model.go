package domain

import "time"

// Size describes a fit range. Bounds are inclusive.
type Size struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:ux_sizes_name"`
	MinHeight int       `json:"min_height" gorm:"not null"`
	MaxHeight int       `json:"max_height" gorm:"not null"`
	MinWeight int       `json:"min_weight" gorm:"not null"`
	MaxWeight int       `json:"max_weight" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Size) TableName() string { return "sizes" }
