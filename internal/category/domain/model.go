package domain

import "time"

type Category struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:ux_categories_name"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	Stock       int64     `json:"stock" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null"`
}

func (Category) TableName() string { return "categories" }
