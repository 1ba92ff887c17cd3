package domain

import "time"

type Color struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:ux_colors_name"`
	Code      string    `json:"code" gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Color) TableName() string { return "colors" }
