package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/clock"
	colordomain "github.com/smallbiznis/stockroom/internal/color/domain"
	sizedomain "github.com/smallbiznis/stockroom/internal/size/domain"
	"gorm.io/gorm"
)

var defaultColors = []colordomain.Color{
	{Name: "Black", Code: "#000000"},
	{Name: "White", Code: "#FFFFFF"},
	{Name: "Red", Code: "#FF0000"},
	{Name: "Navy", Code: "#000080"},
}

var defaultSizes = []sizedomain.Size{
	{Name: "S", MinHeight: 150, MaxHeight: 165, MinWeight: 45, MaxWeight: 60},
	{Name: "M", MinHeight: 160, MaxHeight: 175, MinWeight: 55, MaxWeight: 70},
	{Name: "L", MinHeight: 170, MaxHeight: 185, MinWeight: 65, MaxWeight: 85},
	{Name: "XL", MinHeight: 180, MaxHeight: 195, MinWeight: 80, MaxWeight: 100},
}

// EnsureDefaults inserts the stock colors and sizes that are not present yet.
// Existing rows with the same name are left untouched.
func EnsureDefaults(db *gorm.DB, node *snowflake.Node, clk clock.Clock) error {
	if db == nil || node == nil || clk == nil {
		return errors.New("seed dependencies are required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := clk.Now()
		for _, c := range defaultColors {
			found, err := exists(ctx, tx, &colordomain.Color{}, c.Name)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			c.ID = node.Generate().Int64()
			c.CreatedAt, c.UpdatedAt = now, now
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		}

		for _, s := range defaultSizes {
			found, err := exists(ctx, tx, &sizedomain.Size{}, s.Name)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			s.ID = node.Generate().Int64()
			s.CreatedAt, s.UpdatedAt = now, now
			if err := tx.Create(&s).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func exists(ctx context.Context, tx *gorm.DB, model any, name string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(model).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}
