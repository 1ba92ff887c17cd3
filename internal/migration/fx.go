package migration

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
		if cfg.AutoMigrate {
			if err := Migrate(conn); err != nil {
				return err
			}
			log.Info("schema migrated", zap.String("dialect", conn.Dialector.Name()))
		}
		if cfg.SeedDefaults {
			return seed.EnsureDefaults(conn, node, clk)
		}
		return nil
	}),
)

// Migrate runs the embedded SQL on postgres and AutoMigrate elsewhere.
func Migrate(conn *gorm.DB) error {
	if conn.Dialector.Name() != "postgres" {
		return AutoMigrate(conn)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}
