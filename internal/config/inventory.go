package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InventoryConfig carries the runtime tunables that may change without a restart.
type InventoryConfig struct {
	DefaultPageSize   int           `mapstructure:"defaultPageSize"`
	MaxPageSize       int           `mapstructure:"maxPageSize"`
	ReconcileInterval time.Duration `mapstructure:"reconcileInterval"`
	ReconcileLockTTL  time.Duration `mapstructure:"reconcileLockTTL"`
	ProductCacheTTL   time.Duration `mapstructure:"productCacheTTL"`
}

func DefaultInventoryConfig() InventoryConfig {
	return InventoryConfig{
		DefaultPageSize:   10,
		MaxPageSize:       100,
		ReconcileInterval: 0,
		ReconcileLockTTL:  time.Minute,
		ProductCacheTTL:   5 * time.Minute,
	}
}

type InventoryConfigHolder struct {
	current atomic.Value // holds InventoryConfig
}

// NewStaticInventoryConfigHolder returns a holder that never reloads.
func NewStaticInventoryConfigHolder(cfg InventoryConfig) *InventoryConfigHolder {
	holder := &InventoryConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewInventoryConfigHolderFromConfig(cfg Config) (*InventoryConfigHolder, error) {
	return NewInventoryConfigHolder(cfg.InventoryConfigFile)
}

// NewInventoryConfigHolder reads the inventory key from path, or from
// inventory.yml in the usual locations when path is empty. A missing file
// yields the defaults.
func NewInventoryConfigHolder(path string) (*InventoryConfigHolder, error) {
	v := viper.New()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("inventory")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/stockroom")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("STOCKROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInventoryConfig()
	v.SetDefault("inventory.defaultPageSize", defaults.DefaultPageSize)
	v.SetDefault("inventory.maxPageSize", defaults.MaxPageSize)
	v.SetDefault("inventory.reconcileInterval", defaults.ReconcileInterval)
	v.SetDefault("inventory.reconcileLockTTL", defaults.ReconcileLockTTL)
	v.SetDefault("inventory.productCacheTTL", defaults.ProductCacheTTL)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		watch = false
	}

	cfg, err := decodeInventoryConfig(v)
	if err != nil {
		return nil, err
	}
	if err := validateInventoryConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticInventoryConfigHolder(cfg)
	if !watch {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeInventoryConfig(v)
		if err != nil {
			zap.L().Warn("inventory config reload failed", zap.Error(err))
			return
		}
		if err := validateInventoryConfig(updated); err != nil {
			zap.L().Warn("invalid inventory config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		zap.L().Info("inventory config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// decodeInventoryConfig goes through Unmarshal rather than UnmarshalKey so
// keys missing from the file keep their registered defaults.
func decodeInventoryConfig(v *viper.Viper) (InventoryConfig, error) {
	var wrapper struct {
		Inventory InventoryConfig `mapstructure:"inventory"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return InventoryConfig{}, err
	}
	return wrapper.Inventory, nil
}

func (h *InventoryConfigHolder) Get() InventoryConfig {
	return h.current.Load().(InventoryConfig)
}

func validateInventoryConfig(cfg InventoryConfig) error {
	if cfg.DefaultPageSize <= 0 {
		return errors.New("inventory.defaultPageSize must be positive")
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		return errors.New("inventory.maxPageSize must be >= defaultPageSize")
	}
	if cfg.ReconcileInterval < 0 {
		return errors.New("inventory.reconcileInterval cannot be negative")
	}
	if cfg.ReconcileLockTTL <= 0 {
		return errors.New("inventory.reconcileLockTTL must be positive")
	}
	if cfg.ProductCacheTTL < 0 {
		return errors.New("inventory.productCacheTTL cannot be negative")
	}
	return nil
}
