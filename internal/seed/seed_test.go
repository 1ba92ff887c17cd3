package seed

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/clock"
	colordomain "github.com/smallbiznis/stockroom/internal/color/domain"
	sizedomain "github.com/smallbiznis/stockroom/internal/size/domain"
	"github.com/smallbiznis/stockroom/pkg/db"
)

func TestEnsureDefaultsIsIdempotent(t *testing.T) {
	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&colordomain.Color{}, &sizedomain.Size{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, _ := snowflake.NewNode(1)
	clk := clock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 2; i++ {
		if err := EnsureDefaults(conn, node, clk); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}

	var colors, sizes int64
	conn.Model(&colordomain.Color{}).Count(&colors)
	conn.Model(&sizedomain.Size{}).Count(&sizes)
	if colors != int64(len(defaultColors)) {
		t.Fatalf("expected %d colors, got %d", len(defaultColors), colors)
	}
	if sizes != int64(len(defaultSizes)) {
		t.Fatalf("expected %d sizes, got %d", len(defaultSizes), sizes)
	}
}
