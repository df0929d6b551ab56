package config

import (
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestValidateFailsOnPositiveStopLoss(t *testing.T) {
	cfg := Default()
	cfg.Risk.StopLossPct = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for positive StopLossPct")
	}
}

func TestValidateFailsOnBadLiquidateClock(t *testing.T) {
	cfg := Default()
	cfg.Risk.LiquidateAt = "25:99"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range liquidation time")
	}
}

func TestValidateFailsOnInvertedDriftBand(t *testing.T) {
	cfg := Default()
	cfg.Strategy.BasicFilter.Enabled = true
	cfg.Strategy.BasicFilter.DriftMinPct = 5
	cfg.Strategy.BasicFilter.DriftMaxPct = 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for inverted drift band")
	}
}

func TestValidateFailsOnTinyMomentumWindow(t *testing.T) {
	cfg := Default()
	cfg.Strategy.MomentumOpen.Enabled = true
	cfg.Strategy.MomentumOpen.MinBars = 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for a momentum window below 3 bars")
	}
}

func TestValidateFailsOnCooldownSpanningTicks(t *testing.T) {
	cfg := Default()
	cfg.Engine.SearchCooldown = cfg.Engine.TickInterval
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when the cooldown covers a whole tick")
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: "09:00", End: "09:30"}
	at := func(h, m int) time.Time {
		return time.Date(2026, 8, 28, h, m, 0, 0, time.UTC)
	}
	if !w.Contains(at(9, 0)) || !w.Contains(at(9, 30)) || !w.Contains(at(9, 15)) {
		t.Fatal("window should include its bounds and interior")
	}
	if w.Contains(at(8, 59)) || w.Contains(at(9, 31)) {
		t.Fatal("window should exclude times outside the range")
	}
	if (Window{}).Contains(at(9, 15)) {
		t.Fatal("zero window should contain nothing")
	}
}

func TestMaxMinBarsTracksEnabledStrategies(t *testing.T) {
	cfg := Default()
	cfg.Strategy.MomentumOpen.Enabled = true
	cfg.Strategy.MomentumOpen.MinBars = 25
	cfg.Strategy.Breakout.Enabled = true
	cfg.Strategy.Breakout.MinBars = 40
	if got := cfg.Strategy.MaxMinBars(); got != 40 {
		t.Fatalf("expected 40, got %d", got)
	}
	cfg.Strategy.Breakout.Enabled = false
	if got := cfg.Strategy.MaxMinBars(); got != 25 {
		t.Fatalf("expected 25 after disabling breakout, got %d", got)
	}
	cfg.Strategy.MomentumOpen.Enabled = false
	if got := cfg.Strategy.MaxMinBars(); got != 0 {
		t.Fatalf("expected 0 with nothing enabled, got %d", got)
	}
}
