// Command kats runs the auto-trading engine against a brokerage
// bridge. Configuration comes from the environment (a local .env file
// is honored); sensible defaults cover everything but the endpoints
// and the account reference.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kstocklab/kats/brokerage"
	"github.com/kstocklab/kats/config"
	"github.com/kstocklab/kats/engine"
	"github.com/kstocklab/kats/executor"
	"github.com/kstocklab/kats/logger"
	"github.com/kstocklab/kats/marketdata"
	"github.com/kstocklab/kats/quote"
	"github.com/kstocklab/kats/risk"
	"github.com/kstocklab/kats/store"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.NewZapLogger()
	if err != nil {
		os.Exit(1)
	}

	cfg := config.Default()
	cfg.Engine.Account = os.Getenv("KATS_ACCOUNT")
	if v := os.Getenv("KATS_FIXED_AMOUNT"); v != "" {
		if amt, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.FixedAmount = amt
		}
	}
	if v := os.Getenv("KATS_CONDITION_IDS"); v != "" {
		cfg.Engine.ConditionIDs = parseIDs(v)
	}
	cfg.Strategy.MomentumOpen.Enabled = os.Getenv("KATS_DISABLE_MOMENTUM") == ""
	cfg.Strategy.Breakout.Enabled = os.Getenv("KATS_DISABLE_BREAKOUT") == ""
	cfg.Strategy.BasicFilter.Enabled = os.Getenv("KATS_ENABLE_BASIC_FILTER") != ""
	if err := cfg.Validate(); err != nil {
		log.Error("invalid_config", logger.Err(err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bridgeURL := getenv("KATS_BRIDGE_URL", "http://localhost:8700")
	client := brokerage.NewClient(bridgeURL, 10*time.Second)

	var counterStore store.Store = store.NewMemoryStore()
	if addr := os.Getenv("KATS_REDIS_ADDR"); addr != "" {
		counterStore = store.NewRedisStore(redis.NewClient(&redis.Options{Addr: addr}))
	}
	counters := risk.NewCounters(cfg.Risk, counterStore)
	if err := counters.Load(ctx); err != nil {
		log.Warn("counter_load_failed", logger.Err(err))
	}

	gateway := marketdata.NewGateway(client, marketdata.Config{
		BatchSize:      cfg.Engine.BatchSize,
		BatchDelay:     cfg.Engine.BatchDelay,
		SearchCooldown: cfg.Engine.SearchCooldown,
		RetryMax:       cfg.Engine.RetryMax,
		RetryBase:      cfg.Engine.RetryBase,
		MinBars:        cfg.Strategy.MaxMinBars(),
	}, log)

	var exec executor.Executor = client
	if os.Getenv("KATS_PAPER") != "" {
		exec = executor.NewPaperExecutor(cfg.Engine.FixedAmount * float64(cfg.Risk.MaxPositions))
	}

	eng := engine.New(cfg, client, gateway, exec, counters, log)

	if wsURL := os.Getenv("KATS_QUOTE_WS"); wsURL != "" {
		stream, err := quote.Dial(ctx, quote.Config{Endpoint: wsURL}, log)
		if err != nil {
			log.Error("quote_stream_dial_failed", logger.Err(err))
			os.Exit(1)
		}
		defer stream.Close()
		go eng.ConsumeQuotes(ctx, stream.Quotes)
	}

	go func() {
		addr := getenv("KATS_METRICS_ADDR", ":9108")
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Warn("metrics_listener_failed", logger.Err(err))
		}
	}()

	go func() {
		<-ctx.Done()
		eng.Stop()
	}()
	eng.Run(ctx)

	if err := counters.Flush(context.Background()); err != nil {
		log.Warn("counter_flush_failed", logger.Err(err))
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIDs(csv string) []int {
	var out []int
	start := 0
	for i := 0; i <= len(csv); i++ {
		if i == len(csv) || csv[i] == ',' {
			if id, err := strconv.Atoi(csv[start:i]); err == nil {
				out = append(out, id)
			}
			start = i + 1
		}
	}
	return out
}
