package logger_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kstocklab/kats/logger"
	"github.com/kstocklab/kats/testutils"
)

func TestMockLoggerRecordsInOrder(t *testing.T) {
	log := testutils.NewMockLogger()
	log.Info("first", logger.String("code", "005930"))
	log.Warn("second")
	log.Error("third", logger.Err(errors.New("boom")))

	msgs := log.Messages()
	if len(msgs) != 3 || msgs[0] != "first" || msgs[2] != "third" {
		t.Fatalf("unexpected messages: %v", msgs)
	}
	if got := log.LastMessage(); got != "third" {
		t.Fatalf("expected last message %q, got %q", "third", got)
	}
}

func TestFieldConstructorsMatchZap(t *testing.T) {
	cases := []struct {
		got  logger.Field
		want logger.Field
	}{
		{logger.String("k", "v"), zap.String("k", "v")},
		{logger.Int("n", 7), zap.Int("n", 7)},
		{logger.Int64("n", 7), zap.Int64("n", 7)},
		{logger.Float64("f", 1.5), zap.Float64("f", 1.5)},
	}
	for _, c := range cases {
		if !c.got.Equals(c.want) {
			t.Fatalf("field mismatch: %+v vs %+v", c.got, c.want)
		}
	}
}

func TestNewZapLoggerBuilds(t *testing.T) {
	log, err := logger.NewZapLogger()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	log.Info("startup probe", logger.Int("n", 1))
}

func TestNopLoggerDiscards(t *testing.T) {
	logger.NewNop().Error("ignored", logger.Err(errors.New("x")))
}
