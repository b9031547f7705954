package logger

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func TestNew_Development(t *testing.T) {
	log, err := New(true)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if log == nil {
		t.Fatal("expected non-nil logger")
	}

	// Should not panic
	log.Info("test message")
}

func TestNew_Production(t *testing.T) {
	log, err := New(false)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestProductionTimestampsAreISO8601(t *testing.T) {
	cfg := buildConfig(false)

	enc := zapcore.NewJSONEncoder(cfg.EncoderConfig)
	buf, err := enc.EncodeEntry(zapcore.Entry{
		Time:    time.Date(2024, 6, 3, 15, 4, 5, 0, time.UTC),
		Message: "batch complete",
	}, nil)
	if err != nil {
		t.Fatalf("failed to encode entry: %v", err)
	}

	if !strings.Contains(buf.String(), "2024-06-03T15:04:05") {
		t.Errorf("production timestamps must be ISO 8601, got %s", buf.String())
	}
}

func TestMust(t *testing.T) {
	// Should not panic
	log := Must(true)
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
}
