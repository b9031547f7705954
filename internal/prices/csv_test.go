package prices

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadCSVDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AAPL.csv", `date,open,high,low,close,volume
2024-06-03,100,102,99,101,500000
2024-06-04,101,104,100,103,600000
`)
	// No header, still accepted.
	writeFile(t, dir, "MSFT.csv", "2024-06-03,200,205,198,204,300000\n")
	// Non-CSV files are skipped.
	writeFile(t, dir, "notes.txt", "ignore me")

	provider, err := LoadCSVDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	end := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	bars, err := provider.History(context.Background(), "AAPL", end, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 AAPL bars, got %d", len(bars))
	}
	if bars[0].Close != 101 || bars[1].Volume != 600000 {
		t.Errorf("unexpected bar values: %+v", bars)
	}
	if bars[0].Symbol != "AAPL" {
		t.Errorf("symbol = %s, want AAPL from filename", bars[0].Symbol)
	}

	bars, err = provider.History(context.Background(), "MSFT", end, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 {
		t.Errorf("expected 1 MSFT bar, got %d", len(bars))
	}
}

func TestLoadCSVDir_BadRow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "BAD.csv", "2024-06-03,100,102,99,not-a-number,500000\n")

	if _, err := LoadCSVDir(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadCSVDir_MissingDir(t *testing.T) {
	if _, err := LoadCSVDir("/nonexistent/prices"); err == nil {
		t.Error("expected error for missing directory")
	}
}
