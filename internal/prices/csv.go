package prices

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

// LoadCSVDir builds a MemoryProvider from a directory of per-symbol CSV
// files named <SYMBOL>.csv with rows date,open,high,low,close,volume and an
// optional header.
func LoadCSVDir(dir string) (*MemoryProvider, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading price dir: %w", err)
	}

	provider := NewMemoryProvider()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		symbol := strings.TrimSuffix(entry.Name(), ".csv")
		bars, err := loadCSVFile(filepath.Join(dir, entry.Name()), symbol)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}
		if err := provider.RecordSeries(bars); err != nil {
			return nil, err
		}
	}
	return provider, nil
}

func loadCSVFile(path, symbol string) ([]core.PriceBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var bars []core.PriceBar
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("row %d: want 6 columns, got %d", i+1, len(row))
		}
		// Skip a header row.
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad date: %w", i+1, err)
		}

		vals := make([]float64, 4)
		for j := 1; j <= 4; j++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[j]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", i+1, j+1, err)
			}
			vals[j-1] = v
		}
		volume, err := strconv.ParseInt(strings.TrimSpace(row[5]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad volume: %w", i+1, err)
		}

		bars = append(bars, core.PriceBar{
			Symbol: symbol,
			Date:   date,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: volume,
		})
	}
	return bars, nil
}
