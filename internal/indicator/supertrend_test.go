package indicator

import (
	"testing"

	"github.com/marketlens/marketlens/internal/core"
)

func TestSupertrend_FlipsWithPrice(t *testing.T) {
	bars := []core.PriceBar{
		bar(102, 100, 101),
		bar(102, 100, 101),
		bar(102, 100, 101),
		// Strong rally crosses the upper band.
		bar(107, 105, 106),
		// Collapse back through the lower band.
		bar(96, 94, 95),
	}

	result := Supertrend(bars, 3, 1.0)
	if len(result) != 3 {
		t.Fatalf("expected 3 points, got %d", len(result))
	}

	if result[0].Direction != core.TrendDown {
		t.Errorf("seed direction = %s, want DOWN", result[0].Direction)
	}
	if result[1].Direction != core.TrendUp {
		t.Errorf("direction after rally = %s, want UP", result[1].Direction)
	}
	if result[2].Direction != core.TrendDown {
		t.Errorf("direction after collapse = %s, want DOWN", result[2].Direction)
	}
}

func TestSupertrend_ValueTracksActiveBand(t *testing.T) {
	bars := []core.PriceBar{
		bar(102, 100, 101),
		bar(102, 100, 101),
		bar(102, 100, 101),
		bar(107, 105, 106),
		bar(96, 94, 95),
	}

	for i, p := range Supertrend(bars, 3, 1.0) {
		want := p.Upper
		if p.Direction == core.TrendUp {
			want = p.Lower
		}
		if !almostEqual(p.Value, want) {
			t.Errorf("point %d: value %f does not track active band %f", i, p.Value, want)
		}
	}
}

func TestSupertrend_UpperBandRatchetsDownInDowntrend(t *testing.T) {
	// A steady decline keeps the direction DOWN; the final upper band must
	// never rise while price stays below it.
	bars := make([]core.PriceBar, 12)
	price := 100.0
	for i := range bars {
		bars[i] = bar(price+1, price-1, price)
		price -= 2
	}

	result := Supertrend(bars, 3, 2.0)
	for i := 1; i < len(result); i++ {
		if result[i].Direction != core.TrendDown {
			t.Fatalf("point %d: direction %s, want DOWN", i, result[i].Direction)
		}
		if result[i].Upper > result[i-1].Upper+1e-9 {
			t.Errorf("point %d: upper band rose %f -> %f", i, result[i-1].Upper, result[i].Upper)
		}
	}
}

func TestSupertrend_InsufficientData(t *testing.T) {
	bars := []core.PriceBar{bar(102, 100, 101)}
	if got := Supertrend(bars, 3, 1.0); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
