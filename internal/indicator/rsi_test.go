package indicator

import "testing"

func TestRSI_AllGains(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	result := RSI(prices, 5)
	if len(result) != 3 {
		t.Fatalf("expected 3 values, got %d", len(result))
	}
	for i, v := range result {
		if v != 100 {
			t.Errorf("RSI[%d] = %f, want 100 for monotonic gains", i, v)
		}
	}
}

func TestRSI_Bounds(t *testing.T) {
	prices := []float64{44, 47, 45, 50, 43, 48, 46, 52, 41, 49, 47, 45, 50, 44, 48, 46}

	result := RSI(prices, 14)
	if len(result) != 2 {
		t.Fatalf("expected 2 values, got %d", len(result))
	}
	for i, v := range result {
		if v < 0 || v > 100 {
			t.Errorf("RSI[%d] = %f out of [0,100]", i, v)
		}
	}
}

func TestRSI_FallingSeriesBelowFifty(t *testing.T) {
	prices := []float64{100, 98, 96, 94, 92, 90, 88, 86}

	result := RSI(prices, 5)
	for i, v := range result {
		if v >= 50 {
			t.Errorf("RSI[%d] = %f, want < 50 for a falling series", i, v)
		}
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	// period+1 prices are needed for the first value.
	result := RSI([]float64{1, 2, 3}, 3)
	if len(result) != 0 {
		t.Errorf("expected empty result, got %v", result)
	}
}
