package signalgen

import (
	"fmt"

	"github.com/marketlens/marketlens/internal/core"
)

// buildRationale assembles the structured explanation for a signal from the
// component scores and the raw indicators. Purely descriptive.
func buildRationale(b core.ScoreBreakdown, snap core.IndicatorSnapshot) core.Rationale {
	var r core.Rationale

	if b.MAAlignment > 70 {
		r.Reasons = append(r.Reasons, core.Reason{
			Code:   core.ReasonMAAlignment,
			Detail: fmt.Sprintf("moving average stack aligned (%.0f/100)", b.MAAlignment),
		})
	}

	switch {
	case b.Supertrend > 80:
		r.Reasons = append(r.Reasons, core.Reason{
			Code:   core.ReasonSupertrendBullish,
			Detail: "SuperTrend in uptrend",
		})
	case b.Supertrend < 20:
		r.Reasons = append(r.Reasons, core.Reason{
			Code:   core.ReasonSupertrendBearish,
			Detail: "SuperTrend in downtrend",
		})
	}

	if b.RSI > 70 && snap.RSI14 != nil {
		r.TechnicalFactors = append(r.TechnicalFactors, core.Reason{
			Code:   core.ReasonRSIMomentum,
			Detail: fmt.Sprintf("RSI momentum at %.1f", *snap.RSI14),
		})
	}

	if b.Volume > 70 && snap.VolumeRatio != nil {
		r.TechnicalFactors = append(r.TechnicalFactors, core.Reason{
			Code:   core.ReasonVolumeConfirmation,
			Detail: fmt.Sprintf("volume %.1fx the 20-day average", *snap.VolumeRatio),
		})
	}

	switch {
	case b.Sentiment > 70:
		r.Reasons = append(r.Reasons, core.Reason{
			Code:   core.ReasonSentimentPositive,
			Detail: "positive news sentiment",
		})
	case b.Sentiment < 30:
		r.Reasons = append(r.Reasons, core.Reason{
			Code:   core.ReasonSentimentNegative,
			Detail: "negative news sentiment",
		})
	}

	if snap.RSI14 != nil {
		switch {
		case *snap.RSI14 > 75:
			r.RiskFactors = append(r.RiskFactors, core.Reason{
				Code:   core.ReasonRSIOverbought,
				Detail: fmt.Sprintf("RSI overbought at %.1f", *snap.RSI14),
			})
		case *snap.RSI14 < 25:
			r.RiskFactors = append(r.RiskFactors, core.Reason{
				Code:   core.ReasonRSIOversold,
				Detail: fmt.Sprintf("RSI oversold at %.1f", *snap.RSI14),
			})
		}
	}

	// ATR above 4% of price flags elevated volatility.
	if snap.ATR14 != nil && snap.Close > 0 && *snap.ATR14/snap.Close > 0.04 {
		r.RiskFactors = append(r.RiskFactors, core.Reason{
			Code:   core.ReasonHighVolatility,
			Detail: fmt.Sprintf("ATR is %.1f%% of price", *snap.ATR14/snap.Close*100),
		})
	}

	if b.SentimentDegraded {
		r.RiskFactors = append(r.RiskFactors, core.Reason{
			Code:   core.ReasonSentimentFallback,
			Detail: "sentiment provider unavailable, neutral substitute used",
		})
	}

	return r
}
