package sentiment

import (
	"context"
	"strings"
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

// Financial keyword lexicon for headline scoring.
var (
	positiveKeywords = []string{
		"profit", "growth", "increase", "strong", "bullish", "buy", "upgrade",
		"outperform", "exceed", "beat", "raise", "positive", "better",
		"expansion", "gain", "rise", "surge", "boost", "improve", "success",
		"breakthrough", "innovation", "dividend", "bonus", "acquisition",
		"merger", "partnership", "investment",
	}
	negativeKeywords = []string{
		"loss", "decline", "decrease", "weak", "bearish", "sell", "downgrade",
		"underperform", "miss", "fall", "drop", "negative", "worse",
		"contraction", "plunge", "crash", "deteriorate", "fail",
		"bankruptcy", "default", "layoff", "recession", "crisis",
		"scandal", "fraud", "investigation", "penalty", "fine", "lawsuit",
	}
)

// HeadlineSource yields recent news headlines for a symbol.
type HeadlineSource interface {
	Headlines(ctx context.Context, symbol string, until time.Time, lookback time.Duration) ([]string, error)
}

// StaticHeadlines is an in-memory headline source for tests and offline runs.
type StaticHeadlines struct {
	bySymbol map[string][]string
}

// NewStaticHeadlines creates a fixed headline source.
func NewStaticHeadlines(bySymbol map[string][]string) *StaticHeadlines {
	return &StaticHeadlines{bySymbol: bySymbol}
}

// Headlines returns the configured headlines for a symbol.
func (s *StaticHeadlines) Headlines(ctx context.Context, symbol string, until time.Time, lookback time.Duration) ([]string, error) {
	return s.bySymbol[symbol], nil
}

// LexiconProvider scores headlines against the financial keyword lexicon.
// It is the default, network-free provider.
type LexiconProvider struct {
	source   HeadlineSource
	lookback time.Duration
}

// NewLexiconProvider creates a lexicon-based sentiment provider.
func NewLexiconProvider(source HeadlineSource, lookback time.Duration) *LexiconProvider {
	return &LexiconProvider{source: source, lookback: lookback}
}

func (p *LexiconProvider) Name() string { return "lexicon" }

// Score averages the per-headline lexicon score. With no headlines the
// score is neutral zero (not an error: no news is not a failure).
func (p *LexiconProvider) Score(ctx context.Context, symbol string, date time.Time) (float64, error) {
	headlines, err := p.source.Headlines(ctx, symbol, date, p.lookback)
	if err != nil {
		return 0, core.WrapError(core.ErrSentimentUnavailable, err)
	}
	if len(headlines) == 0 {
		return 0, nil
	}

	var total float64
	for _, h := range headlines {
		total += ScoreText(h)
	}
	return clamp(total / float64(len(headlines))), nil
}

// ScoreText scores one piece of text in [-1, 1] by keyword balance,
// normalized by word count.
func ScoreText(text string) float64 {
	lower := strings.ToLower(text)
	words := len(strings.Fields(lower))
	if words == 0 {
		return 0
	}

	var pos, neg int
	for _, kw := range positiveKeywords {
		if strings.Contains(lower, kw) {
			pos++
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			neg++
		}
	}

	// Scale by a small factor so a single strong keyword in a short
	// headline registers clearly.
	score := float64(pos-neg) * 4 / float64(words)
	return clamp(score)
}
