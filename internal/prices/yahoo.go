package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

const yahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// validSymbol matches stock symbols like AAPL, MSFT, 600519.SH, 0700.HK.
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9]{1,10}(\.[A-Za-z]{1,4})?$`)

// YahooProvider fetches daily bars from the Yahoo Finance chart API.
type YahooProvider struct {
	client *http.Client
}

// NewYahooProvider creates a Yahoo Finance price provider.
func NewYahooProvider() *YahooProvider {
	return &YahooProvider{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// History fetches up to lookback daily bars ending at or before end.
func (y *YahooProvider) History(ctx context.Context, symbol string, end time.Time, lookback int) ([]core.PriceBar, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, core.WrapError(core.ErrSymbolNotFound, err)
	}
	if lookback < 1 {
		lookback = 1
	}

	// Calendar days overshoot trading days, so fetch a wider window and
	// trim below.
	start := end.AddDate(0, 0, -lookback*2)
	url := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d",
		yahooBaseURL, toYahooSymbol(symbol), start.Unix(), end.AddDate(0, 0, 1).Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrExternalDataUnavailable, err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrExternalDataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrExternalDataUnavailable,
			fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.WrapError(core.ErrExternalDataUnavailable, err)
	}
	if result.Chart.Error != nil {
		return nil, core.WrapError(core.ErrExternalDataUnavailable,
			fmt.Errorf("yahoo error: %s", result.Chart.Error.Description))
	}
	if len(result.Chart.Result) == 0 {
		return nil, core.ErrNoData
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, core.ErrNoData
	}
	quotes := r.Indicators.Quote[0]

	bars := make([]core.PriceBar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		// Yahoo marks holidays with null quote entries.
		if i >= len(quotes.Open) || quotes.Open[i] == nil {
			continue
		}
		date := time.Unix(int64(ts), 0).UTC()
		if date.After(end) {
			continue
		}
		var volume int64
		if quotes.Volume[i] != nil {
			volume = int64(*quotes.Volume[i])
		}
		bars = append(bars, core.PriceBar{
			Symbol: symbol,
			Date:   date,
			Open:   *quotes.Open[i],
			High:   *quotes.High[i],
			Low:    *quotes.Low[i],
			Close:  *quotes.Close[i],
			Volume: volume,
		})
	}

	if len(bars) == 0 {
		return nil, core.ErrNoData
	}
	if len(bars) > lookback {
		bars = bars[len(bars)-lookback:]
	}
	return bars, nil
}

func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// toYahooSymbol converts Shanghai suffixes to Yahoo's format.
func toYahooSymbol(symbol string) string {
	if strings.HasSuffix(symbol, ".SH") {
		return strings.TrimSuffix(symbol, ".SH") + ".SS"
	}
	return symbol
}

// Yahoo API response types.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int     `json:"volume"`
}
