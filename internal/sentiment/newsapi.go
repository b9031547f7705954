package sentiment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/marketlens/marketlens/internal/core"
	"github.com/tidwall/gjson"
)

const newsAPIEndpoint = "https://newsapi.org/v2/everything"

// NewsAPIClient fetches recent headlines from newsapi.org.
type NewsAPIClient struct {
	apiKey     string
	httpClient *http.Client
}

// NewNewsAPIClient creates a NewsAPI headline source.
func NewNewsAPIClient(apiKey string) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Headlines queries NewsAPI for articles mentioning the symbol within the
// lookback window and returns their titles.
func (c *NewsAPIClient) Headlines(ctx context.Context, symbol string, until time.Time, lookback time.Duration) ([]string, error) {
	from := until.Add(-lookback)

	q := url.Values{}
	q.Set("q", symbol)
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", until.Format("2006-01-02"))
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsAPIEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrExternalDataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrExternalDataUnavailable,
			fmt.Errorf("newsapi returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.WrapError(core.ErrExternalDataUnavailable, err)
	}

	if status := gjson.GetBytes(body, "status").String(); status != "ok" {
		return nil, core.WrapError(core.ErrExternalDataUnavailable,
			fmt.Errorf("newsapi status %q: %s", status, gjson.GetBytes(body, "message").String()))
	}

	var headlines []string
	gjson.GetBytes(body, "articles.#.title").ForEach(func(_, title gjson.Result) bool {
		if t := title.String(); t != "" {
			headlines = append(headlines, t)
		}
		return true
	})

	return headlines, nil
}
