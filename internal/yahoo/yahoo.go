package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
)

// DefaultBaseURL is the Yahoo Finance chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It implements the market data provider used to refresh holdings.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// ClientOption configures a FinanceClient.
type ClientOption func(*FinanceClient)

// WithBaseURL points the client at a different chart endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *FinanceClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *FinanceClient) {
		c.httpClient = client
	}
}

// NewFinanceClient creates a new Yahoo Finance client whose requests time out
// after timeout. A zero timeout means no limit.
func NewFinanceClient(timeout time.Duration, opts ...ClientOption) *FinanceClient {
	c := &FinanceClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
// Days with a null close are skipped. Dividends are sorted by date.
//
// The method performs validation to ensure:
//   - A result is present
//   - Close price data is present
//   - Data arrays have matching lengths
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no results returned")
	}
	result := yahooResult.Chart.Result[0]

	var indicators []Indicators
	if len(result.Timestamp) > 0 {
		if len(result.Indicators.Quote) == 0 {
			return PriceChart{}, fmt.Errorf("no close prices returned")
		}
		quote := result.Indicators.Quote[0]
		if len(quote.Close) != len(result.Timestamp) {
			return PriceChart{}, fmt.Errorf("mismatched data lengths")
		}

		for i, v := range result.Timestamp {
			if quote.Close[i] == nil {
				continue
			}
			indicators = append(indicators, Indicators{
				Date:       time.Unix(v, 0).UTC(),
				PriceOpen:  valueAt(quote.Open, i),
				PriceClose: *quote.Close[i],
				Volume:     valueAt(quote.Volume, i),
				PriceHigh:  valueAt(quote.High, i),
				PriceLow:   valueAt(quote.Low, i),
			})
		}
	}

	dividends := make([]Dividend, 0, len(result.Events.Dividends))
	for _, d := range result.Events.Dividends {
		dividends = append(dividends, Dividend{Date: time.Unix(d.Date, 0).UTC(), Amount: d.Amount})
	}
	slices.SortFunc(dividends, func(a, b Dividend) int {
		return a.Date.Compare(b.Date)
	})

	return PriceChart{
		Symbol:           result.Meta.Symbol,
		Currency:         result.Meta.Currency,
		ExchangeName:     result.Meta.ExchangeName,
		FullExchangeName: result.Meta.FullExchangeName,
		LongName:         result.Meta.LongName,
		Shortname:        result.Meta.Shortname,
		MarketPrice:      result.Meta.RegularMarketPrice,
		Indicators:       indicators,
		Dividends:        dividends,
	}, nil
}

func valueAt[T any](values []*T, i int) T {
	var zero T
	if i >= len(values) || values[i] == nil {
		return zero
	}
	return *values[i]
}

// GetIndicatorForDate searches for price data matching a specific date.
// The method performs date-only comparison by truncating both the target and
// indicator dates to midnight UTC, ignoring time components.
func (c PriceChart) GetIndicatorForDate(target time.Time) (Indicators, bool) {
	targetDay := target.UTC().Truncate(24 * time.Hour)
	for _, ind := range c.Indicators {
		if ind.Date.UTC().Truncate(24 * time.Hour).Equal(targetDay) {
			return ind, true
		}
	}
	return Indicators{}, false
}

// LatestPrice returns the most recent price: the market price from the chart
// metadata, or the last close when Yahoo omits it.
func (c PriceChart) LatestPrice() (float64, bool) {
	if c.MarketPrice > 0 {
		return c.MarketPrice, true
	}
	if len(c.Indicators) == 0 {
		return 0, false
	}
	return c.Indicators[len(c.Indicators)-1].PriceClose, true
}

// LatestDividend returns the most recent dividend per share, or 0 when none
// was paid in the chart range.
func (c PriceChart) LatestDividend() float64 {
	if len(c.Dividends) == 0 {
		return 0
	}
	return c.Dividends[len(c.Dividends)-1].Amount
}

// QueryChart fetches daily prices and dividend events for symbol over rng,
// e.g. "5d" or "1y".
func (c *FinanceClient) QueryChart(ctx context.Context, symbol, rng string) (Response, error) {
	endpoint := fmt.Sprintf("%s/%s?interval=1d&range=%s&events=div", c.baseURL, url.PathEscape(symbol), url.QueryEscape(rng))
	result, err := c.queryYahoo(ctx, endpoint)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	return result, nil
}

// MarketData fetches one year of chart data for symbol and returns its latest
// price and the most recent dividend paid in that year.
func (c *FinanceClient) MarketData(ctx context.Context, symbol string) (model.MarketData, error) {
	resp, err := c.QueryChart(ctx, symbol, "1y")
	if err != nil {
		return model.MarketData{}, err
	}
	chart, err := c.ParseChart(resp)
	if err != nil {
		return model.MarketData{}, fmt.Errorf("failed to parse chart for %s: %w", symbol, err)
	}
	price, ok := chart.LatestPrice()
	if !ok {
		return model.MarketData{}, fmt.Errorf("no price available for %s", symbol)
	}

	return model.MarketData{
		Symbol:       symbol,
		CurrentPrice: price,
		LastDividend: chart.LatestDividend(),
		FetchedAt:    time.Now().UTC(),
	}, nil
}

// CurrentPrice returns the latest price for symbol.
func (c *FinanceClient) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	resp, err := c.QueryChart(ctx, symbol, "5d")
	if err != nil {
		return 0, err
	}
	chart, err := c.ParseChart(resp)
	if err != nil {
		return 0, fmt.Errorf("failed to parse chart for %s: %w", symbol, err)
	}
	price, ok := chart.LatestPrice()
	if !ok {
		return 0, fmt.Errorf("no price available for %s", symbol)
	}
	return price, nil
}

// LastDividend returns the most recent dividend per share paid by symbol in
// the last year, or 0 when there was none.
func (c *FinanceClient) LastDividend(ctx context.Context, symbol string) (float64, error) {
	resp, err := c.QueryChart(ctx, symbol, "1y")
	if err != nil {
		return 0, err
	}
	chart, err := c.ParseChart(resp)
	if err != nil {
		return 0, fmt.Errorf("failed to parse chart for %s: %w", symbol, err)
	}
	return chart.LatestDividend(), nil
}

// queryYahoo executes a request against the chart API, reads the response and
// checks for API errors.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) queryYahoo(ctx context.Context, endpoint string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Response{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}
		return Response{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %s: %s", response.Chart.Error.Code, response.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	return response, nil
}
