package marketdata

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/guttosm/stockcast/internal/domain/models"
)

// YahooFetcher implements Fetcher against the Yahoo Finance chart API.
type YahooFetcher struct {
	client    *resty.Client
	limiter   *rate.Limiter
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a fetcher for the Yahoo chart API.
//
// Parameters:
//   - baseURL (string): chart endpoint, e.g. "https://query1.finance.yahoo.com/v8/finance/chart".
//   - timeout (time.Duration): HTTP client timeout per request.
//   - ratePerSec (float64): outbound requests per second; <= 0 disables rate limiting.
//
// Behavior:
//   - 404 and chart-level errors map to ErrNoData (not retried).
//   - Other non-2xx statuses and transport errors are transient.
func NewYahooFetcher(baseURL string, timeout time.Duration, ratePerSec float64) *YahooFetcher {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		})

	limit := rate.Inf
	burst := 1
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
		burst = int(math.Max(1, math.Ceil(ratePerSec)))
	}

	return &YahooFetcher{
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int    `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchPriceSeries downloads daily bars for ticker over period.
func (f *YahooFetcher) FetchPriceSeries(ctx context.Context, ticker, period string) (*models.PriceSeries, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("yahoo rate limit: %w", err)
	}

	var chart, errBody yahooChart
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"range":    period,
			"interval": "1d",
		}).
		SetResult(&chart).
		SetError(&errBody).
		Get("/" + url.PathEscape(f.yahooSymbol(ticker)))
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", ticker, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("yahoo: status %d for %s", resp.StatusCode(), ticker)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrNoData, ticker, chart.Chart.Error.Description)
	}

	bars := parseChart(&chart)
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}
	return &models.PriceSeries{Ticker: ticker, Bars: bars}, nil
}

// parseChart converts the first chart result into ascending, de-duplicated
// daily bars. Bars without a close are skipped; when two timestamps fall on
// the same exchange-local date the later one wins.
func parseChart(chart *yahooChart) []models.PriceBar {
	if len(chart.Chart.Result) == 0 {
		return nil
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]
	loc := time.FixedZone("exchange", result.Meta.GMTOffset)

	byDate := make(map[time.Time]models.PriceBar, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c <= 0 {
			continue
		}
		local := time.Unix(ts, 0).In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		byDate[day] = models.PriceBar{
			Date:   day,
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  c,
			Volume: at(quote.Volume, i),
		}
	}

	bars := make([]models.PriceBar, 0, len(byDate))
	for _, b := range byDate {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars
}

func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}
