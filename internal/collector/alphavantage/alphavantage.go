package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/newthinker/aurum/internal/collector"
	"github.com/newthinker/aurum/internal/core"
)

const (
	defaultBaseURL = "https://www.alphavantage.co/query"
	defaultTimeout = 15 * time.Second

	// Free tier allowance
	defaultRequestsPerMinute = 5
)

// validSymbol matches symbols like XAUUSD, IBM, BRK.B
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9]{1,12}(\.[A-Za-z]{1,4})?$`)

// AlphaVantage fetches daily closes from the TIME_SERIES_DAILY endpoint
type AlphaVantage struct {
	client     *http.Client
	config     collector.Config
	baseURL    string
	outputSize string
	limiter    *rate.Limiter
}

// New creates a new Alpha Vantage collector
func New() *AlphaVantage {
	return &AlphaVantage{
		client:     &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		outputSize: "compact",
		limiter:    newLimiter(defaultRequestsPerMinute),
	}
}

func (a *AlphaVantage) Name() string {
	return "alphavantage"
}

func (a *AlphaVantage) Init(cfg collector.Config) error {
	a.config = cfg
	if cfg.BaseURL != "" {
		a.baseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		a.client.Timeout = cfg.Timeout
	}
	a.limiter = newLimiter(cfg.RequestsPerMinute)
	a.outputSize = cfg.ExtraString("outputsize", a.outputSize)
	return nil
}

// newLimiter spaces requests evenly over a minute; rpm <= 0 means unlimited.
func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
}

// FetchHistory fetches the daily series of symbol, oldest first. Entries
// whose close is not a positive number are skipped.
func (a *AlphaVantage) FetchHistory(ctx context.Context, symbol string) ([]core.PriceBar, error) {
	if a.config.APIKey == "" {
		return nil, core.WrapError(core.ErrConfigMissing, errors.New("alphavantage api_key is not configured"))
	}
	if !validSymbol.MatchString(symbol) {
		return nil, fmt.Errorf("invalid symbol format: %q", symbol)
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", a.outputSize)
	params.Set("apikey", a.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if err := result.err(); err != nil {
		return nil, err
	}
	if len(result.TimeSeries) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no time series for %s", symbol))
	}

	return parseSeries(result.TimeSeries), nil
}

func parseSeries(series map[string]dailyEntry) []core.PriceBar {
	bars := make([]core.PriceBar, 0, len(series))
	for day, entry := range series {
		date, err := core.ParseDate(day)
		if err != nil {
			continue
		}
		closePrice, err := strconv.ParseFloat(entry.Close, 64)
		if err != nil {
			continue
		}
		bar := core.PriceBar{Date: date, Close: closePrice}
		if !bar.IsValid() {
			continue
		}
		bars = append(bars, bar)
	}
	return collector.SortBars(bars)
}

// Alpha Vantage API response types
type dailyResponse struct {
	ErrorMessage string                `json:"Error Message"`
	Note         string                `json:"Note"`
	Information  string                `json:"Information"`
	TimeSeries   map[string]dailyEntry `json:"Time Series (Daily)"`
}

// err reports the error payloads the API returns with HTTP 200.
func (r dailyResponse) err() error {
	switch {
	case r.ErrorMessage != "":
		return fmt.Errorf("alphavantage error: %s", r.ErrorMessage)
	case r.Note != "" && len(r.TimeSeries) == 0:
		return fmt.Errorf("alphavantage rate limited: %s", r.Note)
	case r.Information != "" && len(r.TimeSeries) == 0:
		return fmt.Errorf("alphavantage: %s", r.Information)
	}
	return nil
}

type dailyEntry struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}
