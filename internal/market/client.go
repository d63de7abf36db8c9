// Package market combines a gold spot price with a forex rate into per-unit
// prices in a target currency, and serves a clamped historical gold series.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GramsPerTroyOunce converts the quoted troy-ounce price to grams.
const GramsPerTroyOunce = 31.1035

// Day-range bounds for the historical series.
const (
	// MinHistoryDays is the smallest allowed history window.
	MinHistoryDays = 7
	// MaxHistoryDays is the largest allowed history window.
	MaxHistoryDays = 30
)

// Errors surfaced to the user.
var (
	// ErrConnection means an upstream could not be reached.
	ErrConnection = errors.New("market: connection failed")
	// ErrMarketData means an upstream response was malformed or incomplete.
	ErrMarketData = errors.New("market: bad market data")
	// ErrUnsupportedCurrency means the forex source has no rate for the code.
	ErrUnsupportedCurrency = errors.New("market: unsupported currency")
	// ErrNoData means the historical source returned an empty series.
	ErrNoData = errors.New("market: no historical data available")
)

// Snapshot is the combined gold/forex result for one currency.
type Snapshot struct {
	Currency      string
	Rate          float64 // USD to target currency.
	OunceUSD      float64 // Spot price per troy ounce in USD.
	OuncePrice    float64 // Per troy ounce in target currency.
	GramPrice     float64 // Per gram in target currency.
	KilogramPrice float64 // Per kilogram in target currency.
}

// History is a day-aligned label/price series.
type History struct {
	Labels []string  `json:"labels"`
	Prices []float64 `json:"prices"`
}

// Client calls the gold, forex, and history endpoints.
type Client struct {
	httpClient      *http.Client
	goldURL         string
	forexURL        string
	historyURL      string
	defaultCurrency string
}

// NewClient builds a market client with a bounded request timeout.
func NewClient(goldURL, forexURL, historyURL, defaultCurrency string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(defaultCurrency) == "" {
		defaultCurrency = "AED"
	}
	return &Client{
		httpClient:      &http.Client{Timeout: timeout},
		goldURL:         goldURL,
		forexURL:        forexURL,
		historyURL:      historyURL,
		defaultCurrency: strings.ToUpper(defaultCurrency),
	}
}

// DefaultCurrency returns the currency used when the form leaves it blank.
func (c *Client) DefaultCurrency() string { return c.defaultCurrency }

// goldResponse maps the spot-price payload.
type goldResponse struct {
	Price *float64 `json:"price"`
}

// forexResponse maps the exchange-rate payload.
type forexResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Snapshot fetches the gold spot price and the USD rate for the currency,
// then derives per-ounce, per-gram, and per-kilogram prices.
func (c *Client) Snapshot(ctx context.Context, currency string) (Snapshot, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = c.defaultCurrency
	}

	var gold goldResponse
	if err := c.getJSON(ctx, c.goldURL, &gold); err != nil {
		return Snapshot{}, err
	}
	if gold.Price == nil || *gold.Price <= 0 {
		return Snapshot{}, ErrMarketData
	}

	var forex forexResponse
	if err := c.getJSON(ctx, c.forexURL, &forex); err != nil {
		return Snapshot{}, err
	}
	if len(forex.Rates) == 0 {
		return Snapshot{}, ErrMarketData
	}
	rate, ok := forex.Rates[code]
	if !ok || rate <= 0 {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}

	ounce := *gold.Price * rate
	gram := ounce / GramsPerTroyOunce
	return Snapshot{
		Currency:      code,
		Rate:          rate,
		OunceUSD:      *gold.Price,
		OuncePrice:    ounce,
		GramPrice:     gram,
		KilogramPrice: gram * 1000,
	}, nil
}

// ClampDays forces a requested day range into [MinHistoryDays, MaxHistoryDays].
func ClampDays(days int) int {
	if days < MinHistoryDays {
		return MinHistoryDays
	}
	if days > MaxHistoryDays {
		return MaxHistoryDays
	}
	return days
}

// historyResponse maps the time-series payload: [timestamp_ms, price] pairs.
type historyResponse struct {
	Prices [][2]float64 `json:"prices"`
}

// History fetches the gold price series and trims it to the last `days`
// daily points. Days outside [7,30] are clamped before the upstream call.
func (c *Client) History(ctx context.Context, days int) (History, error) {
	days = ClampDays(days)

	url := fmt.Sprintf("%s?vs_currency=usd&days=%d", c.historyURL, days)
	var raw historyResponse
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return History{}, err
	}
	if len(raw.Prices) == 0 {
		return History{}, ErrNoData
	}

	// The source may return intraday samples; keep the last sample per day.
	labels := make([]string, 0, days)
	prices := make([]float64, 0, days)
	lastDay := ""
	for _, point := range raw.Prices {
		ts := time.UnixMilli(int64(point[0])).UTC()
		day := ts.Format("2006-01-02")
		if day == lastDay {
			labels[len(labels)-1] = ts.Format("Jan 02")
			prices[len(prices)-1] = point[1]
			continue
		}
		lastDay = day
		labels = append(labels, ts.Format("Jan 02"))
		prices = append(prices, point[1])
	}

	// Trim to exactly the requested window.
	if len(labels) > days {
		labels = labels[len(labels)-days:]
		prices = prices[len(prices)-days:]
	}
	return History{Labels: labels, Prices: prices}, nil
}

// getJSON performs a GET and decodes the JSON body into out. Transport
// failures map to ErrConnection, malformed bodies to ErrMarketData.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if errReq != nil {
		return fmt.Errorf("market: build request: %w", errReq)
	}
	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return fmt.Errorf("%w: %v", ErrConnection, errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrMarketData, resp.StatusCode)
	}
	if errDecode := json.NewDecoder(resp.Body).Decode(out); errDecode != nil {
		return fmt.Errorf("%w: %v", ErrMarketData, errDecode)
	}
	return nil
}
