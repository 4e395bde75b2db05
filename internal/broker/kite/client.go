package kite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sandyviper/kite-viper-bot/internal/journal"
	"github.com/sandyviper/kite-viper-bot/internal/logger"
	"github.com/sandyviper/kite-viper-bot/pkg/types"
)

// Client wraps the Kite Connect REST API. Read-only market data calls are
// retried with backoff; order mutations are sent exactly once.
type Client struct {
	baseURL string
	hc      *http.Client
	auth    *Auth
	retry   RetryConfig

	journal *journal.Journal
	log     *logger.Logger
}

func NewClient(auth *Auth) *Client {
	return &Client{
		baseURL: kiteAPIURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
		auth:    auth,
		retry:   DefaultRetryConfig(),
	}
}

// SetJournal makes the client record every placed order.
func (c *Client) SetJournal(j *journal.Journal) { c.journal = j }

// SetLogger attaches a session logger for order events.
func (c *Client) SetLogger(l *logger.Logger) { c.log = l }

// Auth exposes the underlying session manager.
func (c *Client) Auth() *Auth { return c.auth }

// Profile is the authenticated user's account profile.
type Profile struct {
	UserID    string   `json:"user_id"`
	UserName  string   `json:"user_name"`
	Email     string   `json:"email"`
	Broker    string   `json:"broker"`
	UserType  string   `json:"user_type"`
	Exchanges []string `json:"exchanges"`
}

// Position is one net position from the positions endpoint.
type Position struct {
	Symbol       string  `json:"tradingsymbol"`
	Exchange     string  `json:"exchange"`
	Product      string  `json:"product"`
	Quantity     int     `json:"quantity"`
	AveragePrice float64 `json:"average_price"`
	LastPrice    float64 `json:"last_price"`
	PnL          float64 `json:"pnl"`
}

// Holding is one long-term holding.
type Holding struct {
	Symbol       string  `json:"tradingsymbol"`
	Exchange     string  `json:"exchange"`
	ISIN         string  `json:"isin"`
	Quantity     int     `json:"quantity"`
	AveragePrice float64 `json:"average_price"`
	LastPrice    float64 `json:"last_price"`
	PnL          float64 `json:"pnl"`
}

// OrderParams describes an order to place.
type OrderParams struct {
	Symbol          string
	Exchange        string // NSE, NFO, BSE, ...
	TransactionType string // BUY or SELL
	OrderType       string // MARKET, LIMIT, SL, SL-M
	Product         string // MIS, NRML, CNC
	Validity        string // DAY, IOC
	Quantity        int
	Price           float64
	TriggerPrice    float64
	Strategy        string // journal tag only, not sent to the API
}

// Order is one entry from the order book.
type Order struct {
	OrderID         string  `json:"order_id"`
	Symbol          string  `json:"tradingsymbol"`
	Status          string  `json:"status"`
	TransactionType string  `json:"transaction_type"`
	Quantity        int     `json:"quantity"`
	FilledQuantity  int     `json:"filled_quantity"`
	AveragePrice    float64 `json:"average_price"`
	StatusMessage   string  `json:"status_message"`
}

// do performs one authenticated request and decodes the data field of the
// response envelope into out.
func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	if !c.auth.HasToken() {
		return ErrNotAuthenticated
	}

	var body *strings.Reader
	reqURL := c.baseURL + path
	switch method {
	case http.MethodGet, http.MethodDelete:
		if form != nil {
			reqURL += "?" + form.Encode()
		}
		body = strings.NewReader("")
	default:
		if form == nil {
			form = url.Values{}
		}
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return err
	}
	c.auth.setHeaders(req)
	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &APIError{ErrorType: ErrTypeNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	var envelope struct {
		Status    string          `json:"status"`
		Message   string          `json:"message"`
		ErrorType string          `json:"error_type"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response for %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK || envelope.Status != "success" {
		return &APIError{Status: resp.StatusCode, ErrorType: envelope.ErrorType, Message: envelope.Message}
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode data for %s: %w", path, err)
		}
	}
	return nil
}

// doRetry wraps do with the retry policy; used for idempotent reads.
func (c *Client) doRetry(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	return RetryWithConfig(ctx, func() error {
		return c.do(ctx, method, path, form, out)
	}, c.retry)
}

func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.doRetry(ctx, http.MethodGet, "/user/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetMargins returns the live balances available for new positions.
func (c *Client) GetMargins(ctx context.Context) (types.Margins, error) {
	var data struct {
		Equity struct {
			Available struct {
				LiveBalance float64 `json:"live_balance"`
			} `json:"available"`
		} `json:"equity"`
		Commodity struct {
			Available struct {
				LiveBalance float64 `json:"live_balance"`
			} `json:"available"`
		} `json:"commodity"`
	}
	if err := c.doRetry(ctx, http.MethodGet, "/user/margins", nil, &data); err != nil {
		return types.Margins{}, err
	}
	return types.Margins{
		EquityAvailable:    data.Equity.Available.LiveBalance,
		CommodityAvailable: data.Commodity.Available.LiveBalance,
	}, nil
}

func (c *Client) GetPositions(ctx context.Context) ([]Position, error) {
	var data struct {
		Net []Position `json:"net"`
	}
	if err := c.doRetry(ctx, http.MethodGet, "/portfolio/positions", nil, &data); err != nil {
		return nil, err
	}
	return data.Net, nil
}

func (c *Client) GetHoldings(ctx context.Context) ([]Holding, error) {
	var holdings []Holding
	if err := c.doRetry(ctx, http.MethodGet, "/portfolio/holdings", nil, &holdings); err != nil {
		return nil, err
	}
	return holdings, nil
}

func (c *Client) GetOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.doRetry(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// PlaceOrder submits a regular order and journals the attempt. Orders are
// never auto-retried: a timeout would risk a duplicate fill.
func (c *Client) PlaceOrder(ctx context.Context, p OrderParams) (string, error) {
	form := url.Values{}
	form.Set("tradingsymbol", p.Symbol)
	form.Set("exchange", p.Exchange)
	form.Set("transaction_type", p.TransactionType)
	form.Set("order_type", p.OrderType)
	form.Set("product", p.Product)
	form.Set("quantity", strconv.Itoa(p.Quantity))
	if p.Validity != "" {
		form.Set("validity", p.Validity)
	} else {
		form.Set("validity", "DAY")
	}
	if p.Price > 0 {
		form.Set("price", strconv.FormatFloat(p.Price, 'f', 2, 64))
	}
	if p.TriggerPrice > 0 {
		form.Set("trigger_price", strconv.FormatFloat(p.TriggerPrice, 'f', 2, 64))
	}

	var data struct {
		OrderID string `json:"order_id"`
	}
	err := c.do(ctx, http.MethodPost, "/orders/regular", form, &data)
	if err != nil {
		if c.log != nil {
			c.log.Error("order placement failed for %s: %v", p.Symbol, err)
		}
		return "", err
	}

	if c.log != nil {
		c.log.Trade("%s %d %s @ %.2f (order %s)", p.TransactionType, p.Quantity, p.Symbol, p.Price, data.OrderID)
	}
	if c.journal != nil {
		strategy := p.Strategy
		if strategy == "" {
			strategy = "manual"
		}
		if jerr := c.journal.Record(journal.TradeRecord{
			Symbol:   p.Symbol,
			Action:   p.TransactionType,
			Quantity: p.Quantity,
			Price:    p.Price,
			OrderID:  data.OrderID,
			Strategy: strategy,
			Status:   "PLACED",
		}); jerr != nil {
			return data.OrderID, fmt.Errorf("order %s placed but journaling failed: %w", data.OrderID, jerr)
		}
	}
	return data.OrderID, nil
}

// ModifyOrder updates a pending regular order.
func (c *Client) ModifyOrder(ctx context.Context, orderID string, changes url.Values) error {
	return c.do(ctx, http.MethodPut, "/orders/regular/"+orderID, changes, nil)
}

// CancelOrder cancels a pending order.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodDelete, "/orders/regular/"+orderID, nil, nil)
}

// GetLTP returns the last traded price per instrument. Instruments use the
// exchange:symbol form, e.g. "NSE:NIFTY 50".
func (c *Client) GetLTP(ctx context.Context, instruments ...string) (map[string]float64, error) {
	form := url.Values{}
	for _, i := range instruments {
		form.Add("i", i)
	}

	data := make(map[string]struct {
		LastPrice float64 `json:"last_price"`
	})
	if err := c.doRetry(ctx, http.MethodGet, "/quote/ltp", form, &data); err != nil {
		return nil, err
	}

	ltps := make(map[string]float64, len(data))
	for k, v := range data {
		ltps[k] = v.LastPrice
	}
	return ltps, nil
}

// GetQuote returns full quotes per instrument.
func (c *Client) GetQuote(ctx context.Context, instruments ...string) (map[string]types.Quote, error) {
	form := url.Values{}
	for _, i := range instruments {
		form.Add("i", i)
	}

	data := make(map[string]struct {
		LastPrice float64 `json:"last_price"`
		Volume    float64 `json:"volume"`
		OI        float64 `json:"oi"`
		OHLC      struct {
			Open  float64 `json:"open"`
			High  float64 `json:"high"`
			Low   float64 `json:"low"`
			Close float64 `json:"close"`
		} `json:"ohlc"`
	})
	if err := c.doRetry(ctx, http.MethodGet, "/quote", form, &data); err != nil {
		return nil, err
	}

	quotes := make(map[string]types.Quote, len(data))
	for k, v := range data {
		quotes[k] = types.Quote{
			Symbol:       k,
			LastPrice:    v.LastPrice,
			Open:         v.OHLC.Open,
			High:         v.OHLC.High,
			Low:          v.OHLC.Low,
			Close:        v.OHLC.Close,
			Volume:       v.Volume,
			OpenInterest: v.OI,
			Timestamp:    time.Now(),
		}
	}
	return quotes, nil
}

// GetHistorical returns candles for an instrument token. Interval is one
// of minute, 3minute, 5minute, day, ...
func (c *Client) GetHistorical(ctx context.Context, instrumentToken, interval string, from, to time.Time) ([]types.OHLCV, error) {
	form := url.Values{}
	form.Set("from", from.Format("2006-01-02 15:04:05"))
	form.Set("to", to.Format("2006-01-02 15:04:05"))

	var data struct {
		Candles [][]interface{} `json:"candles"`
	}
	path := "/instruments/historical/" + instrumentToken + "/" + interval
	if err := c.doRetry(ctx, http.MethodGet, path, form, &data); err != nil {
		return nil, err
	}

	candles := make([]types.OHLCV, 0, len(data.Candles))
	for _, raw := range data.Candles {
		candle, err := parseCandle(raw)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseCandle converts one [timestamp, o, h, l, c, volume] array.
func parseCandle(raw []interface{}) (types.OHLCV, error) {
	if len(raw) < 6 {
		return types.OHLCV{}, fmt.Errorf("malformed candle: %v", raw)
	}

	ts, ok := raw[0].(string)
	if !ok {
		return types.OHLCV{}, fmt.Errorf("malformed candle timestamp: %v", raw[0])
	}
	when, err := time.Parse("2006-01-02T15:04:05-0700", ts)
	if err != nil {
		if when, err = time.Parse(time.RFC3339, ts); err != nil {
			return types.OHLCV{}, fmt.Errorf("parse candle timestamp %q: %w", ts, err)
		}
	}

	nums := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		f, ok := raw[i].(float64)
		if !ok {
			return types.OHLCV{}, fmt.Errorf("malformed candle field %d: %v", i, raw[i])
		}
		nums[i-1] = f
	}

	return types.OHLCV{
		Timestamp: when,
		Open:      nums[0],
		High:      nums[1],
		Low:       nums[2],
		Close:     nums[3],
		Volume:    nums[4],
	}, nil
}
