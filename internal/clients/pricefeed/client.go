// Package pricefeed provides the live quote stream client. It keeps a
// mutex-guarded cache of the latest price per subscribed ticker; the
// portfolio module consumes the cache to revalue positions between upstream
// refreshes. The feed is optional — when disabled, stored values stand.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

const (
	writeWait   = 10 * time.Second
	dialTimeout = 30 * time.Second

	baseReconnectDelay   = 5 * time.Second
	maxReconnectDelay    = 5 * time.Minute
	maxReconnectAttempts = 10

	// Quotes older than this are not served from the cache
	quoteStaleThreshold = 5 * time.Minute
)

// Quote is one cached price point.
type Quote struct {
	Ticker    string    `json:"ticker"`
	Price     float64   `json:"price"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Client streams live quotes over a WebSocket and caches the latest price
// per ticker. Reconnects with exponential backoff on connection loss.
type Client struct {
	url string

	mu         sync.RWMutex
	conn       *websocket.Conn
	connCtx    context.Context
	cancelFunc context.CancelFunc
	connected  bool
	stopped    bool

	stopChan chan struct{}

	// Subscription set, resent after every reconnect
	tickers []string

	cacheMu sync.RWMutex
	quotes  map[string]Quote

	log zerolog.Logger
}

// New creates a new price feed client
func New(url string, log zerolog.Logger) *Client {
	return &Client{
		url:      url,
		stopChan: make(chan struct{}),
		quotes:   make(map[string]Quote),
		log:      log.With().Str("client", "pricefeed").Logger(),
	}
}

// Start establishes the connection and begins the read loop. A failed
// initial dial is not fatal: the reconnect loop keeps trying in the
// background.
func (c *Client) Start() error {
	c.log.Info().Str("url", c.url).Msg("Starting price feed client")

	if err := c.connect(); err != nil {
		c.log.Warn().Err(err).Msg("Initial price feed connection failed, will retry in background")
		go c.reconnectLoop()
		return err
	}

	c.mu.RLock()
	ctx := c.connCtx
	c.mu.RUnlock()
	go c.readMessages(ctx)

	return nil
}

// Stop shuts the client down and closes the connection.
func (c *Client) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	c.mu.Unlock()

	close(c.stopChan)
	return c.disconnect()
}

// Subscribe replaces the subscription set and resends it when connected.
// Called on startup and after every portfolio refresh.
func (c *Client) Subscribe(tickers []string) error {
	c.mu.Lock()
	c.tickers = append([]string(nil), tickers...)
	conn := c.conn
	ctx := c.connCtx
	c.mu.Unlock()

	if conn == nil {
		// Not connected; the subscription is sent on the next connect
		return nil
	}

	return c.sendSubscription(ctx, conn)
}

// Quote returns the cached price for a ticker, if fresh enough.
func (c *Client) Quote(ticker string) (float64, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	quote, ok := c.quotes[ticker]
	if !ok || time.Since(quote.UpdatedAt) > quoteStaleThreshold {
		return 0, false
	}

	return quote.Price, true
}

// Quotes returns a copy of the cache for status reporting.
func (c *Client) Quotes() map[string]Quote {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	result := make(map[string]Quote, len(c.quotes))
	for ticker, quote := range c.quotes {
		result[ticker] = quote
	}
	return result
}

// IsConnected reports the connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dialCtx, dialCancel := context.WithTimeout(context.Background(), dialTimeout)
	defer dialCancel()

	conn, _, err := websocket.Dial(dialCtx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial price feed: %w", err)
	}

	connCtx, connCancel := context.WithCancel(context.Background())
	c.conn = conn
	c.connCtx = connCtx
	c.cancelFunc = connCancel
	c.connected = true

	if len(c.tickers) > 0 {
		if err := c.sendSubscription(connCtx, conn); err != nil {
			connCancel()
			conn.Close(websocket.StatusNormalClosure, "subscribe failed")
			c.conn = nil
			c.connCtx = nil
			c.cancelFunc = nil
			c.connected = false
			return fmt.Errorf("failed to subscribe: %w", err)
		}
	}

	c.log.Info().Int("tickers", len(c.tickers)).Msg("Price feed connected")
	return nil
}

func (c *Client) disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	if c.cancelFunc != nil {
		c.cancelFunc()
		c.cancelFunc = nil
	}

	err := c.conn.Close(websocket.StatusNormalClosure, "")
	c.conn = nil
	c.connCtx = nil
	c.connected = false

	if err != nil {
		return fmt.Errorf("error closing price feed connection: %w", err)
	}
	return nil
}

// sendSubscription sends the quote subscription message:
// ["quotes", ["AAPL", ...]]
func (c *Client) sendSubscription(ctx context.Context, conn *websocket.Conn) error {
	msg := []interface{}{"quotes", c.tickers}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("failed to send subscription: %w", err)
	}

	return nil
}

func (c *Client) readMessages(ctx context.Context) {
	defer func() {
		c.mu.RLock()
		stopped := c.stopped
		c.mu.RUnlock()
		if !stopped {
			go c.reconnectLoop()
		}
	}()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ctx.Done():
			return
		default:
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn == nil {
			return
		}

		msgType, message, err := conn.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				c.log.Info().Int("status", int(closeStatus)).Msg("Price feed closed normally")
			} else if ctx.Err() == nil {
				c.log.Error().Err(err).Msg("Price feed read error")
			}
			return
		}

		if msgType != websocket.MessageText {
			continue
		}

		if err := c.handleMessage(message); err != nil {
			c.log.Warn().Err(err).Msg("Failed to handle price feed message")
			// Keep reading despite parse errors
		}
	}
}

// handleMessage parses a quote update: ["quotes", {"ticker": ..., "price": ...}]
func (c *Client) handleMessage(message []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(message, &raw); err != nil {
		return fmt.Errorf("failed to parse message array: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("message array too short: expected 2 elements, got %d", len(raw))
	}

	var channel string
	if err := json.Unmarshal(raw[0], &channel); err != nil {
		return fmt.Errorf("failed to parse channel: %w", err)
	}
	if channel != "quotes" {
		return nil
	}

	var update struct {
		Ticker string  `json:"ticker"`
		Price  float64 `json:"price"`
	}
	if err := json.Unmarshal(raw[1], &update); err != nil {
		return fmt.Errorf("failed to parse quote update: %w", err)
	}

	if update.Ticker == "" || update.Price <= 0 {
		return fmt.Errorf("quote update missing ticker or price")
	}

	c.cacheMu.Lock()
	c.quotes[update.Ticker] = Quote{
		Ticker:    update.Ticker,
		Price:     update.Price,
		UpdatedAt: time.Now().UTC(),
	}
	c.cacheMu.Unlock()

	return nil
}

// reconnectLoop retries the connection with exponential backoff.
func (c *Client) reconnectLoop() {
	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		select {
		case <-c.stopChan:
			return
		case <-time.After(c.backoff(attempt)):
		}

		c.log.Info().Int("attempt", attempt).Msg("Reconnecting price feed")

		if err := c.connect(); err != nil {
			c.log.Warn().Err(err).Int("attempt", attempt).Msg("Price feed reconnect failed")
			continue
		}

		c.mu.RLock()
		ctx := c.connCtx
		c.mu.RUnlock()
		go c.readMessages(ctx)
		return
	}

	c.log.Error().
		Int("attempts", maxReconnectAttempts).
		Msg("Price feed reconnect attempts exhausted, quotes will go stale")
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(baseReconnectDelay) * math.Pow(2, float64(attempt-1)))
	if delay > maxReconnectDelay {
		delay = maxReconnectDelay
	}
	return delay
}
