package kite

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sandyviper/kite-viper-bot/pkg/types"
)

const tickerURL = "wss://ws.kite.trade"

// Ticker streams live prices from the Kite market websocket. Ticks arrive
// as binary packets; price fields are quoted in paise.
type Ticker struct {
	auth  *Auth
	url   string
	ticks chan types.Tick

	mu      sync.Mutex
	conn    *websocket.Conn
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewTicker(auth *Auth) *Ticker {
	return &Ticker{
		auth:  auth,
		url:   tickerURL,
		ticks: make(chan types.Tick, 256),
	}
}

// Ticks is the stream of parsed price updates. Closed when the ticker
// stops.
func (t *Ticker) Ticks() <-chan types.Tick {
	return t.ticks
}

// Connect dials the websocket and starts the read and keepalive loops.
func (t *Ticker) Connect(ctx context.Context) error {
	if !t.auth.HasToken() {
		return ErrNotAuthenticated
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}

	url := fmt.Sprintf("%s?api_key=%s&access_token=%s", t.url, t.auth.APIKey(), t.auth.AccessToken())
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial market websocket: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	t.conn = conn
	t.cancel = cancel
	t.done = make(chan struct{})
	t.running = true

	go t.readLoop()
	go t.pingLoop(ctx)
	return nil
}

// Subscribe registers instrument tokens for LTP-mode streaming.
func (t *Ticker) Subscribe(tokens ...uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return fmt.Errorf("ticker not connected")
	}

	for _, msg := range []map[string]interface{}{
		{"a": "subscribe", "v": tokens},
		{"a": "mode", "v": []interface{}{"ltp", tokens}},
	} {
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return fmt.Errorf("send subscribe: %w", err)
		}
	}
	return nil
}

// Close stops the loops and closes the tick channel.
func (t *Ticker) Close() error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	t.running = false
	cancel, conn, done := t.cancel, t.conn, t.done
	t.conn = nil
	t.mu.Unlock()

	cancel()
	err := conn.Close()
	<-done
	return err
}

func (t *Ticker) readLoop() {
	defer close(t.done)
	defer close(t.ticks)

	for {
		msgType, data, err := t.readMessage()
		if err != nil {
			return
		}
		if msgType != websocket.BinaryMessage {
			// Text frames carry postbacks and error notices; the
			// streaming path only needs price packets.
			continue
		}
		for _, tick := range parseTicks(data) {
			select {
			case t.ticks <- tick:
			default:
				// Drop when the consumer lags; the next tick
				// supersedes this one anyway.
			}
		}
	}
}

func (t *Ticker) readMessage() (int, []byte, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return 0, nil, fmt.Errorf("ticker closed")
	}
	return conn.ReadMessage()
}

func (t *Ticker) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			conn := t.conn
			t.mu.Unlock()
			if conn == nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// parseTicks decodes one websocket frame. Layout: two bytes with the
// packet count, then per packet two bytes of length followed by the
// payload. Every mode starts with the instrument token and the last
// traded price in paise, which is all the bot consumes.
func parseTicks(data []byte) []types.Tick {
	if len(data) < 2 {
		return nil
	}

	count := int(binary.BigEndian.Uint16(data[:2]))
	offset := 2
	now := time.Now()

	ticks := make([]types.Tick, 0, count)
	for i := 0; i < count; i++ {
		if offset+2 > len(data) {
			break
		}
		length := int(binary.BigEndian.Uint16(data[offset : offset+2]))
		offset += 2

		if length < 8 || offset+length > len(data) {
			break
		}
		packet := data[offset : offset+length]
		offset += length

		ticks = append(ticks, types.Tick{
			InstrumentToken: binary.BigEndian.Uint32(packet[0:4]),
			LastPrice:       float64(int32(binary.BigEndian.Uint32(packet[4:8]))) / 100,
			Timestamp:       now,
		})
	}
	return ticks
}
