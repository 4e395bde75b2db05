package types

import "time"

type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Quote is a point-in-time snapshot for one tradable instrument as returned
// by the broker quote endpoints.
type Quote struct {
	Symbol       string
	LastPrice    float64
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	OpenInterest float64
	Timestamp    time.Time
}

// Tick is a streaming price update from the market websocket.
type Tick struct {
	InstrumentToken uint32
	LastPrice       float64
	Timestamp       time.Time
}

type Margins struct {
	EquityAvailable    float64
	CommodityAvailable float64
}

// Available returns the total live balance usable for new positions.
func (m Margins) Available() float64 {
	return m.EquityAvailable + m.CommodityAvailable
}
