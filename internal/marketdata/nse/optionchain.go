package nse

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// StrikeSnap is the open interest and volume at one strike for one side
// of the chain.
type StrikeSnap struct {
	Strike    int
	Side      string // CE or PE
	OI        float64
	Volume    float64
	LastPrice float64
}

// Snapshot is a band of the option chain around the at-the-money strike
// for the nearest expiry.
type Snapshot struct {
	Symbol  string
	Spot    float64
	ATM     int
	Step    int
	Expiry  string
	Strikes []StrikeSnap
}

var indexSymbols = map[string]bool{
	"NIFTY":      true,
	"BANKNIFTY":  true,
	"FINNIFTY":   true,
	"MIDCPNIFTY": true,
}

// StrikeStep returns the strike spacing for a symbol.
func StrikeStep(symbol string) int {
	switch strings.ToUpper(symbol) {
	case "BANKNIFTY":
		return 100
	case "MIDCPNIFTY":
		return 25
	default:
		return 50
	}
}

func nearestStep(price float64, step int) int {
	if step <= 0 {
		return int(price)
	}
	return int(math.Round(price/float64(step))) * step
}

// GetSnapshot builds an option chain snapshot for the nearest expiry,
// keeping strikes within bandPoints steps of the at-the-money strike.
func (c *Client) GetSnapshot(symbol string, bandPoints int) (*Snapshot, error) {
	symbol = strings.ToUpper(symbol)

	endpoint := "/option-chain-equities?symbol=" + url.QueryEscape(symbol)
	if indexSymbols[symbol] {
		endpoint = "/option-chain-indices?symbol=" + url.QueryEscape(symbol)
	}

	body, err := c.get(endpoint)
	if err != nil {
		return nil, err
	}
	return parseSnapshot(body, symbol, bandPoints)
}

// parseSnapshot extracts the near-expiry band from an option chain
// response. Rows live under records.data, one per strike per expiry,
// with CE and PE legs as nested objects.
func parseSnapshot(body []byte, symbol string, bandPoints int) (*Snapshot, error) {
	records := gjson.GetBytes(body, "records")
	if !records.Exists() {
		return nil, fmt.Errorf("option chain for %s: no records", symbol)
	}

	step := StrikeStep(symbol)
	snap := &Snapshot{
		Symbol: symbol,
		Spot:   records.Get("underlyingValue").Float(),
		Step:   step,
	}
	if snap.Spot > 0 {
		snap.ATM = nearestStep(snap.Spot, step)
	}
	snap.Expiry = records.Get("expiryDates.0").String()

	records.Get("data").ForEach(func(_, row gjson.Result) bool {
		if snap.Expiry != "" && row.Get("expiryDate").String() != snap.Expiry {
			return true
		}
		strike := int(row.Get("strikePrice").Int())
		if snap.ATM > 0 && abs(strike-snap.ATM) > bandPoints*step {
			return true
		}
		for _, side := range []string{"CE", "PE"} {
			leg := row.Get(side)
			if !leg.Exists() {
				continue
			}
			snap.Strikes = append(snap.Strikes, StrikeSnap{
				Strike:    strike,
				Side:      side,
				OI:        leg.Get("openInterest").Float(),
				Volume:    leg.Get("totalTradedVolume").Float(),
				LastPrice: leg.Get("lastPrice").Float(),
			})
		}
		return true
	})

	return snap, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
