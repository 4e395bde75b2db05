package nse

import (
	"time"

	"github.com/tidwall/gjson"
)

// MarketStatus summarizes the exchange state.
type MarketStatus struct {
	Open         bool
	IsTradingDay bool
	Session      string
	CheckedAt    time.Time
}

// GetMarketStatus queries the exchange market state and combines it with
// the IST session calendar.
func (c *Client) GetMarketStatus() (MarketStatus, error) {
	now := Now()
	status := MarketStatus{
		IsTradingDay: IsTradingDay(now),
		Session:      SessionName(now),
		CheckedAt:    now,
	}

	body, err := c.get("/marketStatus")
	if err != nil {
		return status, err
	}
	status.Open = parseMarketOpen(body)
	return status, nil
}

// parseMarketOpen reports whether any segment in the marketState array is
// open. The capital market segment opens with the indices.
func parseMarketOpen(body []byte) bool {
	open := false
	gjson.GetBytes(body, "marketState").ForEach(func(_, market gjson.Result) bool {
		if market.Get("marketStatus").String() == "Open" {
			open = true
			return false
		}
		return true
	})
	return open
}

// GetIndexSpot returns the last traded value of an index, e.g.
// "NIFTY 50" or "NIFTY BANK".
func (c *Client) GetIndexSpot(index string) (float64, error) {
	body, err := c.get("/allIndices")
	if err != nil {
		return 0, err
	}
	return parseIndexSpot(body, index), nil
}

func parseIndexSpot(body []byte, index string) float64 {
	spot := 0.0
	gjson.GetBytes(body, "data").ForEach(func(_, row gjson.Result) bool {
		if row.Get("index").String() == index {
			spot = row.Get("last").Float()
			return false
		}
		return true
	})
	return spot
}

// GetIndiaVIX returns the current India VIX level.
func (c *Client) GetIndiaVIX() (float64, error) {
	body, err := c.get("/allIndices")
	if err != nil {
		return 0, err
	}
	return parseIndexSpot(body, "INDIA VIX"), nil
}
