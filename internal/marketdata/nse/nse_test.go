package nse

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const optionChainJSON = `{
	"records": {
		"expiryDates": ["28-Aug-2026", "04-Sep-2026"],
		"underlyingValue": 22012.4,
		"data": [
			{"strikePrice": 21900, "expiryDate": "28-Aug-2026",
			 "CE": {"openInterest": 100, "totalTradedVolume": 1000, "lastPrice": 180.5},
			 "PE": {"openInterest": 400, "totalTradedVolume": 2500, "lastPrice": 65.2}},
			{"strikePrice": 22000, "expiryDate": "28-Aug-2026",
			 "CE": {"openInterest": 300, "totalTradedVolume": 6000, "lastPrice": 120.0},
			 "PE": {"openInterest": 300, "totalTradedVolume": 5500, "lastPrice": 110.0}},
			{"strikePrice": 22100, "expiryDate": "28-Aug-2026",
			 "CE": {"openInterest": 200, "totalTradedVolume": 3000, "lastPrice": 72.3},
			 "PE": {"openInterest": 100, "totalTradedVolume": 800, "lastPrice": 170.1}},
			{"strikePrice": 22500, "expiryDate": "28-Aug-2026",
			 "CE": {"openInterest": 9000, "totalTradedVolume": 100, "lastPrice": 10.0}},
			{"strikePrice": 22000, "expiryDate": "04-Sep-2026",
			 "CE": {"openInterest": 7000, "totalTradedVolume": 100, "lastPrice": 160.0},
			 "PE": {"openInterest": 7000, "totalTradedVolume": 100, "lastPrice": 150.0}}
		]
	}
}`

func TestParseSnapshot(t *testing.T) {
	snap, err := parseSnapshot([]byte(optionChainJSON), "NIFTY", 5)
	require.NoError(t, err)

	assert.Equal(t, "NIFTY", snap.Symbol)
	assert.Equal(t, 22012.4, snap.Spot)
	assert.Equal(t, 22000, snap.ATM)
	assert.Equal(t, 50, snap.Step)
	assert.Equal(t, "28-Aug-2026", snap.Expiry)

	// Next-expiry rows and strikes beyond the band are dropped. The
	// 22500 strike sits 10 steps out with a 5 step band.
	require.Len(t, snap.Strikes, 6)
	for _, s := range snap.Strikes {
		assert.LessOrEqual(t, abs(s.Strike-snap.ATM), 250)
	}

	assert.Equal(t, StrikeSnap{Strike: 21900, Side: "CE", OI: 100, Volume: 1000, LastPrice: 180.5}, snap.Strikes[0])
	assert.Equal(t, StrikeSnap{Strike: 21900, Side: "PE", OI: 400, Volume: 2500, LastPrice: 65.2}, snap.Strikes[1])
}

func TestParseSnapshotNoRecords(t *testing.T) {
	_, err := parseSnapshot([]byte(`{"error":"blocked"}`), "NIFTY", 5)
	assert.Error(t, err)
}

func TestSnapshotAnalytics(t *testing.T) {
	snap, err := parseSnapshot([]byte(optionChainJSON), "NIFTY", 5)
	require.NoError(t, err)

	// Full band: PE 800 vs CE 600.
	assert.InDelta(t, 800.0/600.0, snap.PCR(5), 1e-9)

	// ATM only: 300 each side.
	assert.InDelta(t, 1.0, snap.PCR(0), 1e-9)

	ceSkew, peSkew := snap.Skew(5)
	assert.InDelta(t, 600.0/800.0, ceSkew, 1e-9)
	assert.InDelta(t, 800.0/600.0, peSkew, 1e-9)

	ceVel, peVel := snap.OIVelocity(0, 5)
	assert.InDelta(t, 300.0/600.0, ceVel, 1e-9)
	assert.InDelta(t, 300.0/800.0, peVel, 1e-9)
}

func TestSnapshotAnalyticsEmptySide(t *testing.T) {
	snap := &Snapshot{Symbol: "NIFTY", ATM: 22000, Step: 50, Strikes: []StrikeSnap{
		{Strike: 22000, Side: "PE", OI: 500},
	}}

	assert.Equal(t, 0.0, snap.PCR(1))
	ceSkew, peSkew := snap.Skew(1)
	assert.Equal(t, 0.0, ceSkew)
	assert.Equal(t, 0.0, peSkew)
}

func TestSupportive(t *testing.T) {
	// Heavy call OI at the money with a low put-call ratio favors
	// call entries.
	snap := &Snapshot{Symbol: "NIFTY", ATM: 22000, Step: 50, Strikes: []StrikeSnap{
		{Strike: 22000, Side: "CE", OI: 900},
		{Strike: 22100, Side: "CE", OI: 100},
		{Strike: 22000, Side: "PE", OI: 400},
		{Strike: 22100, Side: "PE", OI: 100},
	}}
	side, ok := snap.Supportive()
	assert.True(t, ok)
	assert.Equal(t, "CE", side)

	// Balanced chain supports nothing.
	balanced := &Snapshot{Symbol: "NIFTY", ATM: 22000, Step: 50, Strikes: []StrikeSnap{
		{Strike: 22000, Side: "CE", OI: 500},
		{Strike: 22000, Side: "PE", OI: 500},
	}}
	_, ok = balanced.Supportive()
	assert.False(t, ok)
}

func TestStrikeStep(t *testing.T) {
	assert.Equal(t, 50, StrikeStep("NIFTY"))
	assert.Equal(t, 100, StrikeStep("banknifty"))
	assert.Equal(t, 25, StrikeStep("MIDCPNIFTY"))
	assert.Equal(t, 50, StrikeStep("RELIANCE"))
}

func TestNearestStep(t *testing.T) {
	assert.Equal(t, 22000, nearestStep(22012.4, 50))
	assert.Equal(t, 22050, nearestStep(22030.0, 50))
	assert.Equal(t, 47300, nearestStep(47340.0, 100))
}

func TestSessionName(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"weekday open", time.Date(2026, 8, 26, 10, 30, 0, 0, IST), SessionMarket},
		{"open bell", time.Date(2026, 8, 26, 9, 15, 0, 0, IST), SessionMarket},
		{"closing bell", time.Date(2026, 8, 26, 15, 30, 0, 0, IST), SessionMarket},
		{"pre market", time.Date(2026, 8, 26, 9, 5, 0, 0, IST), SessionPreMarket},
		{"after close", time.Date(2026, 8, 26, 15, 31, 0, 0, IST), SessionPostMarket},
		{"early morning", time.Date(2026, 8, 26, 7, 0, 0, 0, IST), SessionPreOpen},
		{"saturday", time.Date(2026, 8, 29, 10, 30, 0, 0, IST), SessionWeekend},
		{"sunday", time.Date(2026, 8, 30, 10, 30, 0, 0, IST), SessionWeekend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SessionName(tt.t))
		})
	}
}

func TestIsMarketHoursConvertsZones(t *testing.T) {
	// 05:00 UTC is 10:30 IST, inside the session.
	assert.True(t, IsMarketHours(time.Date(2026, 8, 26, 5, 0, 0, 0, time.UTC)))
	// 11:00 UTC is 16:30 IST, after the close.
	assert.False(t, IsMarketHours(time.Date(2026, 8, 26, 11, 0, 0, 0, time.UTC)))
}

func TestParseMarketOpen(t *testing.T) {
	open := []byte(`{"marketState":[{"market":"Capital Market","marketStatus":"Open"},{"market":"Currency","marketStatus":"Closed"}]}`)
	closed := []byte(`{"marketState":[{"market":"Capital Market","marketStatus":"Closed"}]}`)

	assert.True(t, parseMarketOpen(open))
	assert.False(t, parseMarketOpen(closed))
	assert.False(t, parseMarketOpen([]byte(`{}`)))
}

func TestParseIndexSpot(t *testing.T) {
	body := []byte(`{"data":[{"index":"NIFTY 50","last":22012.4},{"index":"INDIA VIX","last":13.25}]}`)
	assert.Equal(t, 22012.4, parseIndexSpot(body, "NIFTY 50"))
	assert.Equal(t, 13.25, parseIndexSpot(body, "INDIA VIX"))
	assert.Equal(t, 0.0, parseIndexSpot(body, "NIFTY BANK"))
}

func TestGetSnapshotOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/option-chain-indices", r.URL.Path)
		require.Equal(t, "NIFTY", r.URL.Query().Get("symbol"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Write([]byte(optionChainJSON))
	}))
	defer srv.Close()

	c := NewClient()
	c.baseURL = srv.URL

	snap, err := c.GetSnapshot("nifty", 5)
	require.NoError(t, err)
	assert.Equal(t, 22000, snap.ATM)
}
