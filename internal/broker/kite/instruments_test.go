package kite

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const instrumentsCSV = `instrument_token,exchange_token,tradingsymbol,name,last_price,expiry,strike,tick_size,lot_size,instrument_type,segment,exchange
256265,1001,NIFTY 50,NIFTY 50,0,,0,0.05,0,EQ,INDICES,NSE
12345602,48225,NIFTY24SEP22000CE,NIFTY,0,2024-09-26,22000,0.05,50,CE,NFO-OPT,NFO
12345858,48226,NIFTY24SEP22000PE,NIFTY,0,2024-09-26,22000,0.05,50,PE,NFO-OPT,NFO
13568258,53001,BANKNIFTY24SEPFUT,BANKNIFTY,0,2024-09-25,0,0.05,15,FUT,NFO-FUT,NFO
`

func TestParseInstrumentsCSV(t *testing.T) {
	instruments, err := parseInstrumentsCSV(strings.NewReader(instrumentsCSV))
	require.NoError(t, err)
	require.Len(t, instruments, 4)

	assert.Equal(t, uint32(256265), instruments[0].InstrumentToken)
	assert.Equal(t, "NIFTY 50", instruments[0].TradingSymbol)
	assert.Equal(t, "EQ", instruments[0].InstrumentType)

	ce := instruments[1]
	assert.Equal(t, "NIFTY24SEP22000CE", ce.TradingSymbol)
	assert.Equal(t, 22000.0, ce.Strike)
	assert.Equal(t, 50, ce.LotSize)
	assert.Equal(t, "2024-09-26", ce.Expiry)
}

func TestLotSizes(t *testing.T) {
	instruments, err := parseInstrumentsCSV(strings.NewReader(instrumentsCSV))
	require.NoError(t, err)

	lots := LotSizes(instruments)
	assert.Equal(t, 50, lots["NIFTY24SEP22000CE"])
	assert.Equal(t, 15, lots["BANKNIFTY24SEPFUT"])
	// Zero-lot index rows are skipped.
	_, ok := lots["NIFTY 50"]
	assert.False(t, ok)
}

func TestGetInstruments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/instruments/NFO", r.URL.Path)
		w.Write([]byte(instrumentsCSV))
	})

	instruments, err := c.GetInstruments(context.Background(), "NFO")
	require.NoError(t, err)
	assert.Len(t, instruments, 4)
}

func TestSearchInstruments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(instrumentsCSV))
	})

	matches, err := c.SearchInstruments(context.Background(), "banknifty", "NFO")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "BANKNIFTY24SEPFUT", matches[0].TradingSymbol)
}
