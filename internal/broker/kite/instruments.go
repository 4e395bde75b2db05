package kite

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Instrument is one row of the exchange instrument dump.
type Instrument struct {
	InstrumentToken uint32
	ExchangeToken   uint32
	TradingSymbol   string
	Name            string
	Expiry          string
	Strike          float64
	TickSize        float64
	LotSize         int
	InstrumentType  string // EQ, FUT, CE, PE
	Segment         string
	Exchange        string
}

// GetInstruments downloads and parses the instrument dump. The endpoint
// returns gzip-friendly CSV rather than the usual JSON envelope. Pass an
// empty exchange for the full dump.
func (c *Client) GetInstruments(ctx context.Context, exchange string) ([]Instrument, error) {
	if !c.auth.HasToken() {
		return nil, ErrNotAuthenticated
	}

	path := "/instruments"
	if exchange != "" {
		path += "/" + exchange
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.auth.setHeaders(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &APIError{ErrorType: ErrTypeNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Message: "instrument dump failed"}
	}
	return parseInstrumentsCSV(resp.Body)
}

// SearchInstruments filters the dump by a case-insensitive substring of
// the trading symbol.
func (c *Client) SearchInstruments(ctx context.Context, query, exchange string) ([]Instrument, error) {
	instruments, err := c.GetInstruments(ctx, exchange)
	if err != nil {
		return nil, err
	}

	query = strings.ToUpper(query)
	var matched []Instrument
	for _, inst := range instruments {
		if strings.Contains(strings.ToUpper(inst.TradingSymbol), query) {
			matched = append(matched, inst)
		}
	}
	return matched, nil
}

// LotSizes extracts a symbol -> lot size map from the dump, usable as
// risk-parameter overrides for derivative underlyings.
func LotSizes(instruments []Instrument) map[string]int {
	lots := make(map[string]int)
	for _, inst := range instruments {
		if inst.LotSize > 0 {
			lots[inst.TradingSymbol] = inst.LotSize
		}
	}
	return lots
}

func parseInstrumentsCSV(r io.Reader) ([]Instrument, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read instrument header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var instruments []Instrument
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read instrument row: %w", err)
		}

		token, _ := strconv.ParseUint(field(row, "instrument_token"), 10, 32)
		exToken, _ := strconv.ParseUint(field(row, "exchange_token"), 10, 32)
		strike, _ := strconv.ParseFloat(field(row, "strike"), 64)
		tick, _ := strconv.ParseFloat(field(row, "tick_size"), 64)
		lot, _ := strconv.Atoi(field(row, "lot_size"))

		instruments = append(instruments, Instrument{
			InstrumentToken: uint32(token),
			ExchangeToken:   uint32(exToken),
			TradingSymbol:   field(row, "tradingsymbol"),
			Name:            field(row, "name"),
			Expiry:          field(row, "expiry"),
			Strike:          strike,
			TickSize:        tick,
			LotSize:         lot,
			InstrumentType:  field(row, "instrument_type"),
			Segment:         field(row, "segment"),
			Exchange:        field(row, "exchange"),
		})
	}
	return instruments, nil
}
