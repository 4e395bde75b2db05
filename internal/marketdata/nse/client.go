// Package nse fetches public market data snapshots from the NSE India
// site API. The endpoints are the same ones the website frontend calls,
// so requests carry browser-like headers.
package nse

import (
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

const baseURL = "https://www.nseindia.com/api"

// Client is a snapshot client for nseindia.com/api.
type Client struct {
	hc      *fasthttp.Client
	baseURL string
	timeout time.Duration
}

func NewClient() *Client {
	return &Client{
		hc:      &fasthttp.Client{},
		baseURL: baseURL,
		timeout: 15 * time.Second,
	}
}

// get fetches one endpoint and returns the raw body.
func (c *Client) get(endpoint string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	if err := c.hc.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, fmt.Errorf("nse request %s: %w", endpoint, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("nse request %s: status %d", endpoint, resp.StatusCode())
	}

	// Body may be gzip or brotli depending on what the edge returns.
	body, err := resp.BodyUncompressed()
	if err != nil {
		return nil, fmt.Errorf("nse response %s: %w", endpoint, err)
	}

	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}
