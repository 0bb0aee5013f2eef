// Package backend implements the HTTP client for the live matching
// service. It only classifies outcomes (transport failure, application
// error, success) and leaves the fallback decision to the dispatcher.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/universa-labs/universa-go/internal/dispatch"
)

// Client communicates with the live backend over HTTP.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	requestTimeout time.Duration
	probeTimeout   time.Duration
}

// New creates a Client targeting the given base URL. Per-call deadlines
// come from requestTimeout; the health probe uses the shorter probeTimeout.
func New(baseURL string, requestTimeout, probeTimeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 0,
		},
		requestTimeout: requestTimeout,
		probeTimeout:   probeTimeout,
	}
}

// Health returns true if the backend responds to GET /health with 200.
func (c *Client) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Do issues one logical call and decodes the response document.
//
// Failures come back as *dispatch.Error: dial errors, timeouts, and
// bodies that fail to decode are KindTransport; non-2xx statuses with a
// decodable body are KindApplication carrying the backend's error
// document verbatim.
func (c *Client) Do(ctx context.Context, endpoint, method string, body map[string]any, query map[string]string) (dispatch.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	u := c.baseURL + endpoint
	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	var bodyReader io.Reader
	if body != nil && (method == http.MethodPost || method == http.MethodPut) {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, dispatch.Errorf(dispatch.KindTransport, "encoding request body: %v", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, dispatch.Errorf(dispatch.KindTransport, "creating request: %v", err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, dispatch.Errorf(dispatch.KindTransport, "%s %s: %v", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dispatch.Errorf(dispatch.KindTransport, "reading response: %v", err)
	}

	var doc dispatch.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, dispatch.Errorf(dispatch.KindTransport, "%s %s: response is not valid JSON", method, endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		de := dispatch.Errorf(dispatch.KindApplication, "%s %s: backend returned status %d", method, endpoint, resp.StatusCode)
		de.Doc = doc
		return nil, de
	}

	return doc, nil
}
