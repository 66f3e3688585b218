// Package device holds the HTTP client for the unit's control endpoint.
// One call, one request: retry policy belongs to the coordinator's refresh
// cycle, not here.
package device

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	bridge "aircon_bridge"
	"aircon_bridge/internal/protocol"
)

const defaultTimeout = 5 * time.Second

// Client talks to a single unit. It holds no mutable state and is safe for
// concurrent use; the coordinator is what keeps concurrent fetches off the
// hardware.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient builds a client for the unit at host (IP or hostname). A
// non-positive timeout selects the LAN default.
func NewClient(host string, timeout time.Duration) (*Client, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, fmt.Errorf("device host is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: "http://" + host + protocol.Endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// FetchState asks the unit for its full status group and decodes it into a
// snapshot stamped with the capture time.
func (c *Client) FetchState(ctx context.Context) (bridge.DeviceState, error) {
	raw, err := c.post(ctx, protocol.ReadRequest())
	if err != nil {
		return bridge.DeviceState{}, err
	}
	st, err := protocol.DecodeResponse(raw)
	if err != nil {
		return bridge.DeviceState{}, err
	}
	st.CapturedAt = time.Now().UTC()
	return st, nil
}

// SendCommand encodes cmd over the base snapshot (the unit requires full
// frames) and posts it. The caller owns the follow-up refresh; the device's
// state has changed but the cache has not.
func (c *Client) SendCommand(ctx context.Context, cmd bridge.Command, base bridge.DeviceState) error {
	frame, err := protocol.EncodeCommand(cmd, base)
	if err != nil {
		return err
	}
	_, err = c.post(ctx, frame)
	return err
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bridge.ErrDeviceUnreachable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", bridge.ErrDeviceUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &bridge.DeviceError{Status: resp.StatusCode}
	}

	return payload, nil
}
