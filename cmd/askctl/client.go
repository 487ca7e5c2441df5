package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type askRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type askResponse struct {
	Response      string `json:"response"`
	Authenticated bool   `json:"authenticated"`
	Agent         string `json:"agent"`
	Needs         string `json:"needs,omitempty"`
	Error         string `json:"error,omitempty"`
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *client) ask(ctx context.Context, sessionID, query string) (askResponse, error) {
	payload, err := json.Marshal(askRequest{Query: query, SessionID: sessionID})
	if err != nil {
		return askResponse{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(payload))
	if err != nil {
		return askResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return askResponse{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return askResponse{}, fmt.Errorf("read response: %w", err)
	}

	var out askResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return askResponse{}, fmt.Errorf("decode response (status=%d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error == "" {
			out.Error = http.StatusText(resp.StatusCode)
		}
		return out, fmt.Errorf("gateway status=%d: %s", resp.StatusCode, out.Error)
	}
	return out, nil
}
