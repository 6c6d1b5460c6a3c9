package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"reqdesk/internal/domain/request"
	requestsvc "reqdesk/internal/services/request"
)

// APIError is returned when the endpoint responds with a non-2xx status
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Client is an HTTP binding for the request endpoint
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a client for the endpoint at baseURL
func New(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

// ListRequests fetches one page of requests, optionally filtered by status
func (c *Client) ListRequests(ctx context.Context, page int, status request.Status) (*requestsvc.ListResponse, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if status != "" {
		params.Set("status", string(status))
	}

	var resp requestsvc.ListResponse
	if err := c.do(ctx, http.MethodGet, "/api/request?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateRequest submits a new item request
func (c *Client) CreateRequest(ctx context.Context, requestorName, itemRequested string) (*request.Request, error) {
	body := map[string]string{
		"requestorName": requestorName,
		"itemRequested": itemRequested,
	}
	var created request.Request
	if err := c.do(ctx, http.MethodPut, "/api/request", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateStatus changes the status of a single request
func (c *Client) UpdateStatus(ctx context.Context, id string, status request.Status) (*request.Request, error) {
	body := map[string]string{"id": id, "status": string(status)}
	var updated request.Request
	if err := c.do(ctx, http.MethodPatch, "/api/request", body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// BatchUpdateStatus changes the status of every identified request
func (c *Client) BatchUpdateStatus(ctx context.Context, ids []string, status request.Status) error {
	body := map[string]any{"ids": ids, "status": string(status)}
	return c.do(ctx, http.MethodPatch, "/api/request", body, nil)
}

// BatchDelete removes every identified request
func (c *Client) BatchDelete(ctx context.Context, ids []string) error {
	body := map[string]any{"ids": ids}
	return c.do(ctx, http.MethodDelete, "/api/request", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message = eb.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
