// ABOUTME: Backend liveness probe against /api/healthz
// ABOUTME: Any 2xx counts as healthy; the body is optional

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HealthStatus is the (optional) body of /api/healthz
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Health calls GET /healthz. A 2xx without a JSON body reports status "ok".
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/healthz", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.handleErrorResponse(req, resp)
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	health := HealthStatus{Status: "ok"}
	if err := json.Unmarshal(body, &health); err != nil || health.Status == "" {
		health.Status = "ok"
	}
	return &health, nil
}
