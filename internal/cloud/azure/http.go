package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hemantobora/auto-iops/internal/models"
)

// doJSON sends an authenticated ARM request. payload may be nil for GET.
// Non-2xx responses come back as *models.APIError.
func (p *Provider) doJSON(ctx context.Context, method, url string, payload any, out any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp, &models.APIError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(bytes.TrimSpace(b)),
		}
	}
	if out != nil {
		// 202 Accepted and 204 No Content may carry an empty body
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp, fmt.Errorf("%s %s: read body: %w", method, url, err)
		}
		if len(bytes.TrimSpace(b)) == 0 {
			return resp, nil
		}
		if err := json.Unmarshal(b, out); err != nil {
			return resp, fmt.Errorf("%s %s: decode body: %w", method, url, err)
		}
	}
	return resp, nil
}
