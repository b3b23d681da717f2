package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ExternalAPIChecker checks external API connectivity
type ExternalAPIChecker struct {
	name       string
	healthURL  string
	httpClient *http.Client
	timeout    time.Duration
}

// NewExternalAPIChecker creates a new external API health checker
func NewExternalAPIChecker(name, healthURL string, timeout time.Duration) *ExternalAPIChecker {
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &ExternalAPIChecker{
		name:      name,
		healthURL: healthURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Name returns the checker name
func (c *ExternalAPIChecker) Name() string {
	return c.name
}

// Check performs the external API health check
func (c *ExternalAPIChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return NewUnhealthyResult(c.name, err).WithDuration(time.Since(start))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NewUnhealthyResult(c.name, err).WithDuration(time.Since(start))
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	result := CheckResult{
		Component: c.name,
		Timestamp: time.Now(),
		Duration:  duration,
		Metadata:  make(map[string]interface{}),
	}

	result = result.
		WithMetadata("status_code", resp.StatusCode).
		WithMetadata("endpoint", c.healthURL)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		result.Status = StatusHealthy
		result.Message = "api reachable"
	case resp.StatusCode >= 500:
		result.Status = StatusUnhealthy
		result.Message = fmt.Sprintf("api returned %d", resp.StatusCode)
	default:
		result.Status = StatusDegraded
		result.Message = fmt.Sprintf("api returned %d", resp.StatusCode)
	}

	return result
}
