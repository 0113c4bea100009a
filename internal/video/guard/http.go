package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultHTTPTimeout = 5 * time.Second

// HTTPEngine talks to a remote decision API. The request carries the full
// policy config so the engine stays stateless about our policies.
type HTTPEngine struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPEngine(baseURL, apiKey string, timeout time.Duration) (*HTTPEngine, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("decision engine base url is empty")
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPEngine{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type decideRequest struct {
	Policy Policy `json:"policy"`
	Actor  Actor  `json:"actor"`
}

func (e *HTTPEngine) Evaluate(ctx context.Context, p Policy, actor Actor) (Decision, error) {
	body, err := json.Marshal(decideRequest{Policy: p, Actor: actor})
	if err != nil {
		return Decision{}, fmt.Errorf("marshal decide request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/decide", bytes.NewReader(body))
	if err != nil {
		return Decision{}, fmt.Errorf("build decide request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return Decision{}, fmt.Errorf("decision engine request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Decision{}, fmt.Errorf("decision engine status %d", resp.StatusCode)
	}

	var d Decision
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return Decision{}, fmt.Errorf("decode decision: %w", err)
	}
	return d, nil
}
