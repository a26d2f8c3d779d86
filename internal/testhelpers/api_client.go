package testhelpers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SimulateResponse mirrors the /api/simulate response body
type SimulateResponse struct {
	OriginalData   []string `json:"originalData"`
	WalshCodes     [][]int  `json:"walshCodes"`
	EncodedSignals [][]int  `json:"encodedSignals"`
	Combined       []int    `json:"combined"`
	Decoded        [][]int  `json:"decoded"`
	Error          string   `json:"error"`
}

// APIClient talks to a running server
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the server at baseURL
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Simulate posts stations to /api/simulate and returns the status code and
// decoded body.
func (c *APIClient) Simulate(stations []string) (int, *SimulateResponse, error) {
	body, err := json.Marshal(map[string][]string{"stations": stations})
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.httpClient.Post(c.baseURL+"/api/simulate", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("simulate request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	var out SimulateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to decode response %q: %w", raw, err)
	}
	return resp.StatusCode, &out, nil
}
