package security

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/mkarren/toolgate/internal/models"
)

const defaultGuardBaseURL = "https://api.lakera.ai/v2"

// GuardClient screens content through the Lakera Guard HTTP API.
type GuardClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// GuardOptions configures a GuardClient. Zero values fall back to defaults:
// the API key comes from LAKERA_GUARD_API_KEY, the endpoint from the public
// base URL (or a regional one when Region is set), the timeout from 30s.
type GuardOptions struct {
	APIKey  string
	BaseURL string
	Region  string // e.g. "eu-west-1"; overrides BaseURL when set
	Timeout time.Duration
}

// NewGuardClient creates a classifier client for the Lakera Guard API.
func NewGuardClient(opts GuardOptions) (*GuardClient, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("LAKERA_GUARD_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("guard API key is required: set LAKERA_GUARD_API_KEY or pass APIKey")
	}

	baseURL := opts.BaseURL
	if opts.Region != "" {
		baseURL = fmt.Sprintf("https://%s.api.lakera.ai/v2", opts.Region)
	}
	if baseURL == "" {
		baseURL = defaultGuardBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &GuardClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type guardMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type guardRequest struct {
	Messages []guardMessage `json:"messages"`
}

type guardResponse struct {
	Flagged        bool               `json:"flagged"`
	Categories     map[string]bool    `json:"categories"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

// Screen submits text to the guard endpoint and returns its verdict.
// Transport and non-2xx failures wrap ErrClassifierUnavailable.
func (g *GuardClient) Screen(ctx context.Context, text string) (models.ScreeningVerdict, error) {
	body, err := json.Marshal(guardRequest{
		Messages: []guardMessage{{Role: "user", Content: text}},
	})
	if err != nil {
		return models.ScreeningVerdict{}, fmt.Errorf("encode guard request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/guard", bytes.NewReader(body))
	if err != nil {
		return models.ScreeningVerdict{}, fmt.Errorf("build guard request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return models.ScreeningVerdict{}, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.ScreeningVerdict{}, fmt.Errorf("%w: guard returned status %d", ErrClassifierUnavailable, resp.StatusCode)
	}

	var decoded guardResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return models.ScreeningVerdict{}, fmt.Errorf("%w: decode guard response: %v", ErrClassifierUnavailable, err)
	}

	return models.ScreeningVerdict{
		Flagged:        decoded.Flagged,
		Categories:     flaggedCategories(decoded.Categories),
		CategoryScores: decoded.CategoryScores,
	}, nil
}

// flaggedCategories extracts the names of flagged categories, sorted so
// verdicts render deterministically.
func flaggedCategories(categories map[string]bool) []string {
	if len(categories) == 0 {
		return nil
	}
	out := make([]string, 0, len(categories))
	for name, flagged := range categories {
		if flagged {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
