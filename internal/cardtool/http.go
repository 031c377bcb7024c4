package cardtool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/racecard/internal/domain/types"
)

// HTTPClient ranks cards through the server's POST /rank route.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewHTTPClient creates a client for the server at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Rank posts text as a plain-text card and decodes the ranked card.
func (c *HTTPClient) Rank(ctx context.Context, text, condition string) (types.Card, error) {
	target := c.baseURL + "/rank?condition=" + url.QueryEscape(condition)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(text))
	if err != nil {
		return types.Card{}, fmt.Errorf("%w: create request: %w", ErrServer, err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return types.Card{}, fmt.Errorf("%w: %w", ErrServer, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Card{}, fmt.Errorf("%w: read response: %w", ErrServer, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var card types.Card
		if err := json.Unmarshal(body, &card); err != nil {
			return types.Card{}, fmt.Errorf("%w: decode response: %w", ErrServer, err)
		}
		return card, nil
	case http.StatusUnprocessableEntity:
		return types.Card{}, ErrNoData
	default:
		var e errorBody
		if json.Unmarshal(body, &e) == nil && e.Message != "" {
			return types.Card{}, fmt.Errorf("%w: %d %s: %s", ErrServer, resp.StatusCode, e.Code, e.Message)
		}
		return types.Card{}, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	}
}
