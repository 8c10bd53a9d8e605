// Package cardtrader is the rate-limited client for the Cardtrader
// marketplace API.
package cardtrader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cjjwisniewski/seeker-functions/internal/domain"
	apperrors "github.com/cjjwisniewski/seeker-functions/pkg/errors"
)

// Marketplace-specific locale tags for languages Cardtrader spells
// differently than Scryfall.
var languageMap = map[string]string{
	"zhs": "zh-CN",
	"zht": "zh-TW",
}

// Client queries the Cardtrader marketplace for blueprint stock. One client
// instance is built per scan tick; its pacer spaces calls sequentially and is
// not safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	pacer      *Pacer
	logger     *slog.Logger
}

// NewClient creates a marketplace client. The request timeout is kept short
// to bound worst-case tick duration.
func NewClient(baseURL, token string, rateLimit time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		pacer:      NewPacer(rateLimit),
		logger:     logger,
	}
}

// listing is one marketplace offer for a blueprint. Offers without a price
// are excluded from the minimum, not treated as zero, so the field stays a
// pointer.
type listing struct {
	PriceCents *float64 `json:"price_cents"`
}

// QueryStock fetches stock and lowest price for one blueprint, blocking first
// until the rate-limit interval has elapsed since the previous call.
//
// Interpretation: 200 with listings for the blueprint means in stock with the
// minimum present price; 200 without listings or 404 means out of stock; 429
// returns ErrRateLimited so the caller can abort the scan; any other non-2xx
// status or an undecodable body reads as out of stock with a logged error and
// a nil error return. Network failures are returned to the caller.
func (c *Client) QueryStock(ctx context.Context, blueprintID int64, language, finish string) (domain.StockResult, error) {
	c.pacer.Wait()

	reqURL := c.buildURL(blueprintID, language, finish)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.StockResult{}, fmt.Errorf("create stock query request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.StockResult{}, fmt.Errorf("query stock for blueprint %d: %w", blueprintID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// The query matched nothing.
		return domain.StockResult{}, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.StockResult{}, apperrors.RateLimited("cardtrader rate limit hit")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.ErrorContext(ctx, "unexpected cardtrader response, treating as out of stock",
			slog.Int64("blueprint_id", blueprintID),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return domain.StockResult{}, nil
	}

	// The body is keyed by blueprint id: {"123": [{"price_cents": 500}, ...]}.
	var payload map[string][]listing
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.ErrorContext(ctx, "undecodable cardtrader response, treating as out of stock",
			slog.Int64("blueprint_id", blueprintID),
			slog.String("error", err.Error()),
		)
		return domain.StockResult{}, nil
	}

	listings := payload[strconv.FormatInt(blueprintID, 10)]
	if len(listings) == 0 {
		return domain.StockResult{}, nil
	}

	var lowest *int64
	for _, l := range listings {
		if l.PriceCents == nil {
			continue
		}
		cents := int64(*l.PriceCents + 0.5)
		if lowest == nil || cents < *lowest {
			lowest = &cents
		}
	}

	return domain.StockResult{InStock: true, LowPriceCents: lowest}, nil
}

func (c *Client) buildURL(blueprintID int64, language, finish string) string {
	params := url.Values{}
	params.Set("blueprint_id", strconv.FormatInt(blueprintID, 10))

	if mapped, ok := languageMap[language]; ok {
		language = mapped
	}
	params.Set("language", language)

	switch finish {
	case domain.FinishFoil:
		params.Set("foil", "true")
	case domain.FinishNonfoil:
		params.Set("foil", "false")
	}

	return c.baseURL + "/marketplace/products?" + params.Encode()
}
