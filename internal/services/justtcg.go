package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/psyrax/pokePrices/internal/metrics"
)

const (
	justTCGBaseURL        = "https://api.justtcg.com/v1"
	justTCGDefaultTimeout = 10 * time.Second

	defaultSearchPage     = 1
	defaultSearchPageSize = 20
)

// JustTCGConfig carries the explicit configuration for the API client.
// The API key is optional; the server decides via status code whether
// a key is required for a given call.
type JustTCGConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// JustTCGClient issues the three JustTCG operations: card search,
// single-card fetch, and set listing. It performs no retries and no
// response caching; failures surface to the caller unmodified.
type JustTCGClient struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewJustTCGClient creates a JustTCG API client from cfg.
func NewJustTCGClient(cfg JustTCGConfig) *JustTCGClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = justTCGBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = justTCGDefaultTimeout
	}
	return &JustTCGClient{
		client:  &http.Client{Timeout: cfg.Timeout},
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
	}
}

// CardRecord is the decoded representation of one card object as JustTCG
// returns it. Every provider-specific field is optional; different
// providers populate different subsets and none is guaranteed present.
type CardRecord struct {
	ID          string            `json:"id"`
	Name        *string           `json:"name"`
	Game        *string           `json:"game"`
	Number      *string           `json:"number"`
	Rarity      *string           `json:"rarity"`
	TCGPlayerID *string           `json:"tcgplayerId"`
	Details     *string           `json:"details"`
	Set         *string           `json:"set"`
	SetName     *string           `json:"set_name"`
	Variants    []VariantRecord   `json:"variants"`
	Images      *ImageRecord      `json:"images"`
	Cardmarket  *CardmarketRecord `json:"cardmarket"`
	TCGPlayer   *TCGPlayerRecord  `json:"tcgplayer"`
}

// VariantRecord is one per-printing price entry. Partial entries are
// expected; the variant mapper drops them.
type VariantRecord struct {
	Condition   *string  `json:"condition"`
	Printing    *string  `json:"printing"`
	Price       *float64 `json:"price"`
	LastUpdated *int64   `json:"lastUpdated"`
}

type ImageRecord struct {
	Small *string `json:"small"`
	Large *string `json:"large"`
}

type CardmarketRecord struct {
	Prices *CardmarketPrices `json:"prices"`
}

type CardmarketPrices struct {
	AverageSellPrice *float64 `json:"averageSellPrice"`
	LowPrice         *float64 `json:"lowPrice"`
	TrendPrice       *float64 `json:"trendPrice"`
}

// TCGPlayer pricing shapes vary between responses; keep everything optional.
type TCGPlayerRecord struct {
	Prices *TCGPlayerPrices `json:"prices"`
}

type TCGPlayerPrices struct {
	Market             *MarketPriceContainer `json:"market"`
	AverageMarketPrice *float64              `json:"averageMarketPrice"`
}

type MarketPriceContainer struct {
	MarketPrice *float64 `json:"marketPrice"`
}

// SetRecord is one expansion as returned by GET /sets.
type SetRecord struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	GameID      string  `json:"game_id"`
	Game        string  `json:"game"`
	ReleaseDate *string `json:"release_date"`
	CardsCount  int     `json:"cards_count"`
}

// Response envelopes. The data pointers distinguish a missing top-level
// "data" key (decoding failure) from a legitimately empty list.
type cardsResponse struct {
	Data *[]CardRecord `json:"data"`
}

type singleCardResponse struct {
	Data *CardRecord `json:"data"`
}

type setsResponse struct {
	Data *[]SetRecord `json:"data"`
}

// Search queries cards by free-text name, optionally narrowed to a set.
// An empty result is returned as an empty slice, not an error.
func (c *JustTCGClient) Search(ctx context.Context, name, setCode string) ([]CardRecord, error) {
	u, err := url.Parse(c.baseURL + "/cards")
	if err != nil {
		metrics.JustTCGRequestsTotal.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	params := url.Values{}
	params.Set("q", name)
	if setCode != "" {
		params.Set("set", setCode)
	}
	params.Set("page", strconv.Itoa(defaultSearchPage))
	params.Set("pageSize", strconv.Itoa(defaultSearchPageSize))
	u.RawQuery = params.Encode()

	resp, err := c.get(ctx, u.String())
	if err != nil {
		metrics.JustTCGRequestsTotal.WithLabelValues("search", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if !statusOK(resp.StatusCode) {
		metrics.JustTCGRequestsTotal.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	var listResp cardsResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		metrics.JustTCGRequestsTotal.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrDecodingFailed, err)
	}
	if listResp.Data == nil {
		metrics.JustTCGRequestsTotal.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("%w: missing data key", ErrDecodingFailed)
	}
	for _, rec := range *listResp.Data {
		if rec.ID == "" {
			metrics.JustTCGRequestsTotal.WithLabelValues("search", "error").Inc()
			return nil, fmt.Errorf("%w: card record without id", ErrDecodingFailed)
		}
	}

	metrics.JustTCGRequestsTotal.WithLabelValues("search", "ok").Inc()
	return *listResp.Data, nil
}

// FetchByID fetches a single card by its fully-qualified JustTCG id.
// Returns (nil, nil) when the server reports the id as not found; every
// other non-2xx status is an error.
func (c *JustTCGClient) FetchByID(ctx context.Context, id string) (*CardRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty card id", ErrInvalidRequest)
	}

	resp, err := c.get(ctx, c.baseURL+"/cards/"+url.PathEscape(id))
	if err != nil {
		metrics.JustTCGRequestsTotal.WithLabelValues("fetch", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.JustTCGRequestsTotal.WithLabelValues("fetch", "not_found").Inc()
		return nil, nil
	}
	if !statusOK(resp.StatusCode) {
		metrics.JustTCGRequestsTotal.WithLabelValues("fetch", "error").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	var single singleCardResponse
	if err := json.NewDecoder(resp.Body).Decode(&single); err != nil {
		metrics.JustTCGRequestsTotal.WithLabelValues("fetch", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrDecodingFailed, err)
	}
	if single.Data == nil || single.Data.ID == "" {
		metrics.JustTCGRequestsTotal.WithLabelValues("fetch", "error").Inc()
		return nil, fmt.Errorf("%w: missing card data", ErrDecodingFailed)
	}

	metrics.JustTCGRequestsTotal.WithLabelValues("fetch", "ok").Inc()
	return single.Data, nil
}

// ListSets returns all sets for a game, newest release first. Ordering is
// requested server-side; the client does not re-sort.
func (c *JustTCGClient) ListSets(ctx context.Context, game string) ([]SetRecord, error) {
	u, err := url.Parse(c.baseURL + "/sets")
	if err != nil {
		metrics.JustTCGRequestsTotal.WithLabelValues("sets", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	params := url.Values{}
	params.Set("game", game)
	params.Set("orderBy", "release_date")
	params.Set("order", "desc")
	u.RawQuery = params.Encode()

	resp, err := c.get(ctx, u.String())
	if err != nil {
		metrics.JustTCGRequestsTotal.WithLabelValues("sets", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if !statusOK(resp.StatusCode) {
		metrics.JustTCGRequestsTotal.WithLabelValues("sets", "error").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	var sets setsResponse
	if err := json.NewDecoder(resp.Body).Decode(&sets); err != nil {
		metrics.JustTCGRequestsTotal.WithLabelValues("sets", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrDecodingFailed, err)
	}
	if sets.Data == nil {
		metrics.JustTCGRequestsTotal.WithLabelValues("sets", "error").Inc()
		return nil, fmt.Errorf("%w: missing data key", ErrDecodingFailed)
	}

	metrics.JustTCGRequestsTotal.WithLabelValues("sets", "ok").Inc()
	return *sets.Data, nil
}

// get issues a GET with the API key header attached when configured.
func (c *JustTCGClient) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return resp, nil
}

func statusOK(code int) bool {
	return code >= 200 && code <= 299
}
