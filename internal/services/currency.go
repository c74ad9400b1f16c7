package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const currencyBaseURL = "https://open.er-api.com/v6"

// CurrencyService fetches live USD exchange rates for display conversion.
// No key required by the provider.
type CurrencyService struct {
	client  *http.Client
	baseURL string
}

func NewCurrencyService() *CurrencyService {
	return &CurrencyService{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: currencyBaseURL,
	}
}

type exchangeRateResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// FetchUSDRate returns the current USD to target conversion rate.
func (s *CurrencyService) FetchUSDRate(ctx context.Context, target string) (float64, error) {
	target = strings.ToUpper(strings.TrimSpace(target))
	if target == "" {
		return 0, fmt.Errorf("%w: empty target currency", ErrInvalidRequest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/latest/USD", nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if !statusOK(resp.StatusCode) {
		return 0, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	var rates exchangeRateResponse
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecodingFailed, err)
	}

	rate, ok := rates.Rates[target]
	if !ok {
		return 0, fmt.Errorf("%w: rate for %s not in response", ErrInvalidResponse, target)
	}
	return rate, nil
}
