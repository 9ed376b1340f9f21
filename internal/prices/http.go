package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// HTTPSource запрашивает котировки у JSON API вида GET {base}/quote?symbol=XYZ.
type HTTPSource struct {
	apiKey     string
	baseURL    string
	limiter    *rate.Limiter
	httpClient *http.Client
}

type quoteResponse struct {
	Symbol string           `json:"symbol"`
	Price  *decimal.Decimal `json:"price"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewHTTPSource создает клиент котировок с таймаутом и ограничением частоты запросов.
func NewHTTPSource(apiKey, baseURL string, timeout time.Duration, ratePerMinute, burst int) *HTTPSource {
	limit := rate.Inf
	if ratePerMinute > 0 {
		limit = rate.Limit(float64(ratePerMinute) / 60.0)
	}
	if burst <= 0 {
		burst = 1
	}

	return &HTTPSource{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(limit, burst),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Price запрашивает последнюю цену символа.
func (s *HTTPSource) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return decimal.Zero, ErrUnavailable
	}
	if s.baseURL == "" {
		return decimal.Zero, errors.New("quote api base url is missing")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return decimal.Zero, err
	}

	endpoint := fmt.Sprintf("%s/quote?symbol=%s", s.baseURL, url.QueryEscape(symbol))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}

	request.Header.Set("Accept", "application/json")
	if strings.TrimSpace(s.apiKey) != "" {
		request.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	response, err := s.httpClient.Do(request)
	if err != nil {
		return decimal.Zero, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return decimal.Zero, err
	}

	if response.StatusCode == http.StatusNotFound {
		return decimal.Zero, ErrUnavailable
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var apiErr quoteResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
			return decimal.Zero, fmt.Errorf("quote api error: %s", apiErr.Error.Message)
		}
		return decimal.Zero, fmt.Errorf("quote api error: %s", strings.TrimSpace(string(body)))
	}

	var parsed quoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return decimal.Zero, err
	}

	if parsed.Price == nil || parsed.Price.IsNegative() {
		return decimal.Zero, ErrUnavailable
	}

	return *parsed.Price, nil
}
