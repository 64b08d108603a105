package listings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"homescout/server/internal/models"
)

// HTTPSource queries a remote MLS-style listings API. Requests are rate
// limited to stay inside the provider's usage policy.
type HTTPSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
}

type searchResponse struct {
	Listings []models.Listing `json:"listings"`
}

// NewHTTPSource creates a source for the given API endpoint. requestsPerSec
// bounds the outbound request rate; a non-positive value means 2 req/sec.
func NewHTTPSource(baseURL, apiKey string, requestsPerSec float64, logger *logrus.Logger) *HTTPSource {
	if requestsPerSec <= 0 {
		requestsPerSec = 2
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &HTTPSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		logger:  logger,
	}
}

// Search issues one request for one page of listings matching the query.
func (s *HTTPSource) Search(ctx context.Context, q Query) ([]models.Listing, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/listings", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = encodeQuery(q)
	if s.apiKey != "" {
		req.Header.Set("REPLIERS-API-KEY", s.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.WithError(err).Error("Listings request failed")
		return nil, fmt.Errorf("listings request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("Listings request returned non-success status")
		return nil, fmt.Errorf("listings request returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse listings response: %w", err)
	}

	return parsed.Listings, nil
}

func encodeQuery(q Query) string {
	params := url.Values{}
	setIfPresent := func(key, value string) {
		if value != "" {
			params.Set(key, value)
		}
	}

	setIfPresent("status", q.Status)
	setIfPresent("type", q.Type)
	setIfPresent("city", q.City)
	setIfPresent("propertyType", q.PropertyType)
	setIfPresent("community", q.Community)

	if q.MinPrice > 0 {
		params.Set("minPrice", strconv.Itoa(q.MinPrice))
	}
	if q.MaxPrice > 0 {
		params.Set("maxPrice", strconv.Itoa(q.MaxPrice))
	}
	if q.MinBedrooms > 0 {
		params.Set("minBedrooms", strconv.Itoa(q.MinBedrooms))
	}
	if q.MinBaths > 0 {
		params.Set("minBaths", strconv.Itoa(q.MinBaths))
	}
	if q.ResultsPerPage > 0 {
		params.Set("resultsPerPage", strconv.Itoa(q.ResultsPerPage))
	}
	if q.PageNum > 0 {
		params.Set("pageNum", strconv.Itoa(q.PageNum))
	}

	return params.Encode()
}
