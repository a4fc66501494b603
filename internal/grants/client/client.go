// Package client provides the HTTP client for the grants.gov search API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"donorops_backend/internal/grants"
	"donorops_backend/platform/logger"

	"golang.org/x/time/rate"
)

// Client is the HTTP client for the grants.gov opportunity search API.
// Requests are throttled through a shared rate limiter; the feed blocks
// aggressive clients.
type Client struct {
	httpClient *http.Client
	baseURL    string
	pageSize   int
	limiter    *rate.Limiter
	log        *logger.Logger
}

// New creates a new grants.gov API client.
func New(baseURL string, pageSize int, rps float64, log *logger.Logger) *Client {
	if pageSize <= 0 {
		pageSize = 25
	}
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		pageSize:   pageSize,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		log:        log,
	}
}

type searchRequest struct {
	Keyword   string `json:"keyword"`
	Rows      int    `json:"rows"`
	StartRecN int    `json:"startRecordNum"`
	OppStatus string `json:"oppStatuses"`
}

type searchResponse struct {
	Data struct {
		HitCount int `json:"hitCount"`
		OppHits  []struct {
			ID         json.Number `json:"id"`
			Number     string      `json:"number"`
			Title      string      `json:"title"`
			AgencyName string      `json:"agencyName"`
			CFDAList   []string    `json:"cfdaList"`
			OpenDate   string      `json:"openDate"`
			CloseDate  string      `json:"closeDate"`
			OppStatus  string      `json:"oppStatus"`
		} `json:"oppHits"`
	} `json:"data"`
}

// Search fetches all opportunity pages matching the keyword.
func (c *Client) Search(ctx context.Context, keyword string) ([]grants.Opportunity, error) {
	var all []grants.Opportunity

	for start := 0; ; start += c.pageSize {
		page, total, err := c.searchPage(ctx, keyword, start)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if start+c.pageSize >= total || len(page) == 0 {
			break
		}
	}

	return all, nil
}

func (c *Client) searchPage(ctx context.Context, keyword string, start int) ([]grants.Opportunity, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	body, err := json.Marshal(searchRequest{
		Keyword:   keyword,
		Rows:      c.pageSize,
		StartRecN: start,
		OppStatus: "forecasted|posted",
	})
	if err != nil {
		return nil, 0, err
	}

	reqURL := c.baseURL + "/search2"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("grants.gov request failed", "error", err, "keyword", keyword)
		return nil, 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("grants.gov search: status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}

	opps := make([]grants.Opportunity, 0, len(decoded.Data.OppHits))
	for _, hit := range decoded.Data.OppHits {
		opps = append(opps, grants.Opportunity{
			ID:         hit.ID.String(),
			Number:     hit.Number,
			Title:      hit.Title,
			AgencyName: hit.AgencyName,
			CFDAList:   hit.CFDAList,
			OpenDate:   hit.OpenDate,
			CloseDate:  hit.CloseDate,
			OppStatus:  hit.OppStatus,
		})
	}

	return opps, decoded.Data.HitCount, nil
}

// Ping checks if the API host is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("ping failed: status %d", resp.StatusCode)
	}

	return nil
}
