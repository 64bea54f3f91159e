// Package anilist is the graph-API catalog provider for anime and manga.
package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"cinemax/internal/catalog"
)

const (
	defaultAPIURL = "https://graphql.anilist.co"

	// AniList allows ~90 requests per minute; stay well under it.
	rateLimit = 1 // per second
	rateBurst = 5

	maxRetries   = 3
	initialDelay = 1 * time.Second
	maxDelay     = 16 * time.Second
)

// Client handles GraphQL API requests with rate limiting and retry.
type Client struct {
	apiURL      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	log         *logrus.Logger
}

// NewClient creates an AniList client. An empty apiURL selects the public
// endpoint.
func NewClient(apiURL string, log *logrus.Logger) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		apiURL:      apiURL,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		log:         log,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// BrowseParams select a page of media. When Search is set the provider sorts
// by search relevance only and Sort is ignored; otherwise Sort is applied in
// caller order (e.g. TRENDING_DESC with POPULARITY_DESC as tie-break).
type BrowseParams struct {
	Search  string
	Kind    catalog.Kind
	Sort    []string
	PerPage int
}

const browseQuery = `
query ($search: String, $type: MediaType, $sort: [MediaSort], $perPage: Int) {
    Page(page: 1, perPage: $perPage) {
        media(search: $search, type: $type, sort: $sort) {
            id
            type
            title { english romaji native }
            description
            coverImage { large extraLarge }
            bannerImage
            episodes
            chapters
            format
            status
            startDate { year }
        }
    }
}
`

// Browse fetches a page of media for a carousel, grid, or suggestion list.
func (c *Client) Browse(ctx context.Context, p BrowseParams) ([]catalog.Record, error) {
	if p.PerPage <= 0 {
		p.PerPage = 20
	}
	sort := p.Sort
	if p.Search != "" {
		// free-text queries rank by relevance, nothing else
		sort = []string{"SEARCH_MATCH"}
	}
	if len(sort) == 0 {
		sort = []string{"POPULARITY_DESC"}
	}

	variables := map[string]interface{}{
		"type":    mediaType(p.Kind),
		"sort":    sort,
		"perPage": p.PerPage,
	}
	if p.Search != "" {
		variables["search"] = p.Search
	}

	var result pageResponse
	if err := c.doRequest(ctx, browseQuery, variables, &result); err != nil {
		return nil, fmt.Errorf("failed to browse %s: %w", p.Kind, err)
	}

	records := make([]catalog.Record, 0, len(result.Page.Media))
	for _, node := range result.Page.Media {
		records = append(records, node.normalize())
	}
	return records, nil
}

const mediaByIDQuery = `
query ($id: Int, $type: MediaType) {
    Media(id: $id, type: $type) {
        id
        type
        title { english romaji native }
        description
        coverImage { large extraLarge }
        bannerImage
        episodes
        chapters
        format
        status
        startDate { year }
        relations {
            edges {
                relationType
                node {
                    id
                    type
                    title { english romaji native }
                    coverImage { large extraLarge }
                    format
                }
            }
        }
    }
}
`

// MediaByID fetches the canonical record for a detail or viewer page,
// including its relations graph. A missing record maps to catalog.ErrNotFound.
func (c *Client) MediaByID(ctx context.Context, kind catalog.Kind, id int) (catalog.Record, error) {
	variables := map[string]interface{}{
		"id":   id,
		"type": mediaType(kind),
	}

	var result struct {
		Media *mediaNode `json:"Media"`
	}
	if err := c.doRequest(ctx, mediaByIDQuery, variables, &result); err != nil {
		if isNotFound(err) {
			return catalog.Record{}, catalog.ErrNotFound
		}
		return catalog.Record{}, fmt.Errorf("failed to fetch %s %d: %w", kind, id, err)
	}
	if result.Media == nil {
		return catalog.Record{}, catalog.ErrNotFound
	}
	return result.Media.normalize(), nil
}

func mediaType(kind catalog.Kind) string {
	if kind == catalog.KindManga {
		return "MANGA"
	}
	return "ANIME"
}

// AniList answers 404 with a GraphQL "Not Found." error for unknown ids.
func isNotFound(err error) bool {
	return strings.Contains(err.Error(), "HTTP 404") || strings.Contains(err.Error(), "Not Found")
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

// doRequest performs a GraphQL request with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, query string, variables map[string]interface{}, result interface{}) error {
	bodyJSON, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(bodyJSON))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				c.log.WithError(err).Warnf("[AniList] request failed (attempt %d/%d), retrying in %v", attempt+1, maxRetries, delay)
				time.Sleep(delay)
				delay = minDuration(delay*2, maxDelay)
				continue
			}
			return fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			if shouldRetry(resp.StatusCode) && attempt < maxRetries {
				lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
				if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
					if retryDuration, err := time.ParseDuration(retryAfter + "s"); err == nil {
						delay = retryDuration
					}
				}
				c.log.Warnf("[AniList] HTTP %d (attempt %d/%d), retrying in %v", resp.StatusCode, attempt+1, maxRetries, delay)
				time.Sleep(delay)
				delay = minDuration(delay*2, maxDelay)
				continue
			}
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}

		var gqlResp graphQLResponse
		if err := json.Unmarshal(respBody, &gqlResp); err != nil {
			return fmt.Errorf("failed to parse GraphQL response: %w", err)
		}
		if len(gqlResp.Errors) > 0 {
			msgs := make([]string, len(gqlResp.Errors))
			for i, e := range gqlResp.Errors {
				msgs[i] = e.Message
			}
			return errors.New("GraphQL errors: " + strings.Join(msgs, "; "))
		}
		if err := json.Unmarshal(gqlResp.Data, result); err != nil {
			return fmt.Errorf("failed to parse data: %w", err)
		}
		return nil
	}

	return fmt.Errorf("request failed after %d attempts: %w", maxRetries, lastErr)
}

func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode >= 500
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
