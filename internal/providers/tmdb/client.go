// Package tmdb is the REST metadata provider for movies and TV shows.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"cinemax/internal/catalog"
)

const (
	defaultBaseURL      = "https://api.themoviedb.org/3"
	defaultImageBaseURL = "https://image.tmdb.org/t/p"

	// TMDB tolerates ~50 requests per second; stay conservative.
	rateLimit = 20
	rateBurst = 40

	maxRetries   = 3
	initialDelay = 500 * time.Millisecond
	maxDelay     = 8 * time.Second
)

// Documented poster/backdrop size tokens.
const (
	SizeOriginal = "original"
	SizeW500     = "w500"
	SizeW342     = "w342"
)

// Client handles TMDB API requests with rate limiting and retry logic.
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	log          *logrus.Logger
}

// NewClient creates a TMDB client. Empty base URLs select the public
// endpoints.
func NewClient(baseURL, imageBaseURL, apiKey string, log *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if imageBaseURL == "" {
		imageBaseURL = defaultImageBaseURL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL:      baseURL,
		imageBaseURL: imageBaseURL,
		apiKey:       apiKey,
		rateLimiter:  rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		log:          log,
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

// ImageURL composes an absolute image URL from a provider-relative path and
// a size token. Empty paths yield "" so templates can skip the tag.
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = SizeW500
	}
	return c.imageBaseURL + "/" + size + path
}

// TrendingMovies fetches this week's trending movies (provider first page).
func (c *Client) TrendingMovies(ctx context.Context) ([]catalog.Record, error) {
	return c.movieList(ctx, "/trending/movie/week", nil)
}

// PopularMovies fetches the popular movie listing.
func (c *Client) PopularMovies(ctx context.Context) ([]catalog.Record, error) {
	return c.movieList(ctx, "/movie/popular", nil)
}

// SearchMovies runs a free-text movie search.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]catalog.Record, error) {
	params := url.Values{}
	params.Set("query", query)
	return c.movieList(ctx, "/search/movie", params)
}

// TrendingTV fetches this week's trending TV shows.
func (c *Client) TrendingTV(ctx context.Context) ([]catalog.Record, error) {
	return c.tvList(ctx, "/trending/tv/week", nil)
}

// PopularTV fetches the popular TV listing.
func (c *Client) PopularTV(ctx context.Context) ([]catalog.Record, error) {
	return c.tvList(ctx, "/tv/popular", nil)
}

// SearchTV runs a free-text TV search.
func (c *Client) SearchTV(ctx context.Context, query string) ([]catalog.Record, error) {
	return c.tvList(ctx, "/search/tv", urlValues("query", query))
}

// MovieByID fetches the canonical movie record with its IMDB cross-reference.
func (c *Client) MovieByID(ctx context.Context, id int) (catalog.Record, error) {
	var node movieNode
	err := c.doRequest(ctx, fmt.Sprintf("/movie/%d", id), urlValues("append_to_response", "external_ids"), &node)
	if err != nil {
		return catalog.Record{}, err
	}
	movie := node.normalize()
	return catalog.Record{Kind: catalog.KindMovie, Movie: &movie}, nil
}

// TVShowByID fetches the canonical TV record, including its season list and
// IMDB cross-reference.
func (c *Client) TVShowByID(ctx context.Context, id int) (catalog.Record, error) {
	var node tvNode
	err := c.doRequest(ctx, fmt.Sprintf("/tv/%d", id), urlValues("append_to_response", "external_ids"), &node)
	if err != nil {
		return catalog.Record{}, err
	}
	show := node.normalize()
	return catalog.Record{Kind: catalog.KindTV, Show: &show}, nil
}

func (c *Client) movieList(ctx context.Context, endpoint string, params url.Values) ([]catalog.Record, error) {
	var response listResponse[movieNode]
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	records := make([]catalog.Record, 0, len(response.Results))
	for _, node := range response.Results {
		movie := node.normalize()
		records = append(records, catalog.Record{Kind: catalog.KindMovie, Movie: &movie})
	}
	return records, nil
}

func (c *Client) tvList(ctx context.Context, endpoint string, params url.Values) ([]catalog.Record, error) {
	var response listResponse[tvNode]
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	records := make([]catalog.Record, 0, len(response.Results))
	for _, node := range response.Results {
		show := node.normalize()
		records = append(records, catalog.Record{Kind: catalog.KindTV, Show: &show})
	}
	return records, nil
}

// doRequest performs an HTTP request with rate limiting and retry logic.
// Unknown ids come back as 404 and map to catalog.ErrNotFound.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	fullURL := c.baseURL + endpoint + "?" + params.Encode()

	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				c.log.WithError(err).Warnf("[TMDB] request failed (attempt %d/%d), retrying in %v", attempt+1, maxRetries, delay)
				time.Sleep(delay)
				delay = minDuration(delay*2, maxDelay)
				continue
			}
			return fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
		}

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return catalog.ErrNotFound
		}

		if resp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if shouldRetry(resp.StatusCode) && attempt < maxRetries {
				lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
				if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
					if retryDuration, err := time.ParseDuration(retryAfter + "s"); err == nil {
						delay = retryDuration
					}
				}
				c.log.Warnf("[TMDB] HTTP %d (attempt %d/%d), retrying in %v", resp.StatusCode, attempt+1, maxRetries, delay)
				time.Sleep(delay)
				delay = minDuration(delay*2, maxDelay)
				continue
			}
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
		}

		err = json.NewDecoder(resp.Body).Decode(result)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
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

func urlValues(key, value string) url.Values {
	params := url.Values{}
	params.Set(key, value)
	return params
}
