package novelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// APIClient manages communication with the Novel API
type APIClient struct {
	cfg    *Configuration
	common service

	Auth      *AuthAPIService
	Stories   *StoriesAPIService
	Chapters  *ChaptersAPIService
	Genres    *GenresAPIService
	Favorites *FavoritesAPIService
	History   *HistoryAPIService
	Users     *UsersAPIService

	Ratings         *RatingsAPIService
	Comments        *CommentsAPIService
	Recommendations *RecommendationsAPIService
}

type service struct {
	client *APIClient
}

// NewAPIClient creates a new API client. A nil cfg uses NewConfiguration().
func NewAPIClient(cfg *Configuration) *APIClient {
	if cfg == nil {
		cfg = NewConfiguration()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.BasePath == "" {
		cfg.BasePath = DefaultBasePath
	}

	c := &APIClient{cfg: cfg}
	c.common.client = c

	c.Auth = (*AuthAPIService)(&c.common)
	c.Stories = (*StoriesAPIService)(&c.common)
	c.Chapters = (*ChaptersAPIService)(&c.common)
	c.Genres = (*GenresAPIService)(&c.common)
	c.Favorites = (*FavoritesAPIService)(&c.common)
	c.History = (*HistoryAPIService)(&c.common)
	c.Users = (*UsersAPIService)(&c.common)
	c.Ratings = (*RatingsAPIService)(&c.common)
	c.Comments = (*CommentsAPIService)(&c.common)
	c.Recommendations = (*RecommendationsAPIService)(&c.common)
	return c
}

// GetConfig returns the configuration the client was built with
func (c *APIClient) GetConfig() *Configuration {
	return c.cfg
}

// prepareRequest builds an HTTP request against BasePath, attaching the bearer
// token current at the time of the call.
func (c *APIClient) prepareRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u, err := url.Parse(strings.TrimRight(c.cfg.BasePath, "/") + path)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL: %w", err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	for k, v := range c.cfg.DefaultHeader {
		req.Header.Set(k, v)
	}

	if token := c.cfg.accessToken(); token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	return req, nil
}

// do sends the request and decodes a 2xx JSON body into out (which may be nil)
func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.prepareRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// pageQuery encodes Spring Data paging parameters. Zero values are omitted so
// the backend defaults apply.
func pageQuery(q url.Values, page, size int, sort string) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if size > 0 {
		q.Set("size", fmt.Sprint(size))
	}
	if sort != "" {
		q.Set("sort", sort)
	}
	return q
}
