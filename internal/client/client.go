// Package client is the entry point front ends use to talk to the Novel API.
// It pairs a token cache with a typed API client whose credential callback
// reads the cache on every request.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/devilmonastery/novel/internal/tokencache"
	"github.com/devilmonastery/novel/pkg/novelapi"
)

// DefaultBasePath is used when NewClient is given an empty base path
const DefaultBasePath = novelapi.DefaultBasePath

// Client wraps the Novel API client with token management
type Client struct {
	tokens *tokencache.Cache
	api    *novelapi.APIClient
	log    *slog.Logger
}

type options struct {
	httpClient *http.Client
	transport  http.RoundTripper
	userAgent  string
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*options)

// WithHTTPClient sets the HTTP client used for API calls. Its transport is
// wrapped with request IDs and metrics.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTransport sets the base round tripper (defaults to http.DefaultTransport)
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithLogger sets the logger for the client and its token cache
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewClient creates a client for basePath that authenticates with whatever
// token tokens holds at the time of each request. A nil tokens gets a fresh
// in-memory cache.
func NewClient(basePath string, tokens *tokencache.Cache, opts ...Option) *Client {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if tokens == nil {
		tokens = tokencache.New(nil, tokencache.WithLogger(o.logger))
	}

	cfg := novelapi.NewConfiguration()
	cfg.BasePath = NormalizeBasePath(basePath)
	cfg.AccessToken = CredentialFunc(tokens)
	if o.userAgent != "" {
		cfg.UserAgent = o.userAgent
	}
	cfg.HTTPClient = instrumentedHTTPClient(o)

	return &Client{
		tokens: tokens,
		api:    novelapi.NewAPIClient(cfg),
		log:    o.logger.With(slog.String("component", "api-client")),
	}
}

// Bootstrap builds a token cache over store, loads any persisted token and
// returns a client using it. store may be nil for an in-memory session.
func Bootstrap(basePath string, store tokencache.Store, opts ...Option) *Client {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	tokens := tokencache.New(store, tokencache.WithLogger(o.logger))
	tokens.Prime()
	return NewClient(basePath, tokens, opts...)
}

func instrumentedHTTPClient(o *options) *http.Client {
	hc := &http.Client{Timeout: 30 * time.Second}
	if o.httpClient != nil {
		copied := *o.httpClient
		hc = &copied
	}
	base := o.transport
	if base == nil {
		base = hc.Transport
	}
	hc.Transport = NewTransport(base)
	return hc
}

// NormalizeBasePath trims trailing slashes and falls back to DefaultBasePath
func NormalizeBasePath(basePath string) string {
	basePath = strings.TrimRight(strings.TrimSpace(basePath), "/")
	if basePath == "" {
		return DefaultBasePath
	}
	return basePath
}

// Raw returns the underlying API client for operations without a wrapper
func (c *Client) Raw() *novelapi.APIClient {
	return c.api
}

// Tokens returns the token cache backing this client
func (c *Client) Tokens() *tokencache.Cache {
	return c.tokens
}

// BasePath returns the API base path in use
func (c *Client) BasePath() string {
	return c.api.GetConfig().BasePath
}

// SetToken replaces the current token
func (c *Client) SetToken(token string) {
	c.tokens.SetToken(token)
}

// ClearToken forgets the current token
func (c *Client) ClearToken() {
	c.tokens.ClearToken()
}

// Token returns the current token, if any
func (c *Client) Token() (string, bool) {
	return c.tokens.Token()
}

// IsAuthenticated reports whether a token is set
func (c *Client) IsAuthenticated() bool {
	_, ok := c.tokens.Token()
	return ok
}

// ErrEmptyToken is returned when the backend answers a login without a token
var ErrEmptyToken = errors.New("server returned an empty access token")

// Login authenticates with email and password and stores the access token
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	resp, err := c.api.Auth.Login(ctx, novelapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return c.acceptAuth(resp)
}

// Register creates an account and stores its access token
func (c *Client) Register(ctx context.Context, email, password, displayName string) (*User, error) {
	resp, err := c.api.Auth.Register(ctx, novelapi.RegisterRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return c.acceptAuth(resp)
}

func (c *Client) acceptAuth(resp *novelapi.AuthResponse) (*User, error) {
	if resp.AccessToken == "" {
		return nil, ErrEmptyToken
	}
	c.tokens.SetToken(resp.AccessToken)
	if resp.User != nil {
		c.log.Info("authenticated", slog.Int64("user_id", resp.User.ID))
	}
	return resp.User, nil
}

// Logout clears the stored token. The backend keeps no session to end.
func (c *Client) Logout() {
	c.tokens.ClearToken()
	c.log.Info("logged out")
}
