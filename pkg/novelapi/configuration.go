// Package novelapi is a typed client for the Novel platform REST API.
//
// The client never stores credentials itself. Every request asks
// Configuration.AccessToken for the current bearer token, so whoever owns the
// token can change it between calls without rebuilding the client.
package novelapi

import (
	"net/http"
	"time"
)

// DefaultBasePath is where the Novel backend listens in development
const DefaultBasePath = "http://localhost:8080"

// Configuration stores the settings shared by every API service
type Configuration struct {
	BasePath      string
	UserAgent     string
	DefaultHeader map[string]string
	HTTPClient    *http.Client

	// AccessToken is called once per request. An empty result sends the
	// request without an Authorization header.
	AccessToken func() string
}

// NewConfiguration returns a configuration pointing at DefaultBasePath
func NewConfiguration() *Configuration {
	return &Configuration{
		BasePath:      DefaultBasePath,
		UserAgent:     "novel-go-client/1.0",
		DefaultHeader: make(map[string]string),
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// AddDefaultHeader adds a header sent with every request
func (c *Configuration) AddDefaultHeader(key, value string) {
	if c.DefaultHeader == nil {
		c.DefaultHeader = make(map[string]string)
	}
	c.DefaultHeader[key] = value
}

func (c *Configuration) accessToken() string {
	if c.AccessToken == nil {
		return ""
	}
	return c.AccessToken()
}
