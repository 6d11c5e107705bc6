package session

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devilmonastery/novel/internal/tokencache"
)

var (
	// ErrNoToken is returned when no token is found in the session
	ErrNoToken = errors.New("no token in session")

	// ErrInvalidToken is returned when the token cannot be parsed
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingSubject is returned when the token names no user
	ErrMissingSubject = errors.New("token missing subject claim")
)

// Claims is what the UI needs to know about the signed-in reader
type Claims struct {
	Subject     string
	Email       string
	UserID      string
	DisplayName string
	Role        string
	ExpiresAt   time.Time
}

// Name returns the best available label for the reader
func (c *Claims) Name() string {
	switch {
	case c.DisplayName != "":
		return c.DisplayName
	case c.Email != "":
		return c.Email
	default:
		return c.Subject
	}
}

// ParseClaims reads a backend access token without verifying it; the backend
// verifies every request. Expired tokens return ErrTokenExpired.
func ParseClaims(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	claims, err := parseMapClaims(tokenString)
	if err != nil {
		return nil, err
	}

	out := &Claims{
		Subject:     stringClaim(claims, "sub"),
		Email:       stringClaim(claims, "email"),
		UserID:      stringClaim(claims, "userId", "user_id", "uid"),
		DisplayName: stringClaim(claims, "displayName", "display_name", "name"),
		Role:        stringClaim(claims, "role"),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
		if time.Now().After(exp.Time) {
			return nil, ErrTokenExpired
		}
	}

	// The backend uses the email address as the subject
	if out.Email == "" && strings.Contains(out.Subject, "@") {
		out.Email = out.Subject
	}
	if out.Subject == "" && out.UserID == "" {
		return nil, ErrMissingSubject
	}
	return out, nil
}

// IsTokenExpired checks if a JWT token is expired without extracting all claims
// Returns true if expired or if the token cannot be parsed
func IsTokenExpired(tokenString string) bool {
	if tokenString == "" {
		return true
	}
	claims, err := parseMapClaims(tokenString)
	if err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// No expiration claim means we can't determine - treat as not expired
		return false
	}
	return time.Now().After(exp.Time)
}

func parseMapClaims(tokenString string) (jwt.MapClaims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func stringClaim(claims jwt.MapClaims, names ...string) string {
	for _, name := range names {
		switch v := claims[name].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			// Numeric IDs arrive as JSON numbers
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// CurrentUser returns the claims of the session's token. Expired or
// unreadable tokens are reported as errors so callers treat them as logged out.
func (m *Manager) CurrentUser(r *http.Request) (*Claims, error) {
	sess, err := m.GetSession(r)
	if err != nil {
		return nil, ErrNoToken
	}
	token, _ := sess.Values[tokencache.DefaultKey].(string)
	return ParseClaims(token)
}
