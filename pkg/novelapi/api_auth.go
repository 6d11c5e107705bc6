package novelapi

import (
	"context"
	"net/http"
)

// AuthAPIService covers /api/auth
type AuthAPIService service

// Login exchanges email and password for an access token
func (s *AuthAPIService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := s.client.do(ctx, http.MethodPost, "/api/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its first access token
func (s *AuthAPIService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := s.client.do(ctx, http.MethodPost, "/api/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
