package novelapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ChaptersAPIService covers /api/stories/{storyId}/chapters and /api/chapters
type ChaptersAPIService service

// List returns every chapter of a story
func (s *ChaptersAPIService) List(ctx context.Context, storyID int64) ([]Chapter, error) {
	var out []Chapter
	path := fmt.Sprintf("/api/stories/%d/chapters", storyID)
	if err := s.client.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one chapter with its content
func (s *ChaptersAPIService) Get(ctx context.Context, storyID, chapterID int64) (*Chapter, error) {
	var out Chapter
	path := fmt.Sprintf("/api/stories/%d/chapters/%d", storyID, chapterID)
	if err := s.client.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Latest returns recently updated chapters across all stories. Needs a token.
func (s *ChaptersAPIService) Latest(ctx context.Context, limit int) ([]LatestChapter, error) {
	var out []LatestChapter
	if err := s.client.do(ctx, http.MethodGet, "/api/chapters/latest", limitQuery(limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenresAPIService covers /api/genres
type GenresAPIService service

// List returns all genres
func (s *GenresAPIService) List(ctx context.Context) ([]Genre, error) {
	var out []Genre
	if err := s.client.do(ctx, http.MethodGet, "/api/genres", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByName looks a genre up by its exact name
func (s *GenresAPIService) GetByName(ctx context.Context, name string) (*Genre, error) {
	var out Genre
	path := "/api/genres/name/" + url.PathEscape(name)
	if err := s.client.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FavoritesAPIService covers /api/favorites. Every call needs a token.
type FavoritesAPIService service

// List returns a page of the current user's favorites
func (s *FavoritesAPIService) List(ctx context.Context, page, size int) (*Page[Favorite], error) {
	var out Page[Favorite]
	if err := s.client.do(ctx, http.MethodGet, "/api/favorites", pageQuery(nil, page, size, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Add saves a story to the current user's favorites
func (s *FavoritesAPIService) Add(ctx context.Context, storyID int64) (*Favorite, error) {
	var out Favorite
	if err := s.client.do(ctx, http.MethodPost, fmt.Sprintf("/api/favorites/%d", storyID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Remove drops a story from the current user's favorites
func (s *FavoritesAPIService) Remove(ctx context.Context, storyID int64) error {
	return s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/api/favorites/%d", storyID), nil, nil, nil)
}

// Check reports whether the current user saved the story
func (s *FavoritesAPIService) Check(ctx context.Context, storyID int64) (*FavoriteStatus, error) {
	var out FavoriteStatus
	if err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/api/favorites/check/%d", storyID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Count returns how many users saved the story
func (s *FavoritesAPIService) Count(ctx context.Context, storyID int64) (int64, error) {
	var out int64
	if err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/api/favorites/count/%d", storyID), nil, nil, &out); err != nil {
		return 0, err
	}
	return out, nil
}

// HistoryAPIService covers /api/history
type HistoryAPIService service

// List returns the current user's reading history, most recent first
func (s *HistoryAPIService) List(ctx context.Context, page, size int) (*Page[ReadingHistory], error) {
	var out Page[ReadingHistory]
	if err := s.client.do(ctx, http.MethodGet, "/api/history", pageQuery(nil, page, size, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update records reading progress for a story
func (s *HistoryAPIService) Update(ctx context.Context, req UpdateHistoryRequest) (*ReadingHistory, error) {
	var out ReadingHistory
	if err := s.client.do(ctx, http.MethodPost, "/api/history", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UsersAPIService covers /api/user
type UsersAPIService service

// Profile returns the account that owns the current token
func (s *UsersAPIService) Profile(ctx context.Context) (*User, error) {
	var out User
	if err := s.client.do(ctx, http.MethodGet, "/api/user/profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
