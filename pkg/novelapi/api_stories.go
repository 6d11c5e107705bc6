package novelapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// StoriesAPIService covers /api/stories
type StoriesAPIService service

// StoryQuery filters a story listing. GenreID takes precedence over Genre,
// and Genre over Keyword, matching the backend.
type StoryQuery struct {
	Keyword string
	GenreID int64
	Genre   string
	Page    int
	Size    int
	Sort    string
}

func (q StoryQuery) values() url.Values {
	v := url.Values{}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	if q.GenreID > 0 {
		v.Set("genreId", fmt.Sprint(q.GenreID))
	}
	if q.Genre != "" {
		v.Set("genre", q.Genre)
	}
	return pageQuery(v, q.Page, q.Size, q.Sort)
}

// List returns a page of stories
func (s *StoriesAPIService) List(ctx context.Context, q StoryQuery) (*Page[Story], error) {
	var out Page[Story]
	if err := s.client.do(ctx, http.MethodGet, "/api/stories", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListWithMetadata returns a page of stories with view and rating metadata
func (s *StoriesAPIService) ListWithMetadata(ctx context.Context, q StoryQuery) (*Page[StoryDetail], error) {
	var out Page[StoryDetail]
	if err := s.client.do(ctx, http.MethodGet, "/api/stories/with-metadata", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single story
func (s *StoriesAPIService) Get(ctx context.Context, id int64) (*Story, error) {
	var out Story
	if err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/api/stories/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Featured returns up to limit featured stories. limit <= 0 uses the server default.
func (s *StoriesAPIService) Featured(ctx context.Context, limit int) ([]StoryDetail, error) {
	var out []StoryDetail
	if err := s.client.do(ctx, http.MethodGet, "/api/stories/featured", limitQuery(limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Trending returns the most viewed stories over the last days
func (s *StoriesAPIService) Trending(ctx context.Context, limit, days int) ([]StoryDetail, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if days > 0 {
		q.Set("days", fmt.Sprint(days))
	}
	var out []StoryDetail
	if err := s.client.do(ctx, http.MethodGet, "/api/stories/trending", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IncrementView records a view of the story
func (s *StoriesAPIService) IncrementView(ctx context.Context, id int64) error {
	return s.client.do(ctx, http.MethodPost, fmt.Sprintf("/api/stories/%d/view", id), nil, nil, nil)
}
