package novelapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// RatingsAPIService covers /api/ratings. Averages are public; everything
// else needs a token.
type RatingsAPIService service

// Average returns the aggregate score of a story
func (s *RatingsAPIService) Average(ctx context.Context, storyID int64) (*StoryRating, error) {
	var out StoryRating
	path := fmt.Sprintf("/api/ratings/story/%d/average", storyID)
	if err := s.client.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Mine returns the current user's rating of a story. The backend answers
// 404 when the user has not rated it.
func (s *RatingsAPIService) Mine(ctx context.Context, storyID int64) (*Rating, error) {
	var out Rating
	path := fmt.Sprintf("/api/ratings/story/%d/me", storyID)
	if err := s.client.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rate creates the current user's rating, or replaces an existing one
func (s *RatingsAPIService) Rate(ctx context.Context, req RateStoryRequest) (*Rating, error) {
	var out Rating
	if err := s.client.do(ctx, http.MethodPost, "/api/ratings", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update changes the score of a rating the current user owns
func (s *RatingsAPIService) Update(ctx context.Context, ratingID int64, rating int) (*Rating, error) {
	var out Rating
	body := struct {
		Rating int `json:"rating"`
	}{rating}
	if err := s.client.do(ctx, http.MethodPut, fmt.Sprintf("/api/ratings/%d", ratingID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CommentsAPIService covers /api/comments
type CommentsAPIService service

// List returns a page of comments on a story, newest first
func (s *CommentsAPIService) List(ctx context.Context, storyID int64, page, size int) (*Page[Comment], error) {
	var out Page[Comment]
	path := fmt.Sprintf("/api/comments/story/%d", storyID)
	if err := s.client.do(ctx, http.MethodGet, path, pageQuery(nil, page, size, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Count returns how many comments a story has
func (s *CommentsAPIService) Count(ctx context.Context, storyID int64) (int64, error) {
	var out int64
	path := fmt.Sprintf("/api/comments/story/%d/count", storyID)
	if err := s.client.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return 0, err
	}
	return out, nil
}

// Create posts a comment as the current user
func (s *CommentsAPIService) Create(ctx context.Context, req CreateCommentRequest) (*Comment, error) {
	var out Comment
	if err := s.client.do(ctx, http.MethodPost, "/api/comments", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecommendationsAPIService covers /api/recommendations
type RecommendationsAPIService service

// Similar returns stories close to the given one. Despite the path the
// backend still requires a token.
func (s *RecommendationsAPIService) Similar(ctx context.Context, storyID int64, limit int) (*Recommendation, error) {
	var out Recommendation
	path := fmt.Sprintf("/api/recommendations/similar/%d/public", storyID)
	if err := s.client.do(ctx, http.MethodGet, path, limitQuery(limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": {fmt.Sprint(limit)}}
}
