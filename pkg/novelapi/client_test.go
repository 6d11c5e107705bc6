package novelapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token func() string) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := NewConfiguration()
	cfg.BasePath = srv.URL
	cfg.AccessToken = token
	return NewAPIClient(cfg)
}

func TestAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name     string
		token    func() string
		expected string
	}{
		{name: "token present", token: func() string { return "abc" }, expected: "Bearer abc"},
		{name: "empty token", token: func() string { return "" }, expected: ""},
		{name: "nil provider", token: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				w.Write([]byte(`{"id":1,"email":"a@b.c","displayName":"A","active":true,"role":{"id":2,"name":"USER","description":"Regular reader","createdAt":"2023-12-01T00:00:00"}}`))
			}, tt.token)

			if _, err := client.Users.Profile(context.Background()); err != nil {
				t.Fatalf("Profile() error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Authorization = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAccessTokenReadPerRequest(t *testing.T) {
	var seen []string
	current := ""
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}, func() string { return current })

	ctx := context.Background()
	client.Genres.List(ctx)
	current = "first"
	client.Genres.List(ctx)
	current = "second"
	client.Genres.List(ctx)

	want := []string{"", "Bearer first", "Bearer second"}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("request %d Authorization = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestStoryListQuery(t *testing.T) {
	var query map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stories" {
			t.Errorf("path = %q", r.URL.Path)
		}
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(`{"content":[{"id":7,"title":"T","translatedTitle":"Translated","createdAt":"2025-12-13T10:00:00"}],
			"totalElements":1,"totalPages":1,"number":0,"size":20,"first":true,"last":true}`))
	}, nil)

	page, err := client.Stories.List(context.Background(), StoryQuery{Keyword: "dragon", GenreID: 3, Page: 2, Size: 10})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	expected := map[string]string{"keyword": "dragon", "genreId": "3", "page": "2", "size": "10"}
	for k, v := range expected {
		if query[k] != v {
			t.Errorf("query[%q] = %q, want %q", k, query[k], v)
		}
	}
	if len(page.Content) != 1 || page.Content[0].DisplayTitle() != "Translated" {
		t.Fatalf("unexpected page content: %+v", page.Content)
	}
	want := time.Date(2025, 12, 13, 10, 0, 0, 0, time.UTC)
	if !page.Content[0].CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", page.Content[0].CreatedAt, want)
	}
	if page.HasNext() {
		t.Error("expected last page")
	}
}

func TestLoginPostsCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var req LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "reader@example.com" || req.Password != "secret1" {
			t.Errorf("unexpected body %+v", req)
		}
		w.Write([]byte(`{"accessToken":"tok","refreshToken":"ref","user":{"id":1,"email":"reader@example.com","displayName":"Reader","avatarUrl":null,"createdAt":"2024-01-01T09:30:00","active":true,"role":{"id":2,"name":"USER","description":"Regular reader","createdAt":"2023-12-01T00:00:00"}}}`))
	}, nil)

	resp, err := client.Auth.Login(context.Background(), LoginRequest{Email: "reader@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if resp.AccessToken != "tok" || resp.User == nil || resp.User.ID != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	role := resp.User.Role
	if role == nil || role.ID != 2 || role.Name != "USER" || role.Description != "Regular reader" || role.CreatedAt == nil {
		t.Errorf("unexpected role %+v", role)
	}
	if !resp.User.Active || resp.User.CreatedAt == nil {
		t.Errorf("unexpected user %+v", resp.User)
	}
}

func TestUserWithoutRole(t *testing.T) {
	var u *User
	if u.RoleName() != "" {
		t.Error("nil user should have no role")
	}
	u = &User{ID: 1}
	if u.RoleName() != "" {
		t.Error("user without role should have no role name")
	}
}

func TestSessionRejection(t *testing.T) {
	tests := []struct {
		name          string
		token         string
		status        int
		body          string
		rejected      bool
		loginRequired bool
	}{
		{name: "bare 403 with token", token: "stale", status: 403, rejected: true, loginRequired: true},
		{name: "bare 403 anonymous", status: 403, loginRequired: true},
		{name: "403 with message", token: "abc", status: 403, body: `{"status":403,"message":"You can only update your own ratings"}`},
		{name: "401 with token", token: "abc", status: 401, body: `{"status":401,"message":"Token expired"}`, rejected: true, loginRequired: true},
		{name: "404 with token", token: "abc", status: 404, body: `{"status":404,"message":"Not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, func() string { return tt.token })

			_, err := client.Favorites.List(context.Background(), 0, 0)
			if IsSessionRejected(err) != tt.rejected {
				t.Errorf("IsSessionRejected = %v, want %v", IsSessionRejected(err), tt.rejected)
			}
			if IsLoginRequired(err) != tt.loginRequired {
				t.Errorf("IsLoginRequired = %v, want %v", IsLoginRequired(err), tt.loginRequired)
			}
			if tt.status == 403 && !IsForbidden(err) {
				t.Error("expected IsForbidden")
			}
		})
	}
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		unauthorized bool
		notFound     bool
		message      string
	}{
		{
			name:         "unauthorized",
			status:       401,
			body:         `{"status":401,"message":"Invalid email or password"}`,
			unauthorized: true,
			message:      "Invalid email or password",
		},
		{
			name:     "not found",
			status:   404,
			body:     `{"status":404,"message":"Story not found with id: 9"}`,
			notFound: true,
			message:  "Story not found with id: 9",
		},
		{
			name:   "validation",
			status: 400,
			body:   `{"status":400,"errors":{"email":"Email must be valid"}}`,
		},
		{
			name:   "non json body",
			status: 502,
			body:   `<html>bad gateway</html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, nil)

			_, err := client.Stories.Get(context.Background(), 9)
			if err == nil {
				t.Fatal("expected error")
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if IsUnauthorized(err) != tt.unauthorized {
				t.Errorf("IsUnauthorized = %v", IsUnauthorized(err))
			}
			if IsNotFound(err) != tt.notFound {
				t.Errorf("IsNotFound = %v", IsNotFound(err))
			}
			if apiErr.Message != tt.message {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.message)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &APIError{StatusCode: 400, Errors: map[string]string{"password": "too short", "email": "invalid"}}
	want := "novel api error 400: email: invalid; password: too short"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestFavoritesCheckAndCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/favorites/check/5":
			w.Write([]byte(`{"isFavorite":true,"favoriteCount":12}`))
		case "/api/favorites/count/5":
			w.Write([]byte(`12`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, func() string { return "abc" })

	ctx := context.Background()
	status, err := client.Favorites.Check(ctx, 5)
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if !status.IsFavorite || status.FavoriteCount != 12 {
		t.Errorf("unexpected status %+v", status)
	}
	count, err := client.Favorites.Count(ctx, 5)
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 12 {
		t.Errorf("Count() = %d, want 12", count)
	}
}

func TestRatings(t *testing.T) {
	var posted, put map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /api/ratings/story/7/average":
			w.Write([]byte(`{"storyId":7,"averageRating":4.5,"totalRatings":8}`))
		case "GET /api/ratings/story/7/me":
			w.Write([]byte(`{"id":5,"userId":3,"userName":"Reader","storyId":7,"rating":4,"createdAt":"2024-03-01T12:00:00"}`))
		case "GET /api/ratings/story/8/me":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":404,"message":"Rating not found for user 3 and story 8"}`))
		case "POST /api/ratings":
			json.NewDecoder(r.Body).Decode(&posted)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":5,"storyId":7,"rating":3}`))
		case "PUT /api/ratings/5":
			json.NewDecoder(r.Body).Decode(&put)
			w.Write([]byte(`{"id":5,"storyId":7,"rating":2}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}, func() string { return "abc" })
	ctx := context.Background()

	avg, err := client.Ratings.Average(ctx, 7)
	if err != nil || avg.AverageRating != 4.5 || avg.TotalRatings != 8 {
		t.Errorf("Average() = %+v, %v", avg, err)
	}
	mine, err := client.Ratings.Mine(ctx, 7)
	if err != nil || mine.ID != 5 || mine.Rating != 4 || mine.UserName != "Reader" {
		t.Errorf("Mine() = %+v, %v", mine, err)
	}
	if _, err := client.Ratings.Mine(ctx, 8); !IsNotFound(err) {
		t.Errorf("Mine() unrated error = %v, want 404", err)
	}

	rated, err := client.Ratings.Rate(ctx, RateStoryRequest{StoryID: 7, Rating: 3})
	if err != nil || rated.Rating != 3 {
		t.Errorf("Rate() = %+v, %v", rated, err)
	}
	if posted["storyId"] != float64(7) || posted["rating"] != float64(3) {
		t.Errorf("Rate() body = %v", posted)
	}

	updated, err := client.Ratings.Update(ctx, 5, 2)
	if err != nil || updated.Rating != 2 {
		t.Errorf("Update() = %+v, %v", updated, err)
	}
	if len(put) != 1 || put["rating"] != float64(2) {
		t.Errorf("Update() body = %v", put)
	}
}

func TestComments(t *testing.T) {
	var query string
	var created CreateCommentRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /api/comments/story/7":
			query = r.URL.RawQuery
			w.Write([]byte(`{"content":[{"id":1,"userId":4,"userName":"Lin","storyId":7,"content":"Loved the duel.","createdAt":"2024-03-02T08:00:00"}],"totalElements":21,"number":1,"size":10,"totalPages":3,"last":false}`))
		case "GET /api/comments/story/7/count":
			w.Write([]byte(`21`))
		case "POST /api/comments":
			json.NewDecoder(r.Body).Decode(&created)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":22,"userId":3,"storyId":7,"content":"Great"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}, func() string { return "abc" })
	ctx := context.Background()

	page, err := client.Comments.List(ctx, 7, 1, 10)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if query != "page=1&size=10" {
		t.Errorf("List() query = %q", query)
	}
	if len(page.Content) != 1 || page.Content[0].UserName != "Lin" || !page.HasNext() {
		t.Errorf("unexpected page %+v", page)
	}

	count, err := client.Comments.Count(ctx, 7)
	if err != nil || count != 21 {
		t.Errorf("Count() = %d, %v", count, err)
	}

	comment, err := client.Comments.Create(ctx, CreateCommentRequest{StoryID: 7, Content: "Great"})
	if err != nil || comment.ID != 22 {
		t.Errorf("Create() = %+v, %v", comment, err)
	}
	if created.StoryID != 7 || created.Content != "Great" {
		t.Errorf("Create() body = %+v", created)
	}
}

func TestLatestChaptersAndSimilar(t *testing.T) {
	queries := map[string]string{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries[r.URL.Path] = r.URL.RawQuery
		switch r.URL.Path {
		case "/api/chapters/latest":
			w.Write([]byte(`[{"id":12,"storyId":7,"storyTitle":"Long Road","storyTranslatedTitle":"The Dragon Path","chapterIndex":2,"title":"Jian","translatedTitle":"The Sword","updatedAt":"2024-03-01T12:00:00"}]`))
		case "/api/recommendations/similar/7/public":
			w.Write([]byte(`{"stories":[{"id":9,"title":"Sword Saint"}],"type":"CONTENT_BASED","totalCount":1,"explanation":"Shares genres"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, func() string { return "abc" })
	ctx := context.Background()

	latest, err := client.Chapters.Latest(ctx, 5)
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if queries["/api/chapters/latest"] != "limit=5" {
		t.Errorf("Latest() query = %q", queries["/api/chapters/latest"])
	}
	if len(latest) != 1 || latest[0].DisplayStoryTitle() != "The Dragon Path" || latest[0].DisplayTitle() != "The Sword" {
		t.Errorf("unexpected latest chapters %+v", latest)
	}

	rec, err := client.Recommendations.Similar(ctx, 7, 0)
	if err != nil {
		t.Fatalf("Similar() error: %v", err)
	}
	if q := queries["/api/recommendations/similar/7/public"]; q != "" {
		t.Errorf("Similar() with no limit sent query %q", q)
	}
	if len(rec.Stories) != 1 || rec.Stories[0].ID != 9 || rec.Type != "CONTENT_BASED" {
		t.Errorf("unexpected recommendation %+v", rec)
	}
}

func TestEmptyBodyIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, nil)

	if err := client.Stories.IncrementView(context.Background(), 1); err != nil {
		t.Errorf("IncrementView() error: %v", err)
	}
	if err := client.Favorites.Remove(context.Background(), 1); err != nil {
		t.Errorf("Remove() error: %v", err)
	}
}

func TestDateTimeParsing(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "local date time", input: `"2025-12-13T10:00:00"`, want: time.Date(2025, 12, 13, 10, 0, 0, 0, time.UTC)},
		{name: "fractional seconds", input: `"2025-12-13T10:00:00.123456"`, want: time.Date(2025, 12, 13, 10, 0, 0, 123456000, time.UTC)},
		{name: "rfc3339", input: `"2025-12-13T10:00:00Z"`, want: time.Date(2025, 12, 13, 10, 0, 0, 0, time.UTC)},
		{name: "null", input: `null`, want: time.Time{}},
		{name: "garbage", input: `"yesterday"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d DateTime
			err := json.Unmarshal([]byte(tt.input), &d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !d.Equal(tt.want) {
				t.Errorf("got %v, want %v", d.Time, tt.want)
			}
		})
	}
}
