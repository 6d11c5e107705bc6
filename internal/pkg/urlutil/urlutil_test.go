package urlutil

import (
	"testing"
)

func TestStoryPath(t *testing.T) {
	tests := []struct {
		name    string
		storyID int64
		title   string
		want    string
	}{
		{
			name:    "with title",
			storyID: 42,
			title:   "The Dragon Path",
			want:    "/stories/42?s=the-dragon-path",
		},
		{
			name:    "without title",
			storyID: 42,
			title:   "",
			want:    "/stories/42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StoryPath(tt.storyID, tt.title)
			if got != tt.want {
				t.Errorf("StoryPath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChapterPath(t *testing.T) {
	if got := ChapterPath(3, 17); got != "/stories/3/chapters/17" {
		t.Errorf("ChapterPath() = %v", got)
	}
}

func TestBuildStoryURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{name: "plain host", baseURL: "https://novel.example.com", want: "https://novel.example.com/stories/9"},
		{name: "trailing slash", baseURL: "https://novel.example.com/", want: "https://novel.example.com/stories/9"},
		{name: "sub path", baseURL: "https://example.com/read", want: "https://example.com/read/stories/9"},
		{name: "invalid", baseURL: "://bad", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildStoryURL(tt.baseURL, 9)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BuildStoryURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("BuildStoryURL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{next: "/favorites", want: "/favorites"},
		{next: "", want: "/"},
		{next: "https://evil.example.com", want: "/"},
		{next: "//evil.example.com", want: "/"},
		{next: "/\\evil.example.com", want: "/"},
	}

	for _, tt := range tests {
		if got := SafeRedirect(tt.next, "/"); got != tt.want {
			t.Errorf("SafeRedirect(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}

func TestCoverURL(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		cover string
		want  string
	}{
		{name: "absolute", base: "http://localhost:8080", cover: "https://cdn.example.com/c.jpg", want: "https://cdn.example.com/c.jpg"},
		{name: "relative", base: "http://localhost:8080", cover: "/uploads/covers/1.jpg", want: "http://localhost:8080/uploads/covers/1.jpg"},
		{name: "relative without slash", base: "http://localhost:8080/", cover: "uploads/1.jpg", want: "http://localhost:8080/uploads/1.jpg"},
		{name: "empty", base: "http://localhost:8080", cover: "", want: PlaceholderCover},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoverURL(tt.base, tt.cover); got != tt.want {
				t.Errorf("CoverURL() = %v, want %v", got, tt.want)
			}
		})
	}
}
