package urlutil

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gosimple/slug"
)

// StoryPath builds the web path for a story.
// Returns a path like: /stories/{id} or /stories/{id}?s={slug} when a title is given.
// The slug is cosmetic; routing only uses the ID.
func StoryPath(storyID int64, title string) string {
	path := fmt.Sprintf("/stories/%d", storyID)
	if s := slug.Make(title); s != "" {
		path += "?s=" + url.QueryEscape(s)
	}
	return path
}

// ChapterPath builds the web path for reading a chapter.
// Returns a path like: /stories/{storyID}/chapters/{chapterID}
func ChapterPath(storyID, chapterID int64) string {
	return fmt.Sprintf("/stories/%d/chapters/%d", storyID, chapterID)
}

// BuildStoryURL builds an absolute web URL for a story on baseURL
func BuildStoryURL(baseURL string, storyID int64) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	u.Path = strings.TrimRight(u.Path, "/") + fmt.Sprintf("/stories/%d", storyID)
	return u.String(), nil
}

// SafeRedirect returns next if it is a local path, otherwise fallback.
// Guards the login form's redirect target against open redirects.
func SafeRedirect(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
