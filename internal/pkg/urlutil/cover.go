package urlutil

import (
	"net/url"
	"strings"
)

// PlaceholderCover is shown for stories without a cover image
const PlaceholderCover = "/static/cover-placeholder.svg"

// CoverURL resolves a story cover against the API base path.
// Absolute URLs are returned unchanged, relative ones (e.g. /uploads/covers/1.jpg)
// are served by the API host, and an empty cover falls back to PlaceholderCover.
func CoverURL(apiBasePath, cover string) string {
	cover = strings.TrimSpace(cover)
	if cover == "" {
		return PlaceholderCover
	}
	ref, err := url.Parse(cover)
	if err != nil {
		return PlaceholderCover
	}
	if ref.IsAbs() {
		return cover
	}
	base, err := url.Parse(strings.TrimRight(apiBasePath, "/") + "/")
	if err != nil {
		return cover
	}
	return base.ResolveReference(ref).String()
}
