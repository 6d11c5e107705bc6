package render

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"

	"github.com/devilmonastery/novel/internal/pkg/textutil"
)

// policy is safe for concurrent use once built
var policy = bluemonday.UGCPolicy()

// Markdown converts markdown text to safe HTML for use in templates
func Markdown(markdown string) template.HTML {
	unsafe := blackfriday.Run([]byte(markdown))
	return template.HTML(policy.SanitizeBytes(unsafe))
}

// ChapterHTML renders crawled or translated chapter text. Single line breaks
// in the source become paragraphs.
func ChapterHTML(content string) template.HTML {
	return Markdown(textutil.NormalizeChapterText(content))
}
