package textutil

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
)

// blankLines matches runs of three or more newlines
var blankLines = regexp.MustCompile(`\n{3,}`)

// Excerpt returns the first max runes of text with whitespace collapsed,
// adding an ellipsis when it was cut.
func Excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:max])
	// Prefer breaking on a word boundary
	if runes[max] != ' ' {
		if idx := strings.LastIndex(cut, " "); idx > len(cut)/2 {
			cut = cut[:idx]
		}
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// ChapterFilename builds a stable export filename like 0007-the-return.md
func ChapterFilename(index int, title string) string {
	s := slug.Make(title)
	if s == "" {
		s = "chapter"
	}
	return fmt.Sprintf("%04d-%s.md", index, s)
}

// NormalizeChapterText converts crawled chapter text into markdown paragraphs.
// Line endings are unified and runs of blank lines collapse to one.
func NormalizeChapterText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")
	// Crawled text often uses single newlines between paragraphs
	if !strings.Contains(text, "\n\n") {
		text = strings.ReplaceAll(text, "\n", "\n\n")
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
}
