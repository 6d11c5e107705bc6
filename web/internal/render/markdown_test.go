package render

import (
	"strings"
	"testing"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
	}{
		{
			name:     "story description",
			input:    "# The Dragon Path\n\n## Synopsis\n\n- A young cultivator\n- An **ancient sword**\n\nTranslated from `qidian`.",
			contains: []string{"<h1>The Dragon Path</h1>", "<h2>Synopsis</h2>", "<li>A young cultivator</li>", "<strong>ancient sword</strong>", "<code>qidian</code>"},
		},
		{
			name:     "emphasis in dialogue",
			input:    "\"You *dare*?\" he said.",
			contains: []string{"<em>dare</em>", "he said."},
		},
		{
			name:     "source link",
			input:    "Read the raw text on [the source site](https://book.example.cn/42).",
			contains: []string{`href="https://book.example.cn/42"`, "the source site</a>"},
		},
		{
			name:     "numbered volumes",
			input:    "1. Volume One\n2. Volume Two",
			contains: []string{"<ol>", "<li>Volume One</li>", "<li>Volume Two</li>"},
		},
		{
			name:        "script in crawled text",
			input:       "Chapter end.<script>alert('xss')</script>",
			contains:    []string{"Chapter end."},
			notContains: []string{"<script>", "alert("},
		},
		{
			name:        "event handler attribute",
			input:       "<div onclick=\"steal()\">Next chapter</div>",
			contains:    []string{"Next chapter"},
			notContains: []string{"onclick"},
		},
		{
			name:        "javascript link",
			input:       "[next](javascript:steal())",
			notContains: []string{"javascript:"},
		},
		{
			name:  "empty description",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(Markdown(tt.input))
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Markdown(%q) = %q, missing %q", tt.input, got, want)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(got, unwanted) {
					t.Errorf("Markdown(%q) = %q, should not contain %q", tt.input, got, unwanted)
				}
			}
		})
	}
}

func TestChapterHTML(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		paragraphs int
	}{
		{name: "single line breaks", input: "First line.\nSecond line.", paragraphs: 2},
		{name: "windows line endings", input: "One.\r\nTwo.\r\nThree.", paragraphs: 3},
		{name: "blank line runs collapse", input: "One.\n\n\n\nTwo.", paragraphs: 2},
		{name: "empty chapter", input: "", paragraphs: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(ChapterHTML(tt.input))
			if n := strings.Count(got, "<p>"); n != tt.paragraphs {
				t.Errorf("ChapterHTML(%q) has %d paragraphs, want %d: %q", tt.input, n, tt.paragraphs, got)
			}
		})
	}

	got := string(ChapterHTML("He woke.<script>x()</script>"))
	if strings.Contains(got, "<script>") {
		t.Errorf("expected script to be stripped, got %q", got)
	}
}
