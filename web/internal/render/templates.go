package render

import (
	"crypto/md5"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/devilmonastery/novel/internal/pkg/textutil"
	"github.com/devilmonastery/novel/internal/pkg/timeutil"
	"github.com/devilmonastery/novel/internal/pkg/urlutil"
	"github.com/devilmonastery/novel/pkg/novelapi"
)

// Version is stamped into asset URLs so browsers refetch after a deploy.
// Set at build time with -ldflags "-X .../render.Version=...".
var Version = "dev"

// TemplateSet holds all parsed page templates
// Each page is stored as a completely separate template.Template
// to avoid {{define "content"}} block collisions
type TemplateSet struct {
	pages map[string]*template.Template
	mu    sync.RWMutex
}

// Execute renders pageName (e.g. "story.html") through the "base" layout
func (ts *TemplateSet) Execute(w io.Writer, pageName string, data interface{}) error {
	ts.mu.RLock()
	tmpl, ok := ts.pages[pageName]
	ts.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", pageName)
	}

	return tmpl.ExecuteTemplate(w, "base", data)
}

// Has checks if a template exists
func (ts *TemplateSet) Has(pageName string) bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	_, ok := ts.pages[pageName]
	return ok
}

// Names returns all available template names
func (ts *TemplateSet) Names() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	names := make([]string, 0, len(ts.pages))
	for name := range ts.pages {
		names = append(names, name)
	}
	return names
}

// FuncMap returns the functions available to every template.
// timezone controls how backend timestamps are displayed.
func FuncMap(timezone string) template.FuncMap {
	return template.FuncMap{
		"renderMarkdown": Markdown,
		"chapterHTML":    ChapterHTML,
		"excerpt":        textutil.Excerpt,
		"storyPath":      urlutil.StoryPath,
		"chapterPath":    urlutil.ChapterPath,
		"formatTime": func(d *novelapi.DateTime) string {
			if d == nil {
				return "-"
			}
			return timeutil.FormatInTimezone(d.Time, timezone)
		},
		"ago": func(d *novelapi.DateTime) string {
			if d == nil {
				return "never"
			}
			return timeutil.Ago(d.Time, time.Now())
		},
		"dict": func(values ...interface{}) map[string]interface{} {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil
				}
				dict[key] = values[i+1]
			}
			return dict
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"rating": func(r float64) string {
			return fmt.Sprintf("%.1f", r)
		},
		"stars": func() []int {
			return []int{5, 4, 3, 2, 1}
		},
		"initials": func(name string) string {
			words := strings.Fields(name)
			if len(words) == 0 {
				return "?"
			}

			var result strings.Builder
			for i, word := range words {
				if i >= 2 { // Maximum of 2 initials
					break
				}
				result.WriteString(strings.ToUpper(string([]rune(word)[0])))
			}
			return result.String()
		},
		"genreColor": func(name string) string {
			hash := md5.Sum([]byte(strings.ToLower(name)))
			colors := []string{"blue", "green", "purple", "pink", "indigo", "teal", "orange", "rose"}
			return colors[int(hash[0])%len(colors)]
		},
		"assetURL": func(filename string) string {
			return "/static/" + Version + "/" + filename
		},
		"coverURL":       urlutil.CoverURL,
	}
}

// LoadTemplates parses and loads all HTML templates with custom functions
// If path is empty, defaults to "web/templates"
// Returns a TemplateSet where each page is completely isolated
func LoadTemplates(path, timezone string) (*TemplateSet, error) {
	if path == "" {
		path = "web/templates"
	}
	funcMap := FuncMap(timezone)

	baseFile := filepath.Join(path, "layouts", "base.html")
	componentFiles, err := filepath.Glob(filepath.Join(path, "components", "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list component templates: %w", err)
	}

	pageFiles, err := filepath.Glob(filepath.Join(path, "pages", "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list page templates: %w", err)
	}

	if len(pageFiles) == 0 {
		return nil, fmt.Errorf("no page templates found in %s/pages", path)
	}

	ts := &TemplateSet{
		pages: make(map[string]*template.Template),
	}

	// Parse each page into its OWN completely isolated template
	for _, pageFile := range pageFiles {
		pageName := filepath.Base(pageFile)

		filesToParse := []string{baseFile}
		filesToParse = append(filesToParse, componentFiles...)
		filesToParse = append(filesToParse, pageFile)

		pageTemplate, err := template.New("base").Funcs(funcMap).ParseFiles(filesToParse...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", pageName, err)
		}

		ts.pages[pageName] = pageTemplate
	}

	return ts, nil
}

// LogTemplateNames logs all available template names
func LogTemplateNames(ts *TemplateSet) {
	slog.Debug("loaded templates", slog.Any("names", ts.Names()))
}
