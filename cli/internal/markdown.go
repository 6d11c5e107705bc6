package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// renderMarkdown renders markdown content, using glamour for terminal output or plain text otherwise
func renderMarkdown(out io.Writer, markdown string, theme string) string {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		// For non-terminal output (pipes, redirects), return plain markdown
		return markdown
	}

	width := 100
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 20 && w < width {
		width = w
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return markdown
	}
	rendered, err := r.Render(markdown)
	if err != nil {
		// Fall back to plain markdown if rendering fails
		return markdown
	}
	return rendered
}

// printMarkdown renders and prints markdown using the context's theme
func printMarkdown(out io.Writer, cliCtx *CliContext, markdown string) {
	theme := "auto"
	if cliCtx != nil && cliCtx.Context != nil {
		theme = cliCtx.Context.Theme()
	}
	fmt.Fprint(out, renderMarkdown(out, markdown, theme))
}
