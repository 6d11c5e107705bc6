package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/novel/internal/client"
	"github.com/devilmonastery/novel/internal/pkg/logger"
	"github.com/devilmonastery/novel/internal/pkg/textutil"
	"github.com/devilmonastery/novel/internal/pkg/timeutil"
)

func newChaptersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chapters",
		Aliases: []string{"chapter"},
		Short:   "List, read and export chapters",
	}

	cmd.AddCommand(newChaptersListCommand())
	cmd.AddCommand(newChaptersReadCommand())
	cmd.AddCommand(newChaptersExportCommand())
	cmd.AddCommand(newChaptersLatestCommand())

	return cmd
}

func newChaptersLatestCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "List recently updated chapters across all stories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			chapters, err := cliCtx.Client.Raw().Chapters.Latest(cmd.Context(), limit)
			if err != nil {
				return apiError("failed to list latest chapters", err)
			}
			if len(chapters) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recent chapters")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STORY\tTITLE\tCHAPTER\tCHAPTER TITLE\tUPDATED")
			for _, c := range chapters {
				updated := "-"
				if c.UpdatedAt != nil {
					updated = timeutil.FormatInTimezone(c.UpdatedAt.Time, cliCtx.Context.Display.Timezone)
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
					c.StoryID,
					textutil.Excerpt(c.DisplayStoryTitle(), 40),
					c.ChapterIndex,
					textutil.Excerpt(c.DisplayTitle(), 40),
					updated,
				)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum chapters to show")
	return cmd
}

func newChaptersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list STORY_ID",
		Short: "List a story's chapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			storyID, err := parseID("story", args[0])
			if err != nil {
				return err
			}

			chapters, err := cliCtx.Client.Raw().Chapters.List(cmd.Context(), storyID)
			if err != nil {
				return apiError("failed to list chapters", err)
			}
			if len(chapters) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No chapters yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tID\tTITLE\tTRANSLATION")
			for _, c := range chapters {
				status := c.TranslateStatus
				if status == "" {
					status = "-"
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", c.ChapterIndex, c.ID, c.Title, status)
			}
			w.Flush()
			return nil
		},
	}
}

func newChaptersReadCommand() *cobra.Command {
	var (
		raw       bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "read STORY_ID CHAPTER_ID",
		Short: "Read a chapter in the terminal",
		Long: `Read a chapter, rendered with the context's glamour theme when stdout is
a terminal. When logged in, the chapter is recorded in your reading history.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			storyID, err := parseID("story", args[0])
			if err != nil {
				return err
			}
			chapterID, err := parseID("chapter", args[1])
			if err != nil {
				return err
			}

			api := cliCtx.Client.Raw()
			chapter, err := api.Chapters.Get(cmd.Context(), storyID, chapterID)
			if err != nil {
				return apiError("failed to get chapter", err)
			}

			content := chapter.Content()
			if raw {
				content = chapter.RawContent
			}
			if content == "" {
				return fmt.Errorf("chapter %d has no content yet", chapterID)
			}

			printMarkdown(cmd.OutOrStdout(), cliCtx, chapterMarkdown(chapter.Title, content))

			if !noHistory && cliCtx.Client.IsAuthenticated() {
				if _, err := api.History.Update(cmd.Context(), client.UpdateHistoryRequest{
					StoryID:   storyID,
					ChapterID: &chapterID,
				}); err != nil {
					cliCtx.Logger.Warn("failed to update reading history", slog.String("error", err.Error()))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Show the untranslated text")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Don't record this chapter in reading history")
	return cmd
}

func newChaptersExportCommand() *cobra.Command {
	var (
		dir       string
		from, to  int
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "export STORY_ID",
		Short: "Save chapters as markdown files",
		Long: `Save a story's chapters as markdown files named NNNN-chapter-title.md.
Chapters without content are skipped.

Examples:
  novel chapters export 42 --dir ./dragon-path
  novel chapters export 42 --from 10 --to 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			storyID, err := parseID("story", args[0])
			if err != nil {
				return err
			}

			api := cliCtx.Client.Raw()
			chapters, err := api.Chapters.List(cmd.Context(), storyID)
			if err != nil {
				return apiError("failed to list chapters", err)
			}

			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}

			start := time.Now()
			var written, skipped int
			for _, summary := range chapters {
				if summary.ChapterIndex < from || (to > 0 && summary.ChapterIndex > to) {
					continue
				}

				path := filepath.Join(dir, textutil.ChapterFilename(summary.ChapterIndex, summary.Title))
				if !overwrite {
					if _, err := os.Stat(path); err == nil {
						skipped++
						continue
					}
				}

				chapter, err := api.Chapters.Get(cmd.Context(), storyID, summary.ID)
				if err != nil {
					return apiError(fmt.Sprintf("failed to get chapter %d", summary.ChapterIndex), err)
				}
				content := chapter.Content()
				if content == "" {
					skipped++
					continue
				}

				if err := os.WriteFile(path, []byte(chapterMarkdown(chapter.Title, content)), 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				written++
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", path)
			}

			logger.WithDuration(cliCtx.Logger, time.Since(start)).Info("export finished",
				slog.Int64("story_id", storyID),
				slog.Int("written", written),
				slog.Int("skipped", skipped))
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d chapters to %s (%d skipped)\n", written, dir, skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Output directory")
	cmd.Flags().IntVar(&from, "from", 0, "First chapter index to export")
	cmd.Flags().IntVar(&to, "to", 0, "Last chapter index to export (0 for all)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	return cmd
}

// chapterMarkdown formats chapter text as a markdown document
func chapterMarkdown(title, content string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	b.WriteString(textutil.NormalizeChapterText(content))
	b.WriteString("\n")
	return b.String()
}
