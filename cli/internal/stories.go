package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/novel/internal/client"
	"github.com/devilmonastery/novel/internal/pkg/textutil"
	"github.com/devilmonastery/novel/internal/pkg/timeutil"
	"github.com/devilmonastery/novel/internal/pkg/urlutil"
)

func newStoriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stories",
		Aliases: []string{"story"},
		Short:   "Browse stories",
	}

	cmd.AddCommand(newStoriesListCommand())
	cmd.AddCommand(newStoriesShowCommand())
	cmd.AddCommand(newStoriesFeaturedCommand())
	cmd.AddCommand(newStoriesTrendingCommand())
	cmd.AddCommand(newStoriesRateCommand())
	cmd.AddCommand(newStoriesSimilarCommand())

	return cmd
}

func newStoriesListCommand() *cobra.Command {
	var (
		query  client.StoryQuery
		page   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stories, newest updates first",
		Long: `List stories. --genre filters by genre name and --keyword searches titles
and authors; the server applies genre before keyword.

Examples:
  novel stories list
  novel stories list --genre Fantasy --page 2
  novel stories list -q dragon --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			query.Page = max(page-1, 0)

			result, err := cliCtx.Client.Raw().Stories.ListWithMetadata(cmd.Context(), query)
			if err != nil {
				return apiError("failed to list stories", err)
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printStoryTable(cmd.OutOrStdout(), cliCtx, result.Content)
			if result.HasNext() {
				fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d, use --page %d for more\n", result.Number+1, result.TotalPages, result.Number+2)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query.Keyword, "keyword", "q", "", "Search titles and authors")
	cmd.Flags().StringVar(&query.Genre, "genre", "", "Only stories in this genre")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&query.Size, "size", 20, "Stories per page")
	cmd.Flags().StringVar(&query.Sort, "sort", "updatedAt,desc", "Sort field and direction")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw page as JSON")
	return cmd
}

func newStoriesShowCommand() *cobra.Command {
	var recentComments int

	cmd := &cobra.Command{
		Use:   "show STORY_ID",
		Short: "Show a story, its rating and recent comments",
		Long: `Show a story with its description, average rating and most recent
comments. When logged in, your own rating and similar stories are shown too.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			storyID, err := parseID("story", args[0])
			if err != nil {
				return err
			}

			api := cliCtx.Client.Raw()
			story, err := api.Stories.Get(cmd.Context(), storyID)
			if err != nil {
				return apiError("failed to get story", err)
			}
			chapters, err := api.Chapters.List(cmd.Context(), storyID)
			if err != nil {
				return apiError("failed to list chapters", err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "# %s\n\n", story.DisplayTitle())
			if author := story.DisplayAuthor(); author != "" {
				fmt.Fprintf(&b, "*by %s*\n\n", author)
			}
			if len(story.Genres) > 0 {
				names := make([]string, len(story.Genres))
				for i, g := range story.Genres {
					names[i] = g.Name
				}
				fmt.Fprintf(&b, "**Genres:** %s  \n", strings.Join(names, ", "))
			}
			fmt.Fprintf(&b, "**Chapters:** %d  \n", len(chapters))
			if rating, err := api.Ratings.Average(cmd.Context(), storyID); err != nil {
				cliCtx.Logger.Warn("failed to load story rating", slog.String("error", err.Error()))
			} else if rating.TotalRatings > 0 {
				fmt.Fprintf(&b, "**Rating:** %.1f/5 from %d ratings  \n", rating.AverageRating, rating.TotalRatings)
			} else {
				fmt.Fprintf(&b, "**Rating:** not rated yet  \n")
			}
			if cliCtx.Client.IsAuthenticated() {
				mine, err := api.Ratings.Mine(cmd.Context(), storyID)
				switch {
				case err == nil:
					fmt.Fprintf(&b, "**Your rating:** %d/5  \n", mine.Rating)
				case !client.IsNotFound(err):
					cliCtx.Logger.Warn("failed to load your rating", slog.String("error", err.Error()))
				}
			}
			commentCount, err := api.Comments.Count(cmd.Context(), storyID)
			if err != nil {
				cliCtx.Logger.Warn("failed to count comments", slog.String("error", err.Error()))
			} else {
				fmt.Fprintf(&b, "**Comments:** %d  \n", commentCount)
			}
			if story.Status != "" {
				fmt.Fprintf(&b, "**Status:** %s  \n", story.Status)
			}
			if story.UpdatedAt != nil {
				fmt.Fprintf(&b, "**Updated:** %s  \n", timeutil.FormatInTimezone(story.UpdatedAt.Time, cliCtx.Context.Display.Timezone))
			}
			if story.SourceURL != "" {
				fmt.Fprintf(&b, "**Source:** %s  \n", story.SourceURL)
			}
			if cliCtx.Context.Web.URL != "" {
				if link, err := urlutil.BuildStoryURL(cliCtx.Context.Web.URL, story.ID); err == nil {
					fmt.Fprintf(&b, "**Read online:** %s  \n", link)
				}
			}
			if desc := firstNonEmpty(story.TranslatedDescription, story.Description, story.RawDescription); desc != "" {
				fmt.Fprintf(&b, "\n%s\n", desc)
			}

			if recentComments > 0 && commentCount > 0 {
				comments, err := api.Comments.List(cmd.Context(), storyID, 0, recentComments)
				if err != nil {
					cliCtx.Logger.Warn("failed to list comments", slog.String("error", err.Error()))
				} else if len(comments.Content) > 0 {
					b.WriteString("\n## Recent comments\n\n")
					for _, c := range comments.Content {
						fmt.Fprintf(&b, "- **%s** (%s): %s\n", commentAuthor(c), formatDateTime(cliCtx, c.CreatedAt),
							strings.Join(strings.Fields(c.Content), " "))
					}
				}
			}

			// Similar stories need a token even on the public endpoint
			if cliCtx.Client.IsAuthenticated() {
				rec, err := api.Recommendations.Similar(cmd.Context(), storyID, 5)
				if err != nil {
					cliCtx.Logger.Warn("failed to load similar stories", slog.String("error", err.Error()))
				} else if len(rec.Stories) > 0 {
					b.WriteString("\n## Similar stories\n\n")
					for _, s := range rec.Stories {
						fmt.Fprintf(&b, "- %s (ID %d)\n", s.DisplayTitle(), s.ID)
					}
				}
			}

			printMarkdown(cmd.OutOrStdout(), cliCtx, b.String())
			return nil
		},
	}

	cmd.Flags().IntVar(&recentComments, "comments", 3, "Number of recent comments to show (0 hides them)")
	return cmd
}

func newStoriesFeaturedCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "featured",
		Short: "List featured stories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			stories, err := cliCtx.Client.Raw().Stories.Featured(cmd.Context(), limit)
			if err != nil {
				return apiError("failed to list featured stories", err)
			}
			printStoryTable(cmd.OutOrStdout(), cliCtx, stories)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum stories to show")
	return cmd
}

func newStoriesTrendingCommand() *cobra.Command {
	var limit, days int

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "List the most viewed stories of recent days",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			stories, err := cliCtx.Client.Raw().Stories.Trending(cmd.Context(), limit, days)
			if err != nil {
				return apiError("failed to list trending stories", err)
			}
			printStoryTable(cmd.OutOrStdout(), cliCtx, stories)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum stories to show")
	cmd.Flags().IntVar(&days, "days", 7, "Window in days")
	return cmd
}

func printStoryTable(out io.Writer, cliCtx *CliContext, stories []client.StoryDetail) {
	if len(stories) == 0 {
		fmt.Fprintln(out, "No stories found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCHAPTERS\tVIEWS\tRATING\tUPDATED")
	for _, s := range stories {
		updated := "-"
		if s.UpdatedAt != nil {
			updated = timeutil.FormatInTimezone(s.UpdatedAt.Time, cliCtx.Context.Display.Timezone)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%.1f\t%s\n",
			s.ID,
			textutil.Excerpt(s.DisplayTitle(), 40),
			textutil.Excerpt(s.DisplayAuthor(), 20),
			s.TotalChapters,
			s.ViewCount,
			s.AverageRating,
			updated,
		)
	}
	w.Flush()
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", kind, s)
	}
	return id, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
