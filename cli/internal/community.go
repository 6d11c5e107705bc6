package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/novel/internal/client"
	"github.com/devilmonastery/novel/internal/pkg/textutil"
	"github.com/devilmonastery/novel/internal/pkg/timeutil"
)

const maxCommentLength = 5000

func newCommentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comments",
		Aliases: []string{"comment"},
		Short:   "Read and post story comments",
	}

	cmd.AddCommand(newCommentsListCommand())
	cmd.AddCommand(newCommentsAddCommand())

	return cmd
}

func newCommentsListCommand() *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "list STORY_ID",
		Short: "List comments on a story, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			storyID, err := parseID("story", args[0])
			if err != nil {
				return err
			}

			result, err := cliCtx.Client.Raw().Comments.List(cmd.Context(), storyID, max(page-1, 0), size)
			if err != nil {
				return apiError("failed to list comments", err)
			}
			if len(result.Content) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No comments yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tREADER\tPOSTED\tCOMMENT")
			for _, c := range result.Content {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					c.ID,
					commentAuthor(c),
					formatDateTime(cliCtx, c.CreatedAt),
					textutil.Excerpt(strings.Join(strings.Fields(c.Content), " "), 60),
				)
			}
			w.Flush()
			if result.HasNext() {
				fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d, use --page %d for more\n", result.Number+1, result.TotalPages, result.Number+2)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 20, "Comments per page")
	return cmd
}

func newCommentsAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add STORY_ID [TEXT]",
		Short: "Post a comment on a story",
		Long: `Post a comment on a story. Without TEXT the comment is read from stdin.

Examples:
  novel comments add 7 "Loved the duel"
  novel comments add 7 < review.txt`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			storyID, err := parseID("story", args[0])
			if err != nil {
				return err
			}

			var content string
			if len(args) == 2 {
				content = args[1]
			} else {
				data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 4*maxCommentLength+1))
				if err != nil {
					return fmt.Errorf("failed to read comment: %w", err)
				}
				content = string(data)
			}
			content = strings.TrimSpace(content)
			if content == "" {
				return fmt.Errorf("comment is empty")
			}
			if n := utf8.RuneCountInString(content); n > maxCommentLength {
				return fmt.Errorf("comment is %d characters, the limit is %d", n, maxCommentLength)
			}

			comment, err := cliCtx.Client.Raw().Comments.Create(cmd.Context(), client.CreateCommentRequest{
				StoryID: storyID,
				Content: content,
			})
			if err != nil {
				return apiError("failed to post comment", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Comment %d posted on story %d\n", comment.ID, storyID)
			return nil
		},
	}
}

func newStoriesRateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rate STORY_ID RATING",
		Short: "Rate a story from 1 to 5 stars",
		Long: `Rate a story from 1 to 5 stars. Rating a story again replaces your
earlier score.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			storyID, err := parseID("story", args[0])
			if err != nil {
				return err
			}
			score, err := strconv.Atoi(args[1])
			if err != nil || score < 1 || score > 5 {
				return fmt.Errorf("rating must be a whole number from 1 to 5, got %q", args[1])
			}

			api := cliCtx.Client.Raw()
			if _, err := api.Ratings.Rate(cmd.Context(), client.RateStoryRequest{StoryID: storyID, Rating: score}); err != nil {
				return apiError("failed to rate story", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Rated story %d %d/5\n", storyID, score)

			if avg, err := api.Ratings.Average(cmd.Context(), storyID); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "  Average is now %.1f from %d ratings\n", avg.AverageRating, avg.TotalRatings)
			}
			return nil
		},
	}
}

func newStoriesSimilarCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "similar STORY_ID",
		Short: "List stories similar to a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			storyID, err := parseID("story", args[0])
			if err != nil {
				return err
			}

			rec, err := cliCtx.Client.Raw().Recommendations.Similar(cmd.Context(), storyID, limit)
			if err != nil {
				return apiError("failed to find similar stories", err)
			}
			if len(rec.Stories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No similar stories found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tAUTHOR")
			for _, s := range rec.Stories {
				fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, textutil.Excerpt(s.DisplayTitle(), 40), textutil.Excerpt(s.DisplayAuthor(), 20))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum stories to show")
	return cmd
}

func commentAuthor(c client.Comment) string {
	if c.UserName != "" {
		return c.UserName
	}
	return fmt.Sprintf("reader %d", c.UserID)
}

func formatDateTime(cliCtx *CliContext, d *client.DateTime) string {
	if d == nil {
		return "-"
	}
	return timeutil.FormatInTimezone(d.Time, cliCtx.Context.Display.Timezone)
}
