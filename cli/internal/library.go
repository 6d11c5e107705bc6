package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/novel/internal/pkg/timeutil"
)

func newGenresCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "genres",
		Aliases: []string{"genre"},
		Short:   "Browse genres",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List genres",
		RunE: func(cmd *cobra.Command, args []string) error {
			genres, err := getCliContext(cmd).Client.Raw().Genres.List(cmd.Context())
			if err != nil {
				return apiError("failed to list genres", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
			for _, g := range genres {
				fmt.Fprintf(w, "%d\t%s\t%s\n", g.ID, g.Name, g.Description)
			}
			w.Flush()
			return nil
		},
	})

	return cmd
}

func newFavoritesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage your favorite stories",
	}

	cmd.AddCommand(newFavoritesListCommand())
	cmd.AddCommand(newFavoriteChangeCommand("add", "Add a story to favorites", true))
	cmd.AddCommand(newFavoriteChangeCommand("remove", "Remove a story from favorites", false))

	return cmd
}

func newFavoritesListCommand() *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your favorite stories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			result, err := cliCtx.Client.Raw().Favorites.List(cmd.Context(), max(page-1, 0), size)
			if err != nil {
				return apiError("failed to list favorites", err)
			}
			if len(result.Content) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No favorites yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tADDED")
			for _, f := range result.Content {
				if f.Story == nil {
					continue
				}
				added := "-"
				if f.CreatedAt != nil {
					added = timeutil.FormatInTimezone(f.CreatedAt.Time, cliCtx.Context.Display.Timezone)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", f.Story.ID, f.Story.DisplayTitle(), f.Story.DisplayAuthor(), added)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 20, "Favorites per page")
	return cmd
}

func newFavoriteChangeCommand(use, short string, add bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " STORY_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			storyID, err := parseID("story", args[0])
			if err != nil {
				return err
			}

			favorites := cliCtx.Client.Raw().Favorites
			if add {
				if _, err := favorites.Add(cmd.Context(), storyID); err != nil {
					return apiError("failed to add favorite", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Story %d added to favorites\n", storyID)
			} else {
				if err := favorites.Remove(cmd.Context(), storyID); err != nil {
					return apiError("failed to remove favorite", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Story %d removed from favorites\n", storyID)
			}

			if count, err := favorites.Count(cmd.Context(), storyID); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "  %d readers have favorited it\n", count)
			}
			return nil
		},
	}
}

func newHistoryCommand() *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show your reading history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			result, err := cliCtx.Client.Raw().History.List(cmd.Context(), max(page-1, 0), size)
			if err != nil {
				return apiError("failed to get reading history", err)
			}
			if len(result.Content) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing read yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STORY\tTITLE\tCHAPTER\tPROGRESS\tLAST READ")
			for _, h := range result.Content {
				if h.Story == nil {
					continue
				}
				chapter := "-"
				if h.ChapterID != nil {
					chapter = fmt.Sprintf("%d", *h.ChapterID)
					if h.ChapterTitle != "" {
						chapter += " " + h.ChapterTitle
					}
				}
				lastRead := "-"
				if h.LastReadAt != nil {
					lastRead = timeutil.FormatInTimezone(h.LastReadAt.Time, cliCtx.Context.Display.Timezone)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d%%\t%s\n", h.Story.ID, h.Story.DisplayTitle(), chapter, h.ProgressPercent, lastRead)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 20, "Entries per page")
	return cmd
}
