package handlers

import (
	"log/slog"
	"net/http"

	"github.com/devilmonastery/novel/internal/client"
	"github.com/devilmonastery/novel/internal/pkg/urlutil"
)

const similarStoriesLimit = 5

// StoryPage shows a story with its chapter list, ratings and comments
func (h *Handler) StoryPage(w http.ResponseWriter, r *http.Request) {
	storyID, ok := pathID(r, "id")
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "We couldn't find that story.")
		return
	}

	c := h.getClient(r, w)
	ctx := r.Context()

	story, err := c.Raw().Stories.Get(ctx, storyID)
	if err != nil {
		h.handleAPIError(w, r, c, err)
		return
	}

	chapters, err := c.Raw().Chapters.List(ctx, storyID)
	if err != nil {
		h.handleAPIError(w, r, c, err)
		return
	}

	var favorite *client.FavoriteStatus
	var myRating *client.Rating
	var similar *client.Recommendation
	if c.IsAuthenticated() {
		favorite, err = c.Raw().Favorites.Check(ctx, storyID)
		if client.IsSessionRejected(err) {
			h.clearSessionAndRedirect(w, r, c)
			return
		}
		if err != nil {
			h.log.Warn("failed to check favorite status",
				slog.Int64("story_id", storyID),
				slog.String("error", err.Error()))
		}

		// The backend only counts views from signed-in readers
		if err := c.Raw().Stories.IncrementView(ctx, storyID); err != nil {
			h.log.Warn("failed to record story view",
				slog.Int64("story_id", storyID),
				slog.String("error", err.Error()))
		}

		myRating, err = c.Raw().Ratings.Mine(ctx, storyID)
		if err != nil && !client.IsNotFound(err) {
			h.log.Warn("failed to load reader rating",
				slog.Int64("story_id", storyID),
				slog.String("error", err.Error()))
		}

		similar, err = c.Raw().Recommendations.Similar(ctx, storyID, similarStoriesLimit)
		if err != nil {
			h.log.Warn("failed to load similar stories",
				slog.Int64("story_id", storyID),
				slog.String("error", err.Error()))
		}
	}

	rating, err := c.Raw().Ratings.Average(ctx, storyID)
	if err != nil {
		h.log.Warn("failed to load story rating",
			slog.Int64("story_id", storyID),
			slog.String("error", err.Error()))
	}

	comments, err := c.Raw().Comments.List(ctx, storyID, 0, h.display.PageSize)
	if err != nil {
		h.log.Warn("failed to load comments",
			slog.Int64("story_id", storyID),
			slog.String("error", err.Error()))
	}

	data := h.newTemplateData(w, r)
	data["Title"] = story.DisplayTitle()
	data["Story"] = story
	data["Chapters"] = chapters
	data["Favorite"] = favorite
	data["Rating"] = rating
	data["MyRating"] = myRating
	data["Comments"] = comments
	data["Similar"] = similar
	data["CoverURL"] = urlutil.CoverURL(h.basePath, story.CoverImageURL)
	h.renderTemplate(w, "story.html", data)
}

// ChapterPage shows one chapter and records reading progress for
// signed-in readers
func (h *Handler) ChapterPage(w http.ResponseWriter, r *http.Request) {
	storyID, ok := pathID(r, "id")
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "We couldn't find that story.")
		return
	}
	chapterID, ok := pathID(r, "chapterID")
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "We couldn't find that chapter.")
		return
	}

	c := h.getClient(r, w)
	ctx := r.Context()

	chapter, err := c.Raw().Chapters.Get(ctx, storyID, chapterID)
	if err != nil {
		h.handleAPIError(w, r, c, err)
		return
	}

	story, err := c.Raw().Stories.Get(ctx, storyID)
	if err != nil {
		h.handleAPIError(w, r, c, err)
		return
	}

	chapters, err := c.Raw().Chapters.List(ctx, storyID)
	if err != nil {
		h.handleAPIError(w, r, c, err)
		return
	}
	prev, next := neighbours(chapters, chapterID)

	if c.IsAuthenticated() {
		if _, err := c.Raw().History.Update(ctx, client.UpdateHistoryRequest{
			StoryID:   storyID,
			ChapterID: &chapterID,
		}); err != nil {
			h.log.Warn("failed to update reading history",
				slog.Int64("story_id", storyID),
				slog.Int64("chapter_id", chapterID),
				slog.String("error", err.Error()))
		}
	}

	data := h.newTemplateData(w, r)
	data["Title"] = chapter.Title + " - " + story.DisplayTitle()
	data["Story"] = story
	data["Chapter"] = chapter
	data["Prev"] = prev
	data["Next"] = next
	h.renderTemplate(w, "chapter.html", data)
}

// neighbours returns the chapters before and after chapterID in list order
func neighbours(chapters []client.Chapter, chapterID int64) (prev, next *client.Chapter) {
	for i := range chapters {
		if chapters[i].ID != chapterID {
			continue
		}
		if i > 0 {
			prev = &chapters[i-1]
		}
		if i < len(chapters)-1 {
			next = &chapters[i+1]
		}
		break
	}
	return prev, next
}
