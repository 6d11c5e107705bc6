package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/devilmonastery/novel/internal/client"
	"github.com/devilmonastery/novel/internal/pkg/urlutil"
)

const maxCommentLength = 5000

// RateStory saves the reader's 1-5 star rating and returns to the story
func (h *Handler) RateStory(w http.ResponseWriter, r *http.Request) {
	storyID, ok := pathID(r, "id")
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "We couldn't find that story.")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	back := urlutil.SafeRedirect(r.PostFormValue("next"), urlutil.StoryPath(storyID, ""))

	score, err := strconv.Atoi(r.PostFormValue("rating"))
	if err != nil || score < 1 || score > 5 {
		h.flash(w, r, "Pick a rating between 1 and 5 stars.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	c := h.getClient(r, w)
	ctx := r.Context()

	// An existing rating is changed in place, otherwise a new one is created
	if ratingID, perr := strconv.ParseInt(r.PostFormValue("rating_id"), 10, 64); perr == nil && ratingID > 0 {
		_, err = c.Raw().Ratings.Update(ctx, ratingID, score)
	} else {
		_, err = c.Raw().Ratings.Rate(ctx, client.RateStoryRequest{StoryID: storyID, Rating: score})
	}
	if !h.handleCommunityError(w, r, c, err) {
		return
	}
	if err == nil {
		h.flash(w, r, "Thanks for rating this story.")
		h.log.Debug("story rated", slog.Int64("story_id", storyID), slog.Int("rating", score))
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// PostComment adds a comment to a story
func (h *Handler) PostComment(w http.ResponseWriter, r *http.Request) {
	storyID, ok := pathID(r, "id")
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "We couldn't find that story.")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	back := urlutil.SafeRedirect(r.PostFormValue("next"), urlutil.StoryPath(storyID, ""))

	content := strings.TrimSpace(r.PostFormValue("content"))
	switch n := utf8.RuneCountInString(content); {
	case n == 0:
		h.flash(w, r, "Write something before posting.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	case n > maxCommentLength:
		h.flash(w, r, "Comments can be at most 5000 characters.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	c := h.getClient(r, w)
	_, err := c.Raw().Comments.Create(r.Context(), client.CreateCommentRequest{StoryID: storyID, Content: content})
	if !h.handleCommunityError(w, r, c, err) {
		return
	}
	if err == nil {
		h.flash(w, r, "Comment posted.")
	}
	http.Redirect(w, r, back+"#comments", http.StatusSeeOther)
}

// handleCommunityError flashes validation failures and reports whether the
// caller should still redirect back. Anything else is rendered here.
func (h *Handler) handleCommunityError(w http.ResponseWriter, r *http.Request, c *client.Client, err error) bool {
	if err == nil {
		return true
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
		msg := apiErr.Error()
		if apiErr.Message != "" {
			msg = apiErr.Message
		}
		h.flash(w, r, msg)
		return true
	}
	h.handleAPIError(w, r, c, err)
	return false
}
