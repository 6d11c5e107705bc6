package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/novel/internal/client"
	"github.com/devilmonastery/novel/internal/pkg/urlutil"
)

// FavoritesPage lists the reader's saved stories
func (h *Handler) FavoritesPage(w http.ResponseWriter, r *http.Request) {
	c := h.getClient(r, w)

	page, err := c.Raw().Favorites.List(r.Context(), queryPage(r), h.display.PageSize)
	if err != nil {
		h.handleAPIError(w, r, c, err)
		return
	}

	data := h.newTemplateData(w, r)
	data["Title"] = "Favorites"
	data["Favorites"] = page
	data["Page"] = page.Number + 1
	data["HasNext"] = page.HasNext()
	h.renderTemplate(w, "favorites.html", data)
}

// AddFavorite saves a story and returns to where the form was posted from
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.changeFavorite(w, r, true)
}

// RemoveFavorite unsaves a story
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.changeFavorite(w, r, false)
}

func (h *Handler) changeFavorite(w http.ResponseWriter, r *http.Request, add bool) {
	storyID, ok := pathID(r, "id")
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "We couldn't find that story.")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	next := urlutil.SafeRedirect(r.PostFormValue("next"), "/favorites")

	c := h.getClient(r, w)
	ctx := r.Context()

	var err error
	if add {
		_, err = c.Raw().Favorites.Add(ctx, storyID)
	} else {
		err = c.Raw().Favorites.Remove(ctx, storyID)
	}

	var apiErr *client.APIError
	switch {
	case err == nil:
		if add {
			h.flash(w, r, "Added to favorites.")
		} else {
			h.flash(w, r, "Removed from favorites.")
		}
	case errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusConflict):
		// Already in the requested state
		msg := apiErr.Message
		if msg == "" {
			msg = "Your favorites were already up to date."
		}
		h.flash(w, r, msg)
	default:
		h.handleAPIError(w, r, c, err)
		return
	}

	h.log.Debug("favorite changed", slog.Int64("story_id", storyID), slog.Bool("added", add))
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// HistoryPage lists recently read stories with the last chapter opened
func (h *Handler) HistoryPage(w http.ResponseWriter, r *http.Request) {
	c := h.getClient(r, w)

	page, err := c.Raw().History.List(r.Context(), queryPage(r), h.display.PageSize)
	if err != nil {
		h.handleAPIError(w, r, c, err)
		return
	}

	data := h.newTemplateData(w, r)
	data["Title"] = "Reading history"
	data["History"] = page
	data["Page"] = page.Number + 1
	data["HasNext"] = page.HasNext()
	h.renderTemplate(w, "history.html", data)
}
