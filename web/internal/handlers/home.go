package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/devilmonastery/novel/internal/client"
)

// Home lists stories, with featured picks on the unfiltered first page.
// Query parameters: q (keyword), genre (name), page (one-based).
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	c := h.getClient(r, w)
	ctx := r.Context()

	query := client.StoryQuery{
		Keyword: strings.TrimSpace(r.URL.Query().Get("q")),
		Genre:   strings.TrimSpace(r.URL.Query().Get("genre")),
		Page:    queryPage(r),
		Size:    h.display.PageSize,
		Sort:    "updatedAt,desc",
	}

	stories, err := c.Raw().Stories.ListWithMetadata(ctx, query)
	if err != nil {
		h.handleAPIError(w, r, c, err)
		return
	}

	var featured []client.StoryDetail
	if query.Page == 0 && query.Keyword == "" && query.Genre == "" {
		// Featured picks are decoration; the page still works without them
		featured, err = c.Raw().Stories.Featured(ctx, h.display.FeaturedLimit)
		if err != nil {
			h.log.Warn("failed to load featured stories", slog.String("error", err.Error()))
		}
	}

	genres, err := c.Raw().Genres.List(ctx)
	if err != nil {
		h.log.Warn("failed to load genres", slog.String("error", err.Error()))
	}

	data := h.newTemplateData(w, r)
	data["Title"] = "Library"
	data["Stories"] = stories
	data["Featured"] = featured
	data["Genres"] = genres
	data["Query"] = query.Keyword
	data["Genre"] = query.Genre
	data["Page"] = query.Page + 1
	data["HasNext"] = stories.HasNext()
	h.renderTemplate(w, "home.html", data)
}
