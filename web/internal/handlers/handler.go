package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/novel/internal/client"
	"github.com/devilmonastery/novel/internal/pkg/logger"
	"github.com/devilmonastery/novel/web/internal/config"
	"github.com/devilmonastery/novel/web/internal/render"
	"github.com/devilmonastery/novel/web/internal/session"
)

// Handler holds dependencies for all web handlers
type Handler struct {
	basePath       string
	sessionManager *session.Manager
	templates      *render.TemplateSet
	display        config.DisplayConfig
	clientOptions  []client.Option
	log            *slog.Logger
}

// New creates a new handler with dependencies. clientOptions are applied to
// every per-request API client.
func New(basePath string, sessionManager *session.Manager, templates *render.TemplateSet, display config.DisplayConfig, log *slog.Logger, clientOptions ...client.Option) *Handler {
	if display.PageSize <= 0 {
		display.PageSize = 20
	}
	if display.FeaturedLimit <= 0 {
		display.FeaturedLimit = 5
	}
	h := &Handler{
		basePath:       client.NormalizeBasePath(basePath),
		sessionManager: sessionManager,
		templates:      templates,
		display:        display,
		log:            log.With(slog.String("component", "web_handler")),
	}
	h.clientOptions = append([]client.Option{client.WithLogger(log)}, clientOptions...)
	return h
}

// getClient creates a per-request API client whose token lives in the
// session cookie. It must not outlive the request.
func (h *Handler) getClient(r *http.Request, w http.ResponseWriter) *client.Client {
	return client.Bootstrap(h.basePath, session.NewStore(h.sessionManager, r, w), h.clientOptions...)
}

// newTemplateData creates a new template data map with standard fields populated
// Callers can add page-specific fields to the returned map
func (h *Handler) newTemplateData(w http.ResponseWriter, r *http.Request) map[string]interface{} {
	return map[string]interface{}{
		"User":        h.getCurrentUser(r),
		"Flashes":     h.sessionManager.Flashes(r, w),
		"CurrentPath": r.URL.Path,
		"APIBasePath": h.basePath,
	}
}

// renderTemplate renders a template with data
func (h *Handler) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	h.renderTemplateStatus(w, http.StatusOK, name, data)
}

func (h *Handler) renderTemplateStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	if h.templates == nil {
		http.Error(w, "Templates not loaded", http.StatusInternalServerError)
		return
	}
	h.log.Debug("rendering template", slog.String("template", name))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Execute(w, name, data); err != nil {
		// Headers are gone by now; all we can do is log
		h.log.Error("template rendering failed",
			slog.String("template", name),
			slog.String("error", err.Error()))
	}
}

// renderError shows the error page with status
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := h.newTemplateData(w, r)
	data["Title"] = http.StatusText(status)
	data["Status"] = status
	data["Message"] = message
	h.renderTemplateStatus(w, status, "error.html", data)
}

// handleAPIError maps a failed API call to a response. A rejected session
// token is dropped and the reader is sent to log in again.
func (h *Handler) handleAPIError(w http.ResponseWriter, r *http.Request, c *client.Client, err error) {
	switch {
	case client.IsLoginRequired(err):
		h.clearSessionAndRedirect(w, r, c)
	case client.IsNotFound(err):
		h.renderError(w, r, http.StatusNotFound, "We couldn't find that page.")
	case client.IsForbidden(err):
		h.renderError(w, r, http.StatusForbidden, "You don't have access to that.")
	default:
		h.requestLogger(r).Error("API call failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusBadGateway, "The library is unavailable right now. Please try again shortly.")
	}
}

// requestLogger tags log lines with the request ID the API calls carried
func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	log := logger.WithHTTPRequest(h.log, r.Method, r.URL.Path)
	if id := client.RequestIDFromContext(r.Context()); id != "" {
		log = logger.WithRequest(log, id)
	}
	return log
}

// clearSessionAndRedirect clears the token and redirects to login
func (h *Handler) clearSessionAndRedirect(w http.ResponseWriter, r *http.Request, c *client.Client) {
	h.requestLogger(r).Info("clearing rejected token and redirecting to login")
	c.ClearToken()
	http.Redirect(w, r, loginURL(r), http.StatusSeeOther)
}

// getCurrentUser gets the current user info from the session token
// Returns nil if not authenticated, expired, or invalid
func (h *Handler) getCurrentUser(r *http.Request) *session.Claims {
	user, err := h.sessionManager.CurrentUser(r)
	if err != nil {
		if !errors.Is(err, session.ErrNoToken) {
			h.log.Debug("failed to read session user", slog.String("error", err.Error()))
		}
		return nil
	}
	return user
}

// flash queues a message for the next page, logging failures
func (h *Handler) flash(w http.ResponseWriter, r *http.Request, msg string) {
	if err := h.sessionManager.SetFlash(r, w, msg); err != nil {
		h.log.Warn("failed to save flash message", slog.String("error", err.Error()))
	}
}

func loginURL(r *http.Request) string {
	return "/login?next=" + url.QueryEscape(r.URL.RequestURI())
}

// pathID parses a positive int64 mux variable
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryPage returns the zero-based page from ?page=, which users see one-based
func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 0
	}
	return page - 1
}
