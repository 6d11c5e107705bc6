package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/devilmonastery/novel/internal/client"
	"github.com/devilmonastery/novel/internal/pkg/urlutil"
)

const minPasswordLength = 6

// LoginPage shows the sign-in form
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := urlutil.SafeRedirect(r.URL.Query().Get("next"), "/")

	// If already logged in with valid token, go straight on
	if h.getCurrentUser(r) != nil {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	h.renderAuthForm(w, r, http.StatusOK, "login.html", next, "", "")
}

// LoginSubmit exchanges email and password for a token kept in the session
func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	next := urlutil.SafeRedirect(r.PostFormValue("next"), "/")

	if email == "" || password == "" {
		h.renderAuthForm(w, r, http.StatusBadRequest, "login.html", next, email, "Email and password are required.")
		return
	}

	c := h.getClient(r, w)
	user, err := c.Login(r.Context(), email, password)
	if err != nil {
		h.authFailure(w, r, "login.html", next, email, err)
		return
	}

	h.log.Info("reader signed in", slog.Int64("user_id", userID(user)))
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// RegisterPage shows the sign-up form
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if h.getCurrentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderAuthForm(w, r, http.StatusOK, "register.html", "/", "", "")
}

// RegisterSubmit creates an account and signs the reader in
func (h *Handler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	displayName := strings.TrimSpace(r.PostFormValue("display_name"))

	switch {
	case email == "" || displayName == "":
		h.renderAuthForm(w, r, http.StatusBadRequest, "register.html", "/", email, "Email and display name are required.")
		return
	case len(password) < minPasswordLength:
		h.renderAuthForm(w, r, http.StatusBadRequest, "register.html", "/", email, "Password must be at least 6 characters.")
		return
	case password != r.PostFormValue("confirm_password"):
		h.renderAuthForm(w, r, http.StatusBadRequest, "register.html", "/", email, "Passwords do not match.")
		return
	}

	c := h.getClient(r, w)
	user, err := c.Register(r.Context(), email, password, displayName)
	if err != nil {
		h.authFailure(w, r, "register.html", "/", email, err)
		return
	}

	h.log.Info("reader registered", slog.Int64("user_id", userID(user)))
	h.flash(w, r, "Welcome, "+displayName+"!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout drops the session token
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.getClient(r, w).Logout()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// authFailure re-renders an auth form with the backend's complaint
func (h *Handler) authFailure(w http.ResponseWriter, r *http.Request, page, next, email string, err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		msg := apiErr.Message
		if client.IsUnauthorized(err) || msg == "" {
			msg = "Invalid email or password."
		}
		if len(apiErr.Errors) > 0 {
			msg = apiErr.Error()
		}
		h.renderAuthForm(w, r, apiErr.StatusCode, page, next, email, msg)
		return
	}

	h.log.Error("authentication request failed", slog.String("error", err.Error()))
	h.renderAuthForm(w, r, http.StatusBadGateway, page, next, email, "Sign-in is unavailable right now. Please try again shortly.")
}

func (h *Handler) renderAuthForm(w http.ResponseWriter, r *http.Request, status int, page, next, email, errMsg string) {
	data := h.newTemplateData(w, r)
	data["Title"] = "Sign in"
	if page == "register.html" {
		data["Title"] = "Create account"
	}
	data["Next"] = next
	data["Email"] = email
	data["Error"] = errMsg
	h.renderTemplateStatus(w, status, page, data)
}

func userID(u *client.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
