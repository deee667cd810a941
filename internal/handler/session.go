package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/store"
)

// LoginRequest is the body of POST /api/session.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}

	user, err := rt.store.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

func (rt *Router) handleLogout(w http.ResponseWriter, r *http.Request) {
	rt.store.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleSession(w http.ResponseWriter, r *http.Request) {
	session := rt.store.Session()
	if session == nil {
		rt.writeError(w, r, domain.ErrNoSession)
		return
	}
	writeJSON(w, http.StatusOK, session.Public())
}

// authorize checks the session against a role predicate.
func (rt *Router) authorize(allowed func(*domain.User) bool) error {
	if !allowed(rt.store.Session()) {
		return domain.ErrAccessDenied
	}
	return nil
}

// =============================================================================
// Users
// =============================================================================

func (rt *Router) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users := lo.Map(rt.store.Users(), func(u domain.User, _ int) domain.User { return u.Public() })
	writeJSON(w, http.StatusOK, users)
}

func (rt *Router) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if err := rt.authorize(store.CanManageUsers); err != nil {
		rt.writeError(w, r, err)
		return
	}

	var user domain.User
	if err := decodeJSON(r, &user); err != nil {
		rt.writeError(w, r, err)
		return
	}

	created, err := rt.store.CreateUser(r.Context(), user)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created.Public())
}

// handleUpdateUser replaces a user. An omitted password keeps the stored one.
func (rt *Router) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	if err := rt.authorize(store.CanManageUsers); err != nil {
		rt.writeError(w, r, err)
		return
	}

	var user domain.User
	if err := decodeJSON(r, &user); err != nil {
		rt.writeError(w, r, err)
		return
	}
	user.ID = chi.URLParam(r, "id")

	existing, ok := rt.store.User(user.ID)
	if !ok {
		rt.writeError(w, r, errNotFound)
		return
	}
	if user.Password == "" {
		user.Password = existing.Password
	}

	if err := rt.store.UpdateUser(r.Context(), user); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := rt.authorize(store.CanManageUsers); err != nil {
		rt.writeError(w, r, err)
		return
	}

	if err := rt.store.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
