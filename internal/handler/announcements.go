package handler

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prn-tf/taskflow/internal/domain"
)

// AnnouncementView is an announcement with its markdown content rendered.
type AnnouncementView struct {
	domain.Announcement
	HTML string `json:"html"`
}

// AnnouncementRequest is the body of POST /api/announcements.
type AnnouncementRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (rt *Router) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements := rt.store.Announcements()
	views := make([]AnnouncementView, 0, len(announcements))
	for _, a := range announcements {
		views = append(views, AnnouncementView{Announcement: a, HTML: rt.renderMarkdown(a.Content)})
	}
	writeJSON(w, http.StatusOK, views)
}

func (rt *Router) handleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	if err := rt.authorize((*domain.User).IsAdmin); err != nil {
		rt.writeError(w, r, err)
		return
	}

	var req AnnouncementRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}

	created, err := rt.store.CreateAnnouncement(r.Context(), req.Title, req.Content)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AnnouncementView{Announcement: created, HTML: rt.renderMarkdown(created.Content)})
}

func (rt *Router) handleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	if err := rt.authorize((*domain.User).IsAdmin); err != nil {
		rt.writeError(w, r, err)
		return
	}

	if err := rt.store.DeleteAnnouncement(r.Context(), chi.URLParam(r, "id")); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// renderMarkdown converts announcement content to HTML. Content that fails
// to render is returned as-is.
func (rt *Router) renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := rt.markdown.Convert([]byte(content), &buf); err != nil {
		rt.logger.Warn().Err(err).Msg("failed to render announcement")
		return content
	}
	return buf.String()
}
