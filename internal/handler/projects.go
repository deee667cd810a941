package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/store"
)

// visibleProject returns a project the session may see.
func (rt *Router) visibleProject(id string) (domain.Project, error) {
	if _, ok := rt.store.Project(id); !ok {
		return domain.Project{}, errNotFound
	}
	for _, p := range rt.store.VisibleProjects() {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Project{}, domain.ErrAccessDenied
}

// canEditProject allows Admins and the project's manager.
func canEditProject(user *domain.User, project domain.Project) bool {
	return store.CanManageProjects(user) || (user != nil && project.ManagerID == user.ID)
}

func (rt *Router) handleListProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.store.VisibleProjects())
}

func (rt *Router) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := rt.visibleProject(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (rt *Router) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if err := rt.authorize(store.CanManageProjects); err != nil {
		rt.writeError(w, r, err)
		return
	}

	var project domain.Project
	if err := decodeJSON(r, &project); err != nil {
		rt.writeError(w, r, err)
		return
	}

	created, err := rt.store.CreateProject(r.Context(), project)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (rt *Router) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	existing, err := rt.visibleProject(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if !canEditProject(rt.store.Session(), existing) {
		rt.writeError(w, r, domain.ErrAccessDenied)
		return
	}

	var project domain.Project
	if err := decodeJSON(r, &project); err != nil {
		rt.writeError(w, r, err)
		return
	}
	project.ID = existing.ID

	if err := rt.store.UpdateProject(r.Context(), project); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleToggleMember(w http.ResponseWriter, r *http.Request) {
	project, err := rt.visibleProject(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if !canEditProject(rt.store.Session(), project) {
		rt.writeError(w, r, domain.ErrAccessDenied)
		return
	}

	if err := rt.store.ToggleProjectMember(r.Context(), project.ID, chi.URLParam(r, "userID")); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleProjectTasks(w http.ResponseWriter, r *http.Request) {
	project, err := rt.visibleProject(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.store.ProjectTasks(project.ID))
}

// SummaryResponse is the body returned by the project summary endpoint.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

func (rt *Router) handleSummarize(w http.ResponseWriter, r *http.Request) {
	project, err := rt.visibleProject(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	summary := rt.ai.Summarize(r.Context(), project, rt.store.ProjectTasks(project.ID), rt.store.Users())
	rt.store.Record(r.Context(), domain.ActionAI, fmt.Sprintf("Generated summary for project %s", project.Name))
	writeJSON(w, http.StatusOK, SummaryResponse{Summary: summary})
}
