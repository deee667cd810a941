package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/prn-tf/taskflow/internal/domain"
)

// visibleTask returns a task whose project the session may see.
func (rt *Router) visibleTask(id string) (domain.Task, error) {
	if _, ok := rt.store.Task(id); !ok {
		return domain.Task{}, errNotFound
	}
	task, ok := lo.Find(rt.store.VisibleTasks(), func(t domain.Task) bool { return t.ID == id })
	if !ok {
		return domain.Task{}, domain.ErrAccessDenied
	}
	return task, nil
}

func (rt *Router) handleListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.store.VisibleTasks())
}

func (rt *Router) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := rt.visibleTask(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (rt *Router) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var task domain.Task
	if err := decodeJSON(r, &task); err != nil {
		rt.writeError(w, r, err)
		return
	}
	if _, err := rt.visibleProject(task.ProjectID); err != nil {
		if errors.Is(err, errNotFound) {
			err = domain.NewDomainError(domain.ErrValidation, "unknown project", task.ProjectID)
		}
		rt.writeError(w, r, err)
		return
	}

	created, err := rt.store.CreateTask(r.Context(), task)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (rt *Router) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	existing, err := rt.visibleTask(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	var task domain.Task
	if err := decodeJSON(r, &task); err != nil {
		rt.writeError(w, r, err)
		return
	}
	task.ID = existing.ID
	if task.ProjectID == "" {
		task.ProjectID = existing.ProjectID
	}

	if err := rt.store.UpdateTask(r.Context(), task); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := rt.visibleTask(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	if err := rt.store.DeleteTask(r.Context(), task.ID); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveTaskRequest is the body of PUT /api/tasks/{id}/status.
type MoveTaskRequest struct {
	Status domain.Status `json:"status"`
}

func (rt *Router) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	task, err := rt.visibleTask(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	var req MoveTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}

	if err := rt.store.MoveTask(r.Context(), task.ID, req.Status); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleToggleAssignee(w http.ResponseWriter, r *http.Request) {
	task, err := rt.visibleTask(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	if err := rt.store.ToggleTaskAssignee(r.Context(), task.ID, chi.URLParam(r, "userID")); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CommentRequest is the body of POST /api/tasks/{id}/comments.
type CommentRequest struct {
	Text string `json:"text"`
}

func (rt *Router) handleAddComment(w http.ResponseWriter, r *http.Request) {
	task, err := rt.visibleTask(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	var req CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}

	comment, err := rt.store.AddComment(r.Context(), task.ID, req.Text)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// SubtasksResponse is the body returned by the subtask suggestion endpoint.
type SubtasksResponse struct {
	Subtasks []string `json:"subtasks"`
}

func (rt *Router) handleSuggestSubtasks(w http.ResponseWriter, r *http.Request) {
	task, err := rt.visibleTask(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	subtasks := rt.ai.SuggestSubtasks(r.Context(), task.Title, task.Description)
	rt.store.Record(r.Context(), domain.ActionAI, fmt.Sprintf("Generated subtasks for task \"%s\"", task.Title))
	writeJSON(w, http.StatusOK, SubtasksResponse{Subtasks: subtasks})
}
