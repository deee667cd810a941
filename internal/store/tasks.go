package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/prn-tf/taskflow/internal/audit"
	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/repository"
)

// Tasks returns every task regardless of visibility.
func (s *Store) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneTasks(s.tasks)
}

// Task returns the task with id.
func (s *Store) Task(id string) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.taskIndexLocked(id)
	if idx < 0 {
		return domain.Task{}, false
	}
	return s.tasks[idx].Clone(), true
}

// ProjectTasks returns the tasks of a project.
func (s *Store) ProjectTasks(projectID string) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneTasks(lo.Filter(s.tasks, func(t domain.Task, _ int) bool { return t.ProjectID == projectID }))
}

func (s *Store) taskIndexLocked(id string) int {
	return slices.IndexFunc(s.tasks, func(t domain.Task) bool { return t.ID == id })
}

// CreateTask appends a task. An empty ID is generated; empty status and
// priority default to To Do and Medium.
func (s *Store) CreateTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	if task.Status == "" {
		task.Status = domain.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if err := domain.Validate(task); err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == "" {
		task.ID = s.newID()
	}
	task = task.Clone()

	s.tasks = append(s.tasks, task)
	s.persist(ctx, repository.KeyTasks, s.tasks)
	s.recordLocked(ctx, domain.ActionTaskCreated, fmt.Sprintf("Created task %s", task.Title), "")
	s.metrics.RecordMutation("create_task")

	return task.Clone(), nil
}

// UpdateTask replaces a task's fields. Comments are append-only and are
// kept from the stored task. Updating an unknown task is a no-op.
func (s *Store) UpdateTask(ctx context.Context, task domain.Task) error {
	if err := domain.Validate(task); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.updateTaskLocked(ctx, task)
	return nil
}

func (s *Store) updateTaskLocked(ctx context.Context, task domain.Task) {
	idx := s.taskIndexLocked(task.ID)
	if idx < 0 {
		return
	}
	before := s.tasks[idx]
	task.Comments = before.Comments
	task = task.Clone()

	s.tasks[idx] = task
	s.persist(ctx, repository.KeyTasks, s.tasks)
	if entry, ok := audit.Evaluate(audit.TaskRules, before, task); ok {
		s.recordLocked(ctx, entry.Action, entry.Details, "")
	}
	s.metrics.RecordMutation("update_task")
}

// MoveTask changes a task's status, as a board drag does.
func (s *Store) MoveTask(ctx context.Context, taskID string, status domain.Status) error {
	if !slices.Contains(domain.Statuses, status) {
		return domain.NewDomainError(domain.ErrValidation, "unknown status", string(status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.taskIndexLocked(taskID)
	if idx < 0 {
		return nil
	}
	task := s.tasks[idx].Clone()
	task.Status = status

	s.updateTaskLocked(ctx, task)
	return nil
}

// ToggleTaskAssignee assigns userID to the task, or unassigns it if already assigned.
func (s *Store) ToggleTaskAssignee(ctx context.Context, taskID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.taskIndexLocked(taskID)
	if idx < 0 {
		return nil
	}
	task := s.tasks[idx].Clone()
	task.AssignedTo = toggle(task.AssignedTo, userID)

	s.updateTaskLocked(ctx, task)
	return nil
}

// DeleteTask removes a task and its comments. Deleting an unknown task is a no-op.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.taskIndexLocked(id)
	if idx < 0 {
		return nil
	}
	task := s.tasks[idx]

	s.tasks = slices.Delete(s.tasks, idx, idx+1)
	s.persist(ctx, repository.KeyTasks, s.tasks)
	s.recordLocked(ctx, domain.ActionTaskDeleted, fmt.Sprintf("Deleted task %s", task.Title), "")
	s.metrics.RecordMutation("delete_task")
	return nil
}

// AddComment appends a comment by the session user. It requires a session
// and is a no-op for an unknown task.
func (s *Store) AddComment(ctx context.Context, taskID, text string) (domain.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Comment{}, domain.NewDomainError(domain.ErrValidation, "comment text is required", taskID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return domain.Comment{}, domain.ErrNoSession
	}
	idx := s.taskIndexLocked(taskID)
	if idx < 0 {
		return domain.Comment{}, nil
	}

	comment := domain.Comment{
		ID:        s.newID(),
		UserID:    s.session.ID,
		UserName:  s.session.DisplayName(),
		Text:      text,
		CreatedAt: s.now(),
	}
	s.tasks[idx].Comments = append(s.tasks[idx].Comments, comment)
	s.persist(ctx, repository.KeyTasks, s.tasks)
	s.recordLocked(ctx, domain.ActionCommentAdded, fmt.Sprintf("Comment added to task ID %s", taskID), "")
	s.metrics.RecordMutation("add_comment")

	return comment, nil
}
