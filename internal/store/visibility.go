package store

import (
	"github.com/samber/lo"

	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/export"
)

// UnknownLabel is shown for references to entities that no longer exist.
const UnknownLabel = export.UnknownLabel

// VisibleProjects returns the projects session may see: none without a
// session, all for an Admin, otherwise those listing the user as a member.
func VisibleProjects(session *domain.User, projects []domain.Project) []domain.Project {
	if session == nil {
		return []domain.Project{}
	}
	if session.IsAdmin() {
		return projects
	}
	return lo.Filter(projects, func(p domain.Project, _ int) bool {
		return p.HasMember(session.ID)
	})
}

// VisibleTasks returns the tasks that belong to visible projects.
func VisibleTasks(session *domain.User, projects []domain.Project, tasks []domain.Task) []domain.Task {
	visible := lo.SliceToMap(VisibleProjects(session, projects), func(p domain.Project) (string, struct{}) {
		return p.ID, struct{}{}
	})
	return lo.Filter(tasks, func(t domain.Task, _ int) bool {
		_, ok := visible[t.ProjectID]
		return ok
	})
}

// CanManageUsers reports whether the user may administer accounts.
func CanManageUsers(user *domain.User) bool {
	return user.IsAdmin()
}

// CanEditReports reports whether the user may edit custom reports.
func CanEditReports(user *domain.User) bool {
	return user != nil && (user.Role == domain.RoleAdmin || user.Role == domain.RoleProjectManager)
}

// CanManageProjects reports whether the user may create projects.
func CanManageProjects(user *domain.User) bool {
	return user.IsAdmin()
}

// VisibleProjects applies the visibility filter to the current state.
func (s *Store) VisibleProjects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneProjects(VisibleProjects(s.session, s.projects))
}

// VisibleTasks applies the visibility filter to the current tasks.
func (s *Store) VisibleTasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneTasks(VisibleTasks(s.session, s.projects, s.tasks))
}
