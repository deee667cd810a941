package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/prn-tf/taskflow/internal/audit"
	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/repository"
)

// Projects returns every project regardless of visibility.
func (s *Store) Projects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneProjects(s.projects)
}

// Project returns the project with id.
func (s *Store) Project(id string) (domain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.projectIndexLocked(id)
	if idx < 0 {
		return domain.Project{}, false
	}
	return s.projects[idx].Clone(), true
}

func (s *Store) projectIndexLocked(id string) int {
	return slices.IndexFunc(s.projects, func(p domain.Project) bool { return p.ID == id })
}

// CreateProject appends a project. An empty ID is generated and a zero
// CreatedAt is set to now.
func (s *Store) CreateProject(ctx context.Context, project domain.Project) (domain.Project, error) {
	if err := domain.Validate(project); err != nil {
		return domain.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if project.ID == "" {
		project.ID = s.newID()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = s.now()
	}
	project = project.Clone()

	s.projects = append(s.projects, project)
	s.persist(ctx, repository.KeyProjects, s.projects)
	s.recordLocked(ctx, domain.ActionProjectCreated, fmt.Sprintf("Created project %s", project.Name), "")
	s.metrics.RecordMutation("create_project")

	return project.Clone(), nil
}

// UpdateProject replaces a project. Updating an unknown project is a no-op.
func (s *Store) UpdateProject(ctx context.Context, project domain.Project) error {
	if err := domain.Validate(project); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.updateProjectLocked(ctx, project)
	return nil
}

func (s *Store) updateProjectLocked(ctx context.Context, project domain.Project) {
	idx := s.projectIndexLocked(project.ID)
	if idx < 0 {
		return
	}
	before := s.projects[idx]
	if project.CreatedAt.IsZero() {
		project.CreatedAt = before.CreatedAt
	}
	project = project.Clone()

	entry, _ := audit.Evaluate(audit.ProjectRules, before, project)

	s.projects[idx] = project
	s.persist(ctx, repository.KeyProjects, s.projects)
	s.recordLocked(ctx, entry.Action, entry.Details, "")
	s.metrics.RecordMutation("update_project")
}

// ToggleProjectMember adds userID to the project members, or removes it if
// already present.
func (s *Store) ToggleProjectMember(ctx context.Context, projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.projectIndexLocked(projectID)
	if idx < 0 {
		return nil
	}
	project := s.projects[idx].Clone()
	project.Members = toggle(project.Members, userID)

	s.updateProjectLocked(ctx, project)
	return nil
}

// toggle removes id from ids if present, otherwise appends it.
func toggle(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return lo.Without(ids, id)
	}
	return append(ids, id)
}
