package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/taskflow/internal/domain"
)

func TestUserRules(t *testing.T) {
	before := domain.User{ID: "u3", Username: "john", Password: "hash", Role: domain.RoleMember, FullName: "John Dev"}

	tests := []struct {
		name    string
		mutate  func(u *domain.User)
		action  string
		details string
	}{
		{
			name:    "password wins over role",
			mutate:  func(u *domain.User) { u.Password = "new"; u.Role = domain.RoleAdmin },
			action:  domain.ActionPasswordChanged,
			details: "Changed password for john",
		},
		{
			name:    "role",
			mutate:  func(u *domain.User) { u.Role = domain.RoleProjectManager },
			action:  domain.ActionRoleUpdated,
			details: "Changed role for john from Member to Project Manager",
		},
		{
			name:    "profile",
			mutate:  func(u *domain.User) { u.FullName = "John Developer" },
			action:  domain.ActionUserUpdated,
			details: "Updated profile for john",
		},
		{
			name:    "no change still logs a generic update",
			mutate:  func(u *domain.User) {},
			action:  domain.ActionUserUpdated,
			details: "Updated profile for john",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := before
			tt.mutate(&after)
			entry, ok := Evaluate(UserRules, before, after)
			require.True(t, ok)
			assert.Equal(t, tt.action, entry.Action)
			assert.Equal(t, tt.details, entry.Details)
		})
	}
}

func TestProjectRules(t *testing.T) {
	before := domain.Project{ID: "p1", Name: "Website Revamp", Description: "old", Members: []string{"u2", "u3"}}

	tests := []struct {
		name    string
		mutate  func(p *domain.Project)
		action  string
		details string
	}{
		{
			name:    "added and removed wins over description",
			mutate:  func(p *domain.Project) { p.Members = []string{"u2", "u1", "u4"}; p.Description = "new" },
			action:  domain.ActionProjectAccessUpdated,
			details: "Updated access for project Website Revamp. Added: 2 users. Removed: 1 users.",
		},
		{
			name:    "removed only",
			mutate:  func(p *domain.Project) { p.Members = []string{"u2"} },
			action:  domain.ActionProjectAccessUpdated,
			details: "Updated access for project Website Revamp. Removed: 1 users.",
		},
		{
			name:    "reorder counts as access change with no counts",
			mutate:  func(p *domain.Project) { p.Members = []string{"u3", "u2"} },
			action:  domain.ActionProjectAccessUpdated,
			details: "Updated access for project Website Revamp.",
		},
		{
			name:    "description",
			mutate:  func(p *domain.Project) { p.Description = "new" },
			action:  domain.ActionProjectUpdated,
			details: "Updated description for project Website Revamp",
		},
		{
			name:    "details",
			mutate:  func(p *domain.Project) { p.Name = "Portal" },
			action:  domain.ActionProjectUpdated,
			details: "Updated details for project Portal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := before.Clone()
			tt.mutate(&after)
			entry, ok := Evaluate(ProjectRules, before, after)
			require.True(t, ok)
			assert.Equal(t, tt.action, entry.Action)
			assert.Equal(t, tt.details, entry.Details)
		})
	}
}

func TestTaskRules(t *testing.T) {
	before := domain.Task{
		ID:          "t3",
		ProjectID:   "p1",
		Title:       "User Testing",
		Description: "Coordinate with Jane.",
		AssignedTo:  []string{"u2"},
		Priority:    domain.PriorityLow,
		Status:      domain.StatusTodo,
		StartDate:   domain.MustParseDate("2023-10-15"),
		EndDate:     domain.MustParseDate("2023-10-20"),
	}

	tests := []struct {
		name    string
		mutate  func(t *domain.Task)
		logged  bool
		details string
	}{
		{
			name:    "status only",
			mutate:  func(t *domain.Task) { t.Status = domain.StatusDone },
			logged:  true,
			details: `Task "User Testing": Status: To Do -> Done`,
		},
		{
			name: "all tracked fields in one entry",
			mutate: func(t *domain.Task) {
				t.Status = domain.StatusInProgress
				t.Priority = domain.PriorityHigh
				t.Title = "Beta Testing"
				t.AssignedTo = []string{"u2", "u3"}
				t.Description = "ignored"
			},
			logged:  true,
			details: `Task "Beta Testing": Status: To Do -> In Progress, Priority: Low -> High, Title changed, Assignees updated`,
		},
		{
			name:    "description only",
			mutate:  func(t *domain.Task) { t.Description = "Coordinate with QA." },
			logged:  true,
			details: `Task "User Testing" description updated`,
		},
		{
			name:    "dates only",
			mutate:  func(t *domain.Task) { t.EndDate = domain.MustParseDate("2023-10-25") },
			logged:  true,
			details: `Task "User Testing" dates updated`,
		},
		{
			name:   "untracked change",
			mutate: func(t *domain.Task) { t.Comments = append(t.Comments, domain.Comment{ID: "c1"}) },
			logged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := before.Clone()
			tt.mutate(&after)
			entry, ok := Evaluate(TaskRules, before, after)
			require.Equal(t, tt.logged, ok)
			if !tt.logged {
				return
			}
			assert.Equal(t, domain.ActionTaskUpdated, entry.Action)
			assert.Equal(t, tt.details, entry.Details)
		})
	}
}
