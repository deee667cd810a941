package store

import (
	"time"

	"github.com/prn-tf/taskflow/internal/domain"
)

// SeedData returns the demo workspace used when no collections are stored.
// Seed passwords are plaintext and are migrated on first login.
func SeedData() Snapshot {
	created := time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)

	return Snapshot{
		Users: []domain.User{
			{ID: "u1", Username: "Aliyan", Password: "1234", Role: domain.RoleAdmin, FullName: "Aliyan (Admin)"},
			{ID: "u2", Username: "sarah", Password: "123", Role: domain.RoleProjectManager, FullName: "Sara Manager"},
			{ID: "u3", Username: "john", Password: "123", Role: domain.RoleMember, FullName: "John Dev"},
		},
		Projects: []domain.Project{
			{
				ID:          "p1",
				Name:        "Website Revamp",
				Description: "Redesigning the corporate portal with new branding and improved UX.",
				ManagerID:   "u2",
				Members:     []string{"u2", "u3"},
				CreatedAt:   created,
			},
			{
				ID:          "p2",
				Name:        "Mobile App",
				Description: "iOS and Android Development for the customer loyalty program.",
				ManagerID:   "u2",
				Members:     []string{"u2", "u3"},
				CreatedAt:   created,
			},
		},
		Tasks: []domain.Task{
			{
				ID:          "t1",
				ProjectID:   "p1",
				Title:       "Setup React Repo",
				Description: "Initialize project with TypeScript.",
				AssignedTo:  []string{"u3"},
				Priority:    domain.PriorityHigh,
				Status:      domain.StatusDone,
				StartDate:   domain.MustParseDate("2023-10-01"),
				EndDate:     domain.MustParseDate("2023-10-05"),
				Comments:    []domain.Comment{},
			},
			{
				ID:          "t2",
				ProjectID:   "p1",
				Title:       "Design Database",
				Description: "Create Firestore schema.",
				AssignedTo:  []string{"u3", "u2"},
				Priority:    domain.PriorityMedium,
				Status:      domain.StatusInProgress,
				StartDate:   domain.MustParseDate("2023-10-06"),
				EndDate:     domain.MustParseDate("2023-10-10"),
				Comments:    []domain.Comment{},
			},
			{
				ID:          "t3",
				ProjectID:   "p1",
				Title:       "User Testing",
				Description: "Coordinate with Jane.",
				AssignedTo:  []string{"u2"},
				Priority:    domain.PriorityLow,
				Status:      domain.StatusTodo,
				StartDate:   domain.MustParseDate("2023-10-15"),
				EndDate:     domain.MustParseDate("2023-10-20"),
				Comments:    []domain.Comment{},
			},
		},
	}
}
