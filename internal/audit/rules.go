package audit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/prn-tf/taskflow/internal/domain"
)

// Entry is the action and details synthesized for a change.
type Entry struct {
	Action  string
	Details string
}

// Rule matches one category of change. Rules are checked in order and the
// first match produces the entry.
type Rule[T any] struct {
	Name     string
	Match    func(before, after T) bool
	Describe func(before, after T) Entry
}

// Evaluate returns the entry of the first matching rule.
// ok is false when no rule matches, meaning nothing should be logged.
func Evaluate[T any](rules []Rule[T], before, after T) (entry Entry, ok bool) {
	for _, r := range rules {
		if r.Match(before, after) {
			return r.Describe(before, after), true
		}
	}
	return Entry{}, false
}

func always[T any](_, _ T) bool { return true }

// UserRules: password change, then role change, then a generic update.
// after.Password is the incoming value before hashing.
var UserRules = []Rule[domain.User]{
	{
		Name: "password",
		Match: func(before, after domain.User) bool {
			return before.Password != after.Password
		},
		Describe: func(_, after domain.User) Entry {
			return Entry{domain.ActionPasswordChanged, fmt.Sprintf("Changed password for %s", after.Username)}
		},
	},
	{
		Name: "role",
		Match: func(before, after domain.User) bool {
			return before.Role != after.Role
		},
		Describe: func(before, after domain.User) Entry {
			return Entry{domain.ActionRoleUpdated, fmt.Sprintf("Changed role for %s from %s to %s", after.Username, before.Role, after.Role)}
		},
	},
	{
		Name:  "profile",
		Match: always[domain.User],
		Describe: func(_, after domain.User) Entry {
			return Entry{domain.ActionUserUpdated, fmt.Sprintf("Updated profile for %s", after.Username)}
		},
	},
}

// ProjectRules: membership change, then description change, then a generic update.
var ProjectRules = []Rule[domain.Project]{
	{
		Name: "access",
		Match: func(before, after domain.Project) bool {
			return !slices.Equal(before.Members, after.Members)
		},
		Describe: func(before, after domain.Project) Entry {
			added, removed := lo.Difference(lo.Uniq(after.Members), lo.Uniq(before.Members))
			details := fmt.Sprintf("Updated access for project %s.", after.Name)
			if len(added) > 0 {
				details += fmt.Sprintf(" Added: %d users.", len(added))
			}
			if len(removed) > 0 {
				details += fmt.Sprintf(" Removed: %d users.", len(removed))
			}
			return Entry{domain.ActionProjectAccessUpdated, details}
		},
	},
	{
		Name: "description",
		Match: func(before, after domain.Project) bool {
			return before.Description != after.Description
		},
		Describe: func(_, after domain.Project) Entry {
			return Entry{domain.ActionProjectUpdated, fmt.Sprintf("Updated description for project %s", after.Name)}
		},
	},
	{
		Name:  "details",
		Match: always[domain.Project],
		Describe: func(_, after domain.Project) Entry {
			return Entry{domain.ActionProjectUpdated, fmt.Sprintf("Updated details for project %s", after.Name)}
		},
	},
}

// taskFieldChanges lists status, priority, title and assignee changes in that order.
func taskFieldChanges(before, after domain.Task) []string {
	var changes []string
	if before.Status != after.Status {
		changes = append(changes, fmt.Sprintf("Status: %s -> %s", before.Status, after.Status))
	}
	if before.Priority != after.Priority {
		changes = append(changes, fmt.Sprintf("Priority: %s -> %s", before.Priority, after.Priority))
	}
	if before.Title != after.Title {
		changes = append(changes, "Title changed")
	}
	if !slices.Equal(before.AssignedTo, after.AssignedTo) {
		changes = append(changes, "Assignees updated")
	}
	return changes
}

// TaskRules: tracked field changes, then description, then dates. A task
// update that changes none of these is not logged.
var TaskRules = []Rule[domain.Task]{
	{
		Name: "fields",
		Match: func(before, after domain.Task) bool {
			return len(taskFieldChanges(before, after)) > 0
		},
		Describe: func(before, after domain.Task) Entry {
			changes := taskFieldChanges(before, after)
			return Entry{domain.ActionTaskUpdated, fmt.Sprintf("Task \"%s\": %s", after.Title, strings.Join(changes, ", "))}
		},
	},
	{
		Name: "description",
		Match: func(before, after domain.Task) bool {
			return before.Description != after.Description
		},
		Describe: func(_, after domain.Task) Entry {
			return Entry{domain.ActionTaskUpdated, fmt.Sprintf("Task \"%s\" description updated", after.Title)}
		},
	},
	{
		Name: "dates",
		Match: func(before, after domain.Task) bool {
			return !before.StartDate.Equal(after.StartDate) || !before.EndDate.Equal(after.EndDate)
		},
		Describe: func(_, after domain.Task) Entry {
			return Entry{domain.ActionTaskUpdated, fmt.Sprintf("Task \"%s\" dates updated", after.Title)}
		},
	},
}
