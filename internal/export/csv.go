// Package export renders the task table and custom reports as CSV and XLSX.
package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/prn-tf/taskflow/internal/domain"
)

// UnknownLabel is shown for references to entities that no longer exist.
const UnknownLabel = "Unknown"

// TaskHeaders are the columns of the task table, in order.
var TaskHeaders = []string{
	"Project",
	"Task Title",
	"Assignees",
	"Status",
	"Priority",
	"Start Date",
	"End Date",
	"Comment Count",
}

// TaskRow is one flattened row of the task table.
type TaskRow struct {
	Project      string
	Title        string
	Assignees    string
	Status       domain.Status
	Priority     domain.Priority
	StartDate    domain.Date
	EndDate      domain.Date
	CommentCount int
}

// BuildTaskRows flattens tasks in order, resolving project names and
// assignee usernames. Dangling references render as UnknownLabel.
func BuildTaskRows(projects []domain.Project, tasks []domain.Task, users []domain.User) []TaskRow {
	projectNames := lo.SliceToMap(projects, func(p domain.Project) (string, string) { return p.ID, p.Name })
	usernames := lo.SliceToMap(users, func(u domain.User) (string, string) { return u.ID, u.Username })

	lookup := func(m map[string]string, id string) string {
		if name, ok := m[id]; ok {
			return name
		}
		return UnknownLabel
	}

	return lo.Map(tasks, func(t domain.Task, _ int) TaskRow {
		assignees := lo.Map(t.AssignedTo, func(id string, _ int) string { return lookup(usernames, id) })
		return TaskRow{
			Project:      lookup(projectNames, t.ProjectID),
			Title:        t.Title,
			Assignees:    strings.Join(assignees, ", "),
			Status:       t.Status,
			Priority:     t.Priority,
			StartDate:    t.StartDate,
			EndDate:      t.EndDate,
			CommentCount: len(t.Comments),
		}
	})
}

// Values returns the row's cells in TaskHeaders order.
func (r TaskRow) Values() []string {
	return []string{
		r.Project,
		r.Title,
		r.Assignees,
		string(r.Status),
		string(r.Priority),
		r.StartDate.String(),
		r.EndDate.String(),
		strconv.Itoa(r.CommentCount),
	}
}

// quote wraps a text field in double quotes, doubling inner quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// TasksCSV renders the task table. The three text columns are quoted, the
// enum, date and count columns are not, and lines are joined by "\n" with
// no trailing newline.
func TasksCSV(rows []TaskRow) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(TaskHeaders, ","))
	for _, r := range rows {
		v := r.Values()
		v[0], v[1], v[2] = quote(v[0]), quote(v[1]), quote(v[2])
		lines = append(lines, strings.Join(v, ","))
	}
	return strings.Join(lines, "\n")
}

// WriteTasksCSV writes TasksCSV(rows) to w.
func WriteTasksCSV(w io.Writer, rows []TaskRow) error {
	_, err := io.WriteString(w, TasksCSV(rows))
	return err
}
