package store

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/export"
)

// TaskRows flattens the visible tasks for the spreadsheet view.
func (s *Store) TaskRows() []export.TaskRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.taskRowsLocked()
}

func (s *Store) taskRowsLocked() []export.TaskRow {
	projects := VisibleProjects(s.session, s.projects)
	return export.BuildTaskRows(projects, VisibleTasks(s.session, s.projects, s.tasks), s.users)
}

// ExportTasksCSV renders the visible tasks as CSV and records the export.
func (s *Store) ExportTasksCSV(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.taskRowsLocked()
	s.recordLocked(ctx, domain.ActionReportExported, fmt.Sprintf("Exported CSV report containing %d tasks", len(rows)), "")
	return export.TasksCSV(rows)
}

// ExportTasksXLSX renders the visible tasks as a workbook and records the export.
// The caller must Close the returned file.
func (s *Store) ExportTasksXLSX(ctx context.Context) (*excelize.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.taskRowsLocked()
	f, err := export.TasksXLSX(rows)
	if err != nil {
		return nil, err
	}
	s.recordLocked(ctx, domain.ActionReportExported, fmt.Sprintf("Exported XLSX report containing %d tasks", len(rows)), "")
	return f, nil
}
