package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/repository"
)

// DefaultColumnName names columns added without a name.
const DefaultColumnName = "New Column"

// Reports returns all custom reports.
func (s *Store) Reports() []domain.CustomReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneReports(s.reports)
}

// Report returns the report with id.
func (s *Store) Report(id string) (domain.CustomReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.reportIndexLocked(id)
	if idx < 0 {
		return domain.CustomReport{}, false
	}
	return s.reports[idx].Clone(), true
}

func (s *Store) reportIndexLocked(id string) int {
	return slices.IndexFunc(s.reports, func(r domain.CustomReport) bool { return r.ID == id })
}

// NewReport creates a report from the default template, owned by the session user.
func (s *Store) NewReport(ctx context.Context) (domain.CustomReport, error) {
	s.mu.RLock()
	createdBy := ""
	if s.session != nil {
		createdBy = s.session.ID
	}
	s.mu.RUnlock()

	return s.CreateReport(ctx, domain.NewCustomReport("", createdBy, s.now()))
}

// CreateReport appends a report. An empty ID is generated and an empty
// CreatedBy is set to the session user.
func (s *Store) CreateReport(ctx context.Context, report domain.CustomReport) (domain.CustomReport, error) {
	if err := domain.Validate(report); err != nil {
		return domain.CustomReport{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if report.ID == "" {
		report.ID = s.newID()
	}
	if report.CreatedBy == "" && s.session != nil {
		report.CreatedBy = s.session.ID
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = s.now()
	}
	report = report.Clone()

	s.reports = append(s.reports, report)
	s.persist(ctx, repository.KeyCustomReports, s.reports)
	s.recordLocked(ctx, domain.ActionReportCreated, fmt.Sprintf("Created custom report: %s", report.Title), "")
	s.metrics.RecordMutation("create_report")

	return report.Clone(), nil
}

// UpdateReport replaces a report without writing an audit entry.
// Row keys for columns that no longer exist are dropped.
func (s *Store) UpdateReport(ctx context.Context, report domain.CustomReport) error {
	if err := domain.Validate(report); err != nil {
		return err
	}

	return s.mutateReport(ctx, report.ID, "update_report", func(r *domain.CustomReport) bool {
		createdAt := r.CreatedAt
		*r = report.Clone()
		if r.CreatedAt.IsZero() {
			r.CreatedAt = createdAt
		}
		pruneOrphanCells(r)
		return true
	})
}

// pruneOrphanCells removes row data keyed by unknown column IDs.
func pruneOrphanCells(r *domain.CustomReport) {
	for _, row := range r.Rows {
		for key := range row.Data {
			if r.ColumnIndex(key) < 0 {
				delete(row.Data, key)
			}
		}
	}
}

// DeleteReport removes a report. Deleting an unknown report is a no-op.
func (s *Store) DeleteReport(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.reportIndexLocked(id)
	if idx < 0 {
		return nil
	}
	report := s.reports[idx]

	s.reports = slices.Delete(s.reports, idx, idx+1)
	s.persist(ctx, repository.KeyCustomReports, s.reports)
	s.recordLocked(ctx, domain.ActionReportDeleted, fmt.Sprintf("Deleted custom report: %s", report.Title), "")
	s.metrics.RecordMutation("delete_report")
	return nil
}

// mutateReport applies fn to the stored report and persists it when fn
// returns true. Unknown reports are ignored. No audit entry is written.
func (s *Store) mutateReport(ctx context.Context, id, op string, fn func(r *domain.CustomReport) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.reportIndexLocked(id)
	if idx < 0 {
		return nil
	}
	report := s.reports[idx].Clone()
	if !fn(&report) {
		return nil
	}

	s.reports[idx] = report
	s.persist(ctx, repository.KeyCustomReports, s.reports)
	s.metrics.RecordMutation(op)
	return nil
}

// RenameReport sets a report's title.
func (s *Store) RenameReport(ctx context.Context, id, title string) error {
	if strings.TrimSpace(title) == "" {
		return domain.NewDomainError(domain.ErrValidation, "title is required", id)
	}
	return s.mutateReport(ctx, id, "rename_report", func(r *domain.CustomReport) bool {
		r.Title = title
		return true
	})
}

// AddColumn appends a column. An empty name defaults to DefaultColumnName.
func (s *Store) AddColumn(ctx context.Context, reportID, name string) (domain.Column, error) {
	if name == "" {
		name = DefaultColumnName
	}
	column := domain.Column{ID: "c" + s.newID(), Name: name}

	var added bool
	err := s.mutateReport(ctx, reportID, "add_column", func(r *domain.CustomReport) bool {
		r.Columns = append(r.Columns, column)
		added = true
		return true
	})
	if err != nil || !added {
		return domain.Column{}, err
	}
	return column, nil
}

// RenameColumn sets a column's name.
func (s *Store) RenameColumn(ctx context.Context, reportID, columnID, name string) error {
	return s.mutateReport(ctx, reportID, "rename_column", func(r *domain.CustomReport) bool {
		idx := r.ColumnIndex(columnID)
		if idx < 0 {
			return false
		}
		r.Columns[idx].Name = name
		return true
	})
}

// DeleteColumn removes a column and its cell from every row.
func (s *Store) DeleteColumn(ctx context.Context, reportID, columnID string) error {
	return s.mutateReport(ctx, reportID, "delete_column", func(r *domain.CustomReport) bool {
		return r.RemoveColumn(columnID)
	})
}

// AddRow appends an empty row.
func (s *Store) AddRow(ctx context.Context, reportID string) (domain.Row, error) {
	row := domain.Row{ID: "r" + s.newID(), Data: map[string]string{}}

	var added bool
	err := s.mutateReport(ctx, reportID, "add_row", func(r *domain.CustomReport) bool {
		r.Rows = append(r.Rows, row)
		added = true
		return true
	})
	if err != nil || !added {
		return domain.Row{}, err
	}
	return domain.Row{ID: row.ID, Data: map[string]string{}}, nil
}

// DeleteRow removes a row.
func (s *Store) DeleteRow(ctx context.Context, reportID, rowID string) error {
	return s.mutateReport(ctx, reportID, "delete_row", func(r *domain.CustomReport) bool {
		idx := r.RowIndex(rowID)
		if idx < 0 {
			return false
		}
		r.Rows = slices.Delete(r.Rows, idx, idx+1)
		return true
	})
}

// UpdateCell sets the text of one cell. Unknown rows or columns are ignored.
func (s *Store) UpdateCell(ctx context.Context, reportID, rowID, columnID, value string) error {
	return s.mutateReport(ctx, reportID, "update_cell", func(r *domain.CustomReport) bool {
		rowIdx := r.RowIndex(rowID)
		if rowIdx < 0 || r.ColumnIndex(columnID) < 0 {
			return false
		}
		if r.Rows[rowIdx].Data == nil {
			r.Rows[rowIdx].Data = map[string]string{}
		}
		r.Rows[rowIdx].Data[columnID] = value
		return true
	})
}
