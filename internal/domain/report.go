package domain

import (
	"maps"
	"slices"
	"time"
)

// CustomReport is a free-form table that is not tied to any project.
type CustomReport struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" validate:"required"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	Columns   []Column  `json:"columns"`
	Rows      []Row     `json:"rows"`
}

// Column is an ordered column definition of a custom report.
type Column struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Width int    `json:"width,omitempty"`
}

// Row holds cell text keyed by column ID.
type Row struct {
	ID   string            `json:"id"`
	Data map[string]string `json:"data"`
}

// NewCustomReport returns the default three-column report template.
func NewCustomReport(id, createdBy string, now time.Time) CustomReport {
	return CustomReport{
		ID:        id,
		Title:     "New Custom Report",
		CreatedBy: createdBy,
		CreatedAt: now,
		Columns: []Column{
			{ID: "c1", Name: "Item Name"},
			{ID: "c2", Name: "Status"},
			{ID: "c3", Name: "Notes"},
		},
		Rows: []Row{
			{ID: "r1", Data: map[string]string{"c1": "Example Item", "c2": "Draft", "c3": ""}},
		},
	}
}

// ColumnIndex returns the position of the column, or -1.
func (r *CustomReport) ColumnIndex(columnID string) int {
	return slices.IndexFunc(r.Columns, func(c Column) bool { return c.ID == columnID })
}

// RowIndex returns the position of the row, or -1.
func (r *CustomReport) RowIndex(rowID string) int {
	return slices.IndexFunc(r.Rows, func(row Row) bool { return row.ID == rowID })
}

// RemoveColumn drops the column and its key from every row.
// It returns false if the column does not exist.
func (r *CustomReport) RemoveColumn(columnID string) bool {
	idx := r.ColumnIndex(columnID)
	if idx < 0 {
		return false
	}
	r.Columns = slices.Delete(r.Columns, idx, idx+1)
	for i := range r.Rows {
		delete(r.Rows[i].Data, columnID)
	}
	return true
}

// Clone returns a deep copy of the report.
func (r CustomReport) Clone() CustomReport {
	r.Columns = slices.Clone(r.Columns)
	if r.Columns == nil {
		r.Columns = []Column{}
	}
	rows := make([]Row, len(r.Rows))
	for i, row := range r.Rows {
		data := maps.Clone(row.Data)
		if data == nil {
			data = map[string]string{}
		}
		rows[i] = Row{ID: row.ID, Data: data}
	}
	r.Rows = rows
	return r
}
