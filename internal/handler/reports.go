package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/export"
	"github.com/prn-tf/taskflow/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (rt *Router) handleListReports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.store.Reports())
}

func (rt *Router) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := rt.store.Report(chi.URLParam(r, "id"))
	if !ok {
		rt.writeError(w, r, errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleCreateReport creates a report from the body, or from the default
// template when the body is empty.
func (rt *Router) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	if err := rt.authorize(store.CanEditReports); err != nil {
		rt.writeError(w, r, err)
		return
	}

	var (
		report domain.CustomReport
		err    error
	)
	if decodeErr := decodeJSON(r, &report); decodeErr != nil {
		if !errors.Is(decodeErr, io.EOF) {
			rt.writeError(w, r, decodeErr)
			return
		}
		report, err = rt.store.NewReport(r.Context())
	} else {
		report, err = rt.store.CreateReport(r.Context(), report)
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (rt *Router) handleUpdateReport(w http.ResponseWriter, r *http.Request) {
	rt.editReport(w, r, func(id string) error {
		var report domain.CustomReport
		if err := decodeJSON(r, &report); err != nil {
			return err
		}
		report.ID = id
		return rt.store.UpdateReport(r.Context(), report)
	})
}

func (rt *Router) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	rt.editReport(w, r, func(id string) error {
		return rt.store.DeleteReport(r.Context(), id)
	})
}

// TitleRequest is the body of PUT /api/reports/{id}/title.
type TitleRequest struct {
	Title string `json:"title"`
}

func (rt *Router) handleRenameReport(w http.ResponseWriter, r *http.Request) {
	rt.editReport(w, r, func(id string) error {
		var req TitleRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		return rt.store.RenameReport(r.Context(), id, req.Title)
	})
}

// NameRequest names a report column.
type NameRequest struct {
	Name string `json:"name"`
}

func (rt *Router) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	if err := rt.authorize(store.CanEditReports); err != nil {
		rt.writeError(w, r, err)
		return
	}

	var req NameRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			rt.writeError(w, r, err)
			return
		}
	}

	column, err := rt.store.AddColumn(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, column)
}

func (rt *Router) handleRenameColumn(w http.ResponseWriter, r *http.Request) {
	rt.editReport(w, r, func(id string) error {
		var req NameRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		return rt.store.RenameColumn(r.Context(), id, chi.URLParam(r, "columnID"), req.Name)
	})
}

func (rt *Router) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	rt.editReport(w, r, func(id string) error {
		return rt.store.DeleteColumn(r.Context(), id, chi.URLParam(r, "columnID"))
	})
}

func (rt *Router) handleAddRow(w http.ResponseWriter, r *http.Request) {
	if err := rt.authorize(store.CanEditReports); err != nil {
		rt.writeError(w, r, err)
		return
	}

	row, err := rt.store.AddRow(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

func (rt *Router) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	rt.editReport(w, r, func(id string) error {
		return rt.store.DeleteRow(r.Context(), id, chi.URLParam(r, "rowID"))
	})
}

// CellRequest is the body of PUT /api/reports/{id}/rows/{rowID}/cells/{columnID}.
type CellRequest struct {
	Value string `json:"value"`
}

func (rt *Router) handleUpdateCell(w http.ResponseWriter, r *http.Request) {
	rt.editReport(w, r, func(id string) error {
		var req CellRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		return rt.store.UpdateCell(r.Context(), id, chi.URLParam(r, "rowID"), chi.URLParam(r, "columnID"), req.Value)
	})
}

// editReport runs a report mutation that answers 204 on success.
func (rt *Router) editReport(w http.ResponseWriter, r *http.Request, fn func(id string) error) {
	if err := rt.authorize(store.CanEditReports); err != nil {
		rt.writeError(w, r, err)
		return
	}
	if err := fn(chi.URLParam(r, "id")); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	report, ok := rt.store.Report(chi.URLParam(r, "id"))
	if !ok {
		rt.writeError(w, r, errNotFound)
		return
	}

	f, err := export.ReportXLSX(report)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.writeXLSX(w, f, fmt.Sprintf("%s.xlsx", export.SheetName(report.Title)))
}
