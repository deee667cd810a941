package handler

import (
	"net/http"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/export"
)

func (rt *Router) handleListLogs(w http.ResponseWriter, r *http.Request) {
	if err := rt.authorize((*domain.User).IsAdmin); err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.store.Logs())
}

func (rt *Router) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	csv := rt.store.ExportTasksCSV(r.Context())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = strings.NewReader(csv).WriteTo(w)
}

func (rt *Router) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	f, err := rt.store.ExportTasksXLSX(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.writeXLSX(w, f, "tasks.xlsx")
}

func (rt *Router) writeXLSX(w http.ResponseWriter, f *excelize.File, filename string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if err := export.WriteXLSX(w, f); err != nil {
		rt.logger.Error().Err(err).Str("file", filename).Msg("failed to stream workbook")
	}
}
