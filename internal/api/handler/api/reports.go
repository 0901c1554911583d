// internal/api/handler/api/reports.go
package api

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/aurum/internal/api/response"
	"github.com/newthinker/aurum/internal/core"
	"github.com/newthinker/aurum/internal/storage/archive"
)

const dayLayout = "2006-01-02"

// ReportsHandler serves archived backtest reports.
type ReportsHandler struct {
	reports *archive.Reports
	logger  *zap.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(reports *archive.Reports, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{reports: reports, logger: logger}
}

// List returns the paths of archived reports, optionally limited to the
// UTC day given as ?day=YYYY-MM-DD.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	var day time.Time
	if v := r.URL.Query().Get("day"); v != "" {
		d, err := time.Parse(dayLayout, v)
		if err != nil {
			response.Fail(w, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("day %q: want YYYY-MM-DD", v)))
			return
		}
		day = d
	}

	paths, err := h.reports.List(r.Context(), day)
	if err != nil {
		h.logger.Warn("listing reports failed", zap.Error(err))
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"reports": paths,
		"count":   len(paths),
	})
}

// Get returns one archived report by its path.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Load(r.Context(), r.PathValue("path"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, report)
}
