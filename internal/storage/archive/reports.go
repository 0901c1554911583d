// internal/storage/archive/reports.go
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/newthinker/aurum/internal/backtest"
	"github.com/newthinker/aurum/internal/core"
)

const reportsPrefix = "backtests"

// Report is an archived backtest run
type Report struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"createdAt"`
	Symbol    string           `json:"symbol,omitempty"`
	Source    string           `json:"source,omitempty"`
	Strategy  string           `json:"strategy"`
	Config    backtest.Config  `json:"config"`
	Result    *backtest.Result `json:"result"`
}

// Reports stores backtest reports as JSON documents partitioned by day
type Reports struct {
	store Storage
}

// NewReports wraps a storage backend
func NewReports(store Storage) *Reports {
	return &Reports{store: store}
}

// ReportPath returns backtests/yyyy/mm/dd/<id>.json for the report's UTC day
func ReportPath(id string, createdAt time.Time) string {
	return path.Join(reportsPrefix, createdAt.UTC().Format("2006/01/02"), id+".json")
}

// Save writes the report and returns its path
func (r *Reports) Save(ctx context.Context, report Report) (string, error) {
	if report.ID == "" {
		return "", core.WrapError(core.ErrArchiveFailed, fmt.Errorf("report id is empty"))
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}

	p := ReportPath(report.ID, report.CreatedAt)
	if err := r.store.Write(ctx, p, data); err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, fmt.Errorf("writing %s: %w", p, err))
	}
	return p, nil
}

// Load reads a report by path. Paths outside the reports prefix and
// missing objects are reported as ErrReportNotFound.
func (r *Reports) Load(ctx context.Context, p string) (*Report, error) {
	p = path.Clean(p)
	if !strings.HasPrefix(p, reportsPrefix+"/") || path.Ext(p) != ".json" {
		return nil, core.WrapError(core.ErrReportNotFound, fmt.Errorf("%q is not a report path", p))
	}

	data, err := r.store.Read(ctx, p)
	if errors.Is(err, ErrNotFound) {
		return nil, core.WrapError(core.ErrReportNotFound, err)
	}
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, fmt.Errorf("decoding %s: %w", p, err))
	}
	return &report, nil
}

// List returns the paths of the reports archived on day, or of all
// reports when day is zero
func (r *Reports) List(ctx context.Context, day time.Time) ([]string, error) {
	prefix := reportsPrefix
	if !day.IsZero() {
		prefix = path.Join(reportsPrefix, day.UTC().Format("2006/01/02"))
	}

	paths, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	return paths, nil
}
