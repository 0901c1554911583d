// internal/api/handler/api/backtest.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newthinker/aurum/internal/api/job"
	"github.com/newthinker/aurum/internal/api/response"
	"github.com/newthinker/aurum/internal/backtest"
	"github.com/newthinker/aurum/internal/collector"
	"github.com/newthinker/aurum/internal/core"
	"github.com/newthinker/aurum/internal/storage/archive"
	"github.com/newthinker/aurum/internal/strategy"
)

const (
	jobType         = "backtest"
	backtestTimeout = 5 * time.Minute
	maxBodyBytes    = 4 << 20
	inlineSource    = "inline"
)

// BacktestRequest is the request body for running a backtest. Omitted
// fields take the server defaults; prices, when present, replace the
// collector as the data source.
type BacktestRequest struct {
	InitialBalance *float64        `json:"initialBalance,omitempty"`
	RiskAmount     *float64        `json:"riskAmount,omitempty"`
	Symbol         string          `json:"symbol,omitempty"`
	Source         string          `json:"source,omitempty"`
	Strategy       string          `json:"strategy,omitempty"`
	Prices         []core.PriceBar `json:"prices,omitempty"`
}

// Defaults fill the fields a request leaves out.
type Defaults struct {
	Symbol   string
	Source   string
	Strategy string
	Config   backtest.Config
}

// Metrics is the subset of the metrics registry the handler reports to.
type Metrics interface {
	backtest.Recorder
	SetJobsActive(jobType string, count int)
	RecordArchive(status string)
}

// BacktestHandler handles backtest API requests.
type BacktestHandler struct {
	jobs       *job.Store
	sources    *collector.Registry
	strategies *strategy.Engine
	defaults   Defaults
	reports    *archive.Reports
	metrics    Metrics
	logger     *zap.Logger
	timeout    time.Duration
}

// Option configures a BacktestHandler.
type Option func(*BacktestHandler)

// WithReports archives every successful run.
func WithReports(reports *archive.Reports) Option {
	return func(h *BacktestHandler) { h.reports = reports }
}

// WithMetrics reports runs, active jobs and archive writes.
func WithMetrics(m Metrics) Option {
	return func(h *BacktestHandler) { h.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *BacktestHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithTimeout bounds each run, including the history fetch.
func WithTimeout(d time.Duration) Option {
	return func(h *BacktestHandler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(
	jobs *job.Store,
	sources *collector.Registry,
	strategies *strategy.Engine,
	defaults Defaults,
	opts ...Option,
) *BacktestHandler {
	h := &BacktestHandler{
		jobs:       jobs,
		sources:    sources,
		strategies: strategies,
		defaults:   defaults,
		logger:     zap.NewNop(),
		timeout:    backtestTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Timeout returns the bound on a single run.
func (h *BacktestHandler) Timeout() time.Duration {
	return h.timeout
}

// plan is a validated request.
type plan struct {
	symbol   string
	source   string
	strategy strategy.Strategy
	config   backtest.Config
	provider backtest.HistoryProvider
	prices   []core.PriceBar
}

func (h *BacktestHandler) decode(w http.ResponseWriter, r *http.Request) (BacktestRequest, error) {
	var req BacktestRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return req, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("decoding request: %w", err))
	}
	return req, nil
}

func (h *BacktestHandler) resolve(req BacktestRequest) (*plan, error) {
	p := &plan{
		symbol: req.Symbol,
		source: req.Source,
		config: h.defaults.Config,
		prices: req.Prices,
	}
	if req.InitialBalance != nil {
		p.config.InitialBalance = *req.InitialBalance
	}
	if req.RiskAmount != nil {
		p.config.RiskAmount = *req.RiskAmount
	}
	if err := p.config.Validate(); err != nil {
		return nil, err
	}

	name := req.Strategy
	if name == "" {
		name = h.defaults.Strategy
	}
	strat, ok := h.strategies.Get(name)
	if !ok {
		return nil, core.WrapError(core.ErrStrategyNotFound,
			fmt.Errorf("unknown strategy %q (available: %v)", name, h.strategies.Names()))
	}
	p.strategy = strat

	if len(p.prices) > 0 {
		p.source = inlineSource
		return p, nil
	}

	if p.symbol == "" {
		p.symbol = h.defaults.Symbol
	}
	if p.source == "" {
		p.source = h.defaults.Source
	}
	if h.sources == nil {
		return nil, core.WrapError(core.ErrConfigMissing, errors.New("no price sources configured"))
	}
	c, err := h.sources.Resolve(p.source)
	if err != nil {
		return nil, err
	}
	p.provider = c
	return p, nil
}

func (h *BacktestHandler) execute(ctx context.Context, p *plan) (*backtest.Result, error) {
	opts := []backtest.Option{backtest.WithLogger(h.logger)}
	if h.metrics != nil {
		opts = append(opts, backtest.WithRecorder(h.metrics))
	}
	bt := backtest.New(p.provider, p.strategy, opts...)

	if len(p.prices) > 0 {
		return bt.Simulate(p.prices, p.config)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return bt.Run(ctx, p.symbol, p.config)
}

// archive stores a successful run. Failures are logged, never returned.
func (h *BacktestHandler) archive(ctx context.Context, id string, p *plan, result *backtest.Result) string {
	if h.reports == nil {
		return ""
	}

	path, err := h.reports.Save(ctx, archive.Report{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Symbol:    p.symbol,
		Source:    p.source,
		Strategy:  p.strategy.Name(),
		Config:    p.config,
		Result:    result,
	})
	if err != nil {
		h.logger.Warn("archiving report failed", zap.String("id", id), zap.Error(err))
		h.recordArchive("error")
		return ""
	}
	h.recordArchive("success")
	return path
}

func (h *BacktestHandler) recordArchive(status string) {
	if h.metrics != nil {
		h.metrics.RecordArchive(status)
	}
}

func (h *BacktestHandler) updateActive() {
	if h.metrics != nil {
		h.metrics.SetJobsActive(jobType, h.jobs.Active(jobType))
	}
}

// Run executes a backtest synchronously and returns its result.
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(w, r)
	if err != nil {
		response.Fail(w, err)
		return
	}
	p, err := h.resolve(req)
	if err != nil {
		response.Fail(w, err)
		return
	}

	result, err := h.execute(r.Context(), p)
	if err != nil {
		response.Fail(w, err)
		return
	}

	h.archive(r.Context(), uuid.NewString(), p, result)
	response.JSON(w, http.StatusOK, result)
}

// Create starts a new backtest job.
func (h *BacktestHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(w, r)
	if err != nil {
		response.Fail(w, err)
		return
	}
	p, err := h.resolve(req)
	if err != nil {
		response.Fail(w, err)
		return
	}

	j := h.jobs.Create(jobType)
	h.updateActive()

	go h.runJob(j.ID, p)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"jobId":  j.ID,
		"status": j.Status,
	})
}

// runJob executes the backtest and updates job status.
func (h *BacktestHandler) runJob(jobID string, p *plan) {
	defer h.updateActive()

	h.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})

	ctx := context.Background()
	result, err := h.execute(ctx, p)
	if err != nil {
		h.logger.Warn("backtest job failed", zap.String("job_id", jobID), zap.Error(err))
		h.jobs.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = core.AsError(err, core.ErrBacktestFailed)
		})
		return
	}

	path := h.archive(ctx, jobID, p, result)
	h.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Progress = 100
		j.Result = result
		j.ArchivePath = path
	})
}

// GetStatus returns the status of a backtest job.
func (h *BacktestHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, statusOf(j))
}

// List returns every retained backtest job without its result.
func (h *BacktestHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs := h.jobs.List()
	out := make([]map[string]any, 0, len(jobs))
	for i := range jobs {
		if jobs[i].Type != jobType {
			continue
		}
		s := statusOf(&jobs[i])
		delete(s, "result")
		out = append(out, s)
	}
	response.JSON(w, http.StatusOK, out)
}

func statusOf(j *job.Job) map[string]any {
	resp := map[string]any{
		"jobId":     j.ID,
		"status":    j.Status,
		"progress":  j.Progress,
		"createdAt": j.CreatedAt,
		"updatedAt": j.UpdatedAt,
	}

	if j.Status == job.StatusComplete {
		resp["result"] = j.Result
		if j.ArchivePath != "" {
			resp["archivePath"] = j.ArchivePath
		}
	}
	if j.Status == job.StatusFailed && j.Error != nil {
		resp["error"] = map[string]string{
			"code":    j.Error.Code,
			"message": j.Error.Message,
		}
	}
	return resp
}
