// Package statements exposes the pipeline over HTTP: multipart CSV uploads
// in, the finished statement model as JSON out.
package statements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"threestmt/pkg/core/calc"
	"threestmt/pkg/core/classify"
	"threestmt/pkg/core/ingest"
	"threestmt/pkg/core/pipeline"
	"threestmt/pkg/models"
)

const maxUploadBytes = 64 << 20 // 64 MiB across all parts

// RunLoader retrieves previously persisted runs. Satisfied by store.RunRepo.
type RunLoader interface {
	LoadRun(ctx context.Context, runID string) (*pipeline.Result, error)
}

// Handler serves POST /api/statements and GET /api/statements/run.
type Handler struct {
	cfg    pipeline.Config
	repo   pipeline.Repository
	loader RunLoader
	log    zerolog.Logger
}

// NewHandler builds a handler. repo may be nil to skip persistence, loader
// may be nil when no run store is available.
func NewHandler(cfg pipeline.Config, repo pipeline.Repository, loader RunLoader, log zerolog.Logger) *Handler {
	return &Handler{cfg: cfg, repo: repo, loader: loader, log: log}
}

type errorResponse struct {
	Error  string      `json:"error"`
	Detail interface{} `json:"detail,omitempty"`
}

// HandleGenerate accepts a multipart form with file parts "trial_balance"
// and/or "gl_activity" (CSV), an optional "ranges" part (HJSON account
// ranges) and an optional "statement_years" value, and responds with the
// pipeline result.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse upload: %v", err), nil)
		return
	}

	tb, err := h.readLedgerPart(r, "trial_balance")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	gl, err := h.readLedgerPart(r, "gl_activity")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var ranges classify.RangeTable
	if f, _, err := r.FormFile("ranges"); err == nil {
		defer f.Close()
		data, readErr := io.ReadAll(f)
		if readErr != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("read ranges upload: %v", readErr), nil)
			return
		}
		ranges, err = classify.ParseRanges(data)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
	}

	cfg := h.cfg
	if v := r.FormValue("statement_years"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "statement_years must be a positive integer", nil)
			return
		}
		cfg.StatementYearCount = n
	}

	orch := pipeline.New(cfg)
	orch.SetLogger(h.log)
	if h.repo != nil {
		orch.SetRepository(h.repo)
	}

	result, err := orch.Run(r.Context(), pipeline.Input{
		TrialBalance: tb,
		GLActivity:   gl,
		Ranges:       ranges,
	})
	if err != nil {
		var vErr *pipeline.ValidationError
		var snapErr *calc.MissingOpeningSnapshotError
		switch {
		case errors.Is(err, pipeline.ErrNoData):
			writeError(w, http.StatusBadRequest, err.Error(), nil)
		case errors.As(err, &vErr):
			writeError(w, http.StatusUnprocessableEntity, vErr.Error(), vErr.Issues)
		case errors.As(err, &snapErr):
			writeError(w, http.StatusUnprocessableEntity, snapErr.Error(), nil)
		default:
			h.log.Error().Err(err).Msg("pipeline run failed")
			writeError(w, http.StatusInternalServerError, "pipeline run failed", nil)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleGetRun serves a previously persisted run by its "id" query
// parameter.
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.loader == nil {
		writeError(w, http.StatusServiceUnavailable, "run persistence is not configured", nil)
		return
	}

	runID := r.URL.Query().Get("id")
	if runID == "" {
		writeError(w, http.StatusBadRequest, "missing id query parameter", nil)
		return
	}

	result, err := h.loader.LoadRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, pipeline.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, err.Error(), nil)
			return
		}
		h.log.Error().Err(err).Str("run_id", runID).Msg("load run failed")
		writeError(w, http.StatusInternalServerError, "load run failed", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// readLedgerPart parses one optional CSV upload into ledger records,
// converting non-USD files with the flat rate table.
func (h *Handler) readLedgerPart(r *http.Request, name string) ([]models.LedgerRecord, error) {
	f, header, err := r.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s upload: %w", name, err)
	}
	defer f.Close()
	return h.parseLedgerFile(f, header.Filename, name)
}

func (h *Handler) parseLedgerFile(f multipart.File, filename, name string) ([]models.LedgerRecord, error) {
	records, rep, err := ingest.ReadLedgerCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", name, filename, err)
	}
	if rep.BadDates > 0 || rep.BadAmounts > 0 {
		h.log.Warn().
			Str("part", name).
			Str("file", filename).
			Int("bad_dates", rep.BadDates).
			Int("bad_amounts", rep.BadAmounts).
			Msg("rows with unparseable cells")
	}
	converted, ok := ingest.ConvertToUSD(records)
	if !ok {
		h.log.Warn().Str("part", name).Str("currency", ingest.DetectCurrency(records)).
			Msg("unknown currency, amounts left unconverted")
	}
	return converted, nil
}

func writeError(w http.ResponseWriter, status int, msg string, detail interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg, Detail: detail})
}
