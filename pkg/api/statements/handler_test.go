package statements

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"threestmt/pkg/core/pipeline"
	"threestmt/pkg/logger"
)

// memLoader serves canned runs by ID.
type memLoader struct {
	runs map[string]*pipeline.Result
}

func (m *memLoader) LoadRun(_ context.Context, runID string) (*pipeline.Result, error) {
	if result, ok := m.runs[runID]; ok {
		return result, nil
	}
	return nil, fmt.Errorf("run %s: %w", runID, pipeline.ErrRunNotFound)
}

func newTestHandler(loader RunLoader) *Handler {
	return NewHandler(pipeline.DefaultConfig(), nil, loader, logger.NewWithWriter(io.Discard))
}

func TestHandleGetRun(t *testing.T) {
	stored := &pipeline.Result{
		RunID:          "run-1",
		Mode:           pipeline.ModeMerged,
		StatementYears: []int{2022, 2023},
	}
	h := newTestHandler(&memLoader{runs: map[string]*pipeline.Result{"run-1": stored}})

	w := httptest.NewRecorder()
	h.HandleGetRun(w, httptest.NewRequest(http.MethodGet, "/api/statements/run?id=run-1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	var got pipeline.Result
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.RunID != "run-1" || got.Mode != pipeline.ModeMerged {
		t.Errorf("run = %q mode %q, want run-1 merged", got.RunID, got.Mode)
	}
}

func TestHandleGetRunNotFound(t *testing.T) {
	h := newTestHandler(&memLoader{})

	w := httptest.NewRecorder()
	h.HandleGetRun(w, httptest.NewRequest(http.MethodGet, "/api/statements/run?id=nope", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleGetRunMissingID(t *testing.T) {
	h := newTestHandler(&memLoader{})

	w := httptest.NewRecorder()
	h.HandleGetRun(w, httptest.NewRequest(http.MethodGet, "/api/statements/run", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleGetRunNoStore(t *testing.T) {
	h := newTestHandler(nil)

	w := httptest.NewRecorder()
	h.HandleGetRun(w, httptest.NewRequest(http.MethodGet, "/api/statements/run?id=run-1", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestHandleGetRunMethodGuard(t *testing.T) {
	h := newTestHandler(&memLoader{})

	w := httptest.NewRecorder()
	h.HandleGetRun(w, httptest.NewRequest(http.MethodPost, "/api/statements/run?id=run-1", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}
