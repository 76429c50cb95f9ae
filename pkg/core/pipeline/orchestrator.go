// Package pipeline wires the end-to-end flow: validate -> classify ->
// aggregate -> merge -> reconcile, with optional persistence of the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"threestmt/pkg/core/calc"
	"threestmt/pkg/core/classify"
	"threestmt/pkg/core/validate"
	"threestmt/pkg/logger"
	"threestmt/pkg/models"
)

// ErrNoData means neither input dataset was provided.
var ErrNoData = errors.New("no input datasets provided")

// ErrRunNotFound means no persisted run exists for the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Mode labels which statement path produced a result.
type Mode string

const (
	// ModeMerged is the full TB+GL merge with an opening snapshot.
	ModeMerged Mode = "merged"
	// ModeTrialBalanceOnly and ModeGLOnly are single-source fallbacks with
	// best-effort deltas between consecutive years.
	ModeTrialBalanceOnly Mode = "tb_only"
	ModeGLOnly           Mode = "gl_only"
)

// Config controls one pipeline run.
type Config struct {
	// StatementYearCount is how many trailing years appear on the
	// statements (default 3).
	StatementYearCount int `yaml:"statement_year_count"`
	// BalanceSheetTolerance / CashFlowTolerance grade reconciliation
	// residuals when presenting checks; raw residuals are always kept.
	BalanceSheetTolerance float64 `yaml:"balance_sheet_tolerance"`
	CashFlowTolerance     float64 `yaml:"cashflow_tolerance"`
	// Strict stops the run on Critical validation issues instead of
	// recording them and continuing.
	Strict bool `yaml:"strict"`
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{
		StatementYearCount:    calc.DefaultStatementYearCount,
		BalanceSheetTolerance: 0.01,
		CashFlowTolerance:     0.01,
	}
}

// Input carries the datasets for one run. Either slice may be empty, not
// both. Ranges overrides the default account number chart when non-nil.
type Input struct {
	TrialBalance []models.LedgerRecord
	GLActivity   []models.LedgerRecord
	Ranges       classify.RangeTable
}

// Result is the finished model for one run.
type Result struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Mode        Mode      `json:"mode"`

	// Statements is keyed by calendar year. In merged mode it includes the
	// opening snapshot year, which is not in StatementYears.
	Statements     map[int]calc.YearStatement `json:"statements"`
	StatementYears []int                      `json:"statement_years"`
	// Year0 is the opening snapshot year; HasYear0 is false outside merged
	// mode.
	Year0    int  `json:"year0,omitempty"`
	HasYear0 bool `json:"has_year0"`

	Checks map[int]calc.CheckResult `json:"checks"`
	Stats  classify.Stats           `json:"mapping_stats"`
	Issues []validate.Issue         `json:"issues,omitempty"`
}

// ValidationError aborts a strict-mode run that hit Critical issues. The
// findings ride along so callers can present them.
type ValidationError struct {
	Issues []validate.Issue
}

func (e *ValidationError) Error() string {
	critical := 0
	for _, is := range e.Issues {
		if is.Severity == validate.SeverityCritical {
			critical++
		}
	}
	return fmt.Sprintf("input validation failed: %d critical issue(s)", critical)
}

// Repository persists finished runs. Satisfied by store.RunRepo; nil means
// no persistence.
type Repository interface {
	SaveRun(ctx context.Context, result *Result) error
}

// Orchestrator manages the end-to-end data flow for one configuration.
type Orchestrator struct {
	cfg  Config
	repo Repository
	log  zerolog.Logger
}

// New creates an orchestrator. Zero-valued config fields fall back to
// defaults.
func New(cfg Config) *Orchestrator {
	if cfg.StatementYearCount <= 0 {
		cfg.StatementYearCount = calc.DefaultStatementYearCount
	}
	return &Orchestrator{cfg: cfg, log: logger.New()}
}

// SetRepository injects a persistence target (e.g. for testing).
func (o *Orchestrator) SetRepository(repo Repository) {
	o.repo = repo
}

// SetLogger replaces the default logger.
func (o *Orchestrator) SetLogger(log zerolog.Logger) {
	o.log = log
}

// Run executes the pipeline over in and returns the finished model.
//
// Validation findings never stop a permissive run; in strict mode any
// Critical finding aborts with *ValidationError before statement math
// starts. With both datasets present the TB+GL merge is authoritative and a
// missing opening snapshot surfaces calc.MissingOpeningSnapshotError; with
// one dataset the single-source fallback runs instead.
func (o *Orchestrator) Run(ctx context.Context, in Input) (*Result, error) {
	if len(in.TrialBalance) == 0 && len(in.GLActivity) == 0 {
		return nil, ErrNoData
	}

	runID := uuid.New().String()
	log := o.log.With().Str("run_id", runID).Logger()
	start := time.Now()

	tol := validate.DefaultTolerances()
	now := time.Now()

	var issues []validate.Issue
	if len(in.TrialBalance) > 0 {
		issues = append(issues, validate.TrialBalance(in.TrialBalance, tol)...)
		issues = append(issues, validate.CommonIssues(in.TrialBalance, now)...)
	}
	if len(in.GLActivity) > 0 {
		issues = append(issues, validate.GLActivity(in.GLActivity, tol)...)
		issues = append(issues, validate.CommonIssues(in.GLActivity, now)...)
	}
	log.Info().Int("issues", len(issues)).Msg("input validation complete")

	if o.cfg.Strict && validate.HasCritical(issues) {
		return nil, &ValidationError{Issues: issues}
	}

	classifier := classify.New(in.Ranges)
	tbClassified := classifier.ClassifyRecords(in.TrialBalance)
	glClassified := classifier.ClassifyRecords(in.GLActivity)

	combined := make([]classify.ClassifiedRecord, 0, len(tbClassified)+len(glClassified))
	combined = append(combined, tbClassified...)
	combined = append(combined, glClassified...)
	stats := classify.ComputeStats(combined)
	log.Info().
		Int("accounts", stats.TotalAccounts).
		Float64("mapping_rate", stats.MappingRate).
		Msg("classification complete")

	result := &Result{
		RunID:       runID,
		GeneratedAt: start,
		Stats:       stats,
		Issues:      issues,
	}

	switch {
	case len(in.TrialBalance) > 0 && len(in.GLActivity) > 0:
		tbStmts := calc.Aggregate(tbClassified, models.TrialBalance)
		glStmts := calc.Aggregate(glClassified, models.GLActivity)
		merged, err := calc.MergeTBGL(tbStmts, glStmts, o.cfg.StatementYearCount)
		if err != nil {
			return nil, fmt.Errorf("merge trial balance and GL: %w", err)
		}
		result.Mode = ModeMerged
		result.Statements = merged
		result.StatementYears = calc.StatementYears(merged)
		if years := calc.Years(merged); len(years) > 0 {
			result.Year0 = years[0]
			result.HasYear0 = true
		}

	case len(in.TrialBalance) > 0:
		result.Mode = ModeTrialBalanceOnly
		result.Statements = calc.Aggregate(tbClassified, models.TrialBalance)
		result.StatementYears = calc.Years(result.Statements)

	default:
		result.Mode = ModeGLOnly
		result.Statements = calc.Aggregate(glClassified, models.GLActivity)
		result.StatementYears = calc.Years(result.Statements)
	}

	// GL-only sets have no balance sheet to check against, so residuals
	// would just restate the income statement.
	if result.Mode != ModeGLOnly {
		result.Checks = calc.Reconcile(result.Statements)
	} else {
		result.Checks = map[int]calc.CheckResult{}
	}
	log.Info().
		Str("mode", string(result.Mode)).
		Ints("statement_years", result.StatementYears).
		Int("checked_years", len(result.Checks)).
		Msg("statements derived")

	if o.repo != nil {
		if err := o.repo.SaveRun(ctx, result); err != nil {
			return nil, fmt.Errorf("persist run %s: %w", runID, err)
		}
		log.Info().Msg("run persisted")
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("pipeline complete")
	return result, nil
}
