// Command threestmt builds a three-statement model from ledger CSV exports
// and prints the statements plus reconciliation checks.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"threestmt/pkg/core/calc"
	"threestmt/pkg/core/classify"
	"threestmt/pkg/core/ingest"
	"threestmt/pkg/core/pipeline"
	"threestmt/pkg/core/report"
	"threestmt/pkg/core/store"
	"threestmt/pkg/logger"
	"threestmt/pkg/models"
)

func main() {
	var (
		tbPath     = flag.String("tb", "", "trial balance CSV (snapshot data)")
		glPath     = flag.String("gl", "", "GL activity CSV (posting data)")
		rangesPath = flag.String("ranges", "", "account number range overrides (HJSON)")
		configPath = flag.String("config", "", "pipeline config YAML")
		years      = flag.Int("years", 0, "statement year count (overrides config)")
		strict     = flag.Bool("strict", false, "stop on critical validation issues")
		persist    = flag.Bool("persist", false, "save the run to Postgres (DATABASE_URL)")
	)
	flag.Parse()

	if *tbPath == "" && *glPath == "" {
		fmt.Fprintln(os.Stderr, "usage: threestmt -tb tb.csv [-gl gl.csv] [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using existing environment")
	}
	lg := logger.New()

	cfg := pipeline.DefaultConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("read config: %v", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("parse config: %v", err)
		}
	}
	if *years > 0 {
		cfg.StatementYearCount = *years
	}
	if *strict {
		cfg.Strict = true
	}

	var ranges classify.RangeTable
	if *rangesPath != "" {
		var err error
		ranges, err = classify.LoadRangesFile(*rangesPath)
		if err != nil {
			log.Fatalf("load ranges: %v", err)
		}
		lg.Info().Int("entries", len(ranges)).Str("file", *rangesPath).Msg("using custom account ranges")
	}

	tb := loadLedger(*tbPath, "trial balance")
	gl := loadLedger(*glPath, "gl activity")

	ctx := context.Background()
	orch := pipeline.New(cfg)
	orch.SetLogger(lg)

	if *persist {
		if err := store.InitDB(ctx); err != nil {
			log.Fatalf("init database: %v", err)
		}
		defer store.Close()
		orch.SetRepository(store.NewRunRepo())
	}

	result, err := orch.Run(ctx, pipeline.Input{
		TrialBalance: tb,
		GLActivity:   gl,
		Ranges:       ranges,
	})
	if err != nil {
		var vErr *pipeline.ValidationError
		var snapErr *calc.MissingOpeningSnapshotError
		switch {
		case errors.As(err, &vErr):
			fmt.Fprintln(os.Stderr, "validation failed:")
			for _, is := range vErr.Issues {
				fmt.Fprintf(os.Stderr, "  [%s] %s: %s\n", is.Severity, is.Category, is.Summary)
			}
			os.Exit(1)
		case errors.As(err, &snapErr):
			fmt.Fprintf(os.Stderr, "%v\n", snapErr)
			fmt.Fprintf(os.Stderr, "provide a %d year-end trial balance snapshot or reduce -years\n", snapErr.Year0)
			os.Exit(1)
		default:
			log.Fatalf("pipeline: %v", err)
		}
	}

	printRun(result, cfg)
}

func loadLedger(path, label string) []models.LedgerRecord {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", label, err)
	}
	defer f.Close()

	records, rep, err := ingest.ReadLedgerCSV(f)
	if err != nil {
		log.Fatalf("parse %s: %v", label, err)
	}
	if rep.BadDates > 0 || rep.BadAmounts > 0 {
		log.Printf("%s: %d rows with bad dates, %d with bad amounts", label, rep.BadDates, rep.BadAmounts)
	}
	converted, ok := ingest.ConvertToUSD(records)
	if !ok {
		log.Printf("%s: unknown currency %s, amounts left unconverted", label, ingest.DetectCurrency(records))
	}
	return converted
}

func printRun(result *pipeline.Result, cfg pipeline.Config) {
	fmt.Printf("Run %s (%s)\n", result.RunID, result.Mode)
	fmt.Printf("Mapped %d/%d accounts (%.1f%%), %d unclassified\n\n",
		result.Stats.MappedAccounts, result.Stats.TotalAccounts,
		result.Stats.MappingRate*100, result.Stats.UnclassifiedAccounts)

	for _, is := range result.Issues {
		fmt.Printf("[%s] %s: %s\n", is.Severity, is.Category, is.Summary)
	}
	if len(result.Issues) > 0 {
		fmt.Println()
	}

	if err := report.RenderStatements(os.Stdout, result.Statements, result.StatementYears); err != nil {
		log.Fatalf("render statements: %v", err)
	}

	if len(result.Checks) > 0 {
		fmt.Println()
		tol := cfg.BalanceSheetTolerance
		if cfg.CashFlowTolerance > tol {
			tol = cfg.CashFlowTolerance
		}
		if err := report.RenderChecks(os.Stdout, result.Checks, result.StatementYears, tol); err != nil {
			log.Fatalf("render checks: %v", err)
		}
	}
}
