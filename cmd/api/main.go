package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"threestmt/pkg/api/statements"
	"threestmt/pkg/core/pipeline"
	"threestmt/pkg/core/store"
	"threestmt/pkg/logger"
)

func main() {
	// Load environment variables
	godotenv.Load()
	lg := logger.New()

	cfg := pipeline.DefaultConfig()
	if data, err := os.ReadFile("config/config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("parse config/config.yaml: %v", err)
		}
		lg.Info().Msg("loaded config/config.yaml")
	}

	// Persistence is optional: without DATABASE_URL the API still serves,
	// it just does not record runs.
	var repo pipeline.Repository
	var loader statements.RunLoader
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			log.Fatalf("init database: %v", err)
		}
		defer store.Close()
		runRepo := store.NewRunRepo()
		repo = runRepo
		loader = runRepo
		lg.Info().Msg("run persistence enabled")
	} else {
		lg.Warn().Msg("DATABASE_URL not set, runs will not be persisted")
	}

	handler := statements.NewHandler(cfg, repo, loader, lg)
	http.HandleFunc("/api/statements", handler.HandleGenerate)
	http.HandleFunc("/api/statements/run", handler.HandleGetRun)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	fmt.Printf("API server starting on %s...\n", addr)
	fmt.Println("  - POST /api/statements      (multipart: trial_balance, gl_activity, ranges)")
	fmt.Println("  - GET  /api/statements/run  (?id=<run_id>)")

	if err := http.ListenAndServe(addr, nil); err != nil {
		lg.Error().Err(err).Msg("server failed to start")
		os.Exit(1)
	}
}
