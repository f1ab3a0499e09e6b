package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"riskhypo/adapters/postgres"
	"riskhypo/adapters/tabular"
	"riskhypo/app"
	"riskhypo/domain/hypothesis"
	"riskhypo/internal"
	"riskhypo/internal/config"
	"riskhypo/internal/errors"
	"riskhypo/internal/migration"
	"riskhypo/ports"
	"riskhypo/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects to PostgreSQL and applies the schema
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel), os.Stderr)

	if appConfig.Profiling.Enabled {
		go func() {
			addr := "localhost:" + appConfig.Profiling.Port
			logger.Info("pprof listening on %s", addr)
			if err := http.ListenAndServe(addr, nil); err != nil {
				logger.Error("pprof server stopped: %v", err)
			}
		}()
	}

	ctx := context.Background()

	var repo ports.ReportRepository
	if appConfig.Database.URL != "" {
		db, err := initDatabase(ctx, appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		repo = postgres.NewReportRepository(db)
	} else {
		logger.Info("DATABASE_URL not set, reports will not be persisted")
	}

	server := ui.NewApp(ui.Config{Port: appConfig.Server.Port}, repo, logger)

	if appConfig.Data.File != "" {
		hs, err := appConfig.Hypotheses()
		if err != nil {
			log.Fatalf("Failed to load hypotheses: %v", err)
		}
		opts := app.DefaultPipelineOptions()
		opts.Hypotheses = hs
		opts.Dates.Columns = appConfig.Data.DateColumns
		opts.AddDateParts = appConfig.Analysis.AddDateParts
		opts.Runner.Parallel = appConfig.Analysis.ParallelTests
		opts.Runner.MaxWorkers = appConfig.Analysis.MaxWorkers
		if appConfig.Analysis.MinGroupSize != hypothesis.DefaultMinGroupSize {
			opts.Runner.MinGroupSize = appConfig.Analysis.MinGroupSize
		}

		reader := tabular.NewDataReader(appConfig.ReaderConfig(), logger)
		result, err := app.NewPipelineService(reader, repo, logger, opts).Run(ctx)
		if err != nil {
			log.Fatalf("Pipeline failed: %v", err)
		}
		server.SetResult(result)
	} else {
		logger.Warn("DATA_FILE not set, serving stored runs only")
	}

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
