package main

import (
	"riskhypo/adapters/postgres"
	"riskhypo/ports"
	"riskhypo/ui"

	"github.com/spf13/cobra"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline once and serve the report over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if port == "" {
				port = cfg.Server.Port
			}

			var repo ports.ReportRepository
			if cfg.Database.URL != "" {
				db, err := openDatabase(cmd.Context(), cfg.Database.URL, logger)
				if err != nil {
					return err
				}
				defer db.Close()
				repo = postgres.NewReportRepository(db)
			}

			server := ui.NewApp(ui.Config{Port: port}, repo, logger)
			if cfg.Data.File != "" || flags.file != "" {
				svc, _, _, err := newPipeline(flags, repo)
				if err != nil {
					return err
				}
				result, err := svc.Run(cmd.Context())
				if err != nil {
					return err
				}
				server.SetResult(result)
			} else {
				logger.Warn("no input file configured, serving stored runs only")
			}
			return server.Start()
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "HTTP port (overrides PORT)")
	return cmd
}
