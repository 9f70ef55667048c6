package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/homielab/homie/internal/api"
	"github.com/homielab/homie/internal/config"
	"github.com/homielab/homie/internal/database"
	"github.com/homielab/homie/internal/features"
	"github.com/homielab/homie/internal/reminder"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Homie server",
	Long:  `Start the Homie server to serve the household pages, the JSON API and the admin panel.`,
	Example: `homie serve --config config.yml
homie serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc := features.NewService(db)

	server, err := api.New(ctx, cfg, db, svc, log.GetLevel() == log.DebugLevel)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	var reminders *reminder.Service
	if cfg.Reminders.Enabled {
		reminders, err = reminder.New(cfg, db)
		if err != nil {
			log.Fatalf("failed to create reminder service: %v", err)
		}
		go func() {
			if err := reminders.Run(ctx); err != nil {
				log.Error("reminder service error", "error", err)
			}
		}()
	}

	// Start the API server in a goroutine
	go func() {
		log.Info("starting API server", "listen", cfg.Listen)
		if err := server.Run(); err != nil {
			log.Error("API server error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	log.Info("homie started successfully")
	<-c
	log.Info("shutting down gracefully...")

	// Give time for graceful shutdown
	cancel()
	time.Sleep(2 * time.Second)
}
