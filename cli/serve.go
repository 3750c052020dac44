package cli

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"videoninja/handlers"
	"videoninja/utils"
)

type ServeOptions struct {
	Port string
}

func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Port, "port", "p", "", "Port to listen on (defaults to PORT)")

	return cmd
}

func runServe(opts *ServeOptions) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	log.Printf("Configuration loaded: %s", a.cfg)

	if opts.Port != "" {
		a.cfg.Port = opts.Port
	}

	stop := make(chan struct{})
	defer close(stop)
	utils.ScheduleCleanup(a.cfg.DocumentsDir, a.cfg.CleanupAfter, stop)
	go forgetJobs(a, stop)

	router := handlers.NewRouter(
		a.cfg.AllowedOrigins,
		a.cfg.JWTSecret,
		handlers.NewVideoHandler(a.sessions, a.picker, a.merger, a.exporter),
		handlers.NewLibraryHandler(a.library, a.auth, filepath.Join(a.cfg.DocumentsDir, "uploads")),
	)

	addr := fmt.Sprintf(":%s", a.cfg.Port)
	log.Printf("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// forgetJobs drops finished jobs on the same schedule as file cleanup.
func forgetJobs(a *app, stop <-chan struct{}) {
	if a.cfg.CleanupAfter <= 0 {
		return
	}
	ticker := time.NewTicker(a.cfg.CleanupAfter / 4)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := a.exporter.Forget(a.cfg.CleanupAfter); n > 0 {
				log.Printf("[Cleanup] forgot %d finished jobs", n)
			}
		}
	}
}
