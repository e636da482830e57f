package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-agent/internal/server"
	"github.com/jonathan/cover-letter-agent/internal/server/ratelimit"
)

var (
	servePort      int
	serveStaticDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing one cover letter session over JSON endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to config server.port)")
	serveCmd.Flags().StringVar(&serveStaticDir, "static-dir", "", "Static reference directory (defaults to config static_content_dir)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := appConfig.Server.Port
	if servePort > 0 {
		port = servePort
	}

	session, err := newSession(ctx, appConfig, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	loadStaticContent(ctx, session, appConfig, serveStaticDir, appLogger)

	srv, err := server.New(server.Options{
		Service:        session,
		Port:           port,
		MaxUploadBytes: appConfig.MaxUploadBytes(),
		Limiter:        ratelimit.NewLimiter(ratelimit.LoadConfig(os.Getenv)),
		Logger:         appLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
