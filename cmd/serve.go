package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/face-enroll/internal/config"
	"github.com/kozaktomas/face-enroll/internal/facecheck"
	"github.com/kozaktomas/face-enroll/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the enrollment web server",
	Long: `Start the Face Enroll web server.
The server exposes the enrollment wizard as a JSON API: intro form,
per-pose capture with single-face validation and an alignment preview,
and the final ZIP download of accepted images plus metadata.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
	serveCmd.Flags().String("session-secret", "", "Secret for signing session cookies (defaults to random)")
	serveCmd.Flags().String("cascade", "", "Path to the frontal face Haar cascade XML (overrides FACE_CASCADE_PATH)")
}

// resolveServeConfig applies flag overrides on top of the environment config.
func resolveServeConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()

	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
	if secret := mustGetString(cmd, "session-secret"); secret != "" {
		cfg.Web.SessionSecret = secret
	}
	if cascade := mustGetString(cmd, "cascade"); cascade != "" {
		cfg.Face.CascadePath = cascade
	}
	return cfg
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := resolveServeConfig(cmd)

	fmt.Printf("Loading face cascade from %s...\n", cfg.Face.CascadePath)
	detector, err := facecheck.NewCascadeDetector(cfg.Face.CascadePath)
	if err != nil {
		return fmt.Errorf("failed to initialize face detector: %w", err)
	}
	defer detector.Close()

	server := web.NewServer(cfg, detector)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Enroll on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
