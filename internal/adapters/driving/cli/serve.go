package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/adapters/driven/storage/sqlite"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/adapters/driving/httpapi"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/config"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/services"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/logger"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/providers/google"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/providers/microsoft"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/providers/smtp"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/providers/zoom"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HireFlow HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		logger.SetVerbose(true)
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	creds := store.CredentialStore()
	interviews := store.InterviewStore()

	registry := services.NewRegistry()
	if cfg.Google.ClientID != "" {
		registry.Register(domain.ProviderGoogle, google.New(google.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURI:  cfg.Google.RedirectURI,
		}, creds))
		registry.SetDefault(domain.ProviderGoogle)
	} else {
		logger.Warn("google client id not set, google provider disabled")
	}
	if cfg.Microsoft.ClientID != "" {
		registry.Register(domain.ProviderMicrosoft, microsoft.New(microsoft.Config{
			ClientID:     cfg.Microsoft.ClientID,
			ClientSecret: cfg.Microsoft.ClientSecret,
			RedirectURI:  cfg.Microsoft.RedirectURI,
		}, creds))
	} else {
		logger.Warn("microsoft client id not set, microsoft provider disabled")
	}
	if cfg.Zoom.ClientID != "" {
		registry.Register(domain.ProviderZoom, zoom.New(zoom.Config{
			ClientID:     cfg.Zoom.ClientID,
			ClientSecret: cfg.Zoom.ClientSecret,
			RedirectURI:  cfg.Zoom.RedirectURI,
		}, creds))
	} else {
		logger.Warn("zoom client id not set, zoom provider disabled")
	}

	mailer := smtp.NewMailer(creds, smtp.Defaults{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		Sender:   cfg.SMTP.Sender,
	})
	scheduler := services.NewScheduler(registry, creds, interviews, mailer)

	api := httpapi.NewServer(registry, scheduler, creds)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("hireflow %s listening on %s", version, cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	return nil
}
