package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/harrylevesque/qrforge/internal/api"
	"github.com/harrylevesque/qrforge/internal/certs"
	"github.com/harrylevesque/qrforge/internal/config"
	"github.com/harrylevesque/qrforge/internal/crypto"
	"github.com/harrylevesque/qrforge/internal/files"
	"github.com/harrylevesque/qrforge/internal/utils"
)

func main() {
	configPath := pflag.StringP("config", "c", utils.ProjectFile("config.yaml"), "YAML config file")
	envFile := pflag.String("env-file", utils.ProjectFile(".env"), "dotenv file loaded before QRFORGE_* variables")
	addr := pflag.StringP("addr", "a", "", "listen address, overrides app.addr")
	pflag.Parse()

	if err := run(*configPath, *envFile, *addr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(configPath, envFile, addr string) error {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.App.Addr = addr
	}

	logger, err := utils.NewLogger(cfg.App.Env, cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return err
	}
	defer logger.Close()

	masterKey, err := files.ReadMasterKey(cfg.Security.MasterKeyHex, cfg.Security.MasterKeyFile)
	if errors.Is(err, files.ErrNoMasterKey) {
		logger.Warn().Msg("no master key configured, download links will not survive a restart")
		masterKey = crypto.MustRandom(crypto.MasterKeySize)
	} else if err != nil {
		return fmt.Errorf("reading master key: %w", err)
	}

	sealer, err := crypto.NewSealer(masterKey, cfg.Security.TokenTTL)
	if err != nil {
		return err
	}
	srv, err := api.NewServer(cfg, logger.Logger, sealer)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.App.Addr,
		Handler:           api.NewRouter(srv),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	if cfg.TLS.Enabled() {
		cm := certs.NewCertManager(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		tlsCfg, err := cm.TLSConfig()
		if err != nil {
			return err
		}
		if leaf := tlsCfg.Certificates[0].Leaf; cm.ExpiresWithin(leaf, 14*24*time.Hour) {
			logger.Warn().Time("not_after", leaf.NotAfter).Msg("TLS certificate expires soon")
		}
		httpServer.TLSConfig = tlsCfg
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.App.Addr).Bool("tls", cfg.TLS.Enabled()).Msg("server running")
		var err error
		if httpServer.TLSConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
