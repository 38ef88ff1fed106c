package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/antojitos/comanda/internal/config"
	"github.com/antojitos/comanda/internal/notify"
	"github.com/antojitos/comanda/internal/server"
	"github.com/antojitos/comanda/internal/service"
	"github.com/antojitos/comanda/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the comanda API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP listen port (overrides config)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP listen host (overrides config)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Development mode (verbose logging, generated secrets)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(host string, port int, dev bool) error {
	cfg := config.Default()
	if path := viper.ConfigFileUsed(); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyEnvOverrides(cfg)
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	logLevel := slog.LevelInfo
	if dev || cfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}
	logger := slog.New(handler)

	if cfg.Auth.SessionSecret == "" || cfg.Auth.OrderSecret == "" {
		if !dev {
			return fmt.Errorf("auth.session_secret and auth.order_secret must be configured (or run with --dev)")
		}
		cfg.Auth.SessionSecret = "comanda-dev-session-secret"
		cfg.Auth.OrderSecret = "comanda-dev-order-secret"
		logger.Warn("running with generated dev secrets; do not use in production")
	}

	st, err := store.Open(store.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	logger.Info("store opened", "driver", cfg.Database.Driver)

	hasAdmin, err := st.HasAnyAdministrator(context.Background())
	if err != nil {
		logger.Warn("failed to check for administrators", "error", err)
	}
	if !hasAdmin {
		logger.Warn("no administrator account found - run: comanda admin create")
	}

	if n, err := st.PurgeExpiredTokens(context.Background(), time.Now()); err != nil {
		logger.Warn("failed to purge expired revoked tokens", "error", err)
	} else if n > 0 {
		logger.Info("purged expired revoked tokens", "count", n)
	}

	tokens := service.NewTokenService(
		cfg.Auth.SessionSecret,
		cfg.Auth.OrderSecret,
		config.Duration(cfg.Auth.OrderTokenWindow, 10*time.Second),
	)
	auth := service.NewAuthService(st, tokens,
		config.Duration(cfg.Auth.SessionTTL, time.Hour),
		config.Duration(cfg.Auth.RefreshTTL, 24*time.Hour),
	)

	var sender notify.Sender
	if cfg.WhatsApp.AccountSID != "" {
		sender = notify.NewTwilioSender(notify.TwilioConfig{
			AccountSID: cfg.WhatsApp.AccountSID,
			AuthToken:  cfg.WhatsApp.AuthToken,
			From:       cfg.WhatsApp.From,
			To:         cfg.WhatsApp.To,
		})
		logger.Info("whatsapp notifications enabled", "to", cfg.WhatsApp.To)
	} else {
		sender = notify.NopSender{Logger: logger}
		logger.Warn("whatsapp credentials not configured; order notifications will be logged only")
	}

	srvCfg := server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: config.Duration(cfg.Server.ShutdownTimeout, 30*time.Second),
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimit:       cfg.Server.RateLimit,
		RateWindow:      config.Duration(cfg.Server.RateWindow, 15*time.Minute),
		TokenRateLimit:  cfg.Server.TokenRateLimit,
	}

	srv := server.New(srvCfg, st, tokens, auth, sender, logger)
	return srv.ListenAndServe()
}

// applyEnvOverrides sources secrets from the environment via viper, so
// credentials never need to live in the config file itself.
func applyEnvOverrides(cfg *config.Config) {
	if v := viper.GetString("auth.session_secret"); v != "" {
		cfg.Auth.SessionSecret = v
	}
	if v := viper.GetString("auth.order_secret"); v != "" {
		cfg.Auth.OrderSecret = v
	}
	if v := viper.GetString("whatsapp.account_sid"); v != "" {
		cfg.WhatsApp.AccountSID = v
	}
	if v := viper.GetString("whatsapp.auth_token"); v != "" {
		cfg.WhatsApp.AuthToken = v
	}
	if v := viper.GetString("database.dsn"); v != "" {
		cfg.Database.DSN = v
	}
	if v := viper.GetString("database.driver"); v != "" {
		cfg.Database.Driver = v
	}
}
