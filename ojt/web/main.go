package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ojttracker.com/ojttracker/config"
	"ojttracker.com/ojttracker/core"
	"ojttracker.com/ojttracker/infrastructure/cache"
	"ojttracker.com/ojttracker/infrastructure/communication"
	"ojttracker.com/ojttracker/infrastructure/devops"
	"ojttracker.com/ojttracker/infrastructure/filesystem"
	"ojttracker.com/ojttracker/infrastructure/mail"
	"ojttracker.com/ojttracker/logging"
	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/store/inmem"
	"ojttracker.com/ojttracker/ojt/web/common"
	"ojttracker.com/ojttracker/security"
	"ojttracker.com/ojttracker/utils"
)

func main() {
	cfg := config.MustLoad(".env")
	logging.Setup(logging.Options{Env: cfg.Env, RollbarToken: cfg.RollbarToken, CodeVersion: version})
	defer logging.Close()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := utils.LoadLocation(cfg.Timezone)
	slack := communication.NewSlack(cfg.Slack.Token, communication.SlackOption{
		InfoChannelID:  cfg.Slack.InfoChannel,
		ErrorChannelID: cfg.Slack.ErrorChannel,
	})

	jwtSecret, err := security.DecodeSecret(cfg.JWTSecret)
	if err != nil {
		log.Fatal("Failed to decode JWT secret:", err)
	}

	base := &common.Handler{
		Loc:           loc,
		Slack:         slack,
		RetentionDays: cfg.Retention.Days,
	}

	if cfg.DB.Driver == "inmem" {
		slog.Warn("using the in-memory store, data is lost on exit")
		base.Mem = inmem.New()
	} else {
		dsn := cfg.DB.DSN
		if cfg.DB.TenantsFromSSM {
			if dsn, err = devops.ResolveDSN(ctx, cfg.DB.Driver, cfg.DB.SSMEnv); err != nil {
				log.Fatal(err)
			}
		}
		// Opened on the first request.
		core.Configure(core.Options{
			Driver:         cfg.DB.Driver,
			DSN:            dsn,
			MaxConnections: cfg.DB.MaxConnections,
			LogLevel:       core.ParseLogLevel(cfg.DB.LogLevel),
		})
		defer func() {
			if err := core.Shutdown(); err != nil {
				slog.Error("closing database pool", "error", err)
			}
		}()

		retention, err := startRetention(cfg, loc, slack)
		if err != nil {
			log.Fatal(err)
		}
		if retention != nil {
			defer retention.Stop()
		}
	}

	if profiles := cache.Connect(ctx, cfg.RedisAddr, cfg.ProfileTTL); profiles != nil {
		base.Cache = profiles
		defer profiles.Close()
	}

	var sender mail.Sender = mail.NopSender{}
	if cfg.Mail.Enabled {
		ses, err := mail.NewSESSender(ctx)
		if err != nil {
			log.Fatal(err)
		}
		sender = ses
	}
	base.Notifier = &ojt.MailNotifier{From: cfg.Mail.From, Sender: sender}

	if cfg.ProofS3Bucket != "" {
		proofs, err := filesystem.NewS3Store(ctx, cfg.ProofS3Bucket)
		if err != nil {
			log.Fatal(err)
		}
		base.Proofs = proofs
	}

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewRouter(base, jwtSecret),
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr, "driver", cfg.DB.Driver, "timezone", loc.String())
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("could not stop server gracefully", "error", err)
			server.Close()
		}
	}
}
