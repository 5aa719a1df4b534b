package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ghada-Shaban/LinkUp/internal/config"
	"github.com/Ghada-Shaban/LinkUp/internal/database"
	"github.com/Ghada-Shaban/LinkUp/internal/notify"
	"github.com/Ghada-Shaban/LinkUp/internal/repository"
	"github.com/Ghada-Shaban/LinkUp/internal/services"
	"github.com/Ghada-Shaban/LinkUp/pkg/utils/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type jobRuntime struct {
	cfg     *config.Config
	logger  *zap.Logger
	expirer *services.ExpirerService
	close   func()
}

func newRootCmd() *cobra.Command {
	var concurrency int

	root := &cobra.Command{
		Use:          "expirer",
		Short:        "Cancel mentorship requests whose payment window has passed",
		SilenceUsage: true,
	}
	root.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "holds processed in parallel (defaults to EXPIRER_CONCURRENCY)")

	once := &cobra.Command{
		Use:   "once",
		Short: "Run a single sweep and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd.Context(), concurrency)
			if err != nil {
				return err
			}
			defer rt.close()

			cancelled, err := rt.expirer.ExpireOverduePayments(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cancelled %d requests\n", cancelled)
			return nil
		},
	}

	var interval time.Duration
	run := &cobra.Command{
		Use:   "run",
		Short: "Sweep on a fixed interval until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd.Context(), concurrency)
			if err != nil {
				return err
			}
			defer rt.close()

			every := interval
			if every <= 0 {
				every = rt.cfg.ExpirerInterval
			}
			rt.logger.Info("expirer started", zap.Duration("interval", every))
			if err := rt.expirer.Run(cmd.Context(), every); err != nil && cmd.Context().Err() == nil {
				return err
			}
			rt.logger.Info("expirer stopped")
			return nil
		},
	}
	run.Flags().DurationVar(&interval, "interval", 0, "time between sweeps (defaults to EXPIRER_INTERVAL)")

	root.AddCommand(once, run)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	cobra.OnFinalize(stop)
	root.SetContext(ctx)
	return root
}

func setup(ctx context.Context, concurrency int) (*jobRuntime, error) {
	cfg, err := config.LoadJobConfig()
	if err != nil {
		return nil, err
	}
	zl, err := logging.New(cfg.AppEnv)
	if err != nil {
		log.Printf("Failed to build logger: %v", err)
		zl = zap.NewNop()
	}
	zl = zl.Named("expirer")

	db, err := database.Connect(ctx, cfg.DBUrl, zl)
	if err != nil {
		return nil, err
	}

	var mailCredentials string
	if cfg.MailEnabled() {
		mailCredentials = cfg.GmailCredentialsFile
	}
	sender, err := notify.NewSender(ctx, zl.Named("mail"), mailCredentials, cfg.GmailSender, nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	if concurrency <= 0 {
		concurrency = cfg.ExpirerConcurrency
	}
	notifier := services.NewNotifier(sender, repository.NewUserRepository(db), zl.Named("notifier"))

	return &jobRuntime{
		cfg:     cfg,
		logger:  zl,
		expirer: services.NewExpirerService(db, notifier, zl, concurrency),
		close: func() {
			db.Close()
			_ = zl.Sync()
		},
	}, nil
}
