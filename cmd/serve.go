package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/wordbot/internal/bot"
	"github.com/example/wordbot/internal/config"
	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/dictionary"
	"github.com/example/wordbot/internal/metrics"
	"github.com/example/wordbot/internal/scheduler"
	"github.com/example/wordbot/internal/session"
	"github.com/example/wordbot/internal/vocabulary"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := openDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		users := database.NewUserRepository(db)
		words := database.NewWordRepository(db)
		engine := session.NewEngine(
			session.Config{Threshold: cfg.Session.Threshold},
			words,
			users,
			database.NewUserProgressRepository(db),
			newCache(cfg.Dictionary, db, logger),
			logger,
		)

		b, err := bot.New(cfg.Bot, engine, logger)
		if err != nil {
			return err
		}

		if cfg.Reminder.Enabled {
			s, err := scheduler.New(cfg.Reminder, users, b, logger)
			if err != nil {
				return err
			}
			if err := s.Start(ctx); err != nil {
				return err
			}
			defer s.Stop()
		}

		g, ctx := errgroup.WithContext(ctx)
		if cfg.Metrics.Addr != "" {
			g.Go(func() error {
				logger.WithField("addr", cfg.Metrics.Addr).Info("serving metrics")
				return metrics.Serve(ctx, cfg.Metrics.Addr)
			})
		}
		g.Go(func() error {
			logger.Info("bot started")
			return b.Start(ctx)
		})

		err = g.Wait()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		logger.Info("bot stopped")
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newCache builds the word cache over the dictionary provider
func newCache(cfg config.DictionaryConfig, db *sqlx.DB, logger logrus.FieldLogger) *vocabulary.Cache {
	var audio *vocabulary.AudioStore
	if cfg.AudioDir != "" {
		audio = vocabulary.NewAudioStore(cfg.AudioDir)
	}
	return vocabulary.NewCache(database.NewWordRepository(db), dictionary.NewClient(cfg), audio, logger)
}
