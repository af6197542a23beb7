package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/whereabouts/classifier"
	"github.com/teranos/whereabouts/logger"
	"github.com/teranos/whereabouts/models"
	"github.com/teranos/whereabouts/server"
	"github.com/teranos/whereabouts/store"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 10 * time.Second

// ServeCmd starts the collection/prediction server
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the collection and prediction server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		conn, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		registry, err := models.NewRegistry(cfg.Models.TrainedDir, logger.Logger)
		if err != nil {
			return err
		}
		if err := registry.Watch(); err != nil {
			return err
		}
		defer registry.Close()

		st := store.NewSQLStore(conn, logger.Logger)
		cls := classifier.NewHTTPClassifier(cfg.Classifier)
		srv := server.New(cfg, st, registry, cls, logger.Logger)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			logger.Logger.Infow("Shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}
