package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"student-manager-go/app"
	"student-manager-go/config"
	"student-manager-go/db"
	"student-manager-go/handlers"
	"student-manager-go/loader"
	"student-manager-go/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "student-manager",
	Short:         "Manage student records (name, age, address, class)",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd(), tuiCmd(), seedCmd(), importCmd(), exportCmd(), listCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

// runtimeDeps is what every command needs: config, backend and store
type runtimeDeps struct {
	cfg     *config.Config
	backend db.Backend
	records *store.RecordStore
}

func (d *runtimeDeps) Close() {
	if err := d.backend.Close(); err != nil {
		log.Warnf("Error closing storage backend: %v", err)
	}
}

func openDeps(ctx context.Context) (*runtimeDeps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := config.ConfigureLogging(cfg.Log); err != nil {
		return nil, err
	}
	backend, err := db.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	log.Infof("Using %s storage (key=%s)", cfg.Storage.Backend, cfg.Storage.Key)
	return &runtimeDeps{
		cfg:     cfg,
		backend: backend,
		records: store.New(ctx, backend),
	}, nil
}

func serveCmd() *cobra.Command {
	var seed int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			deps, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			// Only an empty collection is seeded.
			if _, err := loader.SeedIfEmpty(ctx, deps.records, seed); err != nil {
				log.Warnf("Seeding failed: %v", err)
			}

			if log.GetLevel() < log.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}
			router := handlers.NewRouter(app.NewSession(deps.records))
			srv := &http.Server{Addr: deps.cfg.Server.Addr, Handler: router}

			errCh := make(chan error, 1)
			go func() {
				log.Infof("Starting server on %s", srv.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				log.Info("Shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().IntVar(&seed, "seed", 0, "add this many generated students when storage is empty")
	return cmd
}
