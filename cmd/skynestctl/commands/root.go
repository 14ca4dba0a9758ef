package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"skynest/internal/auth"
	"skynest/internal/backend"
	"skynest/internal/config"
	"skynest/internal/database"
	"skynest/internal/events"
	"skynest/internal/logging"
	"skynest/internal/notify"
	"skynest/internal/repository"
	"skynest/internal/service"
	"skynest/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	sessionPath string
	jsonOutput  bool

	env *cliEnv
)

// cliEnv holds what every command needs once the config is loaded.
type cliEnv struct {
	cfg      *config.Config
	logger   *zerolog.Logger
	closers  []io.Closer
	db       *database.DB
	queue    *worker.SheetsWorker
	backend  *backend.Client
	sessions *auth.SessionManager
	services *service.Services

	// waitEvents blocks until staff notifications from mutations are sent.
	waitEvents func()
}

func (e *cliEnv) close() {
	if e.waitEvents != nil {
		e.waitEvents()
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}

func Execute() error {
	root := &cobra.Command{
		Use:          "skynestctl",
		Short:        "Operator CLI for the SkyNest Hotels portal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if sessionPath == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				sessionPath = filepath.Join(dir, ".skynest", "session")
			}
			e, err := newEnv(configPath)
			if err != nil {
				return err
			}
			env = e
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if env != nil {
				env.close()
			}
		},
	}

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "configs/config.yaml"
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "portal config file")
	root.PersistentFlags().StringVar(&sessionPath, "session", "", "session file (default ~/.skynest/session)")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of tables")

	root.AddCommand(loginCmd(), logoutCmd(), bookingsCmd(), ticketsCmd(), reportCmd(), syncCmd())
	return root.Execute()
}

func newEnv(path string) (*cliEnv, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	// The CLI writes tables to stdout; logs go to stderr unless a file is configured.
	if cfg.Logging.Output == "" || cfg.Logging.Output == "stdout" {
		cfg.Logging.Output = "stderr"
	}
	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, err
	}

	e := &cliEnv{cfg: cfg, logger: logger}
	if closer != nil {
		e.closers = append(e.closers, closer)
	}

	// Mutations made here feed the same audit log, ledger queue and staff
	// notifications as the portal's.
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		e.close()
		return nil, err
	}
	e.closers = append(e.closers, db)
	e.db = db

	var rc *redis.Client
	if cfg.Redis.Address != "" {
		rc = repository.NewRedisClient(cfg.Redis)
		e.closers = append(e.closers, closerFunc(func() error { return repository.Close(rc) }))
	}
	// Enqueue only: the running portal drains the queue.
	queue := worker.NewSheetsWorker(db, nil, rc, worker.DefaultRetryPolicy(), logging.Component(logger, "sheets-worker"))
	e.queue = queue

	bus := events.NewEventBus()
	e.waitEvents = events.RegisterAll(context.Background(), bus, events.Sinks{
		Activity: db,
		Notifier: notify.New(cfg.Telegram, logging.Component(logger, "notify")),
		Sync:     queue,
	}, logger)

	e.backend = backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout,
		backend.WithLogger(logging.Component(logger, "backend")),
	)
	e.sessions = auth.NewSessionManager(cfg.Portal.Session)
	e.services = service.New(service.Deps{
		Backend:   e.backend,
		Events:    bus,
		Activity:  db,
		Sync:      queue,
		Sessions:  e.sessions,
		ExportDir: cfg.Exports.Path,
		Logger:    logger,
	})
	return e, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
