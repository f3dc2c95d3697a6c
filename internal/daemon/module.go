package daemon

import (
	"context"
	"net/http"

	"github.com/schoolwatch/vtrack/internal/api"
	"github.com/schoolwatch/vtrack/internal/bus"
	"github.com/schoolwatch/vtrack/internal/config"
	"github.com/schoolwatch/vtrack/internal/lock"
	"github.com/schoolwatch/vtrack/internal/logging"
	"github.com/schoolwatch/vtrack/internal/profile"
	"github.com/schoolwatch/vtrack/internal/store"
	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	ProfileName       string
	Config            *config.Config // nil = config.Default()
	ControlSocketPath string         // optional override for testing; empty = use default
	ListenAddr        string         // optional override; empty = Config.ListenAddr
}

func (p Params) config() *config.Config {
	if p.Config == nil {
		return config.Default()
	}
	return p.Config
}

func (p Params) listenAddr() string {
	if p.ListenAddr != "" {
		return p.ListenAddr
	}
	return p.config().ListenAddr
}

func (p Params) controlSocketPath() string {
	if p.ControlSocketPath != "" {
		return p.ControlSocketPath
	}
	return profile.ControlSocketPath(p.ProfileName)
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideServices,
			provideRouter,
			NewHTTPServer,
			NewControlServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.DaemonLogPath(p.ProfileName), p.ProfileName)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.ProfileName); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.ProfileName))
	l, err := lock.Acquire(profile.Dir(p.ProfileName))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

// provideStore depends on the lock so the database is never opened by two daemons.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.DBPath(p.ProfileName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideServices(db *store.DB, b *bus.Bus, logger *zap.Logger) api.Services {
	return api.Services{
		Auth:       api.NewAuthService(db, logger.Named("auth"), 0),
		Profile:    api.NewProfileService(db, logger.Named("profile"), 0),
		Search:     api.NewSearchService(db, logger.Named("search"), nil),
		Violations: api.NewViolationService(db, b, logger.Named("violations"), nil),
		Students:   api.NewStudentService(db, logger.Named("students")),
	}
}

func provideRouter(s api.Services, logger *zap.Logger) http.Handler {
	return api.NewRouter(s, logger.Named("http"))
}

func registerLifecycle(lc fx.Lifecycle, httpSrv *HTTPServer, ctrl *ControlServer, db *store.DB, lk *lock.Lock, b *bus.Bus, logger *zap.Logger) {
	var unsubscribe func()
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			events, unsub := b.Subscribe("violation.", 64)
			unsubscribe = unsub
			go logViolations(events, done, logger.Named("events"))

			go func() {
				if err := httpSrv.Start(); err != nil {
					logger.Error("HTTP server error", zap.Error(err))
					ctrl.SetServing(false)
				}
			}()
			go func() {
				if err := ctrl.Start(); err != nil {
					logger.Error("control server error", zap.Error(err))
				}
			}()
			ctrl.SetServing(true)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctrl.SetServing(false)
			if err := httpSrv.Stop(ctx); err != nil {
				logger.Warn("HTTP shutdown", zap.Error(err))
			}
			ctrl.Stop(ctx)
			if unsubscribe != nil {
				unsubscribe()
			}
			close(done)
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}

func logViolations(events <-chan bus.Event, done <-chan struct{}, logger *zap.Logger) {
	for {
		select {
		case <-done:
			return
		case evt := <-events:
			v, ok := evt.Payload.(wire.Violation)
			if !ok {
				continue
			}
			logger.Debug("violation event",
				zap.String("kind", evt.Kind),
				zap.Int64("violation_id", v.ID),
				zap.Stringer("status", v.Status),
				zap.Time("at", evt.Timestamp),
			)
		}
	}
}
