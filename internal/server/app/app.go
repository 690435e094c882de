package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/yndnr/sessionlab-go/internal/core/service"
	"github.com/yndnr/sessionlab-go/internal/infra/confloader"
	"github.com/yndnr/sessionlab-go/internal/infra/shutdown"
	"github.com/yndnr/sessionlab-go/internal/infra/tlscert"
	"github.com/yndnr/sessionlab-go/internal/server/config"
	"github.com/yndnr/sessionlab-go/internal/server/httpserver"
	"github.com/yndnr/sessionlab-go/internal/server/httpserver/handler"
	"github.com/yndnr/sessionlab-go/internal/server/httpserver/view"
	"github.com/yndnr/sessionlab-go/internal/storage/capturelog"
	"github.com/yndnr/sessionlab-go/internal/storage/memory"
	"github.com/yndnr/sessionlab-go/internal/telemetry/metric"
)

// Display names of the apps.
const (
	NameVulnerable = "Vulnerable App"
	NameHardened   = "Hardened App"
	NameCollector  = "Collector"
)

// App is one wired SessionLab application.
type App struct {
	cfg     *config.ServerConfig
	logger  *slog.Logger
	metrics *metric.Registry

	handler http.Handler
	server  *httpserver.Server

	// victim apps
	sessions *service.SessionService
	auth     *service.AuthService
	limiter  *service.LoginLimiter

	// collector
	captures *capturelog.File

	certs *tlscert.Reloader
}

// New wires the app described by cfg. cfg must have passed config.Verify.
func New(cfg *config.ServerConfig, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("app", string(cfg.App))

	a := &App{cfg: cfg, logger: log}
	if cfg.Metrics.Enabled {
		a.metrics = metric.NewRegistry(string(cfg.App))
	}

	var err error
	switch cfg.App {
	case config.AppVulnerable, config.AppHardened:
		err = a.initVictim()
	case config.AppCollector:
		err = a.initCollector()
	default:
		err = fmt.Errorf("unknown app %q", cfg.App)
	}
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	if err := a.initServer(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) hardened() bool {
	return a.cfg.App == config.AppHardened
}

func (a *App) initVictim() error {
	policy := service.VulnerablePolicy()
	mode := service.PasswordPlaintext
	newViews := view.NewRaw
	cookie := handler.VulnerableCookie()
	name, variant := NameVulnerable, "Vulnerable"
	if a.hardened() {
		policy = service.HardenedPolicy(a.cfg.Session.TTL)
		mode = service.PasswordArgon2
		newViews = view.NewEscaped
		cookie = handler.HardenedCookie(a.cfg.Cookie.Secure, a.cfg.Session.TTL)
		name, variant = NameHardened, "Hardened"
		a.limiter = service.NewLoginLimiter(a.cfg.Auth.LoginAttempts, a.cfg.Auth.LoginInterval)
	}

	views, err := newViews()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	users, err := a.initialUsers()
	if err != nil {
		return err
	}
	a.auth = service.NewAuthService(memory.NewUserStore(nil), mode, a.logger)
	if err := a.auth.LoadUsers(context.Background(), users); err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	store := memory.New(memory.WithShardCount(a.cfg.Session.ShardCount))
	a.sessions = service.NewSessionService(store, a.auth, policy, a.logger, a.metrics)

	h := handler.NewVictim(handler.VictimConfig{
		App:        name,
		Variant:    variant,
		Sessions:   a.sessions,
		Limiter:    a.limiter,
		Views:      views,
		Cookie:     cookie,
		TrustProxy: a.cfg.HTTP.TrustProxy,
		Logger:     a.logger,
		Metrics:    a.metrics,
	})
	a.handler = httpserver.NewVictimRouter(h, &httpserver.RouterConfig{
		Logger:          a.logger,
		Metrics:         a.metrics,
		TrustProxy:      a.cfg.HTTP.TrustProxy,
		SecurityHeaders: a.hardened(),
	})
	return nil
}

func (a *App) initialUsers() (map[string]string, error) {
	if a.cfg.Auth.UsersFile != "" {
		users, err := confloader.LoadUsersFile(a.cfg.Auth.UsersFile)
		if err != nil {
			return nil, err
		}
		return users, nil
	}
	return a.cfg.Auth.InitialUsers(), nil
}

func (a *App) initCollector() error {
	views, err := view.NewEscaped()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	a.captures, err = capturelog.Open(a.cfg.Collector.LogFile)
	if err != nil {
		return err
	}

	collector := service.NewCollectorService(a.captures, a.cfg.Collector.Recent, a.logger, a.metrics)
	h := handler.NewCollector(handler.CollectorConfig{
		App:        NameCollector,
		Collector:  collector,
		Views:      views,
		VictimURL:  a.cfg.Collector.VictimURL,
		TrustProxy: a.cfg.HTTP.TrustProxy,
		Logger:     a.logger,
		Metrics:    a.metrics,
	})
	origins := a.cfg.Collector.AllowedOrigins
	if origins == nil {
		origins = []string{}
	}
	a.handler = httpserver.NewCollectorRouter(h, &httpserver.RouterConfig{
		Logger:             a.logger,
		Metrics:            a.metrics,
		TrustProxy:         a.cfg.HTTP.TrustProxy,
		CORSAllowedOrigins: origins,
	})
	return nil
}

func (a *App) initServer() error {
	srvCfg := httpserver.Config{
		Addr:         a.cfg.HTTP.Addr,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
	}
	if a.cfg.HTTP.TLSCertFile != "" {
		certs, err := tlscert.NewReloader(a.cfg.HTTP.TLSCertFile, a.cfg.HTTP.TLSKeyFile, tlscert.WithLogger(a.logger))
		if err != nil {
			return err
		}
		a.certs = certs
		srvCfg.TLS = certs.TLSConfig()
	}
	a.server = httpserver.New(srvCfg, a.handler, a.logger)
	return nil
}

// Handler returns the app's HTTP handler including middleware.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Sessions returns the session service, or nil for the collector.
func (a *App) Sessions() *service.SessionService {
	return a.sessions
}

// Run listens on the configured address and serves until ctx is cancelled
// or SIGINT/SIGTERM arrives, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.HTTP.Addr)
	if err != nil {
		_ = a.Close()
		return fmt.Errorf("listen %s: %w", a.cfg.HTTP.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sh := shutdown.NewHandler(a.cfg.HTTP.ShutdownTimeout, a.logger)
	var workers sync.WaitGroup
	workerCtx, stopWorkers := context.WithCancel(context.Background())

	// Hooks run in reverse: server first, then workers, then files.
	sh.OnShutdown("resources", func(context.Context) error {
		return a.Close()
	})
	sh.OnShutdown("workers", func(context.Context) error {
		stopWorkers()
		workers.Wait()
		return nil
	})

	if err := a.startWorkers(workerCtx, &workers); err != nil {
		_ = ln.Close()
		_ = sh.Shutdown()
		return err
	}

	serveErr := make(chan error, 1)
	sh.OnShutdown("http", func(ctx context.Context) error {
		a.logger.Info("shutting down HTTP server")
		return a.server.Shutdown(ctx)
	})
	go func() {
		err := a.server.Serve(ln)
		if err != nil {
			a.logger.Error("HTTP server error", "error", err)
			cancel()
		}
		serveErr <- err
	}()

	a.logger.Info("listening",
		"addr", ln.Addr().String(),
		"tls", a.server.TLS(),
	)

	shutdownErr := sh.Wait(ctx)
	err := <-serveErr
	if shutdownErr == nil && err == nil {
		a.logger.Info("stopped gracefully")
	}
	return errors.Join(err, shutdownErr)
}

func (a *App) startWorkers(ctx context.Context, wg *sync.WaitGroup) error {
	if a.sessions != nil && a.hardened() && a.cfg.Session.SweepInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.sessions.RunJanitor(ctx, a.cfg.Session.SweepInterval)
		}()
	}

	if a.limiter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.limiter.RunPruner(ctx, a.cfg.Auth.LoginInterval)
		}()
	}

	if a.auth != nil && a.cfg.Auth.UsersFile != "" {
		w, err := a.watchUsers()
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			if err := w.Stop(); err != nil {
				a.logger.Warn("stop users watcher", "error", err)
			}
		}()
	}

	if a.captures != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.reopenOnHangup(ctx)
		}()
	}

	if a.certs != nil {
		a.certs.StartAsync()
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			_ = a.certs.Stop()
			a.certs.Wait()
		}()
	}
	return nil
}

// watchUsers reloads the credential table when the users file changes.
// A file that fails to parse leaves the current table in place.
func (a *App) watchUsers() (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(a.logger))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(a.cfg.Auth.UsersFile); err != nil {
		_ = w.Stop()
		return nil, err
	}
	w.OnChange(func(path string) {
		a.ReloadUsers(path)
	})
	w.StartAsync()
	return w, nil
}

// ReloadUsers replaces the credential table from path.
func (a *App) ReloadUsers(path string) {
	users, err := confloader.LoadUsersFile(path)
	if err != nil {
		a.logger.Error("users file reload failed, keeping current users", "file", path, "error", err)
		return
	}
	if err := a.auth.LoadUsers(context.Background(), users); err != nil {
		a.logger.Error("users reload failed", "file", path, "error", err)
		return
	}
	a.logger.Info("users reloaded", "file", path, "users", len(users))
}

// reopenOnHangup reopens the capture log on SIGHUP, after logrotate.
func (a *App) reopenOnHangup(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := a.captures.Reopen(); err != nil {
				a.logger.Error("capture log reopen failed", "file", a.captures.Name(), "error", err)
				continue
			}
			a.logger.Info("capture log reopened", "file", a.captures.Name())
		}
	}
}

// Close releases files and watchers. It is safe to call more than once.
func (a *App) Close() error {
	var errs []error
	if a.captures != nil {
		errs = append(errs, a.captures.Close())
	}
	if a.certs != nil {
		errs = append(errs, a.certs.Stop())
	}
	return errors.Join(errs...)
}
