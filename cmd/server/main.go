package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	abuseConfig "aegis/internal/abuse/config"
	abuseHandler "aegis/internal/abuse/handler"
	"aegis/internal/abuse/metrics"
	abuseMW "aegis/internal/abuse/middleware"
	abuseService "aegis/internal/abuse/service"
	banStore "aegis/internal/abuse/store/ban"
	statsStore "aegis/internal/abuse/store/stats"
	"aegis/internal/abuse/tracer"
	"aegis/internal/abuse/workers/sweeper"
	identityHandler "aegis/internal/identity/handler"
	identityService "aegis/internal/identity/service"
	identityStore "aegis/internal/identity/store/identity"
	permissionStore "aegis/internal/identity/store/permission"
	sessionStore "aegis/internal/identity/store/session"
	"aegis/internal/identity/token"
	"aegis/internal/platform/config"
	"aegis/internal/platform/database"
	"aegis/internal/platform/httpserver"
	"aegis/internal/platform/logger"
	httptransport "aegis/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing aegis",
		"addr", cfg.Addr,
		"persistent_storage", cfg.DatabaseURL != "",
	)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var (
		stats      abuseService.StatsStore
		bans       abuseService.BanStore
		perms      identityService.PermissionStore
		abusePerms abuseService.PermissionStore
	)
	if pool != nil {
		defer pool.Close() //nolint:errcheck // process is exiting
		stats = statsStore.NewPostgres(pool.DB())
		bans = banStore.NewPostgres(pool.DB())
		pg := permissionStore.NewPostgres(pool.DB())
		perms, abusePerms = pg, pg
	} else {
		log.Warn("no DATABASE_URL configured, using in-memory stores")
		stats = statsStore.New()
		bans = banStore.New()
		mem := permissionStore.New()
		perms, abusePerms = mem, mem
	}

	identities := identityStore.New()
	sessions := sessionStore.New()
	tokens := token.NewManager(cfg.JWTSigningKey, cfg.SessionTTL)

	idSvc, err := identityService.New(identities, sessions, perms, tokens,
		identityService.WithLogger(log),
	)
	if err != nil {
		log.Error("failed to build identity service", "error", err)
		os.Exit(1)
	}

	abuseMetrics := metrics.New()
	abuseCfg := abuseConfig.DefaultConfig()
	abuseSvc, err := abuseService.New(stats, bans, abusePerms, abuseCfg,
		abuseService.WithLogger(log),
		abuseService.WithMetrics(abuseMetrics),
		abuseService.WithTracer(tracer.NewOTel()),
		abuseService.WithSessionInvalidator(idSvc),
		abuseService.WithIdentityDirectory(idSvc),
	)
	if err != nil {
		log.Error("failed to build abuse service", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Config{
		Identity:   identityHandler.New(idSvc, log),
		Admin:      abuseHandler.New(abuseSvc, log),
		Guard:      abuseMW.New(abuseSvc, log),
		Validator:  idSvc,
		BanChecker: abuseSvc,
		AdminToken: cfg.AdminToken,
		Logger:     log,
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sw := sweeper.New(abuseSvc, abuseCfg.Sweeper,
		sweeper.WithLogger(log),
		sweeper.WithMetrics(abuseMetrics),
	)
	sw.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		sw.Stop()
		return httpserver.Shutdown(srv, 10*time.Second)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
