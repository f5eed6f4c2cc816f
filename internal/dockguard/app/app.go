package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dockguard/dockguard/internal/dockguard/api/server"
	"github.com/dockguard/dockguard/internal/dockguard/audit"
	auditredis "github.com/dockguard/dockguard/internal/dockguard/audit/redis"
	"github.com/dockguard/dockguard/internal/dockguard/repository/containercache/redis"
	cr "github.com/dockguard/dockguard/internal/dockguard/repository/containerrepo/postgres"
	ur "github.com/dockguard/dockguard/internal/dockguard/repository/userrepo/postgres"
	"github.com/dockguard/dockguard/internal/dockguard/services/authservice"
	"github.com/dockguard/dockguard/internal/dockguard/services/containerservice"
	"github.com/dockguard/dockguard/internal/dockguard/services/userservice"
	"github.com/dockguard/dockguard/internal/pkg/config"
	"github.com/dockguard/dockguard/internal/pkg/passhash"
	"github.com/dockguard/dockguard/pkg/logger"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type DockguardApp struct {
	s   Server
	lg  logger.Logger
	cfg config.Config
}

func New(ctx context.Context, cfg config.Config) (DockguardApp, error) {
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return DockguardApp{}, fmt.Errorf("can't get logger error: %w", err)
	}

	userRepo, err := ur.New(ctx, cfg.PostgresDB)
	if err != nil {
		return DockguardApp{}, fmt.Errorf("postgres user repo initializing error: %w", err)
	}

	containerRepo, err := cr.New(ctx, cfg.PostgresDB)
	if err != nil {
		return DockguardApp{}, fmt.Errorf("postgres container repo initializing error: %w", err)
	}

	cc, err := redis.New(ctx, cfg.RedisCache)
	if err != nil {
		return DockguardApp{}, fmt.Errorf("redis container cache initializing error: %w", err)
	}

	sink, err := auditredis.New(ctx, cfg.Audit)
	if err != nil {
		return DockguardApp{}, fmt.Errorf("redis audit sink initializing error: %w", err)
	}

	hasher := passhash.New()
	emitter := audit.New(sink, lg)

	userService := userservice.New(userRepo, hasher, emitter, lg)
	authService := authservice.New(userRepo, hasher, cfg.Auth, lg)
	containerService := containerservice.New(containerRepo, cc, lg)

	go containerService.BackgroundRefresh(ctx, cfg.RedisCache.ExpTime)

	password, err := userService.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername)
	if err != nil {
		return DockguardApp{}, fmt.Errorf("bootstrap admin error: %w", err)
	}

	if password != "" {
		// The one-time credential goes to stdout, never to the log sink.
		fmt.Printf("bootstrap admin %q created with temporary password: %s\n",
			cfg.Bootstrap.AdminUsername, password)
	}

	s := server.New(cfg.Server, userService, authService, containerService, lg)

	return DockguardApp{
		s:   s,
		lg:  lg,
		cfg: cfg,
	}, nil
}

func (da *DockguardApp) Run(ctx context.Context) {
	da.lg.Infof("STARTED SERVER ON %s", da.cfg.Server.Addr)

	go func() {
		if err := da.s.Start(ctx); err != nil {
			da.lg.Errorf("server start error: %s", err.Error())
			ctx.Done()

			return
		}
	}()

	<-ctx.Done()

	ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := da.Stop(ctxS); err != nil { //nolint:contextcheck
		da.lg.Errorf("server shutdown error: %s", err.Error())
	}
}

func (da *DockguardApp) Stop(ctx context.Context) error {
	if err := da.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	da.lg.Info("Shutdowned successfully")

	return nil
}
