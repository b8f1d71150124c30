package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/healthassist/whatsapp-gateway/internal/config"
	"github.com/healthassist/whatsapp-gateway/internal/db"
	httpSrv "github.com/healthassist/whatsapp-gateway/internal/http"
	"github.com/healthassist/whatsapp-gateway/internal/logger"
	"github.com/healthassist/whatsapp-gateway/internal/repository"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger.Init(cfg.Log.Level)
		defer logger.Sync()

		store, closeStore, err := buildUserStore(cfg)
		if err != nil {
			return fmt.Errorf("user store: %w", err)
		}
		defer closeStore()

		var deliveries repository.DeliveriesRepository
		if cfg.ClickHouse.DSN != "" {
			chDB, err := db.NewClickHouseConnection(db.ClickHouseOpts{
				DSN:             cfg.ClickHouse.DSN,
				MaxOpenConns:    cfg.ClickHouse.MaxOpenConns,
				MaxIdleConns:    cfg.ClickHouse.MaxIdleConns,
				ConnMaxLifetime: cfg.ClickHouse.ConnMaxLifetime,
				ConnMaxIdleTime: cfg.ClickHouse.ConnMaxIdleTime,
				PingTimeout:     cfg.ClickHouse.PingTimeout,
			})
			if err != nil {
				return fmt.Errorf("clickhouse connect: %w", err)
			}
			defer func() { _ = chDB.Close() }()
			deliveries = repository.NewCHDeliveriesRepository(chDB)
		}

		server := httpSrv.NewServer(cfg, store, deliveries)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Printf("signal received: %s, shutting down...", sig)
		case err := <-errCh:
			if err != nil {
				log.Printf("http server exited: %v", err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}

// buildUserStore picks the registry backend from config. The returned
// close func is always safe to call.
func buildUserStore(cfg config.Config) (repository.UserStore, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case "", "memory":
		return repository.NewMemoryUserStore(), noop, nil

	case "redis":
		rdb, err := db.NewRedisClient(db.RedisOpts{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("redis connect: %w", err)
		}
		return repository.NewRedisUserStore(rdb), func() { _ = rdb.Close() }, nil

	case "mysql":
		mysqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("mysql connect: %w", err)
		}
		return repository.NewMySQLUserStore(mysqlDB), func() { _ = mysqlDB.Close() }, nil
	}

	return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
