// Package main API Server 入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kudos-admin/internal/apiserver/auth"
	"kudos-admin/internal/apiserver/server"
	"kudos-admin/internal/config"
	"kudos-admin/internal/shared/eventbus"
	"kudos-admin/internal/shared/infra"
	"kudos-admin/internal/shared/storage"
	postgresdriver "kudos-admin/internal/shared/storage/driver/postgres"
	sqlitedriver "kudos-admin/internal/shared/storage/driver/sqlite"
	"kudos-admin/internal/shared/storage/mongostore"
	"kudos-admin/internal/shared/storage/repository"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换数据库和 Redis）
	cfg := config.Load()

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	// 初始化持久化存储
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()
	log.Printf("Connected to %s", cfg.DatabaseDriver)

	// 初始化 Redis（事件总线）
	// 扇出是尽力而为的：Redis 不可用时服务降级运行，通知不推送
	var bus eventbus.EventBus
	redisInfra, err := infra.NewRedisInfra(cfg.RedisURL)
	if err != nil {
		log.Printf("Redis unavailable, notifications disabled: %v", err)
	} else {
		defer redisInfra.Close()
		bus = redisInfra
		log.Println("Connected to Redis")
	}

	// 认证配置
	authCfg := buildAuthConfig(cfg)
	if !authCfg.Enabled() {
		log.Println("WARNING: JWT_SECRET not set, authentication disabled")
	}

	// 引导管理员账号
	if authCfg.Enabled() && cfg.Auth.AdminEmail != "" {
		if err := auth.EnsureAdminUser(store, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			log.Printf("Failed to ensure admin user: %v", err)
		}
	}

	h := server.NewHandler(store, bus, authCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}

// openStore 根据配置的数据库驱动打开存储
func openStore(cfg *config.Config) (storage.PersistentStore, error) {
	switch cfg.DatabaseDriver {
	case "mongodb":
		return mongostore.NewStore(cfg.DatabaseURL, cfg.DatabaseDBName)
	case "postgres":
		db, err := postgresdriver.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		dialect := postgresdriver.NewDialect()
		if err := dialect.AutoMigrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return repository.NewStore(db, dialect), nil
	case "sqlite":
		db, err := sqlitedriver.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		dialect := sqlitedriver.NewDialect()
		if err := dialect.AutoMigrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return repository.NewStore(db, dialect), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.DatabaseDriver)
	}
}

// buildAuthConfig 从应用配置构建认证配置
func buildAuthConfig(cfg *config.Config) auth.Config {
	authCfg := auth.DefaultConfig()
	authCfg.JWTSecret = cfg.Auth.JWTSecret
	if cfg.Auth.AccessTokenTTL != "" {
		if ttl, err := time.ParseDuration(cfg.Auth.AccessTokenTTL); err == nil {
			authCfg.AccessTokenTTL = ttl
		}
	}
	return authCfg
}
