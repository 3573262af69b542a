package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"banktrack/pkg/cache"
	"banktrack/pkg/ledger"
	"banktrack/pkg/sched"
	"banktrack/store"

	"github.com/gin-gonic/gin"
)

func main() {
	// Auto-load ./.env if present (no external dependency) before reading vars
	loadDotEnv()
	cfg := loadConfig()

	// Support a lightweight migrate command: `./banktrack migrate`
	// It runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if cfg.dsn == "" {
			log.Fatal("DB_DSN is not set; nothing to migrate")
		}
		autoMigrate(openDB(cfg.dsn))
		fmt.Println("migration completed")
		return
	}

	var st ledger.Store
	if cfg.dsn == "" {
		log.Println("DB_DSN not set; falling back to the in-memory store (data is not persisted)")
		st = store.NewMemory()
	} else {
		db := openDB(cfg.dsn)
		if cfg.autoMigrate {
			autoMigrate(db)
		}
		st = store.NewGorm(db)
	}

	identity := ledger.NewIdentity(st, cfg.inactiveAfter)

	var views *cache.Cache
	if cfg.redisAddr != "" {
		v, err := cache.New(cfg.redisAddr, 30*time.Second)
		if err != nil {
			log.Printf("redis unavailable, running without view cache: %v", err)
		} else {
			views = v
			defer views.Close()
		}
	}

	a := &app{
		identity:  identity,
		banks:     ledger.NewRegistry(st),
		accounts:  ledger.NewAccounts(st),
		netWorth:  ledger.NewNetWorth(st),
		history:   ledger.NewHistory(st),
		views:     views,
		timeout:   cfg.storeTimeout,
		jwtSecret: cfg.jwtSecret,
	}

	// Periodic archival of inactive users. The hook is idempotent; the
	// window is policy, reloadable from .env without a restart.
	runner := sched.Every(cfg.archiveInterval, func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, cfg.storeTimeout)
		defer cancel()
		n, err := identity.ArchiveInactiveUsers(ctx, time.Now())
		if err != nil {
			log.Printf("archive inactive users: %v", err)
			return
		}
		if n > 0 {
			log.Printf("archived %d inactive users", n)
		}
	})
	defer runner.Stop()

	if watcher, err := watchEnvFile(".env", func(vals map[string]string) {
		if v, ok := vals["ARCHIVE_INACTIVE_AFTER"]; ok {
			if d, err := time.ParseDuration(v); err == nil {
				identity.SetInactivityWindow(d)
				log.Printf("archival window reloaded: %s", d)
			}
		}
	}); err == nil {
		defer watcher.Close()
	}

	r := gin.Default()
	a.setupRoutes(r)
	r.Run(cfg.listenAddr)
}
