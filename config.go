package main

import (
	"bufio"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// config holds everything read from the environment at startup.
type config struct {
	listenAddr      string
	jwtSecret       []byte
	dsn             string
	autoMigrate     bool
	redisAddr       string
	storeTimeout    time.Duration
	archiveInterval time.Duration
	inactiveAfter   time.Duration
}

func loadConfig() config {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change" // development fallback
	}
	cfg := config{
		listenAddr:      envString("LISTEN_ADDR", ":8081"),
		jwtSecret:       []byte(secret),
		dsn:             os.Getenv("DB_DSN"),
		autoMigrate:     true,
		redisAddr:       os.Getenv("REDIS_ADDR"),
		storeTimeout:    envDuration("STORE_TIMEOUT", 5*time.Second),
		archiveInterval: envDuration("ARCHIVE_INTERVAL", 60*time.Second),
		// No threshold is baked in: with ARCHIVE_INACTIVE_AFTER unset the
		// archival hook is a no-op.
		inactiveAfter: envDuration("ARCHIVE_INACTIVE_AFTER", 0),
	}
	if v := strings.ToLower(os.Getenv("DB_AUTO_MIGRATE")); v == "false" || v == "0" || v == "no" {
		cfg.autoMigrate = false
	}
	return cfg
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, keeping %s", key, v, def)
		return def
	}
	return d
}

// readEnvFile parses key=value pairs from path. Lines starting with # are
// ignored.
func readEnvFile(path string) map[string]string {
	vals := make(map[string]string)
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return vals
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if eq := strings.IndexByte(line, '='); eq > 0 {
			vals[strings.TrimSpace(line[:eq])] = strings.TrimSpace(line[eq+1:])
		}
	}
	return vals
}

// loadDotEnv loads ./.env into the environment without overwriting variables
// that are already set.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return // no .env file
	}
	for key, val := range readEnvFile(".env") {
		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, val)
		}
	}
}

// watchEnvFile invokes onChange with the re-parsed .env contents whenever the
// file is written, so the archival policy can be retuned without a restart.
// Returns the watcher so the caller controls its lifetime.
func watchEnvFile(path string, onChange func(map[string]string)) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace .env rather than write in place,
	// which drops a watch on the file itself.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	base := filepath.Base(path)
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					onChange(readEnvFile(path))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("config watch: %v", err)
			}
		}
	}()
	return w, nil
}
