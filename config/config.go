// Package config loads runtime configuration from the environment.
// File: config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-live-polls/logger"
)

// Config holds everything main needs to wire the server.
type Config struct {
	Port              int
	ApplicationURL    string
	WebsocketURL      string
	AllowedOrigins    []string
	StoreDriver       string
	DatabaseURL       string
	MongoURI          string
	MongoDatabase     string
	HeartbeatInterval time.Duration
	SessionSecret     string
	Env               string
	LogDir            string
	MetricsEnabled    bool
	XRayEnabled       bool
}

// defaults mirror a local development setup
const (
	defaultPort              = 8080
	defaultStoreDriver       = "memory"
	defaultMongoDatabase     = "livepolls"
	defaultHeartbeatInterval = 30 * time.Second
	defaultSessionSecret     = "live-polls-dev-secret"
)

var defaultAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		// a missing .env is normal outside development
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn.Printf("[config.Load] Error loading .env file: %v", err)
		}
	} else {
		logger.Info.Println("[config.Load] Loaded environment variables from .env file")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, which keeps tests hermetic.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:              defaultPort,
		ApplicationURL:    getenv("APPLICATION_URL"),
		WebsocketURL:      getenv("WEBSOCKET_URL"),
		AllowedOrigins:    defaultAllowedOrigins,
		StoreDriver:       strings.ToLower(getenv("STORE_DRIVER")),
		DatabaseURL:       getenv("DATABASE_URL"),
		MongoURI:          getenv("MONGO_URI"),
		MongoDatabase:     getenv("MONGO_DATABASE"),
		HeartbeatInterval: defaultHeartbeatInterval,
		SessionSecret:     getenv("SESSION_SECRET"),
		Env:               getenv("ENV"),
		LogDir:            getenv("LOG_DIR"),
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if cfg.ApplicationURL == "" {
		cfg.ApplicationURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	if cfg.WebsocketURL == "" {
		cfg.WebsocketURL = fmt.Sprintf("ws://localhost:%d/ws", cfg.Port)
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}
	for _, o := range cfg.AllowedOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return Config{}, fmt.Errorf("invalid origin %q in ALLOWED_ORIGINS", o)
		}
	}
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = defaultStoreDriver
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = defaultMongoDatabase
	}
	if v := getenv("HEARTBEAT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid HEARTBEAT_INTERVAL %q", v)
		}
		cfg.HeartbeatInterval = d
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = defaultSessionSecret
	}

	var err error
	if cfg.MetricsEnabled, err = parseBool(getenv, "METRICS_ENABLED"); err != nil {
		return Config{}, err
	}
	if cfg.XRayEnabled, err = parseBool(getenv, "XRAY_ENABLED"); err != nil {
		return Config{}, err
	}

	switch cfg.StoreDriver {
	case "memory":
	case "sqlite", "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL required for store driver %q", cfg.StoreDriver)
		}
	case "mongo":
		if cfg.MongoURI == "" {
			return Config{}, errors.New("MONGO_URI required for store driver \"mongo\"")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func parseBool(getenv func(string) string, key string) (bool, error) {
	v := getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}
