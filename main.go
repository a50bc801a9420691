// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-xray-sdk-go/strategy/ctxmissing"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/gin-gonic/gin"
	"go-live-polls/config"
	"go-live-polls/controllers"
	"go-live-polls/logger"
	"go-live-polls/metrics"
	"go-live-polls/middleware"
	"go-live-polls/services"
	"go-live-polls/store"
	"go-live-polls/websocket"
)

const shutdownTimeout = 10 * time.Second

// app holds the wired components of one server instance.
type app struct {
	router  *gin.Engine
	manager *websocket.Manager
	store   store.Store
}

// newApp wires the store, the real-time core, the services and the routes.
func newApp(cfg config.Config, st store.Store, pub metrics.Publisher) *app {
	registry := websocket.NewRoomRegistry()
	dispatcher := websocket.NewDispatcher(registry, pub)

	sessionService := services.NewSessionService(st, nil)
	pollService := services.NewPollService(st, dispatcher)
	voteService := services.NewVoteService(st, dispatcher, pub)

	manager := websocket.NewManager(registry, st, voteService, websocket.Config{
		HeartbeatInterval: cfg.HeartbeatInterval,
		AllowedOrigins:    cfg.AllowedOrigins,
		Metrics:           pub,
	})

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.CookieSessions(cfg.SessionSecret, cfg.Env == "production"))

	controllers.RegisterRoutes(
		router,
		controllers.NewSessionController(sessionService, cfg.ApplicationURL),
		controllers.NewPollController(pollService, voteService),
		manager,
	)

	return &app{router: router, manager: manager, store: st}
}

// handler returns the HTTP entry point, traced by X-Ray when enabled. The
// WebSocket route bypasses tracing so the upgrade can hijack the connection.
func (a *app) handler(xrayEnabled bool) http.Handler {
	if !xrayEnabled {
		return a.router
	}
	traced := xray.Handler(xray.NewFixedSegmentNamer("live-polls"), a.router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			a.router.ServeHTTP(w, r)
			return
		}
		traced.ServeHTTP(w, r)
	})
}

// newMetricsPublisher builds the CloudWatch publisher when metrics are enabled.
func newMetricsPublisher(cfg config.Config) (metrics.Publisher, func()) {
	if !cfg.MetricsEnabled {
		return metrics.Noop{}, func() {}
	}
	cw := cloudwatch.New(session.Must(session.NewSession()))
	if cfg.XRayEnabled {
		xray.AWS(cw.Client)
	}
	pub := metrics.NewCloudWatchPublisher(cw)
	logger.Info.Printf("[main] Publishing metrics to CloudWatch namespace %s", metrics.Namespace)
	return pub, pub.Close
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.InitLogger(cfg.LogDir); err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer func() { _ = logger.Close() }()
	logger.SetLogLevel(cfg.Env)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.XRayEnabled {
		if err := xray.Configure(xray.Config{
			ServiceVersion:         "1.0.0",
			ContextMissingStrategy: ctxmissing.NewDefaultLogErrorStrategy(),
		}); err != nil {
			logger.Warn.Printf("[main] X-Ray configuration failed: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Options{
		Driver:        cfg.StoreDriver,
		DatabaseURL:   cfg.DatabaseURL,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		logger.Error.Printf("[main] Failed to open %s store: %v", cfg.StoreDriver, err)
		os.Exit(1)
	}
	logger.Info.Printf("[main] Using %s store", cfg.StoreDriver)

	pub, flushMetrics := newMetricsPublisher(cfg)
	a := newApp(cfg, st, pub)
	go a.manager.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           a.handler(cfg.XRayEnabled),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info.Printf("[main] Listening on %s (app=%s ws=%s)", srv.Addr, cfg.ApplicationURL, cfg.WebsocketURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error.Printf("[main] Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info.Println("[main] Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.manager.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn.Printf("[main] HTTP shutdown: %v", err)
	}
	if err := a.store.Close(); err != nil {
		logger.Warn.Printf("[main] Store close: %v", err)
	}
	flushMetrics()
}
