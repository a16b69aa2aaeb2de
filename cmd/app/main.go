package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kanban_board/internal/config"
	"kanban_board/internal/db"
	httpServer "kanban_board/internal/http"
	"kanban_board/internal/http/handlers"
	"kanban_board/internal/live"
	"kanban_board/internal/logger"
	"kanban_board/internal/memstore"
	"kanban_board/internal/repository"
	"kanban_board/internal/service"
	"kanban_board/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

var version = "dev"

// boardStore is implemented by both the PostgreSQL and the memory store.
type boardStore interface {
	service.WriteSink
	live.Source
	Ping(ctx context.Context) error
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if cfg.JWTSecret != "" {
		service.InitJWT(cfg.JWTSecret)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store boardStore
	var notify func(live.Notifier)
	if cfg.DatabaseURL != "" {
		pool := db.Connect(cfg.DatabaseURL)
		defer pool.Close()
		pg := repository.NewBoardStore(pool)
		store, notify = pg, func(n live.Notifier) { pg.SetNotifier(n) }
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		mem := memstore.New()
		store, notify = mem, func(n live.Notifier) { mem.SetNotifier(n) }
	}

	view := live.NewView(store)

	var relay handlers.Pinger
	rdb := db.ConnectRedis(cfg.RedisURL)
	if rdb != nil {
		defer rdb.Close()
		origin := live.NewOrigin()
		notify(live.NewRedisNotifier(rdb, cfg.ChangesChannel, origin, view))
		r := live.NewRelay(rdb, cfg.ChangesChannel, origin, view)
		relay = r
		go r.Run(ctx)
	} else {
		notify(view)
	}

	replica, err := live.NewReplica(view)
	if err != nil {
		logger.Fatal("subscribe board", "error", err)
	}

	policy := service.StatusDecoupled
	if cfg.StatusFollowsColumn {
		policy = service.StatusFollowsColumn
	}
	engine := service.NewReorderEngine(store, replica, policy)
	board := service.NewBoardService(store, replica)

	hub := ws.NewHub(engine)
	replica.OnChange(hub.BroadcastBoard)

	go view.Run(ctx)
	go replica.Run(ctx)

	readyCtx, cancelReady := context.WithTimeout(ctx, 15*time.Second)
	if err := replica.WaitReady(readyCtx); err != nil {
		logger.Fatal("initial board load timed out", "error", err)
	}
	cancelReady()
	b := replica.Board()
	logger.Info("board loaded", "columns", len(b.Columns), "tasks", len(b.Tasks), "status_policy", policyName(policy))

	r := gin.Default()
	httpServer.RegisterRoutes(r, httpServer.Deps{
		Config:  cfg,
		Board:   board,
		Engine:  engine,
		Hub:     hub,
		Store:   store,
		Redis:   rdb,
		Relay:   relay,
		Version: version,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: corsHandler(cfg.AllowedOrigin).Handler(r),
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}

func corsHandler(allowedOrigin string) *cors.Cors {
	origins := []string{"*"}
	if allowedOrigin != "" {
		origins = []string{allowedOrigin}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: allowedOrigin != "",
	})
}

func policyName(p service.StatusPolicy) string {
	if p == service.StatusFollowsColumn {
		return "follows_column"
	}
	return "decoupled"
}

