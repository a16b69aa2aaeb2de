package http

import (
	"context"

	"kanban_board/internal/config"
	"kanban_board/internal/http/handlers"
	"kanban_board/internal/http/middleware"
	"kanban_board/internal/service"
	"kanban_board/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Deps is everything the routes need.
type Deps struct {
	Config  *config.Config
	Board   *service.BoardService
	Engine  *service.ReorderEngine
	Hub     *ws.Hub
	Store   handlers.Pinger
	Redis   *redis.Client   // optional
	Relay   handlers.Pinger // optional, cross-instance change relay
	Version string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	h := handlers.NewHandler(d.Board, d.Engine)

	extra := map[string]handlers.Pinger{}
	if d.Redis != nil {
		extra["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return d.Redis.Ping(ctx).Err()
		})
	}
	if d.Relay != nil {
		extra["change_relay"] = d.Relay
	}
	healthHandler := handlers.NewHealthHandler(d.Store, extra, d.Version)

	r.Use(middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(d.Redis, cfg.APIRateLimit, cfg.APIRateWindow))
	v1.Use(middleware.JWT(cfg.AuthRequired))
	drops := middleware.NewUserLimiter(d.Redis, cfg.DropRateLimit, cfg.DropRateWindow)
	registerAPIRoutes(v1, h, drops.Middleware())

	// drops over the socket count against the same per-user window
	d.Hub.LimitDrops(drops)

	r.GET("/ws", ws.HandleWS(d.Hub, cfg.AuthRequired, cfg.AllowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, dropRL gin.HandlerFunc) {
	api.GET("/board", h.GetBoard)
	api.POST("/drop", dropRL, h.Drop)

	columns := api.Group("/columns")
	{
		columns.POST("", h.CreateColumn)
		columns.PATCH("/:id", h.RenameColumn)
		columns.DELETE("/:id", h.DeleteColumn)
		columns.POST("/:id/tasks", h.CreateTask)
	}

	tasks := api.Group("/tasks")
	{
		tasks.PATCH("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
		tasks.POST("/:id/comments", h.AddComment)
		tasks.POST("/:id/attachments", h.AddAttachment)
		tasks.POST("/:id/assignees", h.AddAssignee)
		tasks.DELETE("/:id/assignees/:name", h.RemoveAssignee)
	}
}
