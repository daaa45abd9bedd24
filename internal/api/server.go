package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"tasknest/internal/api/auth"
	"tasknest/internal/api/middleware"
	"tasknest/internal/config"
	"tasknest/internal/pkg/metrics"
	"tasknest/internal/pkg/notify"
	"tasknest/internal/pkg/ratelimit"
	"tasknest/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Server 封装了 API 服务所需的依赖和路由处理。
//
// 它持有数据库 Store、Redis 客户端以及 Gin 路由引擎，
// 全部在 NewServer 中显式构造，进程退出时通过 Close 释放。
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	rdb    *redis.Client
	router *gin.Engine
	auth   *auth.Handler
}

// NewServer 初始化 API 服务器。
//
// 它负责：
// 1. 连接 MySQL 数据库并执行自动迁移
// 2. 连接 Redis
// 3. 初始化 Gin 路由引擎并注册全部路由
//
// 参数:
//
//	ctx: 上下文
//	cfg: 配置对象
//	logger: 日志记录器
//
// 返回值:
//
//	*Server: 初始化完成的服务器实例
//	error: 初始化失败返回错误
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	st, err := store.Open(cfg.MySQL.DSN)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	mailer := notify.NewEmailNotifier(&cfg.Email, logger)
	limiter := ratelimit.NewFixedWindow(rdb, "tasknest:recover:", cfg.App.RecoverLimit, cfg.App.RecoverWindow)

	metrics.InitMetrics()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	s := &Server{
		cfg:    cfg,
		logger: logger,
		store:  st,
		rdb:    rdb,
		router: r,
		auth:   auth.NewHandler(st, cfg.Security.JWTSecret, cfg.Security.TokenTTL, mailer, limiter, logger),
	}
	s.registerRoutes()
	return s, nil
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Close 关闭数据库与缓存连接。
func (s *Server) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = err
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// registerRoutes 注册所有的 API 路由。
func (s *Server) registerRoutes() {
	if s.cfg.App.StaticDir != "" {
		s.router.StaticFile("/", s.cfg.App.StaticDir+"/index.html")
		s.router.Static("/assets", s.cfg.App.StaticDir+"/assets")
	}

	// Prometheus metrics 端点
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/healthz", s.handleHealthz)

	s.router.POST("/auth/register", s.auth.Register)
	s.router.POST("/auth/login", s.auth.Login)
	s.router.POST("/auth/recover", s.auth.Recover)

	authed := s.router.Group("/")
	authed.Use(middleware.AuthMiddleware(s.cfg.Security.JWTSecret, s.store))
	authed.POST("/auth/logout", s.auth.Logout)

	authed.GET("/users/:user_id", s.handleGetUser)
	authed.PUT("/users/:user_id", s.handleUpdateUser)

	authed.GET("/preferences", s.handleGetPreferences)
	authed.PUT("/preferences", s.handleUpdatePreferences)

	authed.POST("/tasks", s.handleCreateTask)
	authed.GET("/tasks", s.handleListTasks)
	authed.GET("/tasks/:task_id", s.handleGetTask)
	authed.PUT("/tasks/:task_id", s.handleUpdateTask)
	authed.DELETE("/tasks/:task_id", s.handleDeleteTask)

	authed.POST("/categories", s.handleCreateCategory)
	authed.GET("/categories", s.handleListCategories)
	authed.GET("/categories/:category_id", s.handleGetCategory)
	authed.PUT("/categories/:category_id", s.handleUpdateCategory)
	authed.DELETE("/categories/:category_id", s.handleDeleteCategory)

	authed.POST("/task_reminders", s.handleCreateReminder)
	authed.GET("/task_reminders", s.handleListReminders)
	authed.GET("/task_reminders/:reminder_id", s.handleGetReminder)
	authed.PUT("/task_reminders/:reminder_id", s.handleUpdateReminder)
	authed.DELETE("/task_reminders/:reminder_id", s.handleDeleteReminder)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.store == nil || s.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	if err := s.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getUserID(c *gin.Context) string {
	return c.GetString("userID")
}
