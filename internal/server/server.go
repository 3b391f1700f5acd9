package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamkanban/docs"
	"teamkanban/internal/auth"
	"teamkanban/internal/cache"
	"teamkanban/internal/config"
	"teamkanban/internal/database"
	"teamkanban/internal/handler"
	"teamkanban/internal/logging"
	"teamkanban/internal/middleware"
	"teamkanban/internal/repository"
	"teamkanban/internal/service"
	"teamkanban/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, cfg.SentryDSN, cfg.Environment); err != nil {
		return nil, fmt.Errorf("failed to init sentry: %w", err)
	}

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg); err != nil {
			return nil, err
		}
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	logrus.Info("connected to database")

	redisClient, boardCache := connectCache(cfg)

	// Repositories and services
	repos := repository.NewStore(db)
	resolver := tenant.NewResolver(repos.Sessions, repos.Organizations)
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiry)

	accounts := service.NewAccountService(repos, tokens)
	boards := service.NewBoardService(repos, resolver, boardCache)
	columns := service.NewColumnService(repos, boardCache)
	tasks := service.NewTaskService(repos, resolver, boardCache)
	orgs := service.NewOrganizationService(repos, resolver)
	invitations := service.NewInvitationService(repos, resolver)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	registerRoutes(r, cfg, routeHandlers{
		users:         handler.NewUserHandler(accounts),
		boards:        handler.NewBoardHandler(boards),
		columns:       handler.NewColumnHandler(columns),
		tasks:         handler.NewTaskHandler(tasks),
		organizations: handler.NewOrganizationHandler(orgs),
		invitations:   handler.NewInvitationHandler(invitations, accounts),
	})

	return &Server{
		Engine: r,
		DB:     db,
		Redis:  redisClient,
		Config: cfg,
	}, nil
}

// connectCache returns the board cache, or a disabled one when redis is off
// or unreachable at startup.
func connectCache(cfg *config.Config) (*redis.Client, cache.BoardCache) {
	if !cfg.Redis.Enabled {
		logrus.Info("board cache disabled")
		return nil, cache.Disabled{}
	}
	client := cache.NewRedisClient(cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).WithField("addr", cfg.Redis.Address).Warn("redis unavailable, board cache disabled")
		client.Close()
		return nil, cache.Disabled{}
	}
	logrus.WithField("addr", cfg.Redis.Address).Info("connected to redis")
	return client, cache.NewRedisCache(client, cfg.Cache)
}

type routeHandlers struct {
	users         *handler.UserHandler
	boards        *handler.BoardHandler
	columns       *handler.ColumnHandler
	tasks         *handler.TaskHandler
	organizations *handler.OrganizationHandler
	invitations   *handler.InvitationHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, h routeHandlers) {
	// Public routes
	r.POST("/register", h.users.Register)
	r.POST("/login", h.users.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.SwaggerInfo.InstanceName())))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/me", h.users.Me)

		// Board routes
		authorized.GET("/boards", h.boards.GetAll)
		authorized.POST("/boards", h.boards.Create)
		authorized.GET("/boards/:id", h.boards.GetByID)
		authorized.PUT("/boards/:id", h.boards.Update)
		authorized.DELETE("/boards/:id", h.boards.Delete)
		authorized.POST("/boards/:id/restore", h.boards.Restore)
		authorized.DELETE("/boards/:id/permanent", h.boards.DeletePermanently)

		// Column routes
		authorized.GET("/boards/:id/columns", h.columns.GetAll)
		authorized.POST("/boards/:id/columns", h.columns.Create)
		authorized.POST("/boards/:id/columns/reorder", h.columns.ReorderColumns)
		authorized.GET("/columns/:id", h.columns.GetByID)
		authorized.PUT("/columns/:id", h.columns.Update)
		authorized.DELETE("/columns/:id", h.columns.Delete)

		// Task routes
		authorized.GET("/boards/:id/tasks", h.tasks.GetAll)
		authorized.POST("/boards/:id/tasks", h.tasks.Create)
		authorized.POST("/boards/:id/tasks/sort-order", h.tasks.UpdateSortOrder)
		authorized.POST("/boards/:id/tasks/move", h.tasks.MoveTask)
		authorized.GET("/tasks/:id", h.tasks.GetByID)
		authorized.PUT("/tasks/:id", h.tasks.Update)
		authorized.DELETE("/tasks/:id", h.tasks.Delete)

		// Organization routes
		authorized.GET("/organizations", h.organizations.GetAll)
		authorized.POST("/organizations", h.organizations.Create)
		authorized.GET("/organizations/active", h.organizations.GetActive)
		authorized.PUT("/organizations/active", h.organizations.SetActive)
		authorized.GET("/organizations/members", h.organizations.Members)
		authorized.GET("/organizations/stats", h.organizations.Stats)
		authorized.PUT("/organizations/:id", h.organizations.Update)

		// Invitation routes
		authorized.GET("/invitations", h.invitations.GetPending)
		authorized.POST("/invitations", h.invitations.Invite)
		authorized.GET("/invitations/count", h.invitations.Count)
		authorized.GET("/invitations/candidates", h.invitations.Candidates)
		authorized.POST("/invitations/:id/accept", h.invitations.Accept)
		authorized.POST("/invitations/:id/reject", h.invitations.Reject)
	}
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		logrus.WithField("port", s.Config.ServerPort).Info("server running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("failed to listen")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("server forced to shutdown")
	}

	if s.Redis != nil {
		s.Redis.Close()
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		sqlDB.Close()
	}
	logging.Flush()
	logrus.Info("server exited properly")
}
