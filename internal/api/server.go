package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"billzsync/internal/api/handlers"
	"billzsync/internal/api/middleware"
	"billzsync/internal/config"
	"billzsync/internal/database"
	"billzsync/internal/notify"
	"billzsync/internal/settings"
	"billzsync/internal/staging"
	"billzsync/internal/sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Server struct {
	config *config.Config
	logger zerolog.Logger
	router *gin.Engine
	server *http.Server
}

func New(
	cfg *config.Config,
	logger zerolog.Logger,
	db *database.Database,
	pipeline *sync.Pipeline,
	runs *staging.RunStore,
	stagingStore *staging.Store,
	settingsStore *settings.Store,
	queue *notify.Queue,
) *Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	syncHandler := handlers.NewSyncHandler(pipeline, runs, queue, logger)
	stagingHandler := handlers.NewStagingHandler(stagingStore)
	productHandler := handlers.NewProductHandler(db.DB)
	mappingHandler := handlers.NewMappingHandler(settingsStore)

	v1 := router.Group("/api/v1")
	{
		syncGroup := v1.Group("/sync")
		{
			syncGroup.POST("/run", syncHandler.Run)
			syncGroup.POST("/schedule", syncHandler.Schedule)
			syncGroup.GET("/runs", syncHandler.Runs)
		}

		v1.GET("/staging", stagingHandler.List)

		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
		}

		mappings := v1.Group("/mappings")
		{
			mappings.GET("", mappingHandler.List)
			mappings.PUT("", mappingHandler.Replace)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// POST /sync/run holds the connection for the whole run.
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("starting server")
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server")
	return s.server.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
