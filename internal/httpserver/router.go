package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"homeplan/internal/handler"
	"homeplan/pkg/rbac"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	projectHandler *handler.ProjectHandler,
	adminHandler *handler.AdminHandler,
	checks map[string]ReadinessCheck,
	jwtSecret string,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", readyz(checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/plans", projectHandler.ListPlans)

		auth.POST("/projects", projectHandler.CreateProject)
		auth.GET("/projects/current", projectHandler.CurrentOverview)
		auth.GET("/projects/:id/overview", projectHandler.Overview)
		auth.POST("/projects/:id/plan", projectHandler.GeneratePlan)
		auth.GET("/projects/:id/stage", projectHandler.GetStage)
		auth.PUT("/projects/:id/stage", projectHandler.SetStage)
		auth.POST("/projects/:id/checklist", projectHandler.AddChecklist)

		auth.GET("/tasks/:id", RequirePermission(rbac.PermissionReadProject), projectHandler.GetTask)
		auth.POST("/tasks/:id/complete", projectHandler.CompleteTask)
		auth.POST("/tasks/:id/reopen", projectHandler.ReopenTask)
	}

	if adminHandler != nil {
		admin := auth.Group("/admin")
		admin.Use(RequirePermission(rbac.PermissionReplayOutbox))
		{
			admin.GET("/outbox/failed", adminHandler.ListFailed)
			admin.POST("/outbox/replay", adminHandler.ReplayOutboxEvent)
			admin.POST("/outbox/replay-failed", adminHandler.ReplayFailedEvents)
		}
	}

	return &Router{Engine: r}
}

func readyz(checks map[string]ReadinessCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		failed := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "errors": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
