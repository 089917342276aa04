package app

import (
	"context"
	"net/http"
	"time"

	_ "github.com/annie987/todo/docs"
	"github.com/annie987/todo/internal/config"
	"github.com/annie987/todo/internal/handlers"
	"github.com/annie987/todo/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

const greeting = "Welcome to the Task Manager!"

// Setup registers all routes on the given engine. ping checks the database
// for /health.
func Setup(r *gin.Engine, cfg config.Config, svc *service.TaskService, ping func(context.Context) error) {
	r.GET("/", rootHandler())
	r.GET("/health", healthHandler(cfg, ping))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	registerTaskRoutes(r, handlers.NewTaskHandler(svc))
}

func rootHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, greeting)
	}
}

func healthHandler(cfg config.Config, ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "env": cfg.App.Env, "error": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTaskRoutes(r gin.IRoutes, h *handlers.TaskHandler) {
	r.POST("/tasks", h.Create)
	r.GET("/tasks", h.List)
	r.GET("/tasks/:id", h.GetByID)
	r.PUT("/tasks/:id", h.Update)
	r.DELETE("/tasks/:id", h.Delete)
}
