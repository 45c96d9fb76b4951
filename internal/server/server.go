package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sirosfoundation/go-credential-nodes/pkg/config"
)

// Router builds the HTTP router: a health endpoint, flow discovery, and
// the WebSocket flow endpoint.
func Router(cfg *config.Config, manager *Manager, runner *Runner) *gin.Engine {
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.Server.CORS.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.CORS.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/flows", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"flows": runner.Flows()})
	})

	router.GET("/flows/ws", func(c *gin.Context) {
		manager.HandleConnection(c.Writer, c.Request)
	})

	return router
}
