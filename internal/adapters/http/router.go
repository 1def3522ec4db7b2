package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/wsession/internal/adapters/echo"
	"github.com/dkeye/wsession/internal/config"
)

func wsPath(p string) string {
	p, _, _ = strings.Cut(p, "?")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func SetupRouter(ctx context.Context, cfg *config.Config) *gin.Engine {
	if cfg.Mode == gin.ReleaseMode || cfg.Mode == gin.TestMode {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	if cfg.Mode == gin.DebugMode {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ctrl := echo.NewEchoWSController(echo.Options{
		Reply:        cfg.Reply,
		ReadLimit:    cfg.ReadLimit,
		WriteTimeout: cfg.WriteTimeout,
		Limiter:      echo.NewFrameRateLimiter(cfg.RateLimit, cfg.RateInterval),
	})

	path := wsPath(cfg.Path)
	r.GET(path, func(c *gin.Context) {
		ctrl.HandleEcho(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Str("path", path).Str("reply", cfg.Reply).Msg("router setup")
	return r
}
