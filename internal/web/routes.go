package web

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// RouterConfig configures the engine built by NewRouter.
type RouterConfig struct {
	Deps      APIV1Deps
	DevMode   bool
	StaticDir string
	Logger    Logger
}

// NewRouter builds the standard engine:
// - /api/v1/* for the API
// - / for an optional web UI directory
func NewRouter(cfg RouterConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(cfg.Logger))
	if cfg.DevMode {
		engine.Use(DevCORS())
	}
	if cfg.Deps.Logger == nil {
		cfg.Deps.Logger = cfg.Logger
	}
	RegisterAPIV1(engine.Group("/api/v1"), cfg.Deps)
	engine.NoRoute(staticHandler(cfg.StaticDir))
	return engine
}

// staticHandler serves dir at '/' when it is an existing directory.
func staticHandler(dir string) gin.HandlerFunc {
	if dir != "" {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return gin.WrapH(http.FileServer(http.Dir(dir)))
		}
	}
	return func(c *gin.Context) {
		writeAPIError(c, http.StatusNotFound, "not_found", "no route for "+c.Request.URL.Path)
	}
}

func requestLogger(l Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if l == nil {
			return
		}
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			l.Errorf("web", "%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
			return
		}
		l.Infof("web", "%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}
