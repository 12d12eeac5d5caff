package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rentsync/internal/infra/config"
	"rentsync/internal/infra/obs"
)

type CalendarHTTP interface {
	Calendar(c *gin.Context)
	Export(c *gin.Context)
}

type QuoteHTTP interface {
	Quote(c *gin.Context)
}

type BlockHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type RuleHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type SyncHTTP interface {
	SyncRoom(c *gin.Context)
	SyncAll(c *gin.Context)
	History(c *gin.Context)
}

type Handlers struct {
	Calendar CalendarHTTP
	Quote    QuoteHTTP
	Blocks   BlockHTTP
	Rules    RuleHTTP
	Sync     SyncHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Calendar != nil {
		api.GET("/rooms/:id/calendar", h.Calendar.Calendar)
		api.GET("/rooms/:id/calendar.ics", h.Calendar.Export)
	}
	if h.Quote != nil {
		api.POST("/rooms/:id/quote", h.Quote.Quote)
	}
	if h.Blocks != nil {
		api.GET("/rooms/:id/blocked-periods", h.Blocks.List)
		api.POST("/rooms/:id/blocked-periods", h.Blocks.Create)
		api.PUT("/blocked-periods/:id", h.Blocks.Update)
		api.DELETE("/blocked-periods/:id", h.Blocks.Delete)
	}
	if h.Rules != nil {
		api.GET("/rooms/:id/pricing-rules", h.Rules.List)
		api.POST("/rooms/:id/pricing-rules", h.Rules.Create)
		api.PUT("/pricing-rules/:id", h.Rules.Update)
		api.DELETE("/pricing-rules/:id", h.Rules.Delete)
	}
	if h.Sync != nil {
		api.POST("/rooms/:id/sync/:platform", h.Sync.SyncRoom)
		api.POST("/sync", h.Sync.SyncAll)
		api.GET("/rooms/:id/sync-log", h.Sync.History)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
