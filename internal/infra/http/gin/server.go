package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"bookingcore/internal/infra/config"
	"bookingcore/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Cancel(c *gin.Context)
	Rebook(c *gin.Context)
	Delete(c *gin.Context)
	ListByProperty(c *gin.Context)
}

type BlockHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type PropertyHTTP interface {
	Register(c *gin.Context)
	Get(c *gin.Context)
	Availability(c *gin.Context)
	Calendar(c *gin.Context)
	ExportCalendar(c *gin.Context)
}

type Handlers struct {
	Booking   BookingHTTP
	Block     BlockHTTP
	Property  PropertyHTTP
	RateLimit gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine without touching the global gin mode.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"Retry-After",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.RateLimit != nil {
		api.Use(h.RateLimit)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PUT("/bookings/:id", h.Booking.Update)
		api.PUT("/bookings/:id/cancel", h.Booking.Cancel)
		api.PUT("/bookings/:id/rebook", h.Booking.Rebook)
		api.DELETE("/bookings/:id", h.Booking.Delete)
		api.GET("/properties/:id/bookings", h.Booking.ListByProperty)
	}
	if h.Block != nil {
		api.POST("/blocks", h.Block.Create)
		api.GET("/blocks/:id", h.Block.Get)
		api.PUT("/blocks/:id", h.Block.Update)
		api.DELETE("/blocks/:id", h.Block.Delete)
	}
	if h.Property != nil {
		api.PUT("/properties/:id", h.Property.Register)
		api.GET("/properties/:id", h.Property.Get)
		api.GET("/properties/:id/availability", h.Property.Availability)
		api.GET("/properties/:id/calendar", h.Property.Calendar)
		api.POST("/properties/:id/calendar/export", h.Property.ExportCalendar)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
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
