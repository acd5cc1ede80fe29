package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"congestion-toll-backend/config"
	"congestion-toll-backend/internal/mw"
	"congestion-toll-backend/internal/store"
	"congestion-toll-backend/internal/toll"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, calculator *toll.Calculator, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, calculator, cfg.Toll.Location)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	// Configuration lists change rarely; writes below flush the whole cache
	ttl := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	caching := mw.Cache(cache.New(ttl, 2*ttl), ttl)

	r.GET("/health", handler.Health)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		tollGroup := api.Group("/toll")
		tollGroup.POST("/calculate", handler.CalculateToll)
		tollGroup.GET("/passes", handler.ListPasses)
		tollGroup.DELETE("/passes/:id", handler.DeletePass)

		rates := api.Group("/tax-rates", caching)
		rates.GET("", handler.ListRates)
		rates.POST("", handler.CreateRate)
		rates.DELETE("/:id", handler.DeleteRate)

		vehicles := api.Group("/tax-exempted-vehicles", caching)
		vehicles.GET("", handler.ListExemptedVehicles)
		vehicles.POST("", handler.CreateExemptedVehicle)
		vehicles.DELETE("/:id", handler.DeleteExemptedVehicle)

		dates := api.Group("/tax-exempted-dates", caching)
		dates.GET("", handler.ListExemptedDates)
		dates.POST("", handler.CreateExemptedDate)
		dates.DELETE("/:id", handler.DeleteExemptedDate)
	}

	return r
}
