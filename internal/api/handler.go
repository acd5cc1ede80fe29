package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"congestion-toll-backend/internal/store"
	"congestion-toll-backend/internal/toll"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	calculator *toll.Calculator
	loc        *time.Location
	now        func() time.Time
}

// NewHandler creates a new API handler. Passage timestamps without a zone are
// read in loc.
func NewHandler(s store.Store, calculator *toll.Calculator, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		store:      s,
		calculator: calculator,
		loc:        loc,
		now:        time.Now,
	}
}

// Health reports that the process is serving.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
