package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"congestion-toll-backend/internal/model"
)

type createRateRequest struct {
	StartTime *model.ClockTime `json:"startTime" binding:"required"`
	EndTime   *model.ClockTime `json:"endTime" binding:"required"`
	Amount    float64          `json:"amount" binding:"min=0"`
}

// ListRates handles GET /api/tax-rates.
func (h *Handler) ListRates(c *gin.Context) {
	rates, err := h.store.ListRates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tax rates"})
		return
	}
	c.JSON(http.StatusOK, nonNil(rates))
}

// CreateRate handles POST /api/tax-rates.
func (h *Handler) CreateRate(c *gin.Context) {
	var req createRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rate, err := h.store.CreateRate(c.Request.Context(), model.TaxRate{
		StartTime: *req.StartTime,
		EndTime:   *req.EndTime,
		Amount:    req.Amount,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tax rate"})
		return
	}
	c.JSON(http.StatusCreated, rate)
}

// DeleteRate handles DELETE /api/tax-rates/:id.
func (h *Handler) DeleteRate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteRate(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tax rate"})
		return
	}
	c.Status(http.StatusNoContent)
}

type createVehicleRequest struct {
	Vehicle string `json:"vehicle" binding:"required"`
}

// ListExemptedVehicles handles GET /api/tax-exempted-vehicles.
func (h *Handler) ListExemptedVehicles(c *gin.Context) {
	vehicles, err := h.store.ListExemptedVehicles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve exempted vehicles"})
		return
	}
	c.JSON(http.StatusOK, nonNil(vehicles))
}

// CreateExemptedVehicle handles POST /api/tax-exempted-vehicles. Posting a
// label that already exists echoes the request without storing a duplicate.
func (h *Handler) CreateExemptedVehicle(c *gin.Context) {
	var req createVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle, err := h.store.CreateExemptedVehicle(c.Request.Context(), model.ExemptedVehicle{Label: req.Vehicle})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create exempted vehicle"})
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

// DeleteExemptedVehicle handles DELETE /api/tax-exempted-vehicles/:id.
func (h *Handler) DeleteExemptedVehicle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteExemptedVehicle(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete exempted vehicle"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListExemptedDates handles GET /api/tax-exempted-dates.
func (h *Handler) ListExemptedDates(c *gin.Context) {
	dates, err := h.store.ListExemptedDates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve exempted dates"})
		return
	}
	c.JSON(http.StatusOK, nonNil(dates))
}

// CreateExemptedDate handles POST /api/tax-exempted-dates.
func (h *Handler) CreateExemptedDate(c *gin.Context) {
	var date model.ExemptedDate
	if err := c.ShouldBindJSON(&date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.store.CreateExemptedDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create exempted date"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteExemptedDate handles DELETE /api/tax-exempted-dates/:id.
func (h *Handler) DeleteExemptedDate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteExemptedDate(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete exempted date"})
		return
	}
	c.Status(http.StatusNoContent)
}
