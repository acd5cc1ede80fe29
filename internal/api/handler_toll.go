package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"congestion-toll-backend/internal/model"
	"congestion-toll-backend/internal/parse"
)

type calculateRequest struct {
	Type             string  `json:"type"`
	PlateNumber      string  `json:"plateNumber" binding:"required"`
	TollPassDateTime *string `json:"tollPassDateTime"`
}

type calculateResponse struct {
	Type             string  `json:"type"`
	PlateNumber      string  `json:"plateNumber"`
	TollPassDateTime string  `json:"tollPassDateTime"`
	TaxAmount        float64 `json:"taxAmount"`
}

// CalculateToll handles POST /api/toll/calculate.
func (h *Handler) CalculateToll(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ts := h.now().In(h.loc)
	if req.TollPassDateTime != nil && *req.TollPassDateTime != "" {
		parsed, err := parse.ParseLocalDateTime(*req.TollPassDateTime, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ts = parsed
	}

	amount, err := h.calculator.Calculate(c.Request.Context(), model.Passage{
		VehicleType: req.Type,
		PlateNumber: req.PlateNumber,
		Timestamp:   ts,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate toll"})
		return
	}

	c.JSON(http.StatusOK, calculateResponse{
		Type:             req.Type,
		PlateNumber:      req.PlateNumber,
		TollPassDateTime: ts.Format(parse.LocalDateTimeLayout),
		TaxAmount:        amount,
	})
}

// ListPasses handles GET /api/toll/passes. An empty plateNumber lists every
// recorded passage.
func (h *Handler) ListPasses(c *gin.Context) {
	passes, err := h.store.ListPassages(c.Request.Context(), c.Query("plateNumber"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve toll passes"})
		return
	}
	for i := range passes {
		passes[i].PassedAt = passes[i].PassedAt.In(h.loc)
	}
	c.JSON(http.StatusOK, nonNil(passes))
}

// DeletePass handles DELETE /api/toll/passes/:id.
func (h *Handler) DeletePass(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeletePassage(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete toll pass"})
		return
	}
	c.Status(http.StatusNoContent)
}
