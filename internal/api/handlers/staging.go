package handlers

import (
	"net/http"
	"strconv"

	"billzsync/internal/staging"

	"github.com/gin-gonic/gin"
)

type StagingHandler struct {
	store *staging.Store
}

func NewStagingHandler(store *staging.Store) *StagingHandler {
	return &StagingHandler{store: store}
}

// List pages through staging records, optionally filtered by state
// (0 pending, 1 processed).
func (h *StagingHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset := (page - 1) * limit

	var state *int
	if raw := c.Query("state"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state filter"})
			return
		}
		state = &v
	}

	records, total, err := h.store.List(state, offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch staging records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": records,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}
