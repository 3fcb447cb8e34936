package handlers

import (
	"net/http"

	"billzsync/internal/models"
	"billzsync/internal/settings"

	"github.com/gin-gonic/gin"
)

type MappingHandler struct {
	store *settings.Store
}

func NewMappingHandler(store *settings.Store) *MappingHandler {
	return &MappingHandler{store: store}
}

func (h *MappingHandler) List(c *gin.Context) {
	mappings, err := h.store.Mappings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch mappings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": mappings})
}

// Replace swaps the whole mapping table; the admin surface always submits
// the full set.
func (h *MappingHandler) Replace(c *gin.Context) {
	var mappings []models.AttributeMapping
	if err := c.ShouldBindJSON(&mappings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mapping payload"})
		return
	}

	for _, m := range mappings {
		if m.WoocSlug == "" || m.BillzAttrName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "wooc_slug and billz_attr_name are required"})
			return
		}
	}

	if err := h.store.ReplaceMappings(mappings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to replace mappings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": mappings})
}
