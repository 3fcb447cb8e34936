package handlers

import (
	"net/http"
	"strconv"

	"billzsync/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// List pages through catalog entities with optional type, status and search
// filters.
func (h *ProductHandler) List(c *gin.Context) {
	var entities []models.Entity

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset := (page - 1) * limit

	entityType := c.Query("type")
	status := c.Query("status")
	search := c.Query("search")

	query := h.db.Model(&models.Entity{})

	if entityType != "" {
		query = query.Where("type = ?", entityType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("name LIKE ? OR sku LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&entities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": entities,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var entity models.Entity
	if err := h.db.First(&entity, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
		return
	}

	var variations []models.Entity
	if entity.Type == models.TypeVariable {
		h.db.Where("type = ? AND parent_id = ?", models.TypeVariation, entity.ID).Find(&variations)
	}

	c.JSON(http.StatusOK, gin.H{"data": entity, "variations": variations})
}
