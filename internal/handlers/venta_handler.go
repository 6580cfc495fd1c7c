package handlers

import (
	"net/http"
	"strconv"

	"go-taller/internal/models"
	"go-taller/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type VentaHandler struct {
	DB     *gorm.DB
	Ventas *services.VentaService
}

func NewVentaHandler(db *gorm.DB) *VentaHandler {
	return &VentaHandler{DB: db, Ventas: services.NewVentaService(db)}
}

// --- POST /api/checkout ---
func (h *VentaHandler) Checkout(c *gin.Context) {
	var input services.VentaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos de la venta inválidos")
		return
	}
	venta, err := h.Ventas.Registrar(input, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"venta_id": venta.ID,
		"total":    venta.Total,
		"venta":    venta,
	})
}

// --- GET /api/ventas ---
func (h *VentaHandler) List(c *gin.Context) {
	limit := 50
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 500 {
		limit = l
	}
	var ventas []models.Venta
	if err := h.DB.Preload("Items.Producto").
		Order("fecha desc").Limit(limit).Find(&ventas).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ventas)
}
