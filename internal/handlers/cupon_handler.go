package handlers

import (
	"net/http"
	"time"

	"go-taller/internal/models"
	"go-taller/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CuponHandler struct {
	DB      *gorm.DB
	Cupones *services.CuponService
}

func NewCuponHandler(db *gorm.DB) *CuponHandler {
	return &CuponHandler{DB: db, Cupones: services.NewCuponService(db)}
}

// --- GET /api/cupones ---
func (h *CuponHandler) List(c *gin.Context) {
	var cupones []models.Cupon
	if err := h.DB.Order("created_at desc").Find(&cupones).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cupones)
}

type validarCuponRequest struct {
	Codigo string  `json:"codigo" binding:"required"`
	Monto  float64 `json:"monto" binding:"required,gt=0"`
}

// --- POST /api/cupones/validar ---
// Always 200; the verdict travels in {valido, motivo, descuento}
func (h *CuponHandler) Validar(c *gin.Context) {
	var input validarCuponRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Código y monto son obligatorios")
		return
	}
	verdict, err := h.Cupones.Validar(input.Codigo, input.Monto, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

type aplicarCuponRequest struct {
	Codigo   string `json:"codigo" binding:"required"`
	TicketID uint   `json:"ticket_id" binding:"required"`
}

// --- POST /api/cupones/aplicar ---
func (h *CuponHandler) Aplicar(c *gin.Context) {
	var input aplicarCuponRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Código y ticket son obligatorios")
		return
	}
	uso, err := h.Cupones.AplicarATicket(input.Codigo, input.TicketID, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, uso)
}

// --- POST /api/cupones/lote ---
func (h *CuponHandler) Generar(c *gin.Context) {
	var input services.LoteCuponesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos del lote inválidos")
		return
	}
	cupones, err := h.Cupones.GenerarLote(input, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "cupones": cupones})
}
