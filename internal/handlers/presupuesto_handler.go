package handlers

import (
	"net/http"
	"strconv"

	"go-taller/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PresupuestoHandler struct {
	Presupuestos *services.PresupuestoService
}

func NewPresupuestoHandler(db *gorm.DB) *PresupuestoHandler {
	return &PresupuestoHandler{Presupuestos: services.NewPresupuestoService(db)}
}

type generarPresupuestoRequest struct {
	Conceptos []services.ConceptoInput `json:"conceptos" binding:"required,min=1,dive"`
	Descuento float64                  `json:"descuento"`
}

// --- POST /api/tickets/:id/presupuesto ---
func (h *PresupuestoHandler) Generar(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var input generarPresupuestoRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Conceptos del presupuesto inválidos")
		return
	}
	presupuesto, err := h.Presupuestos.Generar(id, input.Conceptos, input.Descuento, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, presupuesto)
}

// --- GET /api/tickets/:id/presupuesto ---
func (h *PresupuestoHandler) Get(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	presupuesto, err := h.Presupuestos.Get(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, presupuesto)
}

// --- POST /api/tickets/:id/presupuesto/aprobar ---
func (h *PresupuestoHandler) Aprobar(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	presupuesto, err := h.Presupuestos.Aprobar(id, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, presupuesto)
}

// --- POST /api/tickets/:id/presupuesto/pagos ---
func (h *PresupuestoHandler) RegistrarPago(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var input services.PagoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos del pago inválidos")
		return
	}
	pago, err := h.Presupuestos.RegistrarPago(id, input, userID(c))
	if err != nil {
		fail(c, err)
		return
	}

	// echo the refreshed balance so the cashier screen updates in one trip
	presupuesto, err := h.Presupuestos.Get(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"pago":        pago,
		"saldo":       presupuesto.Saldo,
		"pagado":      presupuesto.Pagado,
		"total_final": presupuesto.TotalFinal,
	})
}

// --- POST /api/pagos/:id/cancelar ---
func (h *PresupuestoHandler) CancelarPago(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "ID de pago inválido")
		return
	}
	pago, err := h.Presupuestos.CancelarPago(uint(id), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pago)
}
