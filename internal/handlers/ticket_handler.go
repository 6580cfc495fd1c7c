package handlers

import (
	"net/http"
	"strconv"

	"go-taller/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TicketHandler struct {
	Tickets    *services.TicketService
	Checklists *services.ChecklistService
}

func NewTicketHandler(db *gorm.DB) *TicketHandler {
	return &TicketHandler{
		Tickets:    services.NewTicketService(db),
		Checklists: services.NewChecklistService(db),
	}
}

func ticketID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "ID de ticket inválido")
		return 0, false
	}
	return uint(id), true
}

// --- GET /api/tickets ---
func (h *TicketHandler) List(c *gin.Context) {
	tickets, err := h.Tickets.Listar(c.Query("estado"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// --- GET /api/tickets/:id ---
func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	ticket, err := h.Tickets.Get(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// --- POST /api/tickets ---
func (h *TicketHandler) Create(c *gin.Context) {
	var input services.CrearTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos del ticket inválidos")
		return
	}
	ticket, err := h.Tickets.Crear(input, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// --- POST /api/tickets/:id/diagnostico ---
func (h *TicketHandler) Diagnosticar(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var input services.DiagnosticoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos del diagnóstico inválidos")
		return
	}
	ticket, err := h.Tickets.Diagnosticar(id, input, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type iniciarReparacionRequest struct {
	TecnicoID *uint `json:"tecnico_id"`
}

// --- POST /api/tickets/:id/iniciar ---
func (h *TicketHandler) IniciarReparacion(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var input iniciarReparacionRequest
	_ = c.ShouldBindJSON(&input) // body optional
	ticket, err := h.Tickets.IniciarReparacion(id, input.TecnicoID, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type completarReparacionRequest struct {
	Partes []services.ParteConsumida `json:"partes"`
}

// --- POST /api/tickets/:id/completar ---
func (h *TicketHandler) CompletarReparacion(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var input completarReparacionRequest
	_ = c.ShouldBindJSON(&input) // a repair may consume no parts
	ticket, err := h.Tickets.CompletarReparacion(id, input.Partes, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// --- POST /api/tickets/:id/pausar ---
func (h *TicketHandler) Pausar(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	if err := h.Tickets.PausarReparacion(id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- POST /api/tickets/:id/reanudar ---
func (h *TicketHandler) Reanudar(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	if err := h.Tickets.ReanudarReparacion(id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- POST /api/tickets/:id/listo ---
func (h *TicketHandler) MarcarListo(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	ticket, err := h.Tickets.MarcarListo(id, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// --- POST /api/tickets/:id/entregar ---
func (h *TicketHandler) Entregar(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	ticket, err := h.Tickets.Entregar(id, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type cancelarRequest struct {
	Motivo string `json:"motivo" binding:"required"`
}

// --- POST /api/tickets/:id/cancelar ---
func (h *TicketHandler) Cancelar(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var input cancelarRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "El motivo de cancelación es obligatorio")
		return
	}
	ticket, err := h.Tickets.Cancelar(id, input.Motivo, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type asignarTecnicoRequest struct {
	TecnicoID uint `json:"tecnico_id" binding:"required"`
}

// --- POST /api/tickets/:id/asignar ---
func (h *TicketHandler) AsignarTecnico(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var input asignarTecnicoRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Técnico inválido")
		return
	}
	if err := h.Tickets.AsignarTecnico(id, input.TecnicoID, userID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- POST /api/tickets/:id/checklists ---
func (h *TicketHandler) AdjuntarChecklist(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var input services.ChecklistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Checklist inválido")
		return
	}
	checklist, err := h.Checklists.Adjuntar(id, input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, checklist)
}

// --- GET /api/tickets/:id/checklists ---
func (h *TicketHandler) ObtenerChecklists(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	listas, err := h.Checklists.Obtener(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listas)
}
