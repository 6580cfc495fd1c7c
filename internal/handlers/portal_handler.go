package handlers

import (
	"net/http"
	"os"
	"strings"

	"go-taller/internal/auth"
	"go-taller/internal/middleware"
	"go-taller/internal/models"
	"go-taller/internal/services"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

// PortalHandler serves the client self-service portal. It runs on its own
// session cookie, completely separate from the staff JWT.
type PortalHandler struct {
	DB           *gorm.DB
	Tickets      *services.TicketService
	Presupuestos *services.PresupuestoService
}

func NewPortalHandler(db *gorm.DB) *PortalHandler {
	return &PortalHandler{
		DB:           db,
		Tickets:      services.NewTicketService(db),
		Presupuestos: services.NewPresupuestoService(db),
	}
}

type portalAccessRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Numero string `json:"numero" binding:"required"`
}

// --- POST /portal/access ---
// The client proves ownership with their email + a ticket number; the
// session lands in the portal cookie.
func (h *PortalHandler) Access(c *gin.Context) {
	var input portalAccessRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Email y número de ticket son obligatorios")
		return
	}

	var cliente models.Cliente
	if err := h.DB.Where("email = ? AND activo = ?", strings.ToLower(input.Email), true).
		First(&cliente).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Datos de acceso inválidos", "code": "UNAUTHORIZED"})
		return
	}

	var ticket models.Ticket
	if err := h.DB.Where("numero = ? AND cliente_id = ?", input.Numero, cliente.ID).
		First(&ticket).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Datos de acceso inválidos", "code": "UNAUTHORIZED"})
		return
	}

	token, err := auth.GeneratePortalToken(cliente.ID)
	if err != nil {
		fail(c, err)
		return
	}

	secure := os.Getenv("COOKIE_SECURE") == "true"
	c.SetCookie(middleware.PortalCookie, token, 2*60*60, "/", "", secure, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "cliente": cliente.Nombre})
}

func clienteID(c *gin.Context) uint {
	return c.MustGet("clienteID").(uint)
}

// ownTicket loads a ticket by number and checks it belongs to the session's
// client
func (h *PortalHandler) ownTicket(c *gin.Context) (*models.Ticket, bool) {
	ticket, err := h.Tickets.GetPorNumero(c.Param("numero"))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	if ticket.ClienteID != clienteID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Este ticket no le pertenece", "code": "FORBIDDEN"})
		return nil, false
	}
	return ticket, true
}

// --- GET /portal/tickets ---
func (h *PortalHandler) MisTickets(c *gin.Context) {
	var tickets []models.Ticket
	if err := h.DB.Preload("Modelo").Preload("TipoServicio").Preload("Estado").
		Where("cliente_id = ?", clienteID(c)).
		Order("created_at desc").Find(&tickets).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// --- GET /portal/tickets/:numero ---
func (h *PortalHandler) MiTicket(c *gin.Context) {
	ticket, ok := h.ownTicket(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type portalCrearTicketRequest struct {
	ModeloID            uint   `json:"modelo_id" binding:"required"`
	TipoServicioID      uint   `json:"tipo_servicio_id" binding:"required"`
	DescripcionProblema string `json:"descripcion_problema" binding:"required"`
	PuntoID             *uint  `json:"punto_id"`
}

// --- POST /portal/tickets ---
// Self-service intake: the client drops off a device and the ticket opens
// in "Recibido" just like a staff-created one.
func (h *PortalHandler) CrearTicket(c *gin.Context) {
	var input portalCrearTicketRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos del ticket inválidos")
		return
	}
	ticket, err := h.Tickets.Crear(services.CrearTicketInput{
		ClienteID:           clienteID(c),
		ModeloID:            input.ModeloID,
		TipoServicioID:      input.TipoServicioID,
		DescripcionProblema: input.DescripcionProblema,
		PuntoID:             input.PuntoID,
	}, 0)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// --- POST /portal/tickets/:numero/aprobar ---
// The client-facing budget approval
func (h *PortalHandler) AprobarPresupuesto(c *gin.Context) {
	ticket, ok := h.ownTicket(c)
	if !ok {
		return
	}
	presupuesto, err := h.Presupuestos.Aprobar(ticket.ID, 0)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, presupuesto)
}

// --- GET /portal/tickets/:numero/qr ---
// PNG QR code pointing at the public tracking page, for the drop-off label
func (h *PortalHandler) TicketQR(c *gin.Context) {
	ticket, ok := h.ownTicket(c)
	if !ok {
		return
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	png, err := qrcode.Encode(baseURL+"/portal/track/"+ticket.TrackingCode, qrcode.Medium, 256)
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// --- GET /portal/track/:code ---
// Public tracking by the unguessable code printed on the label: status only,
// no personal data
func (h *PortalHandler) Track(c *gin.Context) {
	var ticket models.Ticket
	if err := h.DB.Preload("Estado").Preload("Modelo").
		Where("tracking_code = ?", c.Param("code")).
		First(&ticket).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket no encontrado", "code": "NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"numero":    ticket.Numero,
		"estado":    ticket.Estado.Nombre,
		"color":     ticket.Estado.Color,
		"modelo":    ticket.Modelo.Nombre,
		"entregado": ticket.Entregado,
		"cancelado": ticket.Cancelado,
		"creado":    ticket.CreatedAt,
	})
}
