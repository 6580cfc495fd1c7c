package handlers

import (
	"net/http"
	"strconv"

	"go-taller/internal/models"
	"go-taller/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CatalogHandler manages the small admin catalogs: lifecycle statuses,
// device models, service types, collection points and clients.
type CatalogHandler struct {
	DB       *gorm.DB
	Clientes *services.ClienteService
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{DB: db, Clientes: services.NewClienteService(db)}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "ID inválido")
		return 0, false
	}
	return uint(id), true
}

// --- Estados del ticket ---
// The lifecycle reads this table by name at every transition, so renames
// and reorders here take effect immediately.

func (h *CatalogHandler) ListEstados(c *gin.Context) {
	var estados []models.EstadoTicket
	if err := h.DB.Order("orden").Find(&estados).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, estados)
}

type estadoRequest struct {
	Nombre string `json:"nombre" binding:"required"`
	Orden  int    `json:"orden" binding:"required"`
	Color  string `json:"color"`
}

func (h *CatalogHandler) CreateEstado(c *gin.Context) {
	var input estadoRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos del estado inválidos")
		return
	}
	estado := models.EstadoTicket{Nombre: input.Nombre, Orden: input.Orden, Color: input.Color, Activo: true}
	if err := h.DB.Create(&estado).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ya existe un estado con ese nombre", "code": "CONFLICT"})
		return
	}
	c.JSON(http.StatusCreated, estado)
}

func (h *CatalogHandler) UpdateEstado(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var estado models.EstadoTicket
	if err := h.DB.First(&estado, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Estado no encontrado", "code": "NOT_FOUND"})
		return
	}
	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		badRequest(c, "Datos del estado inválidos")
		return
	}
	if err := h.DB.Model(&estado).Updates(updateData).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, estado)
}

// DeleteEstado deactivates instead of deleting; historical tickets keep
// pointing at the row
func (h *CatalogHandler) DeleteEstado(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res := h.DB.Model(&models.EstadoTicket{}).Where("id = ?", id).Update("activo", false)
	if res.Error != nil {
		fail(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Estado no encontrado", "code": "NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Modelos de equipo ---

func (h *CatalogHandler) ListModelos(c *gin.Context) {
	var modelos []models.Modelo
	if err := h.DB.Order("marca, nombre").Find(&modelos).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, modelos)
}

type modeloRequest struct {
	Marca  string `json:"marca" binding:"required"`
	Nombre string `json:"nombre" binding:"required"`
}

func (h *CatalogHandler) CreateModelo(c *gin.Context) {
	var input modeloRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Marca y nombre son obligatorios")
		return
	}
	modelo := models.Modelo{Marca: input.Marca, Nombre: input.Nombre}
	if err := h.DB.Create(&modelo).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, modelo)
}

// --- Tipos de servicio ---

func (h *CatalogHandler) ListTiposServicio(c *gin.Context) {
	var tipos []models.TipoServicio
	if err := h.DB.Where("activo = ?", true).Order("nombre").Find(&tipos).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tipos)
}

type tipoServicioRequest struct {
	Nombre      string  `json:"nombre" binding:"required"`
	Descripcion string  `json:"descripcion"`
	PrecioBase  float64 `json:"precio_base" binding:"min=0"`
}

func (h *CatalogHandler) CreateTipoServicio(c *gin.Context) {
	var input tipoServicioRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos del servicio inválidos")
		return
	}
	tipo := models.TipoServicio{
		Nombre:      input.Nombre,
		Descripcion: input.Descripcion,
		PrecioBase:  input.PrecioBase,
		Activo:      true,
	}
	if err := h.DB.Create(&tipo).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tipo)
}

// --- Puntos de recolección ---

func (h *CatalogHandler) ListPuntos(c *gin.Context) {
	var puntos []models.PuntoRecoleccion
	if err := h.DB.Where("activo = ?", true).Order("nombre").Find(&puntos).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, puntos)
}

type puntoRequest struct {
	Nombre            string `json:"nombre" binding:"required"`
	Direccion         string `json:"direccion" binding:"required"`
	EsPuntoReparacion bool   `json:"es_punto_reparacion"`
}

func (h *CatalogHandler) CreatePunto(c *gin.Context) {
	var input puntoRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos del punto inválidos")
		return
	}
	punto := models.PuntoRecoleccion{
		Nombre:            input.Nombre,
		Direccion:         input.Direccion,
		EsPuntoReparacion: input.EsPuntoReparacion,
		Activo:            true,
	}
	if err := h.DB.Create(&punto).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, punto)
}

func (h *CatalogHandler) UpdatePunto(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var punto models.PuntoRecoleccion
	if err := h.DB.First(&punto, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Punto no encontrado", "code": "NOT_FOUND"})
		return
	}
	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		badRequest(c, "Datos del punto inválidos")
		return
	}
	if err := h.DB.Model(&punto).Updates(updateData).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, punto)
}

// --- Clientes ---

func (h *CatalogHandler) ListClientes(c *gin.Context) {
	clientes, err := h.Clientes.Listar(c.Query("incluir_inactivos") == "true")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, clientes)
}

func (h *CatalogHandler) CreateCliente(c *gin.Context) {
	var input services.ClienteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos del cliente inválidos")
		return
	}
	cliente, err := h.Clientes.Crear(input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cliente)
}

func (h *CatalogHandler) UpdateCliente(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input services.ClienteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos del cliente inválidos")
		return
	}
	cliente, err := h.Clientes.Actualizar(id, input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cliente)
}

func (h *CatalogHandler) DeleteCliente(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Clientes.Desactivar(id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
