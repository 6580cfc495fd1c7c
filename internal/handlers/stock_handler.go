package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"go-taller/internal/models"
	"go-taller/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StockHandler struct {
	DB    *gorm.DB
	Stock *services.StockService
}

func NewStockHandler(db *gorm.DB) *StockHandler {
	return &StockHandler{DB: db, Stock: services.NewStockService(db)}
}

func productoID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "ID de producto inválido")
		return 0, false
	}
	return uint(id), true
}

// --- GET /api/productos ---
func (h *StockHandler) List(c *gin.Context) {
	q := h.DB.Order("nombre")
	if c.Query("incluir_inactivos") != "true" {
		q = q.Where("activo = ?", true)
	}
	var productos []models.Producto
	if err := q.Find(&productos).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, productos)
}

// --- GET /api/productos/bajo-stock ---
func (h *StockHandler) BajoStock(c *gin.Context) {
	var productos []models.Producto
	if err := h.DB.Where("activo = ? AND stock <= stock_minimo", true).
		Order("stock").Find(&productos).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, productos)
}

type productoRequest struct {
	SKU         string  `json:"sku" binding:"required"`
	Nombre      string  `json:"nombre" binding:"required"`
	Categoria   string  `json:"categoria"`
	PrecioVenta float64 `json:"precio_venta" binding:"min=0"`
	StockMinimo int     `json:"stock_minimo" binding:"min=0"`
	StockMaximo int     `json:"stock_maximo" binding:"min=0"`
	ImagenURL   string  `json:"imagen_url"`
}

// --- POST /api/productos ---
// Initial stock always enters through an entrada so the average price and
// the movement audit stay consistent.
func (h *StockHandler) Create(c *gin.Context) {
	var input productoRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos del producto inválidos")
		return
	}

	producto := models.Producto{
		SKU:         input.SKU,
		Nombre:      input.Nombre,
		Categoria:   input.Categoria,
		PrecioVenta: input.PrecioVenta,
		StockMinimo: input.StockMinimo,
		StockMaximo: input.StockMaximo,
		ImagenURL:   input.ImagenURL,
		Activo:      true,
	}
	if err := h.DB.Create(&producto).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ya existe un producto con ese SKU", "code": "CONFLICT"})
		return
	}
	c.JSON(http.StatusCreated, producto)
}

// --- PUT /api/productos/:id ---
func (h *StockHandler) Update(c *gin.Context) {
	id, ok := productoID(c)
	if !ok {
		return
	}

	var producto models.Producto
	if err := h.DB.First(&producto, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Producto no encontrado", "code": "NOT_FOUND"})
		return
	}

	// partial update: only touch what was sent. Stock and the average price
	// are off limits here; they only move through entradas/salidas.
	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		badRequest(c, "Datos del producto inválidos")
		return
	}
	delete(updateData, "stock")
	delete(updateData, "precio_promedio")

	if err := h.DB.Model(&producto).Updates(updateData).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, producto)
}

// --- DELETE /api/productos/:id ---
func (h *StockHandler) Delete(c *gin.Context) {
	id, ok := productoID(c)
	if !ok {
		return
	}
	res := h.DB.Model(&models.Producto{}).Where("id = ?", id).Update("activo", false)
	if res.Error != nil {
		fail(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Producto no encontrado", "code": "NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type entradaRequest struct {
	Cantidad     int     `json:"cantidad" binding:"required,min=1"`
	PrecioCompra float64 `json:"precio_compra" binding:"min=0"`
}

// --- POST /api/productos/:id/entradas ---
func (h *StockHandler) RegistrarEntrada(c *gin.Context) {
	id, ok := productoID(c)
	if !ok {
		return
	}
	var input entradaRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos de la entrada inválidos")
		return
	}
	producto, err := h.Stock.RegistrarEntrada(id, input.Cantidad, input.PrecioCompra, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, producto)
}

type salidaRequest struct {
	Cantidad   int    `json:"cantidad" binding:"required,min=1"`
	Tipo       string `json:"tipo" binding:"required,oneof=VENTA REPARACION DANO OTRO"`
	Motivo     string `json:"motivo"`
	Referencia string `json:"referencia"`
}

// --- POST /api/productos/:id/salidas ---
func (h *StockHandler) RegistrarSalida(c *gin.Context) {
	id, ok := productoID(c)
	if !ok {
		return
	}
	var input salidaRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos de la salida inválidos")
		return
	}
	producto, err := h.Stock.RegistrarSalida(id, input.Cantidad, input.Tipo, input.Motivo, input.Referencia, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, producto)
}

// --- GET /api/productos/:id/movimientos ---
func (h *StockHandler) Movimientos(c *gin.Context) {
	id, ok := productoID(c)
	if !ok {
		return
	}
	var entradas []models.EntradaStock
	if err := h.DB.Where("producto_id = ?", id).Order("fecha desc").Find(&entradas).Error; err != nil {
		fail(c, err)
		return
	}
	var salidas []models.SalidaStock
	if err := h.DB.Where("producto_id = ?", id).Order("fecha desc").Find(&salidas).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entradas": entradas, "salidas": salidas})
}

// --- POST /api/upload ---
// Device photos and product images land in ./uploads
func (h *StockHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "No se recibió ningún archivo")
		return
	}

	filename := fmt.Sprintf("%d_%s", time.Now().Unix(), file.Filename)
	filepath := "./uploads/" + filename
	if err := c.SaveUploadedFile(file, filepath); err != nil {
		fail(c, err)
		return
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     baseURL + "/uploads/" + filename,
	})
}
