package handlers

import (
	"net/http"
	"time"

	"go-taller/internal/database"
	"go-taller/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReportHandler struct {
	DB *gorm.DB
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{DB: db}
}

// ReportData is the dashboard payload
type ReportData struct {
	TotalCobrado     float64 `json:"total_cobrado"`
	TotalVentas      float64 `json:"total_ventas"`
	TicketsAbiertos  int64   `json:"tickets_abiertos"`
	TicketsPorEstado []struct {
		Estado string `json:"estado"`
		Total  int64  `json:"total"`
	} `json:"tickets_por_estado"`
	PartesMasUsadas []struct {
		Producto string `json:"producto"`
		Usado    int    `json:"usado"`
	} `json:"partes_mas_usadas"`
	TicketsRecientes []models.Ticket `json:"tickets_recientes"`
}

// --- GET /api/reportes ---
func (h *ReportHandler) Dashboard(c *gin.Context) {
	var data ReportData

	err := h.DB.Model(&models.Pago{}).
		Where("estado = ? AND ticket_id IS NOT NULL", models.PagoActivo).
		Select("COALESCE(SUM(monto), 0)").
		Scan(&data.TotalCobrado).Error
	if err != nil {
		fail(c, err)
		return
	}

	err = h.DB.Model(&models.Venta{}).
		Where("estado = ?", models.VentaCompletada).
		Select("COALESCE(SUM(total), 0)").
		Scan(&data.TotalVentas).Error
	if err != nil {
		fail(c, err)
		return
	}

	err = h.DB.Model(&models.Ticket{}).
		Where("entregado = ? AND cancelado = ?", false, false).
		Count(&data.TicketsAbiertos).Error
	if err != nil {
		fail(c, err)
		return
	}

	err = h.DB.Table("tickets").
		Select("estados_ticket.nombre as estado, COUNT(*) as total").
		Joins("JOIN estados_ticket ON estados_ticket.id = tickets.estado_id").
		Group("estados_ticket.nombre").
		Scan(&data.TicketsPorEstado).Error
	if err != nil {
		fail(c, err)
		return
	}

	err = h.DB.Table("salidas_stock").
		Select("productos.nombre as producto, SUM(salidas_stock.cantidad) as usado").
		Joins("JOIN productos ON productos.id = salidas_stock.producto_id").
		Where("salidas_stock.tipo = ?", models.SalidaReparacion).
		Group("productos.nombre").
		Order("usado desc").
		Limit(5).
		Scan(&data.PartesMasUsadas).Error
	if err != nil {
		fail(c, err)
		return
	}

	err = h.DB.Preload("Cliente").Preload("Estado").Preload("Modelo").
		Order("created_at desc").Limit(10).
		Find(&data.TicketsRecientes).Error
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// --- GET /api/reportes/ingresos?inicio=YYYY-MM-DD&fin=YYYY-MM-DD ---
func (h *ReportHandler) Ingresos(c *gin.Context) {
	inicio, err1 := time.Parse("2006-01-02", c.Query("inicio"))
	fin, err2 := time.Parse("2006-01-02", c.Query("fin"))
	if err1 != nil || err2 != nil {
		badRequest(c, "Las fechas deben tener formato YYYY-MM-DD")
		return
	}
	fin = fin.Add(23*time.Hour + 59*time.Minute)

	report, err := database.GetRevenueReport(h.DB, inicio, fin)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_cobrado": report.TotalCobrado,
		"pagos":         report.PagosCount,
		"total_ventas":  report.VentasTotal,
		"ventas":        report.VentasCount,
		"tickets":       report.TicketsCount,
	})
}

// --- DATA STRUCTURES FOR VALUATION REPORT ---

// ValuationItem is one row in the valuation table
type ValuationItem struct {
	Nombre     string  `json:"nombre"`
	Cantidad   int     `json:"cantidad"`
	CostoUnit  float64 `json:"costo_unitario"`
	CostoTotal float64 `json:"costo_total"`
}

// CategoryGroup groups valuation rows by product category
type CategoryGroup struct {
	Categoria string          `json:"categoria"`
	Items     []ValuationItem `json:"items"`
	Subtotal  float64         `json:"subtotal"`
}

type ValuationResponse struct {
	Categorias []CategoryGroup `json:"categorias"`
	GranTotal  float64         `json:"gran_total"`
}

// --- GET /api/reportes/valoracion ---
// Monetary value of everything on the shelves, at weighted-average cost
func (h *ReportHandler) Valoracion(c *gin.Context) {
	var productos []models.Producto
	if err := h.DB.Where("activo = ?", true).Find(&productos).Error; err != nil {
		fail(c, err)
		return
	}

	var granTotal float64
	grouped := make(map[string]*CategoryGroup)

	for _, p := range productos {
		cat := p.Categoria
		if cat == "" {
			cat = "Sin categoría"
		}
		if _, exists := grouped[cat]; !exists {
			grouped[cat] = &CategoryGroup{Categoria: cat, Items: []ValuationItem{}}
		}

		itemTotal := float64(p.Stock) * p.PrecioPromedio
		grouped[cat].Items = append(grouped[cat].Items, ValuationItem{
			Nombre:     p.Nombre,
			Cantidad:   p.Stock,
			CostoUnit:  p.PrecioPromedio,
			CostoTotal: itemTotal,
		})
		grouped[cat].Subtotal += itemTotal
		granTotal += itemTotal
	}

	var response ValuationResponse
	response.GranTotal = granTotal
	for _, group := range grouped {
		response.Categorias = append(response.Categorias, *group)
	}
	c.JSON(http.StatusOK, response)
}
