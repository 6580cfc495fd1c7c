package models

import (
	"time"
)

// Producto - a part or accessory tracked in inventory. PrecioPromedio is the
// running weighted-average purchase price, recomputed on every entrada.
type Producto struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SKU            string    `gorm:"uniqueIndex;size:40" json:"sku"`
	Nombre         string    `json:"nombre"`
	Categoria      string    `json:"categoria"`
	PrecioVenta    float64   `json:"precio_venta"`
	PrecioPromedio float64   `json:"precio_promedio"`
	Stock          int       `json:"stock"`
	StockMinimo    int       `json:"stock_minimo"`
	StockMaximo    int       `json:"stock_maximo"`
	ImagenURL      string    `json:"imagen_url,omitempty"`
	Activo         bool      `gorm:"default:true" json:"activo"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EntradaStock - a purchase that increases stock
type EntradaStock struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProductoID   uint      `gorm:"index" json:"producto_id"`
	Cantidad     int       `json:"cantidad"`
	PrecioCompra float64   `json:"precio_compra"`
	UsuarioID    uint      `json:"usuario_id"`
	Fecha        time.Time `json:"fecha"`
}

func (EntradaStock) TableName() string { return "entradas_stock" }

const (
	SalidaVenta      = "VENTA"
	SalidaReparacion = "REPARACION"
	SalidaDano       = "DANO"
	SalidaOtro       = "OTRO"
)

// SalidaStock - a movement that decreases stock; Referencia points back at
// the sale or ticket that consumed it (e.g. "Ticket-TCK-1A2B3C4D")
type SalidaStock struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProductoID uint      `gorm:"index" json:"producto_id"`
	Cantidad   int       `json:"cantidad"`
	Tipo       string    `gorm:"size:20" json:"tipo"`
	Motivo     string    `json:"motivo,omitempty"`
	Referencia string    `json:"referencia,omitempty"`
	UsuarioID  uint      `json:"usuario_id"`
	Fecha      time.Time `json:"fecha"`
}

func (SalidaStock) TableName() string { return "salidas_stock" }

const (
	VentaCompletada = "completada"
	VentaAnulada    = "anulada"
)

// Venta - a standalone counter sale (no ticket involved)
type Venta struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	ClienteID *uint       `json:"cliente_id,omitempty"`
	UsuarioID uint        `json:"usuario_id"`
	Subtotal  float64     `json:"subtotal"`
	Descuento float64     `json:"descuento"`
	Total     float64     `json:"total"`
	Estado    string      `gorm:"size:20;default:completada" json:"estado"`
	Items     []VentaItem `gorm:"foreignKey:VentaID" json:"items"`
	Fecha     time.Time   `json:"fecha"`
}

// VentaItem - a line in a sale; PrecioVenta is the price snapshot at sale time
type VentaItem struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	VentaID     uint     `json:"venta_id"`
	ProductoID  uint     `json:"producto_id"`
	Producto    Producto `json:"producto"`
	Cantidad    int      `json:"cantidad"`
	PrecioVenta float64  `json:"precio_venta"`
}
