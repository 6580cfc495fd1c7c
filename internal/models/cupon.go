package models

import (
	"time"
)

const (
	CuponPorcentaje = "PORCENTAJE"
	CuponMontoFijo  = "MONTO_FIJO"
)

// Cupon - a discount code. LimiteUsos == 0 means unlimited.
type Cupon struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Codigo          string    `gorm:"uniqueIndex;size:40" json:"codigo"`
	Tipo            string    `gorm:"size:20" json:"tipo"` // 'PORCENTAJE' | 'MONTO_FIJO'
	ValorDescuento  float64   `json:"valor_descuento"`
	MontoMinimo     float64   `json:"monto_minimo"`
	FechaInicio     time.Time `json:"fecha_inicio"`
	FechaExpiracion time.Time `json:"fecha_expiracion"`
	LimiteUsos      int       `json:"limite_usos"`
	UsosActuales    int       `json:"usos_actuales"`
	Activo          bool      `gorm:"default:true" json:"activo"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Cupon) TableName() string { return "cupones" }

// CuponUso - one application of a coupon to a ticket or a sale. The unique
// indexes give idempotency per target: the same coupon cannot land twice on
// the same ticket or the same sale.
type CuponUso struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CuponID        uint      `gorm:"index;uniqueIndex:idx_cupon_ticket;uniqueIndex:idx_cupon_venta" json:"cupon_id"`
	TicketID       *uint     `gorm:"uniqueIndex:idx_cupon_ticket" json:"ticket_id,omitempty"`
	VentaID        *uint     `gorm:"uniqueIndex:idx_cupon_venta" json:"venta_id,omitempty"`
	MontoDescuento float64   `json:"monto_descuento"`
	UsuarioID      uint      `json:"usuario_id"`
	Fecha          time.Time `json:"fecha"`
}

func (CuponUso) TableName() string { return "cupon_usos" }
