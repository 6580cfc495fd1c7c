package models

import (
	"time"
)

// Canonical status names used by the lifecycle code. The catalog itself is
// data-driven (estados_ticket table); these constants are only the names the
// workflow resolves at transition time.
const (
	EstadoRecibido            = "Recibido"
	EstadoEnDiagnostico       = "En Diagnóstico"
	EstadoPresupuestoGenerado = "Presupuesto Generado"
	EstadoPresupuestoAprobado = "Presupuesto Aprobado"
	EstadoEnReparacion        = "En Reparación"
	EstadoReparacionTerminada = "Reparación Terminada"
	EstadoListoParaEntrega    = "Listo para Entrega"
	EstadoEntregado           = "Entregado"
	EstadoCancelado           = "Cancelado"
)

// EstadoTicket - one row per lifecycle stage (ordered, colored, soft-deactivatable)
type EstadoTicket struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Nombre string `gorm:"uniqueIndex;size:60" json:"nombre"`
	Orden  int    `json:"orden"`
	Color  string `json:"color"`
	Activo bool   `gorm:"default:true" json:"activo"`
}

func (EstadoTicket) TableName() string { return "estados_ticket" }

// Cliente - the customer who owns the device
type Cliente struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nombre    string    `json:"nombre"`
	Email     string    `gorm:"uniqueIndex;size:120" json:"email"`
	Telefono  string    `json:"telefono"`
	Direccion string    `json:"direccion"`
	Activo    bool      `gorm:"default:true" json:"activo"`
	CreatedAt time.Time `json:"created_at"`
}

// Modelo - the device model being repaired (e.g. "Samsung Galaxy S22")
type Modelo struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Marca  string `json:"marca"`
	Nombre string `json:"nombre"`
}

// TipoServicio - service catalog entry (screen swap, battery, diagnostics...)
type TipoServicio struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion"`
	PrecioBase  float64 `json:"precio_base"`
	Activo      bool    `gorm:"default:true" json:"activo"`
}

func (TipoServicio) TableName() string { return "tipos_servicio" }

// Ticket - one repair job, from intake to delivery
type Ticket struct {
	ID                  uint         `gorm:"primaryKey" json:"id"`
	Numero              string       `gorm:"uniqueIndex;size:20" json:"numero"`
	TrackingCode        string       `gorm:"uniqueIndex;size:40" json:"tracking_code"`
	ClienteID           uint         `json:"cliente_id"`
	Cliente             Cliente      `json:"cliente"`
	ModeloID            uint         `json:"modelo_id"`
	Modelo              Modelo       `json:"modelo"`
	TipoServicioID      uint         `json:"tipo_servicio_id"`
	TipoServicio        TipoServicio `json:"tipo_servicio"`
	DescripcionProblema string       `json:"descripcion_problema"`
	EstadoID            uint         `json:"estado_id"`
	Estado              EstadoTicket `json:"estado"`
	TecnicoID           *uint        `json:"tecnico_id"`
	PuntoID             *uint        `json:"punto_id"`
	Cancelado           bool         `json:"cancelado"`
	MotivoCancelacion   string       `json:"motivo_cancelacion,omitempty"`
	FechaCancelacion    *time.Time   `json:"fecha_cancelacion,omitempty"`
	Entregado           bool         `json:"entregado"`
	FechaEntrega        *time.Time   `json:"fecha_entrega,omitempty"`
	Reparacion          *Reparacion  `json:"reparacion,omitempty"`
	Presupuesto         *Presupuesto `json:"presupuesto,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// Reparacion - the technical work record, 1:1 with its ticket
type Reparacion struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	TicketID          uint        `gorm:"uniqueIndex" json:"ticket_id"`
	Diagnostico       string      `json:"diagnostico"`
	SaludBateria      int         `json:"salud_bateria"` // percentage reported by the device
	VersionOS         string      `json:"version_os"`
	TecnicoID         *uint       `json:"tecnico_id"`
	InicioDiagnostico *time.Time  `json:"inicio_diagnostico,omitempty"`
	InicioReparacion  *time.Time  `json:"inicio_reparacion,omitempty"`
	PausaReparacion   *time.Time  `json:"pausa_reparacion,omitempty"`
	ReanudacionRep    *time.Time  `json:"reanudacion_reparacion,omitempty"`
	FinReparacion     *time.Time  `json:"fin_reparacion,omitempty"`
	Checklists        []Checklist `gorm:"foreignKey:ReparacionID" json:"checklists,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func (Reparacion) TableName() string { return "reparaciones" }

const (
	ChecklistDiagnostico = "diagnostico"
	ChecklistReparacion  = "reparacion"
)

// Checklist - yes/no inspection list attached to a repair (diagnosis or repair type)
type Checklist struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ReparacionID uint            `gorm:"index" json:"reparacion_id"`
	Tipo         string          `gorm:"size:20" json:"tipo"` // 'diagnostico' | 'reparacion'
	Items        []ChecklistItem `gorm:"foreignKey:ChecklistID" json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
}

type ChecklistItem struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ChecklistID   uint   `json:"checklist_id"`
	Descripcion   string `json:"descripcion"`
	Respuesta     bool   `json:"respuesta"`
	Observaciones string `json:"observaciones,omitempty"`
}

// Presupuesto - the quote attached 1:1 to a ticket; saldo is the running
// balance (total_final minus active payments, floored at zero)
type Presupuesto struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	TicketID        uint       `gorm:"uniqueIndex" json:"ticket_id"`
	Conceptos       []Concepto `gorm:"foreignKey:PresupuestoID" json:"conceptos"`
	Subtotal        float64    `json:"subtotal"`
	Total           float64    `json:"total"`
	Descuento       float64    `json:"descuento"`
	TotalFinal      float64    `json:"total_final"`
	Saldo           float64    `json:"saldo"`
	Pagado          bool       `json:"pagado"`
	Aprobado        bool       `json:"aprobado"`
	FechaAprobacion *time.Time `json:"fecha_aprobacion,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Concepto - one quote line item
type Concepto struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	PresupuestoID  uint    `json:"presupuesto_id"`
	Descripcion    string  `json:"descripcion"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precio_unitario"`
}

const (
	PagoActivo    = "activo"
	PagoCancelado = "cancelado"
	PagoDevuelto  = "devuelto"
)

// Pago - a payment against a ticket's budget, or against a standalone sale
type Pago struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TicketID   *uint     `gorm:"index" json:"ticket_id,omitempty"`
	VentaID    *uint     `gorm:"index" json:"venta_id,omitempty"`
	Monto      float64   `json:"monto"`
	Metodo     string    `gorm:"size:20" json:"metodo"` // 'efectivo' | 'transferencia' | 'tarjeta'
	Referencia string    `json:"referencia,omitempty"`
	Estado     string    `gorm:"size:20;default:activo" json:"estado"`
	UsuarioID  uint      `json:"usuario_id"`
	FechaPago  time.Time `json:"fecha_pago"`
}

// AuditLog - who did what, written on every lifecycle transition
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UsuarioID uint      `json:"usuario_id"`
	Accion    string    `json:"accion"`
	Entidad   string    `json:"entidad"`
	EntidadID uint      `json:"entidad_id"`
	Detalle   string    `json:"detalle,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
