package models

import (
	"time"
)

const (
	NivelPuntoAdmin    = "admin"
	NivelPuntoOperador = "operador"
)

// Usuario - a staff member. A user belongs to one collection point with a
// level; roles are many-to-many and carry the permission codes.
type Usuario struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Nombre       string    `json:"nombre"`
	Email        string    `gorm:"uniqueIndex;size:120" json:"email"`
	PasswordHash string    `json:"-"` // Never return this in JSON
	Roles        []Rol     `gorm:"many2many:usuario_roles" json:"roles,omitempty"`
	PuntoID      *uint     `json:"punto_id,omitempty"`
	NivelPunto   string    `gorm:"size:20" json:"nivel_punto,omitempty"` // 'admin' | 'operador'
	Activo       bool      `gorm:"default:true" json:"activo"`
	CreatedAt    time.Time `json:"created_at"`
}

// Rol - a named bundle of permissions
type Rol struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Nombre   string    `gorm:"uniqueIndex;size:50" json:"nombre"`
	Permisos []Permiso `gorm:"many2many:rol_permisos" json:"permisos,omitempty"`
}

func (Rol) TableName() string { return "roles" }

// Permiso - a stable permission code checked per route (e.g. "tickets.crear")
type Permiso struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Codigo      string `gorm:"uniqueIndex;size:60" json:"codigo"`
	Descripcion string `json:"descripcion"`
}

// PuntoRecoleccion - a physical drop-off location. EsPuntoReparacion unlocks
// the diagnosis/repair endpoints for users assigned there.
type PuntoRecoleccion struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Nombre            string `json:"nombre"`
	Direccion         string `json:"direccion"`
	EsPuntoReparacion bool   `json:"es_punto_reparacion"`
	Activo            bool   `gorm:"default:true" json:"activo"`
}

func (PuntoRecoleccion) TableName() string { return "puntos_recoleccion" }

// SystemLicense - hardware-keyed activation record
type SystemLicense struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	LicenseKey     string    `json:"license_key"`
	ExpirationDate time.Time `json:"expiration_date"`
	IsActive       bool      `json:"is_active"`
}
