package database

import (
	"go-taller/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EstadosCanonicos is the canonical status catalog. The workflow never
// assumes this exact set at runtime (the table is the source of truth);
// this is only what a fresh install starts with.
var EstadosCanonicos = []models.EstadoTicket{
	{Nombre: models.EstadoRecibido, Orden: 1, Color: "#9E9E9E", Activo: true},
	{Nombre: models.EstadoEnDiagnostico, Orden: 2, Color: "#03A9F4", Activo: true},
	{Nombre: models.EstadoPresupuestoGenerado, Orden: 3, Color: "#FFC107", Activo: true},
	{Nombre: models.EstadoPresupuestoAprobado, Orden: 4, Color: "#FF9800", Activo: true},
	{Nombre: models.EstadoEnReparacion, Orden: 5, Color: "#3F51B5", Activo: true},
	{Nombre: models.EstadoReparacionTerminada, Orden: 6, Color: "#009688", Activo: true},
	{Nombre: models.EstadoListoParaEntrega, Orden: 7, Color: "#8BC34A", Activo: true},
	{Nombre: models.EstadoEntregado, Orden: 8, Color: "#4CAF50", Activo: true},
	{Nombre: models.EstadoCancelado, Orden: 9, Color: "#F44336", Activo: true},
}

// Permisos checked by the route middleware
var PermisosBase = []models.Permiso{
	{Codigo: "tickets.ver", Descripcion: "Ver tickets"},
	{Codigo: "tickets.crear", Descripcion: "Crear tickets"},
	{Codigo: "tickets.reparar", Descripcion: "Diagnosticar y reparar"},
	{Codigo: "tickets.entregar", Descripcion: "Entregar y cancelar tickets"},
	{Codigo: "presupuestos.gestionar", Descripcion: "Generar y aprobar presupuestos"},
	{Codigo: "pagos.registrar", Descripcion: "Registrar y cancelar pagos"},
	{Codigo: "inventario.ver", Descripcion: "Ver inventario"},
	{Codigo: "inventario.gestionar", Descripcion: "Entradas, salidas y productos"},
	{Codigo: "ventas.registrar", Descripcion: "Registrar ventas de mostrador"},
	{Codigo: "cupones.gestionar", Descripcion: "Validar, aplicar y generar cupones"},
	{Codigo: "clientes.gestionar", Descripcion: "Alta y edición de clientes"},
	{Codigo: "catalogos.gestionar", Descripcion: "Estados, modelos, servicios y puntos"},
	{Codigo: "reportes.ver", Descripcion: "Reportes y valoración de inventario"},
	{Codigo: "asistente.usar", Descripcion: "Asistente del taller"},
}

var rolesBase = map[string][]string{
	"admin": {
		"tickets.ver", "tickets.crear", "tickets.reparar", "tickets.entregar",
		"presupuestos.gestionar", "pagos.registrar", "inventario.ver",
		"inventario.gestionar", "ventas.registrar", "cupones.gestionar",
		"clientes.gestionar", "catalogos.gestionar", "reportes.ver", "asistente.usar",
	},
	"tecnico": {
		"tickets.ver", "tickets.reparar", "inventario.ver",
	},
	"recepcionista": {
		"tickets.ver", "tickets.crear", "tickets.entregar",
		"presupuestos.gestionar", "pagos.registrar", "ventas.registrar",
		"cupones.gestionar", "clientes.gestionar",
	},
}

// Seed loads the status catalog, permissions and base roles. Idempotent:
// existing rows are left untouched, so admins can reshape the catalog.
func Seed(db *gorm.DB) error {
	for _, e := range EstadosCanonicos {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&e).Error; err != nil {
			return err
		}
	}
	for _, p := range PermisosBase {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
			return err
		}
	}
	for nombre, codigos := range rolesBase {
		var rol models.Rol
		if err := db.Where("nombre = ?", nombre).First(&rol).Error; err == nil {
			continue // role already present, leave its permission set alone
		}
		rol = models.Rol{Nombre: nombre}
		if err := db.Create(&rol).Error; err != nil {
			return err
		}
		var permisos []models.Permiso
		if err := db.Where("codigo IN ?", codigos).Find(&permisos).Error; err != nil {
			return err
		}
		if err := db.Model(&rol).Association("Permisos").Append(&permisos); err != nil {
			return err
		}
	}
	return nil
}
