package database

import (
	"fmt"
	"testing"

	"go-taller/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("abrir sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrar: %v", err)
	}
	return db
}

func TestSeedIdempotente(t *testing.T) {
	db := testDB(t)
	if err := Seed(db); err != nil {
		t.Fatalf("primer seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("segundo seed: %v", err)
	}

	var estados int64
	db.Model(&models.EstadoTicket{}).Count(&estados)
	if int(estados) != len(EstadosCanonicos) {
		t.Fatalf("estados = %d, esperaba %d", estados, len(EstadosCanonicos))
	}

	var permisos int64
	db.Model(&models.Permiso{}).Count(&permisos)
	if int(permisos) != len(PermisosBase) {
		t.Fatalf("permisos = %d, esperaba %d", permisos, len(PermisosBase))
	}

	var roles int64
	db.Model(&models.Rol{}).Count(&roles)
	if roles != 3 {
		t.Fatalf("roles = %d, esperaba 3", roles)
	}
}

// Rehacer el seed nunca pisa un catálogo que el administrador ya ajustó
func TestSeedRespetaCambiosDelAdmin(t *testing.T) {
	db := testDB(t)
	if err := Seed(db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := db.Model(&models.EstadoTicket{}).
		Where("nombre = ?", models.EstadoRecibido).
		Update("color", "#000000").Error; err != nil {
		t.Fatalf("ajustar color: %v", err)
	}

	if err := Seed(db); err != nil {
		t.Fatalf("re-seed: %v", err)
	}

	var estado models.EstadoTicket
	if err := db.Where("nombre = ?", models.EstadoRecibido).First(&estado).Error; err != nil {
		t.Fatalf("recargar estado: %v", err)
	}
	if estado.Color != "#000000" {
		t.Fatalf("color = %q, el re-seed pisó el ajuste del administrador", estado.Color)
	}
}

func TestAdminTieneTodosLosPermisos(t *testing.T) {
	db := testDB(t)
	if err := Seed(db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var admin models.Rol
	if err := db.Preload("Permisos").Where("nombre = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("cargar rol admin: %v", err)
	}
	if len(admin.Permisos) != len(PermisosBase) {
		t.Fatalf("admin tiene %d permisos, esperaba %d", len(admin.Permisos), len(PermisosBase))
	}
}
