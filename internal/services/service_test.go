package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"go-taller/internal/apperr"
	"go-taller/internal/database"
	"go-taller/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixtureSeq atomic.Uint64

// testDB opens a throwaway in-memory database, one per test name, with the
// full schema and the canonical seed loaded.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("abrir sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrar: %v", err)
	}
	if err := database.Seed(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func nuevoTicket(t *testing.T, db *gorm.DB) *models.Ticket {
	t.Helper()
	n := fixtureSeq.Add(1)
	cliente := models.Cliente{Nombre: "Ana Torres", Email: fmt.Sprintf("ana%d@test.local", n), Activo: true}
	if err := db.Create(&cliente).Error; err != nil {
		t.Fatalf("crear cliente: %v", err)
	}
	modelo := models.Modelo{Marca: "Samsung", Nombre: "Galaxy S22"}
	if err := db.Create(&modelo).Error; err != nil {
		t.Fatalf("crear modelo: %v", err)
	}
	tipo := models.TipoServicio{Nombre: "Cambio de pantalla", PrecioBase: 150, Activo: true}
	if err := db.Create(&tipo).Error; err != nil {
		t.Fatalf("crear tipo de servicio: %v", err)
	}

	ticket, err := NewTicketService(db).Crear(CrearTicketInput{
		ClienteID:           cliente.ID,
		ModeloID:            modelo.ID,
		TipoServicioID:      tipo.ID,
		DescripcionProblema: "pantalla rota",
	}, 1)
	if err != nil {
		t.Fatalf("crear ticket: %v", err)
	}
	return ticket
}

func nuevoProducto(t *testing.T, db *gorm.DB, nombre string, stock int, promedio, precioVenta float64) *models.Producto {
	t.Helper()
	n := fixtureSeq.Add(1)
	p := models.Producto{
		SKU:            fmt.Sprintf("SKU-%04d", n),
		Nombre:         nombre,
		Stock:          stock,
		PrecioPromedio: promedio,
		PrecioVenta:    precioVenta,
		Activo:         true,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("crear producto: %v", err)
	}
	return &p
}

// estadoDe reloads the ticket and returns its current status name
func estadoDe(t *testing.T, db *gorm.DB, ticketID uint) string {
	t.Helper()
	var ticket models.Ticket
	if err := db.Preload("Estado").First(&ticket, ticketID).Error; err != nil {
		t.Fatalf("recargar ticket %d: %v", ticketID, err)
	}
	return ticket.Estado.Nombre
}

func wantCode(t *testing.T, err error, code apperr.Code) *apperr.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("esperaba error %s, no hubo error", code)
	}
	e, ok := apperr.As(err)
	if !ok {
		t.Fatalf("esperaba *apperr.Error, recibí: %v", err)
	}
	if e.Code != code {
		t.Fatalf("esperaba código %s, recibí %s (%s)", code, e.Code, e.Message)
	}
	return e
}
