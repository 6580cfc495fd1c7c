package database

import (
	"log"
	"os"
	"time"

	"go-taller/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the MySQL pool from DB_DSN and returns the handle. The
// handle is built once at startup and injected everywhere; no package-level
// global, so tests can swap in their own database.
func Connect() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("❌ Error: DB_DSN not found in .env file. Please configure your database.")
	}

	var db *gorm.DB
	var err error

	// Wait for the DB container to be ready
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal("Failed to connect to database after 5 attempts:", err)
	}

	log.Println("✅ Successfully connected to MySQL!")
	return db
}

// Migrate syncs the schema. Shared with the test harness, which runs it
// against in-memory sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Usuario{},
		&models.Rol{},
		&models.Permiso{},
		&models.PuntoRecoleccion{},
		&models.Cliente{},
		&models.Modelo{},
		&models.TipoServicio{},
		&models.EstadoTicket{},
		&models.Ticket{},
		&models.Reparacion{},
		&models.Checklist{},
		&models.ChecklistItem{},
		&models.Presupuesto{},
		&models.Concepto{},
		&models.Pago{},
		&models.Producto{},
		&models.EntradaStock{},
		&models.SalidaStock{},
		&models.Venta{},
		&models.VentaItem{},
		&models.Cupon{},
		&models.CuponUso{},
		&models.AuditLog{},
		&models.SystemLicense{},
	)
}
