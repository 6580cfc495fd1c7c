package services

import (
	"errors"
	"sort"
	"time"

	"go-taller/internal/apperr"
	"go-taller/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Faltante is one short part in an insufficient-stock rejection
type Faltante struct {
	ProductoID uint   `json:"producto_id"`
	Producto   string `json:"producto"`
	Solicitado int    `json:"solicitado"`
	Disponible int    `json:"disponible"`
}

// StockService owns inventory movements. Stock can never go negative; every
// mutation locks the product row first.
type StockService struct {
	DB *gorm.DB
}

func NewStockService(db *gorm.DB) *StockService {
	return &StockService{DB: db}
}

func lockProducto(tx *gorm.DB, id uint) (*models.Producto, error) {
	var p models.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("producto %d no encontrado", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RegistrarEntrada books a purchase: recompute the weighted-average cost,
// then bump the stock, with the entrada row in the same transaction.
func (s *StockService) RegistrarEntrada(productoID uint, cantidad int, precioCompra float64, usuarioID uint) (*models.Producto, error) {
	if cantidad <= 0 {
		return nil, apperr.InvalidInput("la cantidad debe ser mayor a cero")
	}
	if precioCompra < 0 {
		return nil, apperr.InvalidInput("el precio de compra no puede ser negativo")
	}

	var producto *models.Producto
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		producto, err = lockProducto(tx, productoID)
		if err != nil {
			return err
		}

		// new_avg = (old_avg*old_stock + price*qty) / (old_stock + qty)
		oldStock := float64(producto.Stock)
		qty := float64(cantidad)
		producto.PrecioPromedio = (producto.PrecioPromedio*oldStock + precioCompra*qty) / (oldStock + qty)
		producto.Stock += cantidad
		if err := tx.Save(producto).Error; err != nil {
			return err
		}

		entrada := models.EntradaStock{
			ProductoID:   productoID,
			Cantidad:     cantidad,
			PrecioCompra: precioCompra,
			UsuarioID:    usuarioID,
			Fecha:        time.Now(),
		}
		return tx.Create(&entrada).Error
	})
	if err != nil {
		return nil, err
	}
	return producto, nil
}

// RegistrarSalida books a manual exit (sale, damage, other). Rejected when
// the requested quantity exceeds what is on hand.
func (s *StockService) RegistrarSalida(productoID uint, cantidad int, tipo, motivo, referencia string, usuarioID uint) (*models.Producto, error) {
	if cantidad <= 0 {
		return nil, apperr.InvalidInput("la cantidad debe ser mayor a cero")
	}
	switch tipo {
	case models.SalidaVenta, models.SalidaReparacion, models.SalidaDano, models.SalidaOtro:
	default:
		return nil, apperr.InvalidInput("tipo de salida '%s' no válido", tipo)
	}

	var producto *models.Producto
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		producto, err = lockProducto(tx, productoID)
		if err != nil {
			return err
		}

		if cantidad > producto.Stock {
			return apperr.InsufficientStock("stock insuficiente", []Faltante{{
				ProductoID: producto.ID,
				Producto:   producto.Nombre,
				Solicitado: cantidad,
				Disponible: producto.Stock,
			}})
		}

		producto.Stock -= cantidad
		if err := tx.Save(producto).Error; err != nil {
			return err
		}

		salida := models.SalidaStock{
			ProductoID: productoID,
			Cantidad:   cantidad,
			Tipo:       tipo,
			Motivo:     motivo,
			Referencia: referencia,
			UsuarioID:  usuarioID,
			Fecha:      time.Now(),
		}
		return tx.Create(&salida).Error
	})
	if err != nil {
		return nil, err
	}
	return producto, nil
}

// DescontarParaReparacion deducts every consumed part inside the caller's
// transaction (shared with the ticket-completion transition). All shortages
// are collected before failing so the error lists every short part, and a
// failure leaves no partial deduction behind.
func DescontarParaReparacion(tx *gorm.DB, ticketNumero string, partes []ParteConsumida, usuarioID uint) error {
	if len(partes) == 0 {
		return nil
	}

	// merge duplicate part lines so the availability check sees the real total
	merged := make([]ParteConsumida, 0, len(partes))
	porProducto := make(map[uint]int)
	for _, parte := range partes {
		if idx, ok := porProducto[parte.ProductoID]; ok {
			merged[idx].Cantidad += parte.Cantidad
			continue
		}
		porProducto[parte.ProductoID] = len(merged)
		merged = append(merged, parte)
	}
	partes = merged

	// always lock products in the same order
	sort.Slice(partes, func(i, j int) bool {
		return partes[i].ProductoID < partes[j].ProductoID
	})

	productos := make([]*models.Producto, 0, len(partes))
	var faltantes []Faltante
	for _, parte := range partes {
		if parte.Cantidad <= 0 {
			return apperr.InvalidInput("la cantidad para el producto %d debe ser mayor a cero", parte.ProductoID)
		}
		producto, err := lockProducto(tx, parte.ProductoID)
		if err != nil {
			return err
		}
		if parte.Cantidad > producto.Stock {
			faltantes = append(faltantes, Faltante{
				ProductoID: producto.ID,
				Producto:   producto.Nombre,
				Solicitado: parte.Cantidad,
				Disponible: producto.Stock,
			})
		}
		productos = append(productos, producto)
	}

	if len(faltantes) > 0 {
		return apperr.InsufficientStock("stock insuficiente para completar la reparación", faltantes)
	}

	now := time.Now()
	for i, parte := range partes {
		producto := productos[i]
		producto.Stock -= parte.Cantidad
		if err := tx.Save(producto).Error; err != nil {
			return err
		}
		salida := models.SalidaStock{
			ProductoID: producto.ID,
			Cantidad:   parte.Cantidad,
			Tipo:       models.SalidaReparacion,
			Referencia: "Ticket-" + ticketNumero,
			UsuarioID:  usuarioID,
			Fecha:      now,
		}
		if err := tx.Create(&salida).Error; err != nil {
			return err
		}
	}
	return nil
}
