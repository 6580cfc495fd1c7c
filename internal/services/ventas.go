package services

import (
	"fmt"
	"time"

	"go-taller/internal/apperr"
	"go-taller/internal/models"

	"gorm.io/gorm"
)

// VentaService processes counter sales: stock check + deduction, price
// snapshot, optional coupon and the payment row, all in one transaction.
type VentaService struct {
	DB      *gorm.DB
	Cupones *CuponService
}

func NewVentaService(db *gorm.DB) *VentaService {
	return &VentaService{DB: db, Cupones: NewCuponService(db)}
}

type VentaItemInput struct {
	ProductoID uint `json:"producto_id" binding:"required"`
	Cantidad   int  `json:"cantidad" binding:"required,min=1"`
}

type VentaInput struct {
	Items     []VentaItemInput `json:"items" binding:"required,min=1,dive"`
	ClienteID *uint            `json:"cliente_id"`
	Metodo    string           `json:"metodo" binding:"required,oneof=efectivo transferencia tarjeta"`
	Cupon     string           `json:"cupon"`
}

func (s *VentaService) Registrar(in VentaInput, usuarioID uint) (*models.Venta, error) {
	var venta models.Venta
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var subtotal float64
		var items []models.VentaItem

		for _, item := range in.Items {
			producto, err := lockProducto(tx, item.ProductoID)
			if err != nil {
				return err
			}
			if producto.Stock < item.Cantidad {
				return apperr.InsufficientStock("stock insuficiente", []Faltante{{
					ProductoID: producto.ID,
					Producto:   producto.Nombre,
					Solicitado: item.Cantidad,
					Disponible: producto.Stock,
				}})
			}

			producto.Stock -= item.Cantidad
			if err := tx.Save(producto).Error; err != nil {
				return err
			}

			subtotal += producto.PrecioVenta * float64(item.Cantidad)
			items = append(items, models.VentaItem{
				ProductoID:  producto.ID,
				Cantidad:    item.Cantidad,
				PrecioVenta: producto.PrecioVenta,
			})
		}

		venta = models.Venta{
			ClienteID: in.ClienteID,
			UsuarioID: usuarioID,
			Subtotal:  subtotal,
			Total:     subtotal,
			Estado:    models.VentaCompletada,
			Items:     items,
			Fecha:     time.Now(),
		}
		if err := tx.Create(&venta).Error; err != nil {
			return err
		}

		// the exit movements reference the sale for the audit trail
		now := time.Now()
		for _, item := range venta.Items {
			salida := models.SalidaStock{
				ProductoID: item.ProductoID,
				Cantidad:   item.Cantidad,
				Tipo:       models.SalidaVenta,
				Referencia: ventaReferencia(venta.ID),
				UsuarioID:  usuarioID,
				Fecha:      now,
			}
			if err := tx.Create(&salida).Error; err != nil {
				return err
			}
		}

		if in.Cupon != "" {
			if _, err := s.Cupones.AplicarAVenta(tx, in.Cupon, &venta, usuarioID); err != nil {
				return err
			}
		}

		pago := models.Pago{
			VentaID:   &venta.ID,
			Monto:     venta.Total,
			Metodo:    in.Metodo,
			Estado:    models.PagoActivo,
			UsuarioID: usuarioID,
			FechaPago: now,
		}
		if err := tx.Create(&pago).Error; err != nil {
			return err
		}

		audit(tx, usuarioID, "registrar_venta", "venta", venta.ID, "")
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.Preload("Items.Producto").First(&venta, venta.ID).Error; err != nil {
		return nil, err
	}
	return &venta, nil
}

func ventaReferencia(id uint) string {
	return fmt.Sprintf("Venta-%d", id)
}
