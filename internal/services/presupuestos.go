package services

import (
	"errors"
	"time"

	"go-taller/internal/apperr"
	"go-taller/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConceptoInput is one submitted quote line
type ConceptoInput struct {
	Descripcion    string  `json:"descripcion" binding:"required"`
	Cantidad       int     `json:"cantidad" binding:"required,min=1"`
	PrecioUnitario float64 `json:"precio_unitario" binding:"required,min=0"`
}

// --- Pure balance math ---
// One base everywhere: saldo subtracts from total_final (the discounted
// figure). Some historical paths subtracted from total instead; see the
// regression test before touching this.

func SubtotalConceptos(items []ConceptoInput) float64 {
	var subtotal float64
	for _, it := range items {
		subtotal += float64(it.Cantidad) * it.PrecioUnitario
	}
	return subtotal
}

// CalcularTotalFinal applies the discount, floored at zero
func CalcularTotalFinal(total, descuento float64) float64 {
	tf := total - descuento
	if tf < 0 {
		return 0
	}
	return tf
}

// CalcularSaldo is the running balance, floored at zero
func CalcularSaldo(totalFinal, pagosActivos float64) float64 {
	saldo := totalFinal - pagosActivos
	if saldo < 0 {
		return 0
	}
	return saldo
}

// PresupuestoService owns the budget/payment slice of the lifecycle
type PresupuestoService struct {
	DB      *gorm.DB
	Tickets *TicketService
}

func NewPresupuestoService(db *gorm.DB) *PresupuestoService {
	return &PresupuestoService{DB: db, Tickets: NewTicketService(db)}
}

// Generar computes the quote from the submitted lines and moves the ticket
// to "Presupuesto Generado". Re-generating replaces the line items.
func (s *PresupuestoService) Generar(ticketID uint, items []ConceptoInput, descuento float64, usuarioID uint) (*models.Presupuesto, error) {
	if len(items) == 0 {
		return nil, apperr.InvalidInput("el presupuesto necesita al menos un concepto")
	}
	if descuento < 0 {
		return nil, apperr.InvalidInput("el descuento no puede ser negativo")
	}

	var presupuesto models.Presupuesto
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ticket, err := s.Tickets.activo(tx, ticketID)
		if err != nil {
			return err
		}

		subtotal := SubtotalConceptos(items)
		total := subtotal
		totalFinal := CalcularTotalFinal(total, descuento)

		err = tx.Where("ticket_id = ?", ticketID).First(&presupuesto).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			presupuesto = models.Presupuesto{TicketID: ticketID}
		} else if err != nil {
			return err
		} else {
			// replace the previous line items
			if err := tx.Where("presupuesto_id = ?", presupuesto.ID).
				Delete(&models.Concepto{}).Error; err != nil {
				return err
			}
		}

		presupuesto.Subtotal = subtotal
		presupuesto.Total = total
		presupuesto.Descuento = descuento
		presupuesto.TotalFinal = totalFinal
		presupuesto.Saldo = totalFinal
		presupuesto.Pagado = totalFinal <= 0
		if err := tx.Save(&presupuesto).Error; err != nil {
			return err
		}

		for _, it := range items {
			concepto := models.Concepto{
				PresupuestoID:  presupuesto.ID,
				Descripcion:    it.Descripcion,
				Cantidad:       it.Cantidad,
				PrecioUnitario: it.PrecioUnitario,
			}
			if err := tx.Create(&concepto).Error; err != nil {
				return err
			}
		}

		audit(tx, usuarioID, "generar_presupuesto", "presupuesto", presupuesto.ID, ticket.Numero)
		return s.Tickets.cambiarEstado(tx, ticket, models.EstadoPresupuestoGenerado)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ticketID)
}

// Get loads a ticket's budget with its lines
func (s *PresupuestoService) Get(ticketID uint) (*models.Presupuesto, error) {
	var p models.Presupuesto
	err := s.DB.Preload("Conceptos").Where("ticket_id = ?", ticketID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("el ticket %d no tiene presupuesto", ticketID)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Aprobar is the client-facing approval. The ticket must sit exactly in
// "Presupuesto Generado".
func (s *PresupuestoService) Aprobar(ticketID uint, usuarioID uint) (*models.Presupuesto, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ticket, err := s.Tickets.activo(tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Estado.Nombre != models.EstadoPresupuestoGenerado {
			return apperr.InvalidState("el ticket %s no tiene un presupuesto pendiente de aprobación", ticket.Numero)
		}

		var p models.Presupuesto
		if err := tx.Where("ticket_id = ?", ticketID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.InvalidInput("el ticket %s no tiene presupuesto", ticket.Numero)
			}
			return err
		}

		now := time.Now()
		if err := tx.Model(&p).Updates(map[string]interface{}{
			"aprobado":         true,
			"fecha_aprobacion": &now,
		}).Error; err != nil {
			return err
		}

		audit(tx, usuarioID, "aprobar_presupuesto", "presupuesto", p.ID, ticket.Numero)
		return s.Tickets.cambiarEstado(tx, ticket, models.EstadoPresupuestoAprobado)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ticketID)
}

type PagoInput struct {
	Monto      float64 `json:"monto" binding:"required,gt=0"`
	Metodo     string  `json:"metodo" binding:"required,oneof=efectivo transferencia tarjeta"`
	Referencia string  `json:"referencia"`
}

// RegistrarPago inserts the payment, recomputes the balance under a row
// lock, and steps the status: zero balance finishes the repair, a first
// partial payment on a fresh budget kicks it off.
func (s *PresupuestoService) RegistrarPago(ticketID uint, in PagoInput, usuarioID uint) (*models.Pago, error) {
	var pago models.Pago
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ticket, err := s.Tickets.activo(tx, ticketID)
		if err != nil {
			return err
		}

		presupuesto, err := lockPresupuesto(tx, ticketID)
		if err != nil {
			return err
		}

		pago = models.Pago{
			TicketID:   &ticketID,
			Monto:      in.Monto,
			Metodo:     in.Metodo,
			Referencia: in.Referencia,
			Estado:     models.PagoActivo,
			UsuarioID:  usuarioID,
			FechaPago:  time.Now(),
		}
		if err := tx.Create(&pago).Error; err != nil {
			return err
		}

		saldo, err := s.recalcularSaldo(tx, presupuesto)
		if err != nil {
			return err
		}

		audit(tx, usuarioID, "registrar_pago", "pago", pago.ID, ticket.Numero)

		// Status stepping: fully paid → repair done; first payment on a
		// fresh budget → repair starts; anything else stays put.
		if saldo <= 0 {
			return s.Tickets.cambiarEstado(tx, ticket, models.EstadoReparacionTerminada)
		}
		if ticket.Estado.Nombre == models.EstadoPresupuestoGenerado {
			return s.Tickets.cambiarEstado(tx, ticket, models.EstadoEnReparacion)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pago, nil
}

// CancelarPago voids a payment and recomputes the balance under the same lock
func (s *PresupuestoService) CancelarPago(pagoID uint, usuarioID uint) (*models.Pago, error) {
	var pago models.Pago
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pago, pagoID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("pago %d no encontrado", pagoID)
		}
		if err != nil {
			return err
		}
		if pago.Estado != models.PagoActivo {
			return apperr.InvalidState("el pago %d ya no está activo", pagoID)
		}
		if pago.TicketID == nil {
			return apperr.InvalidInput("el pago %d no pertenece a un ticket", pagoID)
		}

		pago.Estado = models.PagoCancelado
		if err := tx.Save(&pago).Error; err != nil {
			return err
		}

		presupuesto, err := lockPresupuesto(tx, *pago.TicketID)
		if err != nil {
			return err
		}
		if _, err := s.recalcularSaldo(tx, presupuesto); err != nil {
			return err
		}

		audit(tx, usuarioID, "cancelar_pago", "pago", pago.ID, "")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pago, nil
}

// recalcularSaldo re-derives saldo/pagado from the active payments. Never
// trusts a previously stored saldo. The SUM is a locking read: a plain read
// here would use the transaction's snapshot and miss a payment committed
// while we waited on the presupuesto lock.
func (s *PresupuestoService) recalcularSaldo(tx *gorm.DB, p *models.Presupuesto) (float64, error) {
	var pagado float64
	err := tx.Model(&models.Pago{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("ticket_id = ? AND estado = ?", p.TicketID, models.PagoActivo).
		Select("COALESCE(SUM(monto), 0)").
		Scan(&pagado).Error
	if err != nil {
		return 0, err
	}

	saldo := CalcularSaldo(p.TotalFinal, pagado)
	err = tx.Model(p).Updates(map[string]interface{}{
		"saldo":  saldo,
		"pagado": saldo <= 0,
	}).Error
	if err != nil {
		return 0, err
	}
	return saldo, nil
}
