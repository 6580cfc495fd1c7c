package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-taller/internal/apperr"
	"go-taller/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TicketService drives the repair lifecycle. Every transition resolves its
// target status from the estados_ticket table at call time, so the catalog
// stays fully data-driven.
type TicketService struct {
	DB *gorm.DB
}

func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{DB: db}
}

type CrearTicketInput struct {
	ClienteID           uint   `json:"cliente_id" binding:"required"`
	ModeloID            uint   `json:"modelo_id" binding:"required"`
	TipoServicioID      uint   `json:"tipo_servicio_id" binding:"required"`
	DescripcionProblema string `json:"descripcion_problema" binding:"required"`
	PuntoID             *uint  `json:"punto_id"`
}

type DiagnosticoInput struct {
	Diagnostico  string `json:"diagnostico" binding:"required"`
	SaludBateria int    `json:"salud_bateria"`
	VersionOS    string `json:"version_os"`
	TecnicoID    *uint  `json:"tecnico_id"`
}

// ParteConsumida is one part consumed by a repair
type ParteConsumida struct {
	ProductoID uint `json:"producto_id" binding:"required"`
	Cantidad   int  `json:"cantidad" binding:"required,min=1"`
}

// resolverEstado looks a lifecycle stage up by name. A missing row is a
// configuration error the caller surfaces as NOT_FOUND.
func resolverEstado(tx *gorm.DB, nombre string) (*models.EstadoTicket, error) {
	var estado models.EstadoTicket
	err := tx.Where("nombre = ? AND activo = ?", nombre, true).First(&estado).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("estado '%s' no existe en el catálogo", nombre)
	}
	if err != nil {
		return nil, err
	}
	return &estado, nil
}

func audit(tx *gorm.DB, usuarioID uint, accion, entidad string, entidadID uint, detalle string) {
	// Best effort; a failed audit row never rolls back the business write
	tx.Create(&models.AuditLog{
		UsuarioID: usuarioID,
		Accion:    accion,
		Entidad:   entidad,
		EntidadID: entidadID,
		Detalle:   detalle,
		CreatedAt: time.Now(),
	})
}

func nuevoNumero() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Crear opens a ticket in the "Recibido" stage
func (s *TicketService) Crear(in CrearTicketInput, usuarioID uint) (*models.Ticket, error) {
	var ticket *models.Ticket
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		estado, err := resolverEstado(tx, models.EstadoRecibido)
		if err != nil {
			return err
		}

		var cliente models.Cliente
		if err := tx.First(&cliente, in.ClienteID).Error; err != nil {
			return apperr.NotFound("cliente %d no encontrado", in.ClienteID)
		}
		var modelo models.Modelo
		if err := tx.First(&modelo, in.ModeloID).Error; err != nil {
			return apperr.NotFound("modelo %d no encontrado", in.ModeloID)
		}
		var tipo models.TipoServicio
		if err := tx.First(&tipo, in.TipoServicioID).Error; err != nil {
			return apperr.NotFound("tipo de servicio %d no encontrado", in.TipoServicioID)
		}

		ticket = &models.Ticket{
			Numero:              nuevoNumero(),
			TrackingCode:        uuid.NewString(),
			ClienteID:           cliente.ID,
			ModeloID:            modelo.ID,
			TipoServicioID:      tipo.ID,
			DescripcionProblema: in.DescripcionProblema,
			EstadoID:            estado.ID,
			PuntoID:             in.PuntoID,
		}
		if err := tx.Create(ticket).Error; err != nil {
			return err
		}
		audit(tx, usuarioID, "crear", "ticket", ticket.ID, ticket.Numero)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ticket.ID)
}

// Get loads a ticket with its related records
func (s *TicketService) Get(id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.DB.
		Preload("Cliente").Preload("Modelo").Preload("TipoServicio").
		Preload("Estado").Preload("Reparacion").Preload("Reparacion.Checklists.Items").
		Preload("Presupuesto").Preload("Presupuesto.Conceptos").
		First(&ticket, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("ticket %d no encontrado", id)
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetPorNumero loads a ticket by its human-readable number
func (s *TicketService) GetPorNumero(numero string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.DB.Where("numero = ?", numero).First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("ticket %s no encontrado", numero)
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ticket.ID)
}

// Listar returns tickets newest first, optionally filtered by status name
func (s *TicketService) Listar(estadoNombre string) ([]models.Ticket, error) {
	q := s.DB.
		Preload("Cliente").Preload("Modelo").Preload("Estado").
		Order("created_at desc")
	if estadoNombre != "" {
		q = q.Joins("JOIN estados_ticket ON estados_ticket.id = tickets.estado_id").
			Where("estados_ticket.nombre = ?", estadoNombre)
	}
	var tickets []models.Ticket
	if err := q.Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// activo loads the ticket inside tx and rejects terminal states
func (s *TicketService) activo(tx *gorm.DB, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	err := tx.Preload("Estado").First(&ticket, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("ticket %d no encontrado", id)
	}
	if err != nil {
		return nil, err
	}
	if ticket.Cancelado {
		return nil, apperr.InvalidState("el ticket %s está cancelado", ticket.Numero)
	}
	if ticket.Entregado {
		return nil, apperr.InvalidState("el ticket %s ya fue entregado", ticket.Numero)
	}
	return &ticket, nil
}

func (s *TicketService) cambiarEstado(tx *gorm.DB, ticket *models.Ticket, nombre string) error {
	estado, err := resolverEstado(tx, nombre)
	if err != nil {
		return err
	}
	ticket.EstadoID = estado.ID
	ticket.Estado = *estado
	return tx.Model(&models.Ticket{}).Where("id = ?", ticket.ID).
		Update("estado_id", estado.ID).Error
}

// Diagnosticar attaches (or updates) the repair record with the diagnosis
// and moves the ticket to "En Diagnóstico"
func (s *TicketService) Diagnosticar(ticketID uint, in DiagnosticoInput, usuarioID uint) (*models.Ticket, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ticket, err := s.activo(tx, ticketID)
		if err != nil {
			return err
		}

		now := time.Now()
		var rep models.Reparacion
		err = tx.Where("ticket_id = ?", ticketID).First(&rep).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rep = models.Reparacion{TicketID: ticketID, InicioDiagnostico: &now}
		} else if err != nil {
			return err
		}
		rep.Diagnostico = in.Diagnostico
		rep.SaludBateria = in.SaludBateria
		rep.VersionOS = in.VersionOS
		if in.TecnicoID != nil {
			rep.TecnicoID = in.TecnicoID
		}
		if rep.InicioDiagnostico == nil {
			rep.InicioDiagnostico = &now
		}
		if err := tx.Save(&rep).Error; err != nil {
			return err
		}

		if in.TecnicoID != nil {
			if err := tx.Model(&models.Ticket{}).Where("id = ?", ticketID).
				Update("tecnico_id", in.TecnicoID).Error; err != nil {
				return err
			}
		}

		audit(tx, usuarioID, "diagnosticar", "ticket", ticketID, in.Diagnostico)
		return s.cambiarEstado(tx, ticket, models.EstadoEnDiagnostico)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ticketID)
}

// IniciarReparacion requires at least one active payment on the ticket
func (s *TicketService) IniciarReparacion(ticketID uint, tecnicoID *uint, usuarioID uint) (*models.Ticket, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ticket, err := s.activo(tx, ticketID)
		if err != nil {
			return err
		}

		var pagos int64
		if err := tx.Model(&models.Pago{}).
			Where("ticket_id = ? AND estado = ?", ticketID, models.PagoActivo).
			Count(&pagos).Error; err != nil {
			return err
		}
		if pagos == 0 {
			return apperr.InvalidInput("no hay pagos registrados para el ticket %s", ticket.Numero)
		}

		now := time.Now()
		var rep models.Reparacion
		err = tx.Where("ticket_id = ?", ticketID).First(&rep).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rep = models.Reparacion{TicketID: ticketID}
		} else if err != nil {
			return err
		}
		if rep.InicioReparacion == nil {
			rep.InicioReparacion = &now
		}
		if tecnicoID != nil {
			rep.TecnicoID = tecnicoID
		}
		if err := tx.Save(&rep).Error; err != nil {
			return err
		}

		audit(tx, usuarioID, "iniciar_reparacion", "ticket", ticketID, "")
		return s.cambiarEstado(tx, ticket, models.EstadoEnReparacion)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ticketID)
}

// CompletarReparacion deducts the consumed parts (all-or-nothing) and moves
// the ticket to "Reparación Terminada". The checklist rule is enforced: a
// repair-type checklist must be attached before completion.
func (s *TicketService) CompletarReparacion(ticketID uint, partes []ParteConsumida, usuarioID uint) (*models.Ticket, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ticket, err := s.activo(tx, ticketID)
		if err != nil {
			return err
		}

		var rep models.Reparacion
		if err := tx.Where("ticket_id = ?", ticketID).First(&rep).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.InvalidState("el ticket %s no tiene reparación iniciada", ticket.Numero)
			}
			return err
		}

		var checklists int64
		if err := tx.Model(&models.Checklist{}).
			Where("reparacion_id = ? AND tipo = ?", rep.ID, models.ChecklistReparacion).
			Count(&checklists).Error; err != nil {
			return err
		}
		if checklists == 0 {
			return apperr.InvalidState("el ticket %s no tiene checklist de reparación", ticket.Numero)
		}

		if err := DescontarParaReparacion(tx, ticket.Numero, partes, usuarioID); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&rep).Update("fin_reparacion", &now).Error; err != nil {
			return err
		}

		audit(tx, usuarioID, "completar_reparacion", "ticket", ticketID, fmt.Sprintf("%d partes consumidas", len(partes)))
		return s.cambiarEstado(tx, ticket, models.EstadoReparacionTerminada)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ticketID)
}

// PausarReparacion / ReanudarReparacion only stamp the repair record

func (s *TicketService) PausarReparacion(ticketID uint) error {
	now := time.Now()
	res := s.DB.Model(&models.Reparacion{}).
		Where("ticket_id = ?", ticketID).
		Update("pausa_reparacion", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("reparación para ticket %d no encontrada", ticketID)
	}
	return nil
}

func (s *TicketService) ReanudarReparacion(ticketID uint) error {
	now := time.Now()
	res := s.DB.Model(&models.Reparacion{}).
		Where("ticket_id = ?", ticketID).
		Update("reanudacion_rep", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("reparación para ticket %d no encontrada", ticketID)
	}
	return nil
}

// MarcarListo moves a finished repair to "Listo para Entrega"
func (s *TicketService) MarcarListo(ticketID uint, usuarioID uint) (*models.Ticket, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ticket, err := s.activo(tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Estado.Nombre != models.EstadoReparacionTerminada {
			return apperr.InvalidState("el ticket %s no tiene la reparación terminada", ticket.Numero)
		}
		audit(tx, usuarioID, "marcar_listo", "ticket", ticketID, "")
		return s.cambiarEstado(tx, ticket, models.EstadoListoParaEntrega)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ticketID)
}

// Entregar closes the ticket once the repair reached completion
func (s *TicketService) Entregar(ticketID uint, usuarioID uint) (*models.Ticket, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ticket, err := s.activo(tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Estado.Nombre != models.EstadoReparacionTerminada &&
			ticket.Estado.Nombre != models.EstadoListoParaEntrega {
			return apperr.InvalidState("el ticket %s aún no está listo para entrega", ticket.Numero)
		}

		now := time.Now()
		if err := tx.Model(&models.Ticket{}).Where("id = ?", ticketID).
			Updates(map[string]interface{}{
				"entregado":     true,
				"fecha_entrega": &now,
			}).Error; err != nil {
			return err
		}

		audit(tx, usuarioID, "entregar", "ticket", ticketID, "")
		return s.cambiarEstado(tx, ticket, models.EstadoEntregado)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ticketID)
}

// Cancelar is the terminal side-exit, reachable from any non-terminal state.
// Payments and stock already consumed are NOT reversed here; cancelling a
// payment is its own explicit operation.
func (s *TicketService) Cancelar(ticketID uint, motivo string, usuarioID uint) (*models.Ticket, error) {
	if motivo == "" {
		return nil, apperr.InvalidInput("el motivo de cancelación es obligatorio")
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ticket, err := s.activo(tx, ticketID)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.Ticket{}).Where("id = ?", ticketID).
			Updates(map[string]interface{}{
				"cancelado":          true,
				"motivo_cancelacion": motivo,
				"fecha_cancelacion":  &now,
			}).Error; err != nil {
			return err
		}

		audit(tx, usuarioID, "cancelar", "ticket", ticketID, motivo)
		return s.cambiarEstado(tx, ticket, models.EstadoCancelado)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ticketID)
}

// AsignarTecnico assigns (or reassigns) the technician
func (s *TicketService) AsignarTecnico(ticketID, tecnicoID uint, usuarioID uint) error {
	var tecnico models.Usuario
	if err := s.DB.First(&tecnico, tecnicoID).Error; err != nil {
		return apperr.NotFound("técnico %d no encontrado", tecnicoID)
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.activo(tx, ticketID); err != nil {
			return err
		}
		if err := tx.Model(&models.Ticket{}).Where("id = ?", ticketID).
			Update("tecnico_id", tecnicoID).Error; err != nil {
			return err
		}
		tx.Model(&models.Reparacion{}).Where("ticket_id = ?", ticketID).
			Update("tecnico_id", tecnicoID)
		audit(tx, usuarioID, "asignar_tecnico", "ticket", ticketID, tecnico.Nombre)
		return nil
	})
}

// lockPresupuesto grabs the budget row FOR UPDATE so concurrent payments on
// the same ticket serialize instead of racing on saldo
func lockPresupuesto(tx *gorm.DB, ticketID uint) (*models.Presupuesto, error) {
	var p models.Presupuesto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("ticket_id = ?", ticketID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.InvalidInput("el ticket %d no tiene presupuesto", ticketID)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
