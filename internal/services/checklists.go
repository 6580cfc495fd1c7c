package services

import (
	"errors"

	"go-taller/internal/apperr"
	"go-taller/internal/models"

	"gorm.io/gorm"
)

// ChecklistService attaches the yes/no inspection lists to a repair
type ChecklistService struct {
	DB *gorm.DB
}

func NewChecklistService(db *gorm.DB) *ChecklistService {
	return &ChecklistService{DB: db}
}

type ChecklistItemInput struct {
	Descripcion   string `json:"descripcion" binding:"required"`
	Respuesta     bool   `json:"respuesta"`
	Observaciones string `json:"observaciones"`
}

type ChecklistInput struct {
	Tipo  string               `json:"tipo" binding:"required,oneof=diagnostico reparacion"`
	Items []ChecklistItemInput `json:"items" binding:"required,min=1,dive"`
}

// Adjuntar creates a checklist for a ticket's repair. Re-submitting the same
// type replaces the previous list.
func (s *ChecklistService) Adjuntar(ticketID uint, in ChecklistInput) (*models.Checklist, error) {
	var checklist models.Checklist
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var rep models.Reparacion
		err := tx.Where("ticket_id = ?", ticketID).First(&rep).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.InvalidState("el ticket %d no tiene reparación iniciada", ticketID)
		}
		if err != nil {
			return err
		}

		// replace a previous checklist of the same type
		var previa models.Checklist
		err = tx.Where("reparacion_id = ? AND tipo = ?", rep.ID, in.Tipo).First(&previa).Error
		if err == nil {
			if err := tx.Where("checklist_id = ?", previa.ID).
				Delete(&models.ChecklistItem{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&previa).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		checklist = models.Checklist{ReparacionID: rep.ID, Tipo: in.Tipo}
		if err := tx.Create(&checklist).Error; err != nil {
			return err
		}
		for _, it := range in.Items {
			item := models.ChecklistItem{
				ChecklistID:   checklist.ID,
				Descripcion:   it.Descripcion,
				Respuesta:     it.Respuesta,
				Observaciones: it.Observaciones,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.Preload("Items").First(&checklist, checklist.ID).Error; err != nil {
		return nil, err
	}
	return &checklist, nil
}

// Obtener returns every checklist attached to a ticket's repair
func (s *ChecklistService) Obtener(ticketID uint) ([]models.Checklist, error) {
	var rep models.Reparacion
	err := s.DB.Where("ticket_id = ?", ticketID).First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("el ticket %d no tiene reparación", ticketID)
	}
	if err != nil {
		return nil, err
	}

	var listas []models.Checklist
	if err := s.DB.Preload("Items").
		Where("reparacion_id = ?", rep.ID).Find(&listas).Error; err != nil {
		return nil, err
	}
	return listas, nil
}
