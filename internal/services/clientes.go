package services

import (
	"errors"
	"strings"

	"go-taller/internal/apperr"
	"go-taller/internal/models"

	"gorm.io/gorm"
)

// ClienteService - customer registry, soft-deleted via the activo flag
type ClienteService struct {
	DB *gorm.DB
}

func NewClienteService(db *gorm.DB) *ClienteService {
	return &ClienteService{DB: db}
}

type ClienteInput struct {
	Nombre    string `json:"nombre" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Telefono  string `json:"telefono"`
	Direccion string `json:"direccion"`
}

func (s *ClienteService) Crear(in ClienteInput) (*models.Cliente, error) {
	cliente := models.Cliente{
		Nombre:    in.Nombre,
		Email:     strings.ToLower(in.Email),
		Telefono:  in.Telefono,
		Direccion: in.Direccion,
		Activo:    true,
	}

	var existentes int64
	if err := s.DB.Model(&models.Cliente{}).
		Where("email = ?", cliente.Email).Count(&existentes).Error; err != nil {
		return nil, err
	}
	if existentes > 0 {
		return nil, apperr.Conflict("ya existe un cliente con el email %s", cliente.Email)
	}

	if err := s.DB.Create(&cliente).Error; err != nil {
		return nil, err
	}
	return &cliente, nil
}

func (s *ClienteService) Get(id uint) (*models.Cliente, error) {
	var cliente models.Cliente
	err := s.DB.First(&cliente, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("cliente %d no encontrado", id)
	}
	if err != nil {
		return nil, err
	}
	return &cliente, nil
}

func (s *ClienteService) Listar(incluirInactivos bool) ([]models.Cliente, error) {
	q := s.DB.Order("nombre")
	if !incluirInactivos {
		q = q.Where("activo = ?", true)
	}
	var clientes []models.Cliente
	if err := q.Find(&clientes).Error; err != nil {
		return nil, err
	}
	return clientes, nil
}

func (s *ClienteService) Actualizar(id uint, in ClienteInput) (*models.Cliente, error) {
	cliente, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(in.Email)
	if email != cliente.Email {
		var existentes int64
		if err := s.DB.Model(&models.Cliente{}).
			Where("email = ? AND id <> ?", email, id).Count(&existentes).Error; err != nil {
			return nil, err
		}
		if existentes > 0 {
			return nil, apperr.Conflict("ya existe un cliente con el email %s", email)
		}
	}

	cliente.Nombre = in.Nombre
	cliente.Email = email
	cliente.Telefono = in.Telefono
	cliente.Direccion = in.Direccion
	if err := s.DB.Save(cliente).Error; err != nil {
		return nil, err
	}
	return cliente, nil
}

// Desactivar is the soft delete; ticket history stays intact
func (s *ClienteService) Desactivar(id uint) error {
	res := s.DB.Model(&models.Cliente{}).Where("id = ?", id).Update("activo", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cliente %d no encontrado", id)
	}
	return nil
}
