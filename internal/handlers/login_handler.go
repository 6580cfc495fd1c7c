package handlers

import (
	"net/http"
	"strings"

	"go-taller/internal/auth"
	"go-taller/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{DB: db}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos de acceso inválidos")
		return
	}

	var user models.Usuario
	if err := h.DB.Preload("Roles").
		Where("email = ? AND activo = ?", strings.ToLower(input.Email), true).
		First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales inválidas", "code": "UNAUTHORIZED"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales inválidas", "code": "UNAUTHORIZED"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.PuntoID)
	if err != nil {
		fail(c, err)
		return
	}

	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Nombre)
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"nombre": user.Nombre,
		"email":  user.Email,
		"roles":  roles,
	})
}

type RegisterRequest struct {
	Nombre   string `json:"nombre" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Rol      string `json:"rol"`
	PuntoID  *uint  `json:"punto_id"`
}

// Register is only reachable when ALLOW_REGISTRATION=true (bootstrap)
func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos de registro inválidos")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, err)
		return
	}

	rolNombre := input.Rol
	if rolNombre == "" {
		rolNombre = "admin" // bootstrap default so the first user can configure the rest
	}
	var rol models.Rol
	if err := h.DB.Where("nombre = ?", rolNombre).First(&rol).Error; err != nil {
		badRequest(c, "El rol indicado no existe")
		return
	}

	user := models.Usuario{
		Nombre:       input.Nombre,
		Email:        strings.ToLower(input.Email),
		PasswordHash: string(hashedPassword),
		PuntoID:      input.PuntoID,
		Activo:       true,
		Roles:        []models.Rol{rol},
	}
	if err := h.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "El usuario probablemente ya existe", "code": "CONFLICT"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "id": user.ID})
}
