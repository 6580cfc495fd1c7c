package middleware

import (
	"os"
	"strings"
	"time"

	"go-taller/internal/apperr"
	"go-taller/internal/auth"
	"go-taller/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PortalCookie is the client-portal session cookie name. It is deliberately
// distinct from anything the staff dashboard uses.
const PortalCookie = "portal_session"

// AuthMiddleware checks if the caller has a valid staff JWT
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperr.Unauthorized("Authorization header is required"))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abort(c, apperr.Unauthorized("Authorization header must start with Bearer"))
			return
		}

		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			abort(c, apperr.Unauthorized("Invalid or expired token"))
			return
		}

		// Stash user info for the handlers downstream
		c.Set("userID", claims.UserID)
		if claims.PuntoID != nil {
			c.Set("puntoID", *claims.PuntoID)
		}
		c.Next()
	}
}

// RequirePermission checks the caller's roles for a permission code. The
// membership test runs against the DB so role edits take effect immediately.
func RequirePermission(db *gorm.DB, codigo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)

		var count int64
		err := db.Table("usuario_roles").
			Joins("JOIN rol_permisos ON rol_permisos.rol_id = usuario_roles.rol_id").
			Joins("JOIN permisos ON permisos.id = rol_permisos.permiso_id").
			Where("usuario_roles.usuario_id = ? AND permisos.codigo = ?", userID, codigo).
			Count(&count).Error
		if err != nil || count == 0 {
			abort(c, apperr.Forbidden("You do not have permission to access this resource"))
			return
		}
		c.Next()
	}
}

// RequireRepairPoint gates the diagnosis/repair routes: the caller must be
// assigned to a collection point flagged as a repair point.
func RequireRepairPoint(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		puntoID, exists := c.Get("puntoID")
		if !exists {
			abort(c, apperr.Forbidden("Your collection point does not handle repairs"))
			return
		}

		var punto models.PuntoRecoleccion
		if err := db.First(&punto, puntoID).Error; err != nil || !punto.EsPuntoReparacion || !punto.Activo {
			abort(c, apperr.Forbidden("Your collection point does not handle repairs"))
			return
		}
		c.Next()
	}
}

// PortalAuthMiddleware checks the client-portal session cookie
func PortalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(PortalCookie)
		if err != nil {
			abort(c, apperr.Unauthorized("Portal session required"))
			return
		}
		claims, err := auth.ValidatePortalToken(cookie)
		if err != nil {
			abort(c, apperr.Unauthorized("Invalid or expired portal session"))
			return
		}
		c.Set("clienteID", claims.ClienteID)
		c.Next()
	}
}

// CheckLicense blocks the /api group when licensing is configured and the
// stored license is missing, inactive or past its expiration. With no
// LICENSE_SALT in the environment the gate is a no-op (dev installs).
func CheckLicense(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if os.Getenv("LICENSE_SALT") == "" {
			c.Next()
			return
		}

		var license models.SystemLicense
		if err := db.First(&license).Error; err != nil || !license.IsActive || time.Now().After(license.ExpirationDate) {
			abort(c, apperr.Forbidden("System license expired. Please contact your provider."))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err *apperr.Error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Message, "code": err.Code})
	c.Abort()
}
