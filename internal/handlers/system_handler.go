package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"os"
	"strings"
	"time"

	"go-taller/internal/models"
	"go-taller/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SystemHandler struct {
	DB *gorm.DB
}

func NewSystemHandler(db *gorm.DB) *SystemHandler {
	return &SystemHandler{DB: db}
}

type LicenseRequest struct {
	LicenseKey string `json:"license_key" binding:"required"`
}

// GetStatus feeds the lockdown screen the device ID so the shop owner can
// send it over when requesting a key
func (h *SystemHandler) GetStatus(c *gin.Context) {
	var license models.SystemLicense
	activa := false
	if err := h.DB.First(&license).Error; err == nil {
		activa = license.IsActive && time.Now().Before(license.ExpirationDate)
	}
	c.JSON(http.StatusOK, gin.H{
		"device_id":       utils.GetDeviceID(),
		"licencia_activa": activa,
	})
}

// ActivateLicense checks the provided key against the contract stages mapped
// to this exact hardware. Keys are sha256(deviceID + stage + salt).
func (h *SystemHandler) ActivateLicense(c *gin.Context) {
	var req LicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Clave de licencia requerida")
		return
	}

	salt := os.Getenv("LICENSE_SALT")
	if salt == "" {
		badRequest(c, "El licenciamiento no está configurado en este servidor")
		return
	}

	currentDeviceID := utils.GetDeviceID()

	stages := map[string]time.Time{
		"TRIAL":    time.Now().AddDate(0, 1, 0),
		"ANUAL":    time.Now().AddDate(1, 0, 0),
		"LIFETIME": time.Date(2099, 12, 31, 23, 59, 59, 0, time.Local),
	}

	var matchedExpiration time.Time
	var matchedStage string
	isValid := false

	for stage, expDate := range stages {
		hash := sha256.Sum256([]byte(currentDeviceID + stage + salt))
		expectedKey := stage + "-" + strings.ToUpper(hex.EncodeToString(hash[:])[:12])
		if req.LicenseKey == expectedKey {
			isValid = true
			matchedExpiration = expDate
			matchedStage = stage
			break
		}
	}

	if !isValid {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Clave inválida para este equipo. Contacte a su proveedor.",
			"code":  "UNAUTHORIZED",
		})
		return
	}

	var license models.SystemLicense
	h.DB.First(&license)
	license.LicenseKey = req.LicenseKey
	license.ExpirationDate = matchedExpiration
	license.IsActive = true

	if license.ID == 0 {
		h.DB.Create(&license)
	} else {
		h.DB.Save(&license)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stage":   matchedStage,
		"expires": license.ExpirationDate,
	})
}
