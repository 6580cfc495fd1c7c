package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Two independent signing contexts: staff dashboard tokens travel in the
// Authorization header, client portal tokens in their own cookie. Keys come
// from .env with a fallback so the dev setup boots without one.
func staffKey() []byte {
	if k := os.Getenv("JWT_SECRET"); k != "" {
		return []byte(k)
	}
	return []byte("taller_staff_secret_2026")
}

func portalKey() []byte {
	if k := os.Getenv("PORTAL_JWT_SECRET"); k != "" {
		return []byte(k)
	}
	return []byte("taller_portal_secret_2026")
}

// Claims is the staff token payload
type Claims struct {
	UserID  uint  `json:"user_id"`
	PuntoID *uint `json:"punto_id,omitempty"`
	jwt.RegisteredClaims
}

// PortalClaims is the client-portal token payload
type PortalClaims struct {
	ClienteID uint `json:"cliente_id"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed staff JWT (lasts 1 day)
func GenerateToken(userID uint, puntoID *uint) (string, error) {
	claims := &Claims{
		UserID:  userID,
		PuntoID: puntoID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(staffKey())
}

// ValidateToken checks a staff token
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return staffKey(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GeneratePortalToken creates the signed cookie value for the client portal
// (shorter lived, the client just checks on their repair)
func GeneratePortalToken(clienteID uint) (string, error) {
	claims := &PortalClaims{
		ClienteID: clienteID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(portalKey())
}

// ValidatePortalToken checks a portal cookie token
func ValidatePortalToken(tokenString string) (*PortalClaims, error) {
	claims := &PortalClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return portalKey(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
