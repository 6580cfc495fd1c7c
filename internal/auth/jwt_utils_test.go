package auth

import (
	"testing"
)

func TestStaffTokenRoundTrip(t *testing.T) {
	punto := uint(3)
	token, err := GenerateToken(42, &punto)
	if err != nil {
		t.Fatalf("generar: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validar: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("user_id = %d, esperaba 42", claims.UserID)
	}
	if claims.PuntoID == nil || *claims.PuntoID != 3 {
		t.Fatalf("punto_id = %v, esperaba 3", claims.PuntoID)
	}
}

func TestStaffTokenSinPunto(t *testing.T) {
	token, err := GenerateToken(7, nil)
	if err != nil {
		t.Fatalf("generar: %v", err)
	}
	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validar: %v", err)
	}
	if claims.PuntoID != nil {
		t.Fatalf("punto_id = %v, esperaba nil", claims.PuntoID)
	}
}

func TestTokenAdulterado(t *testing.T) {
	token, err := GenerateToken(42, nil)
	if err != nil {
		t.Fatalf("generar: %v", err)
	}
	if _, err := ValidateToken(token + "x"); err == nil {
		t.Fatal("un token adulterado pasó la validación")
	}
	if _, err := ValidateToken("no-es-un-jwt"); err == nil {
		t.Fatal("una cadena arbitraria pasó la validación")
	}
}

// The two signing contexts are independent: a portal cookie must never open
// the staff dashboard, and vice versa.
func TestContextosSeparados(t *testing.T) {
	portalToken, err := GeneratePortalToken(9)
	if err != nil {
		t.Fatalf("generar portal: %v", err)
	}
	if _, err := ValidateToken(portalToken); err == nil {
		t.Fatal("un token de portal pasó como token de staff")
	}

	staffToken, err := GenerateToken(9, nil)
	if err != nil {
		t.Fatalf("generar staff: %v", err)
	}
	if _, err := ValidatePortalToken(staffToken); err == nil {
		t.Fatal("un token de staff pasó como cookie de portal")
	}

	claims, err := ValidatePortalToken(portalToken)
	if err != nil {
		t.Fatalf("validar portal: %v", err)
	}
	if claims.ClienteID != 9 {
		t.Fatalf("cliente_id = %d, esperaba 9", claims.ClienteID)
	}
}
