package services

import (
	"testing"

	"go-taller/internal/apperr"
)

func TestCrearClienteEmailDuplicado(t *testing.T) {
	db := testDB(t)
	svc := NewClienteService(db)

	c, err := svc.Crear(ClienteInput{Nombre: "Luis Mora", Email: "Luis@Taller.MX", Telefono: "5512345678"})
	if err != nil {
		t.Fatalf("crear: %v", err)
	}
	if c.Email != "luis@taller.mx" {
		t.Fatalf("email = %q, esperaba normalizado en minúsculas", c.Email)
	}

	_, err = svc.Crear(ClienteInput{Nombre: "Otro Luis", Email: "luis@taller.mx"})
	wantCode(t, err, apperr.CodeConflict)
}

func TestDesactivarCliente(t *testing.T) {
	db := testDB(t)
	svc := NewClienteService(db)

	c, err := svc.Crear(ClienteInput{Nombre: "Marta Ruiz", Email: "marta@taller.mx"})
	if err != nil {
		t.Fatalf("crear: %v", err)
	}
	if err := svc.Desactivar(c.ID); err != nil {
		t.Fatalf("desactivar: %v", err)
	}

	activos, err := svc.Listar(false)
	if err != nil {
		t.Fatalf("listar: %v", err)
	}
	for _, cl := range activos {
		if cl.ID == c.ID {
			t.Fatal("el cliente desactivado sigue apareciendo entre los activos")
		}
	}

	todos, err := svc.Listar(true)
	if err != nil {
		t.Fatalf("listar con inactivos: %v", err)
	}
	encontrado := false
	for _, cl := range todos {
		if cl.ID == c.ID {
			encontrado = true
		}
	}
	if !encontrado {
		t.Fatal("el cliente desactivado desapareció del listado completo")
	}
}
