package services

import (
	"strings"
	"testing"

	"go-taller/internal/apperr"
	"go-taller/internal/models"
)

func TestCrearTicket(t *testing.T) {
	db := testDB(t)
	ticket := nuevoTicket(t, db)

	if !strings.HasPrefix(ticket.Numero, "TCK-") || len(ticket.Numero) != 12 {
		t.Fatalf("numero = %q, esperaba formato TCK-XXXXXXXX", ticket.Numero)
	}
	if ticket.TrackingCode == "" {
		t.Fatal("el ticket nació sin tracking code")
	}
	if ticket.Estado.Nombre != models.EstadoRecibido {
		t.Fatalf("estado inicial = %q, esperaba %q", ticket.Estado.Nombre, models.EstadoRecibido)
	}

	// referencias inexistentes
	svc := NewTicketService(db)
	_, err := svc.Crear(CrearTicketInput{
		ClienteID: 9999, ModeloID: ticket.ModeloID, TipoServicioID: ticket.TipoServicioID,
		DescripcionProblema: "x",
	}, 1)
	wantCode(t, err, apperr.CodeNotFound)
}

func TestDiagnosticar(t *testing.T) {
	db := testDB(t)
	ticket := nuevoTicket(t, db)
	svc := NewTicketService(db)

	actualizado, err := svc.Diagnosticar(ticket.ID, DiagnosticoInput{
		Diagnostico:  "conector de batería suelto",
		SaludBateria: 78,
		VersionOS:    "Android 14",
	}, 1)
	if err != nil {
		t.Fatalf("diagnosticar: %v", err)
	}
	if actualizado.Estado.Nombre != models.EstadoEnDiagnostico {
		t.Fatalf("estado = %q, esperaba %q", actualizado.Estado.Nombre, models.EstadoEnDiagnostico)
	}
	if actualizado.Reparacion == nil || actualizado.Reparacion.InicioDiagnostico == nil {
		t.Fatal("el diagnóstico no creó la reparación con su marca de inicio")
	}
	if actualizado.Reparacion.Diagnostico != "conector de batería suelto" {
		t.Fatalf("diagnóstico = %q", actualizado.Reparacion.Diagnostico)
	}
}

func TestIniciarReparacionRequierePago(t *testing.T) {
	db := testDB(t)
	ticket := nuevoTicket(t, db)
	tickets := NewTicketService(db)
	presupuestos := NewPresupuestoService(db)

	if _, err := tickets.Diagnosticar(ticket.ID, DiagnosticoInput{Diagnostico: "pantalla"}, 1); err != nil {
		t.Fatalf("diagnosticar: %v", err)
	}
	if _, err := presupuestos.Generar(ticket.ID, []ConceptoInput{
		{Descripcion: "Pantalla", Cantidad: 1, PrecioUnitario: 400},
	}, 0, 1); err != nil {
		t.Fatalf("generar: %v", err)
	}

	_, err := tickets.IniciarReparacion(ticket.ID, nil, 1)
	wantCode(t, err, apperr.CodeInvalidInput)

	if _, err := presupuestos.RegistrarPago(ticket.ID, PagoInput{Monto: 200, Metodo: "efectivo"}, 1); err != nil {
		t.Fatalf("pago: %v", err)
	}
	actualizado, err := tickets.IniciarReparacion(ticket.ID, nil, 1)
	if err != nil {
		t.Fatalf("iniciar reparación: %v", err)
	}
	if actualizado.Estado.Nombre != models.EstadoEnReparacion {
		t.Fatalf("estado = %q, esperaba %q", actualizado.Estado.Nombre, models.EstadoEnReparacion)
	}
	if actualizado.Reparacion.InicioReparacion == nil {
		t.Fatal("falta la marca de inicio de reparación")
	}
}

func TestCompletarRequiereChecklist(t *testing.T) {
	db := testDB(t)
	ticket := nuevoTicket(t, db)
	tickets := NewTicketService(db)
	presupuestos := NewPresupuestoService(db)
	checklists := NewChecklistService(db)
	producto := nuevoProducto(t, db, "Pantalla", 5, 10.00, 40.00)

	if _, err := tickets.Diagnosticar(ticket.ID, DiagnosticoInput{Diagnostico: "pantalla rota"}, 1); err != nil {
		t.Fatalf("diagnosticar: %v", err)
	}
	if _, err := presupuestos.Generar(ticket.ID, []ConceptoInput{
		{Descripcion: "Pantalla", Cantidad: 1, PrecioUnitario: 400},
	}, 0, 1); err != nil {
		t.Fatalf("generar: %v", err)
	}
	if _, err := presupuestos.RegistrarPago(ticket.ID, PagoInput{Monto: 100, Metodo: "efectivo"}, 1); err != nil {
		t.Fatalf("pago: %v", err)
	}

	partes := []ParteConsumida{{ProductoID: producto.ID, Cantidad: 1}}
	_, err := tickets.CompletarReparacion(ticket.ID, partes, 1)
	wantCode(t, err, apperr.CodeInvalidState)

	if _, err := checklists.Adjuntar(ticket.ID, ChecklistInput{
		Tipo: models.ChecklistReparacion,
		Items: []ChecklistItemInput{
			{Descripcion: "Enciende", Respuesta: true},
			{Descripcion: "Táctil responde", Respuesta: true},
		},
	}); err != nil {
		t.Fatalf("adjuntar checklist: %v", err)
	}

	actualizado, err := tickets.CompletarReparacion(ticket.ID, partes, 1)
	if err != nil {
		t.Fatalf("completar: %v", err)
	}
	if actualizado.Estado.Nombre != models.EstadoReparacionTerminada {
		t.Fatalf("estado = %q, esperaba %q", actualizado.Estado.Nombre, models.EstadoReparacionTerminada)
	}
	if actualizado.Reparacion.FinReparacion == nil {
		t.Fatal("falta la marca de fin de reparación")
	}

	// the consumed part left inventory with the ticket as reference
	var p models.Producto
	db.First(&p, producto.ID)
	if p.Stock != 4 {
		t.Fatalf("stock = %d, esperaba 4", p.Stock)
	}
	var salida models.SalidaStock
	if err := db.Where("producto_id = ?", producto.ID).First(&salida).Error; err != nil {
		t.Fatalf("buscar salida: %v", err)
	}
	if salida.Tipo != models.SalidaReparacion || salida.Referencia != "Ticket-"+ticket.Numero {
		t.Fatalf("salida = tipo %q, referencia %q", salida.Tipo, salida.Referencia)
	}
}

func TestEntregar(t *testing.T) {
	db := testDB(t)
	ticket := nuevoTicket(t, db)
	tickets := NewTicketService(db)
	presupuestos := NewPresupuestoService(db)

	if _, err := presupuestos.Generar(ticket.ID, []ConceptoInput{
		{Descripcion: "Reparación", Cantidad: 1, PrecioUnitario: 300},
	}, 0, 1); err != nil {
		t.Fatalf("generar: %v", err)
	}

	// nothing finished yet
	_, err := tickets.Entregar(ticket.ID, 1)
	wantCode(t, err, apperr.CodeInvalidState)

	// a full payment finishes the repair
	if _, err := presupuestos.RegistrarPago(ticket.ID, PagoInput{Monto: 300, Metodo: "efectivo"}, 1); err != nil {
		t.Fatalf("pago: %v", err)
	}

	listo, err := tickets.MarcarListo(ticket.ID, 1)
	if err != nil {
		t.Fatalf("marcar listo: %v", err)
	}
	if listo.Estado.Nombre != models.EstadoListoParaEntrega {
		t.Fatalf("estado = %q, esperaba %q", listo.Estado.Nombre, models.EstadoListoParaEntrega)
	}

	entregado, err := tickets.Entregar(ticket.ID, 1)
	if err != nil {
		t.Fatalf("entregar: %v", err)
	}
	if !entregado.Entregado || entregado.FechaEntrega == nil {
		t.Fatal("el ticket no quedó marcado como entregado")
	}
	if entregado.Estado.Nombre != models.EstadoEntregado {
		t.Fatalf("estado = %q, esperaba %q", entregado.Estado.Nombre, models.EstadoEntregado)
	}

	// a delivered ticket is terminal
	_, err = tickets.Entregar(ticket.ID, 1)
	wantCode(t, err, apperr.CodeInvalidState)
	_, err = tickets.Cancelar(ticket.ID, "cliente se arrepintió", 1)
	wantCode(t, err, apperr.CodeInvalidState)
}

func TestCancelar(t *testing.T) {
	db := testDB(t)
	ticket := nuevoTicket(t, db)
	svc := NewTicketService(db)

	_, err := svc.Cancelar(ticket.ID, "", 1)
	wantCode(t, err, apperr.CodeInvalidInput)

	cancelado, err := svc.Cancelar(ticket.ID, "el cliente no autorizó el presupuesto", 1)
	if err != nil {
		t.Fatalf("cancelar: %v", err)
	}
	if !cancelado.Cancelado || cancelado.FechaCancelacion == nil {
		t.Fatal("el ticket no quedó cancelado")
	}
	if cancelado.MotivoCancelacion != "el cliente no autorizó el presupuesto" {
		t.Fatalf("motivo = %q", cancelado.MotivoCancelacion)
	}
	if cancelado.Estado.Nombre != models.EstadoCancelado {
		t.Fatalf("estado = %q, esperaba %q", cancelado.Estado.Nombre, models.EstadoCancelado)
	}

	// terminal: no further transitions
	_, err = svc.Diagnosticar(ticket.ID, DiagnosticoInput{Diagnostico: "x"}, 1)
	wantCode(t, err, apperr.CodeInvalidState)
}

func TestListarFiltraPorEstado(t *testing.T) {
	db := testDB(t)
	a := nuevoTicket(t, db)
	b := nuevoTicket(t, db)
	svc := NewTicketService(db)

	if _, err := svc.Diagnosticar(b.ID, DiagnosticoInput{Diagnostico: "batería"}, 1); err != nil {
		t.Fatalf("diagnosticar: %v", err)
	}

	recibidos, err := svc.Listar(models.EstadoRecibido)
	if err != nil {
		t.Fatalf("listar: %v", err)
	}
	if len(recibidos) != 1 || recibidos[0].ID != a.ID {
		t.Fatalf("recibidos = %d tickets, esperaba solo el ticket %d", len(recibidos), a.ID)
	}

	todos, err := svc.Listar("")
	if err != nil {
		t.Fatalf("listar sin filtro: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("todos = %d, esperaba 2", len(todos))
	}
}
