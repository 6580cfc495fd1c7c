package services

import (
	"testing"

	"go-taller/internal/apperr"
	"go-taller/internal/models"
)

func TestCalcularTotalFinal(t *testing.T) {
	cases := []struct {
		total, descuento, want float64
	}{
		{1000, 0, 1000},
		{1000, 200, 800},
		{100, 100, 0},
		{100, 250, 0}, // never negative
	}
	for _, c := range cases {
		if got := CalcularTotalFinal(c.total, c.descuento); got != c.want {
			t.Errorf("CalcularTotalFinal(%v, %v) = %v, esperaba %v", c.total, c.descuento, got, c.want)
		}
	}
}

func TestCalcularSaldo(t *testing.T) {
	cases := []struct {
		totalFinal, pagado, want float64
	}{
		{800, 0, 800},
		{800, 300, 500},
		{800, 800, 0},
		{800, 900, 0}, // overpayment floors at zero
	}
	for _, c := range cases {
		if got := CalcularSaldo(c.totalFinal, c.pagado); got != c.want {
			t.Errorf("CalcularSaldo(%v, %v) = %v, esperaba %v", c.totalFinal, c.pagado, got, c.want)
		}
	}
}

func TestSubtotalConceptos(t *testing.T) {
	items := []ConceptoInput{
		{Descripcion: "Pantalla", Cantidad: 1, PrecioUnitario: 700},
		{Descripcion: "Mano de obra", Cantidad: 2, PrecioUnitario: 150},
	}
	if got := SubtotalConceptos(items); got != 1000 {
		t.Fatalf("subtotal = %v, esperaba 1000", got)
	}
}

func TestGenerarPresupuesto(t *testing.T) {
	db := testDB(t)
	ticket := nuevoTicket(t, db)
	svc := NewPresupuestoService(db)

	p, err := svc.Generar(ticket.ID, []ConceptoInput{
		{Descripcion: "Pantalla OLED", Cantidad: 1, PrecioUnitario: 800},
		{Descripcion: "Mano de obra", Cantidad: 1, PrecioUnitario: 200},
	}, 0, 1)
	if err != nil {
		t.Fatalf("generar: %v", err)
	}
	if p.Subtotal != 1000 || p.TotalFinal != 1000 || p.Saldo != 1000 {
		t.Fatalf("presupuesto = subtotal %v, total_final %v, saldo %v; esperaba 1000 en los tres", p.Subtotal, p.TotalFinal, p.Saldo)
	}
	if p.Pagado {
		t.Fatal("un presupuesto recién generado no puede estar pagado")
	}
	if got := estadoDe(t, db, ticket.ID); got != models.EstadoPresupuestoGenerado {
		t.Fatalf("estado = %q, esperaba %q", got, models.EstadoPresupuestoGenerado)
	}

	// regenerating replaces the line items, not appends
	p, err = svc.Generar(ticket.ID, []ConceptoInput{
		{Descripcion: "Pantalla compatible", Cantidad: 1, PrecioUnitario: 500},
	}, 0, 1)
	if err != nil {
		t.Fatalf("regenerar: %v", err)
	}
	if len(p.Conceptos) != 1 || p.TotalFinal != 500 {
		t.Fatalf("tras regenerar: %d conceptos, total_final %v; esperaba 1 y 500", len(p.Conceptos), p.TotalFinal)
	}

	_, err = svc.Generar(ticket.ID, nil, 0, 1)
	wantCode(t, err, apperr.CodeInvalidInput)
}

func TestAprobarRequiereEstadoExacto(t *testing.T) {
	db := testDB(t)
	ticket := nuevoTicket(t, db)
	svc := NewPresupuestoService(db)

	// nothing generated yet: the ticket sits in "Recibido"
	_, err := svc.Aprobar(ticket.ID, 1)
	wantCode(t, err, apperr.CodeInvalidState)

	if _, err := svc.Generar(ticket.ID, []ConceptoInput{
		{Descripcion: "Batería", Cantidad: 1, PrecioUnitario: 350},
	}, 0, 1); err != nil {
		t.Fatalf("generar: %v", err)
	}

	p, err := svc.Aprobar(ticket.ID, 1)
	if err != nil {
		t.Fatalf("aprobar: %v", err)
	}
	if !p.Aprobado || p.FechaAprobacion == nil {
		t.Fatal("el presupuesto no quedó marcado como aprobado")
	}
	if got := estadoDe(t, db, ticket.ID); got != models.EstadoPresupuestoAprobado {
		t.Fatalf("estado = %q, esperaba %q", got, models.EstadoPresupuestoAprobado)
	}

	// a second approval is no longer in "Presupuesto Generado"
	_, err = svc.Aprobar(ticket.ID, 1)
	wantCode(t, err, apperr.CodeInvalidState)
}

func TestPagosParcialesYEstado(t *testing.T) {
	db := testDB(t)
	ticket := nuevoTicket(t, db)
	svc := NewPresupuestoService(db)

	if _, err := svc.Generar(ticket.ID, []ConceptoInput{
		{Descripcion: "Reparación completa", Cantidad: 1, PrecioUnitario: 1000},
	}, 0, 1); err != nil {
		t.Fatalf("generar: %v", err)
	}

	// first partial payment kicks the repair off
	if _, err := svc.RegistrarPago(ticket.ID, PagoInput{Monto: 600, Metodo: "efectivo"}, 1); err != nil {
		t.Fatalf("pago 600: %v", err)
	}
	p, err := svc.Get(ticket.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Saldo != 400 || p.Pagado {
		t.Fatalf("tras 600: saldo %v, pagado %v; esperaba 400 y false", p.Saldo, p.Pagado)
	}
	if got := estadoDe(t, db, ticket.ID); got != models.EstadoEnReparacion {
		t.Fatalf("estado tras primer pago = %q, esperaba %q", got, models.EstadoEnReparacion)
	}

	// settling the balance finishes the repair
	if _, err := svc.RegistrarPago(ticket.ID, PagoInput{Monto: 400, Metodo: "tarjeta"}, 1); err != nil {
		t.Fatalf("pago 400: %v", err)
	}
	p, _ = svc.Get(ticket.ID)
	if p.Saldo != 0 || !p.Pagado {
		t.Fatalf("tras liquidar: saldo %v, pagado %v; esperaba 0 y true", p.Saldo, p.Pagado)
	}
	if got := estadoDe(t, db, ticket.ID); got != models.EstadoReparacionTerminada {
		t.Fatalf("estado tras liquidar = %q, esperaba %q", got, models.EstadoReparacionTerminada)
	}
}

// A partial payment while the repair is already running must not move the
// ticket anywhere.
func TestPagoParcialNoMueveEstado(t *testing.T) {
	db := testDB(t)
	ticket := nuevoTicket(t, db)
	svc := NewPresupuestoService(db)

	if _, err := svc.Generar(ticket.ID, []ConceptoInput{
		{Descripcion: "Reparación", Cantidad: 1, PrecioUnitario: 900},
	}, 0, 1); err != nil {
		t.Fatalf("generar: %v", err)
	}
	if _, err := svc.RegistrarPago(ticket.ID, PagoInput{Monto: 300, Metodo: "efectivo"}, 1); err != nil {
		t.Fatalf("pago inicial: %v", err)
	}
	if _, err := svc.RegistrarPago(ticket.ID, PagoInput{Monto: 300, Metodo: "efectivo"}, 1); err != nil {
		t.Fatalf("segundo pago: %v", err)
	}
	if got := estadoDe(t, db, ticket.ID); got != models.EstadoEnReparacion {
		t.Fatalf("estado = %q, esperaba que siguiera en %q", got, models.EstadoEnReparacion)
	}
}

// Regression: the balance subtracts from total_final (the discounted figure),
// never from the pre-discount total.
func TestSaldoUsaTotalFinal(t *testing.T) {
	db := testDB(t)
	ticket := nuevoTicket(t, db)
	svc := NewPresupuestoService(db)

	p, err := svc.Generar(ticket.ID, []ConceptoInput{
		{Descripcion: "Reparación", Cantidad: 1, PrecioUnitario: 1000},
	}, 200, 1)
	if err != nil {
		t.Fatalf("generar: %v", err)
	}
	if p.Total != 1000 || p.TotalFinal != 800 || p.Saldo != 800 {
		t.Fatalf("total %v, total_final %v, saldo %v; esperaba 1000/800/800", p.Total, p.TotalFinal, p.Saldo)
	}

	if _, err := svc.RegistrarPago(ticket.ID, PagoInput{Monto: 800, Metodo: "transferencia"}, 1); err != nil {
		t.Fatalf("pago: %v", err)
	}
	p, _ = svc.Get(ticket.ID)
	if p.Saldo != 0 || !p.Pagado {
		t.Fatalf("tras pagar el total_final: saldo %v, pagado %v; esperaba 0 y true", p.Saldo, p.Pagado)
	}
	if got := estadoDe(t, db, ticket.ID); got != models.EstadoReparacionTerminada {
		t.Fatalf("estado = %q, esperaba %q", got, models.EstadoReparacionTerminada)
	}
}

func TestCancelarPago(t *testing.T) {
	db := testDB(t)
	ticket := nuevoTicket(t, db)
	svc := NewPresupuestoService(db)

	if _, err := svc.Generar(ticket.ID, []ConceptoInput{
		{Descripcion: "Reparación", Cantidad: 1, PrecioUnitario: 500},
	}, 0, 1); err != nil {
		t.Fatalf("generar: %v", err)
	}
	pago, err := svc.RegistrarPago(ticket.ID, PagoInput{Monto: 500, Metodo: "efectivo"}, 1)
	if err != nil {
		t.Fatalf("pago: %v", err)
	}

	cancelado, err := svc.CancelarPago(pago.ID, 1)
	if err != nil {
		t.Fatalf("cancelar pago: %v", err)
	}
	if cancelado.Estado != models.PagoCancelado {
		t.Fatalf("estado del pago = %q, esperaba %q", cancelado.Estado, models.PagoCancelado)
	}

	// the balance comes back; the ticket status never regresses on its own
	p, _ := svc.Get(ticket.ID)
	if p.Saldo != 500 || p.Pagado {
		t.Fatalf("tras cancelar: saldo %v, pagado %v; esperaba 500 y false", p.Saldo, p.Pagado)
	}
	if got := estadoDe(t, db, ticket.ID); got != models.EstadoReparacionTerminada {
		t.Fatalf("estado = %q, esperaba que siguiera en %q", got, models.EstadoReparacionTerminada)
	}

	// a voided payment stays voided
	_, err = svc.CancelarPago(pago.ID, 1)
	wantCode(t, err, apperr.CodeInvalidState)
}

func TestRegistrarPagoSinPresupuesto(t *testing.T) {
	db := testDB(t)
	ticket := nuevoTicket(t, db)
	svc := NewPresupuestoService(db)

	_, err := svc.RegistrarPago(ticket.ID, PagoInput{Monto: 100, Metodo: "efectivo"}, 1)
	wantCode(t, err, apperr.CodeInvalidInput)

	// nothing half-written
	var pagos int64
	db.Model(&models.Pago{}).Count(&pagos)
	if pagos != 0 {
		t.Fatalf("quedaron %d pagos registrados tras el rechazo", pagos)
	}
}
