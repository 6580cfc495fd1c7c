package services

import (
	"testing"

	"go-taller/internal/apperr"
	"go-taller/internal/models"
)

func TestRegistrarVenta(t *testing.T) {
	db := testDB(t)
	svc := NewVentaService(db)
	producto := nuevoProducto(t, db, "Cargador USB-C", 10, 4.00, 100.00)

	venta, err := svc.Registrar(VentaInput{
		Items:  []VentaItemInput{{ProductoID: producto.ID, Cantidad: 2}},
		Metodo: "efectivo",
	}, 1)
	if err != nil {
		t.Fatalf("registrar venta: %v", err)
	}
	if venta.Subtotal != 200 || venta.Total != 200 {
		t.Fatalf("venta = subtotal %v, total %v; esperaba 200/200", venta.Subtotal, venta.Total)
	}
	if venta.Estado != models.VentaCompletada {
		t.Fatalf("estado = %q, esperaba %q", venta.Estado, models.VentaCompletada)
	}
	if len(venta.Items) != 1 || venta.Items[0].PrecioVenta != 100 {
		t.Fatalf("items = %+v, esperaba snapshot de precio 100", venta.Items)
	}

	var p models.Producto
	db.First(&p, producto.ID)
	if p.Stock != 8 {
		t.Fatalf("stock = %d, esperaba 8", p.Stock)
	}

	var salida models.SalidaStock
	if err := db.Where("producto_id = ?", producto.ID).First(&salida).Error; err != nil {
		t.Fatalf("buscar salida: %v", err)
	}
	if salida.Tipo != models.SalidaVenta || salida.Referencia != ventaReferencia(venta.ID) {
		t.Fatalf("salida = tipo %q, referencia %q", salida.Tipo, salida.Referencia)
	}

	var pago models.Pago
	if err := db.Where("venta_id = ?", venta.ID).First(&pago).Error; err != nil {
		t.Fatalf("buscar pago: %v", err)
	}
	if pago.Monto != 200 || pago.Estado != models.PagoActivo {
		t.Fatalf("pago = monto %v, estado %q", pago.Monto, pago.Estado)
	}
}

func TestRegistrarVentaSinStock(t *testing.T) {
	db := testDB(t)
	svc := NewVentaService(db)
	producto := nuevoProducto(t, db, "Mica de vidrio", 3, 1.00, 10.00)

	_, err := svc.Registrar(VentaInput{
		Items:  []VentaItemInput{{ProductoID: producto.ID, Cantidad: 5}},
		Metodo: "efectivo",
	}, 1)
	wantCode(t, err, apperr.CodeInsufficientStock)

	var p models.Producto
	db.First(&p, producto.ID)
	if p.Stock != 3 {
		t.Fatalf("stock = %d, esperaba 3 intacto", p.Stock)
	}
	var ventas int64
	db.Model(&models.Venta{}).Count(&ventas)
	if ventas != 0 {
		t.Fatalf("quedaron %d ventas registradas tras el rechazo", ventas)
	}
}

func TestRegistrarVentaConCupon(t *testing.T) {
	db := testDB(t)
	svc := NewVentaService(db)
	producto := nuevoProducto(t, db, "Audífonos", 10, 20.00, 100.00)
	cuponVigente(t, db, "VENTA50", models.CuponMontoFijo, 50)

	venta, err := svc.Registrar(VentaInput{
		Items:  []VentaItemInput{{ProductoID: producto.ID, Cantidad: 2}},
		Metodo: "tarjeta",
		Cupon:  "VENTA50",
	}, 1)
	if err != nil {
		t.Fatalf("registrar venta: %v", err)
	}
	if venta.Descuento != 50 || venta.Total != 150 {
		t.Fatalf("venta = descuento %v, total %v; esperaba 50/150", venta.Descuento, venta.Total)
	}

	// the payment covers the discounted total
	var pago models.Pago
	if err := db.Where("venta_id = ?", venta.ID).First(&pago).Error; err != nil {
		t.Fatalf("buscar pago: %v", err)
	}
	if pago.Monto != 150 {
		t.Fatalf("pago = %v, esperaba 150", pago.Monto)
	}

	var uso models.CuponUso
	if err := db.Where("venta_id = ?", venta.ID).First(&uso).Error; err != nil {
		t.Fatalf("buscar uso de cupón: %v", err)
	}
	if uso.MontoDescuento != 50 {
		t.Fatalf("uso = %v, esperaba 50", uso.MontoDescuento)
	}
}

func TestRegistrarVentaCuponInvalidoRevierte(t *testing.T) {
	db := testDB(t)
	svc := NewVentaService(db)
	producto := nuevoProducto(t, db, "Cable lightning", 6, 2.00, 15.00)

	_, err := svc.Registrar(VentaInput{
		Items:  []VentaItemInput{{ProductoID: producto.ID, Cantidad: 1}},
		Metodo: "efectivo",
		Cupon:  "NOEXISTE",
	}, 1)
	wantCode(t, err, apperr.CodeNotFound)

	// the whole checkout rolled back, stock included
	var p models.Producto
	db.First(&p, producto.ID)
	if p.Stock != 6 {
		t.Fatalf("stock = %d, esperaba 6 intacto", p.Stock)
	}
	var ventas int64
	db.Model(&models.Venta{}).Count(&ventas)
	if ventas != 0 {
		t.Fatalf("quedaron %d ventas tras el rechazo del cupón", ventas)
	}
}
