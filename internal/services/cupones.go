package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"go-taller/internal/apperr"
	"go-taller/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValidacionCupon is the validation verdict the API returns. A failed check
// is not an error, it is {valido:false} with the first failing reason.
type ValidacionCupon struct {
	Valido    bool          `json:"valido"`
	Motivo    string        `json:"motivo,omitempty"`
	Descuento float64       `json:"descuento,omitempty"`
	Cupon     *models.Cupon `json:"-"`
}

// CuponService validates, applies and mints discount coupons
type CuponService struct {
	DB *gorm.DB
}

func NewCuponService(db *gorm.DB) *CuponService {
	return &CuponService{DB: db}
}

// CalcularDescuento computes the discount for an amount, clamped so it can
// never exceed the amount itself
func CalcularDescuento(c *models.Cupon, monto float64) float64 {
	var descuento float64
	if c.Tipo == models.CuponPorcentaje {
		descuento = monto * c.ValorDescuento / 100
	} else {
		descuento = c.ValorDescuento
	}
	if descuento > monto {
		return monto
	}
	return descuento
}

// Validar runs the check chain against an amount; the first failure wins
func (s *CuponService) Validar(codigo string, monto float64, ahora time.Time) (*ValidacionCupon, error) {
	var cupon models.Cupon
	err := s.DB.Where("codigo = ?", codigo).First(&cupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ValidacionCupon{Valido: false, Motivo: "cupón no encontrado"}, nil
	}
	if err != nil {
		return nil, err
	}
	return validarCupon(&cupon, monto, ahora), nil
}

func validarCupon(cupon *models.Cupon, monto float64, ahora time.Time) *ValidacionCupon {
	if !cupon.Activo {
		return &ValidacionCupon{Valido: false, Motivo: "el cupón no está activo"}
	}
	if ahora.Before(cupon.FechaInicio) {
		return &ValidacionCupon{Valido: false, Motivo: "el cupón aún no es válido"}
	}
	if ahora.After(cupon.FechaExpiracion) {
		return &ValidacionCupon{Valido: false, Motivo: "el cupón está vencido"}
	}
	if monto < cupon.MontoMinimo {
		return &ValidacionCupon{Valido: false, Motivo: fmt.Sprintf("el monto mínimo de compra es %.2f", cupon.MontoMinimo)}
	}
	if cupon.LimiteUsos > 0 && cupon.UsosActuales >= cupon.LimiteUsos {
		return &ValidacionCupon{Valido: false, Motivo: "el cupón alcanzó su límite de usos"}
	}
	return &ValidacionCupon{
		Valido:    true,
		Descuento: CalcularDescuento(cupon, monto),
		Cupon:     cupon,
	}
}

// AplicarATicket applies a coupon to a ticket's budget: one usage per
// ticket, usage counter bumped, budget discount/total/balance recomputed,
// all in one transaction under a row lock on the coupon.
func (s *CuponService) AplicarATicket(codigo string, ticketID uint, usuarioID uint) (*models.CuponUso, error) {
	var uso models.CuponUso
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var cupon models.Cupon
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("codigo = ?", codigo).First(&cupon).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("cupón '%s' no encontrado", codigo)
		}
		if err != nil {
			return err
		}

		presupuesto, err := lockPresupuesto(tx, ticketID)
		if err != nil {
			return err
		}

		var previos int64
		if err := tx.Model(&models.CuponUso{}).
			Where("cupon_id = ? AND ticket_id = ?", cupon.ID, ticketID).
			Count(&previos).Error; err != nil {
			return err
		}
		if previos > 0 {
			return apperr.Conflict("el cupón '%s' ya fue aplicado a este ticket", codigo)
		}

		verdict := validarCupon(&cupon, presupuesto.TotalFinal, time.Now())
		if !verdict.Valido {
			return apperr.InvalidInput("%s", verdict.Motivo)
		}

		uso = models.CuponUso{
			CuponID:        cupon.ID,
			TicketID:       &ticketID,
			MontoDescuento: verdict.Descuento,
			UsuarioID:      usuarioID,
			Fecha:          time.Now(),
		}
		if err := tx.Create(&uso).Error; err != nil {
			return err
		}

		if err := tx.Model(&cupon).
			Update("usos_actuales", gorm.Expr("usos_actuales + 1")).Error; err != nil {
			return err
		}

		// fold the coupon into the budget's discount and re-derive the balance
		presupuesto.Descuento += verdict.Descuento
		presupuesto.TotalFinal = CalcularTotalFinal(presupuesto.Total, presupuesto.Descuento)

		// locking read: the sum must see payments committed while we
		// waited on the presupuesto lock, not the transaction snapshot
		var pagado float64
		if err := tx.Model(&models.Pago{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("ticket_id = ? AND estado = ?", ticketID, models.PagoActivo).
			Select("COALESCE(SUM(monto), 0)").
			Scan(&pagado).Error; err != nil {
			return err
		}
		presupuesto.Saldo = CalcularSaldo(presupuesto.TotalFinal, pagado)
		presupuesto.Pagado = presupuesto.Saldo <= 0
		if err := tx.Save(presupuesto).Error; err != nil {
			return err
		}

		audit(tx, usuarioID, "aplicar_cupon", "cupon", cupon.ID, fmt.Sprintf("ticket %d", ticketID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &uso, nil
}

// AplicarAVenta runs inside the checkout transaction: same rules, the
// discount lands on the sale's total
func (s *CuponService) AplicarAVenta(tx *gorm.DB, codigo string, venta *models.Venta, usuarioID uint) (*models.CuponUso, error) {
	var cupon models.Cupon
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("codigo = ?", codigo).First(&cupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("cupón '%s' no encontrado", codigo)
	}
	if err != nil {
		return nil, err
	}

	var previos int64
	if err := tx.Model(&models.CuponUso{}).
		Where("cupon_id = ? AND venta_id = ?", cupon.ID, venta.ID).
		Count(&previos).Error; err != nil {
		return nil, err
	}
	if previos > 0 {
		return nil, apperr.Conflict("el cupón '%s' ya fue aplicado a esta venta", codigo)
	}

	verdict := validarCupon(&cupon, venta.Total, time.Now())
	if !verdict.Valido {
		return nil, apperr.InvalidInput("%s", verdict.Motivo)
	}

	uso := models.CuponUso{
		CuponID:        cupon.ID,
		VentaID:        &venta.ID,
		MontoDescuento: verdict.Descuento,
		UsuarioID:      usuarioID,
		Fecha:          time.Now(),
	}
	if err := tx.Create(&uso).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&cupon).
		Update("usos_actuales", gorm.Expr("usos_actuales + 1")).Error; err != nil {
		return nil, err
	}

	venta.Descuento += verdict.Descuento
	venta.Total -= verdict.Descuento
	if venta.Total < 0 {
		venta.Total = 0
	}
	if err := tx.Save(venta).Error; err != nil {
		return nil, err
	}
	return &uso, nil
}

type LoteCuponesInput struct {
	Cantidad        int       `json:"cantidad" binding:"required,min=1,max=500"`
	Prefijo         string    `json:"prefijo"`
	Tipo            string    `json:"tipo" binding:"required,oneof=PORCENTAJE MONTO_FIJO"`
	ValorDescuento  float64   `json:"valor_descuento" binding:"required,gt=0"`
	MontoMinimo     float64   `json:"monto_minimo"`
	FechaInicio     time.Time `json:"fecha_inicio" binding:"required"`
	FechaExpiracion time.Time `json:"fecha_expiracion" binding:"required"`
	LimiteUsos      int       `json:"limite_usos"`
}

const maxIntentosCodigo = 10

// GenerarLote mints N coupons with unique codes (prefix + random suffix +
// zero-padded index). A collision retries the suffix; running out of
// attempts fails the whole batch.
func (s *CuponService) GenerarLote(in LoteCuponesInput, usuarioID uint) ([]models.Cupon, error) {
	if !in.FechaExpiracion.After(in.FechaInicio) {
		return nil, apperr.InvalidInput("la fecha de expiración debe ser posterior a la de inicio")
	}

	prefijo := in.Prefijo
	if prefijo == "" {
		prefijo = "CUP"
	}

	cupones := make([]models.Cupon, 0, in.Cantidad)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		vistos := make(map[string]bool)
		for i := 1; i <= in.Cantidad; i++ {
			var codigo string
			ok := false
			for intento := 0; intento < maxIntentosCodigo; intento++ {
				sufijo, err := sufijoAleatorio(6)
				if err != nil {
					return err
				}
				codigo = fmt.Sprintf("%s-%s-%03d", prefijo, sufijo, i)
				if vistos[codigo] {
					continue
				}
				var count int64
				if err := tx.Model(&models.Cupon{}).
					Where("codigo = ?", codigo).Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					ok = true
					break
				}
			}
			if !ok {
				return apperr.Conflict("no se pudieron generar códigos únicos para el lote")
			}
			vistos[codigo] = true

			cupon := models.Cupon{
				Codigo:          codigo,
				Tipo:            in.Tipo,
				ValorDescuento:  in.ValorDescuento,
				MontoMinimo:     in.MontoMinimo,
				FechaInicio:     in.FechaInicio,
				FechaExpiracion: in.FechaExpiracion,
				LimiteUsos:      in.LimiteUsos,
				Activo:          true,
			}
			if err := tx.Create(&cupon).Error; err != nil {
				return err
			}
			cupones = append(cupones, cupon)
		}
		audit(tx, usuarioID, "generar_cupones", "cupon", 0, fmt.Sprintf("%d cupones %s", in.Cantidad, prefijo))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cupones, nil
}

const alfabetoCodigo = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// swapped out in tests
var codigoRand io.Reader = rand.Reader

func sufijoAleatorio(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(codigoRand, big.NewInt(int64(len(alfabetoCodigo))))
		if err != nil {
			return "", fmt.Errorf("generando sufijo de cupón: %w", err)
		}
		b[i] = alfabetoCodigo[idx.Int64()]
	}
	return string(b), nil
}
