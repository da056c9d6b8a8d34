package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func turnoDePrueba(apertura float64) *model.Turno {
	return &model.Turno{
		ID:             uuid.New(),
		Tipo:           "manana",
		EmpleadoID:     uuid.New(),
		EmpleadoNombre: "Cajero Prueba",
		MontoApertura:  decimal.NewFromFloat(apertura),
		TotalVentas:    decimal.Zero,
		Estado:         "activo",
		AbiertoEn:      time.Now(),
	}
}

func buildTurnoSvc() (TurnoService, *stubTurnoRepo, *stubVentaRepo) {
	turnoRepo := newStubTurnoRepo()
	ventaRepo := newStubVentaRepo()
	svc := NewTurnoService(turnoRepo, ventaRepo, nil, nil, "")
	return svc, turnoRepo, ventaRepo
}

// ventaCompletada seeds a completed sale attributed to the turno, so the
// arqueo aggregations have data to sum.
func ventaCompletada(repo *stubVentaRepo, turnoID uuid.UUID, metodo string, tipoTarjeta *string, total float64) {
	_ = repo.Create(context.Background(), nil, &model.Venta{
		TurnoID:     turnoID,
		EmpleadoID:  uuid.New(),
		Total:       decimal.NewFromFloat(total),
		MetodoPago:  metodo,
		TipoTarjeta: tipoTarjeta,
		Estado:      "completada",
	})
}

func TestAbrirTurno_SegundoActivoFalla(t *testing.T) {
	svc, _, _ := buildTurnoSvc()

	_, err := svc.Abrir(context.Background(), uuid.New(), "Ana", dto.AbrirTurnoRequest{
		Tipo:          "manana",
		MontoApertura: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	_, err = svc.Abrir(context.Background(), uuid.New(), "Luis", dto.AbrirTurnoRequest{
		Tipo:          "tarde",
		MontoApertura: decimal.NewFromInt(500),
	})
	assert.ErrorIs(t, err, ErrTurnoYaAbierto)
}

func TestRegistrarMovimiento_SinTurnoActivo(t *testing.T) {
	svc, _, _ := buildTurnoSvc()

	_, err := svc.RegistrarMovimiento(context.Background(), uuid.New(), dto.MovimientoCajaRequest{
		Tipo:     "ingreso",
		Monto:    decimal.NewFromInt(500),
		Concepto: "cambio",
	})
	assert.ErrorIs(t, err, ErrSinTurnoActivo)
}

func TestEliminarMovimiento_TurnoCerrado(t *testing.T) {
	svc, turnoRepo, _ := buildTurnoSvc()
	turno := turnoDePrueba(1000)
	require.NoError(t, turnoRepo.CreateTurno(context.Background(), turno))

	mov, err := svc.RegistrarMovimiento(context.Background(), uuid.New(), dto.MovimientoCajaRequest{
		Tipo:     "egreso",
		Monto:    decimal.NewFromInt(200),
		Concepto: "pago proveedor",
	})
	require.NoError(t, err)

	// Close the shift; its movements are frozen from then on
	turno.Estado = "cerrado"
	err = svc.EliminarMovimiento(context.Background(), uuid.MustParse(mov.ID))
	assert.ErrorIs(t, err, ErrTurnoCerrado)
}

func TestEliminarMovimiento_DejaDeContar(t *testing.T) {
	svc, turnoRepo, _ := buildTurnoSvc()
	turno := turnoDePrueba(1000)
	require.NoError(t, turnoRepo.CreateTurno(context.Background(), turno))

	mov, err := svc.RegistrarMovimiento(context.Background(), uuid.New(), dto.MovimientoCajaRequest{
		Tipo:     "ingreso",
		Monto:    decimal.NewFromInt(300),
		Concepto: "fondo extra",
	})
	require.NoError(t, err)
	require.NoError(t, svc.EliminarMovimiento(context.Background(), uuid.MustParse(mov.ID)))

	ingresos, egresos, err := turnoRepo.SumMovimientos(context.Background(), turno.ID)
	require.NoError(t, err)
	assert.True(t, ingresos.IsZero())
	assert.True(t, egresos.IsZero())

	// Deleting it again is rejected
	err = svc.EliminarMovimiento(context.Background(), uuid.MustParse(mov.ID))
	assert.ErrorContains(t, err, "eliminado")
}

func TestCalcularEsperado(t *testing.T) {
	// efectivo = apertura + ventas efectivo + ingresos − egresos
	ventas := map[string]decimal.Decimal{
		"efectivo":        decimal.NewFromInt(5000),
		"tarjeta_debito":  decimal.NewFromInt(1200),
		"tarjeta_credito": decimal.NewFromInt(800),
		"transferencia":   decimal.NewFromInt(300),
		"mercadopago":     decimal.NewFromInt(700),
	}
	esperado := calcularEsperado(
		decimal.NewFromInt(1000), ventas,
		decimal.NewFromInt(200), decimal.NewFromInt(300),
	)

	assert.Equal(t, "5900", esperado.Efectivo.String())
	assert.Equal(t, "1200", esperado.TarjetaDebito.String())
	assert.Equal(t, "800", esperado.TarjetaCredito.String())
	assert.Equal(t, "300", esperado.Transferencia.String())
	assert.Equal(t, "700", esperado.MercadoPago.String())
	assert.Equal(t, "8900", esperado.Total.String())
}

func TestClasificarDesvio(t *testing.T) {
	cien := decimal.NewFromInt(10000)
	cases := []struct {
		nombre     string
		esperado   decimal.Decimal
		diferencia decimal.Decimal
		want       string
	}{
		{"sin diferencia", cien, decimal.Zero, "normal"},
		{"uno por ciento exacto", cien, decimal.NewFromInt(100), "normal"},
		{"faltante chico", cien, decimal.NewFromInt(-80), "normal"},
		{"tres por ciento", cien, decimal.NewFromInt(300), "advertencia"},
		{"cinco por ciento exacto", cien, decimal.NewFromInt(-500), "advertencia"},
		{"diez por ciento", cien, decimal.NewFromInt(1000), "critico"},
		{"esperado cero con sobra", decimal.Zero, decimal.NewFromInt(50), "critico"},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			assert.Equal(t, tc.want, clasificarDesvio(tc.esperado, tc.diferencia))
		})
	}
}

func TestRealizarArqueo_Correcto(t *testing.T) {
	svc, turnoRepo, ventaRepo := buildTurnoSvc()
	turno := turnoDePrueba(1000)
	require.NoError(t, turnoRepo.CreateTurno(context.Background(), turno))

	credito := "credito"
	ventaCompletada(ventaRepo, turno.ID, "efectivo", nil, 5000)
	ventaCompletada(ventaRepo, turno.ID, "tarjeta", nil, 1200) // debito by default
	ventaCompletada(ventaRepo, turno.ID, "tarjeta", &credito, 800)

	_, err := svc.RegistrarMovimiento(context.Background(), uuid.New(), dto.MovimientoCajaRequest{
		Tipo: "egreso", Monto: decimal.NewFromInt(500), Concepto: "pago proveedor",
	})
	require.NoError(t, err)

	// contado matches expectations exactly: efectivo 1000+5000−500 = 5500
	resp, err := svc.RealizarArqueo(context.Background(), dto.ArqueoRequest{
		Contado: dto.DeclaracionArqueo{
			Efectivo:       decimal.NewFromInt(5500),
			TarjetaDebito:  decimal.NewFromInt(1200),
			TarjetaCredito: decimal.NewFromInt(800),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "correcto", resp.Estado)
	assert.Equal(t, "normal", resp.Clasificacion)
	assert.True(t, resp.Diferencia.Total.IsZero())

	// The arqueo closed the shift
	cerrado, _ := turnoRepo.FindByID(context.Background(), turno.ID)
	assert.Equal(t, "cerrado", cerrado.Estado)
	assert.NotNil(t, cerrado.CerradoEn)

	// And a second arqueo finds no active turno
	_, err = svc.RealizarArqueo(context.Background(), dto.ArqueoRequest{})
	assert.ErrorIs(t, err, ErrSinTurnoActivo)
}

func TestRealizarArqueo_ConDiferenciaChica(t *testing.T) {
	svc, turnoRepo, ventaRepo := buildTurnoSvc()
	turno := turnoDePrueba(1000)
	require.NoError(t, turnoRepo.CreateTurno(context.Background(), turno))
	ventaCompletada(ventaRepo, turno.ID, "efectivo", nil, 9000)

	// esperado 10000, contado 9950 → faltante de 50 (0.5%) = normal
	resp, err := svc.RealizarArqueo(context.Background(), dto.ArqueoRequest{
		Contado: dto.DeclaracionArqueo{Efectivo: decimal.NewFromInt(9950)},
	})
	require.NoError(t, err)
	assert.Equal(t, "con_diferencia", resp.Estado)
	assert.Equal(t, "normal", resp.Clasificacion)
	assert.Equal(t, "-50", resp.Diferencia.Total.String())
}

func TestRealizarArqueo_CriticoRequiereObservaciones(t *testing.T) {
	svc, turnoRepo, ventaRepo := buildTurnoSvc()
	turno := turnoDePrueba(1000)
	require.NoError(t, turnoRepo.CreateTurno(context.Background(), turno))
	ventaCompletada(ventaRepo, turno.ID, "efectivo", nil, 9000)

	// esperado 10000, contado 8000 → 20% faltante = critico
	_, err := svc.RealizarArqueo(context.Background(), dto.ArqueoRequest{
		Contado: dto.DeclaracionArqueo{Efectivo: decimal.NewFromInt(8000)},
	})
	assert.ErrorContains(t, err, "observaciones")

	// The shift must remain open after the rejection
	activo, _ := turnoRepo.FindActivo(context.Background())
	assert.Equal(t, "activo", activo.Estado)

	obs := "faltante bajo investigación"
	resp, err := svc.RealizarArqueo(context.Background(), dto.ArqueoRequest{
		Contado:       dto.DeclaracionArqueo{Efectivo: decimal.NewFromInt(8000)},
		Observaciones: &obs,
	})
	require.NoError(t, err)
	assert.Equal(t, "critico", resp.Clasificacion)
	assert.Equal(t, "con_diferencia", resp.Estado)
}

// fallaCierreTurnoRepo makes the close write fail, so the arqueo/cierre
// pairing can be asserted.
type fallaCierreTurnoRepo struct{ *stubTurnoRepo }

func (r *fallaCierreTurnoRepo) UpdateTurnoTx(_ *gorm.DB, _ *model.Turno) error {
	return errors.New("connection reset")
}

func TestRealizarArqueo_CierreFallidoDejaTurnoActivo(t *testing.T) {
	turnoRepo := newStubTurnoRepo()
	ventaRepo := newStubVentaRepo()
	svc := NewTurnoService(&fallaCierreTurnoRepo{turnoRepo}, ventaRepo, nil, nil, "")

	turno := turnoDePrueba(1000)
	require.NoError(t, turnoRepo.CreateTurno(context.Background(), turno))

	_, err := svc.RealizarArqueo(context.Background(), dto.ArqueoRequest{
		Contado: dto.DeclaracionArqueo{Efectivo: decimal.NewFromInt(1000)},
	})
	require.Error(t, err)

	// The shift record was never flipped to cerrado
	activo, findErr := turnoRepo.FindActivo(context.Background())
	require.NoError(t, findErr)
	assert.Equal(t, "activo", activo.Estado)
	assert.Nil(t, activo.CerradoEn)
}

func TestCreateArqueo_UnicoPorTurno(t *testing.T) {
	turnoRepo := newStubTurnoRepo()
	turnoID := uuid.New()

	require.NoError(t, turnoRepo.CreateArqueoTx(nil, &model.ArqueoCaja{TurnoID: turnoID}))
	err := turnoRepo.CreateArqueoTx(nil, &model.ArqueoCaja{TurnoID: turnoID})
	assert.ErrorContains(t, err, "unique")
}

func TestReporteTurno_IncluyeArqueo(t *testing.T) {
	svc, turnoRepo, ventaRepo := buildTurnoSvc()
	turno := turnoDePrueba(500)
	require.NoError(t, turnoRepo.CreateTurno(context.Background(), turno))
	ventaCompletada(ventaRepo, turno.ID, "efectivo", nil, 2000)

	_, err := svc.RealizarArqueo(context.Background(), dto.ArqueoRequest{
		Contado: dto.DeclaracionArqueo{Efectivo: decimal.NewFromInt(2500)},
	})
	require.NoError(t, err)

	rep, err := svc.ReporteTurno(context.Background(), turno.ID)
	require.NoError(t, err)
	assert.Equal(t, "cerrado", rep.Turno.Estado)
	assert.Equal(t, "2500", rep.Esperado.Efectivo.String())
	require.NotNil(t, rep.Arqueo)
	assert.Equal(t, "correcto", rep.Arqueo.Estado)
}
