package service

import (
	"context"
	"testing"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildVentaSvc() (VentaService, *stubVentaRepo, *stubProductoRepo, *stubTurnoRepo, *stubClienteRepo) {
	ventaRepo := newStubVentaRepo()
	productoRepo := newStubProductoRepo()
	turnoRepo := newStubTurnoRepo()
	clienteRepo := newStubClienteRepo()
	svc := NewVentaService(ventaRepo, productoRepo, turnoRepo, clienteRepo, nil, nil, nil)
	return svc, ventaRepo, productoRepo, turnoRepo, clienteRepo
}

func abrirTurnoDePrueba(t *testing.T, repo *stubTurnoRepo, apertura float64) uuid.UUID {
	t.Helper()
	turno := turnoDePrueba(apertura)
	require.NoError(t, repo.CreateTurno(context.Background(), turno))
	return turno.ID
}

func TestRegistrarVenta_SinTurnoActivo(t *testing.T) {
	svc, _, productoRepo, _, _ := buildVentaSvc()
	p := productoRepo.seed("Cerveza 355ml", 500, 10, 2)

	efectivo := decimal.NewFromFloat(1000)
	_, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		MetodoPago:    "efectivo",
		MontoRecibido: &efectivo,
	})
	assert.ErrorIs(t, err, ErrSinTurnoActivo)
}

func TestRegistrarVenta_EfectivoInsuficiente(t *testing.T) {
	svc, _, productoRepo, turnoRepo, _ := buildVentaSvc()
	abrirTurnoDePrueba(t, turnoRepo, 1000)
	p := productoRepo.seed("Vino 750ml", 250, 10, 2)

	recibido := decimal.NewFromFloat(400) // total = 500
	_, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
		MetodoPago:    "efectivo",
		MontoRecibido: &recibido,
	})
	assert.ErrorIs(t, err, ErrMontoInsuficiente)
}

func TestRegistrarVenta_Vuelto(t *testing.T) {
	svc, _, productoRepo, turnoRepo, _ := buildVentaSvc()
	abrirTurnoDePrueba(t, turnoRepo, 1000)
	p := productoRepo.seed("Gaseosa 1.5L", 200, 30, 5)

	// total = 400, recibido = 500, vuelto = 100
	recibido := decimal.NewFromFloat(500)
	resp, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
		MetodoPago:    "efectivo",
		MontoRecibido: &recibido,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Vuelto)
	assert.Equal(t, "100", resp.Vuelto.String())
	assert.Equal(t, "completada", resp.Estado)
}

func TestRegistrarVenta_DescuentoPorcentaje(t *testing.T) {
	svc, _, productoRepo, turnoRepo, _ := buildVentaSvc()
	abrirTurnoDePrueba(t, turnoRepo, 1000)
	p := productoRepo.seed("Queso 500g", 250, 10, 2)

	// subtotal 250, 10% de descuento → total 225
	recibido := decimal.NewFromFloat(300)
	resp, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Descuento:     &dto.DescuentoRequest{Tipo: "percentage", Valor: decimal.NewFromInt(10)},
		MetodoPago:    "efectivo",
		MontoRecibido: &recibido,
	})
	require.NoError(t, err)
	assert.Equal(t, "25", resp.Descuento.String())
	assert.Equal(t, "225", resp.Total.String())
}

func TestRegistrarVenta_DescuentoMontoMayorAlSubtotal(t *testing.T) {
	svc, _, productoRepo, turnoRepo, _ := buildVentaSvc()
	abrirTurnoDePrueba(t, turnoRepo, 1000)
	p := productoRepo.seed("Pan lactal", 100, 10, 2)

	recibido := decimal.NewFromFloat(500)
	_, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Descuento:     &dto.DescuentoRequest{Tipo: "amount", Valor: decimal.NewFromInt(100)},
		MetodoPago:    "efectivo",
		MontoRecibido: &recibido,
	})
	assert.ErrorContains(t, err, "descuento")
}

func TestComputeDescuento_NoSeAcumula(t *testing.T) {
	// The discount always derives from the original subtotal, so applying the
	// same request twice yields the same amount.
	subtotal := decimal.NewFromInt(250)
	d := &dto.DescuentoRequest{Tipo: "percentage", Valor: decimal.NewFromInt(10)}

	primera, err := computeDescuento(subtotal, d)
	require.NoError(t, err)
	segunda, err := computeDescuento(subtotal, d)
	require.NoError(t, err)
	assert.True(t, primera.Equal(segunda))
	assert.Equal(t, "25", primera.String())
}

func TestRegistrarVenta_StockInsuficiente(t *testing.T) {
	svc, ventaRepo, productoRepo, turnoRepo, _ := buildVentaSvc()
	turnoID := abrirTurnoDePrueba(t, turnoRepo, 1000)
	p := productoRepo.seed("Whisky 750ml", 1800, 2, 0) // only 2 in stock

	recibido := decimal.NewFromFloat(10000)
	_, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 5}},
		MetodoPago:    "efectivo",
		MontoRecibido: &recibido,
	})
	assert.ErrorContains(t, err, "stock insuficiente")

	// Nothing must remain from the aborted sale
	assert.Empty(t, ventaRepo.ventas)
	turno, _ := turnoRepo.FindByID(context.Background(), turnoID)
	assert.True(t, turno.TotalVentas.IsZero())
	assert.Equal(t, 0, turno.CantidadVentas)
}

func TestRegistrarVenta_ActualizaTotalesDelTurno(t *testing.T) {
	svc, _, productoRepo, turnoRepo, _ := buildVentaSvc()
	turnoID := abrirTurnoDePrueba(t, turnoRepo, 1000)
	p := productoRepo.seed("Fernet 750ml", 1500, 20, 3)

	recibido := decimal.NewFromFloat(2000)
	for i := 0; i < 2; i++ {
		_, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
			Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
			MetodoPago:    "efectivo",
			MontoRecibido: &recibido,
		})
		require.NoError(t, err)
	}

	turno, _ := turnoRepo.FindByID(context.Background(), turnoID)
	assert.Equal(t, "3000", turno.TotalVentas.String())
	assert.Equal(t, 2, turno.CantidadVentas)
	assert.Equal(t, 18, productoRepo.productos[p.ID].Stock)
}

func TestRegistrarVenta_TarjetaSinTipoEsDebito(t *testing.T) {
	svc, _, productoRepo, turnoRepo, _ := buildVentaSvc()
	abrirTurnoDePrueba(t, turnoRepo, 1000)
	p := productoRepo.seed("Aceite 900ml", 800, 10, 2)

	resp, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		MetodoPago: "tarjeta",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.TipoTarjeta)
	assert.Equal(t, "debito", *resp.TipoTarjeta)
}

func TestRegistrarVenta_Idempotente_OperacionID(t *testing.T) {
	svc, ventaRepo, productoRepo, turnoRepo, _ := buildVentaSvc()
	abrirTurnoDePrueba(t, turnoRepo, 1000)
	p := productoRepo.seed("Jugo 1L", 150, 20, 2)

	operacionID := uuid.New().String()
	recibido := decimal.NewFromFloat(200)
	req := dto.RegistrarVentaRequest{
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		MetodoPago:    "efectivo",
		MontoRecibido: &recibido,
		OperacionID:   &operacionID,
	}

	resp1, err := svc.RegistrarVenta(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	// The retry returns the original sale instead of creating a second one
	resp2, err := svc.RegistrarVenta(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, resp1.ID, resp2.ID)
	assert.Len(t, ventaRepo.ventas, 1)
	assert.Equal(t, 19, productoRepo.productos[p.ID].Stock)
}

func TestRegistrarVenta_CuentaCorriente(t *testing.T) {
	svc, _, productoRepo, turnoRepo, clienteRepo := buildVentaSvc()
	abrirTurnoDePrueba(t, turnoRepo, 1000)
	p := productoRepo.seed("Yerba 1kg", 1200, 10, 2)
	cliente := clienteRepo.seed("Doña Rosa", true)

	// Without cliente the sale is rejected
	_, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		MetodoPago: "cuenta_corriente",
	})
	assert.ErrorContains(t, err, "cliente")

	clienteID := cliente.ID.String()
	_, err = svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		MetodoPago: "cuenta_corriente",
		ClienteID:  &clienteID,
	})
	require.NoError(t, err)

	// The sale charged the customer's balance
	assert.Equal(t, "-1200", clienteRepo.clientes[cliente.ID].SaldoCuenta.String())
}

func TestRegistrarVenta_ProductoInactivo(t *testing.T) {
	svc, _, productoRepo, turnoRepo, _ := buildVentaSvc()
	abrirTurnoDePrueba(t, turnoRepo, 1000)
	p := productoRepo.seed("Descontinuado", 100, 10, 2)
	p.Activo = false

	recibido := decimal.NewFromFloat(200)
	_, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		MetodoPago:    "efectivo",
		MontoRecibido: &recibido,
	})
	assert.ErrorContains(t, err, "inactivo")
}

func TestAnularVenta_RestauraStockYTotales(t *testing.T) {
	svc, ventaRepo, productoRepo, turnoRepo, _ := buildVentaSvc()
	turnoID := abrirTurnoDePrueba(t, turnoRepo, 1000)
	p := productoRepo.seed("Shampoo 400ml", 900, 10, 1)

	recibido := decimal.NewFromFloat(3000)
	resp, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		MetodoPago:    "efectivo",
		MontoRecibido: &recibido,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, productoRepo.productos[p.ID].Stock)

	err = svc.AnularVenta(context.Background(), uuid.MustParse(resp.ID), "error de carga")
	require.NoError(t, err)

	assert.Equal(t, 10, productoRepo.productos[p.ID].Stock)
	stored, _ := ventaRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	assert.Equal(t, "anulada", stored.Estado)

	// The audit row records the actual transition, 7 → 10
	var restore *model.MovimientoStock
	for i := range productoRepo.movimientos {
		if productoRepo.movimientos[i].Tipo == "restore_anulacion" {
			restore = &productoRepo.movimientos[i]
		}
	}
	require.NotNil(t, restore)
	assert.Equal(t, 7, restore.StockAnterior)
	assert.Equal(t, 10, restore.StockNuevo)
	assert.Equal(t, 3, restore.Cantidad)

	// The open shift's running totals were rolled back
	turno, _ := turnoRepo.FindByID(context.Background(), turnoID)
	assert.True(t, turno.TotalVentas.IsZero())
	assert.Equal(t, 0, turno.CantidadVentas)

	// A second anulación is rejected
	err = svc.AnularVenta(context.Background(), uuid.MustParse(resp.ID), "de nuevo")
	assert.ErrorContains(t, err, "anulada")
}

func TestAnularVenta_CuentaCorrienteAcreditaSaldo(t *testing.T) {
	svc, _, productoRepo, turnoRepo, clienteRepo := buildVentaSvc()
	abrirTurnoDePrueba(t, turnoRepo, 0)
	p := productoRepo.seed("Harina 1kg", 350, 10, 2)
	cliente := clienteRepo.seed("Don Pedro", true)
	clienteID := cliente.ID.String()

	resp, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
		MetodoPago: "cuenta_corriente",
		ClienteID:  &clienteID,
	})
	require.NoError(t, err)
	assert.Equal(t, "-700", clienteRepo.clientes[cliente.ID].SaldoCuenta.String())

	require.NoError(t, svc.AnularVenta(context.Background(), uuid.MustParse(resp.ID), "devolución"))
	assert.True(t, clienteRepo.clientes[cliente.ID].SaldoCuenta.IsZero())
}
