package service

import (
	"context"
	"errors"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory repository stubs ───────────────────────────────────────────────
// DB() returns nil so the services run their transactions with fn(nil) and
// the stubs just ignore the tx argument.

type stubProductoRepo struct {
	productos   map[uuid.UUID]*model.Producto
	movimientos []model.MovimientoStock
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) seed(nombre string, precio float64, stock, minimo int) *model.Producto {
	p := &model.Producto{
		ID:          uuid.New(),
		Nombre:      nombre,
		Precio:      decimal.NewFromFloat(precio),
		Stock:       stock,
		StockMinimo: minimo,
		Activo:      true,
	}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProductoRepo) FindByBarcode(_ context.Context, barcode string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.CodigoBarras != nil && *p.CodigoBarras == barcode && p.Activo {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = true
	}
	return nil
}

func (r *stubProductoRepo) AjustarStock(_ context.Context, id uuid.UUID, delta int) error {
	p, ok := r.productos[id]
	if !ok {
		return errors.New("not found")
	}
	p.Stock += delta
	return nil
}

func (r *stubProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	p, ok := r.productos[id]
	if !ok {
		return errors.New("not found")
	}
	if p.Stock < cantidad {
		return repository.ErrStockInsuficiente
	}
	p.Stock -= cantidad
	return nil
}

func (r *stubProductoRepo) RestaurarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	p, ok := r.productos[id]
	if !ok {
		return errors.New("not found")
	}
	p.Stock += cantidad
	return nil
}

func (r *stubProductoRepo) RegistrarMovimiento(_ context.Context, m *model.MovimientoStock) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubProductoRepo) RegistrarMovimientoTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubProductoRepo) ListMovimientos(_ context.Context, productoID uuid.UUID, _ int) ([]model.MovimientoStock, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.ProductoID == productoID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) ListStockBajo(_ context.Context) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.Activo && p.Stock <= p.StockMinimo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) CountStockBajo(_ context.Context) (int64, error) {
	low, _ := r.ListStockBajo(context.Background())
	return int64(len(low)), nil
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

type stubVentaRepo struct {
	ventas      map[uuid.UUID]*model.Venta
	operacionID map[string]*model.Venta
	ticketSeq   int
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{
		ventas:      make(map[uuid.UUID]*model.Venta),
		operacionID: make(map[string]*model.Venta),
	}
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.ventas[v.ID] = v
	if v.OperacionID != nil {
		r.operacionID[*v.OperacionID] = v
	}
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (r *stubVentaRepo) FindByOperacionID(_ context.Context, operacionID string) (*model.Venta, error) {
	v, ok := r.operacionID[operacionID]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (r *stubVentaRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.ticketSeq++
	return r.ticketSeq, nil
}

func (r *stubVentaRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	v, ok := r.ventas[id]
	if !ok {
		return errors.New("not found")
	}
	v.Estado = estado
	return nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	out := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) SumPorMetodo(_ context.Context, turnoID uuid.UUID) (map[string]decimal.Decimal, error) {
	sums := map[string]decimal.Decimal{
		repository.MetodoEfectivo:        decimal.Zero,
		repository.MetodoTarjetaDebito:   decimal.Zero,
		repository.MetodoTarjetaCredito:  decimal.Zero,
		repository.MetodoTransferencia:   decimal.Zero,
		repository.MetodoMercadoPago:     decimal.Zero,
		repository.MetodoCuentaCorriente: decimal.Zero,
	}
	for _, v := range r.ventas {
		if v.TurnoID != turnoID || v.Estado != "completada" {
			continue
		}
		key := v.MetodoPago
		if key == "tarjeta" {
			if v.TipoTarjeta != nil && *v.TipoTarjeta == "credito" {
				key = repository.MetodoTarjetaCredito
			} else {
				key = repository.MetodoTarjetaDebito
			}
		}
		sums[key] = sums[key].Add(v.Total)
	}
	return sums, nil
}

func (r *stubVentaRepo) TotalesPorTurno(_ context.Context, turnoID uuid.UUID) (decimal.Decimal, int, error) {
	total, count := decimal.Zero, 0
	for _, v := range r.ventas {
		if v.TurnoID == turnoID && v.Estado == "completada" {
			total = total.Add(v.Total)
			count++
		}
	}
	return total, count, nil
}

func (r *stubVentaRepo) ResumenRango(_ context.Context, desde, hasta string) (*dto.ResumenVentasResponse, error) {
	return &dto.ResumenVentasResponse{Desde: desde, Hasta: hasta}, nil
}

func (r *stubVentaRepo) TotalesHoy(_ context.Context) (decimal.Decimal, int, error) {
	return decimal.Zero, 0, nil
}

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

type stubTurnoRepo struct {
	turnos      map[uuid.UUID]*model.Turno
	movimientos map[uuid.UUID]*model.MovimientoCaja
	arqueos     []model.ArqueoCaja
}

func newStubTurnoRepo() *stubTurnoRepo {
	return &stubTurnoRepo{
		turnos:      make(map[uuid.UUID]*model.Turno),
		movimientos: make(map[uuid.UUID]*model.MovimientoCaja),
	}
}

func (r *stubTurnoRepo) DB() *gorm.DB { return nil }

func (r *stubTurnoRepo) CreateTurno(_ context.Context, t *model.Turno) error {
	// Mirrors the partial unique index: a second activo row is rejected.
	for _, existing := range r.turnos {
		if existing.Estado == "activo" {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.turnos[t.ID] = t
	return nil
}

func (r *stubTurnoRepo) FindActivo(_ context.Context) (*model.Turno, error) {
	for _, t := range r.turnos {
		if t.Estado == "activo" {
			return t, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubTurnoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Turno, error) {
	t, ok := r.turnos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return t, nil
}

func (r *stubTurnoRepo) UpdateTurnoTx(_ *gorm.DB, t *model.Turno) error {
	r.turnos[t.ID] = t
	return nil
}

func (r *stubTurnoRepo) ListCerrados(_ context.Context, _, _ int) ([]model.Turno, int64, error) {
	var out []model.Turno
	for _, t := range r.turnos {
		if t.Estado == "cerrado" {
			out = append(out, *t)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubTurnoRepo) IncrementarTotalesTx(_ *gorm.DB, turnoID uuid.UUID, monto decimal.Decimal, deltaVentas int) error {
	t, ok := r.turnos[turnoID]
	if !ok {
		return errors.New("not found")
	}
	t.TotalVentas = t.TotalVentas.Add(monto)
	t.CantidadVentas += deltaVentas
	return nil
}

func (r *stubTurnoRepo) SetTotales(_ context.Context, turnoID uuid.UUID, total decimal.Decimal, cantidad int) error {
	t, ok := r.turnos[turnoID]
	if !ok {
		return errors.New("not found")
	}
	t.TotalVentas = total
	t.CantidadVentas = cantidad
	return nil
}

func (r *stubTurnoRepo) ListRecientes(_ context.Context, _ int) ([]model.Turno, error) {
	var out []model.Turno
	for _, t := range r.turnos {
		out = append(out, *t)
	}
	return out, nil
}

func (r *stubTurnoRepo) CreateMovimiento(_ context.Context, m *model.MovimientoCaja) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos[m.ID] = m
	return nil
}

func (r *stubTurnoRepo) FindMovimientoByID(_ context.Context, id uuid.UUID) (*model.MovimientoCaja, error) {
	m, ok := r.movimientos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return m, nil
}

func (r *stubTurnoRepo) ListMovimientos(_ context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.TurnoID == turnoID && m.Estado == "activa" {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubTurnoRepo) SoftDeleteMovimiento(_ context.Context, id uuid.UUID) error {
	m, ok := r.movimientos[id]
	if !ok {
		return errors.New("not found")
	}
	m.Estado = "eliminada"
	return nil
}

func (r *stubTurnoRepo) SumMovimientos(_ context.Context, turnoID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	ingresos, egresos := decimal.Zero, decimal.Zero
	for _, m := range r.movimientos {
		if m.TurnoID != turnoID || m.Estado != "activa" {
			continue
		}
		switch m.Tipo {
		case "ingreso":
			ingresos = ingresos.Add(m.Monto)
		case "egreso":
			egresos = egresos.Add(m.Monto)
		}
	}
	return ingresos, egresos, nil
}

func (r *stubTurnoRepo) CreateArqueoTx(_ *gorm.DB, a *model.ArqueoCaja) error {
	// Mirrors the unique index on arqueos_caja.turno_id.
	for i := range r.arqueos {
		if r.arqueos[i].TurnoID == a.TurnoID {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.arqueos = append(r.arqueos, *a)
	return nil
}

func (r *stubTurnoRepo) FindArqueoByTurno(_ context.Context, turnoID uuid.UUID) (*model.ArqueoCaja, error) {
	for i := len(r.arqueos) - 1; i >= 0; i-- {
		if r.arqueos[i].TurnoID == turnoID {
			return &r.arqueos[i], nil
		}
	}
	return nil, errors.New("not found")
}

var _ repository.TurnoRepository = (*stubTurnoRepo)(nil)

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) seed(nombre string, activo bool) *model.Cliente {
	c := &model.Cliente{ID: uuid.New(), Nombre: nombre, Activo: activo}
	r.clientes[c.ID] = c
	return c
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *stubClienteRepo) List(_ context.Context, _ string) ([]model.Cliente, error) {
	var out []model.Cliente
	for _, c := range r.clientes {
		if c.Activo {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if c, ok := r.clientes[id]; ok {
		c.Activo = false
	}
	return nil
}

func (r *stubClienteRepo) AjustarSaldo(_ context.Context, id uuid.UUID, delta decimal.Decimal) error {
	c, ok := r.clientes[id]
	if !ok {
		return errors.New("not found")
	}
	c.SaldoCuenta = c.SaldoCuenta.Add(delta)
	return nil
}

func (r *stubClienteRepo) AjustarSaldoTx(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	return r.AjustarSaldo(context.Background(), id, delta)
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)
