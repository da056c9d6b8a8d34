package service

import (
	"context"
	"errors"
	"fmt"

	"tiendapos/internal/dto"
	"tiendapos/internal/infra"
	"tiendapos/internal/model"
	"tiendapos/internal/repository"
	"tiendapos/internal/worker"
	"tiendapos/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSinTurnoActivo    = errors.New("no hay un turno de caja activo")
	ErrMontoInsuficiente = errors.New("monto insuficiente")
)

type VentaService interface {
	RegistrarVenta(ctx context.Context, empleadoID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, id uuid.UUID, motivo string) error
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	turnoRepo    repository.TurnoRepository
	clienteRepo  repository.ClienteRepository
	dispatcher   *worker.Dispatcher
	hub          *ws.Hub
	cache        *infra.Cache
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	turnoRepo repository.TurnoRepository,
	clienteRepo repository.ClienteRepository,
	dispatcher *worker.Dispatcher,
	hub *ws.Hub,
	cache *infra.Cache,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		turnoRepo:    turnoRepo,
		clienteRepo:  clienteRepo,
		dispatcher:   dispatcher,
		hub:          hub,
		cache:        cache,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// computeDescuento derives the discount amount from the ORIGINAL subtotal.
// percentage: subtotal × valor / 100, valor must not exceed 100.
// amount: valor as-is, must be strictly less than the subtotal.
// Because the input is always the original subtotal, resubmitting the same
// request can never compound the discount.
func computeDescuento(subtotal decimal.Decimal, d *dto.DescuentoRequest) (decimal.Decimal, error) {
	if d == nil {
		return decimal.Zero, nil
	}
	switch d.Tipo {
	case "percentage":
		if d.Valor.GreaterThan(decimal.NewFromInt(100)) {
			return decimal.Zero, errors.New("el porcentaje de descuento no puede superar 100")
		}
		return subtotal.Mul(d.Valor).Div(decimal.NewFromInt(100)).Round(2), nil
	case "amount":
		if d.Valor.GreaterThanOrEqual(subtotal) {
			return decimal.Zero, errors.New("el descuento no puede igualar o superar el subtotal")
		}
		return d.Valor, nil
	default:
		return decimal.Zero, fmt.Errorf("tipo de descuento desconocido: %s", d.Tipo)
	}
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// One ACID transaction covers everything the sale touches:
//   1. Validate an active turno exists
//   2. Deduplicate by operacion_id (idempotent retries)
//   3. Resolve products, compute subtotal/descuento/total (pre-flight)
//   4. Validate payment (cash sufficiency, card type, cuenta corriente)
//   5. BEGIN TX: nextval ticket, create venta+items, guarded stock decrement,
//      stock movement records, atomic turno total increment, saldo charge
//   6. COMMIT, then async ticket PDF + realtime broadcast

func (s *ventaService) RegistrarVenta(ctx context.Context, empleadoID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	// 1. Active turno is mandatory — sales are always attributed to a shift.
	turno, err := s.turnoRepo.FindActivo(ctx)
	if err != nil {
		return nil, ErrSinTurnoActivo
	}

	// 2. Idempotency: a retry with the same operacion_id returns the
	// original sale instead of inserting a duplicate.
	if req.OperacionID != nil && *req.OperacionID != "" {
		if existing, err := s.repo.FindByOperacionID(ctx, *req.OperacionID); err == nil {
			return ventaToResponse(existing), nil
		}
	}

	// 3. Resolve products and calculate totals (pre-flight, outside TX)
	type resolvedItem struct {
		productoID uuid.UUID
		nombre     string
		precio     decimal.Decimal
		cantidad   int
		subtotal   decimal.Decimal
		stockAntes int
	}

	var resolved []resolvedItem
	subtotal := decimal.Zero

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("producto %s no encontrado", item.ProductoID)
		}
		if !p.Activo {
			return nil, fmt.Errorf("producto %s está inactivo y no puede venderse", p.Nombre)
		}
		lineSubtotal := p.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		subtotal = subtotal.Add(lineSubtotal)
		resolved = append(resolved, resolvedItem{
			productoID: pid,
			nombre:     p.Nombre,
			precio:     p.Precio,
			cantidad:   item.Cantidad,
			subtotal:   lineSubtotal,
			stockAntes: p.Stock,
		})
	}

	descuento, err := computeDescuento(subtotal, req.Descuento)
	if err != nil {
		return nil, err
	}
	total := subtotal.Sub(descuento)

	// 4. Payment validation per method
	var montoRecibido, vuelto *decimal.Decimal
	var tipoTarjeta *string
	var clienteID *uuid.UUID

	switch req.MetodoPago {
	case "efectivo":
		if req.MontoRecibido == nil || req.MontoRecibido.LessThan(total) {
			return nil, ErrMontoInsuficiente
		}
		v := req.MontoRecibido.Sub(total)
		montoRecibido = req.MontoRecibido
		vuelto = &v
	case "tarjeta":
		tt := "debito"
		if req.TipoTarjeta != nil {
			tt = *req.TipoTarjeta
		}
		tipoTarjeta = &tt
	case "cuenta_corriente":
		if req.ClienteID == nil {
			return nil, errors.New("cuenta corriente requiere un cliente")
		}
	}

	if req.ClienteID != nil {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, fmt.Errorf("cliente_id inválido: %w", err)
		}
		cliente, err := s.clienteRepo.FindByID(ctx, cid)
		if err != nil {
			return nil, errors.New("cliente no encontrado")
		}
		if !cliente.Activo {
			return nil, errors.New("el cliente está inactivo")
		}
		clienteID = &cid
	}

	// 5. ACID transaction
	var venta model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticketNum, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}

		venta = model.Venta{
			NumeroTicket:  ticketNum,
			TurnoID:       turno.ID,
			EmpleadoID:    empleadoID,
			ClienteID:     clienteID,
			Subtotal:      subtotal,
			Descuento:     descuento,
			Total:         total,
			MetodoPago:    req.MetodoPago,
			TipoTarjeta:   tipoTarjeta,
			MontoRecibido: montoRecibido,
			Vuelto:        vuelto,
			Estado:        "completada",
			OperacionID:   req.OperacionID,
		}
		for _, r := range resolved {
			venta.Items = append(venta.Items, model.VentaItem{
				ProductoID:     r.productoID,
				NombreProducto: r.nombre,
				Cantidad:       r.cantidad,
				PrecioUnitario: r.precio,
				Subtotal:       r.subtotal,
			})
		}

		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		// Guarded decrement: fails the whole TX on insufficient stock.
		for _, r := range resolved {
			if err := s.productoRepo.DescontarStockTx(tx, r.productoID, r.cantidad); err != nil {
				return fmt.Errorf("stock insuficiente para %s: %w", r.nombre, err)
			}
			ventaRef := venta.ID
			mov := &model.MovimientoStock{
				ProductoID:    r.productoID,
				Tipo:          "venta",
				Cantidad:      -r.cantidad,
				StockAnterior: r.stockAntes,
				StockNuevo:    r.stockAntes - r.cantidad,
				Motivo:        fmt.Sprintf("Venta #%d", ticketNum),
				ReferenciaID:  &ventaRef,
			}
			if err := s.productoRepo.RegistrarMovimientoTx(tx, mov); err != nil {
				return err
			}
		}

		// Running shift totals — atomic SQL increment, same TX as the sale.
		if err := s.turnoRepo.IncrementarTotalesTx(tx, turno.ID, total, 1); err != nil {
			return err
		}

		// Cuenta corriente: the sale charges the customer's balance.
		if req.MetodoPago == "cuenta_corriente" && clienteID != nil {
			if err := s.clienteRepo.AjustarSaldoTx(tx, *clienteID, total.Neg()); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// 6. Post-commit side effects (best-effort — the sale already stands)
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueTicket(ctx, worker.TicketJobPayload{VentaID: venta.ID.String()})
	}
	if s.hub != nil {
		s.hub.Broadcast(ws.Event{Type: ws.EventVentaRegistrada, Payload: map[string]interface{}{
			"venta_id":      venta.ID.String(),
			"numero_ticket": venta.NumeroTicket,
			"total":         venta.Total,
			"metodo_pago":   venta.MetodoPago,
		}})
	}
	if s.cache != nil {
		s.cache.InvalidateTag(ctx, cacheTagReportes)
	}

	return ventaToResponse(&venta), nil
}

// ── AnularVenta ───────────────────────────────────────────────────────────────
// Reverses the sale: restores stock, rolls back the turno totals when the
// shift is still open, and credits the cuenta corriente if it was charged.

func (s *ventaService) AnularVenta(ctx context.Context, id uuid.UUID, motivo string) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("venta no encontrada")
	}
	if venta.Estado == "anulada" {
		return errors.New("la venta ya está anulada")
	}

	turno, turnoErr := s.turnoRepo.FindByID(ctx, venta.TurnoID)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, item := range venta.Items {
			// Snapshot the stock BEFORE restoring so the audit row records
			// the actual transition.
			stockAntes := 0
			if p, err := s.productoRepo.FindByID(ctx, item.ProductoID); err == nil {
				stockAntes = p.Stock
			}
			if err := s.productoRepo.RestaurarStockTx(tx, item.ProductoID, item.Cantidad); err != nil {
				return err
			}
			ventaRef := venta.ID
			mov := &model.MovimientoStock{
				ProductoID:    item.ProductoID,
				Tipo:          "restore_anulacion",
				Cantidad:      item.Cantidad,
				StockAnterior: stockAntes,
				StockNuevo:    stockAntes + item.Cantidad,
				Motivo:        fmt.Sprintf("Anulación venta #%d — %s", venta.NumeroTicket, motivo),
				ReferenciaID:  &ventaRef,
			}
			if err := s.productoRepo.RegistrarMovimientoTx(tx, mov); err != nil {
				return err
			}
		}

		// Only an open shift keeps running totals; a closed one is frozen
		// by its arqueo.
		if turnoErr == nil && turno.Estado == "activo" {
			if err := s.turnoRepo.IncrementarTotalesTx(tx, turno.ID, venta.Total.Neg(), -1); err != nil {
				return err
			}
		}

		if venta.MetodoPago == "cuenta_corriente" && venta.ClienteID != nil {
			if err := s.clienteRepo.AjustarSaldoTx(tx, *venta.ClienteID, venta.Total); err != nil {
				return err
			}
		}

		return s.repo.UpdateEstadoTx(tx, id, "anulada")
	})
	if txErr != nil {
		return txErr
	}

	if s.hub != nil {
		s.hub.Broadcast(ws.Event{Type: ws.EventVentaAnulada, Payload: map[string]interface{}{
			"venta_id":      venta.ID.String(),
			"numero_ticket": venta.NumeroTicket,
			"motivo":        motivo,
		}})
	}
	if s.cache != nil {
		s.cache.InvalidateTag(ctx, cacheTagReportes)
	}
	return nil
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("venta no encontrada")
	}
	return ventaToResponse(venta), nil
}

// ListVentas returns a paginated list of sales, filtered by date and estado.
// Default filter: today's sales, any estado.
func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.ItemVentaResponse{
			ProductoID:     item.ProductoID.String(),
			Nombre:         item.NombreProducto,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	var clienteID *string
	if v.ClienteID != nil {
		s := v.ClienteID.String()
		clienteID = &s
	}
	return &dto.VentaResponse{
		ID:            v.ID.String(),
		NumeroTicket:  v.NumeroTicket,
		TurnoID:       v.TurnoID.String(),
		EmpleadoID:    v.EmpleadoID.String(),
		ClienteID:     clienteID,
		Items:         items,
		Subtotal:      v.Subtotal,
		Descuento:     v.Descuento,
		Total:         v.Total,
		MetodoPago:    v.MetodoPago,
		TipoTarjeta:   v.TipoTarjeta,
		MontoRecibido: v.MontoRecibido,
		Vuelto:        v.Vuelto,
		Estado:        v.Estado,
		CreatedAt:     v.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
