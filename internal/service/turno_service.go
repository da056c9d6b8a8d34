package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/repository"
	"tiendapos/internal/worker"
	"tiendapos/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrTurnoYaAbierto = errors.New("ya existe un turno activo")
	ErrTurnoCerrado   = errors.New("el turno ya está cerrado")
)

// Clasificación del arqueo por desvío porcentual sobre el total esperado.
var (
	umbralAdvertencia = decimal.NewFromInt(1) // > 1% = advertencia
	umbralCritico     = decimal.NewFromInt(5) // > 5% = critico
)

type TurnoService interface {
	Abrir(ctx context.Context, empleadoID uuid.UUID, empleadoNombre string, req dto.AbrirTurnoRequest) (*dto.TurnoResponse, error)
	ObtenerActivo(ctx context.Context) (*dto.TurnoResponse, error)
	Historial(ctx context.Context, page, limit int) ([]dto.TurnoResponse, int64, error)

	RegistrarMovimiento(ctx context.Context, empleadoID uuid.UUID, req dto.MovimientoCajaRequest) (*dto.MovimientoCajaResponse, error)
	EliminarMovimiento(ctx context.Context, id uuid.UUID) error

	// RealizarArqueo reconciles the blind count against expectations and
	// closes the turno.
	RealizarArqueo(ctx context.Context, req dto.ArqueoRequest) (*dto.ArqueoResponse, error)
	ReporteTurno(ctx context.Context, turnoID uuid.UUID) (*dto.ReporteTurnoResponse, error)
}

type turnoService struct {
	repo       repository.TurnoRepository
	ventaRepo  repository.VentaRepository
	dispatcher *worker.Dispatcher
	hub        *ws.Hub
	alertEmail string
}

func NewTurnoService(
	repo repository.TurnoRepository,
	ventaRepo repository.VentaRepository,
	dispatcher *worker.Dispatcher,
	hub *ws.Hub,
	alertEmail string,
) TurnoService {
	return &turnoService{
		repo:       repo,
		ventaRepo:  ventaRepo,
		dispatcher: dispatcher,
		hub:        hub,
		alertEmail: alertEmail,
	}
}

func (s *turnoService) Abrir(ctx context.Context, empleadoID uuid.UUID, empleadoNombre string, req dto.AbrirTurnoRequest) (*dto.TurnoResponse, error) {
	t := &model.Turno{
		Tipo:           req.Tipo,
		EmpleadoID:     empleadoID,
		EmpleadoNombre: empleadoNombre,
		MontoApertura:  req.MontoApertura,
		TotalVentas:    decimal.Zero,
		Estado:         "activo",
		AbiertoEn:      time.Now(),
	}
	// The partial unique index makes a concurrent second open fail here.
	if err := s.repo.CreateTurno(ctx, t); err != nil {
		return nil, ErrTurnoYaAbierto
	}

	if s.hub != nil {
		s.hub.Broadcast(ws.Event{Type: ws.EventTurnoAbierto, Payload: map[string]interface{}{
			"turno_id": t.ID.String(),
			"tipo":     t.Tipo,
			"empleado": t.EmpleadoNombre,
		}})
	}
	return turnoToResponse(t), nil
}

func (s *turnoService) ObtenerActivo(ctx context.Context) (*dto.TurnoResponse, error) {
	t, err := s.repo.FindActivo(ctx)
	if err != nil {
		return nil, ErrSinTurnoActivo
	}
	return turnoToResponse(t), nil
}

func (s *turnoService) Historial(ctx context.Context, page, limit int) ([]dto.TurnoResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	turnos, total, err := s.repo.ListCerrados(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.TurnoResponse, len(turnos))
	for i := range turnos {
		resp[i] = *turnoToResponse(&turnos[i])
	}
	return resp, total, nil
}

func (s *turnoService) RegistrarMovimiento(ctx context.Context, empleadoID uuid.UUID, req dto.MovimientoCajaRequest) (*dto.MovimientoCajaResponse, error) {
	turno, err := s.repo.FindActivo(ctx)
	if err != nil {
		return nil, ErrSinTurnoActivo
	}

	m := &model.MovimientoCaja{
		TurnoID:    turno.ID,
		Tipo:       req.Tipo,
		Monto:      req.Monto,
		Concepto:   req.Concepto,
		EmpleadoID: empleadoID,
		Estado:     "activa",
	}
	if err := s.repo.CreateMovimiento(ctx, m); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(ws.Event{Type: ws.EventMovimientoCaja, Payload: map[string]interface{}{
			"movimiento_id": m.ID.String(),
			"tipo":          m.Tipo,
			"monto":         m.Monto,
			"concepto":      m.Concepto,
		}})
	}
	return movimientoToResponse(m), nil
}

// EliminarMovimiento flips the movement to estado='eliminada'. Only
// movements of the active turno can be removed; closed shifts are frozen.
func (s *turnoService) EliminarMovimiento(ctx context.Context, id uuid.UUID) error {
	m, err := s.repo.FindMovimientoByID(ctx, id)
	if err != nil {
		return errors.New("movimiento no encontrado")
	}
	if m.Estado == "eliminada" {
		return errors.New("el movimiento ya fue eliminado")
	}
	turno, err := s.repo.FindByID(ctx, m.TurnoID)
	if err != nil || turno.Estado != "activo" {
		return ErrTurnoCerrado
	}
	return s.repo.SoftDeleteMovimiento(ctx, id)
}

// calcularEsperado derives the expected amounts per payment method:
// efectivo = apertura + ventas en efectivo + ingresos − egresos; every other
// bucket is just its sales total.
func calcularEsperado(apertura decimal.Decimal, ventas map[string]decimal.Decimal, ingresos, egresos decimal.Decimal) dto.MontosPorMetodo {
	esperado := dto.MontosPorMetodo{
		Efectivo:       apertura.Add(ventas[repository.MetodoEfectivo]).Add(ingresos).Sub(egresos),
		TarjetaDebito:  ventas[repository.MetodoTarjetaDebito],
		TarjetaCredito: ventas[repository.MetodoTarjetaCredito],
		Transferencia:  ventas[repository.MetodoTransferencia],
		MercadoPago:    ventas[repository.MetodoMercadoPago],
	}
	esperado.Sum()
	return esperado
}

// clasificarDesvio buckets |diferencia| as a percentage of the expected
// total: ≤1% normal, ≤5% advertencia, above that critico. A zero expected
// total with any difference is always critico.
func clasificarDesvio(esperadoTotal, diferenciaTotal decimal.Decimal) string {
	if diferenciaTotal.IsZero() {
		return "normal"
	}
	if esperadoTotal.IsZero() {
		return "critico"
	}
	pct := diferenciaTotal.Abs().Div(esperadoTotal.Abs()).Mul(decimal.NewFromInt(100))
	switch {
	case pct.LessThanOrEqual(umbralAdvertencia):
		return "normal"
	case pct.LessThanOrEqual(umbralCritico):
		return "advertencia"
	default:
		return "critico"
	}
}

// ── RealizarArqueo ────────────────────────────────────────────────────────────
// The cashier declares the physically counted money per method without
// seeing the expectations (blind count). The service computes expected
// amounts from the turno's sales and manual movements, derives per-method
// differences, classifies the deviation, persists the arqueo and closes the
// turno. A critical deviation requires observaciones and triggers an alert
// email to the configured address.

func (s *turnoService) RealizarArqueo(ctx context.Context, req dto.ArqueoRequest) (*dto.ArqueoResponse, error) {
	turno, err := s.repo.FindActivo(ctx)
	if err != nil {
		return nil, ErrSinTurnoActivo
	}

	ventas, err := s.ventaRepo.SumPorMetodo(ctx, turno.ID)
	if err != nil {
		return nil, err
	}
	ingresos, egresos, err := s.repo.SumMovimientos(ctx, turno.ID)
	if err != nil {
		return nil, err
	}

	esperado := calcularEsperado(turno.MontoApertura, ventas, ingresos, egresos)

	contado := dto.MontosPorMetodo{
		Efectivo:       req.Contado.Efectivo,
		TarjetaDebito:  req.Contado.TarjetaDebito,
		TarjetaCredito: req.Contado.TarjetaCredito,
		Transferencia:  req.Contado.Transferencia,
		MercadoPago:    req.Contado.MercadoPago,
	}
	contado.Sum()

	diferencia := dto.MontosPorMetodo{
		Efectivo:       contado.Efectivo.Sub(esperado.Efectivo),
		TarjetaDebito:  contado.TarjetaDebito.Sub(esperado.TarjetaDebito),
		TarjetaCredito: contado.TarjetaCredito.Sub(esperado.TarjetaCredito),
		Transferencia:  contado.Transferencia.Sub(esperado.Transferencia),
		MercadoPago:    contado.MercadoPago.Sub(esperado.MercadoPago),
	}
	diferencia.Sum()

	estado := "correcto"
	if !diferencia.Total.IsZero() {
		estado = "con_diferencia"
	}
	clasificacion := clasificarDesvio(esperado.Total, diferencia.Total)

	if clasificacion == "critico" && (req.Observaciones == nil || *req.Observaciones == "") {
		return nil, errors.New("una diferencia crítica requiere observaciones")
	}

	arqueo := &model.ArqueoCaja{
		TurnoID:               turno.ID,
		EfectivoEsperado:      esperado.Efectivo,
		EfectivoContado:       contado.Efectivo,
		DebitoEsperado:        esperado.TarjetaDebito,
		DebitoContado:         contado.TarjetaDebito,
		CreditoEsperado:       esperado.TarjetaCredito,
		CreditoContado:        contado.TarjetaCredito,
		TransferenciaEsperado: esperado.Transferencia,
		TransferenciaContado:  contado.Transferencia,
		MercadoPagoEsperado:   esperado.MercadoPago,
		MercadoPagoContado:    contado.MercadoPago,
		DiferenciaTotal:       diferencia.Total,
		Estado:                estado,
		Clasificacion:         clasificacion,
		Observaciones:         req.Observaciones,
	}
	// The arqueo row and the turno close commit or roll back together: a
	// failed close never leaves an orphaned arqueo behind for a retry to
	// duplicate.
	now := time.Now()
	cerrado := *turno
	cerrado.Estado = "cerrado"
	cerrado.CerradoEn = &now
	cerrado.Observaciones = req.Observaciones
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateArqueoTx(tx, arqueo); err != nil {
			return err
		}
		return s.repo.UpdateTurnoTx(tx, &cerrado)
	})
	if txErr != nil {
		return nil, txErr
	}
	turno = &cerrado

	if clasificacion == "critico" && s.dispatcher != nil && s.alertEmail != "" {
		_ = s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
			ToEmail: s.alertEmail,
			Subject: fmt.Sprintf("Arqueo crítico — turno %s", turno.ID),
			Body: fmt.Sprintf(
				"El arqueo del turno %s (%s, %s) cerró con una diferencia de $%s sobre $%s esperados.\nObservaciones: %s",
				turno.ID, turno.Tipo, turno.EmpleadoNombre,
				diferencia.Total.StringFixed(2), esperado.Total.StringFixed(2),
				*req.Observaciones),
		})
	}
	if s.hub != nil {
		s.hub.Broadcast(ws.Event{Type: ws.EventTurnoCerrado, Payload: map[string]interface{}{
			"turno_id":      turno.ID.String(),
			"estado":        estado,
			"clasificacion": clasificacion,
			"diferencia":    diferencia.Total,
		}})
	}

	return &dto.ArqueoResponse{
		TurnoID:       turno.ID.String(),
		Esperado:      esperado,
		Contado:       contado,
		Diferencia:    diferencia,
		Estado:        estado,
		Clasificacion: clasificacion,
		Observaciones: req.Observaciones,
	}, nil
}

// ReporteTurno assembles the full session report: expectations per method,
// active manual movements and the arqueo when the turno was already closed.
func (s *turnoService) ReporteTurno(ctx context.Context, turnoID uuid.UUID) (*dto.ReporteTurnoResponse, error) {
	turno, err := s.repo.FindByID(ctx, turnoID)
	if err != nil {
		return nil, errors.New("turno no encontrado")
	}

	ventas, err := s.ventaRepo.SumPorMetodo(ctx, turno.ID)
	if err != nil {
		return nil, err
	}
	ingresos, egresos, err := s.repo.SumMovimientos(ctx, turno.ID)
	if err != nil {
		return nil, err
	}
	esperado := calcularEsperado(turno.MontoApertura, ventas, ingresos, egresos)

	movimientos, err := s.repo.ListMovimientos(ctx, turno.ID)
	if err != nil {
		return nil, err
	}
	movs := make([]dto.MovimientoCajaResponse, len(movimientos))
	for i := range movimientos {
		movs[i] = *movimientoToResponse(&movimientos[i])
	}

	rep := &dto.ReporteTurnoResponse{
		Turno:       *turnoToResponse(turno),
		Esperado:    esperado,
		Movimientos: movs,
	}

	if arqueo, err := s.repo.FindArqueoByTurno(ctx, turno.ID); err == nil {
		rep.Arqueo = arqueoToResponse(arqueo)
	}
	return rep, nil
}

func turnoToResponse(t *model.Turno) *dto.TurnoResponse {
	resp := &dto.TurnoResponse{
		ID:             t.ID.String(),
		Tipo:           t.Tipo,
		EmpleadoNombre: t.EmpleadoNombre,
		MontoApertura:  t.MontoApertura,
		TotalVentas:    t.TotalVentas,
		CantidadVentas: t.CantidadVentas,
		Estado:         t.Estado,
		AbiertoEn:      t.AbiertoEn.Format(time.RFC3339),
		Observaciones:  t.Observaciones,
	}
	if t.CerradoEn != nil {
		s := t.CerradoEn.Format(time.RFC3339)
		resp.CerradoEn = &s
	}
	return resp
}

func movimientoToResponse(m *model.MovimientoCaja) *dto.MovimientoCajaResponse {
	return &dto.MovimientoCajaResponse{
		ID:        m.ID.String(),
		TurnoID:   m.TurnoID.String(),
		Tipo:      m.Tipo,
		Monto:     m.Monto,
		Concepto:  m.Concepto,
		Estado:    m.Estado,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func arqueoToResponse(a *model.ArqueoCaja) *dto.ArqueoResponse {
	esperado := dto.MontosPorMetodo{
		Efectivo:       a.EfectivoEsperado,
		TarjetaDebito:  a.DebitoEsperado,
		TarjetaCredito: a.CreditoEsperado,
		Transferencia:  a.TransferenciaEsperado,
		MercadoPago:    a.MercadoPagoEsperado,
	}
	esperado.Sum()
	contado := dto.MontosPorMetodo{
		Efectivo:       a.EfectivoContado,
		TarjetaDebito:  a.DebitoContado,
		TarjetaCredito: a.CreditoContado,
		Transferencia:  a.TransferenciaContado,
		MercadoPago:    a.MercadoPagoContado,
	}
	contado.Sum()
	diferencia := dto.MontosPorMetodo{
		Efectivo:       contado.Efectivo.Sub(esperado.Efectivo),
		TarjetaDebito:  contado.TarjetaDebito.Sub(esperado.TarjetaDebito),
		TarjetaCredito: contado.TarjetaCredito.Sub(esperado.TarjetaCredito),
		Transferencia:  contado.Transferencia.Sub(esperado.Transferencia),
		MercadoPago:    contado.MercadoPago.Sub(esperado.MercadoPago),
	}
	diferencia.Sum()
	return &dto.ArqueoResponse{
		TurnoID:       a.TurnoID.String(),
		Esperado:      esperado,
		Contado:       contado,
		Diferencia:    diferencia,
		Estado:        a.Estado,
		Clasificacion: a.Clasificacion,
		Observaciones: a.Observaciones,
	}
}
