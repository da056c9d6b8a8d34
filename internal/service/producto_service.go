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
)

// Cache tags for product data. Price checks are the hot path at the
// register, so barcode lookups are cached and invalidated on any write.
const (
	cacheTagPrecios  = "precios"
	cacheTagReportes = "reportes"
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error

	ConsultarPrecio(ctx context.Context, barcode string) (*dto.ConsultaPrecioResponse, error)
	AjustarStock(ctx context.Context, id uuid.UUID, empleadoID uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
	ListarMovimientos(ctx context.Context, id uuid.UUID, limit int) ([]model.MovimientoStock, error)
	ListarStockBajo(ctx context.Context) ([]dto.ProductoResponse, error)
}

type productoService struct {
	repo       repository.ProductoRepository
	cache      *infra.Cache
	hub        *ws.Hub
	dispatcher *worker.Dispatcher
	alertEmail string
}

func NewProductoService(
	repo repository.ProductoRepository,
	cache *infra.Cache,
	hub *ws.Hub,
	dispatcher *worker.Dispatcher,
	alertEmail string,
) ProductoService {
	return &productoService{
		repo:       repo,
		cache:      cache,
		hub:        hub,
		dispatcher: dispatcher,
		alertEmail: alertEmail,
	}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	p := &model.Producto{
		Nombre:       req.Nombre,
		CodigoBarras: req.CodigoBarras,
		Categoria:    req.Categoria,
		Precio:       req.Precio,
		Stock:        req.Stock,
		StockMinimo:  req.StockMinimo,
		UnidadMedida: req.UnidadMedida,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return productoToResponse(p), nil
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		data[i] = *productoToResponse(&productos[i])
	}
	return &dto.ProductoListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	if req.Nombre != "" {
		p.Nombre = req.Nombre
	}
	if req.CodigoBarras != nil {
		p.CodigoBarras = req.CodigoBarras
	}
	if req.Categoria != "" {
		p.Categoria = req.Categoria
	}
	if req.Precio != nil {
		p.Precio = *req.Precio
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.UnidadMedida != "" {
		p.UnidadMedida = req.UnidadMedida
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return productoToResponse(p), nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Reactivar(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ConsultarPrecio resolves a barcode to name/price/stock. Results are served
// from the Redis cache when possible; the key carries the barcode itself.
func (s *productoService) ConsultarPrecio(ctx context.Context, barcode string) (*dto.ConsultaPrecioResponse, error) {
	key := cacheTagPrecios + ":" + barcode

	var cached dto.ConsultaPrecioResponse
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	resp := &dto.ConsultaPrecioResponse{
		Nombre:          p.Nombre,
		Precio:          p.Precio,
		StockDisponible: p.Stock,
		Categoria:       p.Categoria,
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, resp)
	}
	return resp, nil
}

// AjustarStock applies a signed manual correction and records the movement.
func (s *productoService) AjustarStock(ctx context.Context, id uuid.UUID, empleadoID uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	if p.Stock+req.Delta < 0 {
		return nil, fmt.Errorf("el ajuste dejaría stock negativo (actual %d, delta %d)", p.Stock, req.Delta)
	}

	if err := s.repo.AjustarStock(ctx, id, req.Delta); err != nil {
		return nil, err
	}

	mov := &model.MovimientoStock{
		ProductoID:    id,
		Tipo:          "ajuste_manual",
		Cantidad:      req.Delta,
		StockAnterior: p.Stock,
		StockNuevo:    p.Stock + req.Delta,
		Motivo:        req.Motivo,
		EmpleadoID:    &empleadoID,
	}
	if err := s.repo.RegistrarMovimiento(ctx, mov); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.notifyStockBajo(ctx, p.Nombre, p.Stock+req.Delta, p.StockMinimo)

	p.Stock += req.Delta
	return productoToResponse(p), nil
}

func (s *productoService) ListarMovimientos(ctx context.Context, id uuid.UUID, limit int) ([]model.MovimientoStock, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.repo.ListMovimientos(ctx, id, limit)
}

func (s *productoService) ListarStockBajo(ctx context.Context) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.ListStockBajo(ctx)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		data[i] = *productoToResponse(&productos[i])
	}
	return data, nil
}

// notifyStockBajo emits the realtime event and queues an alert email when a
// product falls to or below its minimum.
func (s *productoService) notifyStockBajo(ctx context.Context, nombre string, stock, minimo int) {
	if stock > minimo {
		return
	}
	if s.hub != nil {
		s.hub.Broadcast(ws.Event{Type: ws.EventStockBajo, Payload: map[string]interface{}{
			"nombre": nombre,
			"stock":  stock,
			"minimo": minimo,
		}})
	}
	if s.dispatcher != nil && s.alertEmail != "" {
		_ = s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
			ToEmail: s.alertEmail,
			Subject: fmt.Sprintf("Stock bajo: %s", nombre),
			Body:    fmt.Sprintf("El producto %q quedó con %d unidades (mínimo %d).", nombre, stock, minimo),
		})
	}
}

func (s *productoService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateTag(ctx, cacheTagPrecios)
		s.cache.InvalidateTag(ctx, cacheTagReportes)
	}
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:           p.ID.String(),
		Nombre:       p.Nombre,
		CodigoBarras: p.CodigoBarras,
		Categoria:    p.Categoria,
		Precio:       p.Precio,
		Stock:        p.Stock,
		StockMinimo:  p.StockMinimo,
		UnidadMedida: p.UnidadMedida,
		Activo:       p.Activo,
	}
}
