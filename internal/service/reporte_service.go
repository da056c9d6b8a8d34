package service

import (
	"context"

	"tiendapos/internal/dto"
	"tiendapos/internal/infra"
	"tiendapos/internal/repository"
)

type ReporteService interface {
	ResumenVentas(ctx context.Context, filter dto.RangoReporteFilter) (*dto.ResumenVentasResponse, error)
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

type reporteService struct {
	ventaRepo    repository.VentaRepository
	turnoRepo    repository.TurnoRepository
	productoRepo repository.ProductoRepository
	cache        *infra.Cache
}

func NewReporteService(
	ventaRepo repository.VentaRepository,
	turnoRepo repository.TurnoRepository,
	productoRepo repository.ProductoRepository,
	cache *infra.Cache,
) ReporteService {
	return &reporteService{
		ventaRepo:    ventaRepo,
		turnoRepo:    turnoRepo,
		productoRepo: productoRepo,
		cache:        cache,
	}
}

// ResumenVentas aggregates sales over a date range. The response is cached
// in Redis under a structured key so a sale write can invalidate the whole
// tag without substring matching.
func (s *reporteService) ResumenVentas(ctx context.Context, filter dto.RangoReporteFilter) (*dto.ResumenVentasResponse, error) {
	key := cacheTagReportes + ":resumen:" + filter.Desde + ":" + filter.Hasta

	var cached dto.ResumenVentasResponse
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	resumen, err := s.ventaRepo.ResumenRango(ctx, filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, resumen)
	}
	return resumen, nil
}

// Dashboard returns the front-page snapshot: today's totals, the active
// turno and the low-stock count. Short-lived data, cached under its own key.
func (s *reporteService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	key := cacheTagReportes + ":dashboard"

	var cached dto.DashboardResponse
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	total, cantidad, err := s.ventaRepo.TotalesHoy(ctx)
	if err != nil {
		return nil, err
	}
	stockBajo, err := s.productoRepo.CountStockBajo(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		VentasHoy:      total,
		CantidadHoy:    cantidad,
		StockBajoCount: stockBajo,
	}
	if turno, err := s.turnoRepo.FindActivo(ctx); err == nil {
		resp.TurnoActivo = turnoToResponse(turno)
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, resp)
	}
	return resp, nil
}
