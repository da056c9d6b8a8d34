package worker

// reconcile_cron.go
// Background goroutine that periodically recomputes the running totals of
// the active turno from the ventas table. The sale transaction already keeps
// them in sync; this corrects any drift left by manual interventions.

import (
	"context"
	"time"

	"tiendapos/internal/repository"

	"github.com/rs/zerolog/log"
)

const reconcileTickInterval = 60 * time.Second

// ReconcileCronConfig holds all dependencies for the reconciliation goroutine.
type ReconcileCronConfig struct {
	TurnoRepo repository.TurnoRepository
	VentaRepo repository.VentaRepository
}

// StartReconcileCron launches a background goroutine that ticks every minute
// and re-derives total_ventas/cantidad_ventas for the active turno.
// It respects the context for graceful shutdown.
func StartReconcileCron(ctx context.Context, cfg ReconcileCronConfig) {
	go func() {
		ticker := time.NewTicker(reconcileTickInterval)
		defer ticker.Stop()

		log.Info().Msg("reconcile_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reconcile_cron: shutting down")
				return
			case <-ticker.C:
				reconcileActivo(ctx, cfg)
			}
		}
	}()
}

func reconcileActivo(ctx context.Context, cfg ReconcileCronConfig) {
	turno, err := cfg.TurnoRepo.FindActivo(ctx)
	if err != nil {
		return // no active turno
	}

	total, cantidad, err := cfg.VentaRepo.TotalesPorTurno(ctx, turno.ID)
	if err != nil {
		log.Error().Err(err).Msg("reconcile_cron: failed to recompute totals")
		return
	}

	if turno.TotalVentas.Equal(total) && turno.CantidadVentas == cantidad {
		return
	}

	log.Warn().
		Str("turno_id", turno.ID.String()).
		Str("total_registrado", turno.TotalVentas.String()).
		Str("total_real", total.String()).
		Int("cantidad_registrada", turno.CantidadVentas).
		Int("cantidad_real", cantidad).
		Msg("reconcile_cron: drift detected, correcting turno totals")

	if err := cfg.TurnoRepo.SetTotales(ctx, turno.ID, total, cantidad); err != nil {
		log.Error().Err(err).Msg("reconcile_cron: failed to correct totals")
	}
}
