package worker

import (
	"context"
	"testing"

	"tiendapos/internal/model"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// The fakes embed the interface so only the methods the cron touches need
// an implementation.

type fakeTurnoRepo struct {
	repository.TurnoRepository
	activo *model.Turno

	corrected         bool
	correctedTotal    decimal.Decimal
	correctedCantidad int
}

func (f *fakeTurnoRepo) FindActivo(_ context.Context) (*model.Turno, error) {
	if f.activo == nil {
		return nil, context.Canceled
	}
	return f.activo, nil
}

func (f *fakeTurnoRepo) SetTotales(_ context.Context, _ uuid.UUID, total decimal.Decimal, cantidad int) error {
	f.corrected = true
	f.correctedTotal = total
	f.correctedCantidad = cantidad
	return nil
}

type fakeVentaRepo struct {
	repository.VentaRepository
	total    decimal.Decimal
	cantidad int
}

func (f *fakeVentaRepo) TotalesPorTurno(_ context.Context, _ uuid.UUID) (decimal.Decimal, int, error) {
	return f.total, f.cantidad, nil
}

func TestReconcileActivo_CorrigeDesvio(t *testing.T) {
	turnoRepo := &fakeTurnoRepo{activo: &model.Turno{
		ID:             uuid.New(),
		Estado:         "activo",
		TotalVentas:    decimal.NewFromInt(2500), // drifted
		CantidadVentas: 1,
	}}
	ventaRepo := &fakeVentaRepo{total: decimal.NewFromInt(3000), cantidad: 2}

	reconcileActivo(context.Background(), ReconcileCronConfig{
		TurnoRepo: turnoRepo,
		VentaRepo: ventaRepo,
	})

	assert.True(t, turnoRepo.corrected)
	assert.Equal(t, "3000", turnoRepo.correctedTotal.String())
	assert.Equal(t, 2, turnoRepo.correctedCantidad)
}

func TestReconcileActivo_SinDesvioNoEscribe(t *testing.T) {
	turnoRepo := &fakeTurnoRepo{activo: &model.Turno{
		ID:             uuid.New(),
		Estado:         "activo",
		TotalVentas:    decimal.NewFromInt(3000),
		CantidadVentas: 2,
	}}
	ventaRepo := &fakeVentaRepo{total: decimal.NewFromInt(3000), cantidad: 2}

	reconcileActivo(context.Background(), ReconcileCronConfig{
		TurnoRepo: turnoRepo,
		VentaRepo: ventaRepo,
	})

	assert.False(t, turnoRepo.corrected)
}

func TestReconcileActivo_SinTurnoActivo(t *testing.T) {
	turnoRepo := &fakeTurnoRepo{}
	reconcileActivo(context.Background(), ReconcileCronConfig{
		TurnoRepo: turnoRepo,
		VentaRepo: &fakeVentaRepo{},
	})
	assert.False(t, turnoRepo.corrected)
}
