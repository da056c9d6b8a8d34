package worker

// ticket_worker.go
// Generates ticket PDFs off the request path. The sale transaction commits
// first; the receipt is produced asynchronously and stored on disk.

import (
	"context"
	"encoding/json"
	"fmt"

	"tiendapos/internal/infra"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TicketJobPayload references the sale whose receipt should be rendered.
type TicketJobPayload struct {
	VentaID string `json:"venta_id"`
}

type TicketWorker struct {
	ventaRepo   repository.VentaRepository
	storagePath string
}

func NewTicketWorker(ventaRepo repository.VentaRepository, storagePath string) *TicketWorker {
	return &TicketWorker{ventaRepo: ventaRepo, storagePath: storagePath}
}

func (w *TicketWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload TicketJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	id, err := uuid.Parse(payload.VentaID)
	if err != nil {
		return fmt.Errorf("ticket_worker: invalid venta_id: %w", err)
	}

	venta, err := w.ventaRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ticket_worker: venta %s: %w", payload.VentaID, err)
	}

	path, err := infra.GenerateTicketPDF(venta, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Int("ticket", venta.NumeroTicket).Str("path", path).Msg("ticket_worker: PDF generated")
	return nil
}
