package worker

// alerta_worker.go
// Processes low-stock check jobs from QueueAlertas. After a sale or stock
// exit touches products, this worker re-reads them and mails a digest of the
// ones at or below their minimum to the configured alert address.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oajacap/kissu/internal/infra"
	"github.com/oajacap/kissu/internal/model"
	"github.com/oajacap/kissu/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AlertaWorker checks stock levels and sends digest emails through the
// circuit-broken mailer.
type AlertaWorker struct {
	productoRepo repository.ProductoRepository
	mailer       *infra.Mailer
	cb           *infra.CircuitBreaker
	alertEmail   string
}

func NewAlertaWorker(productoRepo repository.ProductoRepository, mailer *infra.Mailer, cb *infra.CircuitBreaker, alertEmail string) *AlertaWorker {
	return &AlertaWorker{productoRepo: productoRepo, mailer: mailer, cb: cb, alertEmail: alertEmail}
}

// Process re-reads the referenced products and mails one digest covering all
// of them that are at or below their minimum. Products already restocked by
// the time the job runs are skipped, so stale alerts never go out.
func (w *AlertaWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload AlertaJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alerta_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}
	if w.alertEmail == "" {
		log.Debug().Msg("alerta_worker: no alert email configured — skipping")
		return nil
	}

	var bajos []model.Producto
	for _, idStr := range payload.ProductoIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		var p *model.Producto
		err = infra.RetryRead(ctx, 2, func() error {
			var e error
			p, e = w.productoRepo.FindByID(ctx, id)
			return e
		})
		if err != nil {
			log.Warn().Str("producto_id", idStr).Err(err).Msg("alerta_worker: producto no encontrado")
			continue
		}
		if p.Activo && p.StockActual <= p.StockMinimo {
			bajos = append(bajos, *p)
		}
	}

	if len(bajos) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("Los siguientes productos están en o por debajo de su stock mínimo:\n\n")
	for _, p := range bajos {
		fmt.Fprintf(&b, "  %s — %s: %d unidades (mínimo %d)\n", p.Codigo, p.Nombre, p.StockActual, p.StockMinimo)
	}

	subject := fmt.Sprintf("Alerta de stock bajo — %d producto(s)", len(bajos))
	err := w.cb.Execute(func() error {
		return w.mailer.Send(w.alertEmail, subject, b.String(), "")
	})
	if err != nil {
		log.Error().Err(err).Msg("alerta_worker: failed to send digest")
		return err
	}

	log.Info().Int("productos", len(bajos)).Msg("alerta_worker: digest sent")
	return nil
}
