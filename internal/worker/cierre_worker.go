package worker

// cierre_worker.go
// Processes drawer-close report jobs from QueueReportes: renders the PDF
// summary of a finalized session and mails it to the alert address.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oajacap/kissu/internal/infra"
	"github.com/oajacap/kissu/internal/model"
	"github.com/oajacap/kissu/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CierreWorker renders and mails close reports.
type CierreWorker struct {
	cajaRepo    repository.CajaRepository
	gastoRepo   repository.GastoRepository
	mailer      *infra.Mailer
	cb          *infra.CircuitBreaker
	storagePath string
	alertEmail  string
}

func NewCierreWorker(
	cajaRepo repository.CajaRepository,
	gastoRepo repository.GastoRepository,
	mailer *infra.Mailer,
	cb *infra.CircuitBreaker,
	storagePath string,
	alertEmail string,
) *CierreWorker {
	return &CierreWorker{
		cajaRepo:    cajaRepo,
		gastoRepo:   gastoRepo,
		mailer:      mailer,
		cb:          cb,
		storagePath: storagePath,
		alertEmail:  alertEmail,
	}
}

// Process fetches the closed session, renders its PDF, and mails it. The PDF
// stays on disk either way, so a mail failure never loses the report.
func (w *CierreWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload CierreJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("cierre_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}

	cuadreID, err := uuid.Parse(payload.CuadreID)
	if err != nil {
		log.Error().Str("cuadre_id", payload.CuadreID).Msg("cierre_worker: invalid cuadre_id")
		return nil
	}

	cuadre, err := w.cajaRepo.FindByID(ctx, cuadreID)
	if err != nil {
		log.Error().Err(err).Str("cuadre_id", payload.CuadreID).Msg("cierre_worker: cuadre not found")
		return err
	}
	if cuadre.Estado != model.CajaCerrada {
		log.Warn().Str("cuadre_id", payload.CuadreID).Msg("cierre_worker: cuadre not closed yet — skipping")
		return nil
	}

	// Expenses recorded during the session window
	hasta := time.Now()
	if cuadre.FechaCierre != nil {
		hasta = *cuadre.FechaCierre
	}
	gastos, err := w.gastoRepo.ListEntre(ctx, cuadre.FechaApertura, hasta)
	if err != nil {
		log.Warn().Err(err).Msg("cierre_worker: failed to load gastos — report will omit them")
		gastos = nil
	}

	pdfPath, err := infra.GenerateCierrePDF(cuadre, gastos, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("cuadre_id", payload.CuadreID).Msg("cierre_worker: PDF generation failed")
		return err
	}
	log.Info().Str("pdf", pdfPath).Str("cuadre_id", payload.CuadreID).Msg("cierre_worker: PDF generated")

	if w.alertEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("Cierre de caja — %s", cuadre.FechaApertura.Format("02/01/2006"))
	body := fmt.Sprintf(
		"Adjunto el reporte de cierre de caja.\nMonto esperado: Q %s",
		cuadre.MontoEsperado().StringFixed(2),
	)
	err = w.cb.Execute(func() error {
		return w.mailer.Send(w.alertEmail, subject, body, pdfPath)
	})
	if err != nil {
		log.Error().Err(err).Msg("cierre_worker: failed to mail report")
		return err
	}

	log.Info().Str("cuadre_id", payload.CuadreID).Msg("cierre_worker: report sent")
	return nil
}
