package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAlertas  = "jobs:alertas"
	QueueReportes = "jobs:reportes"
)

const maxJobAttempts = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Processor handles one job payload. A returned error triggers a retry; after
// maxJobAttempts the job lands in the DLQ.
type Processor func(ctx context.Context, raw json.RawMessage) error

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// AlertaJobPayload asks the alert worker to re-check these products.
type AlertaJobPayload struct {
	ProductoIDs []string `json:"producto_ids"`
}

// CierreJobPayload asks the report worker to render and mail one close report.
type CierreJobPayload struct {
	CuadreID string `json:"cuadre_id"`
}

// EnqueueAlertaStock pushes a low-stock check job to Redis.
func (d *Dispatcher) EnqueueAlertaStock(ctx context.Context, payload AlertaJobPayload) error {
	return d.enqueue(ctx, QueueAlertas, "alerta_stock", payload)
}

// EnqueueCierreCaja pushes a drawer-close report job to Redis.
func (d *Dispatcher) EnqueueCierreCaja(ctx context.Context, payload CierreJobPayload) error {
	return d.enqueue(ctx, QueueReportes, "cierre_caja", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the registered
// queues. Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, processors map[string]Processor) {
	queues := make([]string, 0, len(processors))
	for q := range processors {
		queues = append(queues, q)
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, queues, processors)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, queues []string, processors map[string]Processor) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[0], result[1], processors)
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, queue, raw string, processors map[string]Processor) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	proc, ok := processors[queue]
	if !ok {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no processor registered for queue")
		return
	}

	var lastErr error
	for attempt := 1; attempt <= maxJobAttempts; attempt++ {
		if lastErr = proc(ctx, job.Payload); lastErr == nil {
			return
		}
		log.Warn().
			Str("queue", queue).
			Str("type", job.Type).
			Int("attempt", attempt).
			Err(lastErr).
			Msg("job attempt failed")
		if attempt < maxJobAttempts {
			// 1s, 2s … (exponential backoff)
			wait := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}

	SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, lastErr.Error(), maxJobAttempts)
}
