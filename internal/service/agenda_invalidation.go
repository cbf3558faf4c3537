package service

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/clinic-agenda-api/pkg/jobs"
)

// InvalidationJobType tags agenda cache invalidation jobs.
const InvalidationJobType = "agenda.invalidate"

// InvalidationPayload lists the dates whose cached views are stale. All clears everything.
type InvalidationPayload struct {
	Dates []time.Time
	All   bool
}

type agendaInvalidator interface {
	InvalidateDates(ctx context.Context, dates ...time.Time) error
	InvalidateAll(ctx context.Context) error
}

// NewInvalidationHandler returns the queue handler that applies invalidation jobs.
func NewInvalidationHandler(agenda agendaInvalidator, metrics *MetricsService) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(InvalidationPayload)
		if !ok {
			metrics.RecordInvalidation("dropped")
			// Retrying cannot fix a malformed payload.
			return nil
		}
		var err error
		if payload.All {
			err = agenda.InvalidateAll(ctx)
		} else {
			err = agenda.InvalidateDates(ctx, payload.Dates...)
		}
		if err != nil {
			metrics.RecordInvalidation("error")
			return fmt.Errorf("invalidate agenda: %w", err)
		}
		metrics.RecordInvalidation("ok")
		return nil
	}
}
