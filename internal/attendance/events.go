package attendance

import (
	"context"
	"log"

	"github.com/CHGL17/AsistenciasREST/internal/queue"
)

// EventTypeChanged marks a record-change message on the queue.
const EventTypeChanged = "asistencia_cambiada"

// QueueEvents publishes record-change events to a queue for the cache
// maintenance worker. Publish failures are logged, never surfaced; losing an
// event only delays a cache refresh.
type QueueEvents struct {
	q queue.Queue
}

// NewQueueEvents wraps a queue as an Events sink.
func NewQueueEvents(q queue.Queue) *QueueEvents {
	return &QueueEvents{q: q}
}

// RecordChanged publishes one change notification.
func (e *QueueEvents) RecordChanged(ctx context.Context, id string) {
	if err := e.q.Publish(ctx, queue.Message{Type: EventTypeChanged, ID: id}); err != nil {
		log.Printf("event publish failed for %s: %v", id, err)
	}
}
