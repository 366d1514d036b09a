package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Malcolmik/ambo-backend/internal/api/metrics"
	"github.com/Malcolmik/ambo-backend/internal/core/domain"
	"github.com/Malcolmik/ambo-backend/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes persisted notifications to a fixed set of delivery
// workers using consistent hashing on the recipient, so one user's
// notifications arrive in the order they were created. Delivery is fail-open:
// a send error is logged and dropped, never retried into the caller.
type Dispatcher struct {
	workers []chan domain.Notification
	sender  ports.NotificationSender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.NotificationSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Notification, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a notification to the worker responsible for its recipient.
// When the worker's buffer is full the notification is dropped with a log
// line; the row is already persisted, so nothing is lost for the audit trail.
func (d *Dispatcher) Enqueue(n domain.Notification) {
	idx := d.shardIndex(n.UserID)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().Str("user_id", n.UserID).Int("worker_id", idx).Msg("notification worker saturated, dropping delivery")
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationsQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			if err := d.sender.Send(ctx, n); err != nil {
				metrics.NotificationsDeliveredTotal.WithLabelValues("error").Inc()
				d.log.Error().Err(err).
					Str("user_id", n.UserID).
					Str("type", string(n.Type)).
					Int("worker_id", id).
					Msg("notification delivery failed")
				continue
			}
			metrics.NotificationsDeliveredTotal.WithLabelValues("sent").Inc()
		}
	}
}
