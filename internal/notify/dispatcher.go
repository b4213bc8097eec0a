package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultWorkers     = 2
	defaultQueueSize   = 100
	defaultSendTimeout = 30 * time.Second
)

// Dispatcher delivers notifications on a pool of background workers.
// Delivery failures are logged and never reach the code that enqueued them.
type Dispatcher struct {
	sender      Sender
	queue       chan Notification
	log         logrus.FieldLogger
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts workers goroutines reading from a queue of queueSize
func NewDispatcher(sender Sender, workers, queueSize int, logger logrus.FieldLogger) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	d := &Dispatcher{
		sender:      sender,
		queue:       make(chan Notification, queueSize),
		log:         logger,
		sendTimeout: defaultSendTimeout,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

// Enqueue schedules n for delivery without blocking.
// When the queue is full or the dispatcher is closed the notification is dropped.
func (d *Dispatcher) Enqueue(n Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry := d.log.WithFields(logrus.Fields{"notification": n.Kind, "to": n.To})
	if d.closed {
		entry.Error("notification dropped: dispatcher closed")
		return
	}
	select {
	case d.queue <- n:
		entry.Debug("notification queued")
	default:
		entry.Error("notification dropped: queue full")
	}
}

// Close stops accepting notifications and waits for queued ones to drain
// or for ctx to end, whichever comes first.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, n); err != nil {
		d.log.WithFields(logrus.Fields{
			"notification": n.Kind,
			"to":           n.To,
		}).WithError(err).Error("notification delivery failed")
	}
}
