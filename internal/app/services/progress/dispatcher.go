package progress

import (
	"context"
	"sync"
	"time"

	"github.com/clearpathlending/intake/internal/app/metrics"
	"github.com/clearpathlending/intake/internal/app/system"
	"github.com/clearpathlending/intake/pkg/logger"
)

var _ system.Service = (*Dispatcher)(nil)

const defaultQueueSize = 16

// Mark is one queued section update.
type Mark struct {
	Section  string
	Complete bool
}

// Dispatcher applies progress marks off the save path so a slow progress
// endpoint never delays step advancement. The queue is bounded; when it is
// full new marks are shed with a log line rather than blocking the caller.
type Dispatcher struct {
	service *Service
	log     *logger.Logger
	queue   chan Mark
	timeout time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewDispatcher constructs a lifecycle-managed progress dispatcher.
func NewDispatcher(service *Service, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewDefault("progress-dispatcher")
	}
	return &Dispatcher{
		service: service,
		log:     log,
		queue:   make(chan Mark, defaultQueueSize),
		timeout: 5 * time.Second,
	}
}

func (d *Dispatcher) Name() string { return "progress-dispatcher" }

// Enqueue hands a mark to the worker without blocking. A full queue drops
// the mark: progress is advisory and a later mark supersedes it anyway.
func (d *Dispatcher) Enqueue(m Mark) {
	select {
	case d.queue <- m:
	default:
		metrics.RecordProgressDropped()
		d.log.WithField("section", m.Section).Warn("progress queue full, mark dropped")
	}
}

func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running = true
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-runCtx.Done():
				d.drain()
				return
			case m := <-d.queue:
				d.apply(runCtx, m)
			}
		}
	}()

	d.log.Info("progress dispatcher started")
	return nil
}

func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	cancel := d.cancel
	d.running = false
	d.cancel = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	d.log.Info("progress dispatcher stopped")
	return nil
}

// drain flushes whatever is queued at shutdown, each mark on its own
// deadline detached from the cancelled run context.
func (d *Dispatcher) drain() {
	for {
		select {
		case m := <-d.queue:
			d.apply(context.Background(), m)
		default:
			return
		}
	}
}

func (d *Dispatcher) apply(ctx context.Context, m Mark) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	d.service.MarkSection(ctx, m.Section, m.Complete)
}
