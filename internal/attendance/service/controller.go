package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/reader"
)

const (
	// DefaultPollInterval is the sleep between reader polls.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultReadTimeout bounds a single reader poll so the loop notices
	// Stop within roughly one interval.  Indefinite blocking reads are
	// not permitted in the loop.
	DefaultReadTimeout = 100 * time.Millisecond

	// errorBackoff is the pause after a reader failure before the next
	// iteration.  A bad iteration never terminates the loop.
	errorBackoff = time.Second
)

var ErrAlreadyRunning = errors.New("scan service already running")

// Stats is a point-in-time snapshot of the scan service.  Duplicate scans
// are invisible here: they are dropped before any counter is touched.
type Stats struct {
	Running            bool
	TotalScans         uint64
	SuccessfulCheckins uint64
	FailedScans        uint64
	LastScanUID        string
	LastScanTime       time.Time // zero until the first accepted scan
}

// ControllerConfig holds the loop timing knobs.  Zero values take defaults.
type ControllerConfig struct {
	PollInterval time.Duration
	ReadTimeout  time.Duration
}

// Controller owns the background poll loop: it is the only goroutine that
// reads the card reader, and the sole writer of the service stats.  External
// callers read snapshots via Stats and inject scans via SimulateScan; both
// are safe concurrently with the running loop.
type Controller struct {
	reader       reader.CardReader
	processor    *Processor
	logger       *log.Logger
	metrics      *Metrics
	pollInterval time.Duration
	readTimeout  time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	stats   Stats
}

// NewController creates a controller but does not start it.  metrics may be
// nil.
func NewController(rd reader.CardReader, proc *Processor, cfg ControllerConfig, metrics *Metrics, logger *log.Logger) *Controller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	return &Controller{
		reader:       rd,
		processor:    proc,
		logger:       logger,
		metrics:      metrics,
		pollInterval: cfg.PollInterval,
		readTimeout:  cfg.ReadTimeout,
	}
}

// Start begins the poll loop.  The loop exits when ctx is cancelled or Stop
// is called.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	c.running = true
	c.mu.Unlock()

	c.metrics.SetRunning(true)
	go c.loop(ctx)

	c.logger.Printf("scan service started (poll=%s, read_timeout=%s)", c.pollInterval, c.readTimeout)
	return nil
}

// Stop signals the loop to exit, waits for it, and releases the reader.
// Safe to call more than once; an in-flight scan is allowed to finish.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	cancel()
	<-done
	_ = c.reader.Close()
	c.metrics.SetRunning(false)

	s := c.Stats()
	c.logger.Printf("scan service stopped. stats: total=%d checkins=%d failed=%d",
		s.TotalScans, s.SuccessfulCheckins, s.FailedScans)
}

// Stats returns an immutable snapshot of the running statistics.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Running = c.running
	return s
}

// SimulateScan injects a scan directly into the processor, bypassing the
// reader, for tests and admin use.  It runs the identical debounce, resolve,
// write, and audit logic as a hardware scan and updates the same stats.
func (c *Controller) SimulateScan(ctx context.Context, uid string) Outcome {
	c.logger.Printf("simulating scan uid=%s", uid)
	now := time.Now().UTC()
	outcome := c.processor.Process(ctx, ScanEvent{UID: uid, ObservedAt: now})
	c.applyOutcome(uid, now, outcome)
	return outcome
}

func (c *Controller) loop(ctx context.Context) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		scan, err := c.reader.Read(ctx, c.readTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Printf("reader error: %v", err)
			sleep(ctx, errorBackoff)
			continue
		}

		if scan != nil {
			now := time.Now().UTC()
			outcome := c.processor.Process(ctx, ScanEvent{
				UID:        scan.UID,
				Payload:    scan.Payload,
				ObservedAt: now,
			})
			c.applyOutcome(scan.UID, now, outcome)
		}

		sleep(ctx, c.pollInterval)
	}
}

// applyOutcome folds one processed scan into the stats.  Duplicates pass
// through untouched: they do not count as scans.
func (c *Controller) applyOutcome(uid string, at time.Time, outcome Outcome) {
	c.metrics.ScanProcessed(outcome)
	if outcome == OutcomeDuplicate {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.TotalScans++
	if outcome.Success() {
		c.stats.SuccessfulCheckins++
	} else {
		c.stats.FailedScans++
	}
	c.stats.LastScanUID = uid
	c.stats.LastScanTime = at
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
