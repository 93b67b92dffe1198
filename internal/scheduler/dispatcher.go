package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taiwoajasa245/verse-courier/internal/corpus"
	"github.com/taiwoajasa245/verse-courier/internal/ledger"
	"github.com/taiwoajasa245/verse-courier/internal/messaging"
	"github.com/taiwoajasa245/verse-courier/internal/subscriber"
)

const (
	defaultSendTimeout   = 30 * time.Second
	defaultMaxConcurrent = 16
	// dispatchedRetention covers a DST fall-back hour plus margin.
	dispatchedRetention = 3 * time.Hour
)

// SlotLister finds subscribers due at a local time.
type SlotLister interface {
	BySlot(ctx context.Context, hhmm string) ([]subscriber.Subscriber, error)
}

// Selector picks passages for one delivery.
type Selector interface {
	Select(ctx context.Context, sub subscriber.Subscriber, count int, day string) ([]corpus.Passage, error)
}

type Config struct {
	Location           *time.Location
	Count              int
	SendTimeout        time.Duration
	MaxConcurrentSends int
}

// Report summarizes one tick.
type Report struct {
	Slot      string
	Day       string
	Skipped   bool
	Matched   int
	Delivered int
	Empty     int
	Failed    int
}

// Dispatcher fires once per wall-clock minute and delivers to every
// subscriber whose slot equals the local time.
type Dispatcher struct {
	directory SlotLister
	selector  Selector
	sender    messaging.Sender
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time

	mu         sync.Mutex
	dispatched map[string]time.Time
}

func NewDispatcher(directory SlotLister, selector Selector, sender messaging.Sender, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Count <= 0 {
		cfg.Count = 2
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if cfg.MaxConcurrentSends <= 0 {
		cfg.MaxConcurrentSends = defaultMaxConcurrent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		directory:  directory,
		selector:   selector,
		sender:     sender,
		cfg:        cfg,
		logger:     logger.Named("scheduler"),
		now:        time.Now,
		dispatched: make(map[string]time.Time),
	}
}

// Run ticks on every minute boundary until ctx is done, then waits for
// in-flight ticks. A tick that runs long does not delay the next one.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("scheduler started", zap.String("timezone", d.cfg.Location.String()))

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		next := nextMinute(d.now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			d.logger.Info("scheduler stopped")
			return
		case <-timer.C:
			wg.Add(1)
			go func(at time.Time) {
				defer wg.Done()
				d.Tick(ctx, at)
			}(next)
		}
	}
}

func nextMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute).Add(time.Minute)
}

// Slot returns the local "HH:MM" for t, with hour 24 read as 00.
func Slot(t time.Time, loc *time.Location) string {
	slot, err := subscriber.ParseSlot(t.In(loc).Format("15:04"))
	if err != nil {
		return t.In(loc).Format("15:04")
	}
	return slot
}

// Tick dispatches the local minute containing now. Each minute is dispatched
// at most once; a repeat is reported as skipped.
func (d *Dispatcher) Tick(ctx context.Context, now time.Time) Report {
	local := now.In(d.cfg.Location)
	report := Report{
		Slot: Slot(now, d.cfg.Location),
		Day:  ledger.Day(now, d.cfg.Location),
	}
	log := d.logger.With(zap.String("slot", report.Slot), zap.String("day", report.Day))

	if !d.claim(local.Format("2006-01-02 15:04"), now) {
		log.Debug("minute already dispatched")
		report.Skipped = true
		return report
	}

	subs, err := d.directory.BySlot(ctx, report.Slot)
	if err != nil {
		log.Error("listing subscribers failed", zap.Error(err))
		return report
	}

	seen := make(map[string]struct{}, len(subs))
	due := make([]subscriber.Subscriber, 0, len(subs))
	for _, s := range subs {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		due = append(due, s)
	}
	report.Matched = len(due)
	if len(due) == 0 {
		return report
	}

	var delivered, empty, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(d.cfg.MaxConcurrentSends)
	for _, sub := range due {
		g.Go(func() error {
			switch err := d.deliver(ctx, sub, report.Day); {
			case errors.Is(err, errNothingToSend):
				empty.Add(1)
			case err != nil:
				failed.Add(1)
				log.Warn("delivery failed", zap.String("subscriber_id", sub.ID), zap.Error(err))
			default:
				delivered.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Delivered = int(delivered.Load())
	report.Empty = int(empty.Load())
	report.Failed = int(failed.Load())
	log.Info("tick dispatched",
		zap.Int("matched", report.Matched),
		zap.Int("delivered", report.Delivered),
		zap.Int("empty", report.Empty),
		zap.Int("failed", report.Failed),
	)
	return report
}

// claim records minute as dispatched and reports whether it was new.
func (d *Dispatcher) claim(minute string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for k, at := range d.dispatched {
		if now.Sub(at) > dispatchedRetention || at.Sub(now) > dispatchedRetention {
			delete(d.dispatched, k)
		}
	}
	if _, ok := d.dispatched[minute]; ok {
		return false
	}
	d.dispatched[minute] = now
	return true
}
