package subscriber

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryDirectory struct {
	mu       sync.RWMutex
	subs     map[string]Subscriber
	defaults Defaults
	now      func() time.Time
}

// NewMemoryDirectory returns a process-local Directory.
func NewMemoryDirectory(defaults Defaults) Directory {
	return &memoryDirectory{
		subs:     make(map[string]Subscriber),
		defaults: defaults.withFallbacks(),
		now:      time.Now,
	}
}

func (d *memoryDirectory) BySlot(_ context.Context, hhmm string) ([]Subscriber, error) {
	slot, err := ParseSlot(hhmm)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Subscriber
	for _, s := range d.subs {
		if s.Slots.Matches(slot) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *memoryDirectory) Get(_ context.Context, id string) (*Subscriber, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, ok := d.subs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (d *memoryDirectory) Ensure(_ context.Context, id string) (*Subscriber, bool, error) {
	if !validID(id) {
		return nil, false, ErrInvalidID
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.subs[id]; ok {
		return &s, false, nil
	}
	s := Subscriber{
		ID:           id,
		Topic:        d.defaults.Topic,
		Slots:        d.defaults.Slots,
		RegisteredAt: d.now().UTC(),
	}
	d.subs[id] = s
	return &s, true, nil
}

func (d *memoryDirectory) Update(_ context.Context, id string, u Update) (*Subscriber, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.subs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := u.Apply(&s); err != nil {
		return nil, err
	}
	d.subs[id] = s
	return &s, nil
}
