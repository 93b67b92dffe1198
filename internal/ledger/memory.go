package ledger

import (
	"context"
	"sync"
)

// MemoryLedger keeps the ledger in process memory.
type MemoryLedger struct {
	mu   sync.Mutex
	sent map[string]map[string]map[string]struct{} // subscriber -> day -> refs
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{sent: make(map[string]map[string]map[string]struct{})}
}

func (l *MemoryLedger) Get(_ context.Context, subscriberID, day string) (map[string]struct{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]struct{})
	for ref := range l.sent[subscriberID][day] {
		out[ref] = struct{}{}
	}
	return out, nil
}

func (l *MemoryLedger) Append(_ context.Context, subscriberID, day, ref string) error {
	cutoff, err := Cutoff(day)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	days, ok := l.sent[subscriberID]
	if !ok {
		days = make(map[string]map[string]struct{})
		l.sent[subscriberID] = days
	}
	refs, ok := days[day]
	if !ok {
		refs = make(map[string]struct{})
		days[day] = refs
	}
	refs[ref] = struct{}{}

	for sub, days := range l.sent {
		for d := range days {
			if d < cutoff {
				delete(days, d)
			}
		}
		if len(days) == 0 {
			delete(l.sent, sub)
		}
	}
	return nil
}
