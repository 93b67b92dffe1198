package subscriber

import (
	"context"
	"strings"
)

// Directory is the subscriber store the core reads slots and topics from.
type Directory interface {
	// BySlot returns every subscriber with any slot equal to hhmm, each once.
	BySlot(ctx context.Context, hhmm string) ([]Subscriber, error)
	Get(ctx context.Context, id string) (*Subscriber, error)
	// Ensure returns the subscriber, creating it with defaults on first
	// interaction. created reports whether a record was made.
	Ensure(ctx context.Context, id string) (sub *Subscriber, created bool, err error)
	Update(ctx context.Context, id string, u Update) (*Subscriber, error)
}

// Defaults seed newly created subscribers.
type Defaults struct {
	Topic string
	Slots Slots
}

func (d Defaults) withFallbacks() Defaults {
	d.Slots = normalizeSlots(d.Slots, DefaultSlots)
	return d
}

// slotAliases lists the stored spellings that mean hhmm; legacy rows may use
// hour 24 for midnight.
func slotAliases(hhmm string) []string {
	aliases := []string{hhmm}
	if rest, ok := strings.CutPrefix(hhmm, "00:"); ok {
		aliases = append(aliases, "24:"+rest)
	}
	return aliases
}

func validID(id string) bool {
	return strings.TrimSpace(id) != ""
}
