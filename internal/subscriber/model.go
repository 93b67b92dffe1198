package subscriber

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("subscriber not found")
	ErrInvalidSlot = errors.New("invalid delivery slot")
	ErrInvalidID   = errors.New("invalid subscriber id")
)

// Slots are the four daily local delivery times, each "HH:MM".
type Slots struct {
	Morning   string `json:"morning"`
	Midday    string `json:"midday"`
	Afternoon string `json:"afternoon"`
	Evening   string `json:"evening"`
}

// DefaultSlots is what a new subscriber starts with.
var DefaultSlots = Slots{Morning: "07:30", Midday: "12:00", Afternoon: "16:30", Evening: "21:00"}

// Matches reports whether any slot equals hhmm. A subscriber matches at most
// once however many slots share the value.
func (s Slots) Matches(hhmm string) bool {
	return s.Morning == hhmm || s.Midday == hhmm || s.Afternoon == hhmm || s.Evening == hhmm
}

// Subscriber is someone who receives passages.
type Subscriber struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	Slots        Slots     `json:"slots"`
	Contact      string    `json:"contact,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Update carries the fields to change; nil means keep.
type Update struct {
	Topic     *string `json:"topic,omitempty"`
	Morning   *string `json:"morning,omitempty"`
	Midday    *string `json:"midday,omitempty"`
	Afternoon *string `json:"afternoon,omitempty"`
	Evening   *string `json:"evening,omitempty"`
	Contact   *string `json:"contact,omitempty"`
}

// Apply validates u and applies it to s. On error s is unchanged.
func (u Update) Apply(s *Subscriber) error {
	n, err := u.normalize()
	if err != nil {
		return err
	}
	for _, f := range n.fields() {
		if f.value == nil {
			continue
		}
		switch f.column {
		case "topic":
			s.Topic = *f.value
		case "morning":
			s.Slots.Morning = *f.value
		case "midday":
			s.Slots.Midday = *f.value
		case "afternoon":
			s.Slots.Afternoon = *f.value
		case "evening":
			s.Slots.Evening = *f.value
		case "contact":
			s.Contact = *f.value
		}
	}
	return nil
}

type updateField struct {
	column string
	value  *string
}

// fields lists u's values by storage column, nil for unchanged ones.
func (u Update) fields() []updateField {
	return []updateField{
		{"topic", u.Topic},
		{"morning", u.Morning},
		{"midday", u.Midday},
		{"afternoon", u.Afternoon},
		{"evening", u.Evening},
		{"contact", u.Contact},
	}
}

// normalize returns a copy of u with slots zero-padded and text trimmed.
func (u Update) normalize() (Update, error) {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	slot := func(name string, v *string) (*string, error) {
		if v == nil {
			return nil, nil
		}
		norm, err := ParseSlot(*v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return &norm, nil
	}

	out := Update{Topic: trim(u.Topic), Contact: trim(u.Contact)}
	var err error
	if out.Morning, err = slot("morning", u.Morning); err != nil {
		return Update{}, err
	}
	if out.Midday, err = slot("midday", u.Midday); err != nil {
		return Update{}, err
	}
	if out.Afternoon, err = slot("afternoon", u.Afternoon); err != nil {
		return Update{}, err
	}
	if out.Evening, err = slot("evening", u.Evening); err != nil {
		return Update{}, err
	}
	return out, nil
}

// ParseSlot validates an "H:MM" or "HH:MM" time and returns it zero-padded.
// Hour 24 is read as midnight.
func ParseSlot(value string) (string, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return "", fmt.Errorf("%w %q", ErrInvalidSlot, value)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || len(h) > 2 {
		return "", fmt.Errorf("%w %q", ErrInvalidSlot, value)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || len(m) != 2 {
		return "", fmt.Errorf("%w %q", ErrInvalidSlot, value)
	}
	if hour == 24 {
		hour = 0
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w %q", ErrInvalidSlot, value)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// normalizeSlot repairs a persisted slot, falling back to def when the stored
// value is unusable.
func normalizeSlot(value, def string) string {
	if norm, err := ParseSlot(value); err == nil {
		return norm
	}
	return def
}

// normalizeSlots repairs every slot of s against the matching default.
func normalizeSlots(s, defaults Slots) Slots {
	return Slots{
		Morning:   normalizeSlot(s.Morning, defaults.Morning),
		Midday:    normalizeSlot(s.Midday, defaults.Midday),
		Afternoon: normalizeSlot(s.Afternoon, defaults.Afternoon),
		Evening:   normalizeSlot(s.Evening, defaults.Evening),
	}
}
