package subscriber

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taiwoajasa245/verse-courier/internal/database"
)

type repository struct {
	db       database.Service
	defaults Defaults
	now      func() time.Time
}

// NewRepository returns a Directory backed by the subscribers table.
func NewRepository(db database.Service, defaults Defaults) Directory {
	return &repository{db: db, defaults: defaults.withFallbacks(), now: time.Now}
}

const subscriberColumns = `id, topic, morning, midday, afternoon, evening, contact, registered_at`

var slotColumns = []string{"morning", "midday", "afternoon", "evening"}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSubscriber decodes a row and returns it with its slots as stored.
// Unusable timestamps read as the zero time.
func scanSubscriber(row rowScanner) (s Subscriber, stored Slots, err error) {
	var registered string
	err = row.Scan(
		&s.ID,
		&s.Topic,
		&stored.Morning,
		&stored.Midday,
		&stored.Afternoon,
		&stored.Evening,
		&s.Contact,
		&registered,
	)
	if err != nil {
		return Subscriber{}, Slots{}, err
	}
	if t, err := time.Parse(time.RFC3339, registered); err == nil {
		s.RegisteredAt = t
	}
	return s, stored, nil
}

func (r *repository) query(q string) string {
	return database.Rebind(r.db.Dialect(), q)
}

// canonicalSlot is a SQL predicate true when col already holds a zero-padded
// "HH:MM" between 00:00 and 23:59.
func canonicalSlot(col string) string {
	return fmt.Sprintf(`(length(%[1]s) = 5 AND substr(%[1]s, 3, 1) = ':'`+
		` AND substr(%[1]s, 1, 1) BETWEEN '0' AND '2' AND substr(%[1]s, 2, 1) BETWEEN '0' AND '9'`+
		` AND substr(%[1]s, 1, 2) <= '23'`+
		` AND substr(%[1]s, 4, 1) BETWEEN '0' AND '5' AND substr(%[1]s, 5, 1) BETWEEN '0' AND '9')`, col)
}

// BySlot matches stored slots exactly and also loads any row holding a
// non-canonical slot, which is normalized before matching and rewritten.
func (r *repository) BySlot(ctx context.Context, hhmm string) ([]Subscriber, error) {
	slot, err := ParseSlot(hhmm)
	if err != nil {
		return nil, err
	}
	aliases := slotAliases(slot)
	in := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(aliases)), ", ") + ")"

	var args []any
	var conds []string
	for _, col := range slotColumns {
		conds = append(conds, col+" IN "+in)
		for _, a := range aliases {
			args = append(args, a)
		}
	}
	for _, col := range slotColumns {
		conds = append(conds, "NOT "+canonicalSlot(col))
	}
	q := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE ` +
		strings.Join(conds, " OR ") + ` ORDER BY id`

	rows, err := r.db.DB().QueryContext(ctx, r.query(q), args...)
	if err != nil {
		return nil, fmt.Errorf("querying subscribers by slot: %w", err)
	}

	type repair struct {
		id     string
		stored Slots
		slots  Slots
	}
	var (
		out     []Subscriber
		repairs []repair
	)
	for rows.Next() {
		s, stored, err := scanSubscriber(rows)
		if err != nil {
			continue
		}
		s.Slots = normalizeSlots(stored, r.defaults.Slots)
		if s.Slots != stored {
			repairs = append(repairs, repair{id: s.ID, stored: stored, slots: s.Slots})
		}
		if s.Slots.Matches(slot) {
			out = append(out, s)
		}
	}
	iterErr := rows.Err()
	rows.Close()
	if iterErr != nil {
		return nil, fmt.Errorf("iterating subscribers: %w", iterErr)
	}

	// Repairs run after the cursor is closed; an in-memory sqlite pool has a
	// single connection. A failed repair is retried on the next call.
	for _, rp := range repairs {
		_, _ = r.db.DB().ExecContext(ctx, r.query(`
			UPDATE subscribers
			SET morning = ?, midday = ?, afternoon = ?, evening = ?
			WHERE id = ? AND morning = ? AND midday = ? AND afternoon = ? AND evening = ?`),
			rp.slots.Morning, rp.slots.Midday, rp.slots.Afternoon, rp.slots.Evening,
			rp.id, rp.stored.Morning, rp.stored.Midday, rp.stored.Afternoon, rp.stored.Evening,
		)
	}
	return out, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Subscriber, error) {
	row := r.db.DB().QueryRowContext(ctx,
		r.query(`SELECT `+subscriberColumns+` FROM subscribers WHERE id = ?`), id)
	s, stored, err := scanSubscriber(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching subscriber %s: %w", id, err)
	}
	s.Slots = normalizeSlots(stored, r.defaults.Slots)
	return &s, nil
}

func (r *repository) Ensure(ctx context.Context, id string) (*Subscriber, bool, error) {
	if !validID(id) {
		return nil, false, ErrInvalidID
	}

	res, err := r.db.DB().ExecContext(ctx, r.query(`
		INSERT INTO subscribers (`+subscriberColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`),
		id,
		r.defaults.Topic,
		r.defaults.Slots.Morning,
		r.defaults.Slots.Midday,
		r.defaults.Slots.Afternoon,
		r.defaults.Slots.Evening,
		"",
		r.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, false, fmt.Errorf("creating subscriber %s: %w", id, err)
	}
	affected, _ := res.RowsAffected()

	s, err := r.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return s, affected == 1, nil
}

// Update writes only the columns u sets, in one statement, so concurrent
// updates of different fields do not overwrite each other.
func (r *repository) Update(ctx context.Context, id string, u Update) (*Subscriber, error) {
	n, err := u.normalize()
	if err != nil {
		return nil, err
	}

	var (
		sets []string
		args []any
	)
	for _, f := range n.fields() {
		if f.value != nil {
			sets = append(sets, f.column+" = ?")
			args = append(args, *f.value)
		}
	}
	if len(sets) == 0 {
		return r.Get(ctx, id)
	}
	args = append(args, id)

	res, err := r.db.DB().ExecContext(ctx,
		r.query(`UPDATE subscribers SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return nil, fmt.Errorf("updating subscriber %s: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}
