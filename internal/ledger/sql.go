package ledger

import (
	"context"
	"fmt"

	"github.com/taiwoajasa245/verse-courier/internal/database"
)

// SQLLedger stores the ledger in the sent_passages table of a SQLite or
// postgres database.
type SQLLedger struct {
	db database.Service
}

func NewSQLLedger(db database.Service) *SQLLedger {
	return &SQLLedger{db: db}
}

func (l *SQLLedger) query(q string) string {
	return database.Rebind(l.db.Dialect(), q)
}

func (l *SQLLedger) Get(ctx context.Context, subscriberID, day string) (map[string]struct{}, error) {
	rows, err := l.db.DB().QueryContext(ctx,
		l.query(`SELECT ref FROM sent_passages WHERE subscriber_id = ? AND day = ?`),
		subscriberID, day)
	if err != nil {
		return nil, fmt.Errorf("querying sent passages: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scanning sent passage: %w", err)
		}
		out[ref] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sent passages: %w", err)
	}
	return out, nil
}

func (l *SQLLedger) Append(ctx context.Context, subscriberID, day, ref string) error {
	cutoff, err := Cutoff(day)
	if err != nil {
		return err
	}

	_, err = l.db.DB().ExecContext(ctx,
		l.query(`INSERT INTO sent_passages (subscriber_id, day, ref) VALUES (?, ?, ?)
			ON CONFLICT (subscriber_id, day, ref) DO NOTHING`),
		subscriberID, day, ref)
	if err != nil {
		return fmt.Errorf("recording sent passage: %w", err)
	}

	if _, err := l.db.DB().ExecContext(ctx,
		l.query(`DELETE FROM sent_passages WHERE day < ?`), cutoff); err != nil {
		return fmt.Errorf("pruning sent passages: %w", err)
	}
	return nil
}
