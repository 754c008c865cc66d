package database

import (
	"fmt"
	"time"
)

// ActuationRecord is one row of the actuation history.
type ActuationRecord struct {
	ID         int64
	Entry      string
	EventType  string
	Confidence float64
	Detail     string
	CreatedAt  time.Time
}

// RecordActuation inserts one history row.
func (db *DB) RecordActuation(entry, eventType string, confidence float64, detail string) error {
	_, err := db.conn.Exec(`
		INSERT INTO actuations (entry, event_type, confidence, detail)
		VALUES (?, ?, ?, ?)`,
		entry, eventType, confidence, detail)
	if err != nil {
		return fmt.Errorf("failed to record actuation: %w", err)
	}
	return nil
}

// RecentActuations returns the newest rows, most recent first.
func (db *DB) RecentActuations(limit int) ([]ActuationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT id, entry, event_type, confidence, COALESCE(detail, ''), created_at
		FROM actuations
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query actuations: %w", err)
	}
	defer rows.Close()

	var records []ActuationRecord
	for rows.Next() {
		var r ActuationRecord
		if err := rows.Scan(&r.ID, &r.Entry, &r.EventType, &r.Confidence, &r.Detail, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan actuation row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountByEntry returns how many actuated rows exist per entry.
func (db *DB) CountByEntry() (map[string]int, error) {
	rows, err := db.conn.Query(`
		SELECT entry, COUNT(*)
		FROM actuations
		WHERE event_type = 'cycle.actuated'
		GROUP BY entry`)
	if err != nil {
		return nil, fmt.Errorf("failed to count actuations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var entry string
		var n int
		if err := rows.Scan(&entry, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[entry] = n
	}
	return counts, rows.Err()
}
