package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/evidify/integrity/internal/canonical"
	"github.com/evidify/integrity/internal/export"
	"github.com/evidify/integrity/internal/hashing"
	"github.com/evidify/integrity/internal/ledger"
)

// Events returns every captured event in seq order, payloads decoded back
// into the canonical value model.
func (s *Store) Events(ctx context.Context) ([]ledger.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, event_id, event_type, timestamp, payload
		FROM audit_events ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	var events []ledger.Event
	for rows.Next() {
		var ev ledger.Event
		var payload string
		if err := rows.Scan(&ev.Seq, &ev.ID, &ev.Type, &ev.Timestamp, &payload); err != nil {
			return nil, fmt.Errorf("read events: scan: %w", err)
		}
		if ev.Payload, err = canonical.Decode([]byte(payload)); err != nil {
			return nil, fmt.Errorf("read events: event %s: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// Entries returns the stored chain in seq order.
func (s *Store) Entries(ctx context.Context) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, event_id, event_type, timestamp, content_hash, previous_hash, chain_hash
		FROM audit_events ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.Seq, &e.EventID, &e.EventType, &e.Timestamp,
			&e.ContentHash, &e.PreviousHash, &e.ChainHash); err != nil {
			return nil, fmt.Errorf("read entries: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	return entries, nil
}

// Len returns the number of captured events.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// Head returns the current chain head, or the genesis hash for an empty
// log.
func (s *Store) Head(ctx context.Context) (string, error) {
	var head string
	err := s.db.QueryRowContext(ctx, `
		SELECT chain_hash FROM audit_events ORDER BY seq DESC LIMIT 1
	`).Scan(&head)
	if errors.Is(err, sql.ErrNoRows) {
		return hashing.GenesisHash, nil
	}
	if err != nil {
		return "", fmt.Errorf("read chain head: %w", err)
	}
	return head, nil
}

// VerifyChain re-derives the whole chain from the stored payloads and
// compares it against the stored hashes. This is the producer's own
// consistency pass; an exported ledger still gets independently verified
// without trusting this result.
func (s *Store) VerifyChain(ctx context.Context) (bool, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return false, err
	}
	stored, err := s.Entries(ctx)
	if err != nil {
		return false, err
	}

	derived, err := ledger.Derive(events)
	if err != nil {
		return false, fmt.Errorf("verify chain: %w", err)
	}
	if len(derived) != len(stored) {
		return false, nil
	}
	for i := range derived {
		if derived[i] != stored[i] {
			return false, nil
		}
	}
	return true, nil
}

// Export writes the captured log as an export artifact set: events.jsonl,
// ledger.json, and a checksummed manifest, plus any extra files the
// caller supplies (case_record.json, codebook.txt, ...).
func (s *Store) Export(ctx context.Context, dir string, extra map[string][]byte) (ledger.Manifest, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return ledger.Manifest{}, err
	}
	entries, err := s.Entries(ctx)
	if err != nil {
		return ledger.Manifest{}, err
	}
	return export.Write(dir, events, entries, extra)
}
