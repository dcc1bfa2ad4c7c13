package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/evidify/integrity/internal/canonical"
	"github.com/evidify/integrity/internal/hashing"
	"github.com/evidify/integrity/internal/ledger"
)

// Append hashes an event and commits it as the next chain entry. The
// whole read-head, hash, insert sequence runs in one transaction, so a
// crash can never leave a half-linked row.
//
// The caller supplies the event id and timestamp; seq is assigned here
// and is always the current chain length. Appending is the only write
// this package exposes. There is no update and no delete.
func (s *Store) Append(ctx context.Context, id, eventType, timestamp string, payload canonical.Value) (ledger.Entry, error) {
	payloadJSON, err := canonical.Marshal(payload)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("append event: %w", err)
	}
	contentHash := hashing.SHA256Hex(payloadJSON)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("append event: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	seq, prev, err := headTx(ctx, tx)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("append event: %w", err)
	}

	chainHash, err := hashing.ChainHash(uint32(seq), prev, id, timestamp, contentHash)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("append event %s: %w", id, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_events
		(seq, event_id, event_type, timestamp, payload, content_hash, previous_hash, chain_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		seq,
		id,
		eventType,
		timestamp,
		string(payloadJSON),
		contentHash,
		prev,
		chainHash,
	)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("append event %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return ledger.Entry{}, fmt.Errorf("append event: commit: %w", err)
	}

	return ledger.Entry{
		Seq:          seq,
		EventID:      id,
		EventType:    eventType,
		Timestamp:    timestamp,
		ContentHash:  contentHash,
		PreviousHash: prev,
		ChainHash:    chainHash,
	}, nil
}

// headTx reads the next seq and the current chain head within a
// transaction. An empty log yields seq 0 and the genesis hash.
func headTx(ctx context.Context, tx *sql.Tx) (int, string, error) {
	var seq int
	var head string
	err := tx.QueryRowContext(ctx, `
		SELECT seq + 1, chain_hash FROM audit_events
		ORDER BY seq DESC LIMIT 1
	`).Scan(&seq, &head)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, hashing.GenesisHash, nil
	}
	if err != nil {
		return 0, "", fmt.Errorf("read chain head: %w", err)
	}
	return seq, head, nil
}
