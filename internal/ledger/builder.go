package ledger

import (
	"fmt"

	"github.com/evidify/integrity/internal/hashing"
)

// Builder constructs the hash chain one entry at a time. Appends are
// strictly sequential: no entry can be computed without its predecessor's
// chain hash. In a concurrent producer, all appends must be serialized
// through a single writer before reaching the builder.
type Builder struct {
	entries []Entry
}

// NewBuilder returns an empty builder whose first append will link to the
// genesis hash.
func NewBuilder() *Builder {
	return &Builder{}
}

// Append computes and stores the entry for the next event. The event's seq
// must be exactly len(entries); anything else is a producer bug, not an
// integrity finding.
func (b *Builder) Append(ev Event) (Entry, error) {
	if ev.Seq != len(b.entries) {
		return Entry{}, fmt.Errorf("append: event seq %d, expected %d", ev.Seq, len(b.entries))
	}

	contentHash, err := hashing.ContentHash(ev.Payload)
	if err != nil {
		return Entry{}, fmt.Errorf("append event %s: %w", ev.ID, err)
	}

	prev := b.FinalHash()
	chainHash, err := hashing.ChainHash(uint32(ev.Seq), prev, ev.ID, ev.Timestamp, contentHash)
	if err != nil {
		return Entry{}, fmt.Errorf("append event %s: %w", ev.ID, err)
	}

	entry := Entry{
		Seq:          ev.Seq,
		EventID:      ev.ID,
		EventType:    ev.Type,
		Timestamp:    ev.Timestamp,
		ContentHash:  contentHash,
		PreviousHash: prev,
		ChainHash:    chainHash,
	}
	b.entries = append(b.entries, entry)
	return entry, nil
}

// Entries returns a copy of the chain built so far.
func (b *Builder) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of entries appended.
func (b *Builder) Len() int {
	return len(b.entries)
}

// FinalHash returns the chain hash of the last entry, or the genesis hash
// for an empty chain.
func (b *Builder) FinalHash() string {
	if len(b.entries) == 0 {
		return hashing.GenesisHash
	}
	return b.entries[len(b.entries)-1].ChainHash
}

// Derive rebuilds the full entry chain from raw events alone. This is the
// re-derivation path the verifier uses: it must agree byte-for-byte with
// whatever the producer stored.
func Derive(events []Event) ([]Entry, error) {
	b := NewBuilder()
	for _, ev := range events {
		if _, err := b.Append(ev); err != nil {
			return nil, err
		}
	}
	return b.Entries(), nil
}

// FinalHashOf returns the chain hash of the last entry in a derived or
// stored chain, or the genesis hash if the chain is empty.
func FinalHashOf(entries []Entry) string {
	if len(entries) == 0 {
		return hashing.GenesisHash
	}
	return entries[len(entries)-1].ChainHash
}
