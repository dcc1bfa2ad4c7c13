package hashing

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/evidify/integrity/internal/canonical"
)

// GenesisHash is the previous-hash value of the first ledger entry: 64 zero
// hex characters, decoding to 32 zero bytes in the chain preimage.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// ZeroDigest is the sentinel substituted for a report's own digest field
// before self-referential hashing. Same textual shape as a real digest so
// the substitution never changes field widths.
const ZeroDigest = GenesisHash

// Field widths of the chain preimage. Total is fixed at 128 bytes.
const (
	seqWidth       = 4
	hashWidth      = 32
	eventIDWidth   = 36
	timestampWidth = 24
	preimageLen    = seqWidth + hashWidth + eventIDWidth + timestampWidth + hashWidth
)

// SHA256Hex returns the lowercase hex SHA-256 of raw bytes.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ContentHash computes the content hash of a payload: SHA-256 over its
// canonical serialization, lowercase hex.
func ContentHash(payload canonical.Value) (string, error) {
	b, err := canonical.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("content hash: %w", err)
	}
	return SHA256Hex(b), nil
}

// ChainHash computes the hash binding one ledger entry to its predecessor.
//
// previousHash and contentHash must be 64-char hex digests; eventID and
// timestamp are zero-padded or truncated to their fixed widths. Tampering
// with any historical field changes this hash and, through the
// previous-hash link, every subsequent entry's hash.
func ChainHash(seq uint32, previousHash, eventID, timestamp, contentHash string) (string, error) {
	buf := make([]byte, 0, preimageLen)

	buf = binary.BigEndian.AppendUint32(buf, seq)

	prev, err := decodeDigest(previousHash)
	if err != nil {
		return "", fmt.Errorf("chain hash: previous hash: %w", err)
	}
	buf = append(buf, prev...)

	buf = appendFixed(buf, eventID, eventIDWidth)
	buf = appendFixed(buf, timestamp, timestampWidth)

	content, err := decodeDigest(contentHash)
	if err != nil {
		return "", fmt.Errorf("chain hash: content hash: %w", err)
	}
	buf = append(buf, content...)

	return SHA256Hex(buf), nil
}

// SelfHash computes a self-referential digest: build(sentinel) must return
// the full object with its own digest field set to the given sentinel; the
// hash of those canonical bytes becomes the field's real value. Pure and
// single-pass - no mutate-then-restore trick.
func SelfHash(build func(sentinel string) canonical.Value) (string, error) {
	b, err := canonical.Marshal(build(ZeroDigest))
	if err != nil {
		return "", fmt.Errorf("self hash: %w", err)
	}
	return SHA256Hex(b), nil
}

// decodeDigest decodes a 64-char lowercase hex digest to its 32 raw bytes.
func decodeDigest(digest string) ([]byte, error) {
	if len(digest) != 2*hashWidth {
		return nil, fmt.Errorf("digest must be %d hex chars, got %d", 2*hashWidth, len(digest))
	}
	raw, err := hex.DecodeString(digest)
	if err != nil {
		return nil, fmt.Errorf("digest is not hex: %w", err)
	}
	return raw, nil
}

// appendFixed appends s as a fixed-width field: truncated to width bytes,
// or zero-padded on the right.
func appendFixed(buf []byte, s string, width int) []byte {
	b := []byte(s)
	if len(b) > width {
		b = b[:width]
	}
	buf = append(buf, b...)
	for i := len(b); i < width; i++ {
		buf = append(buf, 0x00)
	}
	return buf
}
