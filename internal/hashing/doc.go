// Package hashing provides the two SHA-256 hashing modes of the integrity
// layer.
//
// Content hashes cover a single payload's canonical bytes and are
// independent of chain position. Chain hashes bind a ledger entry to its
// predecessor over a fixed-width 128-byte binary preimage: fields occupy
// fixed offsets and widths with NO delimiters, so no crafted field value
// can shift bytes into a neighboring field and forge an equivalent
// preimage.
//
// The preimage layout is a wire-format contract shared with every other
// implementation:
//
//	offset  width  field
//	0       4      seq, uint32 big-endian
//	4       32     previous chain hash, raw bytes (hex-decoded)
//	36      36     event id, zero-padded or truncated
//	72      24     timestamp, zero-padded or truncated
//	96      32     content hash, raw bytes (hex-decoded)
package hashing
