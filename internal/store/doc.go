// Package store provides durable capture-side storage for the audit
// ledger. Events are committed to SQLite as they happen, each one hashed
// and chained inside the same transaction that inserts it, so the on-disk
// log is append-only by construction.
//
// SQLite supports one writer at a time; the connection pool is pinned to
// a single connection so concurrent producers serialize through it rather
// than racing into SQLITE_BUSY. Chain appends are order-dependent anyway:
// no entry can be computed without its predecessor's chain hash.
package store
