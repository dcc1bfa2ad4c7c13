// Package ledger implements the append-only hash-chained event ledger and
// the export manifest.
//
// Key design constraints:
//   - Entries are immutable once appended; the only valid mutation of a
//     ledger is appending entry i+1
//   - Appending entry i requires entry i-1's chain hash (or the genesis
//     hash at i=0), so construction is strictly sequential by construction
//   - The full entry list is re-derivable from raw events alone, which is
//     what an independent verifier does
//   - Timestamps come from the producer clock and are untrusted; they are
//     bound into the chain but carry no forensic timing claim
package ledger
