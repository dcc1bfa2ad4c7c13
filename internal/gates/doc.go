// Package gates implements the deterministic rule engine that inspects a
// case record plus the ledger's audit trail and emits severity-classified
// findings, folded into a hashed gate report.
//
// Determinism is the whole point:
//   - Findings are generated fresh each run and sorted by a total order
//     (severity rank, gate id, code, sub-code, object id), so output never
//     depends on evaluation order
//   - Finding ids are name-based UUIDs over structural fields only; the
//     human-readable message never participates
//   - The report's own digest uses sentinel substitution, so hashing the
//     report is a pure single-pass function
//
// Two runs over identical inputs with an identical rule set must produce
// byte-identical reports.
package gates
