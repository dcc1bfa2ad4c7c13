// Package canonical provides the deterministic value model and wire
// serialization for Evidify integrity artifacts.
//
// This package contains the value types and the canonical serializer only.
// All other internal packages import canonical; canonical imports nothing
// internal. This keeps it the foundational layer with no circular
// dependencies.
//
// The canonical form is a wire-format contract shared with the producer
// implementation, not an implementation detail:
//   - Object keys sorted by UTF-16 code units
//   - No insignificant whitespace
//   - ES-style shortest number rendering; -0 renders as 0; NaN and the
//     infinities render as null
//   - Fixed escape table for control characters, no HTML escaping
//   - Strings are NOT normalized - hashing must see the producer's exact
//     code points
//
// Any change here changes every content hash downstream.
package canonical
