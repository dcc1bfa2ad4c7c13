// Package verify implements the independent export verifier: it trusts
// nothing the producer wrote, recomputes every hash from the raw event
// stream, and compares against the stored ledger and manifest.
//
// Every check runs even after an earlier one fails, so a single run
// enumerates every problem. A failed recomputation is data (a problem in
// the report), never an error; the only errors out of Verify are
// structural (input that cannot be parsed), and those are raised by
// export.Read before Verify is reached.
package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/evidify/integrity/internal/export"
	"github.com/evidify/integrity/internal/hashing"
	"github.com/evidify/integrity/internal/ledger"
)

// Config selects the policy knobs of a verification run.
type Config struct {
	// RequiredEventTypes must each appear at least once in the stream.
	RequiredEventTypes []string
}

// DefaultConfig requires the session lifecycle events every complete
// export carries.
func DefaultConfig() Config {
	return Config{
		RequiredEventTypes: []string{
			ledger.EventSessionStarted,
			ledger.EventRecordLocked,
			ledger.EventDecisionFinalized,
		},
	}
}

// Verify runs every check over a parsed export and returns the full
// report. Checks within one chain walk are strictly sequential (each step
// needs the prior step's recomputed hash); do not parallelize them.
func Verify(b *export.Bundle, cfg Config) Report {
	walk := walkChain(b)

	checks := []Check{
		fold(CheckFilePresence, checkFilePresence(b)),
		fold(CheckManifestChecksums, checkManifestChecksums(b)),
		fold(CheckEventCount, checkEventCount(b)),
		fold(CheckSequenceNumbers, checkSequenceNumbers(b)),
		fold(CheckEventIDs, checkEventIDs(b)),
		fold(CheckChainIntegrity, walk.problems),
		fold(CheckFinalHash, checkFinalHash(b, walk.finalHash)),
		fold(CheckRequiredEvents, checkRequiredEvents(b, cfg)),
		fold(CheckTimestamps, checkTimestamps(b)),
	}

	pass := true
	for _, c := range checks {
		if c.Status == StatusFail {
			pass = false
		}
	}
	return Report{SchemaVersion: ReportSchemaVersion, Pass: pass, Checks: checks}
}

// checkFilePresence confirms the artifact set on disk. Required files are
// guaranteed present (export.Read failed otherwise); missing optional
// files are advisories.
func checkFilePresence(b *export.Bundle) []Problem {
	var out []Problem
	for _, name := range export.OptionalFiles {
		if _, err := os.Stat(filepath.Join(b.Dir, name)); os.IsNotExist(err) {
			out = append(out, newProblem(CheckFilePresence, CodeOptionalFileMissing, StatusWarn, name,
				fmt.Sprintf("optional file %s is not present", name)))
		}
	}
	return out
}

// checkManifestChecksums recomputes the hash of every file the manifest
// lists. The manifest cannot list itself, so it is never checked here.
func checkManifestChecksums(b *export.Bundle) []Problem {
	var out []Problem
	for _, name := range sortedKeys(b.Manifest.FileChecksums) {
		want := b.Manifest.FileChecksums[name]
		got, err := export.FileSHA256(filepath.Join(b.Dir, name))
		if err != nil {
			out = append(out, newProblem(CheckManifestChecksums, CodeChecksumFileMissing, StatusFail, name,
				fmt.Sprintf("manifest lists %s but it cannot be read: %v", name, err)))
			continue
		}
		if got != want {
			out = append(out, newProblem(CheckManifestChecksums, CodeChecksumMismatch, StatusFail, name,
				fmt.Sprintf("%s checksum is %s, manifest declares %s", name, got, want)))
		}
	}
	return out
}

// checkEventCount requires stream length, ledger length, and the
// manifest's declared count to all agree.
func checkEventCount(b *export.Bundle) []Problem {
	var out []Problem
	if b.Manifest.EventCount != len(b.Events) {
		out = append(out, newProblem(CheckEventCount, CodeCountMismatch, StatusFail, export.FileEvents,
			fmt.Sprintf("manifest declares %d events, stream has %d", b.Manifest.EventCount, len(b.Events))))
	}
	if len(b.Entries) != len(b.Events) {
		out = append(out, newProblem(CheckEventCount, CodeCountMismatch, StatusFail, export.FileLedger,
			fmt.Sprintf("ledger has %d entries, stream has %d events", len(b.Entries), len(b.Events))))
	}
	return out
}

// checkSequenceNumbers requires seq values to be exactly 0..n-1 in both
// the stream and the ledger, agreeing entry-by-entry.
func checkSequenceNumbers(b *export.Bundle) []Problem {
	var out []Problem
	for i, ev := range b.Events {
		if ev.Seq != i {
			out = append(out, newProblem(CheckSequenceNumbers, CodeSequenceMismatch, StatusFail, entryRef(i),
				fmt.Sprintf("event at position %d has seq %d", i, ev.Seq)))
		}
	}
	for i, e := range b.Entries {
		if e.Seq != i {
			out = append(out, newProblem(CheckSequenceNumbers, CodeSequenceMismatch, StatusFail, entryRef(i),
				fmt.Sprintf("ledger entry at position %d has seq %d", i, e.Seq)))
		}
	}
	return out
}

// checkEventIDs requires each raw event's id to match the corresponding
// ledger entry's eventId.
func checkEventIDs(b *export.Bundle) []Problem {
	var out []Problem
	n := min(len(b.Events), len(b.Entries))
	for i := 0; i < n; i++ {
		if b.Events[i].ID != b.Entries[i].EventID {
			out = append(out, newProblem(CheckEventIDs, CodeEventIDMismatch, StatusFail, entryRef(i),
				fmt.Sprintf("event %d has id %s, ledger entry says %s", i, b.Events[i].ID, b.Entries[i].EventID)))
		}
	}
	return out
}

type chainWalk struct {
	problems  []Problem
	finalHash string // fully recomputed head after the walk
}

// walkChain recomputes the whole chain from the raw events and compares
// it entry-by-entry against the stored ledger.
//
// The walk carries a running recomputed head, so tampering with entry k's
// payload surfaces as CONTENT_TAMPERED at k and as a hash mismatch at
// every entry after k: the stored hashes from k onward were computed over
// the original content and can no longer be reproduced.
func walkChain(b *export.Bundle) chainWalk {
	var out []Problem
	recomputedPrev := hashing.GenesisHash
	storedPrev := hashing.GenesisHash

	for i, e := range b.Entries {
		if i >= len(b.Events) {
			// Nothing to recompute from. The count check reports the
			// truncated stream; keep walking on stored values.
			storedPrev = e.ChainHash
			recomputedPrev = e.ChainHash
			continue
		}
		ev := b.Events[i]

		contentHash, err := hashing.ContentHash(ev.Payload)
		if err != nil {
			out = append(out, newProblem(CheckChainIntegrity, CodeContentTampered, StatusFail, entryRef(i),
				fmt.Sprintf("entry %d: payload cannot be hashed: %v", i, err)))
			storedPrev = e.ChainHash
			recomputedPrev = e.ChainHash
			continue
		}

		contentOK := contentHash == e.ContentHash
		if !contentOK {
			out = append(out, newProblem(CheckChainIntegrity, CodeContentTampered, StatusFail, entryRef(i),
				fmt.Sprintf("entry %d: recomputed content hash %s, stored %s", i, contentHash, e.ContentHash)))
		}

		linkOK := e.PreviousHash == storedPrev
		if !linkOK {
			out = append(out, newProblem(CheckChainIntegrity, CodeChainBroken, StatusFail, entryRef(i),
				fmt.Sprintf("entry %d: previousHash %s does not match predecessor chain hash %s", i, e.PreviousHash, storedPrev)))
		}

		recomputed, err := hashing.ChainHash(uint32(i), recomputedPrev, ev.ID, ev.Timestamp, contentHash)
		if err != nil {
			out = append(out, newProblem(CheckChainIntegrity, CodeChainHashMismatch, StatusFail, entryRef(i),
				fmt.Sprintf("entry %d: chain hash cannot be recomputed: %v", i, err)))
			storedPrev = e.ChainHash
			recomputedPrev = e.ChainHash
			continue
		}

		if recomputed != e.ChainHash && contentOK && linkOK {
			out = append(out, newProblem(CheckChainIntegrity, CodeChainHashMismatch, StatusFail, entryRef(i),
				fmt.Sprintf("entry %d: recomputed chain hash %s, stored %s", i, recomputed, e.ChainHash)))
		}

		storedPrev = e.ChainHash
		recomputedPrev = recomputed
	}

	return chainWalk{problems: out, finalHash: recomputedPrev}
}

// checkFinalHash compares the manifest's declared final hash against both
// the stored last entry and the fully recomputed head. chainValid is the
// producer's own claim and is cross-checked, never trusted.
func checkFinalHash(b *export.Bundle, recomputedFinal string) []Problem {
	var out []Problem

	storedFinal := ledger.FinalHashOf(b.Entries)
	if b.Manifest.FinalHash != storedFinal {
		out = append(out, newProblem(CheckFinalHash, CodeDeclaredFinalMismatch, StatusFail, export.FileManifest,
			fmt.Sprintf("manifest declares final hash %s, last ledger entry has %s", b.Manifest.FinalHash, storedFinal)))
	}
	if b.Manifest.FinalHash != recomputedFinal {
		out = append(out, newProblem(CheckFinalHash, CodeFinalHashMismatch, StatusFail, export.FileManifest,
			fmt.Sprintf("manifest declares final hash %s, recomputed chain ends at %s", b.Manifest.FinalHash, recomputedFinal)))
	}
	if b.Manifest.ChainValid && !ledger.Consistent(b.Entries) {
		out = append(out, newProblem(CheckFinalHash, CodeChainValidContradicted, StatusFail, export.FileManifest,
			"manifest claims chainValid but the stored entries do not link"))
	}
	return out
}

// checkRequiredEvents requires each configured event type at least once.
func checkRequiredEvents(b *export.Bundle, cfg Config) []Problem {
	seen := make(map[string]bool, len(b.Events))
	for _, ev := range b.Events {
		seen[ev.Type] = true
	}

	var out []Problem
	for _, typ := range cfg.RequiredEventTypes {
		if !seen[typ] {
			out = append(out, newProblem(CheckRequiredEvents, CodeMissingEventType, StatusFail, typ,
				fmt.Sprintf("required event type %s never occurs", typ)))
		}
	}
	return out
}

// checkTimestamps warns on out-of-order timestamps. Producer clocks are
// untrusted client clocks, so this is advisory only and never upgraded to
// a failure.
func checkTimestamps(b *export.Bundle) []Problem {
	var out []Problem
	for i := 1; i < len(b.Events); i++ {
		if strings.Compare(b.Events[i].Timestamp, b.Events[i-1].Timestamp) < 0 {
			out = append(out, newProblem(CheckTimestamps, CodeNonMonotonicTimestamp, StatusWarn, entryRef(i),
				fmt.Sprintf("event %d timestamp %s precedes event %d timestamp %s (client clock, untrusted)",
					i, b.Events[i].Timestamp, i-1, b.Events[i-1].Timestamp)))
		}
	}
	return out
}

func entryRef(i int) string {
	return "entry " + strconv.Itoa(i)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic report ordering regardless of map iteration.
	slices.Sort(keys)
	return keys
}
