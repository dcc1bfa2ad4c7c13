// Package export reads and writes the on-disk export artifact set.
//
// Required files: manifest.json, ledger.json, events.jsonl.
// Optional files: case_record.json, metrics.json, codebook.txt,
// session_manifest.json, verification_report.json (a prior verifier run,
// used only for shape warnings, never trusted).
//
// Reading distinguishes two failure classes. A StructuralError means the
// input cannot even be parsed (missing required file, invalid JSON) and
// aborts the run; everything else - wrong hashes, wrong counts - is left
// for the verifier to report as findings.
package export

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/evidify/integrity/internal/ledger"
)

// Artifact file names within an export directory.
const (
	FileManifest        = "manifest.json"
	FileLedger          = "ledger.json"
	FileEvents          = "events.jsonl"
	FileCaseRecord      = "case_record.json"
	FileMetrics         = "metrics.json"
	FileCodebook        = "codebook.txt"
	FileSessionManifest = "session_manifest.json"
	FilePriorReport     = "verification_report.json"
)

// RequiredFiles are the artifacts without which verification cannot run.
var RequiredFiles = []string{FileManifest, FileLedger, FileEvents}

// OptionalFiles are artifacts whose absence is a warning, never a failure.
var OptionalFiles = []string{FileCaseRecord, FileMetrics, FileCodebook, FileSessionManifest, FilePriorReport}

// StructuralError marks input that cannot be parsed at all. The CLI maps
// it to exit code 2; integrity problems never use this type.
type StructuralError struct {
	File string
	Err  error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error in %s: %v", e.File, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// IsStructural reports whether err is (or wraps) a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// Bundle is a parsed export directory. RawEvents/RawLedger/RawManifest
// hold the exact bytes read, so schema validation and checksumming see
// what is on disk rather than a re-serialization.
type Bundle struct {
	Dir      string
	Manifest ledger.Manifest
	Entries  []ledger.Entry
	Events   []ledger.Event

	RawManifest   []byte
	RawLedger     []byte
	RawEvents     []byte
	RawCaseRecord []byte // nil when absent
}

// Read parses an export directory into a Bundle.
func Read(dir string) (*Bundle, error) {
	b := &Bundle{Dir: dir}

	var err error
	if b.RawManifest, err = readRequired(dir, FileManifest); err != nil {
		return nil, err
	}
	if b.RawLedger, err = readRequired(dir, FileLedger); err != nil {
		return nil, err
	}
	if b.RawEvents, err = readRequired(dir, FileEvents); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(b.RawManifest, &b.Manifest); err != nil {
		return nil, &StructuralError{File: FileManifest, Err: err}
	}
	if err := json.Unmarshal(b.RawLedger, &b.Entries); err != nil {
		return nil, &StructuralError{File: FileLedger, Err: err}
	}
	if b.Events, err = parseEventStream(b.RawEvents); err != nil {
		return nil, &StructuralError{File: FileEvents, Err: err}
	}

	// Optional case record: absence is fine, unparseable content is not.
	recordPath := filepath.Join(dir, FileCaseRecord)
	if data, err := os.ReadFile(recordPath); err == nil {
		b.RawCaseRecord = data
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, &StructuralError{File: FileCaseRecord, Err: err}
	}

	return b, nil
}

func readRequired(dir, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, &StructuralError{File: name, Err: err}
	}
	return data, nil
}

// parseEventStream parses a JSONL event stream, one event per non-empty
// line.
func parseEventStream(data []byte) ([]ledger.Event, error) {
	var events []ledger.Event
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Bytes()
		if len(text) == 0 {
			continue
		}
		var ev ledger.Event
		if err := json.Unmarshal(text, &ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Write lays an export down on disk: events.jsonl, ledger.json, and a
// manifest carrying checksums of both. extra maps additional file names
// (case_record.json, codebook.txt, ...) to their contents; they are
// checksummed too.
func Write(dir string, events []ledger.Event, entries []ledger.Entry, extra map[string][]byte) (ledger.Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ledger.Manifest{}, fmt.Errorf("write export: %w", err)
	}

	eventsData, err := encodeEventStream(events)
	if err != nil {
		return ledger.Manifest{}, err
	}
	ledgerData, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return ledger.Manifest{}, fmt.Errorf("write export: marshal ledger: %w", err)
	}
	ledgerData = append(ledgerData, '\n')

	checksums := map[string]string{
		FileEvents: sha256Of(eventsData),
		FileLedger: sha256Of(ledgerData),
	}

	files := map[string][]byte{
		FileEvents: eventsData,
		FileLedger: ledgerData,
	}
	for name, data := range extra {
		files[name] = data
		checksums[name] = sha256Of(data)
	}

	manifest := ledger.NewManifest(entries, checksums)
	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return ledger.Manifest{}, fmt.Errorf("write export: marshal manifest: %w", err)
	}
	manifestData = append(manifestData, '\n')
	files[FileManifest] = manifestData

	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return ledger.Manifest{}, fmt.Errorf("write export: %s: %w", name, err)
		}
	}
	return manifest, nil
}

// encodeEventStream writes events as JSONL with canonical payloads.
func encodeEventStream(events []ledger.Event) ([]byte, error) {
	var out []byte
	for _, ev := range events {
		line, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("encode event stream: %w", err)
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out, nil
}

// FileSHA256 hashes a file's content, streaming.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func sha256Of(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
