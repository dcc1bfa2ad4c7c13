package packs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/evidify/integrity/internal/canonical"
	"github.com/evidify/integrity/internal/export"
	"github.com/evidify/integrity/internal/identity"
	"github.com/evidify/integrity/internal/ledger"
)

// Fixture time base. Every generated event is stamped baseTime plus its
// seq in seconds, formatted to the fixed 24-char layout the chain
// preimage expects.
const (
	baseTime   = "2026-01-15T09:00:00.000Z"
	timeLayout = "2006-01-02T15:04:05.000Z"
)

// Generate writes the scenario's export into dir. The clean artifact set
// is produced first, then the scenario's tamper mutation (if any) is
// applied to the files on disk, leaving chain and manifest deliberately
// stale.
func Generate(p *Pack, scenarioName, dir string) error {
	if _, err := p.Scenario(scenarioName); err != nil {
		return err
	}

	events, err := p.BuildEvents(scenarioName)
	if err != nil {
		return err
	}
	entries, err := ledger.Derive(events)
	if err != nil {
		return fmt.Errorf("pack %s: derive chain: %w", p.ID, err)
	}

	extra, err := p.ExtraFiles()
	if err != nil {
		return err
	}

	if _, err := export.Write(dir, events, entries, extra); err != nil {
		return fmt.Errorf("pack %s: %w", p.ID, err)
	}

	return p.ApplyTamper(dir, scenarioName)
}

// ExtraFiles returns the optional artifacts the pack ships alongside the
// ledger: the case record in canonical form, and the codebook.
func (p *Pack) ExtraFiles() (map[string][]byte, error) {
	extra := map[string][]byte{}
	if p.CaseRecord != nil {
		rec, err := canonical.FromGo(p.CaseRecord)
		if err != nil {
			return nil, fmt.Errorf("pack %s: case record: %w", p.ID, err)
		}
		data, err := canonical.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("pack %s: case record: %w", p.ID, err)
		}
		extra[export.FileCaseRecord] = append(data, '\n')
	}
	if p.Codebook != "" {
		extra[export.FileCodebook] = []byte(p.Codebook)
	}
	return extra, nil
}

// ApplyTamper applies the named scenario's mutation to an already-written
// export directory. Scenarios without a tamper are a no-op.
func (p *Pack) ApplyTamper(dir, scenarioName string) error {
	sc, err := p.Scenario(scenarioName)
	if err != nil {
		return err
	}
	if sc.Tamper == nil {
		return nil
	}
	if err := applyTamper(dir, sc.Tamper); err != nil {
		return fmt.Errorf("pack %s scenario %s: %w", p.ID, sc.Name, err)
	}
	return nil
}

// BuildEvents realizes the event script with deterministic seq values,
// timestamps, and name-based ids. Ids are derived per scenario so the id
// spaces of two scenarios never overlap.
func (p *Pack) BuildEvents(scenarioName string) ([]ledger.Event, error) {
	base, err := time.Parse(timeLayout, baseTime)
	if err != nil {
		return nil, fmt.Errorf("pack %s: parse base time: %w", p.ID, err)
	}

	events := make([]ledger.Event, len(p.Events))
	for i, spec := range p.Events {
		payload, err := canonical.FromGo(anyOrNil(spec.Payload))
		if err != nil {
			return nil, fmt.Errorf("pack %s: event %d payload: %w", p.ID, i, err)
		}
		events[i] = ledger.Event{
			ID:        identity.EventID(p.ID, scenarioName, i),
			Seq:       i,
			Type:      spec.Type,
			Timestamp: base.Add(time.Duration(i) * time.Second).UTC().Format(timeLayout),
			Payload:   payload,
		}
	}
	return events, nil
}

func anyOrNil(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}

// applyTamper mutates one already-written export file in place.
func applyTamper(dir string, t *Tamper) error {
	path := filepath.Join(dir, t.File)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tamper: %w", err)
	}

	switch t.Kind {
	case TamperReplace:
		if !bytes.Contains(data, []byte(t.Find)) {
			return fmt.Errorf("tamper: %q not found in %s", t.Find, t.File)
		}
		data = bytes.Replace(data, []byte(t.Find), []byte(t.Replace), 1)

	case TamperSwap:
		lines, trailing := splitLines(data)
		if t.A >= len(lines) || t.B >= len(lines) {
			return fmt.Errorf("tamper: swap %d,%d out of range for %d lines", t.A, t.B, len(lines))
		}
		lines[t.A], lines[t.B] = lines[t.B], lines[t.A]
		data = joinLines(lines, trailing)

	case TamperDropLine:
		lines, trailing := splitLines(data)
		if t.Line >= len(lines) {
			return fmt.Errorf("tamper: drop line %d out of range for %d lines", t.Line, len(lines))
		}
		lines = append(lines[:t.Line], lines[t.Line+1:]...)
		data = joinLines(lines, trailing)

	default:
		return fmt.Errorf("tamper: unknown kind %q", t.Kind)
	}

	return os.WriteFile(path, data, 0o644)
}

func splitLines(data []byte) (lines [][]byte, trailingNewline bool) {
	trailingNewline = bytes.HasSuffix(data, []byte("\n"))
	trimmed := bytes.TrimSuffix(data, []byte("\n"))
	return bytes.Split(trimmed, []byte("\n")), trailingNewline
}

func joinLines(lines [][]byte, trailingNewline bool) []byte {
	out := bytes.Join(lines, []byte("\n"))
	if trailingNewline {
		out = append(out, '\n')
	}
	return out
}
