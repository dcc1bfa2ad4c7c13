// Package packs ships embedded fixture packs: fully deterministic
// synthetic exports used for regression-testing the verifier. Every
// generated export uses fixed timestamps and name-based event ids, so the
// same pack and scenario always produce byte-identical artifacts.
//
// A scenario is a clean export plus an optional post-export tamper
// mutation applied to the written files. Tampering after export is what a
// real attacker would do; the chain and manifest are never rebuilt to
// match.
package packs

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed packs/*.yaml
var packFS embed.FS

// Pack is one embedded fixture pack: a case record, an event script, and
// the scenarios that mutate its export.
type Pack struct {
	// ID uniquely identifies this pack.
	ID string `yaml:"id"`

	// Description explains what the pack exercises.
	Description string `yaml:"description"`

	// CaseRecord is the structured case record written alongside the
	// ledger as case_record.json, in canonical form.
	CaseRecord map[string]any `yaml:"case_record,omitempty"`

	// Codebook is free text written as codebook.txt when present.
	Codebook string `yaml:"codebook,omitempty"`

	// Events is the ordered event script. Seq, id, and timestamp are
	// assigned at generation time.
	Events []EventSpec `yaml:"events"`

	// Scenarios lists the named exports this pack can generate.
	Scenarios []Scenario `yaml:"scenarios"`
}

// EventSpec is one scripted event.
type EventSpec struct {
	// Type is the event kind (session_started, opinion_recorded, ...).
	Type string `yaml:"type"`

	// Payload is the structured event payload. Nil means a null payload.
	Payload map[string]any `yaml:"payload,omitempty"`
}

// Scenario names one generated export and the mutation applied to it.
type Scenario struct {
	// Name uniquely identifies the scenario within its pack.
	Name string `yaml:"name"`

	// Description explains what the scenario demonstrates.
	Description string `yaml:"description"`

	// Tamper is the post-export mutation. Nil generates a clean export.
	Tamper *Tamper `yaml:"tamper,omitempty"`
}

// Tamper kinds.
const (
	TamperReplace  = "replace"    // substitute bytes within a file
	TamperSwap     = "swap_lines" // swap two lines of a line-oriented file
	TamperDropLine = "drop_line"  // remove one line of a line-oriented file
)

// Tamper is a byte-level mutation of one exported file.
type Tamper struct {
	// Kind selects the mutation: replace, swap_lines, or drop_line.
	Kind string `yaml:"kind"`

	// File is the export file name to mutate.
	File string `yaml:"file"`

	// Find and Replace drive the replace kind. Find must occur in the
	// file; generation fails otherwise rather than silently producing a
	// clean export.
	Find    string `yaml:"find,omitempty"`
	Replace string `yaml:"replace,omitempty"`

	// A and B are 0-based line numbers for swap_lines.
	A int `yaml:"a,omitempty"`
	B int `yaml:"b,omitempty"`

	// Line is the 0-based line number for drop_line.
	Line int `yaml:"line,omitempty"`
}

// List returns every embedded pack, sorted by id.
func List() ([]Pack, error) {
	entries, err := fs.ReadDir(packFS, "packs")
	if err != nil {
		return nil, fmt.Errorf("list packs: %w", err)
	}

	packs := make([]Pack, 0, len(entries))
	for _, entry := range entries {
		p, err := load("packs/" + entry.Name())
		if err != nil {
			return nil, err
		}
		packs = append(packs, *p)
	}
	slices.SortFunc(packs, func(a, b Pack) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return packs, nil
}

// Load returns the pack with the given id.
func Load(id string) (*Pack, error) {
	all, err := List()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("load pack: unknown pack %q", id)
}

// Scenario returns the named scenario of this pack.
func (p *Pack) Scenario(name string) (*Scenario, error) {
	for i := range p.Scenarios {
		if p.Scenarios[i].Name == name {
			return &p.Scenarios[i], nil
		}
	}
	return nil, fmt.Errorf("pack %s: unknown scenario %q", p.ID, name)
}

func load(path string) (*Pack, error) {
	data, err := packFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load pack %s: %w", path, err)
	}

	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("load pack %s: %w", path, err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("load pack %s: missing id", path)
	}
	if len(p.Events) == 0 {
		return nil, fmt.Errorf("load pack %s: no events", path)
	}
	return &p, nil
}
