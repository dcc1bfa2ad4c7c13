// Package schema validates export artifacts against embedded CUE schemas
// before any hash checking happens.
//
// This is the structural gate of the verifier: a manifest with a missing
// field or a ledger entry with a malformed digest fails here with a clear
// message instead of surfacing later as a confusing hash mismatch.
package schema

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed export.cue
var exportSchema string

// Validator checks parsed artifacts against the export schemas. Construct
// one per verification run; it holds no mutable state after NewValidator.
type Validator struct {
	ctx      *cue.Context
	manifest cue.Value
	entry    cue.Value
	event    cue.Value
}

// NewValidator compiles the embedded schemas.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(exportSchema, cue.Filename("export.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile export schema: %w", err)
	}

	v := &Validator{
		ctx:      ctx,
		manifest: root.LookupPath(cue.ParsePath("#Manifest")),
		entry:    root.LookupPath(cue.ParsePath("#LedgerEntry")),
		event:    root.LookupPath(cue.ParsePath("#Event")),
	}
	for name, val := range map[string]cue.Value{
		"#Manifest":    v.manifest,
		"#LedgerEntry": v.entry,
		"#Event":       v.event,
	} {
		if err := val.Err(); err != nil {
			return nil, fmt.Errorf("lookup %s: %w", name, err)
		}
	}
	return v, nil
}

// ValidateManifest checks raw manifest.json bytes.
func (v *Validator) ValidateManifest(data []byte) error {
	return v.validate("manifest.json", v.manifest, data)
}

// ValidateLedgerEntry checks one ledger entry's JSON bytes.
func (v *Validator) ValidateLedgerEntry(data []byte) error {
	return v.validate("ledger.json", v.entry, data)
}

// ValidateEvent checks one raw event's JSON bytes.
func (v *Validator) ValidateEvent(data []byte) error {
	return v.validate("events.jsonl", v.event, data)
}

func (v *Validator) validate(filename string, schema cue.Value, data []byte) error {
	expr, err := cuejson.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	val := v.ctx.BuildExpr(expr)
	if err := val.Err(); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	return nil
}
