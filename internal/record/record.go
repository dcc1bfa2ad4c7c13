// Package record models the canonical case record the gate engine
// evaluates: opinions with their evidentiary links, limitations,
// AI-generated content, contradictions, and case metadata.
//
// The record is plain immutable data. It is parsed once from
// case_record.json and handed by value to the gate engine; nothing in this
// package mutates it after parsing.
package record

import (
	"encoding/json"
	"fmt"
)

// ContradictionsNoneFound is the explicit assertion a producer records
// when contradicting evidence was looked for and none was found. An empty
// string means the check was never recorded.
const ContradictionsNoneFound = "none_found"

// Contradiction resolution statuses.
const (
	ContradictionResolved   = "resolved"
	ContradictionUnresolved = "unresolved"
)

// CaseRecord is the full structured record for one case.
type CaseRecord struct {
	CaseID         string          `json:"case_id"`
	Metadata       Metadata        `json:"metadata"`
	Opinions       []Opinion       `json:"opinions"`
	Limitations    []Limitation    `json:"limitations"`
	AIContents     []AIContent     `json:"ai_contents"`
	Contradictions []Contradiction `json:"contradictions"`
}

// Metadata carries the recommended case-level fields. Missing values are
// advisory findings, not blockers.
type Metadata struct {
	Role            string `json:"role"`
	CentralQuestion string `json:"central_question"`
	Scope           string `json:"scope"`
}

// Opinion is a recorded professional opinion and its evidentiary basis.
type Opinion struct {
	ID                    string   `json:"id"`
	Text                  string   `json:"text"`
	SupportingAnchors     []string `json:"supporting_anchors"`
	ContradictingAnchors  []string `json:"contradicting_anchors"`
	ContradictionsChecked string   `json:"contradictions_checked"` // ContradictionsNoneFound or ""
	Reasoning             string   `json:"reasoning"`
	ChangeCriteria        string   `json:"change_criteria"` // what evidence would change the conclusion
}

// ContradictionsWereChecked reports whether the opinion explicitly records
// a contradicting-evidence check: either at least one contradicting anchor
// or the "none found" assertion.
func (o Opinion) ContradictionsWereChecked() bool {
	return len(o.ContradictingAnchors) > 0 || o.ContradictionsChecked == ContradictionsNoneFound
}

// Limitation is a declared limitation of the analysis.
type Limitation struct {
	ID              string `json:"id"`
	Text            string `json:"text"`
	AddressedStatus string `json:"addressed_status"` // empty means never addressed
}

// AIContent is a block of AI-generated content awaiting human review. The
// review itself lives in the ledger as an ai_content_reviewed event; the
// gate engine joins the two.
type AIContent struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Source string `json:"source"`
}

// Contradiction is a detected conflict between pieces of evidence.
type Contradiction struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Parse decodes a case record from JSON bytes.
func Parse(data []byte) (CaseRecord, error) {
	var rec CaseRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return CaseRecord{}, fmt.Errorf("parse case record: %w", err)
	}
	if rec.CaseID == "" {
		return CaseRecord{}, fmt.Errorf("parse case record: case_id is required")
	}
	return rec, nil
}
