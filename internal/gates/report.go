package gates

import (
	"fmt"

	"github.com/evidify/integrity/internal/canonical"
	"github.com/evidify/integrity/internal/hashing"
	"github.com/evidify/integrity/internal/identity"
	"github.com/evidify/integrity/internal/ledger"
	"github.com/evidify/integrity/internal/record"
)

// ReportSchemaVersion identifies the gate report wire shape. Downstream
// consumers diff reports across runs; field names and gate_outcomes keys
// must stay stable.
const ReportSchemaVersion = "1.0"

// Outcome is the per-gate verdict.
type Outcome string

const (
	OutcomePass Outcome = "PASS"
	OutcomeWarn Outcome = "WARN"
	OutcomeFail Outcome = "FAIL"
)

// InputsDigest pins the inputs a report was computed over.
// CanonicalSHA256 is self-referential: it hashes the report itself with
// this field replaced by an all-zero sentinel. AuditHeadSHA256 is the
// final chain hash of the ledger at evaluation time.
type InputsDigest struct {
	CanonicalSHA256 string `json:"canonical_sha256"`
	AuditHeadSHA256 string `json:"audit_head_sha256"`
}

// Summary folds the finding counts into an overall status.
type Summary struct {
	Status     Outcome `json:"status"`
	BlockCount int     `json:"block_count"`
	WarnCount  int     `json:"warn_count"`
	InfoCount  int     `json:"info_count"`
}

// Report is the full gate evaluation result. Generated once per run and
// never mutated; a new run produces a new report object.
type Report struct {
	SchemaVersion string             `json:"schema_version"`
	CaseID        string             `json:"case_id"`
	ReportID      string             `json:"report_id"`
	InputsDigest  InputsDigest       `json:"inputs_digest"`
	Summary       Summary            `json:"summary"`
	GateOutcomes  map[string]Outcome `json:"gate_outcomes"`
	Violations    []Finding          `json:"violations"`
	Warnings      []Finding          `json:"warnings"`
}

// BuildReport evaluates the gates and assembles the hashed report.
// auditHead is the ledger's final chain hash.
func BuildReport(rec record.CaseRecord, events []ledger.Event, auditHead string) (Report, error) {
	findings := Evaluate(rec, events)

	report := Report{
		SchemaVersion: ReportSchemaVersion,
		CaseID:        rec.CaseID,
		ReportID:      identity.ReportID(rec.CaseID, auditHead),
		InputsDigest:  InputsDigest{AuditHeadSHA256: auditHead},
		GateOutcomes:  gateOutcomes(findings),
		Violations:    []Finding{},
		Warnings:      []Finding{},
	}

	for _, f := range findings {
		switch f.Severity {
		case SeverityBlock:
			report.Summary.BlockCount++
			report.Violations = append(report.Violations, f)
		case SeverityWarn:
			report.Summary.WarnCount++
			report.Warnings = append(report.Warnings, f)
		default:
			report.Summary.InfoCount++
		}
	}
	report.Summary.Status = overallStatus(report.Summary)

	digest, err := hashing.SelfHash(func(sentinel string) canonical.Value {
		r := report
		r.InputsDigest.CanonicalSHA256 = sentinel
		return reportValue(r)
	})
	if err != nil {
		return Report{}, fmt.Errorf("build report: %w", err)
	}
	report.InputsDigest.CanonicalSHA256 = digest

	return report, nil
}

func overallStatus(s Summary) Outcome {
	switch {
	case s.BlockCount > 0:
		return OutcomeFail
	case s.WarnCount > 0:
		return OutcomeWarn
	default:
		return OutcomePass
	}
}

// gateOutcomes derives the per-gate verdict. Every gate appears in the map
// even when it passed, so consumers can diff outcomes across runs.
func gateOutcomes(findings []Finding) map[string]Outcome {
	outcomes := make(map[string]Outcome, len(AllGates))
	for _, g := range AllGates {
		outcomes[g] = OutcomePass
	}
	for _, f := range findings {
		switch f.Severity {
		case SeverityBlock:
			outcomes[f.GateID] = OutcomeFail
		case SeverityWarn:
			if outcomes[f.GateID] != OutcomeFail {
				outcomes[f.GateID] = OutcomeWarn
			}
		}
	}
	return outcomes
}

// reportValue lowers a Report into the canonical value model for hashing.
// Field names here ARE the wire format; keep them identical to the JSON
// tags above.
func reportValue(r Report) canonical.Value {
	outcomes := make(canonical.Object, len(r.GateOutcomes))
	for gate, outcome := range r.GateOutcomes {
		outcomes[gate] = canonical.String(outcome)
	}

	return canonical.Object{
		"schema_version": canonical.String(r.SchemaVersion),
		"case_id":        canonical.String(r.CaseID),
		"report_id":      canonical.String(r.ReportID),
		"inputs_digest": canonical.Object{
			"canonical_sha256":  canonical.String(r.InputsDigest.CanonicalSHA256),
			"audit_head_sha256": canonical.String(r.InputsDigest.AuditHeadSHA256),
		},
		"summary": canonical.Object{
			"status":      canonical.String(r.Summary.Status),
			"block_count": canonical.Number(r.Summary.BlockCount),
			"warn_count":  canonical.Number(r.Summary.WarnCount),
			"info_count":  canonical.Number(r.Summary.InfoCount),
		},
		"gate_outcomes": outcomes,
		"violations":    findingValues(r.Violations),
		"warnings":      findingValues(r.Warnings),
	}
}

func findingValues(findings []Finding) canonical.Array {
	arr := make(canonical.Array, len(findings))
	for i, f := range findings {
		arr[i] = canonical.Object{
			"id":               canonical.String(f.ID),
			"gate_id":          canonical.String(f.GateID),
			"code":             canonical.String(f.Code),
			"sub_code":         canonical.String(f.SubCode),
			"severity":         canonical.String(f.Severity),
			"message":          canonical.String(f.Message),
			"remediation_hint": canonical.String(f.RemediationHint),
			"object": canonical.Object{
				"type": canonical.String(f.Object.Type),
				"id":   canonical.String(f.Object.ID),
			},
		}
	}
	return arr
}
