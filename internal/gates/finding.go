package gates

import (
	"slices"
	"strings"

	"github.com/evidify/integrity/internal/identity"
)

// Severity classifies a finding. BLOCK prevents release, WARN is
// advisory, INFO is informational.
type Severity string

const (
	SeverityBlock Severity = "BLOCK"
	SeverityWarn  Severity = "WARN"
	SeverityInfo  Severity = "INFO"
)

// severityRank orders severities for sorting: BLOCK < WARN < INFO.
func severityRank(s Severity) int {
	switch s {
	case SeverityBlock:
		return 0
	case SeverityWarn:
		return 1
	default:
		return 2
	}
}

// Gate identifiers. Stable across versions; downstream consumers key
// report diffs on them.
const (
	GateOpinionBasis   = "GATE-001"
	GateLimitations    = "GATE-002"
	GateAIReview       = "GATE-003"
	GateContradictions = "GATE-004"
	GateMetadata       = "GATE-005"
)

// AllGates lists every gate in report order.
var AllGates = []string{
	GateOpinionBasis,
	GateLimitations,
	GateAIReview,
	GateContradictions,
	GateMetadata,
}

// ObjectRef names the record object a finding is about.
type ObjectRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Finding is one rule violation or advisory. The ID is derived from the
// structural fields only, so rewording Message between versions never
// changes it.
type Finding struct {
	ID              string    `json:"id"`
	GateID          string    `json:"gate_id"`
	Code            string    `json:"code"`
	SubCode         string    `json:"sub_code"`
	Severity        Severity  `json:"severity"`
	Message         string    `json:"message"`
	RemediationHint string    `json:"remediation_hint"`
	Object          ObjectRef `json:"object"`
}

// newFinding mints a finding with its deterministic id.
func newFinding(gateID, code, subCode string, sev Severity, msg, hint string, obj ObjectRef) Finding {
	return Finding{
		ID:              identity.FindingID(gateID, code, subCode, string(sev), obj.Type, obj.ID),
		GateID:          gateID,
		Code:            code,
		SubCode:         subCode,
		Severity:        sev,
		Message:         msg,
		RemediationHint: hint,
		Object:          obj,
	}
}

// sortFindings orders findings by the canonical total order. Called once
// after all rules run; rules themselves may emit in any order.
func sortFindings(findings []Finding) {
	slices.SortFunc(findings, func(a, b Finding) int {
		if d := severityRank(a.Severity) - severityRank(b.Severity); d != 0 {
			return d
		}
		if d := strings.Compare(a.GateID, b.GateID); d != 0 {
			return d
		}
		if d := strings.Compare(a.Code, b.Code); d != 0 {
			return d
		}
		if d := strings.Compare(a.SubCode, b.SubCode); d != 0 {
			return d
		}
		return strings.Compare(a.Object.ID, b.Object.ID)
	})
}
