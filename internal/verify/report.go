package verify

import (
	"github.com/evidify/integrity/internal/identity"
)

// ReportSchemaVersion identifies the verification report wire shape.
const ReportSchemaVersion = "1.0"

// Check names, in the fixed order the verifier runs them. Every report
// lists all of them, passed or not.
const (
	CheckFilePresence      = "FILE_PRESENCE"
	CheckManifestChecksums = "MANIFEST_CHECKSUMS"
	CheckEventCount        = "EVENT_COUNT"
	CheckSequenceNumbers   = "SEQUENCE_NUMBERS"
	CheckEventIDs          = "EVENT_ID_CONSISTENCY"
	CheckChainIntegrity    = "CHAIN_INTEGRITY"
	CheckFinalHash         = "FINAL_HASH"
	CheckRequiredEvents    = "REQUIRED_EVENTS"
	CheckTimestamps        = "TIMESTAMP_MONOTONICITY"
)

// CheckOrder is the canonical ordering of checks in a report.
var CheckOrder = []string{
	CheckFilePresence,
	CheckManifestChecksums,
	CheckEventCount,
	CheckSequenceNumbers,
	CheckEventIDs,
	CheckChainIntegrity,
	CheckFinalHash,
	CheckRequiredEvents,
	CheckTimestamps,
}

// Status of a single check.
type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// Problem codes emitted by the checks.
const (
	CodeOptionalFileMissing    = "OPTIONAL_FILE_MISSING"
	CodeChecksumFileMissing    = "CHECKSUM_FILE_MISSING"
	CodeChecksumMismatch       = "CHECKSUM_MISMATCH"
	CodeCountMismatch          = "COUNT_MISMATCH"
	CodeSequenceMismatch       = "SEQUENCE_MISMATCH"
	CodeEventIDMismatch        = "EVENT_ID_MISMATCH"
	CodeContentTampered        = "CONTENT_TAMPERED"
	CodeChainBroken            = "CHAIN_BROKEN"
	CodeChainHashMismatch      = "CHAIN_HASH_MISMATCH"
	CodeDeclaredFinalMismatch  = "DECLARED_FINAL_MISMATCH"
	CodeFinalHashMismatch      = "FINAL_HASH_MISMATCH"
	CodeMissingEventType       = "MISSING_EVENT_TYPE"
	CodeNonMonotonicTimestamp  = "NON_MONOTONIC_TIMESTAMP"
	CodeChainValidContradicted = "CHAIN_VALID_CONTRADICTED"
)

// Problem is one failure or advisory attached to a check. Its id is
// derived from the structural fields only; message wording never changes
// it.
type Problem struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Severity Status `json:"severity"`
	Message  string `json:"message"`
	Object   string `json:"object"` // file name, event type, or "entry <seq>"
}

// Check is one named check and its outcome. Problems is empty on PASS.
type Check struct {
	Name     string    `json:"name"`
	Status   Status    `json:"status"`
	Problems []Problem `json:"problems"`
}

// Report is the full verification result: every check listed with its
// status, pass only when zero checks fail. Warnings never fail the run.
type Report struct {
	SchemaVersion string  `json:"schema_version"`
	Pass          bool    `json:"pass"`
	Checks        []Check `json:"checks"`
}

// Failed returns the names of every failing check.
func (r Report) Failed() []string {
	var out []string
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			out = append(out, c.Name)
		}
	}
	return out
}

// newProblem mints a problem with its deterministic id. The same
// structural fact always gets the same id, run after run.
func newProblem(check, code string, sev Status, object, message string) Problem {
	return Problem{
		ID:       identity.FindingID(check, code, "", string(sev), "export", object),
		Code:     code,
		Severity: sev,
		Message:  message,
		Object:   object,
	}
}

// fold collapses problems into a check outcome. A single FAIL-severity
// problem fails the check; warnings alone leave it at WARN.
func fold(name string, problems []Problem) Check {
	status := StatusPass
	for _, p := range problems {
		switch p.Severity {
		case StatusFail:
			status = StatusFail
		case StatusWarn:
			if status != StatusFail {
				status = StatusWarn
			}
		}
	}
	if problems == nil {
		problems = []Problem{}
	}
	return Check{Name: name, Status: status, Problems: problems}
}
