// Package identity derives stable, name-based identifiers (UUIDv5) from
// structural fields.
//
// Identifiers here must never depend on wall-clock time, random sources,
// or human-readable text: two runs that classify the same structural fact
// must mint the same id even when message wording changes between
// versions. That property is what lets downstream consumers deduplicate
// findings across report revisions.
package identity

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FindingNamespace is the fixed namespace UUID for finding identifiers.
var FindingNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// FixtureNamespace is the fixed namespace UUID for synthetic fixture
// event ids, kept separate from findings so the two id spaces can never
// collide.
var FixtureNamespace = uuid.MustParse("8c35f0ac-2a41-5d88-9b6e-4f1d23a7c901")

// FindingID derives the deterministic identifier for a finding from its
// structural tuple. The free-text message is deliberately NOT part of the
// tuple.
func FindingID(gateID, code, subCode, severity, objectType, objectID string) string {
	name := strings.Join([]string{gateID, code, subCode, severity, objectType, objectID}, "|")
	return uuid.NewSHA1(FindingNamespace, []byte(name)).String()
}

// EventID derives a deterministic event id for a synthetic fixture export
// from the pack, scenario, and position.
func EventID(packID, scenario string, seq int) string {
	name := strings.Join([]string{packID, scenario, strconv.Itoa(seq)}, "|")
	return uuid.NewSHA1(FixtureNamespace, []byte(name)).String()
}

// ReportID derives the deterministic identifier for a gate report from the
// case id and the audit head hash, so re-running over identical inputs
// reproduces the identical report object.
func ReportID(caseID, auditHead string) string {
	name := strings.Join([]string{"gate-report", caseID, auditHead}, "|")
	return uuid.NewSHA1(FindingNamespace, []byte(name)).String()
}
