package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindingIDDeterministic(t *testing.T) {
	a := FindingID("GATE-001", "OPINION_NO_BASIS", "NO_SUPPORTING_ANCHORS", "BLOCK", "opinion", "OPN-001")
	b := FindingID("GATE-001", "OPINION_NO_BASIS", "NO_SUPPORTING_ANCHORS", "BLOCK", "opinion", "OPN-001")
	assert.Equal(t, a, b)
}

func TestFindingIDIsVersion5(t *testing.T) {
	id := FindingID("GATE-001", "OPINION_NO_BASIS", "NO_SUPPORTING_ANCHORS", "BLOCK", "opinion", "OPN-001")

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
	assert.Equal(t, uuid.RFC4122, parsed.Variant())
}

func TestFindingIDSensitiveToEachStructuralField(t *testing.T) {
	base := FindingID("GATE-001", "CODE", "SUB", "BLOCK", "opinion", "OPN-001")

	variants := []string{
		FindingID("GATE-002", "CODE", "SUB", "BLOCK", "opinion", "OPN-001"),
		FindingID("GATE-001", "OTHER", "SUB", "BLOCK", "opinion", "OPN-001"),
		FindingID("GATE-001", "CODE", "OTHER", "BLOCK", "opinion", "OPN-001"),
		FindingID("GATE-001", "CODE", "SUB", "WARN", "opinion", "OPN-001"),
		FindingID("GATE-001", "CODE", "SUB", "BLOCK", "limitation", "OPN-001"),
		FindingID("GATE-001", "CODE", "SUB", "BLOCK", "opinion", "OPN-002"),
	}

	for i, v := range variants {
		assert.NotEqual(t, base, v, "variant %d should differ", i)
	}
}

func TestEventIDDistinctPerPosition(t *testing.T) {
	a := EventID("breast-imaging-baseline", "clean", 0)
	b := EventID("breast-imaging-baseline", "clean", 1)
	c := EventID("breast-imaging-baseline", "tampered", 0)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, EventID("breast-imaging-baseline", "clean", 0))
}

func TestReportIDStable(t *testing.T) {
	a := ReportID("case-1", "abc")
	assert.Equal(t, a, ReportID("case-1", "abc"))
	assert.NotEqual(t, a, ReportID("case-1", "abd"))
	assert.NotEqual(t, a, ReportID("case-2", "abc"))
}
