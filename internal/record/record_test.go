package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullRecord(t *testing.T) {
	data := []byte(`{
		"case_id": "case-001",
		"metadata": {"role": "reviewer", "central_question": "q", "scope": "s"},
		"opinions": [{
			"id": "OPN-001",
			"text": "finding is benign",
			"supporting_anchors": ["evt-003"],
			"contradicting_anchors": [],
			"contradictions_checked": "none_found",
			"reasoning": "because",
			"change_criteria": "new imaging"
		}],
		"limitations": [{"id": "LIM-001", "text": "single view", "addressed_status": "acknowledged"}],
		"ai_contents": [{"id": "AI-001", "kind": "draft", "source": "model"}],
		"contradictions": [{"id": "CON-001", "status": "resolved"}]
	}`)

	rec, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "case-001", rec.CaseID)
	assert.Len(t, rec.Opinions, 1)
	assert.True(t, rec.Opinions[0].ContradictionsWereChecked())
	assert.Equal(t, "acknowledged", rec.Limitations[0].AddressedStatus)
	assert.Equal(t, ContradictionResolved, rec.Contradictions[0].Status)
}

func TestParseRequiresCaseID(t *testing.T) {
	_, err := Parse([]byte(`{"opinions":[]}`))
	assert.Error(t, err)
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse([]byte(`{`))
	assert.Error(t, err)
}

func TestContradictionsWereChecked(t *testing.T) {
	tests := []struct {
		name    string
		opinion Opinion
		checked bool
	}{
		{"anchors present", Opinion{ContradictingAnchors: []string{"evt-1"}}, true},
		{"none found asserted", Opinion{ContradictionsChecked: ContradictionsNoneFound}, true},
		{"nothing recorded", Opinion{}, false},
		{"wrong assertion text", Opinion{ContradictionsChecked: "nope"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.checked, tt.opinion.ContradictionsWereChecked())
		})
	}
}
