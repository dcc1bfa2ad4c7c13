package packs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidify/integrity/internal/export"
	"github.com/evidify/integrity/internal/verify"
)

func TestListPacks(t *testing.T) {
	all, err := List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "breast-imaging-baseline", all[0].ID)
	assert.Equal(t, "minimal-session", all[1].ID)
}

func TestLoadUnknownPack(t *testing.T) {
	_, err := Load("no-such-pack")
	assert.Error(t, err)
}

func TestUnknownScenario(t *testing.T) {
	p, err := Load("minimal-session")
	require.NoError(t, err)
	err = Generate(p, "no-such-scenario", t.TempDir())
	assert.Error(t, err)
}

func generateScenario(t *testing.T, packID, scenario string) string {
	t.Helper()
	p, err := Load(packID)
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, Generate(p, scenario, dir))
	return dir
}

func verifyScenario(t *testing.T, packID, scenario string) verify.Report {
	t.Helper()
	dir := generateScenario(t, packID, scenario)
	b, err := export.Read(dir)
	require.NoError(t, err)
	return verify.Verify(b, verify.DefaultConfig())
}

func checkStatus(t *testing.T, r verify.Report, name string) verify.Status {
	t.Helper()
	for _, c := range r.Checks {
		if c.Name == name {
			return c.Status
		}
	}
	t.Fatalf("report has no check %s", name)
	return ""
}

func TestCleanScenariosPass(t *testing.T) {
	for _, packID := range []string{"breast-imaging-baseline", "minimal-session"} {
		t.Run(packID, func(t *testing.T) {
			report := verifyScenario(t, packID, "clean")
			assert.True(t, report.Pass)
			assert.Empty(t, report.Failed())
		})
	}
}

func TestTamperedBiradsScenario(t *testing.T) {
	report := verifyScenario(t, "breast-imaging-baseline", "tampered-birads")
	assert.False(t, report.Pass)

	assert.Equal(t, verify.StatusFail, checkStatus(t, report, verify.CheckChainIntegrity))
	assert.Equal(t, verify.StatusFail, checkStatus(t, report, verify.CheckFinalHash))
	assert.Equal(t, verify.StatusPass, checkStatus(t, report, verify.CheckEventCount))
	assert.Equal(t, verify.StatusPass, checkStatus(t, report, verify.CheckSequenceNumbers))
	assert.Equal(t, verify.StatusPass, checkStatus(t, report, verify.CheckEventIDs))
}

func TestCountMismatchScenario(t *testing.T) {
	report := verifyScenario(t, "breast-imaging-baseline", "count-mismatch")
	assert.False(t, report.Pass)
	assert.Equal(t, verify.StatusFail, checkStatus(t, report, verify.CheckEventCount))
}

func TestReorderedScenario(t *testing.T) {
	report := verifyScenario(t, "breast-imaging-baseline", "reordered")
	assert.False(t, report.Pass)
	assert.Equal(t, verify.StatusFail, checkStatus(t, report, verify.CheckSequenceNumbers))
	assert.Equal(t, verify.StatusFail, checkStatus(t, report, verify.CheckChainIntegrity))
}

func TestTruncatedScenario(t *testing.T) {
	report := verifyScenario(t, "breast-imaging-baseline", "truncated")
	assert.False(t, report.Pass)
	assert.Equal(t, verify.StatusFail, checkStatus(t, report, verify.CheckEventCount))
	assert.Equal(t, verify.StatusFail, checkStatus(t, report, verify.CheckChainIntegrity))
}

func TestBrokenGenesisScenario(t *testing.T) {
	report := verifyScenario(t, "minimal-session", "broken-genesis")
	assert.False(t, report.Pass)
	assert.Equal(t, verify.StatusFail, checkStatus(t, report, verify.CheckChainIntegrity))
}

// Two generations of the same scenario must be byte-identical, file by
// file. This is what makes packs usable as golden regression inputs.
func TestGenerateDeterministic(t *testing.T) {
	a := generateScenario(t, "breast-imaging-baseline", "clean")
	b := generateScenario(t, "breast-imaging-baseline", "clean")

	entries, err := os.ReadDir(a)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		dataA, err := os.ReadFile(filepath.Join(a, entry.Name()))
		require.NoError(t, err)
		dataB, err := os.ReadFile(filepath.Join(b, entry.Name()))
		require.NoError(t, err)
		assert.Equal(t, dataA, dataB, entry.Name())
	}
}

func TestScenarioIDSpacesDisjoint(t *testing.T) {
	cleanDir := generateScenario(t, "minimal-session", "clean")
	brokenDir := generateScenario(t, "minimal-session", "broken-genesis")

	cleanBundle, err := export.Read(cleanDir)
	require.NoError(t, err)
	brokenBundle, err := export.Read(brokenDir)
	require.NoError(t, err)

	assert.NotEqual(t, cleanBundle.Events[0].ID, brokenBundle.Events[0].ID)
}

func TestCaseRecordWrittenCanonically(t *testing.T) {
	dir := generateScenario(t, "breast-imaging-baseline", "clean")

	data, err := os.ReadFile(filepath.Join(dir, export.FileCaseRecord))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"case_id":"case-breast-001"`)
}
