package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidify/integrity/internal/packs"
)

// execute runs the CLI with the given args and returns stdout plus the
// command error (nil means exit 0).
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// generateExport writes a pack scenario to a temp dir without going
// through the CLI, for use as verify input.
func generateExport(t *testing.T, packID, scenario string) string {
	t.Helper()
	p, err := packs.Load(packID)
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, packs.Generate(p, scenario, dir))
	return dir
}

func TestVerifyCleanExport(t *testing.T) {
	dir := generateExport(t, "breast-imaging-baseline", "clean")

	out, err := execute(t, "verify", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "All required checks passed")
	assert.Contains(t, out, "CHAIN_INTEGRITY")
	// The pack carries a case record, so the gate summary appears too.
	assert.Contains(t, out, "Gates: PASS")
}

func TestVerifyTamperedExportFails(t *testing.T) {
	dir := generateExport(t, "breast-imaging-baseline", "tampered-birads")

	out, err := execute(t, "verify", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "CONTENT_TAMPERED")
}

func TestVerifyMissingExportIsCommandError(t *testing.T) {
	_, err := execute(t, "verify", filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerifyJSONEnvelope(t *testing.T) {
	dir := generateExport(t, "breast-imaging-baseline", "clean")

	out, err := execute(t, "verify", dir, "--json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestVerifyJSONFailureEnvelope(t *testing.T) {
	dir := generateExport(t, "breast-imaging-baseline", "tampered-birads")

	out, err := execute(t, "verify", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VERIFY_FAILED", resp.Error.Code)
	assert.NotNil(t, resp.Data, "failing runs still carry the full report")
}

func TestVerifyCustomRequiredEvents(t *testing.T) {
	// minimal-session lacks nothing from the default set, but requiring
	// an event type it never emits must fail the run.
	dir := generateExport(t, "minimal-session", "clean")

	_, err := execute(t, "verify", dir, "--require-event", "opinion_recorded")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRunPackThenVerify(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")

	_, err := execute(t, "run-pack", "breast-imaging-baseline", "--scenario", "clean", "--export", dir)
	require.NoError(t, err)

	out, err := execute(t, "verify", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "All required checks passed")
}

func TestRunPackTamperedScenarioFailsVerify(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")

	_, err := execute(t, "run-pack", "minimal-session", "--scenario", "broken-genesis", "--export", dir)
	require.NoError(t, err)

	_, err = execute(t, "verify", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRunPackUnknownPack(t *testing.T) {
	_, err := execute(t, "run-pack", "no-such-pack", "--export", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestListPacks(t *testing.T) {
	out, err := execute(t, "list-packs")
	require.NoError(t, err)
	assert.Contains(t, out, "breast-imaging-baseline")
	assert.Contains(t, out, "minimal-session")
	assert.Contains(t, out, "tampered-birads")
}

func TestListPacksJSON(t *testing.T) {
	out, err := execute(t, "list-packs", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []PackSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "breast-imaging-baseline", resp.Data[0].ID)
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := execute(t, "list-packs", "--format", "xml")
	assert.Error(t, err)
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
