package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validHash = "e6a3385fb77c287a712e7f406a451727f0625041823ecf23bea7ef39b2e39805"

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	require.NoError(t, err)
	return v
}

func TestValidateManifest(t *testing.T) {
	v := newValidator(t)

	valid := `{"schemaVersion":"1.0","eventCount":5,"finalHash":"` + validHash + `","chainValid":true}`
	assert.NoError(t, v.ValidateManifest([]byte(valid)))

	withChecksums := `{"schemaVersion":"1.0","eventCount":5,"finalHash":"` + validHash + `","chainValid":true,` +
		`"fileChecksums":{"events.jsonl":"` + validHash + `"}}`
	assert.NoError(t, v.ValidateManifest([]byte(withChecksums)))

	invalid := []struct {
		name string
		data string
	}{
		{"missing finalHash", `{"schemaVersion":"1.0","eventCount":5,"chainValid":true}`},
		{"negative count", `{"schemaVersion":"1.0","eventCount":-1,"finalHash":"` + validHash + `","chainValid":true}`},
		{"short hash", `{"schemaVersion":"1.0","eventCount":5,"finalHash":"abc","chainValid":true}`},
		{"uppercase hash", `{"schemaVersion":"1.0","eventCount":5,"finalHash":"` + strings.ToUpper(validHash) + `","chainValid":true}`},
		{"empty version", `{"schemaVersion":"","eventCount":5,"finalHash":"` + validHash + `","chainValid":true}`},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, v.ValidateManifest([]byte(tt.data)))
		})
	}
}

func TestValidateLedgerEntry(t *testing.T) {
	v := newValidator(t)

	valid := `{"seq":0,"eventId":"evt-001","eventType":"session_started",` +
		`"timestamp":"2025-01-15T10:30:00.000Z","contentHash":"` + validHash + `",` +
		`"previousHash":"` + strings.Repeat("0", 64) + `","chainHash":"` + validHash + `"}`
	assert.NoError(t, v.ValidateLedgerEntry([]byte(valid)))

	missingChain := `{"seq":0,"eventId":"evt-001","eventType":"session_started",` +
		`"timestamp":"2025-01-15T10:30:00.000Z","contentHash":"` + validHash + `",` +
		`"previousHash":"` + strings.Repeat("0", 64) + `"}`
	assert.Error(t, v.ValidateLedgerEntry([]byte(missingChain)))
}

func TestValidateEvent(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.ValidateEvent([]byte(
		`{"id":"evt-001","seq":0,"type":"session_started","timestamp":"2025-01-15T10:30:00.000Z","payload":{"a":1}}`)))

	// payload is unconstrained, including null
	assert.NoError(t, v.ValidateEvent([]byte(
		`{"id":"evt-001","seq":0,"type":"session_started","timestamp":"2025-01-15T10:30:00.000Z","payload":null}`)))

	assert.Error(t, v.ValidateEvent([]byte(
		`{"id":"","seq":0,"type":"session_started","timestamp":"2025-01-15T10:30:00.000Z","payload":{}}`)), "empty id")

	assert.Error(t, v.ValidateEvent([]byte(
		`{"id":"evt-001","seq":0,"timestamp":"2025-01-15T10:30:00.000Z","payload":{}}`)), "missing type")
}
