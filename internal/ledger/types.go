package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/evidify/integrity/internal/canonical"
)

// Event kinds committed to the ledger. The set is closed: producers log
// typed events only, never arbitrary strings.
const (
	EventSessionStarted        = "session_started"
	EventOpinionRecorded       = "opinion_recorded"
	EventEvidenceLinked        = "evidence_linked"
	EventLimitationRecorded    = "limitation_recorded"
	EventAIContentGenerated    = "ai_content_generated"
	EventAIContentReviewed     = "ai_content_reviewed"
	EventContradictionFlagged  = "contradiction_flagged"
	EventContradictionResolved = "contradiction_resolved"
	EventRecordLocked          = "record_locked"
	EventDecisionFinalized     = "decision_finalized"
)

// Event is a single raw producer event. Immutable once appended; owned
// exclusively by the ledger that contains it. Corrections are new events,
// never edits.
type Event struct {
	ID        string          // stable, assigned once
	Seq       int             // 0-based, monotonic
	Type      string          // enumerated event kind
	Timestamp string          // ISO-8601, producer clock - untrusted
	Payload   canonical.Value // structured value
}

// eventJSON is the wire shape of an Event.
type eventJSON struct {
	ID        string          `json:"id"`
	Seq       int             `json:"seq"`
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// MarshalJSON writes the event with its payload in canonical form, so a
// written event stream is byte-deterministic.
func (e Event) MarshalJSON() ([]byte, error) {
	payload, err := canonical.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("event %s: marshal payload: %w", e.ID, err)
	}
	return json.Marshal(eventJSON{
		ID:        e.ID,
		Seq:       e.Seq,
		Type:      e.Type,
		Timestamp: e.Timestamp,
		Payload:   payload,
	})
}

// UnmarshalJSON parses an event, decoding the payload into the canonical
// value model.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Payload) == 0 {
		raw.Payload = json.RawMessage("null")
	}
	payload, err := canonical.Decode(raw.Payload)
	if err != nil {
		return fmt.Errorf("event %s: decode payload: %w", raw.ID, err)
	}
	*e = Event{
		ID:        raw.ID,
		Seq:       raw.Seq,
		Type:      raw.Type,
		Timestamp: raw.Timestamp,
		Payload:   payload,
	}
	return nil
}

// Entry is one ledger entry, binding an event into the hash chain.
// previousHash of entry 0 is the genesis value; for every later entry it
// equals the predecessor's chainHash.
type Entry struct {
	Seq          int    `json:"seq"`
	EventID      string `json:"eventId"`
	EventType    string `json:"eventType"`
	Timestamp    string `json:"timestamp"`
	ContentHash  string `json:"contentHash"`
	PreviousHash string `json:"previousHash"`
	ChainHash    string `json:"chainHash"`
}
