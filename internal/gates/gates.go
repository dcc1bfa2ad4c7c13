package gates

import (
	"fmt"

	"github.com/evidify/integrity/internal/canonical"
	"github.com/evidify/integrity/internal/ledger"
	"github.com/evidify/integrity/internal/record"
)

// ReviewActions is the fixed set of approval actions a human review event
// may record for AI-generated content.
var ReviewActions = map[string]bool{
	"accepted":            true,
	"accepted_with_edits": true,
	"rejected":            true,
}

// Evaluate runs every gate over the record and audit trail and returns the
// sorted finding list. Single pass, no retries, no shared state: the same
// inputs always yield the same findings in the same order.
func Evaluate(rec record.CaseRecord, events []ledger.Event) []Finding {
	var findings []Finding

	findings = append(findings, evalOpinions(rec)...)
	findings = append(findings, evalLimitations(rec)...)
	findings = append(findings, evalAIReview(rec, events)...)
	findings = append(findings, evalContradictions(rec)...)
	findings = append(findings, evalMetadata(rec)...)

	sortFindings(findings)
	return findings
}

// evalOpinions checks that every opinion carries its full evidentiary
// basis: supporting links, an explicit contradicting-evidence check, a
// reasoning narrative, and change criteria. Each missing element blocks.
func evalOpinions(rec record.CaseRecord) []Finding {
	var out []Finding
	for _, op := range rec.Opinions {
		obj := ObjectRef{Type: "opinion", ID: op.ID}

		if len(op.SupportingAnchors) == 0 {
			out = append(out, newFinding(
				GateOpinionBasis, "OPINION_NO_BASIS", "NO_SUPPORTING_ANCHORS", SeverityBlock,
				fmt.Sprintf("Opinion %s has no supporting evidentiary anchors in the audit log", op.ID),
				"Link the opinion to at least one supporting evidence event before finalizing",
				obj))
		}
		if !op.ContradictionsWereChecked() {
			out = append(out, newFinding(
				GateOpinionBasis, "OPINION_NO_CONTRADICTION_CHECK", "CONTRADICTIONS_NOT_CHECKED", SeverityBlock,
				fmt.Sprintf("Opinion %s does not record whether contradicting evidence was checked", op.ID),
				"Record contradicting anchors or an explicit none-found assertion",
				obj))
		}
		if op.Reasoning == "" {
			out = append(out, newFinding(
				GateOpinionBasis, "OPINION_NO_REASONING", "MISSING_NARRATIVE", SeverityBlock,
				fmt.Sprintf("Opinion %s has no reasoning narrative", op.ID),
				"Add the reasoning that connects the evidence to the conclusion",
				obj))
		}
		if op.ChangeCriteria == "" {
			out = append(out, newFinding(
				GateOpinionBasis, "OPINION_NO_CHANGE_CRITERIA", "MISSING_CRITERIA", SeverityBlock,
				fmt.Sprintf("Opinion %s does not state what evidence would change the conclusion", op.ID),
				"State the conditions under which the opinion would be revised",
				obj))
		}
	}
	return out
}

// evalLimitations checks that every limitation carries an explicit
// addressed-status.
func evalLimitations(rec record.CaseRecord) []Finding {
	var out []Finding
	for _, lim := range rec.Limitations {
		if lim.AddressedStatus == "" {
			out = append(out, newFinding(
				GateLimitations, "LIMITATION_UNADDRESSED", "MISSING_STATUS", SeverityBlock,
				fmt.Sprintf("Limitation %s has no addressed-status", lim.ID),
				"Mark the limitation as addressed, acknowledged, or out of scope",
				ObjectRef{Type: "limitation", ID: lim.ID}))
		}
	}
	return out
}

// evalAIReview joins AI content blocks against human review events from
// the audit trail. Review events carry {content_id, action} payloads; the
// action must come from the fixed ReviewActions set.
func evalAIReview(rec record.CaseRecord, events []ledger.Event) []Finding {
	reviews := reviewActionsByContent(events)

	var out []Finding
	for _, ai := range rec.AIContents {
		obj := ObjectRef{Type: "ai_content", ID: ai.ID}

		action, reviewed := reviews[ai.ID]
		switch {
		case !reviewed:
			out = append(out, newFinding(
				GateAIReview, "AI_CONTENT_UNREVIEWED", "MISSING_REVIEW_EVENT", SeverityBlock,
				fmt.Sprintf("AI-generated content %s has no human review event", ai.ID),
				"Record an ai_content_reviewed event with an approval action",
				obj))
		case !ReviewActions[action]:
			out = append(out, newFinding(
				GateAIReview, "AI_CONTENT_UNREVIEWED", "INVALID_REVIEW_ACTION", SeverityBlock,
				fmt.Sprintf("AI-generated content %s has review action %q outside the approved set", ai.ID, action),
				"Re-record the review with one of: accepted, accepted_with_edits, rejected",
				obj))
		}
	}
	return out
}

// reviewActionsByContent extracts the LAST recorded review action per
// content id. Later events win: corrections are new events, and the most
// recent review is the operative one.
func reviewActionsByContent(events []ledger.Event) map[string]string {
	reviews := make(map[string]string)
	for _, ev := range events {
		if ev.Type != ledger.EventAIContentReviewed {
			continue
		}
		payload, ok := ev.Payload.(canonical.Object)
		if !ok {
			continue
		}
		contentID, ok := payload["content_id"].(canonical.String)
		if !ok {
			continue
		}
		action, _ := payload["action"].(canonical.String)
		reviews[string(contentID)] = string(action)
	}
	return reviews
}

// evalContradictions checks that every detected contradiction reached a
// resolved status.
func evalContradictions(rec record.CaseRecord) []Finding {
	var out []Finding
	for _, con := range rec.Contradictions {
		if con.Status != record.ContradictionResolved {
			out = append(out, newFinding(
				GateContradictions, "CONTRADICTION_UNRESOLVED", "STATUS_NOT_RESOLVED", SeverityBlock,
				fmt.Sprintf("Contradiction %s has status %q, expected %q", con.ID, con.Status, record.ContradictionResolved),
				"Resolve the contradiction or document why it cannot be resolved",
				ObjectRef{Type: "contradiction", ID: con.ID}))
		}
	}
	return out
}

// evalMetadata checks recommended case metadata. Missing fields warn,
// never block.
func evalMetadata(rec record.CaseRecord) []Finding {
	obj := ObjectRef{Type: "case", ID: rec.CaseID}

	missing := []struct {
		value   string
		subCode string
		field   string
	}{
		{rec.Metadata.Role, "MISSING_ROLE", "role"},
		{rec.Metadata.CentralQuestion, "MISSING_CENTRAL_QUESTION", "central question"},
		{rec.Metadata.Scope, "MISSING_SCOPE", "scope"},
	}

	var out []Finding
	for _, m := range missing {
		if m.value == "" {
			out = append(out, newFinding(
				GateMetadata, "CASE_METADATA_INCOMPLETE", m.subCode, SeverityWarn,
				fmt.Sprintf("Case %s is missing the %s metadata field", rec.CaseID, m.field),
				fmt.Sprintf("Record the %s in the case metadata", m.field),
				obj))
		}
	}
	return out
}
