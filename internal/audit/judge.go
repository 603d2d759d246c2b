package audit

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/brand-guardian/backend/internal/search"
)

// ruleTopK is how many rule documents back each judgment.
const ruleTopK = 3

const skippedReport = "Audit skipped because video processing failed (No Transcript)."

// RuleRetriever returns the rule documents most relevant to a query.
type RuleRetriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]search.Document, error)
}

// ChatModel is a single blocking call to a hosted language model.
type ChatModel interface {
	ChatComplete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// runJudgment retrieves the relevant rules, asks the model for a
// verdict, and parses it. If extraction produced no transcript the
// model is never invoked.
func runJudgment(ctx context.Context, retriever RuleRetriever, model ChatModel, state *State) Update {
	if state.Transcript == "" {
		log.Printf("[judge] no transcript available, skipping audit (session %s)", state.SessionID)
		return Update{
			FinalStatus: StatusFail,
			FinalReport: strPtr(skippedReport),
		}
	}

	log.Printf("[judge] querying knowledge base (session %s)", state.SessionID)

	query := state.Transcript + " " + strings.Join(state.OCRText, " ")
	docs, err := retriever.Retrieve(ctx, query, ruleTopK)
	if err != nil {
		log.Printf("[judge] rule retrieval failed: %v", err)
		return failure(fmt.Sprintf("retrieve rules: %v", err))
	}

	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content
	}
	rules := strings.Join(contents, "\n\n")

	raw, err := model.ChatComplete(ctx, systemPrompt(rules), userMessage(state))
	if err != nil {
		log.Printf("[judge] model invocation failed: %v", err)
		return failure(fmt.Sprintf("invoke model: %v", err))
	}

	verdict, err := ParseVerdict(raw)
	if err != nil {
		log.Printf("[judge] verdict parse failed: %v", err)
		log.Printf("[judge] raw model response: %s", raw)
		return failure(err.Error())
	}

	log.Printf("[judge] verdict: status=%s issues=%d", verdict.Status, len(verdict.ComplianceResults))
	return Update{
		ComplianceResults: verdict.ComplianceResults,
		FinalStatus:       verdict.Status,
		FinalReport:       strPtr(verdict.FinalReport),
	}
}

func systemPrompt(rules string) string {
	return fmt.Sprintf(`You are a Senior Brand Compliance Auditor.

OFFICIAL REGULATORY RULES:
%s

INSTRUCTIONS:
1. Analyze the Transcript and OCR text below.
2. Identify ANY violations of the rules.
3. Return strictly JSON in the following format:

{
    "compliance_results": [
        {
            "category": "Claim Validation",
            "severity": "CRITICAL",
            "description": "Explanation of the violation..."
        }
    ],
    "status": "FAIL",
    "final_report": "Summary of findings..."
}

If no violations are found, set "status" to "PASS" and "compliance_results" to [].`, rules)
}

func userMessage(state *State) string {
	var b strings.Builder
	b.WriteString("VIDEO METADATA: ")
	b.WriteString(fmt.Sprintf("%v", state.VideoMetadata))
	b.WriteString("\nTRANSCRIPT: ")
	b.WriteString(state.Transcript)
	b.WriteString("\nON-SCREEN TEXT (OCR): ")
	b.WriteString(fmt.Sprintf("%v", state.OCRText))
	return b.String()
}
