package drafting

import (
	"fmt"
	"strings"
)

const GeneratorSystemPrompt = `You draft replies for a university IT help desk.
Write a short, polite reply to the requester that resolves their issue.
Base the fix on the precedent resolution when it applies; do not invent
procedures that are not in the precedent or the thread.
Reply with the message body only (no subject line, no signature block).`

const SummarizerSystemPrompt = `You summarize help desk ticket threads.
Keep the requester's problem, what has been tried, and any error messages.
Reply with the summary only.`

type PromptInput struct {
	ThreadText          string
	InternalNotes       string
	PrecedentSubject    string
	PrecedentResolution string
	Guidance            string
	PreviousDraft       string
}

func BuildDraftPrompt(in PromptInput) string {
	var b strings.Builder
	b.WriteString("Ticket thread:\n")
	b.WriteString(orNone(in.ThreadText))
	b.WriteString("\n\n")

	if strings.TrimSpace(in.InternalNotes) != "" {
		b.WriteString("Internal notes (not visible to the requester):\n")
		b.WriteString(strings.TrimSpace(in.InternalNotes))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Most similar resolved ticket:\nSubject: %s\nResolution: %s\n",
		orNone(in.PrecedentSubject), orNone(in.PrecedentResolution))

	if strings.TrimSpace(in.PreviousDraft) != "" {
		b.WriteString("\nPrevious draft (rejected by the operator):\n")
		b.WriteString(strings.TrimSpace(in.PreviousDraft))
		b.WriteString("\n")
	}
	if strings.TrimSpace(in.Guidance) != "" {
		b.WriteString("\nOperator guidance for this revision:\n")
		b.WriteString(strings.TrimSpace(in.Guidance))
		b.WriteString("\n")
	}

	b.WriteString("\nDraft the reply.")
	return b.String()
}

func BuildSummaryPrompt(threadText string, maxChars int) string {
	return "Summarize this ticket thread:\n\n" + truncateRunes(threadText, maxChars)
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return strings.TrimSpace(s)
}
