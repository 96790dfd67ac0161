package drafting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ticketdraft/internal/domain"
	"ticketdraft/internal/integrations/llm"
	"ticketdraft/internal/normalize"
	"ticketdraft/internal/scoring"
	"ticketdraft/internal/similarity"
)

// FallbackDraft stands in for the reply when the generator fails, so the
// operator can still take over the ticket by hand.
const FallbackDraft = "No response generated."

var (
	ErrNoPrecedent     = errors.New("drafting: no precedent index available")
	ErrRoundsExhausted = errors.New("drafting: review rounds exhausted without approval")
)

type Store interface {
	SaveDraft(rec domain.DraftRecord) (int64, error)
	ApproveDraft(id int64) error
}

type Notifier interface {
	NotifyDraft(ctx context.Context, rec domain.DraftRecord) error
}

type Drafter struct {
	Generator            llm.Invoker
	Summarizer           llm.Invoker // nil disables summarization
	Normalizer           *normalize.Normalizer
	Index                *similarity.Holder
	Store                Store    // optional
	Notifier             Notifier // optional
	Provider             string
	SummaryMaxInputChars int

	now func() time.Time
}

// Result is one drafting round together with the inputs later rounds reuse.
type Result struct {
	Record     domain.DraftRecord
	Normalized string
	ThreadText string // summary when one was produced, else Normalized
	Notes      string // normalized internal notes
	Precedent  similarity.Match
}

// Draft runs the first round for a thread. Precedent lookup happens before
// any external call; its errors abort the round.
func (d *Drafter) Draft(ctx context.Context, th domain.Thread) (Result, error) {
	normalized := d.Normalizer.Normalize(th.Lines())

	subject := strings.TrimSpace(th.Subject)
	if subject == "" {
		subject = firstLine(d.Normalizer.Normalize(domain.Texts(th.Messages())))
	}

	match, err := d.precedent(subject)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Normalized: normalized,
		ThreadText: d.summarize(ctx, th.Ticket, normalized),
		Notes:      d.Normalizer.Normalize(domain.Texts(th.Notes())),
		Precedent:  match,
		Record: domain.DraftRecord{
			TicketRef:           th.Ticket,
			SourceRef:           th.SourceRef,
			Subject:             subject,
			PrecedentSubject:    match.Record.Subject,
			PrecedentResolution: match.Record.Resolution,
			PrecedentSimilarity: match.Similarity,
			Round:               1,
		},
	}
	return d.generate(ctx, res, ""), nil
}

// Refine produces the next round from a rejected one.
func (d *Drafter) Refine(ctx context.Context, prev Result, guidance string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return prev, err
	}
	next := prev
	next.Record.ID = 0
	next.Record.Approved = false
	next.Record.Round = prev.Record.Round + 1
	next.Record.Guidance = guidance

	previous := prev.Record.Draft
	if prev.Record.GenerationFailed {
		previous = ""
	}
	return d.generate(ctx, next, previous), nil
}

func (d *Drafter) precedent(subject string) (similarity.Match, error) {
	if d.Index == nil {
		return similarity.Match{}, ErrNoPrecedent
	}
	match, err := d.Index.Nearest(subject)
	if errors.Is(err, similarity.ErrNoIndex) {
		return similarity.Match{}, fmt.Errorf("%w: %w", ErrNoPrecedent, err)
	}
	if err != nil {
		return similarity.Match{}, fmt.Errorf("find precedent: %w", err)
	}
	log.Printf("drafting precedent subject=%q match=%q similarity=%.3f", subject, match.Record.Subject, match.Similarity)
	return match, nil
}

func (d *Drafter) summarize(ctx context.Context, ticket, normalized string) string {
	if d.Summarizer == nil || strings.TrimSpace(normalized) == "" {
		return normalized
	}
	summary, err := d.Summarizer.Invoke(ctx, BuildSummaryPrompt(normalized, d.SummaryMaxInputChars))
	if err != nil {
		log.Printf("drafting summary error ticket=%s: %v (using normalized text)", ticket, err)
		return normalized
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return normalized
	}
	log.Printf("drafting summary ticket=%s in=%d out=%d", ticket, len(normalized), len(summary))
	return summary
}

func (d *Drafter) generate(ctx context.Context, res Result, previousDraft string) Result {
	prompt := BuildDraftPrompt(PromptInput{
		ThreadText:          res.ThreadText,
		InternalNotes:       res.Notes,
		PrecedentSubject:    res.Precedent.Record.Subject,
		PrecedentResolution: res.Precedent.Record.Resolution,
		Guidance:            res.Record.Guidance,
		PreviousDraft:       previousDraft,
	})

	rec := &res.Record
	rec.LLMProvider = d.Provider
	rec.LLMModel = llm.ModelName(d.Generator)

	text, err := d.Generator.Invoke(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = &llm.ExternalServiceError{Provider: d.Provider, Err: errors.New("empty draft")}
	}
	if err != nil {
		log.Printf("drafting generation error ticket=%s round=%d: %v", rec.TicketRef, rec.Round, err)
		rec.Draft = FallbackDraft
		rec.GenerationFailed = true
		rec.Score = 0
	} else {
		rec.Draft = strings.TrimSpace(text)
		rec.GenerationFailed = false
		rec.Score = scoring.Score(rec.Draft, rec.PrecedentResolution)
	}
	rec.CreatedAt = d.clock()

	if d.Store != nil {
		id, err := d.Store.SaveDraft(*rec)
		if err != nil {
			log.Printf("drafting store error ticket=%s round=%d: %v", rec.TicketRef, rec.Round, err)
		} else {
			rec.ID = id
		}
	}
	log.Printf("drafting round ticket=%s round=%d score=%.1f failed=%t", rec.TicketRef, rec.Round, rec.Score, rec.GenerationFailed)
	return res
}

func (d *Drafter) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
