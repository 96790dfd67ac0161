package drafting

import (
	"context"
	"fmt"
	"log"

	"ticketdraft/internal/domain"
)

type Decision struct {
	Approved bool
	Guidance string
}

// Operator is the human who approves a draft or asks for another round.
type Operator interface {
	Review(ctx context.Context, res Result) (Decision, error)
}

// Review drafts a thread and loops through operator decisions until the
// draft is approved or maxRounds drafts have been rejected.
func (d *Drafter) Review(ctx context.Context, th domain.Thread, op Operator, maxRounds int) (Result, error) {
	if maxRounds < 1 {
		maxRounds = 1
	}
	res, err := d.Draft(ctx, th)
	if err != nil {
		return Result{}, err
	}

	for {
		dec, err := op.Review(ctx, res)
		if err != nil {
			return res, fmt.Errorf("operator review: %w", err)
		}
		if dec.Approved {
			return res, d.approve(ctx, &res)
		}
		if res.Record.Round >= maxRounds {
			log.Printf("drafting review ticket=%s rounds=%d approved=false", res.Record.TicketRef, res.Record.Round)
			return res, ErrRoundsExhausted
		}
		if res, err = d.Refine(ctx, res, dec.Guidance); err != nil {
			return res, err
		}
	}
}

func (d *Drafter) approve(ctx context.Context, res *Result) error {
	res.Record.Approved = true
	if d.Store != nil && res.Record.ID != 0 {
		if err := d.Store.ApproveDraft(res.Record.ID); err != nil {
			return fmt.Errorf("approve draft %d: %w", res.Record.ID, err)
		}
	}
	log.Printf("drafting review ticket=%s rounds=%d approved=true score=%.1f", res.Record.TicketRef, res.Record.Round, res.Record.Score)
	if d.Notifier != nil {
		if err := d.Notifier.NotifyDraft(ctx, res.Record); err != nil {
			return fmt.Errorf("notify approved draft: %w", err)
		}
	}
	return nil
}
