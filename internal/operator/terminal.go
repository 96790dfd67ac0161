package operator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"ticketdraft/internal/drafting"
	"ticketdraft/internal/scoring"
)

// Terminal asks for approval on a line-oriented console.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	scanner *bufio.Scanner
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{In: in, Out: out}
}

func (t *Terminal) Review(ctx context.Context, res drafting.Result) (drafting.Decision, error) {
	if t.scanner == nil {
		t.scanner = bufio.NewScanner(t.In)
	}
	t.show(res)

	for {
		if err := ctx.Err(); err != nil {
			return drafting.Decision{}, err
		}
		answer, err := t.ask("Approve this draft? [y/n] ")
		if err != nil {
			return drafting.Decision{}, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return drafting.Decision{Approved: true}, nil
		case "n", "no":
			guidance, err := t.ask("Guidance for the next draft: ")
			if err != nil {
				return drafting.Decision{}, err
			}
			return drafting.Decision{Guidance: guidance}, nil
		default:
			fmt.Fprintln(t.Out, "Please answer y or n.")
		}
	}
}

func (t *Terminal) show(res drafting.Result) {
	rec := res.Record
	fmt.Fprintf(t.Out, "\n=== Ticket %s (round %d) ===\n", rec.TicketRef, rec.Round)
	fmt.Fprintf(t.Out, "Precedent subject:    %s\n", rec.PrecedentSubject)
	fmt.Fprintf(t.Out, "Precedent resolution: %s\n\n", rec.PrecedentResolution)
	fmt.Fprintf(t.Out, "Draft:\n%s\n\n", rec.Draft)
	fmt.Fprintf(t.Out, "Similarity to precedent: %.0f%% (%s)\n", rec.Score, scoring.Band(rec.Score))
}

func (t *Terminal) ask(prompt string) (string, error) {
	fmt.Fprint(t.Out, prompt)
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", fmt.Errorf("read answer: %w", err)
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(t.scanner.Text()), nil
}

// IsClosed reports whether err means the operator's input ended.
func IsClosed(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF)
}
