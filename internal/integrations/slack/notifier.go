package slackbot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"

	"ticketdraft/internal/domain"
)

// Slack rejects section text over 3000 characters.
const maxSectionText = 2900

// Poster is the slice of the Slack client the notifier needs.
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

type Notifier struct {
	api       Poster
	channelID string
}

func NewNotifier(api Poster, channelID string) *Notifier {
	return &Notifier{api: api, channelID: channelID}
}

// NewClientNotifier builds a notifier backed by a real Slack client.
func NewClientNotifier(token, channelID string, opts ...slack.Option) *Notifier {
	return NewNotifier(slack.New(token, opts...), channelID)
}

// NotifyDraft posts an approved draft to the configured channel.
func (n *Notifier) NotifyDraft(ctx context.Context, rec domain.DraftRecord) error {
	_, ts, err := n.api.PostMessageContext(ctx, n.channelID,
		slack.MsgOptionText(FormatDraftMessage(rec), false),
		slack.MsgOptionBlocks(draftBlocks(rec)...),
	)
	if err != nil {
		log.Printf("slack notify error ticket=%s channel=%s: %v", rec.TicketRef, n.channelID, err)
		return fmt.Errorf("post draft for %s: %w", rec.TicketRef, err)
	}
	log.Printf("slack notify ticket=%s channel=%s ts=%s", rec.TicketRef, n.channelID, ts)
	return nil
}

// NotifyText posts a plain message, used for watch summaries.
func (n *Notifier) NotifyText(ctx context.Context, text string) error {
	if _, _, err := n.api.PostMessageContext(ctx, n.channelID, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}

func FormatDraftMessage(rec domain.DraftRecord) string {
	return fmt.Sprintf("Draft for ticket %s (score %.0f%%)\n\n%s", rec.TicketRef, rec.Score, rec.Draft)
}

func draftBlocks(rec domain.DraftRecord) []slack.Block {
	header := fmt.Sprintf("Draft for ticket %s", rec.TicketRef)
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, header, false, false)),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, truncate(rec.Draft, maxSectionText), false, false),
			nil, nil,
		),
	}

	var meta []string
	meta = append(meta, fmt.Sprintf("Score: *%.0f%%*", rec.Score))
	if rec.PrecedentSubject != "" {
		meta = append(meta, fmt.Sprintf("Precedent: _%s_", rec.PrecedentSubject))
	}
	if rec.Round > 1 {
		meta = append(meta, fmt.Sprintf("Round %d", rec.Round))
	}
	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType, strings.Join(meta, " | "), false, false),
	))
	return blocks
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
