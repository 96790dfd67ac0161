package watch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"ticketdraft/internal/domain"
	"ticketdraft/internal/drafting"
	"ticketdraft/internal/similarity"
	"ticketdraft/internal/thread"
)

// WatchResult tracks separate counters for each outcome of an inbox scan.
type WatchResult struct {
	Found    int
	Drafted  int
	Fallback int
	Skipped  int
	Failed   int
	Errors   []string
}

type Store interface {
	Processed(sourceRef string) (bool, error)
}

type Drafter interface {
	Draft(ctx context.Context, th domain.Thread) (drafting.Result, error)
}

type Notifier interface {
	NotifyDraft(ctx context.Context, rec domain.DraftRecord) error
	NotifyText(ctx context.Context, text string) error
}

type Watcher struct {
	InboxDir string
	Store    Store
	Drafter  Drafter
	Notifier Notifier // optional
	Location *time.Location
}

// ScanInbox drafts every thread file in the inbox that has no stored draft
// yet. A missing precedent index aborts the scan since no file can succeed.
func (w *Watcher) ScanInbox(ctx context.Context) (WatchResult, error) {
	var result WatchResult

	entries, err := os.ReadDir(w.InboxDir)
	if err != nil {
		return result, fmt.Errorf("read inbox %s: %w", w.InboxDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !thread.Extensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Found++
		path := filepath.Join(w.InboxDir, entry.Name())

		processed, err := w.Store.Processed(path)
		if err != nil {
			log.Printf("watch store error path=%s: %v", path, err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		if processed {
			result.Skipped++
			continue
		}

		th, err := thread.LoadFile(path)
		if err != nil {
			log.Printf("watch load error path=%s: %v", path, err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}

		res, err := w.Drafter.Draft(ctx, th)
		if errors.Is(err, drafting.ErrNoPrecedent) || errors.Is(err, similarity.ErrEmptyCorpus) {
			return result, err
		}
		if err != nil {
			log.Printf("watch draft error path=%s: %v", path, err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		result.Drafted++
		if res.Record.GenerationFailed {
			result.Fallback++
		}

		if w.Notifier != nil {
			if err := w.Notifier.NotifyDraft(ctx, res.Record); err != nil {
				log.Printf("watch notify error ticket=%s: %v", res.Record.TicketRef, err)
				result.Errors = append(result.Errors, fmt.Sprintf("%s: notify: %v", entry.Name(), err))
			}
		}
	}

	log.Printf("watch scan inbox=%s found=%d drafted=%d fallback=%d skipped=%d failed=%d",
		w.InboxDir, result.Found, result.Drafted, result.Fallback, result.Skipped, result.Failed)
	return result, nil
}

// FormatWatchSummary returns a human-readable summary of a WatchResult.
func FormatWatchSummary(result WatchResult) string {
	if result.Found == 0 {
		return "No thread files in inbox."
	}

	if result.Drafted == 0 {
		var reasons []string
		if result.Skipped > 0 {
			reasons = append(reasons, fmt.Sprintf("%d already drafted", result.Skipped))
		}
		if result.Failed > 0 {
			reasons = append(reasons, fmt.Sprintf("%d failed", result.Failed))
		}
		msg := fmt.Sprintf("Found %d thread files, none drafted", result.Found)
		if len(reasons) > 0 {
			msg += fmt.Sprintf(" (%s)", strings.Join(reasons, ", "))
		}
		msg += "."
		if len(result.Errors) > 0 {
			msg += fmt.Sprintf("\nWarnings:\n%s", strings.Join(result.Errors, "\n"))
		}
		return msg
	}

	var summary []string
	summary = append(summary, fmt.Sprintf("%d drafted", result.Drafted))
	if result.Fallback > 0 {
		summary = append(summary, fmt.Sprintf("%d need manual reply", result.Fallback))
	}
	if result.Skipped > 0 {
		summary = append(summary, fmt.Sprintf("%d already drafted", result.Skipped))
	}
	if result.Failed > 0 {
		summary = append(summary, fmt.Sprintf("%d failed", result.Failed))
	}
	msg := fmt.Sprintf("Scanned %d thread files: %s", result.Found, strings.Join(summary, ", "))
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\nWarnings:\n%s", strings.Join(result.Errors, "\n"))
	}
	return msg
}

// Run scans the inbox on a standard 5-field cron schedule until ctx is
// cancelled. Examples: "*/5 * * * *" (every five minutes), "0 8-18 * * 1-5"
// (hourly during weekday office hours).
func (w *Watcher) Run(ctx context.Context, schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(strings.TrimSpace(schedule))
	if err != nil {
		return fmt.Errorf("invalid watch_schedule '%s': %w", schedule, err)
	}
	loc := w.Location
	if loc == nil {
		loc = time.Local
	}
	log.Printf("Inbox watch scheduled (cron: %s) dir=%s", schedule, w.InboxDir)

	for {
		now := time.Now().In(loc)
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next inbox scan at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Second))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		w.runOnce(ctx)
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	result, err := w.ScanInbox(ctx)
	summary := FormatWatchSummary(result)
	if err != nil {
		log.Printf("Inbox scan error: %v", err)
		summary += fmt.Sprintf("\nScan stopped: %v", err)
	}
	log.Printf("Inbox scan complete: %s", summary)

	if w.Notifier != nil && result.Drafted > 0 {
		if err := w.Notifier.NotifyText(ctx, "Inbox scan complete: "+summary); err != nil {
			log.Printf("Inbox scan post error: %v", err)
		}
	}
}
