package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ticketdraft/internal/domain"
	"ticketdraft/internal/drafting"
	"ticketdraft/internal/operator"
	"ticketdraft/internal/scoring"
	"ticketdraft/internal/storage/sqlite"
	"ticketdraft/internal/thread"
	"ticketdraft/internal/watch"
)

func draftCMD() *cobra.Command {
	var rounds int
	var noReview bool

	cmd := &cobra.Command{
		Use:   "draft <thread-file>",
		Short: "Draft a reply for one exported ticket thread and review it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			th, err := thread.LoadFile(args[0])
			if err != nil {
				return err
			}
			holder, _, err := loadIndex(cfg)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			d, _, err := newDrafter(cfg, db, holder)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if noReview {
				res, err := d.Draft(ctx, th)
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), res)
				return nil
			}

			if rounds < 1 {
				rounds = cfg.DraftMaxRounds
			}
			term := operator.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
			res, err := d.Review(ctx, th, term, rounds)
			switch {
			case errors.Is(err, drafting.ErrRoundsExhausted):
				fmt.Fprintf(cmd.OutOrStdout(), "No draft approved after %d rounds; reply to ticket %s manually.\n", res.Record.Round, th.Ticket)
				return nil
			case operator.IsClosed(err):
				fmt.Fprintln(cmd.OutOrStdout(), "\nInput closed; last draft left unapproved.")
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Draft approved for ticket %s (round %d, score %.0f%%).\n", th.Ticket, res.Record.Round, res.Record.Score)
			return nil
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 0, "maximum review rounds (default draft_max_rounds)")
	cmd.Flags().BoolVar(&noReview, "no-review", false, "draft once and print without asking for approval")
	return cmd
}

func nearestCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "nearest <subject>",
		Short: "Show the resolved ticket whose subject best matches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			holder, _, err := loadIndex(cfg)
			if err != nil {
				return err
			}
			match, err := holder.Nearest(strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Subject:    %s\n", match.Record.Subject)
			fmt.Fprintf(out, "Resolution: %s\n", match.Record.Resolution)
			fmt.Fprintf(out, "Similarity: %.3f (row %d)\n", match.Similarity, match.Index)
			return nil
		},
	}
}

func scoreCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "score <candidate> <reference>",
		Short: "Score a reply against a reference resolution (0-100)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := scoring.Score(args[0], args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "%.0f%% (%s)\n", s, scoring.Band(s))
			return nil
		},
	}
}

func watchCMD() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Draft replies for thread files dropped into the inbox directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			holder, reloader, err := loadIndex(cfg)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			d, notifier, err := newDrafter(cfg, db, holder)
			if err != nil {
				return err
			}
			// Watched drafts are never approved here. The watcher posts each
			// first-round draft unapproved for manual follow-up.
			d.Notifier = nil

			w := &watch.Watcher{
				InboxDir: cfg.InboxDir,
				Store:    sqlite.DraftStore{DB: db},
				Drafter:  d,
				Location: cfg.Location,
			}
			if notifier != nil {
				w.Notifier = notifier
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if once {
				result, err := w.ScanInbox(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), watch.FormatWatchSummary(result))
				return err
			}

			c, err := reloader.Start(cfg.CorpusReloadSchedule, cfg.Location)
			if err != nil {
				return err
			}
			if c != nil {
				defer c.Stop()
			}

			err = w.Run(ctx, cfg.WatchSchedule)
			if errors.Is(err, context.Canceled) {
				log.Println("Inbox watch stopped")
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "scan the inbox once and exit")
	return cmd
}

func statsCMD() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize stored drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			since := time.Now().AddDate(0, 0, -days)
			s, err := sqlite.GetDraftStats(db, since)
			if err != nil {
				return fmt.Errorf("draft stats: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), FormatStats(s, days))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "look back this many days")
	return cmd
}

func historyCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "history <ticket>",
		Short: "List every drafted round for a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			drafts, err := sqlite.GetDraftsByTicket(db, args[0])
			if err != nil {
				return fmt.Errorf("draft history: %w", err)
			}
			if len(drafts) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No drafts stored for ticket %s.\n", args[0])
				return nil
			}
			for _, rec := range drafts {
				printRecord(cmd.OutOrStdout(), rec, cfg.Location)
			}
			return nil
		},
	}
}

// FormatStats renders draft statistics the way the stats command prints them.
func FormatStats(s domain.DraftStats, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Drafts in the last %d days: %d\n", days, s.TotalDrafts)
	if s.TotalDrafts == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "Approved: %d (%.0f%%)\n", s.ApprovedDrafts, pct(s.ApprovedDrafts, s.TotalDrafts))
	fmt.Fprintf(&b, "Generation failed: %d\n", s.FailedDrafts)
	fmt.Fprintf(&b, "Average score: %.1f%%\n", s.AvgScore)
	fmt.Fprintf(&b, "Score <25: %d | 25-50: %d | 50-75: %d | 75+: %d\n",
		s.BucketBelow25, s.Bucket25to50, s.Bucket50to75, s.Bucket75Plus)
	return b.String()
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

func printResult(w io.Writer, res drafting.Result) {
	rec := res.Record
	fmt.Fprintf(w, "Ticket:     %s\n", rec.TicketRef)
	fmt.Fprintf(w, "Precedent:  %s\n", rec.PrecedentSubject)
	fmt.Fprintf(w, "Resolution: %s\n\n", rec.PrecedentResolution)
	fmt.Fprintf(w, "%s\n\n", rec.Draft)
	fmt.Fprintf(w, "Score: %.0f%% (%s)\n", rec.Score, scoring.Band(rec.Score))
}

func printRecord(w io.Writer, rec domain.DraftRecord, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	status := "pending"
	switch {
	case rec.Approved:
		status = "approved"
	case rec.GenerationFailed:
		status = "failed"
	}
	fmt.Fprintf(w, "#%d round %d %s score=%.0f%% %s\n", rec.ID, rec.Round, status, rec.Score, rec.CreatedAt.In(loc).Format("2006-01-02 15:04"))
	if rec.Guidance != "" {
		fmt.Fprintf(w, "  guidance: %s\n", rec.Guidance)
	}
	fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(rec.Draft, "\n", "\n  "))
}
