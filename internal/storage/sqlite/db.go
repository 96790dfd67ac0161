package sqlite

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ticketdraft/internal/domain"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS drafts (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_ref           TEXT NOT NULL,
		source_ref           TEXT DEFAULT '',
		subject              TEXT DEFAULT '',
		precedent_subject    TEXT DEFAULT '',
		precedent_resolution TEXT DEFAULT '',
		precedent_similarity REAL NOT NULL DEFAULT 0,
		draft                TEXT NOT NULL,
		score                REAL NOT NULL DEFAULT 0,
		round                INTEGER NOT NULL DEFAULT 1,
		guidance             TEXT DEFAULT '',
		approved             INTEGER NOT NULL DEFAULT 0,
		generation_failed    INTEGER NOT NULL DEFAULT 0,
		llm_provider         TEXT DEFAULT '',
		llm_model            TEXT DEFAULT '',
		created_at           DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_drafts_ticket ON drafts(ticket_ref);
	CREATE INDEX IF NOT EXISTS idx_drafts_source_ref ON drafts(source_ref);
	CREATE INDEX IF NOT EXISTS idx_drafts_created_at ON drafts(created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func InsertDraft(db *sql.DB, rec domain.DraftRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Round < 1 {
		rec.Round = 1
	}
	res, err := db.Exec(
		`INSERT INTO drafts (ticket_ref, source_ref, subject, precedent_subject, precedent_resolution,
		                     precedent_similarity, draft, score, round, guidance, approved,
		                     generation_failed, llm_provider, llm_model, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TicketRef, rec.SourceRef, rec.Subject, rec.PrecedentSubject, rec.PrecedentResolution,
		rec.PrecedentSimilarity, rec.Draft, rec.Score, rec.Round, rec.Guidance, rec.Approved,
		rec.GenerationFailed, rec.LLMProvider, rec.LLMModel, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func MarkDraftApproved(db *sql.DB, id int64) error {
	res, err := db.Exec(`UPDATE drafts SET approved = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func GetDraftByID(db *sql.DB, id int64) (domain.DraftRecord, error) {
	row := db.QueryRow(`SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id)
	return scanDraft(row)
}

// GetDraftsByTicket returns every round recorded for a ticket, oldest first.
func GetDraftsByTicket(db *sql.DB, ticketRef string) ([]domain.DraftRecord, error) {
	rows, err := db.Query(
		`SELECT `+draftColumns+` FROM drafts WHERE ticket_ref = ? ORDER BY created_at ASC, id ASC`,
		ticketRef,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []domain.DraftRecord
	for rows.Next() {
		rec, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, rec)
	}
	return drafts, rows.Err()
}

func SourceRefProcessed(db *sql.DB, sourceRef string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM drafts WHERE source_ref = ?", sourceRef).Scan(&count)
	return count > 0, err
}

func GetDraftStats(db *sql.DB, since time.Time) (domain.DraftStats, error) {
	var s domain.DraftStats
	err := db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(approved), 0),
		        COALESCE(SUM(generation_failed), 0),
		        COALESCE(AVG(score), 0),
		        COALESCE(SUM(CASE WHEN score < 25 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN score >= 25 AND score < 50 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN score >= 50 AND score < 75 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN score >= 75 THEN 1 ELSE 0 END), 0)
		 FROM drafts WHERE created_at >= ?`,
		since.UTC(),
	).Scan(&s.TotalDrafts, &s.ApprovedDrafts, &s.FailedDrafts, &s.AvgScore,
		&s.BucketBelow25, &s.Bucket25to50, &s.Bucket50to75, &s.Bucket75Plus)
	return s, err
}

const draftColumns = `id, ticket_ref, source_ref, subject, precedent_subject, precedent_resolution,
	precedent_similarity, draft, score, round, guidance, approved, generation_failed,
	llm_provider, llm_model, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(r rowScanner) (domain.DraftRecord, error) {
	var rec domain.DraftRecord
	err := r.Scan(&rec.ID, &rec.TicketRef, &rec.SourceRef, &rec.Subject, &rec.PrecedentSubject,
		&rec.PrecedentResolution, &rec.PrecedentSimilarity, &rec.Draft, &rec.Score, &rec.Round,
		&rec.Guidance, &rec.Approved, &rec.GenerationFailed, &rec.LLMProvider, &rec.LLMModel,
		&rec.CreatedAt)
	return rec, err
}

// DraftStore adapts the package functions to the drafting and watch
// packages' store interfaces.
type DraftStore struct {
	DB *sql.DB
}

func (s DraftStore) SaveDraft(rec domain.DraftRecord) (int64, error) {
	return InsertDraft(s.DB, rec)
}

func (s DraftStore) ApproveDraft(id int64) error {
	return MarkDraftApproved(s.DB, id)
}

func (s DraftStore) Processed(sourceRef string) (bool, error) {
	return SourceRefProcessed(s.DB, sourceRef)
}
