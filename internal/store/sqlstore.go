package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"prescreen/internal/session"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS sessions (
	call_id               TEXT PRIMARY KEY,
	candidate_name        TEXT NOT NULL,
	job_title             TEXT NOT NULL,
	outcome               TEXT NOT NULL,
	consent_given         INTEGER,
	passed_knockout       INTEGER NOT NULL DEFAULT 0,
	interested_in_alts    INTEGER NOT NULL DEFAULT 0,
	chosen_timeslot       TEXT,
	scheduling_preference TEXT,
	irrelevant_count      INTEGER NOT NULL DEFAULT 0,
	transcript            TEXT,
	history               TEXT,
	started_at            TEXT NOT NULL,
	ended_at              TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_outcome ON sessions(outcome);

CREATE TABLE IF NOT EXISTS knockout_answers (
	call_id        TEXT NOT NULL REFERENCES sessions(call_id) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	question_id    TEXT NOT NULL,
	question_text  TEXT NOT NULL,
	result         TEXT NOT NULL,
	raw_answer     TEXT NOT NULL,
	candidate_note TEXT,
	pre_known      INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (call_id, position)
);

CREATE TABLE IF NOT EXISTS open_answers (
	call_id        TEXT NOT NULL REFERENCES sessions(call_id) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	question_id    TEXT NOT NULL,
	question_text  TEXT NOT NULL,
	summary        TEXT NOT NULL,
	candidate_note TEXT,
	PRIMARY KEY (call_id, position)
);
`

func nullStr(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// SqlStore implements Store on SQLite via database/sql and the modernc
// driver (pure Go, no cgo).
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path, creating the parent directory
// and applying the schema.
func Open(path string) (*SqlStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return open(path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
}

// OpenMemory opens an in-memory SQLite DB for testing.
func OpenMemory() (*SqlStore, error) {
	return open(":memory:")
}

func open(dsn string) (*SqlStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The modernc driver serializes through one connection; more just
	// produce SQLITE_BUSY under write contention.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SqlStore{db: db}, nil
}

func (s *SqlStore) Close() error { return s.db.Close() }

// Record implements Store. The whole session lands in one transaction so a
// crash never leaves answers without their session row.
func (s *SqlStore) Record(ctx context.Context, rec *session.Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	transcript, err := json.Marshal(rec.Transcript)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	history, err := json.Marshal(rec.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var consent any
	if rec.ConsentGiven != nil {
		consent = boolInt(*rec.ConsentGiven)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions(
			call_id, candidate_name, job_title, outcome, consent_given,
			passed_knockout, interested_in_alts, chosen_timeslot,
			scheduling_preference, irrelevant_count, transcript, history,
			started_at, ended_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CallID, rec.CandidateName, rec.JobTitle, string(rec.Outcome), consent,
		boolInt(rec.PassedKnockout), boolInt(rec.InterestedInAlternatives),
		nilIfEmpty(rec.ChosenTimeslot), nilIfEmpty(rec.SchedulingPreference),
		rec.IrrelevantCount, string(transcript), string(history),
		rec.StartedAt.UTC().Format(time.RFC3339), rec.EndedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	// Replace wipes any answers from an earlier write of the same call.
	if _, err := tx.ExecContext(ctx, `DELETE FROM knockout_answers WHERE call_id = ?`, rec.CallID); err != nil {
		return fmt.Errorf("clear knockout answers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM open_answers WHERE call_id = ?`, rec.CallID); err != nil {
		return fmt.Errorf("clear open answers: %w", err)
	}
	for i, a := range rec.KnockoutAnswers {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO knockout_answers(
				call_id, position, question_id, question_text, result,
				raw_answer, candidate_note, pre_known)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.CallID, i, a.QuestionID, a.QuestionText, string(a.Result),
			a.RawAnswer, nilIfEmpty(a.CandidateNote), boolInt(a.PreKnown),
		)
		if err != nil {
			return fmt.Errorf("insert knockout answer: %w", err)
		}
	}
	for i, a := range rec.OpenAnswers {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO open_answers(
				call_id, position, question_id, question_text, summary, candidate_note)
			 VALUES(?, ?, ?, ?, ?, ?)`,
			rec.CallID, i, a.QuestionID, a.QuestionText, a.Summary, nilIfEmpty(a.CandidateNote),
		)
		if err != nil {
			return fmt.Errorf("insert open answer: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SqlStore) Get(ctx context.Context, callID string) (*session.Record, error) {
	recs, err := s.query(ctx, `WHERE call_id = ?`, callID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// List implements Store.
func (s *SqlStore) List(ctx context.Context) ([]*session.Record, error) {
	return s.query(ctx, ``)
}

// ListByOutcome implements Store.
func (s *SqlStore) ListByOutcome(ctx context.Context, outcome session.Outcome) ([]*session.Record, error) {
	return s.query(ctx, `WHERE outcome = ?`, string(outcome))
}

func (s *SqlStore) query(ctx context.Context, where string, args ...any) ([]*session.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT call_id, candidate_name, job_title, outcome, consent_given,
		        passed_knockout, interested_in_alts, chosen_timeslot,
		        scheduling_preference, irrelevant_count, transcript, history,
		        started_at, ended_at
		 FROM sessions `+where+` ORDER BY ended_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []*session.Record
	for rows.Next() {
		var rec session.Record
		var outcome, startedAt, endedAt string
		var consent sql.NullInt64
		var passed, alts int
		var slot, pref, transcript, history sql.NullString
		if err := rows.Scan(&rec.CallID, &rec.CandidateName, &rec.JobTitle,
			&outcome, &consent, &passed, &alts, &slot, &pref,
			&rec.IrrelevantCount, &transcript, &history,
			&startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.Outcome = session.Outcome(outcome)
		if consent.Valid {
			v := consent.Int64 != 0
			rec.ConsentGiven = &v
		}
		rec.PassedKnockout = passed != 0
		rec.InterestedInAlternatives = alts != 0
		rec.ChosenTimeslot = nullStr(slot)
		rec.SchedulingPreference = nullStr(pref)
		if t := nullStr(transcript); t != "" {
			if err := json.Unmarshal([]byte(t), &rec.Transcript); err != nil {
				return nil, fmt.Errorf("decode transcript: %w", err)
			}
		}
		if h := nullStr(history); h != "" {
			if err := json.Unmarshal([]byte(h), &rec.History); err != nil {
				return nil, fmt.Errorf("decode history: %w", err)
			}
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		rec.EndedAt, _ = time.Parse(time.RFC3339, endedAt)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rec := range out {
		if err := s.loadAnswers(ctx, rec); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SqlStore) loadAnswers(ctx context.Context, rec *session.Record) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, question_text, result, raw_answer, candidate_note, pre_known
		 FROM knockout_answers WHERE call_id = ? ORDER BY position`, rec.CallID)
	if err != nil {
		return fmt.Errorf("query knockout answers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a session.KnockoutAnswer
		var result string
		var note sql.NullString
		var pre int
		if err := rows.Scan(&a.QuestionID, &a.QuestionText, &result, &a.RawAnswer, &note, &pre); err != nil {
			return fmt.Errorf("scan knockout answer: %w", err)
		}
		a.Result = session.QuestionResult(result)
		a.CandidateNote = nullStr(note)
		a.PreKnown = pre != 0
		rec.KnockoutAnswers = append(rec.KnockoutAnswers, a)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	orows, err := s.db.QueryContext(ctx,
		`SELECT question_id, question_text, summary, candidate_note
		 FROM open_answers WHERE call_id = ? ORDER BY position`, rec.CallID)
	if err != nil {
		return fmt.Errorf("query open answers: %w", err)
	}
	defer orows.Close()
	for orows.Next() {
		var a session.OpenAnswer
		var note sql.NullString
		if err := orows.Scan(&a.QuestionID, &a.QuestionText, &a.Summary, &note); err != nil {
			return fmt.Errorf("scan open answer: %w", err)
		}
		a.CandidateNote = nullStr(note)
		rec.OpenAnswers = append(rec.OpenAnswers, a)
	}
	return orows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
