// Package exports keeps the append-only log of exported sheets.
package exports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("export not found")

type Record struct {
	ID            string  `json:"id"`
	SessionID     string  `json:"session_id"`
	Subject       string  `json:"subject"`
	TestName      string  `json:"test_name"`
	QuestionCount int     `json:"question_count"`
	TotalMarks    float64 `json:"total_marks"`
	TypesetState  string  `json:"typeset_state"`
	TypesetToken  uint64  `json:"typeset_token"`
	TypesetMillis int64   `json:"typeset_ms"`
	BlobKey       string  `json:"blob_key"`
	ExportedBy    string  `json:"exported_by,omitempty"`
	CreatedAt     int64   `json:"created_at"`
}

type Repo struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db, now: time.Now} }

// Append records an export. CreatedAt is stamped by the repo when zero.
func (r *Repo) Append(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" || rec.SessionID == "" || rec.BlobKey == "" {
		return rec, errors.New("export record needs id, session_id and blob_key")
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = r.now().Unix()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sheet_exports (id, session_id, subject, test_name, question_count, total_marks,
		   typeset_state, typeset_token, typeset_ms, blob_key, exported_by, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		rec.ID, rec.SessionID, rec.Subject, rec.TestName, rec.QuestionCount, rec.TotalMarks,
		rec.TypesetState, int64(rec.TypesetToken), rec.TypesetMillis, rec.BlobKey, rec.ExportedBy, rec.CreatedAt)
	if err != nil {
		return rec, fmt.Errorf("append export: %w", err)
	}
	return rec, nil
}

const selectCols = `id, session_id, subject, test_name, question_count, total_marks,
  typeset_state, typeset_token, typeset_ms, blob_key, exported_by, created_at`

// List returns the newest exports first. sessionID filters when non-empty.
func (r *Repo) List(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var (
		rows *sql.Rows
		err  error
	)
	if sessionID == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+selectCols+` FROM sheet_exports ORDER BY seq DESC LIMIT $1`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+selectCols+` FROM sheet_exports WHERE session_id=$1 ORDER BY seq DESC LIMIT $2`, sessionID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectCols+` FROM sheet_exports WHERE id=$1`, id)
	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

type scanner interface{ Scan(dest ...any) error }

func scan(s scanner) (Record, error) {
	var rec Record
	var tok int64
	err := s.Scan(&rec.ID, &rec.SessionID, &rec.Subject, &rec.TestName, &rec.QuestionCount, &rec.TotalMarks,
		&rec.TypesetState, &tok, &rec.TypesetMillis, &rec.BlobKey, &rec.ExportedBy, &rec.CreatedAt)
	rec.TypesetToken = uint64(tok)
	return rec, err
}
