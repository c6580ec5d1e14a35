// internal/api/http/deps.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mind-engage/mindengage-sheets/internal/content"
	"github.com/mind-engage/mindengage-sheets/internal/exports"
	"github.com/mind-engage/mindengage-sheets/internal/logger"
	"github.com/mind-engage/mindengage-sheets/internal/render"
	"github.com/mind-engage/mindengage-sheets/internal/session"
	"github.com/mind-engage/mindengage-sheets/internal/sheet"
	"github.com/mind-engage/mindengage-sheets/internal/storage"
)

// QuestionSource loads chapter questions, already filtered and ordered.
type QuestionSource interface {
	QuestionsByChapter(ctx context.Context, chapterID string) ([]sheet.Question, error)
	QuestionsByChapters(ctx context.Context, chapterIDs []string) ([]sheet.Question, error)
	Questions(ctx context.Context, ids []string) ([]sheet.Question, error)
}

// CatalogSource walks the upstream taxonomy down to chapters.
type CatalogSource interface {
	Boards(ctx context.Context) ([]content.Node, error)
	ExamsByBoard(ctx context.Context, boardID string) ([]content.Node, error)
	SubjectsByExam(ctx context.Context, examID string) ([]content.Node, error)
	ChapterGroupsBySubject(ctx context.Context, subjectID string) ([]content.Node, error)
	ChaptersByChapterGroup(ctx context.Context, chapterGroupID string) ([]content.Node, error)
}

// ExportLog records exported sheets.
type ExportLog interface {
	Append(ctx context.Context, rec exports.Record) (exports.Record, error)
	List(ctx context.Context, sessionID string, limit int) ([]exports.Record, error)
	Get(ctx context.Context, id string) (exports.Record, error)
}

const defaultExportTimeout = 30 * time.Second

type Deps struct {
	Sessions  *session.Manager
	Assembler sheet.Assembler
	Renderer  *render.Renderer
	Content   QuestionSource
	Catalog   CatalogSource
	Blobs     storage.BlobStore
	Exports   ExportLog
	Defaults  session.HeaderDefaults
	Log       *logger.Logger

	// ExportTimeout bounds how long an export request waits for typesetting.
	ExportTimeout time.Duration
	Now           func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) exportTimeout() time.Duration {
	if d.ExportTimeout > 0 {
		return d.ExportTimeout
	}
	return defaultExportTimeout
}

func (d *Deps) log() *logger.Logger { return logger.OrNop(d.Log) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps domain errors to status codes.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, content.ErrNotFound), errors.Is(err, exports.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, errForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, errBadRequest), errors.Is(err, storage.ErrInvalidKey):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, content.ErrAPI):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "timed out", http.StatusGatewayTimeout)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

var (
	errBadRequest = errors.New("bad request")
	errForbidden  = errors.New("forbidden")
)

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}
