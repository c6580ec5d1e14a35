// internal/api/http/sessions.go
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	auth "github.com/mind-engage/mindengage-sheets/internal/auth/middleware"
	"github.com/mind-engage/mindengage-sheets/internal/exports"
	"github.com/mind-engage/mindengage-sheets/internal/rbac"
	"github.com/mind-engage/mindengage-sheets/internal/session"
	"github.com/mind-engage/mindengage-sheets/internal/sheet"
	"github.com/mind-engage/mindengage-sheets/internal/storage"
	"github.com/mind-engage/mindengage-sheets/internal/typeset"
)

// POST /sessions
func CreateSessionHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeCompose(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		in, err := d.input(r.Context(), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		snap, err := d.Sessions.Create(in, auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, snap)
	}
}

// ownedSession loads a session the caller may act on: its owner, or a role
// granted PermSessionsAny.
func (d *Deps) ownedSession(r *http.Request) (session.Snapshot, error) {
	snap, err := d.Sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		return snap, err
	}
	if snap.Owner == "" || rbac.Allowed(r.Context(), rbac.PermSessionsAny) {
		return snap, nil
	}
	if auth.SubjectFromContext(r.Context()) != snap.Owner {
		return session.Snapshot{}, errForbidden
	}
	return snap, nil
}

// GET /sessions/{sessionID}
func GetSessionHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := d.ownedSession(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// PUT /sessions/{sessionID}/preferences
func UpdatePreferencesHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var prefs sheet.DisplayPreferences
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if prefs.Language == "" {
			prefs.Language = sheet.LangPrimary
		}
		if prefs.Language != sheet.LangPrimary && prefs.Language != sheet.LangSecondary {
			http.Error(w, "unsupported language", http.StatusBadRequest)
			return
		}
		cur, err := d.ownedSession(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		snap, err := d.Sessions.UpdatePreferences(cur.ID, prefs)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// PUT /sessions/{sessionID}/header
//
// An empty test_name keeps the session's current one.
func UpdateHeaderHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var h sheet.Header
		if err := json.NewDecoder(r.Body).Decode(&h); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		cur, err := d.ownedSession(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		if h.TestName == "" {
			h.TestName = cur.Document.Header.TestName
		}
		snap, err := d.Sessions.UpdateHeader(cur.ID, d.Defaults.Apply(h, "", d.now()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// DELETE /sessions/{sessionID}
func DeleteSessionHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cur, err := d.ownedSession(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := d.Sessions.Delete(cur.ID); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type exportResponse struct {
	Export       exports.Record `json:"export"`
	URL          string         `json:"url"`
	Degraded     bool           `json:"degraded"`
	TypesetError string         `json:"typeset_error,omitempty"`
}

// POST /sessions/{sessionID}/export
//
// Blocks until typesetting of the latest run settles, then stores the sheet
// and records the export.
func ExportSessionHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cur, err := d.ownedSession(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		id := cur.ID
		ctx, cancel := context.WithTimeout(r.Context(), d.exportTimeout())
		defer cancel()

		var out exportResponse
		err = d.Sessions.Export(ctx, id, func(e session.Export) error {
			exportID := uuid.NewString()
			key, err := d.Blobs.Put(storage.SheetKey(exportID), strings.NewReader(e.Outcome.HTML))
			if err != nil {
				return fmt.Errorf("store sheet: %w", err)
			}
			rec, err := d.Exports.Append(ctx, exports.Record{
				ID:            exportID,
				SessionID:     e.SessionID,
				Subject:       e.Document.Subject,
				TestName:      e.Document.Header.TestName,
				QuestionCount: e.Document.QuestionCount,
				TotalMarks:    e.Document.TotalMarks,
				TypesetState:  string(e.Outcome.State),
				TypesetToken:  e.Outcome.Token,
				TypesetMillis: e.Outcome.Elapsed.Milliseconds(),
				BlobKey:       key,
				ExportedBy:    auth.SubjectFromContext(r.Context()),
			})
			if err != nil {
				return err
			}
			out = exportResponse{
				Export:   rec,
				URL:      "/stored/" + key,
				Degraded: e.Outcome.State == typeset.StateDegraded,
			}
			if e.Outcome.Err != nil {
				out.TypesetError = e.Outcome.Err.Error()
			}
			return nil
		})
		if err != nil {
			d.log().Warn("export failed", "session_id", id, "error", err)
			writeErr(w, err)
			return
		}
		d.log().Info("sheet exported", "session_id", id, "export_id", out.Export.ID,
			"state", out.Export.TypesetState, "token", out.Export.TypesetToken)
		writeJSON(w, http.StatusCreated, out)
	}
}
