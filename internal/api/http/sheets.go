// internal/api/http/sheets.go
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mind-engage/mindengage-sheets/internal/sheet"
)

// composeRequest is the body shared by compose, preview and session
// creation. Questions are used as given; otherwise they are loaded by id,
// then from the named chapters.
type composeRequest struct {
	Questions   []sheet.Question          `json:"questions"`
	QuestionIDs []string                  `json:"question_ids"`
	ChapterID   string                    `json:"chapter_id"`
	ChapterIDs  []string                  `json:"chapter_ids"`
	ChapterName string                    `json:"chapter_name"`
	Subject     string                    `json:"subject"`
	Header      sheet.Header              `json:"header"`
	Preferences *sheet.DisplayPreferences `json:"preferences"`
}

func decodeCompose(r *http.Request) (composeRequest, error) {
	var req composeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("%w: bad json", errBadRequest)
	}
	return req, nil
}

// input resolves a compose request into a render input with header defaults
// applied.
func (d *Deps) input(ctx context.Context, req composeRequest) (sheet.Input, error) {
	in := sheet.Input{
		Questions:   req.Questions,
		Subject:     req.Subject,
		Preferences: sheet.DefaultPreferences(),
	}
	if req.Preferences != nil {
		in.Preferences = *req.Preferences
	}

	questionIDs := trimIDs(req.QuestionIDs)
	chapterIDs := trimIDs(append([]string{req.ChapterID}, req.ChapterIDs...))
	if len(req.Questions) == 0 && len(questionIDs)+len(chapterIDs) > 0 && d.Content == nil {
		return in, fmt.Errorf("%w: no content source configured", errBadRequest)
	}
	switch {
	case len(req.Questions) > 0:
	case len(questionIDs) > 0:
		qs, err := d.Content.Questions(ctx, questionIDs)
		if err != nil {
			return in, err
		}
		in.Questions = qs
	case len(chapterIDs) > 0:
		qs, err := d.Content.QuestionsByChapters(ctx, chapterIDs)
		if err != nil {
			return in, err
		}
		in.Questions = qs
	default:
		return in, fmt.Errorf("%w: questions, question_ids or chapter_id required", errBadRequest)
	}

	in.Header = d.Defaults.Apply(req.Header, req.ChapterName, d.now())
	return in, nil
}

func trimIDs(ids []string) []string {
	var out []string
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// POST /sheets/compose -> document JSON
func ComposeHandler(d *Deps) http.HandlerFunc {
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
		writeJSON(w, http.StatusOK, d.Assembler.Assemble(in))
	}
}

// POST /sheets/preview -> un-typeset HTML
func PreviewHandler(d *Deps) http.HandlerFunc {
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
		html, err := d.Renderer.Preview(d.Assembler.Assemble(in))
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}
}
