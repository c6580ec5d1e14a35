// internal/api/http/practice.go
package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-sheets/internal/sheet"
)

type practiceGroup struct {
	Label    string         `json:"label"`
	Year     int            `json:"year,omitempty"`
	Document sheet.Document `json:"document"`
}

// GET /practice/chapters/{chapterID}?lang=&options=&solutions=
//
// Chapter questions grouped by paper year, newest first, undated ones last
// under "Practice". Each group is composed as its own document.
func PracticeChapterHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Content == nil {
			writeErr(w, fmt.Errorf("%w: no content source configured", errBadRequest))
			return
		}
		chapterID := chi.URLParam(r, "chapterID")
		qs, err := d.Content.QuestionsByChapter(r.Context(), chapterID)
		if err != nil {
			writeErr(w, err)
			return
		}

		q := r.URL.Query()
		prefs := sheet.DisplayPreferences{
			Language:     sheet.Language(q.Get("lang")),
			ShowOptions:  parseBool(q.Get("options"), true),
			ShowSolution: parseBool(q.Get("solutions"), false),
		}
		if prefs.Language != sheet.LangSecondary {
			prefs.Language = sheet.LangPrimary
		}

		groups := sheet.GroupByYear(qs)
		out := make([]practiceGroup, 0, len(groups))
		for _, g := range groups {
			out = append(out, practiceGroup{
				Label: g.Label,
				Year:  g.Year,
				Document: d.Assembler.Assemble(sheet.Input{
					Questions:   g.Questions,
					Preferences: prefs,
				}),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"chapter_id":     chapterID,
			"question_count": len(qs),
			"groups":         out,
		})
	}
}
