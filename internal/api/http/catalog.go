// internal/api/http/catalog.go
package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-sheets/internal/content"
)

// CatalogHandler serves one taxonomy level. param names the parent id in the
// route; it is empty for the top level.
func CatalogHandler(d *Deps, param string, list func(CatalogSource, context.Context, string) ([]content.Node, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Catalog == nil {
			http.Error(w, "catalog not configured", http.StatusServiceUnavailable)
			return
		}
		var parent string
		if param != "" {
			parent = chi.URLParam(r, param)
		}
		nodes, err := list(d.Catalog, r.Context(), parent)
		if err != nil {
			writeErr(w, err)
			return
		}
		if nodes == nil {
			nodes = []content.Node{}
		}
		writeJSON(w, http.StatusOK, nodes)
	}
}

// MountCatalog registers the board -> exam -> subject -> chapter group ->
// chapter listings.
func MountCatalog(r chi.Router, d *Deps) {
	r.Get("/boards", CatalogHandler(d, "", func(c CatalogSource, ctx context.Context, _ string) ([]content.Node, error) {
		return c.Boards(ctx)
	}))
	r.Get("/boards/{boardID}/exams", CatalogHandler(d, "boardID", CatalogSource.ExamsByBoard))
	r.Get("/exams/{examID}/subjects", CatalogHandler(d, "examID", CatalogSource.SubjectsByExam))
	r.Get("/subjects/{subjectID}/chapter-groups", CatalogHandler(d, "subjectID", CatalogSource.ChapterGroupsBySubject))
	r.Get("/chapter-groups/{groupID}/chapters", CatalogHandler(d, "groupID", CatalogSource.ChaptersByChapterGroup))
}
