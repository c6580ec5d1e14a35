// internal/api/http/exports_list.go
package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// GET /exports?session_id=&limit=
func ListExportsHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		list, err := d.Exports.List(r.Context(), sessionID, limit)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /exports/{exportID}
func GetExportHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Exports.Get(r.Context(), chi.URLParam(r, "exportID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}
