// internal/api/http/routes.go
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/mindengage-sheets/internal/auth/middleware"
	"github.com/mind-engage/mindengage-sheets/internal/rbac"
	"github.com/mind-engage/mindengage-sheets/internal/render"
)

// Mount registers every sheet route on r. Composition, previews and the
// catalogue are public; sessions, exports and stored sheets need a bearer token.
func Mount(r chi.Router, d *Deps, authSvc *auth.AuthService, accounts ...auth.Account) {
	if d.Renderer == nil {
		d.Renderer = render.New()
	}

	r.Post("/auth/login", auth.LoginHandler(authSvc, accounts...))

	r.Post("/sheets/compose", ComposeHandler(d))
	r.Post("/sheets/preview", PreviewHandler(d))
	r.Get("/practice/chapters/{chapterID}", PracticeChapterHandler(d))
	r.Route("/catalog", func(cr chi.Router) { MountCatalog(cr, d) })

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require(rbac.PermSheetCompose)).
			Post("/sessions", CreateSessionHandler(d))
		pr.With(rbac.Require(rbac.PermSheetView)).
			Get("/sessions/{sessionID}", GetSessionHandler(d))
		pr.With(rbac.Require(rbac.PermSheetCompose)).
			Put("/sessions/{sessionID}/preferences", UpdatePreferencesHandler(d))
		pr.With(rbac.Require(rbac.PermSheetCompose)).
			Put("/sessions/{sessionID}/header", UpdateHeaderHandler(d))
		pr.With(rbac.Require(rbac.PermSheetCompose)).
			Delete("/sessions/{sessionID}", DeleteSessionHandler(d))
		pr.With(rbac.Require(rbac.PermSheetExport)).
			Post("/sessions/{sessionID}/export", ExportSessionHandler(d))

		pr.With(rbac.Require(rbac.PermExportsList)).
			Get("/exports", ListExportsHandler(d))
		pr.With(rbac.Require(rbac.PermExportsList)).
			Get("/exports/{exportID}", GetExportHandler(d))

		pr.Group(func(sr chi.Router) {
			sr.Use(rbac.Require(rbac.PermSheetView))
			sr.Route("/stored", func(br chi.Router) { MountSheets(br, d.Blobs) })
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}
