package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Post("/chat/query", apiHandler.QueryHandler)
		// Routes are slash-prefixed paths, so this is a wildcard match.
		// "/api/chat/page-context/system/goat" looks up the "/system/goat"
		// context; the bare path looks up "/".
		r.Get("/chat/page-context", apiHandler.GetPageContextHandler)
		r.Get("/chat/page-context/*", apiHandler.GetPageContextHandler)

		// Public site content
		r.Get("/pages/{name}", apiHandler.GetPageHandler)
		r.Get("/systems", apiHandler.ListSystemsHandler)
		r.Get("/systems/{slug}", apiHandler.GetSystemHandler)
		r.Get("/social", apiHandler.ListSocialLinksHandler)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			// Knowledge base management
			r.Post("/chat/scripts", apiHandler.CreateScriptHandler)
			r.Get("/chat/scripts", apiHandler.ListScriptsHandler)
			r.Put("/chat/scripts/{scriptID}", apiHandler.UpdateScriptHandler)
			r.Delete("/chat/scripts/{scriptID}", apiHandler.DeleteScriptHandler)

			// Learning loop
			r.Get("/chat/unanswered", apiHandler.ListUnansweredHandler)
			r.Post("/chat/unanswered/{questionID}/resolve", apiHandler.ResolveQuestionHandler)

			r.Post("/chat/page-context", apiHandler.SetPageContextHandler)
			r.Get("/chat/stats", apiHandler.StatsHandler)

			// Site content management
			r.Post("/pages", apiHandler.CreatePageHandler)
			r.Put("/pages/{pageID}", apiHandler.UpdatePageHandler)
			r.Post("/systems", apiHandler.CreateSystemHandler)
			r.Put("/systems/{systemID}", apiHandler.UpdateSystemHandler)
			r.Delete("/systems/{systemID}", apiHandler.DeleteSystemHandler)
			r.Post("/social", apiHandler.CreateSocialLinkHandler)
			r.Put("/social/{linkID}", apiHandler.UpdateSocialLinkHandler)
			r.Delete("/social/{linkID}", apiHandler.DeleteSocialLinkHandler)
		})
	})

	return r
}
