package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"studyhall/internal/http/handlers"
	"studyhall/internal/infra"
	"studyhall/internal/middleware"
)

// Options carries the cross-cutting configuration the router wires in front
// of the handlers.
type Options struct {
	JWTSecret       string
	CORSOrigins     []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
	Logger          infra.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.CORSOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret))

		r.Route("/v1/media/jobs", func(r chi.Router) {
			r.Post("/", app.MediaJobCreate)
			r.Get("/", app.MediaJobsList)
			r.Get("/{job_id}", app.MediaJobGet)
			r.Get("/{job_id}/status", app.MediaJobStatus)
			r.Put("/{job_id}/notes", app.MediaJobUpdateNotes)
		})

		r.Route("/v1/ai", func(r chi.Router) {
			if opts.RateLimitPerMin > 0 {
				r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
			}
			r.Post("/categories", app.AICategories)
			r.Post("/mcqs", app.AIMCQs)
			r.Post("/flashcards", app.AIFlashcards)
		})

		r.Route("/v1/sessions", func(r chi.Router) {
			r.Post("/", app.SessionCreate)
			r.Get("/", app.SessionsList)
			r.Get("/{session_id}", app.SessionGet)
			r.Put("/{session_id}", app.SessionUpdate)
			r.Delete("/{session_id}", app.SessionDelete)
		})
	})

	return r
}
