// Package gateway wires the HTTP surface: router, middleware, and the REST
// handlers over the in-process services.
package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"resultportal/backend/internal/gateway/handlers"
	"resultportal/backend/internal/gateway/util"
	"resultportal/backend/internal/shared"
)

// Services bundles the service implementations the routes dispatch to
type Services struct {
	Students  handlers.StudentService
	Curricula handlers.CurriculumService
	Results   handlers.ResultService
}

// SetupRoutes configures the Chi router, middleware, and route handlers
func SetupRoutes(cfg *shared.ServiceConfig, logger *zap.Logger, svcs Services) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(requestLogger(logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	studentHandler := &handlers.StudentHandler{Students: svcs.Students}
	curriculumHandler := &handlers.CurriculumHandler{Curricula: svcs.Curricula}
	resultHandler := &handlers.ResultHandler{Results: svcs.Results}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		util.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"status":  "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {

		// Student-facing read path: published results only.
		r.Get("/students/{rollNo}/results", resultHandler.GetStudentResults)

		// Admin management.
		r.Route("/admin", func(r chi.Router) {
			r.Route("/students", func(r chi.Router) {
				r.Post("/", studentHandler.CreateStudent)
				r.Post("/bulk", studentHandler.BulkCreateStudents)
				r.Get("/", studentHandler.ListStudents)
				r.Put("/{id}", studentHandler.UpdateStudent)
				r.Delete("/{id}", studentHandler.DeleteStudent)
			})

			r.Route("/curriculum", func(r chi.Router) {
				r.Post("/", curriculumHandler.UpsertCurriculum)
				r.Get("/", curriculumHandler.GetCurriculum)
				r.Get("/all", curriculumHandler.ListCurricula)
			})

			r.Route("/results", func(r chi.Router) {
				r.Post("/", resultHandler.UpsertResult)
				r.Get("/", resultHandler.ListResults)
				r.Put("/{id}", resultHandler.UpdateResult)
				r.Delete("/{id}", resultHandler.DeleteResult)
				r.Patch("/{id}/toggle", resultHandler.ToggleResult)
				r.Post("/publish", resultHandler.BatchPublishResults)
			})
		})
	})

	return r
}

// requestLogger emits one structured line per request
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
