package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secops-lab/magerisk/pkg/usecase"
	"github.com/secops-lab/magerisk/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

type Options func(*Server)

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/assets", func(r chi.Router) {
			r.Get("/", s.listAssets)
			r.Post("/", s.createAsset)
			r.Get("/{assetID}", s.getAsset)
			r.Put("/{assetID}", s.updateAsset)
			r.Delete("/{assetID}", s.deleteAsset)
			r.Get("/{assetID}/dependents", s.listAssetDependents)
		})

		r.Route("/threats", func(r chi.Router) {
			r.Get("/", s.listThreats)
			r.Post("/", s.createThreat)
			r.Get("/{threatID}", s.getThreat)
			r.Put("/{threatID}", s.updateThreat)
			r.Delete("/{threatID}", s.deleteThreat)
			r.Post("/{threatID}/assets", s.linkThreatAssets)
		})

		r.Route("/vulnerabilities", func(r chi.Router) {
			r.Get("/", s.listVulnerabilities)
			r.Post("/", s.createVulnerability)
			r.Get("/{vulnID}", s.getVulnerability)
			r.Put("/{vulnID}", s.updateVulnerability)
			r.Delete("/{vulnID}", s.deleteVulnerability)
			r.Post("/{vulnID}/mitigate", s.mitigateVulnerability)
		})

		r.Route("/risks", func(r chi.Router) {
			r.Get("/", s.listRisks)
			r.Post("/calculate", s.calculateRisk)
			r.Post("/", s.createOrUpdateRisk)
			r.Post("/recalculate", s.recalculateRisks)
			r.Get("/matrix", s.riskMatrix)
			r.Get("/top", s.topRisks)
			r.Get("/{riskID}", s.getRisk)
			r.Delete("/{riskID}", s.deleteRisk)
		})

		r.Route("/safeguards", func(r chi.Router) {
			r.Get("/", s.listSafeguards)
			r.Post("/", s.createSafeguard)
			r.Get("/{safeguardID}", s.getSafeguard)
			r.Put("/{safeguardID}", s.updateSafeguard)
			r.Delete("/{safeguardID}", s.deleteSafeguard)
			r.Post("/{safeguardID}/implement", s.implementSafeguard)
			r.Post("/{safeguardID}/kpis", s.addSafeguardKPI)
			r.Get("/{safeguardID}/roi", s.safeguardROI)
		})

		r.Get("/dashboard", s.dashboard)

		r.Post("/auth/login", s.login)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
