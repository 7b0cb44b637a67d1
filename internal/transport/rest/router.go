package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"govready/internal/logger"
	"govready/internal/service"
	"govready/internal/transport/rest/handler"
	"govready/internal/transport/rest/middleware"
	"govready/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService          *service.AuthService
	CatalogService       *service.CatalogService
	AssessmentService    *service.AssessmentService
	ResponseService      *service.ResponseService
	CollaborationService *service.CollaborationService
	WSHub                *ws.Hub
	Log                  *logger.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	catalogHandler := handler.NewCatalogHandler(c.CatalogService)
	assessmentHandler := handler.NewAssessmentHandler(c.AssessmentService)
	responseHandler := handler.NewResponseHandler(c.ResponseService)
	collabHandler := handler.NewCollaborationHandler(c.CollaborationService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.AssessmentService, c.Log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/assessments/{id}", wsHandler.AssessmentWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Admin routes
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/auth/participants", authHandler.IssueParticipant).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/catalog/issues", catalogHandler.Issues).Methods("GET", "OPTIONS")

	// Participant routes (any valid token)
	actorRoutes := v1.NewRoute().Subrouter()
	actorRoutes.Use(authMW.RequireActor)

	actorRoutes.HandleFunc("/catalog/personas", catalogHandler.Personas).Methods("GET", "OPTIONS")
	actorRoutes.HandleFunc("/catalog/sections", catalogHandler.Sections).Methods("GET", "OPTIONS")
	actorRoutes.HandleFunc("/resolve", assessmentHandler.Preview).Methods("POST", "OPTIONS")

	actorRoutes.HandleFunc("/assessments", assessmentHandler.Create).Methods("POST", "OPTIONS")
	actorRoutes.HandleFunc("/assessments", assessmentHandler.List).Methods("GET", "OPTIONS")
	actorRoutes.HandleFunc("/assessments/{id}", assessmentHandler.Get).Methods("GET", "OPTIONS")
	actorRoutes.HandleFunc("/assessments/{id}/context", assessmentHandler.UpdateContext).Methods("PUT", "OPTIONS")
	actorRoutes.HandleFunc("/assessments/{id}/resolved", assessmentHandler.Resolved).Methods("GET", "OPTIONS")
	actorRoutes.HandleFunc("/assessments/{id}/score", assessmentHandler.Score).Methods("GET", "OPTIONS")
	actorRoutes.HandleFunc("/assessments/{id}/dashboard", assessmentHandler.Dashboard).Methods("GET", "OPTIONS")
	actorRoutes.HandleFunc("/companies/{companyId}/readiness", assessmentHandler.Readiness).Methods("GET", "OPTIONS")

	actorRoutes.HandleFunc("/assessments/{id}/responses", responseHandler.List).Methods("GET", "OPTIONS")
	actorRoutes.HandleFunc("/assessments/{id}/responses/{questionId}", responseHandler.Upsert).Methods("PUT", "OPTIONS")

	// Collaboration routes
	actorRoutes.HandleFunc("/assessments/{id}/sections/states", collabHandler.List).Methods("GET", "OPTIONS")
	actorRoutes.HandleFunc("/assessments/{id}/sections/{sectionId}/state", collabHandler.Get).Methods("GET", "OPTIONS")
	actorRoutes.HandleFunc("/assessments/{id}/sections/{sectionId}/transitions", collabHandler.Transition).Methods("POST", "OPTIONS")
	actorRoutes.HandleFunc("/assessments/{id}/sections/{sectionId}/assignee", collabHandler.Reassign).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
