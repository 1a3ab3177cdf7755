package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/projectoasis/hydroflow/handlers"
	"github.com/projectoasis/hydroflow/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/api/auth/login", handlers.Login).Methods("POST")
	r.HandleFunc("/api/auth/verify-token", handlers.VerifyToken).Methods("GET", "POST")
	r.HandleFunc("/api/auth/logout", handlers.Logout).Methods("POST")
	r.HandleFunc("/api/auth/create-admin", handlers.CreateAdmin).Methods("POST")

	r.HandleFunc("/api/auth/google", handlers.OAuthRedirect("google")).Methods("GET")
	r.HandleFunc("/api/auth/google/callback", handlers.OAuthCallback("google")).Methods("GET")
	r.HandleFunc("/api/auth/github", handlers.OAuthRedirect("github")).Methods("GET")
	r.HandleFunc("/api/auth/github/callback", handlers.OAuthCallback("github")).Methods("GET")

	r.HandleFunc("/api/wells/map", handlers.WellMap).Methods("GET")
	r.HandleFunc("/api/wells/available", handlers.AvailableWells).Methods("GET")
	r.HandleFunc("/api/wells/{id}/attendance", handlers.RecordAttendance).Methods("POST")
	r.HandleFunc("/api/wells/{id}/update-weight", handlers.UpdateWellWeight).Methods("POST")
	r.HandleFunc("/api/reports", handlers.CreateReport).Methods("POST")
	r.HandleFunc("/api/areas", handlers.ListAreas).Methods("GET")

	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))),
	)

	// =====================================================
	// Admin Routes (require JWT + admin account)
	// =====================================================
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(middleware.JWTMiddleware)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/me", handlers.Me).Methods("GET")
	admin.HandleFunc("/dashboard", handlers.Dashboard).Methods("GET")
	admin.HandleFunc("/dashboard/export", handlers.ExportDashboard).Methods("GET")

	admin.HandleFunc("/wells", handlers.CreateWell).Methods("POST")
	admin.HandleFunc("/wells/available", handlers.AvailableWells).Methods("GET")
	admin.HandleFunc("/wells/{id}", handlers.UpdateWell).Methods("PUT")
	admin.HandleFunc("/wells/{id}", handlers.DeleteWell).Methods("DELETE")

	admin.HandleFunc("/reports/{id}/resolve", handlers.ResolveReport).Methods("POST")
	admin.HandleFunc("/reports/{id}", handlers.UpdateReport).Methods("PUT")

	admin.HandleFunc("/areas", handlers.CreateArea).Methods("POST")
	admin.HandleFunc("/uploads", handlers.UploadReportImage).Methods("POST")

	return r
}
