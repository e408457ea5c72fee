package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"rentaltracker-backend/internal/security"
	"rentaltracker-backend/internal/service"
)

// Dependencies are the collaborators the HTTP API is built from.
type Dependencies struct {
	Auth      service.AuthService
	Equipment service.EquipmentService
	Users     service.UserService
	Rentals   service.RentalService
	Reports   service.ReportService
	Tokens    security.TokenManager
	Pinger    Pinger
}

// NewRouter registers every route. Route templates must match the keys of
// config.EndpointSecurityConfig; unlisted routes require an administrator.
func NewRouter(d Dependencies) http.Handler {
	authH := NewAuthHandler(d.Auth)
	equipmentH := NewEquipmentHandler(d.Equipment)
	rentalH := NewRentalHandler(d.Rentals, d.Reports)
	userH := NewUserHandler(d.Users)
	dashboardH := NewDashboardHandler(d.Reports)

	router := mux.NewRouter()
	router.Use(requestLogging, (&authMiddleware{tokens: d.Tokens}).Middleware)

	router.HandleFunc("/healthz", healthz(d.Pinger)).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/login", authH.Login).Methods(http.MethodPost)

	api.HandleFunc("/equipment", equipmentH.Browse).Methods(http.MethodGet)
	api.HandleFunc("/equipment/categories", equipmentH.Categories).Methods(http.MethodGet)
	api.HandleFunc("/equipment/availability", equipmentH.Availability).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{id}", equipmentH.Get).Methods(http.MethodGet)

	api.HandleFunc("/rentals", rentalH.Rent).Methods(http.MethodPost)
	api.HandleFunc("/rentals", rentalH.ListMine).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}/return", rentalH.ReturnMine).Methods(http.MethodPost)
	api.HandleFunc("/dashboard", dashboardH.User).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/dashboard", dashboardH.Admin).Methods(http.MethodGet)
	admin.HandleFunc("/equipment", equipmentH.Add).Methods(http.MethodPost)
	admin.HandleFunc("/equipment/{id}", equipmentH.Edit).Methods(http.MethodPut)
	admin.HandleFunc("/equipment/{id}", equipmentH.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/users", userH.List).Methods(http.MethodGet)
	admin.HandleFunc("/users", userH.Create).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}", userH.Get).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", userH.Edit).Methods(http.MethodPut)
	admin.HandleFunc("/users/{id}", userH.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/rentals", rentalH.AdminList).Methods(http.MethodGet)
	admin.HandleFunc("/rentals/{id}/return", rentalH.AdminReturn).Methods(http.MethodPost)

	return otelhttp.NewHandler(router, "rentaltracker-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}
