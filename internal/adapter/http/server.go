package adapthttp

import (
	"net/http"
	"strings"

	"bookstore/internal/app"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth      *app.AuthService
	orders    *app.OrderService
	projector *app.OwnershipProjector
	books     *app.BookService
	sso       *SSOConfig

	corsOrigins []string
}

// New creates a Server wired to the given application services. sso may be
// nil when OIDC login is not configured.
func New(auth *app.AuthService, orders *app.OrderService, projector *app.OwnershipProjector, books *app.BookService, sso *SSOConfig) *Server {
	return &Server{auth: auth, orders: orders, projector: projector, books: books, sso: sso}
}

// SetCORSOrigins configures the origin allow-list applied by Handler.
func (s *Server) SetCORSOrigins(origins []string) {
	s.corsOrigins = origins
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/register", s.handleRegister)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)
	api.Handle("/auth/logout", s.requireAuth(http.HandlerFunc(s.handleLogout)))
	api.Handle("/auth/refresh", s.requireAuth(http.HandlerFunc(s.handleRefresh)))
	api.Handle("/auth/change-password", s.requireAuth(http.HandlerFunc(s.handleChangePassword)))
	api.Handle("/auth/role", s.requireAuth(http.HandlerFunc(s.handleRole)))

	api.Handle("/user/orders", s.requireAuth(http.HandlerFunc(s.handleOrders)))
	api.Handle("/user/orders/", s.requireAuth(http.HandlerFunc(s.handleOrderDetail)))
	api.Handle("/user/ownbooks", s.requireAuth(http.HandlerFunc(s.handleOwnBooks)))

	api.HandleFunc("/books", s.handleBooks)
	api.HandleFunc("/books/", s.handleBookByID)

	api.Handle("/admin/books", s.requireAuth(s.requireAdmin(http.HandlerFunc(s.handleAdminBooks))))
	api.Handle("/admin/books/", s.requireAuth(s.requireAdmin(http.HandlerFunc(s.handleAdminBookByID))))
	api.Handle("/admin/orders/", s.requireAuth(s.requireAdmin(http.HandlerFunc(s.handleAdminOrderByID))))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	var h http.Handler = root
	if len(s.corsOrigins) > 0 {
		h = corsMiddleware(s.corsOrigins, h)
	}
	return s.loggingMiddleware(h)
}

// pathID extracts the trailing id from paths like /user/orders/{id}.
func pathID(path, prefix string) (string, bool) {
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" || rest == path || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
