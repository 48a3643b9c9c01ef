package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"ave-shopify-connector/internal/application"
	"ave-shopify-connector/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type contextKey string

const authTokenKey contextKey = "auth_token"

// Server holds the HTTP surface of the connector.
type Server struct {
	products *application.ProductService
	orders   *application.OrderService
	logger   zerolog.Logger
}

func NewServer(products *application.ProductService, orders *application.OrderService, logger zerolog.Logger) *Server {
	return &Server{
		products: products,
		orders:   orders,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Router builds the chi router with the full middleware chain and all
// connector routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Company-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/products", s.handleProductPost)
		r.Put("/products/{productId}", s.handleProductPut)
		r.Post("/products/{productId}/sync", s.handleProductSync)
		r.Put("/products/{productId}/stock", s.handleProductStock)

		r.Post("/orders", s.handleOrderPost)
		r.Post("/orders/{orderNumber}/cancel", s.handleOrderCancel)
		r.Post("/orders/{orderNumber}/note", s.handleOrderNote)
		r.Post("/orders/{orderNumber}/comment", s.handleOrderComment)
		r.Post("/orders/{orderNumber}/status", s.handleOrderStatus)
	})

	return r
}

// requireAuth extracts the Authorization value every CRM call is made with.
// The value is forwarded verbatim, scheme included; the connector never
// validates the token itself, the CRM does that on each forwarded call.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get("Authorization"))
		if token == "" {
			s.writeError(w, http.StatusUnauthorized, "El encabezado Authorization es requerido.")
			return
		}
		ctx := context.WithValue(r.Context(), authTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authToken(r *http.Request) string {
	token, _ := r.Context().Value(authTokenKey).(string)
	return token
}

// requestContext captures the scheme and host the request arrived on so the
// payload builder can absolutize image paths.
func requestContext(r *http.Request) application.RequestContext {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return application.RequestContext{Scheme: scheme, Host: r.Host}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProductPost(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if !s.decode(w, r, &in) {
		return
	}
	s.overrideCompany(r, &in.CompanyID)
	report, err := s.products.Post(r.Context(), authToken(r), in, requestContext(r))
	s.writeReport(w, report, err)
}

func (s *Server) handleProductPut(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if !s.decode(w, r, &in) {
		return
	}
	s.overrideCompany(r, &in.CompanyID)
	if id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64); err == nil {
		in.ProductID = id
	}
	report, err := s.products.Put(r.Context(), authToken(r), in, requestContext(r))
	s.writeReport(w, report, err)
}

func (s *Server) handleProductSync(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if !s.decode(w, r, &in) {
		return
	}
	s.overrideCompany(r, &in.CompanyID)
	if id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64); err == nil {
		in.ProductID = id
	}
	report, err := s.products.Sync(r.Context(), authToken(r), in, requestContext(r))
	s.writeReport(w, report, err)
}

func (s *Server) handleProductStock(w http.ResponseWriter, r *http.Request) {
	var in domain.StockInput
	if !s.decode(w, r, &in) {
		return
	}
	s.overrideCompany(r, &in.CompanyID)
	if id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64); err == nil {
		in.ProductID = id
	}
	report, err := s.products.PutStock(r.Context(), authToken(r), in)
	s.writeReport(w, report, err)
}

func (s *Server) handleOrderPost(w http.ResponseWriter, r *http.Request) {
	var in domain.OrderInput
	if !s.decode(w, r, &in) {
		return
	}
	s.overrideCompany(r, &in.CompanyID)
	report, err := s.orders.Post(r.Context(), authToken(r), in)
	s.writeReport(w, report, err)
}

func (s *Server) handleOrderCancel(w http.ResponseWriter, r *http.Request) {
	var in application.CancelInput
	if !s.decode(w, r, &in) {
		return
	}
	s.overrideOrderTarget(r, &in.OrderTarget)
	result, err := s.orders.Cancel(r.Context(), authToken(r), in)
	s.writeResult(w, result, err)
}

func (s *Server) handleOrderNote(w http.ResponseWriter, r *http.Request) {
	var in application.NoteInput
	if !s.decode(w, r, &in) {
		return
	}
	s.overrideOrderTarget(r, &in.OrderTarget)
	result, err := s.orders.AddNote(r.Context(), authToken(r), in)
	s.writeResult(w, result, err)
}

func (s *Server) handleOrderComment(w http.ResponseWriter, r *http.Request) {
	var in application.CommentInput
	if !s.decode(w, r, &in) {
		return
	}
	s.overrideOrderTarget(r, &in.OrderTarget)
	result, err := s.orders.AddTimelineComment(r.Context(), authToken(r), in)
	s.writeResult(w, result, err)
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in application.StatusInput
	if !s.decode(w, r, &in) {
		return
	}
	s.overrideOrderTarget(r, &in.OrderTarget)
	report, err := s.orders.ChangeStatus(r.Context(), authToken(r), in)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		s.writeError(w, http.StatusBadRequest, "Cuerpo de la peticion invalido: "+err.Error())
		return false
	}
	return true
}

// overrideCompany lets the X-Company-ID header win over the body field, so
// gateway callers can route without rewriting payloads.
func (s *Server) overrideCompany(r *http.Request, companyID *string) {
	if header := r.Header.Get("X-Company-ID"); header != "" {
		*companyID = header
	}
}

func (s *Server) overrideOrderTarget(r *http.Request, t *application.OrderTarget) {
	s.overrideCompany(r, &t.CompanyID)
	if number := chi.URLParam(r, "orderNumber"); number != "" {
		t.OrderNumber = number
	}
}

func (s *Server) writeReport(w http.ResponseWriter, report *domain.FanOutReport, err error) {
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if report == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"skipped": true,
			"message": "No hay tiendas Shopify configuradas para la empresa.",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": report.AllSucceeded(),
		"stores":  len(report.Stores),
		"results": report.Results,
	})
}

func (s *Server) writeResult(w http.ResponseWriter, result *domain.OrderActionResult, err error) {
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidationError(err):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case domain.IsRemoteCallError(err):
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("response encoding failed")
	}
}
