package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskerid/internal/logging"
	"github.com/dmitrijs2005/taskerid/internal/server/auth"
	"github.com/dmitrijs2005/taskerid/internal/server/metrics"
	"github.com/dmitrijs2005/taskerid/internal/server/services"
	"github.com/gorilla/mux"
)

const transport = "http"

// maxBodyBytes caps request bodies on the auth routes.
const maxBodyBytes = 64 << 10

// IdentityService is the part of services.IdentityService served over HTTP.
type IdentityService interface {
	RegisterMember(ctx context.Context, fullName, email, userName, password string) (string, error)
	RegisterTasker(ctx context.Context, r services.TaskerRegistration) (string, error)
	Login(ctx context.Context, identifier, password string) (string, error)
	WhoAmI(ctx context.Context, token string) (*services.Identity, error)
}

type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type RegisterTaskerRequest struct {
	UserName         string   `json:"userName"`
	Email            string   `json:"email"`
	FullName         string   `json:"fullName"`
	Password         string   `json:"password"`
	Skills           []string `json:"skills"`
	ExperienceLevel  string   `json:"experienceLevel"`
	HourlyRate       float64  `json:"hourlyRate"`
	SelectedCategory string   `json:"selectedCategory"`
	CategoryID       int64    `json:"categoryId"`
}

type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProfileResponse struct {
	Skills           []string `json:"skills"`
	ExperienceLevel  string   `json:"experienceLevel"`
	HourlyRate       float64  `json:"hourlyRate"`
	SelectedCategory string   `json:"selectedCategory"`
	CategoryID       int64    `json:"categoryId"`
}

type MeResponse struct {
	ID        string           `json:"id"`
	UserName  string           `json:"userName"`
	Email     string           `json:"email"`
	TokenID   string           `json:"tokenId"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Roles     []string         `json:"roles"`
	Profile   *ProfileResponse `json:"profile,omitempty"`
}

type Handlers struct {
	service IdentityService
	metrics *metrics.Metrics
	logger  logging.Logger
}

func NewHandlers(service IdentityService, m *metrics.Metrics, logger logging.Logger) *Handlers {
	return &Handlers{service: service, metrics: m, logger: logger}
}

// RegisterRoutes registers the auth routes. throttled wraps the routes that
// accept credentials.
func (h *Handlers) RegisterRoutes(r *mux.Router, throttled func(op string, next http.HandlerFunc) http.HandlerFunc) {
	r.HandleFunc("/api/auth/register", throttled("register", h.Register)).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/register-tasker", throttled("register_tasker", h.RegisterTasker)).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", throttled("login", h.Login)).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/me", h.Me).Methods(http.MethodGet)
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	start := time.Now()
	token, err := h.service.RegisterMember(r.Context(), req.FullName, req.Email, req.UserName, req.Password)
	h.metrics.Observe(transport, "register", err, time.Since(start))
	if err != nil {
		h.fail(r.Context(), w, "register", err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// RegisterTasker handles POST /api/auth/register-tasker
func (h *Handlers) RegisterTasker(w http.ResponseWriter, r *http.Request) {
	var req RegisterTaskerRequest
	if !decode(w, r, &req) {
		return
	}

	start := time.Now()
	msg, err := h.service.RegisterTasker(r.Context(), services.TaskerRegistration{
		UserName:         req.UserName,
		Email:            req.Email,
		FullName:         req.FullName,
		Password:         req.Password,
		Skills:           req.Skills,
		ExperienceLevel:  req.ExperienceLevel,
		HourlyRate:       req.HourlyRate,
		SelectedCategory: req.SelectedCategory,
		CategoryID:       req.CategoryID,
	})
	h.metrics.Observe(transport, "register_tasker", err, time.Since(start))
	if err != nil {
		h.fail(r.Context(), w, "register_tasker", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}

	start := time.Now()
	token, err := h.service.Login(r.Context(), req.UserName, req.Password)
	h.metrics.Observe(transport, "login", err, time.Since(start))
	if err != nil {
		h.fail(r.Context(), w, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// Me handles GET /api/auth/me
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	start := time.Now()
	id, err := h.service.WhoAmI(r.Context(), token)
	h.metrics.Observe(transport, "whoami", err, time.Since(start))
	if err != nil {
		h.fail(r.Context(), w, "whoami", err)
		return
	}

	resp := MeResponse{
		ID:        id.UserID,
		UserName:  id.UserName,
		Email:     id.Email,
		TokenID:   id.TokenID,
		ExpiresAt: id.ExpiresAt,
		Roles:     id.Roles,
	}
	if resp.Roles == nil {
		resp.Roles = []string{}
	}
	if p := id.Profile; p != nil {
		resp.Profile = &ProfileResponse{
			Skills:           p.Skills,
			ExperienceLevel:  p.ExperienceLevel,
			HourlyRate:       p.HourlyRate,
			SelectedCategory: p.SelectedCategory,
			CategoryID:       p.CategoryID,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		h.logger.Error(ctx, "request failed", "operation", op, "error", err)
	}
	writeError(w, err)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return false
	}
	return true
}
