package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/auth"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/config"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/crypto"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/notify"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/repository"
)

type Server struct {
	cfg   config.Config
	store *repository.Store
	redis *redis.Client
	email notify.EmailService
}

func NewServer(cfg config.Config, store *repository.Store, redisClient *redis.Client, email notify.EmailService) *Server {
	return &Server{
		cfg:   cfg,
		store: store,
		redis: redisClient,
		email: email,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.With(s.authMiddleware).Post("/auth/logout", s.handleLogout)
	r.With(s.authMiddleware).Get("/auth/me", s.handleGetMe)

	r.With(s.authMiddleware).Get("/attendance", s.handleListAttendance)
	r.With(s.authMiddleware).Post("/attendance", s.handleCreateAttendance)
	r.With(s.authMiddleware).Patch("/attendance/{recordId}", s.handlePatchAttendance)
	r.With(s.authMiddleware).Delete("/attendance/{recordId}", s.handleDeleteAttendance)

	r.With(s.authMiddleware).Get("/subjects", s.handleListSubjects)
	r.With(s.authMiddleware).Post("/subjects", s.handleCreateSubject)
	r.With(s.authMiddleware).Patch("/subjects/{subjectId}", s.handlePatchSubject)
	r.With(s.authMiddleware).Delete("/subjects/{subjectId}", s.handleDeleteSubject)

	r.With(s.authMiddleware).Get("/schedule", s.handleGetSchedule)
	r.With(s.authMiddleware).Put("/schedule", s.handlePutSchedule)

	r.With(s.authMiddleware).Get("/points", s.handleGetPoints)
	r.With(s.authMiddleware).Post("/points/award", s.handleAwardPoints)

	r.With(s.authMiddleware).Get("/todos", s.handleListTodos)
	r.With(s.authMiddleware).Post("/todos", s.handleCreateTodo)
	r.With(s.authMiddleware).Patch("/todos/{todoId}", s.handlePatchTodo)
	r.With(s.authMiddleware).Delete("/todos/{todoId}", s.handleDeleteTodo)

	r.With(s.authMiddleware).Get("/settings", s.handleGetSettings)
	r.With(s.authMiddleware).Put("/settings", s.handlePutSettings)

	r.Route("/users", func(r chi.Router) {
		r.With(s.authMiddleware, s.requireAdmin).Get("/", s.handleListUsers)
		r.With(s.authMiddleware, s.requireAdmin).Patch("/{userId}/role", s.handlePatchUserRole)
		r.With(s.authMiddleware, s.requireAdmin).Delete("/{userId}", s.handleDeleteUser)
	})

	return r
}

// Auth

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		if s.isRevoked(r.Context(), token) {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil || claims.Role != "admin" {
			writeError(w, http.StatusForbidden, "admin_only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func (s *Server) isRevoked(ctx context.Context, token string) bool {
	if s.redis == nil {
		return false
	}
	exists, err := s.redis.Exists(ctx, revokedTokenKey(token)).Result()
	if err != nil {
		// Revocation is best-effort; an unreachable redis must not lock everyone out.
		return false
	}
	return exists > 0
}

func (s *Server) revokeToken(ctx context.Context, token string, expiresAt time.Time) error {
	if s.redis == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, revokedTokenKey(token), "1", ttl).Err()
}

func revokedTokenKey(token string) string {
	return "revoked:" + crypto.HashToken(token)
}

// Helpers

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, envelope{Success: false, Message: code})
}
