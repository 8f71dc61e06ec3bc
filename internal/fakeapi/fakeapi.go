// ABOUTME: In-memory stand-in for the materialhub REST backend
// ABOUTME: Serves the /api surface with chi so client, CLI and TUI tests run offline

package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/materialhub/materialhub-cli/internal/models"
)

// TokenTTL is the lifetime of tokens issued by /users/login
const TokenTTL = 30 * time.Minute

// Categories offered by /materials/categories/list
var Categories = []models.Category{
	{Value: "smoke", Label: "Smoke"},
	{Value: "flash", Label: "Flash"},
	{Value: "molotov", Label: "Molotov"},
	{Value: "he", Label: "HE Grenade"},
	{Value: "other", Label: "Other"},
}

// RecordedRequest is what the server saw for one call
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
}

type userRecord struct {
	models.User
	password string
}

// Server is a fake backend. All methods are safe for concurrent use.
type Server struct {
	mu        sync.Mutex
	secret    []byte
	users     map[int]*userRecord
	materials map[int]*models.Material
	nextUser  int
	nextMat   int
	requests  []RecordedRequest
	unhealthy bool
	now       func() time.Time
}

func New() *Server {
	return &Server{
		secret:    []byte("fakeapi-secret"),
		users:     make(map[int]*userRecord),
		materials: make(map[int]*models.Material),
		nextUser:  1,
		nextMat:   1,
		now:       time.Now,
	}
}

// Handler returns the HTTP surface rooted at /api
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", s.healthz)

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.With(s.requireUser).Get("/me", s.me)
			r.Get("/{id}", s.getUser)
		})

		r.Route("/materials", func(r chi.Router) {
			r.Get("/", s.listMaterials)
			r.Get("/categories/list", s.categories)
			r.Get("/maps/list", s.maps)
			r.With(s.requireUser).Post("/upload", s.upload)
			r.Get("/{id}", s.getMaterial)
			r.Post("/{id}/like", s.like)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireUser, s.requireAdmin)
			r.Get("/stats", s.stats)
			r.Get("/materials/pending", s.pending)
			r.Post("/materials/{id}/approve", s.approve)
			r.Post("/materials/{id}/reject", s.reject)
			r.Delete("/materials/{id}", s.deleteMaterial)
			r.Get("/users", s.listUsers)
			r.Post("/users/{id}/toggle-active", s.toggleActive)
			r.Post("/users/{id}/toggle-admin", s.toggleAdmin)
		})
	})
	return r
}

// SetHealthy makes /api/healthz answer 200 (true) or 503 (false)
func (s *Server) SetHealthy(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unhealthy = !ok
}

// AddUser creates an active user and returns it
func (s *Server) AddUser(username, password string, admin bool) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, username+"@example.com", password, admin)
}

func (s *Server) addUserLocked(username, email, password string, admin bool) models.User {
	u := &userRecord{
		User: models.User{
			ID:        s.nextUser,
			Username:  username,
			Email:     email,
			IsActive:  true,
			IsAdmin:   admin,
			CreatedAt: models.NewTimestamp(s.now()),
		},
		password: password,
	}
	s.users[u.ID] = u
	s.nextUser++
	return u.User
}

// AddMaterial stores m, assigning an ID when zero, and returns the stored copy
func (s *Server) AddMaterial(m models.Material) models.Material {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == 0 {
		m.ID = s.nextMat
	}
	if m.ID >= s.nextMat {
		s.nextMat = m.ID + 1
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = models.NewTimestamp(s.now())
		m.UpdatedAt = m.CreatedAt
	}
	if u, ok := s.users[m.UploaderID]; ok {
		m.Uploader = u.User
	}
	s.materials[m.ID] = &m
	return m
}

// Material returns the stored material with id
func (s *Server) Material(id int) (models.Material, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[id]
	if !ok {
		return models.Material{}, false
	}
	return *m, true
}

// User returns the stored user with id
func (s *Server) User(id int) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return u.User, true
}

// TokenFor issues a valid token for username without going through login
func (s *Server) TokenFor(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(username)
}

// RevokeTokens invalidates every token issued so far
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = append([]byte("rotated-"), s.secret...)
}

// Requests returns the calls seen so far
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// LastRequest returns the most recent call
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) issueLocked(username string) string {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(TokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("fakeapi: sign token: %v", err))
	}
	return signed
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, errors.New("id must be an integer")
	}
	return id, nil
}

func pageParams(r *http.Request) (page, size int, err error) {
	page, size = 1, 20
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 1 {
			return 0, 0, errors.New("page must be >= 1")
		}
	}
	if v := q.Get("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil || size < 1 || size > 100 {
			return 0, 0, errors.New("size must be between 1 and 100")
		}
	}
	return page, size, nil
}

func paginate(ms []models.Material, page, size int) []models.Material {
	start := (page - 1) * size
	if start >= len(ms) {
		return []models.Material{}
	}
	end := start + size
	if end > len(ms) {
		end = len(ms)
	}
	return ms[start:end]
}

// sortedMaterials returns copies of the materials matching keep, newest first
func (s *Server) sortedMaterials(keep func(*models.Material) bool) []models.Material {
	out := make([]models.Material, 0, len(s.materials))
	for _, m := range s.materials {
		if keep(m) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
