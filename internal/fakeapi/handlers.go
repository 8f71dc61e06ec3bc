// ABOUTME: Request handlers of the fake backend
// ABOUTME: Mirrors status codes and payload shapes of the real service

package fakeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/materialhub/materialhub-cli/internal/models"
)

type ctxKey struct{}

// MaxUploadSize mirrors the backend's 50 MB limit
const MaxUploadSize = 50 << 20

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	unhealthy, now := s.unhealthy, s.now()
	s.mu.Unlock()

	if unhealthy {
		writeDetail(w, http.StatusServiceUnavailable, "database not available")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "timestamp": now.Format("2006-01-02T15:04:05")})
}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		s.mu.Lock()
		secret, now := s.secret, s.now
		s.mu.Unlock()

		var claims jwt.RegisteredClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(now))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		var found *userRecord
		for _, u := range s.users {
			if u.Username == claims.Subject {
				found = u
				break
			}
		}
		var user models.User
		if found != nil {
			user = found.User
		}
		s.mu.Unlock()

		if found == nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		if !user.IsActive {
			writeDetail(w, http.StatusBadRequest, "Inactive user")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := r.Context().Value(ctxKey{}).(models.User)
		if !user.IsAdmin {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == req.Username {
			writeDetail(w, http.StatusBadRequest, "Username already registered")
			return
		}
		if u.Email == req.Email {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	writeJSON(w, http.StatusOK, s.addUserLocked(req.Username, req.Email, req.Password, false))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == req.Username && u.password == req.Password {
			if !u.IsActive {
				writeDetail(w, http.StatusBadRequest, "Inactive user")
				return
			}
			writeJSON(w, http.StatusOK, models.AuthResponse{
				AccessToken: s.issueLocked(u.Username),
				TokenType:   "bearer",
				User:        u.User,
			})
			return
		}
	}
	writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, r.Context().Value(ctxKey{}).(models.User))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	u, ok := s.User(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) listMaterials(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	q := r.URL.Query()
	category, mapName, search := q.Get("category"), q.Get("map_name"), q.Get("search")

	s.mu.Lock()
	all := s.sortedMaterials(func(m *models.Material) bool {
		if !m.IsApproved {
			return false
		}
		if category != "" && m.Category != category {
			return false
		}
		if mapName != "" && m.MapName != mapName {
			return false
		}
		if search != "" && !containsFold(m.Title, search) && !containsFold(m.Description, search) && !containsFold(m.Tags, search) {
			return false
		}
		return true
	})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.MaterialPage{
		Materials: paginate(all, page, size),
		Total:     len(all),
		Page:      page,
		Size:      size,
	})
}

func (s *Server) getMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Material not found")
		return
	}
	m.Views++
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) like(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Material not found")
		return
	}
	m.Likes++
	writeJSON(w, http.StatusOK, models.LikeResult{Likes: m.Likes})
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.CategoryList{Categories: Categories})
}

func (s *Server) maps(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	seen := map[string]bool{}
	maps := []string{}
	for _, m := range s.sortedMaterials(func(m *models.Material) bool { return m.IsApproved && m.MapName != "" }) {
		if !seen[m.MapName] {
			seen[m.MapName] = true
			maps = append(maps, m.MapName)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, models.MapList{Maps: maps})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(ctxKey{}).(models.User)

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	q := r.URL.Query()
	title, category := q.Get("title"), q.Get("category")
	if title == "" || category == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{
			{"loc": []string{"query", "title"}, "msg": "field required", "type": "value_error.missing"},
		}})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	fileType, ok := fileTypes[ext]
	if !ok {
		writeDetail(w, http.StatusBadRequest, "unsupported file type")
		return
	}
	if header.Size > MaxUploadSize {
		writeDetail(w, http.StatusBadRequest, "file too large")
		return
	}

	m := s.AddMaterial(models.Material{
		Title:       title,
		Description: q.Get("description"),
		Category:    category,
		MapName:     q.Get("map_name"),
		Tags:        q.Get("tags"),
		FilePath:    "uploads/" + header.Filename,
		FileType:    fileType,
		FileSize:    header.Size,
		UploaderID:  user.ID,
	})
	writeJSON(w, http.StatusOK, m)
}

var fileTypes = map[string]string{
	".jpg": models.FileTypeImage, ".jpeg": models.FileTypeImage, ".png": models.FileTypeImage,
	".gif": models.FileTypeGIF,
	".mp4": models.FileTypeVideo, ".mov": models.FileTypeVideo, ".avi": models.FileTypeVideo, ".webm": models.FileTypeVideo,
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st models.AdminStats
	st.TotalMaterials = len(s.materials)
	for _, m := range s.materials {
		if m.IsApproved {
			st.ApprovedMaterials++
		} else {
			st.PendingMaterials++
		}
	}
	st.TotalUsers = len(s.users)
	for _, u := range s.users {
		if u.IsActive {
			st.ActiveUsers++
		}
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) pending(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	all := s.sortedMaterials(func(m *models.Material) bool { return !m.IsApproved })
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.MaterialPage{
		Materials: paginate(all, page, size),
		Total:     len(all),
		Page:      page,
		Size:      size,
	})
}

func (s *Server) approve(w http.ResponseWriter, r *http.Request) {
	s.mutateMaterial(w, r, func(m *models.Material) string {
		m.IsApproved = true
		return "material approved"
	})
}

func (s *Server) reject(w http.ResponseWriter, r *http.Request) {
	s.mutateMaterial(w, r, func(m *models.Material) string {
		delete(s.materials, m.ID)
		return "material rejected and deleted"
	})
}

func (s *Server) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	s.mutateMaterial(w, r, func(m *models.Material) string {
		delete(s.materials, m.ID)
		return "material deleted"
	})
}

func (s *Server) mutateMaterial(w http.ResponseWriter, r *http.Request, fn func(*models.Material) string) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Material not found")
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResult{Message: fn(m)})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[int]int{}
	for _, m := range s.materials {
		counts[m.UploaderID]++
	}
	all := make([]models.AdminUser, 0, len(s.users))
	for id := 1; id < s.nextUser; id++ {
		if u, ok := s.users[id]; ok {
			all = append(all, models.AdminUser{User: u.User, MaterialsCount: counts[id]})
		}
	}

	start := (page - 1) * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	writeJSON(w, http.StatusOK, all[start:end])
}

func (s *Server) toggleActive(w http.ResponseWriter, r *http.Request) {
	s.mutateUser(w, r, func(u *userRecord) string {
		u.IsActive = !u.IsActive
		if u.IsActive {
			return "user activated"
		}
		return "user disabled"
	})
}

func (s *Server) toggleAdmin(w http.ResponseWriter, r *http.Request) {
	s.mutateUser(w, r, func(u *userRecord) string {
		u.IsAdmin = !u.IsAdmin
		if u.IsAdmin {
			return "user promoted to admin"
		}
		return "user demoted from admin"
	})
}

func (s *Server) mutateUser(w http.ResponseWriter, r *http.Request, fn func(*userRecord) string) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	caller := r.Context().Value(ctxKey{}).(models.User)

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if u.ID == caller.ID {
		writeDetail(w, http.StatusBadRequest, "Cannot modify your own account")
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResult{Message: fn(u)})
}
