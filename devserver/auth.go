package devserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// tokenTTL bounds how long an issued bearer token stays valid.
const tokenTTL = 12 * time.Hour

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	UserType string `json:"user_type"`
}

// handleLogin checks the credentials and issues a signed bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed login body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	user, ok := s.data.users[req.Username]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		s.logger.Warningf("Rejected login for %q", req.Username)
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		http.Error(w, "token signing failed", http.StatusInternalServerError)
		return
	}

	s.logger.Infof("Issued token for %q (%s)", req.Username, user.Role)
	s.writeJSON(w, http.StatusOK, loginResponse{
		Token:    token,
		UserID:   strconv.Itoa(user.ID),
		UserType: user.Role,
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// handleRegister creates a member account and logs it straight in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed register body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusUnprocessableEntity)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		http.Error(w, "password hashing failed", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	if _, exists := s.data.users[req.Username]; exists {
		s.mu.Unlock()
		http.Error(w, "username already taken", http.StatusConflict)
		return
	}

	name := req.Name
	if name == "" {
		name = req.Username
	}

	id := s.data.allocID()
	s.data.members[id] = &memberRow{ID: id, Name: name, Email: req.Email}
	user := &userRow{ID: id, Username: req.Username, PasswordHash: hash, Role: "Member"}
	s.data.users[req.Username] = user
	s.mu.Unlock()

	token, err := s.issueToken(user)
	if err != nil {
		http.Error(w, "token signing failed", http.StatusInternalServerError)
		return
	}

	s.logger.Infof("Registered member %q (id %d)", req.Username, id)
	s.writeJSON(w, http.StatusCreated, loginResponse{
		Token:    token,
		UserID:   strconv.Itoa(id),
		UserType: user.Role,
	})
}

// issueToken signs a bearer token carrying the user's id and role.
func (s *Server) issueToken(user *userRow) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.Itoa(user.ID),
		"role": user.Role,
		"exp":  time.Now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// requireAuth wraps collection handlers with bearer token verification.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "invalid bearer token", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}
