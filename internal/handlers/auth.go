package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"brewcost/internal/catalog"
	"brewcost/internal/finance"
	applog "brewcost/internal/log"
	"brewcost/internal/pos"
	"brewcost/models"
)

const (
	sessionAuthenticatedKey = "auth:authenticated"
	sessionUserIDKey        = "auth:user:id"
	sessionUserEmailKey     = "auth:user:email"
	sessionUserNameKey      = "auth:user:name"
)

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB
	store          *catalog.Store
	financials     *finance.Data
	posClient      *pos.Client
)

// Configure installs the shared dependencies used by the HTTP handlers. A
// nil session manager disables authentication entirely, which is how the
// document-backed single-operator mode runs.
func Configure(sm *scs.SessionManager, db *gorm.DB, cat *catalog.Store, fin *finance.Data, square *pos.Client) {
	sessionManager = sm
	database = db
	store = cat
	financials = fin
	posClient = square
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
}

func createUser(r *http.Request, email, name, password string) (*models.User, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hashed),
	}

	if err := database.WithContext(r.Context()).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func findUserByEmail(r *http.Request, email string) (*models.User, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	user := &models.User{}
	err := database.WithContext(r.Context()).Where("lower(email) = ?", strings.ToLower(email)).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func establishSession(r *http.Request, user *models.User) error {
	if err := sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	sessionManager.Put(r.Context(), sessionAuthenticatedKey, true)
	sessionManager.Put(r.Context(), sessionUserIDKey, int(user.ID))
	sessionManager.Put(r.Context(), sessionUserEmailKey, user.Email)
	sessionManager.Put(r.Context(), sessionUserNameKey, user.Name)
	return nil
}

// Login verifies credentials and opens an authenticated session.
func Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if sessionManager == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "authentication not available")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := findUserByEmail(r, req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			applog.Error(r.Context(), "failed to load user during login", "error", err)
		}
		writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, Email: user.Email, Name: user.Name})
}

// Signup registers a new account and opens a session for it.
func Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if sessionManager == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "authentication not available")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeJSONError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < 8 {
		writeJSONError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := createUser(r, email, req.Name, req.Password)
	if err != nil {
		applog.Error(r.Context(), "failed to create user", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create account")
		return
	}
	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Authenticated: true, Email: user.Email, Name: user.Name})
}

// Logout destroys the current session.
func Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager != nil {
		if err := sessionManager.Destroy(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to destroy session", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
}

// ActiveSession returns true when the current request has an authenticated
// session. With authentication disabled every request counts as active.
func ActiveSession(r *http.Request) bool {
	if sessionManager == nil {
		return true
	}
	return sessionManager.GetBool(r.Context(), sessionAuthenticatedKey) && sessionManager.GetInt(r.Context(), sessionUserIDKey) > 0
}

// RequireAuthentication rejects unauthenticated API requests with a JSON
// 401 body instead of a redirect.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActiveSession(r) {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
