package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/healx-platform/healx-api/databases"
)

// MiddlewareDB holds the user store and signing secret for authentication
type MiddlewareDB struct {
	DB        databases.UserDatabase
	JWTSecret string
}

var authenticator auth.Authenticator
var cache store.Cache

// Middleware guards a route behind basic or bearer authentication
func Middleware(next http.Handler) http.Handler {
	return MiddlewareWithRoles(next)
}

// MiddlewareWithRoles guards a route behind authentication and, when roles are
// given, restricts it to users holding one of them.
func MiddlewareWithRoles(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		if !hasAnyRole(user, roles) {
			zap.S().Warnw("forbidden",
				"url", r.URL,
				"user", user.UserName())
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": "forbidden"}`))
			return
		}
		zap.S().Debugf("User %s Authenticated\n", user.UserName())
		next.ServeHTTP(w, r)
	})
}

func hasAnyRole(user auth.Info, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, role := range user.Extensions()["role"] {
		for _, a := range allowed {
			if role == a {
				return true
			}
		}
	}
	return false
}

// CreateToken exchanges basic credentials for a signed JWT
func (m MiddlewareDB) CreateToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	email, _, ok := r.BasicAuth()
	if !ok {
		http.Error(w, "basic auth failed", http.StatusUnauthorized)
		return
	}

	user, err := m.DB.FindOne(context.Background(), bson.M{"email": email})
	if err != nil {
		http.Error(w, "failed to get user by email", http.StatusUnauthorized)
		return
	}

	token, expiresAt, err := m.SignToken(user.ID.Hex(), user.Email, string(user.Role))
	if err != nil {
		http.Error(w, "failed to sign token", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"token":     token,
		"_id":       user.ID.Hex(),
		"role":      user.Role,
		"expiresAt": expiresAt.Unix(),
	}

	responseBody, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	w.Write(responseBody)
}

// SignToken mints a JWT for the given user
func (m MiddlewareDB) SignToken(userID, email, role string) (string, time.Time, error) {
	expiresAt := time.Now().Add(24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   expiresAt.Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.JWTSecret))
	return signed, expiresAt, err
}

// VerifyToken is the bearer strategy authenticate function. It validates the
// JWT signature and expiry and returns the embedded identity.
func (m MiddlewareDB) VerifyToken(ctx context.Context, r *http.Request, tokenString string) (auth.Info, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(m.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	extensions := map[string][]string{"role": {role}}
	return auth.NewDefaultUser(email, sub, nil, extensions), nil
}

// SetupGoGuardian registers the basic and bearer strategies
func (m MiddlewareDB) SetupGoGuardian() {
	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), time.Hour)
	basicStrategy := basic.New(m.ValidateUser, cache)
	tokenStrategy := bearer.New(m.VerifyToken, cache)

	authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// ValidateUser checks basic credentials against the user store
func (m MiddlewareDB) ValidateUser(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	user, err := m.DB.FindOne(context.Background(), bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("no matching email found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("failed to compare password")
	}

	extensions := map[string][]string{"role": {string(user.Role)}}
	return auth.NewDefaultUser(email, user.ID.Hex(), nil, extensions), nil
}
