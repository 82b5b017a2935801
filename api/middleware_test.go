package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/healx-platform/healx-api/databases/mocks"
)

func TestSignAndVerifyTokenRoundTrip(t *testing.T) {
	m := MiddlewareDB{JWTSecret: "test-secret"}

	token, expiresAt, err := m.SignToken("64b0c1f2a1b2c3d4e5f60718", "amara@example.com", "doctor")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/emergencies", nil)
	info, err := m.VerifyToken(context.Background(), req, token)
	assert.NoError(t, err)
	assert.Equal(t, "amara@example.com", info.UserName())
	assert.Equal(t, "64b0c1f2a1b2c3d4e5f60718", info.ID())
	assert.Equal(t, []string{"doctor"}, info.Extensions()["role"])
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	minted := MiddlewareDB{JWTSecret: "secret-a"}
	verifier := MiddlewareDB{JWTSecret: "secret-b"}

	token, _, err := minted.SignToken("64b0c1f2a1b2c3d4e5f60718", "amara@example.com", "doctor")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/emergencies", nil)
	_, err = verifier.VerifyToken(context.Background(), req, token)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	m := MiddlewareDB{JWTSecret: "test-secret"}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/emergencies", nil)
	_, err := m.VerifyToken(context.Background(), req, "not-a-jwt")
	assert.Error(t, err)
}

func TestMiddlewareWithRolesAllowsMatchingRole(t *testing.T) {
	m := MiddlewareDB{DB: &mocks.UserDatabase{}, JWTSecret: "test-secret"}
	m.SetupGoGuardian()

	token, _, err := m.SignToken("64b0c1f2a1b2c3d4e5f60718", "amara@example.com", "doctor")
	assert.NoError(t, err)

	called := false
	guarded := MiddlewareWithRoles(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), "admin", "doctor")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/emergency/x/doctor", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	guarded.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, called)
}

func TestMiddlewareWithRolesRejectsOtherRole(t *testing.T) {
	m := MiddlewareDB{DB: &mocks.UserDatabase{}, JWTSecret: "test-secret"}
	m.SetupGoGuardian()

	token, _, err := m.SignToken("64b0c1f2a1b2c3d4e5f60718", "amara@example.com", "patient")
	assert.NoError(t, err)

	guarded := MiddlewareWithRoles(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), "admin", "doctor")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/emergency/x/doctor", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	guarded.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestMiddlewareWithRolesRejectsAnonymous(t *testing.T) {
	m := MiddlewareDB{DB: &mocks.UserDatabase{}, JWTSecret: "test-secret"}
	m.SetupGoGuardian()

	guarded := MiddlewareWithRoles(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), "admin")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/emergency/x/doctor", nil)
	rr := httptest.NewRecorder()
	guarded.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
