package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/healx-platform/healx-api/databases/mocks"
	"github.com/healx-platform/healx-api/models"
)

func TestRegisterUserHandlerSuccess(t *testing.T) {
	var mockUserDB = &mocks.UserDatabase{}

	mockUserDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)
	mockUserDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	body, _ := json.Marshal(map[string]string{
		"firstName": "Amara",
		"lastName":  "Perera",
		"email":     "amara@example.com",
		"password":  "hunter2hunter2",
		"role":      "doctor",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	u := User{DB: mockUserDB}
	u.RegisterUserHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got models.User
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.RoleDoctor, got.Role)
	assert.Empty(t, got.Password, "password hash must not be serialized")

	inserted := mockUserDB.Calls[1].Arguments.Get(1).(models.User)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(inserted.Password), []byte("hunter2hunter2")))
}

func TestRegisterUserHandlerDuplicateEmail(t *testing.T) {
	var mockUserDB = &mocks.UserDatabase{}

	mockUserDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.User{Email: "amara@example.com"}, nil)

	body, _ := json.Marshal(map[string]string{
		"email":    "amara@example.com",
		"password": "hunter2hunter2",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	u := User{DB: mockUserDB}
	u.RegisterUserHandler(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	mockUserDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestRegisterUserHandlerMissingCredentials(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"firstName": "Amara"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	u := User{DB: &mocks.UserDatabase{}}
	u.RegisterUserHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUserByIDHandlerSuccess(t *testing.T) {
	var mockUserDB = &mocks.UserDatabase{}
	uID := primitive.NewObjectID()

	mockUserDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.User{
		ID:        uID,
		FirstName: "Amara",
		Role:      models.RolePatient,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/user/%s", uID.Hex()), nil)
	req = mux.SetURLVars(req, map[string]string{"user_id": uID.Hex()})
	rr := httptest.NewRecorder()

	u := User{DB: mockUserDB}
	u.UserByIDHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.User
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Amara", got.FirstName)
}
