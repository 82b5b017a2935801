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

	"github.com/healx-platform/healx-api/databases/mocks"
	"github.com/healx-platform/healx-api/dispatch"
	"github.com/healx-platform/healx-api/models"
)

func newTestDispatcher(edb *mocks.EmergencyDatabase, adb *mocks.AmbulanceDatabase) *dispatch.Dispatcher {
	return dispatch.NewDispatcher(edb, adb, nil, dispatch.NopBroadcaster{}, nil)
}

func TestEmergencyByIDHandlerSuccess(t *testing.T) {
	var mockEmergencyDB = &mocks.EmergencyDatabase{}
	eID := primitive.NewObjectID()

	mockEmergencyDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Emergency{
		ID:          eID,
		EmergencyID: "EMG-test",
		Status:      models.StatusPending,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/emergency/%s", eID.Hex()), nil)
	req = mux.SetURLVars(req, map[string]string{"emergency_id": eID.Hex()})
	rr := httptest.NewRecorder()

	e := Emergency{DB: mockEmergencyDB}
	e.EmergencyByIDHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.Emergency
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "EMG-test", got.EmergencyID)
}

func TestEmergencyByIDHandlerBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/emergency/not-an-id", nil)
	req = mux.SetURLVars(req, map[string]string{"emergency_id": "not-an-id"})
	rr := httptest.NewRecorder()

	e := Emergency{DB: &mocks.EmergencyDatabase{}}
	e.EmergencyByIDHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEmergencyByIDHandlerNotFound(t *testing.T) {
	var mockEmergencyDB = &mocks.EmergencyDatabase{}
	eID := primitive.NewObjectID()

	mockEmergencyDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/emergency/%s", eID.Hex()), nil)
	req = mux.SetURLVars(req, map[string]string{"emergency_id": eID.Hex()})
	rr := httptest.NewRecorder()

	e := Emergency{DB: mockEmergencyDB}
	e.EmergencyByIDHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEmergenciesHandlerFiltersByStatus(t *testing.T) {
	var mockEmergencyDB = &mocks.EmergencyDatabase{}

	mockEmergencyDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.Emergency{
		{EmergencyID: "EMG-1", Status: models.StatusPending},
		{EmergencyID: "EMG-2", Status: models.StatusPending},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/emergencies?status=pending", nil)
	rr := httptest.NewRecorder()

	e := Emergency{DB: mockEmergencyDB}
	e.EmergenciesHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []models.Emergency
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestEmergencyCreateHandlerInvalidCaller(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"caller":        "nope",
		"emergencyType": "cardiac",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/emergency", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	e := Emergency{Dispatcher: newTestDispatcher(&mocks.EmergencyDatabase{}, &mocks.AmbulanceDatabase{})}
	e.EmergencyCreateHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEmergencyCreateHandlerInvalidType(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"caller":        primitive.NewObjectID().Hex(),
		"emergencyType": "sniffles",
		"location":      models.NewGeoPoint(79.86, 6.92),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/emergency", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	e := Emergency{Dispatcher: newTestDispatcher(&mocks.EmergencyDatabase{}, &mocks.AmbulanceDatabase{})}
	e.EmergencyCreateHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEmergencyCreateHandlerAssignsAmbulance(t *testing.T) {
	var mockEmergencyDB = &mocks.EmergencyDatabase{}
	var mockAmbulanceDB = &mocks.AmbulanceDatabase{}

	ambulance := &models.Ambulance{
		ID:          primitive.NewObjectID(),
		AmbulanceID: "AMB-7",
		Status:      models.AmbulanceOnDuty,
	}

	mockEmergencyDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	mockAmbulanceDB.On("FindNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Ambulance{*ambulance}, nil)
	mockAmbulanceDB.On("Reserve", mock.Anything, ambulance.ID, mock.Anything).Return(ambulance, nil)
	mockEmergencyDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&models.Emergency{}, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"caller":        primitive.NewObjectID().Hex(),
		"emergencyType": "cardiac",
		"location":      models.NewGeoPoint(79.86, 6.92),
		"address":       "42 Galle Rd",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/emergency", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	e := Emergency{DB: mockEmergencyDB, Dispatcher: newTestDispatcher(mockEmergencyDB, mockAmbulanceDB)}
	e.EmergencyCreateHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got createEmergencyResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, string(dispatch.OutcomeAssigned), got.Dispatch)
	assert.NotNil(t, got.Ambulance)
	assert.Equal(t, "AMB-7", got.Ambulance.AmbulanceID)
	assert.Equal(t, models.StatusPending, got.Emergency.Status)
	assert.Equal(t, ambulance.ID.Hex(), got.Emergency.AssignedAmbulance.Hex())
}

func TestEmergencyCreateHandlerNoAmbulanceStillCreated(t *testing.T) {
	var mockEmergencyDB = &mocks.EmergencyDatabase{}
	var mockAmbulanceDB = &mocks.AmbulanceDatabase{}

	mockEmergencyDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	mockAmbulanceDB.On("FindNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Ambulance{}, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"caller":        primitive.NewObjectID().Hex(),
		"emergencyType": "trauma",
		"location":      models.NewGeoPoint(79.86, 6.92),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/emergency", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	e := Emergency{DB: mockEmergencyDB, Dispatcher: newTestDispatcher(mockEmergencyDB, mockAmbulanceDB)}
	e.EmergencyCreateHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got createEmergencyResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, string(dispatch.OutcomeNoAmbulance), got.Dispatch)
	assert.Nil(t, got.Ambulance)
	assert.Equal(t, models.StatusPending, got.Emergency.Status)
}

func TestEmergencyStatusHandlerRejectsTerminal(t *testing.T) {
	var mockEmergencyDB = &mocks.EmergencyDatabase{}
	eID := primitive.NewObjectID()

	mockEmergencyDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Emergency{
		ID:     eID,
		Status: models.StatusCompleted,
	}, nil)

	body, _ := json.Marshal(map[string]string{"status": "cancelled"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/emergency/%s/status", eID.Hex()), bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"emergency_id": eID.Hex()})
	rr := httptest.NewRecorder()

	e := Emergency{DB: mockEmergencyDB, Dispatcher: newTestDispatcher(mockEmergencyDB, &mocks.AmbulanceDatabase{})}
	e.EmergencyStatusHandler(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestEmergencyStatusHandlerAdvancesLifecycle(t *testing.T) {
	var mockEmergencyDB = &mocks.EmergencyDatabase{}
	eID := primitive.NewObjectID()

	mockEmergencyDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Emergency{
		ID:     eID,
		Status: models.StatusAccepted,
	}, nil)
	mockEmergencyDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&models.Emergency{
		ID:     eID,
		Status: models.StatusArrived,
	}, nil)

	body, _ := json.Marshal(map[string]string{"status": "arrived", "notes": "on scene"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/emergency/%s/status", eID.Hex()), bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"emergency_id": eID.Hex()})
	rr := httptest.NewRecorder()

	e := Emergency{DB: mockEmergencyDB, Dispatcher: newTestDispatcher(mockEmergencyDB, &mocks.AmbulanceDatabase{})}
	e.EmergencyStatusHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.Emergency
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.StatusArrived, got.Status)
}

func TestEmergencyStatusHandlerNotFound(t *testing.T) {
	var mockEmergencyDB = &mocks.EmergencyDatabase{}
	eID := primitive.NewObjectID()

	mockEmergencyDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	body, _ := json.Marshal(map[string]string{"status": "accepted"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/emergency/%s/status", eID.Hex()), bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"emergency_id": eID.Hex()})
	rr := httptest.NewRecorder()

	e := Emergency{DB: mockEmergencyDB, Dispatcher: newTestDispatcher(mockEmergencyDB, &mocks.AmbulanceDatabase{})}
	e.EmergencyStatusHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEmergencyDoctorHandlerSuccess(t *testing.T) {
	var mockEmergencyDB = &mocks.EmergencyDatabase{}
	eID := primitive.NewObjectID()
	doctor := primitive.NewObjectID()

	mockEmergencyDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&models.Emergency{
		ID:             eID,
		AssignedDoctor: &doctor,
		Status:         models.StatusAccepted,
	}, nil)

	body, _ := json.Marshal(map[string]string{"doctor": doctor.Hex()})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/emergency/%s/doctor", eID.Hex()), bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"emergency_id": eID.Hex()})
	rr := httptest.NewRecorder()

	e := Emergency{DB: mockEmergencyDB}
	e.EmergencyDoctorHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.Emergency
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, doctor.Hex(), got.AssignedDoctor.Hex())
}

func TestEmergencyDoctorHandlerClosedEmergency(t *testing.T) {
	var mockEmergencyDB = &mocks.EmergencyDatabase{}
	eID := primitive.NewObjectID()

	mockEmergencyDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	body, _ := json.Marshal(map[string]string{"doctor": primitive.NewObjectID().Hex()})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/emergency/%s/doctor", eID.Hex()), bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"emergency_id": eID.Hex()})
	rr := httptest.NewRecorder()

	e := Emergency{DB: mockEmergencyDB}
	e.EmergencyDoctorHandler(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}
