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
	"github.com/healx-platform/healx-api/models"
)

func TestAmbulanceCreateHandlerSuccess(t *testing.T) {
	var mockAmbulanceDB = &mocks.AmbulanceDatabase{}

	mockAmbulanceDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"registrationNumber": "WP-AB-1234",
		"driver":             primitive.NewObjectID().Hex(),
		"location":           models.NewGeoPoint(79.86, 6.92),
		"baseStation":        "Colombo General",
		"capacity":           2,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ambulance", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	a := Ambulance{DB: mockAmbulanceDB}
	a.AmbulanceCreateHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got models.Ambulance
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.AmbulanceAvailable, got.Status)
	assert.NotEmpty(t, got.AmbulanceID)
}

func TestAmbulanceCreateHandlerRejectsBadLocation(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"registrationNumber": "WP-AB-1234",
		"driver":             primitive.NewObjectID().Hex(),
		"location":           map[string]interface{}{"type": "Point", "coordinates": []float64{200, 95}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ambulance", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	a := Ambulance{DB: &mocks.AmbulanceDatabase{}}
	a.AmbulanceCreateHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNearestAmbulancesHandlerSuccess(t *testing.T) {
	var mockAmbulanceDB = &mocks.AmbulanceDatabase{}

	mockAmbulanceDB.On("FindNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Ambulance{
			{AmbulanceID: "AMB-1", Status: models.AmbulanceAvailable},
			{AmbulanceID: "AMB-2", Status: models.AmbulanceAvailable},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ambulances/nearest?lng=79.86&lat=6.92", nil)
	rr := httptest.NewRecorder()

	a := Ambulance{DB: mockAmbulanceDB}
	a.NearestAmbulancesHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []models.Ambulance
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestNearestAmbulancesHandlerRequiresCoordinates(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ambulances/nearest", nil)
	rr := httptest.NewRecorder()

	a := Ambulance{DB: &mocks.AmbulanceDatabase{}}
	a.NearestAmbulancesHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAmbulanceStatusHandlerSuccess(t *testing.T) {
	var mockAmbulanceDB = &mocks.AmbulanceDatabase{}
	aID := primitive.NewObjectID()

	mockAmbulanceDB.On("SetStatus", mock.Anything, aID, models.AmbulanceMaintenance).
		Return(&models.Ambulance{ID: aID, AmbulanceID: "AMB-1", Status: models.AmbulanceMaintenance}, nil)

	body, _ := json.Marshal(map[string]string{"status": "maintenance"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/ambulance/%s/status", aID.Hex()), bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"ambulance_id": aID.Hex()})
	rr := httptest.NewRecorder()

	a := Ambulance{DB: mockAmbulanceDB}
	a.AmbulanceStatusHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.Ambulance
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.AmbulanceMaintenance, got.Status)
}

func TestAmbulanceStatusHandlerRejectsUnknownStatus(t *testing.T) {
	aID := primitive.NewObjectID()

	body, _ := json.Marshal(map[string]string{"status": "parked"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/ambulance/%s/status", aID.Hex()), bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"ambulance_id": aID.Hex()})
	rr := httptest.NewRecorder()

	a := Ambulance{DB: &mocks.AmbulanceDatabase{}}
	a.AmbulanceStatusHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAmbulanceStatusHandlerConflictWhileAssigned(t *testing.T) {
	var mockAmbulanceDB = &mocks.AmbulanceDatabase{}
	aID := primitive.NewObjectID()

	// SetStatus filters on assignedEmergency being clear; a held unit matches
	// no document
	mockAmbulanceDB.On("SetStatus", mock.Anything, aID, models.AmbulanceAvailable).
		Return(nil, mongo.ErrNoDocuments)

	body, _ := json.Marshal(map[string]string{"status": "available"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/ambulance/%s/status", aID.Hex()), bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"ambulance_id": aID.Hex()})
	rr := httptest.NewRecorder()

	a := Ambulance{DB: mockAmbulanceDB}
	a.AmbulanceStatusHandler(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestAmbulanceLocationHandlerRecordsSample(t *testing.T) {
	var mockAmbulanceDB = &mocks.AmbulanceDatabase{}
	aID := primitive.NewObjectID()

	mockAmbulanceDB.On("PushLocation", mock.Anything, aID, []float64{79.9, 6.95}, mock.Anything).
		Return(&models.Ambulance{
			ID:          aID,
			AmbulanceID: "AMB-1",
			Location:    models.NewGeoPoint(79.9, 6.95),
			LocationHistory: []models.LocationSample{
				{Coordinates: []float64{79.9, 6.95}},
			},
		}, nil)

	body, _ := json.Marshal(map[string]interface{}{"coordinates": []float64{79.9, 6.95}})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/ambulance/%s/location", aID.Hex()), bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"ambulance_id": aID.Hex()})
	rr := httptest.NewRecorder()

	a := Ambulance{DB: mockAmbulanceDB}
	a.AmbulanceLocationHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.Ambulance
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, []float64{79.9, 6.95}, got.Location.Coordinates)
	assert.Len(t, got.LocationHistory, 1)
}

func TestAmbulanceLocationHandlerRejectsBadCoordinates(t *testing.T) {
	aID := primitive.NewObjectID()

	body, _ := json.Marshal(map[string]interface{}{"coordinates": []float64{79.9}})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/ambulance/%s/location", aID.Hex()), bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"ambulance_id": aID.Hex()})
	rr := httptest.NewRecorder()

	a := Ambulance{DB: &mocks.AmbulanceDatabase{}}
	a.AmbulanceLocationHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAmbulanceHistoryHandlerSuccess(t *testing.T) {
	var mockAmbulanceDB = &mocks.AmbulanceDatabase{}
	aID := primitive.NewObjectID()

	mockAmbulanceDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Ambulance{
		ID: aID,
		LocationHistory: []models.LocationSample{
			{Coordinates: []float64{79.86, 6.92}},
			{Coordinates: []float64{79.87, 6.93}},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/ambulance/%s/history", aID.Hex()), nil)
	req = mux.SetURLVars(req, map[string]string{"ambulance_id": aID.Hex()})
	rr := httptest.NewRecorder()

	a := Ambulance{DB: mockAmbulanceDB}
	a.AmbulanceHistoryHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []models.LocationSample
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestAmbulanceFuelHandlerSuccess(t *testing.T) {
	var mockAmbulanceDB = &mocks.AmbulanceDatabase{}
	aID := primitive.NewObjectID()

	mockAmbulanceDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&models.Ambulance{
		ID:        aID,
		FuelLevel: 45,
	}, nil)

	body, _ := json.Marshal(map[string]float64{"fuelLevel": 45})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/ambulance/%s/fuel", aID.Hex()), bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"ambulance_id": aID.Hex()})
	rr := httptest.NewRecorder()

	a := Ambulance{DB: mockAmbulanceDB}
	a.AmbulanceFuelHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.Ambulance
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, float64(45), got.FuelLevel)
}

func TestAmbulanceFuelHandlerOutOfRange(t *testing.T) {
	aID := primitive.NewObjectID()

	body, _ := json.Marshal(map[string]float64{"fuelLevel": 140})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/ambulance/%s/fuel", aID.Hex()), bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"ambulance_id": aID.Hex()})
	rr := httptest.NewRecorder()

	a := Ambulance{DB: &mocks.AmbulanceDatabase{}}
	a.AmbulanceFuelHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAmbulanceTrackingHandlerSuccess(t *testing.T) {
	var mockAmbulanceDB = &mocks.AmbulanceDatabase{}
	aID := primitive.NewObjectID()

	mockAmbulanceDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Ambulance{
		ID:          aID,
		AmbulanceID: "AMB-9",
		Status:      models.AmbulanceOnDuty,
		Location:    models.NewGeoPoint(79.86, 6.92),
		LocationHistory: []models.LocationSample{
			{Coordinates: []float64{79.85, 6.91}},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/ambulance/%s/tracking", aID.Hex()), nil)
	req = mux.SetURLVars(req, map[string]string{"ambulance_id": aID.Hex()})
	rr := httptest.NewRecorder()

	a := Ambulance{DB: mockAmbulanceDB}
	a.AmbulanceTrackingHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got ambulanceTracking
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "AMB-9", got.AmbulanceID)
	assert.Equal(t, models.AmbulanceOnDuty, got.Status)
	assert.Len(t, got.LocationHistory, 1)
}
