package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/healx-platform/healx-api/api"
	"github.com/healx-platform/healx-api/config"
	"github.com/healx-platform/healx-api/databases"
	"github.com/healx-platform/healx-api/dispatch"
	"github.com/healx-platform/healx-api/models"
)

// Emergency exported for testing purposes
type Emergency struct {
	DB         databases.EmergencyDatabase
	Dispatcher *dispatch.Dispatcher
}

type createEmergencyRequest struct {
	Caller        string          `json:"caller"`
	EmergencyType string          `json:"emergencyType"`
	Severity      string          `json:"severity"`
	Location      models.GeoPoint `json:"location"`
	Address       string          `json:"address"`
	Description   string          `json:"description"`
	Symptoms      []string        `json:"symptoms"`
	Vitals        *models.Vitals  `json:"vitals"`
	InsuranceInfo string          `json:"insuranceInfo"`
}

type createEmergencyResponse struct {
	Emergency *models.Emergency `json:"emergency"`
	Ambulance *models.Ambulance `json:"ambulance,omitempty"`
	Dispatch  string            `json:"dispatch"`
}

// EmergencyCreateHandler records a new emergency and dispatches the nearest
// available ambulance. The emergency is created even when no ambulance can be
// assigned; the dispatch field of the response says how the search ended.
func (e Emergency) EmergencyCreateHandler(w http.ResponseWriter, r *http.Request) {
	var body createEmergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	caller, err := primitive.ObjectIDFromHex(body.Caller)
	if err != nil {
		config.ErrorStatus("caller must be a valid user id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	req := dispatch.EmergencyRequest{
		Caller:        caller,
		EmergencyType: models.EmergencyType(body.EmergencyType),
		Severity:      models.Severity(body.Severity),
		Location:      body.Location,
		Address:       body.Address,
		Description:   body.Description,
		Symptoms:      body.Symptoms,
		Vitals:        body.Vitals,
		InsuranceInfo: body.InsuranceInfo,
	}

	emergency, ambulance, outcome, err := e.Dispatcher.CreateEmergency(ctx, req)
	if err != nil {
		if errors.Is(err, dispatch.ErrInvalidRequest) {
			config.ErrorStatus("invalid emergency request", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to create emergency", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(createEmergencyResponse{
		Emergency: emergency,
		Ambulance: ambulance,
		Dispatch:  string(outcome),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// EmergenciesHandler returns all emergencies matching the optional status,
// severity, type and caller filters, paginated with limit and page.
func (e Emergency) EmergenciesHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if severity := r.URL.Query().Get("severity"); severity != "" {
		filter["severity"] = severity
	}
	if emergencyType := r.URL.Query().Get("emergencyType"); emergencyType != "" {
		filter["emergencyType"] = emergencyType
	}
	if caller := r.URL.Query().Get("caller"); caller != "" {
		callerID, err := primitive.ObjectIDFromHex(caller)
		if err != nil {
			config.ErrorStatus("caller must be a valid user id", http.StatusBadRequest, w, err)
			return
		}
		filter["caller"] = callerID
	}

	limit, page := paginationParams(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergencies, err := e.DB.Find(ctx, filter, databases.PaginatedOpts(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get emergencies", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(emergencies)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ActiveEmergenciesHandler returns every emergency not yet completed or
// cancelled, for the live dispatch board.
func (e Emergency) ActiveEmergenciesHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{"status": bson.M{"$nin": []models.EmergencyStatus{
		models.StatusCompleted, models.StatusCancelled,
	}}}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergencies, err := e.DB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get active emergencies", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(emergencies)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// NearbyEmergenciesHandler returns active emergencies within radius meters of
// the lng and lat query parameters, for responders scanning their area.
func (e Emergency) NearbyEmergenciesHandler(w http.ResponseWriter, r *http.Request) {
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if errLng != nil || errLat != nil {
		config.ErrorStatus("lng and lat query parameters are required", http.StatusBadRequest, w,
			fmt.Errorf("failed to parse coordinates"))
		return
	}

	point := models.NewGeoPoint(lng, lat)
	if !point.Valid() {
		config.ErrorStatus("coordinates out of range", http.StatusBadRequest, w,
			fmt.Errorf("got lng=%v lat=%v", lng, lat))
		return
	}

	radius := 10000.0
	if v, err := strconv.ParseFloat(r.URL.Query().Get("radius"), 64); err == nil && v > 0 {
		radius = v
	}

	filter := bson.M{
		"status": bson.M{"$nin": []models.EmergencyStatus{
			models.StatusCompleted, models.StatusCancelled,
		}},
		"location": bson.M{"$near": bson.M{
			"$geometry":    point,
			"$maxDistance": radius,
		}},
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergencies, err := e.DB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to search for emergencies", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(emergencies)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// EmergencyByIDHandler returns a single emergency by its object id
func (e Emergency) EmergencyByIDHandler(w http.ResponseWriter, r *http.Request) {
	emergencyID := mux.Vars(r)["emergency_id"]

	eID, err := primitive.ObjectIDFromHex(emergencyID)
	if err != nil {
		config.ErrorStatus("emergency id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergency, err := e.DB.FindOne(ctx, bson.M{"_id": eID})
	if err != nil {
		config.ErrorStatus("failed to get emergency by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(emergency)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// EmergencyStatusHandler moves an emergency through its lifecycle. Transitions
// not allowed from the current status are rejected with a conflict.
func (e Emergency) EmergencyStatusHandler(w http.ResponseWriter, r *http.Request) {
	emergencyID := mux.Vars(r)["emergency_id"]

	eID, err := primitive.ObjectIDFromHex(emergencyID)
	if err != nil {
		config.ErrorStatus("emergency id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	var body updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergency, err := e.Dispatcher.UpdateStatus(ctx, eID, models.EmergencyStatus(body.Status), body.Notes)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrEmergencyNotFound):
			config.ErrorStatus("emergency not found", http.StatusNotFound, w, err)
		case errors.Is(err, dispatch.ErrTerminalStatus), errors.Is(err, dispatch.ErrInvalidTransition):
			config.ErrorStatus("status transition not allowed", http.StatusConflict, w, err)
		default:
			config.ErrorStatus("failed to update emergency status", http.StatusInternalServerError, w, err)
		}
		return
	}

	b, err := json.Marshal(emergency)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// EmergencyTimelineHandler returns the append-only status history of an
// emergency.
func (e Emergency) EmergencyTimelineHandler(w http.ResponseWriter, r *http.Request) {
	emergencyID := mux.Vars(r)["emergency_id"]

	eID, err := primitive.ObjectIDFromHex(emergencyID)
	if err != nil {
		config.ErrorStatus("emergency id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergency, err := e.DB.FindOne(ctx, bson.M{"_id": eID})
	if err != nil {
		config.ErrorStatus("failed to get emergency by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(emergency.Timeline)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type assignDoctorRequest struct {
	Doctor string `json:"doctor"`
}

// EmergencyDoctorHandler assigns a doctor to an open emergency
func (e Emergency) EmergencyDoctorHandler(w http.ResponseWriter, r *http.Request) {
	emergencyID := mux.Vars(r)["emergency_id"]

	eID, err := primitive.ObjectIDFromHex(emergencyID)
	if err != nil {
		config.ErrorStatus("emergency id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	var body assignDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	doctor, err := primitive.ObjectIDFromHex(body.Doctor)
	if err != nil {
		config.ErrorStatus("doctor must be a valid user id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{
		"_id": eID,
		"status": bson.M{"$nin": []models.EmergencyStatus{
			models.StatusCompleted, models.StatusCancelled,
		}},
	}
	update := bson.M{"$set": bson.M{
		"assignedDoctor": doctor,
		"updatedAt":      primitive.NewDateTimeFromTime(time.Now()),
	}}

	emergency, err := e.DB.UpdateOne(ctx, filter, update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("emergency not found or already closed", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to assign doctor", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(emergency)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// paginationParams reads limit and page from the query string, defaulting to
// the first page of 50.
func paginationParams(r *http.Request) (int, int) {
	limit := 50
	page := 1
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	return limit, page
}
