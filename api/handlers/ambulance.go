package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
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

// Ambulance exported for testing purposes
type Ambulance struct {
	DB          databases.AmbulanceDatabase
	Broadcaster dispatch.Broadcaster
}

type createAmbulanceRequest struct {
	RegistrationNumber string          `json:"registrationNumber"`
	Driver             string          `json:"driver"`
	Location           models.GeoPoint `json:"location"`
	BaseStation        string          `json:"baseStation"`
	Equipment          []string        `json:"equipment"`
	Capacity           int             `json:"capacity"`
	Model              string          `json:"model"`
	Year               int             `json:"year"`
	Features           []string        `json:"features"`
}

// AmbulanceCreateHandler registers a new ambulance in the fleet
func (a Ambulance) AmbulanceCreateHandler(w http.ResponseWriter, r *http.Request) {
	var body createAmbulanceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	driver, err := primitive.ObjectIDFromHex(body.Driver)
	if err != nil {
		config.ErrorStatus("driver must be a valid user id", http.StatusBadRequest, w, err)
		return
	}
	if !body.Location.Valid() {
		config.ErrorStatus("location must be a GeoJSON point", http.StatusBadRequest, w,
			fmt.Errorf("got coordinates %v", body.Location.Coordinates))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	ambulance := models.Ambulance{
		ID:                 primitive.NewObjectID(),
		AmbulanceID:        "AMB-" + uuid.New().String(),
		RegistrationNumber: body.RegistrationNumber,
		Driver:             driver,
		Location:           body.Location,
		BaseStation:        body.BaseStation,
		Status:             models.AmbulanceAvailable,
		Equipment:          body.Equipment,
		Capacity:           body.Capacity,
		Model:              body.Model,
		Year:               body.Year,
		Features:           body.Features,
		FuelLevel:          100,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := a.DB.InsertOne(ctx, ambulance); err != nil {
		config.ErrorStatus("failed to create ambulance", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(ambulance)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// AmbulancesHandler returns all ambulances, optionally filtered by status
func (a Ambulance) AmbulancesHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	limit, page := paginationParams(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ambulances, err := a.DB.Find(ctx, filter, databases.PaginatedOpts(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get ambulances", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(ambulances)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AmbulanceByIDHandler returns a single ambulance by its object id
func (a Ambulance) AmbulanceByIDHandler(w http.ResponseWriter, r *http.Request) {
	ambulanceID := mux.Vars(r)["ambulance_id"]

	aID, err := primitive.ObjectIDFromHex(ambulanceID)
	if err != nil {
		config.ErrorStatus("ambulance id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ambulance, err := a.DB.FindOne(ctx, bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to get ambulance by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(ambulance)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// NearestAmbulancesHandler returns available ambulances ordered by distance
// from the lng and lat query parameters.
func (a Ambulance) NearestAmbulancesHandler(w http.ResponseWriter, r *http.Request) {
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

	radius, _ := strconv.ParseFloat(r.URL.Query().Get("radius"), 64)
	limit := int64(10)
	if l, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && l > 0 {
		limit = l
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ambulances, err := a.DB.FindNearest(ctx, point, radius, limit)
	if err != nil {
		config.ErrorStatus("failed to search for ambulances", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(ambulances)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type ambulanceStatusRequest struct {
	Status string `json:"status"`
}

// AmbulanceStatusHandler sets an ambulance's duty status. Returning to
// available is rejected while an emergency still holds the unit.
func (a Ambulance) AmbulanceStatusHandler(w http.ResponseWriter, r *http.Request) {
	ambulanceID := mux.Vars(r)["ambulance_id"]

	aID, err := primitive.ObjectIDFromHex(ambulanceID)
	if err != nil {
		config.ErrorStatus("ambulance id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	var body ambulanceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	status := models.AmbulanceStatus(body.Status)
	if !models.ValidAmbulanceStatus(status) {
		config.ErrorStatus("unknown ambulance status", http.StatusBadRequest, w,
			fmt.Errorf("got status %q", body.Status))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ambulance, err := a.DB.SetStatus(ctx, aID, status)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("ambulance not found or still assigned to an emergency", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to update ambulance status", http.StatusInternalServerError, w, err)
		return
	}

	if a.Broadcaster != nil {
		a.Broadcaster.Emit("ambulance:status_changed", map[string]interface{}{
			"ambulanceId": ambulance.AmbulanceID,
			"status":      ambulance.Status,
		})
	}

	b, err := json.Marshal(ambulance)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type ambulanceLocationRequest struct {
	Coordinates []float64 `json:"coordinates"`
}

// AmbulanceLocationHandler records a position report over plain HTTP, for
// drivers whose connection cannot hold a socket open.
func (a Ambulance) AmbulanceLocationHandler(w http.ResponseWriter, r *http.Request) {
	ambulanceID := mux.Vars(r)["ambulance_id"]

	aID, err := primitive.ObjectIDFromHex(ambulanceID)
	if err != nil {
		config.ErrorStatus("ambulance id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	var body ambulanceLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	point := models.GeoPoint{Type: "Point", Coordinates: body.Coordinates}
	if !point.Valid() {
		config.ErrorStatus("coordinates must be a longitude/latitude pair", http.StatusBadRequest, w,
			fmt.Errorf("got coordinates %v", body.Coordinates))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ambulance, err := a.DB.PushLocation(ctx, aID, body.Coordinates, time.Now())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("ambulance not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to record ambulance location", http.StatusInternalServerError, w, err)
		return
	}

	if a.Broadcaster != nil {
		a.Broadcaster.Emit("ambulance:move", ambulance)
		if ambulance.AssignedEmergency != nil {
			room := fmt.Sprintf("emergency:%s", ambulance.AssignedEmergency.Hex())
			a.Broadcaster.EmitToRoom(room, "ambulance:move", ambulance)
		}
	}

	b, err := json.Marshal(ambulance)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type ambulanceFuelRequest struct {
	FuelLevel float64 `json:"fuelLevel"`
}

// AmbulanceFuelHandler records the fuel level reported by the crew
func (a Ambulance) AmbulanceFuelHandler(w http.ResponseWriter, r *http.Request) {
	ambulanceID := mux.Vars(r)["ambulance_id"]

	aID, err := primitive.ObjectIDFromHex(ambulanceID)
	if err != nil {
		config.ErrorStatus("ambulance id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	var body ambulanceFuelRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.FuelLevel < 0 || body.FuelLevel > 100 {
		config.ErrorStatus("fuelLevel must be between 0 and 100", http.StatusBadRequest, w,
			fmt.Errorf("got fuelLevel %v", body.FuelLevel))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	update := bson.M{"$set": bson.M{
		"fuelLevel": body.FuelLevel,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}}
	ambulance, err := a.DB.UpdateOne(ctx, bson.M{"_id": aID}, update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("ambulance not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to update fuel level", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(ambulance)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type ambulanceAssistantRequest struct {
	Assistant string `json:"assistant"`
}

// AmbulanceAssistantHandler assigns an assistant crew member to an ambulance
func (a Ambulance) AmbulanceAssistantHandler(w http.ResponseWriter, r *http.Request) {
	ambulanceID := mux.Vars(r)["ambulance_id"]

	aID, err := primitive.ObjectIDFromHex(ambulanceID)
	if err != nil {
		config.ErrorStatus("ambulance id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	var body ambulanceAssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	assistant, err := primitive.ObjectIDFromHex(body.Assistant)
	if err != nil {
		config.ErrorStatus("assistant must be a valid user id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	update := bson.M{"$set": bson.M{
		"assistant": assistant,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}}
	ambulance, err := a.DB.UpdateOne(ctx, bson.M{"_id": aID}, update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("ambulance not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to assign assistant", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(ambulance)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type ambulanceTracking struct {
	AmbulanceID       string                  `json:"ambulanceId"`
	Status            models.AmbulanceStatus  `json:"status"`
	Location          models.GeoPoint         `json:"location"`
	AssignedEmergency *primitive.ObjectID     `json:"assignedEmergency,omitempty"`
	LocationHistory   []models.LocationSample `json:"locationHistory"`
	UpdatedAt         primitive.DateTime      `json:"updatedAt"`
}

// AmbulanceTrackingHandler returns the current position and recent movement of
// an ambulance, the view a caller watches while their unit is en route.
func (a Ambulance) AmbulanceTrackingHandler(w http.ResponseWriter, r *http.Request) {
	ambulanceID := mux.Vars(r)["ambulance_id"]

	aID, err := primitive.ObjectIDFromHex(ambulanceID)
	if err != nil {
		config.ErrorStatus("ambulance id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ambulance, err := a.DB.FindOne(ctx, bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to get ambulance by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(ambulanceTracking{
		AmbulanceID:       ambulance.AmbulanceID,
		Status:            ambulance.Status,
		Location:          ambulance.Location,
		AssignedEmergency: ambulance.AssignedEmergency,
		LocationHistory:   ambulance.LocationHistory,
		UpdatedAt:         ambulance.UpdatedAt,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AmbulanceHistoryHandler returns the bounded location history of an ambulance
func (a Ambulance) AmbulanceHistoryHandler(w http.ResponseWriter, r *http.Request) {
	ambulanceID := mux.Vars(r)["ambulance_id"]

	aID, err := primitive.ObjectIDFromHex(ambulanceID)
	if err != nil {
		config.ErrorStatus("ambulance id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ambulance, err := a.DB.FindOne(ctx, bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to get ambulance by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(ambulance.LocationHistory)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AmbulanceDeleteHandler removes an ambulance from the fleet
func (a Ambulance) AmbulanceDeleteHandler(w http.ResponseWriter, r *http.Request) {
	ambulanceID := mux.Vars(r)["ambulance_id"]

	aID, err := primitive.ObjectIDFromHex(ambulanceID)
	if err != nil {
		config.ErrorStatus("ambulance id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := a.DB.DeleteOne(ctx, bson.M{"_id": aID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("ambulance not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to delete ambulance", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "deleted"}`))
}
