package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
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

// HealthCamp exported for testing purposes
type HealthCamp struct {
	DB       databases.HealthCampDatabase
	Notifier *dispatch.Notifier
}

type createCampRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	Location    models.GeoPoint `json:"location"`
	Address     *models.Address `json:"address"`
	Organizer   string          `json:"organizer"`
	Services    []string        `json:"services"`
	Capacity    int             `json:"capacity"`
	Budget      float64         `json:"budget"`
}

// CampCreateHandler schedules a new health camp
func (h HealthCamp) CampCreateHandler(w http.ResponseWriter, r *http.Request) {
	var body createCampRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	organizer, err := primitive.ObjectIDFromHex(body.Organizer)
	if err != nil {
		config.ErrorStatus("organizer must be a valid user id", http.StatusBadRequest, w, err)
		return
	}
	if body.Name == "" {
		config.ErrorStatus("camp name is required", http.StatusBadRequest, w, errors.New("missing name"))
		return
	}
	if !body.EndDate.After(body.StartDate) {
		config.ErrorStatus("endDate must be after startDate", http.StatusBadRequest, w,
			errors.New("invalid date range"))
		return
	}
	if !body.Location.Valid() {
		config.ErrorStatus("location must be a GeoJSON point", http.StatusBadRequest, w,
			errors.New("invalid coordinates"))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	camp := models.HealthCamp{
		ID:          primitive.NewObjectID(),
		Name:        body.Name,
		Description: body.Description,
		Type:        body.Type,
		StartDate:   primitive.NewDateTimeFromTime(body.StartDate),
		EndDate:     primitive.NewDateTimeFromTime(body.EndDate),
		Location:    body.Location,
		Address:     body.Address,
		Organizer:   organizer,
		Services:    body.Services,
		Capacity:    body.Capacity,
		Budget:      body.Budget,
		Status:      "planned",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := h.DB.InsertOne(ctx, camp); err != nil {
		config.ErrorStatus("failed to create health camp", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(camp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// CampsHandler returns all health camps, optionally filtered by status or type
func (h HealthCamp) CampsHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if campType := r.URL.Query().Get("type"); campType != "" {
		filter["type"] = campType
	}

	limit, page := paginationParams(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	camps, err := h.DB.Find(ctx, filter, databases.PaginatedOpts(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get health camps", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(camps)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CampByIDHandler returns a single health camp by its object id
func (h HealthCamp) CampByIDHandler(w http.ResponseWriter, r *http.Request) {
	campID := mux.Vars(r)["camp_id"]

	cID, err := primitive.ObjectIDFromHex(campID)
	if err != nil {
		config.ErrorStatus("camp id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	camp, err := h.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get health camp by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(camp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type registerPatientRequest struct {
	Patient string `json:"patient"`
}

// CampRegisterHandler registers a patient for a camp. The update filter
// requires free capacity, so concurrent registrations cannot oversubscribe
// the camp. A repeat registration is a no-op thanks to $addToSet.
func (h HealthCamp) CampRegisterHandler(w http.ResponseWriter, r *http.Request) {
	campID := mux.Vars(r)["camp_id"]

	cID, err := primitive.ObjectIDFromHex(campID)
	if err != nil {
		config.ErrorStatus("camp id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	var body registerPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	patient, err := primitive.ObjectIDFromHex(body.Patient)
	if err != nil {
		config.ErrorStatus("patient must be a valid user id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{
		"_id":      cID,
		"status":   bson.M{"$in": []string{"planned", "ongoing"}},
		"patients": bson.M{"$ne": patient},
		"$expr":    bson.M{"$lt": bson.A{"$registeredCount", "$capacity"}},
	}
	update := bson.M{
		"$addToSet": bson.M{"patients": patient},
		"$inc":      bson.M{"registeredCount": 1},
		"$set":      bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
	}

	camp, err := h.DB.UpdateOne(ctx, filter, update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("camp is full, closed, or the patient is already registered", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to register patient", http.StatusInternalServerError, w, err)
		return
	}

	if h.Notifier != nil {
		h.Notifier.Notify(ctx, patient, "camp_update", "Camp registration confirmed",
			"You are registered for "+camp.Name, "medium",
			&models.RelatedData{Camp: &camp.ID})
	}

	b, err := json.Marshal(camp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type updateCampStatusRequest struct {
	Status string `json:"status"`
}

// CampStatusHandler moves a camp through planned, ongoing, completed or
// cancelled.
func (h HealthCamp) CampStatusHandler(w http.ResponseWriter, r *http.Request) {
	campID := mux.Vars(r)["camp_id"]

	cID, err := primitive.ObjectIDFromHex(campID)
	if err != nil {
		config.ErrorStatus("camp id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	var body updateCampStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	switch body.Status {
	case "planned", "ongoing", "completed", "cancelled":
	default:
		config.ErrorStatus("unknown camp status", http.StatusBadRequest, w,
			errors.New("got status "+body.Status))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	camp, err := h.DB.UpdateOne(ctx, bson.M{"_id": cID}, bson.M{"$set": bson.M{
		"status":    body.Status,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("camp not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to update camp status", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(camp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CampDeleteHandler removes a health camp
func (h HealthCamp) CampDeleteHandler(w http.ResponseWriter, r *http.Request) {
	campID := mux.Vars(r)["camp_id"]

	cID, err := primitive.ObjectIDFromHex(campID)
	if err != nil {
		config.ErrorStatus("camp id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := h.DB.DeleteOne(ctx, bson.M{"_id": cID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("camp not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to delete camp", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "deleted"}`))
}
