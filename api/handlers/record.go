package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/healx-platform/healx-api/api"
	"github.com/healx-platform/healx-api/config"
	"github.com/healx-platform/healx-api/databases"
	"github.com/healx-platform/healx-api/models"
)

// MedicalRecord exported for testing purposes
type MedicalRecord struct {
	DB databases.MedicalRecordDatabase
}

type createRecordRequest struct {
	Patient        string                    `json:"patient"`
	Doctor         string                    `json:"doctor"`
	RecordType     string                    `json:"recordType"`
	Diagnosis      string                    `json:"diagnosis"`
	Symptoms       []string                  `json:"symptoms"`
	Prescription   []models.PrescriptionItem `json:"prescription"`
	Vitals         *models.RecordVitals      `json:"vitals"`
	LabTests       []models.LabTest          `json:"labTests"`
	Allergies      []string                  `json:"allergies"`
	MedicalHistory []string                  `json:"medicalHistory"`
	VisitReason    string                    `json:"visitReason"`
	TreatmentPlan  string                    `json:"treatmentPlan"`
	Notes          string                    `json:"notes"`
	FollowUpDate   *time.Time                `json:"followUpDate"`
}

// RecordCreateHandler files a new medical record for a patient
func (m MedicalRecord) RecordCreateHandler(w http.ResponseWriter, r *http.Request) {
	var body createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	patient, err := primitive.ObjectIDFromHex(body.Patient)
	if err != nil {
		config.ErrorStatus("patient must be a valid user id", http.StatusBadRequest, w, err)
		return
	}
	doctor, err := primitive.ObjectIDFromHex(body.Doctor)
	if err != nil {
		config.ErrorStatus("doctor must be a valid user id", http.StatusBadRequest, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	record := models.MedicalRecord{
		ID:             primitive.NewObjectID(),
		RecordID:       "MRC-" + uuid.New().String(),
		Patient:        patient,
		Doctor:         doctor,
		RecordType:     body.RecordType,
		Diagnosis:      body.Diagnosis,
		Symptoms:       body.Symptoms,
		Prescription:   body.Prescription,
		Vitals:         body.Vitals,
		LabTests:       body.LabTests,
		Allergies:      body.Allergies,
		MedicalHistory: body.MedicalHistory,
		VisitReason:    body.VisitReason,
		TreatmentPlan:  body.TreatmentPlan,
		Notes:          body.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if body.FollowUpDate != nil {
		followUp := primitive.NewDateTimeFromTime(*body.FollowUpDate)
		record.FollowUpDate = &followUp
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := m.DB.InsertOne(ctx, record); err != nil {
		config.ErrorStatus("failed to create medical record", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(record)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// RecordByIDHandler returns a single medical record by its object id
func (m MedicalRecord) RecordByIDHandler(w http.ResponseWriter, r *http.Request) {
	recordID := mux.Vars(r)["record_id"]

	rID, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		config.ErrorStatus("record id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	record, err := m.DB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get medical record by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(record)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// PatientRecordsHandler returns all records for a patient, newest first
func (m MedicalRecord) PatientRecordsHandler(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["patient_id"]

	pID, err := primitive.ObjectIDFromHex(patientID)
	if err != nil {
		config.ErrorStatus("patient id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	filter := bson.M{"patient": pID}
	if recordType := r.URL.Query().Get("recordType"); recordType != "" {
		filter["recordType"] = recordType
	}

	limit, page := paginationParams(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := databases.PaginatedOpts(limit, page).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	records, err := m.DB.Find(ctx, filter, opts)
	if err != nil {
		config.ErrorStatus("failed to get patient records", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(records)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type updateRecordRequest struct {
	Diagnosis     string                    `json:"diagnosis"`
	Prescription  []models.PrescriptionItem `json:"prescription"`
	LabTests      []models.LabTest          `json:"labTests"`
	TreatmentPlan string                    `json:"treatmentPlan"`
	Notes         string                    `json:"notes"`
	FollowUpDate  *time.Time                `json:"followUpDate"`
}

// RecordUpdateHandler amends an existing medical record
func (m MedicalRecord) RecordUpdateHandler(w http.ResponseWriter, r *http.Request) {
	recordID := mux.Vars(r)["record_id"]

	rID, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		config.ErrorStatus("record id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	var body updateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if body.Diagnosis != "" {
		set["diagnosis"] = body.Diagnosis
	}
	if body.Prescription != nil {
		set["prescription"] = body.Prescription
	}
	if body.LabTests != nil {
		set["labTests"] = body.LabTests
	}
	if body.TreatmentPlan != "" {
		set["treatmentPlan"] = body.TreatmentPlan
	}
	if body.Notes != "" {
		set["notes"] = body.Notes
	}
	if body.FollowUpDate != nil {
		set["followUpDate"] = primitive.NewDateTimeFromTime(*body.FollowUpDate)
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	record, err := m.DB.UpdateOne(ctx, bson.M{"_id": rID}, bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("medical record not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to update medical record", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(record)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RecordDeleteHandler removes a medical record
func (m MedicalRecord) RecordDeleteHandler(w http.ResponseWriter, r *http.Request) {
	recordID := mux.Vars(r)["record_id"]

	rID, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		config.ErrorStatus("record id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := m.DB.DeleteOne(ctx, bson.M{"_id": rID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("medical record not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to delete medical record", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "deleted"}`))
}
