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

// Report exported for testing purposes
type Report struct {
	DB          databases.ReportDatabase
	EmergencyDB databases.EmergencyDatabase
	RecordDB    databases.MedicalRecordDatabase
}

type generateReportRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ReportType  string    `json:"reportType"`
	GeneratedBy string    `json:"generatedBy"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

// ReportGenerateHandler aggregates platform data into a stored report. The
// emergency_analysis type summarizes emergencies in the period; the
// disease_outbreak type counts diagnoses from medical records.
func (rp Report) ReportGenerateHandler(w http.ResponseWriter, r *http.Request) {
	var body generateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	generatedBy, err := primitive.ObjectIDFromHex(body.GeneratedBy)
	if err != nil {
		config.ErrorStatus("generatedBy must be a valid user id", http.StatusBadRequest, w, err)
		return
	}
	if !body.EndDate.After(body.StartDate) {
		config.ErrorStatus("endDate must be after startDate", http.StatusBadRequest, w,
			errors.New("invalid period"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report := models.Report{
		ID:          primitive.NewObjectID(),
		ReportID:    "RPT-" + uuid.New().String(),
		Title:       body.Title,
		Description: body.Description,
		ReportType:  body.ReportType,
		GeneratedBy: generatedBy,
		Period: &models.ReportPeriod{
			StartDate: primitive.NewDateTimeFromTime(body.StartDate),
			EndDate:   primitive.NewDateTimeFromTime(body.EndDate),
		},
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}

	switch body.ReportType {
	case "emergency_analysis":
		stats, err := rp.emergencyStatistics(r, body.StartDate, body.EndDate)
		if err != nil {
			config.ErrorStatus("failed to aggregate emergency data", http.StatusInternalServerError, w, err)
			return
		}
		report.Statistics = stats
	case "disease_outbreak":
		diseases, err := rp.diseaseCounts(r, body.StartDate, body.EndDate)
		if err != nil {
			config.ErrorStatus("failed to aggregate diagnosis data", http.StatusInternalServerError, w, err)
			return
		}
		report.DiseaseData = diseases
	default:
		config.ErrorStatus("unknown report type", http.StatusBadRequest, w,
			errors.New("got reportType "+body.ReportType))
		return
	}

	if _, err := rp.DB.InsertOne(ctx, report); err != nil {
		config.ErrorStatus("failed to store report", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

func (rp Report) emergencyStatistics(r *http.Request, start, end time.Time) (*models.ReportStatistics, error) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	period := bson.M{
		"$gte": primitive.NewDateTimeFromTime(start),
		"$lte": primitive.NewDateTimeFromTime(end),
	}
	pipeline := []bson.M{
		{"$match": bson.M{"createdAt": period}},
		{"$group": bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"completed": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.StatusCompleted}}, 1, 0},
			}},
			"atHospital": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.StatusAtHospital}}, 1, 0},
			}},
			"averageSeverity": bson.M{"$avg": bson.M{"$switch": bson.M{
				"branches": []bson.M{
					{"case": bson.M{"$eq": bson.A{"$severity", models.SeverityLow}}, "then": 1},
					{"case": bson.M{"$eq": bson.A{"$severity", models.SeverityMedium}}, "then": 2},
					{"case": bson.M{"$eq": bson.A{"$severity", models.SeverityHigh}}, "then": 3},
					{"case": bson.M{"$eq": bson.A{"$severity", models.SeverityCritical}}, "then": 4},
				},
				"default": 2,
			}}},
		}},
	}

	results, err := rp.EmergencyDB.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &models.ReportStatistics{}, nil
	}

	row := results[0]
	stats := &models.ReportStatistics{
		TotalEmergencies: asInt(row["total"]),
		AverageSeverity:  asFloat(row["averageSeverity"]),
	}
	if stats.TotalEmergencies > 0 {
		stats.RecoveryRate = float64(asInt(row["completed"])) / float64(stats.TotalEmergencies)
		stats.AdmissionRate = float64(asInt(row["atHospital"])) / float64(stats.TotalEmergencies)
	}
	return stats, nil
}

func (rp Report) diseaseCounts(r *http.Request, start, end time.Time) ([]models.DiseaseDatum, error) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	period := bson.M{
		"$gte": primitive.NewDateTimeFromTime(start),
		"$lte": primitive.NewDateTimeFromTime(end),
	}
	pipeline := []bson.M{
		{"$match": bson.M{
			"createdAt": period,
			"diagnosis": bson.M{"$nin": bson.A{nil, ""}},
		}},
		{"$group": bson.M{
			"_id":   "$diagnosis",
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.D{{Key: "count", Value: -1}}},
		{"$limit": 50},
	}

	results, err := rp.RecordDB.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, row := range results {
		total += asInt(row["count"])
	}

	diseases := make([]models.DiseaseDatum, 0, len(results))
	for _, row := range results {
		disease, _ := row["_id"].(string)
		count := asInt(row["count"])
		datum := models.DiseaseDatum{Disease: disease, Count: count}
		if total > 0 {
			datum.Percentage = float64(count) / float64(total) * 100
		}
		diseases = append(diseases, datum)
	}
	return diseases, nil
}

// ReportsHandler returns all stored reports, optionally filtered by type
func (rp Report) ReportsHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if reportType := r.URL.Query().Get("reportType"); reportType != "" {
		filter["reportType"] = reportType
	}

	limit, page := paginationParams(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	reports, err := rp.DB.Find(ctx, filter, databases.PaginatedOpts(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get reports", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(reports)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportByIDHandler returns a single report by its object id
func (rp Report) ReportByIDHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("report id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := rp.DB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportDeleteHandler removes a stored report
func (rp Report) ReportDeleteHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("report id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := rp.DB.DeleteOne(ctx, bson.M{"_id": rID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("report not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to delete report", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "deleted"}`))
}

// asInt converts the numeric types the mongo driver may hand back
func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
