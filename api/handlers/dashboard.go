package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healx-platform/healx-api/api"
	"github.com/healx-platform/healx-api/config"
	"github.com/healx-platform/healx-api/databases"
	"github.com/healx-platform/healx-api/models"
)

// Dashboard exported for testing purposes
type Dashboard struct {
	EmergencyDB databases.EmergencyDatabase
	AmbulanceDB databases.AmbulanceDatabase
	CampDB      databases.HealthCampDatabase
	UserDB      databases.UserDatabase
}

type dashboardSummary struct {
	EmergenciesByStatus map[string]int `json:"emergenciesByStatus"`
	AvgResponseSeconds  float64        `json:"avgResponseSeconds"`
	AmbulancesAvailable int64          `json:"ambulancesAvailable"`
	AmbulancesOnDuty    int64          `json:"ambulancesOnDuty"`
	AmbulancesTotal     int64          `json:"ambulancesTotal"`
	ActiveCamps         int64          `json:"activeCamps"`
	RegisteredUsers     int64          `json:"registeredUsers"`
	EmergenciesLast24h  int64          `json:"emergenciesLast24h"`
}

// SummaryHandler returns the live operations overview: emergency counts by
// status, fleet availability, camp and user totals, and the average time from
// request to ambulance arrival over the last 24 hours.
func (d Dashboard) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	summary := dashboardSummary{EmergenciesByStatus: map[string]int{}}

	statusRows, err := d.EmergencyDB.Aggregate(ctx, []bson.M{
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	})
	if err != nil {
		config.ErrorStatus("failed to aggregate emergency statuses", http.StatusInternalServerError, w, err)
		return
	}
	for _, row := range statusRows {
		status, _ := row["_id"].(string)
		summary.EmergenciesByStatus[status] = asInt(row["count"])
	}

	since := primitive.NewDateTimeFromTime(time.Now().Add(-24 * time.Hour))

	// response time is measured from creation to the ambulance arriving on
	// scene, over arrivals in the last day
	responseRows, err := d.EmergencyDB.Aggregate(ctx, []bson.M{
		{"$match": bson.M{
			"arrivedAt": bson.M{"$ne": nil},
			"createdAt": bson.M{"$gte": since},
		}},
		{"$project": bson.M{
			"responseMillis": bson.M{"$subtract": bson.A{"$arrivedAt", "$createdAt"}},
		}},
		{"$group": bson.M{
			"_id":       nil,
			"avgMillis": bson.M{"$avg": "$responseMillis"},
		}},
	})
	if err != nil {
		config.ErrorStatus("failed to aggregate response times", http.StatusInternalServerError, w, err)
		return
	}
	if len(responseRows) > 0 {
		summary.AvgResponseSeconds = asFloat(responseRows[0]["avgMillis"]) / 1000
	}

	if summary.AmbulancesAvailable, err = d.AmbulanceDB.CountDocuments(ctx, bson.M{"status": models.AmbulanceAvailable}); err != nil {
		config.ErrorStatus("failed to count available ambulances", http.StatusInternalServerError, w, err)
		return
	}
	if summary.AmbulancesOnDuty, err = d.AmbulanceDB.CountDocuments(ctx, bson.M{"status": models.AmbulanceOnDuty}); err != nil {
		config.ErrorStatus("failed to count on-duty ambulances", http.StatusInternalServerError, w, err)
		return
	}
	if summary.AmbulancesTotal, err = d.AmbulanceDB.CountDocuments(ctx, bson.M{}); err != nil {
		config.ErrorStatus("failed to count ambulances", http.StatusInternalServerError, w, err)
		return
	}
	if summary.ActiveCamps, err = d.CampDB.CountDocuments(ctx, bson.M{"status": bson.M{"$in": []string{"planned", "ongoing"}}}); err != nil {
		config.ErrorStatus("failed to count active camps", http.StatusInternalServerError, w, err)
		return
	}
	if summary.RegisteredUsers, err = d.UserDB.CountDocuments(ctx, bson.M{}); err != nil {
		config.ErrorStatus("failed to count users", http.StatusInternalServerError, w, err)
		return
	}
	if summary.EmergenciesLast24h, err = d.EmergencyDB.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}}); err != nil {
		config.ErrorStatus("failed to count recent emergencies", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(summary)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
