package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// AmbulanceStatus is the duty state of an ambulance
type AmbulanceStatus string

// Ambulance statuses
const (
	AmbulanceAvailable   AmbulanceStatus = "available"
	AmbulanceOnDuty      AmbulanceStatus = "on_duty"
	AmbulanceInEmergency AmbulanceStatus = "in_emergency"
	AmbulanceMaintenance AmbulanceStatus = "maintenance"
	AmbulanceOffline     AmbulanceStatus = "offline"
)

// LocationHistoryLimit caps the retained location history per ambulance.
// Older points roll off on each location update.
const LocationHistoryLimit = 100

// Ambulance holds the structure for the ambulances collection in mongo
type Ambulance struct {
	ID                  primitive.ObjectID  `json:"_id" bson:"_id"`
	AmbulanceID         string              `json:"ambulanceId" bson:"ambulanceId"`
	RegistrationNumber  string              `json:"registrationNumber" bson:"registrationNumber"`
	Driver              primitive.ObjectID  `json:"driver" bson:"driver"`
	Assistant           *primitive.ObjectID `json:"assistant,omitempty" bson:"assistant,omitempty"`
	Location            GeoPoint            `json:"location" bson:"location"`
	Address             string              `json:"address,omitempty" bson:"address,omitempty"`
	BaseStation         string              `json:"baseStation" bson:"baseStation"`
	Status              AmbulanceStatus     `json:"status" bson:"status"`
	Equipment           []string            `json:"equipment,omitempty" bson:"equipment,omitempty"`
	Capacity            int                 `json:"capacity" bson:"capacity"`
	CurrentPatients     int                 `json:"currentPatients" bson:"currentPatients"`
	AssignedEmergency   *primitive.ObjectID `json:"assignedEmergency,omitempty" bson:"assignedEmergency,omitempty"`
	Model               string              `json:"model,omitempty" bson:"model,omitempty"`
	Year                int                 `json:"year,omitempty" bson:"year,omitempty"`
	Features            []string            `json:"features,omitempty" bson:"features,omitempty"`
	FuelLevel           float64             `json:"fuelLevel" bson:"fuelLevel"`
	LastMaintenanceDate *primitive.DateTime `json:"lastMaintenanceDate,omitempty" bson:"lastMaintenanceDate,omitempty"`
	LocationHistory     []LocationSample    `json:"locationHistory" bson:"locationHistory"`
	CreatedAt           primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	UpdatedAt           primitive.DateTime  `json:"updatedAt" bson:"updatedAt"`
}

// LocationSample is one point in an ambulance's bounded location history
type LocationSample struct {
	Coordinates []float64          `json:"coordinates" bson:"coordinates"`
	Timestamp   primitive.DateTime `json:"timestamp" bson:"timestamp"`
}
