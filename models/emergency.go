package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// EmergencyType categorizes an emergency request
type EmergencyType string

// EmergencyStatus is the lifecycle state of an emergency
type EmergencyStatus string

// Severity is the triage label of an emergency
type Severity string

// Emergency types
const (
	EmergencyTrauma      EmergencyType = "trauma"
	EmergencyCardiac     EmergencyType = "cardiac"
	EmergencyRespiratory EmergencyType = "respiratory"
	EmergencyStroke      EmergencyType = "stroke"
	EmergencyBurns       EmergencyType = "burns"
	EmergencyPoisoning   EmergencyType = "poisoning"
	EmergencyOther       EmergencyType = "other"
)

// Emergency statuses. Completed and cancelled are terminal.
const (
	StatusPending    EmergencyStatus = "pending"
	StatusAccepted   EmergencyStatus = "accepted"
	StatusArrived    EmergencyStatus = "arrived"
	StatusInTransit  EmergencyStatus = "in_transit"
	StatusAtHospital EmergencyStatus = "at_hospital"
	StatusCompleted  EmergencyStatus = "completed"
	StatusCancelled  EmergencyStatus = "cancelled"
)

// Severity labels
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ValidEmergencyType reports whether t is one of the enumerated emergency types
func ValidEmergencyType(t EmergencyType) bool {
	switch t {
	case EmergencyTrauma, EmergencyCardiac, EmergencyRespiratory,
		EmergencyStroke, EmergencyBurns, EmergencyPoisoning, EmergencyOther:
		return true
	}
	return false
}

// ValidSeverity reports whether s is one of the enumerated severity labels
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidAmbulanceStatus reports whether s is one of the enumerated ambulance statuses
func ValidAmbulanceStatus(s AmbulanceStatus) bool {
	switch s {
	case AmbulanceAvailable, AmbulanceOnDuty, AmbulanceInEmergency,
		AmbulanceMaintenance, AmbulanceOffline:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions
func (s EmergencyStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Emergency holds the structure for the emergencies collection in mongo
type Emergency struct {
	ID                primitive.ObjectID  `json:"_id" bson:"_id"`
	EmergencyID       string              `json:"emergencyId" bson:"emergencyId"`
	Caller            primitive.ObjectID  `json:"caller" bson:"caller"`
	EmergencyType     EmergencyType       `json:"emergencyType" bson:"emergencyType"`
	Severity          Severity            `json:"severity" bson:"severity"`
	PredictedSeverity *SeverityPrediction `json:"predictedSeverity,omitempty" bson:"predictedSeverity,omitempty"`
	Location          GeoPoint            `json:"location" bson:"location"`
	Address           string              `json:"address" bson:"address"`
	Description       string              `json:"description" bson:"description"`
	Symptoms          []string            `json:"symptoms" bson:"symptoms"`
	Vitals            *Vitals             `json:"vitals,omitempty" bson:"vitals,omitempty"`
	Patient           *primitive.ObjectID `json:"patient,omitempty" bson:"patient,omitempty"`
	AssignedAmbulance *primitive.ObjectID `json:"assignedAmbulance,omitempty" bson:"assignedAmbulance,omitempty"`
	AssignedDoctor    *primitive.ObjectID `json:"assignedDoctor,omitempty" bson:"assignedDoctor,omitempty"`
	Status            EmergencyStatus     `json:"status" bson:"status"`
	Timeline          []TimelineEntry     `json:"timeline" bson:"timeline"`
	Cost              float64             `json:"cost,omitempty" bson:"cost,omitempty"`
	InsuranceInfo     string              `json:"insuranceInfo,omitempty" bson:"insuranceInfo,omitempty"`
	ArrivedAt         *primitive.DateTime `json:"arrivedAt,omitempty" bson:"arrivedAt,omitempty"`
	CompletedAt       *primitive.DateTime `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	CreatedAt         primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	UpdatedAt         primitive.DateTime  `json:"updatedAt" bson:"updatedAt"`
}

// TimelineEntry is one append-only status transition record
type TimelineEntry struct {
	Status    EmergencyStatus    `json:"status" bson:"status"`
	Timestamp primitive.DateTime `json:"timestamp" bson:"timestamp"`
	Notes     string             `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Vitals is an optional vital-sign snapshot captured with the request
type Vitals struct {
	HeartRate       float64 `json:"heartRate,omitempty" bson:"heartRate,omitempty"`
	BloodPressure   string  `json:"bloodPressure,omitempty" bson:"bloodPressure,omitempty"`
	Temperature     float64 `json:"temperature,omitempty" bson:"temperature,omitempty"`
	RespirationRate float64 `json:"respirationRate,omitempty" bson:"respirationRate,omitempty"`
	OxygenLevel     float64 `json:"oxygenLevel,omitempty" bson:"oxygenLevel,omitempty"`
}

// SeverityPrediction is the raw classifier output stored alongside the
// severity it produced
type SeverityPrediction struct {
	Score      float64 `json:"score" bson:"score"`
	Confidence float64 `json:"confidence" bson:"confidence"`
	Prediction string  `json:"prediction" bson:"prediction"`
}
