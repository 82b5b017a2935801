package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// MedicalRecord holds the structure for the medicalrecords collection in mongo
type MedicalRecord struct {
	ID             primitive.ObjectID  `json:"_id" bson:"_id"`
	RecordID       string              `json:"recordId" bson:"recordId"`
	Patient        primitive.ObjectID  `json:"patient" bson:"patient"`
	Doctor         primitive.ObjectID  `json:"doctor" bson:"doctor"`
	RecordType     string              `json:"recordType" bson:"recordType"` // prescription, diagnosis, lab_report, imaging, vaccine, other
	Diagnosis      string              `json:"diagnosis,omitempty" bson:"diagnosis,omitempty"`
	Symptoms       []string            `json:"symptoms,omitempty" bson:"symptoms,omitempty"`
	Prescription   []PrescriptionItem  `json:"prescription,omitempty" bson:"prescription,omitempty"`
	Vitals         *RecordVitals       `json:"vitals,omitempty" bson:"vitals,omitempty"`
	LabTests       []LabTest           `json:"labTests,omitempty" bson:"labTests,omitempty"`
	Allergies      []string            `json:"allergies,omitempty" bson:"allergies,omitempty"`
	MedicalHistory []string            `json:"medicalHistory,omitempty" bson:"medicalHistory,omitempty"`
	VisitReason    string              `json:"visitReason,omitempty" bson:"visitReason,omitempty"`
	TreatmentPlan  string              `json:"treatmentPlan,omitempty" bson:"treatmentPlan,omitempty"`
	Notes          string              `json:"notes,omitempty" bson:"notes,omitempty"`
	FollowUpDate   *primitive.DateTime `json:"followUpDate,omitempty" bson:"followUpDate,omitempty"`
	CreatedAt      primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	UpdatedAt      primitive.DateTime  `json:"updatedAt" bson:"updatedAt"`
}

// PrescriptionItem is a single prescribed medicine
type PrescriptionItem struct {
	Medicine  string `json:"medicine" bson:"medicine"`
	Dosage    string `json:"dosage,omitempty" bson:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty" bson:"frequency,omitempty"`
	Duration  string `json:"duration,omitempty" bson:"duration,omitempty"`
	Notes     string `json:"notes,omitempty" bson:"notes,omitempty"`
}

// RecordVitals extends the emergency vitals with anthropometrics
type RecordVitals struct {
	HeartRate       float64 `json:"heartRate,omitempty" bson:"heartRate,omitempty"`
	BloodPressure   string  `json:"bloodPressure,omitempty" bson:"bloodPressure,omitempty"`
	Temperature     float64 `json:"temperature,omitempty" bson:"temperature,omitempty"`
	RespirationRate float64 `json:"respirationRate,omitempty" bson:"respirationRate,omitempty"`
	Weight          float64 `json:"weight,omitempty" bson:"weight,omitempty"`
	Height          float64 `json:"height,omitempty" bson:"height,omitempty"`
	BMI             float64 `json:"bmi,omitempty" bson:"bmi,omitempty"`
	OxygenLevel     float64 `json:"oxygenLevel,omitempty" bson:"oxygenLevel,omitempty"`
}

// LabTest is one lab result line in a medical record
type LabTest struct {
	TestName       string `json:"testName" bson:"testName"`
	Result         string `json:"result,omitempty" bson:"result,omitempty"`
	Unit           string `json:"unit,omitempty" bson:"unit,omitempty"`
	ReferenceRange string `json:"referenceRange,omitempty" bson:"referenceRange,omitempty"`
	Abnormal       bool   `json:"abnormal" bson:"abnormal"`
}
