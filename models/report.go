package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Report holds the structure for the reports collection in mongo
type Report struct {
	ID          primitive.ObjectID  `json:"_id" bson:"_id"`
	ReportID    string              `json:"reportId" bson:"reportId"`
	Title       string              `json:"title" bson:"title"`
	Description string              `json:"description,omitempty" bson:"description,omitempty"`
	ReportType  string              `json:"reportType" bson:"reportType"` // camp_summary, emergency_analysis, disease_outbreak, analytics, financial, health_risk
	Camp        *primitive.ObjectID `json:"camp,omitempty" bson:"camp,omitempty"`
	GeneratedBy primitive.ObjectID  `json:"generatedBy" bson:"generatedBy"`
	Period      *ReportPeriod       `json:"period,omitempty" bson:"period,omitempty"`
	Statistics  *ReportStatistics   `json:"statistics,omitempty" bson:"statistics,omitempty"`
	DiseaseData []DiseaseDatum      `json:"diseaseData,omitempty" bson:"diseaseData,omitempty"`
	CreatedAt   primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}

// ReportPeriod bounds the reporting window
type ReportPeriod struct {
	StartDate primitive.DateTime `json:"startDate" bson:"startDate"`
	EndDate   primitive.DateTime `json:"endDate" bson:"endDate"`
}

// ReportStatistics aggregates outcome counts for the period
type ReportStatistics struct {
	TotalPatients    int     `json:"totalPatients,omitempty" bson:"totalPatients,omitempty"`
	TotalEmergencies int     `json:"totalEmergencies,omitempty" bson:"totalEmergencies,omitempty"`
	AverageSeverity  float64 `json:"averageSeverity,omitempty" bson:"averageSeverity,omitempty"`
	RecoveryRate     float64 `json:"recoveryRate,omitempty" bson:"recoveryRate,omitempty"`
	AdmissionRate    float64 `json:"admissionRate,omitempty" bson:"admissionRate,omitempty"`
}

// DiseaseDatum is one disease count line in an outbreak or analytics report
type DiseaseDatum struct {
	Disease    string  `json:"disease" bson:"disease"`
	Count      int     `json:"count" bson:"count"`
	Percentage float64 `json:"percentage,omitempty" bson:"percentage,omitempty"`
	Trend      string  `json:"trend,omitempty" bson:"trend,omitempty"`
}
