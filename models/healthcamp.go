package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// HealthCamp holds the structure for the healthcamps collection in mongo
type HealthCamp struct {
	ID              primitive.ObjectID   `json:"_id" bson:"_id"`
	Name            string               `json:"name" bson:"name"`
	Description     string               `json:"description,omitempty" bson:"description,omitempty"`
	Type            string               `json:"type" bson:"type"` // general, vaccination, dental, eye_care, maternal, pediatric, cardiac
	StartDate       primitive.DateTime   `json:"startDate" bson:"startDate"`
	EndDate         primitive.DateTime   `json:"endDate" bson:"endDate"`
	Location        GeoPoint             `json:"location" bson:"location"`
	Address         *Address             `json:"address,omitempty" bson:"address,omitempty"`
	Organizer       primitive.ObjectID   `json:"organizer" bson:"organizer"`
	Doctors         []primitive.ObjectID `json:"doctors,omitempty" bson:"doctors,omitempty"`
	Volunteers      []primitive.ObjectID `json:"volunteers,omitempty" bson:"volunteers,omitempty"`
	Patients        []primitive.ObjectID `json:"patients,omitempty" bson:"patients,omitempty"`
	Services        []string             `json:"services,omitempty" bson:"services,omitempty"`
	Capacity        int                  `json:"capacity,omitempty" bson:"capacity,omitempty"`
	RegisteredCount int                  `json:"registeredCount" bson:"registeredCount"`
	Budget          float64              `json:"budget,omitempty" bson:"budget,omitempty"`
	Status          string               `json:"status" bson:"status"` // planned, ongoing, completed, cancelled
	CreatedAt       primitive.DateTime   `json:"createdAt" bson:"createdAt"`
	UpdatedAt       primitive.DateTime   `json:"updatedAt" bson:"updatedAt"`
}
