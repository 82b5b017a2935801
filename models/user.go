package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role is a user's platform role
type Role string

// User roles
const (
	RoleAdmin           Role = "admin"
	RoleDoctor          Role = "doctor"
	RolePatient         Role = "patient"
	RoleVolunteer       Role = "volunteer"
	RoleAmbulanceDriver Role = "ambulance_driver"
)

// User holds the structure for the users collection in mongo
type User struct {
	ID                primitive.ObjectID `json:"_id" bson:"_id"`
	FirstName         string             `json:"firstName" bson:"firstName"`
	LastName          string             `json:"lastName" bson:"lastName"`
	Email             string             `json:"email" bson:"email"`
	Password          string             `json:"-" bson:"password"`
	Phone             string             `json:"phone" bson:"phone"`
	Role              Role               `json:"role" bson:"role"`
	Address           *Address           `json:"address,omitempty" bson:"address,omitempty"`
	Location          *GeoPoint          `json:"location,omitempty" bson:"location,omitempty"`
	Avatar            string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Verified          bool               `json:"verified" bson:"verified"`
	Active            bool               `json:"active" bson:"active"`
	MedicalLicense    *MedicalLicense    `json:"medicalLicense,omitempty" bson:"medicalLicense,omitempty"`
	VolunteerInfo     *VolunteerInfo     `json:"volunteerInfo,omitempty" bson:"volunteerInfo,omitempty"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts,omitempty" bson:"emergencyContacts,omitempty"`
	CreatedAt         primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt         primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// Address is a structured postal address
type Address struct {
	Street  string `json:"street,omitempty" bson:"street,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" bson:"zipCode,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

// MedicalLicense holds clinician credential details
type MedicalLicense struct {
	Number         string              `json:"number,omitempty" bson:"number,omitempty"`
	Specialization string              `json:"specialization,omitempty" bson:"specialization,omitempty"`
	IssuedAt       *primitive.DateTime `json:"issuedAt,omitempty" bson:"issuedAt,omitempty"`
	ExpiresAt      *primitive.DateTime `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
}

// VolunteerInfo holds volunteer qualification details
type VolunteerInfo struct {
	YearsOfExperience int      `json:"yearsOfExperience,omitempty" bson:"yearsOfExperience,omitempty"`
	Certifications    []string `json:"certifications,omitempty" bson:"certifications,omitempty"`
	Availability      bool     `json:"availability" bson:"availability"`
}

// EmergencyContact is a person to reach when the user is in an emergency
type EmergencyContact struct {
	Name         string `json:"name" bson:"name"`
	Relationship string `json:"relationship,omitempty" bson:"relationship,omitempty"`
	Phone        string `json:"phone" bson:"phone"`
}
