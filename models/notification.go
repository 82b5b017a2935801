package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Notification holds the structure for the notifications collection in mongo
type Notification struct {
	ID             primitive.ObjectID  `json:"_id" bson:"_id"`
	NotificationID string              `json:"notificationId" bson:"notificationId"`
	Recipient      primitive.ObjectID  `json:"recipient" bson:"recipient"`
	Sender         *primitive.ObjectID `json:"sender,omitempty" bson:"sender,omitempty"`
	Type           string              `json:"type" bson:"type"` // emergency_alert, camp_update, appointment, message, system, reminder, outbreak_alert
	Title          string              `json:"title" bson:"title"`
	Message        string              `json:"message" bson:"message"`
	Priority       string              `json:"priority" bson:"priority"` // low, medium, high, critical
	RelatedData    *RelatedData        `json:"relatedData,omitempty" bson:"relatedData,omitempty"`
	Read           bool                `json:"read" bson:"read"`
	ReadAt         *primitive.DateTime `json:"readAt,omitempty" bson:"readAt,omitempty"`
	CreatedAt      primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}

// RelatedData links a notification to the entities it concerns
type RelatedData struct {
	Emergency *primitive.ObjectID `json:"emergency,omitempty" bson:"emergency,omitempty"`
	Camp      *primitive.ObjectID `json:"camp,omitempty" bson:"camp,omitempty"`
	Ambulance *primitive.ObjectID `json:"ambulance,omitempty" bson:"ambulance,omitempty"`
}
