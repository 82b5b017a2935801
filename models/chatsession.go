package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ChatSession holds the structure for the chatsessions collection in mongo.
// Conversation history is persisted here rather than in process memory so
// sessions survive restarts and can be expired explicitly.
type ChatSession struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	SessionID string             `json:"sessionId" bson:"sessionId"`
	Patient   primitive.ObjectID `json:"patient" bson:"patient"`
	Messages  []ChatMessage      `json:"messages" bson:"messages"`
	ExpiresAt primitive.DateTime `json:"expiresAt" bson:"expiresAt"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// ChatMessage is a single turn in a chat session
type ChatMessage struct {
	Role      string             `json:"role" bson:"role"` // user, assistant
	Content   string             `json:"content" bson:"content"`
	Timestamp primitive.DateTime `json:"timestamp" bson:"timestamp"`
}
