package databases

// go generate: mockery --name ChatSessionDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healx-platform/healx-api/models"
)

const chatSessionName = "chatsessions"

// ChatSessionDatabase contains the methods to use with the chat session
// database. Sessions live in mongo so conversations survive process restarts
// and eviction is an explicit query instead of a per-process timer.
type ChatSessionDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.ChatSession, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	AppendMessage(ctx context.Context, sessionID string, message models.ChatMessage, ttl time.Duration) (*models.ChatSession, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type chatSessionDatabase struct {
	db DatabaseHelper
}

// NewChatSessionDatabase initializes a new instance of chat session database with the provided db connection
func NewChatSessionDatabase(db DatabaseHelper) ChatSessionDatabase {
	return &chatSessionDatabase{
		db: db,
	}
}

func (c *chatSessionDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ChatSession, error) {
	session := &models.ChatSession{}
	err := c.db.Collection(chatSessionName).FindOne(ctx, filter, opts...).Decode(&session)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (c *chatSessionDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := c.db.Collection(chatSessionName).InsertOne(ctx, document, opts...)
	return res, err
}

// AppendMessage adds one turn to the session and pushes the expiry forward by
// ttl from now, so active conversations stay alive.
func (c *chatSessionDatabase) AppendMessage(ctx context.Context, sessionID string, message models.ChatMessage, ttl time.Duration) (*models.ChatSession, error) {
	now := time.Now()
	filter := bson.M{"sessionId": sessionID}
	update := bson.M{
		"$push": bson.M{"messages": message},
		"$set": bson.M{
			"expiresAt": primitive.NewDateTimeFromTime(now.Add(ttl)),
			"updatedAt": primitive.NewDateTimeFromTime(now),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	session := &models.ChatSession{}
	err := c.db.Collection(chatSessionName).FindOneAndUpdate(ctx, filter, update, opts).Decode(&session)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (c *chatSessionDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(chatSessionName).DeleteOne(ctx, filter, opts...)
}

// DeleteExpired removes every session whose expiry has passed and returns the
// number evicted.
func (c *chatSessionDatabase) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{"expiresAt": bson.M{"$lt": primitive.NewDateTimeFromTime(now)}}
	return c.db.Collection(chatSessionName).DeleteMany(ctx, filter)
}
