package databases

// go generate: mockery --name NotificationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healx-platform/healx-api/models"
)

const notificationName = "notifications"

// NotificationDatabase contains the methods to use with the notification database
type NotificationDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Notification, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Notification, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*models.Notification, error)
	UpdateMany(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (int64, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) NotificationDatabase {
	return &notificationDatabase{
		db: db,
	}
}

func (n *notificationDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Notification, error) {
	notification := &models.Notification{}
	err := n.db.Collection(notificationName).FindOne(ctx, filter, opts...).Decode(&notification)
	if err != nil {
		return nil, err
	}
	return notification, nil
}

func (n *notificationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Notification, error) {
	var notifications []models.Notification
	cr, err := n.db.Collection(notificationName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&notifications)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (n *notificationDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := n.db.Collection(notificationName).InsertOne(ctx, document, opts...)
	return res, err
}

func (n *notificationDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*models.Notification, error) {
	_, err := n.db.Collection(notificationName).UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return nil, err
	}
	notification := &models.Notification{}
	err = n.db.Collection(notificationName).FindOne(ctx, filter).Decode(&notification)
	if err != nil {
		return nil, err
	}
	return notification, nil
}

func (n *notificationDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	res, err := n.db.Collection(notificationName).UpdateMany(ctx, filter, update, opts...)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (n *notificationDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return n.db.Collection(notificationName).DeleteOne(ctx, filter, opts...)
}

func (n *notificationDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return n.db.Collection(notificationName).CountDocuments(ctx, filter, opts...)
}
