package databases

// go generate: mockery --name EmergencyDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healx-platform/healx-api/models"
)

const emergencyName = "emergencies"

// EmergencyDatabase contains the methods to use with the emergency database
type EmergencyDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Emergency, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Emergency, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*models.Emergency, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	Aggregate(context.Context, interface{}, ...*options.AggregateOptions) ([]map[string]interface{}, error)
}

type emergencyDatabase struct {
	db DatabaseHelper
}

// NewEmergencyDatabase initializes a new instance of emergency database with the provided db connection
func NewEmergencyDatabase(db DatabaseHelper) EmergencyDatabase {
	return &emergencyDatabase{
		db: db,
	}
}

func (e *emergencyDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Emergency, error) {
	emergency := &models.Emergency{}
	err := e.db.Collection(emergencyName).FindOne(ctx, filter, opts...).Decode(&emergency)
	if err != nil {
		return nil, err
	}
	return emergency, nil
}

func (e *emergencyDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Emergency, error) {
	var emergencies []models.Emergency
	cr, err := e.db.Collection(emergencyName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&emergencies)
	if err != nil {
		return nil, err
	}
	return emergencies, nil
}

func (e *emergencyDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := e.db.Collection(emergencyName).InsertOne(ctx, document, opts...)
	return res, err
}

func (e *emergencyDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*models.Emergency, error) {
	_, err := e.db.Collection(emergencyName).UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return nil, err
	}
	emergency := &models.Emergency{}
	err = e.db.Collection(emergencyName).FindOne(ctx, filter).Decode(&emergency)
	if err != nil {
		return nil, err
	}
	return emergency, nil
}

func (e *emergencyDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return e.db.Collection(emergencyName).DeleteOne(ctx, filter, opts...)
}

func (e *emergencyDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return e.db.Collection(emergencyName).CountDocuments(ctx, filter, opts...)
}

func (e *emergencyDatabase) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) ([]map[string]interface{}, error) {
	var results []map[string]interface{}
	cr, err := e.db.Collection(emergencyName).Aggregate(ctx, pipeline, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&results)
	if err != nil {
		return nil, err
	}
	return results, nil
}
