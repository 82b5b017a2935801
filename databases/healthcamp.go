package databases

// go generate: mockery --name HealthCampDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healx-platform/healx-api/models"
)

const healthCampName = "healthcamps"

// HealthCampDatabase contains the methods to use with the health camp database
type HealthCampDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.HealthCamp, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.HealthCamp, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*models.HealthCamp, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type healthCampDatabase struct {
	db DatabaseHelper
}

// NewHealthCampDatabase initializes a new instance of health camp database with the provided db connection
func NewHealthCampDatabase(db DatabaseHelper) HealthCampDatabase {
	return &healthCampDatabase{
		db: db,
	}
}

func (h *healthCampDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.HealthCamp, error) {
	camp := &models.HealthCamp{}
	err := h.db.Collection(healthCampName).FindOne(ctx, filter, opts...).Decode(&camp)
	if err != nil {
		return nil, err
	}
	return camp, nil
}

func (h *healthCampDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.HealthCamp, error) {
	var camps []models.HealthCamp
	cr, err := h.db.Collection(healthCampName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&camps)
	if err != nil {
		return nil, err
	}
	return camps, nil
}

func (h *healthCampDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := h.db.Collection(healthCampName).InsertOne(ctx, document, opts...)
	return res, err
}

func (h *healthCampDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*models.HealthCamp, error) {
	_, err := h.db.Collection(healthCampName).UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return nil, err
	}
	camp := &models.HealthCamp{}
	err = h.db.Collection(healthCampName).FindOne(ctx, filter).Decode(&camp)
	if err != nil {
		return nil, err
	}
	return camp, nil
}

func (h *healthCampDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return h.db.Collection(healthCampName).DeleteOne(ctx, filter, opts...)
}

func (h *healthCampDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return h.db.Collection(healthCampName).CountDocuments(ctx, filter, opts...)
}
