package databases

// go generate: mockery --name MedicalRecordDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healx-platform/healx-api/models"
)

const medicalRecordName = "medicalrecords"

// MedicalRecordDatabase contains the methods to use with the medical record database
type MedicalRecordDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.MedicalRecord, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.MedicalRecord, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*models.MedicalRecord, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	Aggregate(context.Context, interface{}, ...*options.AggregateOptions) ([]map[string]interface{}, error)
}

type medicalRecordDatabase struct {
	db DatabaseHelper
}

// NewMedicalRecordDatabase initializes a new instance of medical record database with the provided db connection
func NewMedicalRecordDatabase(db DatabaseHelper) MedicalRecordDatabase {
	return &medicalRecordDatabase{
		db: db,
	}
}

func (m *medicalRecordDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.MedicalRecord, error) {
	record := &models.MedicalRecord{}
	err := m.db.Collection(medicalRecordName).FindOne(ctx, filter, opts...).Decode(&record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (m *medicalRecordDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.MedicalRecord, error) {
	var records []models.MedicalRecord
	cr, err := m.db.Collection(medicalRecordName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (m *medicalRecordDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := m.db.Collection(medicalRecordName).InsertOne(ctx, document, opts...)
	return res, err
}

func (m *medicalRecordDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*models.MedicalRecord, error) {
	_, err := m.db.Collection(medicalRecordName).UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return nil, err
	}
	record := &models.MedicalRecord{}
	err = m.db.Collection(medicalRecordName).FindOne(ctx, filter).Decode(&record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (m *medicalRecordDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return m.db.Collection(medicalRecordName).DeleteOne(ctx, filter, opts...)
}

func (m *medicalRecordDatabase) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) ([]map[string]interface{}, error) {
	var results []map[string]interface{}
	cr, err := m.db.Collection(medicalRecordName).Aggregate(ctx, pipeline, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&results)
	if err != nil {
		return nil, err
	}
	return results, nil
}
