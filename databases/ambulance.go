package databases

// go generate: mockery --name AmbulanceDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healx-platform/healx-api/models"
)

const ambulanceName = "ambulances"

// AmbulanceDatabase contains the methods to use with the ambulance database.
//
// Reserve and Release are compare-and-set operations keyed on the current
// document state, so two dispatchers racing for the same unit resolve to a
// single winner at the database rather than in process memory.
type AmbulanceDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Ambulance, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Ambulance, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*models.Ambulance, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	FindNearest(ctx context.Context, location models.GeoPoint, maxDistanceMeters float64, limit int64) ([]models.Ambulance, error)
	Reserve(ctx context.Context, ambulanceID, emergencyID primitive.ObjectID) (*models.Ambulance, error)
	Release(ctx context.Context, ambulanceID, emergencyID primitive.ObjectID) (*models.Ambulance, error)
	PushLocation(ctx context.Context, ambulanceID primitive.ObjectID, coordinates []float64, at time.Time) (*models.Ambulance, error)
	SetStatus(ctx context.Context, ambulanceID primitive.ObjectID, status models.AmbulanceStatus) (*models.Ambulance, error)
}

type ambulanceDatabase struct {
	db DatabaseHelper
}

// NewAmbulanceDatabase initializes a new instance of ambulance database with the provided db connection
func NewAmbulanceDatabase(db DatabaseHelper) AmbulanceDatabase {
	return &ambulanceDatabase{
		db: db,
	}
}

func (a *ambulanceDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Ambulance, error) {
	ambulance := &models.Ambulance{}
	err := a.db.Collection(ambulanceName).FindOne(ctx, filter, opts...).Decode(&ambulance)
	if err != nil {
		return nil, err
	}
	return ambulance, nil
}

func (a *ambulanceDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Ambulance, error) {
	var ambulances []models.Ambulance
	cr, err := a.db.Collection(ambulanceName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&ambulances)
	if err != nil {
		return nil, err
	}
	return ambulances, nil
}

func (a *ambulanceDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := a.db.Collection(ambulanceName).InsertOne(ctx, document, opts...)
	return res, err
}

func (a *ambulanceDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*models.Ambulance, error) {
	_, err := a.db.Collection(ambulanceName).UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return nil, err
	}
	ambulance := &models.Ambulance{}
	err = a.db.Collection(ambulanceName).FindOne(ctx, filter).Decode(&ambulance)
	if err != nil {
		return nil, err
	}
	return ambulance, nil
}

func (a *ambulanceDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return a.db.Collection(ambulanceName).DeleteOne(ctx, filter, opts...)
}

func (a *ambulanceDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return a.db.Collection(ambulanceName).CountDocuments(ctx, filter, opts...)
}

// FindNearest returns available ambulances ordered by distance from location,
// closest first. Ties at the same distance break on ambulanceId ascending so
// candidate order is stable across concurrent dispatchers. Requires a 2dsphere
// index on the location field.
func (a *ambulanceDatabase) FindNearest(ctx context.Context, location models.GeoPoint, maxDistanceMeters float64, limit int64) ([]models.Ambulance, error) {
	geoNear := bson.M{
		"near":          location,
		"distanceField": "dispatchDistance",
		"spherical":     true,
		"query":         bson.M{"status": models.AmbulanceAvailable},
	}
	if maxDistanceMeters > 0 {
		geoNear["maxDistance"] = maxDistanceMeters
	}
	pipeline := []bson.M{
		{"$geoNear": geoNear},
		{"$sort": bson.D{{Key: "dispatchDistance", Value: 1}, {Key: "ambulanceId", Value: 1}}},
		{"$limit": limit},
	}

	var ambulances []models.Ambulance
	cr, err := a.db.Collection(ambulanceName).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&ambulances)
	if err != nil {
		return nil, err
	}
	return ambulances, nil
}

// Reserve atomically claims an available ambulance for an emergency. The
// filter requires status to still be "available", so only one of any number
// of concurrent callers succeeds. Losers get mongo.ErrNoDocuments.
func (a *ambulanceDatabase) Reserve(ctx context.Context, ambulanceID, emergencyID primitive.ObjectID) (*models.Ambulance, error) {
	filter := bson.M{
		"_id":    ambulanceID,
		"status": models.AmbulanceAvailable,
	}
	update := bson.M{
		"$set": bson.M{
			"status":            models.AmbulanceOnDuty,
			"assignedEmergency": emergencyID,
			"updatedAt":         primitive.NewDateTimeFromTime(time.Now()),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	ambulance := &models.Ambulance{}
	err := a.db.Collection(ambulanceName).FindOneAndUpdate(ctx, filter, update, opts).Decode(&ambulance)
	if err != nil {
		return nil, err
	}
	return ambulance, nil
}

// Release returns an ambulance to the available pool. The filter is keyed on
// the emergency that reserved it, so a release for a stale assignment is a
// no-op instead of clobbering a newer one.
func (a *ambulanceDatabase) Release(ctx context.Context, ambulanceID, emergencyID primitive.ObjectID) (*models.Ambulance, error) {
	filter := bson.M{
		"_id":               ambulanceID,
		"assignedEmergency": emergencyID,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    models.AmbulanceAvailable,
			"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		},
		"$unset": bson.M{
			"assignedEmergency": "",
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	ambulance := &models.Ambulance{}
	err := a.db.Collection(ambulanceName).FindOneAndUpdate(ctx, filter, update, opts).Decode(&ambulance)
	if err != nil {
		return nil, err
	}
	return ambulance, nil
}

// PushLocation sets the current position and appends it to the bounded
// location history. $slice keeps only the newest samples.
func (a *ambulanceDatabase) PushLocation(ctx context.Context, ambulanceID primitive.ObjectID, coordinates []float64, at time.Time) (*models.Ambulance, error) {
	sample := models.LocationSample{
		Coordinates: coordinates,
		Timestamp:   primitive.NewDateTimeFromTime(at),
	}
	filter := bson.M{"_id": ambulanceID}
	update := bson.M{
		"$set": bson.M{
			"location":  models.NewGeoPoint(coordinates[0], coordinates[1]),
			"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		},
		"$push": bson.M{
			"locationHistory": bson.M{
				"$each":  []models.LocationSample{sample},
				"$slice": -models.LocationHistoryLimit,
			},
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	ambulance := &models.Ambulance{}
	err := a.db.Collection(ambulanceName).FindOneAndUpdate(ctx, filter, update, opts).Decode(&ambulance)
	if err != nil {
		return nil, err
	}
	return ambulance, nil
}

// SetStatus moves an ambulance to the given status. Going back to available
// is only allowed once no emergency holds the unit, which keeps drivers from
// abandoning an active assignment without a release.
func (a *ambulanceDatabase) SetStatus(ctx context.Context, ambulanceID primitive.ObjectID, status models.AmbulanceStatus) (*models.Ambulance, error) {
	filter := bson.M{"_id": ambulanceID}
	if status == models.AmbulanceAvailable {
		filter["assignedEmergency"] = nil
	}
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	ambulance := &models.Ambulance{}
	err := a.db.Collection(ambulanceName).FindOneAndUpdate(ctx, filter, update, opts).Decode(&ambulance)
	if err != nil {
		return nil, err
	}
	return ambulance, nil
}
