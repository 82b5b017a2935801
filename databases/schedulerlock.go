package databases

// go generate: mockery --name SchedulerLockDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const schedulerLockName = "schedulerlocks"

// SchedulerLockDatabase provides a distributed lock over mongo so periodic
// jobs run on exactly one instance when the API is scaled out
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, jobName, instanceID string) error
}

type schedulerLockDatabase struct {
	db DatabaseHelper
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db: db,
	}
}

// TryAcquireLock upserts the lock document for jobName if it is unheld or its
// previous holder's TTL has lapsed. A duplicate key error means another
// instance holds a live lock, which is reported as not acquired rather than
// as a failure.
func (s *schedulerLockDatabase) TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error) {
	now := time.Now()
	filter := bson.M{
		"_id":       jobName,
		"expiresAt": bson.M{"$lt": primitive.NewDateTimeFromTime(now)},
	}
	update := bson.M{
		"$set": bson.M{
			"holder":     instanceID,
			"acquiredAt": primitive.NewDateTimeFromTime(now),
			"expiresAt":  primitive.NewDateTimeFromTime(now.Add(ttl)),
		},
	}
	opts := options.Update().SetUpsert(true)

	res, err := s.db.Collection(schedulerLockName).UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return res.ModifiedCount > 0 || res.UpsertedCount > 0, nil
}

// ReleaseLock expires the lock immediately. The filter is keyed on the holder
// so an instance cannot release a lock another instance has since acquired.
func (s *schedulerLockDatabase) ReleaseLock(ctx context.Context, jobName, instanceID string) error {
	filter := bson.M{
		"_id":    jobName,
		"holder": instanceID,
	}
	update := bson.M{
		"$set": bson.M{
			"expiresAt": primitive.NewDateTimeFromTime(time.Now()),
		},
	}
	_, err := s.db.Collection(schedulerLockName).UpdateOne(ctx, filter, update)
	return err
}
