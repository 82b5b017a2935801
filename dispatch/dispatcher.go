package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/healx-platform/healx-api/databases"
	"github.com/healx-platform/healx-api/models"
)

// Outcome reports how a dispatch attempt ended
type Outcome string

// Dispatch outcomes
const (
	OutcomeAssigned    Outcome = "assigned"
	OutcomeNoAmbulance Outcome = "no_ambulance"
	OutcomeDegraded    Outcome = "degraded"
)

const (
	defaultSearchRadiusMeters = 10000
	defaultCandidateLimit     = 10
)

// Dispatcher coordinates emergency intake, severity prediction, and ambulance
// assignment. Assignment is settled by a compare-and-set on the ambulance
// document, so concurrent dispatches racing for the last unit resolve to
// exactly one winner.
type Dispatcher struct {
	EmergencyDB databases.EmergencyDatabase
	AmbulanceDB databases.AmbulanceDatabase
	Classifier  SeverityClassifier
	Broadcaster Broadcaster
	Notifier    *Notifier

	SearchRadiusMeters float64
	CandidateLimit     int64
}

// NewDispatcher wires a dispatcher with default search bounds
func NewDispatcher(edb databases.EmergencyDatabase, adb databases.AmbulanceDatabase, classifier SeverityClassifier, broadcaster Broadcaster, notifier *Notifier) *Dispatcher {
	return &Dispatcher{
		EmergencyDB:        edb,
		AmbulanceDB:        adb,
		Classifier:         classifier,
		Broadcaster:        broadcaster,
		Notifier:           notifier,
		SearchRadiusMeters: defaultSearchRadiusMeters,
		CandidateLimit:     defaultCandidateLimit,
	}
}

// EmergencyRequest is the validated intake payload for a new emergency
type EmergencyRequest struct {
	Caller        primitive.ObjectID
	EmergencyType models.EmergencyType
	Severity      models.Severity
	Location      models.GeoPoint
	Address       string
	Description   string
	Symptoms      []string
	Vitals        *models.Vitals
	InsuranceInfo string
}

func (r *EmergencyRequest) validate() error {
	if !models.ValidEmergencyType(r.EmergencyType) {
		return fmt.Errorf("%w: unknown emergency type %q", ErrInvalidRequest, r.EmergencyType)
	}
	if !r.Location.Valid() {
		return fmt.Errorf("%w: location must be a GeoJSON point with longitude and latitude", ErrInvalidRequest)
	}
	if r.Caller.IsZero() {
		return fmt.Errorf("%w: caller is required", ErrInvalidRequest)
	}
	return nil
}

// CreateEmergency records a new emergency and tries to assign the nearest
// available ambulance. The emergency is persisted before assignment, so a
// failed search never loses the request; it is reported as a degraded
// dispatch instead.
func (d *Dispatcher) CreateEmergency(ctx context.Context, req EmergencyRequest) (*models.Emergency, *models.Ambulance, Outcome, error) {
	if err := req.validate(); err != nil {
		return nil, nil, "", err
	}

	severity := req.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}

	// Severity prediction is advisory. A classifier outage keeps the
	// caller-supplied or default severity.
	var predicted *models.SeverityPrediction
	if d.Classifier != nil && len(req.Symptoms) > 0 {
		p, err := d.Classifier.Classify(ctx, req.Symptoms, req.Vitals)
		if err != nil {
			zap.S().Warnw("severity prediction unavailable", "error", err)
		} else {
			predicted = p
			if label := models.Severity(p.Prediction); models.ValidSeverity(label) {
				severity = label
			} else {
				zap.S().Warnw("classifier returned unknown severity label",
					"prediction", p.Prediction)
			}
		}
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	emergency := &models.Emergency{
		ID:                primitive.NewObjectID(),
		EmergencyID:       "EMG-" + uuid.New().String(),
		Caller:            req.Caller,
		EmergencyType:     req.EmergencyType,
		Severity:          severity,
		PredictedSeverity: predicted,
		Location:          req.Location,
		Address:           req.Address,
		Description:       req.Description,
		Symptoms:          req.Symptoms,
		Vitals:            req.Vitals,
		Status:            models.StatusPending,
		Timeline: []models.TimelineEntry{
			{Status: models.StatusPending, Timestamp: now, Notes: "Emergency reported"},
		},
		InsuranceInfo: req.InsuranceInfo,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := d.EmergencyDB.InsertOne(ctx, emergency); err != nil {
		return nil, nil, "", err
	}

	ambulance, outcome, err := d.assignNearest(ctx, emergency)
	switch outcome {
	case OutcomeAssigned:
		emergency.AssignedAmbulance = &ambulance.ID
		d.Broadcaster.Emit("emergency:created", map[string]interface{}{
			"emergency": emergency,
			"ambulance": ambulance,
		})
		if d.Notifier != nil {
			d.Notifier.NotifyDispatch(ctx, emergency, ambulance)
		}
	case OutcomeNoAmbulance:
		d.Broadcaster.Emit("emergency:no_ambulance", map[string]interface{}{
			"emergency": emergency,
		})
		if d.Notifier != nil {
			d.Notifier.NotifyNoAmbulance(ctx, emergency)
		}
	case OutcomeDegraded:
		zap.S().Errorw("ambulance search unavailable, emergency left pending",
			"emergencyId", emergency.EmergencyID, "error", err)
	}

	return emergency, ambulance, outcome, nil
}

// assignNearest walks the candidate list closest-first, attempting an atomic
// reservation on each. A candidate lost to a concurrent dispatch is skipped,
// not retried.
func (d *Dispatcher) assignNearest(ctx context.Context, emergency *models.Emergency) (*models.Ambulance, Outcome, error) {
	candidates, err := d.AmbulanceDB.FindNearest(ctx, emergency.Location, d.SearchRadiusMeters, d.CandidateLimit)
	if err != nil {
		return nil, OutcomeDegraded, fmt.Errorf("%w: %v", ErrDispatchDegraded, err)
	}

	for _, candidate := range candidates {
		ambulance, err := d.AmbulanceDB.Reserve(ctx, candidate.ID, emergency.ID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue
			}
			return nil, OutcomeDegraded, fmt.Errorf("%w: %v", ErrDispatchDegraded, err)
		}

		// Assignment only links the unit. The emergency stays pending until
		// the responder accepts it through the status lifecycle.
		now := primitive.NewDateTimeFromTime(time.Now())
		_, err = d.EmergencyDB.UpdateOne(ctx, bson.M{"_id": emergency.ID}, bson.M{
			"$set": bson.M{
				"assignedAmbulance": ambulance.ID,
				"updatedAt":         now,
			},
		})
		if err != nil {
			// The unit is reserved but the emergency update failed. Release
			// the reservation so the unit is not stranded.
			if _, relErr := d.AmbulanceDB.Release(ctx, ambulance.ID, emergency.ID); relErr != nil {
				zap.S().Errorw("failed to release ambulance after assignment failure",
					"ambulanceId", ambulance.AmbulanceID, "error", relErr)
			}
			return nil, OutcomeDegraded, fmt.Errorf("%w: %v", ErrDispatchDegraded, err)
		}

		return ambulance, OutcomeAssigned, nil
	}

	return nil, OutcomeNoAmbulance, nil
}

// Redispatch retries assignment for emergencies still pending. The scheduler
// runs this after ambulances free up.
func (d *Dispatcher) Redispatch(ctx context.Context) (int, error) {
	pending, err := d.EmergencyDB.Find(ctx, bson.M{
		"status":            models.StatusPending,
		"assignedAmbulance": nil,
	})
	if err != nil {
		return 0, err
	}

	assigned := 0
	for i := range pending {
		emergency := &pending[i]
		ambulance, outcome, err := d.assignNearest(ctx, emergency)
		if err != nil {
			zap.S().Warnw("redispatch attempt failed", "emergencyId", emergency.EmergencyID, "error", err)
			continue
		}
		if outcome != OutcomeAssigned {
			continue
		}
		assigned++
		emergency.AssignedAmbulance = &ambulance.ID
		d.Broadcaster.Emit("emergency:created", map[string]interface{}{
			"emergency": emergency,
			"ambulance": ambulance,
		})
		if d.Notifier != nil {
			d.Notifier.NotifyDispatch(ctx, emergency, ambulance)
		}
	}
	return assigned, nil
}

// UpdateStatus moves an emergency through its lifecycle. Illegal transitions
// are rejected against the transition table, timeline entries are append
// only, and reaching a terminal status releases the assigned ambulance.
func (d *Dispatcher) UpdateStatus(ctx context.Context, emergencyID primitive.ObjectID, to models.EmergencyStatus, notes string) (*models.Emergency, error) {
	emergency, err := d.EmergencyDB.FindOne(ctx, bson.M{"_id": emergencyID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEmergencyNotFound
		}
		return nil, err
	}

	if err := ValidateTransition(emergency.Status, to); err != nil {
		return nil, err
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	set := bson.M{
		"status":    to,
		"updatedAt": now,
	}
	switch to {
	case models.StatusArrived:
		set["arrivedAt"] = now
	case models.StatusCompleted:
		set["completedAt"] = now
	}

	entry := models.TimelineEntry{Status: to, Timestamp: now, Notes: notes}
	updated, err := d.EmergencyDB.UpdateOne(ctx, bson.M{"_id": emergencyID}, bson.M{
		"$set":  set,
		"$push": bson.M{"timeline": entry},
	})
	if err != nil {
		return nil, err
	}

	if to.Terminal() && updated.AssignedAmbulance != nil {
		ambulance, err := d.AmbulanceDB.Release(ctx, *updated.AssignedAmbulance, emergencyID)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			zap.S().Errorw("failed to release ambulance on terminal status",
				"emergencyId", updated.EmergencyID, "error", err)
		}
		if ambulance != nil {
			d.Broadcaster.Emit("ambulance:status_changed", map[string]interface{}{
				"ambulanceId": ambulance.AmbulanceID,
				"status":      ambulance.Status,
			})
		}
	}

	payload := map[string]interface{}{"emergency": updated}
	d.Broadcaster.EmitToRoom(fmt.Sprintf("emergency:%s", updated.ID.Hex()), "emergency:status_changed", payload)
	d.Broadcaster.Emit("emergency:updated", payload)

	return updated, nil
}
