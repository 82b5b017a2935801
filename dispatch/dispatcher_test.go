package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healx-platform/healx-api/databases/mocks"
	"github.com/healx-platform/healx-api/dispatch"
	"github.com/healx-platform/healx-api/models"
)

type stubClassifier struct {
	prediction *models.SeverityPrediction
	err        error
}

func (s stubClassifier) Classify(context.Context, []string, *models.Vitals) (*models.SeverityPrediction, error) {
	return s.prediction, s.err
}

func validRequest() dispatch.EmergencyRequest {
	return dispatch.EmergencyRequest{
		Caller:        primitive.NewObjectID(),
		EmergencyType: models.EmergencyCardiac,
		Location:      models.NewGeoPoint(77.5946, 12.9716),
		Address:       "100 Feet Rd, Bengaluru",
		Description:   "collapsed at home",
		Symptoms:      []string{"chest pain"},
	}
}

func TestCreateEmergencyAssignsNearest(t *testing.T) {
	emergencyDB := &mocks.EmergencyDatabase{}
	ambulanceDB := &mocks.AmbulanceDatabase{}

	nearest := models.Ambulance{ID: primitive.NewObjectID(), AmbulanceID: "AMB-001"}
	second := models.Ambulance{ID: primitive.NewObjectID(), AmbulanceID: "AMB-002"}

	emergencyDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	emergencyDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&models.Emergency{}, nil)
	ambulanceDB.On("FindNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Ambulance{nearest, second}, nil)
	reserved := nearest
	reserved.Status = models.AmbulanceOnDuty
	ambulanceDB.On("Reserve", mock.Anything, nearest.ID, mock.Anything).Return(&reserved, nil)

	d := dispatch.NewDispatcher(emergencyDB, ambulanceDB, nil, dispatch.NopBroadcaster{}, nil)
	emergency, ambulance, outcome, err := d.CreateEmergency(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.Equal(t, dispatch.OutcomeAssigned, outcome)
	assert.Equal(t, "AMB-001", ambulance.AmbulanceID)
	assert.Equal(t, models.StatusPending, emergency.Status, "assignment links the unit without accepting")
	assert.Equal(t, &ambulance.ID, emergency.AssignedAmbulance)
	assert.Len(t, emergency.Timeline, 1)
	assert.Equal(t, models.StatusPending, emergency.Timeline[0].Status)
	ambulanceDB.AssertNotCalled(t, "Reserve", mock.Anything, second.ID, mock.Anything)
}

func TestCreateEmergencySkipsClaimedUnit(t *testing.T) {
	emergencyDB := &mocks.EmergencyDatabase{}
	ambulanceDB := &mocks.AmbulanceDatabase{}

	claimed := models.Ambulance{ID: primitive.NewObjectID(), AmbulanceID: "AMB-001"}
	free := models.Ambulance{ID: primitive.NewObjectID(), AmbulanceID: "AMB-002"}

	emergencyDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	emergencyDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&models.Emergency{}, nil)
	ambulanceDB.On("FindNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Ambulance{claimed, free}, nil)
	ambulanceDB.On("Reserve", mock.Anything, claimed.ID, mock.Anything).Return(nil, mongo.ErrNoDocuments)
	reserved := free
	reserved.Status = models.AmbulanceOnDuty
	ambulanceDB.On("Reserve", mock.Anything, free.ID, mock.Anything).Return(&reserved, nil)

	d := dispatch.NewDispatcher(emergencyDB, ambulanceDB, nil, dispatch.NopBroadcaster{}, nil)
	_, ambulance, outcome, err := d.CreateEmergency(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.Equal(t, dispatch.OutcomeAssigned, outcome)
	assert.Equal(t, "AMB-002", ambulance.AmbulanceID)
}

func TestCreateEmergencyNoAmbulance(t *testing.T) {
	emergencyDB := &mocks.EmergencyDatabase{}
	ambulanceDB := &mocks.AmbulanceDatabase{}

	emergencyDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	ambulanceDB.On("FindNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Ambulance{}, nil)

	d := dispatch.NewDispatcher(emergencyDB, ambulanceDB, nil, dispatch.NopBroadcaster{}, nil)
	emergency, ambulance, outcome, err := d.CreateEmergency(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.Equal(t, dispatch.OutcomeNoAmbulance, outcome)
	assert.Nil(t, ambulance)
	assert.Equal(t, models.StatusPending, emergency.Status)
	assert.Nil(t, emergency.AssignedAmbulance)
}

func TestCreateEmergencyDegradedSearch(t *testing.T) {
	emergencyDB := &mocks.EmergencyDatabase{}
	ambulanceDB := &mocks.AmbulanceDatabase{}

	emergencyDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	ambulanceDB.On("FindNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("geo index unavailable"))

	d := dispatch.NewDispatcher(emergencyDB, ambulanceDB, nil, dispatch.NopBroadcaster{}, nil)
	emergency, ambulance, outcome, err := d.CreateEmergency(context.Background(), validRequest())

	// The emergency survives the outage; no placeholder assignment is made.
	assert.NoError(t, err)
	assert.Equal(t, dispatch.OutcomeDegraded, outcome)
	assert.Nil(t, ambulance)
	assert.Equal(t, models.StatusPending, emergency.Status)
}

func TestCreateEmergencyValidation(t *testing.T) {
	d := dispatch.NewDispatcher(&mocks.EmergencyDatabase{}, &mocks.AmbulanceDatabase{}, nil, dispatch.NopBroadcaster{}, nil)

	req := validRequest()
	req.EmergencyType = "earthquake"
	_, _, _, err := d.CreateEmergency(context.Background(), req)
	assert.ErrorIs(t, err, dispatch.ErrInvalidRequest)

	req = validRequest()
	req.Location = models.GeoPoint{Type: "Point", Coordinates: []float64{200, 95}}
	_, _, _, err = d.CreateEmergency(context.Background(), req)
	assert.ErrorIs(t, err, dispatch.ErrInvalidRequest)

	req = validRequest()
	req.Caller = primitive.NilObjectID
	_, _, _, err = d.CreateEmergency(context.Background(), req)
	assert.ErrorIs(t, err, dispatch.ErrInvalidRequest)
}

func TestCreateEmergencyClassifierOutageKeepsDefault(t *testing.T) {
	emergencyDB := &mocks.EmergencyDatabase{}
	ambulanceDB := &mocks.AmbulanceDatabase{}

	emergencyDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	ambulanceDB.On("FindNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Ambulance{}, nil)

	classifier := stubClassifier{err: errors.New("timeout")}
	d := dispatch.NewDispatcher(emergencyDB, ambulanceDB, classifier, dispatch.NopBroadcaster{}, nil)

	emergency, _, _, err := d.CreateEmergency(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.Equal(t, models.SeverityMedium, emergency.Severity)
	assert.Nil(t, emergency.PredictedSeverity)
}

func TestCreateEmergencyUsesPrediction(t *testing.T) {
	emergencyDB := &mocks.EmergencyDatabase{}
	ambulanceDB := &mocks.AmbulanceDatabase{}

	emergencyDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	ambulanceDB.On("FindNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Ambulance{}, nil)

	classifier := stubClassifier{prediction: &models.SeverityPrediction{Score: 0.9, Confidence: 0.8, Prediction: "critical"}}
	d := dispatch.NewDispatcher(emergencyDB, ambulanceDB, classifier, dispatch.NopBroadcaster{}, nil)

	emergency, _, _, err := d.CreateEmergency(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.Equal(t, models.SeverityCritical, emergency.Severity)
	assert.NotNil(t, emergency.PredictedSeverity)
	assert.Equal(t, 0.9, emergency.PredictedSeverity.Score)
}

// casAmbulanceDB backs the concurrency regression below with a real
// compare-and-set over one unit, since expectation mocks cannot express
// one-winner semantics.
type casAmbulanceDB struct {
	mocks.AmbulanceDatabase
	mu       sync.Mutex
	unit     models.Ambulance
	reserved bool
	winners  int
}

func (f *casAmbulanceDB) FindNearest(context.Context, models.GeoPoint, float64, int64) ([]models.Ambulance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reserved {
		return []models.Ambulance{}, nil
	}
	return []models.Ambulance{f.unit}, nil
}

func (f *casAmbulanceDB) Reserve(_ context.Context, ambulanceID, emergencyID primitive.ObjectID) (*models.Ambulance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reserved || ambulanceID != f.unit.ID {
		return nil, mongo.ErrNoDocuments
	}
	f.reserved = true
	f.winners++
	claimed := f.unit
	claimed.Status = models.AmbulanceOnDuty
	claimed.AssignedEmergency = &emergencyID
	return &claimed, nil
}

func TestConcurrentDispatchSingleWinner(t *testing.T) {
	emergencyDB := &mocks.EmergencyDatabase{}
	emergencyDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	emergencyDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&models.Emergency{}, nil)

	ambulanceDB := &casAmbulanceDB{
		unit: models.Ambulance{ID: primitive.NewObjectID(), AmbulanceID: "AMB-001", Status: models.AmbulanceAvailable},
	}

	d := dispatch.NewDispatcher(emergencyDB, ambulanceDB, nil, dispatch.NopBroadcaster{}, nil)

	const dispatchers = 8
	outcomes := make([]dispatch.Outcome, dispatchers)
	var wg sync.WaitGroup
	for i := 0; i < dispatchers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, outcome, err := d.CreateEmergency(context.Background(), validRequest())
			assert.NoError(t, err)
			outcomes[i] = outcome
		}(i)
	}
	wg.Wait()

	assigned := 0
	for _, outcome := range outcomes {
		if outcome == dispatch.OutcomeAssigned {
			assigned++
		} else {
			assert.Equal(t, dispatch.OutcomeNoAmbulance, outcome)
		}
	}
	assert.Equal(t, 1, assigned, "exactly one dispatcher must win the last unit")
	assert.Equal(t, 1, ambulanceDB.winners)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	emergencyDB := &mocks.EmergencyDatabase{}
	id := primitive.NewObjectID()
	emergencyDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Emergency{ID: id, Status: models.StatusPending}, nil)

	d := dispatch.NewDispatcher(emergencyDB, &mocks.AmbulanceDatabase{}, nil, dispatch.NopBroadcaster{}, nil)
	_, err := d.UpdateStatus(context.Background(), id, models.StatusAtHospital, "")

	assert.ErrorIs(t, err, dispatch.ErrInvalidTransition)
	emergencyDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusTerminalEmergency(t *testing.T) {
	emergencyDB := &mocks.EmergencyDatabase{}
	id := primitive.NewObjectID()
	emergencyDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Emergency{ID: id, Status: models.StatusCompleted}, nil)

	d := dispatch.NewDispatcher(emergencyDB, &mocks.AmbulanceDatabase{}, nil, dispatch.NopBroadcaster{}, nil)
	_, err := d.UpdateStatus(context.Background(), id, models.StatusCancelled, "")

	assert.ErrorIs(t, err, dispatch.ErrTerminalStatus)
}

func TestUpdateStatusNotFound(t *testing.T) {
	emergencyDB := &mocks.EmergencyDatabase{}
	emergencyDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	d := dispatch.NewDispatcher(emergencyDB, &mocks.AmbulanceDatabase{}, nil, dispatch.NopBroadcaster{}, nil)
	_, err := d.UpdateStatus(context.Background(), primitive.NewObjectID(), models.StatusAccepted, "")

	assert.ErrorIs(t, err, dispatch.ErrEmergencyNotFound)
}

func TestUpdateStatusReleasesAmbulanceOnCompletion(t *testing.T) {
	emergencyDB := &mocks.EmergencyDatabase{}
	ambulanceDB := &mocks.AmbulanceDatabase{}

	emergencyID := primitive.NewObjectID()
	ambulanceID := primitive.NewObjectID()

	emergencyDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Emergency{ID: emergencyID, Status: models.StatusAtHospital, AssignedAmbulance: &ambulanceID}, nil)
	emergencyDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Emergency{
			ID:                emergencyID,
			EmergencyID:       "EMG-1",
			Status:            models.StatusCompleted,
			AssignedAmbulance: &ambulanceID,
		}, nil)
	ambulanceDB.On("Release", mock.Anything, ambulanceID, emergencyID).
		Return(&models.Ambulance{ID: ambulanceID, AmbulanceID: "AMB-001", Status: models.AmbulanceAvailable}, nil)

	d := dispatch.NewDispatcher(emergencyDB, ambulanceDB, nil, dispatch.NopBroadcaster{}, nil)
	updated, err := d.UpdateStatus(context.Background(), emergencyID, models.StatusCompleted, "patient admitted")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	ambulanceDB.AssertCalled(t, "Release", mock.Anything, ambulanceID, emergencyID)
}

func TestRedispatchAssignsPending(t *testing.T) {
	emergencyDB := &mocks.EmergencyDatabase{}
	ambulanceDB := &mocks.AmbulanceDatabase{}

	pending := models.Emergency{
		ID:          primitive.NewObjectID(),
		EmergencyID: "EMG-1",
		Status:      models.StatusPending,
		Location:    models.NewGeoPoint(77.5946, 12.9716),
	}
	unit := models.Ambulance{ID: primitive.NewObjectID(), AmbulanceID: "AMB-001"}

	emergencyDB.On("Find", mock.Anything, mock.Anything).Return([]models.Emergency{pending}, nil)
	emergencyDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&models.Emergency{}, nil)
	ambulanceDB.On("FindNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Ambulance{unit}, nil)
	reserved := unit
	reserved.Status = models.AmbulanceOnDuty
	ambulanceDB.On("Reserve", mock.Anything, unit.ID, pending.ID).Return(&reserved, nil)

	d := dispatch.NewDispatcher(emergencyDB, ambulanceDB, nil, dispatch.NopBroadcaster{}, nil)
	assigned, err := d.Redispatch(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, assigned)
}

func TestCreateEmergencyIgnoresUnknownPredictionLabel(t *testing.T) {
	emergencyDB := &mocks.EmergencyDatabase{}
	ambulanceDB := &mocks.AmbulanceDatabase{}

	emergencyDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	ambulanceDB.On("FindNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Ambulance{}, nil)

	classifier := stubClassifier{prediction: &models.SeverityPrediction{Score: 0.9, Confidence: 0.8, Prediction: "catastrophic"}}
	d := dispatch.NewDispatcher(emergencyDB, ambulanceDB, classifier, dispatch.NopBroadcaster{}, nil)

	emergency, _, _, err := d.CreateEmergency(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.Equal(t, models.SeverityMedium, emergency.Severity)
	assert.NotNil(t, emergency.PredictedSeverity)
}

// lifecycleEmergencyDB applies status updates to one in-memory document so
// sequential lifecycle calls observe each other's writes.
type lifecycleEmergencyDB struct {
	mocks.EmergencyDatabase
	mu  sync.Mutex
	doc models.Emergency
}

func (f *lifecycleEmergencyDB) FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := f.doc
	return &doc, nil
}

func (f *lifecycleEmergencyDB) UpdateOne(_ context.Context, _ interface{}, update interface{}, _ ...*options.UpdateOptions) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := update.(bson.M)
	if set, ok := u["$set"].(bson.M); ok {
		if status, ok := set["status"].(models.EmergencyStatus); ok {
			f.doc.Status = status
		}
	}
	if push, ok := u["$push"].(bson.M); ok {
		if entry, ok := push["timeline"].(models.TimelineEntry); ok {
			f.doc.Timeline = append(f.doc.Timeline, entry)
		}
	}
	doc := f.doc
	return &doc, nil
}

func TestUpdateStatusAppendsTimelineInOrder(t *testing.T) {
	emergencyDB := &lifecycleEmergencyDB{doc: models.Emergency{
		ID:     primitive.NewObjectID(),
		Status: models.StatusPending,
		Timeline: []models.TimelineEntry{
			{Status: models.StatusPending, Timestamp: primitive.NewDateTimeFromTime(time.Now())},
		},
	}}

	d := dispatch.NewDispatcher(emergencyDB, &mocks.AmbulanceDatabase{}, nil, dispatch.NopBroadcaster{}, nil)

	for _, step := range []models.EmergencyStatus{models.StatusAccepted, models.StatusArrived, models.StatusInTransit} {
		_, err := d.UpdateStatus(context.Background(), emergencyDB.doc.ID, step, "")
		assert.NoError(t, err)
	}

	timeline := emergencyDB.doc.Timeline
	assert.Len(t, timeline, 4)
	want := []models.EmergencyStatus{models.StatusPending, models.StatusAccepted, models.StatusArrived, models.StatusInTransit}
	for i, entry := range timeline {
		assert.Equal(t, want[i], entry.Status)
		if i > 0 {
			assert.LessOrEqual(t, int64(timeline[i-1].Timestamp), int64(entry.Timestamp))
		}
	}
}
