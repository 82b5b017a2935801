package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/healx-platform/healx-api/databases/mocks"
	"github.com/healx-platform/healx-api/dispatch"
	"github.com/healx-platform/healx-api/models"
)

func newTestScheduler(lockDB *mocks.SchedulerLockDatabase, sessionDB *mocks.ChatSessionDatabase, emergencyDB *mocks.EmergencyDatabase, ambulanceDB *mocks.AmbulanceDatabase) *Scheduler {
	dispatcher := dispatch.NewDispatcher(emergencyDB, ambulanceDB, nil, dispatch.NopBroadcaster{}, nil)
	return New(lockDB, sessionDB, dispatcher)
}

func TestEvictExpiredSessionsRunsUnderLock(t *testing.T) {
	var mockLockDB = &mocks.SchedulerLockDatabase{}
	var mockSessionDB = &mocks.ChatSessionDatabase{}

	mockLockDB.On("TryAcquireLock", mock.Anything, sessionEvictionJob, mock.Anything, sessionEvictionLockTTL).
		Return(true, nil)
	mockSessionDB.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(4), nil)
	mockLockDB.On("ReleaseLock", mock.Anything, sessionEvictionJob, mock.Anything).Return(nil)

	s := newTestScheduler(mockLockDB, mockSessionDB, &mocks.EmergencyDatabase{}, &mocks.AmbulanceDatabase{})
	s.evictExpiredSessions()

	mockSessionDB.AssertCalled(t, "DeleteExpired", mock.Anything, mock.Anything)
	mockLockDB.AssertCalled(t, "ReleaseLock", mock.Anything, sessionEvictionJob, mock.Anything)
}

func TestEvictExpiredSessionsSkipsWhenLockHeld(t *testing.T) {
	var mockLockDB = &mocks.SchedulerLockDatabase{}
	var mockSessionDB = &mocks.ChatSessionDatabase{}

	mockLockDB.On("TryAcquireLock", mock.Anything, sessionEvictionJob, mock.Anything, sessionEvictionLockTTL).
		Return(false, nil)

	s := newTestScheduler(mockLockDB, mockSessionDB, &mocks.EmergencyDatabase{}, &mocks.AmbulanceDatabase{})
	s.evictExpiredSessions()

	mockSessionDB.AssertNotCalled(t, "DeleteExpired", mock.Anything, mock.Anything)
	mockLockDB.AssertNotCalled(t, "ReleaseLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestRedispatchPendingAssigns(t *testing.T) {
	var mockLockDB = &mocks.SchedulerLockDatabase{}
	var mockEmergencyDB = &mocks.EmergencyDatabase{}
	var mockAmbulanceDB = &mocks.AmbulanceDatabase{}

	mockLockDB.On("TryAcquireLock", mock.Anything, redispatchJob, mock.Anything, redispatchLockTTL).
		Return(true, nil)
	mockLockDB.On("ReleaseLock", mock.Anything, redispatchJob, mock.Anything).Return(nil)

	pending := models.Emergency{Status: models.StatusPending, Location: models.NewGeoPoint(79.86, 6.92)}
	ambulance := models.Ambulance{AmbulanceID: "AMB-1"}

	mockEmergencyDB.On("Find", mock.Anything, mock.Anything).Return([]models.Emergency{pending}, nil)
	mockAmbulanceDB.On("FindNearest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Ambulance{ambulance}, nil)
	mockAmbulanceDB.On("Reserve", mock.Anything, mock.Anything, mock.Anything).Return(&ambulance, nil)
	mockEmergencyDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&models.Emergency{}, nil)

	s := newTestScheduler(mockLockDB, &mocks.ChatSessionDatabase{}, mockEmergencyDB, mockAmbulanceDB)
	s.redispatchPending()

	mockAmbulanceDB.AssertCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
	mockLockDB.AssertCalled(t, "ReleaseLock", mock.Anything, redispatchJob, mock.Anything)
	assert.NotNil(t, s.cron)
}
