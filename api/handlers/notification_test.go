package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healx-platform/healx-api/databases/mocks"
	"github.com/healx-platform/healx-api/models"
)

func TestUserNotificationsHandlerSuccess(t *testing.T) {
	var mockNotificationDB = &mocks.NotificationDatabase{}
	uID := primitive.NewObjectID()

	mockNotificationDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.Notification{
		{NotificationID: "NTF-1", Recipient: uID, Read: false},
		{NotificationID: "NTF-2", Recipient: uID, Read: true},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/user/%s/notifications", uID.Hex()), nil)
	req = mux.SetURLVars(req, map[string]string{"user_id": uID.Hex()})
	rr := httptest.NewRecorder()

	n := Notification{DB: mockNotificationDB}
	n.UserNotificationsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []models.Notification
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestUnreadCountHandlerSuccess(t *testing.T) {
	var mockNotificationDB = &mocks.NotificationDatabase{}
	uID := primitive.NewObjectID()

	mockNotificationDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(3), nil)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/user/%s/notifications/unread-count", uID.Hex()), nil)
	req = mux.SetURLVars(req, map[string]string{"user_id": uID.Hex()})
	rr := httptest.NewRecorder()

	n := Notification{DB: mockNotificationDB}
	n.UnreadCountHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got map[string]int64
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int64(3), got["unread"])
}

func TestMarkAllReadHandlerSuccess(t *testing.T) {
	var mockNotificationDB = &mocks.NotificationDatabase{}
	uID := primitive.NewObjectID()

	mockNotificationDB.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(int64(5), nil)

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/user/%s/notifications/read-all", uID.Hex()), nil)
	req = mux.SetURLVars(req, map[string]string{"user_id": uID.Hex()})
	rr := httptest.NewRecorder()

	n := Notification{DB: mockNotificationDB}
	n.MarkAllReadHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got map[string]int64
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int64(5), got["modified"])
}

func TestMarkReadHandlerBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/v1/notification/nope/read", nil)
	req = mux.SetURLVars(req, map[string]string{"notification_id": "nope"})
	rr := httptest.NewRecorder()

	n := Notification{DB: &mocks.NotificationDatabase{}}
	n.MarkReadHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
