package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/healx-platform/healx-api/api"
	"github.com/healx-platform/healx-api/config"
	"github.com/healx-platform/healx-api/databases"
)

// Notification exported for testing purposes
type Notification struct {
	DB databases.NotificationDatabase
}

// UserNotificationsHandler returns a user's notifications, newest first.
// Pass unread=true to get only unread ones.
func (n Notification) UserNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("user id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	filter := bson.M{"recipient": uID}
	if r.URL.Query().Get("unread") == "true" {
		filter["read"] = false
	}

	limit, page := paginationParams(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := databases.PaginatedOpts(limit, page).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	notifications, err := n.DB.Find(ctx, filter, opts)
	if err != nil {
		config.ErrorStatus("failed to get notifications", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(notifications)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UnreadCountHandler returns the number of unread notifications for a user
func (n Notification) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("user id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := n.DB.CountDocuments(ctx, bson.M{"recipient": uID, "read": false})
	if err != nil {
		config.ErrorStatus("failed to count unread notifications", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]int64{"unread": count})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MarkReadHandler marks a single notification as read
func (n Notification) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	notificationID := mux.Vars(r)["notification_id"]

	nID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		config.ErrorStatus("notification id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	notification, err := n.DB.UpdateOne(ctx, bson.M{"_id": nID}, bson.M{"$set": bson.M{
		"read":   true,
		"readAt": now,
	}})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("notification not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to mark notification read", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(notification)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MarkAllReadHandler marks every unread notification for a user as read
func (n Notification) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("user id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	modified, err := n.DB.UpdateMany(ctx,
		bson.M{"recipient": uID, "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": now}})
	if err != nil {
		config.ErrorStatus("failed to mark notifications read", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]int64{"modified": modified})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// NotificationDeleteHandler removes a notification
func (n Notification) NotificationDeleteHandler(w http.ResponseWriter, r *http.Request) {
	notificationID := mux.Vars(r)["notification_id"]

	nID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		config.ErrorStatus("notification id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := n.DB.DeleteOne(ctx, bson.M{"_id": nID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("notification not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to delete notification", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "deleted"}`))
}
