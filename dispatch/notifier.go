package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/healx-platform/healx-api/databases"
	"github.com/healx-platform/healx-api/models"
)

// Notifier records in-app notifications and sends email alerts for dispatch
// events. Failures are logged and swallowed so a notification outage never
// blocks a dispatch.
type Notifier struct {
	NotificationDB databases.NotificationDatabase
	UserDB         databases.UserDatabase
	SendgridAPIKey string
	FromEmail      string
	Broadcaster    Broadcaster
}

// NewNotifier wires a notifier over the notification and user stores
func NewNotifier(ndb databases.NotificationDatabase, udb databases.UserDatabase, sendgridAPIKey string, b Broadcaster) *Notifier {
	return &Notifier{
		NotificationDB: ndb,
		UserDB:         udb,
		SendgridAPIKey: sendgridAPIKey,
		FromEmail:      "no-reply@healx.health",
		Broadcaster:    b,
	}
}

// Notify stores a notification for recipient and pushes it to the user's room
func (n *Notifier) Notify(ctx context.Context, recipient primitive.ObjectID, notifType, title, message, priority string, related *models.RelatedData) {
	now := primitive.NewDateTimeFromTime(time.Now())
	notification := models.Notification{
		ID:             primitive.NewObjectID(),
		NotificationID: "NTF-" + uuid.New().String(),
		Recipient:      recipient,
		Type:           notifType,
		Title:          title,
		Message:        message,
		Priority:       priority,
		RelatedData:    related,
		Read:           false,
		CreatedAt:      now,
	}

	if _, err := n.NotificationDB.InsertOne(ctx, notification); err != nil {
		zap.S().Errorw("failed to store notification", "error", err, "recipient", recipient.Hex())
		return
	}

	if n.Broadcaster != nil {
		n.Broadcaster.EmitToRoom(fmt.Sprintf("user:%s", recipient.Hex()), "notification:new", notification)
	}
}

// EmailEmergencyContact sends an alert email about an emergency. Used for the
// caller's emergency contacts when an ambulance is dispatched.
func (n *Notifier) EmailEmergencyContact(toEmail, toName, subject, plainText string) {
	if n.SendgridAPIKey == "" || toEmail == "" {
		return
	}

	from := mail.NewEmail("HealX Platform", n.FromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, "<p>"+plainText+"</p>")
	client := sendgrid.NewSendClient(n.SendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send alert email", "error", err, "to", toEmail)
		return
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
}

// NotifyDispatch alerts the caller that an ambulance is on the way
func (n *Notifier) NotifyDispatch(ctx context.Context, emergency *models.Emergency, ambulance *models.Ambulance) {
	related := &models.RelatedData{Emergency: &emergency.ID, Ambulance: &ambulance.ID}
	message := fmt.Sprintf("Ambulance %s has been dispatched to %s", ambulance.AmbulanceID, emergency.Address)
	n.Notify(ctx, emergency.Caller, "emergency_alert", "Ambulance dispatched", message, string(emergency.Severity), related)

	user, err := n.UserDB.FindOne(ctx, bson.M{"_id": emergency.Caller})
	if err != nil {
		zap.S().Warnw("failed to load caller for email alert", "error", err, "caller", emergency.Caller.Hex())
		return
	}
	n.EmailEmergencyContact(user.Email, user.FirstName,
		"Ambulance dispatched - HealX",
		message)
}

// NotifyNoAmbulance alerts the caller that no unit was available
func (n *Notifier) NotifyNoAmbulance(ctx context.Context, emergency *models.Emergency) {
	related := &models.RelatedData{Emergency: &emergency.ID}
	n.Notify(ctx, emergency.Caller, "emergency_alert", "Searching for ambulance",
		"No ambulance is currently available. Your request stays in the queue and will be dispatched as soon as a unit frees up.",
		"critical", related)
}
