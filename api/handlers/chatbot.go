package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/healx-platform/healx-api/api"
	"github.com/healx-platform/healx-api/config"
	"github.com/healx-platform/healx-api/databases"
	"github.com/healx-platform/healx-api/dispatch"
	"github.com/healx-platform/healx-api/models"
)

// SessionTTL is how long an idle chat session survives before the eviction
// job removes it. Every message pushes the expiry forward.
const SessionTTL = 30 * time.Minute

// Chatbot exported for testing purposes
type Chatbot struct {
	DB   databases.ChatSessionDatabase
	Chat dispatch.ChatResponder
}

type chatMessageRequest struct {
	SessionID string `json:"sessionId"`
	Patient   string `json:"patient"`
	Message   string `json:"message"`
}

type chatMessageResponse struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
}

// ChatMessageHandler handles one turn of the first-aid assistant. A request
// without a sessionId starts a new session; the reply and both turns are
// persisted so the conversation survives restarts.
func (c Chatbot) ChatMessageHandler(w http.ResponseWriter, r *http.Request) {
	var body chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		config.ErrorStatus("message is required", http.StatusBadRequest, w, errors.New("empty message"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sessionID := body.SessionID
	if sessionID == "" {
		patient, err := primitive.ObjectIDFromHex(body.Patient)
		if err != nil {
			config.ErrorStatus("patient must be a valid user id for a new session", http.StatusBadRequest, w, err)
			return
		}

		now := primitive.NewDateTimeFromTime(time.Now())
		sessionID = uuid.New().String()
		session := models.ChatSession{
			ID:        primitive.NewObjectID(),
			SessionID: sessionID,
			Patient:   patient,
			Messages:  []models.ChatMessage{},
			ExpiresAt: primitive.NewDateTimeFromTime(time.Now().Add(SessionTTL)),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := c.DB.InsertOne(ctx, session); err != nil {
			config.ErrorStatus("failed to create chat session", http.StatusInternalServerError, w, err)
			return
		}
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	userTurn := models.ChatMessage{Role: "user", Content: body.Message, Timestamp: now}
	if _, err := c.DB.AppendMessage(ctx, sessionID, userTurn, SessionTTL); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("chat session not found or expired", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to store message", http.StatusInternalServerError, w, err)
		return
	}

	reply := c.reply(ctx, sessionID, body.Message)
	assistantTurn := models.ChatMessage{Role: "assistant", Content: reply, Timestamp: now}
	if _, err := c.DB.AppendMessage(ctx, sessionID, assistantTurn, SessionTTL); err != nil {
		config.ErrorStatus("failed to store reply", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(chatMessageResponse{SessionID: sessionID, Reply: reply})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ChatSessionHandler returns the stored conversation for a session
func (c Chatbot) ChatSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	session, err := c.DB.FindOne(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		config.ErrorStatus("chat session not found", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(session)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ChatSessionDeleteHandler ends a session before its expiry
func (c Chatbot) ChatSessionDeleteHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.DB.DeleteOne(ctx, bson.M{"sessionId": sessionID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("chat session not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to delete chat session", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "deleted"}`))
}

// reply asks the assistant service for a turn when one is configured and
// falls back to the local first-aid rules when it is not, or when it fails.
func (c Chatbot) reply(ctx context.Context, sessionID, message string) string {
	if c.Chat != nil {
		reply, err := c.Chat.Respond(ctx, sessionID, message)
		if err == nil {
			return reply
		}
		zap.S().Warnw("chat service unavailable, using local first-aid guidance",
			"sessionId", sessionID,
			"error", err)
	}
	return firstAidReply(message)
}

type firstAidRule struct {
	keywords []string
	reply    string
}

// firstAidRules are checked in order; the first match wins. More specific
// topics come before generic ones.
var firstAidRules = []firstAidRule{
	{
		keywords: []string{"not breathing", "cpr", "cardiac arrest", "no pulse"},
		reply: "Call emergency services immediately. Start CPR: place the heel of your hand on the center of the chest, " +
			"push hard and fast at 100-120 compressions per minute, about 2 inches deep. Do not stop until help arrives " +
			"or the person starts breathing.",
	},
	{
		keywords: []string{"choking", "can't breathe", "cannot breathe"},
		reply: "If the person can cough, encourage them to keep coughing. If they cannot breathe or speak, give 5 back " +
			"blows between the shoulder blades, then 5 abdominal thrusts (Heimlich maneuver). Repeat until the object " +
			"is dislodged. Call emergency services if it does not clear quickly.",
	},
	{
		keywords: []string{"bleeding", "blood loss", "deep cut", "wound"},
		reply: "Apply firm, direct pressure on the wound with a clean cloth. Keep pressing without lifting to check. " +
			"If blood soaks through, add more cloth on top. Raise the injured area above heart level if possible and " +
			"seek medical help for deep or spurting wounds.",
	},
	{
		keywords: []string{"burn", "scald"},
		reply: "Cool the burn under cool running water for at least 20 minutes. Do not use ice, butter or creams. " +
			"Remove jewelry near the burn before swelling starts. Cover loosely with a clean non-stick dressing. " +
			"Seek medical care for burns larger than the palm of a hand, or on the face, hands or joints.",
	},
	{
		keywords: []string{"stroke", "face drooping", "slurred speech"},
		reply: "Think FAST: Face drooping, Arm weakness, Speech difficulty, Time to call emergency services. " +
			"Note the time symptoms started. Do not give food, drink or medication. Keep the person calm and lying " +
			"down with head slightly raised until help arrives.",
	},
	{
		keywords: []string{"fracture", "broken bone", "broken arm", "broken leg"},
		reply: "Do not try to straighten the limb. Immobilize it in the position found using a splint or padding. " +
			"Apply a cold pack wrapped in cloth to reduce swelling. Do not let the person eat or drink in case " +
			"surgery is needed. Get medical help.",
	},
	{
		keywords: []string{"snake", "bite"},
		reply: "Keep the person calm and still, with the bitten limb below heart level. Remove tight clothing and " +
			"jewelry near the bite. Do not cut the wound, suck out venom, or apply a tourniquet. " +
			"Get to a hospital as quickly as possible.",
	},
	{
		keywords: []string{"seizure", "convulsion", "fitting"},
		reply: "Clear the area of hard objects and cushion the head. Do not restrain the person or put anything in " +
			"their mouth. Time the seizure. Once it stops, roll them onto their side. Call emergency services if it " +
			"lasts over 5 minutes or repeats.",
	},
	{
		keywords: []string{"fever", "temperature", "high temp"},
		reply: "Rest and drink plenty of fluids. Paracetamol or ibuprofen can reduce fever; follow package dosing. " +
			"Seek medical attention for a fever above 39.4 C (103 F), a fever lasting more than 3 days, or if " +
			"accompanied by stiff neck, rash or confusion.",
	},
	{
		keywords: []string{"poison", "swallowed", "overdose"},
		reply: "Call a poison control center or emergency services immediately. Do not induce vomiting unless told " +
			"to by a professional. Keep the container or label of what was taken to show responders.",
	},
}

// firstAidReply matches the message against the first-aid rules. Unmatched
// messages get guidance to call for an ambulance through the platform.
func firstAidReply(message string) string {
	lowered := strings.ToLower(message)
	for _, rule := range firstAidRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.reply
			}
		}
	}
	return "I can help with first-aid guidance for bleeding, burns, choking, CPR, fractures, stroke, seizures, " +
		"fever, poisoning and snake bites. If this is a life-threatening emergency, request an ambulance now " +
		"through the emergency page or call your local emergency number."
}
