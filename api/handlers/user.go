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
	"golang.org/x/crypto/bcrypt"

	"github.com/healx-platform/healx-api/api"
	"github.com/healx-platform/healx-api/config"
	"github.com/healx-platform/healx-api/databases"
	"github.com/healx-platform/healx-api/models"
)

// User exported for testing purposes
type User struct {
	DB databases.UserDatabase
}

type registerUserRequest struct {
	FirstName     string                    `json:"firstName"`
	LastName      string                    `json:"lastName"`
	Email         string                    `json:"email"`
	Password      string                    `json:"password"`
	Phone         string                    `json:"phone"`
	Role          string                    `json:"role"`
	Address       *models.Address           `json:"address"`
	Location      *models.GeoPoint          `json:"location"`
	MedicalInfo   *models.MedicalLicense    `json:"medicalLicense"`
	VolunteerInfo *models.VolunteerInfo     `json:"volunteerInfo"`
	Contacts      []models.EmergencyContact `json:"emergencyContacts"`
}

// RegisterUserHandler creates a new user account with a bcrypt password hash.
// A duplicate email is reported as a conflict.
func (u User) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var body registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if body.Email == "" || body.Password == "" {
		config.ErrorStatus("email and password are required", http.StatusBadRequest, w,
			errors.New("missing credentials"))
		return
	}

	role := models.Role(body.Role)
	if role == "" {
		role = models.RolePatient
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := u.DB.FindOne(ctx, bson.M{"email": body.Email}); err == nil {
		config.ErrorStatus("a user with this email already exists", http.StatusConflict, w,
			errors.New("duplicate email"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	user := models.User{
		ID:                primitive.NewObjectID(),
		FirstName:         body.FirstName,
		LastName:          body.LastName,
		Email:             body.Email,
		Password:          string(hash),
		Phone:             body.Phone,
		Role:              role,
		Address:           body.Address,
		Location:          body.Location,
		Active:            true,
		MedicalLicense:    body.MedicalInfo,
		VolunteerInfo:     body.VolunteerInfo,
		EmergencyContacts: body.Contacts,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := u.DB.InsertOne(ctx, user); err != nil {
		config.ErrorStatus("failed to create user", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UsersHandler returns all users, optionally filtered by role
func (u User) UsersHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if role := r.URL.Query().Get("role"); role != "" {
		filter["role"] = role
	}

	limit, page := paginationParams(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	users, err := u.DB.Find(ctx, filter, databases.PaginatedOpts(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get users", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(users)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UserByIDHandler returns a single user by their object id
func (u User) UserByIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("user id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type updateUserRequest struct {
	FirstName string                    `json:"firstName"`
	LastName  string                    `json:"lastName"`
	Phone     string                    `json:"phone"`
	Address   *models.Address           `json:"address"`
	Location  *models.GeoPoint          `json:"location"`
	Avatar    string                    `json:"avatar"`
	Contacts  []models.EmergencyContact `json:"emergencyContacts"`
}

// UserUpdateHandler updates a user's profile fields. Email, password and role
// are not editable through this endpoint.
func (u User) UserUpdateHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("user id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	var body updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if body.FirstName != "" {
		set["firstName"] = body.FirstName
	}
	if body.LastName != "" {
		set["lastName"] = body.LastName
	}
	if body.Phone != "" {
		set["phone"] = body.Phone
	}
	if body.Address != nil {
		set["address"] = body.Address
	}
	if body.Location != nil {
		if !body.Location.Valid() {
			config.ErrorStatus("location must be a GeoJSON point", http.StatusBadRequest, w,
				errors.New("invalid coordinates"))
			return
		}
		set["location"] = body.Location
	}
	if body.Avatar != "" {
		set["avatar"] = body.Avatar
	}
	if body.Contacts != nil {
		set["emergencyContacts"] = body.Contacts
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.UpdateOne(ctx, bson.M{"_id": uID}, bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("user not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to update user", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UserDeleteHandler deactivates and removes a user account
func (u User) UserDeleteHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("user id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := u.DB.DeleteOne(ctx, bson.M{"_id": uID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("user not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to delete user", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "deleted"}`))
}
