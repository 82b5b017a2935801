package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	socketio "github.com/googollee/go-socket.io"
	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"

	"github.com/healx-platform/healx-api/api"
	"github.com/healx-platform/healx-api/api/scheduler"
	"github.com/healx-platform/healx-api/config"
	"github.com/healx-platform/healx-api/databases"
	"github.com/healx-platform/healx-api/dispatch"
	"github.com/healx-platform/healx-api/models"
)

// App stores the router, socket server, scheduler and database connection
type App struct {
	Router     *mux.Router
	Config     *config.Config
	Socket     *socketio.Server
	Scheduler  *scheduler.Scheduler
	Dispatcher *dispatch.Dispatcher

	dbHelper databases.DatabaseHelper
}

// Initialize connects to mongo, configures stripe and metrics, and builds the
// router with all routes registered.
func (a *App) Initialize() error {
	client, err := databases.NewClient(a.Config)
	if err != nil {
		return err
	}
	if err := client.Connect(); err != nil {
		return err
	}
	a.dbHelper = databases.NewDatabase(a.Config, client)

	stripe.Key = a.Config.StripeSecretKey
	api.InitMetrics(10000, 1*time.Hour)

	a.Router = a.New()
	return nil
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()

	userDB := databases.NewUserDatabase(a.dbHelper)
	emergencyDB := databases.NewEmergencyDatabase(a.dbHelper)
	ambulanceDB := databases.NewAmbulanceDatabase(a.dbHelper)
	campDB := databases.NewHealthCampDatabase(a.dbHelper)
	recordDB := databases.NewMedicalRecordDatabase(a.dbHelper)
	notificationDB := databases.NewNotificationDatabase(a.dbHelper)
	reportDB := databases.NewReportDatabase(a.dbHelper)
	chatDB := databases.NewChatSessionDatabase(a.dbHelper)
	lockDB := databases.NewSchedulerLockDatabase(a.dbHelper)

	m := api.MiddlewareDB{DB: userDB, JWTSecret: a.Config.JWTSecret}
	m.SetupGoGuardian()

	a.Socket = NewSocketServer(ambulanceDB)
	broadcaster := SocketBroadcaster{Server: a.Socket}

	notifier := dispatch.NewNotifier(notificationDB, userDB, a.Config.SendgridAPIKey, broadcaster)
	classifier := dispatch.NewHTTPClassifier(a.Config.AIServiceURL)
	a.Dispatcher = dispatch.NewDispatcher(emergencyDB, ambulanceDB, classifier, broadcaster, notifier)
	a.Scheduler = scheduler.New(lockDB, chatDB, a.Dispatcher)

	u := User{DB: userDB}
	e := Emergency{DB: emergencyDB, Dispatcher: a.Dispatcher}
	amb := Ambulance{DB: ambulanceDB, Broadcaster: broadcaster}
	camp := HealthCamp{DB: campDB, Notifier: notifier}
	record := MedicalRecord{DB: recordDB}
	notification := Notification{DB: notificationDB}
	report := Report{DB: reportDB, EmergencyDB: emergencyDB, RecordDB: recordDB}
	dashboard := Dashboard{EmergencyDB: emergencyDB, AmbulanceDB: ambulanceDB, CampDB: campDB, UserDB: userDB}
	chatbot := Chatbot{DB: chatDB, Chat: dispatch.NewHTTPChat(a.Config.AIServiceURL)}
	billing := Billing{DB: emergencyDB, BaseURL: a.Config.BaseURL}
	upload := Cloudinary{}
	metrics := Metrics{}
	telemetry := Telemetry{DB: ambulanceDB, Server: a.Socket}

	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	r.HandleFunc("/api/v1/register", u.RegisterUserHandler).Methods("POST")
	r.HandleFunc("/api/v1/token", m.CreateToken).Methods("GET")

	// long-lived connections bypass auth middleware and timeouts
	r.Handle("/socket.io/", a.Socket)
	r.HandleFunc("/api/v1/telemetry", telemetry.TelemetryHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/emergency", api.Middleware(http.HandlerFunc(e.EmergencyCreateHandler))).Methods("POST")
	apiCreate.Handle("/emergencies", api.Middleware(http.HandlerFunc(e.EmergenciesHandler))).Methods("GET")
	apiCreate.Handle("/emergencies/active", api.Middleware(http.HandlerFunc(e.ActiveEmergenciesHandler))).Methods("GET")
	apiCreate.Handle("/emergencies/nearby", api.Middleware(http.HandlerFunc(e.NearbyEmergenciesHandler))).Methods("GET")
	apiCreate.Handle("/emergency/{emergency_id}", api.Middleware(http.HandlerFunc(e.EmergencyByIDHandler))).Methods("GET")
	apiCreate.Handle("/emergency/{emergency_id}/status", api.Middleware(http.HandlerFunc(e.EmergencyStatusHandler))).Methods("PUT")
	apiCreate.Handle("/emergency/{emergency_id}/timeline", api.Middleware(http.HandlerFunc(e.EmergencyTimelineHandler))).Methods("GET")
	apiCreate.Handle("/emergency/{emergency_id}/doctor", api.MiddlewareWithRoles(http.HandlerFunc(e.EmergencyDoctorHandler),
		string(models.RoleAdmin), string(models.RoleDoctor))).Methods("PUT")
	apiCreate.Handle("/emergency/{emergency_id}/cost", api.Middleware(http.HandlerFunc(billing.SetCostHandler))).Methods("PUT")
	apiCreate.Handle("/emergency/{emergency_id}/checkout", api.Middleware(http.HandlerFunc(billing.CheckoutHandler))).Methods("POST")

	apiCreate.Handle("/ambulance", api.MiddlewareWithRoles(http.HandlerFunc(amb.AmbulanceCreateHandler),
		string(models.RoleAdmin), string(models.RoleAmbulanceDriver))).Methods("POST")
	apiCreate.Handle("/ambulances", api.Middleware(http.HandlerFunc(amb.AmbulancesHandler))).Methods("GET")
	apiCreate.Handle("/ambulances/nearest", api.Middleware(http.HandlerFunc(amb.NearestAmbulancesHandler))).Methods("GET")
	apiCreate.Handle("/ambulance/{ambulance_id}", api.Middleware(http.HandlerFunc(amb.AmbulanceByIDHandler))).Methods("GET")
	apiCreate.Handle("/ambulance/{ambulance_id}", api.Middleware(http.HandlerFunc(amb.AmbulanceDeleteHandler))).Methods("DELETE")
	apiCreate.Handle("/ambulance/{ambulance_id}/status", api.Middleware(http.HandlerFunc(amb.AmbulanceStatusHandler))).Methods("PUT")
	apiCreate.Handle("/ambulance/{ambulance_id}/location", api.Middleware(http.HandlerFunc(amb.AmbulanceLocationHandler))).Methods("PUT")
	apiCreate.Handle("/ambulance/{ambulance_id}/history", api.Middleware(http.HandlerFunc(amb.AmbulanceHistoryHandler))).Methods("GET")
	apiCreate.Handle("/ambulance/{ambulance_id}/tracking", api.Middleware(http.HandlerFunc(amb.AmbulanceTrackingHandler))).Methods("GET")
	apiCreate.Handle("/ambulance/{ambulance_id}/fuel", api.Middleware(http.HandlerFunc(amb.AmbulanceFuelHandler))).Methods("PUT")
	apiCreate.Handle("/ambulance/{ambulance_id}/assistant", api.Middleware(http.HandlerFunc(amb.AmbulanceAssistantHandler))).Methods("PUT")

	apiCreate.Handle("/users", api.Middleware(http.HandlerFunc(u.UsersHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserByIDHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserUpdateHandler))).Methods("PUT")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserDeleteHandler))).Methods("DELETE")

	apiCreate.Handle("/camp", api.Middleware(http.HandlerFunc(camp.CampCreateHandler))).Methods("POST")
	apiCreate.Handle("/camps", api.Middleware(http.HandlerFunc(camp.CampsHandler))).Methods("GET")
	apiCreate.Handle("/camp/{camp_id}", api.Middleware(http.HandlerFunc(camp.CampByIDHandler))).Methods("GET")
	apiCreate.Handle("/camp/{camp_id}", api.Middleware(http.HandlerFunc(camp.CampDeleteHandler))).Methods("DELETE")
	apiCreate.Handle("/camp/{camp_id}/register", api.Middleware(http.HandlerFunc(camp.CampRegisterHandler))).Methods("POST")
	apiCreate.Handle("/camp/{camp_id}/status", api.Middleware(http.HandlerFunc(camp.CampStatusHandler))).Methods("PUT")

	apiCreate.Handle("/record", api.Middleware(http.HandlerFunc(record.RecordCreateHandler))).Methods("POST")
	apiCreate.Handle("/record/{record_id}", api.Middleware(http.HandlerFunc(record.RecordByIDHandler))).Methods("GET")
	apiCreate.Handle("/record/{record_id}", api.Middleware(http.HandlerFunc(record.RecordUpdateHandler))).Methods("PUT")
	apiCreate.Handle("/record/{record_id}", api.Middleware(http.HandlerFunc(record.RecordDeleteHandler))).Methods("DELETE")
	apiCreate.Handle("/patient/{patient_id}/records", api.Middleware(http.HandlerFunc(record.PatientRecordsHandler))).Methods("GET")

	apiCreate.Handle("/user/{user_id}/notifications", api.Middleware(http.HandlerFunc(notification.UserNotificationsHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}/notifications/unread-count", api.Middleware(http.HandlerFunc(notification.UnreadCountHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}/notifications/read-all", api.Middleware(http.HandlerFunc(notification.MarkAllReadHandler))).Methods("PUT")
	apiCreate.Handle("/notification/{notification_id}/read", api.Middleware(http.HandlerFunc(notification.MarkReadHandler))).Methods("PUT")
	apiCreate.Handle("/notification/{notification_id}", api.Middleware(http.HandlerFunc(notification.NotificationDeleteHandler))).Methods("DELETE")

	apiCreate.Handle("/report", api.Middleware(http.HandlerFunc(report.ReportGenerateHandler))).Methods("POST")
	apiCreate.Handle("/reports", api.Middleware(http.HandlerFunc(report.ReportsHandler))).Methods("GET")
	apiCreate.Handle("/report/{report_id}", api.Middleware(http.HandlerFunc(report.ReportByIDHandler))).Methods("GET")
	apiCreate.Handle("/report/{report_id}", api.Middleware(http.HandlerFunc(report.ReportDeleteHandler))).Methods("DELETE")

	apiCreate.Handle("/dashboard/summary", api.Middleware(http.HandlerFunc(dashboard.SummaryHandler))).Methods("GET")

	apiCreate.Handle("/chatbot/message", api.Middleware(http.HandlerFunc(chatbot.ChatMessageHandler))).Methods("POST")
	apiCreate.Handle("/chatbot/session/{session_id}", api.Middleware(http.HandlerFunc(chatbot.ChatSessionHandler))).Methods("GET")
	apiCreate.Handle("/chatbot/session/{session_id}", api.Middleware(http.HandlerFunc(chatbot.ChatSessionDeleteHandler))).Methods("DELETE")

	apiCreate.Handle("/upload", api.Middleware(http.HandlerFunc(upload.UploadHandler))).Methods("POST")

	apiCreate.Handle("/metrics/summary", api.Middleware(http.HandlerFunc(metrics.SummaryHandler))).Methods("GET")
	apiCreate.Handle("/metrics/routes", api.Middleware(http.HandlerFunc(metrics.RoutesHandler))).Methods("GET")
	apiCreate.Handle("/metrics/traces", api.Middleware(http.HandlerFunc(metrics.TracesHandler))).Methods("GET")
	apiCreate.Handle("/metrics/slowest", api.Middleware(http.HandlerFunc(metrics.SlowestRoutesHandler))).Methods("GET")
	apiCreate.Handle("/metrics/frequent", api.Middleware(http.HandlerFunc(metrics.FrequentRoutesHandler))).Methods("GET")

	return r
}

// healthCheckHandler will return the current health of the API
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	b, _ := json.Marshal(models.HealthCheckResponse{Alive: true})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
