package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healx-platform/healx-api/databases/mocks"
	"github.com/healx-platform/healx-api/models"
)

func TestReportGenerateHandlerDiseaseOutbreak(t *testing.T) {
	var mockReportDB = &mocks.ReportDatabase{}
	var mockRecordDB = &mocks.MedicalRecordDatabase{}

	mockRecordDB.On("Aggregate", mock.Anything, mock.Anything).Return([]map[string]interface{}{
		{"_id": "dengue", "count": int32(30)},
		{"_id": "influenza", "count": int32(10)},
	}, nil)
	mockReportDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"title":       "Q3 outbreak watch",
		"reportType":  "disease_outbreak",
		"generatedBy": primitive.NewObjectID().Hex(),
		"startDate":   "2026-07-01T00:00:00Z",
		"endDate":     "2026-09-30T23:59:59Z",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/report", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	rp := Report{DB: mockReportDB, EmergencyDB: &mocks.EmergencyDatabase{}, RecordDB: mockRecordDB}
	rp.ReportGenerateHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got models.Report
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got.DiseaseData, 2)
	assert.Equal(t, "dengue", got.DiseaseData[0].Disease)
	assert.Equal(t, 30, got.DiseaseData[0].Count)
	assert.InDelta(t, 75.0, got.DiseaseData[0].Percentage, 0.01)
}

func TestReportGenerateHandlerEmergencyAnalysis(t *testing.T) {
	var mockReportDB = &mocks.ReportDatabase{}
	var mockEmergencyDB = &mocks.EmergencyDatabase{}

	mockEmergencyDB.On("Aggregate", mock.Anything, mock.Anything).Return([]map[string]interface{}{
		{"total": int32(40), "completed": int32(30), "atHospital": int32(4), "averageSeverity": 2.5},
	}, nil)
	mockReportDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"title":       "August emergencies",
		"reportType":  "emergency_analysis",
		"generatedBy": primitive.NewObjectID().Hex(),
		"startDate":   "2026-08-01T00:00:00Z",
		"endDate":     "2026-08-31T23:59:59Z",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/report", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	rp := Report{DB: mockReportDB, EmergencyDB: mockEmergencyDB, RecordDB: &mocks.MedicalRecordDatabase{}}
	rp.ReportGenerateHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got models.Report
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 40, got.Statistics.TotalEmergencies)
	assert.InDelta(t, 0.75, got.Statistics.RecoveryRate, 0.001)
	assert.InDelta(t, 0.1, got.Statistics.AdmissionRate, 0.001)
	assert.InDelta(t, 2.5, got.Statistics.AverageSeverity, 0.001)
}

func TestReportGenerateHandlerUnknownType(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"title":       "mystery",
		"reportType":  "horoscope",
		"generatedBy": primitive.NewObjectID().Hex(),
		"startDate":   "2026-08-01T00:00:00Z",
		"endDate":     "2026-08-31T23:59:59Z",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/report", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	rp := Report{DB: &mocks.ReportDatabase{}, EmergencyDB: &mocks.EmergencyDatabase{}, RecordDB: &mocks.MedicalRecordDatabase{}}
	rp.ReportGenerateHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
