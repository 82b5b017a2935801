package dispatch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/healx-platform/healx-api/dispatch"
	"github.com/healx-platform/healx-api/models"
)

func TestHTTPClassifierClassify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/predict-severity", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&body)
		assert.NoError(t, err)
		assert.Contains(t, body, "symptoms")

		json.NewEncoder(w).Encode(models.SeverityPrediction{
			Score:      0.91,
			Confidence: 0.87,
			Prediction: "critical",
		})
	}))
	defer server.Close()

	classifier := dispatch.NewHTTPClassifier(server.URL)
	prediction, err := classifier.Classify(context.Background(), []string{"chest pain", "shortness of breath"}, &models.Vitals{HeartRate: 130})

	assert.NoError(t, err)
	assert.Equal(t, 0.91, prediction.Score)
	assert.Equal(t, "critical", prediction.Prediction)
}

func TestHTTPClassifierErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	classifier := dispatch.NewHTTPClassifier(server.URL)
	prediction, err := classifier.Classify(context.Background(), []string{"fever"}, nil)

	assert.Error(t, err)
	assert.Nil(t, prediction)
}

func TestHTTPClassifierUnreachable(t *testing.T) {
	classifier := dispatch.NewHTTPClassifier("http://127.0.0.1:1")
	prediction, err := classifier.Classify(context.Background(), []string{"fever"}, nil)

	assert.Error(t, err)
	assert.Nil(t, prediction)
}
