package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/healx-platform/healx-api/models"
)

// SeverityClassifier predicts emergency severity from symptoms and vitals
type SeverityClassifier interface {
	Classify(ctx context.Context, symptoms []string, vitals *models.Vitals) (*models.SeverityPrediction, error)
}

type httpClassifier struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClassifier returns a classifier backed by the severity prediction
// service at baseURL. The short timeout keeps a slow model from stalling
// dispatch; callers treat classifier errors as advisory.
func NewHTTPClassifier(baseURL string) SeverityClassifier {
	return &httpClassifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type classifyRequest struct {
	Symptoms []string       `json:"symptoms"`
	Vitals   *models.Vitals `json:"vitals,omitempty"`
}

func (c *httpClassifier) Classify(ctx context.Context, symptoms []string, vitals *models.Vitals) (*models.SeverityPrediction, error) {
	body, err := json.Marshal(classifyRequest{Symptoms: symptoms, Vitals: vitals})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/predict-severity", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("severity service returned status %d", resp.StatusCode)
	}

	prediction := &models.SeverityPrediction{}
	if err := json.NewDecoder(resp.Body).Decode(prediction); err != nil {
		return nil, err
	}
	return prediction, nil
}
