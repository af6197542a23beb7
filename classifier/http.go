package classifier

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/teranos/whereabouts/config"
	"github.com/teranos/whereabouts/errors"
)

// HTTPClassifier queries an inference service over HTTP. The service loads
// the model artifact named in each request and returns ranked guesses.
type HTTPClassifier struct {
	client *resty.Client
}

// NewHTTPClassifier creates a classifier client for the configured
// inference service
func NewHTTPClassifier(cfg config.ClassifierConfig) *HTTPClassifier {
	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(cfg.Timeout()).
		SetRetryCount(cfg.RetryCount)
	return &HTTPClassifier{client: client}
}

type predictRequest struct {
	Model      string         `json:"model"`
	RSSIValues map[string]int `json:"rssi_values"`
}

type predictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Predict sends the reading to the inference service and returns its
// ranked predictions. Transport failures and non-2xx responses surface as
// inference errors so sessions can report them per-message.
func (c *HTTPClassifier) Predict(ctx context.Context, readings map[string]int, modelPath string) ([]Prediction, error) {
	var result predictResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(predictRequest{Model: modelPath, RSSIValues: readings}).
		SetResult(&result).
		Post("/predict")
	if err != nil {
		return nil, errors.WrapInference(err, "classifier request")
	}
	if resp.IsError() {
		return nil, errors.WrapInference(
			errors.Newf("classifier returned status %d: %s", resp.StatusCode(), resp.String()),
			"classifier request")
	}
	return result.Predictions, nil
}
