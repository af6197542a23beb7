package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/whereabouts/config"
	"github.com/teranos/whereabouts/errors"
)

func TestRankDescendingWithStableTieBreak(t *testing.T) {
	predictions := []Prediction{
		{Location: "A", Confidence: 0.3},
		{Location: "B", Confidence: 0.7},
		{Location: "C", Confidence: 0.7},
	}

	Rank(predictions)

	// B arrived before C; equal confidences keep that order.
	assert.Equal(t, "B", predictions[0].Location)
	assert.Equal(t, "C", predictions[1].Location)
	assert.Equal(t, "A", predictions[2].Location)
}

func TestRankEmpty(t *testing.T) {
	var predictions []Prediction
	Rank(predictions)
	assert.Empty(t, predictions)
}

func TestHTTPClassifierPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "trained/3", req.Model)
		assert.Equal(t, -50, req.RSSIValues["AA:BB"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(predictResponse{Predictions: []Prediction{
			{Location: "Kitchen", Confidence: 0.8},
			{Location: "Hall", Confidence: 0.2},
		}})
	}))
	defer srv.Close()

	c := NewHTTPClassifier(config.ClassifierConfig{Endpoint: srv.URL, TimeoutSeconds: 5})
	predictions, err := c.Predict(context.Background(), map[string]int{"AA:BB": -50}, "trained/3")
	require.NoError(t, err)
	require.Len(t, predictions, 2)
	assert.Equal(t, "Kitchen", predictions[0].Location)
}

func TestHTTPClassifierServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model corrupt", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClassifier(config.ClassifierConfig{Endpoint: srv.URL, TimeoutSeconds: 5})
	_, err := c.Predict(context.Background(), map[string]int{"AA:BB": -50}, "trained/3")
	require.Error(t, err)
	assert.True(t, errors.IsInference(err))
}
