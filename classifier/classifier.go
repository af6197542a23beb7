// Package classifier defines the boundary to the external statistical
// classifier. The classifier itself is an opaque collaborator: it is
// trained out-of-process from exported CSV data and queried here with a
// feature vector of bssid → rssi readings.
package classifier

import (
	"context"
	"sort"
)

// Prediction is one ranked location guess
type Prediction struct {
	Location   string  `json:"location"`
	Confidence float64 `json:"confidence"`
}

// Classifier turns a feature vector into ranked location guesses using the
// trained model artifact at modelPath.
type Classifier interface {
	Predict(ctx context.Context, readings map[string]int, modelPath string) ([]Prediction, error)
}

// Rank sorts predictions descending by confidence, in place. The sort is
// stable: predictions with equal confidence keep the classifier's original
// relative order.
func Rank(predictions []Prediction) {
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Confidence > predictions[j].Confidence
	})
}
