package server

import (
	"net/http"
	"time"

	"github.com/teranos/whereabouts/errors"
	"github.com/teranos/whereabouts/store"
)

type collectSample struct {
	Timestamp  string         `json:"timestamp"`
	RSSIValues map[string]int `json:"rssi_values"`
}

type collectRequest struct {
	Username string          `json:"username"`
	Place    string          `json:"place"`
	Location string          `json:"location"`
	Samples  []collectSample `json:"samples"`
}

type collectDetails struct {
	UserID           int64 `json:"user_id"`
	PlaceID          int64 `json:"place_id"`
	LocationID       int64 `json:"location_id"`
	SamplesCollected int   `json:"samples_collected"`
}

type collectResponse struct {
	Message string         `json:"message"`
	Details collectDetails `json:"details"`
}

// timestampLayouts accepted from clients, tried in order. Offsets are
// converted to UTC during ingestion; naive timestamps are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewInvalidRequest("unparseable timestamp %q", value)
}

// HandleCollect ingests one batch of labeled fingerprint samples.
// The whole batch commits atomically; on any failure nothing persists.
func (s *Server) HandleCollect(w http.ResponseWriter, r *http.Request) {
	var req collectRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}

	ingestReq := store.IngestRequest{
		Username: req.Username,
		Place:    req.Place,
		Location: req.Location,
		Samples:  make([]store.SampleInput, 0, len(req.Samples)),
	}
	for _, sample := range req.Samples {
		ts, err := parseTimestamp(sample.Timestamp)
		if err != nil {
			writeTaxonomyError(w, err)
			return
		}
		ingestReq.Samples = append(ingestReq.Samples, store.SampleInput{
			Timestamp: ts,
			Readings:  sample.RSSIValues,
		})
	}

	result, err := s.store.Ingest(r.Context(), ingestReq)
	if err != nil {
		s.logger.Errorw("Data collection failed",
			"username", req.Username,
			"place", req.Place,
			"location", req.Location,
			"error", err,
		)
		writeTaxonomyError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, collectResponse{
		Message: "Data collected successfully",
		Details: collectDetails{
			UserID:           result.UserID,
			PlaceID:          result.PlaceID,
			LocationID:       result.LocationID,
			SamplesCollected: result.SamplesCollected,
		},
	})
}
