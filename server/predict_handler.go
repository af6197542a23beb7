package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/teranos/whereabouts/classifier"
	"github.com/teranos/whereabouts/errors"
)

// WebSocket timeout constants following Gorilla best practices
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer (a reading is a small map)
	maxMessageSize = 64 * 1024
)

// Close codes for pre-open session failures. 4xxx is the private-use
// range; clients key retry behavior off these.
const (
	closePlaceNotFound  = 4004
	closeNoTrainedModel = 4005
)

type sessionAck struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	PlaceID int64  `json:"place_id"`
}

type sessionError struct {
	Error string `json:"error"`
}

// noPrediction is sent when the classifier returns an empty result. It is
// a structured response, not a session fault.
type noPrediction struct {
	Error      string  `json:"error"`
	Prediction *string `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

type predictionResponse struct {
	Prediction     string                  `json:"prediction"`
	Confidence     float64                 `json:"confidence"`
	AllPredictions []classifier.Prediction `json:"all_predictions"`
}

// HandlePredict runs one streaming prediction session.
//
// State machine: the place-existence and trained-model checks run before
// the session opens; failing either closes the connection with a distinct
// code without ever entering the open state. Once open, each inbound
// reading is handled in isolation; a malformed message produces an error
// response on the channel and the session stays open.
func (s *Server) HandlePredict(w http.ResponseWriter, r *http.Request) {
	placeID, err := strconv.ParseInt(r.PathValue("place_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "place_id must be an integer")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("WebSocket upgrade failed", "place_id", placeID, "error", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	logger := s.logger.With("session_id", sessionID, "place_id", placeID, "remote", r.RemoteAddr)

	// Connecting: both checks must pass before the session opens
	place, err := s.store.GetPlace(r.Context(), placeID)
	if err != nil {
		if errors.IsNotFound(err) {
			s.closeAbnormal(conn, closePlaceNotFound, "place not found")
			return
		}
		logger.Errorw("Place lookup failed", "error", err)
		s.closeAbnormal(conn, websocket.CloseInternalServerErr, "server error")
		return
	}
	if !s.registry.Available(placeID) {
		s.closeAbnormal(conn, closeNoTrainedModel, "no trained model")
		return
	}

	conn.SetReadLimit(maxMessageSize)

	if err := s.sendJSON(conn, sessionAck{
		Status:  "connected",
		Message: "Connected to prediction service for " + place.Name,
		PlaceID: placeID,
	}); err != nil {
		logger.Errorw("Failed to send session ack", "error", err)
		return
	}

	logger.Infow("Prediction session open")

	modelPath := s.registry.ModelPath(placeID)
	limiter := rate.NewLimiter(
		rate.Limit(s.cfg.Server.PredictRatePerSecond),
		s.cfg.Server.PredictRateBurst,
	)

	// Open: block on the next reading until the client disconnects
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				logger.Infow("Client disconnected from prediction session")
			} else {
				logger.Warnw("Prediction session read failed", "error", err)
			}
			return
		}

		if !limiter.Allow() {
			if err := s.sendJSON(conn, sessionError{Error: "rate limit exceeded"}); err != nil {
				return
			}
			continue
		}

		response := s.handleReading(r, logger, message, modelPath)
		if err := s.sendJSON(conn, response); err != nil {
			logger.Warnw("Prediction session write failed", "error", err)
			return
		}
	}
}

// handleReading validates one inbound message and runs inference.
// Every failure mode maps to a structured response; nothing here closes
// the session.
func (s *Server) handleReading(r *http.Request, logger loggerish, message []byte, modelPath string) interface{} {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(message, &envelope); err != nil {
		return sessionError{Error: "invalid JSON format"}
	}

	raw, ok := envelope["rssi_values"]
	if !ok {
		return sessionError{Error: `invalid data format, expected {"rssi_values": {"<bssid>": <rssi>, ...}}`}
	}

	var readings map[string]int
	if err := json.Unmarshal(raw, &readings); err != nil {
		return sessionError{Error: `invalid rssi_values format, expected {"<bssid>": <rssi>, ...}`}
	}

	predictions, err := s.classifier.Predict(r.Context(), readings, modelPath)
	if err != nil {
		logger.Errorw("Inference failed", "error", err)
		return sessionError{Error: "prediction failed"}
	}

	if len(predictions) == 0 {
		return noPrediction{Error: "could not make a prediction", Prediction: nil, Confidence: 0}
	}

	classifier.Rank(predictions)
	return predictionResponse{
		Prediction:     predictions[0].Location,
		Confidence:     predictions[0].Confidence,
		AllPredictions: predictions,
	}
}

// loggerish is the slice of the zap API handleReading needs; it keeps the
// function testable without a real session.
type loggerish interface {
	Errorw(msg string, keysAndValues ...interface{})
}

// newUpgrader builds the shared upgrader once at construction. The origin
// check reads server config, so it cannot be a package-level var.
func (s *Server) newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Non-browser clients send no Origin
				return true
			}
			return s.originAllowed(origin)
		},
	}
}

func (s *Server) sendJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// closeAbnormal sends a close frame with a machine-readable reason, then
// closes. Write failures here are ignored; the connection is going away
// either way.
func (s *Server) closeAbnormal(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(writeWait)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), deadline)
}
