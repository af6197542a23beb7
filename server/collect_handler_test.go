package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postCollect(t *testing.T, env *testEnv, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(env.httpServer.URL+"/collect", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCollectEndToEnd(t *testing.T) {
	env := newTestEnv(t, &fakeClassifier{})

	body := `{
		"username": "alice",
		"place": "Home",
		"location": "Kitchen",
		"samples": [
			{"timestamp": "2026-08-30T12:00:00Z", "rssi_values": {"AA:BB": -50, "CC:DD": -70}}
		]
	}`

	resp := postCollect(t, env, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var first collectResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&first))
	assert.Equal(t, "Data collected successfully", first.Message)
	assert.Equal(t, 1, first.Details.SamplesCollected)
	assert.NotZero(t, first.Details.UserID)

	// Second identical call creates zero new hierarchy rows
	resp2 := postCollect(t, env, body)
	require.Equal(t, http.StatusCreated, resp2.StatusCode)
	var second collectResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&second))
	assert.Equal(t, first.Details.UserID, second.Details.UserID)
	assert.Equal(t, first.Details.PlaceID, second.Details.PlaceID)
	assert.Equal(t, first.Details.LocationID, second.Details.LocationID)

	var users, places, locations int
	require.NoError(t, env.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&users))
	require.NoError(t, env.db.QueryRow("SELECT COUNT(*) FROM places").Scan(&places))
	require.NoError(t, env.db.QueryRow("SELECT COUNT(*) FROM locations").Scan(&locations))
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, places)
	assert.Equal(t, 1, locations)
}

func TestCollectAcceptsOffsetTimestamps(t *testing.T) {
	env := newTestEnv(t, &fakeClassifier{})

	resp := postCollect(t, env, `{
		"username": "alice",
		"place": "Home",
		"location": "Kitchen",
		"samples": [
			{"timestamp": "2026-08-30T17:30:00+05:30", "rssi_values": {"AA:BB": -50}}
		]
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var stored string
	require.NoError(t, env.db.QueryRow("SELECT timestamp FROM samples").Scan(&stored))
	assert.Equal(t, "2026-08-30 12:00:00", stored)
}

func TestCollectRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t, &fakeClassifier{})

	resp := postCollect(t, env, `{"username": "alice"`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCollectRejectsBadTimestamp(t *testing.T) {
	env := newTestEnv(t, &fakeClassifier{})

	resp := postCollect(t, env, `{
		"username": "alice",
		"place": "Home",
		"location": "Kitchen",
		"samples": [{"timestamp": "yesterday", "rssi_values": {"AA:BB": -50}}]
	}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Nothing persists on a validation failure
	var users int
	require.NoError(t, env.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&users))
	assert.Equal(t, 0, users)
}

func TestCollectRejectsMissingFields(t *testing.T) {
	env := newTestEnv(t, &fakeClassifier{})

	resp := postCollect(t, env, `{"username": "", "place": "Home", "location": "Kitchen", "samples": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, &fakeClassifier{})

	resp, err := http.Get(env.httpServer.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "whereabouts", health["service"])
}
