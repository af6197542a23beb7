package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportDownload(t *testing.T) {
	env := newTestEnv(t, &fakeClassifier{})
	result := env.seedSamples(t,
		map[string]int{"AA:BB": -50, "CC:DD": -70},
		map[string]int{"AA:BB": -55},
	)

	resp, err := http.Get(fmt.Sprintf("%s/output/%d", env.httpServer.URL, result.PlaceID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t,
		fmt.Sprintf("attachment; filename=place_%d.csv", result.PlaceID),
		resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "location,AA:BB,CC:DD", lines[0])
	assert.Equal(t, "Kitchen,-50,-70", lines[1])
	// Second sample never saw CC:DD: sentinel fill
	assert.Equal(t, "Kitchen,-55,-100", lines[2])
}

func TestExportPlaceMissing(t *testing.T) {
	env := newTestEnv(t, &fakeClassifier{})

	resp, err := http.Get(env.httpServer.URL + "/output/999")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportRejectsNonNumericID(t *testing.T) {
	env := newTestEnv(t, &fakeClassifier{})

	resp, err := http.Get(env.httpServer.URL + "/output/home")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
