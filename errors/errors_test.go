package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelWrapping(t *testing.T) {
	err := Wrap(ErrNotFound, "place 42")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsInvalidRequest(err))

	err = NewInvalidRequest("bad rssi value %q", "loud")
	assert.True(t, IsInvalidRequest(err))

	err = WrapPersistence(New("disk io"), "insert sample")
	assert.True(t, IsPersistence(err))
	assert.Contains(t, err.Error(), "insert sample")
}

func TestWrapPreservesTypeThroughLayers(t *testing.T) {
	inner := NewNotFound("location %d not found", 7)
	outer := Wrap(Wrap(inner, "export"), "handler")
	assert.True(t, IsNotFound(outer))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewInvalidRequest("bad shape")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NewNotFound("no such place")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(WrapPersistence(New("down"), "ingest")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(New("mystery")))
}
