// Package store implements the whereabouts entity store: the
// user → place → location hierarchy, sample ingestion, and CSV export.
package store

import "time"

// User owns places. Created lazily on first sighting during ingestion.
type User struct {
	ID       int64
	Username string
}

// Place belongs to one user. Names are unique per user.
type Place struct {
	ID     int64
	Name   string
	UserID int64
}

// Location belongs to one place. Names are unique per place.
type Location struct {
	ID      int64
	Name    string
	PlaceID int64
}

// SampleInput is one fingerprint observation to ingest: a client-supplied
// timestamp plus one RSSI reading per access point.
type SampleInput struct {
	Timestamp time.Time
	Readings  map[string]int
}

// IngestRequest is one data-collection batch for a single
// (username, place, location) triple.
type IngestRequest struct {
	Username string
	Place    string
	Location string
	Samples  []SampleInput
}

// IngestResult reports the hierarchy ids actually used (pre-existing or
// freshly created) and the number of samples written.
type IngestResult struct {
	UserID           int64
	PlaceID          int64
	LocationID       int64
	SamplesCollected int
}

// timestampLayout is the canonical naive-UTC storage form. Client
// timestamps are converted to UTC and the zone stripped before storage so
// values compare and sort consistently.
const timestampLayout = "2006-01-02 15:04:05"

// NormalizeTimestamp converts a client-supplied timestamp to the canonical
// naive-UTC storage representation.
func NormalizeTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
