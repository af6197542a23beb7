package store

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/teranos/whereabouts/errors"
)

// Query constants
const (
	userSelectByNameQuery = `
		SELECT id, username FROM users WHERE username = ?`

	userInsertQuery = `
		INSERT INTO users (username) VALUES (?)`

	placeSelectByIDQuery = `
		SELECT id, name, user_id FROM places WHERE id = ?`

	placeSelectByNameQuery = `
		SELECT id, name, user_id FROM places WHERE user_id = ? AND name = ?`

	placeInsertQuery = `
		INSERT INTO places (name, user_id) VALUES (?, ?)`

	locationSelectByNameQuery = `
		SELECT id, name, place_id FROM locations WHERE place_id = ? AND name = ?`

	locationSelectByPlaceQuery = `
		SELECT id, name, place_id FROM locations WHERE place_id = ? ORDER BY id`

	locationInsertQuery = `
		INSERT INTO locations (name, place_id) VALUES (?, ?)`

	sampleInsertQuery = `
		INSERT INTO samples (location_id, timestamp) VALUES (?, ?)`

	readingInsertQuery = `
		INSERT INTO rssi_readings (sample_id, bssid, rssi) VALUES (?, ?, ?)`

	readingsByLocationQuery = `
		SELECT s.id, r.bssid, r.rssi
		FROM samples s
		LEFT JOIN rssi_readings r ON r.sample_id = s.id
		WHERE s.location_id = ?
		ORDER BY s.id, r.bssid`
)

// SQLStore implements the entity store on database/sql.
// Correctness under concurrent writers rests on the store's transactions
// and unique constraints; SQLStore holds no in-process locks.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLStore creates a new SQL-backed entity store. A nil logger is
// replaced with a no-op logger.
func NewSQLStore(db *sql.DB, logger *zap.SugaredLogger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SQLStore{
		db:     db,
		logger: logger,
	}
}

// GetPlace looks up a place by id
func (s *SQLStore) GetPlace(ctx context.Context, placeID int64) (*Place, error) {
	var p Place
	err := s.db.QueryRowContext(ctx, placeSelectByIDQuery, placeID).Scan(&p.ID, &p.Name, &p.UserID)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("place with ID %d not found", placeID)
	}
	if err != nil {
		return nil, errors.WrapPersistence(err, "select place")
	}
	return &p, nil
}

// GetLocationsByPlace lists all locations under a place, ordered by id
func (s *SQLStore) GetLocationsByPlace(ctx context.Context, placeID int64) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx, locationSelectByPlaceQuery, placeID)
	if err != nil {
		return nil, errors.WrapPersistence(err, "select locations")
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.PlaceID); err != nil {
			return nil, errors.WrapPersistence(err, "scan location")
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapPersistence(err, "iterate locations")
	}
	return locations, nil
}

// TableCounts holds per-table row counts for operational visibility
type TableCounts struct {
	Users     int64
	Places    int64
	Locations int64
	Samples   int64
	Readings  int64
}

// Stats returns row counts for every fingerprint table
func (s *SQLStore) Stats(ctx context.Context) (*TableCounts, error) {
	var counts TableCounts
	for _, q := range []struct {
		table string
		dest  *int64
	}{
		{"users", &counts.Users},
		{"places", &counts.Places},
		{"locations", &counts.Locations},
		{"samples", &counts.Samples},
		{"rssi_readings", &counts.Readings},
	} {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+q.table).Scan(q.dest); err != nil {
			return nil, errors.WrapPersistence(err, "count "+q.table)
		}
	}
	return &counts, nil
}
