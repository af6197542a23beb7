package store

import (
	"context"
	"sort"

	"github.com/teranos/whereabouts/errors"
)

// Ingest persists one data-collection batch atomically: it resolves the
// hierarchy and inserts every sample with its readings inside a single
// transaction. On any failure nothing persists: no user, place, location,
// sample or reading from this request survives a rollback.
//
// An empty samples slice is tolerated: the hierarchy is still resolved
// (and possibly created) and SamplesCollected reports zero.
func (s *SQLStore) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if err := validateIngest(req); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.WrapPersistence(err, "begin ingest transaction")
	}
	// No-op after a successful commit; guarantees rollback on every
	// other exit path.
	defer tx.Rollback()

	user, place, location, err := s.Resolve(ctx, tx, req.Username, req.Place, req.Location)
	if err != nil {
		return nil, err
	}

	for _, sample := range req.Samples {
		res, err := tx.ExecContext(ctx, sampleInsertQuery, location.ID, NormalizeTimestamp(sample.Timestamp))
		if err != nil {
			return nil, errors.WrapPersistence(err, "insert sample")
		}
		sampleID, err := res.LastInsertId()
		if err != nil {
			return nil, errors.WrapPersistence(err, "sample id")
		}

		// Insert readings in sorted bssid order. Keys are unique so order
		// does not affect correctness, but determinism eases testing.
		bssids := make([]string, 0, len(sample.Readings))
		for bssid := range sample.Readings {
			bssids = append(bssids, bssid)
		}
		sort.Strings(bssids)

		for _, bssid := range bssids {
			if _, err := tx.ExecContext(ctx, readingInsertQuery, sampleID, bssid, sample.Readings[bssid]); err != nil {
				return nil, errors.WrapPersistence(err, "insert rssi reading")
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.WrapPersistence(err, "commit ingest transaction")
	}

	s.logger.Infow("Samples ingested",
		"username", req.Username,
		"place_id", place.ID,
		"location_id", location.ID,
		"samples", len(req.Samples),
	)

	return &IngestResult{
		UserID:           user.ID,
		PlaceID:          place.ID,
		LocationID:       location.ID,
		SamplesCollected: len(req.Samples),
	}, nil
}

func validateIngest(req IngestRequest) error {
	if req.Username == "" {
		return errors.NewInvalidRequest("username must not be empty")
	}
	if req.Place == "" {
		return errors.NewInvalidRequest("place must not be empty")
	}
	if req.Location == "" {
		return errors.NewInvalidRequest("location must not be empty")
	}
	for i, sample := range req.Samples {
		if sample.Timestamp.IsZero() {
			return errors.NewInvalidRequest("sample %d has no timestamp", i)
		}
		for bssid := range sample.Readings {
			if bssid == "" {
				return errors.NewInvalidRequest("sample %d has a reading with an empty bssid", i)
			}
		}
	}
	return nil
}
