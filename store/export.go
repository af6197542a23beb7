package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/teranos/whereabouts/errors"
)

// SentinelRSSI fills matrix cells where a sample has no reading for a
// bssid column. -100 dBm sits below any realistic reading, so the
// classifier treats it as "access point not seen".
const SentinelRSSI = -100

// locationSamples pairs a location name with its samples in insertion order
type locationSamples struct {
	name    string
	samples []map[string]int
}

// ExportPlace flattens every sample under a place into a dense
// bssid-indexed CSV matrix and writes it to w. Column order is
// lexicographic over all bssids seen anywhere under the place, so repeated
// exports of the same data are byte-identical.
//
// Each empty condition is reported distinctly rather than producing an
// empty file: missing place, place without locations, and locations
// without any readings all return not-found errors.
func (s *SQLStore) ExportPlace(ctx context.Context, placeID int64, w io.Writer) error {
	if _, err := s.GetPlace(ctx, placeID); err != nil {
		return err
	}

	locations, err := s.GetLocationsByPlace(ctx, placeID)
	if err != nil {
		return err
	}
	if len(locations) == 0 {
		return errors.NewNotFound("no locations found for place with ID %d", placeID)
	}

	bssidSet := make(map[string]struct{})
	var perLocation []locationSamples

	for _, location := range locations {
		samples, err := s.readingsByLocation(ctx, location.ID)
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			continue
		}
		for _, readings := range samples {
			for bssid := range readings {
				bssidSet[bssid] = struct{}{}
			}
		}
		perLocation = append(perLocation, locationSamples{name: location.Name, samples: samples})
	}

	if len(bssidSet) == 0 {
		return errors.NewNotFound("no RSSI data found for place with ID %d", placeID)
	}

	bssids := make([]string, 0, len(bssidSet))
	for bssid := range bssidSet {
		bssids = append(bssids, bssid)
	}
	sort.Strings(bssids)

	writer := csv.NewWriter(w)
	header := append([]string{"location"}, bssids...)
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "write csv header")
	}

	for _, ls := range perLocation {
		for _, readings := range ls.samples {
			row := make([]string, 0, len(bssids)+1)
			row = append(row, ls.name)
			for _, bssid := range bssids {
				rssi, ok := readings[bssid]
				if !ok {
					rssi = SentinelRSSI
				}
				row = append(row, strconv.Itoa(rssi))
			}
			if err := writer.Write(row); err != nil {
				return errors.Wrap(err, "write csv row")
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "flush csv")
	}
	return nil
}

// readingsByLocation loads each sample's readings map, in sample insertion
// order. Samples with no readings at all come back as empty maps and are
// carried through so they render as all-sentinel rows.
func (s *SQLStore) readingsByLocation(ctx context.Context, locationID int64) ([]map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, readingsByLocationQuery, locationID)
	if err != nil {
		return nil, errors.WrapPersistence(err, "select readings")
	}
	defer rows.Close()

	var samples []map[string]int
	var lastSampleID int64 = -1
	var current map[string]int

	for rows.Next() {
		var sampleID int64
		var bssid sql.NullString
		var rssi sql.NullInt64
		if err := rows.Scan(&sampleID, &bssid, &rssi); err != nil {
			return nil, errors.WrapPersistence(err, "scan reading")
		}
		if sampleID != lastSampleID {
			current = make(map[string]int)
			samples = append(samples, current)
			lastSampleID = sampleID
		}
		if bssid.Valid {
			current[bssid.String] = int(rssi.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapPersistence(err, "iterate readings")
	}
	return samples, nil
}
