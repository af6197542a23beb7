package store

import (
	"context"
	"database/sql"

	"github.com/teranos/whereabouts/db"
	"github.com/teranos/whereabouts/errors"
)

// Resolve idempotently resolves or creates the user → place → location
// hierarchy for the given names, inside the supplied transaction.
//
// Each level uses lookup, insert-on-absence, and re-select on a lost
// unique-constraint race, so concurrent callers with identical names
// converge on the same rows. The levels are strictly sequential: each
// child insert needs the parent's assigned id.
func (s *SQLStore) Resolve(ctx context.Context, tx *sql.Tx, username, placeName, locationName string) (*User, *Place, *Location, error) {
	user, err := s.resolveUser(ctx, tx, username)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "resolve user")
	}

	place, err := s.resolvePlace(ctx, tx, user.ID, placeName)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "resolve place")
	}

	location, err := s.resolveLocation(ctx, tx, place.ID, locationName)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "resolve location")
	}

	return user, place, location, nil
}

func (s *SQLStore) resolveUser(ctx context.Context, tx *sql.Tx, username string) (*User, error) {
	var u User
	err := tx.QueryRowContext(ctx, userSelectByNameQuery, username).Scan(&u.ID, &u.Username)
	if err == nil {
		return &u, nil
	}
	if err != sql.ErrNoRows {
		return nil, errors.WrapPersistence(err, "select user")
	}

	res, err := tx.ExecContext(ctx, userInsertQuery, username)
	if db.IsUniqueViolation(err) {
		// Lost the creation race; the winner's row is authoritative.
		conflict := errors.Wrap(errors.ErrConflict, "user "+username)
		s.logger.Debugw("User creation race resolved to existing row",
			"username", username, "error", conflict)
		if err := tx.QueryRowContext(ctx, userSelectByNameQuery, username).Scan(&u.ID, &u.Username); err != nil {
			return nil, errors.WrapPersistence(err, "re-select user after conflict")
		}
		return &u, nil
	}
	if err != nil {
		return nil, errors.WrapPersistence(err, "insert user")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.WrapPersistence(err, "user id")
	}
	return &User{ID: id, Username: username}, nil
}

func (s *SQLStore) resolvePlace(ctx context.Context, tx *sql.Tx, userID int64, name string) (*Place, error) {
	var p Place
	err := tx.QueryRowContext(ctx, placeSelectByNameQuery, userID, name).Scan(&p.ID, &p.Name, &p.UserID)
	if err == nil {
		return &p, nil
	}
	if err != sql.ErrNoRows {
		return nil, errors.WrapPersistence(err, "select place")
	}

	res, err := tx.ExecContext(ctx, placeInsertQuery, name, userID)
	if db.IsUniqueViolation(err) {
		if err := tx.QueryRowContext(ctx, placeSelectByNameQuery, userID, name).Scan(&p.ID, &p.Name, &p.UserID); err != nil {
			return nil, errors.WrapPersistence(err, "re-select place after conflict")
		}
		return &p, nil
	}
	if err != nil {
		return nil, errors.WrapPersistence(err, "insert place")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.WrapPersistence(err, "place id")
	}
	return &Place{ID: id, Name: name, UserID: userID}, nil
}

func (s *SQLStore) resolveLocation(ctx context.Context, tx *sql.Tx, placeID int64, name string) (*Location, error) {
	var l Location
	err := tx.QueryRowContext(ctx, locationSelectByNameQuery, placeID, name).Scan(&l.ID, &l.Name, &l.PlaceID)
	if err == nil {
		return &l, nil
	}
	if err != sql.ErrNoRows {
		return nil, errors.WrapPersistence(err, "select location")
	}

	res, err := tx.ExecContext(ctx, locationInsertQuery, name, placeID)
	if db.IsUniqueViolation(err) {
		if err := tx.QueryRowContext(ctx, locationSelectByNameQuery, placeID, name).Scan(&l.ID, &l.Name, &l.PlaceID); err != nil {
			return nil, errors.WrapPersistence(err, "re-select location after conflict")
		}
		return &l, nil
	}
	if err != nil {
		return nil, errors.WrapPersistence(err, "insert location")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.WrapPersistence(err, "location id")
	}
	return &Location{ID: id, Name: name, PlaceID: placeID}, nil
}
