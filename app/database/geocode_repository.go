package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lysyi3m/local-events/app/geo"
)

type GeocodeStore struct {
	db *DB
}

func NewGeocodeStore(db *DB) *GeocodeStore {
	return &GeocodeStore{db: db}
}

// GetGeocode returns nil, nil when the address is not cached
func (r *GeocodeStore) GetGeocode(address string) (*geo.Coordinate, error) {
	var coord geo.Coordinate
	err := r.db.QueryRow(`
		SELECT code, accuracy, lat, long
		FROM geocodes
		WHERE address = ?
	`, address).Scan(&coord.Code, &coord.Accuracy, &coord.Lat, &coord.Long)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get geocode: %w", err)
	}

	return &coord, nil
}

func (r *GeocodeStore) SaveGeocode(address string, coord geo.Coordinate) error {
	_, err := r.db.Exec(`
		INSERT INTO geocodes (address, code, accuracy, lat, long, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (address) DO UPDATE SET
			code = excluded.code,
			accuracy = excluded.accuracy,
			lat = excluded.lat,
			long = excluded.long,
			created_at = excluded.created_at
	`, address, coord.Code, coord.Accuracy, coord.Lat, coord.Long, formatTime(time.Now()))

	if err != nil {
		return fmt.Errorf("failed to save geocode: %w", err)
	}

	return nil
}
