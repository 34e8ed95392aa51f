package repository

import (
	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

const locationColumns = `id, label, feed_url, created_at, version`

func locationDst(location *domain.Location) []any {
	return []any{&location.ID, &location.Label, &location.FeedURL, &location.CreatedAt, &location.Version}
}

func (r *Repository) GetAllLocations() ([]*domain.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY id`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0)
	for rows.Next() {
		location := &domain.Location{}
		if err := rows.Scan(locationDst(location)...); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}

// GetLocationsByIDs keeps the order of ids. Unknown ids are silently skipped.
func (r *Repository) GetLocationsByIDs(ids []int64) ([]*domain.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = ANY($1)`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]*domain.Location, len(ids))
	for rows.Next() {
		location := &domain.Location{}
		if err := rows.Scan(locationDst(location)...); err != nil {
			return nil, err
		}
		byID[location.ID] = location
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	locations := make([]*domain.Location, 0, len(byID))
	for _, id := range ids {
		if location, ok := byID[id]; ok {
			locations = append(locations, location)
			delete(byID, id)
		}
	}

	return locations, nil
}

func (r *Repository) GetLocationByID(id int64) (*domain.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	location := &domain.Location{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(locationDst(location)...); err != nil {
		return nil, err
	}

	return location, nil
}

func (r *Repository) CreateLocation(location *domain.Location) error {
	query := `
		INSERT INTO locations (label, feed_url)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, location.Label, location.FeedURL).Scan(&location.ID, &location.CreatedAt, &location.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateLocation(location *domain.Location) error {
	query := `
		UPDATE locations
		SET label = $1, feed_url = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{location.Label, location.FeedURL, location.ID, location.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&location.CreatedAt, &location.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteLocation(id int64) error {
	query := `DELETE FROM locations WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
