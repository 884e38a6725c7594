package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// GeozoneRepo implements ports.GeozoneRepository.
type GeozoneRepo struct {
	db *DB
}

func NewGeozoneRepo(db *DB) *GeozoneRepo { return &GeozoneRepo{db: db} }

const geozoneColumns = `id, name, final_address, geometry, address, contact_number,
	is_public, is_private, created_by, created_at`

func (r *GeozoneRepo) Create(ctx context.Context, gz *domain.Geozone) error {
	geom, err := EncodeGeometry(gz.Geometry)
	if err != nil {
		return err
	}
	addr, err := json.Marshal(gz.Address)
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}
	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO geozones (name, final_address, geometry_kind, geometry, address,
		                      contact_number, is_public, is_private, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, gz.Name, gz.FinalAddress, string(gz.Geometry.Kind), geom, addr,
		gz.ContactNumber, gz.IsPublic, gz.IsPrivate, gz.CreatedBy,
	).Scan(&gz.ID, &gz.CreatedAt)
	return mapErr(err)
}

func (r *GeozoneRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM geozones WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GeozoneRepo) GetByID(ctx context.Context, id string) (*domain.Geozone, error) {
	gz, err := scanGeozone(r.db.Pool.QueryRow(ctx, `SELECT `+geozoneColumns+` FROM geozones WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return gz, nil
}

func (r *GeozoneRepo) List(ctx context.Context) ([]domain.Geozone, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+geozoneColumns+` FROM geozones ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Geozone
	for rows.Next() {
		gz, err := scanGeozone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *gz)
	}
	return out, rows.Err()
}

func scanGeozone(row pgx.Row) (*domain.Geozone, error) {
	var (
		gz         domain.Geozone
		geom, addr []byte
	)
	if err := row.Scan(&gz.ID, &gz.Name, &gz.FinalAddress, &geom, &addr, &gz.ContactNumber,
		&gz.IsPublic, &gz.IsPrivate, &gz.CreatedBy, &gz.CreatedAt); err != nil {
		return nil, err
	}
	g, err := DecodeGeometry(geom)
	if err != nil {
		return nil, fmt.Errorf("geozone %s: %w", gz.ID, err)
	}
	gz.Geometry = g
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &gz.Address); err != nil {
			return nil, fmt.Errorf("geozone %s address: %w", gz.ID, err)
		}
	}
	return &gz, nil
}
