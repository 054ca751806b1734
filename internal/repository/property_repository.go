package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"estatescout/internal/models"
)

type PropertyRepository struct {
	pool *pgxpool.Pool
}

var _ PropertyStore = (*PropertyRepository)(nil)

func NewPropertyRepository(pool *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{pool: pool}
}

const propertyColumns = `id, title, description, type, amenities, area, price, location, images, thumbnail, owner_id, created_at, updated_at`

func scanProperty(row pgx.Row) (models.Property, error) {
	var p models.Property
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Type,
		&p.Amenities,
		&p.Area,
		&p.Price,
		&p.Location,
		&p.Images,
		&p.Thumbnail,
		&p.OwnerID,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Property{}, ErrPropertyNotFound
		}
		return models.Property{}, err
	}
	return p, nil
}

func (r *PropertyRepository) Create(ctx context.Context, p models.Property) error {
	const query = `
		INSERT INTO properties (
			id, title, description, type, amenities, area, price, location, images, thumbnail, owner_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()
		)
	`

	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.Type,
		amenities,
		p.Area,
		p.Price,
		p.Location,
		p.Images,
		p.Thumbnail,
		p.OwnerID,
	)
	return err
}

func (r *PropertyRepository) List(ctx context.Context) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties ORDER BY created_at DESC`
	return r.query(ctx, query)
}

func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE owner_id = $1 ORDER BY created_at DESC`
	return r.query(ctx, query, ownerID)
}

func (r *PropertyRepository) query(ctx context.Context, query string, args ...any) ([]models.Property, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	properties := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (r *PropertyRepository) GetByID(ctx context.Context, id string) (models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	return scanProperty(r.pool.QueryRow(ctx, query, id))
}

func (r *PropertyRepository) Update(ctx context.Context, id string, update models.PropertyUpdate) (models.Property, error) {
	query := `
		UPDATE properties
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    type = COALESCE($4, type),
		    amenities = COALESCE($5, amenities),
		    area = COALESCE($6, area),
		    price = COALESCE($7, price),
		    location = COALESCE($8, location),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + propertyColumns

	return scanProperty(r.pool.QueryRow(ctx, query,
		id,
		update.Title,
		update.Description,
		update.Type,
		update.Amenities,
		update.Area,
		update.Price,
		update.Location,
	))
}

func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM properties WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}
	return nil
}
