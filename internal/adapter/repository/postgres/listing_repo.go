package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
)

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

const listingColumns = `id, make, model, year, color, price, mileage, body_type,
	fuel_type, transmission, seats, description, status, featured, images, created_at`

func scanListing(row pgx.Row) (*domain.CarListing, error) {
	var l domain.CarListing
	err := row.Scan(
		&l.ID, &l.Make, &l.Model, &l.Year, &l.Color, &l.Price, &l.Mileage,
		&l.BodyType, &l.FuelType, &l.Transmission, &l.Seats, &l.Description,
		&l.Status, &l.Featured, &l.Images, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.CarListing) error {
	const query = `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.Make, l.Model, l.Year, l.Color, l.Price, l.Mileage,
		l.BodyType, l.FuelType, l.Transmission, l.Seats, l.Description,
		l.Status, l.Featured, l.Images, l.CreatedAt,
	)
	if err != nil {
		return &domain.UpstreamError{Service: "postgres", Err: fmt.Errorf("insert listing: %w", err)}
	}
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, query string) ([]*domain.CarListing, error) {
	sql := `SELECT ` + listingColumns + ` FROM listings`
	var args []any
	if q := strings.TrimSpace(query); q != "" {
		sql += ` WHERE make ILIKE $1 OR model ILIKE $1 OR color ILIKE $1`
		args = append(args, "%"+q+"%")
	}
	sql += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "postgres", Err: fmt.Errorf("search listings: %w", err)}
	}
	defer rows.Close()

	return collectListings(rows)
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.CarListing, error) {
	const query = `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, &domain.UpstreamError{Service: "postgres", Err: fmt.Errorf("find listing: %w", err)}
	}
	return l, nil
}

func (r *ListingRepository) FindFeatured(ctx context.Context, limit int) ([]*domain.CarListing, error) {
	const query = `SELECT ` + listingColumns + ` FROM listings
		WHERE featured AND status = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, domain.StatusAvailable, limit)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "postgres", Err: fmt.Errorf("find featured: %w", err)}
	}
	defer rows.Close()

	return collectListings(rows)
}

// UpdateFlags changes only the fields the patch carries.
func (r *ListingRepository) UpdateFlags(ctx context.Context, id string, patch domain.ListingPatch) error {
	var sets []string
	args := []any{id}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, "status = $"+strconv.Itoa(len(args)))
	}
	if patch.Featured != nil {
		args = append(args, *patch.Featured)
		sets = append(sets, "featured = $"+strconv.Itoa(len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	query := `UPDATE listings SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return &domain.UpstreamError{Service: "postgres", Err: fmt.Errorf("update listing flags: %w", err)}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return &domain.UpstreamError{Service: "postgres", Err: fmt.Errorf("delete listing: %w", err)}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func collectListings(rows pgx.Rows) ([]*domain.CarListing, error) {
	listings := make([]*domain.CarListing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, &domain.UpstreamError{Service: "postgres", Err: fmt.Errorf("scan listing: %w", err)}
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.UpstreamError{Service: "postgres", Err: err}
	}
	return listings, nil
}
