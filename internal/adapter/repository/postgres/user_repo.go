package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// FindByAuthID resolves the identity-provider subject to a local account.
func (r *UserRepository) FindByAuthID(ctx context.Context, authID string) (*domain.User, error) {
	const query = `SELECT id, auth_id, email, name, created_at FROM users WHERE auth_id = $1`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, authID).Scan(&u.ID, &u.AuthID, &u.Email, &u.Name, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, &domain.UpstreamError{Service: "postgres", Err: fmt.Errorf("find user: %w", err)}
	}
	return &u, nil
}
