package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"estatescout/internal/models"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

var _ UserStore = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, name, phone, profile_picture, role, posts, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Phone,
		&user.ProfilePicture,
		&user.Role,
		&user.Posts,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	stampCreated(&user)
	const query = `
		INSERT INTO users (
			id, email, password_hash, name, phone, profile_picture, role, posts, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, '{}', $8, $9
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Phone,
		user.ProfilePicture,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetMany(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[user.ID] = user
	}
	return out, rows.Err()
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (models.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE(NULLIF($2, ''), name),
		    phone = COALESCE(NULLIF($3, ''), phone),
		    profile_picture = COALESCE(NULLIF($4, ''), profile_picture),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, id, update.Name, update.Phone, update.ProfilePicture))
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) AddPost(ctx context.Context, userID, propertyID string) error {
	const query = `
		UPDATE users
		SET posts = array_append(array_remove(posts, $2), $2), updated_at = NOW()
		WHERE id = $1
	`
	return r.execOnUser(ctx, query, userID, propertyID)
}

func (r *UserRepository) RemovePost(ctx context.Context, userID, propertyID string) error {
	const query = `
		UPDATE users SET posts = array_remove(posts, $2), updated_at = NOW() WHERE id = $1
	`
	return r.execOnUser(ctx, query, userID, propertyID)
}

func (r *UserRepository) execOnUser(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
