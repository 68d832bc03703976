package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/brunomoyse/tsb-service/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// код ошибки PostgreSQL unique_violation
const uniqueViolation = "23505"

var userColumns = []string{"id", "created_at", "updated_at", "name", "email", "email_verified_at", "password"}

// UserRepository хранит пользователей
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository создает новый экземпляр репозитория пользователей
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser сохраняет пользователя; занятый email даёт ErrUserExists
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	const op = "repository.postgres.user.CreateUser"

	sql, args, err := psql.Insert("users").
		Columns("id", "name", "email", "password").
		Values(user.ID, user.Name, user.Email, user.PasswordHash).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build users insert query: %w", op, err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return fmt.Errorf("%s: failed to insert user: %w", op, err)
	}
	return nil
}

// GetUserByEmail ищет пользователя по email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUser(ctx, "repository.postgres.user.GetUserByEmail", "email", email)
}

// GetUserByID ищет пользователя по id
func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getUser(ctx, "repository.postgres.user.GetUserByID", "id", id)
}

// column всегда константа из этого файла; uuid нельзя отдавать в squirrel.Eq,
// он развернёт массив в IN (...)
func (r *UserRepository) getUser(ctx context.Context, op, column string, value any) (model.User, error) {
	sql, args, err := psql.Select(userColumns...).
		From("users").
		Where(column+" = ?", value).
		ToSql()
	if err != nil {
		return model.User{}, fmt.Errorf("%s: failed to build user query: %w", op, err)
	}

	var u model.User
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Name, &u.Email, &u.EmailVerifiedAt, &u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return model.User{}, fmt.Errorf("%s: failed to query user: %w", op, err)
	}
	return u, nil
}
