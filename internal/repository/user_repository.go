package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/google/uuid"
)

type PgUserRepository struct {
	*base.Repository
}

func NewUserRepository(db base.Querier) *PgUserRepository {
	return &PgUserRepository{Repository: base.NewRepository(db)}
}

// Create создаёт нового пользователя. Аккаунты заводит внешний сервис
// аутентификации; метод нужен для синхронизации и тестов.
func (r *PgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (name, email, role, status, telegram_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		user.Name,
		user.Email,
		user.Role,
		user.Status,
		user.TelegramID,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, name, email, role, status, telegram_id, created_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.Status,
		&user.TelegramID,
		&user.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}

// UpdateStatus блокирует или разблокирует пользователя
func (r *PgUserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) error {
	affected, err := r.ExecAffected(ctx, `UPDATE users SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// List все пользователи в порядке регистрации
func (r *PgUserRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, name, email, role, status, telegram_id, created_at
		FROM users
		ORDER BY created_at, id
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var result []*model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Role,
			&user.Status,
			&user.TelegramID,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		result = append(result, &user)
	}

	return result, rows.Err()
}
