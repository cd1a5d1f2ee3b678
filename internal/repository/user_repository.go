package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/repository/models"
)

const userColumns = "user_id, employee_id, email, role, created_at, last_login_at"

// GetUser retrieves a user profile by uid.
func (s *OracleStore) GetUser(ctx context.Context, uid string) (*domain.User, error) {
	var user models.User
	err := GetExecutor(ctx, s.db).GetContext(ctx, &user, "SELECT "+userColumns+" FROM users WHERE user_id = :1", uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Return nil, nil for not found
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return toDomainUser(&user), nil
}

func (s *OracleStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []models.User
	if err := GetExecutor(ctx, s.db).SelectContext(ctx, &rows, "SELECT "+userColumns+" FROM users ORDER BY user_id"); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]domain.User, 0, len(rows))
	for i := range rows {
		out = append(out, *toDomainUser(&rows[i]))
	}
	return out, nil
}
