package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type User struct {
	ID           string
	Email        string
	FullName     string
	Role         Role
	ManagerID    string
	PasswordHash string
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	var role string
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, full_name, role, COALESCE(manager_id::text, ''), password_hash
    FROM users
    WHERE lower(email) = lower($1)
  `, email).Scan(&user.ID, &user.Email, &user.FullName, &role, &user.ManagerID, &user.PasswordHash)
	if err != nil {
		return User{}, err
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return User{}, err
	}
	user.Role = parsed
	return user, nil
}

func (s *Store) ManagerOf(ctx context.Context, userID string) (string, error) {
	var managerID string
	err := s.DB.QueryRow(ctx, "SELECT COALESCE(manager_id::text, '') FROM users WHERE id = $1", userID).Scan(&managerID)
	return managerID, err
}
