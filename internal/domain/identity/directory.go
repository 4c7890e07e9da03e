package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEmployeeNotFound = errors.New("employee not found in directory")

type EmployeeRecord struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Department  string `json:"department"`
	ManagerID   string `json:"managerId"`
}

// Directory resolves employee ids to org placement. The review engine only
// reads from it; employee records are owned elsewhere.
type Directory interface {
	EmployeeByID(ctx context.Context, employeeID string) (EmployeeRecord, error)
}

type AuthUser struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	EmployeeID   string
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) EmployeeByID(ctx context.Context, employeeID string) (EmployeeRecord, error) {
	var rec EmployeeRecord
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_id, display_name, department, COALESCE(manager_id::text, '')
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&rec.ID, &rec.UserID, &rec.DisplayName, &rec.Department, &rec.ManagerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeRecord{}, ErrEmployeeNotFound
	}
	if err != nil {
		return EmployeeRecord{}, err
	}
	return rec, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var user AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.email, u.password_hash, u.role, COALESCE(e.id::text, '')
    FROM users u
    LEFT JOIN employees e ON e.user_id = u.id
    WHERE u.email = $1
  `, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.EmployeeID)
	if err != nil {
		return AuthUser{}, err
	}
	return user, nil
}
