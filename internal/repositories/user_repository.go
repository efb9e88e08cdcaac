package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"staff_rota_backend/internal/models"

	"github.com/lib/pq"
)

// UserRepository defines the interface for user and role database operations.
// Users carry a role set loaded through user_roles.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User, passwordHash string, roleNames []string) (int64, error)
	FindUserByID(id int64) (*models.User, error)
	FindUserByUsername(username string) (*models.User, string, error)
	GetUsersByRoles(roleNames []string) ([]models.User, error)
	GetRolesForUser(executor SQLExecutor, userID int64) ([]models.Role, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User, passwordHash string, roleNames []string) (int64, error) {
	query := `INSERT INTO users (username, password_hash, email, full_name, is_suspended, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, FALSE, $5, $5)
	          RETURNING id`

	currentTime := time.Now()
	var userID int64
	err := executor.QueryRow(query,
		user.Username, passwordHash, user.Email, user.FullName, currentTime,
	).Scan(&userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}

	if len(roleNames) > 0 {
		linkQuery := `INSERT INTO user_roles (user_id, role_id, created_at)
		              SELECT $1, r.id, $2 FROM roles r WHERE r.name = ANY($3)`
		res, err := executor.Exec(linkQuery, userID, currentTime, pq.Array(roleNames))
		if err != nil {
			return 0, fmt.Errorf("%w: linking user roles: %v", ErrDatabaseError, err)
		}
		if affected, _ := res.RowsAffected(); affected != int64(len(roleNames)) {
			return 0, fmt.Errorf("%w: one or more roles do not exist", ErrNotFound)
		}
	}
	return userID, nil
}

func (r *userRepository) FindUserByID(id int64) (*models.User, error) {
	query := `SELECT id, username, password_hash, email, full_name, is_suspended, created_at, updated_at
	          FROM users WHERE id = $1`
	user, _, err := scanUserRow(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	roles, err := r.GetRolesForUser(r.db, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

func (r *userRepository) FindUserByUsername(username string) (*models.User, string, error) {
	query := `SELECT id, username, password_hash, email, full_name, is_suspended, created_at, updated_at
	          FROM users WHERE username = $1`
	user, passwordHash, err := scanUserRow(r.db.QueryRow(query, username))
	if err != nil {
		return nil, "", err
	}
	roles, err := r.GetRolesForUser(r.db, user.ID)
	if err != nil {
		return nil, "", err
	}
	user.Roles = roles
	return user, passwordHash, nil
}

// GetUsersByRoles returns all non-suspended users holding at least one of the
// given roles, with their full role sets populated, ordered by full name.
func (r *userRepository) GetUsersByRoles(roleNames []string) ([]models.User, error) {
	query := `SELECT DISTINCT u.id, u.username, u.password_hash, u.email, u.full_name,
	                 u.is_suspended, u.created_at, u.updated_at
	          FROM users u
	          JOIN user_roles ur ON ur.user_id = u.id
	          JOIN roles r ON r.id = ur.role_id
	          WHERE r.name = ANY($1) AND u.is_suspended = FALSE
	          ORDER BY u.full_name NULLS LAST, u.username`

	rows, err := r.db.Query(query, pq.Array(roleNames))
	if err != nil {
		return nil, fmt.Errorf("%w: querying users by roles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, _, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating users: %v", ErrDatabaseError, err)
	}

	for i := range users {
		roles, err := r.GetRolesForUser(r.db, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].Roles = roles
	}
	return users, nil
}

func (r *userRepository) GetRolesForUser(executor SQLExecutor, userID int64) ([]models.Role, error) {
	query := `SELECT r.id, r.name, r.description, r.created_at, r.updated_at
	          FROM roles r
	          JOIN user_roles ur ON ur.role_id = r.id
	          WHERE ur.user_id = $1
	          ORDER BY r.name`

	rows, err := executor.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying roles for user %d: %v", ErrDatabaseError, userID, err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		var description sql.NullString
		if err := rows.Scan(&role.ID, &role.Name, &description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning role: %v", ErrDatabaseError, err)
		}
		if description.Valid {
			role.Description = &description.String
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating roles: %v", ErrDatabaseError, err)
	}
	return roles, nil
}

func scanUserRow(row scanner) (*models.User, string, error) {
	var user models.User
	var passwordHash string
	var email, fullName sql.NullString

	err := row.Scan(
		&user.ID, &user.Username, &passwordHash, &email, &fullName,
		&user.IsSuspended, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
	}
	if email.Valid {
		user.Email = &email.String
	}
	if fullName.Valid {
		user.FullName = &fullName.String
	}
	return &user, passwordHash, nil
}
