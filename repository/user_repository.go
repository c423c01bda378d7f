// file: repository/user_repository.go

package repository

import (
	"database/sql"
	"errors"

	"github.com/falcol/authen-api/logger"
	"github.com/falcol/authen-api/model"
	"github.com/lib/pq"
)

// ErrDuplicateUser is returned by Create when the insert hits the unique
// constraint on username or email.
var ErrDuplicateUser = errors.New("username or email already exists")

// IUserRepository defines the contract for user storage operations.
type IUserRepository interface {
	Create(user *model.User) error
	GetByUsername(username string) (*model.User, error)
	GetByUsernameOrEmail(username, email string) (*model.User, error)
}

// UserRepository implements IUserRepository on top of postgres.
type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// Create inserts a new user record and fills in the generated fields.
func (r *UserRepository) Create(user *model.User) error {
	query := `INSERT INTO users (username, email, full_name, password, is_active)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err := r.DB.QueryRow(query, user.Username, user.Email, user.FullName, user.Password, user.IsActive).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateUser
		}
		logger.Log.WithError(err).Error("Failed to execute create user query")
		return err
	}
	return nil
}

// GetByUsername looks up a user by exact, case-sensitive username match.
// Returns sql.ErrNoRows when no record exists.
func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, username, email, full_name, password, is_active, created_at
		FROM users WHERE username = $1`
	err := r.DB.QueryRow(query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Password, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get user by username query")
		}
		return nil, err
	}
	return user, nil
}

// GetByUsernameOrEmail finds a user matching either field, case-insensitively.
// Used by registration to enforce uniqueness before inserting.
func (r *UserRepository) GetByUsernameOrEmail(username, email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, username, email, full_name, password, is_active, created_at
		FROM users WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($2)`
	err := r.DB.QueryRow(query, username, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Password, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get user by username or email query")
		}
		return nil, err
	}
	return user, nil
}
