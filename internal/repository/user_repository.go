package repository

import (
	"database/sql"

	"trashbeta-service/internal/model"

	"github.com/google/uuid"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, phone, name, role, notification_preference, created_at`

// FindByID returns (nil, nil) when no user matches.
func (r *UserRepository) FindByID(id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(query, id))
}

// FindByEmailAndRole returns (nil, nil) when no user with the given
// email carries the given role.
func (r *UserRepository) FindByEmailAndRole(email string, role model.Role) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND role = $2`
	return r.scanOne(r.db.QueryRow(query, email, role))
}

func (r *UserRepository) scanOne(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var phone sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Email,
		&phone,
		&user.Name,
		&user.Role,
		&user.NotificationPreference,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if phone.Valid {
		user.Phone = &phone.String
	}

	return user, nil
}
