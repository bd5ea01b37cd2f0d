package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleResident Role = "resident"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleResident, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User is owned by the auth service; this service reads it as
// reference data and a notification target.
type User struct {
	ID                     uuid.UUID              `json:"id"`
	Email                  string                 `json:"email"`
	Phone                  *string                `json:"phone,omitempty"`
	Name                   string                 `json:"name"`
	Role                   Role                   `json:"role"`
	NotificationPreference NotificationPreference `json:"notification_preference"`
	CreatedAt              time.Time              `json:"created_at"`
}
