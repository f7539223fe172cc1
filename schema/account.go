package schema

import (
	"time"

	"github.com/google/uuid"
)

// Account is the authentication identity behind a profile, kept in postgres.
// Role and activity flags live on the mongo Profile; the account only knows
// how to prove who you are.
type Account struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key" sql:"default:uuid_generate_v4()"`
	Email          string    `json:"email" gorm:"unique_index;not null"`
	PasswordDigest string    `json:"-" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
