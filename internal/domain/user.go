package domain

import (
	"time"

	"github.com/google/uuid"
)

// User owns one or more accounts. User management lives in the admin backend;
// this service only reads users.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Session identifies the caller of a ledger operation. It is materialized by
// middleware from request headers; token verification happens upstream.
type Session struct {
	UserID  uuid.UUID
	IsAdmin bool
}
