package user

import (
	"time"

	"admissions-service/internal/application"
	"admissions-service/internal/contact"

	"github.com/uptrace/bun"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account with a role. The password is stored only as a bcrypt
// hash and is never serialized into a response.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64  `bun:"id,pk,autoincrement" json:"id"`
	Username     string `bun:"username,unique,notnull" json:"username"`
	Email        string `bun:"email,unique,notnull" json:"email"`
	PasswordHash string `bun:"password_hash,notnull" json:"-"`
	Role         string `bun:"role,notnull,default:'user'" json:"role"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// SignupRequest is the request body for signup
type SignupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateRequest is the request body for profile updates. Empty fields are
// left unchanged; password changes are not part of this endpoint.
type UpdateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

// Dashboard is the read-only admin aggregate view.
type Dashboard struct {
	Users              []User                    `json:"users"`
	TotalUsers         int                       `json:"totalUsers"`
	ApplicationCount   int                       `json:"applicationCount"`
	ContactCount       int                       `json:"contactCount"`
	LatestApplications []application.Application `json:"latestApplications"`
	LatestContacts     []contact.Contact         `json:"latestContacts"`
}
